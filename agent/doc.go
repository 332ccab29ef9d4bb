// Package agent contains the building blocks of a pipeline:
//
//  1. ToolAgent binds one tool to an output key (the single pipeline stage)
//  2. SequentialAgent runs stages in order and stops at the first failure
//  3. ParallelAgent forks every stage on an isolated branch and joins them
//
// Execution Model:
//   - A stage's Invoke receives a *core.RunContext (shared or cloned)
//   - Composites assemble a *core.CompositeResult keyed by output key
//   - Tool failures are recorded in the result; only cancellation surfaces
//     as a Go error from Run
//
// Composites validate their layout on construction: at least one stage,
// unique stage names and unique, non-empty output keys.
package agent
