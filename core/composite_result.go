package core

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// RunState is the lifecycle state of a composite run.
type RunState string

const (
	StatePending   RunState = "pending"
	StateRunning   RunState = "running"
	StateCompleted RunState = "completed"
	StateFailed    RunState = "failed"
)

// Composite kinds recorded on a CompositeResult.
const (
	KindSequential = "sequential"
	KindParallel   = "parallel"
)

// StepFailure identifies the agent whose tool produced an error result.
// Index is 1-based in configured agent order.
type StepFailure struct {
	Index     int    `json:"index"`
	Agent     string `json:"agent"`
	OutputKey string `json:"output_key"`
	Message   string `json:"message"`
}

// CompositeResult maps output keys to the ToolResults produced by a
// composite run. Keys keep insertion order: step order for sequential runs
// and configured agent order for parallel runs.
//
// A CompositeResult is built by a single goroutine and handed to callers
// only once complete; it is not safe for concurrent mutation.
type CompositeResult struct {
	Composite      string
	Kind           string
	State          RunState
	CompletedSteps int
	Failures       []StepFailure

	results *orderedmap.OrderedMap[string, ToolResult]
}

// NewCompositeResult returns an empty, pending result for the named composite.
func NewCompositeResult(composite, kind string) *CompositeResult {
	return &CompositeResult{
		Composite: composite,
		Kind:      kind,
		State:     StatePending,
		results:   orderedmap.New[string, ToolResult](),
	}
}

// Set stores a copy of r under key, keeping the original position if the key exists.
func (c *CompositeResult) Set(key string, r ToolResult) {
	c.results.Set(key, r.Clone())
}

// Get returns a copy of the result stored under key.
func (c *CompositeResult) Get(key string) (ToolResult, bool) {
	r, ok := c.results.Get(key)
	if !ok {
		return ToolResult{}, false
	}
	return r.Clone(), true
}

// Len returns the number of stored results.
func (c *CompositeResult) Len() int { return c.results.Len() }

// Keys returns the output keys in order.
func (c *CompositeResult) Keys() []string {
	keys := make([]string, 0, c.results.Len())
	for pair := c.results.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Each calls fn for every stored result in order until fn returns false.
func (c *CompositeResult) Each(fn func(key string, r ToolResult) bool) {
	for pair := c.results.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value.Clone()) {
			return
		}
	}
}

// Failed reports whether at least one agent produced an error result.
func (c *CompositeResult) Failed() bool { return len(c.Failures) > 0 }

// FirstFailure returns the earliest recorded failure, if any.
func (c *CompositeResult) FirstFailure() (StepFailure, bool) {
	if len(c.Failures) == 0 {
		return StepFailure{}, false
	}
	return c.Failures[0], true
}

// Clone returns a deep copy.
func (c *CompositeResult) Clone() *CompositeResult {
	out := NewCompositeResult(c.Composite, c.Kind)
	out.State = c.State
	out.CompletedSteps = c.CompletedSteps
	out.Failures = append([]StepFailure(nil), c.Failures...)
	for pair := c.results.Oldest(); pair != nil; pair = pair.Next() {
		out.results.Set(pair.Key, pair.Value.Clone())
	}
	return out
}

type compositeResultJSON struct {
	Composite      string                                     `json:"composite"`
	Kind           string                                     `json:"kind"`
	State          RunState                                   `json:"state"`
	CompletedSteps int                                        `json:"completed_steps"`
	Failures       []StepFailure                              `json:"failures,omitempty"`
	Results        *orderedmap.OrderedMap[string, ToolResult] `json:"results"`
}

// MarshalJSON renders the result with its ordered results mapping.
func (c *CompositeResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(compositeResultJSON{
		Composite:      c.Composite,
		Kind:           c.Kind,
		State:          c.State,
		CompletedSteps: c.CompletedSteps,
		Failures:       c.Failures,
		Results:        c.results,
	})
}
