package core

// Agent is a single pipeline stage: it binds one tool capability to an
// output key. Invoke applies the tool to input derived from the run context,
// stores the result under OutputKey in that context and returns it.
//
// Implementations must never panic for expected input shapes; failures are
// reported as ToolResults with StatusError.
type Agent interface {
	Name() string
	Description() string
	OutputKey() string
	Invoke(rc *RunContext) ToolResult
}

// Composite orchestrates several Agents. Run returns the assembled
// CompositeResult; a non-nil error is reserved for run-level conditions such
// as cancellation, never for tool failures (those are recorded in the result).
type Composite interface {
	Name() string
	Description() string
	Run(rc *RunContext) (*CompositeResult, error)
}
