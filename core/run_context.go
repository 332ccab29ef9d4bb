package core

import (
	"context"
	"maps"
	"sync"

	"github.com/hupe1980/agentpipe/logging"
)

// RunContext carries execution state & helpers for one composite run.
// It aggregates:
//   - The ambient cancellation Context
//   - Identifiers (SessionID, RunID) and the Branch label of parallel flows
//   - The user Input that started the run
//   - The results committed so far, keyed by output key
//
// Sequential composites pass the same RunContext to every step so later
// steps observe earlier results. Parallel composites hand each branch a
// Clone so that siblings never see each other's results.
type RunContext struct {
	Context          context.Context
	SessionID, RunID string
	Input            string
	Branch           string

	mu      sync.RWMutex
	results map[string]ToolResult

	logger logging.Logger
}

// NewRunContext constructs a RunContext with an empty result set.
func NewRunContext(ctx context.Context, sessionID, runID, input string, logger logging.Logger) *RunContext {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &RunContext{
		Context:   ctx,
		SessionID: sessionID,
		RunID:     runID,
		Input:     input,
		results:   map[string]ToolResult{},
		logger:    logger,
	}
}

// Logger returns the run's logger; never nil.
func (rc *RunContext) Logger() logging.Logger { return rc.logger }

// Done returns a channel closed when the underlying context is cancelled.
func (rc *RunContext) Done() <-chan struct{} { return rc.Context.Done() }

// Err returns the cancellation error (if any) from the underlying context.
func (rc *RunContext) Err() error { return rc.Context.Err() }

// Result returns a copy of the result committed under key.
func (rc *RunContext) Result(key string) (ToolResult, bool) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	r, ok := rc.results[key]
	if !ok {
		return ToolResult{}, false
	}
	return r.Clone(), true
}

// SetResult commits a copy of r under key.
func (rc *RunContext) SetResult(key string, r ToolResult) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.results[key] = r.Clone()
}

// Results returns a snapshot of all committed results.
func (rc *RunContext) Results() map[string]ToolResult {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	out := make(map[string]ToolResult, len(rc.results))
	for k, v := range rc.results {
		out[k] = v.Clone()
	}
	return out
}

// Clone returns a copy with an independent result buffer.
func (rc *RunContext) Clone() *RunContext {
	rc.mu.RLock()
	results := maps.Clone(rc.results)
	rc.mu.RUnlock()

	return &RunContext{
		Context:   rc.Context,
		SessionID: rc.SessionID,
		RunID:     rc.RunID,
		Input:     rc.Input,
		Branch:    rc.Branch,
		results:   results,
		logger:    rc.logger,
	}
}

// WithBranch clones the context and sets the Branch label.
func (rc *RunContext) WithBranch(b string) *RunContext {
	c := rc.Clone()
	c.Branch = b
	return c
}

// WithContext clones the run context replacing the cancellation Context.
func (rc *RunContext) WithContext(ctx context.Context) *RunContext {
	c := rc.Clone()
	c.Context = ctx
	return c
}
