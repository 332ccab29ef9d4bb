package testutil

import (
	"context"
	"sync"

	"github.com/hupe1980/agentpipe/core"
	"github.com/hupe1980/agentpipe/logging"
)

// NewRunContext returns a RunContext bound to a background context and a
// NoOp logger.
func NewRunContext(input string) *core.RunContext {
	return core.NewRunContext(context.Background(), "session-1", "run-1", input, logging.NoOpLogger{})
}

// StubTool is a configurable tool implementation recording its calls. It
// satisfies tool.Tool without importing the tool package.
type StubTool struct {
	ToolName string
	Fn       func(rc *core.RunContext, args map[string]any) core.ToolResult

	mu    sync.Mutex
	calls []map[string]any
}

// NewStubTool returns a StubTool answering with fn. A nil fn echoes args
// back as a success result.
func NewStubTool(name string, fn func(rc *core.RunContext, args map[string]any) core.ToolResult) *StubTool {
	if fn == nil {
		fn = func(_ *core.RunContext, args map[string]any) core.ToolResult {
			return core.NewSuccessResult(name, args, nil)
		}
	}
	return &StubTool{ToolName: name, Fn: fn}
}

// Name implements tool.Tool.
func (s *StubTool) Name() string { return s.ToolName }

// Description implements tool.Tool.
func (s *StubTool) Description() string { return "stub " + s.ToolName }

// Call implements tool.Tool.
func (s *StubTool) Call(rc *core.RunContext, args map[string]any) core.ToolResult {
	s.mu.Lock()
	s.calls = append(s.calls, args)
	s.mu.Unlock()
	return s.Fn(rc, args)
}

// Calls returns the recorded argument maps.
func (s *StubTool) Calls() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.calls...)
}
