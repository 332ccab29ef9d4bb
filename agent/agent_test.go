package agent

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentpipe/core"
	"github.com/hupe1980/agentpipe/internal/testutil"
	"github.com/hupe1980/agentpipe/tool"
)

// MockAgent for testing composite agents
type MockAgent struct {
	mock.Mock
	name      string
	outputKey string
}

func NewMockAgent(name, outputKey string) *MockAgent {
	return &MockAgent{name: name, outputKey: outputKey}
}

func (m *MockAgent) Name() string        { return m.name }
func (m *MockAgent) Description() string { return "mock " + m.name }
func (m *MockAgent) OutputKey() string   { return m.outputKey }

func (m *MockAgent) Invoke(rc *core.RunContext) core.ToolResult {
	args := m.Called(rc)
	r := args.Get(0).(core.ToolResult)
	rc.SetResult(m.outputKey, r)
	return r
}

type stubFn = func(rc *core.RunContext, args map[string]any) core.ToolResult

// newStage builds a ToolAgent around a stub tool.
func newStage(t *testing.T, name, key string, fn stubFn) (*ToolAgent, *testutil.StubTool) {
	t.Helper()

	stub := testutil.NewStubTool(name+"_tool", fn)
	a, err := NewToolAgent(name, func(o *ToolAgentOptions) {
		o.Tools = []tool.Tool{stub}
		o.OutputKey = key
	})
	require.NoError(t, err)

	return a, stub
}

func succeed(source string) stubFn {
	return func(_ *core.RunContext, args map[string]any) core.ToolResult {
		return core.NewSuccessResult(source, args, nil)
	}
}

func fail(msg string) stubFn {
	return func(*core.RunContext, map[string]any) core.ToolResult {
		return core.NewErrorResult("stub", msg, nil)
	}
}

func TestNewToolAgent_Validation(t *testing.T) {
	_, err := NewToolAgent("", func(o *ToolAgentOptions) { o.OutputKey = "k" })
	var cfgErr *core.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "name", cfgErr.Field)

	_, err = NewToolAgent("a")
	assert.ErrorIs(t, err, core.ErrMissingOutputKey)

	dup := testutil.NewStubTool("same", nil)
	_, err = NewToolAgent("a", func(o *ToolAgentOptions) {
		o.OutputKey = "k"
		o.Tools = []tool.Tool{dup, dup}
	})
	assert.Error(t, err)
}

func TestToolAgent_Invoke(t *testing.T) {
	a, stub := newStage(t, "extractor", "extraction_result", nil)
	assert.Equal(t, "extractor_tool", a.ToolName())
	assert.Equal(t, "Agent extractor", a.Description())

	rc := testutil.NewRunContext("hello")
	r := a.Invoke(rc)

	require.True(t, r.IsSuccess())
	assert.Equal(t, map[string]any{"input": "hello"}, r.Data)
	assert.Len(t, stub.Calls(), 1)

	stored, ok := rc.Result("extraction_result")
	require.True(t, ok)
	assert.Equal(t, r, stored)
}

func TestToolAgent_CustomBinderAndMetadata(t *testing.T) {
	stub := testutil.NewStubTool("validate", nil)
	a, err := NewToolAgent("validator", func(o *ToolAgentOptions) {
		o.Tools = []tool.Tool{stub}
		o.OutputKey = "validation_result"
		o.Model = "claude-3-5-sonnet-20241022"
		o.Instruction = "Validate the extraction."
		o.Description = "Validates data"
		o.Input = FromResult("extraction_result", "extracted_data")
	})
	require.NoError(t, err)

	assert.Equal(t, "claude-3-5-sonnet-20241022", a.Model())
	assert.Equal(t, "Validate the extraction.", a.Instruction())
	assert.Equal(t, "Validates data", a.Description())

	rc := testutil.NewRunContext("raw")
	prior := core.NewSuccessResult("extract", map[string]any{"n": 1}, nil)
	rc.SetResult("extraction_result", prior)

	r := a.Invoke(rc)
	require.True(t, r.IsSuccess())
	assert.Equal(t, prior, r.Data["extracted_data"])
}

func TestToolAgent_BindFailure(t *testing.T) {
	stub := testutil.NewStubTool("validate", nil)
	a, err := NewToolAgent("validator", func(o *ToolAgentOptions) {
		o.Tools = []tool.Tool{stub}
		o.OutputKey = "validation_result"
		o.Input = FromResult("missing", "extracted_data")
	})
	require.NoError(t, err)

	rc := testutil.NewRunContext("raw")
	r := a.Invoke(rc)

	assert.False(t, r.IsSuccess())
	assert.Contains(t, r.Error, `no result stored under "missing"`)
	assert.Empty(t, stub.Calls())

	stored, ok := rc.Result("validation_result")
	require.True(t, ok)
	assert.False(t, stored.IsSuccess())
}

func TestToolAgent_UnresolvedTool(t *testing.T) {
	a, err := NewToolAgent("lost", func(o *ToolAgentOptions) {
		o.Tools = []tool.Tool{testutil.NewStubTool("one", nil), testutil.NewStubTool("two", nil)}
		o.OutputKey = "out"
	})
	require.NoError(t, err)
	assert.Empty(t, a.ToolName())

	r := a.Invoke(testutil.NewRunContext("x"))
	assert.False(t, r.IsSuccess())
	assert.Equal(t, tool.CodeUnknownTool, tool.ErrorCode(r))
}

func TestBinders(t *testing.T) {
	rc := testutil.NewRunContext("text")

	args, err := FromInput("input_text").Bind(rc)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"input_text": "text"}, args)

	rc.SetResult("bad", core.NewErrorResult("s", "boom", nil))
	_, err = FromResult("bad", "x").Bind(rc)
	assert.ErrorContains(t, err, "boom")

	static := map[string]any{"city": "Tokyo"}
	args, err = Static(static).Bind(rc)
	require.NoError(t, err)
	args["city"] = "Paris"
	assert.Equal(t, "Tokyo", static["city"])
}

func TestCheckComposition(t *testing.T) {
	a1 := NewMockAgent("a", "k1")
	a2 := NewMockAgent("b", "k2")

	tests := []struct {
		name     string
		children []core.Agent
		want     error
	}{
		{"empty", nil, core.ErrNoSubAgents},
		{"nil agent", []core.Agent{a1, nil}, core.ErrNoSubAgents},
		{"duplicate name", []core.Agent{a1, NewMockAgent("a", "k3")}, core.ErrDuplicateAgentName},
		{"duplicate key", []core.Agent{a1, NewMockAgent("c", "k1")}, core.ErrDuplicateOutputKey},
		{"missing key", []core.Agent{a1, NewMockAgent("c", "")}, core.ErrMissingOutputKey},
		{"valid", []core.Agent{a1, a2}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkComposition("composite", tt.children)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, tt.want)
			var compErr *core.CompositionError
			require.True(t, errors.As(err, &compErr))
			assert.Equal(t, "composite", compErr.Composite)
		})
	}

	var cfgErr *core.ConfigurationError
	assert.ErrorAs(t, checkComposition("", []core.Agent{a1}), &cfgErr)
}

func TestBuildBranchPath(t *testing.T) {
	assert.Equal(t, "a.b", buildBranchPath("a", "b"))
	assert.Equal(t, "b", buildBranchPath("", "b"))
	assert.Equal(t, "a", buildBranchPath("a", ""))
}
