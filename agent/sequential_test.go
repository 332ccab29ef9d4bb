package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentpipe/core"
	"github.com/hupe1980/agentpipe/internal/testutil"
	"github.com/hupe1980/agentpipe/logging"
)

func TestNewSequentialAgent(t *testing.T) {
	child1 := NewMockAgent("Child1", "k1")
	child2 := NewMockAgent("Child2", "k2")

	s, err := NewSequentialAgent("pipeline", []core.Agent{child1, child2}, func(o *SequentialAgentOptions) {
		o.Description = "two steps"
	})
	require.NoError(t, err)

	assert.Equal(t, "pipeline", s.Name())
	assert.Equal(t, "two steps", s.Description())
	assert.Equal(t, []core.Agent{child1, child2}, s.SubAgents())
}

func TestNewSequentialAgent_Empty(t *testing.T) {
	_, err := NewSequentialAgent("pipeline", nil)
	assert.ErrorIs(t, err, core.ErrNoSubAgents)
}

func TestSequentialAgent_Run_Success(t *testing.T) {
	extract, _ := newStage(t, "extractor", "extraction_result", succeed("extract"))
	validate, _ := newStage(t, "validator", "validation_result", succeed("validate"))
	format, _ := newStage(t, "formatter", "final_output", succeed("format"))

	s, err := NewSequentialAgent("pipeline", []core.Agent{extract, validate, format})
	require.NoError(t, err)

	rc := testutil.NewRunContext("data")
	res, err := s.Run(rc)
	require.NoError(t, err)

	assert.Equal(t, core.StateCompleted, res.State)
	assert.Equal(t, 3, res.CompletedSteps)
	assert.False(t, res.Failed())
	assert.Equal(t, []string{"extraction_result", "validation_result", "final_output"}, res.Keys())

	// results are visible in the shared run context
	_, ok := rc.Result("final_output")
	assert.True(t, ok)
}

func TestSequentialAgent_Run_PassesPriorResults(t *testing.T) {
	first, _ := newStage(t, "first", "first_out", succeed("first"))

	var seen core.ToolResult
	second, _ := newStage(t, "second", "second_out", func(rc *core.RunContext, _ map[string]any) core.ToolResult {
		seen, _ = rc.Result("first_out")
		return core.NewSuccessResult("second", nil, nil)
	})

	s, err := NewSequentialAgent("pipeline", []core.Agent{first, second})
	require.NoError(t, err)

	_, err = s.Run(testutil.NewRunContext("payload"))
	require.NoError(t, err)
	assert.Equal(t, "payload", seen.Data["input"])
}

func TestSequentialAgent_Run_StopsAtFirstError(t *testing.T) {
	for failAt := 1; failAt <= 3; failAt++ {
		children := make([]core.Agent, 3)
		stubs := make([]*testutil.StubTool, 3)
		for i := range children {
			fn := succeed("ok")
			if i+1 == failAt {
				fn = fail("step broke")
			}
			name := []string{"extractor", "validator", "formatter"}[i]
			children[i], stubs[i] = newStage(t, name, name+"_out", fn)
		}

		s, err := NewSequentialAgent("pipeline", children)
		require.NoError(t, err)

		res, err := s.Run(testutil.NewRunContext("data"))
		require.NoError(t, err)

		assert.Equal(t, core.StateFailed, res.State)
		assert.Equal(t, failAt-1, res.CompletedSteps)
		assert.Equal(t, failAt, res.Len())

		failure, ok := res.FirstFailure()
		require.True(t, ok)
		assert.Equal(t, failAt, failure.Index)
		assert.Equal(t, children[failAt-1].Name(), failure.Agent)
		assert.Equal(t, "step broke", failure.Message)

		for i := failAt; i < 3; i++ {
			assert.Empty(t, stubs[i].Calls(), "step %d must not run", i+1)
		}
	}
}

func TestSequentialAgent_Run_WithMocks(t *testing.T) {
	child1 := NewMockAgent("Child1", "k1")
	child2 := NewMockAgent("Child2", "k2")
	child3 := NewMockAgent("Child3", "k3")

	child1.On("Invoke", mock.Anything).Return(core.NewSuccessResult("c1", nil, nil))
	child2.On("Invoke", mock.Anything).Return(core.NewErrorResult("c2", "bad", nil))

	s, err := NewSequentialAgent("pipeline", []core.Agent{child1, child2, child3})
	require.NoError(t, err)

	res, err := s.Run(testutil.NewRunContext("x"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.CompletedSteps)

	child1.AssertExpectations(t)
	child2.AssertExpectations(t)
	child3.AssertNotCalled(t, "Invoke", mock.Anything)
}

func TestSequentialAgent_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	first, _ := newStage(t, "first", "first_out", func(*core.RunContext, map[string]any) core.ToolResult {
		cancel()
		return core.NewSuccessResult("first", nil, nil)
	})
	second, stub := newStage(t, "second", "second_out", succeed("second"))

	s, err := NewSequentialAgent("pipeline", []core.Agent{first, second})
	require.NoError(t, err)

	rc := core.NewRunContext(ctx, "s", "r", "x", logging.NoOpLogger{})
	res, err := s.Run(rc)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
	assert.Empty(t, stub.Calls())
}
