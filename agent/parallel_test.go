package agent

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentpipe/core"
	"github.com/hupe1980/agentpipe/internal/testutil"
	"github.com/hupe1980/agentpipe/logging"
	"github.com/hupe1980/agentpipe/tool"
)

func sleepThen(d time.Duration, source string) stubFn {
	return func(_ *core.RunContext, args map[string]any) core.ToolResult {
		time.Sleep(d)
		return core.NewSuccessResult(source, args, nil)
	}
}

func TestNewParallelAgent_DuplicateOutputKey(t *testing.T) {
	a, _ := newStage(t, "weather_agent", "info", nil)
	b, _ := newStage(t, "news_agent", "info", nil)

	_, err := NewParallelAgent("aggregator", []core.Agent{a, b})
	assert.ErrorIs(t, err, core.ErrDuplicateOutputKey)
}

func TestNewParallelAgent_NegativeTimeout(t *testing.T) {
	a, _ := newStage(t, "weather_agent", "weather_info", nil)

	_, err := NewParallelAgent("aggregator", []core.Agent{a}, func(o *ParallelAgentOptions) {
		o.BranchTimeout = -time.Second
	})
	var cfgErr *core.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestParallelAgent_Run_MergesInConfiguredOrder(t *testing.T) {
	// completion order is the reverse of configured order
	weather, _ := newStage(t, "weather_agent", "weather_info", sleepThen(60*time.Millisecond, "weather"))
	news, _ := newStage(t, "news_agent", "news_info", sleepThen(30*time.Millisecond, "news"))
	stock, _ := newStage(t, "stock_agent", "stock_info", sleepThen(0, "stock"))

	p, err := NewParallelAgent("aggregator", []core.Agent{weather, news, stock})
	require.NoError(t, err)

	rc := testutil.NewRunContext("query")
	res, err := p.Run(rc)
	require.NoError(t, err)

	assert.Equal(t, []string{"weather_info", "news_info", "stock_info"}, res.Keys())
	assert.Equal(t, 3, res.CompletedSteps)
	assert.Equal(t, core.StateCompleted, res.State)
	assert.Equal(t, core.KindParallel, res.Kind)

	// merged results are committed to the parent context
	for _, k := range res.Keys() {
		_, ok := rc.Result(k)
		assert.True(t, ok, k)
	}
}

func TestParallelAgent_Run_RunsConcurrently(t *testing.T) {
	const delay = 100 * time.Millisecond

	children := make([]core.Agent, 3)
	for i, name := range []string{"a", "b", "c"} {
		children[i], _ = newStage(t, name, name+"_out", sleepThen(delay, name))
	}

	p, err := NewParallelAgent("fanout", children)
	require.NoError(t, err)

	start := time.Now()
	_, err = p.Run(testutil.NewRunContext(""))
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 3*delay)
}

func TestParallelAgent_Run_BranchIsolation(t *testing.T) {
	var mu sync.Mutex
	branches := map[string]string{}
	sawSibling := false

	mk := func(name string) core.Agent {
		a, _ := newStage(t, name, name+"_out", func(rc *core.RunContext, _ map[string]any) core.ToolResult {
			time.Sleep(10 * time.Millisecond)
			mu.Lock()
			defer mu.Unlock()
			branches[name] = rc.Branch
			for _, other := range []string{"a_out", "b_out", "c_out"} {
				if other != name+"_out" {
					if _, ok := rc.Result(other); ok {
						sawSibling = true
					}
				}
			}
			// the snapshot taken before the fork is visible
			if _, ok := rc.Result("seed"); !ok {
				sawSibling = true
			}
			return core.NewSuccessResult(name, nil, nil)
		})
		return a
	}

	p, err := NewParallelAgent("fanout", []core.Agent{mk("a"), mk("b"), mk("c")})
	require.NoError(t, err)

	rc := testutil.NewRunContext("")
	rc.SetResult("seed", core.NewSuccessResult("seed", nil, nil))

	_, err = p.Run(rc)
	require.NoError(t, err)

	assert.False(t, sawSibling)
	assert.Equal(t, map[string]string{"a": "fanout.a", "b": "fanout.b", "c": "fanout.c"}, branches)
	assert.Equal(t, "", rc.Branch)
}

func TestParallelAgent_Run_NestedBranchLabel(t *testing.T) {
	var got string
	a, _ := newStage(t, "a", "a_out", func(rc *core.RunContext, _ map[string]any) core.ToolResult {
		got = rc.Branch
		return core.NewSuccessResult("a", nil, nil)
	})

	p, err := NewParallelAgent("inner", []core.Agent{a})
	require.NoError(t, err)

	rc := testutil.NewRunContext("").WithBranch("outer")
	_, err = p.Run(rc)
	require.NoError(t, err)
	assert.Equal(t, "outer.inner.a", got)
}

func TestParallelAgent_Run_OneBranchFails(t *testing.T) {
	weather, _ := newStage(t, "weather_agent", "weather_info", succeed("weather"))
	news, _ := newStage(t, "news_agent", "news_info", fail("news api down"))
	stock, _ := newStage(t, "stock_agent", "stock_info", succeed("stock"))

	p, err := NewParallelAgent("aggregator", []core.Agent{weather, news, stock})
	require.NoError(t, err)

	res, err := p.Run(testutil.NewRunContext(""))
	require.NoError(t, err)

	require.Equal(t, 3, res.Len())
	assert.Equal(t, core.StateFailed, res.State)
	assert.Equal(t, 2, res.CompletedSteps)

	w, _ := res.Get("weather_info")
	assert.True(t, w.IsSuccess())
	s, _ := res.Get("stock_info")
	assert.True(t, s.IsSuccess())
	n, _ := res.Get("news_info")
	assert.False(t, n.IsSuccess())

	require.Len(t, res.Failures, 1)
	assert.Equal(t, core.StepFailure{Index: 2, Agent: "news_agent", OutputKey: "news_info", Message: "news api down"}, res.Failures[0])
}

func TestParallelAgent_Run_BranchTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	slow, _ := newStage(t, "slow", "slow_out", func(*core.RunContext, map[string]any) core.ToolResult {
		<-release
		return core.NewSuccessResult("slow", nil, nil)
	})
	fast, _ := newStage(t, "fast", "fast_out", succeed("fast"))

	p, err := NewParallelAgent("fanout", []core.Agent{slow, fast}, func(o *ParallelAgentOptions) {
		o.BranchTimeout = 30 * time.Millisecond
	})
	require.NoError(t, err)

	start := time.Now()
	res, err := p.Run(testutil.NewRunContext(""))
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)

	r, _ := res.Get("slow_out")
	assert.False(t, r.IsSuccess())
	assert.Equal(t, tool.CodeTimeout, tool.ErrorCode(r))
	assert.True(t, strings.Contains(r.Error, "fanout.slow"))

	f, _ := res.Get("fast_out")
	assert.True(t, f.IsSuccess())
}

func TestParallelAgent_Run_CancelledDuringJoin(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	// ignores cancellation on purpose
	stuck, _ := newStage(t, "stuck", "stuck_out", func(*core.RunContext, map[string]any) core.ToolResult {
		<-release
		return core.NewSuccessResult("stuck", nil, nil)
	})
	fast, _ := newStage(t, "fast", "fast_out", succeed("fast"))

	p, err := NewParallelAgent("fanout", []core.Agent{stuck, fast})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	rc := core.NewRunContext(ctx, "s", "r", "", logging.NoOpLogger{})
	res, err := p.Run(rc)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)

	// no partial merge reached the parent
	_, ok := rc.Result("fast_out")
	assert.False(t, ok)
}
