package core

import (
	"context"
	"testing"

	"github.com/hupe1980/agentpipe/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunContext_CloneIsolation(t *testing.T) {
	rc := NewRunContext(context.Background(), "s1", "r1", "hello", logging.NoOpLogger{})
	rc.SetResult("a", NewSuccessResult("a", map[string]any{"v": 1}, nil))

	branch := rc.WithBranch("agg.weather")
	branch.SetResult("b", NewSuccessResult("b", nil, nil))

	_, ok := rc.Result("b")
	assert.False(t, ok, "parent must not observe branch writes")

	a, ok := branch.Result("a")
	require.True(t, ok, "branch sees the initial snapshot")
	assert.Equal(t, 1, a.Data["v"])
	assert.Equal(t, "agg.weather", branch.Branch)
	assert.Equal(t, "", rc.Branch)
}

func TestRunContext_WithContext(t *testing.T) {
	rc := NewRunContext(context.Background(), "s1", "r1", "hello", nil)
	ctx, cancel := context.WithCancel(context.Background())
	c := rc.WithContext(ctx)
	cancel()

	assert.Error(t, c.Err())
	assert.NoError(t, rc.Err())
	assert.NotNil(t, c.Logger())
}

func TestRunContext_ResultsSnapshot(t *testing.T) {
	rc := NewRunContext(context.Background(), "s1", "r1", "", nil)
	rc.SetResult("k", NewSuccessResult("k", nil, nil))

	snap := rc.Results()
	delete(snap, "k")

	_, ok := rc.Result("k")
	assert.True(t, ok)
}
