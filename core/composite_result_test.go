package core

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompositeResult_OrderAndCopies(t *testing.T) {
	c := NewCompositeResult("data_aggregator", KindParallel)
	c.Set("weather_info", NewSuccessResult("weather_api", map[string]any{"city": "Tokyo"}, nil))
	c.Set("news_info", NewSuccessResult("news_api", nil, nil))
	c.Set("stock_info", NewErrorResult("financial_api", "boom", nil))

	assert.Equal(t, []string{"weather_info", "news_info", "stock_info"}, c.Keys())
	assert.Equal(t, 3, c.Len())

	r, ok := c.Get("weather_info")
	require.True(t, ok)
	r.Data["city"] = "Paris"
	again, _ := c.Get("weather_info")
	assert.Equal(t, "Tokyo", again.Data["city"])

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCompositeResult_MarshalJSONKeepsOrder(t *testing.T) {
	c := NewCompositeResult("pipeline", KindSequential)
	c.State = StateFailed
	c.CompletedSteps = 1
	c.Failures = []StepFailure{{Index: 2, Agent: "data_validator", OutputKey: "validation_result", Message: "bad"}}
	c.Set("zeta", NewSuccessResult("a", nil, nil))
	c.Set("alpha", NewErrorResult("b", "bad", nil))

	raw, err := json.Marshal(c)
	require.NoError(t, err)

	s := string(raw)
	assert.Less(t, strings.Index(s, `"zeta"`), strings.Index(s, `"alpha"`))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "failed", decoded["state"])
	assert.EqualValues(t, 1, decoded["completed_steps"])
}

func TestCompositeResult_Clone(t *testing.T) {
	c := NewCompositeResult("pipeline", KindSequential)
	c.Set("a", NewSuccessResult("a", nil, nil))
	c.Failures = []StepFailure{{Index: 1}}

	cl := c.Clone()
	cl.Set("b", NewSuccessResult("b", nil, nil))
	cl.Failures[0].Index = 7

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 1, c.Failures[0].Index)

	f, ok := c.FirstFailure()
	require.True(t, ok)
	assert.Equal(t, 1, f.Index)
	assert.True(t, c.Failed())
}
