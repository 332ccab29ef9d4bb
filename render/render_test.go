package render

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentpipe/core"
	"github.com/hupe1980/agentpipe/model"
)

func sampleResult() *core.CompositeResult {
	res := core.NewCompositeResult("data_aggregator", core.KindParallel)
	res.Set("weather_info", core.NewSuccessResult("weather_api", map[string]any{"city": "Tokyo"}, nil))
	res.Set("news_info", core.NewErrorResult("news_api", "down", nil))
	res.Set("stock_info", core.NewSuccessResult("financial_api", map[string]any{"symbol": "AAPL"}, nil))
	res.State = core.StateFailed
	res.CompletedSteps = 2
	res.Failures = []core.StepFailure{{Index: 2, Agent: "news_agent", OutputKey: "news_info", Message: "down"}}
	return res
}

func TestJSONRenderer(t *testing.T) {
	out, err := NewJSONRenderer().Render(context.Background(), sampleResult())
	require.NoError(t, err)

	assert.Contains(t, out, `"composite": "data_aggregator"`)
	assert.Contains(t, out, `"completed_steps": 2`)

	w := strings.Index(out, `"weather_info"`)
	n := strings.Index(out, `"news_info"`)
	s := strings.Index(out, `"stock_info"`)
	assert.True(t, w < n && n < s, "results keep configured order")
}

func TestJSONRenderer_NilResult(t *testing.T) {
	_, err := NewJSONRenderer().Render(context.Background(), nil)
	assert.Error(t, err)
}

func TestNarrativeRenderer(t *testing.T) {
	res := sampleResult()
	doc, err := NewJSONRenderer().Render(context.Background(), res)
	require.NoError(t, err)

	llm := model.NewMockModel("mock")
	llm.AddResponse(doc, "Tokyo is fine, news failed.")

	out, err := NewNarrativeRenderer(llm).Render(context.Background(), res)
	require.NoError(t, err)
	assert.Equal(t, "Tokyo is fine, news failed.", out)

	reqs := llm.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, DefaultNarrativeInstructions, reqs[0].Instructions)
}

func TestNarrativeRenderer_Streaming(t *testing.T) {
	llm := model.NewMockModel("mock")

	out, err := NewNarrativeRenderer(llm, func(o *NarrativeOptions) { o.Stream = true }).
		Render(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Mock response to: {"))
}

func TestNarrativeRenderer_ModelError(t *testing.T) {
	boom := errors.New("rate limited")
	llm := model.NewMockModel("mock")
	llm.FailWith(boom)

	_, err := NewNarrativeRenderer(llm).Render(context.Background(), sampleResult())
	assert.ErrorIs(t, err, boom)

	fallback := RendererFunc(func(context.Context, *core.CompositeResult) (string, error) {
		return "fallback", nil
	})
	out, err := NewNarrativeRenderer(llm, func(o *NarrativeOptions) { o.Fallback = fallback }).
		Render(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.Equal(t, "fallback", out)
}
