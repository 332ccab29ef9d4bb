package agentpipe

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentpipe/config"
	"github.com/hupe1980/agentpipe/core"
	"github.com/hupe1980/agentpipe/logging"
	"github.com/hupe1980/agentpipe/model"
	"github.com/hupe1980/agentpipe/samples"
	"github.com/hupe1980/agentpipe/tools/datafeed"
)

func offlineConfig() *config.Config {
	cfg := config.Default()
	cfg.Provider = config.ProviderOffline
	cfg.AppName = "data_pipeline_demo"
	return cfg
}

func TestNewPipelineSession_Offline(t *testing.T) {
	var logs bytes.Buffer

	m, err := NewPipelineSession(func(o *Options) {
		o.Config = offlineConfig()
		o.LogOutput = &logs
	})
	require.NoError(t, err)
	defer m.Close()

	out, err := m.RunQuery(context.Background(), samples.PipelineQuery(samples.PipelineInputs[0]))
	require.NoError(t, err)

	assert.Contains(t, out, `"composite": "data_processing_pipeline"`)
	assert.Contains(t, out, `"final_result"`)
	assert.Contains(t, out, "customer_feedback")

	info := m.Info()
	assert.Equal(t, "data_pipeline_demo", info.AppName)
	assert.Equal(t, samples.PipelineName, info.Composite)
	assert.Equal(t, 1, info.Turns)

	assert.Contains(t, logs.String(), "session.created")
}

func TestNewAggregatorSession_Offline(t *testing.T) {
	m, err := NewAggregatorSession(func(o *Options) {
		o.Config = offlineConfig()
		o.Logger = logging.NoOpLogger{}
		o.Feed = datafeed.New(datafeed.WithSeed(3), datafeed.WithoutLatency())
		o.SessionID = "fixed"
	})
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, "fixed", m.SessionID())

	res, err := m.Run(context.Background(), samples.AggregatorQueries[1])
	require.NoError(t, err)

	assert.Equal(t, []string{samples.WeatherKey, samples.NewsKey, samples.StockKey}, res.Keys())
	stock, _ := res.Get(samples.StockKey)
	assert.Equal(t, "GOOGL", stock.Data["symbol"])
}

func TestNewAssistantSession_Offline(t *testing.T) {
	m, err := NewAssistantSession(func(o *Options) {
		o.Config = offlineConfig()
		o.Logger = logging.NoOpLogger{}
		o.Feed = datafeed.New(datafeed.WithSeed(3), datafeed.WithoutLatency())
	})
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, samples.AssistantName, m.Info().Composite)

	res, err := m.Run(context.Background(), samples.AssistantQueries[0])
	require.NoError(t, err)

	assert.Equal(t, []string{samples.WeatherKey}, res.Keys())
	weather, _ := res.Get(samples.WeatherKey)
	assert.Equal(t, "Paris", weather.Data["city"])
}

func TestNewSession_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Provider = config.ProviderAnthropic
	cfg.Model = config.DefaultModel(cfg.Provider)
	cfg.APIKey = ""

	_, err := NewPipelineSession(func(o *Options) { o.Config = cfg })

	var cfgErr *core.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "api_key", cfgErr.Field)
}

func TestNewSession_Narrated(t *testing.T) {
	cfg := offlineConfig()
	cfg.Provider = config.ProviderOpenAI
	cfg.Model = "gpt-4o-mini"
	cfg.APIKey = "sk-test"
	cfg.Narrate = true

	llm := model.NewMockModel("narrator")

	m, err := NewPipelineSession(func(o *Options) {
		o.Config = cfg
		o.Logger = logging.NoOpLogger{}
		o.Model = llm
	})
	require.NoError(t, err)
	defer m.Close()

	out, err := m.RunQuery(context.Background(), samples.PipelineQuery("Sales revenue increased by 25% this quarter."))
	require.NoError(t, err)

	assert.Contains(t, out, "Mock response to:")
	require.Len(t, llm.Requests(), 1)
	assert.Contains(t, llm.Requests()[0].Messages[0].Text, "extraction_result")
}

func TestNewSession_NarrationFallsBackToJSON(t *testing.T) {
	cfg := offlineConfig()
	cfg.Provider = config.ProviderAnthropic
	cfg.Model = config.DefaultModel(config.ProviderAnthropic)
	cfg.APIKey = "sk-ant-test"
	cfg.Narrate = true

	llm := model.NewMockModel("narrator")
	llm.FailWith(errors.New("overloaded"))

	m, err := NewPipelineSession(func(o *Options) {
		o.Config = cfg
		o.Logger = logging.NoOpLogger{}
		o.Model = llm
	})
	require.NoError(t, err)
	defer m.Close()

	out, err := m.RunQuery(context.Background(), samples.PipelineQuery("Short text"))
	require.NoError(t, err)
	assert.Contains(t, out, `"validation_result"`)
}

func TestNewModel(t *testing.T) {
	cfg := offlineConfig()
	_, err := NewModel(cfg)
	assert.Error(t, err)

	cfg.Provider = config.ProviderAnthropic
	cfg.Model = config.DefaultModel(cfg.Provider)
	cfg.APIKey = "k"
	m, err := NewModel(cfg)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", m.Info().Provider)
	assert.Equal(t, cfg.Model, m.Info().Name)

	cfg.Provider = config.ProviderOpenAI
	cfg.Model = "gpt-4o-mini"
	m, err = NewModel(cfg)
	require.NoError(t, err)
	assert.Equal(t, "openai", m.Info().Provider)
}
