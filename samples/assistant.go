package samples

import (
	"github.com/hupe1980/agentpipe/agent"
	"github.com/hupe1980/agentpipe/core"
	"github.com/hupe1980/agentpipe/tools/datafeed"
)

// AssistantName names the single-agent weather assistant.
const AssistantName = "weather_assistant"

// AssistantQueries are the predefined questions asked of the assistant.
var AssistantQueries = []string{
	"What's the weather in Paris?",
	"How is the weather in Tokyo today?",
	"Tell me the weather for London",
	"Sydney weather, please",
}

// AssistantOptions configures NewWeatherAssistant.
type AssistantOptions struct {
	Model string
	// Feed serves the weather tool. Defaults to datafeed.New().
	Feed *datafeed.Feed
}

// NewWeatherAssistant builds a one-stage composite around a weather agent.
// The city is parsed from each question with ParseCity.
func NewWeatherAssistant(optFns ...func(o *AssistantOptions)) (*agent.SequentialAgent, error) {
	opts := AssistantOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Feed == nil {
		opts.Feed = datafeed.New()
	}

	weather, err := newFetchAgent(WeatherAgentName, "Answers weather questions for a city", WeatherKey,
		opts.Model, opts.Feed.WeatherTool(), "city", ParseCity)
	if err != nil {
		return nil, err
	}

	return agent.NewSequentialAgent(AssistantName, []core.Agent{weather}, func(o *agent.SequentialAgentOptions) {
		o.Description = "A helpful assistant that answers weather questions"
	})
}
