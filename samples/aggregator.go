package samples

import (
	"regexp"
	"strings"
	"time"

	"github.com/hupe1980/agentpipe/agent"
	"github.com/hupe1980/agentpipe/core"
	"github.com/hupe1980/agentpipe/tool"
	"github.com/hupe1980/agentpipe/tools/datafeed"
)

// Names and output keys of the data aggregator.
const (
	AggregatorName = "data_aggregator"

	WeatherAgentName = "weather_agent"
	NewsAgentName    = "news_agent"
	StockAgentName   = "stock_agent"

	WeatherKey = "weather_info"
	NewsKey    = "news_info"
	StockKey   = "stock_info"
)

// Fallbacks used when a query names no city, topic or symbol.
const (
	DefaultCity   = "New York"
	DefaultTopic  = "technology"
	DefaultSymbol = "AAPL"
)

// AggregatorQueries are the predefined fan-out queries.
var AggregatorQueries = []string{
	"Get data for Tokyo weather, technology news, and AAPL stock",
	"Fetch information for London weather, business news, and GOOGL stock",
	"Gather data for New York weather, sports news, and MSFT stock",
	"Collect info for Paris weather, health news, and TSLA stock",
}

var (
	cityPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b([A-Z][a-zA-Z]*(?:\s+[A-Z][a-zA-Z]*)*)\s+weather\b`),
		regexp.MustCompile(`(?i:weather)\s+(?:in|for|at)\s+([A-Z][a-zA-Z]*(?:\s+[A-Z][a-zA-Z]*)*)`),
	}
	topicPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bnews\s+(?:about|on)\s+([a-z]+)`),
		regexp.MustCompile(`(?i)\b([a-z]+)\s+news\b`),
	}
	symbolPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b([A-Z]{1,5})\s+(?i:stock|shares)\b`),
		regexp.MustCompile(`(?i)\b(?:stock|shares)\s+(?:of|for)\s+([a-z]{1,5})\b`),
	}
)

// ParseCity returns the city a query asks weather for.
func ParseCity(q string) string { return firstMatch(cityPatterns, q, DefaultCity) }

// ParseTopic returns the news topic named in a query, lower-cased.
func ParseTopic(q string) string {
	return strings.ToLower(firstMatch(topicPatterns, q, DefaultTopic))
}

// ParseSymbol returns the ticker symbol named in a query, upper-cased.
func ParseSymbol(q string) string {
	return strings.ToUpper(firstMatch(symbolPatterns, q, DefaultSymbol))
}

func firstMatch(patterns []*regexp.Regexp, q, def string) string {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(q); m != nil {
			return m[1]
		}
	}
	return def
}

// AggregatorOptions configures the aggregator builders.
type AggregatorOptions struct {
	Model string
	// Feed serves the fetch tools. Defaults to datafeed.New().
	Feed *datafeed.Feed
	// BranchTimeout bounds each branch of the parallel aggregator.
	BranchTimeout time.Duration
}

func newAggregatorOptions(optFns []func(o *AggregatorOptions)) AggregatorOptions {
	opts := AggregatorOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Feed == nil {
		opts.Feed = datafeed.New()
	}
	return opts
}

// AggregatorAgents returns the weather, news and stock agents in that order.
func AggregatorAgents(optFns ...func(o *AggregatorOptions)) ([]core.Agent, error) {
	return aggregatorAgents(newAggregatorOptions(optFns))
}

func aggregatorAgents(opts AggregatorOptions) ([]core.Agent, error) {
	specs := []struct {
		name, desc, key string
		tool            tool.Tool
		arg             string
		parse           func(string) string
	}{
		{WeatherAgentName, "Fetches weather information for specified cities", WeatherKey, opts.Feed.WeatherTool(), "city", ParseCity},
		{NewsAgentName, "Fetches news information for specified topics", NewsKey, opts.Feed.NewsTool(), "topic", ParseTopic},
		{StockAgentName, "Fetches stock market information for specified symbols", StockKey, opts.Feed.StockTool(), "symbol", ParseSymbol},
	}

	agents := make([]core.Agent, 0, len(specs))
	for _, s := range specs {
		a, err := newFetchAgent(s.name, s.desc, s.key, opts.Model, s.tool, s.arg, s.parse)
		if err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}

	return agents, nil
}

// newFetchAgent builds a single-tool agent whose only argument is parsed
// from the run's input.
func newFetchAgent(name, desc, key, model string, t tool.Tool, arg string, parse func(string) string) (*agent.ToolAgent, error) {
	return agent.NewToolAgent(name, func(o *agent.ToolAgentOptions) {
		o.Description = desc
		o.Model = model
		o.Instruction = "Extract the " + arg + " from the request and call " + t.Name() + " with it."
		o.Tools = []tool.Tool{t}
		o.OutputKey = key
		o.Input = agent.BindFunc(func(rc *core.RunContext) (map[string]any, error) {
			return map[string]any{arg: parse(rc.Input)}, nil
		})
	})
}

// NewDataAggregator builds the parallel weather, news and stock aggregator.
func NewDataAggregator(optFns ...func(o *AggregatorOptions)) (*agent.ParallelAgent, error) {
	opts := newAggregatorOptions(optFns)

	agents, err := aggregatorAgents(opts)
	if err != nil {
		return nil, err
	}

	return agent.NewParallelAgent(AggregatorName, agents, func(o *agent.ParallelAgentOptions) {
		o.Description = "Gathers weather, news, and stock data concurrently from multiple sources"
		o.BranchTimeout = opts.BranchTimeout
	})
}

// NewSequentialAggregator runs the same three agents one after another. It
// is the baseline the parallel aggregator is benchmarked against.
func NewSequentialAggregator(optFns ...func(o *AggregatorOptions)) (*agent.SequentialAgent, error) {
	agents, err := AggregatorAgents(optFns...)
	if err != nil {
		return nil, err
	}

	return agent.NewSequentialAgent("sequential_"+AggregatorName, agents, func(o *agent.SequentialAgentOptions) {
		o.Description = "Gathers weather, news, and stock data one source at a time"
	})
}
