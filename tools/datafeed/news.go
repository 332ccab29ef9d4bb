package datafeed

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/hupe1980/agentpipe/core"
	"github.com/hupe1980/agentpipe/tool"
)

const headlineCount = 3

var (
	headlineTemplates = []string{
		"Breaking: Major developments in %s sector",
		"Analysis: The future of %s looks promising",
		"Expert opinion: %s trends to watch",
		"Market update: %s stocks show strong performance",
		"Innovation: New %s breakthrough announced",
	}
	sentiments = []string{"positive", "neutral", "mixed"}
)

// NewsArgs is the input of fetch_news_data.
type NewsArgs struct {
	Topic string `mapstructure:"topic" validate:"required,max=100"`
}

// News returns three distinct mock headlines for a topic.
func (f *Feed) News(ctx context.Context, topic string) (core.ToolResult, error) {
	d := f.delay(f.opts.NewsLatency)
	if err := sleep(ctx, d); err != nil {
		return core.ToolResult{}, fmt.Errorf("fetch news for %s: %w", topic, err)
	}

	var perm []int
	f.draw(func(r *rand.Rand) { perm = r.Perm(len(headlineTemplates)) })

	headlines := make([]string, 0, headlineCount)
	for _, i := range perm[:headlineCount] {
		headlines = append(headlines, fmt.Sprintf(headlineTemplates[i], topic))
	}

	return core.NewSuccessResult("news_api", map[string]any{
		"topic":          topic,
		"headlines":      headlines,
		"total_articles": f.intRange(50, 500),
		"trending_score": f.intRange(60, 100),
		"sentiment":      sentiments[f.intRange(0, len(sentiments)-1)],
	}, map[string]any{
		"fetch_time":    f.now(),
		"api_delay":     formatDelay(d),
		"sources_count": f.intRange(10, 50),
	}), nil
}

// NewsTool exposes News as fetch_news_data.
func (f *Feed) NewsTool() tool.Tool {
	return tool.NewFunctionTool(NewsToolName, "Fetches news headlines for a given topic",
		func(ctx context.Context, in NewsArgs) (core.ToolResult, error) {
			return f.News(ctx, in.Topic)
		},
	)
}
