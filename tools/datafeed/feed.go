package datafeed

import (
	"context"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/hupe1980/agentpipe/tool"
)

// Tool names.
const (
	WeatherToolName = "fetch_weather_data"
	NewsToolName    = "fetch_news_data"
	StockToolName   = "fetch_stock_data"
)

// Latency is an inclusive range a simulated delay is drawn from.
type Latency struct {
	Min time.Duration
	Max time.Duration
}

// FeedOptions configures a Feed.
type FeedOptions struct {
	// Rand supplies all randomness. Defaults to a time-seeded PCG source.
	Rand *rand.Rand

	WeatherLatency Latency
	NewsLatency    Latency
	StockLatency   Latency

	// Now stamps fetch_time. Defaults to time.Now.
	Now func() time.Time
}

// Feed owns the random source and latency configuration shared by the
// three fetch tools. It is safe for concurrent use.
type Feed struct {
	mu   sync.Mutex
	rng  *rand.Rand
	opts FeedOptions
}

// New creates a Feed with the default latency ranges.
func New(optFns ...func(o *FeedOptions)) *Feed {
	opts := FeedOptions{
		WeatherLatency: Latency{Min: 800 * time.Millisecond, Max: 2 * time.Second},
		NewsLatency:    Latency{Min: time.Second, Max: 2500 * time.Millisecond},
		StockLatency:   Latency{Min: 500 * time.Millisecond, Max: 1800 * time.Millisecond},
		Now:            time.Now,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Rand == nil {
		seed := uint64(time.Now().UnixNano())
		opts.Rand = rand.New(rand.NewPCG(seed, seed>>1))
	}

	return &Feed{rng: opts.Rand, opts: opts}
}

// WithSeed makes a Feed deterministic.
func WithSeed(seed uint64) func(o *FeedOptions) {
	return func(o *FeedOptions) {
		o.Rand = rand.New(rand.NewPCG(seed, seed))
	}
}

// WithoutLatency disables the simulated delays.
func WithoutLatency() func(o *FeedOptions) {
	return func(o *FeedOptions) {
		o.WeatherLatency = Latency{}
		o.NewsLatency = Latency{}
		o.StockLatency = Latency{}
	}
}

// Tools returns the weather, news and stock tools bound to this feed.
func (f *Feed) Tools() []tool.Tool {
	return []tool.Tool{f.WeatherTool(), f.NewsTool(), f.StockTool()}
}

// draw runs fn with exclusive access to the random source.
func (f *Feed) draw(fn func(r *rand.Rand)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f.rng)
}

func (f *Feed) intRange(lo, hi int) int {
	var n int
	f.draw(func(r *rand.Rand) { n = lo + r.IntN(hi-lo+1) })
	return n
}

func (f *Feed) floatRange(lo, hi float64) float64 {
	var x float64
	f.draw(func(r *rand.Rand) { x = lo + r.Float64()*(hi-lo) })
	return x
}

func (f *Feed) delay(l Latency) time.Duration {
	if l.Max <= l.Min {
		return l.Min
	}
	var d time.Duration
	f.draw(func(r *rand.Rand) { d = l.Min + time.Duration(r.Int64N(int64(l.Max-l.Min)+1)) })
	return d
}

func (f *Feed) now() string {
	return f.opts.Now().Format(time.RFC3339Nano)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func formatDelay(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 2, 64) + "s"
}

// groupThousands renders n with comma separators.
func groupThousands(n int) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}
