package datafeed

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/agentpipe/core"
	"github.com/hupe1980/agentpipe/tool"
)

// StockArgs is the input of fetch_stock_data.
type StockArgs struct {
	Symbol string `mapstructure:"symbol" validate:"required,max=10"`
}

// Stock returns a mock quote for a ticker symbol. The symbol is reported
// upper-cased.
func (f *Feed) Stock(ctx context.Context, symbol string) (core.ToolResult, error) {
	symbol = strings.ToUpper(symbol)

	d := f.delay(f.opts.StockLatency)
	if err := sleep(ctx, d); err != nil {
		return core.ToolResult{}, fmt.Errorf("fetch stock %s: %w", symbol, err)
	}

	price := f.floatRange(50, 500)
	change := f.floatRange(-20, 20)

	status := "closed"
	if f.intRange(0, 1) == 1 {
		status = "open"
	}

	return core.NewSuccessResult("financial_api", map[string]any{
		"symbol":         symbol,
		"current_price":  fmt.Sprintf("$%.2f", price),
		"change":         fmt.Sprintf("%+.2f", change),
		"change_percent": fmt.Sprintf("%+.2f%%", change/price*100),
		"volume":         groupThousands(f.intRange(100_000, 10_000_000)),
		"market_cap":     fmt.Sprintf("$%dB", f.intRange(1, 100)),
		"pe_ratio":       fmt.Sprintf("%.1f", f.floatRange(10, 30)),
	}, map[string]any{
		"fetch_time":    f.now(),
		"api_delay":     formatDelay(d),
		"market_status": status,
	}), nil
}

// StockTool exposes Stock as fetch_stock_data.
func (f *Feed) StockTool() tool.Tool {
	return tool.NewFunctionTool(StockToolName, "Fetches stock market data for a given symbol",
		func(ctx context.Context, in StockArgs) (core.ToolResult, error) {
			return f.Stock(ctx, in.Symbol)
		},
	)
}
