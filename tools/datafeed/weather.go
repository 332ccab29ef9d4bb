package datafeed

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentpipe/core"
	"github.com/hupe1980/agentpipe/tool"
)

var conditions = []string{"Sunny", "Cloudy", "Rainy", "Partly Cloudy", "Snowy", "Foggy"}

// WeatherArgs is the input of fetch_weather_data.
type WeatherArgs struct {
	City string `mapstructure:"city" validate:"required,max=100"`
}

// Weather returns mock weather conditions for a city.
func (f *Feed) Weather(ctx context.Context, city string) (core.ToolResult, error) {
	d := f.delay(f.opts.WeatherLatency)
	if err := sleep(ctx, d); err != nil {
		return core.ToolResult{}, fmt.Errorf("fetch weather for %s: %w", city, err)
	}

	condition := conditions[f.intRange(0, len(conditions)-1)]

	return core.NewSuccessResult("weather_api", map[string]any{
		"city":        city,
		"temperature": fmt.Sprintf("%d°C", f.intRange(-5, 35)),
		"condition":   condition,
		"humidity":    fmt.Sprintf("%d%%", f.intRange(30, 90)),
		"wind_speed":  fmt.Sprintf("%d km/h", f.intRange(0, 25)),
		"visibility":  fmt.Sprintf("%d km", f.intRange(5, 20)),
	}, map[string]any{
		"fetch_time":     f.now(),
		"api_delay":      formatDelay(d),
		"data_freshness": "real-time",
	}), nil
}

// WeatherTool exposes Weather as fetch_weather_data.
func (f *Feed) WeatherTool() tool.Tool {
	return tool.NewFunctionTool(WeatherToolName, "Fetches weather data for a given city",
		func(ctx context.Context, in WeatherArgs) (core.ToolResult, error) {
			return f.Weather(ctx, in.City)
		},
	)
}
