package tool

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/hupe1980/agentpipe/core"
	"github.com/hupe1980/agentpipe/logging"
)

// validate is shared by all function tools; validator caches struct metadata
// and is safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// FunctionToolOptions configures a FunctionTool.
type FunctionToolOptions struct {
	// Timeout bounds a single call. Zero means the caller's deadline applies.
	Timeout time.Duration
}

// FunctionTool is a generic adapter that exposes a plain Go function as a Tool.
//
// Responsibilities:
//   - Decodes the loosely typed argument map into the input type T (mapstructure)
//   - Validates T against its `validate` struct tags (validator/v10)
//   - Invokes the wrapped function with the run's context
//   - Normalizes failures into error results with consistent codes:
//     VALIDATION_ERROR  -> decode or struct validation failure
//     EXECUTION_ERROR   -> the function returned an error or panicked
//     TIMEOUT           -> the call exceeded its deadline
//     (custom codes preserved if the function returns *ToolError directly)
//
// A FunctionTool has no mutable state after construction and is safe for
// concurrent use by multiple goroutines.
type FunctionTool[T any] struct {
	name        string
	description string
	timeout     time.Duration
	fn          func(ctx context.Context, in T) (core.ToolResult, error)
}

// NewFunctionTool constructs a FunctionTool.
//
// Example:
//
//	type WeatherArgs struct {
//	  City string `mapstructure:"city" validate:"required"`
//	}
//
//	weather := NewFunctionTool("fetch_weather_data", "Fetch weather for a city",
//	  func(ctx context.Context, in WeatherArgs) (core.ToolResult, error) {
//	    return core.NewSuccessResult("weather_api", map[string]any{"city": in.City}, nil), nil
//	  },
//	)
func NewFunctionTool[T any](
	name, description string,
	fn func(ctx context.Context, in T) (core.ToolResult, error),
	optFns ...func(o *FunctionToolOptions),
) *FunctionTool[T] {
	opts := FunctionToolOptions{}
	for _, f := range optFns {
		f(&opts)
	}

	return &FunctionTool[T]{
		name:        name,
		description: description,
		timeout:     opts.Timeout,
		fn:          fn,
	}
}

// Name returns the unique tool name used for dispatch.
func (t *FunctionTool[T]) Name() string { return t.name }

// Description returns the short natural language description.
func (t *FunctionTool[T]) Description() string { return t.description }

// Call decodes and validates args then invokes the wrapped function. Every
// call is reported once through logToolCall with its outcome and duration.
func (t *FunctionTool[T]) Call(rc *core.RunContext, args map[string]any) (result core.ToolResult) {
	logger := rc.Logger()
	start := time.Now()

	logger.Debug("tool.call.start", "tool", t.name, "run_id", rc.RunID, "branch", rc.Branch)

	defer func() {
		if p := recover(); p != nil {
			result = NewToolError(t.name, fmt.Sprintf("tool panicked: %v", p), CodeExecution).Result()
		}
		logToolCall(logger, t.name, time.Since(start), result)
	}()

	in, err := t.decode(args)
	if err != nil {
		toolErr := NewToolError(t.name, fmt.Sprintf("parameter validation failed: %v", err), CodeValidation)
		toolErr.Details = validationDetails(err)

		return toolErr.Result()
	}

	ctx := rc.Context
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	res, err := t.fn(ctx, in)
	if err != nil {
		var toolErr *ToolError
		switch {
		case errors.As(err, &toolErr):
			// forwarded unchanged
		case errors.Is(err, context.DeadlineExceeded):
			toolErr = NewToolError(t.name, err.Error(), CodeTimeout)
		default:
			toolErr = NewToolError(t.name, err.Error(), CodeExecution)
		}

		return toolErr.Result()
	}

	if res.Source == "" {
		res.Source = t.name
	}

	return res.Clone()
}

// logToolCall reports a finished call, using the richer PipeLogger helper
// when available.
func logToolCall(logger logging.Logger, name string, dur time.Duration, res core.ToolResult) {
	success := res.IsSuccess()

	errMsg := res.Error
	if code := ErrorCode(res); code != "" && errMsg != "" {
		errMsg = code + ": " + errMsg
	}

	if pl, ok := logger.(*logging.PipeLogger); ok {
		pl.LogToolCall(name, dur, success, errMsg)
		return
	}

	args := []any{"tool_name", name, "duration", dur, "success", success}
	if errMsg != "" {
		args = append(args, "error", errMsg)
	}

	if !success {
		logger.Error("Tool execution failed", args...)
		return
	}
	logger.Info("Tool execution completed", args...)
}

func (t *FunctionTool[T]) decode(args map[string]any) (T, error) {
	var in T

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &in,
		ErrorUnused: true,
	})
	if err != nil {
		return in, err
	}

	if err := dec.Decode(args); err != nil {
		return in, err
	}

	if reflect.Indirect(reflect.ValueOf(&in)).Kind() == reflect.Struct {
		if err := validate.Struct(&in); err != nil {
			return in, err
		}
	}

	return in, nil
}

// validationDetails flattens validator errors into "Field:tag" strings.
func validationDetails(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, fe.Field()+":"+fe.Tag())
	}

	return details
}

// summarizeArgs renders argument keys for log lines.
func summarizeArgs(args map[string]any) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	return strings.Join(keys, ",")
}
