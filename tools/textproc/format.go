package textproc

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/agentpipe/core"
	"github.com/hupe1980/agentpipe/tool"
)

// Tool names of the pipeline stages.
const (
	ExtractToolName  = "extract_data"
	ValidateToolName = "validate_data"
	FormatToolName   = "format_data"
)

// PipelineVersion is reported in every formatted result.
const PipelineVersion = "1.0"

// MsgCannotFormat is the error of format_data for a failed validation.
const MsgCannotFormat = "Cannot format invalid data"

// FormatArgs is the input of the format_data tool.
type FormatArgs struct {
	Validation core.ToolResult `mapstructure:"validation_result"`
}

// Format renders a validation result as the pipeline's final output.
func Format(validation core.ToolResult) core.ToolResult {
	if !validation.IsSuccess() {
		return core.NewErrorResult(FormatToolName, MsgCannotFormat, map[string]any{
			"original_error": validation,
		})
	}

	validated, _ := validation.Data["validated_data"].(map[string]any)
	score := toInt(validation.Data["quality_score"])
	isValid, _ := validation.Data["is_valid"].(bool)

	contentType := stringOr(validated["type"], "unknown")

	var summary string
	if isValid {
		summary = fmt.Sprintf("Successfully processed %s content with %d%% quality score.", stringOr(validated["type"], ContentGeneral), score)
	} else {
		summary = fmt.Sprintf("Processed content with quality issues (score: %d%%).", score)
	}

	errs, _ := validation.Data["validation_errors"].([]string)
	if errs == nil {
		errs = []string{}
	}

	keyElements, _ := validated["key_elements"].([]string)
	if keyElements == nil {
		keyElements = []string{}
	}

	return core.NewSuccessResult(FormatToolName, map[string]any{
		"processing_complete": true,
		"final_result": map[string]any{
			"content": map[string]any{
				"original_text": stringOr(validated["text"], ""),
				"content_type":  contentType,
				"key_elements":  keyElements,
				"length":        toInt(validated["length"]),
			},
			"quality": map[string]any{
				"score":    score,
				"is_valid": isValid,
				"grade":    Grade(score),
			},
			"metadata": map[string]any{
				"pipeline_version": PipelineVersion,
				"processing_steps": []string{"extraction", "validation", "formatting"},
			},
		},
		"summary":           summary,
		"validation_errors": errs,
	}, map[string]any{
		"processed_at": time.Now().Format(time.RFC3339Nano),
	})
}

// Grade maps a quality score to a letter: A from 75, B from 50, else C.
func Grade(score int) string {
	switch {
	case score >= 75:
		return "A"
	case score >= 50:
		return "B"
	default:
		return "C"
	}
}

// NewFormatTool exposes Format as the format_data tool.
func NewFormatTool() tool.Tool {
	return tool.NewFunctionTool(FormatToolName, "Formats validated data for final output",
		func(_ context.Context, in FormatArgs) (core.ToolResult, error) {
			return Format(in.Validation), nil
		},
	)
}

// Tools returns the three pipeline stages in execution order.
func Tools() []tool.Tool {
	return []tool.Tool{NewExtractTool(), NewValidateTool(), NewFormatTool()}
}

func stringOr(v any, def string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return def
}
