package textproc

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/agentpipe/core"
	"github.com/hupe1980/agentpipe/tool"
)

// Quality rule thresholds.
const (
	minTextLength  = 10
	minWordCount   = 5
	maxWordCount   = 1000
	rulePoints     = 25
	passingQuality = 50
)

// Validation messages.
const (
	MsgNoExtractedData = "No extracted_data found"
	MsgTooShort        = "Text too short (minimum 10 characters)"
	MsgNoKeyElements   = "No key elements identified"
	MsgGenericType     = "Generic content type"
)

// ValidateArgs is the input of the validate_data tool.
type ValidateArgs struct {
	Extraction core.ToolResult `mapstructure:"extracted_data"`
}

// Validate scores an extraction result against four rules worth 25 points
// each: minimum length, presence of key elements, a non-generic content type
// and a reasonable word count. The extraction is valid when it scores at
// least 50 and meets the minimum length.
func Validate(extraction core.ToolResult) core.ToolResult {
	meta := map[string]any{"validation_timestamp": time.Now().Format(time.RFC3339Nano)}

	raw, ok := extraction.Data["extracted_data"]
	data, isMap := raw.(map[string]any)
	if !ok || !isMap {
		r := core.NewErrorResult(ValidateToolName, MsgNoExtractedData, map[string]any{
			"is_valid":          false,
			"quality_score":     0,
			"validation_errors": []string{MsgNoExtractedData},
		})
		r.Metadata = mergeMeta(r.Metadata, meta)
		return r
	}

	score := 0
	errs := []string{}
	lengthOK := false

	if toInt(data["length"]) >= minTextLength {
		score += rulePoints
		lengthOK = true
	} else {
		errs = append(errs, MsgTooShort)
	}

	if sliceLen(data["key_elements"]) > 0 {
		score += rulePoints
	} else {
		errs = append(errs, MsgNoKeyElements)
	}

	if t, _ := data["type"].(string); t != ContentGeneral {
		score += rulePoints
	} else {
		errs = append(errs, MsgGenericType)
	}

	wordCount := toInt(extraction.Data["word_count"])
	if wordCount >= minWordCount && wordCount <= maxWordCount {
		score += rulePoints
	} else {
		errs = append(errs, fmt.Sprintf("Word count out of range: %d", wordCount))
	}

	return core.NewSuccessResult(ValidateToolName, map[string]any{
		"is_valid":            score >= passingQuality && lengthOK,
		"quality_score":       score,
		"validation_errors":   errs,
		"validated_data":      data,
		"original_extraction": extraction,
	}, meta)
}

// NewValidateTool exposes Validate as the validate_data tool.
func NewValidateTool() tool.Tool {
	return tool.NewFunctionTool(ValidateToolName, "Validates extracted data against quality rules",
		func(_ context.Context, in ValidateArgs) (core.ToolResult, error) {
			return Validate(in.Extraction), nil
		},
	)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func sliceLen(v any) int {
	switch s := v.(type) {
	case []string:
		return len(s)
	case []any:
		return len(s)
	default:
		return 0
	}
}

func mergeMeta(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = map[string]any{}
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
