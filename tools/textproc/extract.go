package textproc

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/hupe1980/agentpipe/core"
	"github.com/hupe1980/agentpipe/tool"
)

// Content types assigned by Extract.
const (
	ContentGeneral          = "general"
	ContentBusiness         = "business"
	ContentCustomerFeedback = "customer_feedback"
	ContentProduct          = "product"
)

const (
	maxEntities = 5
	maxKeywords = 10
	// keywords longer than this many runes qualify
	keywordMinLen = 4
	trimChars     = ".,!?"
)

var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// domainTerms is checked in order; the first list with a hit wins.
var domainTerms = []struct {
	contentType string
	terms       []string
}{
	{ContentBusiness, []string{"sales", "revenue", "profit", "business"}},
	{ContentCustomerFeedback, []string{"customer", "feedback", "review", "satisfaction"}},
	{ContentProduct, []string{"product", "launch", "feature", "development"}},
}

// ExtractArgs is the input of the extract_data tool.
type ExtractArgs struct {
	InputText string `mapstructure:"input_text" validate:"max=100000"`
}

// Extract derives structured data from raw text.
func Extract(text string) core.ToolResult {
	words := strings.Fields(text)
	charCount := utf8.RuneCountInString(text)

	var entities, keywords []string
	for _, w := range words {
		if isCapitalized(w) {
			entities = append(entities, strings.Trim(w, trimChars))
		}
		if utf8.RuneCountInString(w) > keywordMinLen {
			keywords = append(keywords, strings.ToLower(strings.Trim(w, trimChars)))
		}
	}

	numbers := numberPattern.FindAllString(text, -1)
	if numbers == nil {
		numbers = []string{}
	}

	contentType := classify(text)

	keyElements := make([]string, 0, len(entities)+3)
	keyElements = append(keyElements, entities...)
	keyElements = append(keyElements, head(keywords, 3)...)

	return core.NewSuccessResult(ExtractToolName, map[string]any{
		"original_text":   text,
		"word_count":      len(words),
		"character_count": charCount,
		"entities":        head(entities, maxEntities),
		"numbers":         numbers,
		"keywords":        head(keywords, maxKeywords),
		"content_type":    contentType,
		"extracted_data": map[string]any{
			"text":         text,
			"length":       charCount,
			"type":         contentType,
			"key_elements": keyElements,
		},
	}, map[string]any{
		"extraction_timestamp": time.Now().Format(time.RFC3339Nano),
	})
}

// NewExtractTool exposes Extract as the extract_data tool.
func NewExtractTool() tool.Tool {
	return tool.NewFunctionTool(ExtractToolName, "Extracts structured data from raw text input",
		func(_ context.Context, in ExtractArgs) (core.ToolResult, error) {
			return Extract(in.InputText), nil
		},
	)
}

func isCapitalized(w string) bool {
	r, _ := utf8.DecodeRuneInString(w)
	return unicode.IsUpper(r) && utf8.RuneCountInString(w) > 1
}

func classify(text string) string {
	lower := strings.ToLower(text)
	for _, dt := range domainTerms {
		for _, term := range dt.terms {
			if strings.Contains(lower, term) {
				return dt.contentType
			}
		}
	}
	return ContentGeneral
}

// head returns at most n leading elements, never nil.
func head(s []string, n int) []string {
	if len(s) > n {
		s = s[:n]
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
