package core

import "time"

// Status reports whether a tool produced a usable result.
type Status string

const (
	// StatusSuccess marks a result whose Data can be consumed downstream.
	StatusSuccess Status = "success"
	// StatusError marks an in-band failure; Error carries the message.
	StatusError Status = "error"
)

// ToolResult is the structured record produced by a single tool invocation.
//
// Results are values: constructors copy the supplied maps and every accessor
// hands out copies, so a ToolResult cannot be changed once produced.
// Failures are reported in-band (Status == StatusError) instead of as Go
// errors so that a composite can decide how to react to them.
type ToolResult struct {
	Status   Status         `json:"status"`
	Source   string         `json:"source"`
	Data     map[string]any `json:"data,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// NewSuccessResult builds a success result for the given source.
func NewSuccessResult(source string, data, metadata map[string]any) ToolResult {
	return ToolResult{
		Status:   StatusSuccess,
		Source:   source,
		Data:     cloneMap(data),
		Metadata: cloneMap(metadata),
	}
}

// NewErrorResult builds an error result. Data may carry diagnostic fields
// (error codes, the rejected input) and may be nil.
func NewErrorResult(source, message string, data map[string]any) ToolResult {
	return ToolResult{
		Status:   StatusError,
		Source:   source,
		Data:     cloneMap(data),
		Metadata: map[string]any{"timestamp": time.Now().UTC().Format(time.RFC3339Nano)},
		Error:    message,
	}
}

// IsSuccess reports whether the result has StatusSuccess.
func (r ToolResult) IsSuccess() bool { return r.Status == StatusSuccess }

// Get returns a copy of a top-level Data field.
func (r ToolResult) Get(key string) (any, bool) {
	v, ok := r.Data[key]
	if !ok {
		return nil, false
	}
	return cloneValue(v), true
}

// Clone returns a deep copy of the result.
func (r ToolResult) Clone() ToolResult {
	return ToolResult{
		Status:   r.Status,
		Source:   r.Source,
		Data:     cloneMap(r.Data),
		Metadata: cloneMap(r.Metadata),
		Error:    r.Error,
	}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	case ToolResult:
		return t.Clone()
	default:
		return v
	}
}
