// Package tool implements the tool calling boundary that lets agents invoke
// structured capabilities with validated, typed arguments, consistent
// in-band error reporting and per-call logging.
package tool

import (
	"fmt"

	"github.com/hupe1980/agentpipe/core"
)

// Error codes attached to error results under Data["error_code"].
const (
	CodeValidation  = "VALIDATION_ERROR"
	CodeExecution   = "EXECUTION_ERROR"
	CodeTimeout     = "TIMEOUT"
	CodeUnknownTool = "UNKNOWN_TOOL"
)

// Tool defines the interface for a unit of work an Agent can call.
//
// Tool implementations should:
//   - Provide clear, descriptive snake_case names
//   - Report failures through a core.ToolResult with StatusError, never panic
//   - Be safe for concurrent use; parallel composites call tools from many goroutines
type Tool interface {
	// Name returns the unique identifier used as dispatch key.
	Name() string

	// Description returns a human-readable description of what this tool does.
	Description() string

	// Call executes the tool. args are decoded into the tool's typed input.
	Call(rc *core.RunContext, args map[string]any) core.ToolResult
}

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}

// Result converts the error into an in-band error result.
func (e *ToolError) Result() core.ToolResult {
	data := map[string]any{"error_code": e.Code, "tool": e.Tool}
	if e.Details != nil {
		data["details"] = e.Details
	}
	return core.NewErrorResult(e.Tool, e.Message, data)
}

// ErrorCode returns the error code of an error result, if any.
func ErrorCode(r core.ToolResult) string {
	code, _ := r.Data["error_code"].(string)
	return code
}
