// Package textproc provides the three stages of the sample data processing
// pipeline: extract_data pulls entities, numbers and keywords out of raw
// text, validate_data scores the extraction against four quality rules and
// format_data renders the validated extraction as a graded final result.
//
// All stages are deterministic apart from the timestamps recorded in
// ToolResult.Metadata.
package textproc
