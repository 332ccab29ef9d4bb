package samples

import (
	"strings"

	"github.com/hupe1980/agentpipe/agent"
	"github.com/hupe1980/agentpipe/core"
	"github.com/hupe1980/agentpipe/tool"
	"github.com/hupe1980/agentpipe/tools/textproc"
)

// Names and output keys of the data processing pipeline.
const (
	PipelineName = "data_processing_pipeline"

	ExtractorName = "data_extractor"
	ValidatorName = "data_validator"
	FormatterName = "data_formatter"

	ExtractionKey = "extraction_result"
	ValidationKey = "validation_result"
	FinalKey      = "final_result"
)

const queryPrefix = "process this data:"

// PipelineInputs are the predefined texts run through the pipeline. The
// fourth one is short enough to collect validation errors.
var PipelineInputs = []string{
	"Customer feedback indicates high satisfaction with our new product launch.",
	"Sales revenue increased by 25% this quarter compared to last year.",
	"The development team successfully delivered the new feature on schedule.",
	"Short text",
	"Our business strategy focuses on customer-centric product development and innovation.",
}

// PipelineOptions configures NewDataPipeline.
type PipelineOptions struct {
	// Model is recorded on every stage.
	Model string
}

// PipelineQuery wraps raw data the way interactive users phrase requests.
func PipelineQuery(data string) string {
	return "Process this data: " + data
}

// StripQueryPrefix removes a leading "Process this data:" (any case) and
// surrounding whitespace. Other queries are returned trimmed.
func StripQueryPrefix(q string) string {
	q = strings.TrimSpace(q)
	if len(q) >= len(queryPrefix) && strings.EqualFold(q[:len(queryPrefix)], queryPrefix) {
		q = strings.TrimSpace(q[len(queryPrefix):])
	}
	return q
}

// PipelineAgents returns the extractor, validator and formatter stages in
// pipeline order.
func PipelineAgents(optFns ...func(o *PipelineOptions)) ([]core.Agent, error) {
	opts := PipelineOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	extractor, err := agent.NewToolAgent(ExtractorName, func(o *agent.ToolAgentOptions) {
		o.Description = "Extracts structured data from raw text input"
		o.Model = opts.Model
		o.Instruction = "Call extract_data with the text supplied by the user and return the extraction result."
		o.Tools = []tool.Tool{textproc.NewExtractTool()}
		o.OutputKey = ExtractionKey
		o.Input = agent.BindFunc(func(rc *core.RunContext) (map[string]any, error) {
			return map[string]any{"input_text": StripQueryPrefix(rc.Input)}, nil
		})
	})
	if err != nil {
		return nil, err
	}

	validator, err := agent.NewToolAgent(ValidatorName, func(o *agent.ToolAgentOptions) {
		o.Description = "Validates extracted data against quality rules"
		o.Model = opts.Model
		o.Instruction = "Call validate_data with the extraction result of the previous step."
		o.Tools = []tool.Tool{textproc.NewValidateTool()}
		o.OutputKey = ValidationKey
		o.Input = agent.FromResult(ExtractionKey, "extracted_data")
	})
	if err != nil {
		return nil, err
	}

	formatter, err := agent.NewToolAgent(FormatterName, func(o *agent.ToolAgentOptions) {
		o.Description = "Formats validated data for final output"
		o.Model = opts.Model
		o.Instruction = "Call format_data with the validation result of the previous step."
		o.Tools = []tool.Tool{textproc.NewFormatTool()}
		o.OutputKey = FinalKey
		o.Input = agent.FromResult(ValidationKey, "validation_result")
	})
	if err != nil {
		return nil, err
	}

	return []core.Agent{extractor, validator, formatter}, nil
}

// NewDataPipeline builds the sequential extract, validate, format pipeline.
func NewDataPipeline(optFns ...func(o *PipelineOptions)) (*agent.SequentialAgent, error) {
	agents, err := PipelineAgents(optFns...)
	if err != nil {
		return nil, err
	}

	return agent.NewSequentialAgent(PipelineName, agents, func(o *agent.SequentialAgentOptions) {
		o.Description = "Processes data through extraction, validation, and formatting steps"
	})
}
