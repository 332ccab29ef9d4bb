package agent

import (
	"fmt"

	"github.com/hupe1980/agentpipe/core"
	"github.com/hupe1980/agentpipe/tool"
)

// ToolAgentOptions configures a ToolAgent instance.
//
// Use functional options with NewToolAgent to override defaults.
type ToolAgentOptions struct {
	Description string
	// Model names the model the stage is described for. It is informational;
	// dispatch never consults a model.
	Model       string
	Instruction string
	Tools       []tool.Tool
	// ToolName selects the tool to call. Defaults to the only tool when
	// exactly one is configured.
	ToolName  string
	OutputKey string
	// Input derives the tool arguments. Defaults to FromInput("input").
	Input Binder
}

// ToolAgent is a single pipeline stage. Each Invoke resolves the configured
// tool through an explicit dispatch table, applies it to arguments derived
// from the run context and stores the result under the output key.
type ToolAgent struct {
	BaseAgent
	model       string
	instruction string
	registry    *tool.Registry
	toolName    string
	outputKey   string
	input       Binder
}

// NewToolAgent creates a ToolAgent.
//
// It fails when the name or output key is empty or when two tools share a
// name. An unresolvable ToolName is not a construction error; Invoke reports
// it as an UNKNOWN_TOOL result.
func NewToolAgent(name string, optFns ...func(o *ToolAgentOptions)) (*ToolAgent, error) {
	opts := ToolAgentOptions{}

	for _, fn := range optFns {
		fn(&opts)
	}

	if name == "" {
		return nil, core.NewConfigurationError("name", "agent name must not be empty")
	}

	if opts.OutputKey == "" {
		return nil, fmt.Errorf("agent %s: %w", name, core.ErrMissingOutputKey)
	}

	registry, err := tool.NewRegistry(opts.Tools...)
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", name, err)
	}

	toolName := opts.ToolName
	if toolName == "" && registry.Len() == 1 {
		toolName = registry.Names()[0]
	}

	input := opts.Input
	if input == nil {
		input = FromInput("input")
	}

	a := &ToolAgent{
		BaseAgent:   NewBaseAgent(name),
		model:       opts.Model,
		instruction: opts.Instruction,
		registry:    registry,
		toolName:    toolName,
		outputKey:   opts.OutputKey,
		input:       input,
	}
	a.SetDescription(opts.Description)

	return a, nil
}

// OutputKey implements core.Agent.
func (a *ToolAgent) OutputKey() string { return a.outputKey }

// ToolName returns the dispatch key of the stage.
func (a *ToolAgent) ToolName() string { return a.toolName }

// Model returns the model identifier the stage was configured with.
func (a *ToolAgent) Model() string { return a.model }

// Instruction returns the stage instruction text.
func (a *ToolAgent) Instruction() string { return a.instruction }

// Invoke implements core.Agent.
func (a *ToolAgent) Invoke(rc *core.RunContext) core.ToolResult {
	logger := rc.Logger()

	var result core.ToolResult

	args, err := a.input.Bind(rc)
	if err != nil {
		logger.Warn("agent.bind_failed", "agent", a.Name(), "tool", a.toolName, "error", err.Error())
		result = core.NewErrorResult(a.Name(), fmt.Sprintf("agent %s could not bind input: %v", a.Name(), err), map[string]any{
			"agent": a.Name(),
			"tool":  a.toolName,
		})
	} else {
		logger.Debug("agent.invoke", "agent", a.Name(), "tool", a.toolName, "branch", rc.Branch)
		result = a.registry.Dispatch(rc, a.toolName, args)
	}

	rc.SetResult(a.outputKey, result)

	return result
}
