package agent

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/hupe1980/agentpipe/core"
	"github.com/hupe1980/agentpipe/logging"
)

var tracer = otel.Tracer("agentpipe/agent")

// BaseAgent bundles the identity shared by every agent. Embed it in concrete
// implementations.
type BaseAgent struct {
	name        string // Human-readable name, unique within a composite
	description string // Detailed description of agent's purpose
}

// NewBaseAgent constructs a BaseAgent with generated description (customizable via SetDescription).
func NewBaseAgent(name string) BaseAgent {
	return BaseAgent{
		name:        name,
		description: fmt.Sprintf("Agent %s", name),
	}
}

// Name returns the human-readable name for this agent.
func (b *BaseAgent) Name() string { return b.name }

// Description returns a detailed description of this agent's purpose.
func (b *BaseAgent) Description() string { return b.description }

// SetDescription updates the agent's description. Empty values are ignored.
func (b *BaseAgent) SetDescription(desc string) {
	if desc != "" {
		b.description = desc
	}
}

// checkComposition enforces the layout rules of a composite.
func checkComposition(composite string, children []core.Agent) error {
	if composite == "" {
		return core.NewConfigurationError("name", "composite name must not be empty")
	}

	if len(children) == 0 {
		return core.NewCompositionError(composite, core.ErrNoSubAgents, "")
	}

	names := make(map[string]struct{}, len(children))
	keys := make(map[string]string, len(children))

	for i, child := range children {
		if child == nil {
			return core.NewCompositionError(composite, core.ErrNoSubAgents, fmt.Sprintf("agent %d is nil", i+1))
		}

		if _, dup := names[child.Name()]; dup {
			return core.NewCompositionError(composite, core.ErrDuplicateAgentName, child.Name())
		}
		names[child.Name()] = struct{}{}

		key := child.OutputKey()
		if key == "" {
			return core.NewCompositionError(composite, core.ErrMissingOutputKey, child.Name())
		}

		if owner, dup := keys[key]; dup {
			return core.NewCompositionError(composite, core.ErrDuplicateOutputKey,
				fmt.Sprintf("%q used by %s and %s", key, owner, child.Name()))
		}
		keys[key] = child.Name()
	}

	return nil
}

// logCompositeRun reports the outcome of a composite run, using the richer
// PipeLogger helper when available.
func logCompositeRun(logger logging.Logger, composite, kind string, steps int, dur time.Duration, res *core.CompositeResult, err error) {
	success := err == nil && res != nil && !res.Failed()

	if pl, ok := logger.(*logging.PipeLogger); ok {
		pl.WithComponent(composite).LogCompositeRun(kind, steps, dur, success, err)
		return
	}

	args := []any{"composite", composite, "composite_type", kind, "step_count", steps, "duration", dur, "success", success}
	if err != nil {
		args = append(args, "error", err.Error())
	}

	if !success {
		logger.Warn("Composite run failed", args...)
		return
	}
	logger.Info("Composite run completed", args...)
}
