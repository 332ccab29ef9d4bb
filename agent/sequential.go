package agent

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/agentpipe/core"
)

// SequentialAgentOptions configures a SequentialAgent.
type SequentialAgentOptions struct {
	Description string
}

// SequentialAgent coordinates the execution of multiple child agents in sequence.
//
// All children share the caller's RunContext, so each stage sees the results
// committed by the stages before it. A stage starts only after the previous
// one committed a success result; the first error result stops the run.
// Failed steps are not retried.
//
// State machine:
//
//	pending → running step 1 → … → running step N → completed
//	                  ↓                    ↓
//	              failed at 1    …     failed at N
type SequentialAgent struct {
	BaseAgent
	children []core.Agent
}

// NewSequentialAgent creates a new sequential execution coordinator.
//
// Returns a *core.CompositionError if children is empty or if two children
// share a name or an output key.
func NewSequentialAgent(name string, children []core.Agent, optFns ...func(o *SequentialAgentOptions)) (*SequentialAgent, error) {
	opts := SequentialAgentOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	if err := checkComposition(name, children); err != nil {
		return nil, err
	}

	s := &SequentialAgent{
		BaseAgent: NewBaseAgent(name),
		children:  append([]core.Agent(nil), children...),
	}
	s.SetDescription(opts.Description)

	return s, nil
}

// SubAgents returns a copy of the configured stages.
func (s *SequentialAgent) SubAgents() []core.Agent {
	return append([]core.Agent(nil), s.children...)
}

// Run implements core.Composite.
//
// On an error result at step i (1-based) the returned result holds the
// results of steps 1..i, CompletedSteps is i-1 and Failures names step i.
// If rc is cancelled the run stops and the context error is returned
// without a result.
func (s *SequentialAgent) Run(rc *core.RunContext) (res *core.CompositeResult, err error) {
	logger := rc.Logger()
	start := time.Now()

	_, span := tracer.Start(rc.Context, "sequential "+s.Name(), trace.WithAttributes(
		attribute.String("agentpipe.composite", s.Name()),
		attribute.Int("agentpipe.steps", len(s.children)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else if res.Failed() {
			span.SetStatus(codes.Error, "step failed")
		}
		span.End()
		logCompositeRun(logger, s.Name(), core.KindSequential, len(s.children), time.Since(start), res, err)
	}()

	result := core.NewCompositeResult(s.Name(), core.KindSequential)
	result.State = core.StateRunning

	for i, child := range s.children {
		step := i + 1

		if err := rc.Err(); err != nil {
			logger.Warn("composite.cancelled", "composite", s.Name(), "step", step, "completed_steps", result.CompletedSteps)
			return nil, fmt.Errorf("sequential %s cancelled before step %d: %w", s.Name(), step, err)
		}

		logger.Debug("composite.step.start", "composite", s.Name(), "step", step, "agent", child.Name())

		r := child.Invoke(rc)

		if err := rc.Err(); err != nil {
			logger.Warn("composite.cancelled", "composite", s.Name(), "step", step, "completed_steps", result.CompletedSteps)
			return nil, fmt.Errorf("sequential %s cancelled during step %d: %w", s.Name(), step, err)
		}

		result.Set(child.OutputKey(), r)

		if !r.IsSuccess() {
			result.State = core.StateFailed
			result.Failures = append(result.Failures, core.StepFailure{
				Index:     step,
				Agent:     child.Name(),
				OutputKey: child.OutputKey(),
				Message:   r.Error,
			})

			logger.Warn("composite.step.failed", "composite", s.Name(), "step", step, "agent", child.Name(), "error", r.Error)

			return result, nil
		}

		result.CompletedSteps = step
	}

	result.State = core.StateCompleted

	return result, nil
}
