package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/agentpipe/core"
	"github.com/hupe1980/agentpipe/tool"
)

// ParallelAgentOptions configures a ParallelAgent.
type ParallelAgentOptions struct {
	Description string
	// BranchTimeout bounds each branch. An expired branch yields a TIMEOUT
	// error result without delaying the others. Zero disables the limit.
	BranchTimeout time.Duration
}

// ParallelAgent coordinates the concurrent execution of multiple child agents.
//
// Each child runs in its own goroutine on a cloned RunContext carrying a
// snapshot of the parent's results, an isolated result buffer and the
// branch label "<parent>.<child>". Results are merged after every branch
// resolved, in configured child order, so completion order never affects
// the merged mapping.
type ParallelAgent struct {
	BaseAgent
	children      []core.Agent
	branchTimeout time.Duration
}

// NewParallelAgent creates a new parallel execution coordinator.
//
// Returns a *core.CompositionError if children is empty or if two children
// share a name or an output key.
func NewParallelAgent(name string, children []core.Agent, optFns ...func(o *ParallelAgentOptions)) (*ParallelAgent, error) {
	opts := ParallelAgentOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	if err := checkComposition(name, children); err != nil {
		return nil, err
	}

	if opts.BranchTimeout < 0 {
		return nil, core.NewConfigurationError("branch_timeout", "must not be negative")
	}

	p := &ParallelAgent{
		BaseAgent:     NewBaseAgent(name),
		children:      append([]core.Agent(nil), children...),
		branchTimeout: opts.BranchTimeout,
	}
	p.SetDescription(opts.Description)

	return p, nil
}

// SubAgents returns a copy of the configured branches.
func (p *ParallelAgent) SubAgents() []core.Agent {
	return append([]core.Agent(nil), p.children...)
}

// Run implements core.Composite.
//
// A failing branch is recorded in Failures while the other branches keep
// their results. If rc is cancelled before the join completes, the pending
// branches are abandoned and Run returns the context error without a
// partial result. Merged results are also committed to rc.
func (p *ParallelAgent) Run(rc *core.RunContext) (res *core.CompositeResult, err error) {
	logger := rc.Logger()
	start := time.Now()

	ctx, span := tracer.Start(rc.Context, "parallel "+p.Name(), trace.WithAttributes(
		attribute.String("agentpipe.composite", p.Name()),
		attribute.Int("agentpipe.branches", len(p.children)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else if res.Failed() {
			span.SetStatus(codes.Error, "branch failed")
		}
		span.End()
		logCompositeRun(logger, p.Name(), core.KindParallel, len(p.children), time.Since(start), res, err)
	}()

	results := make([]core.ToolResult, len(p.children))

	var g errgroup.Group
	for i, child := range p.children {
		g.Go(func() error {
			results[i] = p.runBranch(ctx, rc, child)
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
	case <-done:
	}

	if err := ctx.Err(); err != nil {
		logger.Warn("composite.cancelled", "composite", p.Name(), "branches", len(p.children))
		return nil, fmt.Errorf("parallel %s cancelled before join: %w", p.Name(), err)
	}

	result := core.NewCompositeResult(p.Name(), core.KindParallel)
	result.State = core.StateCompleted

	for i, child := range p.children {
		r := results[i]
		result.Set(child.OutputKey(), r)
		rc.SetResult(child.OutputKey(), r)

		if !r.IsSuccess() {
			result.State = core.StateFailed
			result.Failures = append(result.Failures, core.StepFailure{
				Index:     i + 1,
				Agent:     child.Name(),
				OutputKey: child.OutputKey(),
				Message:   r.Error,
			})
			logger.Warn("composite.branch.failed", "composite", p.Name(), "agent", child.Name(), "error", r.Error)
			continue
		}

		result.CompletedSteps++
	}

	return result, nil
}

// runBranch invokes child on an isolated clone of parent.
func (p *ParallelAgent) runBranch(ctx context.Context, parent *core.RunContext, child core.Agent) core.ToolResult {
	branchPath := buildBranchPath(parent.Branch, p.Name()+"."+child.Name())

	bctx, span := tracer.Start(ctx, "branch "+child.Name(), trace.WithAttributes(
		attribute.String("agentpipe.branch", branchPath),
	))
	defer span.End()

	branch := parent.WithBranch(branchPath)

	if p.branchTimeout <= 0 {
		branch.Context = bctx
		return child.Invoke(branch)
	}

	bctx, cancel := context.WithTimeout(bctx, p.branchTimeout)
	defer cancel()
	branch.Context = bctx

	resCh := make(chan core.ToolResult, 1)
	go func() { resCh <- child.Invoke(branch) }()

	select {
	case r := <-resCh:
		return r
	case <-bctx.Done():
		if errors.Is(bctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			branch.Logger().Warn("composite.branch.timeout", "composite", p.Name(), "agent", child.Name(), "timeout", p.branchTimeout)
			span.SetStatus(codes.Error, "timeout")
		}
		toolErr := tool.NewToolError(child.Name(), fmt.Sprintf("branch %s timed out after %s", branchPath, p.branchTimeout), tool.CodeTimeout)
		return toolErr.Result()
	}
}
