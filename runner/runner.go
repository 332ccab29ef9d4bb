package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/hupe1980/agentpipe/core"
	"github.com/hupe1980/agentpipe/logging"
)

// ErrClosed is returned by Run after Close.
var ErrClosed = errors.New("runner closed")

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// MaxConcurrentRuns limits concurrent composite runs.
	MaxConcurrentRuns int
	// Logging services.
	Logger logging.Logger
}

// Runner coordinates composite execution: creates run contexts, limits
// concurrency and tracks in-flight runs. Public methods are safe for
// concurrent use.
type Runner struct {
	composite core.Composite
	sem       *semaphore.Weighted
	logger    logging.Logger

	activeRuns map[string]context.CancelFunc
	closed     bool
	mu         sync.Mutex
}

// New constructs a Runner with optional overrides.
func New(composite core.Composite, optFns ...func(o *Options)) (*Runner, error) {
	opts := Options{
		MaxConcurrentRuns: 10,
		Logger:            logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if composite == nil {
		return nil, core.NewConfigurationError("composite", "must not be nil")
	}

	if opts.MaxConcurrentRuns < 1 {
		return nil, core.NewConfigurationError("max_concurrent_runs", "must be at least 1")
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Runner{
		composite:  composite,
		sem:        semaphore.NewWeighted(int64(opts.MaxConcurrentRuns)),
		logger:     opts.Logger,
		activeRuns: make(map[string]context.CancelFunc),
	}, nil
}

// Composite returns the composite executed by this runner.
func (r *Runner) Composite() core.Composite { return r.composite }

// Run executes the composite synchronously for one input and returns the
// run id together with the composite's result.
func (r *Runner) Run(ctx context.Context, sessionID, input string) (string, *core.CompositeResult, error) {
	runID := core.NewRunID()

	if err := r.sem.Acquire(ctx, 1); err != nil {
		return runID, nil, fmt.Errorf("waiting for run slot: %w", err)
	}
	defer r.sem.Release(1)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := r.register(runID, cancel); err != nil {
		return runID, nil, err
	}
	defer r.unregister(runID)

	logger := r.logger
	if pl, ok := logger.(*logging.PipeLogger); ok {
		logger = pl.WithSession(sessionID, runID)
	}

	start := time.Now()
	logger.Info("run.start", "composite", r.composite.Name(), "session_id", sessionID, "run_id", runID)

	rc := core.NewRunContext(ctx, sessionID, runID, input, logger)

	res, err := r.composite.Run(rc)
	if err != nil {
		logger.Warn("run.aborted", "run_id", runID, "error", err.Error(), "duration_ms", time.Since(start).Milliseconds())
		return runID, nil, fmt.Errorf("run %s: %w", runID, err)
	}

	logger.Info("run.done", "run_id", runID, "state", string(res.State), "completed_steps", res.CompletedSteps, "duration_ms", time.Since(start).Milliseconds())

	return runID, res, nil
}

// Cancel cancels a running run by ID.
func (r *Runner) Cancel(runID string) error {
	r.mu.Lock()
	cancel, exists := r.activeRuns[runID]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("run %s not found", runID)
	}

	cancel()

	return nil
}

// ActiveRuns returns the number of in-flight runs.
func (r *Runner) ActiveRuns() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.activeRuns)
}

// Close cancels every in-flight run and rejects new ones. It is idempotent.
func (r *Runner) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true

	for id, cancel := range r.activeRuns {
		r.logger.Debug("run.cancel", "run_id", id)
		cancel()
	}
}

func (r *Runner) register(runID string, cancel context.CancelFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	r.activeRuns[runID] = cancel

	return nil
}

func (r *Runner) unregister(runID string) {
	r.mu.Lock()
	delete(r.activeRuns, runID)
	r.mu.Unlock()
}
