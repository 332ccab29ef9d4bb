package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/hupe1980/agentpipe/core"
	"github.com/hupe1980/agentpipe/logging"
	"github.com/hupe1980/agentpipe/render"
	"github.com/hupe1980/agentpipe/runner"
)

// Options configures a Manager.
type Options struct {
	AppName string
	UserID  string
	// SessionID defaults to a random UUID.
	SessionID string
	// Store defaults to a fresh InMemoryStore.
	Store core.SessionStore
	// Renderer defaults to a JSONRenderer.
	Renderer render.Renderer
	// Reports archives every rendering under its run id. Nil disables
	// archiving.
	Reports           core.ReportStore
	MaxConcurrentRuns int
	Logger            logging.Logger
}

// Info describes the session owned by a Manager.
type Info struct {
	AppName   string `json:"app_name"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Composite string `json:"composite"`
	Turns     int    `json:"turns"`
}

// Manager owns one session and dispatches queries to one composite. It is
// safe for concurrent use; every query runs with its own run id.
//
// The session is created on first use and removed by Close. After Close
// every query fails with core.ErrSessionClosed.
type Manager struct {
	appName   string
	userID    string
	sessionID string

	store    core.SessionStore
	reports  core.ReportStore
	renderer render.Renderer
	runner   *runner.Runner
	logger   logging.Logger

	createOnce sync.Once
	createErr  error
	closed     atomic.Bool
}

// NewManager validates the options and builds a Manager. No session exists
// until the first query.
func NewManager(composite core.Composite, optFns ...func(o *Options)) (*Manager, error) {
	opts := Options{
		AppName:           "agentpipe",
		UserID:            "default_user",
		MaxConcurrentRuns: 10,
		Logger:            logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if composite == nil {
		return nil, core.NewConfigurationError("composite", "must not be nil")
	}
	if opts.AppName == "" {
		return nil, core.NewConfigurationError("app_name", "must not be empty")
	}
	if opts.UserID == "" {
		return nil, core.NewConfigurationError("user_id", "must not be empty")
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Store == nil {
		opts.Store = NewInMemoryStore()
	}
	if opts.Renderer == nil {
		opts.Renderer = render.NewJSONRenderer()
	}
	if opts.SessionID == "" {
		opts.SessionID = core.NewID()
	}

	r, err := runner.New(composite, func(o *runner.Options) {
		o.MaxConcurrentRuns = opts.MaxConcurrentRuns
		o.Logger = opts.Logger
	})
	if err != nil {
		return nil, err
	}

	return &Manager{
		appName:   opts.AppName,
		userID:    opts.UserID,
		sessionID: opts.SessionID,
		store:     opts.Store,
		reports:   opts.Reports,
		renderer:  opts.Renderer,
		runner:    r,
		logger:    opts.Logger,
	}, nil
}

// SessionID returns the id of the managed session.
func (m *Manager) SessionID() string { return m.sessionID }

// RunQuery runs text through the composite, records the turn and returns
// the rendered result. Tool failures are part of the rendering; an error is
// returned only for cancellation, teardown or rendering failures.
func (m *Manager) RunQuery(ctx context.Context, text string) (string, error) {
	turn, err := m.execute(ctx, text, true)
	if err != nil {
		return "", err
	}
	return turn.Rendered, nil
}

// Run runs text through the composite, records the turn and returns the raw
// composite result.
func (m *Manager) Run(ctx context.Context, text string) (*core.CompositeResult, error) {
	turn, err := m.execute(ctx, text, false)
	if err != nil {
		return nil, err
	}
	return turn.Result, nil
}

func (m *Manager) execute(ctx context.Context, text string, withRendering bool) (core.Turn, error) {
	if m.closed.Load() {
		return core.Turn{}, core.ErrSessionClosed
	}

	if err := m.ensureSession(); err != nil {
		return core.Turn{}, err
	}

	runID, res, err := m.runner.Run(ctx, m.sessionID, text)
	turn := core.Turn{RunID: runID, Query: text, Result: res, Timestamp: time.Now()}

	if err != nil {
		if errors.Is(err, runner.ErrClosed) || m.closed.Load() {
			return core.Turn{}, fmt.Errorf("%w: %w", core.ErrSessionClosed, err)
		}
		turn.Error = err.Error()
		m.appendTurn(turn)
		return core.Turn{}, err
	}

	if withRendering {
		rendered, rerr := m.renderer.Render(ctx, res)
		if rerr != nil {
			turn.Error = rerr.Error()
			m.appendTurn(turn)
			return core.Turn{}, fmt.Errorf("render run %s: %w", runID, rerr)
		}
		turn.Rendered = rendered
		m.archive(runID, rendered)
	}

	m.appendTurn(turn)

	return turn, nil
}

func (m *Manager) archive(runID, rendered string) {
	if m.reports == nil {
		return
	}
	if err := m.reports.Save(m.sessionID, runID, []byte(rendered)); err != nil {
		m.logger.Warn("session.archive_failed", "session_id", m.sessionID, "run_id", runID, "error", err.Error())
	}
}

func (m *Manager) ensureSession() error {
	m.createOnce.Do(func() {
		if _, err := m.store.Create(m.appName, m.userID, m.sessionID); err != nil {
			m.createErr = fmt.Errorf("create session %s: %w", m.sessionID, err)
			return
		}
		m.logger.Info("session.created", "app_name", m.appName, "user_id", m.userID, "session_id", m.sessionID)
	})
	return m.createErr
}

func (m *Manager) appendTurn(turn core.Turn) {
	if err := m.store.AppendTurn(m.sessionID, turn); err != nil && !m.closed.Load() {
		m.logger.Warn("session.append_failed", "session_id", m.sessionID, "run_id", turn.RunID, "error", err.Error())
	}
}

// Session returns a snapshot of the managed session, creating it if needed.
func (m *Manager) Session() (*core.Session, error) {
	if m.closed.Load() {
		return nil, core.ErrSessionClosed
	}
	if err := m.ensureSession(); err != nil {
		return nil, err
	}
	return m.store.Get(m.sessionID)
}

// Info describes the managed session without creating it.
func (m *Manager) Info() Info {
	info := Info{
		AppName:   m.appName,
		UserID:    m.userID,
		SessionID: m.sessionID,
		Composite: m.runner.Composite().Name(),
	}
	if sess, err := m.store.Get(m.sessionID); err == nil {
		info.Turns = len(sess.Turns())
	}
	return info
}

// Close tears the session down: in-flight runs are cancelled and the
// session is deleted from the store. Close is idempotent.
func (m *Manager) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return nil
	}

	m.runner.Close()

	// a session that was never used has nothing to delete
	m.createOnce.Do(func() {})

	if err := m.store.Delete(m.sessionID); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("close session %s: %w", m.sessionID, err)
	}

	m.logger.Info("session.closed", "session_id", m.sessionID)

	return nil
}
