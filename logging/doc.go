// Package logging provides a minimal logging interface and a slog-backed implementation for agentpipe.
//
// The Logger interface defines the leveled methods (Debug, Info, Warn, Error)
// that agents, composites and the session manager use for observability. This
// package includes:
//
//   - Logger interface for dependency injection
//   - PipeLogger, a configurable slog-backed logger with tool call and
//     composite run helpers
//   - NoOpLogger for silent operation (tests, library defaults)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "text", false)
//	sess, err := agentpipe.NewPipelineSession(func(o *agentpipe.Options) { o.Logger = logger })
//
// Arguments after the message are slog-style key/value pairs.
package logging
