package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSubAgents is returned when a composite is built without agents.
	ErrNoSubAgents = errors.New("composite has no sub-agents")
	// ErrDuplicateOutputKey is returned when two agents of one composite share an output key.
	ErrDuplicateOutputKey = errors.New("duplicate output key")
	// ErrDuplicateAgentName is returned when two agents of one composite share a name.
	ErrDuplicateAgentName = errors.New("duplicate agent name")
	// ErrMissingOutputKey is returned when an agent has no output key.
	ErrMissingOutputKey = errors.New("missing output key")
	// ErrSessionClosed is returned by a session manager after teardown.
	ErrSessionClosed = errors.New("session closed")
)

// ConfigurationError reports a missing or invalid configuration value. It is
// raised before any composite or session is built.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// NewConfigurationError creates a ConfigurationError.
func NewConfigurationError(field, reason string) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: reason}
}

// CompositionError reports an invalid composite layout detected at build time.
type CompositionError struct {
	Composite string
	Detail    string
	Err       error
}

func (e *CompositionError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("composition error in %s: %v", e.Composite, e.Err)
	}
	return fmt.Sprintf("composition error in %s: %v: %s", e.Composite, e.Err, e.Detail)
}

func (e *CompositionError) Unwrap() error { return e.Err }

// NewCompositionError creates a CompositionError wrapping one of the sentinel errors.
func NewCompositionError(composite string, err error, detail string) *CompositionError {
	return &CompositionError{Composite: composite, Err: err, Detail: detail}
}
