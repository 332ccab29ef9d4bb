package core

import (
	"sync"
	"time"
)

// Turn is one entry of a session's conversation log: the query, the
// composite result it produced and its user-facing rendering.
type Turn struct {
	RunID     string           `json:"run_id"`
	Query     string           `json:"query"`
	Result    *CompositeResult `json:"result,omitempty"`
	Rendered  string           `json:"rendered,omitempty"`
	Error     string           `json:"error,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// Session represents a conversational container with an ordered,
// append-only log of turns. It is safe for concurrent access.
//
// Contract:
//   - AddTurn updates the Updated timestamp
//   - Turns returns a defensive copy
//   - Clone performs deep copies of maps/slices for safe divergence.
type Session struct {
	ID       string            `json:"id"`
	AppName  string            `json:"app_name"`
	UserID   string            `json:"user_id"`
	Created  time.Time         `json:"created"`
	Updated  time.Time         `json:"updated"`
	Metadata map[string]string `json:"metadata"`

	turns []Turn
	mu    sync.RWMutex
}

// NewSession creates a new session with the given ID.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{ID: id, Created: now, Updated: now, Metadata: map[string]string{}}
}

// NewOwnedSession creates a session bound to an application and user.
func NewOwnedSession(appName, userID, id string) *Session {
	s := NewSession(id)
	s.AppName = appName
	s.UserID = userID
	return s
}

// AddTurn appends a turn to the log.
func (s *Session) AddTurn(t Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.Result != nil {
		t.Result = t.Result.Clone()
	}
	s.turns = append(s.turns, t)
	s.Updated = time.Now()
}

// Turns returns a defensive copy of the turn log.
func (s *Session) Turns() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Turn, len(s.turns))
	for i, t := range s.turns {
		if t.Result != nil {
			t.Result = t.Result.Clone()
		}
		out[i] = t
	}
	return out
}

// LastTurn returns the most recent turn, if any.
func (s *Session) LastTurn() (Turn, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.turns) == 0 {
		return Turn{}, false
	}
	t := s.turns[len(s.turns)-1]
	if t.Result != nil {
		t.Result = t.Result.Clone()
	}
	return t, true
}

// Clone returns a deep copy of the session safe for independent mutation.
func (s *Session) Clone() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clone := &Session{
		ID:       s.ID,
		AppName:  s.AppName,
		UserID:   s.UserID,
		Created:  s.Created,
		Updated:  s.Updated,
		Metadata: make(map[string]string, len(s.Metadata)),
		turns:    make([]Turn, len(s.turns)),
	}
	for k, v := range s.Metadata {
		clone.Metadata[k] = v
	}
	for i, t := range s.turns {
		if t.Result != nil {
			t.Result = t.Result.Clone()
		}
		clone.turns[i] = t
	}
	return clone
}

// SessionStore persists sessions and their turn logs.
type SessionStore interface {
	Create(appName, userID, id string) (*Session, error)
	Get(id string) (*Session, error)
	AppendTurn(sessionID string, turn Turn) error
	Delete(id string) error
}
