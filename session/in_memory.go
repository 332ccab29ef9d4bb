package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/agentpipe/core"
)

// ErrNotFound is returned for operations on an unknown session id.
var ErrNotFound = errors.New("session not found")

// InMemoryStore is a volatile SessionStore implementation storing
// sessions in a process local map. It is safe for concurrent access and best
// suited for tests or single-process tools. Each returned session is cloned
// to prevent external mutation of internal state.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*core.Session)}
}

// Create forces the creation (or overwriting) of a session with the given id.
func (s *InMemoryStore) Create(appName, userID, sessionID string) (*core.Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("create session: empty id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := core.NewOwnedSession(appName, userID, sessionID)
	s.sessions[sessionID] = sess

	return sess.Clone(), nil
}

// Get returns a snapshot of an existing session.
func (s *InMemoryStore) Get(sessionID string) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", sessionID, ErrNotFound)
	}

	return sess.Clone(), nil
}

// AppendTurn adds a turn to an existing session.
func (s *InMemoryStore) AppendTurn(sessionID string, turn core.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("append turn to %s: %w", sessionID, ErrNotFound)
	}
	sess.AddTurn(turn)

	return nil
}

// Delete removes a session.
func (s *InMemoryStore) Delete(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return fmt.Errorf("delete %s: %w", sessionID, ErrNotFound)
	}
	delete(s.sessions, sessionID)

	return nil
}

// Len returns the number of stored sessions.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
