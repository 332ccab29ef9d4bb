package artifact

import (
	"slices"
	"sync"
)

type sessionReports struct {
	order   []string
	reports map[string][]byte
}

// InMemoryStore is a trivial in-process ReportStore useful for tests, the
// CLI and single-process prototypes. Data is copied on save and retrieval so
// callers cannot mutate stored reports.
//
// Layout: sessionID -> runID -> rendered report
//
// There is no retention limit; long-running processes should prefer a
// durable implementation.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionReports
}

// NewInMemoryStore returns an empty in-memory report store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*sessionReports)}
}

// Save stores (or overwrites) the report for the given session and run. An
// overwritten report keeps its original position in List.
func (a *InMemoryStore) Save(sessionID, runID string, report []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.sessions[sessionID]
	if !ok {
		s = &sessionReports{reports: make(map[string][]byte)}
		a.sessions[sessionID] = s
	}
	if _, exists := s.reports[runID]; !exists {
		s.order = append(s.order, runID)
	}
	s.reports[runID] = slices.Clone(report)

	return nil
}

// Get returns a copy of the stored report or ErrNotFound.
func (a *InMemoryStore) Get(sessionID, runID string) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s, ok := a.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	data, ok := s.reports[runID]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(data), nil
}

// List returns the run ids stored for the session in save order. The slice
// is a snapshot and safe for caller mutation.
func (a *InMemoryStore) List(sessionID string) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s, ok := a.sessions[sessionID]
	if !ok {
		return []string{}, nil
	}
	return slices.Clone(s.order), nil
}

// Delete removes the report if present or returns ErrNotFound.
func (a *InMemoryStore) Delete(sessionID, runID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	if _, ok := s.reports[runID]; !ok {
		return ErrNotFound
	}
	delete(s.reports, runID)
	s.order = slices.DeleteFunc(s.order, func(id string) bool { return id == runID })
	if len(s.order) == 0 {
		delete(a.sessions, sessionID)
	}
	return nil
}
