// internal/intake/session/manager.go
package session

import (
	"sync"

	stderrors "finance-intake/internal/common/errors"
	"finance-intake/internal/common/metrics"
	"finance-intake/internal/models"
)

// Manager is the in-memory session registry. Sessions live for the duration
// of the process; durability across restarts is out of scope.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Create registers a new session for the given order context.
func (m *Manager) Create(order models.OrderContext, customerType models.CustomerType) *Session {
	s := New(order, customerType)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	metrics.SessionsActive.Inc()
	return s
}

// Get looks up a session by id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, stderrors.NewSessionNotFoundError(id)
	}
	return s, nil
}

// Delete removes a session.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	if _, ok := m.sessions[id]; ok {
		delete(m.sessions, id)
		metrics.SessionsActive.Dec()
	}
	m.mu.Unlock()
}
