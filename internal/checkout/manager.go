package checkout

import (
	"sync"

	"rentalportal/internal/domain"

	"github.com/google/uuid"
)

// Manager tracks live checkout controllers by session id so the HTTP layer
// can drive them across requests. Sessions are in-memory only; a restart
// drops them, which matches the one-attempt lifecycle of the flow.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Controller
}

func NewManager() *Manager {
	return &Manager{sessions: map[string]*Controller{}}
}

// Put registers a controller and returns its session id.
func (m *Manager) Put(c *Controller) string {
	id := uuid.NewString()
	m.mu.Lock()
	m.sessions[id] = c
	m.mu.Unlock()
	return id
}

// Get returns the controller for a session id.
func (m *Manager) Get(id string) (*Controller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.sessions[id]
	if c == nil {
		return nil, domain.NotFoundError{Resource: "checkout session"}
	}
	return c, nil
}

// Remove closes and forgets a session.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	c := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if c != nil {
		c.Close()
	}
}
