package session

import (
	"log/slog"
	"sync"
)

// Manager owns the live sessions, one per connection identity. Each
// session's state is exclusively owned by its connection's handler; the
// manager only guards the identity map.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	logger   *slog.Logger
}

// NewManager creates an empty session manager.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		logger:   logger,
	}
}

// Connect creates a fresh session for the client identity. An existing
// session under the same identity is closed and replaced: reconnects carry
// no state over.
func (m *Manager) Connect(clientID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.sessions[clientID]; ok {
		old.Close()
		m.logger.Info("replacing existing session", "client_id", clientID)
	}

	sess := New(clientID, m.logger)
	m.sessions[clientID] = sess
	m.logger.Info("session connected", "client_id", clientID)
	return sess
}

// Disconnect closes the session and removes it from the map. A session that
// was already replaced by a reconnect is closed without touching the map, so
// a lagging handler cannot evict its successor.
func (m *Manager) Disconnect(sess *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess.Close()
	if current, ok := m.sessions[sess.ClientID()]; ok && current == sess {
		delete(m.sessions, sess.ClientID())
		m.logger.Info("session disconnected", "client_id", sess.ClientID())
	}
}

// Active returns the number of live sessions.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
