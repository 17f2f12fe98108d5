package selection

import (
	"fmt"
	"sync"
)

// Manager tracks one Session per (user, bus) pair. Sessions are created
// lazily and removed when they complete or close.
type Manager struct {
	mu       sync.Mutex
	cfg      Config
	sessions map[string]*Session
}

func NewManager(cfg Config) *Manager {
	return &Manager{
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}
}

func sessionKey(userID int64, busID string) string {
	return fmt.Sprintf("%d:%s", userID, busID)
}

// Get returns the live session for (userID, busID), creating one with the
// provided hooks when absent. Hooks passed on later calls for an existing
// session are ignored; the first caller wires the session.
func (m *Manager) Get(
	userID int64,
	busID string,
	publish PublishFunc,
	release ReleaseFunc,
	onExpire ExpireFunc,
) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := sessionKey(userID, busID)
	if s, ok := m.sessions[key]; ok {
		return s
	}

	s := NewSession(m.cfg, publish, release, onExpire)
	m.sessions[key] = s

	return s
}

// Lookup returns the session if one exists.
func (m *Manager) Lookup(userID int64, busID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionKey(userID, busID)]
	return s, ok
}

// Remove forgets the session without touching its state. Callers that need
// teardown call Complete or Close on the session first.
func (m *Manager) Remove(userID int64, busID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, sessionKey(userID, busID))
}
