package session

import "sync"

// MockStore is an in-memory CredentialStore for tests
type MockStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	// FailStore makes Store return ErrStoreUnavailable, to exercise the
	// manager's fallback chain
	FailStore bool
}

// NewMockStore creates a new in-memory credential store
func NewMockStore() *MockStore {
	return &MockStore{sessions: make(map[string]*Session)}
}

func (m *MockStore) Store(sess *Session) error {
	if m.FailStore {
		return ErrStoreUnavailable
	}
	if !sess.Valid() {
		return ErrInvalidSession
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *sess
	m.sessions[sess.Profile] = &copy
	return nil
}

func (m *MockStore) Retrieve(profile string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[profile]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copy := *sess
	return &copy, nil
}

func (m *MockStore) List() ([]*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Session
	for _, sess := range m.sessions {
		copy := *sess
		out = append(out, &copy)
	}
	return out, nil
}

func (m *MockStore) Delete(profile string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[profile]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, profile)
	return nil
}

func (m *MockStore) Exists(profile string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.sessions[profile]
	return ok
}
