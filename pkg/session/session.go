package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Common errors returned by credential stores
var (
	ErrInvalidSession   = errors.New("invalid session: profile, SESSDATA and bili_jct are required")
	ErrSessionNotFound  = errors.New("session not found")
	ErrStoreUnavailable = errors.New("credential store unavailable")
)

// Session is the credential blob captured from an out-of-band browser login.
// The three cookies together authenticate every API call: SESSDATA is the
// session itself, bili_jct doubles as the CSRF token on mutating requests,
// and DedeUserID identifies the account.
type Session struct {
	Profile      string    `json:"profile"`
	SESSDATA     string    `json:"sessdata"`
	BiliJCT      string    `json:"bili_jct"`
	DedeUserID   string    `json:"dede_user_id"`
	UserAgent    string    `json:"user_agent,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// CookieHeader renders the session as a Cookie header value.
func (s *Session) CookieHeader() string {
	parts := []string{
		"SESSDATA=" + s.SESSDATA,
		"bili_jct=" + s.BiliJCT,
	}
	if s.DedeUserID != "" {
		parts = append(parts, "DedeUserID="+s.DedeUserID)
	}
	return strings.Join(parts, "; ")
}

// CSRF returns the token attached to mutating form posts.
func (s *Session) CSRF() string {
	return s.BiliJCT
}

// UserID parses the numeric account ID from the DedeUserID cookie.
func (s *Session) UserID() (int64, error) {
	if s.DedeUserID == "" {
		return 0, errors.New("session has no DedeUserID cookie")
	}
	id, err := strconv.ParseInt(s.DedeUserID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid DedeUserID %q: %w", s.DedeUserID, err)
	}
	return id, nil
}

// Valid reports whether the session carries the required cookies.
func (s *Session) Valid() bool {
	return s != nil && s.Profile != "" && s.SESSDATA != "" && s.BiliJCT != ""
}

// CredentialStore is the interface for storing and retrieving sessions
type CredentialStore interface {
	// Store saves a session under its profile name
	Store(sess *Session) error

	// Retrieve gets the session for a profile
	Retrieve(profile string) (*Session, error)

	// List returns all stored sessions
	List() ([]*Session, error)

	// Delete removes the session for a profile
	Delete(profile string) error

	// Exists checks if a session exists for a profile
	Exists(profile string) bool
}

// Manager handles session storage with fallback mechanisms
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a session manager backed by the system keychain when
// available, an encrypted file otherwise, and environment variables as a
// read-only last resort.
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := configDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "sessions.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a manager over an explicit store chain.
// Used by tests.
func NewManagerWithStores(stores ...CredentialStore) *Manager {
	return &Manager{stores: stores}
}

// Store saves a session using the first store that accepts it
func (m *Manager) Store(sess *Session) error {
	if !sess.Valid() {
		return ErrInvalidSession
	}
	sess.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(sess); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}
	if lastErr != nil {
		return fmt.Errorf("failed to store session: %w", lastErr)
	}
	return ErrStoreUnavailable
}

// Retrieve gets a session from the first store that has it
func (m *Manager) Retrieve(profile string) (*Session, error) {
	for _, store := range m.stores {
		if sess, err := store.Retrieve(profile); err == nil && sess != nil {
			return sess, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, profile)
}

// RetrieveDefault gets the session for the "default" profile, falling back
// to the single stored session when only one exists.
func (m *Manager) RetrieveDefault() (*Session, error) {
	if sess, err := m.Retrieve("default"); err == nil {
		return sess, nil
	}

	sessions, err := m.List()
	if err == nil && len(sessions) == 1 {
		return sessions[0], nil
	}
	return nil, ErrSessionNotFound
}

// List returns the union of sessions across all stores, first store wins on
// profile name collisions.
func (m *Manager) List() ([]*Session, error) {
	seen := make(map[string]bool)
	var out []*Session
	for _, store := range m.stores {
		sessions, err := store.List()
		if err != nil {
			continue
		}
		for _, sess := range sessions {
			if !seen[sess.Profile] {
				seen[sess.Profile] = true
				out = append(out, sess)
			}
		}
	}
	return out, nil
}

// Delete removes a session from every store that has it
func (m *Manager) Delete(profile string) error {
	deleted := false
	for _, store := range m.stores {
		if store.Exists(profile) {
			if err := store.Delete(profile); err == nil {
				deleted = true
			}
		}
	}
	if !deleted {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, profile)
	}
	return nil
}

// configDir returns the directory holding bilifollow state files
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".config", "bilifollow")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}
