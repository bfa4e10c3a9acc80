package session

import (
	"encoding/json"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "bilifollow"
	keyringPrefix  = "session_"
)

// KeyringStore implements CredentialStore using the system keychain
type KeyringStore struct{}

// NewKeyringStore creates a new keyring-based credential store
func NewKeyringStore() (*KeyringStore, error) {
	// Test if keyring is available
	testKey := "test_availability"
	if err := keyring.Set(keyringService, testKey, "test"); err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, testKey)

	return &KeyringStore{}, nil
}

// Store saves a session to the system keychain
func (k *KeyringStore) Store(sess *Session) error {
	if !sess.Valid() {
		return ErrInvalidSession
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	key := keyringPrefix + sess.Profile
	if err := keyring.Set(keyringService, key, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}
	k.addToIndex(sess.Profile)

	return nil
}

// Retrieve gets a session from the system keychain
func (k *KeyringStore) Retrieve(profile string) (*Session, error) {
	if profile == "" {
		return nil, ErrInvalidSession
	}

	data, err := keyring.Get(keyringService, keyringPrefix+profile)
	if err != nil {
		if err == keyring.ErrNotFound {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &sess, nil
}

// List returns stored sessions from the keychain. The underlying keyring
// APIs cannot enumerate keys portably, so an index entry tracks profiles.
func (k *KeyringStore) List() ([]*Session, error) {
	profiles, err := k.readIndex()
	if err != nil {
		return []*Session{}, nil
	}

	var sessions []*Session
	for _, profile := range profiles {
		if sess, err := k.Retrieve(profile); err == nil {
			sessions = append(sessions, sess)
		}
	}
	return sessions, nil
}

// Delete removes a session from the keychain
func (k *KeyringStore) Delete(profile string) error {
	if profile == "" {
		return ErrInvalidSession
	}

	if err := keyring.Delete(keyringService, keyringPrefix+profile); err != nil {
		if err == keyring.ErrNotFound {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	k.removeFromIndex(profile)
	return nil
}

// Exists checks if a session exists for a profile
func (k *KeyringStore) Exists(profile string) bool {
	_, err := keyring.Get(keyringService, keyringPrefix+profile)
	return err == nil
}

const keyringIndexKey = "profile_index"

func (k *KeyringStore) readIndex() ([]string, error) {
	data, err := keyring.Get(keyringService, keyringIndexKey)
	if err != nil {
		return nil, err
	}
	var profiles []string
	if err := json.Unmarshal([]byte(data), &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (k *KeyringStore) writeIndex(profiles []string) {
	if data, err := json.Marshal(profiles); err == nil {
		_ = keyring.Set(keyringService, keyringIndexKey, string(data))
	}
}

func (k *KeyringStore) addToIndex(profile string) {
	profiles, _ := k.readIndex()
	for _, p := range profiles {
		if p == profile {
			return
		}
	}
	k.writeIndex(append(profiles, profile))
}

func (k *KeyringStore) removeFromIndex(profile string) {
	profiles, err := k.readIndex()
	if err != nil {
		return
	}
	out := profiles[:0]
	for _, p := range profiles {
		if p != profile {
			out = append(out, p)
		}
	}
	k.writeIndex(out)
}
