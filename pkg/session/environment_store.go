package session

import (
	"os"
	"time"
)

// EnvironmentStore implements CredentialStore using environment variables.
// It is read-only and mainly serves CI and one-off invocations.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(sess *Session) error {
	return ErrStoreUnavailable
}

// Retrieve gets a session from environment variables
func (e *EnvironmentStore) Retrieve(profile string) (*Session, error) {
	sessdata := os.Getenv("BILIFOLLOW_SESSDATA")
	biliJCT := os.Getenv("BILIFOLLOW_BILI_JCT")
	dedeUserID := os.Getenv("BILIFOLLOW_DEDEUSERID")
	userAgent := os.Getenv("BILIFOLLOW_USER_AGENT")

	if sessdata == "" || biliJCT == "" {
		return nil, ErrSessionNotFound
	}

	// Environment variables carry no profile name
	if profile == "" {
		profile = "default"
	}

	return &Session{
		Profile:      profile,
		SESSDATA:     sessdata,
		BiliJCT:      biliJCT,
		DedeUserID:   dedeUserID,
		UserAgent:    userAgent,
		LastModified: time.Now(),
	}, nil
}

// List returns a single session if environment variables are set
func (e *EnvironmentStore) List() ([]*Session, error) {
	sess, err := e.Retrieve("")
	if err != nil {
		return []*Session{}, nil
	}
	return []*Session{sess}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(profile string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist
func (e *EnvironmentStore) Exists(profile string) bool {
	return os.Getenv("BILIFOLLOW_SESSDATA") != "" && os.Getenv("BILIFOLLOW_BILI_JCT") != ""
}
