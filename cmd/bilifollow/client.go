package main

import (
	"fmt"

	"bilifollow/pkg/bilibili"
	"bilifollow/pkg/config"
	"bilifollow/pkg/logger"
	"bilifollow/pkg/ratelimit"
	"bilifollow/pkg/session"
	"bilifollow/pkg/store"
)

// loadSession retrieves the session selected by --profile, or the default
// session when no profile is given.
func loadSession() (*session.Session, error) {
	manager, err := session.NewManager()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session manager: %w", err)
	}

	var sess *session.Session
	if profile != "" {
		sess, err = manager.Retrieve(profile)
	} else {
		sess, err = manager.RetrieveDefault()
	}
	if err != nil {
		return nil, fmt.Errorf("no usable session: %w (run 'bilifollow auth login' first)", err)
	}
	return sess, nil
}

// newClient builds an API client bound to the session and the configured
// steady request gate.
func newClient(cfg *config.Config, sess *session.Session) *bilibili.Client {
	gate := ratelimit.NewInterval(cfg.RateLimit.RequestsPerMinute)
	return bilibili.NewClient(&cfg.API, sess, gate, logger.GetLogger())
}

// openStore opens the snapshot store at the configured data directory
func openStore(cfg *config.Config) (*store.Store, error) {
	return store.New(cfg.Store.DataDir, logger.GetLogger())
}
