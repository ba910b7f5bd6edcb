// Package session holds the signed-in user and bearer token for one client.
//
// State is persisted through a Storage under the keys authUser and authToken. Load treats a
// partially written or unparsable stored value as corrupt and clears both keys, so a session is
// either fully populated or empty.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"Inkwell/internal/core/users"
)

// Storage keys
const (
	KeyUser  = "authUser"
	KeyToken = "authToken"
)

// ErrNoSession is returned by Require when nobody is signed in
var ErrNoSession = errors.New("no active session")

// Storage is durable key/value storage for session state
type Storage interface {
	// Get returns the stored value and whether it exists
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(keys ...string) error
}

// Session is the explicit replacement for ambient auth state.
// Create one per client with New, call Load once, and Clear on sign-out.
type Session struct {
	storage Storage
	user    *users.User
	logger  *slog.Logger
	token   string
	mu      sync.RWMutex
}

// New creates an empty session backed by storage
func New(storage Storage, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{storage: storage, logger: logger}
}

// Load restores the session from storage. Corrupt or partial state clears the storage and
// leaves the session empty; only storage failures are returned.
func (s *Session) Load() error {
	rawUser, hasUser, err := s.storage.Get(KeyUser)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", KeyUser, err)
	}
	token, hasToken, err := s.storage.Get(KeyToken)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", KeyToken, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !hasUser && !hasToken {
		s.user, s.token = nil, ""
		return nil
	}

	var user users.User
	if !hasUser || !hasToken || token == "" || json.Unmarshal([]byte(rawUser), &user) != nil || user.ID == "" {
		s.logger.Warn("discarding corrupt session state", "has_user", hasUser, "has_token", hasToken)
		s.user, s.token = nil, ""
		if err := s.storage.Delete(KeyUser, KeyToken); err != nil {
			return fmt.Errorf("failed to clear corrupt session: %w", err)
		}
		return nil
	}

	s.user, s.token = &user, token
	return nil
}

// Save stores the user and token in memory and in storage
func (s *Session) Save(user *users.User, token string) error {
	if user == nil || user.ID == "" || token == "" {
		return fmt.Errorf("session requires a user and a token")
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode session user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Set(KeyUser, string(data)); err != nil {
		return fmt.Errorf("failed to store %s: %w", KeyUser, err)
	}
	if err := s.storage.Set(KeyToken, token); err != nil {
		_ = s.storage.Delete(KeyUser)
		return fmt.Errorf("failed to store %s: %w", KeyToken, err)
	}

	u := *user
	s.user, s.token = &u, token
	return nil
}

// Clear empties the session. The in-memory state is always cleared, even when storage fails.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user, s.token = nil, ""
	if err := s.storage.Delete(KeyUser, KeyToken); err != nil {
		return fmt.Errorf("failed to clear session storage: %w", err)
	}
	return nil
}

// CurrentUser returns a copy of the signed-in user, or nil
func (s *Session) CurrentUser() *users.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// CurrentToken returns the bearer token, or "" when signed out
func (s *Session) CurrentToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Require returns the user and token or ErrNoSession
func (s *Session) Require() (*users.User, string, error) {
	user := s.CurrentUser()
	token := s.CurrentToken()
	if user == nil || token == "" {
		return nil, "", ErrNoSession
	}
	return user, token, nil
}
