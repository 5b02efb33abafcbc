// Package session holds the authentication token, persists it between runs
// and drives the login/register/logout lifecycle.
package session

import (
	"errors"
	"fmt"
	"sync"
)

// State is the authentication state of a Session.
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Session is the single holder of the bearer token. The transport reads
// Token on every request; only Set and Clear change it.
type Session struct {
	mu    sync.RWMutex
	token string
	store TokenStore
}

// Open loads a persisted token from store. A corrupt session file opens as
// an anonymous session.
func Open(store TokenStore) (*Session, error) {
	token, err := store.Load()
	if err != nil && !errors.Is(err, ErrCorruptSession) {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &Session{token: token, store: store}, nil
}

// Token returns the current token, or "" when anonymous.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// State returns Authenticated when a token is held.
func (s *Session) State() State {
	if s.Token() == "" {
		return Anonymous
	}
	return Authenticated
}

// IsAuthenticated reports whether a token is held.
func (s *Session) IsAuthenticated() bool {
	return s.State() == Authenticated
}

// Set persists token and makes it current.
func (s *Session) Set(token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Save(token); err != nil {
		return err
	}
	s.token = token
	return nil
}

// Clear drops the token and removes it from the store. The session is
// anonymous afterwards even if the store fails.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return s.store.Clear()
}

// Identity decodes the user identity carried by the token, if any.
func (s *Session) Identity() (Identity, bool) {
	token := s.Token()
	if token == "" {
		return Identity{}, false
	}
	return ParseIdentity(token)
}
