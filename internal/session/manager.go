package session

import (
	"context"
	"errors"
	"fmt"

	"taskdesk/internal/logging"
	"taskdesk/internal/service"
	"taskdesk/internal/transport"
)

// ErrInvalidCredentials matches every rejected sign-in.
var ErrInvalidCredentials = errors.New("invalid username or password")

// AuthError is returned when the server rejected the credentials.
type AuthError struct {
	Message string // server message, may be empty
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return ErrInvalidCredentials.Error()
	}
	return ErrInvalidCredentials.Error() + ": " + e.Message
}

// Is makes errors.Is(err, ErrInvalidCredentials) true.
func (e *AuthError) Is(target error) bool {
	return target == ErrInvalidCredentials
}

// Authenticator is the part of service.Service the manager needs.
type Authenticator interface {
	SignIn(ctx context.Context, req service.SignInRequest) (service.SignInResult, error)
	Register(ctx context.Context, req service.RegisterRequest) (service.User, error)
}

// Manager implements login, registration and logout on top of a Session.
// Calls are not deduplicated: two Logins issue two requests.
type Manager struct {
	sess *Session
	auth Authenticator
	log  *logging.Logger
}

// NewManager creates a manager. log may be nil.
func NewManager(sess *Session, auth Authenticator, log *logging.Logger) *Manager {
	if log == nil {
		log = logging.Nop()
	}
	return &Manager{sess: sess, auth: auth, log: log.WithComponent("session")}
}

// Session returns the managed session.
func (m *Manager) Session() *Session {
	return m.sess
}

// IsAuthenticated reports whether a token is held.
func (m *Manager) IsAuthenticated() bool {
	return m.sess.IsAuthenticated()
}

// Login signs in and persists the returned token. On any failure the
// session is left as it was and nothing is persisted.
func (m *Manager) Login(ctx context.Context, userName, password string) error {
	req := service.SignInRequest{UserName: userName, Password: password}
	if err := service.Validate(req); err != nil {
		return err
	}

	res, err := m.auth.SignIn(ctx, req)
	if err != nil {
		m.log.Warnw("Sign-in failed", "user", userName, "error", err.Error())
		var serr *transport.ServerError
		if errors.As(err, &serr) && errors.Is(err, transport.ErrUnauthorized) {
			return &AuthError{Message: serr.Message}
		}
		return fmt.Errorf("sign in: %w", err)
	}
	if !res.IsSuccess || res.Token == "" {
		m.log.Infow("Sign-in rejected", "user", userName, "message", res.Message)
		return &AuthError{Message: res.Message}
	}

	if err := m.sess.Set(res.Token); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	m.log.Infow("Signed in", "user", userName)
	return nil
}

// Register creates an account. It never changes the session state.
func (m *Manager) Register(ctx context.Context, userName, email, password string) (service.User, error) {
	req := service.RegisterRequest{UserName: userName, Email: email, Password: password}
	if err := service.Validate(req); err != nil {
		return service.User{}, err
	}

	user, err := m.auth.Register(ctx, req)
	if err != nil {
		m.log.Warnw("Registration failed", "user", userName, "error", err.Error())
		return service.User{}, fmt.Errorf("register: %w", err)
	}
	user.Password = ""
	m.log.Infow("Registered", "user", userName)
	return user, nil
}

// Logout clears the token. The session is anonymous afterwards whatever
// its prior state.
func (m *Manager) Logout() error {
	if err := m.sess.Clear(); err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	m.log.Infow("Signed out")
	return nil
}
