package session

import (
	"context"
	"sync"
	"time"

	errprocess "edu_social_client/pkg/err"
	"edu_social_client/pkg/logger"
	"edu_social_client/pkg/token"

	"go.uber.org/zap"
)

// Authenticator obtain and revoke access tokens at the identity provider
type Authenticator interface {
	Authenticate(ctx context.Context) (string, error)
	Revoke(ctx context.Context, accessToken string) error
}

// Session current user identity and bearer token
type Session struct {
	mu     sync.RWMutex
	auth   Authenticator
	raw    string
	claims *token.Claims
	now    func() time.Time
}

// Option configure Session
type Option func(*Session)

// WithClock replace time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New create Session, Login must be called before use
func New(auth Authenticator, opts ...Option) *Session {
	s := &Session{auth: auth, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login fetch a token and read its claims
func (s *Session) Login(ctx context.Context) error {
	raw, err := s.auth.Authenticate(ctx)
	if err != nil {
		return errprocess.Wrap(errprocess.ErrSession, "authenticate", err)
	}
	claims, err := token.ParseJWTFunc(raw)
	if err != nil {
		return errprocess.Wrap(errprocess.ErrSession, "parse access token", err)
	}

	s.mu.Lock()
	s.raw, s.claims = raw, claims
	s.mu.Unlock()

	logger.Log.Info("session started", zap.String("user_id", claims.Subject))
	return nil
}

// Logout revoke and drop the token, local state is cleared even if revoke fails
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	raw := s.raw
	s.raw, s.claims = "", nil
	s.mu.Unlock()

	if raw == "" {
		return nil
	}
	if err := s.auth.Revoke(ctx, raw); err != nil {
		return errprocess.Wrap(errprocess.ErrNetwork, "revoke token", err)
	}
	return nil
}

// UserID token subject, empty without session
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.claims == nil {
		return ""
	}
	return s.claims.Subject
}

// Username preferred username claim
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.claims == nil {
		return ""
	}
	return s.claims.PreferredUsername
}

// IsTokenValid token present and not expired
func (s *Session) IsTokenValid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.validLocked()
}

func (s *Session) validLocked() bool {
	if s.raw == "" || s.claims == nil {
		return false
	}
	ok, err := token.CheckJWTNotExpire(s.claims, s.now())
	return err == nil && ok
}

// BearerToken token for the Authorization header
func (s *Session) BearerToken() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.validLocked() {
		return "", errprocess.ErrSession
	}
	return s.raw, nil
}

// HasRole session valid and carries role
func (s *Session) HasRole(role token.RoleType) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.validLocked() && s.claims.HasRole(role)
}

// RequireUser user id of a valid session, ErrSession otherwise
func (s *Session) RequireUser() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.validLocked() {
		logger.Log.Warn("operation aborted, no valid session")
		return "", errprocess.ErrSession
	}
	return s.claims.Subject, nil
}

// StaticAuthenticator serve a token taken from configuration
type StaticAuthenticator struct {
	Token string
}

// Authenticate return the configured token
func (a StaticAuthenticator) Authenticate(context.Context) (string, error) {
	if a.Token == "" {
		return "", errprocess.Set("no access token configured")
	}
	return a.Token, nil
}

// Revoke nothing to revoke for a static token
func (a StaticAuthenticator) Revoke(context.Context, string) error {
	return nil
}
