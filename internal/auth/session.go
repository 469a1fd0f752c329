package auth

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/credotech/inventory-console/internal/domain"
	"github.com/credotech/inventory-console/pkg/logger"
)

// Session holds the authenticated user and bearer credential for the
// page session. It owns the inactivity timer: when no activity is
// recorded for the configured timeout, the session is logged out.
type Session struct {
	mu      sync.Mutex
	user    *domain.User
	token   string
	timeout time.Duration
	timer   *time.Timer

	onLogout []func()
}

// NewSession creates a session with the given inactivity timeout.
// A non-positive timeout disables forced logout.
func NewSession(inactivityTimeout time.Duration) *Session {
	return &Session{timeout: inactivityTimeout}
}

// Login stores the user and credential and arms the inactivity timer
func (s *Session) Login(user domain.User, token string) {
	s.mu.Lock()
	s.user = &user
	s.token = token
	s.armTimerLocked()
	s.mu.Unlock()

	logger.Logger.Info().
		Str("user", user.Name).
		Msg("Session established")
}

// Token returns the current bearer credential, empty when logged out
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// User returns the current user
func (s *Session) User() (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

// IsAuthenticated reports whether a credential is present
func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

// OnLogout registers a callback fired after credentials are purged
func (s *Session) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = append(s.onLogout, fn)
}

// Touch records user activity and defers the inactivity logout
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return
	}
	s.armTimerLocked()
}

func (s *Session) armTimerLocked() {
	if s.timeout <= 0 {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.timeout, s.expire)
}

func (s *Session) expire() {
	logger.Logger.Warn().
		Dur("timeout", s.timeout).
		Msg("Session timed out after inactivity")
	s.Logout()
}

// Logout purges the credential and user, stops the inactivity timer
// and fires the registered callbacks
func (s *Session) Logout() {
	s.mu.Lock()
	if s.token == "" && s.user == nil {
		s.mu.Unlock()
		return
	}
	s.user = nil
	s.token = ""
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	callbacks := make([]func(), len(s.onLogout))
	copy(callbacks, s.onLogout)
	s.mu.Unlock()

	logger.Logger.Info().Msg("Session logged out, credentials purged")
	for _, fn := range callbacks {
		fn()
	}
}

// HandleUnauthorized reacts to a 401 from the API by purging the session
func (s *Session) HandleUnauthorized() {
	logger.Logger.Warn().Msg("Server rejected credentials, logging out")
	s.Logout()
}

// TokenExpired inspects the bearer token's exp claim without verifying
// the signature; the server owns the signing key. Tokens without an
// exp claim, or unparseable ones, are left for the server to reject.
func TokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
