// Package session keeps the logged-in account, its token and derived
// permissions, and logs the user out after an idle period or when the
// token's exp passes. The server remains the authority on token validity.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/mch/mch/pkg/client"
	"github.com/mch/mch/pkg/permission"
)

const DefaultIdleTimeout = 30 * time.Minute

// LogoutReason records why the last session ended.
type LogoutReason string

const (
	ReasonManual  LogoutReason = "manual"
	ReasonIdle    LogoutReason = "idle_timeout"
	ReasonExpired LogoutReason = "token_expired"
	ReasonInvalid LogoutReason = "invalid_session"
)

var ErrNoSession = errors.New("not logged in")

// Session is the logged-in account and what it may do.
type Session struct {
	Account      client.Account
	Token        string
	Permissions  permission.Set
	LastActivity time.Time
}

// Can reports whether the session grants p.
func (s *Session) Can(p permission.Permission) bool {
	return s.Permissions.Has(p)
}

// Manager owns the current session and keeps its Store in sync.
type Manager struct {
	mu          sync.Mutex
	store       Store
	idleTimeout time.Duration
	idleFixed   bool
	now         func() time.Time
	logger      zerolog.Logger
	current     *Session
}

// Option configures a Manager.
type Option func(*Manager)

// WithIdleTimeout pins the idle period; SetIdleTimeout no longer changes it.
// Zero disables idle logout.
func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.idleTimeout = d
		m.idleFixed = true
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// NewManager returns a Manager loaded from store.
func NewManager(store Store, opts ...Option) (*Manager, error) {
	m := &Manager{
		store:       store,
		idleTimeout: DefaultIdleTimeout,
		now:         time.Now,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.Refresh(); err != nil {
		return nil, err
	}
	return m, nil
}

func newSession(account client.Account, token string, lastActivity time.Time) *Session {
	return &Session{
		Account:      account,
		Token:        token,
		Permissions:  permission.NewSet(permission.ForUserType(account.UserType)...),
		LastActivity: lastActivity,
	}
}

// Login starts a session and clears any recorded logout reason.
func (m *Manager) Login(account client.Account, token string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := newSession(account, token, m.now())
	m.current = s
	if err := m.saveLocked(); err != nil {
		m.current = nil
		return nil, err
	}
	m.logger.Info().Str("username", account.Username).Str("user_type", account.UserType).Msg("logged in")
	return m.snapshot(), nil
}

// Logout ends the session, recording reason and message for the next
// login prompt.
func (m *Manager) Logout(reason LogoutReason, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.logoutLocked(reason, message)
}

func (m *Manager) logoutLocked(reason LogoutReason, message string) error {
	m.current = nil
	if err := m.store.Save(&State{LogoutReason: string(reason), LogoutMessage: message}); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	m.logger.Info().Str("reason", string(reason)).Msg("logged out")
	return nil
}

// Invalidate drops a session the server rejected.
func (m *Manager) Invalidate() error {
	return m.Logout(ReasonInvalid, "Your session is no longer valid. Please log in again.")
}

// Current returns a copy of the session, or nil when logged out.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

func (m *Manager) snapshot() *Session {
	if m.current == nil {
		return nil
	}
	cp := *m.current
	return &cp
}

// Token returns the bearer token, empty when logged out.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ""
	}
	return m.current.Token
}

// Touch records user activity.
func (m *Manager) Touch() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return ErrNoSession
	}
	m.current.LastActivity = m.now()
	return m.saveLocked()
}

func (m *Manager) saveLocked() error {
	acct := m.current.Account
	st := &State{User: &acct, Token: m.current.Token, LastActivity: m.current.LastActivity}
	if !m.idleFixed {
		st.IdleTimeout = m.idleTimeout
	}
	if err := m.store.Save(st); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// SetIdleTimeout applies an idle period issued by the server and stores it
// with the session. It reports false when WithIdleTimeout pinned the period.
func (m *Manager) SetIdleTimeout(d time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.idleFixed || d <= 0 {
		return false, nil
	}
	m.idleTimeout = d
	if m.current == nil {
		return true, nil
	}
	return true, m.saveLocked()
}

// IdleTimeout returns the idle period in force.
func (m *Manager) IdleTimeout() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.idleTimeout
}

// Refresh reloads the session from the store.
func (m *Manager) Refresh() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.store.Load()
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if st.User == nil || st.Token == "" {
		m.current = nil
		return nil
	}
	if !m.idleFixed && st.IdleTimeout > 0 {
		m.idleTimeout = st.IdleTimeout
	}
	last := st.LastActivity
	if last.IsZero() {
		last = m.now()
	}
	m.current = newSession(*st.User, st.Token, last)
	return nil
}

// LastLogout returns the reason and message recorded by the last logout.
func (m *Manager) LastLogout() (LogoutReason, string, error) {
	st, err := m.store.Load()
	if err != nil {
		return "", "", fmt.Errorf("load session: %w", err)
	}
	return LogoutReason(st.LogoutReason), st.LogoutMessage, nil
}

// Check logs out when the idle period has elapsed or the token has expired.
// It returns the reason, or "" when the session is still live.
func (m *Manager) Check(now time.Time) (LogoutReason, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return "", nil
	}
	if m.idleTimeout > 0 && now.Sub(m.current.LastActivity) >= m.idleTimeout {
		msg := fmt.Sprintf("Logged out after %s of inactivity.", m.idleTimeout)
		return ReasonIdle, m.logoutLocked(ReasonIdle, msg)
	}
	if exp, ok := TokenExpiry(m.current.Token); ok && !now.Before(exp) {
		return ReasonExpired, m.logoutLocked(ReasonExpired, "Your session has expired. Please log in again.")
	}
	return "", nil
}

// TokenExpiry reads the exp claim without verifying the signature.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
