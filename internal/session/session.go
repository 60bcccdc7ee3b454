// Package session holds the logged-in state of the librarian client.
//
// A Manager is created once per process and passed to whatever needs the
// token. Load restores a persisted session, Clear ends it.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/segyhp/library-circulation/internal/auth"
	"github.com/segyhp/library-circulation/internal/domain"
)

// ErrNoSession is returned by stores that hold nothing
var ErrNoSession = errors.New("no session")

// Session is an authenticated identity and its bearer token
type Session struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	MemberID  *int64    `json:"memberId,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Session) IsAdmin() bool {
	return s.Role == domain.RoleAdmin
}

// ExpiredAt reports whether the token is past its exp claim at t.
// Tokens without an exp claim never expire locally.
func (s *Session) ExpiredAt(t time.Time) bool {
	return !s.ExpiresAt.IsZero() && !t.Before(s.ExpiresAt)
}

// FromSignin builds a session from the signin response
func FromSignin(jwt *domain.JWTResponse) *Session {
	s := &Session{
		Token:    jwt.Token,
		UserID:   jwt.ID,
		Username: jwt.Username,
		Role:     jwt.Role,
		MemberID: jwt.MemberID,
	}
	if exp, ok := auth.ExpiresAt(jwt.Token); ok {
		s.ExpiresAt = exp
	}
	return s
}

// Store persists a session between runs
type Store interface {
	// Load returns ErrNoSession when nothing is stored
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Clear(ctx context.Context) error
}

type Manager struct {
	store Store
	now   func() time.Time

	mu      sync.RWMutex
	current *Session
}

func NewManager(store Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

// WithClock replaces the clock used for expiry checks
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Load restores the persisted session. An expired one is discarded from the store.
func (m *Manager) Load(ctx context.Context) error {
	s, err := m.store.Load(ctx)
	if errors.Is(err, ErrNoSession) {
		m.set(nil)
		return nil
	}
	if err != nil {
		return err
	}

	if s.Token == "" || s.ExpiredAt(m.now()) {
		m.set(nil)
		return m.store.Clear(ctx)
	}

	m.set(s)
	return nil
}

// Start persists and activates a fresh session
func (m *Manager) Start(ctx context.Context, s *Session) error {
	if err := m.store.Save(ctx, s); err != nil {
		return err
	}
	m.set(s)
	return nil
}

// Current returns the active, unexpired session
func (m *Manager) Current() (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil || m.current.ExpiredAt(m.now()) {
		return nil, false
	}
	copied := *m.current
	return &copied, true
}

// Token returns the bearer token of the active session
func (m *Manager) Token() (string, bool) {
	s, ok := m.Current()
	if !ok {
		return "", false
	}
	return s.Token, true
}

// Expire ends the session after the server rejected it
func (m *Manager) Expire(ctx context.Context) error {
	return m.Clear(ctx)
}

// Clear ends the session locally and in the store
func (m *Manager) Clear(ctx context.Context) error {
	m.set(nil)
	return m.store.Clear(ctx)
}

func (m *Manager) set(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = s
}
