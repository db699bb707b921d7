// Package sessions keeps the server-side record of who is logged in.
//
// A session is created on login and handed to the client as a signed token
// that carries only the session id. The session itself stays here, so
// logout, password changes and username changes take effect immediately
// without token blacklists.
package sessions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/timesheet/internal/common"
	"github.com/dmitrijs2005/timesheet/internal/server/auth"
	"github.com/dmitrijs2005/timesheet/internal/server/models"
)

// Session is the authenticated identity passed to every operation.
type Session struct {
	ID string
	// UserID is models.User.Key of the logged-in user.
	UserID    string
	Username  string
	Role      string
	Grade     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type Manager struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(secret string, lifetime time.Duration) *Manager {
	return &Manager{
		secret:   []byte(secret),
		lifetime: lifetime,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Issue opens a session for user and returns its token.
func (m *Manager) Issue(user *models.User) (string, *Session, error) {
	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		UserID:    user.Key(),
		Username:  user.Username,
		Role:      user.Role,
		Grade:     user.Grade,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.lifetime),
	}

	token, err := auth.GenerateToken(s.ID, m.secret, s.IssuedAt, s.ExpiresAt)
	if err != nil {
		return "", nil, fmt.Errorf("sign session token: %w", err)
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	c := *s
	return token, &c, nil
}

// Resolve returns a copy of the live session behind token.
func (m *Manager) Resolve(token string) (*Session, error) {
	id, err := auth.GetSessionIDFromToken(token, m.secret)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown session", common.ErrSessionInvalid)
	}
	if !m.now().Before(s.ExpiresAt) {
		delete(m.sessions, id)
		return nil, fmt.Errorf("%w: session expired", common.ErrSessionInvalid)
	}

	c := *s
	return &c, nil
}

// Revoke ends one session. Unknown ids are ignored.
func (m *Manager) Revoke(sessionID string) {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
}

// RevokeUser ends every session of userID and returns how many were open.
func (m *Manager) RevokeUser(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Rename points every session of userID at user after a username change.
// The session's UserID follows user.Key, which changes with the username
// when the user has no Id.
func (m *Manager) Rename(userID string, user *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sessions {
		if s.UserID == userID {
			s.UserID = user.Key()
			s.Username = user.Username
		}
	}
}

// Sweep drops expired sessions.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	n := 0
	for id, s := range m.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

type ctxKey struct{}

// NewContext returns ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored by NewContext.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
