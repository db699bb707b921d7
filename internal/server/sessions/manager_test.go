package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/timesheet/internal/common"
	"github.com/dmitrijs2005/timesheet/internal/server/models"
)

func newTestManager(t *testing.T) (*Manager, *time.Time) {
	t.Helper()
	now := time.Now()
	m := NewManager("secret", time.Hour)
	m.now = func() time.Time { return now }
	return m, &now
}

var alice = &models.User{ID: "001", Username: "alice", Role: "Engineer", Grade: "B"}

func TestIssueResolve(t *testing.T) {
	m, _ := newTestManager(t)

	token, s, err := m.Issue(alice)
	require.NoError(t, err)
	assert.Equal(t, "001", s.UserID)

	got, err := m.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "Engineer", got.Role)

	got.Username = "tampered"
	again, err := m.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", again.Username, "callers get copies")
}

func TestResolve_Revoked(t *testing.T) {
	m, _ := newTestManager(t)

	token, s, err := m.Issue(alice)
	require.NoError(t, err)
	m.Revoke(s.ID)

	_, err = m.Resolve(token)
	assert.ErrorIs(t, err, common.ErrSessionInvalid)
}

func TestResolve_Expired(t *testing.T) {
	m, now := newTestManager(t)

	token, _, err := m.Issue(alice)
	require.NoError(t, err)

	*now = now.Add(time.Hour)
	_, err = m.Resolve(token)
	assert.ErrorIs(t, err, common.ErrSessionInvalid)
}

func TestResolve_ForeignToken(t *testing.T) {
	m, _ := newTestManager(t)
	other := NewManager("other-secret", time.Hour)

	token, _, err := other.Issue(alice)
	require.NoError(t, err)

	_, err = m.Resolve(token)
	assert.ErrorIs(t, err, common.ErrSessionInvalid)
}

func TestRevokeUser(t *testing.T) {
	m, _ := newTestManager(t)
	bob := &models.User{Username: "bob"}

	t1, _, _ := m.Issue(alice)
	t2, _, _ := m.Issue(alice)
	t3, _, _ := m.Issue(bob)

	assert.Equal(t, 2, m.RevokeUser("001"))

	_, err := m.Resolve(t1)
	assert.ErrorIs(t, err, common.ErrSessionInvalid)
	_, err = m.Resolve(t2)
	assert.ErrorIs(t, err, common.ErrSessionInvalid)
	_, err = m.Resolve(t3)
	assert.NoError(t, err)
}

func TestRename(t *testing.T) {
	m, _ := newTestManager(t)

	token, _, _ := m.Issue(alice)
	m.Rename("001", &models.User{ID: "001", Username: "alicia"})

	s, err := m.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, "alicia", s.Username)
	assert.Equal(t, "001", s.UserID)
}

func TestRename_KeyedByUsername(t *testing.T) {
	m, _ := newTestManager(t)

	token, _, _ := m.Issue(&models.User{Username: "bob"})
	m.Rename("bob", &models.User{Username: "robert"})

	s, err := m.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, "robert", s.UserID)
	assert.Equal(t, 1, m.RevokeUser("robert"))
}

func TestSweep(t *testing.T) {
	m, now := newTestManager(t)

	_, _, _ = m.Issue(alice)
	*now = now.Add(30 * time.Minute)
	_, _, _ = m.Issue(alice)
	*now = now.Add(45 * time.Minute)

	assert.Equal(t, 1, m.Sweep())
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	s := &Session{ID: "x"}
	got, ok := FromContext(NewContext(context.Background(), s))
	require.True(t, ok)
	assert.Same(t, s, got)
}
