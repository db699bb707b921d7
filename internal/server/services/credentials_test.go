package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/timesheet/internal/common"
	"github.com/dmitrijs2005/timesheet/internal/server/auth"
	"github.com/dmitrijs2005/timesheet/internal/server/models"
)

func TestVerifyLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.credentials.VerifyLogin(ctx, "ALICE", "wonderland")
	require.NoError(t, err)
	assert.Equal(t, "001", u.ID)

	_, errUser := f.credentials.VerifyLogin(ctx, "mallory", "wonderland")
	_, errPass := f.credentials.VerifyLogin(ctx, "alice", "wrong")
	require.ErrorIs(t, errUser, common.ErrAuthFailure)
	require.ErrorIs(t, errPass, common.ErrAuthFailure)
	assert.Equal(t, errUser.Error(), errPass.Error(), "failures are indistinguishable")
}

func TestLogin_AuditsOutcome(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	token, s, err := f.credentials.Login(ctx, "alice", "wonderland")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "alice", s.Username)
	assert.Equal(t, "Engineer", s.Role)

	_, _, err = f.credentials.Login(ctx, "alice", "nope")
	require.ErrorIs(t, err, common.ErrAuthFailure)

	events, err := f.audit.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, events, 2)
	statuses := []models.AuditStatus{events[0].Status, events[1].Status}
	assert.ElementsMatch(t, []models.AuditStatus{models.StatusSuccess, models.StatusFailed}, statuses)
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	token, s, err := f.credentials.Login(ctx, "alice", "wonderland")
	require.NoError(t, err)

	f.credentials.Logout(ctx, s)

	_, err = f.sessions.Resolve(token)
	assert.ErrorIs(t, err, common.ErrSessionInvalid)
}

func TestChangePassword_UpgradesLegacyPlaintext(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	token, s, err := f.credentials.Login(ctx, "alice", "wonderland")
	require.NoError(t, err)

	require.NoError(t, f.credentials.ChangePassword(ctx, s, "wonderland", "looking-glass", "looking-glass"))

	stored := f.userRow(t, 1).Get(common.ColPassword)
	assert.True(t, auth.IsHashed(stored))
	assert.NotContains(t, stored, "looking-glass")

	_, err = f.credentials.VerifyLogin(ctx, "alice", "looking-glass")
	assert.NoError(t, err)
	_, err = f.credentials.VerifyLogin(ctx, "alice", "wonderland")
	assert.ErrorIs(t, err, common.ErrAuthFailure)

	_, err = f.sessions.Resolve(token)
	assert.ErrorIs(t, err, common.ErrSessionInvalid, "sessions end on password change")
}

func TestChangePassword_HashedToHashed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s := f.login(t, "alice", "wonderland")
	require.NoError(t, f.credentials.ChangePassword(ctx, s, "wonderland", "second", "second"))

	s = f.login(t, "alice", "second")
	require.NoError(t, f.credentials.ChangePassword(ctx, s, "second", "third", "third"))

	_, err := f.credentials.VerifyLogin(ctx, "alice", "third")
	assert.NoError(t, err)
}

func TestChangePassword_Rejections(t *testing.T) {
	cases := []struct {
		name               string
		old, next, confirm string
		want               error
	}{
		{"wrong current", "nope", "x", "x", common.ErrIncorrectPassword},
		{"mismatch", "wonderland", "x", "y", common.ErrPasswordMismatch},
		{"empty", "wonderland", "", "", common.ErrEmptyPassword},
		{"same", "wonderland", "wonderland", "wonderland", common.ErrSamePassword},
		{"too long", "wonderland", strings.Repeat("p", 80), strings.Repeat("p", 80), common.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			s := f.login(t, "alice", "wonderland")

			err := f.credentials.ChangePassword(ctx, s, tc.old, tc.next, tc.confirm)
			require.ErrorIs(t, err, tc.want)
			assert.Equal(t, "wonderland", f.userRow(t, 1).Get(common.ColPassword), "nothing written")
		})
	}
}

func TestChangePassword_UserGone(t *testing.T) {
	f := newFixture(t)
	s := f.login(t, "alice", "wonderland")
	s.UserID = "999"

	err := f.credentials.ChangePassword(context.Background(), s, "wonderland", "a", "a")
	assert.ErrorIs(t, err, common.ErrSessionInvalid)
}
