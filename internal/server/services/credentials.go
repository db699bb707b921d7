package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/timesheet/internal/common"
	"github.com/dmitrijs2005/timesheet/internal/logging"
	"github.com/dmitrijs2005/timesheet/internal/server/auth"
	"github.com/dmitrijs2005/timesheet/internal/server/models"
	"github.com/dmitrijs2005/timesheet/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/timesheet/internal/server/sessions"
)

type CredentialService struct {
	repomanager repomanager.RepositoryManager
	sessions    *sessions.Manager
	audit       *AuditRecorder
	logger      logging.Logger
	bcryptCost  int
}

func NewCredentialService(m repomanager.RepositoryManager, sm *sessions.Manager, a *AuditRecorder, l logging.Logger, bcryptCost int) *CredentialService {
	return &CredentialService{
		repomanager: m,
		sessions:    sm,
		audit:       a,
		logger:      l.With("module", "credentials"),
		bcryptCost:  bcryptCost,
	}
}

// VerifyLogin returns the user whose username matches case-insensitively and
// whose stored password accepts password. Unknown users and wrong passwords
// both yield common.ErrAuthFailure.
func (s *CredentialService) VerifyLogin(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repomanager.Users().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrAuthFailure
		}
		return nil, err
	}

	if !auth.VerifyPassword(user.Password, password) {
		return nil, common.ErrAuthFailure
	}
	return user, nil
}

// Login verifies the credentials and opens a session.
func (s *CredentialService) Login(ctx context.Context, username, password string) (string, *sessions.Session, error) {
	user, err := s.VerifyLogin(ctx, username, password)
	if err != nil {
		if errors.Is(err, common.ErrAuthFailure) {
			s.logger.Info(ctx, "login rejected", "username", username)
			s.audit.Record(ctx, "", username, models.ActionLogin, "Invalid credentials", models.StatusFailed)
		}
		return "", nil, err
	}

	token, session, err := s.sessions.Issue(user)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info(ctx, "login", "username", user.Username)
	s.audit.Record(ctx, user.ID, user.Username, models.ActionLogin, "User logged in", models.StatusSuccess)
	return token, session, nil
}

// Logout ends session.
func (s *CredentialService) Logout(ctx context.Context, session *sessions.Session) {
	s.sessions.Revoke(session.ID)
	s.audit.Record(ctx, session.UserID, session.Username, models.ActionLogout, "User logged out", models.StatusInfo)
}

// ChangePassword replaces the stored password with a bcrypt hash of
// newPassword and ends every session of the user.
func (s *CredentialService) ChangePassword(ctx context.Context, session *sessions.Session, oldPassword, newPassword, confirmPassword string) error {
	user, err := currentUser(ctx, s.repomanager, session)
	if err != nil {
		return err
	}

	fail := func(err error) error {
		s.audit.Record(ctx, user.ID, user.Username, models.ActionChangePassword, err.Error(), models.StatusFailed)
		return err
	}

	switch {
	case !auth.VerifyPassword(user.Password, oldPassword):
		return fail(common.ErrIncorrectPassword)
	case newPassword != confirmPassword:
		return fail(common.ErrPasswordMismatch)
	case newPassword == "":
		return fail(common.ErrEmptyPassword)
	case newPassword == oldPassword:
		return fail(common.ErrSamePassword)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		if auth.IsTooLong(err) {
			return fail(fmt.Errorf("%w: password longer than 72 bytes", common.ErrValidation))
		}
		return err
	}

	if err := s.repomanager.Users().SetPassword(ctx, user, hash); err != nil {
		s.logger.Error(ctx, "password update failed", "username", user.Username, "error", err)
		return err
	}

	n := s.sessions.RevokeUser(user.Key())
	s.logger.Info(ctx, "password changed", "username", user.Username, "sessions_revoked", n)
	s.audit.Record(ctx, user.ID, user.Username, models.ActionChangePassword, "Password updated", models.StatusSuccess)
	return nil
}

// currentUser reloads the session's user. A user that has disappeared from
// the store invalidates the session.
func currentUser(ctx context.Context, m repomanager.RepositoryManager, session *sessions.Session) (*models.User, error) {
	user, err := m.Users().GetByKey(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", common.ErrSessionInvalid)
		}
		return nil, err
	}
	return user, nil
}
