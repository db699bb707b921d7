package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/timesheet/internal/common"
	"github.com/dmitrijs2005/timesheet/internal/logging"
	"github.com/dmitrijs2005/timesheet/internal/server/models"
	"github.com/dmitrijs2005/timesheet/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/timesheet/internal/server/sessions"
)

// Preferences are the per-user settings kept on the user row.
type Preferences struct {
	PreferredAreas  []string
	PreferredShift  string
	AreaColumnCount int
}

type PreferenceService struct {
	repomanager repomanager.RepositoryManager
	sessions    *sessions.Manager
	audit       *AuditRecorder
	logger      logging.Logger
}

func NewPreferenceService(m repomanager.RepositoryManager, sm *sessions.Manager, a *AuditRecorder, l logging.Logger) *PreferenceService {
	return &PreferenceService{
		repomanager: m,
		sessions:    sm,
		audit:       a,
		logger:      l.With("module", "preferences"),
	}
}

func (s *PreferenceService) GetPreferences(ctx context.Context, session *sessions.Session) (*Preferences, error) {
	user, err := currentUser(ctx, s.repomanager, session)
	if err != nil {
		return nil, err
	}
	return preferencesOf(user), nil
}

func preferencesOf(u *models.User) *Preferences {
	return &Preferences{
		PreferredAreas:  append([]string{}, u.PreferredAreas...),
		PreferredShift:  u.PreferredShift,
		AreaColumnCount: u.AreaColumnCount,
	}
}

// SetPreferredAreas stores areas in the given order. Unknown codes are
// rejected; repeats are dropped.
func (s *PreferenceService) SetPreferredAreas(ctx context.Context, session *sessions.Session, areas []string) ([]string, error) {
	cleaned := make([]string, 0, len(areas))
	for _, a := range areas {
		a = strings.TrimSpace(a)
		if !common.IsAreaCode(a) {
			return nil, fmt.Errorf("%w: %q", common.ErrInvalidArea, a)
		}
		if !containsString(cleaned, a) {
			cleaned = append(cleaned, a)
		}
	}

	user, err := currentUser(ctx, s.repomanager, session)
	if err != nil {
		return nil, err
	}
	if err := s.repomanager.Users().SetPreferredAreas(ctx, user, cleaned); err != nil {
		return nil, err
	}

	desc := "Preferred areas: " + models.FormatAreas(cleaned)
	if len(cleaned) == 0 {
		desc = "Preferred areas cleared"
	}
	s.audit.Record(ctx, user.ID, user.Username, models.ActionPreferredAreas, desc, models.StatusSuccess)
	return cleaned, nil
}

func (s *PreferenceService) SetPreferredShift(ctx context.Context, session *sessions.Session, shift string) error {
	shift = strings.TrimSpace(shift)
	if !common.IsShift(shift) {
		return fmt.Errorf("%w: %q", common.ErrInvalidShift, shift)
	}

	user, err := currentUser(ctx, s.repomanager, session)
	if err != nil {
		return err
	}
	if err := s.repomanager.Users().SetPreferredShift(ctx, user, shift); err != nil {
		return err
	}

	s.audit.Record(ctx, user.ID, user.Username, models.ActionPreferredShift, "Preferred shift: "+shift, models.StatusSuccess)
	return nil
}

// SetAreaColumnCount stores n, or the default when n is out of range, and
// returns the stored value.
func (s *PreferenceService) SetAreaColumnCount(ctx context.Context, session *sessions.Session, n int) (int, error) {
	n = models.ClampAreaColumnCount(n)

	user, err := currentUser(ctx, s.repomanager, session)
	if err != nil {
		return 0, err
	}
	if err := s.repomanager.Users().SetAreaColumnCount(ctx, user, n); err != nil {
		return 0, err
	}

	s.audit.Record(ctx, user.ID, user.Username, models.ActionAreaColumnCount,
		fmt.Sprintf("Number of areas: %d", n), models.StatusSuccess)
	return n, nil
}

// ChangeUsername renames the session's user. The new name must not belong
// to any other user, compared case-insensitively. An unchanged name yields
// common.ErrUsernameUnchanged and writes nothing.
func (s *PreferenceService) ChangeUsername(ctx context.Context, session *sessions.Session, newUsername string) (*models.User, error) {
	newUsername = strings.TrimSpace(newUsername)
	if newUsername == "" {
		return nil, common.ErrEmptyUsername
	}

	repo := s.repomanager.Users()
	all, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}

	var user *models.User
	for i := range all {
		if all[i].Key() == session.UserID {
			user = &all[i]
			break
		}
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user no longer exists", common.ErrSessionInvalid)
	}

	if user.Username == newUsername {
		return nil, common.ErrUsernameUnchanged
	}
	for i := range all {
		if all[i].Row != user.Row && common.SameUsername(all[i].Username, newUsername) {
			s.audit.Record(ctx, user.ID, user.Username, models.ActionChangeUsername,
				fmt.Sprintf("Username %q already taken", newUsername), models.StatusFailed)
			return nil, fmt.Errorf("%w: %q", common.ErrUsernameExists, newUsername)
		}
	}

	oldKey, oldUsername := user.Key(), user.Username
	if err := repo.SetUsername(ctx, user, newUsername); err != nil {
		return nil, err
	}
	s.sessions.Rename(oldKey, user)

	s.logger.Info(ctx, "username changed", "from", oldUsername, "to", newUsername)
	s.audit.Record(ctx, user.ID, user.Username, models.ActionChangeUsername,
		fmt.Sprintf("Username changed from %q to %q", oldUsername, newUsername), models.StatusSuccess)
	return user, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
