package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/timesheet/internal/logging"
	"github.com/dmitrijs2005/timesheet/internal/server/models"
	"github.com/dmitrijs2005/timesheet/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/timesheet/internal/server/sessions"
	"github.com/dmitrijs2005/timesheet/internal/server/timesheet"
)

// DraftSheet is a blank timesheet for a date range, prefilled from the
// user's preferences.
type DraftSheet struct {
	From            time.Time
	To              time.Time
	Drafts          []timesheet.Draft
	AreaOptions     []string
	AreaColumnCount int
}

type TimesheetService struct {
	repomanager repomanager.RepositoryManager
	audit       *AuditRecorder
	logger      logging.Logger
	now         func() time.Time
}

func NewTimesheetService(m repomanager.RepositoryManager, a *AuditRecorder, l logging.Logger) *TimesheetService {
	return &TimesheetService{
		repomanager: m,
		audit:       a,
		logger:      l.With("module", "timesheet"),
		now:         time.Now,
	}
}

// Draft builds one draft per day from from to to. Zero bounds default to the
// week ending today.
func (s *TimesheetService) Draft(ctx context.Context, session *sessions.Session, from, to time.Time) (*DraftSheet, error) {
	defFrom, defTo := timesheet.DefaultDraftRange(s.now())
	if from.IsZero() {
		from = defFrom
	}
	if to.IsZero() {
		to = defTo
	}

	days, err := timesheet.DateRange(from, to)
	if err != nil {
		return nil, err
	}

	user, err := currentUser(ctx, s.repomanager, session)
	if err != nil {
		return nil, err
	}

	return &DraftSheet{
		From:            timesheet.Day(from),
		To:              timesheet.Day(to),
		Drafts:          timesheet.Drafts(user, days),
		AreaOptions:     timesheet.AreaOptions(user.PreferredAreas),
		AreaColumnCount: user.AreaColumnCount,
	}, nil
}

// Submit validates drafts against the user's existing entries and appends
// them in one store call. Any problem or duplicate rejects the whole batch.
// The duplicate check is best-effort: a concurrent submission can slip in
// between the read and the append.
func (s *TimesheetService) Submit(ctx context.Context, session *sessions.Session, drafts []timesheet.Draft) ([]models.AttendanceEntry, error) {
	user, err := currentUser(ctx, s.repomanager, session)
	if err != nil {
		return nil, err
	}

	if len(drafts) == 0 {
		s.audit.Record(ctx, user.ID, user.Username, models.ActionSubmitTimesheet,
			"No entries to submit", models.StatusInfo)
		return []models.AttendanceEntry{}, nil
	}

	repo := s.repomanager.Attendance()
	existing, err := repo.ListFor(ctx, user)
	if err != nil {
		return nil, err
	}

	res := timesheet.Validate(user, drafts, existing)
	if !res.OK() {
		if len(res.Problems) > 0 {
			s.audit.Record(ctx, user.ID, user.Username, models.ActionSubmitTimesheet,
				"Validation failed for "+problemDates(res.Problems), models.StatusFailed)
		}
		if len(res.Duplicates) > 0 {
			s.audit.Record(ctx, user.ID, user.Username, models.ActionSubmitTimesheet,
				"Duplicate entries for "+strings.Join(res.Duplicates, ", "), models.StatusFailed)
		}
		s.logger.Info(ctx, "timesheet rejected", "username", user.Username,
			"problems", len(res.Problems), "duplicates", len(res.Duplicates))
		return nil, res.Err()
	}

	if err := repo.Append(ctx, res.Accepted); err != nil {
		s.logger.Error(ctx, "timesheet append failed", "username", user.Username, "error", err)
		s.audit.Record(ctx, user.ID, user.Username, models.ActionSubmitTimesheet,
			"Store error: "+err.Error(), models.StatusFailed)
		return nil, err
	}

	dates := make([]string, len(res.Accepted))
	for i := range res.Accepted {
		dates[i] = res.Accepted[i].Date
	}
	s.logger.Info(ctx, "timesheet submitted", "username", user.Username, "entries", len(dates))
	s.audit.Record(ctx, user.ID, user.Username, models.ActionSubmitTimesheet,
		fmt.Sprintf("Submitted %d entries: %s", len(dates), strings.Join(dates, ", ")), models.StatusSuccess)
	return res.Accepted, nil
}

// ActivityLog returns every user's entries matching f, newest first. With
// neither bound set the range defaults to the last week.
func (s *TimesheetService) ActivityLog(ctx context.Context, f timesheet.ActivityFilter) ([]models.AttendanceEntry, error) {
	if f.From.IsZero() && f.To.IsZero() {
		f.From, f.To = timesheet.DefaultLogRange(s.now())
	}

	entries, err := s.repomanager.Attendance().List(ctx)
	if err != nil {
		return nil, err
	}
	return timesheet.FilterActivity(entries, f), nil
}

func problemDates(problems []timesheet.Problem) string {
	var dates []string
	for _, p := range problems {
		if !containsString(dates, p.Date) {
			dates = append(dates, p.Date)
		}
	}
	return strings.Join(dates, ", ")
}
