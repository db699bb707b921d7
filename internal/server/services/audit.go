package services

import (
	"context"
	"sort"
	"time"

	"github.com/dmitrijs2005/timesheet/internal/common"
	"github.com/dmitrijs2005/timesheet/internal/logging"
	"github.com/dmitrijs2005/timesheet/internal/server/models"
	"github.com/dmitrijs2005/timesheet/internal/server/repositories/repomanager"
)

// AuditRecorder appends audit events. A failed write is logged at WARN and
// swallowed: it never aborts or undoes the operation being audited.
type AuditRecorder struct {
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

func NewAuditRecorder(m repomanager.RepositoryManager, l logging.Logger) *AuditRecorder {
	return &AuditRecorder{
		repomanager: m,
		logger:      l.With("module", "audit"),
		now:         time.Now,
	}
}

// Record appends one event for the given actor.
func (r *AuditRecorder) Record(ctx context.Context, userID, username, action, description string, status models.AuditStatus) {
	event := &models.AuditEvent{
		Timestamp:   r.now(),
		UserID:      userID,
		Username:    username,
		Action:      action,
		Description: description,
		Status:      status,
	}

	if err := r.repomanager.Audit().Append(ctx, event); err != nil {
		r.logger.Warn(ctx, "audit event not recorded",
			"action", action, "username", username, "status", string(status), "error", err)
		return
	}
	r.logger.Debug(ctx, "audit event recorded", "action", action, "username", username)
}

// List returns the audit trail newest first. A non-empty username keeps
// only that actor's events.
func (r *AuditRecorder) List(ctx context.Context, username string) ([]models.AuditEvent, error) {
	events, err := r.repomanager.Audit().List(ctx)
	if err != nil {
		return nil, err
	}

	if username != "" {
		kept := events[:0]
		for _, e := range events {
			if common.SameUsername(e.Username, username) {
				kept = append(kept, e)
			}
		}
		events = kept
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
	return events, nil
}
