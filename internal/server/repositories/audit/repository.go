// Package audit stores audit events in the audit_log table.
package audit

import (
	"context"

	"github.com/dmitrijs2005/timesheet/internal/server/models"
)

type Repository interface {
	// Append adds one event, creating the table on first use.
	Append(ctx context.Context, event *models.AuditEvent) error
	// List returns every event in store order; a missing table reads as empty.
	List(ctx context.Context) ([]models.AuditEvent, error)
}
