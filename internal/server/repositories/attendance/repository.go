// Package attendance stores submitted timesheet lines in the attendance
// table.
package attendance

import (
	"context"

	"github.com/dmitrijs2005/timesheet/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]models.AttendanceEntry, error)
	ListFor(ctx context.Context, user *models.User) ([]models.AttendanceEntry, error)
	// Append writes all entries in a single store call.
	Append(ctx context.Context, entries []models.AttendanceEntry) error
}
