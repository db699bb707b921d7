package repomanager

import (
	"context"

	"github.com/dmitrijs2005/timesheet/internal/server/repositories/attendance"
	"github.com/dmitrijs2005/timesheet/internal/server/repositories/audit"
	"github.com/dmitrijs2005/timesheet/internal/server/repositories/users"
)

type RepositoryManager interface {
	// CheckSchema verifies that the required tables exist and carry the
	// columns the typed records are bound to.
	CheckSchema(ctx context.Context) error
	Users() users.Repository
	Attendance() attendance.Repository
	Audit() audit.Repository
}
