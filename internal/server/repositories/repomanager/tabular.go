// Package repomanager provides a RepositoryManager over a tabular.Store,
// vending the user, attendance and audit repositories that share it.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/timesheet/internal/common"
	"github.com/dmitrijs2005/timesheet/internal/server/models"
	"github.com/dmitrijs2005/timesheet/internal/server/repositories/attendance"
	"github.com/dmitrijs2005/timesheet/internal/server/repositories/audit"
	"github.com/dmitrijs2005/timesheet/internal/server/repositories/users"
	"github.com/dmitrijs2005/timesheet/internal/server/tabular"
)

type TabularRepositoryManager struct {
	store tabular.Store
}

func NewTabularRepositoryManager(store tabular.Store) *TabularRepositoryManager {
	return &TabularRepositoryManager{store: store}
}

func (m *TabularRepositoryManager) Users() users.Repository {
	return users.NewTabularRepository(m.store)
}

func (m *TabularRepositoryManager) Attendance() attendance.Repository {
	return attendance.NewTabularRepository(m.store)
}

func (m *TabularRepositoryManager) Audit() audit.Repository {
	return audit.NewTabularRepository(m.store)
}

// CheckSchema reads the user and attendance tables once. The audit table is
// optional and created on first write.
func (m *TabularRepositoryManager) CheckSchema(ctx context.Context) error {
	t, err := m.store.ReadAll(ctx, common.TableUsers)
	if err != nil {
		return fmt.Errorf("user table: %w", err)
	}
	if _, err := models.UsersFromTable(t); err != nil {
		return fmt.Errorf("user table: %w", err)
	}

	t, err = m.store.ReadAll(ctx, common.TableAttendance)
	if err != nil {
		return fmt.Errorf("attendance table: %w", err)
	}
	if _, err := models.AttendanceFromTable(t); err != nil {
		return fmt.Errorf("attendance table: %w", err)
	}
	return nil
}
