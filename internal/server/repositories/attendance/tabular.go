package attendance

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/timesheet/internal/common"
	"github.com/dmitrijs2005/timesheet/internal/server/models"
	"github.com/dmitrijs2005/timesheet/internal/server/tabular"
)

type TabularRepository struct {
	store tabular.Store
}

func NewTabularRepository(store tabular.Store) *TabularRepository {
	return &TabularRepository{store: store}
}

func (r *TabularRepository) List(ctx context.Context) ([]models.AttendanceEntry, error) {
	t, err := r.store.ReadAll(ctx, common.TableAttendance)
	if err != nil {
		return nil, err
	}
	return models.AttendanceFromTable(t)
}

func (r *TabularRepository) ListFor(ctx context.Context, user *models.User) ([]models.AttendanceEntry, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var mine []models.AttendanceEntry
	for i := range all {
		if all[i].BelongsTo(user) {
			mine = append(mine, all[i])
		}
	}
	return mine, nil
}

func (r *TabularRepository) Append(ctx context.Context, entries []models.AttendanceEntry) error {
	if len(entries) == 0 {
		return nil
	}
	// Sheets differ on which identity columns they carry, so rows follow
	// the live header.
	t, err := r.store.ReadAll(ctx, common.TableAttendance)
	if err != nil {
		return fmt.Errorf("append attendance: %w", err)
	}
	rows := make([][]string, len(entries))
	for i := range entries {
		rows[i] = t.Tuple(entries[i].Record())
	}
	if err := r.store.AppendRows(ctx, common.TableAttendance, rows); err != nil {
		return fmt.Errorf("append attendance: %w", err)
	}
	return nil
}
