package audit

import (
	"context"
	"errors"
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

func (r *TabularRepository) Append(ctx context.Context, event *models.AuditEvent) error {
	header, err := r.header(ctx)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}

	rows := [][]string{tabular.Tuple(header, event.Record())}
	if err := r.store.AppendRows(ctx, common.TableAudit, rows); err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// header returns the audit table's columns, creating the table when absent.
func (r *TabularRepository) header(ctx context.Context) ([]string, error) {
	t, err := r.store.ReadAll(ctx, common.TableAudit)
	switch {
	case errors.Is(err, common.ErrNotFound):
		if err := r.store.EnsureTable(ctx, common.TableAudit, common.AuditHeader); err != nil {
			return nil, fmt.Errorf("create audit table: %w", err)
		}
		return common.AuditHeader, nil
	case err != nil:
		return nil, err
	}
	return t.Header, nil
}

func (r *TabularRepository) List(ctx context.Context) ([]models.AuditEvent, error) {
	t, err := r.store.ReadAll(ctx, common.TableAudit)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return []models.AuditEvent{}, nil
		}
		return nil, err
	}
	return models.AuditFromTable(t)
}
