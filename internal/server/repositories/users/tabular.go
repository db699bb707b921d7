package users

import (
	"context"
	"fmt"
	"strconv"

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

func (r *TabularRepository) List(ctx context.Context) ([]models.User, error) {
	t, err := r.store.ReadAll(ctx, common.TableUsers)
	if err != nil {
		return nil, err
	}
	return models.UsersFromTable(t)
}

func (r *TabularRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if common.SameUsername(users[i].Username, username) {
			return &users[i], nil
		}
	}
	return nil, fmt.Errorf("%w: user %q", common.ErrNotFound, username)
}

func (r *TabularRepository) GetByKey(ctx context.Context, key string) (*models.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Key() == key {
			return &users[i], nil
		}
	}
	return nil, fmt.Errorf("%w: user %q", common.ErrNotFound, key)
}

func (r *TabularRepository) update(ctx context.Context, user *models.User, column, value string) error {
	if err := r.store.UpdateCell(ctx, common.TableUsers, user.Row, column, value); err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}
	return nil
}

func (r *TabularRepository) SetPassword(ctx context.Context, user *models.User, password string) error {
	if err := r.update(ctx, user, common.ColPassword, password); err != nil {
		return err
	}
	user.Password = password
	return nil
}

func (r *TabularRepository) SetUsername(ctx context.Context, user *models.User, username string) error {
	if err := r.update(ctx, user, common.ColUsername, username); err != nil {
		return err
	}
	user.Username = username
	return nil
}

func (r *TabularRepository) SetPreferredAreas(ctx context.Context, user *models.User, areas []string) error {
	if err := r.update(ctx, user, common.ColPreferredAreas, models.FormatAreas(areas)); err != nil {
		return err
	}
	user.PreferredAreas = append([]string{}, areas...)
	return nil
}

func (r *TabularRepository) SetPreferredShift(ctx context.Context, user *models.User, shift string) error {
	if err := r.update(ctx, user, common.ColPreferredShift, shift); err != nil {
		return err
	}
	user.PreferredShift = shift
	return nil
}

func (r *TabularRepository) SetAreaColumnCount(ctx context.Context, user *models.User, n int) error {
	if err := r.update(ctx, user, common.ColAreaColumnCount, strconv.Itoa(n)); err != nil {
		return err
	}
	user.AreaColumnCount = n
	return nil
}
