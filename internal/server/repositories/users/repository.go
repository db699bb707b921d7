package users

import (
	"context"

	"github.com/dmitrijs2005/timesheet/internal/server/models"
)

// Repository gives access to the "user" table. Lookups by username are
// case-insensitive; missing users yield common.ErrNotFound.
type Repository interface {
	List(ctx context.Context) ([]models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByKey(ctx context.Context, key string) (*models.User, error)

	SetPassword(ctx context.Context, user *models.User, password string) error
	SetUsername(ctx context.Context, user *models.User, username string) error
	SetPreferredAreas(ctx context.Context, user *models.User, areas []string) error
	SetPreferredShift(ctx context.Context, user *models.User, shift string) error
	SetAreaColumnCount(ctx context.Context, user *models.User, n int) error
}
