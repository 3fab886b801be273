// Package store persists user accounts.
package store

import (
	"context"

	"skillaudit/internal/auth/models"
	id "skillaudit/pkg/domain"
)

// UserStore persists accounts. Create must reject duplicate usernames
// atomically and return sentinel.ErrConflict.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}
