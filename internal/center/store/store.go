// Package store persists the center registry.
package store

import (
	"context"

	"skillaudit/internal/center/models"
	id "skillaudit/pkg/domain"
)

// CenterStore is interface-driven so the report service can resolve
// centers against memory in tests and PostgreSQL in production.
type CenterStore interface {
	Create(ctx context.Context, center *models.Center) error
	FindByID(ctx context.Context, centerID id.CenterID) (*models.Center, error)
	FindByCode(ctx context.Context, code string) (*models.Center, error)
	List(ctx context.Context) ([]*models.Center, error)
}
