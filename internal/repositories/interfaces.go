package repositories

import (
	"context"
	"errors"

	"cloud-kitchen-backend/internal/models"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("record not found")

// CartRepository interface for PostgreSQL cart snapshot operations
type CartRepository interface {
	Get(ctx context.Context, sessionID string) (*models.CartSnapshot, error)
	Save(ctx context.Context, snapshot *models.CartSnapshot) error
	Delete(ctx context.Context, sessionID string) error
}

// OrderRepository interface for PostgreSQL order operations
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, limit, offset int) ([]models.Order, error)
}

// MenuFilter narrows MenuRepository.List. Empty fields match everything.
type MenuFilter struct {
	Category      string
	Search        string
	AvailableOnly bool
}

// MenuRepository interface for MongoDB menu operations
type MenuRepository interface {
	List(ctx context.Context, filter MenuFilter) ([]models.MenuItem, error)
	GetByID(ctx context.Context, id int64) (*models.MenuItem, error)
	Upsert(ctx context.Context, item *models.MenuItem) error
	Categories(ctx context.Context) ([]string, error)
}
