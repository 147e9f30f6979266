package services

import (
	"context"
	"errors"

	"cloud-kitchen-backend/internal/models"
	"cloud-kitchen-backend/internal/repositories"

	"github.com/google/uuid"
)

const (
	defaultOrderPageSize = 20
	maxOrderPageSize     = 100
)

// OrderService is the read side of placed orders used by the admin API.
type OrderService struct {
	orderRepo repositories.OrderRepository
}

func NewOrderService(orderRepo repositories.OrderRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo}
}

func (s *OrderService) Get(ctx context.Context, orderID string) (*models.Order, error) {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

// List returns orders newest first. limit falls back to 20 when not positive
// and is capped at 100.
func (s *OrderService) List(ctx context.Context, limit, offset int) ([]models.Order, error) {
	if limit <= 0 {
		limit = defaultOrderPageSize
	}
	if limit > maxOrderPageSize {
		limit = maxOrderPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.orderRepo.List(ctx, limit, offset)
}
