package handlers

import (
	"context"

	"cloud-kitchen-backend/internal/cart"
	"cloud-kitchen-backend/internal/models"
	"cloud-kitchen-backend/internal/repositories"
	"cloud-kitchen-backend/internal/services"
)

// MenuServiceInterface defines the contract for the menu service
type MenuServiceInterface interface {
	List(ctx context.Context, filter repositories.MenuFilter) ([]models.MenuItem, error)
	Get(ctx context.Context, itemID string) (*models.MenuItem, error)
	Categories(ctx context.Context) ([]string, error)
}

// CartServiceInterface defines the contract for the cart service
type CartServiceInterface interface {
	View(ctx context.Context, sessionID string) (cart.Snapshot, error)
	AddItem(ctx context.Context, sessionID, itemID string) (cart.Snapshot, error)
	RemoveItem(ctx context.Context, sessionID, itemID string) (cart.Snapshot, error)
	UpdateQuantity(ctx context.Context, sessionID, itemID string, quantity int) (cart.Snapshot, error)
	Clear(ctx context.Context, sessionID string) (cart.Snapshot, error)
	EndSession(ctx context.Context, sessionID string) error
}

// CheckoutServiceInterface defines the contract for the checkout service
type CheckoutServiceInterface interface {
	PlaceOrder(ctx context.Context, sessionID string, details services.CustomerDetails) (*services.OrderConfirmation, error)
	LogRawOrder(ctx context.Context, payload map[string]any) error
}

// OrderServiceInterface defines the contract for the order service
type OrderServiceInterface interface {
	Get(ctx context.Context, orderID string) (*models.Order, error)
	List(ctx context.Context, limit, offset int) ([]models.Order, error)
}
