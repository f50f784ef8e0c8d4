package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/maldonadorepuestos/backend/pkg/db/models"
	"github.com/maldonadorepuestos/backend/pkg/pagination"
)

// Repository defines persistence operations for the checkout and order tables.
// The cart reads live here too because checkout consumes the cart inside the
// same transaction that creates the order.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	FindByIDAndUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, int64, error)
	ListAll(ctx context.Context, params pagination.Params, filters Filters) ([]models.Order, int64, error)
	UpdateFields(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	CartItemsForUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	ClearCart(ctx context.Context, userID uuid.UUID) error
	DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error)
	ProductStock(ctx context.Context, productID uuid.UUID) (int, error)
}
