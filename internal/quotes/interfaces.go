package quotes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/maldonadorepuestos/backend/pkg/db/models"
	"github.com/maldonadorepuestos/backend/pkg/pagination"
)

// Repository defines persistence operations for quotes.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, quote *models.Quote) error
	CreateItems(ctx context.Context, items []models.QuoteItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Quote, error)
	List(ctx context.Context, params pagination.Params, filters Filters) ([]models.Quote, int64, error)
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error
	FindProducts(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}
