package cart

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/maldonadorepuestos/backend/pkg/config"
	"github.com/maldonadorepuestos/backend/pkg/db/models"
	pkgerrors "github.com/maldonadorepuestos/backend/pkg/errors"
	"github.com/maldonadorepuestos/backend/pkg/logger"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	statements := []string{`
CREATE TABLE products (
  id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL,
  name TEXT NOT NULL,
  code TEXT NOT NULL UNIQUE,
  brand TEXT NOT NULL,
  description TEXT,
  price NUMERIC NOT NULL,
  original_price NUMERIC,
  stock INTEGER NOT NULL DEFAULT 0,
  image_url TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  is_featured INTEGER NOT NULL DEFAULT 0,
  is_new INTEGER NOT NULL DEFAULT 0,
  rating NUMERIC NOT NULL DEFAULT 0,
  reviews_count INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE cart_items (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (user_id, product_id)
);`}

	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func newCartService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(NewRepository(db), logg, config.OrdersConfig{
		FreeShippingThreshold: "100000",
		FlatShippingFee:       "5000.00",
	})
	require.NoError(t, err)
	return svc
}

func seedCartProduct(t *testing.T, db *gorm.DB, code, price string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		CategoryID: uuid.New(),
		Name:       "Producto " + code,
		Code:       code,
		Brand:      "NGK",
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		IsActive:   true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestAddItemMergesQuantities(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	ctx := context.Background()

	userID := uuid.New()
	product := seedCartProduct(t, db, "SPK-004", "12000.00", 10)

	summary, err := svc.AddItem(ctx, userID, product.ID, 2)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, 2, summary.Items[0].Quantity)

	summary, err = svc.AddItem(ctx, userID, product.ID, 3)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1, "same product must merge, not duplicate")
	assert.Equal(t, 5, summary.Items[0].Quantity)
	assert.True(t, summary.Subtotal.Equal(decimal.RequireFromString("60000.00")))
}

func TestAddItemRejectsOverStock(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	ctx := context.Background()

	userID := uuid.New()
	product := seedCartProduct(t, db, "SPK-004", "12000.00", 3)

	_, err := svc.AddItem(ctx, userID, product.ID, 2)
	require.NoError(t, err)

	// 2 in cart + 2 requested > 3 in stock
	_, err = svc.AddItem(ctx, userID, product.ID, 2)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, typed.Code())
}

func TestAddItemRejectsInactiveProduct(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	ctx := context.Background()

	product := seedCartProduct(t, db, "OLD-001", "9000.00", 5)
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", product.ID).Update("is_active", false).Error)

	_, err := svc.AddItem(ctx, uuid.New(), product.ID, 1)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeProductUnavailable, typed.Code())
}

func TestSummaryShippingPreview(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	ctx := context.Background()

	userID := uuid.New()
	cheap := seedCartProduct(t, db, "FLT-001", "15000.00", 10)

	summary, err := svc.AddItem(ctx, userID, cheap.ID, 1)
	require.NoError(t, err)
	assert.True(t, summary.ShippingCost.Equal(decimal.RequireFromString("5000.00")))
	assert.True(t, summary.Total.Equal(decimal.RequireFromString("20000.00")))

	expensive := seedCartProduct(t, db, "KIT-900", "200000.00", 2)
	summary, err = svc.AddItem(ctx, userID, expensive.ID, 1)
	require.NoError(t, err)
	assert.True(t, summary.ShippingCost.IsZero(), "threshold reached, shipping must be free")
}

func TestEmptyCartHasNoShipping(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)

	summary, err := svc.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, summary.Items)
	assert.True(t, summary.ShippingCost.IsZero())
	assert.True(t, summary.Total.IsZero())
}

func TestUpdateAndRemoveItemScopedToOwner(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	ctx := context.Background()

	userID := uuid.New()
	product := seedCartProduct(t, db, "SPK-004", "12000.00", 10)
	summary, err := svc.AddItem(ctx, userID, product.ID, 1)
	require.NoError(t, err)
	itemID := summary.Items[0].ID

	_, err = svc.UpdateItem(ctx, uuid.New(), itemID, 2)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	summary, err = svc.UpdateItem(ctx, userID, itemID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Items[0].Quantity)

	summary, err = svc.RemoveItem(ctx, userID, itemID)
	require.NoError(t, err)
	assert.Empty(t, summary.Items)
}

func TestClear(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	ctx := context.Background()

	userID := uuid.New()
	product := seedCartProduct(t, db, "SPK-004", "12000.00", 10)
	_, err := svc.AddItem(ctx, userID, product.ID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, userID))

	summary, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, summary.Items)
}
