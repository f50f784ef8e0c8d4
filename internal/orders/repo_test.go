package orders

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/maldonadorepuestos/backend/pkg/db/models"
	"github.com/maldonadorepuestos/backend/pkg/enums"
	"github.com/maldonadorepuestos/backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	// Every pooled connection gets its own in-memory database, so keep the
	// pool at a single connection.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	statements := []string{`
CREATE TABLE users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  name TEXT NOT NULL,
  phone TEXT,
  role TEXT NOT NULL DEFAULT 'customer',
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`, `
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
);`, `
CREATE TABLE orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  order_number TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  subtotal NUMERIC NOT NULL,
  shipping_cost NUMERIC NOT NULL,
  total NUMERIC NOT NULL,
  payment_id TEXT,
  payment_status TEXT,
  shipping_name TEXT,
  shipping_address TEXT,
  shipping_city TEXT,
  shipping_state TEXT,
  shipping_zip TEXT,
  shipping_phone TEXT,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  paid_at DATETIME,
  shipped_at DATETIME
);`, `
CREATE UNIQUE INDEX idx_orders_order_number ON orders (order_number);`, `
CREATE TABLE order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT,
  product_name TEXT NOT NULL,
  product_code TEXT NOT NULL,
  product_brand TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  total_price NUMERIC NOT NULL,
  created_at DATETIME
);`}

	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, code string, price string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		CategoryID: uuid.New(),
		Name:       "Producto " + code,
		Code:       code,
		Brand:      "Bosch",
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		IsActive:   true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func seedCartItem(t *testing.T, db *gorm.DB, userID uuid.UUID, productID uuid.UUID, qty int) {
	t.Helper()
	require.NoError(t, db.Create(&models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  qty,
	}).Error)
}

func TestDecrementStock(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	product := seedProduct(t, db, "FLT-001", "1500.00", 5)

	ok, err := repo.DecrementStock(ctx, product.ID, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	stock, err := repo.ProductStock(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stock)

	// More than remains: the row must not change.
	ok, err = repo.DecrementStock(ctx, product.ID, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	stock, err = repo.ProductStock(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stock)
}

func TestDecrementStockConcurrentClaims(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	// Two buyers race for the same last three units.
	product := seedProduct(t, db, "FLT-002", "1500.00", 3)

	type claim struct {
		ok  bool
		err error
	}
	results := make(chan claim, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.DecrementStock(ctx, product.ID, 3)
			results <- claim{ok: ok, err: err}
		}()
	}
	wg.Wait()
	close(results)

	claimed := 0
	for res := range results {
		require.NoError(t, res.err)
		if res.ok {
			claimed++
		}
	}
	assert.Equal(t, 1, claimed, "only one buyer may claim the last units")

	stock, err := repo.ProductStock(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stock)
}

func TestCreateOrderWithoutShippingDetails(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	// A cash/in-person sale records no delivery address at all.
	order := &models.Order{
		UserID:       uuid.New(),
		OrderNumber:  GenerateTestOrderNumber(t),
		Status:       enums.OrderStatusPending,
		Subtotal:     decimal.RequireFromString("1000.00"),
		ShippingCost: decimal.Zero,
		Total:        decimal.RequireFromString("1000.00"),
	}
	require.NoError(t, repo.CreateOrder(ctx, order))

	reloaded, err := repo.FindByNumber(ctx, order.OrderNumber)
	require.NoError(t, err)
	assert.Nil(t, reloaded.ShippingName)
	assert.Nil(t, reloaded.ShippingAddress)
	assert.Nil(t, reloaded.ShippingPhone)
}

func TestOrderNumberUniqueness(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	first := &models.Order{
		UserID:          userID,
		OrderNumber:     "MR-20260829-AABBCCDD",
		Status:          enums.OrderStatusPending,
		Subtotal:        decimal.RequireFromString("1000.00"),
		ShippingCost:    decimal.RequireFromString("5000.00"),
		Total:           decimal.RequireFromString("6000.00"),
		ShippingName:    strPtr("Juan Perez"),
		ShippingAddress: strPtr("Av. Corrientes 1234"),
		ShippingCity:    strPtr("Buenos Aires"),
		ShippingState:   strPtr("CABA"),
		ShippingZip:     strPtr("1043"),
		ShippingPhone:   strPtr("+5491123456789"),
	}
	require.NoError(t, repo.CreateOrder(ctx, first))

	dup := *first
	dup.ID = uuid.New()
	err := repo.CreateOrder(ctx, &dup)
	require.Error(t, err)
}

func TestClearCart(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	otherID := uuid.New()
	product := seedProduct(t, db, "BAT-010", "450000.00", 10)
	seedCartItem(t, db, userID, product.ID, 1)
	seedCartItem(t, db, otherID, product.ID, 2)

	require.NoError(t, repo.ClearCart(ctx, userID))

	items, err := repo.CartItemsForUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, items)

	others, err := repo.CartItemsForUser(ctx, otherID)
	require.NoError(t, err)
	assert.Len(t, others, 1)
}

func TestCartItemsForUserPreloadsProduct(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	product := seedProduct(t, db, "AMT-220", "89000.00", 4)
	seedCartItem(t, db, userID, product.ID, 2)

	items, err := repo.CartItemsForUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Product)
	assert.Equal(t, "AMT-220", items[0].Product.Code)
}

func TestListByUserPaginates(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	for i := 0; i < 3; i++ {
		order := &models.Order{
			UserID:          userID,
			OrderNumber:     GenerateTestOrderNumber(t),
			Status:          enums.OrderStatusPending,
			Subtotal:        decimal.RequireFromString("1000.00"),
			ShippingCost:    decimal.Zero,
			Total:           decimal.RequireFromString("1000.00"),
			ShippingName:    strPtr("Juan Perez"),
			ShippingAddress: strPtr("Av. Corrientes 1234"),
			ShippingCity:    strPtr("Buenos Aires"),
			ShippingState:   strPtr("CABA"),
			ShippingZip:     strPtr("1043"),
			ShippingPhone:   strPtr("+5491123456789"),
		}
		require.NoError(t, repo.CreateOrder(ctx, order))
	}

	orders, total, err := repo.ListByUser(ctx, userID, pagination.Params{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, orders, 2)

	orders, _, err = repo.ListByUser(ctx, userID, pagination.Params{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestListAllFiltersByStatus(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := models.Order{
		Subtotal:        decimal.RequireFromString("1000.00"),
		ShippingCost:    decimal.Zero,
		Total:           decimal.RequireFromString("1000.00"),
		ShippingName:    strPtr("Juan Perez"),
		ShippingAddress: strPtr("Av. Corrientes 1234"),
		ShippingCity:    strPtr("Buenos Aires"),
		ShippingState:   strPtr("CABA"),
		ShippingZip:     strPtr("1043"),
		ShippingPhone:   strPtr("+5491123456789"),
	}
	for _, status := range []enums.OrderStatus{enums.OrderStatusPaid, enums.OrderStatusPaid, enums.OrderStatusPending} {
		order := base
		order.UserID = uuid.New()
		order.OrderNumber = GenerateTestOrderNumber(t)
		order.Status = status
		require.NoError(t, repo.CreateOrder(ctx, &order))
	}

	paid := enums.OrderStatusPaid
	orders, total, err := repo.ListAll(ctx, pagination.Params{}, Filters{Status: &paid})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, orders, 2)
}

// GenerateTestOrderNumber draws a fresh unique order number for fixtures.
func GenerateTestOrderNumber(t *testing.T) string {
	t.Helper()
	number, err := GenerateOrderNumber("MR", time.Now().UTC())
	require.NoError(t, err)
	return number
}

func strPtr(s string) *string {
	return &s
}
