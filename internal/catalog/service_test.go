package catalog

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

	"github.com/maldonadorepuestos/backend/pkg/db/models"
	pkgerrors "github.com/maldonadorepuestos/backend/pkg/errors"
	"github.com/maldonadorepuestos/backend/pkg/logger"
	"github.com/maldonadorepuestos/backend/pkg/pagination"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	statements := []string{`
CREATE TABLE categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT,
  icon TEXT,
  image_url TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  display_order INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
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
CREATE TABLE product_images (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  image_url TEXT NOT NULL,
  display_order INTEGER NOT NULL DEFAULT 0,
  is_primary INTEGER NOT NULL DEFAULT 0,
  alt_text TEXT,
  created_at DATETIME
);`, `
CREATE TABLE banners (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  subtitle TEXT,
  image_url TEXT NOT NULL,
  link_url TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  display_order INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE cart_items (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`, `
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
);`, `
CREATE TABLE quote_items (
  id TEXT PRIMARY KEY,
  quote_id TEXT NOT NULL,
  product_id TEXT,
  product_code TEXT NOT NULL,
  product_name TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME
);`}

	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func newCatalogService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(NewRepository(db), gormTxRunner{db: db}, logg)
	require.NoError(t, err)
	return svc
}

func seedCategory(t *testing.T, db *gorm.DB, name, slug string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name, Slug: slug, IsActive: true}
	require.NoError(t, db.Create(category).Error)
	return category
}

func seedCatalogProduct(t *testing.T, db *gorm.DB, categoryID uuid.UUID, code, name, brand, price string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		CategoryID: categoryID,
		Name:       name,
		Code:       code,
		Brand:      brand,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		IsActive:   true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestListCategoriesWithCounts(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)
	ctx := context.Background()

	filters := seedCategory(t, db, "Filtros", "filtros")
	seedCategory(t, db, "Baterías", "baterias")
	hidden := seedCategory(t, db, "Oculta", "oculta")
	require.NoError(t, db.Model(&models.Category{}).Where("id = ?", hidden.ID).Update("is_active", false).Error)

	seedCatalogProduct(t, db, filters.ID, "FLT-001", "Filtro de aceite", "Mann", "15000.00", 10)
	seedCatalogProduct(t, db, filters.ID, "FLT-002", "Filtro de aire", "Mann", "20000.00", 10)
	inactive := seedCatalogProduct(t, db, filters.ID, "FLT-003", "Filtro viejo", "Mann", "10000.00", 0)
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", inactive.ID).Update("is_active", false).Error)

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2, "inactive categories are hidden")

	byName := map[string]int64{}
	for _, c := range categories {
		byName[c.Name] = c.ProductCount
	}
	assert.EqualValues(t, 2, byName["Filtros"], "inactive products are not counted")
	assert.EqualValues(t, 0, byName["Baterías"])

	all, err := svc.ListAllCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3, "admin listing includes hidden categories")
}

func TestListProductsSearchAndSort(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)
	ctx := context.Background()

	category := seedCategory(t, db, "Filtros", "filtros")
	seedCatalogProduct(t, db, category.ID, "FLT-001", "Filtro de aceite", "Mann", "15000.00", 10)
	seedCatalogProduct(t, db, category.ID, "FLT-002", "Filtro de aire", "Bosch", "25000.00", 10)
	seedCatalogProduct(t, db, category.ID, "BAT-001", "Batería 12V", "Moura", "450000.00", 3)

	list, err := svc.ListProducts(ctx, pagination.Params{}, ProductFilters{Query: "filtro"})
	require.NoError(t, err)
	assert.Len(t, list.Products, 2)

	// Brand matches count too.
	list, err = svc.ListProducts(ctx, pagination.Params{}, ProductFilters{Query: "bosch"})
	require.NoError(t, err)
	require.Len(t, list.Products, 1)
	assert.Equal(t, "FLT-002", list.Products[0].Code)

	list, err = svc.ListProducts(ctx, pagination.Params{}, ProductFilters{Sort: SortPriceAsc})
	require.NoError(t, err)
	require.Len(t, list.Products, 3)
	assert.Equal(t, "FLT-001", list.Products[0].Code)
	assert.Equal(t, "BAT-001", list.Products[2].Code)
}

func TestListProductsByCategorySlug(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)
	ctx := context.Background()

	filters := seedCategory(t, db, "Filtros", "filtros")
	batteries := seedCategory(t, db, "Baterías", "baterias")
	seedCatalogProduct(t, db, filters.ID, "FLT-001", "Filtro de aceite", "Mann", "15000.00", 10)
	seedCatalogProduct(t, db, batteries.ID, "BAT-001", "Batería 12V", "Moura", "450000.00", 3)

	list, err := svc.ListProducts(ctx, pagination.Params{}, ProductFilters{CategorySlug: "filtros"})
	require.NoError(t, err)
	require.Len(t, list.Products, 1)
	assert.Equal(t, "FLT-001", list.Products[0].Code)

	// Stale slug: empty listing, not an error.
	list, err = svc.ListProducts(ctx, pagination.Params{}, ProductFilters{CategorySlug: "no-existe"})
	require.NoError(t, err)
	assert.Empty(t, list.Products)
}

func TestListProductsInStockFilter(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)
	ctx := context.Background()

	category := seedCategory(t, db, "Filtros", "filtros")
	seedCatalogProduct(t, db, category.ID, "FLT-001", "Filtro de aceite", "Mann", "15000.00", 10)
	seedCatalogProduct(t, db, category.ID, "FLT-002", "Filtro de aire", "Bosch", "25000.00", 0)

	inStock := true
	list, err := svc.ListProducts(ctx, pagination.Params{}, ProductFilters{InStock: &inStock})
	require.NoError(t, err)
	require.Len(t, list.Products, 1)
	assert.Equal(t, "FLT-001", list.Products[0].Code)
}

func TestGetProductHidesInactive(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)
	ctx := context.Background()

	category := seedCategory(t, db, "Filtros", "filtros")
	product := seedCatalogProduct(t, db, category.ID, "FLT-001", "Filtro de aceite", "Mann", "15000.00", 10)

	found, err := svc.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "FLT-001", found.Code)
	require.NotNil(t, found.Category)

	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", product.ID).Update("is_active", false).Error)
	_, err = svc.GetProduct(ctx, product.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestCreateProductValidations(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)
	ctx := context.Background()

	category := seedCategory(t, db, "Filtros", "filtros")

	_, err := svc.CreateProduct(ctx, ProductInput{
		CategoryID: uuid.New(),
		Name:       "Filtro",
		Code:       "FLT-001",
		Brand:      "Mann",
		Price:      decimal.RequireFromString("15000.00"),
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code(), "unknown category must be rejected")

	created, err := svc.CreateProduct(ctx, ProductInput{
		CategoryID: category.ID,
		Name:       "Filtro de aceite",
		Code:       "FLT-001",
		Brand:      "Mann",
		Price:      decimal.RequireFromString("15000.00"),
		Stock:      5,
	})
	require.NoError(t, err)
	assert.True(t, created.IsActive)

	_, err = svc.CreateProduct(ctx, ProductInput{
		CategoryID: category.ID,
		Name:       "Otro filtro",
		Code:       "FLT-001",
		Brand:      "Mann",
		Price:      decimal.RequireFromString("12000.00"),
	})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code(), "duplicate code must conflict")
}

func TestUpdateProductPartial(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)
	ctx := context.Background()

	category := seedCategory(t, db, "Filtros", "filtros")
	product := seedCatalogProduct(t, db, category.ID, "FLT-001", "Filtro de aceite", "Mann", "15000.00", 10)

	newStock := 25
	inactive := false
	updated, err := svc.UpdateProduct(ctx, product.ID, ProductUpdate{Stock: &newStock, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, 25, updated.Stock)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Filtro de aceite", updated.Name, "untouched fields stay")
}

func TestDeleteProductDetachesReferences(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)
	ctx := context.Background()

	category := seedCategory(t, db, "Filtros", "filtros")
	product := seedCatalogProduct(t, db, category.ID, "FLT-001", "Filtro de aceite", "Mann", "15000.00", 10)

	productID := product.ID
	require.NoError(t, db.Create(&models.CartItem{UserID: uuid.New(), ProductID: productID, Quantity: 1}).Error)
	require.NoError(t, db.Create(&models.OrderItem{
		OrderID:      uuid.New(),
		ProductID:    &productID,
		ProductName:  product.Name,
		ProductCode:  product.Code,
		ProductBrand: product.Brand,
		Quantity:     1,
		UnitPrice:    product.Price,
		TotalPrice:   product.Price,
	}).Error)

	require.NoError(t, svc.DeleteProduct(ctx, product.ID))

	var cartCount int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("product_id = ?", productID).Count(&cartCount).Error)
	assert.EqualValues(t, 0, cartCount, "cart lines disappear with the product")

	var item models.OrderItem
	require.NoError(t, db.Where("product_code = ?", "FLT-001").First(&item).Error)
	assert.Nil(t, item.ProductID, "order history keeps the snapshot with a nil product id")
	assert.Equal(t, "Filtro de aceite", item.ProductName)
}

func TestBannerLifecycle(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)
	ctx := context.Background()

	banner, err := svc.CreateBanner(ctx, BannerInput{
		Title:        "Ofertas de invierno",
		ImageURL:     "https://cdn.test/banner.jpg",
		DisplayOrder: 1,
	})
	require.NoError(t, err)

	hidden := false
	_, err = svc.UpdateBanner(ctx, banner.ID, BannerUpdate{IsActive: &hidden})
	require.NoError(t, err)

	public, err := svc.ListBanners(ctx)
	require.NoError(t, err)
	assert.Empty(t, public, "inactive banners are hidden from the storefront")

	all, err := svc.ListAllBanners(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, svc.DeleteBanner(ctx, banner.ID))
	all, err = svc.ListAllBanners(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCategorySlugConflict(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, CategoryInput{Name: "Filtros", Slug: "filtros"})
	require.NoError(t, err)

	_, err = svc.CreateCategory(ctx, CategoryInput{Name: "Filtros 2", Slug: "filtros"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestDeleteCategoryRefusedWhileInUse(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)
	ctx := context.Background()

	category := seedCategory(t, db, "Filtros", "filtros")
	product := seedCatalogProduct(t, db, category.ID, "FLT-001", "Filtro de aceite", "Mann", "15000.00", 10)

	err := svc.DeleteCategory(ctx, category.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code(), "categories with products cannot be removed")

	require.NoError(t, db.Delete(&models.Product{}, "id = ?", product.ID).Error)
	require.NoError(t, svc.DeleteCategory(ctx, category.ID))

	var count int64
	require.NoError(t, db.Model(&models.Category{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	err = svc.DeleteCategory(ctx, uuid.New())
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestGetProductByCode(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)
	ctx := context.Background()

	category := seedCategory(t, db, "Filtros", "filtros")
	product := seedCatalogProduct(t, db, category.ID, "FLT-001", "Filtro de aceite", "Mann", "15000.00", 10)

	found, err := svc.GetProductByCode(ctx, " FLT-001 ")
	require.NoError(t, err)
	assert.Equal(t, product.ID, found.ID)

	_, err = svc.GetProductByCode(ctx, "FLT-999")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", product.ID).Update("is_active", false).Error)
	_, err = svc.GetProductByCode(ctx, "FLT-001")
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code(), "inactive products stay hidden")
}

func TestGetCategoryBySlug(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)
	ctx := context.Background()

	category := seedCategory(t, db, "Baterías", "baterias")

	found, err := svc.GetCategoryBySlug(ctx, "Baterias")
	require.NoError(t, err)
	assert.Equal(t, category.ID, found.ID)

	require.NoError(t, db.Model(&models.Category{}).Where("id = ?", category.ID).Update("is_active", false).Error)
	_, err = svc.GetCategoryBySlug(ctx, "baterias")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
