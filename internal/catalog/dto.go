package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maldonadorepuestos/backend/pkg/db/models"
	"github.com/maldonadorepuestos/backend/pkg/pagination"
)

// Supported product sort keys.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
	SortName      = "name"
)

// SortKeys lists every sort the product listing accepts.
var SortKeys = []string{SortNewest, SortPriceAsc, SortPriceDesc, SortRating, SortName}

// ProductFilters describe the inputs supported by the product listing.
type ProductFilters struct {
	CategoryID   *uuid.UUID
	CategorySlug string
	Query        string
	Featured     *bool
	New          *bool
	InStock      *bool
	Sort         string
}

// ProductList wraps one page of products plus page metadata.
type ProductList struct {
	Products []models.Product `json:"products"`
	Meta     pagination.Meta  `json:"meta"`
}

// CategoryWithCount pairs a category with its active product count.
type CategoryWithCount struct {
	models.Category
	ProductCount int64 `json:"product_count"`
}

// ProductInput carries the fields accepted when an admin creates a product.
type ProductInput struct {
	CategoryID    uuid.UUID
	Name          string
	Code          string
	Brand         string
	Description   *string
	Price         decimal.Decimal
	OriginalPrice *decimal.Decimal
	Stock         int
	ImageURL      *string
	IsActive      *bool
	IsFeatured    *bool
	IsNew         *bool
}

// ProductUpdate carries partial updates; nil fields are left unchanged.
type ProductUpdate struct {
	CategoryID    *uuid.UUID
	Name          *string
	Code          *string
	Brand         *string
	Description   *string
	Price         *decimal.Decimal
	OriginalPrice *decimal.Decimal
	Stock         *int
	ImageURL      *string
	IsActive      *bool
	IsFeatured    *bool
	IsNew         *bool
}

// CategoryInput carries the fields accepted when an admin creates a category.
type CategoryInput struct {
	Name         string
	Slug         string
	Description  *string
	Icon         *string
	ImageURL     *string
	DisplayOrder int
}

// CategoryUpdate carries partial category updates.
type CategoryUpdate struct {
	Name         *string
	Slug         *string
	Description  *string
	Icon         *string
	ImageURL     *string
	IsActive     *bool
	DisplayOrder *int
}

// BannerInput carries the fields accepted when an admin creates a banner.
type BannerInput struct {
	Title        string
	Subtitle     *string
	ImageURL     string
	LinkURL      *string
	DisplayOrder int
}

// BannerUpdate carries partial banner updates.
type BannerUpdate struct {
	Title        *string
	Subtitle     *string
	ImageURL     *string
	LinkURL      *string
	IsActive     *bool
	DisplayOrder *int
}
