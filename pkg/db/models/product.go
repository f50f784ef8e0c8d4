package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Stock is the single source of truth for
// availability and must never go negative.
type Product struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID    uuid.UUID       `gorm:"column:category_id;type:uuid;not null"`
	Category      *Category       `gorm:"foreignKey:CategoryID"`
	Name          string          `gorm:"column:name;not null"`
	Code          string          `gorm:"column:code;not null;uniqueIndex"`
	Brand         string          `gorm:"column:brand;not null"`
	Description   *string         `gorm:"column:description"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	OriginalPrice *decimal.Decimal `gorm:"column:original_price;type:numeric(12,2)"`
	Stock         int             `gorm:"column:stock;not null;default:0"`
	ImageURL      *string         `gorm:"column:image_url"`
	IsActive      bool            `gorm:"column:is_active;not null;default:true"`
	IsFeatured    bool            `gorm:"column:is_featured;not null;default:false"`
	IsNew         bool            `gorm:"column:is_new;not null;default:false"`
	Rating        decimal.Decimal `gorm:"column:rating;type:numeric(2,1);not null;default:0"`
	ReviewsCount  int             `gorm:"column:reviews_count;not null;default:0"`
	Images        []ProductImage  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// InStock reports whether the product can currently be added to a cart.
func (p *Product) InStock() bool {
	return p != nil && p.Stock > 0
}
