package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductImage is a gallery entry for a product.
type ProductImage struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID    uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	ImageURL     string    `gorm:"column:image_url;not null"`
	DisplayOrder int       `gorm:"column:display_order;not null;default:0"`
	IsPrimary    bool      `gorm:"column:is_primary;not null;default:false"`
	AltText      *string   `gorm:"column:alt_text"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}
