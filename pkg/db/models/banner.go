package models

import (
	"time"

	"github.com/google/uuid"
)

// Banner is a storefront promotional slide.
type Banner struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title        string    `gorm:"column:title;not null"`
	Subtitle     *string   `gorm:"column:subtitle"`
	ImageURL     string    `gorm:"column:image_url;not null"`
	LinkURL      *string   `gorm:"column:link_url"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true"`
	DisplayOrder int       `gorm:"column:display_order;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
