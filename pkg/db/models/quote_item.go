package models

import (
	"time"

	"github.com/google/uuid"
)

// QuoteItem references a catalog product within a quote request. Snapshot
// columns keep the request readable if the product disappears.
type QuoteItem struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	QuoteID     uuid.UUID  `gorm:"column:quote_id;type:uuid;not null;index"`
	ProductID   *uuid.UUID `gorm:"column:product_id;type:uuid"`
	ProductCode string     `gorm:"column:product_code;not null"`
	ProductName string     `gorm:"column:product_name;not null"`
	Quantity    int        `gorm:"column:quantity;not null;default:1"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
}
