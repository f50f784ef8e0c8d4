package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maldonadorepuestos/backend/pkg/enums"
)

// Order is the financial and fulfillment record of a checkout. OrderNumber
// is the public identifier shared with the payment gateway as the external
// reference, so its format is a wire contract.
type Order struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	OrderNumber string            `gorm:"column:order_number;not null;uniqueIndex:idx_orders_order_number"`
	Status      enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`

	Subtotal     decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null"`
	ShippingCost decimal.Decimal `gorm:"column:shipping_cost;type:numeric(12,2);not null"`
	Total        decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null"`

	// Gateway linkage. PaymentStatus stores the gateway status string
	// verbatim, independent of the order status mapping.
	PaymentID     *string `gorm:"column:payment_id"`
	PaymentStatus *string `gorm:"column:payment_status"`

	// Shipping details are all optional: a cash/in-person sale records the
	// order without a delivery address.
	ShippingName    *string `gorm:"column:shipping_name"`
	ShippingAddress *string `gorm:"column:shipping_address"`
	ShippingCity    *string `gorm:"column:shipping_city"`
	ShippingState   *string `gorm:"column:shipping_state"`
	ShippingZip     *string `gorm:"column:shipping_zip"`
	ShippingPhone   *string `gorm:"column:shipping_phone"`
	Notes           *string `gorm:"column:notes"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
	PaidAt    *time.Time `gorm:"column:paid_at"`
	ShippedAt *time.Time `gorm:"column:shipped_at"`
}
