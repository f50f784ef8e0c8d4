package orders

import (
	"strings"

	"github.com/maldonadorepuestos/backend/pkg/db/models"
	"github.com/maldonadorepuestos/backend/pkg/enums"
	"github.com/maldonadorepuestos/backend/pkg/pagination"
)

// CreateOrderInput carries the shipping details collected at checkout. The
// purchasable lines come from the user's cart, never from the request. All
// shipping fields may be left empty for a cash/in-person sale.
type CreateOrderInput struct {
	ShippingName    string
	ShippingAddress string
	ShippingCity    string
	ShippingState   string
	ShippingZip     string
	ShippingPhone   string
	Notes           *string
}

// optionalText maps blank input to NULL so omitted shipping details are
// stored as absent rather than empty strings.
func optionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Filters describe the inputs supported by the admin order list.
type Filters struct {
	Status *enums.OrderStatus
}

// List wraps one page of orders plus page metadata.
type List struct {
	Orders []models.Order  `json:"orders"`
	Meta   pagination.Meta `json:"meta"`
}

// AdminStatusInput captures an admin status override.
type AdminStatusInput struct {
	Status enums.OrderStatus
	Note   string
}
