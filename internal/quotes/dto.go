package quotes

import (
	"github.com/google/uuid"

	"github.com/maldonadorepuestos/backend/pkg/db/models"
	"github.com/maldonadorepuestos/backend/pkg/enums"
	"github.com/maldonadorepuestos/backend/pkg/pagination"
)

// QuoteItemRequest references a catalog product inside a quote request.
type QuoteItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1,max=999"`
}

// CreateQuoteRequest is the payload of the public quote submission endpoint.
type CreateQuoteRequest struct {
	Name            string             `json:"name" validate:"required,min=2,max=120"`
	Email           string             `json:"email" validate:"required,email"`
	Phone           string             `json:"phone" validate:"required,max=30"`
	VehicleInfo     *string            `json:"vehicle_info,omitempty" validate:"omitempty,max=255"`
	Message         string             `json:"message" validate:"required,min=5,max=2000"`
	SentViaWhatsApp bool               `json:"sent_via_whatsapp"`
	Items           []QuoteItemRequest `json:"items,omitempty" validate:"omitempty,max=50,dive"`
}

// Filters narrows a quote listing.
type Filters struct {
	Status *enums.QuoteStatus
	UserID *uuid.UUID
}

// List wraps one page of quotes plus page metadata.
type List struct {
	Quotes []models.Quote  `json:"quotes"`
	Meta   pagination.Meta `json:"meta"`
}

// AdminUpdateInput carries the status and notes an admin applies to a quote.
type AdminUpdateInput struct {
	Status     enums.QuoteStatus
	AdminNotes *string
}
