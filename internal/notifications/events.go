package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/maldonadorepuestos/backend/pkg/enums"
)

// Envelope wraps every message on the events topic. EventID is the
// deduplication handle for consumers.
type Envelope struct {
	EventID    string            `json:"event_id"`
	EventType  enums.DomainEvent `json:"event_type"`
	OccurredAt time.Time         `json:"occurred_at"`
	Data       json.RawMessage   `json:"data"`
}

// OrderCreatedPayload describes a freshly placed order.
type OrderCreatedPayload struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	UserID      uuid.UUID `json:"user_id"`
	Total       string    `json:"total"`
	ItemCount   int       `json:"item_count"`
}

// OrderStatusChangedPayload describes an order lifecycle transition.
type OrderStatusChangedPayload struct {
	OrderID        uuid.UUID         `json:"order_id"`
	OrderNumber    string            `json:"order_number"`
	UserID         uuid.UUID         `json:"user_id"`
	PreviousStatus enums.OrderStatus `json:"previous_status"`
	Status         enums.OrderStatus `json:"status"`
}

// QuoteCreatedPayload describes a new parts quote request.
type QuoteCreatedPayload struct {
	QuoteID         uuid.UUID `json:"quote_id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Message         string    `json:"message"`
	ItemCount       int       `json:"item_count"`
	SentViaWhatsApp bool      `json:"sent_via_whatsapp"`
}
