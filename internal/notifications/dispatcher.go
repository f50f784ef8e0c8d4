package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/maldonadorepuestos/backend/pkg/db/models"
	"github.com/maldonadorepuestos/backend/pkg/enums"
	"github.com/maldonadorepuestos/backend/pkg/logger"
)

const publishTimeout = 10 * time.Second

// messagePublisher abstracts the Pub/Sub publisher for tests.
type messagePublisher interface {
	Publish(ctx context.Context, data []byte, attrs map[string]string) error
}

// PubSubPublisher adapts a Pub/Sub v2 publisher to the dispatcher.
type PubSubPublisher struct {
	publisher *pubsub.Publisher
}

// NewPubSubPublisher wraps the events topic publisher.
func NewPubSubPublisher(publisher *pubsub.Publisher) (*PubSubPublisher, error) {
	if publisher == nil {
		return nil, fmt.Errorf("pubsub publisher is required")
	}
	return &PubSubPublisher{publisher: publisher}, nil
}

func (p *PubSubPublisher) Publish(ctx context.Context, data []byte, attrs map[string]string) error {
	result := p.publisher.Publish(ctx, &pubsub.Message{Data: data, Attributes: attrs})
	_, err := result.Get(ctx)
	return err
}

// Dispatcher turns domain events into messages on the events topic. Publishing
// is best effort and never blocks the calling request: failures are logged and
// the order or quote flow proceeds regardless.
type Dispatcher struct {
	publisher messagePublisher
	logg      *logger.Logger
	now       func() time.Time

	// async is disabled in tests so publishes can be asserted synchronously.
	async bool
}

// NewDispatcher constructs the domain event dispatcher.
func NewDispatcher(publisher messagePublisher, logg *logger.Logger) (*Dispatcher, error) {
	if publisher == nil {
		return nil, fmt.Errorf("message publisher is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Dispatcher{publisher: publisher, logg: logg, now: time.Now, async: true}, nil
}

// OrderCreated implements the orders event publisher.
func (d *Dispatcher) OrderCreated(ctx context.Context, order *models.Order) {
	if order == nil {
		return
	}
	d.dispatch(ctx, enums.EventOrderCreated, OrderCreatedPayload{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Total:       order.Total.StringFixed(2),
		ItemCount:   len(order.Items),
	})
}

// OrderStatusChanged implements the orders event publisher.
func (d *Dispatcher) OrderStatusChanged(ctx context.Context, order *models.Order, previous enums.OrderStatus) {
	if order == nil {
		return
	}
	d.dispatch(ctx, enums.EventOrderStatusChanged, OrderStatusChangedPayload{
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		UserID:         order.UserID,
		PreviousStatus: previous,
		Status:         order.Status,
	})
}

// QuoteCreated implements the quotes event publisher.
func (d *Dispatcher) QuoteCreated(ctx context.Context, quote *models.Quote) {
	if quote == nil {
		return
	}
	d.dispatch(ctx, enums.EventQuoteCreated, QuoteCreatedPayload{
		QuoteID:         quote.ID,
		Name:            quote.Name,
		Email:           quote.Email,
		Phone:           quote.Phone,
		Message:         quote.Message,
		ItemCount:       len(quote.Items),
		SentViaWhatsApp: quote.SentViaWhatsApp,
	})
}

func (d *Dispatcher) dispatch(ctx context.Context, eventType enums.DomainEvent, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		d.logg.Error(ctx, "encoding event payload", err)
		return
	}
	envelope := Envelope{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: d.now().UTC(),
		Data:       data,
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		d.logg.Error(ctx, "encoding event envelope", err)
		return
	}
	attrs := map[string]string{"event_type": string(eventType)}

	if !d.async {
		d.publish(ctx, envelope.EventID, eventType, body, attrs)
		return
	}

	// The request context may be canceled right after the response is
	// written, so the publish runs on a detached context.
	detached := context.WithoutCancel(ctx)
	go func() {
		publishCtx, cancel := context.WithTimeout(detached, publishTimeout)
		defer cancel()
		d.publish(publishCtx, envelope.EventID, eventType, body, attrs)
	}()
}

func (d *Dispatcher) publish(ctx context.Context, eventID string, eventType enums.DomainEvent, body []byte, attrs map[string]string) {
	ctx = d.logg.WithFields(ctx, map[string]any{
		"event_id":   eventID,
		"event_type": string(eventType),
	})
	if err := d.publisher.Publish(ctx, body, attrs); err != nil {
		d.logg.Error(ctx, "publishing domain event", err)
		return
	}
	d.logg.Info(ctx, "domain event published")
}
