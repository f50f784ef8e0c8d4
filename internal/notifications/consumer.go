package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"go.uber.org/multierr"

	"github.com/maldonadorepuestos/backend/pkg/enums"
	"github.com/maldonadorepuestos/backend/pkg/logger"
	"github.com/maldonadorepuestos/backend/pkg/redis"
)

const (
	consumerScope  = "email-notifications"
	idempotencyTTL = 7 * 24 * time.Hour
)

// statusSubjects maps order transitions worth a customer email. Transitions
// not listed are internal back-office moves.
var statusSubjects = map[enums.OrderStatus]string{
	enums.OrderStatusPaid:      "Pago confirmado",
	enums.OrderStatusShipped:   "Tu pedido está en camino",
	enums.OrderStatusDelivered: "Pedido entregado",
	enums.OrderStatusCancelled: "Pedido cancelado",
}

// Consumer watches the events subscription and sends the matching emails.
type Consumer struct {
	repo         Repository
	subscription *pubsub.Subscriber
	mailer       Mailer
	store        redis.IdempotencyStore
	logg         *logger.Logger
	adminEmail   string
}

// NewConsumer builds the email notification consumer.
func NewConsumer(repo Repository, subscription *pubsub.Subscriber, mailer Mailer, store redis.IdempotencyStore, adminEmail string, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository is required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("events subscription is required")
	}
	if mailer == nil {
		return nil, fmt.Errorf("mailer is required")
	}
	if store == nil {
		return nil, fmt.Errorf("idempotency store is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		mailer:       mailer,
		store:        store,
		logg:         logg,
		adminEmail:   adminEmail,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if c.process(ctx, msg.ID, msg.Data) {
			msg.Ack()
			return
		}
		msg.Nack()
	})
}

// process handles one message and reports whether it should be acked.
// Malformed messages are acked: redelivery cannot fix them.
func (c *Consumer) process(ctx context.Context, messageID string, data []byte) bool {
	ctx = c.logg.WithField(ctx, "message_id", messageID)

	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.logg.Error(ctx, "decoding event envelope", err)
		return true
	}
	ctx = c.logg.WithFields(ctx, map[string]any{
		"event_id":   envelope.EventID,
		"event_type": string(envelope.EventType),
	})

	key := c.store.IdempotencyKey(consumerScope, envelope.EventID)
	fresh, err := c.store.SetNX(ctx, key, "1", idempotencyTTL)
	if err != nil {
		c.logg.Error(ctx, "idempotency check failed", err)
		return false
	}
	if !fresh {
		c.logg.Info(ctx, "event already handled")
		return true
	}

	if err := c.handle(ctx, envelope); err != nil {
		c.logg.Error(ctx, "handling event failed", err)
		// Release the mark so a redelivery can retry.
		_ = c.store.Del(ctx, key)
		return false
	}
	return true
}

func (c *Consumer) handle(ctx context.Context, envelope Envelope) error {
	switch envelope.EventType {
	case enums.EventOrderCreated:
		var payload OrderCreatedPayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			c.logg.Error(ctx, "decoding order created payload", err)
			return nil
		}
		return c.handleOrderCreated(ctx, payload)
	case enums.EventOrderStatusChanged:
		var payload OrderStatusChangedPayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			c.logg.Error(ctx, "decoding order status payload", err)
			return nil
		}
		return c.handleOrderStatusChanged(ctx, payload)
	case enums.EventQuoteCreated:
		var payload QuoteCreatedPayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			c.logg.Error(ctx, "decoding quote payload", err)
			return nil
		}
		return c.handleQuoteCreated(ctx, payload)
	default:
		c.logg.Info(ctx, "event type not handled")
		return nil
	}
}

func (c *Consumer) handleOrderCreated(ctx context.Context, payload OrderCreatedPayload) error {
	user, err := c.repo.FindUser(ctx, payload.UserID)
	if err != nil {
		return fmt.Errorf("loading order customer: %w", err)
	}

	subject := fmt.Sprintf("Recibimos tu pedido %s", payload.OrderNumber)
	body := fmt.Sprintf(
		"Hola %s,\n\nRecibimos tu pedido %s por Gs. %s.\nTe avisaremos cuando el pago sea confirmado.\n\nMaldonado Repuestos",
		user.Name, payload.OrderNumber, payload.Total,
	)
	// One recipient failing must not block the other; errors are combined
	// so the redelivery retries both.
	sendErr := c.mailer.Send(ctx, user.Email, subject, body)

	if c.adminEmail != "" {
		adminSubject := fmt.Sprintf("Nuevo pedido %s", payload.OrderNumber)
		adminBody := fmt.Sprintf(
			"Pedido %s de %s (%s) por Gs. %s con %d ítems.",
			payload.OrderNumber, user.Name, user.Email, payload.Total, payload.ItemCount,
		)
		sendErr = multierr.Append(sendErr, c.mailer.Send(ctx, c.adminEmail, adminSubject, adminBody))
	}
	return sendErr
}

func (c *Consumer) handleOrderStatusChanged(ctx context.Context, payload OrderStatusChangedPayload) error {
	subject, ok := statusSubjects[payload.Status]
	if !ok {
		c.logg.Info(ctx, "status transition without customer email")
		return nil
	}

	user, err := c.repo.FindUser(ctx, payload.UserID)
	if err != nil {
		return fmt.Errorf("loading order customer: %w", err)
	}

	body := fmt.Sprintf(
		"Hola %s,\n\nTu pedido %s pasó de %s a %s.\n\nMaldonado Repuestos",
		user.Name, payload.OrderNumber, payload.PreviousStatus, payload.Status,
	)
	return c.mailer.Send(ctx, user.Email, fmt.Sprintf("%s - %s", subject, payload.OrderNumber), body)
}

func (c *Consumer) handleQuoteCreated(ctx context.Context, payload QuoteCreatedPayload) error {
	ackBody := fmt.Sprintf(
		"Hola %s,\n\nRecibimos tu solicitud de presupuesto y te responderemos a la brevedad.\n\nMaldonado Repuestos",
		payload.Name,
	)
	sendErr := c.mailer.Send(ctx, payload.Email, "Recibimos tu solicitud de presupuesto", ackBody)

	if c.adminEmail == "" {
		c.logg.Warn(ctx, "admin email not configured, quote alert skipped")
		return sendErr
	}

	channel := "formulario web"
	if payload.SentViaWhatsApp {
		channel = "WhatsApp"
	}
	subject := fmt.Sprintf("Nueva solicitud de presupuesto de %s", payload.Name)
	body := fmt.Sprintf(
		"Solicitud vía %s.\n\nNombre: %s\nEmail: %s\nTeléfono: %s\nÍtems referenciados: %d\n\nMensaje:\n%s",
		channel, payload.Name, payload.Email, payload.Phone, payload.ItemCount, payload.Message,
	)
	return multierr.Append(sendErr, c.mailer.Send(ctx, c.adminEmail, subject, body))
}
