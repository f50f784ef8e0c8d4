package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/maldonadorepuestos/backend/internal/orders"
	"github.com/maldonadorepuestos/backend/pkg/db/models"
	"github.com/maldonadorepuestos/backend/pkg/enums"
	pkgerrors "github.com/maldonadorepuestos/backend/pkg/errors"
	"github.com/maldonadorepuestos/backend/pkg/logger"
	"github.com/maldonadorepuestos/backend/pkg/mercadopago"
	"github.com/maldonadorepuestos/backend/pkg/metrics"
)

type gateway interface {
	CreatePreference(ctx context.Context, params mercadopago.PreferenceParams) (*mercadopago.Preference, error)
	GetPayment(ctx context.Context, paymentID string) (*mercadopago.Payment, error)
}

type replayGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

// Webhook outcome labels recorded on the metrics counter.
const (
	outcomeProcessed = "processed"
	outcomeDuplicate = "duplicate"
	outcomeIgnored   = "ignored"
	outcomeFailed    = "failed"
)

// currencyID is the currency every preference line is charged in.
const currencyID = "ARS"

// Service ties orders to the payment gateway: creating checkout preferences
// and reconciling webhook deliveries back onto order state.
type Service interface {
	CreatePreference(ctx context.Context, userID, orderID uuid.UUID) (*CheckoutPreference, error)
	HandleWebhook(ctx context.Context, notification mercadopago.WebhookNotification) error
	GetStatus(ctx context.Context, userID, orderID uuid.UUID) (*Status, error)
}

type service struct {
	repo        orders.Repository
	gateway     gateway
	guard       replayGuard
	events      orders.EventPublisher
	metrics     *metrics.APIMetrics
	logg        *logger.Logger
	frontendURL string
	callbackURL string
}

// NewService builds the payments service.
func NewService(repo orders.Repository, gw gateway, guard replayGuard, events orders.EventPublisher, m *metrics.APIMetrics, logg *logger.Logger, frontendURL, publicAPIURL string) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if gw == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if guard == nil {
		return nil, fmt.Errorf("replay guard required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}

	var callback string
	if base := strings.TrimRight(strings.TrimSpace(publicAPIURL), "/"); base != "" {
		callback = base + "/api/v1/webhooks/mercadopago"
	}

	return &service{
		repo:        repo,
		gateway:     gw,
		guard:       guard,
		events:      events,
		metrics:     m,
		logg:        logg,
		frontendURL: strings.TrimRight(strings.TrimSpace(frontendURL), "/"),
		callbackURL: callback,
	}, nil
}

func (s *service) CreatePreference(ctx context.Context, userID, orderID uuid.UUID) (*CheckoutPreference, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.repo.FindByIDAndUser(ctx, orderID, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if order.Status != enums.OrderStatusPending && order.Status != enums.OrderStatusPaymentPending {
		return nil, pkgerrors.New(pkgerrors.CodeOrderNotPayable,
			fmt.Sprintf("order in status %s cannot be paid", order.Status)).
			WithDetails(map[string]any{"status": order.Status.String()})
	}

	items := make([]mercadopago.PreferenceItem, 0, len(order.Items)+1)
	for _, item := range order.Items {
		price, _ := item.UnitPrice.Float64()
		items = append(items, mercadopago.PreferenceItem{
			Title:      item.ProductName,
			Quantity:   item.Quantity,
			UnitPrice:  price,
			CurrencyID: currencyID,
		})
	}
	if order.ShippingCost.IsPositive() {
		shipping, _ := order.ShippingCost.Float64()
		items = append(items, mercadopago.PreferenceItem{
			Title:      "Envío",
			Quantity:   1,
			UnitPrice:  shipping,
			CurrencyID: currencyID,
		})
	}

	params := mercadopago.PreferenceParams{
		Items:             items,
		ExternalReference: order.OrderNumber,
		AutoReturn:        "approved",
		NotificationURL:   s.callbackURL,
	}
	if s.frontendURL != "" {
		params.BackURLs = &mercadopago.BackURLs{
			Success: s.frontendURL + "/checkout/success",
			Failure: s.frontendURL + "/checkout/failure",
			Pending: s.frontendURL + "/checkout/pending",
		}
	}

	pref, err := s.gateway.CreatePreference(ctx, params)
	if err != nil {
		return nil, err
	}

	// The shopper is being redirected to the gateway checkout, so the order
	// now awaits the gateway's verdict.
	if order.Status != enums.OrderStatusPaymentPending {
		if err := s.repo.UpdateFields(ctx, order.ID, map[string]any{"status": enums.OrderStatusPaymentPending}); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order awaiting payment")
		}
		order.Status = enums.OrderStatusPaymentPending
	}

	ctx = s.logg.WithOrderNumber(ctx, order.OrderNumber)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"preference_id": pref.ID}), "checkout preference created")

	return &CheckoutPreference{
		PreferenceID:     pref.ID,
		InitPoint:        pref.InitPoint,
		SandboxInitPoint: pref.SandboxInitPoint,
		OrderNumber:      order.OrderNumber,
	}, nil
}

// HandleWebhook reconciles one gateway notification. Callers always ack the
// delivery regardless of the returned error; the error exists for logging
// and the failed mark has already been released so the gateway retry works.
func (s *service) HandleWebhook(ctx context.Context, notification mercadopago.WebhookNotification) error {
	if notification.Type != "payment" {
		s.metrics.IncWebhookEvent(outcomeIgnored)
		return nil
	}
	paymentID := strings.TrimSpace(notification.Data.ID)
	if paymentID == "" {
		s.metrics.IncWebhookEvent(outcomeIgnored)
		return nil
	}

	seen, err := s.guard.CheckAndMark(ctx, paymentID)
	if err != nil {
		s.metrics.IncWebhookEvent(outcomeFailed)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "webhook replay check")
	}
	if seen {
		s.metrics.IncWebhookEvent(outcomeDuplicate)
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{"payment_id": paymentID}), "duplicate webhook suppressed")
		return nil
	}

	if err := s.processPayment(ctx, paymentID); err != nil {
		if delErr := s.guard.Delete(ctx, paymentID); delErr != nil {
			s.logg.Error(ctx, "release webhook mark", delErr)
		}
		s.metrics.IncWebhookEvent(outcomeFailed)
		return err
	}

	s.metrics.IncWebhookEvent(outcomeProcessed)
	return nil
}

func (s *service) processPayment(ctx context.Context, paymentID string) error {
	payment, err := s.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		return err
	}

	reference := strings.TrimSpace(payment.ExternalReference)
	if reference == "" {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"payment_id": paymentID}), "payment without external reference")
		return nil
	}

	order, err := s.repo.FindByNumber(ctx, reference)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			s.logg.Warn(s.logg.WithOrderNumber(ctx, reference), "webhook references unknown order")
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order by number")
	}

	ctx = s.logg.WithOrderNumber(ctx, order.OrderNumber)

	gatewayID := fmt.Sprintf("%d", payment.ID)
	updates := map[string]any{
		"payment_id":     gatewayID,
		"payment_status": payment.Status,
	}

	previous := order.Status
	target, mapped := orders.MapGatewayStatus(payment.Status)
	statusChanged := false
	if mapped && orders.CanTransition(order.Status, target) {
		updates["status"] = target
		if target == enums.OrderStatusPaid && order.PaidAt == nil {
			updates["paid_at"] = time.Now().UTC()
		}
		statusChanged = true
	} else if mapped && target != order.Status {
		// e.g. an approval arriving after the order was cancelled: record
		// the gateway fields but leave the order state alone.
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"gateway_status": payment.Status,
			"order_status":   order.Status.String(),
		}), "gateway status ignored for order in current state")
	}

	if err := s.repo.UpdateFields(ctx, order.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply payment update")
	}

	order.PaymentID = &gatewayID
	status := payment.Status
	order.PaymentStatus = &status
	if statusChanged {
		order.Status = target
		if v, ok := updates["paid_at"].(time.Time); ok {
			order.PaidAt = &v
		}
		if s.events != nil {
			s.events.OrderStatusChanged(ctx, order, previous)
		}
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"payment_id":     gatewayID,
		"gateway_status": payment.Status,
		"order_status":   order.Status.String(),
	}), "payment webhook reconciled")

	return nil
}

func (s *service) GetStatus(ctx context.Context, userID, orderID uuid.UUID) (*Status, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.repo.FindByIDAndUser(ctx, orderID, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	return statusFor(order), nil
}

func statusFor(order *models.Order) *Status {
	return &Status{
		OrderNumber:   order.OrderNumber,
		OrderStatus:   order.Status.String(),
		PaymentID:     order.PaymentID,
		PaymentStatus: order.PaymentStatus,
	}
}
