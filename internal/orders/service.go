package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/maldonadorepuestos/backend/pkg/config"
	"github.com/maldonadorepuestos/backend/pkg/db"
	"github.com/maldonadorepuestos/backend/pkg/db/models"
	"github.com/maldonadorepuestos/backend/pkg/enums"
	pkgerrors "github.com/maldonadorepuestos/backend/pkg/errors"
	"github.com/maldonadorepuestos/backend/pkg/logger"
	"github.com/maldonadorepuestos/backend/pkg/metrics"
	"github.com/maldonadorepuestos/backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// EventPublisher receives order lifecycle notifications after the enclosing
// transaction commits. Implementations must not block checkout.
type EventPublisher interface {
	OrderCreated(ctx context.Context, order *models.Order)
	OrderStatusChanged(ctx context.Context, order *models.Order, previous enums.OrderStatus)
}

// Service defines the order lifecycle operations.
type Service interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*List, error)
	AdminListOrders(ctx context.Context, params pagination.Params, filters Filters) (*List, error)
	AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, input AdminStatusInput) (*models.Order, error)
}

type service struct {
	repo              Repository
	tx                txRunner
	events            EventPublisher
	metrics           *metrics.APIMetrics
	logg              *logger.Logger
	numberPrefix      string
	numberMaxAttempts int
	freeShippingFrom  decimal.Decimal
	flatShippingFee   decimal.Decimal
}

// NewService builds an orders service with the required dependencies. The
// shipping policy is parsed once here so a bad config fails at startup, not
// at checkout.
func NewService(repo Repository, tx txRunner, events EventPublisher, m *metrics.APIMetrics, logg *logger.Logger, cfg config.OrdersConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}

	threshold, err := decimal.NewFromString(cfg.FreeShippingThreshold)
	if err != nil {
		return nil, fmt.Errorf("invalid free shipping threshold %q: %w", cfg.FreeShippingThreshold, err)
	}
	fee, err := decimal.NewFromString(cfg.FlatShippingFee)
	if err != nil {
		return nil, fmt.Errorf("invalid flat shipping fee %q: %w", cfg.FlatShippingFee, err)
	}

	prefix := strings.TrimSpace(cfg.NumberPrefix)
	if prefix == "" {
		prefix = "MR"
	}
	attempts := cfg.NumberMaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	return &service{
		repo:              repo,
		tx:                tx,
		events:            events,
		metrics:           m,
		logg:              logg,
		numberPrefix:      prefix,
		numberMaxAttempts: attempts,
		freeShippingFrom:  threshold,
		flatShippingFee:   fee,
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var created *models.Order
	var lastErr error

	// The order number carries a random suffix, so a unique violation means
	// we drew a duplicate. Redraw and run the whole checkout again; the
	// rolled-back transaction restored cart and stock.
	for attempt := 0; attempt < s.numberMaxAttempts; attempt++ {
		created, lastErr = s.createOrderOnce(ctx, userID, input)
		if lastErr == nil {
			break
		}
		if typed := pkgerrors.As(lastErr); typed == nil || typed.Code() != pkgerrors.CodeDuplicateOrderNumber {
			return nil, lastErr
		}
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"attempt": attempt + 1}), "order number collision, retrying")
	}
	if lastErr != nil {
		return nil, lastErr
	}

	s.metrics.IncOrderCreated()
	if s.events != nil {
		s.events.OrderCreated(ctx, created)
	}

	ctx = s.logg.WithOrderNumber(ctx, created.OrderNumber)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id": created.ID.String(),
		"total":    created.Total.String(),
		"items":    len(created.Items),
	}), "order created")

	return created, nil
}

func (s *service) createOrderOnce(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*models.Order, error) {
	number, err := GenerateOrderNumber(s.numberPrefix, time.Now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order number")
	}

	var created *models.Order
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cartItems, err := repo.CartItemsForUser(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if len(cartItems) == 0 {
			return pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
		}

		subtotal := decimal.Zero
		items := make([]models.OrderItem, 0, len(cartItems))
		for _, line := range cartItems {
			product := line.Product
			if product == nil || !product.IsActive {
				return pkgerrors.New(pkgerrors.CodeProductUnavailable, "a product in the cart is no longer available").
					WithDetails(map[string]any{"product_id": line.ProductID.String()})
			}

			ok, err := repo.DecrementStock(ctx, product.ID, line.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve stock")
			}
			if !ok {
				available, stockErr := repo.ProductStock(ctx, product.ID)
				if stockErr != nil {
					available = 0
				}
				return pkgerrors.New(pkgerrors.CodeInsufficientStock,
					fmt.Sprintf("only %d units of %s available", available, product.Code)).
					WithDetails(map[string]any{
						"product_id":   product.ID.String(),
						"product_code": product.Code,
						"requested":    line.Quantity,
						"available":    available,
					})
			}

			lineTotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			subtotal = subtotal.Add(lineTotal)
			productID := product.ID
			items = append(items, models.OrderItem{
				ProductID:    &productID,
				ProductName:  product.Name,
				ProductCode:  product.Code,
				ProductBrand: product.Brand,
				Quantity:     line.Quantity,
				UnitPrice:    product.Price,
				TotalPrice:   lineTotal,
			})
		}

		shipping := s.shippingFor(subtotal)
		order := &models.Order{
			UserID:          userID,
			OrderNumber:     number,
			Status:          enums.OrderStatusPending,
			Subtotal:        subtotal,
			ShippingCost:    shipping,
			Total:           subtotal.Add(shipping),
			ShippingName:    optionalText(input.ShippingName),
			ShippingAddress: optionalText(input.ShippingAddress),
			ShippingCity:    optionalText(input.ShippingCity),
			ShippingState:   optionalText(input.ShippingState),
			ShippingZip:     optionalText(input.ShippingZip),
			ShippingPhone:   optionalText(input.ShippingPhone),
			Notes:           input.Notes,
		}

		if err := repo.CreateOrder(ctx, order); err != nil {
			if db.IsUniqueViolation(err, "idx_orders_order_number") {
				return pkgerrors.Wrap(pkgerrors.CodeDuplicateOrderNumber, err, "order number already taken")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := repo.CreateOrderItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
		}

		if err := repo.ClearCart(ctx, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}

		order.Items = items
		created = order
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return created, nil
}

func (s *service) shippingFor(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(s.freeShippingFrom) {
		return decimal.Zero
	}
	return s.flatShippingFee
}

func (s *service) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
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
	return order, nil
}

func (s *service) ListUserOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*List, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	orders, total, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return &List{Orders: orders, Meta: pagination.NewMeta(params, total)}, nil
}

func (s *service) AdminListOrders(ctx context.Context, params pagination.Params, filters Filters) (*List, error) {
	orders, total, err := s.repo.ListAll(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return &List{Orders: orders, Meta: pagination.NewMeta(params, total)}, nil
}

func (s *service) AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, input AdminStatusInput) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	var updated *models.Order
	var previousStatus enums.OrderStatus
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		// Operator override: unlike the gateway-driven path, admin action may
		// set any status directly, including jumps the state machine does not
		// allow (mark a paid order shipped, correct a mis-set terminal state).
		// Out-of-graph jumps are logged for the audit trail.
		if order.Status != input.Status && !CanTransition(order.Status, input.Status) {
			s.logg.Warn(s.logg.WithFields(s.logg.WithOrderNumber(ctx, order.OrderNumber), map[string]any{
				"from": order.Status.String(),
				"to":   input.Status.String(),
			}), "admin status override outside normal flow")
		}

		now := time.Now().UTC()
		updates := map[string]any{"status": input.Status}
		switch input.Status {
		case enums.OrderStatusPaid:
			if order.PaidAt == nil {
				updates["paid_at"] = now
			}
		case enums.OrderStatusShipped:
			if order.ShippedAt == nil {
				updates["shipped_at"] = now
			}
		}

		if note := strings.TrimSpace(input.Note); note != "" {
			annotated := fmt.Sprintf("[Admin] %s", note)
			if order.Notes != nil && *order.Notes != "" {
				annotated = *order.Notes + "\n" + annotated
			}
			updates["notes"] = annotated
		}

		if err := repo.UpdateFields(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		previous := order.Status
		order.Status = input.Status
		if v, ok := updates["paid_at"].(time.Time); ok {
			order.PaidAt = &v
		}
		if v, ok := updates["shipped_at"].(time.Time); ok {
			order.ShippedAt = &v
		}
		if v, ok := updates["notes"].(string); ok {
			order.Notes = &v
		}

		updated = order
		previousStatus = previous
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.events != nil && previousStatus != updated.Status {
		s.events.OrderStatusChanged(ctx, updated, previousStatus)
	}

	s.logg.Info(s.logg.WithFields(s.logg.WithOrderNumber(ctx, updated.OrderNumber), map[string]any{
		"status": updated.Status.String(),
	}), "order status updated by admin")

	return updated, nil
}
