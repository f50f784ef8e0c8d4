package quotes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/maldonadorepuestos/backend/pkg/db/models"
	"github.com/maldonadorepuestos/backend/pkg/enums"
	pkgerrors "github.com/maldonadorepuestos/backend/pkg/errors"
	"github.com/maldonadorepuestos/backend/pkg/logger"
	"github.com/maldonadorepuestos/backend/pkg/pagination"
)

// EventPublisher receives quote lifecycle notifications after the enclosing
// transaction commits. Implementations must not block submission.
type EventPublisher interface {
	QuoteCreated(ctx context.Context, quote *models.Quote)
}

// Service defines the quote request operations.
type Service interface {
	Create(ctx context.Context, userID *uuid.UUID, req CreateQuoteRequest) (*models.Quote, error)
	ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*List, error)
	AdminList(ctx context.Context, params pagination.Params, filters Filters) (*List, error)
	AdminGet(ctx context.Context, quoteID uuid.UUID) (*models.Quote, error)
	AdminUpdate(ctx context.Context, quoteID uuid.UUID, input AdminUpdateInput) (*models.Quote, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo   Repository
	tx     txRunner
	events EventPublisher
	logg   *logger.Logger
	now    func() time.Time
}

// NewService constructs the quotes service.
func NewService(repo Repository, tx txRunner, events EventPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("quotes repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if events == nil {
		return nil, fmt.Errorf("event publisher is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{repo: repo, tx: tx, events: events, logg: logg, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, userID *uuid.UUID, req CreateQuoteRequest) (*models.Quote, error) {
	items, err := s.snapshotItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	quote := &models.Quote{
		UserID:          userID,
		Name:            strings.TrimSpace(req.Name),
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:           strings.TrimSpace(req.Phone),
		VehicleInfo:     req.VehicleInfo,
		Message:         strings.TrimSpace(req.Message),
		SentViaWhatsApp: req.SentViaWhatsApp,
		Status:          enums.QuoteStatusPending,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, quote); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating quote")
		}
		for i := range items {
			items[i].QuoteID = quote.ID
		}
		if err := repo.CreateItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating quote items")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	quote.Items = items

	ctx = s.logg.WithField(ctx, "quote_id", quote.ID.String())
	s.logg.Info(ctx, "quote request received")
	s.events.QuoteCreated(ctx, quote)

	return quote, nil
}

// snapshotItems resolves product references into snapshot rows so the quote
// stays readable if a product is later removed from the catalog.
func (s *service) snapshotItems(ctx context.Context, reqs []QuoteItemRequest) ([]models.QuoteItem, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(reqs))
	for _, item := range reqs {
		ids = append(ids, item.ProductID)
	}
	products, err := s.repo.FindProducts(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading quoted products")
	}
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]models.QuoteItem, 0, len(reqs))
	for _, req := range reqs {
		product, ok := byID[req.ProductID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "one of the quoted products does not exist").
				WithDetails(map[string]any{"product_id": req.ProductID.String()})
		}
		productID := product.ID
		items = append(items, models.QuoteItem{
			ProductID:   &productID,
			ProductCode: product.Code,
			ProductName: product.Name,
			Quantity:    req.Quantity,
		})
	}
	return items, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*List, error) {
	quotes, total, err := s.repo.List(ctx, params, Filters{UserID: &userID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing quotes")
	}
	return &List{Quotes: quotes, Meta: pagination.NewMeta(params, total)}, nil
}

func (s *service) AdminList(ctx context.Context, params pagination.Params, filters Filters) (*List, error) {
	quotes, total, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing quotes")
	}
	return &List{Quotes: quotes, Meta: pagination.NewMeta(params, total)}, nil
}

func (s *service) AdminGet(ctx context.Context, quoteID uuid.UUID) (*models.Quote, error) {
	quote, err := s.repo.FindByID(ctx, quoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading quote")
	}
	return quote, nil
}

func (s *service) AdminUpdate(ctx context.Context, quoteID uuid.UUID, input AdminUpdateInput) (*models.Quote, error) {
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid quote status %q", input.Status))
	}

	quote, err := s.AdminGet(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{"status": input.Status}
	if input.AdminNotes != nil {
		updates["admin_notes"] = *input.AdminNotes
	}
	// First move out of pending marks the quote as responded.
	if quote.RespondedAt == nil && input.Status != enums.QuoteStatusPending {
		now := s.now().UTC()
		updates["responded_at"] = now
		quote.RespondedAt = &now
	}

	if err := s.repo.UpdateFields(ctx, quoteID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating quote")
	}

	quote.Status = input.Status
	if input.AdminNotes != nil {
		quote.AdminNotes = input.AdminNotes
	}
	return quote, nil
}
