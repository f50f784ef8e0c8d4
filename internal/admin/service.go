package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/maldonadorepuestos/backend/internal/auth"
	"github.com/maldonadorepuestos/backend/pkg/enums"
	pkgerrors "github.com/maldonadorepuestos/backend/pkg/errors"
	"github.com/maldonadorepuestos/backend/pkg/logger"
	"github.com/maldonadorepuestos/backend/pkg/pagination"
)

const (
	lowStockThreshold = 5
	lowStockSamples   = 10
)

// Orders in these states have been paid for and count towards revenue.
var revenueStatuses = []enums.OrderStatus{
	enums.OrderStatusPaid,
	enums.OrderStatusProcessing,
	enums.OrderStatusShipped,
	enums.OrderStatusDelivered,
}

// Service exposes the back-office console operations.
type Service interface {
	Dashboard(ctx context.Context) (*DashboardStats, error)
	ListUsers(ctx context.Context, params pagination.Params) (*UserList, error)
	SetUserActive(ctx context.Context, actorID, userID uuid.UUID, active bool) (*auth.UserDTO, error)
	SetUserRole(ctx context.Context, actorID, userID uuid.UUID, role enums.UserRole) (*auth.UserDTO, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
	now  func() time.Time
}

// NewService constructs the admin console service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("admin repository is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{repo: repo, logg: logg, now: time.Now}, nil
}

func (s *service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	ordersByStatus, err := s.repo.CountOrdersByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting orders")
	}
	var totalOrders int64
	for _, count := range ordersByStatus {
		totalOrders += count
	}

	startOfDay := s.now().UTC().Truncate(24 * time.Hour)
	ordersToday, err := s.repo.CountOrdersSince(ctx, startOfDay)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting today's orders")
	}

	revenue, err := s.repo.Revenue(ctx, revenueStatuses)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summing revenue")
	}

	totalUsers, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting users")
	}

	pendingQuotes, err := s.repo.CountQuotesByStatus(ctx, enums.QuoteStatusPending)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting quotes")
	}

	samples, lowStockCount, err := s.repo.LowStockProducts(ctx, lowStockThreshold, lowStockSamples)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing low stock products")
	}

	return &DashboardStats{
		OrdersByStatus:  ordersByStatus,
		TotalOrders:     totalOrders,
		OrdersToday:     ordersToday,
		Revenue:         revenue,
		TotalUsers:      totalUsers,
		PendingQuotes:   pendingQuotes,
		LowStockCount:   lowStockCount,
		LowStockSamples: samples,
	}, nil
}

func (s *service) ListUsers(ctx context.Context, params pagination.Params) (*UserList, error) {
	users, total, err := s.repo.ListUsers(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing users")
	}

	dtos := make([]auth.UserDTO, 0, len(users))
	for i := range users {
		dtos = append(dtos, *auth.NewUserDTO(&users[i]))
	}
	return &UserList{Users: dtos, Meta: pagination.NewMeta(params, total)}, nil
}

func (s *service) SetUserActive(ctx context.Context, actorID, userID uuid.UUID, active bool) (*auth.UserDTO, error) {
	if actorID == userID && !active {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "you cannot deactivate your own account")
	}

	user, err := s.repo.FindUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}

	if user.IsActive != active {
		if err := s.repo.UpdateUserFields(ctx, userID, map[string]any{"is_active": active}); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating user")
		}
		user.IsActive = active

		ctx = s.logg.WithFields(ctx, map[string]any{
			"target_user_id": userID.String(),
			"is_active":      active,
		})
		s.logg.Info(ctx, "user account toggled")
	}

	return auth.NewUserDTO(user), nil
}

func (s *service) SetUserRole(ctx context.Context, actorID, userID uuid.UUID, role enums.UserRole) (*auth.UserDTO, error) {
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid role %q", role))
	}
	// Demoting yourself would lock the last admin out mid-session.
	if actorID == userID && role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "you cannot demote your own account")
	}

	user, err := s.repo.FindUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}

	if user.Role != role {
		if err := s.repo.UpdateUserFields(ctx, userID, map[string]any{"role": role}); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating user")
		}
		user.Role = role

		ctx = s.logg.WithFields(ctx, map[string]any{
			"target_user_id": userID.String(),
			"role":           string(role),
		})
		s.logg.Info(ctx, "user role changed")
	}

	return auth.NewUserDTO(user), nil
}
