package admin

import (
	"github.com/shopspring/decimal"

	"github.com/maldonadorepuestos/backend/internal/auth"
	"github.com/maldonadorepuestos/backend/pkg/db/models"
	"github.com/maldonadorepuestos/backend/pkg/pagination"
)

// DashboardStats is the back-office landing page summary.
type DashboardStats struct {
	OrdersByStatus  map[string]int64 `json:"orders_by_status"`
	TotalOrders     int64            `json:"total_orders"`
	OrdersToday     int64            `json:"orders_today"`
	Revenue         decimal.Decimal  `json:"revenue"`
	TotalUsers      int64            `json:"total_users"`
	PendingQuotes   int64            `json:"pending_quotes"`
	LowStockCount   int64            `json:"low_stock_count"`
	LowStockSamples []models.Product `json:"low_stock_samples"`
}

// UserList wraps one page of user accounts plus page metadata.
type UserList struct {
	Users []auth.UserDTO  `json:"users"`
	Meta  pagination.Meta `json:"meta"`
}
