package orders

import (
	"github.com/maldonadorepuestos/backend/pkg/enums"
)

// CanTransition reports whether the order status machine allows moving from
// one status to another. Cancellation is reachable from every non-terminal
// state; everything else advances along the fulfillment path.
func CanTransition(from, to enums.OrderStatus) bool {
	if from == to {
		return false
	}
	if from.IsTerminal() {
		return false
	}
	if to == enums.OrderStatusCancelled {
		return true
	}

	switch from {
	case enums.OrderStatusPending:
		return to == enums.OrderStatusPaymentPending || to == enums.OrderStatusPaid
	case enums.OrderStatusPaymentPending:
		return to == enums.OrderStatusPaid
	case enums.OrderStatusPaid:
		return to == enums.OrderStatusProcessing
	case enums.OrderStatusProcessing:
		return to == enums.OrderStatusShipped
	case enums.OrderStatusShipped:
		return to == enums.OrderStatusDelivered
	default:
		return false
	}
}

// MapGatewayStatus translates a MercadoPago payment status into the order
// status it implies. The second return is false for gateway statuses that
// should not move the order at all (in mediation, charged back, unknown).
func MapGatewayStatus(gatewayStatus string) (enums.OrderStatus, bool) {
	switch gatewayStatus {
	case "approved":
		return enums.OrderStatusPaid, true
	case "rejected", "cancelled":
		return enums.OrderStatusCancelled, true
	case "pending", "in_process":
		return enums.OrderStatusPaymentPending, true
	default:
		return "", false
	}
}
