package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/maldonadorepuestos/backend/api/responses"
	paymentsvc "github.com/maldonadorepuestos/backend/internal/payments"
	"github.com/maldonadorepuestos/backend/pkg/logger"
	"github.com/maldonadorepuestos/backend/pkg/mercadopago"
)

// MercadoPagoWebhook receives gateway payment notifications. The gateway
// retries on any non-2xx response, so this endpoint always acks: processing
// failures are logged and the notification is reconciled on the next retry
// or by polling the payment status.
func MercadoPagoWebhook(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var notification mercadopago.WebhookNotification
		if err := json.NewDecoder(r.Body).Decode(&notification); err != nil {
			logg.Error(r.Context(), "decoding webhook body", err)
			responses.WriteSuccess(w, map[string]string{"status": "received"})
			return
		}

		if err := svc.HandleWebhook(r.Context(), notification); err != nil {
			logg.Error(r.Context(), "webhook processing failed", err)
		}
		responses.WriteSuccess(w, map[string]string{"status": "received"})
	}
}
