package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// APIMetrics records the counters surfaced on /metrics.
type APIMetrics struct {
	ordersCreated prometheus.Counter
	webhookEvents *prometheus.CounterVec
	emailsSent    *prometheus.CounterVec
}

// NewAPIMetrics registers the API metrics on the provided registerer.
// A nil registerer yields a no-op recorder, which keeps tests quiet.
func NewAPIMetrics(reg prometheus.Registerer) *APIMetrics {
	if reg == nil {
		return &APIMetrics{}
	}
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders created through checkout.",
	})
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhook_events_total",
		Help: "Payment webhook deliveries by outcome.",
	}, []string{"outcome"})
	emailsSent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_emails_total",
		Help: "Notification emails by result.",
	}, []string{"result"})
	reg.MustRegister(ordersCreated, webhookEvents, emailsSent)
	return &APIMetrics{
		ordersCreated: ordersCreated,
		webhookEvents: webhookEvents,
		emailsSent:    emailsSent,
	}
}

// IncOrderCreated counts a successful checkout.
func (m *APIMetrics) IncOrderCreated() {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.Inc()
}

// IncWebhookEvent counts a webhook delivery with the given outcome
// (processed, duplicate, ignored, failed).
func (m *APIMetrics) IncWebhookEvent(outcome string) {
	if m == nil || m.webhookEvents == nil {
		return
	}
	m.webhookEvents.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncEmailSent counts a notification email attempt by result (sent, skipped, failed).
func (m *APIMetrics) IncEmailSent(result string) {
	if m == nil || m.emailsSent == nil {
		return
	}
	m.emailsSent.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
