package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilRecorderIsNoOp(t *testing.T) {
	t.Parallel()

	var m *APIMetrics
	m.IncOrderCreated()
	m.IncWebhookEvent("processed")
	m.IncEmailSent("sent")

	empty := NewAPIMetrics(nil)
	empty.IncOrderCreated()
}

func TestCountersIncrement(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewAPIMetrics(reg)

	m.IncOrderCreated()
	m.IncOrderCreated()
	if got := testutil.ToFloat64(m.ordersCreated); got != 2 {
		t.Fatalf("expected 2 orders created, got %v", got)
	}

	m.IncWebhookEvent("duplicate")
	if got := testutil.ToFloat64(m.webhookEvents.WithLabelValues("duplicate")); got != 1 {
		t.Fatalf("expected 1 duplicate webhook, got %v", got)
	}

	m.IncEmailSent("")
	if got := testutil.ToFloat64(m.emailsSent.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("empty label should normalize to unknown, got %v", got)
	}
}
