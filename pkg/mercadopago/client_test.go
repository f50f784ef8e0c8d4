package mercadopago

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/maldonadorepuestos/backend/pkg/config"
	pkgerrors "github.com/maldonadorepuestos/backend/pkg/errors"
	"github.com/maldonadorepuestos/backend/pkg/logger"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	client, err := NewClient(context.Background(), config.MercadoPagoConfig{
		AccessToken:    "test-token",
		BaseURL:        srv.URL,
		RequestTimeout: 2 * time.Second,
	}, logg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, srv
}

func TestNewClientRequiresToken(t *testing.T) {
	t.Parallel()

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	if _, err := NewClient(context.Background(), config.MercadoPagoConfig{}, logg); err == nil {
		t.Fatalf("expected error without access token")
	}
}

func TestWebhookNotificationDataIDShapes(t *testing.T) {
	t.Parallel()

	// The gateway sends the payment id as a string in some delivery formats
	// and as a bare number in others.
	cases := []struct {
		body string
		want string
	}{
		{`{"type":"payment","data":{"id":"12345"}}`, "12345"},
		{`{"type":"payment","data":{"id":555}}`, "555"},
		{`{"type":"payment","data":{"id":null}}`, ""},
		{`{"type":"payment","data":{}}`, ""},
	}
	for _, tc := range cases {
		var notification WebhookNotification
		if err := json.Unmarshal([]byte(tc.body), &notification); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.body, err)
		}
		if notification.Data.ID != tc.want {
			t.Fatalf("body %s: expected id %q, got %q", tc.body, tc.want, notification.Data.ID)
		}
	}
}

func TestCreatePreference(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/checkout/preferences" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("missing bearer token, got %q", got)
		}

		var params PreferenceParams
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if params.ExternalReference == "" {
			t.Errorf("external reference should be set")
		}

		json.NewEncoder(w).Encode(Preference{
			ID:        "pref-123",
			InitPoint: "https://mercadopago.test/init",
		})
	}))

	pref, err := client.CreatePreference(context.Background(), PreferenceParams{
		Items:             []PreferenceItem{{Title: "Filtro de aceite", Quantity: 2, UnitPrice: 1500}},
		ExternalReference: "MR-20260829-AABBCCDD",
	})
	if err != nil {
		t.Fatalf("create preference: %v", err)
	}
	if pref.ID != "pref-123" {
		t.Fatalf("unexpected preference id %q", pref.ID)
	}
}

func TestGetPaymentMapsNotFound(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(apiError{Message: "Payment not found"})
	}))

	_, err := client.GetPayment(context.Background(), "999")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestGatewayFailureMapsToPaymentGatewayCode(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(apiError{Message: "internal error"})
	}))

	_, err := client.CreatePreference(context.Background(), PreferenceParams{
		ExternalReference: "MR-20260829-AABBCCDD",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodePaymentGateway {
		t.Fatalf("expected payment gateway error, got %v", err)
	}
}

func TestGetPaymentRequiresID(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected")
	}))

	_, err := client.GetPayment(context.Background(), " ")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
