package controllers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	paymentsvc "github.com/maldonadorepuestos/backend/internal/payments"
	"github.com/maldonadorepuestos/backend/pkg/logger"
	"github.com/maldonadorepuestos/backend/pkg/mercadopago"
)

type fakePaymentsService struct {
	webhookErr    error
	notifications []mercadopago.WebhookNotification
}

func (s *fakePaymentsService) CreatePreference(context.Context, uuid.UUID, uuid.UUID) (*paymentsvc.CheckoutPreference, error) {
	return nil, errors.New("not implemented")
}

func (s *fakePaymentsService) HandleWebhook(_ context.Context, n mercadopago.WebhookNotification) error {
	s.notifications = append(s.notifications, n)
	return s.webhookErr
}

func (s *fakePaymentsService) GetStatus(context.Context, uuid.UUID, uuid.UUID) (*paymentsvc.Status, error) {
	return nil, errors.New("not implemented")
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestMercadoPagoWebhookAcksValidNotification(t *testing.T) {
	svc := &fakePaymentsService{}
	handler := MercadoPagoWebhook(svc, testLogger())

	body := bytes.NewBufferString(`{"type":"payment","data":{"id":"12345"}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/mercadopago", body)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, svc.notifications, 1)
	assert.Equal(t, "payment", svc.notifications[0].Type)
	assert.Equal(t, "12345", svc.notifications[0].Data.ID)
}

func TestMercadoPagoWebhookAcceptsNumericPaymentID(t *testing.T) {
	svc := &fakePaymentsService{}
	handler := MercadoPagoWebhook(svc, testLogger())

	body := bytes.NewBufferString(`{"type":"payment","data":{"id":555}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/mercadopago", body)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, svc.notifications, 1, "a numeric id must still be processed")
	assert.Equal(t, "555", svc.notifications[0].Data.ID)
}

func TestMercadoPagoWebhookAcksProcessingFailure(t *testing.T) {
	svc := &fakePaymentsService{webhookErr: errors.New("gateway unreachable")}
	handler := MercadoPagoWebhook(svc, testLogger())

	body := bytes.NewBufferString(`{"type":"payment","data":{"id":"12345"}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/mercadopago", body)
	rec := httptest.NewRecorder()
	handler(rec, req)

	// The gateway must never see an error, it would retry forever.
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMercadoPagoWebhookAcksMalformedBody(t *testing.T) {
	svc := &fakePaymentsService{}
	handler := MercadoPagoWebhook(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/mercadopago", bytes.NewBufferString("not json"))
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, svc.notifications)
}
