package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/smtp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maldonadorepuestos/backend/pkg/config"
	"github.com/maldonadorepuestos/backend/pkg/db/models"
	"github.com/maldonadorepuestos/backend/pkg/enums"
	"github.com/maldonadorepuestos/backend/pkg/logger"
	"github.com/maldonadorepuestos/backend/pkg/metrics"
)

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*models.User
}

func (r *fakeUserRepo) FindUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s not found", id)
	}
	return user, nil
}

type memoryStore struct {
	mu     sync.Mutex
	values map[string]string
	err    error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}}
}

func (s *memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	if _, exists := s.values[key]; exists {
		return false, nil
	}
	s.values[key] = fmt.Sprint(value)
	return true, nil
}

func (s *memoryStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("mr:idem:%s:%s", scope, id)
}

func (s *memoryStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func newTestConsumer(t *testing.T, repo Repository, mailer Mailer, store *memoryStore, adminEmail string) *Consumer {
	t.Helper()
	return &Consumer{
		repo:       repo,
		mailer:     mailer,
		store:      store,
		logg:       logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		adminEmail: adminEmail,
	}
}

func envelopeBytes(t *testing.T, eventType enums.DomainEvent, payload any) []byte {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	body, err := json.Marshal(Envelope{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
	require.NoError(t, err)
	return body
}

func TestConsumerOrderCreatedEmails(t *testing.T) {
	userID := uuid.New()
	repo := &fakeUserRepo{users: map[uuid.UUID]*models.User{
		userID: {ID: userID, Name: "Juan Pérez", Email: "juan@example.com"},
	}}
	mailer := &fakeMailer{}
	consumer := newTestConsumer(t, repo, mailer, newMemoryStore(), "ventas@maldonadorepuestos.test")

	body := envelopeBytes(t, enums.EventOrderCreated, OrderCreatedPayload{
		OrderID:     uuid.New(),
		OrderNumber: "MR-20260829-0A1B2C3D",
		UserID:      userID,
		Total:       "80000.00",
		ItemCount:   3,
	})

	acked := consumer.process(context.Background(), "m1", body)
	assert.True(t, acked)

	require.Len(t, mailer.sent, 2, "customer confirmation plus admin alert")
	assert.Equal(t, "juan@example.com", mailer.sent[0].to)
	assert.Contains(t, mailer.sent[0].subject, "MR-20260829-0A1B2C3D")
	assert.Contains(t, mailer.sent[0].body, "80000.00")
	assert.Equal(t, "ventas@maldonadorepuestos.test", mailer.sent[1].to)
}

func TestConsumerDeduplicatesByEventID(t *testing.T) {
	userID := uuid.New()
	repo := &fakeUserRepo{users: map[uuid.UUID]*models.User{
		userID: {ID: userID, Name: "Juan", Email: "juan@example.com"},
	}}
	mailer := &fakeMailer{}
	consumer := newTestConsumer(t, repo, mailer, newMemoryStore(), "")

	body := envelopeBytes(t, enums.EventOrderCreated, OrderCreatedPayload{
		OrderNumber: "MR-20260829-0A1B2C3D",
		UserID:      userID,
		Total:       "50000.00",
	})

	assert.True(t, consumer.process(context.Background(), "m1", body))
	assert.True(t, consumer.process(context.Background(), "m1-redelivery", body))
	assert.Len(t, mailer.sent, 1, "the redelivered event sends nothing")
}

func TestConsumerStatusChangeEmails(t *testing.T) {
	userID := uuid.New()
	repo := &fakeUserRepo{users: map[uuid.UUID]*models.User{
		userID: {ID: userID, Name: "Juan", Email: "juan@example.com"},
	}}
	mailer := &fakeMailer{}
	consumer := newTestConsumer(t, repo, mailer, newMemoryStore(), "")

	shipped := envelopeBytes(t, enums.EventOrderStatusChanged, OrderStatusChangedPayload{
		OrderNumber:    "MR-20260829-0A1B2C3D",
		UserID:         userID,
		PreviousStatus: enums.OrderStatusProcessing,
		Status:         enums.OrderStatusShipped,
	})
	assert.True(t, consumer.process(context.Background(), "m1", shipped))
	require.Len(t, mailer.sent, 1)
	assert.Contains(t, mailer.sent[0].subject, "en camino")

	// Internal moves produce no mail.
	processing := envelopeBytes(t, enums.EventOrderStatusChanged, OrderStatusChangedPayload{
		OrderNumber:    "MR-20260829-0A1B2C3D",
		UserID:         userID,
		PreviousStatus: enums.OrderStatusPaid,
		Status:         enums.OrderStatusProcessing,
	})
	assert.True(t, consumer.process(context.Background(), "m2", processing))
	assert.Len(t, mailer.sent, 1)
}

func TestConsumerQuoteCreatedMailsRequesterAndAdmin(t *testing.T) {
	mailer := &fakeMailer{}
	consumer := newTestConsumer(t, &fakeUserRepo{}, mailer, newMemoryStore(), "ventas@maldonadorepuestos.test")

	body := envelopeBytes(t, enums.EventQuoteCreated, QuoteCreatedPayload{
		QuoteID:         uuid.New(),
		Name:            "Carlos Benítez",
		Email:           "carlos@example.com",
		Phone:           "+5491123456789",
		Message:         "Busco pastillas de freno.",
		SentViaWhatsApp: true,
	})
	assert.True(t, consumer.process(context.Background(), "m1", body))

	require.Len(t, mailer.sent, 2, "requester ack plus admin alert")
	assert.Equal(t, "carlos@example.com", mailer.sent[0].to)
	assert.Contains(t, mailer.sent[0].body, "Carlos Benítez")
	assert.Equal(t, "ventas@maldonadorepuestos.test", mailer.sent[1].to)
	assert.Contains(t, mailer.sent[1].subject, "Carlos Benítez")
	assert.Contains(t, mailer.sent[1].body, "WhatsApp")
}

func TestConsumerNacksAndReleasesOnFailure(t *testing.T) {
	userID := uuid.New()
	repo := &fakeUserRepo{users: map[uuid.UUID]*models.User{
		userID: {ID: userID, Name: "Juan", Email: "juan@example.com"},
	}}
	mailer := &fakeMailer{err: errors.New("smtp down")}
	store := newMemoryStore()
	consumer := newTestConsumer(t, repo, mailer, store, "")

	body := envelopeBytes(t, enums.EventOrderCreated, OrderCreatedPayload{
		OrderNumber: "MR-20260829-0A1B2C3D",
		UserID:      userID,
		Total:       "50000.00",
	})
	assert.False(t, consumer.process(context.Background(), "m1", body), "failure is nacked for retry")

	// The mark was released, so the retry goes through once SMTP recovers.
	mailer.err = nil
	assert.True(t, consumer.process(context.Background(), "m1-retry", body))
	assert.Len(t, mailer.sent, 1)
}

func TestConsumerAcksMalformedMessage(t *testing.T) {
	mailer := &fakeMailer{}
	consumer := newTestConsumer(t, &fakeUserRepo{}, mailer, newMemoryStore(), "")

	assert.True(t, consumer.process(context.Background(), "m1", []byte("not json")))
	assert.Empty(t, mailer.sent)
}

func TestSMTPMailerSkipsWhenUnconfigured(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	mailer, err := NewSMTPMailer(config.SMTPConfig{}, metrics.NewAPIMetrics(nil), logg)
	require.NoError(t, err)

	called := false
	mailer.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		called = true
		return nil
	}

	require.NoError(t, mailer.Send(context.Background(), "juan@example.com", "Hola", "Cuerpo"))
	assert.False(t, called)
}

func TestSMTPMailerBuildsMessage(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	cfg := config.SMTPConfig{
		Host:      "smtp.example.com",
		Port:      587,
		User:      "mailer@maldonadorepuestos.test",
		Password:  "secret",
		FromEmail: "no-reply@maldonadorepuestos.test",
	}
	mailer, err := NewSMTPMailer(cfg, metrics.NewAPIMetrics(nil), logg)
	require.NoError(t, err)

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	mailer.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	require.NoError(t, mailer.Send(context.Background(), "juan@example.com", "Pedido recibido", "Hola Juan"))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "no-reply@maldonadorepuestos.test", gotFrom)
	assert.Equal(t, []string{"juan@example.com"}, gotTo)

	message := string(gotMsg)
	assert.True(t, strings.Contains(message, "Subject: Pedido recibido\r\n"))
	assert.True(t, strings.Contains(message, "charset=UTF-8"))
	assert.True(t, strings.HasSuffix(message, "Hola Juan\r\n"))
}
