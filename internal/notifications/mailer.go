package notifications

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/maldonadorepuestos/backend/pkg/config"
	"github.com/maldonadorepuestos/backend/pkg/logger"
	"github.com/maldonadorepuestos/backend/pkg/metrics"
)

// Mailer sends a plain-text email to a single recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer delivers mail over authenticated SMTP. When SMTP is not
// configured, sends become logged no-ops so the worker can run in
// environments without mail credentials.
type SMTPMailer struct {
	cfg     config.SMTPConfig
	metrics *metrics.APIMetrics
	logg    *logger.Logger

	// sendMail is swapped in tests.
	sendMail func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer constructs the SMTP mailer.
func NewSMTPMailer(cfg config.SMTPConfig, m *metrics.APIMetrics, logg *logger.Logger) (*SMTPMailer, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &SMTPMailer{
		cfg:      cfg,
		metrics:  m,
		logg:     logg,
		sendMail: smtp.SendMail,
	}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	ctx = m.logg.WithFields(ctx, map[string]any{"mail_to": to, "mail_subject": subject})

	if !m.cfg.Configured() {
		m.metrics.IncEmailSent("skipped")
		m.logg.Warn(ctx, "smtp not configured, mail skipped")
		return nil
	}

	from := m.cfg.FromEmail
	if from == "" {
		from = m.cfg.User
	}

	msg := buildMessage(from, to, subject, body)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)

	if err := m.sendMail(addr, auth, from, []string{to}, msg); err != nil {
		m.metrics.IncEmailSent("failed")
		m.logg.Error(ctx, "sending mail", err)
		return err
	}

	m.metrics.IncEmailSent("sent")
	m.logg.Info(ctx, "mail sent")
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return []byte(b.String())
}
