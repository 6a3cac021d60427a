// Package notification sends transactional email for orders, stock alerts
// and login codes. Delivery goes through SendGrid when an API key is set,
// SMTP when a host is set, and the log otherwise.
package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/sudharshini/backend/internal/infrastructure/config"
)

// Message is a plain-text email
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers a single message
type Mailer interface {
	Send(ctx context.Context, msg Message) error
	// Name identifies the transport in logs
	Name() string
}

// NewMailer picks the transport from the mail section
func NewMailer(cfg config.MailConfig, logger *zap.Logger) (Mailer, error) {
	switch {
	case !cfg.Enabled:
		return NewLogMailer(logger), nil
	case cfg.SendGridAPIKey != "":
		return NewSendGridMailer(cfg, ""), nil
	case cfg.SMTPHost != "":
		return NewSMTPMailer(cfg)
	default:
		logger.Warn("Mail is enabled but neither SendGrid nor SMTP is configured, falling back to log output")
		return NewLogMailer(logger), nil
	}
}

// LogMailer writes messages to the log instead of sending them
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a LogMailer
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the message
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("Email (not sent)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}

// Name implements Mailer
func (m *LogMailer) Name() string { return "log" }
