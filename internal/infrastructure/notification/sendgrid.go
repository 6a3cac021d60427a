package notification

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/sudharshini/backend/internal/infrastructure/config"
)

const (
	sendGridHost     = "https://api.sendgrid.com"
	sendGridEndpoint = "/v3/mail/send"
)

// SendGridMailer sends through the SendGrid v3 HTTP API
type SendGridMailer struct {
	apiKey string
	host   string
	from   *sgmail.Email
	doSend func(ctx context.Context, req rest.Request) (*rest.Response, error)
}

// NewSendGridMailer creates a SendGridMailer. An empty host uses the public API.
func NewSendGridMailer(cfg config.MailConfig, host string) *SendGridMailer {
	if host == "" {
		host = sendGridHost
	}
	return &SendGridMailer{
		apiKey: cfg.SendGridAPIKey,
		host:   host,
		from:   sgmail.NewEmail(cfg.FromName, cfg.From),
		doSend: sendgrid.MakeRequestWithContext,
	}
}

// Send posts the message; any non-2xx response is an error
func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	body := sgmail.NewSingleEmail(m.from, msg.Subject, sgmail.NewEmail("", msg.To), msg.Body, "")

	req := sendgrid.GetRequest(m.apiKey, sendGridEndpoint, m.host)
	req.Method = rest.Post
	req.Body = sgmail.GetRequestBody(body)

	resp, err := m.doSend(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// Name implements Mailer
func (m *SendGridMailer) Name() string { return "sendgrid" }
