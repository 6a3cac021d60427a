package notification

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"text/template"

	"go.uber.org/zap"

	"github.com/sudharshini/backend/internal/domain/catalog"
	"github.com/sudharshini/backend/internal/domain/order"
)

// OTPValidity is quoted in the login code email
const OTPValidity = "10 minutes"

// EmailNotifier renders and sends every outbound email. It serves the order
// notifier, the stock alert notifier and the OTP mailer ports.
type EmailNotifier struct {
	mailer      Mailer
	adminEmail  string
	trackingURL string
	logger      *zap.Logger
}

// NewEmailNotifier creates an EmailNotifier
func NewEmailNotifier(mailer Mailer, adminEmail, trackingURL string, logger *zap.Logger) *EmailNotifier {
	return &EmailNotifier{
		mailer:      mailer,
		adminEmail:  adminEmail,
		trackingURL: trackingURL,
		logger:      logger,
	}
}

type orderView struct {
	Order    *order.Order
	TrackURL string
	Headline string
	Detail   string
}

// SendOrderConfirmation emails the customer their order summary
func (n *EmailNotifier) SendOrderConfirmation(ctx context.Context, o *order.Order) error {
	body, err := render(confirmationTmpl, orderView{Order: o, TrackURL: n.trackURL(o)})
	if err != nil {
		return err
	}
	return n.send(ctx, o.Contact.Email, "Order Confirmation - "+o.OrderNumber, body)
}

// SendOrderStatusUpdate emails the customer the order's current stage
func (n *EmailNotifier) SendOrderStatusUpdate(ctx context.Context, o *order.Order) error {
	headline, detail := statusLines(o.Status)
	body, err := render(statusTmpl, orderView{
		Order:    o,
		TrackURL: n.trackURL(o),
		Headline: headline,
		Detail:   detail,
	})
	if err != nil {
		return err
	}
	return n.send(ctx, o.Contact.Email, "Order Status Update - "+o.OrderNumber, body)
}

// SendLowStockAlert emails the administrator about one product
func (n *EmailNotifier) SendLowStockAlert(ctx context.Context, p *catalog.Product) error {
	body := fmt.Sprintf("Low Stock Alert\n\nProduct: %s\nCurrent Stock: %d\nSKU: %s\n\nPlease restock this product soon.\n",
		p.Name, p.StockQuantity, p.SKU)
	return n.send(ctx, n.adminEmail, "Low Stock Alert - "+p.Name, body)
}

// SendExpiryAlert emails the administrator one digest of near-expiry products
func (n *EmailNotifier) SendExpiryAlert(ctx context.Context, products []catalog.Product) error {
	if len(products) == 0 {
		return nil
	}
	body, err := render(expiryTmpl, products)
	if err != nil {
		return err
	}
	subject := "Product Expiring Soon - " + products[0].Name
	if len(products) > 1 {
		subject = fmt.Sprintf("%d Products Expiring Soon", len(products))
	}
	return n.send(ctx, n.adminEmail, subject, body)
}

// SendLoginOTP emails a login code. Unlike the other emails its failure is
// returned to the caller so the login request can fail.
func (n *EmailNotifier) SendLoginOTP(ctx context.Context, email, code string) error {
	body := fmt.Sprintf("Your verification code is: %s\n\nThis code will expire in %s.\n\n"+
		"If you didn't request this code, please ignore this email.\n", code, OTPValidity)
	return n.send(ctx, email, "Your OTP for Sudharshini Stock Management", body)
}

func (n *EmailNotifier) send(ctx context.Context, to, subject, body string) error {
	if to == "" {
		n.logger.Warn("Skipping email without recipient", zap.String("subject", subject))
		return nil
	}
	if err := n.mailer.Send(ctx, Message{To: to, Subject: subject, Body: body}); err != nil {
		n.logger.Error("Failed to send email",
			zap.String("transport", n.mailer.Name()),
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return err
	}
	n.logger.Debug("Email sent",
		zap.String("transport", n.mailer.Name()),
		zap.String("to", to),
		zap.String("subject", subject),
	)
	return nil
}

func (n *EmailNotifier) trackURL(o *order.Order) string {
	return n.trackingURL + strconv.FormatInt(o.ID, 10)
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", t.Name(), err)
	}
	return buf.String(), nil
}
