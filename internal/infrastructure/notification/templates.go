package notification

import (
	"strings"
	"text/template"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sudharshini/backend/internal/domain/order"
)

const (
	dateLayout  = "02 Jan 2006"
	stampLayout = "02 Jan 2006 15:04"
)

var titleCaser = cases.Title(language.English)

// StatusLabel renders OUT_FOR_DELIVERY as "Out For Delivery"
func StatusLabel(s order.OrderStatus) string {
	return titleCaser.String(strings.ReplaceAll(strings.ToLower(string(s)), "_", " "))
}

func rupees(d decimal.Decimal) string {
	return "₹" + d.StringFixed(2)
}

func stamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(stampLayout)
}

func day(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

var funcs = template.FuncMap{
	"rupees": rupees,
	"date":   func(t time.Time) string { return t.Format(dateLayout) },
	"stamp":  stamp,
	"day":    day,
	"label":  StatusLabel,
}

var confirmationTmpl = template.Must(template.New("confirmation").Funcs(funcs).Parse(
	`Dear {{.Order.Contact.Name}},

Thank you for your order!

Order Number: {{.Order.OrderNumber}}
Total Amount: {{rupees .Order.TotalAmount}}
Payment Mode: {{.Order.PaymentMode}}
Delivery Window: {{date .Order.EstimatedDeliveryStart}} to {{date .Order.EstimatedDeliveryEnd}}

Tracking ID: {{.Order.TrackingID}}
Track your order: {{.TrackURL}}

Items:
{{range .Order.Items}}- {{.ProductName}} x {{.Quantity}} = {{rupees .TotalPrice}}
{{end}}
Thank you for shopping with Sudharshini Stock Management!
`))

var statusTmpl = template.Must(template.New("status").Funcs(funcs).Parse(
	`Dear {{.Order.Contact.Name}},

{{.Headline}}

Order Number: {{.Order.OrderNumber}}
Status: {{label .Order.Status}}
Amount: {{rupees .Order.TotalAmount}}

{{.Detail}}
Tracking ID: {{.Order.TrackingID}}
Track your order: {{.TrackURL}}
{{with .Order.AcceptedAt}}
Accepted At: {{stamp .}}{{end}}{{with .Order.PickedUpAt}}
Picked Up At: {{stamp .}}{{end}}{{with .Order.OutForDeliveryAt}}
Out for Delivery At: {{stamp .}}{{end}}{{with .Order.DeliveredAt}}
Delivered At: {{stamp .}}{{end}}{{with .Order.CancellationReason}}
Cancellation Reason: {{.}}{{end}}

Thank you for shopping with Sudharshini Stock Management!
`))

var expiryTmpl = template.Must(template.New("expiry").Funcs(funcs).Parse(
	`Products Expiring Soon

{{range .}}- {{.Name}}{{with .SKU}} ({{.}}){{end}}: expires {{day .ExpiryDate}}, stock {{.StockQuantity}}
{{end}}
Please take necessary action.
`))

// statusCopy is the headline and detail line per status
var statusCopy = map[order.OrderStatus][2]string{
	order.StatusAccepted: {
		"Your order has been accepted by our delivery team!",
		"Our delivery team has accepted your order and will pick it up soon.",
	},
	order.StatusPickedUp: {
		"Your order has been picked up!",
		"Your order has been collected from our warehouse and is being prepared for delivery.",
	},
	order.StatusOutForDelivery: {
		"Your order is out for delivery!",
		"Your order is on its way! Our delivery person is heading to your address.",
	},
	order.StatusDelivered: {
		"Your order has been delivered!",
		"Your order has been successfully delivered. Thank you for your purchase!",
	},
	order.StatusCancelled: {
		"Your order has been cancelled.",
		"Your order has been cancelled. If you have any questions, please contact support.",
	},
}

func statusLines(s order.OrderStatus) (string, string) {
	if c, ok := statusCopy[s]; ok {
		return c[0], c[1]
	}
	return "Order Status Update", "Your order status has been updated."
}
