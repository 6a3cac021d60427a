package order

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sudharshini/backend/internal/domain/shared"
	"github.com/sudharshini/backend/internal/domain/shared/valueobject"
)

const (
	// CourierName is stamped on every order
	CourierName = "Sudharshini Express"

	// MaxReasonLength bounds the stored cancellation reason
	MaxReasonLength = 500
)

// DefaultPickupLocation is the warehouse every order ships from
var DefaultPickupLocation = valueobject.MustNewGeoLocation(12.9716, 77.5946,
	valueobject.WithAddress("Sudharshini Warehouse, Bangalore"))

// OrderItem is a line item. ProductName is a snapshot taken at order time.
type OrderItem struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
}

// ItemLine is a priced line used to build an order
type ItemLine struct {
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// DeliveryContact holds who receives the order and where
type DeliveryContact struct {
	Name    string
	Email   string
	Mobile  string
	Address string
	Pincode string
}

// Order is the aggregate root of the delivery lifecycle
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber            string
	TrackingID             string
	CustomerID             int64
	Status                 OrderStatus
	PaymentMode            PaymentMode
	TotalAmount            decimal.Decimal
	Contact                DeliveryContact
	EstimatedDeliveryStart time.Time
	EstimatedDeliveryEnd   time.Time
	CourierName            string
	AssignedTo             *int64
	AcceptedAt             *time.Time
	PickedUpAt             *time.Time
	OutForDeliveryAt       *time.Time
	DeliveredAt            *time.Time
	PickupLocation         *valueobject.GeoLocation
	DeliveryLocation       *valueobject.GeoLocation
	CurrentLocation        *valueobject.GeoLocation
	CancellationReason     string
	Items                  []OrderItem
	TrackingEvents         []TrackingEvent
}

// NewOrder validates the lines and contact and builds a CONFIRMED order with
// its canned tracking timeline. Stock checks happen in the application layer.
func NewOrder(customerID int64, contact DeliveryContact, mode PaymentMode, lines []ItemLine, now time.Time) (*Order, error) {
	if customerID <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Customer is required")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Order must contain at least one item")
	}
	contact = contact.trimmed()
	if contact.Address == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Delivery address is required")
	}
	if contact.Pincode == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Delivery pincode is required")
	}
	if mode == "" {
		mode = PaymentCashOnDelivery
	}
	if !mode.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Invalid payment mode: %s", mode))
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       NewOrderNumber(now),
		TrackingID:        NewTrackingID(),
		CustomerID:        customerID,
		Status:            StatusConfirmed,
		PaymentMode:       mode,
		TotalAmount:       decimal.Zero,
		Contact:           contact,
		CourierName:       CourierName,
		Items:             make([]OrderItem, 0, len(lines)),
	}
	o.CreatedAt, o.UpdatedAt = now, now
	o.EstimatedDeliveryStart, o.EstimatedDeliveryEnd = EstimateDeliveryWindow(now, rand.IntN(9))

	pickup := DefaultPickupLocation
	o.PickupLocation = &pickup

	for _, line := range lines {
		if line.ProductID <= 0 {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product ID is required for all items")
		}
		if line.Quantity <= 0 {
			return nil, shared.NewDomainError(shared.CodeInvalidInput,
				fmt.Sprintf("Invalid quantity for product: %s", line.ProductName))
		}
		if line.UnitPrice.IsNegative() {
			return nil, shared.NewDomainError(shared.CodeInvalidInput,
				fmt.Sprintf("Invalid price for product: %s", line.ProductName))
		}
		total := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		o.Items = append(o.Items, OrderItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			TotalPrice:  total,
		})
		o.TotalAmount = o.TotalAmount.Add(total)
	}

	o.TrackingEvents = InitialTimeline(now)
	return o, nil
}

// NewOrderNumber returns "ORD-<unix millis>"
func NewOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%d", now.UnixMilli())
}

// NewTrackingID returns "TRK-" plus the first 8 characters of a random UUID, upper-cased
func NewTrackingID() string {
	return "TRK-" + strings.ToUpper(uuid.NewString()[:8])
}

// EstimateDeliveryWindow returns the dates now+2d and now+(2+extraDays)d.
// extraDays is clamped to 0..8.
func EstimateDeliveryWindow(now time.Time, extraDays int) (time.Time, time.Time) {
	extraDays = max(0, min(extraDays, 8))
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return day.AddDate(0, 0, 2), day.AddDate(0, 0, 2+extraDays)
}

func (c DeliveryContact) trimmed() DeliveryContact {
	return DeliveryContact{
		Name:    strings.TrimSpace(c.Name),
		Email:   strings.TrimSpace(c.Email),
		Mobile:  strings.TrimSpace(c.Mobile),
		Address: strings.TrimSpace(c.Address),
		Pincode: strings.TrimSpace(c.Pincode),
	}
}

// RecordCreated raises OrderCreated once the order has an identity
func (o *Order) RecordCreated() {
	o.AddDomainEvent(NewOrderCreatedEvent(o))
}

// UpdateStatus applies the loose gate and, on a real change, stamps the
// stage timestamp, appends the matching tracking event and raises
// OrderStatusChanged. It reports whether the status changed.
func (o *Order) UpdateStatus(next OrderStatus, reason string, now time.Time) (bool, error) {
	if !next.IsValid() {
		return false, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Invalid order status: %s", next))
	}
	if err := o.Status.ValidateTransition(next, reason); err != nil {
		return false, err
	}
	if next == o.Status {
		return false, nil
	}
	if next == StatusCancelled {
		reason = strings.TrimSpace(reason)
		if len(reason) > MaxReasonLength {
			return false, shared.NewDomainError(shared.CodeInvalidInput, "Cancellation reason is too long")
		}
		o.CancellationReason = reason
	}

	previous := o.Status
	o.Status = next
	o.stamp(next, now)
	o.UpdatedAt = now

	if ev, ok := StatusTrackingEvent(o, next, now); ok {
		o.TrackingEvents = append(o.TrackingEvents, ev)
	}
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, previous))
	return true, nil
}

// stamp sets the timestamp of the reached stage if not already set
func (o *Order) stamp(status OrderStatus, now time.Time) {
	var slot **time.Time
	switch status {
	case StatusAccepted:
		slot = &o.AcceptedAt
	case StatusPickedUp:
		slot = &o.PickedUpAt
	case StatusOutForDelivery:
		slot = &o.OutForDeliveryAt
	case StatusDelivered:
		slot = &o.DeliveredAt
	default:
		return
	}
	if *slot == nil {
		t := now
		*slot = &t
	}
}

// Accept assigns the order to the agent and moves it to ACCEPTED.
// An order already assigned to anyone is rejected untouched.
func (o *Order) Accept(agentID int64, now time.Time) error {
	if agentID <= 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Delivery man is required")
	}
	if o.AssignedTo != nil {
		return ErrAlreadyAssigned
	}
	if !o.Status.AgentCanTransitionTo(StatusAccepted) {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Order cannot be accepted in %s status", o.Status))
	}
	if _, err := o.UpdateStatus(StatusAccepted, "", now); err != nil {
		return err
	}
	o.AssignedTo = &agentID
	o.AddDomainEvent(NewOrderAcceptedEvent(o, agentID))
	return nil
}

// AgentUpdateStatus applies the strict single-step gate for the assignee and
// then delegates to UpdateStatus.
func (o *Order) AgentUpdateStatus(agentID int64, next OrderStatus, reason string, now time.Time) (bool, error) {
	if !o.IsAssignedTo(agentID) {
		return false, ErrNotAssignedToYou
	}
	if !o.Status.AgentCanTransitionTo(next) {
		return false, shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Invalid status transition from %s to %s", o.Status, next))
	}
	return o.UpdateStatus(next, reason, now)
}

// UpdateCurrentLocation records the agent's live position
func (o *Order) UpdateCurrentLocation(agentID int64, loc valueobject.GeoLocation, now time.Time) error {
	if !o.IsAssignedTo(agentID) {
		return ErrNotAssignedToYou
	}
	if !o.IsInTransit() {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Location can only be updated for active deliveries, order is %s", o.Status))
	}
	loc.Timestamp = &now
	o.CurrentLocation = &loc
	o.UpdatedAt = now
	return nil
}

// SetDeliveryLocation attaches the geocoded destination
func (o *Order) SetDeliveryLocation(loc valueobject.GeoLocation) {
	o.DeliveryLocation = &loc
}

// IsAssignedTo reports whether agentID is the current assignee
func (o *Order) IsAssignedTo(agentID int64) bool {
	return o.AssignedTo != nil && *o.AssignedTo == agentID
}

// IsAvailable reports whether a delivery agent may pick this order up
func (o *Order) IsAvailable() bool {
	return o.AssignedTo == nil && (o.Status == StatusConfirmed || o.Status == StatusProcessing)
}

// IsInTransit reports whether the assignee is actively delivering
func (o *Order) IsInTransit() bool {
	switch o.Status {
	case StatusAccepted, StatusPickedUp, StatusOutForDelivery:
		return true
	}
	return false
}

// IsTrackingEnabled reports whether live location tracking is visible
func (o *Order) IsTrackingEnabled() bool {
	return o.AssignedTo != nil && o.AcceptedAt != nil
}

// TotalQuantity returns the sum of all item quantities
func (o *Order) TotalQuantity() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// ItemCount returns the number of line items
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// SortedTrackingEvents returns the timeline ordered by sequence
func (o *Order) SortedTrackingEvents() []TrackingEvent {
	return SortTimeline(o.TrackingEvents)
}

// Order-specific errors
var (
	ErrAlreadyAssigned  = shared.NewDomainError(shared.CodeAlreadyAssigned, "Order is already assigned to another delivery man")
	ErrNotAssignedToYou = shared.NewDomainError(shared.CodeForbidden, "Order is not assigned to you")
)
