package order

import (
	"fmt"
	"strings"

	"github.com/sudharshini/backend/internal/domain/shared"
)

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	StatusPending        OrderStatus = "PENDING"
	StatusConfirmed      OrderStatus = "CONFIRMED"
	StatusProcessing     OrderStatus = "PROCESSING"
	StatusShipped        OrderStatus = "SHIPPED"
	StatusAccepted       OrderStatus = "ACCEPTED"
	StatusPickedUp       OrderStatus = "PICKED_UP"
	StatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	StatusDelivered      OrderStatus = "DELIVERED"
	StatusCancelled      OrderStatus = "CANCELLED"
)

// canonicalOrder is the forward-only progression used by the no-downgrade rule.
// CANCELLED is deliberately absent.
var canonicalOrder = []OrderStatus{
	StatusPending,
	StatusConfirmed,
	StatusProcessing,
	StatusShipped,
	StatusAccepted,
	StatusPickedUp,
	StatusOutForDelivery,
	StatusDelivered,
}

// agentTransitions is the single-step table enforced on the delivery-agent path
var agentTransitions = map[OrderStatus][]OrderStatus{
	StatusConfirmed:      {StatusAccepted, StatusCancelled},
	StatusProcessing:     {StatusAccepted, StatusCancelled},
	StatusAccepted:       {StatusPickedUp, StatusCancelled},
	StatusPickedUp:       {StatusOutForDelivery, StatusCancelled},
	StatusOutForDelivery: {StatusDelivered},
}

// AllStatuses returns every known status, canonical order first
func AllStatuses() []OrderStatus {
	all := make([]OrderStatus, 0, len(canonicalOrder)+1)
	all = append(all, canonicalOrder...)
	return append(all, StatusCancelled)
}

// ParseOrderStatus parses a status name case-insensitively
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Invalid order status: %s", s))
	}
	return status, nil
}

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	return s == StatusCancelled || s.index() >= 0
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions are possible
func (s OrderStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusDelivered
}

// index returns the position in the canonical order, or -1
func (s OrderStatus) index() int {
	for i, st := range canonicalOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// ValidateTransition applies the loose gate: forward moves (skips allowed) or
// cancellation from any non-terminal state. Same-status is accepted as a no-op
// and must be filtered by the caller if it matters.
func (s OrderStatus) ValidateTransition(next OrderStatus, reason string) error {
	if next == s {
		return nil
	}
	if s.IsTerminal() {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot change status of a %s order", s))
	}
	if next == StatusCancelled {
		if strings.TrimSpace(reason) == "" {
			return shared.NewDomainError(shared.CodeInvalidInput,
				"Cancellation reason is required when canceling an order")
		}
		return nil
	}

	cur, nxt := s.index(), next.index()
	if cur < 0 || nxt < 0 || nxt < cur {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot change order status from %s to %s. Orders can only progress forward or be cancelled.", s, next))
	}
	return nil
}

// CanTransitionTo reports whether the loose gate allows next, ignoring the reason requirement
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return s.ValidateTransition(next, "-") == nil
}

// AgentCanTransitionTo applies the strict single-step delivery-agent table
func (s OrderStatus) AgentCanTransitionTo(next OrderStatus) bool {
	for _, allowed := range agentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AgentNextStatuses returns the statuses a delivery agent may move to from s
func (s OrderStatus) AgentNextStatuses() []OrderStatus {
	next := agentTransitions[s]
	out := make([]OrderStatus, len(next))
	copy(out, next)
	return out
}

// PaymentMode is how the customer pays for an order
type PaymentMode string

const (
	PaymentCashOnDelivery PaymentMode = "CASH_ON_DELIVERY"
	PaymentOnline         PaymentMode = "ONLINE"
	PaymentUPI            PaymentMode = "UPI"
	PaymentCard           PaymentMode = "CARD"
)

// IsValid checks if the payment mode is known
func (p PaymentMode) IsValid() bool {
	switch p {
	case PaymentCashOnDelivery, PaymentOnline, PaymentUPI, PaymentCard:
		return true
	}
	return false
}

// ParsePaymentMode parses a payment mode; empty defaults to cash on delivery
func ParsePaymentMode(s string) (PaymentMode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PaymentCashOnDelivery, nil
	}
	mode := PaymentMode(strings.ToUpper(s))
	if !mode.IsValid() {
		return "", shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Invalid payment mode: %s", s))
	}
	return mode, nil
}
