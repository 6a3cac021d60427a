package order

import (
	"github.com/shopspring/decimal"
	"github.com/sudharshini/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderCreated       = "OrderCreated"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
	EventTypeOrderAccepted      = "OrderAccepted"
)

// OrderItemInfo represents item information for events
type OrderItemInfo struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// OrderCreatedEvent is raised after an order and its stock debit commit.
// It drives geocoding, low-stock alerts, the confirmation email and the sheet row.
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID     int64           `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	CustomerID  int64           `json:"customer_id"`
	Items       []OrderItemInfo `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	items := make([]OrderItemInfo, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemInfo{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		Items:           items,
		TotalAmount:     o.TotalAmount,
	}
}

// OrderStatusChangedEvent is raised on every real status change
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID     int64       `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	OldStatus   OrderStatus `json:"old_status"`
	NewStatus   OrderStatus `json:"new_status"`
	Reason      string      `json:"reason,omitempty"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, previous OrderStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		OldStatus:       previous,
		NewStatus:       o.Status,
		Reason:          o.CancellationReason,
	}
}

// OrderAcceptedEvent is raised when a delivery man takes an order
type OrderAcceptedEvent struct {
	shared.BaseDomainEvent
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	AgentID     int64  `json:"agent_id"`
}

// NewOrderAcceptedEvent creates a new OrderAcceptedEvent
func NewOrderAcceptedEvent(o *Order, agentID int64) *OrderAcceptedEvent {
	return &OrderAcceptedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderAccepted, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		AgentID:         agentID,
	}
}
