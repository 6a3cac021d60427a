package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sudharshini/backend/internal/domain/order"
	"github.com/sudharshini/backend/internal/domain/shared/valueobject"
)

// OrderModel is the persistence model for the Order aggregate.
// Locations are stored as JSON text.
type OrderModel struct {
	AggregateModel
	OrderNumber            string                   `gorm:"type:varchar(50);not null;uniqueIndex"`
	TrackingID             string                   `gorm:"type:varchar(20);not null;uniqueIndex"`
	CustomerID             int64                    `gorm:"not null;index"`
	Status                 order.OrderStatus        `gorm:"type:varchar(30);not null;index"`
	PaymentMode            order.PaymentMode        `gorm:"type:varchar(30);not null"`
	TotalAmount            decimal.Decimal          `gorm:"type:decimal(12,2);not null;default:0"`
	CustomerName           string                   `gorm:"type:varchar(100)"`
	CustomerEmail          string                   `gorm:"type:varchar(200)"`
	CustomerMobile         string                   `gorm:"type:varchar(20)"`
	DeliveryAddress        string                   `gorm:"type:text;not null"`
	DeliveryPincode        string                   `gorm:"type:varchar(10);not null"`
	EstimatedDeliveryStart time.Time                `gorm:"not null"`
	EstimatedDeliveryEnd   time.Time                `gorm:"not null"`
	CourierName            string                   `gorm:"type:varchar(100)"`
	AssignedTo             *int64                   `gorm:"index"`
	AcceptedAt             *time.Time
	PickedUpAt             *time.Time
	OutForDeliveryAt       *time.Time
	DeliveredAt            *time.Time
	PickupLocation         *valueobject.GeoLocation `gorm:"type:text;serializer:json"`
	DeliveryLocation       *valueobject.GeoLocation `gorm:"type:text;serializer:json"`
	CurrentLocation        *valueobject.GeoLocation `gorm:"type:text;serializer:json"`
	CancellationReason     string                   `gorm:"type:varchar(500)"`
	Items                  []OrderItemModel         `gorm:"foreignKey:OrderID"`
	TrackingEvents         []TrackingEventModel     `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order with its items
// and tracking events.
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		OrderNumber:       m.OrderNumber,
		TrackingID:        m.TrackingID,
		CustomerID:        m.CustomerID,
		Status:            m.Status,
		PaymentMode:       m.PaymentMode,
		TotalAmount:       m.TotalAmount,
		Contact: order.DeliveryContact{
			Name:    m.CustomerName,
			Email:   m.CustomerEmail,
			Mobile:  m.CustomerMobile,
			Address: m.DeliveryAddress,
			Pincode: m.DeliveryPincode,
		},
		EstimatedDeliveryStart: m.EstimatedDeliveryStart,
		EstimatedDeliveryEnd:   m.EstimatedDeliveryEnd,
		CourierName:            m.CourierName,
		AssignedTo:             m.AssignedTo,
		AcceptedAt:             m.AcceptedAt,
		PickedUpAt:             m.PickedUpAt,
		OutForDeliveryAt:       m.OutForDeliveryAt,
		DeliveredAt:            m.DeliveredAt,
		PickupLocation:         m.PickupLocation,
		DeliveryLocation:       m.DeliveryLocation,
		CurrentLocation:        m.CurrentLocation,
		CancellationReason:     m.CancellationReason,
		Items:                  make([]order.OrderItem, 0, len(m.Items)),
		TrackingEvents:         make([]order.TrackingEvent, 0, len(m.TrackingEvents)),
	}
	for _, it := range m.Items {
		o.Items = append(o.Items, it.ToDomain())
	}
	for _, ev := range m.TrackingEvents {
		o.TrackingEvents = append(o.TrackingEvents, ev.ToDomain())
	}
	return o
}

// FromDomain populates the order columns. Items and tracking events are
// mapped separately because they are written on a different schedule.
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.TrackingID = o.TrackingID
	m.CustomerID = o.CustomerID
	m.Status = o.Status
	m.PaymentMode = o.PaymentMode
	m.TotalAmount = o.TotalAmount
	m.CustomerName = o.Contact.Name
	m.CustomerEmail = o.Contact.Email
	m.CustomerMobile = o.Contact.Mobile
	m.DeliveryAddress = o.Contact.Address
	m.DeliveryPincode = o.Contact.Pincode
	m.EstimatedDeliveryStart = o.EstimatedDeliveryStart
	m.EstimatedDeliveryEnd = o.EstimatedDeliveryEnd
	m.CourierName = o.CourierName
	m.AssignedTo = o.AssignedTo
	m.AcceptedAt = o.AcceptedAt
	m.PickedUpAt = o.PickedUpAt
	m.OutForDeliveryAt = o.OutForDeliveryAt
	m.DeliveredAt = o.DeliveredAt
	m.PickupLocation = o.PickupLocation
	m.DeliveryLocation = o.DeliveryLocation
	m.CurrentLocation = o.CurrentLocation
	m.CancellationReason = o.CancellationReason
}

// OrderModelFromDomain creates a persistence model including items and
// tracking events, ready for insertion.
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	m.Items = make([]OrderItemModel, 0, len(o.Items))
	for _, it := range o.Items {
		m.Items = append(m.Items, OrderItemModelFromDomain(it))
	}
	m.TrackingEvents = make([]TrackingEventModel, 0, len(o.TrackingEvents))
	for _, ev := range o.TrackingEvents {
		m.TrackingEvents = append(m.TrackingEvents, TrackingEventModelFromDomain(ev))
	}
	return m
}

// OrderItemModel is an order line with a product name snapshot
type OrderItemModel struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	OrderID     int64           `gorm:"not null;index"`
	ProductID   int64           `gorm:"not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain OrderItem.
func (m OrderItemModel) ToDomain() order.OrderItem {
	return order.OrderItem{
		ID:          m.ID,
		OrderID:     m.OrderID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		TotalPrice:  m.TotalPrice,
	}
}

// OrderItemModelFromDomain creates a persistence model from an OrderItem
func OrderItemModelFromDomain(it order.OrderItem) OrderItemModel {
	return OrderItemModel{
		ID:          it.ID,
		OrderID:     it.OrderID,
		ProductID:   it.ProductID,
		ProductName: it.ProductName,
		Quantity:    it.Quantity,
		UnitPrice:   it.UnitPrice,
		TotalPrice:  it.TotalPrice,
	}
}

// TrackingEventModel is an insert-only timeline row
type TrackingEventModel struct {
	ID          int64                   `gorm:"primaryKey;autoIncrement"`
	OrderID     int64                   `gorm:"not null;index"`
	EventType   order.TrackingEventType `gorm:"type:varchar(50);not null"`
	Description string                  `gorm:"type:varchar(255)"`
	Location    string                  `gorm:"type:varchar(255)"`
	Sequence    int                     `gorm:"column:sequence_number;not null"`
	OccurredAt  time.Time               `gorm:"column:event_time;not null"`
}

// TableName returns the table name for GORM
func (TrackingEventModel) TableName() string {
	return "order_tracking_events"
}

// ToDomain converts the persistence model to a domain TrackingEvent.
func (m TrackingEventModel) ToDomain() order.TrackingEvent {
	return order.TrackingEvent{
		ID:          m.ID,
		OrderID:     m.OrderID,
		EventType:   m.EventType,
		Description: m.Description,
		Location:    m.Location,
		Sequence:    m.Sequence,
		OccurredAt:  m.OccurredAt,
	}
}

// TrackingEventModelFromDomain creates a persistence model from a TrackingEvent
func TrackingEventModelFromDomain(ev order.TrackingEvent) TrackingEventModel {
	return TrackingEventModel{
		ID:          ev.ID,
		OrderID:     ev.OrderID,
		EventType:   ev.EventType,
		Description: ev.Description,
		Location:    ev.Location,
		Sequence:    ev.Sequence,
		OccurredAt:  ev.OccurredAt,
	}
}

// LocationSampleModel is one GPS reading of a delivery
type LocationSampleModel struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	OrderID    int64     `gorm:"not null;index:idx_location_order_time,priority:1"`
	AgentID    int64     `gorm:"column:delivery_man_id;not null;index"`
	Lat        float64   `gorm:"column:latitude;not null"`
	Lng        float64   `gorm:"column:longitude;not null"`
	Address    string    `gorm:"type:varchar(255)"`
	Accuracy   *float64
	Speed      *float64
	Heading    *float64
	RecordedAt time.Time `gorm:"not null;index:idx_location_order_time,priority:2"`
}

// TableName returns the table name for GORM
func (LocationSampleModel) TableName() string {
	return "location_tracking"
}

// ToDomain converts the persistence model to a domain LocationSample.
func (m LocationSampleModel) ToDomain() order.LocationSample {
	return order.LocationSample{
		ID:         m.ID,
		OrderID:    m.OrderID,
		AgentID:    m.AgentID,
		Lat:        m.Lat,
		Lng:        m.Lng,
		Address:    m.Address,
		Accuracy:   m.Accuracy,
		Speed:      m.Speed,
		Heading:    m.Heading,
		RecordedAt: m.RecordedAt,
	}
}

// LocationSampleModelFromDomain creates a persistence model from a LocationSample
func LocationSampleModelFromDomain(s order.LocationSample) LocationSampleModel {
	return LocationSampleModel{
		ID:         s.ID,
		OrderID:    s.OrderID,
		AgentID:    s.AgentID,
		Lat:        s.Lat,
		Lng:        s.Lng,
		Address:    s.Address,
		Accuracy:   s.Accuracy,
		Speed:      s.Speed,
		Heading:    s.Heading,
		RecordedAt: s.RecordedAt,
	}
}
