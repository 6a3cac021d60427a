package order

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sudharshini/backend/internal/domain/identity"
	"github.com/sudharshini/backend/internal/domain/order"
	"github.com/sudharshini/backend/internal/domain/shared/valueobject"
)

const dateLayout = "2006-01-02"

// ==================== Requests ====================

// CreateOrderRequest represents a customer checkout
type CreateOrderRequest struct {
	Items           []CreateOrderItemInput `json:"items"`
	DeliveryName    string                 `json:"delivery_name" binding:"max=100"`
	DeliveryEmail   string                 `json:"delivery_email" binding:"omitempty,email"`
	DeliveryMobile  string                 `json:"delivery_mobile" binding:"max=20"`
	DeliveryAddress string                 `json:"delivery_address" binding:"max=500"`
	DeliveryPincode string                 `json:"delivery_pincode" binding:"omitempty,pincode"`
	PaymentMode     string                 `json:"payment_mode" binding:"omitempty,payment_mode"`
}

// CreateOrderItemInput is one requested product line
type CreateOrderItemInput struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// UpdateStatusRequest moves an order to a new status
type UpdateStatusRequest struct {
	Status             string `json:"status" binding:"required,order_status"`
	CancellationReason string `json:"cancellation_reason" binding:"max=500"`
}

// UpdateLocationRequest is a GPS sample posted by the assignee
type UpdateLocationRequest struct {
	Lat      *float64 `json:"lat" binding:"required,latitude"`
	Lng      *float64 `json:"lng" binding:"required,longitude"`
	Address  string   `json:"address" binding:"max=500"`
	Accuracy *float64 `json:"accuracy"`
	Speed    *float64 `json:"speed"`
	Heading  *float64 `json:"heading"`
}

// Viewer identifies who is reading an order
type Viewer struct {
	UserID int64
	Role   identity.Role
}

// CanView reports whether the viewer may read o
func (v Viewer) CanView(o *order.Order) bool {
	switch v.Role {
	case identity.RoleAdmin:
		return true
	case identity.RoleDeliveryMan:
		return o.IsAssignedTo(v.UserID) || o.IsAvailable()
	default:
		return o.CustomerID == v.UserID
	}
}

// ==================== Responses ====================

// OrderItemResponse represents an order line in API responses
type OrderItemResponse struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                     int64                    `json:"id"`
	OrderNumber            string                   `json:"order_number"`
	TrackingID             string                   `json:"tracking_id"`
	CustomerID             int64                    `json:"customer_id"`
	Status                 string                   `json:"status"`
	PaymentMode            string                   `json:"payment_mode"`
	TotalAmount            decimal.Decimal          `json:"total_amount"`
	DeliveryName           string                   `json:"delivery_name"`
	DeliveryEmail          string                   `json:"delivery_email"`
	DeliveryMobile         string                   `json:"delivery_mobile"`
	DeliveryAddress        string                   `json:"delivery_address"`
	DeliveryPincode        string                   `json:"delivery_pincode"`
	EstimatedDeliveryStart string                   `json:"estimated_delivery_start"`
	EstimatedDeliveryEnd   string                   `json:"estimated_delivery_end"`
	CourierName            string                   `json:"courier_name"`
	AssignedTo             *int64                   `json:"assigned_to,omitempty"`
	AcceptedAt             *time.Time               `json:"accepted_at,omitempty"`
	PickedUpAt             *time.Time               `json:"picked_up_at,omitempty"`
	OutForDeliveryAt       *time.Time               `json:"out_for_delivery_at,omitempty"`
	DeliveredAt            *time.Time               `json:"delivered_at,omitempty"`
	PickupLocation         *valueobject.GeoLocation `json:"pickup_location,omitempty"`
	DeliveryLocation       *valueobject.GeoLocation `json:"delivery_location,omitempty"`
	CurrentLocation        *valueobject.GeoLocation `json:"current_location,omitempty"`
	CancellationReason     string                   `json:"cancellation_reason,omitempty"`
	Items                  []OrderItemResponse      `json:"items"`
	ItemCount              int                      `json:"item_count"`
	TotalQuantity          int                      `json:"total_quantity"`
	Version                int                      `json:"version"`
	CreatedAt              time.Time                `json:"created_at"`
	UpdatedAt              time.Time                `json:"updated_at"`
}

// StatusUpdateResponse wraps an order with whether the status moved
type StatusUpdateResponse struct {
	Changed bool          `json:"changed"`
	Order   OrderResponse `json:"order"`
}

// OrderLookupResponse is the minimal projection returned by number/tracking lookups
type OrderLookupResponse struct {
	ID          int64  `json:"id"`
	OrderNumber string `json:"order_number"`
	TrackingID  string `json:"tracking_id"`
	Status      string `json:"status"`
}

// TrackingEventResponse is a timeline row
type TrackingEventResponse struct {
	EventType   string    `json:"event_type"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Sequence    int       `json:"sequence"`
	EventTime   time.Time `json:"event_time"`
}

// TrackingResponse is the public shipment timeline
type TrackingResponse struct {
	OrderID                int64                   `json:"order_id"`
	OrderNumber            string                  `json:"order_number"`
	TrackingID             string                  `json:"tracking_id"`
	CourierName            string                  `json:"courier_name"`
	Status                 string                  `json:"status"`
	EstimatedDeliveryStart string                  `json:"estimated_delivery_start"`
	EstimatedDeliveryEnd   string                  `json:"estimated_delivery_end"`
	Events                 []TrackingEventResponse `json:"events"`
}

// LocationSampleResponse is one GPS point in the history
type LocationSampleResponse struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Address   string    `json:"address,omitempty"`
	Accuracy  *float64  `json:"accuracy,omitempty"`
	Speed     *float64  `json:"speed,omitempty"`
	Heading   *float64  `json:"heading,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// DeliveryManInfo is the assignee shown to customers
type DeliveryManInfo struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Mobile string `json:"mobile,omitempty"`
}

// LocationTrackingResponse is the live-tracking view of an order
type LocationTrackingResponse struct {
	OrderID          int64                    `json:"order_id"`
	OrderNumber      string                   `json:"order_number"`
	Status           string                   `json:"status"`
	TrackingEnabled  bool                     `json:"tracking_enabled"`
	Message          string                   `json:"message,omitempty"`
	CurrentLocation  *valueobject.GeoLocation `json:"current_location,omitempty"`
	PickupLocation   *valueobject.GeoLocation `json:"pickup_location,omitempty"`
	DeliveryLocation *valueobject.GeoLocation `json:"delivery_location,omitempty"`
	LocationHistory  []LocationSampleResponse `json:"location_history,omitempty"`
	DeliveryMan      *DeliveryManInfo         `json:"delivery_man,omitempty"`
	DistanceToTarget *float64                 `json:"distance_to_target_km,omitempty"`
	AcceptedAt       *time.Time               `json:"accepted_at,omitempty"`
	PickedUpAt       *time.Time               `json:"picked_up_at,omitempty"`
	OutForDeliveryAt *time.Time               `json:"out_for_delivery_at,omitempty"`
	DeliveredAt      *time.Time               `json:"delivered_at,omitempty"`
}

// RouteResponse summarises a generated demo route
type RouteResponse struct {
	OrderID int64                    `json:"order_id"`
	Points  []LocationSampleResponse `json:"points"`
}

// ==================== Mapping ====================

// ToOrderResponse converts a domain order to its response
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		}
	}
	return OrderResponse{
		ID:                     o.ID,
		OrderNumber:            o.OrderNumber,
		TrackingID:             o.TrackingID,
		CustomerID:             o.CustomerID,
		Status:                 o.Status.String(),
		PaymentMode:            string(o.PaymentMode),
		TotalAmount:            o.TotalAmount,
		DeliveryName:           o.Contact.Name,
		DeliveryEmail:          o.Contact.Email,
		DeliveryMobile:         o.Contact.Mobile,
		DeliveryAddress:        o.Contact.Address,
		DeliveryPincode:        o.Contact.Pincode,
		EstimatedDeliveryStart: formatDate(o.EstimatedDeliveryStart),
		EstimatedDeliveryEnd:   formatDate(o.EstimatedDeliveryEnd),
		CourierName:            o.CourierName,
		AssignedTo:             o.AssignedTo,
		AcceptedAt:             o.AcceptedAt,
		PickedUpAt:             o.PickedUpAt,
		OutForDeliveryAt:       o.OutForDeliveryAt,
		DeliveredAt:            o.DeliveredAt,
		PickupLocation:         o.PickupLocation,
		DeliveryLocation:       o.DeliveryLocation,
		CurrentLocation:        o.CurrentLocation,
		CancellationReason:     o.CancellationReason,
		Items:                  items,
		ItemCount:              o.ItemCount(),
		TotalQuantity:          o.TotalQuantity(),
		Version:                o.Version,
		CreatedAt:              o.CreatedAt,
		UpdatedAt:              o.UpdatedAt,
	}
}

// ToOrderResponses converts a list of orders
func ToOrderResponses(orders []order.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out
}

// ToLookupResponse converts an order to its minimal lookup projection
func ToLookupResponse(o *order.Order) OrderLookupResponse {
	return OrderLookupResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		TrackingID:  o.TrackingID,
		Status:      o.Status.String(),
	}
}

// ToTrackingResponse builds the timeline view
func ToTrackingResponse(o *order.Order) TrackingResponse {
	sorted := o.SortedTrackingEvents()
	events := make([]TrackingEventResponse, len(sorted))
	for i, ev := range sorted {
		events[i] = TrackingEventResponse{
			EventType:   string(ev.EventType),
			Description: ev.Description,
			Location:    ev.Location,
			Sequence:    ev.Sequence,
			EventTime:   ev.OccurredAt,
		}
	}
	return TrackingResponse{
		OrderID:                o.ID,
		OrderNumber:            o.OrderNumber,
		TrackingID:             o.TrackingID,
		CourierName:            o.CourierName,
		Status:                 o.Status.String(),
		EstimatedDeliveryStart: formatDate(o.EstimatedDeliveryStart),
		EstimatedDeliveryEnd:   formatDate(o.EstimatedDeliveryEnd),
		Events:                 events,
	}
}

// ToLocationSampleResponses converts GPS samples
func ToLocationSampleResponses(samples []order.LocationSample) []LocationSampleResponse {
	out := make([]LocationSampleResponse, len(samples))
	for i, s := range samples {
		out[i] = LocationSampleResponse{
			Lat:       s.Lat,
			Lng:       s.Lng,
			Address:   s.Address,
			Accuracy:  s.Accuracy,
			Speed:     s.Speed,
			Heading:   s.Heading,
			Timestamp: s.RecordedAt,
		}
	}
	return out
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
