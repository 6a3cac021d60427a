package catalog

import (
	"github.com/shopspring/decimal"
	"github.com/sudharshini/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeProduct = "Product"

// Event type constants
const (
	EventTypeProductCreated  = "ProductCreated"
	EventTypeProductUpdated  = "ProductUpdated"
	EventTypeProductDeleted  = "ProductDeleted"
	EventTypeStockChanged    = "StockChanged"
	EventTypeProductLowStock = "ProductLowStock"
)

// ProductCreatedEvent is published when a new product is created
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(p *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		Name:            p.Name,
		Price:           p.Price,
		Stock:           p.StockQuantity,
	}
}

// ProductUpdatedEvent is published when a product is updated
type ProductUpdatedEvent struct {
	shared.BaseDomainEvent
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
}

// NewProductUpdatedEvent creates a new ProductUpdatedEvent
func NewProductUpdatedEvent(p *Product) *ProductUpdatedEvent {
	return &ProductUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductUpdated, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		Name:            p.Name,
	}
}

// ProductDeletedEvent is published when a product is removed
type ProductDeletedEvent struct {
	shared.BaseDomainEvent
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
}

// NewProductDeletedEvent creates a new ProductDeletedEvent
func NewProductDeletedEvent(p *Product) *ProductDeletedEvent {
	return &ProductDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductDeleted, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		Name:            p.Name,
	}
}

// StockChangedEvent is published on every stock in or out
type StockChangedEvent struct {
	shared.BaseDomainEvent
	ProductID    int64        `json:"product_id"`
	MovementType MovementType `json:"movement_type"`
	Quantity     int          `json:"quantity"`
	NewStock     int          `json:"new_stock"`
}

// NewStockChangedEvent creates a new StockChangedEvent
func NewStockChangedEvent(p *Product, movement MovementType, qty int) *StockChangedEvent {
	return &StockChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockChanged, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		MovementType:    movement,
		Quantity:        qty,
		NewStock:        p.StockQuantity,
	}
}

// ProductLowStockEvent is published when stock drops below LowStockThreshold.
// It triggers the low-stock alert email.
type ProductLowStockEvent struct {
	shared.BaseDomainEvent
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
}

// NewProductLowStockEvent creates a new ProductLowStockEvent
func NewProductLowStockEvent(p *Product) *ProductLowStockEvent {
	return &ProductLowStockEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductLowStock, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		Name:            p.Name,
		Stock:           p.StockQuantity,
	}
}
