package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sudharshini/backend/internal/domain/shared"
)

const (
	// LowStockThreshold is the quantity below which a product is low on stock
	LowStockThreshold = 10

	// NearExpiryDays is the window in which a product counts as near expiry
	NearExpiryDays = 15
)

// Product represents a sellable item with its on-hand stock
// It is the aggregate root for product and stock operations
type Product struct {
	shared.BaseAggregateRoot
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int
	ImageURL      string
	SupplierID    *int64
	ExpiryDate    *time.Time
	Category      string
	SKU           string
}

// ProductDetails carries the editable fields of a product
type ProductDetails struct {
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	SupplierID  *int64
	ExpiryDate  *time.Time
	Category    string
	SKU         string
}

// NewProduct creates a new product with an opening stock level
func NewProduct(details ProductDetails, stock int) (*Product, error) {
	if stock < 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Stock quantity cannot be negative")
	}
	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		StockQuantity:     stock,
	}
	if err := p.apply(details); err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces the product's editable fields
func (p *Product) Update(details ProductDetails) error {
	if err := p.apply(details); err != nil {
		return err
	}
	p.UpdatedAt = time.Now()
	p.AddDomainEvent(NewProductUpdatedEvent(p))
	return nil
}

func (p *Product) apply(d ProductDetails) error {
	name := strings.TrimSpace(d.Name)
	if err := validateProductName(name); err != nil {
		return err
	}
	if d.Price.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Price cannot be negative")
	}
	p.Name = name
	p.Description = strings.TrimSpace(d.Description)
	p.Price = d.Price
	p.ImageURL = strings.TrimSpace(d.ImageURL)
	p.SupplierID = d.SupplierID
	p.ExpiryDate = d.ExpiryDate
	p.Category = strings.TrimSpace(d.Category)
	p.SKU = strings.ToUpper(strings.TrimSpace(d.SKU))
	return nil
}

// SetImageURL records where the product image was uploaded
func (p *Product) SetImageURL(url string) {
	p.ImageURL = url
	p.UpdatedAt = time.Now()
}

// HasStock reports whether qty units can be taken
func (p *Product) HasStock(qty int) bool {
	return qty > 0 && p.StockQuantity >= qty
}

// DecreaseStock takes qty units out. Dropping below the low-stock threshold
// raises ProductLowStockEvent.
func (p *Product) DecreaseStock(qty int) error {
	if qty <= 0 {
		return shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("Invalid quantity for product: %s", p.Name))
	}
	if p.StockQuantity < qty {
		return shared.NewDomainError(shared.CodeInsufficientStock,
			fmt.Sprintf("Insufficient stock for: %s", p.Name))
	}
	p.StockQuantity -= qty
	p.UpdatedAt = time.Now()
	p.AddDomainEvent(NewStockChangedEvent(p, MovementOut, qty))
	if p.IsLowStock() {
		p.AddDomainEvent(NewProductLowStockEvent(p))
	}
	return nil
}

// IncreaseStock adds qty units
func (p *Product) IncreaseStock(qty int) error {
	if qty <= 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Quantity must be positive")
	}
	p.StockQuantity += qty
	p.UpdatedAt = time.Now()
	p.AddDomainEvent(NewStockChangedEvent(p, MovementIn, qty))
	return nil
}

// IsLowStock reports whether stock is below LowStockThreshold
func (p *Product) IsLowStock() bool {
	return p.StockQuantity < LowStockThreshold
}

// IsNearExpiry reports whether the expiry date is after today and before
// today plus NearExpiryDays
func (p *Product) IsNearExpiry(now time.Time) bool {
	if p.ExpiryDate == nil {
		return false
	}
	today := truncateDay(now)
	expiry := truncateDay(p.ExpiryDate.In(now.Location()))
	return expiry.After(today) && expiry.Before(today.AddDate(0, 0, NearExpiryDays))
}

// StockValue returns price × stock
func (p *Product) StockValue() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.StockQuantity)))
}

// MarkDeleted raises ProductDeletedEvent
func (p *Product) MarkDeleted() {
	p.AddDomainEvent(NewProductDeletedEvent(p))
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// validateProductName validates the product name
func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Product name cannot exceed 200 characters")
	}
	return nil
}
