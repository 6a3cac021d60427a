package cart

import (
	"context"
	"time"

	"github.com/sudharshini/backend/internal/domain/shared"
)

// DefaultQuantity is used when an add request carries no quantity
const DefaultQuantity = 1

// ErrItemNotFound is returned for item ids outside the user's cart
var ErrItemNotFound = shared.NewDomainError(shared.CodeNotFound, "Cart item not found")

// Item is one product line in a cart
type Item struct {
	ID        int64
	CartID    int64
	ProductID int64
	Quantity  int
}

// Cart is a customer's shopping cart. Each customer has at most one.
type Cart struct {
	ID        int64
	UserID    int64
	Items     []Item
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates an empty cart for a customer
func New(userID int64) *Cart {
	now := time.Now()
	return &Cart{UserID: userID, Items: make([]Item, 0), CreatedAt: now, UpdatedAt: now}
}

// AddItem adds qty of a product, merging into an existing line.
// A non-positive qty adds DefaultQuantity.
func (c *Cart) AddItem(productID int64, qty int) *Item {
	if qty <= 0 {
		qty = DefaultQuantity
	}
	c.UpdatedAt = time.Now()
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += qty
			return &c.Items[i]
		}
	}
	c.Items = append(c.Items, Item{CartID: c.ID, ProductID: productID, Quantity: qty})
	return &c.Items[len(c.Items)-1]
}

// UpdateItem sets an item's quantity; qty <= 0 removes it
func (c *Cart) UpdateItem(itemID int64, qty int) error {
	if qty <= 0 {
		return c.RemoveItem(itemID)
	}
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items[i].Quantity = qty
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrItemNotFound
}

// RemoveItem drops an item
func (c *Cart) RemoveItem(itemID int64) error {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrItemNotFound
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Items = c.Items[:0]
	c.UpdatedAt = time.Now()
}

// TotalQuantity returns the number of units across all lines
func (c *Cart) TotalQuantity() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Repository defines the interface for cart persistence
type Repository interface {
	// FindByUser returns the user's cart or a NOT_FOUND error
	FindByUser(ctx context.Context, userID int64) (*Cart, error)

	// Save inserts the cart if new and synchronises its items, assigning item ids
	Save(ctx context.Context, c *Cart) error
}
