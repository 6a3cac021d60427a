package models

import (
	"github.com/sudharshini/backend/internal/domain/cart"
)

// CartModel is a customer's cart; one per user
type CartModel struct {
	BaseModel
	UserID int64           `gorm:"not null;uniqueIndex"`
	Items  []CartItemModel `gorm:"foreignKey:CartID"`
}

// TableName returns the table name for GORM
func (CartModel) TableName() string {
	return "carts"
}

// CartItemModel is one product line of a cart
type CartItemModel struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	CartID    int64 `gorm:"not null;uniqueIndex:idx_cart_items_cart_product,priority:1"`
	ProductID int64 `gorm:"not null;uniqueIndex:idx_cart_items_cart_product,priority:2"`
	Quantity  int   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CartItemModel) TableName() string {
	return "cart_items"
}

// ToDomain converts the persistence model to a domain Cart.
func (m *CartModel) ToDomain() *cart.Cart {
	c := &cart.Cart{
		ID:        m.ID,
		UserID:    m.UserID,
		Items:     make([]cart.Item, 0, len(m.Items)),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	for _, it := range m.Items {
		c.Items = append(c.Items, cart.Item{
			ID:        it.ID,
			CartID:    it.CartID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}
	return c
}

// CartModelFromDomain creates the cart row without its items
func CartModelFromDomain(c *cart.Cart) *CartModel {
	return &CartModel{
		BaseModel: BaseModel{ID: c.ID, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt},
		UserID:    c.UserID,
	}
}
