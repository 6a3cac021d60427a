package persistence

import (
	"context"
	"errors"

	"github.com/sudharshini/backend/internal/domain/cart"
	"github.com/sudharshini/backend/internal/domain/shared"
	"github.com/sudharshini/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCartRepository implements cart.Repository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// FindByUser returns the user's cart with its items
func (r *GormCartRepository) FindByUser(ctx context.Context, userID int64) (*cart.Cart, error) {
	var model models.CartModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("user_id = ?", userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFoundError("Cart", userID)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save inserts the cart if new and synchronises its items: rows whose ids
// are gone are deleted, new lines are inserted and the rest updated.
func (r *GormCartRepository) Save(ctx context.Context, c *cart.Cart) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.CartModelFromDomain(c)
		if c.ID == 0 {
			if err := tx.Omit("Items").Create(model).Error; err != nil {
				return err
			}
			c.ID = model.ID
		} else if err := tx.Omit("Items").Save(model).Error; err != nil {
			return err
		}

		keep := make([]int64, 0, len(c.Items))
		for _, it := range c.Items {
			if it.ID != 0 {
				keep = append(keep, it.ID)
			}
		}
		stale := tx.Where("cart_id = ?", c.ID)
		if len(keep) > 0 {
			stale = stale.Where("id NOT IN ?", keep)
		}
		if err := stale.Delete(&models.CartItemModel{}).Error; err != nil {
			return err
		}

		for i := range c.Items {
			it := &c.Items[i]
			it.CartID = c.ID
			row := models.CartItemModel{ID: it.ID, CartID: c.ID, ProductID: it.ProductID, Quantity: it.Quantity}
			if it.ID == 0 {
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
				it.ID = row.ID
				continue
			}
			if err := tx.Model(&models.CartItemModel{}).
				Where("id = ? AND cart_id = ?", it.ID, c.ID).
				Update("quantity", it.Quantity).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

var _ cart.Repository = (*GormCartRepository)(nil)
