package persistence

import (
	"context"
	"errors"

	"github.com/sudharshini/backend/internal/domain/catalog"
	"github.com/sudharshini/backend/internal/domain/shared"
	"github.com/sudharshini/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSupplierRepository implements SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByID finds a supplier by ID
func (r *GormSupplierRepository) FindByID(ctx context.Context, id int64) (*catalog.Supplier, error) {
	var model models.SupplierModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFoundError("Supplier", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists suppliers by name
func (r *GormSupplierRepository) FindAll(ctx context.Context) ([]catalog.Supplier, error) {
	var rows []models.SupplierModel
	if err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	suppliers := make([]catalog.Supplier, 0, len(rows))
	for i := range rows {
		suppliers = append(suppliers, *rows[i].ToDomain())
	}
	return suppliers, nil
}

// Save creates or updates a supplier
func (r *GormSupplierRepository) Save(ctx context.Context, s *catalog.Supplier) error {
	model := models.SupplierModelFromDomain(s)
	if s.ID == 0 {
		if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
			return err
		}
		s.ID = model.ID
		return nil
	}
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a supplier and clears it from the products it supplied
func (r *GormSupplierRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ProductModel{}).
			Where("supplier_id = ?", id).
			Update("supplier_id", nil).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.SupplierModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NotFoundError("Supplier", id)
		}
		return nil
	})
}

var _ catalog.SupplierRepository = (*GormSupplierRepository)(nil)
