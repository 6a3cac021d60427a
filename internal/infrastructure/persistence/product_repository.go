package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/sudharshini/backend/internal/domain/catalog"
	"github.com/sudharshini/backend/internal/domain/shared"
	"github.com/sudharshini/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id int64) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFoundError("Product", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs loads products keyed by id; unknown ids are skipped
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []int64) (map[int64]*catalog.Product, error) {
	result := make(map[int64]*catalog.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		result[rows[i].ID] = rows[i].ToDomain()
	}
	return result, nil
}

// FindAll returns every product ordered by name
func (r *GormProductRepository) FindAll(ctx context.Context) ([]catalog.Product, error) {
	return r.find(r.db.WithContext(ctx).Order("name ASC, id ASC"))
}

// FindLowStock returns products below LowStockThreshold, lowest stock first
func (r *GormProductRepository) FindLowStock(ctx context.Context) ([]catalog.Product, error) {
	return r.find(r.db.WithContext(ctx).
		Where("stock_quantity < ?", catalog.LowStockThreshold).
		Order("stock_quantity ASC, name ASC"))
}

// FindExpiringBetween returns products whose expiry date falls strictly between from and to
func (r *GormProductRepository) FindExpiringBetween(ctx context.Context, from, to time.Time) ([]catalog.Product, error) {
	return r.find(r.db.WithContext(ctx).
		Where("expiry_date IS NOT NULL AND expiry_date > ? AND expiry_date < ?", from, to).
		Order("expiry_date ASC, name ASC"))
}

func (r *GormProductRepository) find(query *gorm.DB) ([]catalog.Product, error) {
	var rows []models.ProductModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	products := make([]catalog.Product, 0, len(rows))
	for i := range rows {
		products = append(products, *rows[i].ToDomain())
	}
	return products, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	model := models.ProductModelFromDomain(p)
	if p.ID == 0 {
		if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
			return err
		}
		p.ID = model.ID
		return nil
	}
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock updates the product only if its version is unchanged and
// bumps the version
func (r *GormProductRepository) SaveWithLock(ctx context.Context, p *catalog.Product) error {
	p.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("id = ? AND version = ?", p.ID, p.Version).
		Updates(map[string]any{
			"name":           p.Name,
			"description":    p.Description,
			"price":          p.Price,
			"stock_quantity": p.StockQuantity,
			"image_url":      p.ImageURL,
			"supplier_id":    p.SupplierID,
			"expiry_date":    p.ExpiryDate,
			"category":       p.Category,
			"sku":            p.SKU,
			"updated_at":     p.UpdatedAt,
			"version":        p.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.lockFailure(ctx, p.ID)
	}
	p.Version++
	return nil
}

// lockFailure tells a missing row apart from a stale version
func (r *GormProductRepository) lockFailure(ctx context.Context, id int64) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ProductModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.NotFoundError("Product", id)
	}
	return shared.NewDomainError(shared.CodeConcurrencyConflict, "The product has been modified by another user")
}

// Delete removes a product
func (r *GormProductRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.ProductModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NotFoundError("Product", id)
	}
	return nil
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)

// GormStockMovementRepository stores the stock ledger
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// Save appends a movement
func (r *GormStockMovementRepository) Save(ctx context.Context, m *catalog.StockMovement) error {
	model := models.StockMovementModelFromDomain(m)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	m.ID = model.ID
	return nil
}

// FindByProduct returns a product's movements, newest first
func (r *GormStockMovementRepository) FindByProduct(ctx context.Context, productID int64) ([]catalog.StockMovement, error) {
	var rows []models.StockMovementModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	movements := make([]catalog.StockMovement, 0, len(rows))
	for i := range rows {
		movements = append(movements, rows[i].ToDomain())
	}
	return movements, nil
}

var _ catalog.StockMovementRepository = (*GormStockMovementRepository)(nil)
