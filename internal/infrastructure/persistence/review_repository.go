package persistence

import (
	"context"
	"errors"
	"math"

	"github.com/sudharshini/backend/internal/domain/catalog"
	"github.com/sudharshini/backend/internal/domain/shared"
	"github.com/sudharshini/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormReviewRepository implements ReviewRepository using GORM
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// FindByID finds a review by ID
func (r *GormReviewRepository) FindByID(ctx context.Context, id int64) (*catalog.Review, error) {
	var model models.ReviewModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFoundError("Review", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByProductAndUser returns the user's review of the product
func (r *GormReviewRepository) FindByProductAndUser(ctx context.Context, productID, userID int64) (*catalog.Review, error) {
	var model models.ReviewModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND user_id = ?", productID, userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFoundError("Review", productID)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByProduct returns a product's reviews, newest first
func (r *GormReviewRepository) FindByProduct(ctx context.Context, productID int64) ([]catalog.Review, error) {
	return r.find(r.db.WithContext(ctx).Where("product_id = ?", productID))
}

// FindByUser returns a user's reviews, newest first
func (r *GormReviewRepository) FindByUser(ctx context.Context, userID int64) ([]catalog.Review, error) {
	return r.find(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *GormReviewRepository) find(query *gorm.DB) ([]catalog.Review, error) {
	var rows []models.ReviewModel
	if err := query.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	reviews := make([]catalog.Review, 0, len(rows))
	for i := range rows {
		reviews = append(reviews, *rows[i].ToDomain())
	}
	return reviews, nil
}

type ratingRow struct {
	ProductID int64
	Average   float64
	Total     int
}

// SummaryByProducts aggregates ratings in one grouped query. Products
// without reviews are absent from the map.
func (r *GormReviewRepository) SummaryByProducts(ctx context.Context, productIDs []int64) (map[int64]catalog.RatingSummary, error) {
	result := make(map[int64]catalog.RatingSummary, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}
	var rows []ratingRow
	if err := r.db.WithContext(ctx).Model(&models.ReviewModel{}).
		Select("product_id, AVG(rating) AS average, COUNT(*) AS total").
		Where("product_id IN ?", productIDs).
		Group("product_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.ProductID] = catalog.RatingSummary{
			Average: math.Round(row.Average*10) / 10,
			Count:   row.Total,
		}
	}
	return result, nil
}

// Save creates or updates a review. The unique (product, user) index turns
// a concurrent duplicate into ALREADY_EXISTS.
func (r *GormReviewRepository) Save(ctx context.Context, review *catalog.Review) error {
	model := models.ReviewModelFromDomain(review)
	var err error
	if review.ID == 0 {
		err = r.db.WithContext(ctx).Create(model).Error
	} else {
		err = r.db.WithContext(ctx).Save(model).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.NewDomainError(shared.CodeAlreadyExists, "You have already reviewed this product")
		}
		return err
	}
	review.ID = model.ID
	return nil
}

// Delete removes a review
func (r *GormReviewRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.ReviewModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NotFoundError("Review", id)
	}
	return nil
}

var _ catalog.ReviewRepository = (*GormReviewRepository)(nil)
