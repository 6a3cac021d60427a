package persistence

import (
	"context"
	"time"

	"github.com/sudharshini/backend/internal/domain/order"
	"github.com/sudharshini/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLocationTrackingRepository stores GPS samples of deliveries
type GormLocationTrackingRepository struct {
	db *gorm.DB
}

// NewGormLocationTrackingRepository creates a new GormLocationTrackingRepository
func NewGormLocationTrackingRepository(db *gorm.DB) *GormLocationTrackingRepository {
	return &GormLocationTrackingRepository{db: db}
}

// Append inserts samples in one batch and assigns their ids
func (r *GormLocationTrackingRepository) Append(ctx context.Context, samples ...order.LocationSample) error {
	if len(samples) == 0 {
		return nil
	}
	rows := make([]models.LocationSampleModel, 0, len(samples))
	for _, s := range samples {
		rows = append(rows, models.LocationSampleModelFromDomain(s))
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return err
	}
	for i := range samples {
		samples[i].ID = rows[i].ID
	}
	return nil
}

// FindByOrder returns samples recorded at or after since, oldest first.
// A zero since returns the full history.
func (r *GormLocationTrackingRepository) FindByOrder(ctx context.Context, orderID int64, since time.Time) ([]order.LocationSample, error) {
	query := r.db.WithContext(ctx).Where("order_id = ?", orderID)
	if !since.IsZero() {
		query = query.Where("recorded_at >= ?", since)
	}
	var rows []models.LocationSampleModel
	if err := query.Order("recorded_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	samples := make([]order.LocationSample, 0, len(rows))
	for _, row := range rows {
		samples = append(samples, row.ToDomain())
	}
	return samples, nil
}

var _ order.LocationTrackingRepository = (*GormLocationTrackingRepository)(nil)
