package catalog

import (
	"context"
	"time"

	"github.com/sudharshini/backend/internal/domain/catalog"
	"go.uber.org/zap"
)

// ExpirySweepService alerts the administrator about products nearing expiry
type ExpirySweepService struct {
	productRepo catalog.ProductRepository
	notifier    StockAlertNotifier
	logger      *zap.Logger
	now         func() time.Time
}

// NewExpirySweepService creates a new ExpirySweepService
func NewExpirySweepService(productRepo catalog.ProductRepository, notifier StockAlertNotifier, logger *zap.Logger) *ExpirySweepService {
	return &ExpirySweepService{
		productRepo: productRepo,
		notifier:    notifier,
		logger:      logger,
		now:         time.Now,
	}
}

// ExpirySweepStats summarises one sweep
type ExpirySweepStats struct {
	NearExpiry  int       `json:"near_expiry"`
	AlertSent   bool      `json:"alert_sent"`
	ProcessedAt time.Time `json:"processed_at"`
}

// Sweep finds products expiring after today and within NearExpiryDays and
// sends one alert listing them
func (s *ExpirySweepService) Sweep(ctx context.Context) (*ExpirySweepStats, error) {
	now := s.now()
	stats := &ExpirySweepStats{ProcessedAt: now}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	candidates, err := s.productRepo.FindExpiringBetween(ctx, today, today.AddDate(0, 0, catalog.NearExpiryDays))
	if err != nil {
		s.logger.Error("Failed to find expiring products", zap.Error(err))
		return nil, err
	}

	expiring := make([]catalog.Product, 0, len(candidates))
	for _, p := range candidates {
		if p.IsNearExpiry(now) {
			expiring = append(expiring, p)
		}
	}
	stats.NearExpiry = len(expiring)
	if len(expiring) == 0 {
		s.logger.Debug("No products near expiry")
		return stats, nil
	}

	if err := s.notifier.SendExpiryAlert(ctx, expiring); err != nil {
		s.logger.Error("Failed to send expiry alert", zap.Int("count", len(expiring)), zap.Error(err))
		return stats, nil
	}
	stats.AlertSent = true
	s.logger.Info("Expiry alert sent", zap.Int("count", len(expiring)))
	return stats, nil
}
