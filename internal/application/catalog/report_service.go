package catalog

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sudharshini/backend/internal/domain/catalog"
	"go.uber.org/zap"
)

// SummaryResponse is the admin dashboard stock summary
type SummaryResponse struct {
	TotalProducts   int               `json:"total_products"`
	TotalStockValue decimal.Decimal   `json:"total_stock_value"`
	LowStockCount   int               `json:"low_stock_count"`
	LowStockItems   []ProductResponse `json:"low_stock_items"`
	NearExpiryCount int               `json:"near_expiry_count"`
	NearExpiryItems []ProductResponse `json:"near_expiry_items"`
}

// ReportService computes stock reports from the product catalogue
type ReportService struct {
	productRepo catalog.ProductRepository
	logger      *zap.Logger
	now         func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(productRepo catalog.ProductRepository, logger *zap.Logger) *ReportService {
	return &ReportService{productRepo: productRepo, logger: logger, now: time.Now}
}

// Summary totals the catalogue and lists the low stock and near expiry items
func (s *ReportService) Summary(ctx context.Context) (*SummaryResponse, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	resp := &SummaryResponse{
		TotalProducts:   len(products),
		TotalStockValue: decimal.Zero,
		LowStockItems:   []ProductResponse{},
		NearExpiryItems: []ProductResponse{},
	}
	for i := range products {
		p := &products[i]
		resp.TotalStockValue = resp.TotalStockValue.Add(p.StockValue())
		if p.IsLowStock() {
			resp.LowStockItems = append(resp.LowStockItems, ToProductResponse(p, catalog.RatingSummary{}, now))
		}
		if p.IsNearExpiry(now) {
			resp.NearExpiryItems = append(resp.NearExpiryItems, ToProductResponse(p, catalog.RatingSummary{}, now))
		}
	}
	resp.LowStockCount = len(resp.LowStockItems)
	resp.NearExpiryCount = len(resp.NearExpiryItems)

	s.logger.Debug("Stock summary generated",
		zap.Int("products", resp.TotalProducts),
		zap.Int("low_stock", resp.LowStockCount),
		zap.Int("near_expiry", resp.NearExpiryCount),
	)
	return resp, nil
}
