package catalog

import (
	"context"
	"fmt"

	"github.com/sudharshini/backend/internal/domain/catalog"
	"github.com/sudharshini/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LowStockAlertHandler handles ProductLowStock events and alerts the
// administrator when a product drops below the threshold
type LowStockAlertHandler struct {
	productRepo catalog.ProductRepository
	notifier    StockAlertNotifier
	logger      *zap.Logger
}

// NewLowStockAlertHandler creates a new handler for low stock events
func NewLowStockAlertHandler(productRepo catalog.ProductRepository, logger *zap.Logger) *LowStockAlertHandler {
	return &LowStockAlertHandler{
		productRepo: productRepo,
		logger:      logger,
	}
}

// WithNotifier sets the notifier for sending alerts
func (h *LowStockAlertHandler) WithNotifier(notifier StockAlertNotifier) *LowStockAlertHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockAlertHandler) EventTypes() []string {
	return []string{catalog.EventTypeProductLowStock}
}

// Handle processes a ProductLowStockEvent
func (h *LowStockAlertHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	lowStock, ok := event.(*catalog.ProductLowStockEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", catalog.EventTypeProductLowStock),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			catalog.EventTypeProductLowStock, event.EventType())
	}

	h.logger.Warn("product below stock threshold",
		zap.Int64("product_id", lowStock.ProductID),
		zap.String("name", lowStock.Name),
		zap.Int("stock", lowStock.Stock),
		zap.Int("threshold", catalog.LowStockThreshold),
	)

	if h.notifier == nil {
		return nil
	}

	// Alert with the current level; the event carries a fallback snapshot
	product, err := h.productRepo.FindByID(ctx, lowStock.ProductID)
	if err != nil {
		h.logger.Debug("failed to reload product, alerting from event data", zap.Error(err))
		product = &catalog.Product{Name: lowStock.Name, StockQuantity: lowStock.Stock}
		product.ID = lowStock.ProductID
	}
	if !product.IsLowStock() {
		return nil
	}

	if err := h.notifier.SendLowStockAlert(ctx, product); err != nil {
		h.logger.Error("failed to send low stock alert",
			zap.Int64("product_id", product.ID),
			zap.Error(err),
		)
		return nil
	}
	h.logger.Info("low stock alert sent", zap.Int64("product_id", product.ID))
	return nil
}

// Ensure LowStockAlertHandler implements shared.EventHandler
var _ shared.EventHandler = (*LowStockAlertHandler)(nil)
