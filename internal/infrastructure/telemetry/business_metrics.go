package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/sudharshini/backend/internal/domain/catalog"
	"github.com/sudharshini/backend/internal/domain/order"
	"github.com/sudharshini/backend/internal/domain/shared"
)

// LowStockSource lists the products currently below the low-stock threshold
type LowStockSource interface {
	FindLowStock(ctx context.Context) ([]catalog.Product, error)
}

// BusinessMetrics turns domain events into order and stock metrics. It is
// subscribed to the event bus like any other handler.
type BusinessMetrics struct {
	ordersCreated  *Counter
	orderAmount    *Histogram
	statusChanges  *Counter
	ordersAccepted *Counter
	stockMoved     *Counter
	lowStockAlerts *Counter
	lowStockGauge  metric.Int64ObservableGauge
	registration   metric.Registration
	logger         *zap.Logger
}

// NewBusinessMetrics creates the instruments. When source is non-nil the
// low_stock_products gauge is observed from it on every collection.
func NewBusinessMetrics(meter metric.Meter, source LowStockSource, logger *zap.Logger) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, errors.New("NewBusinessMetrics: meter cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	bm := &BusinessMetrics{logger: logger}

	var err error
	if bm.ordersCreated, err = NewCounter(meter, "orders_created_total",
		"Orders placed", "{order}"); err != nil {
		return nil, err
	}
	if bm.orderAmount, err = NewHistogram(meter, HistogramOpts{
		Name:        "order_amount_rupees",
		Description: "Order total distribution in rupees",
		Unit:        "INR",
		Boundaries:  []float64{100, 250, 500, 1000, 2500, 5000, 10000, 25000},
	}); err != nil {
		return nil, err
	}
	if bm.statusChanges, err = NewCounter(meter, "order_status_changes_total",
		"Order status transitions by target status", "{transition}"); err != nil {
		return nil, err
	}
	if bm.ordersAccepted, err = NewCounter(meter, "orders_accepted_total",
		"Orders accepted by delivery men", "{order}"); err != nil {
		return nil, err
	}
	if bm.stockMoved, err = NewCounter(meter, "stock_movement_units_total",
		"Units moved in or out of stock", "{unit}"); err != nil {
		return nil, err
	}
	if bm.lowStockAlerts, err = NewCounter(meter, "low_stock_alerts_total",
		"Low stock alerts raised", "{alert}"); err != nil {
		return nil, err
	}

	if source != nil {
		if bm.lowStockGauge, err = meter.Int64ObservableGauge("low_stock_products",
			metric.WithDescription("Products currently below the low stock threshold"),
			metric.WithUnit("{product}"),
		); err != nil {
			return nil, err
		}
		bm.registration, err = meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
			products, err := source.FindLowStock(ctx)
			if err != nil {
				bm.logger.Warn("Failed to count low stock products", zap.Error(err))
				return nil
			}
			o.ObserveInt64(bm.lowStockGauge, int64(len(products)))
			return nil
		}, bm.lowStockGauge)
		if err != nil {
			return nil, err
		}
	}
	return bm, nil
}

// EventTypes implements shared.EventHandler
func (bm *BusinessMetrics) EventTypes() []string {
	return []string{
		order.EventTypeOrderCreated,
		order.EventTypeOrderStatusChanged,
		order.EventTypeOrderAccepted,
		catalog.EventTypeStockChanged,
		catalog.EventTypeProductLowStock,
	}
}

// Handle implements shared.EventHandler. Unknown events are ignored.
func (bm *BusinessMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *order.OrderCreatedEvent:
		bm.ordersCreated.Inc(ctx)
		bm.orderAmount.Record(ctx, e.TotalAmount.InexactFloat64())
	case *order.OrderStatusChangedEvent:
		bm.statusChanges.Inc(ctx, AttrOrderStatus.String(string(e.NewStatus)))
	case *order.OrderAcceptedEvent:
		bm.ordersAccepted.Inc(ctx)
	case *catalog.StockChangedEvent:
		bm.stockMoved.Add(ctx, int64(e.Quantity), AttrMovementType.String(string(e.MovementType)))
	case *catalog.ProductLowStockEvent:
		bm.lowStockAlerts.Inc(ctx)
	}
	return nil
}

// Stop unregisters the gauge callback
func (bm *BusinessMetrics) Stop() error {
	if bm.registration == nil {
		return nil
	}
	return bm.registration.Unregister()
}
