package order

import (
	"context"
	"fmt"

	"github.com/sudharshini/backend/internal/domain/order"
	"github.com/sudharshini/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// orderEventTypes are the events that produce customer-facing side effects
var orderEventTypes = []string{
	order.EventTypeOrderCreated,
	order.EventTypeOrderStatusChanged,
}

// OrderNotificationHandler emails the customer when an order is placed and
// on every status change. Delivery failures are logged and swallowed.
type OrderNotificationHandler struct {
	orderRepo order.OrderRepository
	notifier  Notifier
	logger    *zap.Logger
}

// NewOrderNotificationHandler creates a new OrderNotificationHandler
func NewOrderNotificationHandler(orderRepo order.OrderRepository, notifier Notifier, logger *zap.Logger) *OrderNotificationHandler {
	return &OrderNotificationHandler{
		orderRepo: orderRepo,
		notifier:  notifier,
		logger:    logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderNotificationHandler) EventTypes() []string {
	return orderEventTypes
}

// Handle processes OrderCreated and OrderStatusChanged events
func (h *OrderNotificationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	o, err := loadEventOrder(ctx, h.orderRepo, h.logger, event)
	if err != nil {
		return err
	}

	switch event.EventType() {
	case order.EventTypeOrderCreated:
		err = h.notifier.SendOrderConfirmation(ctx, o)
	default:
		err = h.notifier.SendOrderStatusUpdate(ctx, o)
	}
	if err != nil {
		h.logger.Error("failed to send order email",
			zap.Int64("order_id", o.ID),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
		return nil
	}

	h.logger.Info("order email sent",
		zap.Int64("order_id", o.ID),
		zap.String("event_type", event.EventType()),
		zap.String("status", o.Status.String()),
	)
	return nil
}

// OrderSheetExportHandler appends a row to the order spreadsheet for every
// new order and status change
type OrderSheetExportHandler struct {
	orderRepo order.OrderRepository
	exporter  SheetExporter
	logger    *zap.Logger
}

// NewOrderSheetExportHandler creates a new OrderSheetExportHandler
func NewOrderSheetExportHandler(orderRepo order.OrderRepository, exporter SheetExporter, logger *zap.Logger) *OrderSheetExportHandler {
	return &OrderSheetExportHandler{
		orderRepo: orderRepo,
		exporter:  exporter,
		logger:    logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderSheetExportHandler) EventTypes() []string {
	return orderEventTypes
}

// Handle processes OrderCreated and OrderStatusChanged events
func (h *OrderSheetExportHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	o, err := loadEventOrder(ctx, h.orderRepo, h.logger, event)
	if err != nil {
		return err
	}

	pushed, err := h.exporter.AppendOrderRow(ctx, o)
	switch {
	case err != nil:
		h.logger.Warn("failed to append order row",
			zap.Int64("order_id", o.ID),
			zap.Error(err),
		)
	case !pushed:
		h.logger.Debug("sheet export not configured", zap.Int64("order_id", o.ID))
	default:
		h.logger.Info("order row appended",
			zap.Int64("order_id", o.ID),
			zap.String("status", o.Status.String()),
		)
	}
	return nil
}

// loadEventOrder checks the event type and reloads the order it refers to
func loadEventOrder(ctx context.Context, repo order.OrderRepository, logger *zap.Logger, event shared.DomainEvent) (*order.Order, error) {
	var orderID int64
	switch e := event.(type) {
	case *order.OrderCreatedEvent:
		orderID = e.OrderID
	case *order.OrderStatusChangedEvent:
		orderID = e.OrderID
	default:
		logger.Error("unexpected event type",
			zap.Strings("expected", orderEventTypes),
			zap.String("actual", event.EventType()),
		)
		return nil, fmt.Errorf("unexpected event type: expected one of %v, got %s",
			orderEventTypes, event.EventType())
	}

	o, err := repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order %d: %w", orderID, err)
	}
	return o, nil
}

// Ensure handlers implement shared.EventHandler
var (
	_ shared.EventHandler = (*OrderNotificationHandler)(nil)
	_ shared.EventHandler = (*OrderSheetExportHandler)(nil)
)
