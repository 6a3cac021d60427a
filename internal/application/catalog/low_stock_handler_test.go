package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/sudharshini/backend/internal/domain/catalog"
	"github.com/sudharshini/backend/internal/domain/shared"
	"go.uber.org/zap/zaptest"
)

func TestLowStockAlertHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("alerts with the current level", func(t *testing.T) {
		products := new(MockProductRepository)
		notifier := &MockStockAlertNotifier{}
		handler := NewLowStockAlertHandler(products, zaptest.NewLogger(t)).WithNotifier(notifier)

		p := testProduct(1, "Turmeric", 100, 3)
		products.On("FindByID", ctx, int64(1)).Return(p, nil)

		require.NoError(t, handler.Handle(ctx, catalog.NewProductLowStockEvent(p)))
		require.Len(t, notifier.lowStock, 1)
		assert.Equal(t, 3, notifier.lowStock[0].StockQuantity)
	})

	t.Run("skips when restocked since", func(t *testing.T) {
		products := new(MockProductRepository)
		notifier := &MockStockAlertNotifier{}
		handler := NewLowStockAlertHandler(products, zaptest.NewLogger(t)).WithNotifier(notifier)

		p := testProduct(1, "Turmeric", 100, 3)
		event := catalog.NewProductLowStockEvent(p)
		products.On("FindByID", ctx, int64(1)).Return(testProduct(1, "Turmeric", 100, 50), nil)

		require.NoError(t, handler.Handle(ctx, event))
		assert.Empty(t, notifier.lowStock)
	})

	t.Run("falls back to event data", func(t *testing.T) {
		products := new(MockProductRepository)
		notifier := &MockStockAlertNotifier{}
		handler := NewLowStockAlertHandler(products, zaptest.NewLogger(t)).WithNotifier(notifier)

		p := testProduct(1, "Turmeric", 100, 0)
		products.On("FindByID", ctx, mock.Anything).Return(nil, shared.ErrNotFound)

		require.NoError(t, handler.Handle(ctx, catalog.NewProductLowStockEvent(p)))
		require.Len(t, notifier.lowStock, 1)
		assert.Equal(t, "Turmeric", notifier.lowStock[0].Name)
	})

	t.Run("returns error for wrong event type", func(t *testing.T) {
		handler := NewLowStockAlertHandler(new(MockProductRepository), zaptest.NewLogger(t))
		err := handler.Handle(ctx, &catalog.StockChangedEvent{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected event type")
	})
}

func TestLowStockAlertHandler_EventTypes(t *testing.T) {
	handler := NewLowStockAlertHandler(nil, zaptest.NewLogger(t))
	assert.Equal(t, []string{catalog.EventTypeProductLowStock}, handler.EventTypes())
}

func TestExpirySweepService_Sweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.Local)
	today := time.Date(2026, 5, 1, 0, 0, 0, 0, time.Local)

	products := new(MockProductRepository)
	notifier := &MockStockAlertNotifier{}
	svc := NewExpirySweepService(products, notifier, zaptest.NewLogger(t))
	svc.now = func() time.Time { return now }

	inWindow := today.AddDate(0, 0, 3)
	sameDay := today.Add(18 * time.Hour)
	a := *testProduct(1, "Turmeric", 100, 5)
	a.ExpiryDate = &inWindow
	b := *testProduct(2, "Milk", 30, 5)
	b.ExpiryDate = &sameDay

	products.On("FindExpiringBetween", ctx, today, today.AddDate(0, 0, catalog.NearExpiryDays)).
		Return([]catalog.Product{a, b}, nil)

	stats, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.NearExpiry)
	assert.True(t, stats.AlertSent)
	require.Len(t, notifier.expiring, 1)
	assert.Equal(t, "Turmeric", notifier.expiring[0][0].Name)
}
