package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/sudharshini/backend/internal/domain/identity"
	"github.com/sudharshini/backend/internal/domain/order"
	"github.com/sudharshini/backend/internal/domain/shared"
	"go.uber.org/zap/zaptest"
)

type deliveryFixture struct {
	service   *DeliveryService
	orders    *MockOrderRepository
	locations *MockLocationRepository
	geocoder  *MockGeocoder
	publisher *recordingPublisher
}

func newDeliveryFixture(t *testing.T) *deliveryFixture {
	f := &deliveryFixture{
		orders:    new(MockOrderRepository),
		locations: new(MockLocationRepository),
		geocoder:  new(MockGeocoder),
		publisher: &recordingPublisher{},
	}
	tx := NewNoOpTransactionScope(f.orders, f.locations, new(MockProductRepository), new(MockStockMovementRepository))
	f.service = NewDeliveryService(f.orders, tx,
		WithGeocoder(f.geocoder),
		WithLogger(zaptest.NewLogger(t)),
		WithClock(func() time.Time { return testNow }),
		WithJitter(func() float64 { return 0 }),
	)
	f.service.SetEventPublisher(f.publisher)
	return f
}

func acceptedOrder(t *testing.T) *order.Order {
	t.Helper()
	o := persistedOrder(t)
	require.NoError(t, o.Accept(testAgentID, testNow.Add(-10*time.Minute)))
	o.ClearDomainEvents()
	return o
}

func floatPtr(v float64) *float64 { return &v }

func TestDeliveryService_AcceptOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns and publishes", func(t *testing.T) {
		f := newDeliveryFixture(t)
		o := persistedOrder(t)
		f.orders.On("FindByID", ctx, testOrderID).Return(o, nil)
		f.orders.On("AssignIfUnassigned", ctx, o, 1).Return(true, nil)

		resp, err := f.service.AcceptOrder(ctx, testOrderID, testAgentID)
		require.NoError(t, err)
		assert.Equal(t, "ACCEPTED", resp.Status)
		require.NotNil(t, resp.AssignedTo)
		assert.Equal(t, testAgentID, *resp.AssignedTo)
		assert.NotNil(t, resp.AcceptedAt)
		assert.Equal(t, []string{order.EventTypeOrderStatusChanged, order.EventTypeOrderAccepted}, f.publisher.Types())
	})

	t.Run("losing a race reports already assigned", func(t *testing.T) {
		f := newDeliveryFixture(t)
		o := persistedOrder(t)
		f.orders.On("FindByID", ctx, testOrderID).Return(o, nil)
		f.orders.On("AssignIfUnassigned", ctx, o, 1).Return(false, nil)

		_, err := f.service.AcceptOrder(ctx, testOrderID, testAgentID)
		assert.ErrorIs(t, err, order.ErrAlreadyAssigned)
		assert.Empty(t, f.publisher.Types())
	})

	t.Run("already assigned order is rejected before writing", func(t *testing.T) {
		f := newDeliveryFixture(t)
		o := acceptedOrder(t)
		f.orders.On("FindByID", ctx, testOrderID).Return(o, nil)

		_, err := f.service.AcceptOrder(ctx, testOrderID, 99)
		assert.ErrorIs(t, err, order.ErrAlreadyAssigned)
		f.orders.AssertNotCalled(t, "AssignIfUnassigned", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDeliveryService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("next step", func(t *testing.T) {
		f := newDeliveryFixture(t)
		o := acceptedOrder(t)
		f.orders.On("FindByID", ctx, testOrderID).Return(o, nil)
		f.orders.On("SaveWithLock", ctx, o).Return(nil)

		resp, err := f.service.UpdateStatus(ctx, testOrderID, testAgentID, UpdateStatusRequest{Status: "PICKED_UP"})
		require.NoError(t, err)
		assert.True(t, resp.Changed)
		assert.Equal(t, "PICKED_UP", resp.Order.Status)
		assert.NotNil(t, resp.Order.PickedUpAt)
	})

	t.Run("skipping is rejected for agents", func(t *testing.T) {
		f := newDeliveryFixture(t)
		o := acceptedOrder(t)
		f.orders.On("FindByID", ctx, testOrderID).Return(o, nil)

		_, err := f.service.UpdateStatus(ctx, testOrderID, testAgentID, UpdateStatusRequest{Status: "DELIVERED"})
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, shared.CodeInvalidState, domainErr.Code)
		assert.Equal(t, order.StatusAccepted, o.Status)
	})

	t.Run("only the assignee", func(t *testing.T) {
		f := newDeliveryFixture(t)
		o := acceptedOrder(t)
		f.orders.On("FindByID", ctx, testOrderID).Return(o, nil)

		_, err := f.service.UpdateStatus(ctx, testOrderID, 99, UpdateStatusRequest{Status: "PICKED_UP"})
		assert.ErrorIs(t, err, order.ErrNotAssignedToYou)
	})
}

func TestDeliveryService_UpdateLocation(t *testing.T) {
	ctx := context.Background()

	t.Run("records current location and history", func(t *testing.T) {
		f := newDeliveryFixture(t)
		o := acceptedOrder(t)
		f.orders.On("FindByID", ctx, testOrderID).Return(o, nil)
		f.orders.On("SaveWithLock", ctx, o).Return(nil)
		f.locations.On("Append", ctx, mock.MatchedBy(func(samples []order.LocationSample) bool {
			return len(samples) == 1 && samples[0].AgentID == testAgentID && *samples[0].Speed == 12
		})).Return(nil)

		resp, err := f.service.UpdateLocation(ctx, testOrderID, testAgentID, UpdateLocationRequest{
			Lat:     floatPtr(12.95),
			Lng:     floatPtr(77.61),
			Address: "Koramangala",
			Speed:   floatPtr(12),
		})
		require.NoError(t, err)
		require.NotNil(t, resp.CurrentLocation)
		assert.Equal(t, 12.95, resp.CurrentLocation.Lat)
		assert.Equal(t, "Koramangala", resp.CurrentLocation.Address)
		f.locations.AssertExpectations(t)
	})

	t.Run("rejected before accept", func(t *testing.T) {
		f := newDeliveryFixture(t)
		o := persistedOrder(t)
		o.AssignedTo = new(int64)
		*o.AssignedTo = testAgentID
		f.orders.On("FindByID", ctx, testOrderID).Return(o, nil)

		_, err := f.service.UpdateLocation(ctx, testOrderID, testAgentID, UpdateLocationRequest{
			Lat: floatPtr(12.95), Lng: floatPtr(77.61),
		})
		require.Error(t, err)
		f.locations.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("out of range coordinates", func(t *testing.T) {
		f := newDeliveryFixture(t)
		_, err := f.service.UpdateLocation(ctx, testOrderID, testAgentID, UpdateLocationRequest{
			Lat: floatPtr(95), Lng: floatPtr(77.61),
		})
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, shared.CodeInvalidInput, domainErr.Code)
	})
}

func TestDeliveryService_GenerateRoute(t *testing.T) {
	ctx := context.Background()

	t.Run("geocodes a missing destination first", func(t *testing.T) {
		f := newDeliveryFixture(t)
		o := acceptedOrder(t)
		f.orders.On("FindByID", ctx, testOrderID).Return(o, nil)
		f.geocoder.On("GeocodePincode", mock.Anything, "560001", DefaultCountry).
			Return(GeocodeResult{Lat: 12.93, Lng: 77.62, Address: "Bangalore", Success: true}, nil)
		f.orders.On("SaveWithLock", ctx, o).Return(nil)
		f.locations.On("Append", ctx, mock.MatchedBy(func(samples []order.LocationSample) bool {
			return len(samples) == order.RoutePoints
		})).Return(nil)

		resp, err := f.service.GenerateRoute(ctx, testOrderID, testAgentID)
		require.NoError(t, err)
		require.Len(t, resp.Points, order.RoutePoints)
		assert.InDelta(t, 12.93, resp.Points[order.RoutePoints-1].Lat, 1e-9)
		assert.InDelta(t, order.DefaultPickupLocation.Lat, resp.Points[0].Lat, 1e-9)
		assert.Equal(t, testNow.Add(-order.RouteLookBack), resp.Points[0].Timestamp)
		require.NotNil(t, o.CurrentLocation)
		assert.Equal(t, "Near delivery location", o.CurrentLocation.Address)
	})

	t.Run("fails without a destination", func(t *testing.T) {
		f := newDeliveryFixture(t)
		o := acceptedOrder(t)
		f.orders.On("FindByID", ctx, testOrderID).Return(o, nil)
		f.geocoder.On("GeocodePincode", mock.Anything, "560001", DefaultCountry).
			Return(GeocodeResult{}, errors.New("timeout"))

		_, err := f.service.GenerateRoute(ctx, testOrderID, testAgentID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Pickup and delivery locations are required")
		f.locations.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})
}

func TestDeliveryService_GetOrderDetails(t *testing.T) {
	ctx := context.Background()
	f := newDeliveryFixture(t)
	o := acceptedOrder(t)
	f.orders.On("FindByID", ctx, testOrderID).Return(o, nil)

	_, err := f.service.GetOrderDetails(ctx, testOrderID, Viewer{UserID: testAgentID, Role: identity.RoleDeliveryMan})
	assert.NoError(t, err)

	_, err = f.service.GetOrderDetails(ctx, testOrderID, Viewer{UserID: 99, Role: identity.RoleDeliveryMan})
	assert.ErrorIs(t, err, order.ErrNotAssignedToYou)

	_, err = f.service.GetOrderDetails(ctx, testOrderID, Viewer{UserID: 1, Role: identity.RoleAdmin})
	assert.NoError(t, err)
}
