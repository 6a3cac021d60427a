package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/sudharshini/backend/internal/domain/catalog"
	"github.com/sudharshini/backend/internal/domain/identity"
	"github.com/sudharshini/backend/internal/domain/order"
	"github.com/sudharshini/backend/internal/domain/shared"
	"github.com/sudharshini/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap/zaptest"
)

var testNow = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

const (
	testCustomerID = int64(7)
	testAgentID    = int64(21)
	testOrderID    = int64(42)
)

type orderServiceFixture struct {
	service   *OrderService
	orders    *MockOrderRepository
	locations *MockLocationRepository
	products  *MockProductRepository
	movements *MockStockMovementRepository
	users     *MockUserRepository
	geocoder  *MockGeocoder
	publisher *recordingPublisher
}

func newOrderServiceFixture(t *testing.T) *orderServiceFixture {
	f := &orderServiceFixture{
		orders:    new(MockOrderRepository),
		locations: new(MockLocationRepository),
		products:  new(MockProductRepository),
		movements: new(MockStockMovementRepository),
		users:     new(MockUserRepository),
		geocoder:  new(MockGeocoder),
		publisher: &recordingPublisher{},
	}
	tx := NewNoOpTransactionScope(f.orders, f.locations, f.products, f.movements)
	f.service = NewOrderService(f.orders, f.locations, f.users, tx,
		WithGeocoder(f.geocoder),
		WithLogger(zaptest.NewLogger(t)),
		WithClock(func() time.Time { return testNow }),
	)
	f.service.SetEventPublisher(f.publisher)
	return f
}

func testCustomer() *identity.User {
	u := &identity.User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             "asha@example.com",
		Name:              "Asha",
		Mobile:            "9876543210",
		Role:              identity.RoleCustomer,
	}
	u.ID = testCustomerID
	return u
}

func testProduct(id int64, name string, price int64, stock int) *catalog.Product {
	p := &catalog.Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Price:             decimal.NewFromInt(price),
		StockQuantity:     stock,
	}
	p.ID = id
	return p
}

// assignOrderIDs mimics the database assigning ids on insert
func assignOrderIDs(args mock.Arguments) {
	o := args.Get(1).(*order.Order)
	o.ID = testOrderID
	for i := range o.Items {
		o.Items[i].ID = int64(i + 1)
		o.Items[i].OrderID = o.ID
	}
	for i := range o.TrackingEvents {
		o.TrackingEvents[i].ID = int64(i + 1)
		o.TrackingEvents[i].OrderID = o.ID
	}
}

func validCreateRequest(items ...CreateOrderItemInput) CreateOrderRequest {
	return CreateOrderRequest{
		Items:           items,
		DeliveryAddress: "12 MG Road, Bangalore",
		DeliveryPincode: "560001",
	}
}

func TestOrderService_CreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("debits stock, records movements and publishes events", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		x := testProduct(1, "Turmeric", 100, 5)
		y := testProduct(2, "Pepper", 50, 1)

		f.users.On("FindByID", ctx, testCustomerID).Return(testCustomer(), nil)
		f.products.On("FindByIDs", ctx, []int64{1, 2}).
			Return(map[int64]*catalog.Product{1: x, 2: y}, nil)
		f.orders.On("Save", ctx, mock.AnythingOfType("*order.Order")).Run(assignOrderIDs).Return(nil)
		f.products.On("SaveWithLock", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)
		f.movements.On("Save", ctx, mock.AnythingOfType("*catalog.StockMovement")).Return(nil)
		f.geocoder.On("GeocodePincode", mock.Anything, "560001", DefaultCountry).
			Return(GeocodeResult{Lat: 12.97, Lng: 77.59, Address: "Bangalore", Success: true}, nil)
		f.orders.On("SaveWithLock", ctx, mock.AnythingOfType("*order.Order")).Return(nil)

		resp, err := f.service.CreateOrder(ctx, testCustomerID, validCreateRequest(
			CreateOrderItemInput{ProductID: 1, Quantity: 2},
			CreateOrderItemInput{ProductID: 2, Quantity: 1},
		))
		require.NoError(t, err)

		assert.Equal(t, testOrderID, resp.ID)
		assert.True(t, decimal.NewFromInt(250).Equal(resp.TotalAmount))
		assert.Equal(t, order.StatusConfirmed.String(), resp.Status)
		assert.Equal(t, "Asha", resp.DeliveryName)
		assert.Equal(t, "asha@example.com", resp.DeliveryEmail)
		assert.Equal(t, string(order.PaymentCashOnDelivery), resp.PaymentMode)
		require.NotNil(t, resp.DeliveryLocation)
		assert.Equal(t, "560001", resp.DeliveryLocation.Pincode)

		assert.Equal(t, 3, x.StockQuantity)
		assert.Equal(t, 0, y.StockQuantity)

		f.movements.AssertNumberOfCalls(t, "Save", 2)
		mv := f.movements.Calls[0].Arguments.Get(1).(*catalog.StockMovement)
		assert.Equal(t, catalog.MovementOut, mv.Type)
		assert.Equal(t, catalog.OrderReason(resp.OrderNumber), mv.Reason)

		assert.Equal(t, []string{
			order.EventTypeOrderCreated,
			catalog.EventTypeStockChanged,
			catalog.EventTypeProductLowStock,
			catalog.EventTypeStockChanged,
			catalog.EventTypeProductLowStock,
		}, f.publisher.Types())
	})

	t.Run("insufficient stock leaves everything untouched", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		x := testProduct(1, "Turmeric", 100, 5)
		y := testProduct(2, "Pepper", 50, 1)

		f.users.On("FindByID", ctx, testCustomerID).Return(testCustomer(), nil)
		f.products.On("FindByIDs", ctx, []int64{1, 2}).
			Return(map[int64]*catalog.Product{1: x, 2: y}, nil)

		_, err := f.service.CreateOrder(ctx, testCustomerID, validCreateRequest(
			CreateOrderItemInput{ProductID: 1, Quantity: 2},
			CreateOrderItemInput{ProductID: 2, Quantity: 3},
		))
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, shared.CodeInsufficientStock, domainErr.Code)
		assert.Equal(t, "Insufficient stock for: Pepper", domainErr.Message)

		assert.Equal(t, 5, x.StockQuantity)
		assert.Equal(t, 1, y.StockQuantity)
		f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		f.movements.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		assert.Empty(t, f.publisher.Types())
	})

	t.Run("repeated product lines are checked against the summed quantity", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		x := testProduct(1, "Turmeric", 100, 3)

		f.users.On("FindByID", ctx, testCustomerID).Return(testCustomer(), nil)
		f.products.On("FindByIDs", ctx, []int64{1, 1}).
			Return(map[int64]*catalog.Product{1: x}, nil)

		_, err := f.service.CreateOrder(ctx, testCustomerID, validCreateRequest(
			CreateOrderItemInput{ProductID: 1, Quantity: 2},
			CreateOrderItemInput{ProductID: 1, Quantity: 2},
		))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Insufficient stock for: Turmeric")
		assert.Equal(t, 3, x.StockQuantity)
	})

	t.Run("unknown product", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		f.users.On("FindByID", ctx, testCustomerID).Return(testCustomer(), nil)
		f.products.On("FindByIDs", ctx, []int64{99}).Return(map[int64]*catalog.Product{}, nil)

		_, err := f.service.CreateOrder(ctx, testCustomerID, validCreateRequest(
			CreateOrderItemInput{ProductID: 99, Quantity: 1},
		))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Product not found: 99")
	})

	t.Run("zero quantity", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		f.users.On("FindByID", ctx, testCustomerID).Return(testCustomer(), nil)
		f.products.On("FindByIDs", ctx, []int64{1}).
			Return(map[int64]*catalog.Product{1: testProduct(1, "Turmeric", 100, 5)}, nil)

		_, err := f.service.CreateOrder(ctx, testCustomerID, validCreateRequest(
			CreateOrderItemInput{ProductID: 1, Quantity: 0},
		))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid quantity for product: Turmeric")
	})

	t.Run("empty items", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		f.users.On("FindByID", ctx, testCustomerID).Return(testCustomer(), nil)

		_, err := f.service.CreateOrder(ctx, testCustomerID, validCreateRequest())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Order must contain at least one item")
	})

	t.Run("missing pincode", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		f.users.On("FindByID", ctx, testCustomerID).Return(testCustomer(), nil)

		req := validCreateRequest(CreateOrderItemInput{ProductID: 1, Quantity: 1})
		req.DeliveryPincode = "  "
		_, err := f.service.CreateOrder(ctx, testCustomerID, req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Delivery pincode is required")
	})

	t.Run("unknown customer", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		f.users.On("FindByID", ctx, testCustomerID).Return(nil, shared.ErrNotFound)

		_, err := f.service.CreateOrder(ctx, testCustomerID, validCreateRequest(
			CreateOrderItemInput{ProductID: 1, Quantity: 1},
		))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Customer not found")
	})

	t.Run("failed geocoding does not fail the order", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		f.users.On("FindByID", ctx, testCustomerID).Return(testCustomer(), nil)
		f.products.On("FindByIDs", ctx, []int64{1}).
			Return(map[int64]*catalog.Product{1: testProduct(1, "Turmeric", 100, 50)}, nil)
		f.orders.On("Save", ctx, mock.Anything).Run(assignOrderIDs).Return(nil)
		f.products.On("SaveWithLock", ctx, mock.Anything).Return(nil)
		f.movements.On("Save", ctx, mock.Anything).Return(nil)
		f.geocoder.On("GeocodePincode", mock.Anything, "560001", DefaultCountry).
			Return(GeocodeResult{Lat: 20.59, Lng: 78.96, Success: false}, nil)

		resp, err := f.service.CreateOrder(ctx, testCustomerID, validCreateRequest(
			CreateOrderItemInput{ProductID: 1, Quantity: 1},
		))
		require.NoError(t, err)
		assert.Nil(t, resp.DeliveryLocation)
		f.orders.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
		assert.Equal(t, []string{order.EventTypeOrderCreated, catalog.EventTypeStockChanged}, f.publisher.Types())
	})
}

func persistedOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.NewOrder(testCustomerID, order.DeliveryContact{
		Name:    "Asha",
		Email:   "asha@example.com",
		Address: "12 MG Road",
		Pincode: "560001",
	}, order.PaymentCashOnDelivery, []order.ItemLine{
		{ProductID: 1, ProductName: "Turmeric", Quantity: 2, UnitPrice: decimal.NewFromInt(100)},
	}, testNow.Add(-time.Hour))
	require.NoError(t, err)
	o.ID = testOrderID
	for i := range o.TrackingEvents {
		o.TrackingEvents[i].ID = int64(i + 1)
	}
	return o
}

func TestOrderService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("admin may skip forward", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		o := persistedOrder(t)
		f.orders.On("FindByID", ctx, testOrderID).Return(o, nil)
		f.orders.On("SaveWithLock", ctx, o).Return(nil)

		resp, err := f.service.UpdateStatus(ctx, testOrderID, UpdateStatusRequest{Status: "OUT_FOR_DELIVERY"})
		require.NoError(t, err)
		assert.True(t, resp.Changed)
		assert.Equal(t, "OUT_FOR_DELIVERY", resp.Order.Status)
		assert.NotNil(t, resp.Order.OutForDeliveryAt)
		assert.Equal(t, []string{order.EventTypeOrderStatusChanged}, f.publisher.Types())
	})

	t.Run("same status is a silent no-op", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		o := persistedOrder(t)
		f.orders.On("FindByID", ctx, testOrderID).Return(o, nil)

		resp, err := f.service.UpdateStatus(ctx, testOrderID, UpdateStatusRequest{Status: "CONFIRMED"})
		require.NoError(t, err)
		assert.False(t, resp.Changed)
		f.orders.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
		assert.Empty(t, f.publisher.Types())
	})

	t.Run("cancel requires a reason", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		o := persistedOrder(t)
		f.orders.On("FindByID", ctx, testOrderID).Return(o, nil)

		_, err := f.service.UpdateStatus(ctx, testOrderID, UpdateStatusRequest{Status: "CANCELLED"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Cancellation reason is required")
		assert.Equal(t, order.StatusConfirmed, o.Status)
	})

	t.Run("unknown status", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		_, err := f.service.UpdateStatus(ctx, testOrderID, UpdateStatusRequest{Status: "LOST"})
		require.Error(t, err)
		f.orders.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})
}

func TestOrderService_GetOrder(t *testing.T) {
	ctx := context.Background()
	f := newOrderServiceFixture(t)
	o := persistedOrder(t)
	f.orders.On("FindByID", ctx, testOrderID).Return(o, nil)

	_, err := f.service.GetOrder(ctx, testOrderID, Viewer{UserID: testCustomerID, Role: identity.RoleCustomer})
	assert.NoError(t, err)

	_, err = f.service.GetOrder(ctx, testOrderID, Viewer{UserID: 999, Role: identity.RoleCustomer})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.service.GetOrder(ctx, testOrderID, Viewer{UserID: 1, Role: identity.RoleAdmin})
	assert.NoError(t, err)
}

func TestOrderService_LookupByTrackingID(t *testing.T) {
	ctx := context.Background()
	f := newOrderServiceFixture(t)
	o := persistedOrder(t)
	f.orders.On("FindByTrackingID", ctx, o.TrackingID).Return(o, nil)

	resp, err := f.service.LookupByTrackingID(ctx, " "+o.TrackingID+" ")
	require.NoError(t, err)
	assert.Equal(t, o.OrderNumber, resp.OrderNumber)
	assert.Equal(t, "CONFIRMED", resp.Status)
}

func TestOrderService_GetLocationTracking(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled before accept", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		o := persistedOrder(t)
		f.orders.On("FindByID", ctx, testOrderID).Return(o, nil)

		resp, err := f.service.GetLocationTracking(ctx, testOrderID, nil)
		require.NoError(t, err)
		assert.False(t, resp.TrackingEnabled)
		assert.Equal(t, "Order not yet accepted by delivery man", resp.Message)
		f.locations.AssertNotCalled(t, "FindByOrder", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("other customers are denied", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		o := persistedOrder(t)
		f.orders.On("FindByID", ctx, testOrderID).Return(o, nil)

		_, err := f.service.GetLocationTracking(ctx, testOrderID, &Viewer{UserID: 999, Role: identity.RoleCustomer})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("accepted order exposes history and assignee", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		o := persistedOrder(t)
		require.NoError(t, o.Accept(testAgentID, testNow.Add(-20*time.Minute)))
		o.ClearDomainEvents()
		loc := valueobject.MustNewGeoLocation(12.98, 77.60)
		o.SetDeliveryLocation(loc)
		current := valueobject.MustNewGeoLocation(12.975, 77.595)
		o.CurrentLocation = &current

		agent := &identity.User{Name: "Ravi", Mobile: "9000000000", Role: identity.RoleDeliveryMan}
		agent.ID = testAgentID
		history := []order.LocationSample{{OrderID: testOrderID, AgentID: testAgentID, Lat: 12.975, Lng: 77.595, RecordedAt: testNow}}

		f.orders.On("FindByID", ctx, testOrderID).Return(o, nil)
		f.locations.On("FindByOrder", ctx, testOrderID, *o.AcceptedAt).Return(history, nil)
		f.users.On("FindByID", ctx, testAgentID).Return(agent, nil)

		resp, err := f.service.GetLocationTracking(ctx, testOrderID, &Viewer{UserID: testCustomerID, Role: identity.RoleCustomer})
		require.NoError(t, err)
		assert.True(t, resp.TrackingEnabled)
		assert.Len(t, resp.LocationHistory, 1)
		require.NotNil(t, resp.DeliveryMan)
		assert.Equal(t, "Ravi", resp.DeliveryMan.Name)
		require.NotNil(t, resp.DistanceToTarget)
		assert.Greater(t, *resp.DistanceToTarget, 0.0)
		f.geocoder.AssertNotCalled(t, "GeocodePincode", mock.Anything, mock.Anything, mock.Anything)
	})
}
