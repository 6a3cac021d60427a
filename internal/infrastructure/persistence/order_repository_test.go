package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sudharshini/backend/internal/domain/order"
	"github.com/sudharshini/backend/internal/domain/shared"
	"github.com/sudharshini/backend/internal/domain/shared/valueobject"
)

func TestGormOrderRepository_SaveAndFind(t *testing.T) {
	repo := NewGormOrderRepository(newTestDB(t))
	ctx := context.Background()

	o := createTestOrder(t, repo, 7, 0)
	require.NotZero(t, o.ID)
	for _, it := range o.Items {
		assert.NotZero(t, it.ID)
		assert.Equal(t, o.ID, it.OrderID)
	}
	require.Len(t, o.TrackingEvents, 5)

	t.Run("by id with children", func(t *testing.T) {
		got, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, o.OrderNumber, got.OrderNumber)
		assert.Equal(t, order.StatusConfirmed, got.Status)
		assert.True(t, got.TotalAmount.Equal(o.TotalAmount))
		assert.Equal(t, "560001", got.Contact.Pincode)
		require.Len(t, got.Items, 2)
		assert.Equal(t, "Turmeric", got.Items[0].ProductName)
		require.Len(t, got.TrackingEvents, 5)
		assert.Equal(t, order.EventLabelCreated, got.TrackingEvents[0].EventType)
		require.NotNil(t, got.PickupLocation)
		assert.Equal(t, order.DefaultPickupLocation.Lat, got.PickupLocation.Lat)
		assert.Nil(t, got.DeliveryLocation)
		assert.Equal(t, 1, got.Version)
	})

	t.Run("by order number and tracking id", func(t *testing.T) {
		got, err := repo.FindByOrderNumber(ctx, o.OrderNumber)
		require.NoError(t, err)
		assert.Equal(t, o.ID, got.ID)

		got, err = repo.FindByTrackingID(ctx, o.TrackingID)
		require.NoError(t, err)
		assert.Equal(t, o.ID, got.ID)
	})

	t.Run("missing order", func(t *testing.T) {
		_, err := repo.FindByID(ctx, 9999)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormOrderRepository_Listings(t *testing.T) {
	repo := NewGormOrderRepository(newTestDB(t))
	ctx := context.Background()

	first := createTestOrder(t, repo, 1, 0)
	second := createTestOrder(t, repo, 1, time.Minute)
	other := createTestOrder(t, repo, 2, 2*time.Minute)

	mine, err := repo.FindByCustomer(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID, "newest first")
	assert.Equal(t, first.ID, mine[1].ID)

	agent := int64(50)
	require.NoError(t, other.Accept(agent, baseTime.Add(3*time.Minute)))
	ok, err := repo.AssignIfUnassigned(ctx, other, 1)
	require.NoError(t, err)
	require.True(t, ok)

	available, err := repo.FindAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, available, 2)
	assert.Equal(t, first.ID, available[0].ID, "oldest first")

	assigned, err := repo.FindByAssignee(ctx, agent)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, other.ID, assigned[0].ID)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGormOrderRepository_SaveWithLock(t *testing.T) {
	repo := NewGormOrderRepository(newTestDB(t))
	ctx := context.Background()
	o := createTestOrder(t, repo, 1, 0)

	t.Run("appends status tracking event and bumps version", func(t *testing.T) {
		changed, err := o.UpdateStatus(order.StatusOutForDelivery, "", baseTime.Add(time.Hour))
		require.NoError(t, err)
		require.True(t, changed)
		loc := valueobject.MustNewGeoLocation(12.93, 77.62, valueobject.WithAddress("Koramangala"))
		o.CurrentLocation = &loc

		require.NoError(t, repo.SaveWithLock(ctx, o))
		assert.Equal(t, 2, o.Version)

		got, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusOutForDelivery, got.Status)
		assert.Equal(t, 2, got.Version)
		require.NotNil(t, got.OutForDeliveryAt)
		require.NotNil(t, got.CurrentLocation)
		assert.Equal(t, "Koramangala", got.CurrentLocation.Address)
		require.Len(t, got.TrackingEvents, 6)
		assert.Equal(t, order.EventOutForDelivery, got.TrackingEvents[5].EventType)
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		stale, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		stale.Version = 1

		err = repo.SaveWithLock(ctx, stale)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("missing order", func(t *testing.T) {
		ghost := *o
		ghost.ID = 4242
		err := repo.SaveWithLock(ctx, &ghost)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormOrderRepository_AssignIfUnassigned(t *testing.T) {
	repo := NewGormOrderRepository(newTestDB(t))
	ctx := context.Background()
	createTestOrder(t, repo, 1, 0)

	// two agents load the same unassigned order
	a, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	b, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, a.Accept(100, baseTime.Add(time.Hour)))
	require.NoError(t, b.Accept(200, baseTime.Add(time.Hour)))

	wonA, err := repo.AssignIfUnassigned(ctx, a, 1)
	require.NoError(t, err)
	wonB, err := repo.AssignIfUnassigned(ctx, b, 1)
	require.NoError(t, err)

	assert.True(t, wonA)
	assert.False(t, wonB)

	got, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got.AssignedTo)
	assert.Equal(t, int64(100), *got.AssignedTo)
	assert.Equal(t, order.StatusAccepted, got.Status)
	assert.NotNil(t, got.AcceptedAt)
	assert.Equal(t, 2, got.Version)
}

func TestGormOrderRepository_AssignIfUnassigned_SQL(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormOrderRepository(db)

	agent := int64(9)
	o := &order.Order{Status: order.StatusAccepted, AssignedTo: &agent}
	o.ID = 5

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "orders" SET .* WHERE .*id = .* AND assigned_to IS NULL AND version = .*`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	won, err := repo.AssignIfUnassigned(context.Background(), o, 3)
	require.NoError(t, err)
	assert.False(t, won)
	assert.Equal(t, 0, o.Version, "version untouched when the race is lost")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormLocationTrackingRepository(t *testing.T) {
	db := newTestDB(t)
	orders := NewGormOrderRepository(db)
	repo := NewGormLocationTrackingRepository(db)
	ctx := context.Background()
	o := createTestOrder(t, orders, 1, 0)

	samples := order.SimulateRoute(o.ID, 3, order.DefaultPickupLocation,
		valueobject.MustNewGeoLocation(12.9352, 77.6245), baseTime, func() float64 { return 0 })
	require.NoError(t, repo.Append(ctx, samples...))
	for _, s := range samples {
		assert.NotZero(t, s.ID)
	}

	all, err := repo.FindByOrder(ctx, o.ID, time.Time{})
	require.NoError(t, err)
	require.Len(t, all, order.RoutePoints)
	assert.True(t, all[0].RecordedAt.Before(all[1].RecordedAt), "oldest first")
	assert.NotNil(t, all[0].Accuracy)

	recent, err := repo.FindByOrder(ctx, o.ID, baseTime.Add(-order.RouteInterval))
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	assert.NoError(t, repo.Append(ctx))
}
