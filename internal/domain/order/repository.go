package order

import (
	"context"
	"time"
)

// OrderRepository defines the interface for order persistence.
// Items and tracking events are owned by the order and saved with it;
// tracking events are insert-only.
type OrderRepository interface {
	// FindByID loads an order with items and tracking events
	FindByID(ctx context.Context, id int64) (*Order, error)

	// FindByOrderNumber finds an order by its ORD- number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)

	// FindByTrackingID finds an order by its TRK- id
	FindByTrackingID(ctx context.Context, trackingID string) (*Order, error)

	// FindByCustomer returns a customer's orders, newest first
	FindByCustomer(ctx context.Context, customerID int64) ([]Order, error)

	// FindAll returns every order, newest first
	FindAll(ctx context.Context) ([]Order, error)

	// FindAvailable returns unassigned CONFIRMED or PROCESSING orders
	FindAvailable(ctx context.Context) ([]Order, error)

	// FindByAssignee returns orders assigned to a delivery man, newest first
	FindByAssignee(ctx context.Context, agentID int64) ([]Order, error)

	// Save inserts a new order with items and events, or updates an existing one
	Save(ctx context.Context, o *Order) error

	// SaveWithLock updates with an optimistic version check and bumps the version
	SaveWithLock(ctx context.Context, o *Order) error

	// AssignIfUnassigned persists an accept with a conditional update on
	// assigned_to IS NULL and the expected version. It returns false when
	// another writer got there first.
	AssignIfUnassigned(ctx context.Context, o *Order, expectedVersion int) (bool, error)
}

// LocationTrackingRepository stores GPS samples
type LocationTrackingRepository interface {
	// Append inserts samples
	Append(ctx context.Context, samples ...LocationSample) error

	// FindByOrder returns samples for the order recorded at or after since, oldest first.
	// A zero since returns the full history.
	FindByOrder(ctx context.Context, orderID int64, since time.Time) ([]LocationSample, error)
}
