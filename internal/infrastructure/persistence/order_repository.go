package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/sudharshini/backend/internal/domain/order"
	"github.com/sudharshini/backend/internal/domain/shared"
	"github.com/sudharshini/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) withChildren(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("TrackingEvents", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_number ASC, event_time ASC")
		})
}

func (r *GormOrderRepository) findOne(ctx context.Context, query string, arg any) (*order.Order, error) {
	var model models.OrderModel
	if err := r.withChildren(ctx).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFoundError("Order", arg)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormOrderRepository) findMany(query *gorm.DB) ([]order.Order, error) {
	var rows []models.OrderModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	orders := make([]order.Order, 0, len(rows))
	for i := range rows {
		orders = append(orders, *rows[i].ToDomain())
	}
	return orders, nil
}

// FindByID loads an order with items and tracking events
func (r *GormOrderRepository) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByOrderNumber finds an order by its ORD- number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	return r.findOne(ctx, "order_number = ?", orderNumber)
}

// FindByTrackingID finds an order by its TRK- id
func (r *GormOrderRepository) FindByTrackingID(ctx context.Context, trackingID string) (*order.Order, error) {
	return r.findOne(ctx, "tracking_id = ?", trackingID)
}

// FindByCustomer returns a customer's orders, newest first
func (r *GormOrderRepository) FindByCustomer(ctx context.Context, customerID int64) ([]order.Order, error) {
	return r.findMany(r.withChildren(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC, id DESC"))
}

// FindAll returns every order, newest first
func (r *GormOrderRepository) FindAll(ctx context.Context) ([]order.Order, error) {
	return r.findMany(r.withChildren(ctx).Order("created_at DESC, id DESC"))
}

// FindAvailable returns unassigned CONFIRMED or PROCESSING orders, oldest first
func (r *GormOrderRepository) FindAvailable(ctx context.Context) ([]order.Order, error) {
	return r.findMany(r.withChildren(ctx).
		Where("assigned_to IS NULL AND status IN ?", []order.OrderStatus{order.StatusConfirmed, order.StatusProcessing}).
		Order("created_at ASC, id ASC"))
}

// FindByAssignee returns orders assigned to a delivery man, newest first
func (r *GormOrderRepository) FindByAssignee(ctx context.Context, agentID int64) ([]order.Order, error) {
	return r.findMany(r.withChildren(ctx).
		Where("assigned_to = ?", agentID).
		Order("created_at DESC, id DESC"))
}

// Save inserts a new order with its items and tracking events, or updates
// the order row of an existing one and appends its new tracking events.
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if o.ID == 0 {
			model := models.OrderModelFromDomain(o)
			if err := tx.Create(model).Error; err != nil {
				return err
			}
			o.ID = model.ID
			for i := range o.Items {
				o.Items[i].ID = model.Items[i].ID
				o.Items[i].OrderID = model.ID
			}
			for i := range o.TrackingEvents {
				o.TrackingEvents[i].ID = model.TrackingEvents[i].ID
				o.TrackingEvents[i].OrderID = model.ID
			}
			return nil
		}

		var model models.OrderModel
		model.FromDomain(o)
		if err := tx.Omit(clause.Associations).Save(&model).Error; err != nil {
			return err
		}
		return appendTrackingEvents(tx, o)
	})
}

// SaveWithLock updates with an optimistic version check and bumps the version
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o.UpdatedAt = time.Now()
		result := tx.Model(&models.OrderModel{}).
			Where("id = ? AND version = ?", o.ID, o.Version).
			Updates(lifecycleColumns(o, o.Version+1))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return orderLockFailure(tx, o.ID)
		}
		o.Version++
		return appendTrackingEvents(tx, o)
	})
}

// AssignIfUnassigned writes an accept only while assigned_to is still NULL
// at the expected version. A zero row count means another agent won.
func (r *GormOrderRepository) AssignIfUnassigned(ctx context.Context, o *order.Order, expectedVersion int) (bool, error) {
	if o.AssignedTo == nil {
		return false, shared.NewDomainError(shared.CodeInvalidInput, "Order has no assignee")
	}
	won := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.OrderModel{}).
			Where("id = ? AND assigned_to IS NULL AND version = ?", o.ID, expectedVersion).
			Updates(lifecycleColumns(o, expectedVersion+1))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		won = true
		o.Version = expectedVersion + 1
		return appendTrackingEvents(tx, o)
	})
	if err != nil {
		return false, err
	}
	return won, nil
}

// lifecycleColumns lists the columns that change after creation. Map
// updates skip field serializers, so locations go through GeoLocation's
// driver.Valuer, which writes the same JSON.
func lifecycleColumns(o *order.Order, version int) map[string]any {
	var m models.OrderModel
	m.FromDomain(o)
	return map[string]any{
		"status":              m.Status,
		"assigned_to":         m.AssignedTo,
		"accepted_at":         m.AcceptedAt,
		"picked_up_at":        m.PickedUpAt,
		"out_for_delivery_at": m.OutForDeliveryAt,
		"delivered_at":        m.DeliveredAt,
		"delivery_location":   m.DeliveryLocation,
		"current_location":    m.CurrentLocation,
		"cancellation_reason": m.CancellationReason,
		"updated_at":          o.UpdatedAt,
		"version":             version,
	}
}

func orderLockFailure(tx *gorm.DB, id int64) error {
	var count int64
	if err := tx.Model(&models.OrderModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.NotFoundError("Order", id)
	}
	return shared.NewDomainError(shared.CodeConcurrencyConflict, "The order has been modified by another user")
}

// appendTrackingEvents inserts the events that have no id yet
func appendTrackingEvents(tx *gorm.DB, o *order.Order) error {
	for i := range o.TrackingEvents {
		ev := &o.TrackingEvents[i]
		if !ev.IsNew() {
			continue
		}
		ev.OrderID = o.ID
		row := models.TrackingEventModelFromDomain(*ev)
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		ev.ID = row.ID
	}
	return nil
}

var _ order.OrderRepository = (*GormOrderRepository)(nil)
