package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sudharshini/backend/internal/domain/catalog"
	"github.com/sudharshini/backend/internal/domain/identity"
	"github.com/sudharshini/backend/internal/domain/order"
	"github.com/sudharshini/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const defaultGeocodeTimeout = 5 * time.Second

// ErrAccessDenied is returned when a viewer reads someone else's order
var ErrAccessDenied = shared.NewDomainError(shared.CodeForbidden, "Access denied")

// OrderService handles order creation, admin status changes and read models
type OrderService struct {
	orderRepo      order.OrderRepository
	locationRepo   order.LocationTrackingRepository
	userRepo       identity.UserRepository
	txScope        TransactionScope
	geocoder       Geocoder
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
	geocodeTimeout time.Duration
}

// ServiceOption configures OrderService and DeliveryService
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	geocoder       Geocoder
	logger         *zap.Logger
	now            func() time.Time
	geocodeTimeout time.Duration
	jitter         order.JitterFunc
}

// WithGeocoder enables pincode geocoding
func WithGeocoder(g Geocoder) ServiceOption {
	return func(o *serviceOptions) { o.geocoder = g }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) ServiceOption {
	return func(o *serviceOptions) { o.logger = l }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) ServiceOption {
	return func(o *serviceOptions) { o.now = now }
}

// WithGeocodeTimeout bounds each geocoding lookup
func WithGeocodeTimeout(d time.Duration) ServiceOption {
	return func(o *serviceOptions) { o.geocodeTimeout = d }
}

// WithJitter overrides the random jitter of simulated routes
func WithJitter(j order.JitterFunc) ServiceOption {
	return func(o *serviceOptions) { o.jitter = j }
}

func buildOptions(opts []ServiceOption) serviceOptions {
	o := serviceOptions{
		logger:         zap.NewNop(),
		now:            time.Now,
		geocodeTimeout: defaultGeocodeTimeout,
		jitter:         order.DefaultJitter,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo order.OrderRepository,
	locationRepo order.LocationTrackingRepository,
	userRepo identity.UserRepository,
	txScope TransactionScope,
	opts ...ServiceOption,
) *OrderService {
	o := buildOptions(opts)
	return &OrderService{
		orderRepo:      orderRepo,
		locationRepo:   locationRepo,
		userRepo:       userRepo,
		txScope:        txScope,
		geocoder:       o.geocoder,
		logger:         o.logger,
		now:            o.now,
		geocodeTimeout: o.geocodeTimeout,
	}
}

// SetEventPublisher sets the event publisher used for side effects
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateOrder validates every line, then in one transaction persists the
// order, debits stock and writes the OUT movements. Geocoding runs after
// commit; notifications and the sheet export follow from published events.
func (s *OrderService) CreateOrder(ctx context.Context, customerID int64, req CreateOrderRequest) (*OrderResponse, error) {
	customer, err := s.userRepo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound, "Customer not found")
		}
		return nil, err
	}

	if len(req.Items) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Order must contain at least one item")
	}
	if strings.TrimSpace(req.DeliveryAddress) == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Delivery address is required")
	}
	if strings.TrimSpace(req.DeliveryPincode) == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Delivery pincode is required")
	}
	mode, err := order.ParsePaymentMode(req.PaymentMode)
	if err != nil {
		return nil, err
	}

	contact := order.DeliveryContact{
		Name:    firstNonEmpty(req.DeliveryName, customer.Name),
		Email:   firstNonEmpty(req.DeliveryEmail, customer.Email),
		Mobile:  firstNonEmpty(req.DeliveryMobile, customer.Mobile),
		Address: req.DeliveryAddress,
		Pincode: req.DeliveryPincode,
	}
	now := s.now()

	var (
		created       *order.Order
		productEvents []shared.DomainEvent
	)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		plan, err := planStockDebit(ctx, repos.ProductRepo(), req.Items)
		if err != nil {
			return err
		}

		o, err := order.NewOrder(customerID, contact, mode, plan.lines, now)
		if err != nil {
			return err
		}
		if err := repos.OrderRepo().Save(ctx, o); err != nil {
			return fmt.Errorf("failed to save order: %w", err)
		}

		for _, id := range plan.productOrder {
			p := plan.products[id]
			if err := p.DecreaseStock(plan.requested[id]); err != nil {
				return err
			}
			if err := repos.ProductRepo().SaveWithLock(ctx, p); err != nil {
				return fmt.Errorf("failed to update stock for %s: %w", p.Name, err)
			}
			productEvents = append(productEvents, p.GetDomainEvents()...)
			p.ClearDomainEvents()
		}

		reason := catalog.OrderReason(o.OrderNumber)
		for _, item := range o.Items {
			m, err := catalog.NewStockMovement(item.ProductID, catalog.MovementOut, item.Quantity, reason, "")
			if err != nil {
				return err
			}
			if err := repos.StockMovementRepo().Save(ctx, m); err != nil {
				return fmt.Errorf("failed to record stock movement: %w", err)
			}
		}

		o.RecordCreated()
		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.Int64("order_id", created.ID),
		zap.String("order_number", created.OrderNumber),
		zap.Int64("customer_id", customerID),
		zap.String("total_amount", created.TotalAmount.String()),
		zap.Int("items_count", created.ItemCount()),
	)

	s.attachDeliveryLocation(ctx, created)

	s.publish(ctx, created.GetDomainEvents()...)
	created.ClearDomainEvents()
	s.publish(ctx, productEvents...)

	response := ToOrderResponse(created)
	return &response, nil
}

// debitPlan is the validated result of resolving requested lines
type debitPlan struct {
	lines        []order.ItemLine
	products     map[int64]*catalog.Product
	requested    map[int64]int
	productOrder []int64
}

// planStockDebit resolves products and checks every line before any write.
// Quantities for a repeated product are summed for the stock check.
func planStockDebit(ctx context.Context, repo catalog.ProductRepository, items []CreateOrderItemInput) (*debitPlan, error) {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if item.ProductID <= 0 {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product ID is required for all items")
		}
		ids = append(ids, item.ProductID)
	}
	products, err := repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	plan := &debitPlan{
		lines:     make([]order.ItemLine, 0, len(items)),
		products:  products,
		requested: make(map[int64]int, len(products)),
	}
	for _, item := range items {
		p, ok := products[item.ProductID]
		if !ok {
			return nil, shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("Product not found: %d", item.ProductID))
		}
		if item.Quantity <= 0 {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Invalid quantity for product: %s", p.Name))
		}
		if _, seen := plan.requested[p.ID]; !seen {
			plan.productOrder = append(plan.productOrder, p.ID)
		}
		plan.requested[p.ID] += item.Quantity
		if p.StockQuantity < plan.requested[p.ID] {
			return nil, shared.NewDomainError(shared.CodeInsufficientStock, fmt.Sprintf("Insufficient stock for: %s", p.Name))
		}
		plan.lines = append(plan.lines, order.ItemLine{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    item.Quantity,
			UnitPrice:   p.Price,
		})
	}
	return plan, nil
}

// attachDeliveryLocation geocodes the pincode and persists the result.
// Every failure is logged and swallowed.
func (s *OrderService) attachDeliveryLocation(ctx context.Context, o *order.Order) {
	if !resolveDeliveryLocation(ctx, s.geocoder, s.geocodeTimeout, s.logger, o) {
		return
	}
	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		s.logger.Warn("failed to persist delivery location",
			zap.Int64("order_id", o.ID),
			zap.Error(err),
		)
	}
}

// resolveDeliveryLocation sets o.DeliveryLocation from the geocoder and
// reports whether it changed
func resolveDeliveryLocation(ctx context.Context, g Geocoder, timeout time.Duration, logger *zap.Logger, o *order.Order) bool {
	if g == nil || o.Contact.Pincode == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := g.GeocodePincode(ctx, o.Contact.Pincode, DefaultCountry)
	if err != nil {
		logger.Warn("geocoding failed",
			zap.Int64("order_id", o.ID),
			zap.String("pincode", o.Contact.Pincode),
			zap.Error(err),
		)
		return false
	}
	if !res.Success {
		logger.Debug("geocoding returned no match", zap.String("pincode", o.Contact.Pincode))
		return false
	}
	loc, err := res.Location(o.Contact.Pincode)
	if err != nil {
		logger.Warn("geocoder returned invalid coordinates", zap.Error(err))
		return false
	}
	o.SetDeliveryLocation(loc)
	return true
}

// UpdateStatus is the admin status change through the loose gate
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, req UpdateStatusRequest) (*StatusUpdateResponse, error) {
	next, err := order.ParseOrderStatus(req.Status)
	if err != nil {
		return nil, err
	}
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	changed, err := o.UpdateStatus(next, req.CancellationReason, s.now())
	if err != nil {
		return nil, err
	}
	if changed {
		if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
			return nil, err
		}
		s.logger.Info("order status updated",
			zap.Int64("order_id", o.ID),
			zap.String("status", o.Status.String()),
		)
		s.publish(ctx, o.GetDomainEvents()...)
		o.ClearDomainEvents()
	}

	return &StatusUpdateResponse{Changed: changed, Order: ToOrderResponse(o)}, nil
}

// GetOrder returns an order the viewer is allowed to see
func (s *OrderService) GetOrder(ctx context.Context, orderID int64, viewer Viewer) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !viewer.CanView(o) {
		return nil, ErrAccessDenied
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// GetMyOrders returns the caller's orders, newest first
func (s *OrderService) GetMyOrders(ctx context.Context, customerID int64) ([]OrderResponse, error) {
	orders, err := s.orderRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return ToOrderResponses(orders), nil
}

// GetOrdersByCustomer returns a customer's orders for an admin
func (s *OrderService) GetOrdersByCustomer(ctx context.Context, customerID int64) ([]OrderResponse, error) {
	if _, err := s.userRepo.FindByID(ctx, customerID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound, "Customer not found")
		}
		return nil, err
	}
	return s.GetMyOrders(ctx, customerID)
}

// GetAllOrders returns every order, newest first
func (s *OrderService) GetAllOrders(ctx context.Context) ([]OrderResponse, error) {
	orders, err := s.orderRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return ToOrderResponses(orders), nil
}

// LookupByOrderNumber resolves an ORD- number
func (s *OrderService) LookupByOrderNumber(ctx context.Context, orderNumber string) (*OrderLookupResponse, error) {
	o, err := s.orderRepo.FindByOrderNumber(ctx, strings.TrimSpace(orderNumber))
	if err != nil {
		return nil, err
	}
	response := ToLookupResponse(o)
	return &response, nil
}

// LookupByTrackingID resolves a TRK- id, case-insensitively
func (s *OrderService) LookupByTrackingID(ctx context.Context, trackingID string) (*OrderLookupResponse, error) {
	o, err := s.orderRepo.FindByTrackingID(ctx, strings.ToUpper(strings.TrimSpace(trackingID)))
	if err != nil {
		return nil, err
	}
	response := ToLookupResponse(o)
	return &response, nil
}

// GetTracking returns the public timeline
func (s *OrderService) GetTracking(ctx context.Context, orderID int64) (*TrackingResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToTrackingResponse(o)
	return &response, nil
}

// GetLocationTracking returns the live-tracking view. An authenticated
// viewer other than an admin must own the order; anonymous access is allowed.
func (s *OrderService) GetLocationTracking(ctx context.Context, orderID int64, viewer *Viewer) (*LocationTrackingResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if viewer != nil && viewer.Role != identity.RoleAdmin && o.CustomerID != viewer.UserID {
		return nil, ErrAccessDenied
	}

	resp := &LocationTrackingResponse{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		Status:      o.Status.String(),
	}
	if !o.IsTrackingEnabled() {
		resp.Message = "Order not yet accepted by delivery man"
		return resp, nil
	}

	history, err := s.locationRepo.FindByOrder(ctx, o.ID, *o.AcceptedAt)
	if err != nil {
		return nil, err
	}

	if o.DeliveryLocation == nil {
		s.attachDeliveryLocation(ctx, o)
	}

	resp.TrackingEnabled = true
	resp.CurrentLocation = o.CurrentLocation
	resp.PickupLocation = o.PickupLocation
	resp.DeliveryLocation = o.DeliveryLocation
	resp.LocationHistory = ToLocationSampleResponses(history)
	resp.AcceptedAt = o.AcceptedAt
	resp.PickedUpAt = o.PickedUpAt
	resp.OutForDeliveryAt = o.OutForDeliveryAt
	resp.DeliveredAt = o.DeliveredAt

	if agent, err := s.userRepo.FindByID(ctx, *o.AssignedTo); err == nil {
		resp.DeliveryMan = &DeliveryManInfo{ID: agent.ID, Name: agent.Name, Mobile: agent.Mobile}
	}
	if o.CurrentLocation != nil && o.DeliveryLocation != nil {
		d := o.CurrentLocation.DistanceKm(*o.DeliveryLocation)
		resp.DistanceToTarget = &d
	}
	return resp, nil
}

// publish hands events to the bus; failures are logged, never returned
func (s *OrderService) publish(ctx context.Context, events ...shared.DomainEvent) {
	publishEvents(ctx, s.eventPublisher, s.logger, events)
}

func publishEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, events []shared.DomainEvent) {
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Warn("failed to publish domain events", zap.Int("count", len(events)), zap.Error(err))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
