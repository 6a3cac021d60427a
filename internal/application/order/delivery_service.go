package order

import (
	"context"
	"time"

	"github.com/sudharshini/backend/internal/domain/identity"
	"github.com/sudharshini/backend/internal/domain/order"
	"github.com/sudharshini/backend/internal/domain/shared"
	"github.com/sudharshini/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// DeliveryService implements the delivery agent workflow
type DeliveryService struct {
	orderRepo      order.OrderRepository
	txScope        TransactionScope
	geocoder       Geocoder
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
	geocodeTimeout time.Duration
	jitter         order.JitterFunc
}

// NewDeliveryService creates a new DeliveryService
func NewDeliveryService(orderRepo order.OrderRepository, txScope TransactionScope, opts ...ServiceOption) *DeliveryService {
	o := buildOptions(opts)
	return &DeliveryService{
		orderRepo:      orderRepo,
		txScope:        txScope,
		geocoder:       o.geocoder,
		logger:         o.logger,
		now:            o.now,
		geocodeTimeout: o.geocodeTimeout,
		jitter:         o.jitter,
	}
}

// SetEventPublisher sets the event publisher used for side effects
func (s *DeliveryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// AvailableOrders lists unassigned CONFIRMED or PROCESSING orders
func (s *DeliveryService) AvailableOrders(ctx context.Context) ([]OrderResponse, error) {
	orders, err := s.orderRepo.FindAvailable(ctx)
	if err != nil {
		return nil, err
	}
	return ToOrderResponses(orders), nil
}

// MyOrders lists orders assigned to the agent
func (s *DeliveryService) MyOrders(ctx context.Context, agentID int64) ([]OrderResponse, error) {
	orders, err := s.orderRepo.FindByAssignee(ctx, agentID)
	if err != nil {
		return nil, err
	}
	return ToOrderResponses(orders), nil
}

// AcceptOrder assigns an available order to the agent. The write is
// conditional on the order still being unassigned at the loaded version,
// so exactly one of two racing agents succeeds.
func (s *DeliveryService) AcceptOrder(ctx context.Context, orderID, agentID int64) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	expected := o.Version
	if err := o.Accept(agentID, s.now()); err != nil {
		return nil, err
	}

	ok, err := s.orderRepo.AssignIfUnassigned(ctx, o, expected)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.logger.Info("accept lost race",
			zap.Int64("order_id", orderID),
			zap.Int64("agent_id", agentID),
		)
		return nil, order.ErrAlreadyAssigned
	}

	s.logger.Info("order accepted",
		zap.Int64("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
		zap.Int64("agent_id", agentID),
	)
	s.publish(ctx, o)

	response := ToOrderResponse(o)
	return &response, nil
}

// UpdateStatus moves an assigned order one step along the delivery path
func (s *DeliveryService) UpdateStatus(ctx context.Context, orderID, agentID int64, req UpdateStatusRequest) (*StatusUpdateResponse, error) {
	next, err := order.ParseOrderStatus(req.Status)
	if err != nil {
		return nil, err
	}
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	changed, err := o.AgentUpdateStatus(agentID, next, req.CancellationReason, s.now())
	if err != nil {
		return nil, err
	}
	if changed {
		if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
			return nil, err
		}
		s.logger.Info("delivery status updated",
			zap.Int64("order_id", o.ID),
			zap.Int64("agent_id", agentID),
			zap.String("status", o.Status.String()),
		)
		s.publish(ctx, o)
	}
	return &StatusUpdateResponse{Changed: changed, Order: ToOrderResponse(o)}, nil
}

// UpdateLocation records the agent's live position on the order and
// appends it to the location history
func (s *DeliveryService) UpdateLocation(ctx context.Context, orderID, agentID int64, req UpdateLocationRequest) (*OrderResponse, error) {
	if req.Lat == nil || req.Lng == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Latitude and longitude are required")
	}
	loc, err := valueobject.NewGeoLocation(*req.Lat, *req.Lng, valueobject.WithAddress(req.Address))
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, err.Error())
	}

	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := o.UpdateCurrentLocation(agentID, loc, now); err != nil {
		return nil, err
	}

	sample := order.LocationSample{
		OrderID:    o.ID,
		AgentID:    agentID,
		Lat:        loc.Lat,
		Lng:        loc.Lng,
		Address:    loc.Address,
		Accuracy:   req.Accuracy,
		Speed:      req.Speed,
		Heading:    req.Heading,
		RecordedAt: now,
	}
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.OrderRepo().SaveWithLock(ctx, o); err != nil {
			return err
		}
		return repos.LocationRepo().Append(ctx, sample)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("location updated",
		zap.Int64("order_id", o.ID),
		zap.Float64("lat", loc.Lat),
		zap.Float64("lng", loc.Lng),
	)
	response := ToOrderResponse(o)
	return &response, nil
}

// GenerateRoute writes a simulated route from pickup to delivery for demos.
// A missing delivery location is geocoded first.
func (s *DeliveryService) GenerateRoute(ctx context.Context, orderID, agentID int64) (*RouteResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.IsAssignedTo(agentID) {
		return nil, order.ErrNotAssignedToYou
	}
	if o.DeliveryLocation == nil {
		resolveDeliveryLocation(ctx, s.geocoder, s.geocodeTimeout, s.logger, o)
	}

	samples, err := o.SimulateRoute(agentID, s.now(), s.jitter)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.OrderRepo().SaveWithLock(ctx, o); err != nil {
			return err
		}
		return repos.LocationRepo().Append(ctx, samples...)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("simulated route generated",
		zap.Int64("order_id", o.ID),
		zap.Int("points", len(samples)),
	)
	return &RouteResponse{OrderID: o.ID, Points: ToLocationSampleResponses(samples)}, nil
}

// GetOrderDetails returns an order to its assignee or an admin
func (s *DeliveryService) GetOrderDetails(ctx context.Context, orderID int64, viewer Viewer) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if viewer.Role != identity.RoleAdmin && !o.IsAssignedTo(viewer.UserID) {
		return nil, order.ErrNotAssignedToYou
	}
	response := ToOrderResponse(o)
	return &response, nil
}

func (s *DeliveryService) publish(ctx context.Context, o *order.Order) {
	publishEvents(ctx, s.eventPublisher, s.logger, o.GetDomainEvents())
	o.ClearDomainEvents()
}
