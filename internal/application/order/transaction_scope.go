package order

import (
	"context"

	"github.com/sudharshini/backend/internal/domain/catalog"
	"github.com/sudharshini/backend/internal/domain/order"
)

// TransactionScope provides transactional access to the repositories touched
// by order creation and delivery updates. Repository operations inside fn are
// committed or rolled back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides repositories that share one transaction
type TransactionalRepositories interface {
	OrderRepo() order.OrderRepository
	LocationRepo() order.LocationTrackingRepository
	ProductRepo() catalog.ProductRepository
	StockMovementRepo() catalog.StockMovementRepository
}

// NoOpTransactionScope runs fn against plain repositories without a transaction.
// Useful for tests.
type NoOpTransactionScope struct {
	orderRepo    order.OrderRepository
	locationRepo order.LocationTrackingRepository
	productRepo  catalog.ProductRepository
	movementRepo catalog.StockMovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	orderRepo order.OrderRepository,
	locationRepo order.LocationTrackingRepository,
	productRepo catalog.ProductRepository,
	movementRepo catalog.StockMovementRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo:    orderRepo,
		locationRepo: locationRepo,
		productRepo:  productRepo,
		movementRepo: movementRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) OrderRepo() order.OrderRepository { return s.orderRepo }
func (s *NoOpTransactionScope) LocationRepo() order.LocationTrackingRepository { return s.locationRepo }
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository { return s.productRepo }
func (s *NoOpTransactionScope) StockMovementRepo() catalog.StockMovementRepository { return s.movementRepo }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
