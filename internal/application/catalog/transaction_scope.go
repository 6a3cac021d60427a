package catalog

import (
	"context"

	"github.com/sudharshini/backend/internal/domain/catalog"
)

// TransactionScope runs stock changes atomically with their ledger rows
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides repositories that share one transaction
type TransactionalRepositories interface {
	ProductRepo() catalog.ProductRepository
	StockMovementRepo() catalog.StockMovementRepository
}

// NoOpTransactionScope runs fn against plain repositories without a transaction.
// Useful for tests.
type NoOpTransactionScope struct {
	productRepo  catalog.ProductRepository
	movementRepo catalog.StockMovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(productRepo catalog.ProductRepository, movementRepo catalog.StockMovementRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{productRepo: productRepo, movementRepo: movementRepo}
}

// Execute runs fn with the non-transactional repositories.
func (s *NoOpTransactionScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository { return s.productRepo }

func (s *NoOpTransactionScope) StockMovementRepo() catalog.StockMovementRepository {
	return s.movementRepo
}
