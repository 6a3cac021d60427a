package persistence

import (
	"context"

	appcatalog "github.com/sudharshini/backend/internal/application/catalog"
	apporder "github.com/sudharshini/backend/internal/application/order"
	"github.com/sudharshini/backend/internal/domain/catalog"
	"github.com/sudharshini/backend/internal/domain/order"
	"gorm.io/gorm"
)

// GormTransactionScope implements the application TransactionScopes using
// GORM transactions. It provides atomic execution of multiple repository
// operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
// If fn succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos apporder.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// Catalog exposes the same transaction boundary for stock operations
func (s *GormTransactionScope) Catalog() *GormCatalogTransactionScope {
	return &GormCatalogTransactionScope{db: s.db}
}

// GormCatalogTransactionScope runs stock changes with their ledger rows
type GormCatalogTransactionScope struct {
	db *gorm.DB
}

// Execute runs fn within a database transaction.
func (s *GormCatalogTransactionScope) Execute(ctx context.Context, fn func(repos appcatalog.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// OrderRepo returns the order repository scoped to the current transaction.
func (r *gormTransactionalRepositories) OrderRepo() order.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

// LocationRepo returns the location repository scoped to the current transaction.
func (r *gormTransactionalRepositories) LocationRepo() order.LocationTrackingRepository {
	return NewGormLocationTrackingRepository(r.tx)
}

// ProductRepo returns the product repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// StockMovementRepo returns the stock ledger repository scoped to the current transaction.
func (r *gormTransactionalRepositories) StockMovementRepo() catalog.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

var (
	_ apporder.TransactionScope            = (*GormTransactionScope)(nil)
	_ appcatalog.TransactionScope          = (*GormCatalogTransactionScope)(nil)
	_ apporder.TransactionalRepositories   = (*gormTransactionalRepositories)(nil)
	_ appcatalog.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
