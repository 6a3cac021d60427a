package catalog

import (
	"context"
	"time"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id int64) (*Product, error)

	// FindByIDs loads several products at once, keyed by id
	FindByIDs(ctx context.Context, ids []int64) (map[int64]*Product, error)

	// FindAll returns every product ordered by name
	FindAll(ctx context.Context) ([]Product, error)

	// FindLowStock returns products below LowStockThreshold
	FindLowStock(ctx context.Context) ([]Product, error)

	// FindExpiringBetween returns products whose expiry date falls strictly between from and to
	FindExpiringBetween(ctx context.Context, from, to time.Time) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, p *Product) error

	// SaveWithLock updates with an optimistic version check
	SaveWithLock(ctx context.Context, p *Product) error

	// Delete removes a product
	Delete(ctx context.Context, id int64) error
}

// StockMovementRepository stores the stock ledger
type StockMovementRepository interface {
	// Save appends a movement
	Save(ctx context.Context, m *StockMovement) error

	// FindByProduct returns a product's movements, newest first
	FindByProduct(ctx context.Context, productID int64) ([]StockMovement, error)
}

// ReviewRepository defines the interface for review persistence
type ReviewRepository interface {
	FindByID(ctx context.Context, id int64) (*Review, error)

	// FindByProductAndUser returns the user's review of the product, or NOT_FOUND
	FindByProductAndUser(ctx context.Context, productID, userID int64) (*Review, error)

	// FindByProduct returns a product's reviews, newest first
	FindByProduct(ctx context.Context, productID int64) ([]Review, error)

	// FindByUser returns a user's reviews, newest first
	FindByUser(ctx context.Context, userID int64) ([]Review, error)

	// SummaryByProducts returns the rating summary per product id
	SummaryByProducts(ctx context.Context, productIDs []int64) (map[int64]RatingSummary, error)

	Save(ctx context.Context, r *Review) error
	Delete(ctx context.Context, id int64) error
}

// SupplierRepository defines the interface for supplier persistence
type SupplierRepository interface {
	FindByID(ctx context.Context, id int64) (*Supplier, error)
	FindAll(ctx context.Context) ([]Supplier, error)
	Save(ctx context.Context, s *Supplier) error
	Delete(ctx context.Context, id int64) error
}
