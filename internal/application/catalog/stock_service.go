package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/sudharshini/backend/internal/domain/catalog"
	"github.com/sudharshini/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StockService records manual stock movements
type StockService struct {
	productRepo    catalog.ProductRepository
	movementRepo   catalog.StockMovementRepository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewStockService creates a new StockService
func NewStockService(
	productRepo catalog.ProductRepository,
	movementRepo catalog.StockMovementRepository,
	txScope TransactionScope,
	logger *zap.Logger,
) *StockService {
	return &StockService{
		productRepo:  productRepo,
		movementRepo: movementRepo,
		txScope:      txScope,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *StockService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// StockIn adds stock and writes an IN movement
func (s *StockService) StockIn(ctx context.Context, req StockChangeRequest) (*StockChangeResponse, error) {
	return s.apply(ctx, catalog.MovementIn, req)
}

// StockOut removes stock and writes an OUT movement. Insufficient stock is
// rejected; dropping below the threshold raises a low-stock alert.
func (s *StockService) StockOut(ctx context.Context, req StockChangeRequest) (*StockChangeResponse, error) {
	return s.apply(ctx, catalog.MovementOut, req)
}

func (s *StockService) apply(ctx context.Context, movement catalog.MovementType, req StockChangeRequest) (*StockChangeResponse, error) {
	var (
		product *catalog.Product
		ledger  *catalog.StockMovement
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.ProductRepo().FindByID(ctx, req.ProductID)
		if err != nil {
			return err
		}
		m, err := catalog.NewStockMovement(p.ID, movement, req.Quantity, req.Reason, req.Notes)
		if err != nil {
			return err
		}

		if movement == catalog.MovementIn {
			err = p.IncreaseStock(req.Quantity)
		} else {
			err = p.DecreaseStock(req.Quantity)
		}
		if err != nil {
			return err
		}

		if err := repos.ProductRepo().SaveWithLock(ctx, p); err != nil {
			return fmt.Errorf("failed to save product stock: %w", err)
		}
		if err := repos.StockMovementRepo().Save(ctx, m); err != nil {
			return fmt.Errorf("failed to record stock movement: %w", err)
		}
		product, ledger = p, m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock movement recorded",
		zap.Int64("product_id", product.ID),
		zap.String("type", string(movement)),
		zap.Int("quantity", req.Quantity),
		zap.Int("new_stock", product.StockQuantity),
	)
	publishEvents(ctx, s.eventPublisher, s.logger, product.GetDomainEvents())
	product.ClearDomainEvents()

	return &StockChangeResponse{
		Product:  ToProductResponse(product, catalog.RatingSummary{}, time.Now()),
		Movement: ToStockMovementResponse(ledger),
	}, nil
}

// History returns a product's movements, newest first
func (s *StockService) History(ctx context.Context, productID int64) ([]StockMovementResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	movements, err := s.movementRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]StockMovementResponse, len(movements))
	for i := range movements {
		out[i] = ToStockMovementResponse(&movements[i])
	}
	return out, nil
}
