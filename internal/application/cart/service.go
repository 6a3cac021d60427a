package cart

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/sudharshini/backend/internal/domain/cart"
	"github.com/sudharshini/backend/internal/domain/catalog"
	"github.com/sudharshini/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AddItemRequest adds a product to the cart
type AddItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required,min=1"`
	Quantity  int   `json:"quantity"`
}

// UpdateItemRequest sets a line quantity; zero or less removes the line
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// ItemResponse is a cart line joined with its product
type ItemResponse struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	ImageURL    string          `json:"image_url,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	InStock     bool            `json:"in_stock"`
}

// CartResponse represents a cart in API responses
type CartResponse struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	Items         []ItemResponse  `json:"items"`
	TotalQuantity int             `json:"total_quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// Service manages customer carts
type Service struct {
	cartRepo    cart.Repository
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewService creates a new cart Service
func NewService(cartRepo cart.Repository, productRepo catalog.ProductRepository, logger *zap.Logger) *Service {
	return &Service{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// Get returns the user's cart, creating it on first access
func (s *Service) Get(ctx context.Context, userID int64) (*CartResponse, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, c)
}

// AddItem adds a product, merging quantities for a product already in the cart
func (s *Service) AddItem(ctx context.Context, userID int64, req AddItemRequest) (*CartResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, req.ProductID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound, "Product not found")
		}
		return nil, err
	}
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.AddItem(req.ProductID, req.Quantity)
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Debug("cart item added",
		zap.Int64("user_id", userID),
		zap.Int64("product_id", req.ProductID),
	)
	return s.toResponse(ctx, c)
}

// UpdateItem changes a line quantity
func (s *Service) UpdateItem(ctx context.Context, userID, itemID int64, req UpdateItemRequest) (*CartResponse, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := c.UpdateItem(itemID, req.Quantity); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, c)
}

// RemoveItem drops a line from the user's own cart
func (s *Service) RemoveItem(ctx context.Context, userID, itemID int64) (*CartResponse, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := c.RemoveItem(itemID); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, c)
}

// Clear empties the cart
func (s *Service) Clear(ctx context.Context, userID int64) error {
	c, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if len(c.Items) == 0 {
		return nil
	}
	c.Clear()
	return s.cartRepo.Save(ctx, c)
}

func (s *Service) load(ctx context.Context, userID int64) (*cart.Cart, error) {
	c, err := s.cartRepo.FindByUser(ctx, userID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	c = cart.New(userID)
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) toResponse(ctx context.Context, c *cart.Cart) (*CartResponse, error) {
	ids := make([]int64, len(c.Items))
	for i, it := range c.Items {
		ids[i] = it.ProductID
	}
	products := map[int64]*catalog.Product{}
	if len(ids) > 0 {
		var err error
		if products, err = s.productRepo.FindByIDs(ctx, ids); err != nil {
			return nil, err
		}
	}

	resp := &CartResponse{
		ID:            c.ID,
		UserID:        c.UserID,
		Items:         make([]ItemResponse, 0, len(c.Items)),
		TotalQuantity: c.TotalQuantity(),
		TotalAmount:   decimal.Zero,
	}
	for _, it := range c.Items {
		line := ItemResponse{ID: it.ID, ProductID: it.ProductID, Quantity: it.Quantity, Subtotal: decimal.Zero}
		if p, ok := products[it.ProductID]; ok {
			line.ProductName = p.Name
			line.ImageURL = p.ImageURL
			line.UnitPrice = p.Price
			line.Subtotal = p.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
			line.InStock = p.HasStock(it.Quantity)
		}
		resp.TotalAmount = resp.TotalAmount.Add(line.Subtotal)
		resp.Items = append(resp.Items, line)
	}
	return resp, nil
}
