package catalog

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sudharshini/backend/internal/domain/catalog"
	"github.com/sudharshini/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// MaxImageSize bounds product image uploads
const MaxImageSize = 5 << 20

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ProductService handles product-related business operations
type ProductService struct {
	productRepo    catalog.ProductRepository
	reviewRepo     catalog.ReviewRepository
	storage        ImageStorage
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	reviewRepo catalog.ReviewRepository,
	storage ImageStorage,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		reviewRepo:  reviewRepo,
		storage:     storage,
		logger:      logger,
		now:         time.Now,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// List returns every product with its rating summary
func (s *ProductService) List(ctx context.Context) ([]ProductResponse, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(products))
	for i := range products {
		ids[i] = products[i].ID
	}
	summaries, err := s.reviewRepo.SummaryByProducts(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i], summaries[products[i].ID], now)
	}
	return out, nil
}

// GetByID returns a product with its rating summary
func (s *ProductService) GetByID(ctx context.Context, id int64) (*ProductResponse, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	summaries, err := s.reviewRepo.SummaryByProducts(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(p, summaries[id], s.now())
	return &resp, nil
}

// Create creates a new product with its opening stock
func (s *ProductService) Create(ctx context.Context, req ProductRequest) (*ProductResponse, error) {
	details, err := req.details()
	if err != nil {
		return nil, err
	}
	p, err := catalog.NewProduct(details, req.StockQuantity)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	p.AddDomainEvent(catalog.NewProductCreatedEvent(p))
	s.publish(ctx, p)

	s.logger.Info("product created",
		zap.Int64("product_id", p.ID),
		zap.String("name", p.Name),
		zap.Int("stock", p.StockQuantity),
	)
	resp := ToProductResponse(p, catalog.RatingSummary{}, s.now())
	return &resp, nil
}

// Update replaces a product's editable fields. Stock only changes through
// stock movements and is ignored here.
func (s *ProductService) Update(ctx context.Context, id int64, req ProductRequest) (*ProductResponse, error) {
	details, err := req.details()
	if err != nil {
		return nil, err
	}
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.Update(details); err != nil {
		return nil, err
	}
	if err := s.productRepo.SaveWithLock(ctx, p); err != nil {
		return nil, err
	}
	s.publish(ctx, p)
	return s.GetByID(ctx, id)
}

// Delete removes a product
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	p.MarkDeleted()
	s.publish(ctx, p)
	s.logger.Info("product deleted", zap.Int64("product_id", id))
	return nil
}

// UploadImage stores an image and returns its public URL
func (s *ProductService) UploadImage(ctx context.Context, filename, contentType string, size int64, body io.Reader) (*ImageUploadResponse, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Image storage is not configured")
	}
	if size <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Please select a file to upload")
	}
	if size > MaxImageSize {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "File size must be less than 5MB")
	}
	contentType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Only image files are allowed")
	}
	if e := strings.ToLower(path.Ext(filename)); e != "" && e != ".jpeg" {
		ext = e
	}

	key := "products/" + uuid.NewString() + ext
	url, err := s.storage.PutObject(ctx, key, contentType, body, size)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}
	s.logger.Info("product image uploaded", zap.String("key", key), zap.Int64("size", size))
	return &ImageUploadResponse{URL: url, Key: key}, nil
}

func (s *ProductService) publish(ctx context.Context, p *catalog.Product) {
	publishEvents(ctx, s.eventPublisher, s.logger, p.GetDomainEvents())
	p.ClearDomainEvents()
}

func (r ProductRequest) details() (catalog.ProductDetails, error) {
	d := catalog.ProductDetails{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		ImageURL:    r.ImageURL,
		SupplierID:  r.SupplierID,
		Category:    r.Category,
		SKU:         r.SKU,
	}
	if r.ExpiryDate != "" {
		t, err := time.ParseInLocation(dateLayout, r.ExpiryDate, time.Local)
		if err != nil {
			return d, shared.NewDomainError(shared.CodeInvalidInput, "Invalid expiry date, expected YYYY-MM-DD")
		}
		d.ExpiryDate = &t
	}
	return d, nil
}

func publishEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, events []shared.DomainEvent) {
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Warn("failed to publish domain events", zap.Int("count", len(events)), zap.Error(err))
	}
}
