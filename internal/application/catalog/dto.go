package catalog

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sudharshini/backend/internal/domain/catalog"
)

const dateLayout = "2006-01-02"

// ==================== Products ====================

// ProductRequest creates or replaces a product
type ProductRequest struct {
	Name          string          `json:"name" binding:"required,min=1,max=200"`
	Description   string          `json:"description" binding:"max=2000"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity" binding:"min=0"`
	ImageURL      string          `json:"image_url" binding:"max=1000"`
	SupplierID    *int64          `json:"supplier_id"`
	ExpiryDate    string          `json:"expiry_date" binding:"omitempty,datetime=2006-01-02"`
	Category      string          `json:"category" binding:"max=100"`
	SKU           string          `json:"sku" binding:"max=50"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	ImageURL      string          `json:"image_url,omitempty"`
	SupplierID    *int64          `json:"supplier_id,omitempty"`
	ExpiryDate    string          `json:"expiry_date,omitempty"`
	Category      string          `json:"category,omitempty"`
	SKU           string          `json:"sku,omitempty"`
	LowStock      bool            `json:"low_stock"`
	NearExpiry    bool            `json:"near_expiry"`
	AverageRating float64         `json:"average_rating"`
	TotalReviews  int             `json:"total_reviews"`
	Version       int             `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ImageUploadResponse is returned after an image upload
type ImageUploadResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// ToProductResponse converts a domain product to its response
func ToProductResponse(p *catalog.Product, summary catalog.RatingSummary, now time.Time) ProductResponse {
	resp := ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		ImageURL:      p.ImageURL,
		SupplierID:    p.SupplierID,
		Category:      p.Category,
		SKU:           p.SKU,
		LowStock:      p.IsLowStock(),
		NearExpiry:    p.IsNearExpiry(now),
		AverageRating: summary.Average,
		TotalReviews:  summary.Count,
		Version:       p.Version,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if p.ExpiryDate != nil {
		resp.ExpiryDate = p.ExpiryDate.Format(dateLayout)
	}
	return resp
}

// ==================== Stock ====================

// StockChangeRequest adjusts a product's stock
type StockChangeRequest struct {
	ProductID int64  `json:"product_id" binding:"required,min=1"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Reason    string `json:"reason" binding:"max=255"`
	Notes     string `json:"notes" binding:"max=1000"`
}

// StockMovementResponse represents a ledger row
type StockMovementResponse struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	Type      string    `json:"type"`
	Quantity  int       `json:"quantity"`
	Reason    string    `json:"reason,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// StockChangeResponse returns the product after a movement
type StockChangeResponse struct {
	Product  ProductResponse       `json:"product"`
	Movement StockMovementResponse `json:"movement"`
}

// ToStockMovementResponse converts a ledger row
func ToStockMovementResponse(m *catalog.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:        m.ID,
		ProductID: m.ProductID,
		Type:      string(m.Type),
		Quantity:  m.Quantity,
		Reason:    m.Reason,
		Notes:     m.Notes,
		CreatedAt: m.CreatedAt,
	}
}

// ==================== Reviews ====================

// ReviewRequest adds or replaces the caller's review of a product
type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required,max=2000"`
}

// ReviewResponse represents a review in API responses
type ReviewResponse struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	UserID    int64     `json:"user_id"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductReviewsResponse lists a product's reviews with their summary
type ProductReviewsResponse struct {
	Reviews       []ReviewResponse `json:"reviews"`
	AverageRating float64          `json:"average_rating"`
	TotalReviews  int              `json:"total_reviews"`
}

// ToReviewResponse converts a domain review
func ToReviewResponse(r *catalog.Review) ReviewResponse {
	return ReviewResponse{
		ID:        r.ID,
		ProductID: r.ProductID,
		UserID:    r.UserID,
		UserName:  r.UserName,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// ==================== Suppliers ====================

// SupplierRequest creates or replaces a supplier
type SupplierRequest struct {
	Name          string `json:"name" binding:"required,min=1,max=200"`
	ContactPerson string `json:"contact_person" binding:"max=100"`
	Email         string `json:"email" binding:"omitempty,email"`
	Phone         string `json:"phone" binding:"max=20"`
	Address       string `json:"address" binding:"max=500"`
}

func (r SupplierRequest) details() catalog.SupplierDetails {
	return catalog.SupplierDetails{
		Name:          r.Name,
		ContactPerson: r.ContactPerson,
		Email:         r.Email,
		Phone:         r.Phone,
		Address:       r.Address,
	}
}

// SupplierResponse represents a supplier in API responses
type SupplierResponse struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contact_person,omitempty"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Address       string    `json:"address,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ToSupplierResponse converts a domain supplier
func ToSupplierResponse(s *catalog.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:            s.ID,
		Name:          s.Name,
		ContactPerson: s.ContactPerson,
		Email:         s.Email,
		Phone:         s.Phone,
		Address:       s.Address,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}
