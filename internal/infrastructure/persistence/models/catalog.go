package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sudharshini/backend/internal/domain/catalog"
)

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	AggregateModel
	Name          string          `gorm:"type:varchar(200);not null;index"`
	Description   string          `gorm:"type:text"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	StockQuantity int             `gorm:"not null;default:0;index"`
	ImageURL      string          `gorm:"type:varchar(500)"`
	SupplierID    *int64          `gorm:"index"`
	ExpiryDate    *time.Time      `gorm:"index"`
	Category      string          `gorm:"type:varchar(100)"`
	SKU           string          `gorm:"column:sku;type:varchar(50);index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Description:       m.Description,
		Price:             m.Price,
		StockQuantity:     m.StockQuantity,
		ImageURL:          m.ImageURL,
		SupplierID:        m.SupplierID,
		ExpiryDate:        m.ExpiryDate,
		Category:          m.Category,
		SKU:               m.SKU,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Name = p.Name
	m.Description = p.Description
	m.Price = p.Price
	m.StockQuantity = p.StockQuantity
	m.ImageURL = p.ImageURL
	m.SupplierID = p.SupplierID
	m.ExpiryDate = p.ExpiryDate
	m.Category = p.Category
	m.SKU = p.SKU
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// StockMovementModel is an append-only stock ledger row
type StockMovementModel struct {
	ID        int64                `gorm:"primaryKey;autoIncrement"`
	ProductID int64                `gorm:"not null;index"`
	Type      catalog.MovementType `gorm:"type:varchar(10);not null"`
	Quantity  int                  `gorm:"not null"`
	Reason    string               `gorm:"type:varchar(255)"`
	Notes     string               `gorm:"type:text"`
	CreatedAt time.Time            `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the persistence model to a domain StockMovement.
func (m *StockMovementModel) ToDomain() catalog.StockMovement {
	return catalog.StockMovement{
		ID:        m.ID,
		ProductID: m.ProductID,
		Type:      m.Type,
		Quantity:  m.Quantity,
		Reason:    m.Reason,
		Notes:     m.Notes,
		CreatedAt: m.CreatedAt,
	}
}

// StockMovementModelFromDomain creates a persistence model from a StockMovement
func StockMovementModelFromDomain(s *catalog.StockMovement) *StockMovementModel {
	return &StockMovementModel{
		ID:        s.ID,
		ProductID: s.ProductID,
		Type:      s.Type,
		Quantity:  s.Quantity,
		Reason:    s.Reason,
		Notes:     s.Notes,
		CreatedAt: s.CreatedAt,
	}
}

// ReviewModel stores one user's rating of a product
type ReviewModel struct {
	BaseModel
	ProductID int64  `gorm:"not null;uniqueIndex:idx_reviews_product_user,priority:1"`
	UserID    int64  `gorm:"not null;uniqueIndex:idx_reviews_product_user,priority:2;index"`
	UserName  string `gorm:"type:varchar(100)"`
	Rating    int    `gorm:"not null"`
	Comment   string `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (ReviewModel) TableName() string {
	return "reviews"
}

// ToDomain converts the persistence model to a domain Review.
func (m *ReviewModel) ToDomain() *catalog.Review {
	return &catalog.Review{
		ID:        m.ID,
		ProductID: m.ProductID,
		UserID:    m.UserID,
		UserName:  m.UserName,
		Rating:    m.Rating,
		Comment:   m.Comment,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ReviewModelFromDomain creates a persistence model from a Review
func ReviewModelFromDomain(r *catalog.Review) *ReviewModel {
	return &ReviewModel{
		BaseModel: BaseModel{ID: r.ID, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt},
		ProductID: r.ProductID,
		UserID:    r.UserID,
		UserName:  r.UserName,
		Rating:    r.Rating,
		Comment:   r.Comment,
	}
}

// SupplierModel is the persistence model for suppliers
type SupplierModel struct {
	BaseModel
	Name          string `gorm:"type:varchar(200);not null"`
	ContactPerson string `gorm:"type:varchar(100)"`
	Email         string `gorm:"type:varchar(200)"`
	Phone         string `gorm:"type:varchar(20)"`
	Address       string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence model to a domain Supplier.
func (m *SupplierModel) ToDomain() *catalog.Supplier {
	return &catalog.Supplier{
		ID:            m.ID,
		Name:          m.Name,
		ContactPerson: m.ContactPerson,
		Email:         m.Email,
		Phone:         m.Phone,
		Address:       m.Address,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// SupplierModelFromDomain creates a persistence model from a Supplier
func SupplierModelFromDomain(s *catalog.Supplier) *SupplierModel {
	return &SupplierModel{
		BaseModel:     BaseModel{ID: s.ID, CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt},
		Name:          s.Name,
		ContactPerson: s.ContactPerson,
		Email:         s.Email,
		Phone:         s.Phone,
		Address:       s.Address,
	}
}
