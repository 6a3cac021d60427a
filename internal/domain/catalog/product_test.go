package catalog

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sudharshini/backend/internal/domain/shared"
)

func createTestProduct(t *testing.T, stock int) *Product {
	t.Helper()
	p, err := NewProduct(ProductDetails{
		Name:  "Basmati Rice 5kg",
		Price: decimal.NewFromInt(100),
		SKU:   "rice-5",
	}, stock)
	require.NoError(t, err)
	p.ID = 1
	return p
}

func TestNewProduct(t *testing.T) {
	p := createTestProduct(t, 20)
	assert.Equal(t, "Basmati Rice 5kg", p.Name)
	assert.Equal(t, "RICE-5", p.SKU)
	assert.Equal(t, 20, p.StockQuantity)
	assert.Equal(t, 1, p.Version)

	_, err := NewProduct(ProductDetails{Name: " "}, 1)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewProduct(ProductDetails{Name: "X", Price: decimal.NewFromInt(-1)}, 1)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewProduct(ProductDetails{Name: "X"}, -1)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestProduct_DecreaseStock(t *testing.T) {
	p := createTestProduct(t, 12)

	require.NoError(t, p.DecreaseStock(2))
	assert.Equal(t, 10, p.StockQuantity)
	assert.False(t, p.IsLowStock())
	assert.Len(t, p.GetDomainEvents(), 1)

	require.NoError(t, p.DecreaseStock(1))
	assert.True(t, p.IsLowStock())
	events := p.GetDomainEvents()
	require.Len(t, events, 3)
	low, ok := events[2].(*ProductLowStockEvent)
	require.True(t, ok)
	assert.Equal(t, 9, low.Stock)

	err := p.DecreaseStock(10)
	require.Error(t, err)
	assert.Equal(t, "Insufficient stock for: Basmati Rice 5kg", err.Error())
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.Equal(t, 9, p.StockQuantity)

	assert.Error(t, p.DecreaseStock(0))
}

func TestProduct_IncreaseStock(t *testing.T) {
	p := createTestProduct(t, 0)
	require.NoError(t, p.IncreaseStock(5))
	assert.Equal(t, 5, p.StockQuantity)
	assert.Error(t, p.IncreaseStock(-1))
}

func TestProduct_IsNearExpiry(t *testing.T) {
	now := time.Date(2026, 5, 1, 15, 0, 0, 0, time.UTC)
	day := func(d int) *time.Time {
		t := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
		return &t
	}
	tests := []struct {
		name   string
		expiry *time.Time
		want   bool
	}{
		{"no expiry", nil, false},
		{"today", day(0), false},
		{"expired", day(-3), false},
		{"tomorrow", day(1), true},
		{"in 14 days", day(14), true},
		{"in 15 days", day(15), false},
		{"in 40 days", day(40), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := createTestProduct(t, 1)
			p.ExpiryDate = tt.expiry
			assert.Equal(t, tt.want, p.IsNearExpiry(now))
		})
	}
}

func TestProduct_StockValue(t *testing.T) {
	p := createTestProduct(t, 3)
	assert.True(t, p.StockValue().Equal(decimal.NewFromInt(300)))
}

func TestNewStockMovement(t *testing.T) {
	m, err := NewStockMovement(1, MovementOut, 2, OrderReason("ORD-1"), "")
	require.NoError(t, err)
	assert.Equal(t, "Order: ORD-1", m.Reason)

	_, err = NewStockMovement(1, "SIDEWAYS", 2, "", "")
	assert.Error(t, err)
	_, err = NewStockMovement(1, MovementIn, 0, "", "")
	assert.Error(t, err)
}

func TestReview(t *testing.T) {
	_, err := NewReview(1, 2, 6, "great")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	_, err = NewReview(1, 2, 4, "   ")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	r, err := NewReview(1, 2, 4, " tasty ")
	require.NoError(t, err)
	assert.Equal(t, "tasty", r.Comment)
	assert.True(t, r.IsOwnedBy(2))
	assert.False(t, r.IsOwnedBy(3))

	require.NoError(t, r.Revise(5, "even better"))
	assert.Equal(t, 5, r.Rating)
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, RatingSummary{}, Summarize(nil))

	s := Summarize([]Review{{Rating: 5}, {Rating: 4}, {Rating: 4}})
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 4.3, s.Average, 1e-9)
}

func TestSupplier(t *testing.T) {
	_, err := NewSupplier(SupplierDetails{Name: ""})
	assert.Error(t, err)

	s, err := NewSupplier(SupplierDetails{Name: " Nandi Farms ", Phone: "080-1234"})
	require.NoError(t, err)
	assert.Equal(t, "Nandi Farms", s.Name)
}
