package catalog

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/sudharshini/backend/internal/domain/catalog"
	"go.uber.org/zap/zaptest"
)

func TestProductService_List(t *testing.T) {
	ctx := context.Background()
	products := new(MockProductRepository)
	reviews := new(MockReviewRepository)
	svc := NewProductService(products, reviews, nil, zaptest.NewLogger(t))

	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.Local)
	svc.now = func() time.Time { return now }
	soon := now.AddDate(0, 0, 5)

	a := *testProduct(1, "Turmeric", 100, 3)
	a.ExpiryDate = &soon
	b := *testProduct(2, "Pepper", 50, 40)
	products.On("FindAll", ctx).Return([]catalog.Product{a, b}, nil)
	reviews.On("SummaryByProducts", ctx, []int64{1, 2}).Return(map[int64]catalog.RatingSummary{
		1: {Average: 4.5, Count: 2},
	}, nil)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.True(t, list[0].LowStock)
	assert.True(t, list[0].NearExpiry)
	assert.Equal(t, 4.5, list[0].AverageRating)
	assert.Equal(t, 2, list[0].TotalReviews)
	assert.Equal(t, soon.Format("2006-01-02"), list[0].ExpiryDate)

	assert.False(t, list[1].LowStock)
	assert.Zero(t, list[1].TotalReviews)
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()
	products := new(MockProductRepository)
	svc := NewProductService(products, new(MockReviewRepository), nil, zaptest.NewLogger(t))
	publisher := &recordingPublisher{}
	svc.SetEventPublisher(publisher)

	products.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Run(func(args mock.Arguments) {
		args.Get(1).(*catalog.Product).ID = 11
	}).Return(nil)

	resp, err := svc.Create(ctx, ProductRequest{
		Name:          "Cardamom",
		Price:         decimal.RequireFromString("249.50"),
		StockQuantity: 30,
		ExpiryDate:    "2027-01-31",
		SKU:           "card-01",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), resp.ID)
	assert.Equal(t, "CARD-01", resp.SKU)
	assert.Equal(t, "2027-01-31", resp.ExpiryDate)
	assert.Equal(t, []string{catalog.EventTypeProductCreated}, publisher.Types())

	_, err = svc.Create(ctx, ProductRequest{Name: "Bad", ExpiryDate: "31/01/2027"})
	assert.Error(t, err)
}

func TestProductService_UploadImage(t *testing.T) {
	ctx := context.Background()
	storage := new(MockImageStorage)
	svc := NewProductService(new(MockProductRepository), new(MockReviewRepository), storage, zaptest.NewLogger(t))

	t.Run("stores under a generated key", func(t *testing.T) {
		storage.On("PutObject", ctx, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "products/") && strings.HasSuffix(key, ".png")
		}), "image/png", mock.Anything, int64(4)).
			Return("https://cdn.example.com/products/x.png", nil).Once()

		resp, err := svc.UploadImage(ctx, "pic.PNG", "image/png", 4, strings.NewReader("data"))
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/products/x.png", resp.URL)
	})

	t.Run("rejects non images", func(t *testing.T) {
		_, err := svc.UploadImage(ctx, "doc.pdf", "application/pdf", 4, strings.NewReader("data"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Only image files are allowed")
	})

	t.Run("rejects large files", func(t *testing.T) {
		_, err := svc.UploadImage(ctx, "big.jpg", "image/jpeg", MaxImageSize+1, strings.NewReader(""))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "5MB")
	})

	t.Run("requires storage", func(t *testing.T) {
		bare := NewProductService(new(MockProductRepository), new(MockReviewRepository), nil, zaptest.NewLogger(t))
		_, err := bare.UploadImage(ctx, "pic.png", "image/png", 4, strings.NewReader("data"))
		assert.Error(t, err)
	})
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()
	products := new(MockProductRepository)
	svc := NewProductService(products, new(MockReviewRepository), nil, zaptest.NewLogger(t))
	publisher := &recordingPublisher{}
	svc.SetEventPublisher(publisher)

	products.On("FindByID", ctx, int64(1)).Return(testProduct(1, "Turmeric", 100, 3), nil)
	products.On("Delete", ctx, int64(1)).Return(nil)

	require.NoError(t, svc.Delete(ctx, 1))
	assert.Equal(t, []string{catalog.EventTypeProductDeleted}, publisher.Types())
}
