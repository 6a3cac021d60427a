package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/sudharshini/backend/internal/domain/catalog"
	"github.com/sudharshini/backend/internal/domain/identity"
	"github.com/sudharshini/backend/internal/domain/shared"
	"go.uber.org/zap/zaptest"
)

type reviewFixture struct {
	svc      *ReviewService
	reviews  *MockReviewRepository
	products *MockProductRepository
	users    *MockUserRepository
}

func newReviewFixture(t *testing.T) *reviewFixture {
	f := &reviewFixture{
		reviews:  new(MockReviewRepository),
		products: new(MockProductRepository),
		users:    new(MockUserRepository),
	}
	f.svc = NewReviewService(f.reviews, f.products, f.users, zaptest.NewLogger(t))
	return f
}

func reviewer() *identity.User {
	u := &identity.User{Name: "Meera", Role: identity.RoleCustomer}
	u.ID = 5
	return u
}

func TestReviewService_Upsert(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a first review", func(t *testing.T) {
		f := newReviewFixture(t)
		f.products.On("FindByID", ctx, int64(1)).Return(testProduct(1, "Turmeric", 100, 5), nil)
		f.users.On("FindByID", ctx, int64(5)).Return(reviewer(), nil)
		f.reviews.On("FindByProductAndUser", ctx, int64(1), int64(5)).Return(nil, shared.ErrNotFound)
		f.reviews.On("Save", ctx, mock.AnythingOfType("*catalog.Review")).Return(nil)

		resp, err := f.svc.Upsert(ctx, 1, 5, ReviewRequest{Rating: 4, Comment: "  Fresh and fragrant "})
		require.NoError(t, err)
		assert.Equal(t, 4, resp.Rating)
		assert.Equal(t, "Fresh and fragrant", resp.Comment)
		assert.Equal(t, "Meera", resp.UserName)
	})

	t.Run("replaces the existing review", func(t *testing.T) {
		f := newReviewFixture(t)
		existing := &catalog.Review{ID: 3, ProductID: 1, UserID: 5, Rating: 2, Comment: "meh"}
		f.products.On("FindByID", ctx, int64(1)).Return(testProduct(1, "Turmeric", 100, 5), nil)
		f.users.On("FindByID", ctx, int64(5)).Return(reviewer(), nil)
		f.reviews.On("FindByProductAndUser", ctx, int64(1), int64(5)).Return(existing, nil)
		f.reviews.On("Save", ctx, existing).Return(nil)

		resp, err := f.svc.Upsert(ctx, 1, 5, ReviewRequest{Rating: 5, Comment: "Better now"})
		require.NoError(t, err)
		assert.Equal(t, int64(3), resp.ID)
		assert.Equal(t, 5, resp.Rating)
	})

	t.Run("blank comment", func(t *testing.T) {
		f := newReviewFixture(t)
		f.products.On("FindByID", ctx, int64(1)).Return(testProduct(1, "Turmeric", 100, 5), nil)
		f.users.On("FindByID", ctx, int64(5)).Return(reviewer(), nil)
		f.reviews.On("FindByProductAndUser", ctx, int64(1), int64(5)).Return(nil, shared.ErrNotFound)

		_, err := f.svc.Upsert(ctx, 1, 5, ReviewRequest{Rating: 5, Comment: "   "})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Comment is required")
		f.reviews.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestReviewService_ListForProduct(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)
	f.reviews.On("FindByProduct", ctx, int64(1)).Return([]catalog.Review{
		{ID: 1, Rating: 5, Comment: "a"},
		{ID: 2, Rating: 4, Comment: "b"},
		{ID: 3, Rating: 4, Comment: "c"},
	}, nil)

	resp, err := f.svc.ListForProduct(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, resp.Reviews, 3)
	assert.Equal(t, 4.3, resp.AverageRating)
	assert.Equal(t, 3, resp.TotalReviews)
}

func TestReviewService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)
	f.reviews.On("FindByID", ctx, int64(3)).Return(&catalog.Review{ID: 3, UserID: 5}, nil)
	f.reviews.On("Delete", ctx, int64(3)).Return(nil)

	err := f.svc.Delete(ctx, 3, 6)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "your own reviews")
	f.reviews.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)

	require.NoError(t, f.svc.Delete(ctx, 3, 5))
}
