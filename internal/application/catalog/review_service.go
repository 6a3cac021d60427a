package catalog

import (
	"context"
	"errors"

	"github.com/sudharshini/backend/internal/domain/catalog"
	"github.com/sudharshini/backend/internal/domain/identity"
	"github.com/sudharshini/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ReviewService manages product reviews
type ReviewService struct {
	reviewRepo  catalog.ReviewRepository
	productRepo catalog.ProductRepository
	userRepo    identity.UserRepository
	logger      *zap.Logger
}

// NewReviewService creates a new ReviewService
func NewReviewService(
	reviewRepo catalog.ReviewRepository,
	productRepo catalog.ProductRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

// ListForProduct returns the product's reviews with average rating and count
func (s *ReviewService) ListForProduct(ctx context.Context, productID int64) (*ProductReviewsResponse, error) {
	reviews, err := s.reviewRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	summary := catalog.Summarize(reviews)
	return &ProductReviewsResponse{
		Reviews:       toReviewResponses(reviews),
		AverageRating: summary.Average,
		TotalReviews:  summary.Count,
	}, nil
}

// ListMine returns the caller's reviews
func (s *ReviewService) ListMine(ctx context.Context, userID int64) ([]ReviewResponse, error) {
	reviews, err := s.reviewRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toReviewResponses(reviews), nil
}

// Upsert adds the caller's review of a product or replaces the existing one
func (s *ReviewService) Upsert(ctx context.Context, productID, userID int64, req ReviewRequest) (*ReviewResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	review, err := s.reviewRepo.FindByProductAndUser(ctx, productID, userID)
	switch {
	case err == nil:
		if err := review.Revise(req.Rating, req.Comment); err != nil {
			return nil, err
		}
	case errors.Is(err, shared.ErrNotFound):
		review, err = catalog.NewReview(productID, userID, req.Rating, req.Comment)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	review.UserName = user.Name

	if err := s.reviewRepo.Save(ctx, review); err != nil {
		return nil, err
	}
	s.logger.Info("review saved",
		zap.Int64("review_id", review.ID),
		zap.Int64("product_id", productID),
		zap.Int("rating", review.Rating),
	)
	resp := ToReviewResponse(review)
	return &resp, nil
}

// Delete removes a review written by the caller
func (s *ReviewService) Delete(ctx context.Context, reviewID, userID int64) error {
	review, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if !review.IsOwnedBy(userID) {
		return shared.NewDomainError(shared.CodeForbidden, "You can only delete your own reviews")
	}
	return s.reviewRepo.Delete(ctx, reviewID)
}

func toReviewResponses(reviews []catalog.Review) []ReviewResponse {
	out := make([]ReviewResponse, len(reviews))
	for i := range reviews {
		out[i] = ToReviewResponse(&reviews[i])
	}
	return out
}
