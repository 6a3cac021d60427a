package catalog

import (
	"math"
	"strings"
	"time"

	"github.com/sudharshini/backend/internal/domain/shared"
)

// Review is one user's rating of one product. A user holds at most one
// review per product.
type Review struct {
	ID        int64
	ProductID int64
	UserID    int64
	UserName  string
	Rating    int
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewReview validates and creates a review
func NewReview(productID, userID int64, rating int, comment string) (*Review, error) {
	if productID <= 0 || userID <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product and user are required")
	}
	r := &Review{ProductID: productID, UserID: userID}
	if err := r.Revise(rating, comment); err != nil {
		return nil, err
	}
	r.CreatedAt = r.UpdatedAt
	return r, nil
}

// Revise replaces the rating and comment
func (r *Review) Revise(rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Rating must be between 1 and 5")
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Comment is required")
	}
	r.Rating = rating
	r.Comment = comment
	r.UpdatedAt = time.Now()
	return nil
}

// IsOwnedBy reports whether userID wrote the review
func (r *Review) IsOwnedBy(userID int64) bool {
	return r.UserID == userID
}

// RatingSummary aggregates a product's reviews
type RatingSummary struct {
	Average float64 `json:"averageRating"`
	Count   int     `json:"totalReviews"`
}

// Summarize computes the average rating rounded to one decimal and the count
func Summarize(reviews []Review) RatingSummary {
	if len(reviews) == 0 {
		return RatingSummary{}
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	avg := float64(sum) / float64(len(reviews))
	return RatingSummary{Average: math.Round(avg*10) / 10, Count: len(reviews)}
}
