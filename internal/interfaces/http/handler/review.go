package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/sudharshini/backend/internal/application/catalog"
)

// ReviewHandler serves product reviews
type ReviewHandler struct {
	BaseHandler
	reviewService *catalogapp.ReviewService
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviewService *catalogapp.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// ForProduct handles GET /api/reviews/product/:productId
func (h *ReviewHandler) ForProduct(c *gin.Context) {
	productID, ok := h.parseID(c, "productId", "product")
	if !ok {
		return
	}
	resp, err := h.reviewService.ListForProduct(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Mine handles GET /api/reviews/user/me
func (h *ReviewHandler) Mine(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	reviews, err := h.reviewService.ListMine(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	List(c, reviews)
}

// Upsert handles POST /api/reviews/product/:productId
func (h *ReviewHandler) Upsert(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	productID, ok := h.parseID(c, "productId", "product")
	if !ok {
		return
	}
	var req catalogapp.ReviewRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.reviewService.Upsert(c.Request.Context(), productID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete handles DELETE /api/reviews/:reviewId
func (h *ReviewHandler) Delete(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	reviewID, ok := h.parseID(c, "reviewId", "review")
	if !ok {
		return
	}
	if err := h.reviewService.Delete(c.Request.Context(), reviewID, userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
