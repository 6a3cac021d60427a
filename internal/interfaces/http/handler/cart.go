package handler

import (
	"github.com/gin-gonic/gin"
	appcart "github.com/sudharshini/backend/internal/application/cart"
)

// CartHandler serves the caller's shopping cart
type CartHandler struct {
	BaseHandler
	cartService *appcart.Service
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService *appcart.Service) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// Get handles GET /api/cart
func (h *CartHandler) Get(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	resp, err := h.cartService.Get(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AddItem handles POST /api/cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	var req appcart.AddItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.cartService.AddItem(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateItem handles PUT /api/cart/items/:itemId
func (h *CartHandler) UpdateItem(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	itemID, ok := h.parseID(c, "itemId", "cart item")
	if !ok {
		return
	}
	var req appcart.UpdateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.cartService.UpdateItem(c.Request.Context(), userID, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RemoveItem handles DELETE /api/cart/items/:itemId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	itemID, ok := h.parseID(c, "itemId", "cart item")
	if !ok {
		return
	}
	resp, err := h.cartService.RemoveItem(c.Request.Context(), userID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Clear handles DELETE /api/cart
func (h *CartHandler) Clear(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	if err := h.cartService.Clear(c.Request.Context(), userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
