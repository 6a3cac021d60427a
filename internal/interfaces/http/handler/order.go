package handler

import (
	"github.com/gin-gonic/gin"
	apporder "github.com/sudharshini/backend/internal/application/order"
	"github.com/sudharshini/backend/internal/interfaces/http/middleware"
)

// OrderHandler serves customer, admin and public order endpoints
type OrderHandler struct {
	BaseHandler
	orderService *apporder.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *apporder.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Create handles POST /api/orders
func (h *OrderHandler) Create(c *gin.Context) {
	customerID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	var req apporder.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.orderService.CreateOrder(c.Request.Context(), customerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get handles GET /api/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id", "order")
	if !ok {
		return
	}
	resp, err := h.orderService.GetOrder(c.Request.Context(), id, viewer(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// MyOrders handles GET /api/orders/my-orders
func (h *OrderHandler) MyOrders(c *gin.Context) {
	customerID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	orders, err := h.orderService.GetMyOrders(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	List(c, orders)
}

// ByCustomer handles GET /api/orders/customer/:customerId
func (h *OrderHandler) ByCustomer(c *gin.Context) {
	customerID, ok := h.parseID(c, "customerId", "customer")
	if !ok {
		return
	}
	orders, err := h.orderService.GetOrdersByCustomer(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	List(c, orders)
}

// All handles GET /api/orders/all
func (h *OrderHandler) All(c *gin.Context) {
	orders, err := h.orderService.GetAllOrders(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	List(c, orders)
}

// ByOrderNumber handles GET /api/orders/by-order-number/:orderNumber
func (h *OrderHandler) ByOrderNumber(c *gin.Context) {
	resp, err := h.orderService.LookupByOrderNumber(c.Request.Context(), c.Param("orderNumber"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ByTrackingID handles GET /api/orders/by-tracking-id/:trackingId
func (h *OrderHandler) ByTrackingID(c *gin.Context) {
	resp, err := h.orderService.LookupByTrackingID(c.Request.Context(), c.Param("trackingId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Tracking handles GET /api/orders/:id/tracking
func (h *OrderHandler) Tracking(c *gin.Context) {
	id, ok := h.parseID(c, "id", "order")
	if !ok {
		return
	}
	resp, err := h.orderService.GetTracking(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// LocationTracking handles GET /api/orders/:id/location-tracking. Anonymous
// callers are allowed; a signed-in caller must own the order or be an admin.
func (h *OrderHandler) LocationTracking(c *gin.Context) {
	id, ok := h.parseID(c, "id", "order")
	if !ok {
		return
	}
	var v *apporder.Viewer
	if middleware.GetJWTUserID(c) > 0 {
		caller := viewer(c)
		v = &caller
	}
	resp, err := h.orderService.GetLocationTracking(c.Request.Context(), id, v)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateStatus handles PATCH /api/orders/:id/status for admins
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.parseID(c, "id", "order")
	if !ok {
		return
	}
	var req apporder.UpdateStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.orderService.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
