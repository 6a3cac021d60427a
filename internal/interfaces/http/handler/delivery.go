package handler

import (
	"github.com/gin-gonic/gin"
	apporder "github.com/sudharshini/backend/internal/application/order"
)

// DeliveryHandler serves the delivery man endpoints
type DeliveryHandler struct {
	BaseHandler
	deliveryService *apporder.DeliveryService
}

// NewDeliveryHandler creates a new DeliveryHandler
func NewDeliveryHandler(deliveryService *apporder.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{deliveryService: deliveryService}
}

// AvailableOrders handles GET /api/delivery/available-orders
func (h *DeliveryHandler) AvailableOrders(c *gin.Context) {
	orders, err := h.deliveryService.AvailableOrders(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	List(c, orders)
}

// MyOrders handles GET /api/delivery/my-orders
func (h *DeliveryHandler) MyOrders(c *gin.Context) {
	agentID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	orders, err := h.deliveryService.MyOrders(c.Request.Context(), agentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	List(c, orders)
}

// Accept handles POST /api/delivery/orders/:orderId/accept. A lost race
// answers 409 ERR_ALREADY_ASSIGNED.
func (h *DeliveryHandler) Accept(c *gin.Context) {
	agentID, orderID, ok := h.agentAndOrder(c)
	if !ok {
		return
	}
	resp, err := h.deliveryService.AcceptOrder(c.Request.Context(), orderID, agentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateStatus handles POST /api/delivery/orders/:orderId/update-status
func (h *DeliveryHandler) UpdateStatus(c *gin.Context) {
	agentID, orderID, ok := h.agentAndOrder(c)
	if !ok {
		return
	}
	var req apporder.UpdateStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.deliveryService.UpdateStatus(c.Request.Context(), orderID, agentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateLocation handles POST /api/delivery/orders/:orderId/update-location
func (h *DeliveryHandler) UpdateLocation(c *gin.Context) {
	agentID, orderID, ok := h.agentAndOrder(c)
	if !ok {
		return
	}
	var req apporder.UpdateLocationRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.deliveryService.UpdateLocation(c.Request.Context(), orderID, agentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GenerateRoute handles POST /api/delivery/orders/:orderId/generate-fake-locations
func (h *DeliveryHandler) GenerateRoute(c *gin.Context) {
	agentID, orderID, ok := h.agentAndOrder(c)
	if !ok {
		return
	}
	resp, err := h.deliveryService.GenerateRoute(c.Request.Context(), orderID, agentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// OrderDetails handles GET /api/delivery/orders/:orderId
func (h *DeliveryHandler) OrderDetails(c *gin.Context) {
	orderID, ok := h.parseID(c, "orderId", "order")
	if !ok {
		return
	}
	resp, err := h.deliveryService.GetOrderDetails(c.Request.Context(), orderID, viewer(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *DeliveryHandler) agentAndOrder(c *gin.Context) (int64, int64, bool) {
	agentID, ok := h.currentUserID(c)
	if !ok {
		return 0, 0, false
	}
	orderID, ok := h.parseID(c, "orderId", "order")
	if !ok {
		return 0, 0, false
	}
	return agentID, orderID, true
}
