package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sudharshini/backend/internal/application/identity"
)

// UserHandler serves the admin user management endpoints
type UserHandler struct {
	BaseHandler
	userService *identity.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *identity.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ListUsers handles GET /api/auth/admin/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	List(c, users)
}

// ListDeliveryMen handles GET /api/auth/admin/delivery-men
func (h *UserHandler) ListDeliveryMen(c *gin.Context) {
	users, err := h.userService.ListDeliveryMen(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	List(c, users)
}

// GetDeliveryMan handles GET /api/auth/admin/delivery-men/:id
func (h *UserHandler) GetDeliveryMan(c *gin.Context) {
	id, ok := h.parseID(c, "id", "delivery man")
	if !ok {
		return
	}
	user, err := h.userService.GetDeliveryMan(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// CreateDeliveryMan handles POST /api/auth/admin/delivery-men
func (h *UserHandler) CreateDeliveryMan(c *gin.Context) {
	var req identity.CreateDeliveryManRequest
	if !h.BindJSON(c, &req) {
		return
	}
	user, err := h.userService.CreateDeliveryMan(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}

// UpdateDeliveryMan handles PUT /api/auth/admin/delivery-men/:id
func (h *UserHandler) UpdateDeliveryMan(c *gin.Context) {
	id, ok := h.parseID(c, "id", "delivery man")
	if !ok {
		return
	}
	var req identity.UpdateDeliveryManRequest
	if !h.BindJSON(c, &req) {
		return
	}
	user, err := h.userService.UpdateDeliveryMan(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// DeleteDeliveryMan handles DELETE /api/auth/admin/delivery-men/:id
func (h *UserHandler) DeleteDeliveryMan(c *gin.Context) {
	id, ok := h.parseID(c, "id", "delivery man")
	if !ok {
		return
	}
	if err := h.userService.DeleteDeliveryMan(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
