package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apporder "github.com/sudharshini/backend/internal/application/order"
	"github.com/sudharshini/backend/internal/interfaces/http/middleware"
)

// parseID reads a positive integer path parameter, answering 400 otherwise
func (h *BaseHandler) parseID(c *gin.Context, name, label string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		h.BadRequest(c, "Invalid "+label+" ID")
		return 0, false
	}
	return id, true
}

// currentUserID returns the authenticated caller, answering 401 when absent
func (h *BaseHandler) currentUserID(c *gin.Context) (int64, bool) {
	id := middleware.GetJWTUserID(c)
	if id <= 0 {
		h.Unauthorized(c, "Authentication required")
		return 0, false
	}
	return id, true
}

// viewer builds the order read context of the caller
func viewer(c *gin.Context) apporder.Viewer {
	return apporder.Viewer{UserID: middleware.GetJWTUserID(c), Role: middleware.GetJWTRole(c)}
}
