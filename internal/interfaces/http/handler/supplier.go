package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/sudharshini/backend/internal/application/catalog"
)

// SupplierHandler serves supplier CRUD for admins
type SupplierHandler struct {
	BaseHandler
	supplierService *catalogapp.SupplierService
}

// NewSupplierHandler creates a new SupplierHandler
func NewSupplierHandler(supplierService *catalogapp.SupplierService) *SupplierHandler {
	return &SupplierHandler{supplierService: supplierService}
}

// List handles GET /api/suppliers
func (h *SupplierHandler) List(c *gin.Context) {
	suppliers, err := h.supplierService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	List(c, suppliers)
}

// Get handles GET /api/suppliers/:id
func (h *SupplierHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id", "supplier")
	if !ok {
		return
	}
	supplier, err := h.supplierService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// Create handles POST /api/suppliers
func (h *SupplierHandler) Create(c *gin.Context) {
	var req catalogapp.SupplierRequest
	if !h.BindJSON(c, &req) {
		return
	}
	supplier, err := h.supplierService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, supplier)
}

// Update handles PUT /api/suppliers/:id
func (h *SupplierHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id", "supplier")
	if !ok {
		return
	}
	var req catalogapp.SupplierRequest
	if !h.BindJSON(c, &req) {
		return
	}
	supplier, err := h.supplierService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// Delete handles DELETE /api/suppliers/:id
func (h *SupplierHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id", "supplier")
	if !ok {
		return
	}
	if err := h.supplierService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
