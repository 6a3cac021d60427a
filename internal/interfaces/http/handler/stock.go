package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/sudharshini/backend/internal/application/catalog"
)

// StockHandler serves stock movements
type StockHandler struct {
	BaseHandler
	stockService *catalogapp.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService *catalogapp.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// StockIn handles POST /api/stock/in
func (h *StockHandler) StockIn(c *gin.Context) {
	var req catalogapp.StockChangeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.stockService.StockIn(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// StockOut handles POST /api/stock/out
func (h *StockHandler) StockOut(c *gin.Context) {
	var req catalogapp.StockChangeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.stockService.StockOut(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// History handles GET /api/stock/history/:productId
func (h *StockHandler) History(c *gin.Context) {
	productID, ok := h.parseID(c, "productId", "product")
	if !ok {
		return
	}
	movements, err := h.stockService.History(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	List(c, movements)
}
