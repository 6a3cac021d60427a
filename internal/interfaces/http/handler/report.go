package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/sudharshini/backend/internal/application/catalog"
)

// ReportHandler serves the inventory dashboard
type ReportHandler struct {
	BaseHandler
	reportService *catalogapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *catalogapp.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Summary handles GET /api/reports/summary
func (h *ReportHandler) Summary(c *gin.Context) {
	resp, err := h.reportService.Summary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
