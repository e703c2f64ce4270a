package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/accounted-hq/accounted-app/internal/apperrors"
	portssvc "github.com/accounted-hq/accounted-app/internal/core/ports/services"
)

// reportingHandler exposes read-only report aggregations.
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

func newReportingHandler(reportingService portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{reportingService: reportingService}
}

func (h *reportingHandler) trialBalance(c *gin.Context) {
	_, orgID, ok := requestIdentity(c)
	if !ok {
		return
	}

	periodID := c.Query("periodId")
	if periodID == "" {
		respondError(c, apperrors.NewValidationFailed("periodId query parameter is required", nil))
		return
	}

	report, err := h.reportingService.TrialBalance(c.Request.Context(), orgID, periodID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// registerReportingRoutes registers report routes.
func registerReportingRoutes(group *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reports := group.Group("/reports")
	{
		reports.GET("/trial-balance", h.trialBalance)
	}
}
