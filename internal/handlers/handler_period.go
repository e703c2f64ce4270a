package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/accounted-hq/accounted-app/internal/core/domain"
	portssvc "github.com/accounted-hq/accounted-app/internal/core/ports/services"
	"github.com/accounted-hq/accounted-app/internal/dto"
	"github.com/accounted-hq/accounted-app/internal/middleware"
)

// periodHandler handles HTTP requests related to accounting periods.
type periodHandler struct {
	periodService  portssvc.PeriodService
	journalService portssvc.JournalService
}

func newPeriodHandler(periodService portssvc.PeriodService, journalService portssvc.JournalService) *periodHandler {
	return &periodHandler{
		periodService:  periodService,
		journalService: journalService,
	}
}

func (h *periodHandler) createPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, orgID, ok := requestIdentity(c)
	if !ok {
		return
	}

	var req dto.CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	period, err := h.periodService.CreatePeriod(c.Request.Context(), orgID, req, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Period created via API", slog.String("period_id", period.PeriodID))
	c.JSON(http.StatusCreated, dto.ToPeriodResponse(period))
}

func (h *periodHandler) getPeriod(c *gin.Context) {
	_, orgID, ok := requestIdentity(c)
	if !ok {
		return
	}

	period, err := h.periodService.GetPeriodByID(c.Request.Context(), orgID, c.Param("periodID"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.ToPeriodResponse(period)
	c.JSON(http.StatusOK, resp)
}

func (h *periodHandler) listPeriods(c *gin.Context) {
	_, orgID, ok := requestIdentity(c)
	if !ok {
		return
	}

	var periods []domain.Period
	var err error
	if c.Query("status") == "open" {
		periods, err = h.periodService.ListOpenPeriods(c.Request.Context(), orgID)
	} else {
		periods, err = h.periodService.ListPeriods(c.Request.Context(), orgID)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"periods": dto.ToPeriodResponses(periods)})
}

func (h *periodHandler) deletePeriod(c *gin.Context) {
	_, orgID, ok := requestIdentity(c)
	if !ok {
		return
	}

	if err := h.periodService.DeletePeriod(c.Request.Context(), orgID, c.Param("periodID")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *periodHandler) updatePeriod(c *gin.Context) {
	userID, orgID, ok := requestIdentity(c)
	if !ok {
		return
	}

	var req dto.UpdatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	period, err := h.periodService.UpdatePeriod(c.Request.Context(), orgID, c.Param("periodID"), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
}

func (h *periodHandler) startClosing(c *gin.Context) {
	userID, orgID, ok := requestIdentity(c)
	if !ok {
		return
	}

	period, err := h.periodService.StartClosing(c.Request.Context(), orgID, c.Param("periodID"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	// Drafts do not block closing, but callers want to know about them.
	draftCount, countErr := h.journalService.CountDraftsInPeriod(c.Request.Context(), orgID, period.PeriodID)
	if countErr != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to count drafts during close-start", slog.String("error", countErr.Error()))
	}

	c.JSON(http.StatusOK, gin.H{
		"period":     dto.ToPeriodResponse(period),
		"draftCount": draftCount,
	})
}

func (h *periodHandler) closePeriod(c *gin.Context) {
	userID, orgID, ok := requestIdentity(c)
	if !ok {
		return
	}

	period, err := h.periodService.ClosePeriod(c.Request.Context(), orgID, c.Param("periodID"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
}

func (h *periodHandler) reopenPeriod(c *gin.Context) {
	userID, orgID, ok := requestIdentity(c)
	if !ok {
		return
	}

	period, err := h.periodService.ReopenPeriod(c.Request.Context(), orgID, c.Param("periodID"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
}

// registerPeriodRoutes registers period specific routes.
func registerPeriodRoutes(group *gin.RouterGroup, periodService portssvc.PeriodService, journalService portssvc.JournalService) {
	h := newPeriodHandler(periodService, journalService)

	periods := group.Group("/periods")
	{
		periods.POST("", h.createPeriod)
		periods.GET("", h.listPeriods)
		periods.GET("/:periodID", h.getPeriod)
		periods.PUT("/:periodID", h.updatePeriod)
		periods.DELETE("/:periodID", h.deletePeriod)
		periods.POST("/:periodID/close-start", h.startClosing)
		periods.POST("/:periodID/close", h.closePeriod)
		periods.POST("/:periodID/reopen", h.reopenPeriod)
	}
}
