package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/accounted-hq/accounted-app/internal/apperrors"
	"github.com/accounted-hq/accounted-app/internal/core/domain"
	portssvc "github.com/accounted-hq/accounted-app/internal/core/ports/services"
	"github.com/accounted-hq/accounted-app/internal/dto"
	"github.com/accounted-hq/accounted-app/internal/metrics"
	"github.com/accounted-hq/accounted-app/internal/middleware"
)

// journalHandler handles HTTP requests related to journals.
type journalHandler struct {
	journalService portssvc.JournalService
	postingService portssvc.PostingService
}

func newJournalHandler(journalService portssvc.JournalService, postingService portssvc.PostingService) *journalHandler {
	return &journalHandler{
		journalService: journalService,
		postingService: postingService,
	}
}

func (h *journalHandler) createDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, orgID, ok := requestIdentity(c)
	if !ok {
		return
	}

	var req dto.CreateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind journal payload", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	journal, err := h.journalService.CreateDraft(c.Request.Context(), orgID, req, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Draft journal created via API", slog.String("journal_id", journal.JournalID))
	c.JSON(http.StatusCreated, dto.ToJournalResponse(journal))
}

func (h *journalHandler) getJournal(c *gin.Context) {
	_, orgID, ok := requestIdentity(c)
	if !ok {
		return
	}

	journal, err := h.journalService.GetJournalByID(c.Request.Context(), orgID, c.Param("journalID"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
}

func (h *journalHandler) listJournals(c *gin.Context) {
	_, orgID, ok := requestIdentity(c)
	if !ok {
		return
	}

	// Lookups by number, ext uid or date range share the collection URL.
	if number := c.Query("journalNumber"); number != "" {
		journal, err := h.journalService.GetJournalByNumber(c.Request.Context(), orgID, number)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
		return
	}
	if extUID := c.Query("extUID"); extUID != "" {
		journal, err := h.journalService.GetJournalByExtUID(c.Request.Context(), orgID, extUID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
		return
	}
	if periodID := c.Query("periodID"); periodID != "" {
		var journals []domain.Journal
		var err error
		if c.Query("status") == "draft" {
			journals, err = h.journalService.ListDraftsByPeriod(c.Request.Context(), orgID, periodID)
		} else {
			journals, err = h.journalService.ListJournalsByPeriod(c.Request.Context(), orgID, periodID)
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"journals": dto.ToJournalResponses(journals)})
		return
	}
	if fromStr, toStr := c.Query("from"), c.Query("to"); fromStr != "" && toStr != "" {
		from, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			respondError(c, apperrors.NewValidationFailed("invalid from date", nil))
			return
		}
		to, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			respondError(c, apperrors.NewValidationFailed("invalid to date", nil))
			return
		}
		journals, err := h.journalService.ListJournalsByDateRange(c.Request.Context(), orgID, from, to)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"journals": dto.ToJournalResponses(journals)})
		return
	}

	var params dto.ListJournalsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	resp, err := h.journalService.ListJournals(c.Request.Context(), orgID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *journalHandler) updateDraft(c *gin.Context) {
	userID, orgID, ok := requestIdentity(c)
	if !ok {
		return
	}

	var req dto.UpdateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	journal, err := h.journalService.UpdateDraft(c.Request.Context(), orgID, c.Param("journalID"), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
}

func (h *journalHandler) deleteDraft(c *gin.Context) {
	_, orgID, ok := requestIdentity(c)
	if !ok {
		return
	}

	if err := h.journalService.DeleteDraft(c.Request.Context(), orgID, c.Param("journalID")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *journalHandler) postJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, orgID, ok := requestIdentity(c)
	if !ok {
		return
	}

	journal, err := h.postingService.PostJournal(c.Request.Context(), orgID, c.Param("journalID"), userID)
	if err != nil {
		metrics.PostingFailures.WithLabelValues(string(apperrors.CodeOf(err))).Inc()
		respondError(c, err)
		return
	}

	metrics.JournalsPosted.Inc()
	logger.Info("Journal posted via API", slog.String("journal_id", journal.JournalID))
	c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
}

func (h *journalHandler) reverseJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, orgID, ok := requestIdentity(c)
	if !ok {
		return
	}

	var req dto.ReverseJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	reversal, err := h.postingService.ReverseJournal(c.Request.Context(), orgID, c.Param("journalID"), req, userID)
	if err != nil {
		metrics.PostingFailures.WithLabelValues(string(apperrors.CodeOf(err))).Inc()
		respondError(c, err)
		return
	}

	metrics.JournalsReversed.Inc()
	logger.Info("Journal reversed via API",
		slog.String("original_journal_id", c.Param("journalID")),
		slog.String("reversal_journal_id", reversal.JournalID))
	c.JSON(http.StatusCreated, dto.ToJournalResponse(reversal))
}

func (h *journalHandler) importJournals(c *gin.Context) {
	userID, orgID, ok := requestIdentity(c)
	if !ok {
		return
	}

	var req dto.ImportJournalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if c.Query("dryRun") == "true" {
		result, err := h.journalService.ValidateForImport(c.Request.Context(), orgID, req.Journals)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	journals, err := h.journalService.ImportDrafts(c.Request.Context(), orgID, req.Journals, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"journals": dto.ToJournalResponses(journals)})
}

// registerJournalRoutes registers journal specific routes.
func registerJournalRoutes(group *gin.RouterGroup, journalService portssvc.JournalService, postingService portssvc.PostingService) {
	h := newJournalHandler(journalService, postingService)

	journals := group.Group("/journals")
	{
		journals.POST("", h.createDraft)
		journals.GET("", h.listJournals)
		journals.POST("/import", h.importJournals)
		journals.GET("/:journalID", h.getJournal)
		journals.PUT("/:journalID", h.updateDraft)
		journals.DELETE("/:journalID", h.deleteDraft)
		journals.POST("/:journalID/post", h.postJournal)
		journals.POST("/:journalID/reverse", h.reverseJournal)
	}
}
