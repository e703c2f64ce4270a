package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/accounted-hq/accounted-app/internal/core/ports/services"
	"github.com/accounted-hq/accounted-app/internal/dto"
	"github.com/accounted-hq/accounted-app/internal/metrics"
)

// auditHandler exposes the hash chain verification surface.
type auditHandler struct {
	hashService portssvc.HashService
}

func newAuditHandler(hashService portssvc.HashService) *auditHandler {
	return &auditHandler{hashService: hashService}
}

func (h *auditHandler) verifyChain(c *gin.Context) {
	_, orgID, ok := requestIdentity(c)
	if !ok {
		return
	}

	result, err := h.hashService.VerifyOrganizationChain(c.Request.Context(), orgID)
	if err != nil {
		metrics.ChainVerifications.WithLabelValues("error").Inc()
		respondError(c, err)
		return
	}

	outcome := "valid"
	if !result.IsValid {
		outcome = "invalid"
	}
	metrics.ChainVerifications.WithLabelValues(outcome).Inc()

	c.JSON(http.StatusOK, dto.ChainVerificationResponse{
		IsValid:         result.IsValid,
		TotalJournals:   result.TotalJournals,
		InvalidJournals: result.InvalidJournalIDs,
		BrokenChainAt:   result.BrokenChainAt,
	})
}

func (h *auditHandler) verifyJournal(c *gin.Context) {
	_, orgID, ok := requestIdentity(c)
	if !ok {
		return
	}

	valid, err := h.hashService.VerifyJournal(c.Request.Context(), orgID, c.Param("journalID"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"journalID": c.Param("journalID"), "isValid": valid})
}

// registerAuditRoutes registers chain verification routes.
func registerAuditRoutes(group *gin.RouterGroup, hashService portssvc.HashService) {
	h := newAuditHandler(hashService)

	audit := group.Group("/audit")
	{
		audit.GET("/chain", h.verifyChain)
		audit.GET("/journals/:journalID", h.verifyJournal)
	}
}
