package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/accounted-hq/accounted-app/internal/apperrors"
	"github.com/accounted-hq/accounted-app/internal/middleware"
)

// errorResponse is the wire shape of every error body.
type errorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// respondError maps a core error to its HTTP status and stable body. Internal
// causes are logged, never sent to the client.
func respondError(c *gin.Context, err error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		logger.Error("Unclassified error", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, errorResponse{
			Code:    string(apperrors.CodeInternal),
			Message: "internal error",
		})
		return
	}

	status := apperrors.HTTPStatus(appErr.Code)
	if status >= http.StatusInternalServerError {
		logger.Error("Internal error", slog.String("code", string(appErr.Code)), slog.String("error", appErr.Error()))
		c.JSON(status, errorResponse{Code: string(appErr.Code), Message: appErr.Message})
		return
	}

	c.JSON(status, errorResponse{
		Code:    string(appErr.Code),
		Message: appErr.Message,
		Details: appErr.Details,
	})
}

// requestIdentity pulls the authenticated user and tenant from the context.
func requestIdentity(c *gin.Context) (userID, orgID string, ok bool) {
	ctx := c.Request.Context()
	userID, userOK := middleware.GetUserIDFromCtx(ctx)
	orgID, orgOK := middleware.GetOrgIDFromCtx(ctx)
	if !userOK || !orgOK {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", "", false
	}
	return userID, orgID, true
}
