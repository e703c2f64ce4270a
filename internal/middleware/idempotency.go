package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/accounted-hq/accounted-app/internal/apperrors"
	portsrepo "github.com/accounted-hq/accounted-app/internal/core/ports/repositories"
)

// IdempotencyKeyHeader is the caller-provided key honored on mutating
// requests.
const IdempotencyKeyHeader = "Idempotency-Key"

// responseRecorder captures the response body so a successful response can be
// stored and replayed for the same key.
type responseRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// Idempotency creates a Gin middleware honoring the Idempotency-Key header.
// A repeated key with an identical payload replays the original response; a
// repeated key with a different payload is rejected with
// IDEMPOTENCY_CONFLICT. Keys are retained for the configured window.
func Idempotency(repo portsrepo.IdempotencyRepository, retention time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || c.Request.Method == http.MethodGet {
			c.Next()
			return
		}

		orgID, ok := GetOrgIDFromCtx(c.Request.Context())
		if !ok {
			c.Next()
			return
		}

		logger := GetLoggerFromCtx(c.Request.Context())

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		sum := sha256.Sum256(body)
		requestHash := hex.EncodeToString(sum[:])

		record, err := repo.FindKey(c.Request.Context(), orgID, key)
		if err == nil {
			if record.RequestHash != requestHash {
				appErr := apperrors.NewIdempotencyConflict(key)
				c.AbortWithStatusJSON(apperrors.HTTPStatus(appErr.Code), appErr)
				return
			}
			c.Data(record.ResponseStatus, "application/json", record.ResponseBody)
			c.Abort()
			return
		}

		recorder := &responseRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder

		c.Next()

		// Only successful responses are reserved; errors stay retryable.
		status := recorder.Status()
		if status >= 200 && status < 300 {
			now := time.Now().UTC()
			saveErr := repo.SaveKey(c.Request.Context(), portsrepo.IdempotencyRecord{
				OrganizationID: orgID,
				Key:            key,
				RequestHash:    requestHash,
				ResponseStatus: status,
				ResponseBody:   recorder.body.Bytes(),
				CreatedAt:      now,
				ExpiresAt:      now.Add(retention),
			})
			if saveErr != nil {
				logger.Error("Failed to store idempotency record", "key", key, "error", saveErr)
			}
		}
	}
}
