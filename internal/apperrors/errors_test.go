package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorsIsMatchesOnCode(t *testing.T) {
	err := NewEntityNotFound("journal", "j-1")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrPeriodClosed))

	wrapped := fmt.Errorf("loading: %w", err)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
}

func TestWrapPreservesKind(t *testing.T) {
	inner := NewPeriodClosed("p-1", "CLOSED")
	wrapped := Wrap("posting failed", inner)

	assert.Equal(t, CodePeriodClosed, wrapped.Code)
	assert.True(t, errors.Is(wrapped, ErrPeriodClosed))
	assert.True(t, errors.Is(wrapped, inner))
}

func TestWrapForeignErrorBecomesInternal(t *testing.T) {
	wrapped := Wrap("query failed", errors.New("connection reset"))
	assert.Equal(t, CodeInternal, wrapped.Code)
	require.NotNil(t, wrapped.Err)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeUnbalancedJournal, CodeOf(NewUnbalancedJournal("1.0000 EUR", "2.0000 EUR")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}

func TestHTTPStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(CodeValidationFailed))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(CodeEntityNotFound))
	assert.Equal(t, http.StatusConflict, HTTPStatus(CodeBusinessRuleViolation))
	assert.Equal(t, http.StatusConflict, HTTPStatus(CodePeriodClosed))
	assert.Equal(t, http.StatusConflict, HTTPStatus(CodeJournalAlreadyPosted))
	assert.Equal(t, http.StatusConflict, HTTPStatus(CodeUnbalancedJournal))
	assert.Equal(t, http.StatusConflict, HTTPStatus(CodeIdempotencyConflict))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(CodeInvalidHashChain))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(CodeInternal))
}

func TestUnbalancedJournalDetails(t *testing.T) {
	err := NewUnbalancedJournal("100.0000 EUR", "99.9900 EUR")
	assert.Equal(t, "100.0000 EUR", err.Details["totalDebit"])
	assert.Equal(t, "99.9900 EUR", err.Details["totalCredit"])
}
