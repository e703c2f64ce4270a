package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is the stable, machine-readable identifier carried by every error the
// core surfaces. Codes are part of the API contract and never change meaning.
type Code string

const (
	CodeValidationFailed      Code = "VALIDATION_FAILED"
	CodeBusinessRuleViolation Code = "BUSINESS_RULE_VIOLATION"
	CodeEntityNotFound        Code = "ENTITY_NOT_FOUND"
	CodePeriodClosed          Code = "PERIOD_CLOSED"
	CodeJournalAlreadyPosted  Code = "JOURNAL_ALREADY_POSTED"
	CodeUnbalancedJournal     Code = "UNBALANCED_JOURNAL"
	CodeInvalidHashChain      Code = "INVALID_HASH_CHAIN"
	CodeIdempotencyConflict   Code = "IDEMPOTENCY_CONFLICT"
	CodeInternal              Code = "INTERNAL"
)

// AppError is the typed error value propagated upward through the core.
// Details carries structured context (overlapping period ids, duplicate
// numbers, posting bounds) for the API error body; it is never a stack trace.
type AppError struct {
	Code    Code           `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Err     error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on Code so errors.Is(err, apperrors.ErrNotFound) style checks
// work across wrapped chains.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// Sentinels for errors.Is checks.
var (
	ErrValidation          = &AppError{Code: CodeValidationFailed, Message: "validation failed"}
	ErrBusinessRule        = &AppError{Code: CodeBusinessRuleViolation, Message: "business rule violation"}
	ErrNotFound            = &AppError{Code: CodeEntityNotFound, Message: "resource not found"}
	ErrPeriodClosed        = &AppError{Code: CodePeriodClosed, Message: "period is not open for posting"}
	ErrJournalPosted       = &AppError{Code: CodeJournalAlreadyPosted, Message: "journal is not in draft status"}
	ErrUnbalanced          = &AppError{Code: CodeUnbalancedJournal, Message: "journal debits and credits do not balance"}
	ErrInvalidHashChain    = &AppError{Code: CodeInvalidHashChain, Message: "hash chain verification failed"}
	ErrIdempotencyConflict = &AppError{Code: CodeIdempotencyConflict, Message: "idempotency key reused with a different payload"}
	ErrInternal            = &AppError{Code: CodeInternal, Message: "internal error"}
)

// NewValidationFailed reports a static single-field invariant violation.
func NewValidationFailed(message string, details map[string]any) *AppError {
	return &AppError{Code: CodeValidationFailed, Message: message, Details: details}
}

// NewBusinessRuleViolation reports a rule spanning multiple fields or entities.
func NewBusinessRuleViolation(message string, details map[string]any) *AppError {
	return &AppError{Code: CodeBusinessRuleViolation, Message: message, Details: details}
}

// NewEntityNotFound reports a missing identity within the tenant.
func NewEntityNotFound(entity, id string) *AppError {
	return &AppError{
		Code:    CodeEntityNotFound,
		Message: fmt.Sprintf("%s %s not found", entity, id),
		Details: map[string]any{"entity": entity, "id": id},
	}
}

// NewPeriodClosed reports a posting attempt against a non-open period.
func NewPeriodClosed(periodID string, status string) *AppError {
	return &AppError{
		Code:    CodePeriodClosed,
		Message: fmt.Sprintf("period %s is %s and cannot accept postings", periodID, status),
		Details: map[string]any{"periodId": periodID, "status": status},
	}
}

// NewJournalAlreadyPosted reports a posting transition attempted on a non-draft.
func NewJournalAlreadyPosted(journalID string, status string) *AppError {
	return &AppError{
		Code:    CodeJournalAlreadyPosted,
		Message: fmt.Sprintf("journal %s is %s, expected DRAFT", journalID, status),
		Details: map[string]any{"journalId": journalID, "status": status},
	}
}

// NewUnbalancedJournal reports a debit/credit mismatch with both totals.
func NewUnbalancedJournal(totalDebit, totalCredit string) *AppError {
	return &AppError{
		Code:    CodeUnbalancedJournal,
		Message: "journal debits and credits do not balance",
		Details: map[string]any{"totalDebit": totalDebit, "totalCredit": totalCredit},
	}
}

// NewInvalidHashChain reports a failed hash verification.
func NewInvalidHashChain(message string, details map[string]any) *AppError {
	return &AppError{Code: CodeInvalidHashChain, Message: message, Details: details}
}

// NewIdempotencyConflict reports a reserved key reused with a different payload.
func NewIdempotencyConflict(key string) *AppError {
	return &AppError{
		Code:    CodeIdempotencyConflict,
		Message: "idempotency key was already used with a different payload",
		Details: map[string]any{"idempotencyKey": key},
	}
}

// NewInternal wraps an infrastructure failure without losing its cause.
func NewInternal(message string, err error) *AppError {
	return &AppError{Code: CodeInternal, Message: message, Err: err}
}

// Wrap preserves the kind of an inner *AppError while adding context; any
// other error becomes an INTERNAL error.
func Wrap(message string, err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{Code: appErr.Code, Message: message, Details: appErr.Details, Err: err}
	}
	return NewInternal(message, err)
}

// CodeOf extracts the canonical code from any error chain.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// HTTPStatus maps a code to the status the API surface responds with.
func HTTPStatus(code Code) int {
	switch code {
	case CodeValidationFailed:
		return http.StatusBadRequest
	case CodeEntityNotFound:
		return http.StatusNotFound
	case CodeBusinessRuleViolation, CodePeriodClosed, CodeJournalAlreadyPosted,
		CodeUnbalancedJournal, CodeIdempotencyConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
