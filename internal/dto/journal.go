package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/accounted-hq/accounted-app/internal/core/domain"
)

// CreateJournalLineRequest is one debit or credit line of a draft journal.
// Exactly one of debitAmount and creditAmount must be non-zero.
type CreateJournalLineRequest struct {
	AccountID        string          `json:"accountID" binding:"required"`
	LineNumber       int             `json:"lineNumber" binding:"required,min=1"`
	Description      string          `json:"description"`
	DebitAmount      decimal.Decimal `json:"debitAmount"`
	CreditAmount     decimal.Decimal `json:"creditAmount"`
	OriginalAmount   decimal.Decimal `json:"originalAmount"`
	OriginalCurrency string          `json:"originalCurrency" binding:"required,len=3"`
	ExchangeRate     decimal.Decimal `json:"exchangeRate"`
	TaxCode          string          `json:"taxCode,omitempty"`
	TaxAmount        decimal.Decimal `json:"taxAmount"`
	TaxRate          decimal.Decimal `json:"taxRate"`
}

// CreateJournalRequest carries the fields of a new draft journal.
type CreateJournalRequest struct {
	PeriodID      string                     `json:"periodID" binding:"required"`
	JournalNumber string                     `json:"journalNumber,omitempty"`
	Description   string                     `json:"description" binding:"required"`
	Reference     string                     `json:"reference,omitempty"`
	PostingDate   time.Time                  `json:"postingDate" binding:"required"`
	CurrencyCode  string                     `json:"currencyCode" binding:"required,len=3"`
	ExtUID        *string                    `json:"extUID,omitempty"`
	Lines         []CreateJournalLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// UpdateJournalRequest carries optional updates for a DRAFT journal. Fields
// left nil are kept.
type UpdateJournalRequest struct {
	PeriodID    *string                    `json:"periodID,omitempty"`
	Description *string                    `json:"description,omitempty"`
	Reference   *string                    `json:"reference,omitempty"`
	PostingDate *time.Time                 `json:"postingDate,omitempty"`
	Lines       []CreateJournalLineRequest `json:"lines,omitempty"`
}

// ReverseJournalRequest carries the parameters of a reversal.
type ReverseJournalRequest struct {
	Description  string    `json:"description"`
	ReversalDate time.Time `json:"reversalDate" binding:"required"`
}

// JournalLineResponse is the API shape of a journal line.
type JournalLineResponse struct {
	LineID           string          `json:"lineID"`
	AccountID        string          `json:"accountID"`
	LineNumber       int             `json:"lineNumber"`
	Description      string          `json:"description"`
	DebitAmount      string          `json:"debitAmount"`
	CreditAmount     string          `json:"creditAmount"`
	OriginalAmount   string          `json:"originalAmount"`
	OriginalCurrency string          `json:"originalCurrency"`
	ExchangeRate     decimal.Decimal `json:"exchangeRate"`
	TaxCode          string          `json:"taxCode,omitempty"`
	TaxAmount        string          `json:"taxAmount"`
	TaxRate          decimal.Decimal `json:"taxRate"`
}

// JournalResponse is the API shape of a journal.
type JournalResponse struct {
	JournalID         string                `json:"journalID"`
	PeriodID          string                `json:"periodID"`
	JournalNumber     string                `json:"journalNumber"`
	Description       string                `json:"description"`
	Reference         string                `json:"reference,omitempty"`
	PostingDate       time.Time             `json:"postingDate"`
	Status            string                `json:"status"`
	CurrencyCode      string                `json:"currencyCode"`
	TotalDebit        string                `json:"totalDebit"`
	TotalCredit       string                `json:"totalCredit"`
	HashPrev          string                `json:"hashPrev,omitempty"`
	HashSelf          string                `json:"hashSelf,omitempty"`
	ReversalJournalID *string               `json:"reversalJournalID,omitempty"`
	OriginalJournalID *string               `json:"originalJournalID,omitempty"`
	ExtUID            *string               `json:"extUID,omitempty"`
	PostedBy          *string               `json:"postedBy,omitempty"`
	PostedAt          *time.Time            `json:"postedAt,omitempty"`
	CreatedAt         time.Time             `json:"createdAt"`
	CreatedBy         string                `json:"createdBy"`
	Lines             []JournalLineResponse `json:"lines,omitempty"`
}

// ListJournalsParams carries pagination parameters for journal listing.
type ListJournalsParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListJournalsResponse is one page of journals plus the continuation token.
type ListJournalsResponse struct {
	Journals  []JournalResponse `json:"journals"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ImportJournalsRequest carries a batch of drafts for import.
type ImportJournalsRequest struct {
	Journals []CreateJournalRequest `json:"journals" binding:"required,min=1,dive"`
}

// ImportValidationIssue names one rejected journal in an import batch.
type ImportValidationIssue struct {
	Index   int            `json:"index"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ImportValidationResult reports the outcome of validateForImport.
type ImportValidationResult struct {
	Valid  bool                    `json:"valid"`
	Issues []ImportValidationIssue `json:"issues,omitempty"`
}

// ToJournalLineResponse converts a domain line to its API shape.
func ToJournalLineResponse(l *domain.JournalLine) JournalLineResponse {
	return JournalLineResponse{
		LineID:           l.LineID,
		AccountID:        l.AccountID,
		LineNumber:       l.LineNumber,
		Description:      l.Description,
		DebitAmount:      l.DebitAmount.Amount.String(),
		CreditAmount:     l.CreditAmount.Amount.String(),
		OriginalAmount:   l.OriginalAmount.Amount.String(),
		OriginalCurrency: l.OriginalAmount.Currency,
		ExchangeRate:     l.ExchangeRate,
		TaxCode:          l.TaxCode,
		TaxAmount:        l.TaxAmount.String(),
		TaxRate:          l.TaxRate,
	}
}

// ToJournalResponse converts a domain.Journal to its API shape.
func ToJournalResponse(j *domain.Journal) JournalResponse {
	lines := make([]JournalLineResponse, len(j.Lines))
	for i := range j.Lines {
		lines[i] = ToJournalLineResponse(&j.Lines[i])
	}
	return JournalResponse{
		JournalID:         j.JournalID,
		PeriodID:          j.PeriodID,
		JournalNumber:     j.JournalNumber,
		Description:       j.Description,
		Reference:         j.Reference,
		PostingDate:       j.PostingDate,
		Status:            string(j.Status),
		CurrencyCode:      j.CurrencyCode,
		TotalDebit:        j.TotalDebit().Amount.String(),
		TotalCredit:       j.TotalCredit().Amount.String(),
		HashPrev:          j.HashPrev.String(),
		HashSelf:          j.HashSelf.String(),
		ReversalJournalID: j.ReversalJournalID,
		OriginalJournalID: j.OriginalJournalID,
		ExtUID:            j.ExtUID,
		PostedBy:          j.PostedBy,
		PostedAt:          j.PostedAt,
		CreatedAt:         j.CreatedAt,
		CreatedBy:         j.CreatedBy,
		Lines:             lines,
	}
}

// ToJournalResponses converts a slice of journals without their lines.
func ToJournalResponses(journals []domain.Journal) []JournalResponse {
	responses := make([]JournalResponse, len(journals))
	for i := range journals {
		j := journals[i]
		j.Lines = nil
		responses[i] = ToJournalResponse(&j)
	}
	return responses
}
