package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/accounted-hq/accounted-app/internal/apperrors"
)

// JournalStatus indicates the lifecycle state of a journal.
type JournalStatus string

const (
	Draft    JournalStatus = "DRAFT"
	Posted   JournalStatus = "POSTED"
	Reversed JournalStatus = "REVERSED"
)

// exchangeTolerance is the maximum allowed difference, in the booking
// currency, between original_amount * exchange_rate and the booked amount.
var exchangeTolerance = decimal.New(1, -AmountScale)

// JournalLine is one debit or credit entry within a journal. Exactly one of
// DebitAmount and CreditAmount is non-zero.
type JournalLine struct {
	LineID         string          `json:"lineID"`
	JournalID      string          `json:"journalID"`
	AccountID      string          `json:"accountID"`
	LineNumber     int             `json:"lineNumber"`
	Description    string          `json:"description"`
	DebitAmount    Money           `json:"debitAmount"`
	CreditAmount   Money           `json:"creditAmount"`
	OriginalAmount Money           `json:"originalAmount"` // possibly foreign currency
	ExchangeRate   decimal.Decimal `json:"exchangeRate"`   // scale 6, > 0
	TaxCode        string          `json:"taxCode,omitempty"`
	TaxAmount      Amount          `json:"taxAmount"`
	TaxRate        decimal.Decimal `json:"taxRate"` // [0,1]
}

// IsDebit reports whether the line books on the debit side.
func (l *JournalLine) IsDebit() bool {
	return !l.DebitAmount.IsZero()
}

// BookingAmount returns the non-zero side of the line.
func (l *JournalLine) BookingAmount() Money {
	if l.IsDebit() {
		return l.DebitAmount
	}
	return l.CreditAmount
}

// Validate checks the line invariants against the owning journal's currency.
func (l *JournalLine) Validate(journalCurrency string) error {
	if l.AccountID == "" {
		return apperrors.NewValidationFailed(fmt.Sprintf("line %d: account id is required", l.LineNumber), nil)
	}
	if l.LineNumber < 1 {
		return apperrors.NewValidationFailed("line number must be >= 1", map[string]any{"lineNumber": l.LineNumber})
	}
	if l.DebitAmount.Amount.IsNegative() || l.CreditAmount.Amount.IsNegative() {
		return apperrors.NewValidationFailed(
			fmt.Sprintf("line %d: amounts must not be negative", l.LineNumber), nil)
	}
	debitSet := !l.DebitAmount.IsZero()
	creditSet := !l.CreditAmount.IsZero()
	if debitSet == creditSet {
		return apperrors.NewValidationFailed(
			fmt.Sprintf("line %d: exactly one of debit and credit must be non-zero", l.LineNumber),
			map[string]any{"lineNumber": l.LineNumber})
	}
	if l.DebitAmount.Currency != journalCurrency || l.CreditAmount.Currency != journalCurrency {
		return apperrors.NewValidationFailed(
			fmt.Sprintf("line %d: line currency must match journal currency %s", l.LineNumber, journalCurrency),
			map[string]any{"lineNumber": l.LineNumber, "journalCurrency": journalCurrency})
	}
	if !ValidCurrencyCode(l.OriginalAmount.Currency) {
		return apperrors.NewValidationFailed(
			fmt.Sprintf("line %d: invalid original currency %q", l.LineNumber, l.OriginalAmount.Currency), nil)
	}
	if !l.ExchangeRate.IsPositive() {
		return apperrors.NewValidationFailed(
			fmt.Sprintf("line %d: exchange rate must be positive", l.LineNumber),
			map[string]any{"exchangeRate": l.ExchangeRate.String()})
	}
	if l.TaxRate.IsNegative() || l.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return apperrors.NewValidationFailed(
			fmt.Sprintf("line %d: tax rate must be within [0,1]", l.LineNumber),
			map[string]any{"taxRate": l.TaxRate.String()})
	}
	converted := l.OriginalAmount.Amount.Decimal().Mul(l.ExchangeRate)
	booked := l.BookingAmount().Amount.Decimal()
	if converted.Sub(booked).Abs().GreaterThan(exchangeTolerance) {
		return apperrors.NewValidationFailed(
			fmt.Sprintf("line %d: original amount times exchange rate deviates from booked amount beyond tolerance", l.LineNumber),
			map[string]any{
				"lineNumber": l.LineNumber,
				"converted":  converted.String(),
				"booked":     booked.StringFixed(AmountScale),
				"tolerance":  exchangeTolerance.String(),
			})
	}
	return nil
}

// Journal is the aggregate root: an immutable-once-posted double-entry
// transaction. It exclusively owns its lines; lines are mutated only through
// the journal.
type Journal struct {
	JournalID         string        `json:"journalID"`
	OrganizationID    string        `json:"organizationID"`
	PeriodID          string        `json:"periodID"`
	JournalNumber     string        `json:"journalNumber"`
	Description       string        `json:"description"`
	Reference         string        `json:"reference,omitempty"`
	PostingDate       time.Time     `json:"postingDate"`
	Status            JournalStatus `json:"status"`
	CurrencyCode      string        `json:"currencyCode"`
	Lines             []JournalLine `json:"lines,omitempty"`
	HashPrev          JournalHash   `json:"hashPrev,omitempty"`
	HashSelf          JournalHash   `json:"hashSelf,omitempty"`
	ReversalJournalID *string       `json:"reversalJournalID,omitempty"`
	OriginalJournalID *string       `json:"originalJournalID,omitempty"`
	ExtUID            *string       `json:"extUID,omitempty"`
	PostedBy          *string       `json:"postedBy,omitempty"`
	PostedAt          *time.Time    `json:"postedAt,omitempty"`
	AuditFields
}

// IsSealed reports whether the journal carries a tamper-evident hash.
func (j *Journal) IsSealed() bool {
	return j.Status == Posted || j.Status == Reversed
}

// TotalDebit sums the debit side in the journal currency.
func (j *Journal) TotalDebit() Money {
	total := ZeroMoney(j.CurrencyCode)
	for i := range j.Lines {
		total.Amount = total.Amount.Add(j.Lines[i].DebitAmount.Amount)
	}
	return total
}

// TotalCredit sums the credit side in the journal currency.
func (j *Journal) TotalCredit() Money {
	total := ZeroMoney(j.CurrencyCode)
	for i := range j.Lines {
		total.Amount = total.Amount.Add(j.Lines[i].CreditAmount.Amount)
	}
	return total
}

// Validate checks every aggregate invariant: non-empty description, valid
// currency, at least two lines, per-line rules, contiguous line numbers 1..N
// and debit/credit balance.
func (j *Journal) Validate() error {
	if strings.TrimSpace(j.Description) == "" {
		return apperrors.NewValidationFailed("journal description is required", nil)
	}
	if !ValidCurrencyCode(j.CurrencyCode) {
		return apperrors.NewValidationFailed(fmt.Sprintf("invalid journal currency %q", j.CurrencyCode), nil)
	}
	if j.PostingDate.IsZero() {
		return apperrors.NewValidationFailed("posting date is required", nil)
	}
	if len(j.Lines) < 2 {
		return apperrors.NewValidationFailed("journal must have at least two lines", map[string]any{"lineCount": len(j.Lines)})
	}
	seen := make(map[int]bool, len(j.Lines))
	for i := range j.Lines {
		line := &j.Lines[i]
		if err := line.Validate(j.CurrencyCode); err != nil {
			return err
		}
		if seen[line.LineNumber] {
			return apperrors.NewValidationFailed(
				fmt.Sprintf("duplicate line number %d", line.LineNumber),
				map[string]any{"lineNumber": line.LineNumber})
		}
		seen[line.LineNumber] = true
	}
	for n := 1; n <= len(j.Lines); n++ {
		if !seen[n] {
			return apperrors.NewValidationFailed(
				fmt.Sprintf("line numbers must form the contiguous sequence 1..%d, missing %d", len(j.Lines), n),
				map[string]any{"lineCount": len(j.Lines), "missing": n})
		}
	}
	totalDebit := j.TotalDebit()
	totalCredit := j.TotalCredit()
	if !totalDebit.Amount.Equal(totalCredit.Amount) {
		return apperrors.NewUnbalancedJournal(totalDebit.String(), totalCredit.String())
	}
	return nil
}

// SortedLines returns the lines ordered by line number without mutating the
// journal's own slice.
func (j *Journal) SortedLines() []JournalLine {
	lines := make([]JournalLine, len(j.Lines))
	copy(lines, j.Lines)
	sort.Slice(lines, func(a, b int) bool {
		return lines[a].LineNumber < lines[b].LineNumber
	})
	return lines
}

// SerializeForHash produces the deterministic byte sequence the journal hash
// is computed over. The format is frozen; any change is a new chain version.
//
// Colon-joined header fields, then the line serialization: lines sorted by
// line number, pipe-joined fields per line, lines joined with ';'. Amounts
// render with exactly 4 fractional digits, exchange rates with 6, absent
// optionals as the empty string, dates as ISO-8601 UTC.
func (j *Journal) SerializeForHash(prev JournalHash) []byte {
	lines := j.SortedLines()
	lineRecords := make([]string, len(lines))
	for i := range lines {
		l := &lines[i]
		origDebit := "0.0000"
		origCredit := "0.0000"
		if l.IsDebit() {
			origDebit = l.OriginalAmount.Amount.String()
		} else {
			origCredit = l.OriginalAmount.Amount.String()
		}
		lineRecords[i] = strings.Join([]string{
			l.AccountID,
			strconv.Itoa(l.LineNumber),
			l.Description,
			l.DebitAmount.Amount.String(),
			l.CreditAmount.Amount.String(),
			l.OriginalAmount.Currency,
			origDebit,
			origCredit,
			l.ExchangeRate.StringFixed(RateScale),
			l.TaxCode,
			l.TaxAmount.String(),
			l.TaxRate.StringFixed(AmountScale),
		}, "|")
	}

	fields := []string{
		j.OrganizationID,
		j.PeriodID,
		j.JournalNumber,
		j.Description,
		j.Reference,
		j.PostingDate.UTC().Format(time.RFC3339),
		j.TotalDebit().Amount.String(),
		j.TotalCredit().Amount.String(),
		j.CurrencyCode,
		prev.String(),
		strings.Join(lineRecords, ";"),
	}
	return []byte(strings.Join(fields, ":"))
}

// Seal transitions a validated draft to POSTED and computes its chain hash.
// After sealing, every serialized field is frozen.
func (j *Journal) Seal(prev JournalHash, postedBy string, postedAt time.Time) error {
	if j.Status != Draft {
		return apperrors.NewJournalAlreadyPosted(j.JournalID, string(j.Status))
	}
	j.Status = Posted
	j.HashPrev = prev
	j.HashSelf = ComputeJournalHash(j.SerializeForHash(prev), prev)
	j.PostedBy = &postedBy
	at := postedAt
	j.PostedAt = &at
	j.LastUpdatedAt = postedAt
	j.LastUpdatedBy = postedBy
	return nil
}

// VerifyHash recomputes the sealed hash from the current field values and
// compares it against HashSelf. Any post-seal mutation of a hashed field
// makes this return false.
func (j *Journal) VerifyHash() bool {
	if !j.IsSealed() || !j.HashSelf.Valid() {
		return false
	}
	recomputed := ComputeJournalHash(j.SerializeForHash(j.HashPrev), j.HashPrev)
	return recomputed == j.HashSelf
}

// MarkReversed records the reversal linkage on a posted journal. The sealed
// hash is not recomputed: status and linkage live outside the hashed field
// set.
func (j *Journal) MarkReversed(reversalJournalID, by string, at time.Time) error {
	if j.Status != Posted {
		return apperrors.NewBusinessRuleViolation(
			fmt.Sprintf("journal %s is %s, only POSTED journals can be reversed", j.JournalID, j.Status),
			map[string]any{"journalId": j.JournalID, "status": string(j.Status)})
	}
	if j.ReversalJournalID != nil {
		return apperrors.NewBusinessRuleViolation(
			fmt.Sprintf("journal %s has already been reversed", j.JournalID),
			map[string]any{"journalId": j.JournalID, "reversalJournalId": *j.ReversalJournalID})
	}
	j.Status = Reversed
	j.ReversalJournalID = &reversalJournalID
	j.LastUpdatedAt = at
	j.LastUpdatedBy = by
	return nil
}

// BuildReversal constructs the mirror draft for this journal: debit and
// credit amounts swapped per line, line numbers preserved, original amounts,
// exchange rates and tax fields unchanged. The caller posts the mirror and
// marks the original reversed inside one transaction.
func (j *Journal) BuildReversal(newJournalID string, newLineID func() string, periodID, description string, reversalDate time.Time, createdBy string, now time.Time) Journal {
	mirrorLines := make([]JournalLine, len(j.Lines))
	for i := range j.Lines {
		orig := &j.Lines[i]
		mirrorLines[i] = JournalLine{
			LineID:         newLineID(),
			JournalID:      newJournalID,
			AccountID:      orig.AccountID,
			LineNumber:     orig.LineNumber,
			Description:    "REVERSAL: " + orig.Description,
			DebitAmount:    orig.CreditAmount,
			CreditAmount:   orig.DebitAmount,
			OriginalAmount: orig.OriginalAmount,
			ExchangeRate:   orig.ExchangeRate,
			TaxCode:        orig.TaxCode,
			TaxAmount:      orig.TaxAmount,
			TaxRate:        orig.TaxRate,
		}
	}

	reference := j.Reference
	if reference == "" {
		reference = j.JournalNumber
	}

	return Journal{
		JournalID:         newJournalID,
		OrganizationID:    j.OrganizationID,
		PeriodID:          periodID,
		JournalNumber:     j.JournalNumber + "-REV",
		Description:       description,
		Reference:         "REV-" + reference,
		PostingDate:       reversalDate,
		Status:            Draft,
		CurrencyCode:      j.CurrencyCode,
		Lines:             mirrorLines,
		OriginalJournalID: &j.JournalID,
		AuditFields: AuditFields{
			CreatedAt:     now,
			CreatedBy:     createdBy,
			LastUpdatedAt: now,
			LastUpdatedBy: createdBy,
		},
	}
}

// ChainVerification is the result of walking an organization's hash chain.
type ChainVerification struct {
	IsValid           bool     `json:"isValid"`
	TotalJournals     int      `json:"totalJournals"`
	InvalidJournalIDs []string `json:"invalidJournals"`
	BrokenChainAt     *string  `json:"brokenChainAt"`
}
