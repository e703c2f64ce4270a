package repositories

import (
	"context"

	"github.com/shopspring/decimal"
)

// TrialBalanceRow is one account's aggregated debit and credit totals over
// the posted journals of a period.
type TrialBalanceRow struct {
	AccountID   string
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

// ReportingRepository aggregates posted journal lines for reports. Reporting
// reads only sealed data; it never participates in the posting pipeline.
type ReportingRepository interface {
	// TrialBalance returns per-account debit/credit totals for the POSTED
	// and REVERSED journals of a period, ordered by account id.
	TrialBalance(ctx context.Context, organizationID, periodID string) ([]TrialBalanceRow, error)
}
