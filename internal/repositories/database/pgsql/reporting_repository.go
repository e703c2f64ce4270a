package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/accounted-hq/accounted-app/internal/apperrors"
	portsrepo "github.com/accounted-hq/accounted-app/internal/core/ports/repositories"
)

// PgxReportingRepository aggregates sealed journal lines for reports.
type PgxReportingRepository struct {
	BaseRepository
}

// newPgxReportingRepository creates a new repository for reporting queries.
func newPgxReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepository {
	return &PgxReportingRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ReportingRepository = (*PgxReportingRepository)(nil)

// TrialBalance returns per-account debit/credit totals over the sealed
// journals of a period.
func (r *PgxReportingRepository) TrialBalance(ctx context.Context, organizationID, periodID string) ([]portsrepo.TrialBalanceRow, error) {
	query := `
		SELECT l.account_id,
		       COALESCE(SUM(l.debit_amount), 0) AS total_debit,
		       COALESCE(SUM(l.credit_amount), 0) AS total_credit
		FROM journal_lines l
		JOIN journals j ON j.journal_id = l.journal_id
		WHERE j.organization_id = $1
		  AND j.period_id = $2
		  AND j.status IN ('POSTED', 'REVERSED')
		GROUP BY l.account_id
		ORDER BY l.account_id;
	`
	var result []portsrepo.TrialBalanceRow
	err := r.withTenant(ctx, organizationID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, organizationID, periodID)
		if err != nil {
			return apperrors.NewInternal("failed to query trial balance", err)
		}
		defer rows.Close()

		for rows.Next() {
			var row portsrepo.TrialBalanceRow
			if err := rows.Scan(&row.AccountID, &row.TotalDebit, &row.TotalCredit); err != nil {
				return apperrors.NewInternal("failed to scan trial balance row", err)
			}
			result = append(result, row)
		}
		return rows.Err()
	})
	return result, err
}
