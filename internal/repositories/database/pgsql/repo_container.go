package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/accounted-hq/accounted-app/internal/core/ports/repositories"
)

// NewRepositoryProvider wires the pgx repositories over one shared pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		PeriodRepo:      newPgxPeriodRepository(dbPool),
		JournalRepo:     newPgxJournalRepository(dbPool),
		IdempotencyRepo: newPgxIdempotencyRepository(dbPool),
		ReportingRepo:   newPgxReportingRepository(dbPool),
	}
}
