package repositories

// RepositoryProvider bundles the repository implementations handed to the
// service layer at wiring time.
type RepositoryProvider struct {
	PeriodRepo      PeriodRepository
	JournalRepo     JournalRepository
	IdempotencyRepo IdempotencyRepository
	ReportingRepo   ReportingRepository
}
