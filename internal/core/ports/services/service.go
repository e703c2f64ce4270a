package services

// ServiceContainer bundles the service implementations handed to the HTTP
// layer at wiring time.
type ServiceContainer struct {
	Period    PeriodService
	Journal   JournalService
	Posting   PostingService
	Hash      HashService
	Reporting ReportingService
}
