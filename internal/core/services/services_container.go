package services

import (
	portsrepo "github.com/accounted-hq/accounted-app/internal/core/ports/repositories"
	portssvc "github.com/accounted-hq/accounted-app/internal/core/ports/services"
)

// NewServiceContainer wires the service layer from the repository provider.
func NewServiceContainer(repos portsrepo.RepositoryProvider, chainBatchSize int) *portssvc.ServiceContainer {
	clock := SystemClock()
	idGen := UUIDGenerator()

	periodSvc := NewPeriodService(repos.PeriodRepo, clock, idGen)
	journalSvc := NewJournalService(repos.JournalRepo, periodSvc, clock, idGen)
	postingSvc := NewPostingService(repos.JournalRepo, periodSvc, clock, idGen)
	hashSvc := NewHashService(repos.JournalRepo, chainBatchSize)
	reportingSvc := NewReportingService(repos.ReportingRepo, repos.PeriodRepo)

	return &portssvc.ServiceContainer{
		Period:    periodSvc,
		Journal:   journalSvc,
		Posting:   postingSvc,
		Hash:      hashSvc,
		Reporting: reportingSvc,
	}
}
