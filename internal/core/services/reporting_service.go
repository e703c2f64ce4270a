package services

import (
	"context"

	"github.com/accounted-hq/accounted-app/internal/apperrors"
	"github.com/accounted-hq/accounted-app/internal/core/domain"
	portsrepo "github.com/accounted-hq/accounted-app/internal/core/ports/repositories"
	portssvc "github.com/accounted-hq/accounted-app/internal/core/ports/services"
	"github.com/accounted-hq/accounted-app/internal/dto"
)

// reportingService aggregates sealed journal data for reports.
type reportingService struct {
	reportingRepo portsrepo.ReportingRepository
	periodRepo    portsrepo.PeriodRepository
}

// NewReportingService creates a new ReportingService.
func NewReportingService(reportingRepo portsrepo.ReportingRepository, periodRepo portsrepo.PeriodRepository) portssvc.ReportingService {
	return &reportingService{
		reportingRepo: reportingRepo,
		periodRepo:    periodRepo,
	}
}

var _ portssvc.ReportingService = (*reportingService)(nil)

// TrialBalance aggregates per-account debit and credit totals over the
// sealed journals of a period.
func (s *reportingService) TrialBalance(ctx context.Context, organizationID, periodID string) (*dto.TrialBalanceResponse, error) {
	if _, err := s.periodRepo.FindPeriodByID(ctx, organizationID, periodID); err != nil {
		return nil, err
	}

	rows, err := s.reportingRepo.TrialBalance(ctx, organizationID, periodID)
	if err != nil {
		return nil, apperrors.Wrap("failed to aggregate trial balance", err)
	}

	resp := &dto.TrialBalanceResponse{
		PeriodID: periodID,
		Rows:     make([]dto.TrialBalanceRow, len(rows)),
	}

	totalDebit := domain.ZeroAmount
	totalCredit := domain.ZeroAmount
	for i, row := range rows {
		debit, err := domain.NewAmount(row.TotalDebit)
		if err != nil {
			return nil, err
		}
		credit, err := domain.NewAmount(row.TotalCredit)
		if err != nil {
			return nil, err
		}
		resp.Rows[i] = dto.TrialBalanceRow{
			AccountID:   row.AccountID,
			TotalDebit:  debit.String(),
			TotalCredit: credit.String(),
			Balance:     debit.Sub(credit).String(),
		}
		totalDebit = totalDebit.Add(debit)
		totalCredit = totalCredit.Add(credit)
	}

	resp.TotalDebit = totalDebit.String()
	resp.TotalCredit = totalCredit.String()
	return resp, nil
}
