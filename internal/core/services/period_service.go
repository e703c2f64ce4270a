package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/accounted-hq/accounted-app/internal/apperrors"
	"github.com/accounted-hq/accounted-app/internal/core/domain"
	portsrepo "github.com/accounted-hq/accounted-app/internal/core/ports/repositories"
	portssvc "github.com/accounted-hq/accounted-app/internal/core/ports/services"
	"github.com/accounted-hq/accounted-app/internal/dto"
	"github.com/accounted-hq/accounted-app/internal/middleware"
)

// periodService provides accounting period operations.
type periodService struct {
	periodRepo portsrepo.PeriodRepository
	clock      Clock
	idGen      IDGenerator
}

// NewPeriodService creates a new PeriodService.
func NewPeriodService(periodRepo portsrepo.PeriodRepository, clock Clock, idGen IDGenerator) portssvc.PeriodService {
	return &periodService{
		periodRepo: periodRepo,
		clock:      clock,
		idGen:      idGen,
	}
}

var _ portssvc.PeriodService = (*periodService)(nil)

// CreatePeriod creates an OPEN period after validating the interval and the
// no-overlap rule.
func (s *periodService) CreatePeriod(ctx context.Context, organizationID string, req dto.CreatePeriodRequest, creatorUserID string) (*domain.Period, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := s.clock.Now()
	period := domain.Period{
		PeriodID:       s.idGen.NewID(),
		OrganizationID: organizationID,
		Name:           req.Name,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Status:         domain.PeriodOpen,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := period.Validate(); err != nil {
		return nil, err
	}

	if err := s.checkOverlap(ctx, organizationID, req.StartDate, req.EndDate, nil); err != nil {
		return nil, err
	}

	if err := s.periodRepo.SavePeriod(ctx, period); err != nil {
		logger.Error("Failed to save period", slog.String("error", err.Error()))
		return nil, apperrors.Wrap("failed to save period", err)
	}

	logger.Info("Period created", slog.String("period_id", period.PeriodID), slog.String("name", period.Name))
	return &period, nil
}

// GetPeriodByID retrieves a period within the organization.
func (s *periodService) GetPeriodByID(ctx context.Context, organizationID, periodID string) (*domain.Period, error) {
	period, err := s.periodRepo.FindPeriodByID(ctx, organizationID, periodID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to find period", slog.String("period_id", periodID), slog.String("error", err.Error()))
		}
		return nil, err
	}
	return period, nil
}

// ListPeriods retrieves all periods of the organization.
func (s *periodService) ListPeriods(ctx context.Context, organizationID string) ([]domain.Period, error) {
	periods, err := s.periodRepo.FindPeriodsByOrganization(ctx, organizationID)
	if err != nil {
		return nil, apperrors.Wrap("failed to list periods", err)
	}
	return periods, nil
}

// ListOpenPeriods retrieves the OPEN periods of the organization.
func (s *periodService) ListOpenPeriods(ctx context.Context, organizationID string) ([]domain.Period, error) {
	periods, err := s.periodRepo.FindOpenPeriods(ctx, organizationID)
	if err != nil {
		return nil, apperrors.Wrap("failed to list open periods", err)
	}
	return periods, nil
}

// DeletePeriod removes a period. The storage layer refuses while any journal
// references it.
func (s *periodService) DeletePeriod(ctx context.Context, organizationID, periodID string) error {
	if _, err := s.GetPeriodByID(ctx, organizationID, periodID); err != nil {
		return err
	}
	if err := s.periodRepo.DeletePeriod(ctx, organizationID, periodID); err != nil {
		return err
	}
	middleware.GetLoggerFromCtx(ctx).Info("Period deleted", slog.String("period_id", periodID))
	return nil
}

// FindPeriodForPosting resolves the period containing a posting date.
func (s *periodService) FindPeriodForPosting(ctx context.Context, organizationID string, postingDate time.Time) (*domain.Period, error) {
	period, err := s.periodRepo.FindPeriodByDate(ctx, organizationID, postingDate)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewBusinessRuleViolation(
				fmt.Sprintf("no period covers posting date %s", postingDate.Format("2006-01-02")),
				map[string]any{"postingDate": postingDate.Format("2006-01-02")})
		}
		return nil, err
	}
	return period, nil
}

// ValidatePeriodForPosting loads the period and fails with PERIOD_CLOSED
// unless it is OPEN.
func (s *periodService) ValidatePeriodForPosting(ctx context.Context, organizationID, periodID string) (*domain.Period, error) {
	period, err := s.GetPeriodByID(ctx, organizationID, periodID)
	if err != nil {
		return nil, err
	}
	if !period.IsOpen() {
		return nil, apperrors.NewPeriodClosed(period.PeriodID, string(period.Status))
	}
	return period, nil
}

// StartClosing transitions OPEN -> CLOSING.
func (s *periodService) StartClosing(ctx context.Context, organizationID, periodID, userID string) (*domain.Period, error) {
	return s.transition(ctx, organizationID, periodID, userID, (*domain.Period).StartClosing)
}

// ClosePeriod transitions CLOSING -> CLOSED.
func (s *periodService) ClosePeriod(ctx context.Context, organizationID, periodID, userID string) (*domain.Period, error) {
	return s.transition(ctx, organizationID, periodID, userID, (*domain.Period).Close)
}

// ReopenPeriod transitions CLOSING -> OPEN.
func (s *periodService) ReopenPeriod(ctx context.Context, organizationID, periodID, userID string) (*domain.Period, error) {
	return s.transition(ctx, organizationID, periodID, userID, (*domain.Period).Reopen)
}

func (s *periodService) transition(ctx context.Context, organizationID, periodID, userID string, apply func(*domain.Period, string, time.Time) error) (*domain.Period, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	period, err := s.GetPeriodByID(ctx, organizationID, periodID)
	if err != nil {
		return nil, err
	}

	if err := apply(period, userID, s.clock.Now()); err != nil {
		return nil, err
	}

	if err := s.periodRepo.UpdatePeriod(ctx, *period); err != nil {
		logger.Error("Failed to persist period transition", slog.String("period_id", periodID), slog.String("error", err.Error()))
		return nil, apperrors.Wrap("failed to persist period transition", err)
	}

	logger.Info("Period transitioned", slog.String("period_id", periodID), slog.String("status", string(period.Status)))
	return period, nil
}

// UpdatePeriod edits an OPEN period, re-checking interval validity and the
// overlap rule against all other periods.
func (s *periodService) UpdatePeriod(ctx context.Context, organizationID, periodID string, req dto.UpdatePeriodRequest, userID string) (*domain.Period, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	period, err := s.GetPeriodByID(ctx, organizationID, periodID)
	if err != nil {
		return nil, err
	}

	if !period.IsOpen() {
		return nil, apperrors.NewBusinessRuleViolation(
			fmt.Sprintf("period %s is %s, only OPEN periods can be edited", periodID, period.Status),
			map[string]any{"periodId": periodID, "status": string(period.Status)})
	}

	updated := false
	if req.Name != nil {
		period.Name = *req.Name
		updated = true
	}
	if req.StartDate != nil {
		period.StartDate = *req.StartDate
		updated = true
	}
	if req.EndDate != nil {
		period.EndDate = *req.EndDate
		updated = true
	}
	if !updated {
		return period, nil
	}

	if err := period.Validate(); err != nil {
		return nil, err
	}

	if err := s.checkOverlap(ctx, organizationID, period.StartDate, period.EndDate, &periodID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	period.LastUpdatedAt = now
	period.LastUpdatedBy = userID

	if err := s.periodRepo.UpdatePeriod(ctx, *period); err != nil {
		logger.Error("Failed to update period", slog.String("period_id", periodID), slog.String("error", err.Error()))
		return nil, apperrors.Wrap("failed to update period", err)
	}

	logger.Info("Period updated", slog.String("period_id", periodID))
	return period, nil
}

// checkOverlap rejects intervals that intersect any other period of the
// organization (closed-interval test).
func (s *periodService) checkOverlap(ctx context.Context, organizationID string, start, end time.Time, excludePeriodID *string) error {
	overlapping, err := s.periodRepo.FindOverlappingPeriods(ctx, organizationID, start, end, excludePeriodID)
	if err != nil {
		return apperrors.Wrap("failed to check period overlap", err)
	}
	if len(overlapping) == 0 {
		return nil
	}

	ids := make([]string, len(overlapping))
	for i := range overlapping {
		ids[i] = overlapping[i].PeriodID
	}
	return apperrors.NewBusinessRuleViolation(
		fmt.Sprintf("period interval overlaps %d existing period(s)", len(ids)),
		map[string]any{"overlappingPeriods": ids})
}
