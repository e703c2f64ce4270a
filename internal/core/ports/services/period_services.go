package services

import (
	"context"
	"time"

	"github.com/accounted-hq/accounted-app/internal/core/domain"
	"github.com/accounted-hq/accounted-app/internal/dto"
)

// PeriodService manages accounting periods and their state machine.
type PeriodService interface {
	// CreatePeriod creates an OPEN period after checking the overlap rule.
	CreatePeriod(ctx context.Context, organizationID string, req dto.CreatePeriodRequest, creatorUserID string) (*domain.Period, error)

	// GetPeriodByID retrieves a period.
	GetPeriodByID(ctx context.Context, organizationID, periodID string) (*domain.Period, error)

	// ListPeriods retrieves all periods of the organization.
	ListPeriods(ctx context.Context, organizationID string) ([]domain.Period, error)

	// ListOpenPeriods retrieves the OPEN periods of the organization.
	ListOpenPeriods(ctx context.Context, organizationID string) ([]domain.Period, error)

	// FindPeriodForPosting resolves the period containing a posting date.
	FindPeriodForPosting(ctx context.Context, organizationID string, postingDate time.Time) (*domain.Period, error)

	// ValidatePeriodForPosting loads the period and fails with PERIOD_CLOSED
	// unless it is OPEN.
	ValidatePeriodForPosting(ctx context.Context, organizationID, periodID string) (*domain.Period, error)

	// StartClosing transitions OPEN -> CLOSING.
	StartClosing(ctx context.Context, organizationID, periodID, userID string) (*domain.Period, error)

	// ClosePeriod transitions CLOSING -> CLOSED.
	ClosePeriod(ctx context.Context, organizationID, periodID, userID string) (*domain.Period, error)

	// ReopenPeriod transitions CLOSING -> OPEN.
	ReopenPeriod(ctx context.Context, organizationID, periodID, userID string) (*domain.Period, error)

	// UpdatePeriod edits an OPEN period, re-checking the overlap rule.
	UpdatePeriod(ctx context.Context, organizationID, periodID string, req dto.UpdatePeriodRequest, userID string) (*domain.Period, error)

	// DeletePeriod removes a period. Fails while any journal references it.
	DeletePeriod(ctx context.Context, organizationID, periodID string) error
}
