package repositories

import (
	"context"
	"time"

	"github.com/accounted-hq/accounted-app/internal/core/domain"
)

// PeriodReader defines read operations for accounting periods. Every method
// is tenant-scoped: rows of other organizations are never observable.
type PeriodReader interface {
	// FindPeriodByID retrieves a period by id within the organization.
	FindPeriodByID(ctx context.Context, organizationID, periodID string) (*domain.Period, error)

	// FindPeriodsByOrganization retrieves all periods of the organization,
	// ordered by start date.
	FindPeriodsByOrganization(ctx context.Context, organizationID string) ([]domain.Period, error)

	// FindPeriodByDate retrieves the period whose interval contains the date.
	FindPeriodByDate(ctx context.Context, organizationID string, date time.Time) (*domain.Period, error)

	// FindOpenPeriods retrieves all OPEN periods of the organization.
	FindOpenPeriods(ctx context.Context, organizationID string) ([]domain.Period, error)

	// FindOverlappingPeriods retrieves periods intersecting [start, end]
	// (closed-interval test), optionally excluding one period id.
	FindOverlappingPeriods(ctx context.Context, organizationID string, start, end time.Time, excludePeriodID *string) ([]domain.Period, error)
}

// PeriodWriter defines write operations for accounting periods.
type PeriodWriter interface {
	// SavePeriod inserts a new period.
	SavePeriod(ctx context.Context, period domain.Period) error

	// UpdatePeriod updates an existing period.
	UpdatePeriod(ctx context.Context, period domain.Period) error

	// DeletePeriod removes a period. Fails if any journal references it.
	DeletePeriod(ctx context.Context, organizationID, periodID string) error
}

// PeriodRepository combines all period repository interfaces.
type PeriodRepository interface {
	PeriodReader
	PeriodWriter
}
