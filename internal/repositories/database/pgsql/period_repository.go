package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/accounted-hq/accounted-app/internal/apperrors"
	"github.com/accounted-hq/accounted-app/internal/core/domain"
	portsrepo "github.com/accounted-hq/accounted-app/internal/core/ports/repositories"
	"github.com/accounted-hq/accounted-app/internal/models"
	"github.com/accounted-hq/accounted-app/internal/utils/mapping"
)

// PgxPeriodRepository persists accounting periods.
type PgxPeriodRepository struct {
	BaseRepository
}

// newPgxPeriodRepository creates a new repository for period data.
func newPgxPeriodRepository(pool *pgxpool.Pool) portsrepo.PeriodRepository {
	return &PgxPeriodRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.PeriodRepository = (*PgxPeriodRepository)(nil)

const periodColumns = `
	period_id, organization_id, name, start_date, end_date, status,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanPeriod(row pgx.Row) (*models.Period, error) {
	var m models.Period
	err := row.Scan(
		&m.PeriodID,
		&m.OrganizationID,
		&m.Name,
		&m.StartDate,
		&m.EndDate,
		&m.Status,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func scanPeriods(rows pgx.Rows) ([]models.Period, error) {
	defer rows.Close()
	periods := []models.Period{}
	for rows.Next() {
		m, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, *m)
	}
	return periods, rows.Err()
}

// FindPeriodByID retrieves a period within the organization.
func (r *PgxPeriodRepository) FindPeriodByID(ctx context.Context, organizationID, periodID string) (*domain.Period, error) {
	query := `SELECT ` + periodColumns + ` FROM periods WHERE organization_id = $1 AND period_id = $2;`

	var period *domain.Period
	err := r.withTenant(ctx, organizationID, func(tx pgx.Tx) error {
		m, err := scanPeriod(tx.QueryRow(ctx, query, organizationID, periodID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewEntityNotFound("period", periodID)
			}
			return apperrors.NewInternal("failed to find period by id "+periodID, err)
		}
		p := mapping.ToDomainPeriod(*m)
		period = &p
		return nil
	})
	return period, err
}

// FindPeriodsByOrganization retrieves all periods ordered by start date.
func (r *PgxPeriodRepository) FindPeriodsByOrganization(ctx context.Context, organizationID string) ([]domain.Period, error) {
	query := `SELECT ` + periodColumns + ` FROM periods WHERE organization_id = $1 ORDER BY start_date;`

	var periods []domain.Period
	err := r.withTenant(ctx, organizationID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, organizationID)
		if err != nil {
			return apperrors.NewInternal("failed to query periods", err)
		}
		ms, err := scanPeriods(rows)
		if err != nil {
			return apperrors.NewInternal("failed to scan period rows", err)
		}
		periods = mapping.ToDomainPeriodSlice(ms)
		return nil
	})
	return periods, err
}

// FindPeriodByDate retrieves the period whose interval contains the date.
func (r *PgxPeriodRepository) FindPeriodByDate(ctx context.Context, organizationID string, date time.Time) (*domain.Period, error) {
	query := `SELECT ` + periodColumns + ` FROM periods
		WHERE organization_id = $1 AND start_date <= $2 AND end_date >= $2;`

	var period *domain.Period
	err := r.withTenant(ctx, organizationID, func(tx pgx.Tx) error {
		m, err := scanPeriod(tx.QueryRow(ctx, query, organizationID, date))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewEntityNotFound("period", date.Format("2006-01-02"))
			}
			return apperrors.NewInternal("failed to find period by date", err)
		}
		p := mapping.ToDomainPeriod(*m)
		period = &p
		return nil
	})
	return period, err
}

// FindOpenPeriods retrieves all OPEN periods of the organization.
func (r *PgxPeriodRepository) FindOpenPeriods(ctx context.Context, organizationID string) ([]domain.Period, error) {
	query := `SELECT ` + periodColumns + ` FROM periods
		WHERE organization_id = $1 AND status = 'OPEN' ORDER BY start_date;`

	var periods []domain.Period
	err := r.withTenant(ctx, organizationID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, organizationID)
		if err != nil {
			return apperrors.NewInternal("failed to query open periods", err)
		}
		ms, err := scanPeriods(rows)
		if err != nil {
			return apperrors.NewInternal("failed to scan open period rows", err)
		}
		periods = mapping.ToDomainPeriodSlice(ms)
		return nil
	})
	return periods, err
}

// FindOverlappingPeriods retrieves periods intersecting [start, end] with the
// closed-interval test, optionally excluding one period id.
func (r *PgxPeriodRepository) FindOverlappingPeriods(ctx context.Context, organizationID string, start, end time.Time, excludePeriodID *string) ([]domain.Period, error) {
	query := `SELECT ` + periodColumns + ` FROM periods
		WHERE organization_id = $1 AND start_date <= $3 AND $2 <= end_date
		  AND ($4::text IS NULL OR period_id <> $4)
		ORDER BY start_date;`

	var periods []domain.Period
	err := r.withTenant(ctx, organizationID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, organizationID, start, end, excludePeriodID)
		if err != nil {
			return apperrors.NewInternal("failed to query overlapping periods", err)
		}
		ms, err := scanPeriods(rows)
		if err != nil {
			return apperrors.NewInternal("failed to scan overlapping period rows", err)
		}
		periods = mapping.ToDomainPeriodSlice(ms)
		return nil
	})
	return periods, err
}

// SavePeriod inserts a new period.
func (r *PgxPeriodRepository) SavePeriod(ctx context.Context, period domain.Period) error {
	m := mapping.ToModelPeriod(period)
	query := `
		INSERT INTO periods (
			period_id, organization_id, name, start_date, end_date, status,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	return r.withTenant(ctx, period.OrganizationID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			m.PeriodID,
			m.OrganizationID,
			m.Name,
			m.StartDate,
			m.EndDate,
			m.Status,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
		if err != nil {
			return apperrors.NewInternal("failed to insert period "+m.PeriodID, err)
		}
		return nil
	})
}

// UpdatePeriod updates an existing period.
func (r *PgxPeriodRepository) UpdatePeriod(ctx context.Context, period domain.Period) error {
	m := mapping.ToModelPeriod(period)
	query := `
		UPDATE periods
		SET name = $3,
		    start_date = $4,
		    end_date = $5,
		    status = $6,
		    last_updated_at = $7,
		    last_updated_by = $8
		WHERE organization_id = $1 AND period_id = $2;
	`
	return r.withTenant(ctx, period.OrganizationID, func(tx pgx.Tx) error {
		cmdTag, err := tx.Exec(ctx, query,
			m.OrganizationID,
			m.PeriodID,
			m.Name,
			m.StartDate,
			m.EndDate,
			m.Status,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
		if err != nil {
			return apperrors.NewInternal("failed to update period "+m.PeriodID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.NewEntityNotFound("period", m.PeriodID)
		}
		return nil
	})
}

// DeletePeriod removes a period. The foreign key from journals makes
// deleting a period with journals fail; that failure surfaces as a business
// rule violation.
func (r *PgxPeriodRepository) DeletePeriod(ctx context.Context, organizationID, periodID string) error {
	query := `DELETE FROM periods WHERE organization_id = $1 AND period_id = $2;`

	return r.withTenant(ctx, organizationID, func(tx pgx.Tx) error {
		cmdTag, err := tx.Exec(ctx, query, organizationID, periodID)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
				return apperrors.NewBusinessRuleViolation(
					"period has journals and cannot be deleted",
					map[string]any{"periodId": periodID})
			}
			return apperrors.NewInternal("failed to delete period "+periodID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.NewEntityNotFound("period", periodID)
		}
		return nil
	})
}
