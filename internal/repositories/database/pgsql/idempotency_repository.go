package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/accounted-hq/accounted-app/internal/apperrors"
	portsrepo "github.com/accounted-hq/accounted-app/internal/core/ports/repositories"
)

// PgxIdempotencyRepository stores idempotency reservations for the API
// surface.
type PgxIdempotencyRepository struct {
	BaseRepository
}

// newPgxIdempotencyRepository creates a new repository for idempotency keys.
func newPgxIdempotencyRepository(pool *pgxpool.Pool) portsrepo.IdempotencyRepository {
	return &PgxIdempotencyRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.IdempotencyRepository = (*PgxIdempotencyRepository)(nil)

// FindKey returns the record for (organization, key); expired records are
// treated as absent.
func (r *PgxIdempotencyRepository) FindKey(ctx context.Context, organizationID, key string) (*portsrepo.IdempotencyRecord, error) {
	query := `
		SELECT organization_id, idempotency_key, request_hash, response_status, response_body, created_at, expires_at
		FROM idempotency_keys
		WHERE organization_id = $1 AND idempotency_key = $2 AND expires_at > now();
	`
	var record *portsrepo.IdempotencyRecord
	err := r.withTenant(ctx, organizationID, func(tx pgx.Tx) error {
		var rec portsrepo.IdempotencyRecord
		err := tx.QueryRow(ctx, query, organizationID, key).Scan(
			&rec.OrganizationID,
			&rec.Key,
			&rec.RequestHash,
			&rec.ResponseStatus,
			&rec.ResponseBody,
			&rec.CreatedAt,
			&rec.ExpiresAt,
		)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewEntityNotFound("idempotency key", key)
			}
			return apperrors.NewInternal("failed to find idempotency key", err)
		}
		record = &rec
		return nil
	})
	return record, err
}

// SaveKey reserves a key with its request fingerprint and response snapshot.
func (r *PgxIdempotencyRepository) SaveKey(ctx context.Context, record portsrepo.IdempotencyRecord) error {
	query := `
		INSERT INTO idempotency_keys (organization_id, idempotency_key, request_hash, response_status, response_body, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (organization_id, idempotency_key) DO NOTHING;
	`
	return r.withTenant(ctx, record.OrganizationID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			record.OrganizationID,
			record.Key,
			record.RequestHash,
			record.ResponseStatus,
			record.ResponseBody,
			record.CreatedAt,
			record.ExpiresAt,
		)
		if err != nil {
			return apperrors.NewInternal("failed to save idempotency key", err)
		}
		return nil
	})
}

// DeleteExpired removes records past their expiry. Runs outside tenant scope;
// expiry sweeping is an operator concern, not a request concern.
func (r *PgxIdempotencyRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM idempotency_keys WHERE expires_at <= $1;`, now)
	if err != nil {
		return 0, apperrors.NewInternal("failed to sweep expired idempotency keys", err)
	}
	return cmdTag.RowsAffected(), nil
}
