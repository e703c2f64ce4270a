package pgsql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/accounted-hq/accounted-app/internal/apperrors"
)

// BaseRepository provides common functionality for all repositories. Every
// statement runs inside a transaction carrying the tenant binding: the
// binding is set with set_config(..., true) so it dies with the transaction
// on both the commit and rollback paths. Row-level-security policies on
// every table enforce that a transaction observes exactly one organization.
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// tenantSettingName is the session setting the RLS policies filter on.
const tenantSettingName = "app.current_org"

// BeginTenantTx starts a transaction scoped to one organization.
func (r *BaseRepository) BeginTenantTx(ctx context.Context, organizationID string) (pgx.Tx, error) {
	if organizationID == "" {
		return nil, apperrors.NewValidationFailed("organization id is required for every storage call", nil)
	}
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewInternal("failed to begin transaction", err)
	}
	if _, err := tx.Exec(ctx, `SELECT set_config($1, $2, true)`, tenantSettingName, organizationID); err != nil {
		_ = tx.Rollback(ctx)
		return nil, apperrors.NewInternal("failed to establish tenant binding", err)
	}
	return tx, nil
}

// Commit commits a transaction.
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewInternal("failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction. Safe after Commit.
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) && !errors.Is(err, sql.ErrTxDone) {
		return apperrors.NewInternal("failed to rollback transaction", err)
	}
	return nil
}

// withTenant runs fn inside a tenant-scoped transaction, committing on
// success and rolling back on any error. This is the scoped-acquisition
// helper every single-shot repository method goes through.
func (r *BaseRepository) withTenant(ctx context.Context, organizationID string, fn func(tx pgx.Tx) error) error {
	tx, err := r.BeginTenantTx(ctx, organizationID)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}
