package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager defines methods for transaction management. Every
// transaction is bound to one organization: the implementation establishes
// the tenant binding when the transaction begins and tears it down when the
// transaction ends, on both the commit and rollback paths.
type TransactionManager interface {
	// BeginTenantTx starts a transaction scoped to the given organization.
	BeginTenantTx(ctx context.Context, organizationID string) (pgx.Tx, error)

	// Commit commits a transaction.
	Commit(ctx context.Context, tx pgx.Tx) error

	// Rollback rolls back a transaction. Safe to call after Commit.
	Rollback(ctx context.Context, tx pgx.Tx) error
}
