package repositories

import (
	"context"
	"time"
)

// IdempotencyRecord is a reserved idempotency key with the fingerprint of the
// request that reserved it and a snapshot of the response it produced.
type IdempotencyRecord struct {
	OrganizationID string
	Key            string
	RequestHash    string
	ResponseStatus int
	ResponseBody   []byte
	CreatedAt      time.Time
	ExpiresAt      time.Time
}

// IdempotencyRepository stores idempotency reservations for the API surface.
// Keys are retained for 30 days; the store is consulted before the core is
// invoked and written after it responds.
type IdempotencyRepository interface {
	// FindKey returns the record for (organization, key), or ErrNotFound.
	// Expired records are treated as absent.
	FindKey(ctx context.Context, organizationID, key string) (*IdempotencyRecord, error)

	// SaveKey reserves a key with its request fingerprint and response.
	SaveKey(ctx context.Context, record IdempotencyRecord) error

	// DeleteExpired removes records past their expiry. Returns the number of
	// rows removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
