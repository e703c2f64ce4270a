package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/accounted-hq/accounted-app/internal/core/domain"
)

// ChainCursor marks a position in an organization's canonical chain order
// (posted_at ascending, then journal_number ascending). Used by the
// verification walk to scan in bounded batches.
type ChainCursor struct {
	PostedAt      time.Time
	JournalNumber string
}

// JournalReader defines tenant-scoped read operations for journals. Journals
// are always loaded with their full line set.
type JournalReader interface {
	// FindJournalByID retrieves a journal and its lines.
	FindJournalByID(ctx context.Context, organizationID, journalID string) (*domain.Journal, error)

	// FindJournalByNumber retrieves a journal by its journal number.
	FindJournalByNumber(ctx context.Context, organizationID, journalNumber string) (*domain.Journal, error)

	// FindJournalByExtUID retrieves a journal by its external unique id.
	FindJournalByExtUID(ctx context.Context, organizationID, extUID string) (*domain.Journal, error)

	// FindJournalsByPeriod retrieves all journals booked in a period.
	FindJournalsByPeriod(ctx context.Context, organizationID, periodID string) ([]domain.Journal, error)

	// FindJournalsByDateRange retrieves journals whose posting date falls in
	// [from, to].
	FindJournalsByDateRange(ctx context.Context, organizationID string, from, to time.Time) ([]domain.Journal, error)

	// FindPostedJournalsChronological returns sealed (POSTED or REVERSED)
	// journals in canonical chain order, starting after the cursor, at most
	// limit rows. A nil cursor starts at the chain head.
	FindPostedJournalsChronological(ctx context.Context, organizationID string, after *ChainCursor, limit int) ([]domain.Journal, error)

	// FindLastPostedJournal returns the current chain tail, or ErrNotFound
	// when the organization has no sealed journals.
	FindLastPostedJournal(ctx context.Context, organizationID string) (*domain.Journal, error)

	// FindDraftJournalsByPeriod retrieves the DRAFT journals of a period.
	FindDraftJournalsByPeriod(ctx context.Context, organizationID, periodID string) ([]domain.Journal, error)

	// ExistsByJournalNumber reports whether a journal number is taken.
	ExistsByJournalNumber(ctx context.Context, organizationID, journalNumber string) (bool, error)

	// ExistsByExtUID reports whether an external uid is taken.
	ExistsByExtUID(ctx context.Context, organizationID, extUID string) (bool, error)

	// CountDraftJournalsInPeriod counts DRAFT journals in a period.
	CountDraftJournalsInPeriod(ctx context.Context, organizationID, periodID string) (int, error)

	// ListJournals retrieves a token-paginated page of journals, newest
	// posting date first.
	ListJournals(ctx context.Context, organizationID string, limit int, nextToken *string) ([]domain.Journal, *string, error)

	// GetNextJournalNumber returns the next free number in the
	// "{prefix}-NNN" series for the organization.
	GetNextJournalNumber(ctx context.Context, organizationID, prefix string) (string, error)
}

// JournalWriter defines tenant-scoped write operations for journals. The
// journal row and its full line set are always written atomically. Updates
// are restricted at the storage layer to DRAFT rows; the reversal-linkage
// transition is the single narrow exception.
type JournalWriter interface {
	// SaveJournal inserts a journal and its lines.
	SaveJournal(ctx context.Context, journal domain.Journal) error

	// SaveJournals persists several journals in one transaction: new ids are
	// inserted, existing DRAFT rows are replaced, and a POSTED row may only
	// transition to REVERSED metadata. Nothing is written on any failure.
	SaveJournals(ctx context.Context, organizationID string, journals []domain.Journal) error

	// UpdateJournal replaces a DRAFT journal and its lines. Returns
	// ErrJournalPosted when the stored row is no longer a draft.
	UpdateJournal(ctx context.Context, journal domain.Journal) error

	// DeleteJournal removes a DRAFT journal and its lines.
	DeleteJournal(ctx context.Context, organizationID, journalID string) error
}

// JournalPoster defines the transaction-bound steps of the posting pipeline.
// The caller owns the transaction; all steps run under the per-organization
// posting lock so chain-head reads and writes serialize.
type JournalPoster interface {
	// AcquirePostingLock takes the per-organization advisory lock for the
	// lifetime of the transaction.
	AcquirePostingLock(ctx context.Context, tx pgx.Tx, organizationID string) error

	// FindLastPostedJournalTx reads the chain tail inside the transaction.
	FindLastPostedJournalTx(ctx context.Context, tx pgx.Tx, organizationID string) (*domain.Journal, error)

	// MarkJournalPostedTx transitions a DRAFT row to POSTED with its sealed
	// hashes. Fails with ErrJournalPosted when the row is not a draft.
	MarkJournalPostedTx(ctx context.Context, tx pgx.Tx, journal domain.Journal) error

	// InsertJournalTx inserts a journal and its lines inside the transaction.
	InsertJournalTx(ctx context.Context, tx pgx.Tx, journal domain.Journal) error

	// MarkJournalReversedTx records the reversal linkage on a POSTED row
	// without touching its sealed hash.
	MarkJournalReversedTx(ctx context.Context, tx pgx.Tx, journal domain.Journal) error
}

// JournalRepository combines all journal repository interfaces.
type JournalRepository interface {
	JournalReader
	JournalWriter
	JournalPoster
	TransactionManager
}
