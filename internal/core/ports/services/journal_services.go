package services

import (
	"context"
	"time"

	"github.com/accounted-hq/accounted-app/internal/core/domain"
	"github.com/accounted-hq/accounted-app/internal/dto"
)

// JournalService manages draft journals and lookups. Posting and reversal
// are the PostingService's business.
type JournalService interface {
	// CreateDraft validates and persists a new DRAFT journal.
	CreateDraft(ctx context.Context, organizationID string, req dto.CreateJournalRequest, creatorUserID string) (*domain.Journal, error)

	// UpdateDraft edits a DRAFT journal, revalidating the whole aggregate.
	UpdateDraft(ctx context.Context, organizationID, journalID string, req dto.UpdateJournalRequest, userID string) (*domain.Journal, error)

	// DeleteDraft removes a DRAFT journal.
	DeleteDraft(ctx context.Context, organizationID, journalID string) error

	// GetJournalByID retrieves a journal with its lines.
	GetJournalByID(ctx context.Context, organizationID, journalID string) (*domain.Journal, error)

	// GetJournalByNumber retrieves a journal by journal number.
	GetJournalByNumber(ctx context.Context, organizationID, journalNumber string) (*domain.Journal, error)

	// GetJournalByExtUID retrieves a journal by external unique id.
	GetJournalByExtUID(ctx context.Context, organizationID, extUID string) (*domain.Journal, error)

	// ListJournalsByPeriod retrieves the journals of a period.
	ListJournalsByPeriod(ctx context.Context, organizationID, periodID string) ([]domain.Journal, error)

	// ListJournalsByDateRange retrieves journals posted within [from, to].
	ListJournalsByDateRange(ctx context.Context, organizationID string, from, to time.Time) ([]domain.Journal, error)

	// ListJournals retrieves a token-paginated page of journals.
	ListJournals(ctx context.Context, organizationID string, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error)

	// ListDraftsByPeriod retrieves the DRAFT journals of a period.
	ListDraftsByPeriod(ctx context.Context, organizationID, periodID string) ([]domain.Journal, error)

	// CountDraftsInPeriod counts the DRAFT journals of a period.
	CountDraftsInPeriod(ctx context.Context, organizationID, periodID string) (int, error)

	// GetNextJournalNumber returns the next free "{prefix}-NNN" number. An
	// empty prefix selects the "JRN-{currentYear}" default.
	GetNextJournalNumber(ctx context.Context, organizationID, prefix string) (string, error)

	// ValidateForImport dry-runs the createDraft validation over a batch.
	ValidateForImport(ctx context.Context, organizationID string, reqs []dto.CreateJournalRequest) (*dto.ImportValidationResult, error)

	// ImportDrafts validates a batch and persists all of it atomically.
	ImportDrafts(ctx context.Context, organizationID string, reqs []dto.CreateJournalRequest, creatorUserID string) ([]domain.Journal, error)
}

// PostingService runs the posting pipeline and the reversal protocol.
type PostingService interface {
	// PostJournal seals a DRAFT journal: validate, extend the organization's
	// hash chain, commit durably.
	PostJournal(ctx context.Context, organizationID, journalID, postedBy string) (*domain.Journal, error)

	// ReverseJournal posts a mirror journal and marks the original REVERSED,
	// atomically.
	ReverseJournal(ctx context.Context, organizationID, journalID string, req dto.ReverseJournalRequest, userID string) (*domain.Journal, error)
}

// HashService maintains and verifies the per-organization hash chain.
type HashService interface {
	// GetPreviousHash returns the chain tail's hash_self, or the empty hash.
	GetPreviousHash(ctx context.Context, organizationID string) (domain.JournalHash, error)

	// VerifyJournal recomputes one journal's sealed hash.
	VerifyJournal(ctx context.Context, organizationID, journalID string) (bool, error)

	// VerifyOrganizationChain walks the whole chain from genesis.
	VerifyOrganizationChain(ctx context.Context, organizationID string) (*domain.ChainVerification, error)
}

// ReportingService produces read-only aggregations over sealed journals.
type ReportingService interface {
	// TrialBalance aggregates per-account totals for a period.
	TrialBalance(ctx context.Context, organizationID, periodID string) (*dto.TrialBalanceResponse, error)
}
