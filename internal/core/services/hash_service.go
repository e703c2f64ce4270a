package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/accounted-hq/accounted-app/internal/apperrors"
	"github.com/accounted-hq/accounted-app/internal/core/domain"
	portsrepo "github.com/accounted-hq/accounted-app/internal/core/ports/repositories"
	portssvc "github.com/accounted-hq/accounted-app/internal/core/ports/services"
	"github.com/accounted-hq/accounted-app/internal/middleware"
)

// defaultChainBatchSize bounds one repository round trip of the chain walk.
const defaultChainBatchSize = 500

// hashService maintains and verifies per-organization hash chains.
type hashService struct {
	journalRepo portsrepo.JournalRepository
	batchSize   int
}

// NewHashService creates a new HashService. batchSize <= 0 selects the
// default.
func NewHashService(journalRepo portsrepo.JournalRepository, batchSize int) portssvc.HashService {
	if batchSize <= 0 {
		batchSize = defaultChainBatchSize
	}
	return &hashService{
		journalRepo: journalRepo,
		batchSize:   batchSize,
	}
}

var _ portssvc.HashService = (*hashService)(nil)

// GetPreviousHash returns the hash_self of the organization's chain tail, or
// the empty hash when no journal has been posted yet.
func (s *hashService) GetPreviousHash(ctx context.Context, organizationID string) (domain.JournalHash, error) {
	tail, err := s.journalRepo.FindLastPostedJournal(ctx, organizationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.EmptyHash, nil
		}
		return domain.EmptyHash, apperrors.Wrap("failed to read chain tail", err)
	}
	return tail.HashSelf, nil
}

// VerifyJournal recomputes one journal's hash from its stored fields and
// compares it with the sealed hash_self.
func (s *hashService) VerifyJournal(ctx context.Context, organizationID, journalID string) (bool, error) {
	journal, err := s.journalRepo.FindJournalByID(ctx, organizationID, journalID)
	if err != nil {
		return false, err
	}
	if !journal.IsSealed() {
		return false, apperrors.NewBusinessRuleViolation(
			"journal carries no sealed hash; only posted or reversed journals can be verified",
			map[string]any{"journalId": journalID, "status": string(journal.Status)})
	}
	return journal.VerifyHash(), nil
}

// VerifyOrganizationChain walks the chronological sequence of sealed
// journals in bounded batches, verifying each node's hash and each link to
// its predecessor. The walk holds only the running previous hash; memory use
// is independent of chain length.
func (s *hashService) VerifyOrganizationChain(ctx context.Context, organizationID string) (*domain.ChainVerification, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	result := &domain.ChainVerification{
		IsValid:           true,
		InvalidJournalIDs: []string{},
	}

	prevHash := domain.EmptyHash
	var cursor *portsrepo.ChainCursor

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		batch, err := s.journalRepo.FindPostedJournalsChronological(ctx, organizationID, cursor, s.batchSize)
		if err != nil {
			return nil, apperrors.Wrap("failed to scan chain batch", err)
		}
		if len(batch) == 0 {
			break
		}

		for i := range batch {
			j := &batch[i]
			result.TotalJournals++

			if !j.VerifyHash() {
				result.IsValid = false
				result.InvalidJournalIDs = append(result.InvalidJournalIDs, j.JournalID)
			}

			if j.HashPrev != prevHash && result.BrokenChainAt == nil {
				result.IsValid = false
				id := j.JournalID
				result.BrokenChainAt = &id
			}

			prevHash = j.HashSelf
		}

		last := batch[len(batch)-1]
		if last.PostedAt == nil {
			return nil, apperrors.NewInvalidHashChain(
				"sealed journal without posted_at encountered during chain walk",
				map[string]any{"journalId": last.JournalID})
		}
		cursor = &portsrepo.ChainCursor{
			PostedAt:      *last.PostedAt,
			JournalNumber: last.JournalNumber,
		}

		if len(batch) < s.batchSize {
			break
		}
	}

	if !result.IsValid {
		logger.Warn("Hash chain verification failed",
			slog.Int("total", result.TotalJournals),
			slog.Int("invalid", len(result.InvalidJournalIDs)))
	}
	return result, nil
}
