package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/accounted-hq/accounted-app/internal/apperrors"
	"github.com/accounted-hq/accounted-app/internal/core/domain"
	portsrepo "github.com/accounted-hq/accounted-app/internal/core/ports/repositories"
	portssvc "github.com/accounted-hq/accounted-app/internal/core/ports/services"
	"github.com/accounted-hq/accounted-app/internal/dto"
	"github.com/accounted-hq/accounted-app/internal/middleware"
)

// maxReversalWindow is the longest allowed gap between an original posting
// date and its reversal date.
const maxReversalWindow = 365 * 24 * time.Hour

// postingRetries bounds the backoff retry of a posting transaction that lost
// a storage-level race.
const postingRetries = 3

// postingService seals draft journals into the per-organization hash chain
// and runs the reversal protocol.
type postingService struct {
	journalRepo portsrepo.JournalRepository
	periodSvc   portssvc.PeriodService
	clock       Clock
	idGen       IDGenerator
}

// NewPostingService creates a new PostingService.
func NewPostingService(journalRepo portsrepo.JournalRepository, periodSvc portssvc.PeriodService, clock Clock, idGen IDGenerator) portssvc.PostingService {
	return &postingService{
		journalRepo: journalRepo,
		periodSvc:   periodSvc,
		clock:       clock,
		idGen:       idGen,
	}
}

var _ portssvc.PostingService = (*postingService)(nil)

// retryPosting runs op with a bounded exponential backoff. Domain failures
// are permanent; only infrastructure errors (lock timeouts, serialization
// conflicts) are retried.
func (s *postingService) retryPosting(ctx context.Context, op func() error) error {
	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code != apperrors.CodeInternal {
			return backoff.Permanent(err)
		}
		return err
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), postingRetries), ctx)
	return backoff.Retry(wrapped, policy)
}

// PostJournal runs the posting pipeline: load and revalidate the draft,
// re-check uniqueness, require an open period, then — under the
// per-organization posting lock — read the chain tail, seal the journal and
// commit the transition. Either the transaction commits whole or nothing is
// written.
func (s *postingService) PostJournal(ctx context.Context, organizationID, journalID, postedBy string) (*domain.Journal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	journal, err := s.journalRepo.FindJournalByID(ctx, organizationID, journalID)
	if err != nil {
		return nil, err
	}
	if journal.Status != domain.Draft {
		return nil, apperrors.NewJournalAlreadyPosted(journalID, string(journal.Status))
	}

	if err := journal.Validate(); err != nil {
		return nil, err
	}

	// Another writer may have claimed the number or ext uid since the draft
	// was created.
	if other, err := s.journalRepo.FindJournalByNumber(ctx, organizationID, journal.JournalNumber); err == nil && other.JournalID != journal.JournalID {
		return nil, apperrors.NewBusinessRuleViolation(
			fmt.Sprintf("journal number %s already exists", journal.JournalNumber),
			map[string]any{"journalNumber": journal.JournalNumber})
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.Wrap("failed to re-check journal number uniqueness", err)
	}
	if journal.ExtUID != nil && *journal.ExtUID != "" {
		if other, err := s.journalRepo.FindJournalByExtUID(ctx, organizationID, *journal.ExtUID); err == nil && other.JournalID != journal.JournalID {
			return nil, apperrors.NewBusinessRuleViolation(
				fmt.Sprintf("external uid %s already exists", *journal.ExtUID),
				map[string]any{"extUID": *journal.ExtUID})
		} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Wrap("failed to re-check external uid uniqueness", err)
		}
	}

	period, err := s.periodSvc.ValidatePeriodForPosting(ctx, organizationID, journal.PeriodID)
	if err != nil {
		return nil, err
	}
	if !period.ContainsDate(journal.PostingDate) {
		return nil, apperrors.NewValidationFailed(
			"posting date is outside the period interval",
			map[string]any{
				"postingDate": journal.PostingDate.Format("2006-01-02"),
				"periodStart": period.StartDate.Format("2006-01-02"),
				"periodEnd":   period.EndDate.Format("2006-01-02"),
			})
	}

	var sealed domain.Journal
	err = s.retryPosting(ctx, func() error {
		attempt := *journal
		if err := s.sealAndCommit(ctx, organizationID, &attempt, postedBy); err != nil {
			return err
		}
		sealed = attempt
		return nil
	})
	if err != nil {
		logger.Error("Failed to post journal", slog.String("journal_id", journalID), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Journal posted",
		slog.String("journal_id", sealed.JournalID),
		slog.String("journal_number", sealed.JournalNumber),
		slog.String("hash_self", sealed.HashSelf.String()))
	return &sealed, nil
}

// sealAndCommit performs the chain extension under the per-organization
// posting lock so the tail read and the write serialize against concurrent
// posts.
func (s *postingService) sealAndCommit(ctx context.Context, organizationID string, journal *domain.Journal, postedBy string) error {
	tx, err := s.journalRepo.BeginTenantTx(ctx, organizationID)
	if err != nil {
		return err
	}
	defer s.journalRepo.Rollback(ctx, tx)

	if err := s.journalRepo.AcquirePostingLock(ctx, tx, organizationID); err != nil {
		return err
	}

	prevHash := domain.EmptyHash
	tail, err := s.journalRepo.FindLastPostedJournalTx(ctx, tx, organizationID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	if tail != nil {
		prevHash = tail.HashSelf
	}

	if err := journal.Seal(prevHash, postedBy, s.clock.Now()); err != nil {
		return err
	}

	if err := s.journalRepo.MarkJournalPostedTx(ctx, tx, *journal); err != nil {
		return err
	}

	return s.journalRepo.Commit(ctx, tx)
}

// ReverseJournal posts a mirror journal and marks the original REVERSED in
// one transaction. The original's sealed hash is never recomputed; the
// REVERSED marker and linkage live outside the hashed field set.
func (s *postingService) ReverseJournal(ctx context.Context, organizationID, journalID string, req dto.ReverseJournalRequest, userID string) (*domain.Journal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	original, err := s.journalRepo.FindJournalByID(ctx, organizationID, journalID)
	if err != nil {
		return nil, err
	}
	if original.Status != domain.Posted {
		return nil, apperrors.NewBusinessRuleViolation(
			fmt.Sprintf("journal %s is %s, only POSTED journals can be reversed", journalID, original.Status),
			map[string]any{"journalId": journalID, "status": string(original.Status)})
	}
	if original.ReversalJournalID != nil {
		return nil, apperrors.NewBusinessRuleViolation(
			fmt.Sprintf("journal %s has already been reversed", journalID),
			map[string]any{"journalId": journalID, "reversalJournalId": *original.ReversalJournalID})
	}

	if req.ReversalDate.Before(original.PostingDate) {
		return nil, apperrors.NewBusinessRuleViolation(
			"reversal date precedes the original posting date",
			map[string]any{
				"reversalDate":        req.ReversalDate.Format("2006-01-02"),
				"originalPostingDate": original.PostingDate.Format("2006-01-02"),
			})
	}
	if req.ReversalDate.Sub(original.PostingDate) > maxReversalWindow {
		return nil, apperrors.NewBusinessRuleViolation(
			"reversal date exceeds the 365-day window after the original posting date",
			map[string]any{
				"reversalDate":        req.ReversalDate.Format("2006-01-02"),
				"originalPostingDate": original.PostingDate.Format("2006-01-02"),
			})
	}

	reversalPeriod, err := s.periodSvc.FindPeriodForPosting(ctx, organizationID, req.ReversalDate)
	if err != nil {
		return nil, err
	}
	if !reversalPeriod.IsOpen() {
		return nil, apperrors.NewPeriodClosed(reversalPeriod.PeriodID, string(reversalPeriod.Status))
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Reversal of %s", original.JournalNumber)
	}

	now := s.clock.Now()
	mirror := original.BuildReversal(s.idGen.NewID(), s.idGen.NewID, reversalPeriod.PeriodID, description, req.ReversalDate, userID, now)
	if err := mirror.Validate(); err != nil {
		return nil, err
	}

	var sealed domain.Journal
	err = s.retryPosting(ctx, func() error {
		attempt := mirror
		orig := *original
		if err := s.reverseAndCommit(ctx, organizationID, &attempt, &orig, userID); err != nil {
			return err
		}
		sealed = attempt
		return nil
	})
	if err != nil {
		logger.Error("Failed to reverse journal", slog.String("journal_id", journalID), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Journal reversed",
		slog.String("original_journal_id", journalID),
		slog.String("reversal_journal_id", sealed.JournalID))
	return &sealed, nil
}

// reverseAndCommit inserts the sealed mirror first, then updates the
// original's linkage, all under the posting lock in one transaction.
func (s *postingService) reverseAndCommit(ctx context.Context, organizationID string, mirror, original *domain.Journal, userID string) error {
	tx, err := s.journalRepo.BeginTenantTx(ctx, organizationID)
	if err != nil {
		return err
	}
	defer s.journalRepo.Rollback(ctx, tx)

	if err := s.journalRepo.AcquirePostingLock(ctx, tx, organizationID); err != nil {
		return err
	}

	prevHash := domain.EmptyHash
	tail, err := s.journalRepo.FindLastPostedJournalTx(ctx, tx, organizationID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	if tail != nil {
		prevHash = tail.HashSelf
	}

	now := s.clock.Now()
	if err := mirror.Seal(prevHash, userID, now); err != nil {
		return err
	}

	if err := s.journalRepo.InsertJournalTx(ctx, tx, *mirror); err != nil {
		return err
	}

	if err := original.MarkReversed(mirror.JournalID, userID, now); err != nil {
		return err
	}
	if err := s.journalRepo.MarkJournalReversedTx(ctx, tx, *original); err != nil {
		return err
	}

	return s.journalRepo.Commit(ctx, tx)
}
