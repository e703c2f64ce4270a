package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/accounted-hq/accounted-app/internal/apperrors"
	"github.com/accounted-hq/accounted-app/internal/core/domain"
	portsrepo "github.com/accounted-hq/accounted-app/internal/core/ports/repositories"
	portssvc "github.com/accounted-hq/accounted-app/internal/core/ports/services"
	"github.com/accounted-hq/accounted-app/internal/dto"
	"github.com/accounted-hq/accounted-app/internal/middleware"
)

// defaultJournalNumberPrefix yields series like "JRN-2024".
func defaultJournalNumberPrefix(now time.Time) string {
	return fmt.Sprintf("JRN-%d", now.UTC().Year())
}

// journalService provides draft journal operations and lookups.
type journalService struct {
	journalRepo portsrepo.JournalRepository
	periodSvc   portssvc.PeriodService
	clock       Clock
	idGen       IDGenerator
}

// NewJournalService creates a new JournalService.
func NewJournalService(journalRepo portsrepo.JournalRepository, periodSvc portssvc.PeriodService, clock Clock, idGen IDGenerator) portssvc.JournalService {
	return &journalService{
		journalRepo: journalRepo,
		periodSvc:   periodSvc,
		clock:       clock,
		idGen:       idGen,
	}
}

var _ portssvc.JournalService = (*journalService)(nil)

// buildLines converts request lines to domain lines, applying the same-currency
// defaults: a zero exchange rate with a same-currency original defaults to
// 1.000000, and a zero original amount defaults to the booked side.
func (s *journalService) buildLines(journalID, currencyCode string, reqs []dto.CreateJournalLineRequest) ([]domain.JournalLine, error) {
	lines := make([]domain.JournalLine, len(reqs))
	for i, lr := range reqs {
		debit, err := domain.NewAmount(lr.DebitAmount)
		if err != nil {
			return nil, err
		}
		credit, err := domain.NewAmount(lr.CreditAmount)
		if err != nil {
			return nil, err
		}

		rate := lr.ExchangeRate
		if rate.IsZero() && lr.OriginalCurrency == currencyCode {
			rate = decimal.NewFromInt(1)
		}

		original, err := domain.NewAmount(lr.OriginalAmount)
		if err != nil {
			return nil, err
		}
		if original.IsZero() && lr.OriginalCurrency == currencyCode {
			if !debit.IsZero() {
				original = debit
			} else {
				original = credit
			}
		}

		taxAmount, err := domain.NewAmount(lr.TaxAmount)
		if err != nil {
			return nil, err
		}

		lines[i] = domain.JournalLine{
			LineID:         s.idGen.NewID(),
			JournalID:      journalID,
			AccountID:      lr.AccountID,
			LineNumber:     lr.LineNumber,
			Description:    lr.Description,
			DebitAmount:    domain.Money{Amount: debit, Currency: currencyCode},
			CreditAmount:   domain.Money{Amount: credit, Currency: currencyCode},
			OriginalAmount: domain.Money{Amount: original, Currency: lr.OriginalCurrency},
			ExchangeRate:   rate.Round(domain.RateScale),
			TaxCode:        lr.TaxCode,
			TaxAmount:      taxAmount,
			TaxRate:        lr.TaxRate,
		}
	}
	return lines, nil
}

// buildDraft runs the createDraft contract up to (but excluding) persistence
// and returns the validated aggregate.
func (s *journalService) buildDraft(ctx context.Context, organizationID string, req dto.CreateJournalRequest, creatorUserID string) (*domain.Journal, error) {
	period, err := s.periodSvc.ValidatePeriodForPosting(ctx, organizationID, req.PeriodID)
	if err != nil {
		return nil, err
	}

	if !period.ContainsDate(req.PostingDate) {
		return nil, apperrors.NewValidationFailed(
			"posting date is outside the period interval",
			map[string]any{
				"postingDate": req.PostingDate.Format("2006-01-02"),
				"periodStart": period.StartDate.Format("2006-01-02"),
				"periodEnd":   period.EndDate.Format("2006-01-02"),
			})
	}

	journalNumber := req.JournalNumber
	if journalNumber == "" {
		journalNumber, err = s.GetNextJournalNumber(ctx, organizationID, "")
		if err != nil {
			return nil, err
		}
	} else {
		taken, err := s.journalRepo.ExistsByJournalNumber(ctx, organizationID, journalNumber)
		if err != nil {
			return nil, apperrors.Wrap("failed to check journal number uniqueness", err)
		}
		if taken {
			return nil, apperrors.NewBusinessRuleViolation(
				fmt.Sprintf("journal number %s already exists", journalNumber),
				map[string]any{"journalNumber": journalNumber})
		}
	}

	if req.ExtUID != nil && *req.ExtUID != "" {
		taken, err := s.journalRepo.ExistsByExtUID(ctx, organizationID, *req.ExtUID)
		if err != nil {
			return nil, apperrors.Wrap("failed to check external uid uniqueness", err)
		}
		if taken {
			return nil, apperrors.NewBusinessRuleViolation(
				fmt.Sprintf("external uid %s already exists", *req.ExtUID),
				map[string]any{"extUID": *req.ExtUID})
		}
	}

	now := s.clock.Now()
	journalID := s.idGen.NewID()

	lines, err := s.buildLines(journalID, req.CurrencyCode, req.Lines)
	if err != nil {
		return nil, err
	}

	journal := &domain.Journal{
		JournalID:      journalID,
		OrganizationID: organizationID,
		PeriodID:       req.PeriodID,
		JournalNumber:  journalNumber,
		Description:    req.Description,
		Reference:      req.Reference,
		PostingDate:    req.PostingDate,
		Status:         domain.Draft,
		CurrencyCode:   req.CurrencyCode,
		Lines:          lines,
		ExtUID:         req.ExtUID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := journal.Validate(); err != nil {
		return nil, err
	}
	return journal, nil
}

// CreateDraft validates and persists a new DRAFT journal. hash_prev and
// hash_self stay unset until posting.
func (s *journalService) CreateDraft(ctx context.Context, organizationID string, req dto.CreateJournalRequest, creatorUserID string) (*domain.Journal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	journal, err := s.buildDraft(ctx, organizationID, req, creatorUserID)
	if err != nil {
		return nil, err
	}

	if err := s.journalRepo.SaveJournal(ctx, *journal); err != nil {
		logger.Error("Failed to save draft journal", slog.String("error", err.Error()))
		return nil, apperrors.Wrap("failed to save draft journal", err)
	}

	logger.Info("Draft journal created", slog.String("journal_id", journal.JournalID), slog.String("journal_number", journal.JournalNumber))
	return journal, nil
}

// UpdateDraft edits a DRAFT journal and revalidates the whole aggregate.
func (s *journalService) UpdateDraft(ctx context.Context, organizationID, journalID string, req dto.UpdateJournalRequest, userID string) (*domain.Journal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	journal, err := s.GetJournalByID(ctx, organizationID, journalID)
	if err != nil {
		return nil, err
	}
	if journal.Status != domain.Draft {
		return nil, apperrors.NewJournalAlreadyPosted(journalID, string(journal.Status))
	}

	if req.PeriodID != nil {
		journal.PeriodID = *req.PeriodID
	}
	if req.Description != nil {
		journal.Description = *req.Description
	}
	if req.Reference != nil {
		journal.Reference = *req.Reference
	}
	if req.PostingDate != nil {
		journal.PostingDate = *req.PostingDate
	}
	if req.Lines != nil {
		lines, err := s.buildLines(journal.JournalID, journal.CurrencyCode, req.Lines)
		if err != nil {
			return nil, err
		}
		journal.Lines = lines
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

	if err := journal.Validate(); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	journal.LastUpdatedAt = now
	journal.LastUpdatedBy = userID

	if err := s.journalRepo.UpdateJournal(ctx, *journal); err != nil {
		logger.Error("Failed to update draft journal", slog.String("journal_id", journalID), slog.String("error", err.Error()))
		return nil, apperrors.Wrap("failed to update draft journal", err)
	}

	logger.Info("Draft journal updated", slog.String("journal_id", journalID))
	return journal, nil
}

// DeleteDraft removes a DRAFT journal and its lines.
func (s *journalService) DeleteDraft(ctx context.Context, organizationID, journalID string) error {
	journal, err := s.GetJournalByID(ctx, organizationID, journalID)
	if err != nil {
		return err
	}
	if journal.Status != domain.Draft {
		return apperrors.NewJournalAlreadyPosted(journalID, string(journal.Status))
	}
	if err := s.journalRepo.DeleteJournal(ctx, organizationID, journalID); err != nil {
		return apperrors.Wrap("failed to delete draft journal", err)
	}
	middleware.GetLoggerFromCtx(ctx).Info("Draft journal deleted", slog.String("journal_id", journalID))
	return nil
}

// GetJournalByID retrieves a journal with its lines.
func (s *journalService) GetJournalByID(ctx context.Context, organizationID, journalID string) (*domain.Journal, error) {
	journal, err := s.journalRepo.FindJournalByID(ctx, organizationID, journalID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to find journal", slog.String("journal_id", journalID), slog.String("error", err.Error()))
		}
		return nil, err
	}
	return journal, nil
}

// GetJournalByNumber retrieves a journal by journal number.
func (s *journalService) GetJournalByNumber(ctx context.Context, organizationID, journalNumber string) (*domain.Journal, error) {
	return s.journalRepo.FindJournalByNumber(ctx, organizationID, journalNumber)
}

// GetJournalByExtUID retrieves a journal by external unique id.
func (s *journalService) GetJournalByExtUID(ctx context.Context, organizationID, extUID string) (*domain.Journal, error) {
	return s.journalRepo.FindJournalByExtUID(ctx, organizationID, extUID)
}

// ListJournalsByPeriod retrieves the journals of a period.
func (s *journalService) ListJournalsByPeriod(ctx context.Context, organizationID, periodID string) ([]domain.Journal, error) {
	return s.journalRepo.FindJournalsByPeriod(ctx, organizationID, periodID)
}

// ListJournalsByDateRange retrieves journals posted within [from, to].
func (s *journalService) ListJournalsByDateRange(ctx context.Context, organizationID string, from, to time.Time) ([]domain.Journal, error) {
	if to.Before(from) {
		return nil, apperrors.NewValidationFailed("date range end precedes start", map[string]any{
			"from": from.Format("2006-01-02"),
			"to":   to.Format("2006-01-02"),
		})
	}
	return s.journalRepo.FindJournalsByDateRange(ctx, organizationID, from, to)
}

// ListJournals retrieves a token-paginated page of journals.
func (s *journalService) ListJournals(ctx context.Context, organizationID string, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	journals, nextToken, err := s.journalRepo.ListJournals(ctx, organizationID, limit, params.NextToken)
	if err != nil {
		return nil, apperrors.Wrap("failed to list journals", err)
	}

	return &dto.ListJournalsResponse{
		Journals:  dto.ToJournalResponses(journals),
		NextToken: nextToken,
	}, nil
}

// ListDraftsByPeriod retrieves the DRAFT journals of a period.
func (s *journalService) ListDraftsByPeriod(ctx context.Context, organizationID, periodID string) ([]domain.Journal, error) {
	return s.journalRepo.FindDraftJournalsByPeriod(ctx, organizationID, periodID)
}

// CountDraftsInPeriod counts the DRAFT journals of a period.
func (s *journalService) CountDraftsInPeriod(ctx context.Context, organizationID, periodID string) (int, error) {
	return s.journalRepo.CountDraftJournalsInPeriod(ctx, organizationID, periodID)
}

// GetNextJournalNumber returns the next free "{prefix}-NNN" number. The
// uniqueness constraint on save is the final arbiter against racing writers.
func (s *journalService) GetNextJournalNumber(ctx context.Context, organizationID, prefix string) (string, error) {
	if prefix == "" {
		prefix = defaultJournalNumberPrefix(s.clock.Now())
	}
	number, err := s.journalRepo.GetNextJournalNumber(ctx, organizationID, prefix)
	if err != nil {
		return "", apperrors.Wrap("failed to compute next journal number", err)
	}
	return number, nil
}

// ValidateForImport dry-runs the createDraft validation over a batch,
// including intra-batch uniqueness of journal numbers and external uids.
func (s *journalService) ValidateForImport(ctx context.Context, organizationID string, reqs []dto.CreateJournalRequest) (*dto.ImportValidationResult, error) {
	result := &dto.ImportValidationResult{Valid: true}

	seenNumbers := make(map[string]bool, len(reqs))
	seenExtUIDs := make(map[string]bool, len(reqs))

	for i, req := range reqs {
		var issue *apperrors.AppError
		if req.JournalNumber != "" && seenNumbers[req.JournalNumber] {
			issue = apperrors.NewBusinessRuleViolation(
				fmt.Sprintf("journal number %s repeats within the batch", req.JournalNumber),
				map[string]any{"journalNumber": req.JournalNumber})
		} else if req.ExtUID != nil && *req.ExtUID != "" && seenExtUIDs[*req.ExtUID] {
			issue = apperrors.NewBusinessRuleViolation(
				fmt.Sprintf("external uid %s repeats within the batch", *req.ExtUID),
				map[string]any{"extUID": *req.ExtUID})
		} else if _, err := s.buildDraft(ctx, organizationID, req, "import-validation"); err != nil {
			var appErr *apperrors.AppError
			if !errors.As(err, &appErr) {
				return nil, err
			}
			issue = appErr
		}

		seenNumbers[req.JournalNumber] = true
		if req.ExtUID != nil {
			seenExtUIDs[*req.ExtUID] = true
		}

		if issue != nil {
			result.Valid = false
			result.Issues = append(result.Issues, dto.ImportValidationIssue{
				Index:   i,
				Code:    string(issue.Code),
				Message: issue.Message,
				Details: issue.Details,
			})
		}
	}
	return result, nil
}

// ImportDrafts validates a batch and persists all drafts in one transaction;
// on any failure nothing is saved.
func (s *journalService) ImportDrafts(ctx context.Context, organizationID string, reqs []dto.CreateJournalRequest, creatorUserID string) ([]domain.Journal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	validation, err := s.ValidateForImport(ctx, organizationID, reqs)
	if err != nil {
		return nil, err
	}
	if !validation.Valid {
		return nil, apperrors.NewBusinessRuleViolation(
			fmt.Sprintf("import batch failed validation with %d issue(s)", len(validation.Issues)),
			map[string]any{"issues": validation.Issues})
	}

	journals := make([]domain.Journal, len(reqs))
	for i, req := range reqs {
		journal, err := s.buildDraft(ctx, organizationID, req, creatorUserID)
		if err != nil {
			return nil, err
		}
		journals[i] = *journal
	}

	if err := s.journalRepo.SaveJournals(ctx, organizationID, journals); err != nil {
		logger.Error("Failed to save import batch", slog.String("error", err.Error()))
		return nil, apperrors.Wrap("failed to save import batch", err)
	}

	logger.Info("Import batch saved", slog.Int("count", len(journals)))
	return journals, nil
}
