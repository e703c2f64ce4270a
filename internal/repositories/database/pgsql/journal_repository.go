package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/accounted-hq/accounted-app/internal/apperrors"
	"github.com/accounted-hq/accounted-app/internal/core/domain"
	portsrepo "github.com/accounted-hq/accounted-app/internal/core/ports/repositories"
	"github.com/accounted-hq/accounted-app/internal/models"
	"github.com/accounted-hq/accounted-app/internal/utils/mapping"
	"github.com/accounted-hq/accounted-app/internal/utils/pagination"
)

// PgxJournalRepository persists journals and their lines.
type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal data.
func newPgxJournalRepository(pool *pgxpool.Pool) portsrepo.JournalRepository {
	return &PgxJournalRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.JournalRepository = (*PgxJournalRepository)(nil)

const journalColumns = `
	journal_id, organization_id, period_id, journal_number, description, reference,
	posting_date, status, currency_code, hash_prev, hash_self,
	reversal_journal_id, original_journal_id, ext_uid, posted_by, posted_at,
	created_at, created_by, last_updated_at, last_updated_by
`

const journalLineColumns = `
	line_id, journal_id, organization_id, account_id, line_number, description,
	debit_amount, credit_amount, currency_code, original_amount, original_currency,
	exchange_rate, tax_code, tax_amount, tax_rate
`

func scanJournal(row pgx.Row) (*models.Journal, error) {
	var m models.Journal
	err := row.Scan(
		&m.JournalID,
		&m.OrganizationID,
		&m.PeriodID,
		&m.JournalNumber,
		&m.Description,
		&m.Reference,
		&m.PostingDate,
		&m.Status,
		&m.CurrencyCode,
		&m.HashPrev,
		&m.HashSelf,
		&m.ReversalJournalID,
		&m.OriginalJournalID,
		&m.ExtUID,
		&m.PostedBy,
		&m.PostedAt,
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

func scanJournals(rows pgx.Rows) ([]models.Journal, error) {
	defer rows.Close()
	journals := []models.Journal{}
	for rows.Next() {
		m, err := scanJournal(rows)
		if err != nil {
			return nil, err
		}
		journals = append(journals, *m)
	}
	return journals, rows.Err()
}

// loadLines fetches the line sets of the given journals, grouped by journal
// id, ordered by line number.
func loadLines(ctx context.Context, tx pgx.Tx, journalIDs []string) (map[string][]domain.JournalLine, error) {
	linesByJournal := make(map[string][]domain.JournalLine, len(journalIDs))
	if len(journalIDs) == 0 {
		return linesByJournal, nil
	}

	query := `SELECT ` + journalLineColumns + ` FROM journal_lines
		WHERE journal_id = ANY($1)
		ORDER BY journal_id, line_number;`

	rows, err := tx.Query(ctx, query, journalIDs)
	if err != nil {
		return nil, apperrors.NewInternal("failed to query journal lines", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.JournalLine
		if err := rows.Scan(
			&m.LineID,
			&m.JournalID,
			&m.OrganizationID,
			&m.AccountID,
			&m.LineNumber,
			&m.Description,
			&m.DebitAmount,
			&m.CreditAmount,
			&m.CurrencyCode,
			&m.OriginalAmount,
			&m.OriginalCurrency,
			&m.ExchangeRate,
			&m.TaxCode,
			&m.TaxAmount,
			&m.TaxRate,
		); err != nil {
			return nil, apperrors.NewInternal("failed to scan journal line row", err)
		}
		line, err := mapping.ToDomainJournalLine(m)
		if err != nil {
			return nil, err
		}
		linesByJournal[m.JournalID] = append(linesByJournal[m.JournalID], line)
	}
	return linesByJournal, rows.Err()
}

// toDomainJournalsWithLines attaches lines to a batch of journal rows.
func toDomainJournalsWithLines(ctx context.Context, tx pgx.Tx, ms []models.Journal) ([]domain.Journal, error) {
	ids := make([]string, len(ms))
	for i := range ms {
		ids[i] = ms[i].JournalID
	}
	linesByJournal, err := loadLines(ctx, tx, ids)
	if err != nil {
		return nil, err
	}
	journals := make([]domain.Journal, len(ms))
	for i, m := range ms {
		journals[i] = mapping.ToDomainJournal(m)
		journals[i].Lines = linesByJournal[m.JournalID]
	}
	return journals, nil
}

// mapUniqueViolation translates unique-constraint failures into the business
// rule errors the caller expects.
func mapUniqueViolation(err error, journal models.Journal) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" { // unique_violation
		return nil
	}
	if strings.Contains(pgErr.ConstraintName, "ext_uid") {
		return apperrors.NewBusinessRuleViolation(
			"external uid already exists",
			map[string]any{"extUID": journal.ExtUID})
	}
	return apperrors.NewBusinessRuleViolation(
		fmt.Sprintf("journal number %s already exists", journal.JournalNumber),
		map[string]any{"journalNumber": journal.JournalNumber})
}

// insertJournal writes the journal row and its full line set inside tx.
func insertJournal(ctx context.Context, tx pgx.Tx, journal domain.Journal) error {
	m := mapping.ToModelJournal(journal)
	journalQuery := `
		INSERT INTO journals (` + journalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);
	`
	_, err := tx.Exec(ctx, journalQuery,
		m.JournalID,
		m.OrganizationID,
		m.PeriodID,
		m.JournalNumber,
		m.Description,
		m.Reference,
		m.PostingDate,
		m.Status,
		m.CurrencyCode,
		m.HashPrev,
		m.HashSelf,
		m.ReversalJournalID,
		m.OriginalJournalID,
		m.ExtUID,
		m.PostedBy,
		m.PostedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if mapped := mapUniqueViolation(err, m); mapped != nil {
			return mapped
		}
		return apperrors.NewInternal("failed to insert journal "+m.JournalID, err)
	}

	return insertLines(ctx, tx, journal)
}

func insertLines(ctx context.Context, tx pgx.Tx, journal domain.Journal) error {
	lineQuery := `
		INSERT INTO journal_lines (` + journalLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	batch := &pgx.Batch{}
	for i := range journal.Lines {
		lm := mapping.ToModelJournalLine(journal.OrganizationID, journal.Lines[i])
		batch.Queue(lineQuery,
			lm.LineID,
			lm.JournalID,
			lm.OrganizationID,
			lm.AccountID,
			lm.LineNumber,
			lm.Description,
			lm.DebitAmount,
			lm.CreditAmount,
			lm.CurrencyCode,
			lm.OriginalAmount,
			lm.OriginalCurrency,
			lm.ExchangeRate,
			lm.TaxCode,
			lm.TaxAmount,
			lm.TaxRate,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewInternal("failed to insert lines for journal "+journal.JournalID, err)
	}
	return nil
}

// findJournalBy loads one journal (with lines) by an arbitrary predicate.
func (r *PgxJournalRepository) findJournalBy(ctx context.Context, organizationID, where, notFoundID string, args ...any) (*domain.Journal, error) {
	query := `SELECT ` + journalColumns + ` FROM journals WHERE organization_id = $1 AND ` + where + `;`

	var journal *domain.Journal
	err := r.withTenant(ctx, organizationID, func(tx pgx.Tx) error {
		queryArgs := append([]any{organizationID}, args...)
		m, err := scanJournal(tx.QueryRow(ctx, query, queryArgs...))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewEntityNotFound("journal", notFoundID)
			}
			return apperrors.NewInternal("failed to find journal "+notFoundID, err)
		}
		journals, err := toDomainJournalsWithLines(ctx, tx, []models.Journal{*m})
		if err != nil {
			return err
		}
		journal = &journals[0]
		return nil
	})
	return journal, err
}

// FindJournalByID retrieves a journal and its lines.
func (r *PgxJournalRepository) FindJournalByID(ctx context.Context, organizationID, journalID string) (*domain.Journal, error) {
	return r.findJournalBy(ctx, organizationID, "journal_id = $2", journalID, journalID)
}

// FindJournalByNumber retrieves a journal by its journal number.
func (r *PgxJournalRepository) FindJournalByNumber(ctx context.Context, organizationID, journalNumber string) (*domain.Journal, error) {
	return r.findJournalBy(ctx, organizationID, "journal_number = $2", journalNumber, journalNumber)
}

// FindJournalByExtUID retrieves a journal by its external unique id.
func (r *PgxJournalRepository) FindJournalByExtUID(ctx context.Context, organizationID, extUID string) (*domain.Journal, error) {
	return r.findJournalBy(ctx, organizationID, "ext_uid = $2", extUID, extUID)
}

// findJournalsBy loads a journal set (with lines) by an arbitrary predicate.
func (r *PgxJournalRepository) findJournalsBy(ctx context.Context, organizationID, where, orderBy string, args ...any) ([]domain.Journal, error) {
	query := `SELECT ` + journalColumns + ` FROM journals WHERE organization_id = $1 AND ` + where + ` ORDER BY ` + orderBy + `;`

	var journals []domain.Journal
	err := r.withTenant(ctx, organizationID, func(tx pgx.Tx) error {
		queryArgs := append([]any{organizationID}, args...)
		rows, err := tx.Query(ctx, query, queryArgs...)
		if err != nil {
			return apperrors.NewInternal("failed to query journals", err)
		}
		ms, err := scanJournals(rows)
		if err != nil {
			return apperrors.NewInternal("failed to scan journal rows", err)
		}
		journals, err = toDomainJournalsWithLines(ctx, tx, ms)
		return err
	})
	return journals, err
}

// FindJournalsByPeriod retrieves all journals booked in a period.
func (r *PgxJournalRepository) FindJournalsByPeriod(ctx context.Context, organizationID, periodID string) ([]domain.Journal, error) {
	return r.findJournalsBy(ctx, organizationID, "period_id = $2", "posting_date, journal_number", periodID)
}

// FindJournalsByDateRange retrieves journals posted within [from, to].
func (r *PgxJournalRepository) FindJournalsByDateRange(ctx context.Context, organizationID string, from, to time.Time) ([]domain.Journal, error) {
	return r.findJournalsBy(ctx, organizationID, "posting_date >= $2 AND posting_date <= $3", "posting_date, journal_number", from, to)
}

// FindDraftJournalsByPeriod retrieves the DRAFT journals of a period.
func (r *PgxJournalRepository) FindDraftJournalsByPeriod(ctx context.Context, organizationID, periodID string) ([]domain.Journal, error) {
	return r.findJournalsBy(ctx, organizationID, "period_id = $2 AND status = 'DRAFT'", "created_at", periodID)
}

// FindPostedJournalsChronological returns sealed journals in canonical chain
// order (posted_at asc, journal_number asc), starting after the cursor.
func (r *PgxJournalRepository) FindPostedJournalsChronological(ctx context.Context, organizationID string, after *portsrepo.ChainCursor, limit int) ([]domain.Journal, error) {
	if limit <= 0 {
		limit = 500
	}

	baseQuery := `SELECT ` + journalColumns + ` FROM journals
		WHERE organization_id = $1 AND status IN ('POSTED', 'REVERSED')`
	orderClause := ` ORDER BY posted_at, journal_number LIMIT `

	var journals []domain.Journal
	err := r.withTenant(ctx, organizationID, func(tx pgx.Tx) error {
		var rows pgx.Rows
		var err error
		if after != nil {
			query := baseQuery + ` AND (posted_at, journal_number) > ($2, $3)` + orderClause + `$4;`
			rows, err = tx.Query(ctx, query, organizationID, after.PostedAt, after.JournalNumber, limit)
		} else {
			query := baseQuery + orderClause + `$2;`
			rows, err = tx.Query(ctx, query, organizationID, limit)
		}
		if err != nil {
			return apperrors.NewInternal("failed to query chain batch", err)
		}
		ms, err := scanJournals(rows)
		if err != nil {
			return apperrors.NewInternal("failed to scan chain batch rows", err)
		}
		journals, err = toDomainJournalsWithLines(ctx, tx, ms)
		return err
	})
	return journals, err
}

const lastPostedQuery = `SELECT ` + journalColumns + ` FROM journals
	WHERE organization_id = $1 AND status IN ('POSTED', 'REVERSED')
	ORDER BY posted_at DESC, journal_number DESC
	LIMIT 1;`

// FindLastPostedJournal returns the chain tail.
func (r *PgxJournalRepository) FindLastPostedJournal(ctx context.Context, organizationID string) (*domain.Journal, error) {
	var journal *domain.Journal
	err := r.withTenant(ctx, organizationID, func(tx pgx.Tx) error {
		j, err := r.findLastPostedIn(ctx, tx, organizationID)
		if err != nil {
			return err
		}
		journal = j
		return nil
	})
	return journal, err
}

// FindLastPostedJournalTx reads the chain tail inside the caller's
// transaction; used under the posting lock.
func (r *PgxJournalRepository) FindLastPostedJournalTx(ctx context.Context, tx pgx.Tx, organizationID string) (*domain.Journal, error) {
	return r.findLastPostedIn(ctx, tx, organizationID)
}

func (r *PgxJournalRepository) findLastPostedIn(ctx context.Context, tx pgx.Tx, organizationID string) (*domain.Journal, error) {
	m, err := scanJournal(tx.QueryRow(ctx, lastPostedQuery, organizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewEntityNotFound("journal", "chain tail")
		}
		return nil, apperrors.NewInternal("failed to read chain tail", err)
	}
	journals, err := toDomainJournalsWithLines(ctx, tx, []models.Journal{*m})
	if err != nil {
		return nil, err
	}
	return &journals[0], nil
}

// ExistsByJournalNumber reports whether a journal number is taken.
func (r *PgxJournalRepository) ExistsByJournalNumber(ctx context.Context, organizationID, journalNumber string) (bool, error) {
	return r.exists(ctx, organizationID,
		`SELECT EXISTS (SELECT 1 FROM journals WHERE organization_id = $1 AND journal_number = $2);`,
		journalNumber)
}

// ExistsByExtUID reports whether an external uid is taken.
func (r *PgxJournalRepository) ExistsByExtUID(ctx context.Context, organizationID, extUID string) (bool, error) {
	return r.exists(ctx, organizationID,
		`SELECT EXISTS (SELECT 1 FROM journals WHERE organization_id = $1 AND ext_uid = $2);`,
		extUID)
}

func (r *PgxJournalRepository) exists(ctx context.Context, organizationID, query string, arg any) (bool, error) {
	var exists bool
	err := r.withTenant(ctx, organizationID, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, query, organizationID, arg).Scan(&exists); err != nil {
			return apperrors.NewInternal("failed to run existence check", err)
		}
		return nil
	})
	return exists, err
}

// CountDraftJournalsInPeriod counts DRAFT journals in a period.
func (r *PgxJournalRepository) CountDraftJournalsInPeriod(ctx context.Context, organizationID, periodID string) (int, error) {
	query := `SELECT COUNT(*) FROM journals
		WHERE organization_id = $1 AND period_id = $2 AND status = 'DRAFT';`

	var count int
	err := r.withTenant(ctx, organizationID, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, query, organizationID, periodID).Scan(&count); err != nil {
			return apperrors.NewInternal("failed to count draft journals", err)
		}
		return nil
	})
	return count, err
}

// ListJournals retrieves a token-paginated page of journals (headers only),
// newest posting date first with created_at as the tie-breaker.
func (r *PgxJournalRepository) ListJournals(ctx context.Context, organizationID string, limit int, nextToken *string) ([]domain.Journal, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + journalColumns + ` FROM journals WHERE organization_id = $1`
	orderByClause := ` ORDER BY posting_date DESC, created_at DESC`

	var journals []domain.Journal
	var nextTokenVal *string
	err := r.withTenant(ctx, organizationID, func(tx pgx.Tx) error {
		var rows pgx.Rows
		var err error
		if nextToken != nil && *nextToken != "" {
			lastPostingDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
			if decodeErr != nil {
				return apperrors.NewValidationFailed("invalid nextToken", nil)
			}
			query := baseQuery + ` AND (posting_date, created_at) < ($2, $3)` + orderByClause + ` LIMIT $4;`
			rows, err = tx.Query(ctx, query, organizationID, lastPostingDate, lastCreatedAt, fetchLimit)
		} else {
			query := baseQuery + orderByClause + ` LIMIT $2;`
			rows, err = tx.Query(ctx, query, organizationID, fetchLimit)
		}
		if err != nil {
			return apperrors.NewInternal("failed to query journal page", err)
		}

		ms, err := scanJournals(rows)
		if err != nil {
			return apperrors.NewInternal("failed to scan journal page rows", err)
		}

		if len(ms) > limit {
			last := ms[limit-1]
			token := pagination.EncodeToken(last.PostingDate, last.CreatedAt)
			nextTokenVal = &token
			ms = ms[:limit]
		}

		journals = make([]domain.Journal, len(ms))
		for i, m := range ms {
			journals[i] = mapping.ToDomainJournal(m)
		}
		return nil
	})
	return journals, nextTokenVal, err
}

// GetNextJournalNumber returns the next free "{prefix}-NNN" number, padding
// the sequence to at least three digits. The unique constraint on save is the
// final arbiter against racing writers.
func (r *PgxJournalRepository) GetNextJournalNumber(ctx context.Context, organizationID, prefix string) (string, error) {
	query := `SELECT journal_number FROM journals
		WHERE organization_id = $1 AND journal_number LIKE $2;`

	var next string
	err := r.withTenant(ctx, organizationID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, organizationID, prefix+"-%")
		if err != nil {
			return apperrors.NewInternal("failed to query journal number series", err)
		}
		defer rows.Close()

		max := 0
		for rows.Next() {
			var number string
			if err := rows.Scan(&number); err != nil {
				return apperrors.NewInternal("failed to scan journal number", err)
			}
			suffix := strings.TrimPrefix(number, prefix+"-")
			n, err := strconv.Atoi(suffix)
			if err != nil {
				continue // foreign numbering inside the series prefix
			}
			if n > max {
				max = n
			}
		}
		if err := rows.Err(); err != nil {
			return apperrors.NewInternal("failed to iterate journal number series", err)
		}

		next = fmt.Sprintf("%s-%03d", prefix, max+1)
		return nil
	})
	return next, err
}

// SaveJournal inserts a journal and its lines atomically.
func (r *PgxJournalRepository) SaveJournal(ctx context.Context, journal domain.Journal) error {
	return r.withTenant(ctx, journal.OrganizationID, func(tx pgx.Tx) error {
		return insertJournal(ctx, tx, journal)
	})
}

// SaveJournals persists several journals in one transaction: new ids are
// inserted, existing DRAFT rows are replaced, and a stored POSTED row may
// only move to REVERSED metadata. On any failure nothing is written.
func (r *PgxJournalRepository) SaveJournals(ctx context.Context, organizationID string, journals []domain.Journal) error {
	return r.withTenant(ctx, organizationID, func(tx pgx.Tx) error {
		for i := range journals {
			j := journals[i]
			var storedStatus models.JournalStatus
			err := tx.QueryRow(ctx,
				`SELECT status FROM journals WHERE organization_id = $1 AND journal_id = $2;`,
				organizationID, j.JournalID,
			).Scan(&storedStatus)

			switch {
			case errors.Is(err, pgx.ErrNoRows):
				if err := insertJournal(ctx, tx, j); err != nil {
					return err
				}
			case err != nil:
				return apperrors.NewInternal("failed to check journal "+j.JournalID, err)
			case storedStatus == models.Draft:
				if err := replaceDraft(ctx, tx, j); err != nil {
					return err
				}
			case storedStatus == models.Posted && j.Status == domain.Reversed:
				if err := markReversed(ctx, tx, j); err != nil {
					return err
				}
			default:
				return apperrors.NewJournalAlreadyPosted(j.JournalID, string(storedStatus))
			}
		}
		return nil
	})
}

// replaceDraft rewrites a DRAFT journal's header and full line set.
func replaceDraft(ctx context.Context, tx pgx.Tx, journal domain.Journal) error {
	m := mapping.ToModelJournal(journal)
	query := `
		UPDATE journals
		SET period_id = $3,
		    journal_number = $4,
		    description = $5,
		    reference = $6,
		    posting_date = $7,
		    status = $8,
		    currency_code = $9,
		    ext_uid = $10,
		    hash_prev = $11,
		    hash_self = $12,
		    posted_by = $13,
		    posted_at = $14,
		    last_updated_at = $15,
		    last_updated_by = $16
		WHERE organization_id = $1 AND journal_id = $2 AND status = 'DRAFT';
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.OrganizationID,
		m.JournalID,
		m.PeriodID,
		m.JournalNumber,
		m.Description,
		m.Reference,
		m.PostingDate,
		m.Status,
		m.CurrencyCode,
		m.ExtUID,
		m.HashPrev,
		m.HashSelf,
		m.PostedBy,
		m.PostedAt,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if mapped := mapUniqueViolation(err, m); mapped != nil {
			return mapped
		}
		return apperrors.NewInternal("failed to update draft journal "+m.JournalID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewJournalAlreadyPosted(m.JournalID, "non-draft")
	}

	if _, err := tx.Exec(ctx, `DELETE FROM journal_lines WHERE journal_id = $1;`, m.JournalID); err != nil {
		return apperrors.NewInternal("failed to clear lines of journal "+m.JournalID, err)
	}
	return insertLines(ctx, tx, journal)
}

// markReversed records the REVERSED transition and linkage on a POSTED row.
// The sealed hash columns are deliberately untouched.
func markReversed(ctx context.Context, tx pgx.Tx, journal domain.Journal) error {
	query := `
		UPDATE journals
		SET status = 'REVERSED',
		    reversal_journal_id = $3,
		    last_updated_at = $4,
		    last_updated_by = $5
		WHERE organization_id = $1 AND journal_id = $2
		  AND status = 'POSTED' AND reversal_journal_id IS NULL;
	`
	cmdTag, err := tx.Exec(ctx, query,
		journal.OrganizationID,
		journal.JournalID,
		journal.ReversalJournalID,
		journal.LastUpdatedAt,
		journal.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewInternal("failed to mark journal reversed "+journal.JournalID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewBusinessRuleViolation(
			"journal is not POSTED or already reversed",
			map[string]any{"journalId": journal.JournalID})
	}
	return nil
}

// UpdateJournal replaces a DRAFT journal and its lines.
func (r *PgxJournalRepository) UpdateJournal(ctx context.Context, journal domain.Journal) error {
	return r.withTenant(ctx, journal.OrganizationID, func(tx pgx.Tx) error {
		return replaceDraft(ctx, tx, journal)
	})
}

// DeleteJournal removes a DRAFT journal and its lines. The line delete rides
// on the ON DELETE CASCADE of the journal foreign key.
func (r *PgxJournalRepository) DeleteJournal(ctx context.Context, organizationID, journalID string) error {
	query := `DELETE FROM journals
		WHERE organization_id = $1 AND journal_id = $2 AND status = 'DRAFT';`

	return r.withTenant(ctx, organizationID, func(tx pgx.Tx) error {
		cmdTag, err := tx.Exec(ctx, query, organizationID, journalID)
		if err != nil {
			return apperrors.NewInternal("failed to delete journal "+journalID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.NewJournalAlreadyPosted(journalID, "non-draft or missing")
		}
		return nil
	})
}

// AcquirePostingLock takes the per-organization advisory lock for the
// lifetime of the transaction. Concurrent posts for one organization
// serialize here, which makes the chain-tail read and the sealed write one
// atomic step from any observer's point of view.
func (r *PgxJournalRepository) AcquirePostingLock(ctx context.Context, tx pgx.Tx, organizationID string) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1));`, organizationID); err != nil {
		return apperrors.NewInternal("failed to acquire posting lock", err)
	}
	return nil
}

// MarkJournalPostedTx transitions a DRAFT row to POSTED with its sealed
// hashes. The status predicate is the storage-level guard: a row that left
// DRAFT can never be rewritten through this path.
func (r *PgxJournalRepository) MarkJournalPostedTx(ctx context.Context, tx pgx.Tx, journal domain.Journal) error {
	m := mapping.ToModelJournal(journal)
	query := `
		UPDATE journals
		SET status = 'POSTED',
		    hash_prev = $3,
		    hash_self = $4,
		    posted_by = $5,
		    posted_at = $6,
		    last_updated_at = $7,
		    last_updated_by = $8
		WHERE organization_id = $1 AND journal_id = $2 AND status = 'DRAFT';
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.OrganizationID,
		m.JournalID,
		m.HashPrev,
		m.HashSelf,
		m.PostedBy,
		m.PostedAt,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewInternal("failed to mark journal posted "+m.JournalID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewJournalAlreadyPosted(m.JournalID, "non-draft")
	}
	return nil
}

// InsertJournalTx inserts a journal and its lines inside the caller's
// transaction.
func (r *PgxJournalRepository) InsertJournalTx(ctx context.Context, tx pgx.Tx, journal domain.Journal) error {
	return insertJournal(ctx, tx, journal)
}

// MarkJournalReversedTx records the reversal linkage on a POSTED row inside
// the caller's transaction.
func (r *PgxJournalRepository) MarkJournalReversedTx(ctx context.Context, tx pgx.Tx, journal domain.Journal) error {
	return markReversed(ctx, tx, journal)
}
