package services_test

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/accounted-hq/accounted-app/internal/core/domain"
	portsrepo "github.com/accounted-hq/accounted-app/internal/core/ports/repositories"
	portssvc "github.com/accounted-hq/accounted-app/internal/core/ports/services"
	"github.com/accounted-hq/accounted-app/internal/dto"
)

// --- Deterministic capability stand-ins ---

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type seqIDGen struct {
	prefix string
	n      int
}

func (g *seqIDGen) NewID() string {
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// --- Mock PeriodRepository ---

type MockPeriodRepository struct {
	mock.Mock
}

var _ portsrepo.PeriodRepository = (*MockPeriodRepository)(nil)

func (m *MockPeriodRepository) FindPeriodByID(ctx context.Context, organizationID, periodID string) (*domain.Period, error) {
	args := m.Called(ctx, organizationID, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *MockPeriodRepository) FindPeriodsByOrganization(ctx context.Context, organizationID string) ([]domain.Period, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Period), args.Error(1)
}

func (m *MockPeriodRepository) FindPeriodByDate(ctx context.Context, organizationID string, date time.Time) (*domain.Period, error) {
	args := m.Called(ctx, organizationID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *MockPeriodRepository) FindOpenPeriods(ctx context.Context, organizationID string) ([]domain.Period, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Period), args.Error(1)
}

func (m *MockPeriodRepository) FindOverlappingPeriods(ctx context.Context, organizationID string, start, end time.Time, excludePeriodID *string) ([]domain.Period, error) {
	args := m.Called(ctx, organizationID, start, end, excludePeriodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Period), args.Error(1)
}

func (m *MockPeriodRepository) SavePeriod(ctx context.Context, period domain.Period) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

func (m *MockPeriodRepository) UpdatePeriod(ctx context.Context, period domain.Period) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

func (m *MockPeriodRepository) DeletePeriod(ctx context.Context, organizationID, periodID string) error {
	args := m.Called(ctx, organizationID, periodID)
	return args.Error(0)
}

// --- Mock PeriodService (as used by journal and posting services) ---

type MockPeriodService struct {
	mock.Mock
}

var _ portssvc.PeriodService = (*MockPeriodService)(nil)

func (m *MockPeriodService) CreatePeriod(ctx context.Context, organizationID string, req dto.CreatePeriodRequest, creatorUserID string) (*domain.Period, error) {
	args := m.Called(ctx, organizationID, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *MockPeriodService) GetPeriodByID(ctx context.Context, organizationID, periodID string) (*domain.Period, error) {
	args := m.Called(ctx, organizationID, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *MockPeriodService) ListPeriods(ctx context.Context, organizationID string) ([]domain.Period, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Period), args.Error(1)
}

func (m *MockPeriodService) ListOpenPeriods(ctx context.Context, organizationID string) ([]domain.Period, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Period), args.Error(1)
}

func (m *MockPeriodService) DeletePeriod(ctx context.Context, organizationID, periodID string) error {
	args := m.Called(ctx, organizationID, periodID)
	return args.Error(0)
}

func (m *MockPeriodService) FindPeriodForPosting(ctx context.Context, organizationID string, postingDate time.Time) (*domain.Period, error) {
	args := m.Called(ctx, organizationID, postingDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *MockPeriodService) ValidatePeriodForPosting(ctx context.Context, organizationID, periodID string) (*domain.Period, error) {
	args := m.Called(ctx, organizationID, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *MockPeriodService) StartClosing(ctx context.Context, organizationID, periodID, userID string) (*domain.Period, error) {
	args := m.Called(ctx, organizationID, periodID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *MockPeriodService) ClosePeriod(ctx context.Context, organizationID, periodID, userID string) (*domain.Period, error) {
	args := m.Called(ctx, organizationID, periodID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *MockPeriodService) ReopenPeriod(ctx context.Context, organizationID, periodID, userID string) (*domain.Period, error) {
	args := m.Called(ctx, organizationID, periodID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *MockPeriodService) UpdatePeriod(ctx context.Context, organizationID, periodID string, req dto.UpdatePeriodRequest, userID string) (*domain.Period, error) {
	args := m.Called(ctx, organizationID, periodID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

// --- Mock JournalRepository ---

type MockJournalRepository struct {
	mock.Mock
}

var _ portsrepo.JournalRepository = (*MockJournalRepository)(nil)

func (m *MockJournalRepository) FindJournalByID(ctx context.Context, organizationID, journalID string) (*domain.Journal, error) {
	args := m.Called(ctx, organizationID, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockJournalRepository) FindJournalByNumber(ctx context.Context, organizationID, journalNumber string) (*domain.Journal, error) {
	args := m.Called(ctx, organizationID, journalNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockJournalRepository) FindJournalByExtUID(ctx context.Context, organizationID, extUID string) (*domain.Journal, error) {
	args := m.Called(ctx, organizationID, extUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockJournalRepository) FindJournalsByPeriod(ctx context.Context, organizationID, periodID string) ([]domain.Journal, error) {
	args := m.Called(ctx, organizationID, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Journal), args.Error(1)
}

func (m *MockJournalRepository) FindJournalsByDateRange(ctx context.Context, organizationID string, from, to time.Time) ([]domain.Journal, error) {
	args := m.Called(ctx, organizationID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Journal), args.Error(1)
}

func (m *MockJournalRepository) FindPostedJournalsChronological(ctx context.Context, organizationID string, after *portsrepo.ChainCursor, limit int) ([]domain.Journal, error) {
	args := m.Called(ctx, organizationID, after, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Journal), args.Error(1)
}

func (m *MockJournalRepository) FindLastPostedJournal(ctx context.Context, organizationID string) (*domain.Journal, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockJournalRepository) FindDraftJournalsByPeriod(ctx context.Context, organizationID, periodID string) ([]domain.Journal, error) {
	args := m.Called(ctx, organizationID, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Journal), args.Error(1)
}

func (m *MockJournalRepository) ExistsByJournalNumber(ctx context.Context, organizationID, journalNumber string) (bool, error) {
	args := m.Called(ctx, organizationID, journalNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockJournalRepository) ExistsByExtUID(ctx context.Context, organizationID, extUID string) (bool, error) {
	args := m.Called(ctx, organizationID, extUID)
	return args.Bool(0), args.Error(1)
}

func (m *MockJournalRepository) CountDraftJournalsInPeriod(ctx context.Context, organizationID, periodID string) (int, error) {
	args := m.Called(ctx, organizationID, periodID)
	return args.Int(0), args.Error(1)
}

func (m *MockJournalRepository) ListJournals(ctx context.Context, organizationID string, limit int, nextToken *string) ([]domain.Journal, *string, error) {
	args := m.Called(ctx, organizationID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var token *string
	if args.Get(1) != nil {
		val := args.Get(1).(string)
		token = &val
	}
	return args.Get(0).([]domain.Journal), token, args.Error(2)
}

func (m *MockJournalRepository) GetNextJournalNumber(ctx context.Context, organizationID, prefix string) (string, error) {
	args := m.Called(ctx, organizationID, prefix)
	return args.String(0), args.Error(1)
}

func (m *MockJournalRepository) SaveJournal(ctx context.Context, journal domain.Journal) error {
	args := m.Called(ctx, journal)
	return args.Error(0)
}

func (m *MockJournalRepository) SaveJournals(ctx context.Context, organizationID string, journals []domain.Journal) error {
	args := m.Called(ctx, organizationID, journals)
	return args.Error(0)
}

func (m *MockJournalRepository) UpdateJournal(ctx context.Context, journal domain.Journal) error {
	args := m.Called(ctx, journal)
	return args.Error(0)
}

func (m *MockJournalRepository) DeleteJournal(ctx context.Context, organizationID, journalID string) error {
	args := m.Called(ctx, organizationID, journalID)
	return args.Error(0)
}

func (m *MockJournalRepository) AcquirePostingLock(ctx context.Context, tx pgx.Tx, organizationID string) error {
	args := m.Called(ctx, tx, organizationID)
	return args.Error(0)
}

func (m *MockJournalRepository) FindLastPostedJournalTx(ctx context.Context, tx pgx.Tx, organizationID string) (*domain.Journal, error) {
	args := m.Called(ctx, tx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockJournalRepository) MarkJournalPostedTx(ctx context.Context, tx pgx.Tx, journal domain.Journal) error {
	args := m.Called(ctx, tx, journal)
	return args.Error(0)
}

func (m *MockJournalRepository) InsertJournalTx(ctx context.Context, tx pgx.Tx, journal domain.Journal) error {
	args := m.Called(ctx, tx, journal)
	return args.Error(0)
}

func (m *MockJournalRepository) MarkJournalReversedTx(ctx context.Context, tx pgx.Tx, journal domain.Journal) error {
	args := m.Called(ctx, tx, journal)
	return args.Error(0)
}

func (m *MockJournalRepository) BeginTenantTx(ctx context.Context, organizationID string) (pgx.Tx, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockJournalRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockJournalRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}
