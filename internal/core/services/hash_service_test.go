package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/accounted-hq/accounted-app/internal/apperrors"
	"github.com/accounted-hq/accounted-app/internal/core/domain"
	portsrepo "github.com/accounted-hq/accounted-app/internal/core/ports/repositories"
	portssvc "github.com/accounted-hq/accounted-app/internal/core/ports/services"
	"github.com/accounted-hq/accounted-app/internal/core/services"
)

func newHashService(repo *MockJournalRepository, batchSize int) portssvc.HashService {
	return services.NewHashService(repo, batchSize)
}

// buildChain seals n journals into a valid chain and returns them in
// canonical order.
func buildChain(t *testing.T, n int) []domain.Journal {
	t.Helper()

	one := decimal.NewFromInt(1)
	prev := domain.EmptyHash
	chain := make([]domain.Journal, n)
	for i := 0; i < n; i++ {
		j := domain.Journal{
			JournalID:      fmt.Sprintf("j-%d", i+1),
			OrganizationID: testOrg,
			PeriodID:       "p-q2",
			JournalNumber:  fmt.Sprintf("JRN-2024-%03d", i+1),
			Description:    fmt.Sprintf("booking %d", i+1),
			PostingDate:    time.Date(2024, 5, 10+i, 0, 0, 0, 0, time.UTC),
			Status:         domain.Draft,
			CurrencyCode:   "EUR",
			Lines: []domain.JournalLine{
				{
					LineID: fmt.Sprintf("j-%d-l-1", i+1), JournalID: fmt.Sprintf("j-%d", i+1),
					AccountID: "1000-cash", LineNumber: 1,
					DebitAmount: domain.MustMoney("100.00", "EUR"), CreditAmount: domain.ZeroMoney("EUR"),
					OriginalAmount: domain.MustMoney("100.00", "EUR"), ExchangeRate: one,
				},
				{
					LineID: fmt.Sprintf("j-%d-l-2", i+1), JournalID: fmt.Sprintf("j-%d", i+1),
					AccountID: "4000-revenue", LineNumber: 2,
					DebitAmount: domain.ZeroMoney("EUR"), CreditAmount: domain.MustMoney("100.00", "EUR"),
					OriginalAmount: domain.MustMoney("100.00", "EUR"), ExchangeRate: one,
				},
			},
		}
		require.NoError(t, j.Seal(prev, testUser, time.Date(2024, 5, 10+i, 12, 0, 0, 0, time.UTC)))
		prev = j.HashSelf
		chain[i] = j
	}
	return chain
}

// expectChainScan feeds the chain to the mock in batches of batchSize.
func expectChainScan(repo *MockJournalRepository, chain []domain.Journal, batchSize int) {
	var cursor *portsrepo.ChainCursor
	for start := 0; start < len(chain); start += batchSize {
		end := start + batchSize
		if end > len(chain) {
			end = len(chain)
		}
		batch := chain[start:end]
		repo.On("FindPostedJournalsChronological", mock.Anything, testOrg, cursor, batchSize).
			Return(batch, nil).Once()

		last := batch[len(batch)-1]
		cursor = &portsrepo.ChainCursor{PostedAt: *last.PostedAt, JournalNumber: last.JournalNumber}
	}
	// Terminal empty batch for walks whose last batch was full.
	if len(chain)%batchSize == 0 {
		repo.On("FindPostedJournalsChronological", mock.Anything, testOrg, cursor, batchSize).
			Return([]domain.Journal{}, nil).Once()
	}
}

func TestGetPreviousHashEmptyChain(t *testing.T) {
	repo := new(MockJournalRepository)
	svc := newHashService(repo, 10)

	repo.On("FindLastPostedJournal", mock.Anything, testOrg).
		Return(nil, apperrors.NewEntityNotFound("journal", "chain tail"))

	hash, err := svc.GetPreviousHash(context.Background(), testOrg)
	require.NoError(t, err)
	assert.True(t, hash.IsEmpty())
}

func TestGetPreviousHashReturnsTail(t *testing.T) {
	repo := new(MockJournalRepository)
	svc := newHashService(repo, 10)

	chain := buildChain(t, 2)
	repo.On("FindLastPostedJournal", mock.Anything, testOrg).Return(&chain[1], nil)

	hash, err := svc.GetPreviousHash(context.Background(), testOrg)
	require.NoError(t, err)
	assert.Equal(t, chain[1].HashSelf, hash)
}

func TestVerifyJournalDetectsTampering(t *testing.T) {
	repo := new(MockJournalRepository)
	svc := newHashService(repo, 10)

	chain := buildChain(t, 1)
	intact := chain[0]
	repo.On("FindJournalByID", mock.Anything, testOrg, "j-1").Return(&intact, nil).Once()

	valid, err := svc.VerifyJournal(context.Background(), testOrg, "j-1")
	require.NoError(t, err)
	assert.True(t, valid)

	tampered := chain[0]
	tampered.Description = "tampered in storage"
	repo.On("FindJournalByID", mock.Anything, testOrg, "j-1").Return(&tampered, nil).Once()

	valid, err = svc.VerifyJournal(context.Background(), testOrg, "j-1")
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestVerifyJournalRefusesDrafts(t *testing.T) {
	repo := new(MockJournalRepository)
	svc := newHashService(repo, 10)

	draft := &domain.Journal{JournalID: "j-d", OrganizationID: testOrg, Status: domain.Draft}
	repo.On("FindJournalByID", mock.Anything, testOrg, "j-d").Return(draft, nil)

	_, err := svc.VerifyJournal(context.Background(), testOrg, "j-d")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeBusinessRuleViolation, apperrors.CodeOf(err))
}

func TestVerifyOrganizationChainValid(t *testing.T) {
	repo := new(MockJournalRepository)
	svc := newHashService(repo, 2)

	chain := buildChain(t, 5)
	expectChainScan(repo, chain, 2)

	result, err := svc.VerifyOrganizationChain(context.Background(), testOrg)
	require.NoError(t, err)

	assert.True(t, result.IsValid)
	assert.Equal(t, 5, result.TotalJournals)
	assert.Empty(t, result.InvalidJournalIDs)
	assert.Nil(t, result.BrokenChainAt)
	repo.AssertExpectations(t)
}

func TestVerifyOrganizationChainEmptyOrganization(t *testing.T) {
	repo := new(MockJournalRepository)
	svc := newHashService(repo, 10)

	repo.On("FindPostedJournalsChronological", mock.Anything, testOrg, (*portsrepo.ChainCursor)(nil), 10).
		Return([]domain.Journal{}, nil)

	result, err := svc.VerifyOrganizationChain(context.Background(), testOrg)
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Equal(t, 0, result.TotalJournals)
}

func TestVerifyOrganizationChainFlagsTamperedNode(t *testing.T) {
	repo := new(MockJournalRepository)
	svc := newHashService(repo, 10)

	chain := buildChain(t, 3)
	chain[1].Description = "tampered in storage"
	expectChainScan(repo, chain, 10)

	result, err := svc.VerifyOrganizationChain(context.Background(), testOrg)
	require.NoError(t, err)

	assert.False(t, result.IsValid)
	assert.Equal(t, 3, result.TotalJournals)
	assert.Equal(t, []string{"j-2"}, result.InvalidJournalIDs)
	// The links themselves still line up; only the node hash broke.
	assert.Nil(t, result.BrokenChainAt)
}

func TestVerifyOrganizationChainFlagsBrokenLink(t *testing.T) {
	repo := new(MockJournalRepository)
	svc := newHashService(repo, 10)

	chain := buildChain(t, 3)
	// Re-seal j-2 against a forged predecessor: its own hash verifies but the
	// link to j-1 is broken.
	forged := chain[1]
	forged.Status = domain.Draft
	forged.HashPrev = domain.EmptyHash
	forged.HashSelf = domain.EmptyHash
	require.NoError(t, forged.Seal(domain.JournalHash("beef"+chain[0].HashSelf.String()[4:]), testUser, *chain[1].PostedAt))
	chain[1] = forged
	expectChainScan(repo, chain, 10)

	result, err := svc.VerifyOrganizationChain(context.Background(), testOrg)
	require.NoError(t, err)

	assert.False(t, result.IsValid)
	require.NotNil(t, result.BrokenChainAt)
	assert.Equal(t, "j-2", *result.BrokenChainAt)
}

func TestVerifyOrganizationChainIsPure(t *testing.T) {
	repo := new(MockJournalRepository)
	svc := newHashService(repo, 10)

	chain := buildChain(t, 3)
	repo.On("FindPostedJournalsChronological", mock.Anything, testOrg, (*portsrepo.ChainCursor)(nil), 10).
		Return(chain, nil)

	first, err := svc.VerifyOrganizationChain(context.Background(), testOrg)
	require.NoError(t, err)
	second, err := svc.VerifyOrganizationChain(context.Background(), testOrg)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestVerifyOrganizationChainStopsOnCancelledContext(t *testing.T) {
	repo := new(MockJournalRepository)
	svc := newHashService(repo, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.VerifyOrganizationChain(ctx, testOrg)
	assert.Error(t, err)
	repo.AssertNotCalled(t, "FindPostedJournalsChronological", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
