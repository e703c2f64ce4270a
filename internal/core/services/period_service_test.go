package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/accounted-hq/accounted-app/internal/apperrors"
	"github.com/accounted-hq/accounted-app/internal/core/domain"
	portssvc "github.com/accounted-hq/accounted-app/internal/core/ports/services"
	"github.com/accounted-hq/accounted-app/internal/core/services"
	"github.com/accounted-hq/accounted-app/internal/dto"
)

const (
	testOrg  = "org-1"
	testUser = "user-1"
)

var testNow = time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

type fixtureP struct {
	repo *MockPeriodRepository
	svc  portssvc.PeriodService
}

func newPeriodService(repo *MockPeriodRepository) *fixtureP {
	return &fixtureP{
		repo: repo,
		svc:  services.NewPeriodService(repo, fixedClock{now: testNow}, &seqIDGen{prefix: "period"}),
	}
}

func openPeriod(id string, start, end time.Time) *domain.Period {
	return &domain.Period{
		PeriodID:       id,
		OrganizationID: testOrg,
		Name:           "2024-Q2",
		StartDate:      start,
		EndDate:        end,
		Status:         domain.PeriodOpen,
	}
}

func TestCreatePeriodSuccess(t *testing.T) {
	repo := new(MockPeriodRepository)
	f := newPeriodService(repo)

	req := dto.CreatePeriodRequest{
		Name:      "2024-Q2",
		StartDate: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
	}

	repo.On("FindOverlappingPeriods", mock.Anything, testOrg, req.StartDate, req.EndDate, (*string)(nil)).
		Return([]domain.Period{}, nil)
	repo.On("SavePeriod", mock.Anything, mock.AnythingOfType("domain.Period")).Return(nil)

	period, err := f.svc.CreatePeriod(context.Background(), testOrg, req, testUser)
	require.NoError(t, err)
	assert.Equal(t, domain.PeriodOpen, period.Status)
	assert.Equal(t, "period-1", period.PeriodID)
	assert.Equal(t, testNow, period.CreatedAt)
	repo.AssertExpectations(t)
}

func TestCreatePeriodRejectsOverlap(t *testing.T) {
	repo := new(MockPeriodRepository)
	f := newPeriodService(repo)

	existing := openPeriod("period-q1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))

	req := dto.CreatePeriodRequest{
		Name:      "overlap",
		StartDate: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC),
	}

	repo.On("FindOverlappingPeriods", mock.Anything, testOrg, req.StartDate, req.EndDate, (*string)(nil)).
		Return([]domain.Period{*existing}, nil)

	_, err := f.svc.CreatePeriod(context.Background(), testOrg, req, testUser)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeBusinessRuleViolation, appErr.Code)
	assert.Equal(t, []string{"period-q1"}, appErr.Details["overlappingPeriods"])
	repo.AssertNotCalled(t, "SavePeriod", mock.Anything, mock.Anything)
}

func TestCreatePeriodRejectsInvalidInterval(t *testing.T) {
	repo := new(MockPeriodRepository)
	f := newPeriodService(repo)

	req := dto.CreatePeriodRequest{
		Name:      "inverted",
		StartDate: time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	}

	_, err := f.svc.CreatePeriod(context.Background(), testOrg, req, testUser)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidationFailed, apperrors.CodeOf(err))
}

func TestValidatePeriodForPosting(t *testing.T) {
	repo := new(MockPeriodRepository)
	f := newPeriodService(repo)

	open := openPeriod("p-open", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC))
	repo.On("FindPeriodByID", mock.Anything, testOrg, "p-open").Return(open, nil)

	period, err := f.svc.ValidatePeriodForPosting(context.Background(), testOrg, "p-open")
	require.NoError(t, err)
	assert.Equal(t, "p-open", period.PeriodID)

	closed := openPeriod("p-closed", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))
	closed.Status = domain.PeriodClosed
	repo.On("FindPeriodByID", mock.Anything, testOrg, "p-closed").Return(closed, nil)

	_, err = f.svc.ValidatePeriodForPosting(context.Background(), testOrg, "p-closed")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodePeriodClosed, apperrors.CodeOf(err))
}

func TestPeriodTransitionsThroughService(t *testing.T) {
	repo := new(MockPeriodRepository)
	f := newPeriodService(repo)

	p := openPeriod("p-1", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC))
	repo.On("FindPeriodByID", mock.Anything, testOrg, "p-1").Return(p, nil)
	repo.On("UpdatePeriod", mock.Anything, mock.AnythingOfType("domain.Period")).Return(nil)

	closing, err := f.svc.StartClosing(context.Background(), testOrg, "p-1", testUser)
	require.NoError(t, err)
	assert.Equal(t, domain.PeriodClosing, closing.Status)

	closed, err := f.svc.ClosePeriod(context.Background(), testOrg, "p-1", testUser)
	require.NoError(t, err)
	assert.Equal(t, domain.PeriodClosed, closed.Status)
}

func TestClosePeriodRequiresClosingState(t *testing.T) {
	repo := new(MockPeriodRepository)
	f := newPeriodService(repo)

	p := openPeriod("p-1", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC))
	repo.On("FindPeriodByID", mock.Anything, testOrg, "p-1").Return(p, nil)

	_, err := f.svc.ClosePeriod(context.Background(), testOrg, "p-1", testUser)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeBusinessRuleViolation, apperrors.CodeOf(err))
	repo.AssertNotCalled(t, "UpdatePeriod", mock.Anything, mock.Anything)
}

func TestReopenRequiresClosingState(t *testing.T) {
	repo := new(MockPeriodRepository)
	f := newPeriodService(repo)

	p := openPeriod("p-1", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC))
	p.Status = domain.PeriodClosed
	repo.On("FindPeriodByID", mock.Anything, testOrg, "p-1").Return(p, nil)

	_, err := f.svc.ReopenPeriod(context.Background(), testOrg, "p-1", testUser)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeBusinessRuleViolation, apperrors.CodeOf(err))
}

func TestUpdatePeriodOnlyWhenOpen(t *testing.T) {
	repo := new(MockPeriodRepository)
	f := newPeriodService(repo)

	p := openPeriod("p-1", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC))
	p.Status = domain.PeriodClosing
	repo.On("FindPeriodByID", mock.Anything, testOrg, "p-1").Return(p, nil)

	name := "renamed"
	_, err := f.svc.UpdatePeriod(context.Background(), testOrg, "p-1", dto.UpdatePeriodRequest{Name: &name}, testUser)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeBusinessRuleViolation, apperrors.CodeOf(err))
}

func TestUpdatePeriodChecksOverlapWithExclusion(t *testing.T) {
	repo := new(MockPeriodRepository)
	f := newPeriodService(repo)

	p := openPeriod("p-1", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC))
	repo.On("FindPeriodByID", mock.Anything, testOrg, "p-1").Return(p, nil)

	newEnd := time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC)
	excludeID := "p-1"
	repo.On("FindOverlappingPeriods", mock.Anything, testOrg, p.StartDate, newEnd, &excludeID).
		Return([]domain.Period{}, nil)
	repo.On("UpdatePeriod", mock.Anything, mock.AnythingOfType("domain.Period")).Return(nil)

	updated, err := f.svc.UpdatePeriod(context.Background(), testOrg, "p-1", dto.UpdatePeriodRequest{EndDate: &newEnd}, testUser)
	require.NoError(t, err)
	assert.True(t, updated.EndDate.Equal(newEnd))
	repo.AssertExpectations(t)
}

func TestGetPeriodNotFoundPassesThrough(t *testing.T) {
	repo := new(MockPeriodRepository)
	f := newPeriodService(repo)

	repo.On("FindPeriodByID", mock.Anything, testOrg, "missing").
		Return(nil, apperrors.NewEntityNotFound("period", "missing"))

	_, err := f.svc.GetPeriodByID(context.Background(), testOrg, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
