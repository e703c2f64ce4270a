package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accounted-hq/accounted-app/internal/apperrors"
)

func makePeriod(start, end time.Time) Period {
	return Period{
		PeriodID:       "p-1",
		OrganizationID: "org-1",
		Name:           "2024-Q2",
		StartDate:      start,
		EndDate:        end,
		Status:         PeriodOpen,
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPeriodValidate(t *testing.T) {
	p := makePeriod(date(2024, 4, 1), date(2024, 6, 30))
	assert.NoError(t, p.Validate())

	empty := p
	empty.Name = "  "
	assert.Error(t, empty.Validate())

	inverted := p
	inverted.StartDate, inverted.EndDate = inverted.EndDate, inverted.StartDate
	assert.Error(t, inverted.Validate())

	tooLong := p
	tooLong.EndDate = tooLong.StartDate.AddDate(2, 0, 1)
	assert.Error(t, tooLong.Validate())

	exactlyTwoYears := p
	exactlyTwoYears.EndDate = exactlyTwoYears.StartDate.AddDate(2, 0, 0)
	assert.NoError(t, exactlyTwoYears.Validate())
}

func TestPeriodOverlapsIsClosedInterval(t *testing.T) {
	q1 := makePeriod(date(2024, 1, 1), date(2024, 3, 31))

	overlapping := makePeriod(date(2024, 3, 15), date(2024, 4, 30))
	assert.True(t, q1.Overlaps(&overlapping))
	assert.True(t, overlapping.Overlaps(&q1))

	// Sharing a single boundary day still counts as overlap.
	touching := makePeriod(date(2024, 3, 31), date(2024, 6, 30))
	assert.True(t, q1.Overlaps(&touching))

	disjoint := makePeriod(date(2024, 4, 1), date(2024, 6, 30))
	assert.False(t, q1.Overlaps(&disjoint))
}

func TestPeriodContainsDate(t *testing.T) {
	p := makePeriod(date(2024, 4, 1), date(2024, 6, 30))

	assert.True(t, p.ContainsDate(date(2024, 4, 1)))
	assert.True(t, p.ContainsDate(date(2024, 5, 15)))
	assert.True(t, p.ContainsDate(date(2024, 6, 30)))
	assert.False(t, p.ContainsDate(date(2024, 3, 31)))
	assert.False(t, p.ContainsDate(date(2024, 7, 1)))
}

func TestPeriodStateMachine(t *testing.T) {
	now := date(2024, 7, 1)
	p := makePeriod(date(2024, 4, 1), date(2024, 6, 30))

	// OPEN -> CLOSING -> OPEN -> CLOSING -> CLOSED
	require.NoError(t, p.StartClosing("u-1", now))
	assert.Equal(t, PeriodClosing, p.Status)

	require.NoError(t, p.Reopen("u-1", now))
	assert.Equal(t, PeriodOpen, p.Status)

	require.NoError(t, p.StartClosing("u-1", now))
	require.NoError(t, p.Close("u-1", now))
	assert.Equal(t, PeriodClosed, p.Status)

	// CLOSED is terminal.
	err := p.Reopen("u-1", now)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrBusinessRule))
	assert.Error(t, p.StartClosing("u-1", now))
	assert.Error(t, p.Close("u-1", now))
}

func TestPeriodWrongStateTransitions(t *testing.T) {
	now := date(2024, 7, 1)
	p := makePeriod(date(2024, 4, 1), date(2024, 6, 30))

	// Cannot close or reopen straight from OPEN.
	assert.Error(t, p.Close("u-1", now))
	assert.Error(t, p.Reopen("u-1", now))
}
