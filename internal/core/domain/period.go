package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/accounted-hq/accounted-app/internal/apperrors"
)

// PeriodStatus indicates the state of an accounting period.
type PeriodStatus string

const (
	PeriodOpen    PeriodStatus = "OPEN"
	PeriodClosing PeriodStatus = "CLOSING"
	PeriodClosed  PeriodStatus = "CLOSED"
)

// maxPeriodYears bounds a period to two years.
const maxPeriodYears = 2

// Period is an accounting time interval. Postings are accepted only while it
// is OPEN; CLOSED is terminal.
type Period struct {
	PeriodID       string       `json:"periodID"`
	OrganizationID string       `json:"organizationID"`
	Name           string       `json:"name"`
	StartDate      time.Time    `json:"startDate"`
	EndDate        time.Time    `json:"endDate"`
	Status         PeriodStatus `json:"status"`
	AuditFields
}

// Validate checks the static invariants of the period itself.
func (p *Period) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return apperrors.NewValidationFailed("period name must not be empty", nil)
	}
	if !p.StartDate.Before(p.EndDate) {
		return apperrors.NewValidationFailed("period start date must be before end date", map[string]any{
			"startDate": p.StartDate.Format(time.RFC3339),
			"endDate":   p.EndDate.Format(time.RFC3339),
		})
	}
	if p.EndDate.After(p.StartDate.AddDate(maxPeriodYears, 0, 0)) {
		return apperrors.NewValidationFailed("period duration must not exceed 2 years", nil)
	}
	return nil
}

// Overlaps applies the closed-interval intersection test:
// a.start <= b.end && b.start <= a.end.
func (p *Period) Overlaps(other *Period) bool {
	return !p.StartDate.After(other.EndDate) && !other.StartDate.After(p.EndDate)
}

// ContainsDate reports whether d falls inside [StartDate, EndDate].
func (p *Period) ContainsDate(d time.Time) bool {
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}

// IsOpen reports whether the period accepts postings and edits.
func (p *Period) IsOpen() bool {
	return p.Status == PeriodOpen
}

// StartClosing transitions OPEN -> CLOSING.
func (p *Period) StartClosing(by string, at time.Time) error {
	if p.Status != PeriodOpen {
		return p.wrongTransition("start closing", PeriodOpen)
	}
	p.Status = PeriodClosing
	p.touch(by, at)
	return nil
}

// Close transitions CLOSING -> CLOSED. CLOSED is terminal.
func (p *Period) Close(by string, at time.Time) error {
	if p.Status != PeriodClosing {
		return p.wrongTransition("close", PeriodClosing)
	}
	p.Status = PeriodClosed
	p.touch(by, at)
	return nil
}

// Reopen transitions CLOSING -> OPEN.
func (p *Period) Reopen(by string, at time.Time) error {
	if p.Status != PeriodClosing {
		return p.wrongTransition("reopen", PeriodClosing)
	}
	p.Status = PeriodOpen
	p.touch(by, at)
	return nil
}

func (p *Period) touch(by string, at time.Time) {
	p.LastUpdatedAt = at
	p.LastUpdatedBy = by
}

func (p *Period) wrongTransition(action string, required PeriodStatus) error {
	return apperrors.NewBusinessRuleViolation(
		fmt.Sprintf("cannot %s period %s: status is %s, expected %s", action, p.PeriodID, p.Status, required),
		map[string]any{"periodId": p.PeriodID, "status": string(p.Status)},
	)
}
