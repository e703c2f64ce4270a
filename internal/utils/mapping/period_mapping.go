package mapping

import (
	"github.com/accounted-hq/accounted-app/internal/core/domain"
	"github.com/accounted-hq/accounted-app/internal/models"
)

// ToModelPeriod converts a domain Period to its row shape.
func ToModelPeriod(d domain.Period) models.Period {
	return models.Period{
		PeriodID:       d.PeriodID,
		OrganizationID: d.OrganizationID,
		Name:           d.Name,
		StartDate:      d.StartDate,
		EndDate:        d.EndDate,
		Status:         models.PeriodStatus(d.Status),
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPeriod converts a row Period to its domain shape.
func ToDomainPeriod(m models.Period) domain.Period {
	return domain.Period{
		PeriodID:       m.PeriodID,
		OrganizationID: m.OrganizationID,
		Name:           m.Name,
		StartDate:      m.StartDate,
		EndDate:        m.EndDate,
		Status:         domain.PeriodStatus(m.Status),
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainPeriodSlice converts a slice of period rows.
func ToDomainPeriodSlice(ms []models.Period) []domain.Period {
	ds := make([]domain.Period, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainPeriod(m)
	}
	return ds
}
