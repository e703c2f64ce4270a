package mapping

import (
	"github.com/accounted-hq/accounted-app/internal/core/domain"
	"github.com/accounted-hq/accounted-app/internal/models"
)

// ToModelJournal converts a domain Journal (header only) to its row shape.
func ToModelJournal(d domain.Journal) models.Journal {
	m := models.Journal{
		JournalID:         d.JournalID,
		OrganizationID:    d.OrganizationID,
		PeriodID:          d.PeriodID,
		JournalNumber:     d.JournalNumber,
		Description:       d.Description,
		Reference:         d.Reference,
		PostingDate:       d.PostingDate,
		Status:            models.JournalStatus(d.Status),
		CurrencyCode:      d.CurrencyCode,
		ReversalJournalID: d.ReversalJournalID,
		OriginalJournalID: d.OriginalJournalID,
		ExtUID:            d.ExtUID,
		PostedBy:          d.PostedBy,
		PostedAt:          d.PostedAt,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
	if !d.HashPrev.IsEmpty() {
		s := d.HashPrev.String()
		m.HashPrev = &s
	}
	if d.HashSelf != "" {
		s := d.HashSelf.String()
		m.HashSelf = &s
	}
	return m
}

// ToDomainJournal converts a row Journal to its domain shape. Lines are
// attached separately by the repository.
func ToDomainJournal(m models.Journal) domain.Journal {
	d := domain.Journal{
		JournalID:         m.JournalID,
		OrganizationID:    m.OrganizationID,
		PeriodID:          m.PeriodID,
		JournalNumber:     m.JournalNumber,
		Description:       m.Description,
		Reference:         m.Reference,
		PostingDate:       m.PostingDate,
		Status:            domain.JournalStatus(m.Status),
		CurrencyCode:      m.CurrencyCode,
		ReversalJournalID: m.ReversalJournalID,
		OriginalJournalID: m.OriginalJournalID,
		ExtUID:            m.ExtUID,
		PostedBy:          m.PostedBy,
		PostedAt:          m.PostedAt,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
	if m.HashPrev != nil {
		d.HashPrev = domain.JournalHash(*m.HashPrev)
	}
	if m.HashSelf != nil {
		d.HashSelf = domain.JournalHash(*m.HashSelf)
	}
	return d
}

// ToModelJournalLine converts a domain line to its row shape.
func ToModelJournalLine(organizationID string, d domain.JournalLine) models.JournalLine {
	m := models.JournalLine{
		LineID:           d.LineID,
		JournalID:        d.JournalID,
		OrganizationID:   organizationID,
		AccountID:        d.AccountID,
		LineNumber:       d.LineNumber,
		Description:      d.Description,
		DebitAmount:      d.DebitAmount.Amount.Decimal(),
		CreditAmount:     d.CreditAmount.Amount.Decimal(),
		CurrencyCode:     d.DebitAmount.Currency,
		OriginalAmount:   d.OriginalAmount.Amount.Decimal(),
		OriginalCurrency: d.OriginalAmount.Currency,
		ExchangeRate:     d.ExchangeRate,
		TaxAmount:        d.TaxAmount.Decimal(),
		TaxRate:          d.TaxRate,
	}
	if d.TaxCode != "" {
		code := d.TaxCode
		m.TaxCode = &code
	}
	return m
}

// ToDomainJournalLine converts a row line to its domain shape.
func ToDomainJournalLine(m models.JournalLine) (domain.JournalLine, error) {
	debit, err := domain.NewAmount(m.DebitAmount)
	if err != nil {
		return domain.JournalLine{}, err
	}
	credit, err := domain.NewAmount(m.CreditAmount)
	if err != nil {
		return domain.JournalLine{}, err
	}
	original, err := domain.NewAmount(m.OriginalAmount)
	if err != nil {
		return domain.JournalLine{}, err
	}
	taxAmount, err := domain.NewAmount(m.TaxAmount)
	if err != nil {
		return domain.JournalLine{}, err
	}

	d := domain.JournalLine{
		LineID:         m.LineID,
		JournalID:      m.JournalID,
		AccountID:      m.AccountID,
		LineNumber:     m.LineNumber,
		Description:    m.Description,
		DebitAmount:    domain.Money{Amount: debit, Currency: m.CurrencyCode},
		CreditAmount:   domain.Money{Amount: credit, Currency: m.CurrencyCode},
		OriginalAmount: domain.Money{Amount: original, Currency: m.OriginalCurrency},
		ExchangeRate:   m.ExchangeRate,
		TaxAmount:      taxAmount,
		TaxRate:        m.TaxRate,
	}
	if m.TaxCode != nil {
		d.TaxCode = *m.TaxCode
	}
	return d, nil
}

// ToDomainJournalLineSlice converts a slice of line rows.
func ToDomainJournalLineSlice(ms []models.JournalLine) ([]domain.JournalLine, error) {
	ds := make([]domain.JournalLine, len(ms))
	for i, m := range ms {
		d, err := ToDomainJournalLine(m)
		if err != nil {
			return nil, err
		}
		ds[i] = d
	}
	return ds, nil
}
