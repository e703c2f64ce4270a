package models

import "github.com/shopspring/decimal"

// JournalLine is the database row shape of one journal line. Money columns
// are fixed-point decimals with scale 4; exchange_rate has scale 6.
type JournalLine struct {
	LineID           string          `json:"lineID"`
	JournalID        string          `json:"journalID"`
	OrganizationID   string          `json:"organizationID"`
	AccountID        string          `json:"accountID"`
	LineNumber       int             `json:"lineNumber"`
	Description      string          `json:"description"`
	DebitAmount      decimal.Decimal `json:"debitAmount"`
	CreditAmount     decimal.Decimal `json:"creditAmount"`
	CurrencyCode     string          `json:"currencyCode"`
	OriginalAmount   decimal.Decimal `json:"originalAmount"`
	OriginalCurrency string          `json:"originalCurrency"`
	ExchangeRate     decimal.Decimal `json:"exchangeRate"`
	TaxCode          *string         `json:"taxCode"`
	TaxAmount        decimal.Decimal `json:"taxAmount"`
	TaxRate          decimal.Decimal `json:"taxRate"`
}
