package models

import "time"

// JournalStatus indicates the state of a journal row.
type JournalStatus string

const (
	Draft    JournalStatus = "DRAFT"
	Posted   JournalStatus = "POSTED"
	Reversed JournalStatus = "REVERSED"
)

// Journal is the database row shape of a journal. Hash columns hold 64-char
// lowercase hex; nil (SQL NULL) means unset (draft).
type Journal struct {
	JournalID         string        `json:"journalID"`
	OrganizationID    string        `json:"organizationID"`
	PeriodID          string        `json:"periodID"`
	JournalNumber     string        `json:"journalNumber"`
	Description       string        `json:"description"`
	Reference         string        `json:"reference"`
	PostingDate       time.Time     `json:"postingDate"`
	Status            JournalStatus `json:"status"`
	CurrencyCode      string        `json:"currencyCode"`
	HashPrev          *string       `json:"hashPrev"`
	HashSelf          *string       `json:"hashSelf"`
	ReversalJournalID *string       `json:"reversalJournalID"`
	OriginalJournalID *string       `json:"originalJournalID"`
	ExtUID            *string       `json:"extUID"`
	PostedBy          *string       `json:"postedBy"`
	PostedAt          *time.Time    `json:"postedAt"`
	AuditFields
}
