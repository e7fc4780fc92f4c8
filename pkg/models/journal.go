package models

import "time"

type JournalEntry struct {
	ID        string    `json:"entry_id"`
	Date      Date      `json:"entry_date"`
	Body      string    `json:"entry_body"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Journal request dates stay strings until validation so that a malformed
// date is reported as a bad request rather than a decode failure.
type NewJournalEntryRequest struct {
	Date *string `json:"entry_date"`
	Body *string `json:"entry_body"`
}

type EditJournalEntryRequest struct {
	ID   *string `json:"entry_id"`
	Date *string `json:"entry_date"`
	Body *string `json:"entry_body"`
}

// String returns a pointer to s; handy for building requests.
func String(s string) *string {
	return &s
}
