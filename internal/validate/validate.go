// Package validate rejects malformed requests before they reach storage.
package validate

import (
	"strings"

	"github.com/ldi/tasker/internal/apperr"
	"github.com/ldi/tasker/pkg/models"
)

// Blank reports whether v is nil, empty, or whitespace only.
func Blank(v *string) bool {
	return v == nil || strings.TrimSpace(*v) == ""
}

// Required fails with an invalid-request error naming field when v is blank.
func Required(field string, v *string) error {
	if Blank(v) {
		return apperr.InvalidRequest("%s cannot be empty or null", field)
	}
	return nil
}

// ID checks an identifier used for lookup or deletion, e.g. ID("Project", id).
func ID(kind string, id string) error {
	return Required(kind+" ID", &id)
}

func NewProject(req models.NewProjectRequest) error {
	if err := Required("Project name", req.Name); err != nil {
		return err
	}
	return Required("Project description", req.Description)
}

func UpdateProject(req models.UpdateProjectRequest) error {
	if err := Required("Project ID", req.ID); err != nil {
		return err
	}
	if err := Required("Project name", req.Name); err != nil {
		return err
	}
	return Required("Project description", req.Description)
}

// NewJournalEntry checks a creation request and returns its parsed date.
func NewJournalEntry(req models.NewJournalEntryRequest) (models.Date, error) {
	if err := Required("Journal entry date", req.Date); err != nil {
		return models.Date{}, err
	}
	if err := Required("Journal entry body", req.Body); err != nil {
		return models.Date{}, err
	}
	return journalDate(*req.Date)
}

// EditJournalEntry checks an edit request and returns its parsed date.
func EditJournalEntry(req models.EditJournalEntryRequest) (models.Date, error) {
	if err := Required("Journal entry ID", req.ID); err != nil {
		return models.Date{}, err
	}
	if err := Required("Journal entry date", req.Date); err != nil {
		return models.Date{}, err
	}
	if err := Required("Journal entry body", req.Body); err != nil {
		return models.Date{}, err
	}
	return journalDate(*req.Date)
}

func journalDate(s string) (models.Date, error) {
	d, err := models.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return models.Date{}, apperr.InvalidRequest("Journal entry date is invalid: %v", err)
	}
	return d, nil
}
