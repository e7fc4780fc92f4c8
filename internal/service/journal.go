package service

import (
	"context"
	"fmt"

	"github.com/labstack/gommon/log"
	"github.com/ldi/tasker/internal/apperr"
	"github.com/ldi/tasker/internal/ids"
	"github.com/ldi/tasker/internal/validate"
	"github.com/ldi/tasker/pkg/models"
)

type JournalService struct {
	store  JournalStore
	newID  ids.Generator
	logger *log.Logger
}

func NewJournalService(store JournalStore, opts ...Option) *JournalService {
	o := buildOptions(opts)
	return &JournalService{store: store, newID: o.gen, logger: o.logger}
}

func (s *JournalService) CreateJournalEntry(ctx context.Context, req models.NewJournalEntryRequest) (*models.JournalEntry, error) {
	date, err := validate.NewJournalEntry(req)
	if err != nil {
		s.logger.Debugf("rejected journal entry: %v", err)
		return nil, err
	}

	e := &models.JournalEntry{
		ID:   s.newID(),
		Date: date,
		Body: *req.Body,
	}
	if err := s.store.SaveJournalEntry(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to save journal entry: %w", err)
	}

	s.logger.Infof("created journal entry %s", e.ID)
	return e, nil
}

// EditJournalEntry stores the entry under the caller's id, creating it when
// no entry with that id exists yet.
func (s *JournalService) EditJournalEntry(ctx context.Context, req models.EditJournalEntryRequest) (*models.JournalEntry, error) {
	date, err := validate.EditJournalEntry(req)
	if err != nil {
		s.logger.Debugf("rejected journal edit: %v", err)
		return nil, err
	}

	e := &models.JournalEntry{
		ID:   *req.ID,
		Date: date,
		Body: *req.Body,
	}
	if err := s.store.SaveJournalEntry(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to save journal entry: %w", err)
	}

	s.logger.Infof("saved journal entry %s", e.ID)
	return e, nil
}

func (s *JournalService) GetAllJournalEntries(ctx context.Context) ([]*models.JournalEntry, error) {
	entries, err := s.store.ListJournalEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	if entries == nil {
		entries = []*models.JournalEntry{}
	}
	return entries, nil
}

func (s *JournalService) GetJournalEntryByID(ctx context.Context, id string) (*models.JournalEntry, error) {
	if err := validate.ID("Journal entry", id); err != nil {
		return nil, err
	}
	e, err := s.store.FindJournalEntry(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get journal entry: %w", err)
	}
	if e == nil {
		return nil, apperr.NotFound("Journal entry not found with ID: %s", id)
	}
	return e, nil
}

func (s *JournalService) DeleteJournalEntry(ctx context.Context, id string) error {
	if _, err := s.GetJournalEntryByID(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteJournalEntry(ctx, id); err != nil {
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}
	s.logger.Infof("deleted journal entry %s", id)
	return nil
}
