package service

import (
	"context"

	"github.com/ldi/tasker/pkg/models"
)

// ProjectStore persists whole project aggregates. Implementations must save,
// load and delete a project together with its tasks and subtasks, and
// SaveProject must be atomic.
type ProjectStore interface {
	// FindProject returns nil, nil when no project has the id.
	FindProject(ctx context.Context, id string) (*models.Project, error)
	SaveProject(ctx context.Context, p *models.Project) error
	ExistsProject(ctx context.Context, id string) (bool, error)
	DeleteProject(ctx context.Context, id string) error
	ListProjects(ctx context.Context) ([]*models.Project, error)
}

type JournalStore interface {
	// SaveJournalEntry inserts or replaces the entry with e.ID.
	SaveJournalEntry(ctx context.Context, e *models.JournalEntry) error
	// FindJournalEntry returns nil, nil when no entry has the id.
	FindJournalEntry(ctx context.Context, id string) (*models.JournalEntry, error)
	ListJournalEntries(ctx context.Context) ([]*models.JournalEntry, error)
	DeleteJournalEntry(ctx context.Context, id string) error
}
