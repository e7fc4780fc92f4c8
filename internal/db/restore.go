package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ldi/tasker/pkg/models"
)

// Restore replaces the whole database content with the given projects and
// journal entries. Nothing is changed if any record fails to apply.
func (db *DB) Restore(ctx context.Context, projects []*models.Project, entries []*models.JournalEntry) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"subtasks", "tasks", "projects", "journal_entries"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}

		for _, p := range projects {
			if !p.CreatedAt.IsZero() {
				_, err := tx.ExecContext(ctx,
					`INSERT INTO projects (id, name, description, created_at) VALUES (?, ?, ?, ?)`,
					p.ID, p.Name, p.Description, p.CreatedAt.UTC(),
				)
				if err != nil {
					return fmt.Errorf("failed to restore project %s: %w", p.ID, err)
				}
			}
			if err := saveProject(ctx, tx, p); err != nil {
				return fmt.Errorf("failed to restore project %s: %w", p.ID, err)
			}
		}

		for _, e := range entries {
			if err := saveJournalEntry(ctx, tx, e); err != nil {
				return fmt.Errorf("failed to restore journal entry %s: %w", e.ID, err)
			}
		}
		return nil
	})
}
