package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/ldi/tasker/internal/apperr"
	"github.com/ldi/tasker/pkg/models"
)

func (s *Store) SaveJournalEntry(ctx context.Context, e *models.JournalEntry) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		return saveJournalEntry(ctx, tx, e)
	})
}

func saveJournalEntry(ctx context.Context, q querier, e *models.JournalEntry) error {
	query := `
		INSERT INTO journal_entries (id, entry_date, body)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			entry_date = EXCLUDED.entry_date,
			body = EXCLUDED.body,
			updated_at = now()
	`
	if _, err := q.Exec(ctx, query, e.ID, dateArg(e.Date), e.Body); err != nil {
		return fmt.Errorf("failed to save journal entry: %w", err)
	}
	return nil
}

const journalColumns = `id, to_char(entry_date, 'YYYY-MM-DD'), body, created_at, updated_at`

func scanJournalEntry(row pgx.Row) (*models.JournalEntry, error) {
	e := &models.JournalEntry{}
	var date string
	var created, updated time.Time
	if err := row.Scan(&e.ID, &date, &e.Body, &created, &updated); err != nil {
		return nil, err
	}
	d, err := models.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("failed to parse date of journal entry %s: %w", e.ID, err)
	}
	e.Date = d
	e.CreatedAt = created
	e.UpdatedAt = updated
	return e, nil
}

func (s *Store) FindJournalEntry(ctx context.Context, id string) (*models.JournalEntry, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+journalColumns+` FROM journal_entries WHERE id = $1`, id)
	e, err := scanJournalEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get journal entry: %w", err)
	}
	return e, nil
}

func (s *Store) ListJournalEntries(ctx context.Context) ([]*models.JournalEntry, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+journalColumns+` FROM journal_entries ORDER BY entry_date ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	defer rows.Close()

	entries := []*models.JournalEntry{}
	for rows.Next() {
		e, err := scanJournalEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return entries, nil
}

func (s *Store) DeleteJournalEntry(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM journal_entries WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete journal entry: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("Journal entry not found with ID: %s", id)
		}
		return nil
	})
}

// Restore replaces all stored projects and journal entries in one transaction.
func (s *Store) Restore(ctx context.Context, projects []*models.Project, entries []*models.JournalEntry) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `TRUNCATE subtasks, tasks, projects, journal_entries`); err != nil {
			return fmt.Errorf("failed to clear tables: %w", err)
		}

		for _, p := range projects {
			if !p.CreatedAt.IsZero() {
				_, err := tx.Exec(ctx,
					`INSERT INTO projects (id, name, description, created_at) VALUES ($1, $2, $3, $4)`,
					p.ID, p.Name, p.Description, p.CreatedAt,
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
