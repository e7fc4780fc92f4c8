package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ldi/tasker/internal/apperr"
	"github.com/ldi/tasker/pkg/models"
)

// SaveJournalEntry inserts the entry or replaces the one with the same id.
func (db *DB) SaveJournalEntry(ctx context.Context, e *models.JournalEntry) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		return saveJournalEntry(ctx, tx, e)
	})
}

func saveJournalEntry(ctx context.Context, exec executor, e *models.JournalEntry) error {
	query := `
		INSERT INTO journal_entries (id, entry_date, body)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			entry_date = excluded.entry_date,
			body = excluded.body,
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := exec.ExecContext(ctx, query, e.ID, e.Date, e.Body); err != nil {
		return fmt.Errorf("failed to save journal entry: %w", err)
	}
	return nil
}

func (db *DB) FindJournalEntry(ctx context.Context, id string) (*models.JournalEntry, error) {
	query := `
		SELECT id, entry_date, body, created_at, updated_at
		FROM journal_entries
		WHERE id = ?
	`
	e := &models.JournalEntry{}
	err := db.QueryRowContext(ctx, query, id).Scan(&e.ID, &e.Date, &e.Body, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get journal entry: %w", err)
	}
	return e, nil
}

// ListJournalEntries returns entries ordered by date, then id.
func (db *DB) ListJournalEntries(ctx context.Context) ([]*models.JournalEntry, error) {
	query := `
		SELECT id, entry_date, body, created_at, updated_at
		FROM journal_entries
		ORDER BY entry_date ASC, id ASC
	`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	defer rows.Close()

	entries := []*models.JournalEntry{}
	for rows.Next() {
		e := &models.JournalEntry{}
		if err := rows.Scan(&e.ID, &e.Date, &e.Body, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return entries, nil
}

func (db *DB) DeleteJournalEntry(ctx context.Context, id string) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM journal_entries WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete journal entry: %w", err)
		}

		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return apperr.NotFound("Journal entry not found with ID: %s", id)
		}
		return nil
	})
}
