package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ldi/tasker/pkg/models"
)

func TestOpen(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	var mode string
	err = db.QueryRow("PRAGMA journal_mode").Scan(&mode)
	if err != nil {
		t.Fatalf("Failed to query journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("Expected journal_mode wal, got %s", mode)
	}

	var fk int
	err = db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if err != nil {
		t.Fatalf("Failed to query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("Expected foreign_keys enabled (1), got %d", fk)
	}
}

func TestSchemaConstraints(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.Exec(`INSERT INTO projects (id, name, description) VALUES ('p1', 'n', 'd')`); err != nil {
		t.Fatalf("Failed to insert project: %v", err)
	}

	tests := []struct {
		name  string
		query string
	}{
		{"unknown list", `INSERT INTO tasks (id, project_id, list, position) VALUES ('t1', 'p1', 'archive', 0)`},
		{"unknown project", `INSERT INTO tasks (id, project_id, list, position) VALUES ('t2', 'nope', 'active', 0)`},
		{"unknown task", `INSERT INTO subtasks (id, task_id, position) VALUES ('s1', 'nope', 0)`},
		{"undated journal entry", `INSERT INTO journal_entries (id, body) VALUES ('j1', 'x')`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := db.Exec(tt.query); err == nil {
				t.Errorf("Expected constraint violation for %s", tt.name)
			}
		})
	}

	if _, err := db.Exec(`INSERT INTO tasks (id, project_id, list, position) VALUES ('t3', 'p1', 'backlog', 0)`); err != nil {
		t.Fatalf("Failed to insert task: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO subtasks (id, task_id, position) VALUES ('s2', 't3', 0)`); err != nil {
		t.Fatalf("Failed to insert subtask: %v", err)
	}
	if _, err := db.Exec(`DELETE FROM projects WHERE id = 'p1'`); err != nil {
		t.Fatalf("Failed to delete project: %v", err)
	}

	var n int
	if err := db.QueryRow(`SELECT (SELECT COUNT(*) FROM tasks) + (SELECT COUNT(*) FROM subtasks)`).Scan(&n); err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected cascade to remove tasks and subtasks, %d rows left", n)
	}
}

func TestInit(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	for _, table := range []string{"projects", "tasks", "subtasks", "journal_entries"} {
		if _, err := db.Exec("SELECT 1 FROM " + table + " LIMIT 1"); err != nil {
			t.Fatalf("%s table does not exist or query failed: %v", table, err)
		}
	}

	// Init is idempotent.
	if err := db.Init(ctx); err != nil {
		t.Fatalf("Second Init failed: %v", err)
	}
}

func TestOnChangeFiresAfterCommit(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	calls := 0
	db.SetOnChange(func(ctx context.Context) { calls++ })

	if err := db.SaveJournalEntry(ctx, &models.JournalEntry{ID: "j1", Date: models.NewDate(2024, 1, 1), Body: "x"}); err != nil {
		t.Fatalf("Failed to save journal entry: %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 onChange call, got %d", calls)
	}

	// A failed write rolls back and does not notify.
	if err := db.DeleteJournalEntry(ctx, "missing"); err == nil {
		t.Fatal("Expected error deleting missing entry")
	}
	if calls != 1 {
		t.Errorf("Expected onChange not to fire on failure, got %d calls", calls)
	}

	db.DisableOnChange()
	if err := db.DeleteJournalEntry(ctx, "j1"); err != nil {
		t.Fatalf("Failed to delete journal entry: %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected disabled hook to stay silent, got %d calls", calls)
	}
}

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Init(context.Background()); err != nil {
		t.Fatalf("Failed to init database: %v", err)
	}
	return db
}
