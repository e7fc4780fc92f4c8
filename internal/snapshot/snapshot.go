// Package snapshot exports and imports the whole database as JSON lines.
//
// A snapshot starts with a meta record followed by one record per project
// (with its tasks and subtasks) and one per journal entry:
//
//	{"record_type":"meta","version":1,"exported_at":"..."}
//	{"record_type":"project","project":{...}}
//	{"record_type":"journal_entry","journal_entry":{...}}
package snapshot

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/ldi/tasker/pkg/models"
)

const Version = 1

const (
	RecordMeta         = "meta"
	RecordProject      = "project"
	RecordJournalEntry = "journal_entry"
)

type Record struct {
	RecordType   string               `json:"record_type"`
	Version      int                  `json:"version,omitempty"`
	ExportedAt   *time.Time           `json:"exported_at,omitempty"`
	Project      *models.Project      `json:"project,omitempty"`
	JournalEntry *models.JournalEntry `json:"journal_entry,omitempty"`
}

// Source is what Export reads from.
type Source interface {
	ListProjects(ctx context.Context) ([]*models.Project, error)
	ListJournalEntries(ctx context.Context) ([]*models.JournalEntry, error)
}

// Target is what Import writes to.
type Target interface {
	Restore(ctx context.Context, projects []*models.Project, entries []*models.JournalEntry) error
}

// muter is implemented by stores whose change hook can be paused. Import
// pauses it so a restore never re-exports over the file being read.
type muter interface {
	DisableOnChange()
	EnableOnChange()
}

// Notifier is a store that can report successful writes.
type Notifier interface {
	Source
	SetOnChange(fn func(ctx context.Context))
}

// EnableAuto re-exports the snapshot to path after every successful write
// to store. Export failures are logged and never fail the write.
func EnableAuto(store Notifier, path string, logger *log.Logger) {
	store.SetOnChange(func(ctx context.Context) {
		if err := Export(ctx, store, path); err != nil && logger != nil {
			logger.Warnf("auto snapshot to %s failed: %v", path, err)
		}
	})
}

// Export writes a snapshot of src to path atomically using a temporary file.
func Export(ctx context.Context, src Source, path string) error {
	projects, err := src.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}
	entries, err := src.ListJournalEntries(ctx)
	if err != nil {
		return fmt.Errorf("failed to list journal entries: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, "snapshot-*.jsonl")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempFile.Name())
		}
	}()

	w := bufio.NewWriter(tempFile)
	enc := json.NewEncoder(w)

	now := time.Now().UTC()
	if err := enc.Encode(Record{RecordType: RecordMeta, Version: Version, ExportedAt: &now}); err != nil {
		return fmt.Errorf("failed to write meta record: %w", err)
	}
	for _, p := range projects {
		if err := enc.Encode(Record{RecordType: RecordProject, Project: p}); err != nil {
			return fmt.Errorf("failed to write project %s: %w", p.ID, err)
		}
	}
	for _, e := range entries {
		if err := enc.Encode(Record{RecordType: RecordJournalEntry, JournalEntry: e}); err != nil {
			return fmt.Errorf("failed to write journal entry %s: %w", e.ID, err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	filename := tempFile.Name()
	tempFile = nil // Prevent defer from removing it

	if err := os.Rename(filename, path); err != nil {
		os.Remove(filename)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Import reads the snapshot at path and replaces the content of dst with it.
// The file is parsed completely before anything is written.
func Import(ctx context.Context, dst Target, path string) error {
	projects, entries, err := Read(path)
	if err != nil {
		return err
	}
	if m, ok := dst.(muter); ok {
		m.DisableOnChange()
		defer m.EnableOnChange()
	}
	if err := dst.Restore(ctx, projects, entries); err != nil {
		return fmt.Errorf("failed to restore snapshot: %w", err)
	}
	return nil
}

// Read parses a snapshot file. Unknown record types are skipped.
func Read(path string) ([]*models.Project, []*models.JournalEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer file.Close()

	projects := []*models.Project{}
	entries := []*models.JournalEntry{}
	seen := newIDSet()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, nil, fmt.Errorf("line %d: failed to parse record: %w", lineNum, err)
		}

		switch rec.RecordType {
		case RecordMeta:
			if rec.Version > Version {
				return nil, nil, fmt.Errorf("line %d: unsupported snapshot version %d", lineNum, rec.Version)
			}
		case RecordProject:
			if rec.Project == nil || rec.Project.ID == "" {
				return nil, nil, fmt.Errorf("line %d: project record without id", lineNum)
			}
			if !seen.add("project", rec.Project.ID) {
				return nil, nil, fmt.Errorf("line %d: duplicate project %s", lineNum, rec.Project.ID)
			}
			if err := attach(rec.Project, seen); err != nil {
				return nil, nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			projects = append(projects, rec.Project)
		case RecordJournalEntry:
			if rec.JournalEntry == nil || rec.JournalEntry.ID == "" {
				return nil, nil, fmt.Errorf("line %d: journal entry record without id", lineNum)
			}
			if !seen.add("journal_entry", rec.JournalEntry.ID) {
				return nil, nil, fmt.Errorf("line %d: duplicate journal entry %s", lineNum, rec.JournalEntry.ID)
			}
			entries = append(entries, rec.JournalEntry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return projects, entries, nil
}

// idSet tracks the ids already read, per kind. Restore upserts by id, so a
// repeated id would silently overwrite an earlier record.
type idSet map[string]map[string]struct{}

func newIDSet() idSet {
	return idSet{}
}

// add reports false when id was already recorded for kind. Empty ids never
// collide.
func (s idSet) add(kind, id string) bool {
	if id == "" {
		return true
	}
	ids, ok := s[kind]
	if !ok {
		ids = map[string]struct{}{}
		s[kind] = ids
	}
	if _, dup := ids[id]; dup {
		return false
	}
	ids[id] = struct{}{}
	return true
}

// attach restores the owner ids that are not part of the wire form and
// drops null list items. Task and subtask ids must be unique across the
// whole snapshot.
func attach(p *models.Project, seen idSet) error {
	p.Tasks = compact(p.Tasks)
	p.Backlog = compact(p.Backlog)
	for _, t := range p.AllTasks() {
		if t.ID == "" {
			return fmt.Errorf("project %s has a task without id", p.ID)
		}
		if !seen.add("task", t.ID) {
			return fmt.Errorf("duplicate task %s", t.ID)
		}
		t.ProjectID = p.ID

		subtasks := make([]*models.Subtask, 0, len(t.Subtasks))
		for _, st := range t.Subtasks {
			if st == nil {
				continue
			}
			if st.ID == "" {
				return fmt.Errorf("task %s has a subtask without id", t.ID)
			}
			if !seen.add("subtask", st.ID) {
				return fmt.Errorf("duplicate subtask %s", st.ID)
			}
			st.TaskID = t.ID
			subtasks = append(subtasks, st)
		}
		t.Subtasks = subtasks
	}
	return nil
}

func compact(tasks []*models.Task) []*models.Task {
	out := make([]*models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}
