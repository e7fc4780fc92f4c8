package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ldi/tasker/internal/apperr"
	"github.com/ldi/tasker/pkg/models"
)

const (
	listActive  = "active"
	listBacklog = "backlog"
)

// SaveProject inserts or updates p and replaces its task sequences with the
// ones on p, in a single transaction. Tasks of the project that are not on p
// are deleted together with their subtasks.
func (db *DB) SaveProject(ctx context.Context, p *models.Project) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		return saveProject(ctx, tx, p)
	})
}

func saveProject(ctx context.Context, exec executor, p *models.Project) error {
	query := `
		INSERT INTO projects (id, name, description)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := exec.ExecContext(ctx, query, p.ID, p.Name, p.Description); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}

	if _, err := exec.ExecContext(ctx, `DELETE FROM tasks WHERE project_id = ?`, p.ID); err != nil {
		return fmt.Errorf("failed to clear tasks: %w", err)
	}

	for i, t := range p.Tasks {
		if err := saveTask(ctx, exec, p.ID, listActive, i, t); err != nil {
			return err
		}
	}
	for i, t := range p.Backlog {
		if err := saveTask(ctx, exec, p.ID, listBacklog, i, t); err != nil {
			return err
		}
	}
	return nil
}

// saveTask upserts by id, so a task id previously owned by another project
// moves to this one.
func saveTask(ctx context.Context, exec executor, projectID, list string, position int, t *models.Task) error {
	query := `
		INSERT INTO tasks (id, project_id, list, position, name, description, status, due_date, difficulty, task_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			project_id = excluded.project_id,
			list = excluded.list,
			position = excluded.position,
			name = excluded.name,
			description = excluded.description,
			status = excluded.status,
			due_date = excluded.due_date,
			difficulty = excluded.difficulty,
			task_type = excluded.task_type
	`
	_, err := exec.ExecContext(ctx, query,
		t.ID, projectID, list, position, t.Name, t.Description, t.Status, t.DueDate, t.Difficulty, string(t.TaskType),
	)
	if err != nil {
		return fmt.Errorf("failed to save task %s: %w", t.ID, err)
	}

	if _, err := exec.ExecContext(ctx, `DELETE FROM subtasks WHERE task_id = ?`, t.ID); err != nil {
		return fmt.Errorf("failed to clear subtasks of task %s: %w", t.ID, err)
	}

	for i, st := range t.Subtasks {
		query := `
			INSERT INTO subtasks (id, task_id, position, name, description, status, due_date, difficulty)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				task_id = excluded.task_id,
				position = excluded.position,
				name = excluded.name,
				description = excluded.description,
				status = excluded.status,
				due_date = excluded.due_date,
				difficulty = excluded.difficulty
		`
		_, err := exec.ExecContext(ctx, query,
			st.ID, t.ID, i, st.Name, st.Description, st.Status, st.DueDate, st.Difficulty,
		)
		if err != nil {
			return fmt.Errorf("failed to save subtask %s: %w", st.ID, err)
		}
	}
	return nil
}

// FindProject loads the whole aggregate. It returns nil, nil when there is
// no project with the given id.
func (db *DB) FindProject(ctx context.Context, id string) (*models.Project, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM projects
		WHERE id = ?
	`
	p := &models.Project{}
	err := db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if err := loadTasks(ctx, db.DB, []*models.Project{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// ListProjects returns every project, oldest first.
func (db *DB) ListProjects(ctx context.Context) ([]*models.Project, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM projects
		ORDER BY created_at ASC, rowid ASC
	`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []*models.Project{}
	for rows.Next() {
		p := &models.Project{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	rows.Close()

	if err := loadTasks(ctx, db.DB, projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (db *DB) ExistsProject(ctx context.Context, id string) (bool, error) {
	var exists int
	err := db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM projects WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check project: %w", err)
	}
	return exists == 1, nil
}

// DeleteProject removes the project; tasks and subtasks follow by cascade.
func (db *DB) DeleteProject(ctx context.Context, id string) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}

		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return apperr.NotFound("Project not found with ID: %s", id)
		}
		return nil
	})
}

// loadTasks fills the task sequences of the given projects. Every project
// ends up with non-nil (possibly empty) Tasks and Backlog.
func loadTasks(ctx context.Context, exec executor, projects []*models.Project) error {
	byID := make(map[string]*models.Project, len(projects))
	for _, p := range projects {
		p.Tasks = []*models.Task{}
		p.Backlog = []*models.Task{}
		byID[p.ID] = p
	}
	if len(projects) == 0 {
		return nil
	}

	taskQuery := `
		SELECT id, project_id, list, name, description, status, due_date, difficulty, task_type
		FROM tasks
		ORDER BY project_id, list, position
	`
	if len(projects) == 1 {
		taskQuery = `
			SELECT id, project_id, list, name, description, status, due_date, difficulty, task_type
			FROM tasks
			WHERE project_id = ?
			ORDER BY list, position
		`
	}
	args := []any{}
	if len(projects) == 1 {
		args = append(args, projects[0].ID)
	}

	rows, err := exec.QueryContext(ctx, taskQuery, args...)
	if err != nil {
		return fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	tasks := map[string]*models.Task{}
	for rows.Next() {
		t := &models.Task{Subtasks: []*models.Subtask{}}
		var list, taskType string
		if err := rows.Scan(
			&t.ID, &t.ProjectID, &list, &t.Name, &t.Description, &t.Status, &t.DueDate, &t.Difficulty, &taskType,
		); err != nil {
			return fmt.Errorf("failed to scan task: %w", err)
		}
		t.TaskType = models.TaskType(taskType)

		p, ok := byID[t.ProjectID]
		if !ok {
			continue
		}
		if list == listBacklog {
			p.Backlog = append(p.Backlog, t)
		} else {
			p.Tasks = append(p.Tasks, t)
		}
		tasks[t.ID] = t
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows error: %w", err)
	}
	rows.Close()

	if len(tasks) == 0 {
		return nil
	}
	return loadSubtasks(ctx, exec, tasks)
}

func loadSubtasks(ctx context.Context, exec executor, tasks map[string]*models.Task) error {
	rows, err := exec.QueryContext(ctx, `
		SELECT id, task_id, name, description, status, due_date, difficulty
		FROM subtasks
		ORDER BY task_id, position
	`)
	if err != nil {
		return fmt.Errorf("failed to query subtasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		st := &models.Subtask{}
		if err := rows.Scan(&st.ID, &st.TaskID, &st.Name, &st.Description, &st.Status, &st.DueDate, &st.Difficulty); err != nil {
			return fmt.Errorf("failed to scan subtask: %w", err)
		}
		if t, ok := tasks[st.TaskID]; ok {
			t.Subtasks = append(t.Subtasks, st)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows error: %w", err)
	}
	return nil
}
