package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/ldi/tasker/internal/apperr"
	"github.com/ldi/tasker/pkg/models"
)

const (
	listActive  = "active"
	listBacklog = "backlog"
)

// dateArg binds a date parameter; the zero date is NULL.
func dateArg(d models.Date) interface{} {
	if d.IsZero() {
		return nil
	}
	return d.String()
}

func scanDate(s *string) (models.Date, error) {
	if s == nil || *s == "" {
		return models.Date{}, nil
	}
	return models.ParseDate(*s)
}

func (s *Store) SaveProject(ctx context.Context, p *models.Project) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		return saveProject(ctx, tx, p)
	})
}

func saveProject(ctx context.Context, q querier, p *models.Project) error {
	query := `
		INSERT INTO projects (id, name, description)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			updated_at = now()
	`
	if _, err := q.Exec(ctx, query, p.ID, p.Name, p.Description); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}

	if _, err := q.Exec(ctx, `DELETE FROM tasks WHERE project_id = $1`, p.ID); err != nil {
		return fmt.Errorf("failed to clear tasks: %w", err)
	}

	for i, t := range p.Tasks {
		if err := saveTask(ctx, q, p.ID, listActive, i, t); err != nil {
			return err
		}
	}
	for i, t := range p.Backlog {
		if err := saveTask(ctx, q, p.ID, listBacklog, i, t); err != nil {
			return err
		}
	}
	return nil
}

func saveTask(ctx context.Context, q querier, projectID, list string, position int, t *models.Task) error {
	query := `
		INSERT INTO tasks (id, project_id, list, position, name, description, status, due_date, difficulty, task_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			project_id = EXCLUDED.project_id,
			list = EXCLUDED.list,
			position = EXCLUDED.position,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			status = EXCLUDED.status,
			due_date = EXCLUDED.due_date,
			difficulty = EXCLUDED.difficulty,
			task_type = EXCLUDED.task_type
	`
	_, err := q.Exec(ctx, query,
		t.ID, projectID, list, position, t.Name, t.Description, t.Status, dateArg(t.DueDate), t.Difficulty, string(t.TaskType),
	)
	if err != nil {
		return fmt.Errorf("failed to save task %s: %w", t.ID, err)
	}

	if _, err := q.Exec(ctx, `DELETE FROM subtasks WHERE task_id = $1`, t.ID); err != nil {
		return fmt.Errorf("failed to clear subtasks of task %s: %w", t.ID, err)
	}

	for i, st := range t.Subtasks {
		query := `
			INSERT INTO subtasks (id, task_id, position, name, description, status, due_date, difficulty)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE SET
				task_id = EXCLUDED.task_id,
				position = EXCLUDED.position,
				name = EXCLUDED.name,
				description = EXCLUDED.description,
				status = EXCLUDED.status,
				due_date = EXCLUDED.due_date,
				difficulty = EXCLUDED.difficulty
		`
		_, err := q.Exec(ctx, query,
			st.ID, t.ID, i, st.Name, st.Description, st.Status, dateArg(st.DueDate), st.Difficulty,
		)
		if err != nil {
			return fmt.Errorf("failed to save subtask %s: %w", st.ID, err)
		}
	}
	return nil
}

// FindProject returns nil, nil when there is no project with the given id.
func (s *Store) FindProject(ctx context.Context, id string) (*models.Project, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM projects
		WHERE id = $1
	`
	p := &models.Project{}
	err := s.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if err := loadTasks(ctx, s.pool, []*models.Project{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) ListProjects(ctx context.Context) ([]*models.Project, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM projects
		ORDER BY created_at ASC, id ASC
	`
	rows, err := s.pool.Query(ctx, query)
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

	if err := loadTasks(ctx, s.pool, projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *Store) ExistsProject(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check project: %w", err)
	}
	return exists, nil
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("Project not found with ID: %s", id)
		}
		return nil
	})
}

func loadTasks(ctx context.Context, q querier, projects []*models.Project) error {
	if len(projects) == 0 {
		return nil
	}
	byID := make(map[string]*models.Project, len(projects))
	ids := make([]string, 0, len(projects))
	for _, p := range projects {
		p.Tasks = []*models.Task{}
		p.Backlog = []*models.Task{}
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	rows, err := q.Query(ctx, `
		SELECT id, project_id, list, name, description, status, to_char(due_date, 'YYYY-MM-DD'), difficulty, task_type
		FROM tasks
		WHERE project_id = ANY($1)
		ORDER BY project_id, list, position
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	tasks := map[string]*models.Task{}
	taskIDs := []string{}
	for rows.Next() {
		t := &models.Task{Subtasks: []*models.Subtask{}}
		var list, taskType string
		var due *string
		if err := rows.Scan(
			&t.ID, &t.ProjectID, &list, &t.Name, &t.Description, &t.Status, &due, &t.Difficulty, &taskType,
		); err != nil {
			return fmt.Errorf("failed to scan task: %w", err)
		}
		if t.DueDate, err = scanDate(due); err != nil {
			return fmt.Errorf("failed to parse due date of task %s: %w", t.ID, err)
		}
		t.TaskType = models.TaskType(taskType)

		p := byID[t.ProjectID]
		if list == listBacklog {
			p.Backlog = append(p.Backlog, t)
		} else {
			p.Tasks = append(p.Tasks, t)
		}
		tasks[t.ID] = t
		taskIDs = append(taskIDs, t.ID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows error: %w", err)
	}
	rows.Close()

	if len(taskIDs) == 0 {
		return nil
	}

	subRows, err := q.Query(ctx, `
		SELECT id, task_id, name, description, status, to_char(due_date, 'YYYY-MM-DD'), difficulty
		FROM subtasks
		WHERE task_id = ANY($1)
		ORDER BY task_id, position
	`, taskIDs)
	if err != nil {
		return fmt.Errorf("failed to query subtasks: %w", err)
	}
	defer subRows.Close()

	for subRows.Next() {
		st := &models.Subtask{}
		var due *string
		if err := subRows.Scan(&st.ID, &st.TaskID, &st.Name, &st.Description, &st.Status, &due, &st.Difficulty); err != nil {
			return fmt.Errorf("failed to scan subtask: %w", err)
		}
		if st.DueDate, err = scanDate(due); err != nil {
			return fmt.Errorf("failed to parse due date of subtask %s: %w", st.ID, err)
		}
		tasks[st.TaskID].Subtasks = append(tasks[st.TaskID].Subtasks, st)
	}
	return subRows.Err()
}
