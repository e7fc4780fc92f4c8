package models

import "time"

// Project is the aggregate root. Tasks holds the active sequence and Backlog
// the deferred one; both are ordered.
type Project struct {
	ID          string    `json:"project_id"`
	Name        string    `json:"project_name"`
	Description string    `json:"project_description"`
	Tasks       []*Task   `json:"project_tasks"`
	Backlog     []*Task   `json:"project_backlog"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Clone deep-copies the aggregate. Nil sequences come back as empty slices so
// that they encode as [] rather than null.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	c := *p
	c.Tasks = cloneTasks(p.Tasks)
	c.Backlog = cloneTasks(p.Backlog)
	return &c
}

// AllTasks returns the active tasks followed by the backlog.
func (p *Project) AllTasks() []*Task {
	all := make([]*Task, 0, len(p.Tasks)+len(p.Backlog))
	all = append(all, p.Tasks...)
	return append(all, p.Backlog...)
}

func cloneTasks(tasks []*Task) []*Task {
	out := make([]*Task, 0, len(tasks))
	for _, t := range tasks {
		if t == nil {
			continue
		}
		out = append(out, t.Clone())
	}
	return out
}

type NewProjectRequest struct {
	Name        *string `json:"project_name"`
	Description *string `json:"project_description"`
}

type UpdateProjectRequest struct {
	ID          *string `json:"project_id"`
	Name        *string `json:"project_name"`
	Description *string `json:"project_description"`
	Tasks       []*Task `json:"project_tasks"`
	Backlog     []*Task `json:"project_backlog"`
}
