// Package reconcile merges a submitted project state into a persisted one.
//
// The persisted aggregate is never modified: Project builds a fresh aggregate
// from the request, so a failed reconciliation leaves nothing half-applied and
// the caller saves the result as a single unit.
package reconcile

import (
	"github.com/ldi/tasker/internal/apperr"
	"github.com/ldi/tasker/internal/ids"
	"github.com/ldi/tasker/pkg/models"
)

// Project returns the new state of current after applying req.
//
// Name and description are replaced, and both task sequences are cleared and
// rebuilt from the request in submitted order. Tasks and subtasks without an
// identifier get one from gen; identifiers supplied by the caller are kept.
// Backlog tasks are classified BACKLOG, active tasks default to ACTIVE.
//
// req must already have passed validation.
func Project(current *models.Project, req models.UpdateProjectRequest, gen ids.Generator) (*models.Project, error) {
	if current == nil {
		return nil, apperr.NotFound("Project not found with ID: %s", deref(req.ID))
	}
	if gen == nil {
		gen = ids.New
	}

	if err := checkDuplicates(req.Tasks, req.Backlog); err != nil {
		return nil, err
	}

	next := &models.Project{
		ID:          current.ID,
		Name:        deref(req.Name),
		Description: deref(req.Description),
		CreatedAt:   current.CreatedAt,
		UpdatedAt:   current.UpdatedAt,
		Tasks:       make([]*models.Task, 0, len(req.Tasks)),
		Backlog:     make([]*models.Task, 0, len(req.Backlog)),
	}

	for _, in := range req.Tasks {
		if in == nil {
			continue
		}
		t := attach(next.ID, in, gen)
		if t.TaskType == "" {
			t.TaskType = models.TaskTypeActive
		}
		next.Tasks = append(next.Tasks, t)
	}

	for _, in := range req.Backlog {
		if in == nil {
			continue
		}
		t := attach(next.ID, in, gen)
		t.TaskType = models.TaskTypeBacklog
		next.Backlog = append(next.Backlog, t)
	}

	return next, nil
}

// attach copies in, assigns missing identifiers and points the copy and its
// subtasks at their owners.
func attach(projectID string, in *models.Task, gen ids.Generator) *models.Task {
	t := in.Clone()
	ids.Ensure(&t.ID, gen)
	t.ProjectID = projectID
	for _, st := range t.Subtasks {
		ids.Ensure(&st.ID, gen)
		st.TaskID = t.ID
	}
	return t
}

// checkDuplicates rejects a submission in which the same task, or the same
// subtask, appears more than once. Entries without an identifier are new and
// therefore always distinct.
func checkDuplicates(lists ...[]*models.Task) error {
	tasks := map[string]struct{}{}
	subtasks := map[string]struct{}{}

	for _, list := range lists {
		for _, t := range list {
			if t == nil {
				continue
			}
			if t.ID != "" {
				if _, seen := tasks[t.ID]; seen {
					return apperr.DuplicateEntry("duplicate task entry: %s", t.ID)
				}
				tasks[t.ID] = struct{}{}
			}
			for _, st := range t.Subtasks {
				if st == nil || st.ID == "" {
					continue
				}
				if _, seen := subtasks[st.ID]; seen {
					return apperr.DuplicateEntry("duplicate subtask entry: %s", st.ID)
				}
				subtasks[st.ID] = struct{}{}
			}
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
