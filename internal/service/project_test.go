package service

import (
	"context"
	"testing"
	"time"

	"github.com/ldi/tasker/internal/apperr"
	"github.com/ldi/tasker/internal/db"
	"github.com/ldi/tasker/internal/ids"
	"github.com/ldi/tasker/pkg/models"
)

func newTestDB(t *testing.T) *db.DB {
	t.Helper()
	d, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	if err := d.Init(context.Background()); err != nil {
		t.Fatalf("Failed to init database: %v", err)
	}
	return d
}

func newProjectService(t *testing.T) *ProjectService {
	t.Helper()
	return NewProjectService(newTestDB(t), WithGenerator(ids.Sequence("id")))
}

func createProject(t *testing.T, s *ProjectService) *models.Project {
	t.Helper()
	p, err := s.CreateProject(context.Background(), models.NewProjectRequest{
		Name:        models.String("Test Project Name"),
		Description: models.String("This is a test description"),
	})
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}
	return p
}

func TestCreateProject(t *testing.T) {
	s := newProjectService(t)
	p := createProject(t, s)

	if p.ID != "id-1" {
		t.Errorf("Expected generated id id-1, got %s", p.ID)
	}
	if p.Name != "Test Project Name" || p.Description != "This is a test description" {
		t.Errorf("Unexpected fields: %+v", p)
	}
	if p.Tasks == nil || p.Backlog == nil || len(p.Tasks) != 0 || len(p.Backlog) != 0 {
		t.Errorf("Expected empty non-nil sequences, got %#v / %#v", p.Tasks, p.Backlog)
	}
}

func TestCreateProjectValidation(t *testing.T) {
	s := newProjectService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  models.NewProjectRequest
	}{
		{"missing name", models.NewProjectRequest{Description: models.String("d")}},
		{"blank name", models.NewProjectRequest{Name: models.String("  "), Description: models.String("d")}},
		{"missing description", models.NewProjectRequest{Name: models.String("n")}},
		{"empty description", models.NewProjectRequest{Name: models.String("n"), Description: models.String("")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateProject(ctx, tt.req)
			if !apperr.IsInvalidRequest(err) {
				t.Errorf("Expected invalid request, got %v", err)
			}
		})
	}

	all, err := s.GetAllProjects(ctx)
	if err != nil {
		t.Fatalf("Failed to list projects: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("Expected nothing stored, got %d projects", len(all))
	}
}

func TestGetProject(t *testing.T) {
	s := newProjectService(t)
	ctx := context.Background()
	created := createProject(t, s)

	got, err := s.GetProjectByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("Failed to get project: %v", err)
	}
	if got.ID != created.ID || got.Name != created.Name {
		t.Errorf("Expected %+v, got %+v", created, got)
	}

	if _, err := s.GetProjectByID(ctx, "missing"); !apperr.IsNotFound(err) {
		t.Errorf("Expected not found, got %v", err)
	}
	if _, err := s.GetProjectByID(ctx, " "); !apperr.IsInvalidRequest(err) {
		t.Errorf("Expected invalid request for blank id, got %v", err)
	}

	all, err := s.GetAllProjects(ctx)
	if err != nil {
		t.Fatalf("Failed to list projects: %v", err)
	}
	if len(all) != 1 || all[0].ID != created.ID {
		t.Errorf("Unexpected project list: %+v", all)
	}
}

func updateRequest(id string, tasks, backlog []*models.Task) models.UpdateProjectRequest {
	return models.UpdateProjectRequest{
		ID:          models.String(id),
		Name:        models.String("Test Project Name"),
		Description: models.String("This is a test description"),
		Tasks:       tasks,
		Backlog:     backlog,
	}
}

func TestUpdateProject(t *testing.T) {
	s := newProjectService(t)
	ctx := context.Background()
	p := createProject(t, s)

	due := models.NewDate(2024, time.June, 30)
	got, err := s.UpdateProject(ctx, updateRequest(p.ID, []*models.Task{
		{
			Name: "New Test Task", Description: "New Test Task Description",
			Difficulty: "M", Status: "In Progress", DueDate: due,
			Subtasks: []*models.Subtask{{Name: "step"}},
		},
		{Name: "Second"},
	}, []*models.Task{{Name: "Someday", TaskType: models.TaskTypeActive}}))
	if err != nil {
		t.Fatalf("Failed to update project: %v", err)
	}

	if len(got.Tasks) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(got.Tasks))
	}
	first := got.Tasks[0]
	if first.ID == "" || first.Name != "New Test Task" || first.Status != "In Progress" || first.Difficulty != "M" {
		t.Errorf("Unexpected first task: %+v", first)
	}
	if !first.DueDate.Equal(due) {
		t.Errorf("Expected due date %s, got %s", due, first.DueDate)
	}
	if len(first.Subtasks) != 1 || first.Subtasks[0].ID == "" {
		t.Errorf("Expected subtask with generated id, got %+v", first.Subtasks)
	}
	if got.Tasks[1].Name != "Second" {
		t.Errorf("Expected order preserved, got %s second", got.Tasks[1].Name)
	}
	if len(got.Backlog) != 1 || got.Backlog[0].TaskType != models.TaskTypeBacklog {
		t.Errorf("Expected backlog task forced to BACKLOG, got %+v", got.Backlog)
	}

	// Resubmitting keeps the identifiers.
	again, err := s.UpdateProject(ctx, updateRequest(p.ID, got.Tasks, got.Backlog))
	if err != nil {
		t.Fatalf("Failed to resubmit project: %v", err)
	}
	for i := range got.Tasks {
		if again.Tasks[i].ID != got.Tasks[i].ID {
			t.Errorf("Task %d id changed from %s to %s", i, got.Tasks[i].ID, again.Tasks[i].ID)
		}
	}
	if again.Tasks[0].Subtasks[0].ID != first.Subtasks[0].ID {
		t.Errorf("Subtask id changed")
	}
}

func TestUpdateProjectClearAndRebuild(t *testing.T) {
	s := newProjectService(t)
	ctx := context.Background()
	p := createProject(t, s)

	withTasks, err := s.UpdateProject(ctx, updateRequest(p.ID, []*models.Task{
		{Name: "Keep"},
		{Name: "Drop", Subtasks: []*models.Subtask{{Name: "gone"}}},
	}, nil))
	if err != nil {
		t.Fatalf("Failed to update project: %v", err)
	}

	keep := withTasks.Tasks[0]
	got, err := s.UpdateProject(ctx, updateRequest(p.ID, []*models.Task{keep}, nil))
	if err != nil {
		t.Fatalf("Failed to update project: %v", err)
	}
	if len(got.Tasks) != 1 || got.Tasks[0].ID != keep.ID {
		t.Errorf("Expected only the kept task, got %+v", got.Tasks)
	}

	got, err = s.UpdateProject(ctx, updateRequest(p.ID, nil, nil))
	if err != nil {
		t.Fatalf("Failed to clear project: %v", err)
	}
	if len(got.Tasks) != 0 || len(got.Backlog) != 0 {
		t.Errorf("Expected empty project, got %+v", got)
	}
}

func TestUpdateProjectRejectsDuplicates(t *testing.T) {
	s := newProjectService(t)
	ctx := context.Background()
	p := createProject(t, s)

	before, err := s.UpdateProject(ctx, updateRequest(p.ID, []*models.Task{{ID: "t1", Name: "Only"}}, nil))
	if err != nil {
		t.Fatalf("Failed to update project: %v", err)
	}

	tests := []struct {
		name    string
		tasks   []*models.Task
		backlog []*models.Task
	}{
		{"twice in tasks", []*models.Task{{ID: "t1"}, {ID: "t1"}}, nil},
		{"in tasks and backlog", []*models.Task{{ID: "t1"}}, []*models.Task{{ID: "t1"}}},
		{"duplicate subtask", []*models.Task{{ID: "t1", Subtasks: []*models.Subtask{{ID: "s"}, {ID: "s"}}}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.UpdateProject(ctx, updateRequest(p.ID, tt.tasks, tt.backlog))
			if !apperr.IsDuplicateEntry(err) {
				t.Fatalf("Expected duplicate entry, got %v", err)
			}

			after, err := s.GetProjectByID(ctx, p.ID)
			if err != nil {
				t.Fatalf("Failed to get project: %v", err)
			}
			if len(after.Tasks) != len(before.Tasks) || after.Tasks[0].Name != "Only" || len(after.Backlog) != 0 {
				t.Errorf("Expected state unchanged, got %+v", after)
			}
		})
	}
}

func TestUpdateProjectErrors(t *testing.T) {
	s := newProjectService(t)
	ctx := context.Background()
	p := createProject(t, s)

	if _, err := s.UpdateProject(ctx, updateRequest("missing", nil, nil)); !apperr.IsNotFound(err) {
		t.Errorf("Expected not found, got %v", err)
	}

	req := updateRequest(p.ID, nil, nil)
	req.Name = models.String("")
	if _, err := s.UpdateProject(ctx, req); !apperr.IsInvalidRequest(err) {
		t.Errorf("Expected invalid request for blank name, got %v", err)
	}

	req = updateRequest(p.ID, nil, nil)
	req.ID = nil
	if _, err := s.UpdateProject(ctx, req); !apperr.IsInvalidRequest(err) {
		t.Errorf("Expected invalid request for missing id, got %v", err)
	}
}

func TestDeleteProject(t *testing.T) {
	s := newProjectService(t)
	ctx := context.Background()
	p := createProject(t, s)

	if err := s.DeleteProject(ctx, p.ID); err != nil {
		t.Fatalf("Failed to delete project: %v", err)
	}
	if _, err := s.GetProjectByID(ctx, p.ID); !apperr.IsNotFound(err) {
		t.Errorf("Expected not found after delete, got %v", err)
	}
	if err := s.DeleteProject(ctx, p.ID); !apperr.IsNotFound(err) {
		t.Errorf("Expected not found on second delete, got %v", err)
	}
	if err := s.DeleteProject(ctx, ""); !apperr.IsInvalidRequest(err) {
		t.Errorf("Expected invalid request for blank id, got %v", err)
	}
}
