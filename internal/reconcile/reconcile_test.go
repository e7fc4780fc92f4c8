package reconcile

import (
	"testing"
	"time"

	"github.com/ldi/tasker/internal/apperr"
	"github.com/ldi/tasker/internal/ids"
	"github.com/ldi/tasker/pkg/models"
)

func persisted() *models.Project {
	return &models.Project{
		ID:          "p1",
		Name:        "Old Name",
		Description: "Old description",
		Tasks: []*models.Task{
			{
				ID: "old-task", ProjectID: "p1", Name: "Old Task", TaskType: models.TaskTypeActive,
				Subtasks: []*models.Subtask{{ID: "old-sub", TaskID: "old-task", Name: "Old Sub"}},
			},
		},
		Backlog: []*models.Task{},
	}
}

func request(tasks, backlog []*models.Task) models.UpdateProjectRequest {
	return models.UpdateProjectRequest{
		ID:          models.String("p1"),
		Name:        models.String("Test Project Name"),
		Description: models.String("This is a test description"),
		Tasks:       tasks,
		Backlog:     backlog,
	}
}

func TestProjectAssignsIdentifiers(t *testing.T) {
	due := models.NewDate(2024, time.May, 1)
	req := request([]*models.Task{
		{
			Name: "New Test Task", Description: "New Test Task Description",
			Difficulty: "M", Status: "In Progress", DueDate: due,
			Subtasks: []*models.Subtask{{Name: "first"}, {ID: "kept-sub", Name: "second"}},
		},
	}, nil)

	got, err := Project(persisted(), req, ids.Sequence("gen"))
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	if got.Name != "Test Project Name" || got.Description != "This is a test description" {
		t.Errorf("expected name/description overwritten, got %q / %q", got.Name, got.Description)
	}
	if len(got.Tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(got.Tasks))
	}

	task := got.Tasks[0]
	if task.ID != "gen-1" {
		t.Errorf("expected generated task id gen-1, got %s", task.ID)
	}
	if task.ProjectID != "p1" {
		t.Errorf("expected project back-reference p1, got %s", task.ProjectID)
	}
	if task.TaskType != models.TaskTypeActive {
		t.Errorf("expected default task type ACTIVE, got %s", task.TaskType)
	}
	if task.Name != "New Test Task" || task.Difficulty != "M" || task.Status != "In Progress" || !task.DueDate.Equal(due) {
		t.Errorf("expected submitted fields preserved, got %+v", task)
	}

	if task.Subtasks[0].ID != "gen-2" {
		t.Errorf("expected generated subtask id gen-2, got %s", task.Subtasks[0].ID)
	}
	if task.Subtasks[1].ID != "kept-sub" {
		t.Errorf("expected caller subtask id kept, got %s", task.Subtasks[1].ID)
	}
	for _, st := range task.Subtasks {
		if st.TaskID != task.ID {
			t.Errorf("expected subtask %s to point at %s, got %s", st.ID, task.ID, st.TaskID)
		}
	}
}

func TestProjectKeepsExistingIDs(t *testing.T) {
	req := request([]*models.Task{{ID: "old-task", Name: "Renamed"}}, nil)

	got, err := Project(persisted(), req, ids.Sequence("gen"))
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if got.Tasks[0].ID != "old-task" {
		t.Errorf("expected id old-task to be kept, got %s", got.Tasks[0].ID)
	}
	if got.Tasks[0].Name != "Renamed" {
		t.Errorf("expected submitted name, got %s", got.Tasks[0].Name)
	}
	if len(got.Tasks[0].Subtasks) != 0 {
		t.Errorf("expected subtasks replaced by the submitted (empty) list, got %d", len(got.Tasks[0].Subtasks))
	}
}

func TestProjectPreservesOrder(t *testing.T) {
	req := request(
		[]*models.Task{{Name: "A"}, {ID: "b", Name: "B"}, {Name: "C"}},
		[]*models.Task{{Name: "X"}, {Name: "Y"}},
	)

	got, err := Project(persisted(), req, ids.Sequence("gen"))
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	assertNames(t, got.Tasks, "A", "B", "C")
	assertNames(t, got.Backlog, "X", "Y")
}

func TestProjectBacklogClassification(t *testing.T) {
	req := request(
		[]*models.Task{{Name: "stays", TaskType: models.TaskTypeBacklog}},
		[]*models.Task{{ID: "old-task", Name: "Old Task", TaskType: models.TaskTypeActive}},
	)

	got, err := Project(persisted(), req, ids.Sequence("gen"))
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	if len(got.Backlog) != 1 || got.Backlog[0].ID != "old-task" {
		t.Fatalf("expected old-task in backlog, got %+v", got.Backlog)
	}
	if got.Backlog[0].TaskType != models.TaskTypeBacklog {
		t.Errorf("expected backlog task classified BACKLOG, got %s", got.Backlog[0].TaskType)
	}
	if got.Tasks[0].TaskType != models.TaskTypeBacklog {
		t.Errorf("expected submitted classification kept on active list, got %s", got.Tasks[0].TaskType)
	}
}

func TestProjectClearAndRebuild(t *testing.T) {
	got, err := Project(persisted(), request([]*models.Task{}, []*models.Task{}), ids.Sequence("gen"))
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if len(got.Tasks) != 0 || len(got.Backlog) != 0 {
		t.Errorf("expected both sequences empty, got %d active / %d backlog", len(got.Tasks), len(got.Backlog))
	}
	if got.Tasks == nil || got.Backlog == nil {
		t.Errorf("expected empty, non-nil sequences")
	}
}

func TestProjectDuplicates(t *testing.T) {
	tests := []struct {
		name    string
		tasks   []*models.Task
		backlog []*models.Task
	}{
		{
			name:  "same task twice in active list",
			tasks: []*models.Task{{ID: "t1"}, {ID: "t1"}, {Name: "new"}},
		},
		{
			name:    "same task in active and backlog",
			tasks:   []*models.Task{{ID: "t1"}},
			backlog: []*models.Task{{ID: "t1"}},
		},
		{
			name: "same subtask under two tasks",
			tasks: []*models.Task{
				{ID: "t1", Subtasks: []*models.Subtask{{ID: "s1"}}},
				{ID: "t2", Subtasks: []*models.Subtask{{ID: "s1"}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := persisted()
			_, err := Project(current, request(tt.tasks, tt.backlog), ids.Sequence("gen"))
			if !apperr.IsDuplicateEntry(err) {
				t.Fatalf("expected duplicate entry error, got %v", err)
			}
			if current.Name != "Old Name" || len(current.Tasks) != 1 || current.Tasks[0].ID != "old-task" {
				t.Errorf("expected persisted project untouched, got %+v", current)
			}
			for _, in := range tt.tasks {
				if in.ProjectID != "" {
					t.Errorf("expected request task not to be mutated, got project id %s", in.ProjectID)
				}
			}
		})
	}
}

func TestProjectNewTasksAreNeverDuplicates(t *testing.T) {
	req := request([]*models.Task{{Name: "same"}, {Name: "same"}}, nil)
	got, err := Project(persisted(), req, ids.Sequence("gen"))
	if err != nil {
		t.Fatalf("expected id-less tasks to be accepted, got %v", err)
	}
	if got.Tasks[0].ID == got.Tasks[1].ID {
		t.Errorf("expected distinct ids, got %s twice", got.Tasks[0].ID)
	}
}

func TestProjectDoesNotMutateInputs(t *testing.T) {
	current := persisted()
	in := &models.Task{Name: "fresh", Subtasks: []*models.Subtask{{Name: "child"}}}

	if _, err := Project(current, request([]*models.Task{in}, nil), ids.Sequence("gen")); err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	if in.ID != "" || in.ProjectID != "" || in.Subtasks[0].ID != "" {
		t.Errorf("expected submitted task untouched, got %+v", in)
	}
	if current.Name != "Old Name" || current.Tasks[0].ID != "old-task" {
		t.Errorf("expected persisted project untouched, got %+v", current)
	}
}

func TestProjectMissing(t *testing.T) {
	_, err := Project(nil, request(nil, nil), nil)
	if !apperr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func assertNames(t *testing.T, tasks []*models.Task, want ...string) {
	t.Helper()
	if len(tasks) != len(want) {
		t.Fatalf("expected %d tasks, got %d", len(want), len(tasks))
	}
	for i, name := range want {
		if tasks[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, tasks[i].Name)
		}
	}
}
