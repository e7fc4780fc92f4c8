package models

import "encoding/json"

type TaskType string

const (
	TaskTypeActive  TaskType = "ACTIVE"
	TaskTypeBacklog TaskType = "BACKLOG"
)

type Task struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"-"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	DueDate     Date       `json:"dueDate"`
	Difficulty  string     `json:"difficulty"`
	TaskType    TaskType   `json:"task_type"`
	Subtasks    []*Subtask `json:"subtasks"`
}

type Subtask struct {
	ID          string `json:"id"`
	TaskID      string `json:"-"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	DueDate     Date   `json:"dueDate"`
	Difficulty  string `json:"difficulty"`
}

// UnmarshalJSON also accepts the camel-case "taskType" key. "task_type" wins
// when both are present.
func (t *Task) UnmarshalJSON(data []byte) error {
	type task Task
	aux := struct {
		*task
		CamelTaskType TaskType `json:"taskType"`
	}{task: (*task)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if t.TaskType == "" {
		t.TaskType = aux.CamelTaskType
	}
	return nil
}

// Clone returns a deep copy of the task including its subtasks.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	c.Subtasks = make([]*Subtask, 0, len(t.Subtasks))
	for _, st := range t.Subtasks {
		if st == nil {
			continue
		}
		sc := *st
		c.Subtasks = append(c.Subtasks, &sc)
	}
	return &c
}
