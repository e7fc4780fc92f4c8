package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestDateJSON(t *testing.T) {
	var task Task
	if err := json.Unmarshal([]byte(`{"id":"t1","dueDate":"2024-03-09"}`), &task); err != nil {
		t.Fatalf("Failed to decode task: %v", err)
	}
	if got := task.DueDate.String(); got != "2024-03-09" {
		t.Errorf("Expected 2024-03-09, got %q", got)
	}

	for _, in := range []string{`{"dueDate":null}`, `{"dueDate":""}`, `{}`} {
		var tt Task
		if err := json.Unmarshal([]byte(in), &tt); err != nil {
			t.Fatalf("Failed to decode %s: %v", in, err)
		}
		if !tt.DueDate.IsZero() {
			t.Errorf("Expected zero date for %s, got %v", in, tt.DueDate)
		}
	}

	if err := json.Unmarshal([]byte(`{"dueDate":"03/09/2024"}`), &task); err == nil {
		t.Error("Expected error for non-ISO date")
	}

	out, err := json.Marshal(Subtask{ID: "s1"})
	if err != nil {
		t.Fatalf("Failed to encode subtask: %v", err)
	}
	if want := `"dueDate":null`; !strings.Contains(string(out), want) {
		t.Errorf("Expected %s in %s", want, out)
	}
}

func TestDateScan(t *testing.T) {
	tests := []struct {
		name string
		src  any
		want string
	}{
		{"nil", nil, ""},
		{"text", "2024-03-09", "2024-03-09"},
		{"bytes", []byte("2024-03-09"), "2024-03-09"},
		{"timestamp text", "2024-03-09T00:00:00Z", "2024-03-09"},
		{"time", time.Date(2024, 3, 9, 15, 4, 5, 0, time.Local), "2024-03-09"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			if err := d.Scan(tt.src); err != nil {
				t.Fatalf("Scan failed: %v", err)
			}
			if d.String() != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, d.String())
			}
		})
	}

	var d Date
	if err := d.Scan(42); err == nil {
		t.Error("Expected error scanning an int")
	}

	v, err := Date{}.Value()
	if err != nil || v != nil {
		t.Errorf("Expected nil value for zero date, got %v, %v", v, err)
	}
}
