package ids

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNew(t *testing.T) {
	id := New()
	if len(id) != 36 {
		t.Errorf("Expected ID length 36, got %d (%s)", len(id), id)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("Expected a parseable UUID, got %s: %v", id, err)
	}
	if id == New() {
		t.Errorf("Expected two calls to produce different IDs")
	}
}

func TestEnsure(t *testing.T) {
	t.Run("assigns when empty", func(t *testing.T) {
		id := ""
		Ensure(&id, Sequence("task"))
		if id != "task-1" {
			t.Errorf("expected task-1, got %s", id)
		}
	})

	t.Run("keeps existing", func(t *testing.T) {
		id := "caller-supplied"
		Ensure(&id, Sequence("task"))
		if id != "caller-supplied" {
			t.Errorf("expected caller-supplied to be kept, got %s", id)
		}
	})

	t.Run("nil generator falls back to uuid", func(t *testing.T) {
		id := ""
		Ensure(&id, nil)
		if !strings.Contains(id, "-") || len(id) != 36 {
			t.Errorf("expected uuid, got %s", id)
		}
	})
}

func TestSequence(t *testing.T) {
	gen := Sequence("sub")
	for i, want := range []string{"sub-1", "sub-2", "sub-3"} {
		if got := gen(); got != want {
			t.Errorf("call %d: expected %s, got %s", i, want, got)
		}
	}
}
