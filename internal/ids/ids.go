// Package ids mints entity identifiers.
package ids

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Generator returns a new globally unique identifier on each call.
type Generator func() string

// New returns a random (version 4) UUID in its canonical string form.
func New() string {
	return uuid.New().String()
}

// Ensure assigns a fresh identifier to *id when it is empty. Identifiers that
// are already set are left alone.
func Ensure(id *string, gen Generator) {
	if *id != "" {
		return
	}
	if gen == nil {
		gen = New
	}
	*id = gen()
}

// Sequence returns a deterministic generator yielding prefix-1, prefix-2, ...
func Sequence(prefix string) Generator {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
