// Package notify holds the post-write hook shared by the storage gateways.
package notify

import (
	"context"
	"sync"
)

// Hook runs a callback after every successful write. The zero value is ready
// to use and does nothing until SetOnChange is called.
type Hook struct {
	mu       sync.RWMutex
	onChange func(ctx context.Context)
	disabled bool
}

func (h *Hook) SetOnChange(fn func(ctx context.Context)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = fn
}

func (h *Hook) DisableOnChange() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.disabled = true
}

func (h *Hook) EnableOnChange() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.disabled = false
}

// Trigger calls the callback, outside the lock, unless it is unset or disabled.
func (h *Hook) Trigger(ctx context.Context) {
	h.mu.RLock()
	fn := h.onChange
	disabled := h.disabled
	h.mu.RUnlock()

	if fn != nil && !disabled {
		fn(ctx)
	}
}
