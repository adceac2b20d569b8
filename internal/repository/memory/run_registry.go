package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// RunRegistry tracks the single in-flight execution allowed per cell. A slot
// is held from run acceptance until the terminal state is persisted, so
// "Running with no live worker" cannot occur while the process is up.
// Deliberately not TTL-based: an evicted slot would silently permit a second
// concurrent run.
type RunRegistry struct {
	mu   sync.Mutex
	runs map[uuid.UUID]context.CancelFunc
}

func NewRunRegistry() *RunRegistry {
	return &RunRegistry{
		runs: make(map[uuid.UUID]context.CancelFunc),
	}
}

// Acquire claims the run slot for a cell. Returns false if a run is already
// in flight.
func (r *RunRegistry) Acquire(cellId uuid.UUID, cancel context.CancelFunc) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.runs[cellId]; exists {
		return false
	}
	r.runs[cellId] = cancel
	return true
}

// Release frees the slot after the terminal state has been written.
func (r *RunRegistry) Release(cellId uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.runs, cellId)
}

// Cancel fires the cancel function of an in-flight run. Returns false when no
// run holds the slot. The worker, not the canceller, writes the terminal state.
func (r *RunRegistry) Cancel(cellId uuid.UUID) bool {
	r.mu.Lock()
	cancel, ok := r.runs[cellId]
	r.mu.Unlock()
	if !ok {
		return false
	}
	cancel()
	return true
}

// IsRunning reports whether a cell currently holds a run slot.
func (r *RunRegistry) IsRunning(cellId uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.runs[cellId]
	return ok
}
