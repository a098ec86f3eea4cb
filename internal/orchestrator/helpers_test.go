package orchestrator

import (
	"sync"

	"github.com/runger/dorg/internal/recorder"
)

// lockedRecorder is a goroutine-safe in-memory recorder for tests that
// exercise concurrent sessions.
type lockedRecorder struct {
	mu      sync.Mutex
	records []recorder.Attempt
}

func (r *lockedRecorder) Append(a *recorder.Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, *a)
	return nil
}

func (r *lockedRecorder) Close() error { return nil }

func (r *lockedRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
