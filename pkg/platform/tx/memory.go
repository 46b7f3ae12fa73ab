package txcontext

import (
	"context"
	"sync"
	"time"
)

// MemoryRunner serializes mutations against in-memory stores. Nested calls
// on the same runner join the outer unit of work instead of deadlocking.
//
// It does not roll back: writes made before fn fails stay in the stores.
// Callers needing atomicity must run against PostgresRunner.
type MemoryRunner struct {
	mu      sync.Mutex
	timeout time.Duration
}

type memoryKey struct{ r *MemoryRunner }

func NewMemoryRunner() *MemoryRunner {
	return &MemoryRunner{}
}

func (r *MemoryRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return aborted(err)
	}
	if ctx.Value(memoryKey{r}) != nil {
		return fn(ctx)
	}

	ctx, cancel := withDeadline(ctx, r.timeout)
	defer cancel()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return aborted(err)
	}
	return fn(context.WithValue(ctx, memoryKey{r}, true))
}
