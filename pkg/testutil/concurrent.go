package testutil

import (
	"errors"
	"sync"
	"sync/atomic"

	dErrors "peegflow/pkg/domain-errors"
	"peegflow/pkg/platform/sentinel"
)

// ConcurrentResult counts outcomes of a RunConcurrent call by kind.
type ConcurrentResult struct {
	Successes int32
	Conflicts int32
	NotFounds int32
	Errors    int32
}

func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Conflicts + r.NotFounds + r.Errors
}

// RunConcurrent starts n goroutines, releases them together and waits for
// all of them. Conflicts are store sentinels for lost races (ErrConflict,
// ErrInvalidState, ErrAlreadyUsed) or a domain conflict.
func RunConcurrent(n int, fn func(idx int) error) *ConcurrentResult {
	var (
		wg    sync.WaitGroup
		gate  = make(chan struct{})
		res   ConcurrentResult
		count = func(p *int32) { atomic.AddInt32(p, 1) }
	)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-gate
			err := fn(i)
			switch {
			case err == nil:
				count(&res.Successes)
			case isConflict(err):
				count(&res.Conflicts)
			case errors.Is(err, sentinel.ErrNotFound), dErrors.HasCode(err, dErrors.CodeNotFound):
				count(&res.NotFounds)
			default:
				count(&res.Errors)
			}
		}()
	}
	close(gate)
	wg.Wait()
	return &res
}

func isConflict(err error) bool {
	return errors.Is(err, sentinel.ErrConflict) ||
		errors.Is(err, sentinel.ErrInvalidState) ||
		errors.Is(err, sentinel.ErrAlreadyUsed) ||
		dErrors.HasCode(err, dErrors.CodeConflict)
}
