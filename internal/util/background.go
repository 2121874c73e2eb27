package util

import (
	"context"
	"sync"
)

// TaskGroup tracks fire-and-forget background work (cache writes,
// stale refreshes) so shutdown can drain it before teardown.
type TaskGroup struct {
	wg sync.WaitGroup
}

func (g *TaskGroup) Go(fn func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		fn()
	}()
}

// Wait blocks until all registered tasks finish or ctx expires.
func (g *TaskGroup) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
