package service

import (
	"context"
	"sync"
	"time"
)

// ─────────────────────────────────────────────────────────────
// runGuard — one run per export job at a time
// ─────────────────────────────────────────────────────────────

// runGuard keeps a scheduled export from overlapping itself when the
// endpoint is slower than the cron interval. Shutdown waits on it.
type runGuard struct {
	mu      sync.Mutex
	started map[string]time.Time
	wg      sync.WaitGroup
}

// Acquire marks jobID as running and returns the func that releases it.
// When a run is already in flight it returns ok=false and that run's
// start time.
func (g *runGuard) Acquire(jobID string) (release func(), since time.Time, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.started == nil {
		g.started = make(map[string]time.Time)
	}
	if t, busy := g.started[jobID]; busy {
		return nil, t, false
	}
	now := time.Now()
	g.started[jobID] = now
	g.wg.Add(1)

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.started, jobID)
			g.mu.Unlock()
			g.wg.Done()
		})
	}, now, true
}

// Running returns the IDs of the jobs in flight.
func (g *runGuard) Running() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := make([]string, 0, len(g.started))
	for id := range g.started {
		ids = append(ids, id)
	}
	return ids
}

// Wait blocks until every in-flight run completes or ctx is cancelled.
func (g *runGuard) Wait(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
