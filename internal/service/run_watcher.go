package service

import (
	"context"
	"sync"
	"time"
)

// ─────────────────────────────────────────────────────────────
// RunWatcher — notices runs recorded by other processes
// ─────────────────────────────────────────────────────────────

// FingerprintSource summarises the run history; storage.RunStore implements it.
type FingerprintSource interface {
	Fingerprint() (string, error)
}

// RunWatcher polls the run history and emits EventRunsChanged when it
// changes. Runs recorded in this process already emit EventRunRecorded;
// the watcher covers the standalone MCP server and CLI exports writing
// to the same database.
type RunWatcher struct {
	src      FingerprintSource
	emitter  EventEmitter
	interval time.Duration

	mu     sync.Mutex
	last   string
	stopCh chan struct{}
}

// NewRunWatcher creates a watcher polling every interval (2s when zero).
func NewRunWatcher(src FingerprintSource, emitter EventEmitter, interval time.Duration) *RunWatcher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &RunWatcher{src: src, emitter: emitter, interval: interval}
}

// Start begins the polling loop. It stops on Stop or when ctx is done.
func (w *RunWatcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopCh != nil {
		return
	}
	w.stopCh = make(chan struct{})
	go w.pollLoop(ctx, w.stopCh)
}

// Stop terminates the polling loop.
func (w *RunWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopCh != nil {
		close(w.stopCh)
		w.stopCh = nil
	}
}

func (w *RunWatcher) pollLoop(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.check(ctx)
	for {
		select {
		case <-ticker.C:
			w.check(ctx)
		case <-stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (w *RunWatcher) check(ctx context.Context) {
	fp, err := w.src.Fingerprint()
	if err != nil {
		return
	}

	w.mu.Lock()
	changed := w.last != "" && w.last != fp
	w.last = fp
	w.mu.Unlock()

	if changed {
		w.emitter.Emit(ctx, EventRunsChanged, fp)
	}
}
