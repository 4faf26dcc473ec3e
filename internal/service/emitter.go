package service

import (
	"context"
	"sync"
)

// ─────────────────────────────────────────────────────────────
// EventEmitter — keeps services free of wailsRuntime
// ─────────────────────────────────────────────────────────────

// Events pushed to the frontend.
const (
	EventExportState    = "export:state"        // ExportState after every session transition
	EventRunRecorded    = "export:run-recorded" // *domain.ExportRun
	EventRunsChanged    = "export:runs-changed" // history fingerprint, from RunWatcher
	EventJobCompleted   = "jobs:job-completed"  // job ID
	EventConfigReloaded = "config:reloaded"     // domain.WidgetSettings
)

// EventEmitter is an interface for emitting events to the frontend.
// The App struct implements it with wailsRuntime.EventsEmit; the
// standalone MCP server and the CLI use NoopEmitter.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// NoopEmitter discards every event.
type NoopEmitter struct{}

func (NoopEmitter) Emit(context.Context, string, any) {}

// MockEmitter is a test-friendly EventEmitter that records all calls.
type MockEmitter struct {
	mu     sync.Mutex
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}

// Named returns the recorded emissions of one event, in order.
func (m *MockEmitter) Named(event string) []EmittedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []EmittedEvent
	for _, e := range m.Events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}
