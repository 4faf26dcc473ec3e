package service_test

import (
	"context"
	"testing"
	"time"

	"sanitycsv/internal/service"
)

// ─────────────────────────────────────────────────────────────
// runGuard tests
// ─────────────────────────────────────────────────────────────

func TestRunGuard_Acquire(t *testing.T) {
	var g service.ExportedRunGuard

	release1, started, ok := g.Acquire("job-1")
	if !ok {
		t.Fatal("expected first Acquire to succeed")
	}
	_, since, ok := g.Acquire("job-1")
	if ok {
		t.Fatal("expected second Acquire for same job to fail")
	}
	if !since.Equal(started) {
		t.Errorf("busy start time = %v, want %v", since, started)
	}
	release2, _, ok := g.Acquire("job-2")
	if !ok {
		t.Fatal("expected Acquire for different job to succeed")
	}
	if n := len(g.Running()); n != 2 {
		t.Errorf("Running() has %d jobs, want 2", n)
	}
	release1()
	release1() // second call is a no-op
	release2()

	if n := len(g.Running()); n != 0 {
		t.Errorf("Running() has %d jobs after release", n)
	}
	release, _, ok := g.Acquire("job-1")
	if !ok {
		t.Fatal("expected Acquire to succeed after release")
	}
	release()
}

func TestRunGuard_Wait(t *testing.T) {
	var g service.ExportedRunGuard

	release, _, ok := g.Acquire("job-a")
	if !ok {
		t.Fatal("expected Acquire to succeed")
	}

	done := make(chan struct{})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		g.Wait(ctx)
		close(done)
	}()

	go func() {
		time.Sleep(20 * time.Millisecond)
		release()
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Wait timed out")
	}
}

// ─────────────────────────────────────────────────────────────
// MockEmitter tests
// ─────────────────────────────────────────────────────────────

func TestMockEmitter_RecordsEvents(t *testing.T) {
	m := &service.MockEmitter{}
	ctx := context.Background()

	m.Emit(ctx, "test:event", map[string]string{"foo": "bar"})
	m.Emit(ctx, "test:event2", nil)

	if len(m.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(m.Events))
	}
	if m.Events[0].Event != "test:event" {
		t.Errorf("expected 'test:event', got %q", m.Events[0].Event)
	}
}

func TestMockEmitter_LastEvent(t *testing.T) {
	m := &service.MockEmitter{}
	ctx := context.Background()

	m.Emit(ctx, "a", "first")
	m.Emit(ctx, "b", "second")

	if m.Events[len(m.Events)-1].Event != "b" {
		t.Errorf("expected last event 'b', got %q", m.Events[len(m.Events)-1].Event)
	}
}

func TestMockEmitter_Named(t *testing.T) {
	m := &service.MockEmitter{}
	ctx := context.Background()

	m.Emit(ctx, service.EventExportState, 1)
	m.Emit(ctx, service.EventRunRecorded, 2)
	m.Emit(ctx, service.EventExportState, 3)

	got := m.Named(service.EventExportState)
	if len(got) != 2 || got[1].Data != 3 {
		t.Fatalf("Named = %+v", got)
	}
}
