package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"sanitycsv/internal/domain"
	"sanitycsv/internal/service"
	"sanitycsv/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// JobService tests
// ─────────────────────────────────────────────────────────────

func TestJobService_WaitRunning_Immediate(t *testing.T) {
	svc := service.NewJobService(nil, nil, nil, &service.MockEmitter{})

	done := make(chan struct{})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		svc.WaitRunning(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("WaitRunning hung with no running jobs")
	}
}

func TestJobService_Stop_Idempotent(t *testing.T) {
	svc := service.NewJobService(nil, nil, nil, &service.MockEmitter{})
	svc.Stop()
	svc.Stop()
}

func TestJobService_CreateValidates(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	cases := []service.CreateJobInput{
		{ContentName: "movie"},
		{Name: "nightly"},
		{Name: "nightly", ContentName: "movie", Schedule: "every day"},
		{Name: "nightly", ContentName: "movie", Destination: domain.Destination{Kind: "s3"}},
		{Name: "nightly", ContentName: "movie", Destination: domain.Destination{Kind: domain.DestinationSink}},
		{Name: "nightly", ContentName: "movie", Destination: domain.Destination{Kind: domain.DestinationSink, Sink: "x", Mode: "merge"}},
	}
	for i, in := range cases {
		if _, err := f.jobs.CreateJob(ctx, in); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestJobService_CRUDAndScheduler(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	job, err := f.jobs.CreateJob(ctx, service.CreateJobInput{
		Name:        "nightly movies",
		ContentName: "movie",
		Schedule:    "0 3 * * *",
		Enabled:     true,
	})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if job.Destination.Kind != domain.DestinationFile {
		t.Errorf("default destination = %q", job.Destination.Kind)
	}
	if n := f.jobs.ScheduledCount(); n != 1 {
		t.Errorf("scheduled = %d, want 1", n)
	}

	if _, err := f.jobs.UpdateJob(ctx, job.ID, service.CreateJobInput{
		Name:        "nightly movies",
		ContentName: "movie",
		Schedule:    "0 3 * * *",
		Enabled:     false,
	}); err != nil {
		t.Fatalf("UpdateJob: %v", err)
	}
	if n := f.jobs.ScheduledCount(); n != 0 {
		t.Errorf("scheduled after disable = %d", n)
	}

	jobs, err := f.jobs.ListJobs()
	if err != nil || len(jobs) != 1 {
		t.Fatalf("ListJobs = %d, %v", len(jobs), err)
	}

	if err := f.jobs.DeleteJob(ctx, job.ID); err != nil {
		t.Fatalf("DeleteJob: %v", err)
	}
	if _, err := f.jobs.GetJob(job.ID); !errors.Is(err, storage.ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}

func TestJobService_RunJobToDirectory(t *testing.T) {
	f := newFixture(t, map[string]string{"movie": moviesNDJSON})
	ctx := context.Background()
	dir := t.TempDir()

	job, err := f.jobs.CreateJob(ctx, service.CreateJobInput{
		Name:        "movies",
		ContentName: "movie",
		Fields:      []string{"_id", "year"},
		Destination: domain.Destination{Kind: domain.DestinationFile, Dir: dir},
	})
	if err != nil {
		t.Fatal(err)
	}

	run, err := f.jobs.RunJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("RunJob: %v", err)
	}
	if run.JobID != job.ID || run.RowCount != 2 {
		t.Errorf("run = %+v", run)
	}

	data, err := os.ReadFile(filepath.Join(dir, "movie.csv"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "_id,year\r\n\"m1\",1979\r\n\"m2\",1995" {
		t.Errorf("csv = %q", data)
	}

	got, _ := f.jobs.GetJob(job.ID)
	if got.LastStatus != domain.RunStatusSuccess || got.LastRunAt.IsZero() {
		t.Errorf("job status = %q at %v", got.LastStatus, got.LastRunAt)
	}
	runs, _ := f.jobs.ListJobRuns(job.ID)
	if len(runs) != 1 {
		t.Errorf("job runs = %d", len(runs))
	}
	if ev := f.emitter.Named(service.EventJobCompleted); len(ev) != 1 || ev[0].Data != job.ID {
		t.Errorf("job-completed events = %+v", ev)
	}
}

func TestJobService_RunJobFailureIsRecorded(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	job, err := f.jobs.CreateJob(ctx, service.CreateJobInput{Name: "broken", ContentName: "missing"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.jobs.RunJob(ctx, job.ID); err == nil {
		t.Fatal("expected error from 404 endpoint")
	}
	got, _ := f.jobs.GetJob(job.ID)
	if got.LastStatus != domain.RunStatusError || got.LastError == "" {
		t.Errorf("job = %+v", got)
	}
}

func TestJobService_RunJobToSink(t *testing.T) {
	f := newFixture(t, map[string]string{"movie": moviesNDJSON})
	ctx := context.Background()

	f.cfg.Sinks = []domain.SinkConnection{{
		Name:   "local",
		Driver: domain.SinkDriverSQLite,
		Host:   filepath.Join(t.TempDir(), "sink.db"),
	}}
	f.exports.UpdateConfig(f.cfg)

	job, err := f.jobs.CreateJob(ctx, service.CreateJobInput{
		Name:        "to sqlite",
		ContentName: "movie",
		Destination: domain.Destination{Kind: domain.DestinationSink, Sink: "local", Table: "movies", Mode: "append"},
	})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		run, err := f.jobs.RunJob(ctx, job.ID)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if run.Destination != "sink:local/movies" || run.RowCount != 2 {
			t.Errorf("run = %+v", run)
		}
	}
}
