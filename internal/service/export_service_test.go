package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"sanitycsv/internal/domain"
	"sanitycsv/internal/export"
	"sanitycsv/internal/service"
)

// ─────────────────────────────────────────────────────────────
// ExportService tests — httptest export endpoint, temp SQLite history
// ─────────────────────────────────────────────────────────────

func TestExportService_URL(t *testing.T) {
	f := newFixture(t, nil)

	if _, err := f.exports.URL(""); err == nil {
		t.Error("expected error for empty content name")
	}
	if _, err := f.exports.URL("movie&types=secret"); err == nil {
		t.Error("expected error for content name with query characters")
	}

	f.cfg.Sanity.BaseURL = ""
	got, err := f.exports.URL("movie")
	if err != nil {
		t.Fatalf("URL: %v", err)
	}
	want := "https://abc123.api.sanity.io/v2024-01-20/data/export/production/?types=movie"
	if got != want {
		t.Errorf("URL = %q, want %q", got, want)
	}
}

func TestExportService_FetchToggleDownload(t *testing.T) {
	f := newFixture(t, map[string]string{"movie": moviesNDJSON})
	ctx := context.Background()

	st, err := f.exports.Fetch(ctx, "movie")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if st.State != export.StateReady || len(st.Rows) != 2 {
		t.Fatalf("state = %s, rows = %d", st.State, len(st.Rows))
	}
	names := domain.SelectedNames(st.Fields)
	if len(names) != 3 || names[0] != "_id" || names[1] != "title" || names[2] != "year" {
		t.Fatalf("fields = %v", names)
	}

	if _, err := f.exports.Toggle(ctx, "movie", 0); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	dir := t.TempDir()
	run, err := f.exports.Download(ctx, "movie", export.DirSaver{Dir: dir})
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if run == nil || run.Status != domain.RunStatusSuccess || run.RowCount != 2 {
		t.Fatalf("run = %+v", run)
	}

	data, err := os.ReadFile(filepath.Join(dir, "movie.csv"))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	want := "title,year\r\n\"Alien\",1979\r\n\"Heat\",1995"
	if string(data) != want {
		t.Errorf("csv = %q, want %q", data, want)
	}

	// Downloading does not end the session.
	if st := f.exports.State("movie"); st.State != export.StateReady {
		t.Errorf("state after download = %s", st.State)
	}

	runs, err := f.exports.ListRuns("movie", 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].Destination != filepath.Join(dir, "movie.csv") || runs[0].Dataset != "production" {
		t.Fatalf("runs = %+v", runs)
	}
	if len(runs[0].Fields) != 2 || runs[0].Fields[0] != "title" {
		t.Errorf("run fields = %v", runs[0].Fields)
	}

	if got := len(f.emitter.Named(service.EventRunRecorded)); got != 1 {
		t.Errorf("run-recorded events = %d", got)
	}
	if got := len(f.emitter.Named(service.EventExportState)); got != 2 {
		t.Errorf("export-state events = %d", got)
	}
}

func TestExportService_SessionsAreIndependent(t *testing.T) {
	f := newFixture(t, map[string]string{
		"movie":  moviesNDJSON,
		"author": `{"name":"Ridley"}`,
	})
	ctx := context.Background()

	if _, err := f.exports.Fetch(ctx, "movie"); err != nil {
		t.Fatal(err)
	}
	if st := f.exports.State("author"); st.State != export.StateIdle {
		t.Fatalf("author state = %s", st.State)
	}
	if _, err := f.exports.Fetch(ctx, "author"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.exports.Reset(ctx, "movie"); err != nil {
		t.Fatal(err)
	}
	if st := f.exports.State("author"); st.State != export.StateReady || len(st.Fields) != 1 {
		t.Errorf("author = %+v", st)
	}
}

func TestExportService_FetchErrorsLeaveIdle(t *testing.T) {
	f := newFixture(t, map[string]string{"empty": ""})
	ctx := context.Background()

	st, err := f.exports.Fetch(ctx, "empty")
	if !errors.Is(err, export.ErrEmptyResult) {
		t.Fatalf("expected ErrEmptyResult, got %v", err)
	}
	if st.State != export.StateIdle {
		t.Errorf("state = %s", st.State)
	}

	_, err = f.exports.Fetch(ctx, "missing")
	var netErr *export.NetworkError
	if !errors.As(err, &netErr) || netErr.StatusCode != 404 {
		t.Fatalf("expected 404 NetworkError, got %v", err)
	}
	if st := f.exports.State("missing"); st.State != export.StateIdle {
		t.Errorf("state = %s", st.State)
	}
}

func TestExportService_DownloadUsageErrorsAreNotRecorded(t *testing.T) {
	f := newFixture(t, map[string]string{"movie": moviesNDJSON})
	ctx := context.Background()

	var stateErr *export.StateError
	if _, err := f.exports.Download(ctx, "movie", export.DirSaver{Dir: t.TempDir()}); !errors.As(err, &stateErr) {
		t.Fatalf("expected StateError while idle, got %v", err)
	}

	f.exports.Fetch(ctx, "movie")
	f.exports.SelectFields(ctx, "movie", nil)
	if _, err := f.exports.Download(ctx, "movie", export.DirSaver{Dir: t.TempDir()}); !errors.Is(err, export.ErrNoFieldsSelected) {
		t.Fatalf("expected ErrNoFieldsSelected, got %v", err)
	}

	runs, _ := f.exports.ListRuns("", 10)
	if len(runs) != 0 {
		t.Errorf("expected no recorded runs, got %d", len(runs))
	}
}

type cancelSaver struct{}

func (cancelSaver) Save(context.Context, export.File) (string, error) { return "", nil }

func TestExportService_CancelledDownload(t *testing.T) {
	f := newFixture(t, map[string]string{"movie": moviesNDJSON})
	ctx := context.Background()
	f.exports.Fetch(ctx, "movie")

	run, err := f.exports.Download(ctx, "movie", cancelSaver{})
	if err != nil || run != nil {
		t.Fatalf("cancelled download = %+v, %v", run, err)
	}
	runs, _ := f.exports.ListRuns("", 10)
	if len(runs) != 0 {
		t.Errorf("cancelled download was recorded")
	}
}

func TestExportService_RunHeadless(t *testing.T) {
	f := newFixture(t, map[string]string{"movie": moviesNDJSON, "empty": "\n"})
	ctx := context.Background()

	run, err := f.exports.RunHeadless(ctx, service.HeadlessExport{
		ContentName: "movie",
		Fields:      []string{"title"},
	})
	if err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(f.cfg.Export.OutputDir, "movie.csv"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "title\r\n\"Alien\"\r\n\"Heat\"" {
		t.Errorf("csv = %q", data)
	}
	if run.RowCount != 2 {
		t.Errorf("rows = %d", run.RowCount)
	}

	// Headless runs never touch the interactive session.
	if st := f.exports.State("movie"); st.State != export.StateIdle {
		t.Errorf("interactive state = %s", st.State)
	}

	run, err = f.exports.RunHeadless(ctx, service.HeadlessExport{ContentName: "empty"})
	if !errors.Is(err, export.ErrEmptyResult) || run.Status != domain.RunStatusEmpty {
		t.Fatalf("empty run = %+v, %v", run, err)
	}
}

func TestExportService_ExportToSink(t *testing.T) {
	f := newFixture(t, map[string]string{"movie": moviesNDJSON})
	ctx := context.Background()

	f.cfg.Sinks = []domain.SinkConnection{{
		Name:   "local",
		Driver: domain.SinkDriverSQLite,
		Host:   filepath.Join(t.TempDir(), "sink.db"),
	}}
	if err := f.exports.UpdateConfig(f.cfg); err != nil {
		t.Fatal(err)
	}

	if _, err := f.exports.ExportToSink(ctx, "movie", "local", "", ""); err == nil {
		t.Fatal("expected error before fetch")
	}

	f.exports.Fetch(ctx, "movie")
	run, err := f.exports.ExportToSink(ctx, "movie", "local", "", "replace")
	if err != nil {
		t.Fatalf("ExportToSink: %v", err)
	}
	if run.RowCount != 2 || run.Destination != "sink:local/movie" {
		t.Errorf("run = %+v", run)
	}

	if _, err := f.exports.ExportToSink(ctx, "movie", "nope", "", "replace"); err == nil {
		t.Error("expected error for unknown sink")
	}
	runs, _ := f.exports.ListRuns("movie", 10)
	statuses := map[domain.RunStatus]int{}
	for _, r := range runs {
		statuses[r.Status]++
	}
	if statuses[domain.RunStatusSuccess] != 1 || statuses[domain.RunStatusError] != 1 {
		t.Errorf("runs = %+v", runs)
	}
}

func TestExportService_UpdateConfigRejectsBadFormat(t *testing.T) {
	f := newFixture(t, nil)
	bad := *f.cfg
	bad.Export.PayloadFormat = "xml"
	if err := f.exports.UpdateConfig(&bad); err == nil {
		t.Fatal("expected error for unknown payload format")
	}
	if f.exports.Config() != f.cfg {
		t.Error("config replaced despite error")
	}
}
