package app

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sanitycsv/internal/export"
	"sanitycsv/internal/service"
)

func newTestApp(t *testing.T, handler http.HandlerFunc) *App {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	body := "sanity:\n  project_id: abc123\n  base_url: " + srv.URL + "\n" +
		"storage:\n  data_dir: " + filepath.Join(dir, "data") + "\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := bootstrap(cfgPath, service.NoopEmitter{})
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return &App{ctx: context.Background(), core: c, emitter: &wailsEmitter{}}
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestFetchExport_FailureLoggedOnce(t *testing.T) {
	a := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	buf := captureLog(t)

	st := a.FetchExport("movie")
	if st.State != export.StateIdle {
		t.Errorf("state = %s, want idle", st.State)
	}
	if n := strings.Count(buf.String(), "[EXPORT] movie:"); n != 1 {
		t.Errorf("logged %d export lines, want 1:\n%s", n, buf.String())
	}
}

func TestFetchExport_RejectedNameLoggedOnce(t *testing.T) {
	a := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an invalid content name")
	})
	buf := captureLog(t)

	st := a.FetchExport("a/b")
	if st.State != export.StateIdle {
		t.Errorf("state = %s, want idle", st.State)
	}
	if n := strings.Count(buf.String(), "[EXPORT] a/b:"); n != 1 {
		t.Errorf("logged %d export lines, want 1:\n%s", n, buf.String())
	}
}
