package service_test

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"sanitycsv/internal/config"
	"sanitycsv/internal/secret"
	"sanitycsv/internal/service"
	"sanitycsv/internal/storage"
)

// sanityServer serves an export body per content type; unknown types get 404.
func sanityServer(t *testing.T, bodies map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := bodies[r.URL.Query().Get("types")]
		if !ok {
			http.Error(w, "unknown type", http.StatusNotFound)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Sanity.ProjectID = "abc123"
	cfg.Sanity.BaseURL = baseURL
	cfg.Export.OutputDir = t.TempDir()
	cfg.Storage.DataDir = t.TempDir()
	return cfg
}

func testDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

type fixture struct {
	cfg     *config.Config
	db      *storage.DB
	emitter *service.MockEmitter
	sinks   *service.SinkService
	exports *service.ExportService
	jobs    *service.JobService
}

func newFixture(t *testing.T, bodies map[string]string) *fixture {
	t.Helper()
	srv := sanityServer(t, bodies)
	f := &fixture{
		cfg:     testConfig(t, srv.URL),
		db:      testDB(t),
		emitter: &service.MockEmitter{},
	}
	runs := storage.NewRunStore(f.db)
	f.sinks = service.NewSinkService(f.cfg.Sinks, secret.Memory{})
	exports, err := service.NewExportService(f.cfg, nil, runs, f.sinks, f.emitter)
	if err != nil {
		t.Fatalf("NewExportService: %v", err)
	}
	f.exports = exports
	f.jobs = service.NewJobService(storage.NewJobStore(f.db), runs, exports, f.emitter)
	t.Cleanup(f.jobs.Stop)
	return f
}

const moviesNDJSON = `{"_id":"m1","title":"Alien","year":1979}
{"_id":"m2","title":"Heat","year":1995,"draft":true}
`
