package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"sanitycsv/internal/config"
	"sanitycsv/internal/domain"
	"sanitycsv/internal/export"
	"sanitycsv/internal/sink"
	"sanitycsv/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Export Service — one column-selection session per content type
// ─────────────────────────────────────────────────────────────

// ExportState is a session snapshot tagged with its content type.
type ExportState struct {
	ContentName string `json:"contentName"`
	export.Snapshot
}

// ExportService owns the export sessions and records every delivered
// export in the run history. It is shared by the Wails bindings, the MCP
// tools, the CLI and scheduled jobs.
type ExportService struct {
	mu       sync.Mutex
	cfg      *config.Config
	conv     *export.Pipeline
	fetcher  export.Fetcher
	sessions map[string]*export.Session

	runs    *storage.RunStore
	sinks   *SinkService
	emitter EventEmitter
}

// NewExportService creates an ExportService. A nil fetcher means plain HTTP;
// runs and sinks may be nil when history or sinks are unavailable.
func NewExportService(
	cfg *config.Config,
	fetcher export.Fetcher,
	runs *storage.RunStore,
	sinks *SinkService,
	emitter EventEmitter,
) (*ExportService, error) {
	if emitter == nil {
		emitter = NoopEmitter{}
	}
	s := &ExportService{
		fetcher:  fetcher,
		sessions: make(map[string]*export.Session),
		runs:     runs,
		sinks:    sinks,
		emitter:  emitter,
	}
	if err := s.UpdateConfig(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// UpdateConfig swaps in a reloaded configuration. Sessions keep their
// state; the next fetch uses the new target and payload format.
func (s *ExportService) UpdateConfig(cfg *config.Config) error {
	p, err := export.NewPipeline(s.fetcher, export.PayloadFormat(cfg.Export.PayloadFormat))
	if err != nil {
		return fmt.Errorf("update config: %w", err)
	}
	s.mu.Lock()
	s.cfg = cfg
	s.conv = p
	s.mu.Unlock()
	if s.sinks != nil {
		s.sinks.UpdateSinks(cfg.Sinks)
	}
	return nil
}

// Config returns the configuration currently in use.
func (s *ExportService) Config() *config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Run implements export.Converter on top of the current pipeline so
// sessions pick up config reloads.
func (s *ExportService) Run(ctx context.Context, url string) (*export.Result, error) {
	s.mu.Lock()
	p := s.conv
	s.mu.Unlock()
	return p.Run(ctx, url)
}

// URL returns the export endpoint for contentName.
func (s *ExportService) URL(contentName string) (string, error) {
	if err := validateContentName(contentName); err != nil {
		return "", err
	}
	cfg := s.Config()
	if cfg.Sanity.ProjectID == "" && cfg.Sanity.BaseURL == "" {
		return "", fmt.Errorf("sanity.project_id is not configured")
	}
	return export.ExportURL(cfg.Target(), contentName), nil
}

func validateContentName(name string) error {
	if name == "" {
		return fmt.Errorf("content name is required")
	}
	if strings.ContainsAny(name, "/?#&= \t\r\n") {
		return fmt.Errorf("invalid content name %q", name)
	}
	return nil
}

func (s *ExportService) session(contentName string) *export.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[contentName]
	if !ok {
		sess = export.NewSession(s)
		s.sessions[contentName] = sess
	}
	return sess
}

// ── Session events ─────────────────────────────────────────

// State returns the session state for contentName (idle when never fetched).
func (s *ExportService) State(contentName string) ExportState {
	return ExportState{ContentName: contentName, Snapshot: s.session(contentName).Snapshot()}
}

// Fetch loads the documents of contentName into its session and logs the
// outcome. ErrEmptyResult leaves the session idle.
func (s *ExportService) Fetch(ctx context.Context, contentName string) (ExportState, error) {
	url, err := s.URL(contentName)
	if err != nil {
		log.Printf("[EXPORT] %s: fetch rejected: %v", contentName, err)
		return s.State(contentName), err
	}
	sess := s.session(contentName)

	start := time.Now()
	err = sess.Fetch(ctx, url)
	switch {
	case errors.Is(err, export.ErrEmptyResult):
		log.Printf("[EXPORT] %s: no documents", contentName)
	case err != nil:
		log.Printf("[EXPORT] %s: fetch failed: %v", contentName, err)
	default:
		snap := sess.Snapshot()
		log.Printf("[EXPORT] %s: %d row(s), %d column(s) in %s",
			contentName, len(snap.Rows), len(snap.Fields), time.Since(start).Round(time.Millisecond))
	}
	return s.publish(ctx, contentName), err
}

// Toggle flips the selection of the field at index i.
func (s *ExportService) Toggle(ctx context.Context, contentName string, i int) (ExportState, error) {
	err := s.session(contentName).Toggle(i)
	return s.publish(ctx, contentName), err
}

// SelectFields selects exactly the named fields.
func (s *ExportService) SelectFields(ctx context.Context, contentName string, names []string) (ExportState, error) {
	err := s.session(contentName).SetSelected(names)
	return s.publish(ctx, contentName), err
}

// Reset cancels the selection and returns the session to idle.
func (s *ExportService) Reset(ctx context.Context, contentName string) (ExportState, error) {
	err := s.session(contentName).Reset()
	return s.publish(ctx, contentName), err
}

func (s *ExportService) publish(ctx context.Context, contentName string) ExportState {
	st := s.State(contentName)
	s.emitter.Emit(ctx, EventExportState, st)
	return st
}

// ── Delivery ───────────────────────────────────────────────

// Render returns the CSV of the selected columns without saving it.
func (s *ExportService) Render(contentName string) (string, error) {
	text, _, err := s.session(contentName).Render()
	return text, err
}

// Download hands the selected columns of contentName to saver and records
// the run. A cancelled save returns a nil run and no error.
func (s *ExportService) Download(ctx context.Context, contentName string, saver export.Saver) (*domain.ExportRun, error) {
	sess := s.session(contentName)
	start := time.Now()

	path, n, err := sess.Download(ctx, saver, contentName)
	if err != nil {
		if isUsageError(err) {
			return nil, err
		}
		s.recordRun(ctx, &domain.ExportRun{
			ContentName: contentName,
			Fields:      sess.Selected(),
			Status:      domain.RunStatusError,
			Error:       err.Error(),
			StartedAt:   start,
		})
		return nil, err
	}
	if path == "" {
		log.Printf("[EXPORT] %s: download cancelled", contentName)
		return nil, nil
	}

	run := &domain.ExportRun{
		ContentName: contentName,
		Fields:      sess.Selected(),
		RowCount:    n,
		Destination: path,
		Status:      domain.RunStatusSuccess,
		StartedAt:   start,
	}
	s.recordRun(ctx, run)
	log.Printf("[EXPORT] %s: saved %d row(s) to %s", contentName, n, path)
	return run, nil
}

// ExportToSink writes the selected columns of contentName into table on
// the named sink and records the run.
func (s *ExportService) ExportToSink(ctx context.Context, contentName, sinkName, table string, mode sink.WriteMode) (*domain.ExportRun, error) {
	if s.sinks == nil {
		return nil, fmt.Errorf("sinks are not available")
	}
	snap := s.session(contentName).Snapshot()
	if snap.State != export.StateReady {
		return nil, &export.StateError{State: snap.State, Event: "export to sink"}
	}
	fields := domain.SelectedNames(snap.Fields)
	if len(fields) == 0 {
		return nil, export.ErrNoFieldsSelected
	}
	if table == "" {
		table = contentName
	}
	return s.deliverToSink(ctx, "", contentName, sinkName, table, mode, fields, snap.Rows, time.Now())
}

func (s *ExportService) deliverToSink(
	ctx context.Context,
	jobID, contentName, sinkName, table string,
	mode sink.WriteMode,
	fields []string,
	rows []export.Record,
	start time.Time,
) (*domain.ExportRun, error) {
	run := &domain.ExportRun{
		JobID:       jobID,
		ContentName: contentName,
		Fields:      fields,
		Destination: fmt.Sprintf("sink:%s/%s", sinkName, table),
		StartedAt:   start,
	}
	n, err := s.sinks.Write(ctx, sinkName, table, fields, rows, mode)
	run.RowCount = n
	if err != nil {
		run.Status = domain.RunStatusError
		run.Error = err.Error()
		s.recordRun(ctx, run)
		return run, err
	}
	run.Status = domain.RunStatusSuccess
	s.recordRun(ctx, run)
	return run, nil
}

// HeadlessExport describes a one-shot export that bypasses the interactive
// sessions: fetch, select, deliver.
type HeadlessExport struct {
	JobID       string
	ContentName string
	Fields      []string // empty means every column
	Saver       export.Saver

	// Sink, when set, replaces Saver.
	Sink  string
	Table string
	Mode  sink.WriteMode
}

// RunHeadless performs req end to end on a private session and records
// the outcome. Zero documents is recorded as an empty run and reported
// as ErrEmptyResult.
func (s *ExportService) RunHeadless(ctx context.Context, req HeadlessExport) (*domain.ExportRun, error) {
	start := time.Now()
	fail := func(status domain.RunStatus, err error) (*domain.ExportRun, error) {
		run := &domain.ExportRun{
			JobID:       req.JobID,
			ContentName: req.ContentName,
			Fields:      req.Fields,
			Status:      status,
			StartedAt:   start,
		}
		if status == domain.RunStatusError {
			run.Error = err.Error()
		}
		s.recordRun(ctx, run)
		return run, err
	}

	url, err := s.URL(req.ContentName)
	if err != nil {
		return nil, err
	}
	sess := export.NewSession(s)
	if err := sess.Fetch(ctx, url); err != nil {
		if errors.Is(err, export.ErrEmptyResult) {
			return fail(domain.RunStatusEmpty, err)
		}
		return fail(domain.RunStatusError, err)
	}
	if len(req.Fields) > 0 {
		if err := sess.SetSelected(req.Fields); err != nil {
			return fail(domain.RunStatusError, err)
		}
	}

	if req.Sink != "" {
		if s.sinks == nil {
			return fail(domain.RunStatusError, fmt.Errorf("sinks are not available"))
		}
		fields := sess.Selected()
		if len(fields) == 0 {
			return fail(domain.RunStatusError, export.ErrNoFieldsSelected)
		}
		table := req.Table
		if table == "" {
			table = req.ContentName
		}
		return s.deliverToSink(ctx, req.JobID, req.ContentName, req.Sink, table, req.Mode, fields, sess.Snapshot().Rows, start)
	}

	saver := req.Saver
	if saver == nil {
		saver = export.DirSaver{Dir: s.Config().Export.OutputDir}
	}
	path, n, err := sess.Download(ctx, saver, req.ContentName)
	if err != nil {
		return fail(domain.RunStatusError, err)
	}
	run := &domain.ExportRun{
		JobID:       req.JobID,
		ContentName: req.ContentName,
		Fields:      sess.Selected(),
		RowCount:    n,
		Destination: path,
		Status:      domain.RunStatusSuccess,
		StartedAt:   start,
	}
	s.recordRun(ctx, run)
	return run, nil
}

// ── History ────────────────────────────────────────────────

// ListRuns returns recent runs, newest first. An empty contentName lists all.
func (s *ExportService) ListRuns(contentName string, limit int) ([]domain.ExportRun, error) {
	if s.runs == nil {
		return []domain.ExportRun{}, nil
	}
	if limit <= 0 {
		limit = 50
	}
	return s.runs.ListRuns(contentName, limit)
}

func (s *ExportService) recordRun(ctx context.Context, run *domain.ExportRun) {
	if run.Dataset == "" {
		run.Dataset = s.Config().Sanity.Dataset
	}
	run.FinishedAt = time.Now()
	if s.runs != nil {
		if err := s.runs.CreateRun(run); err != nil {
			log.Printf("[EXPORT] record run for %s: %v", run.ContentName, err)
			return
		}
	}
	s.emitter.Emit(ctx, EventRunRecorded, run)
}

// isUsageError reports errors caused by the request rather than the delivery.
func isUsageError(err error) bool {
	var stateErr *export.StateError
	return errors.As(err, &stateErr) || errors.Is(err, export.ErrNoFieldsSelected)
}
