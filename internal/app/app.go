package app

import (
	"context"
	"log"
	"time"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"sanitycsv/internal/config"
	"sanitycsv/internal/domain"
	"sanitycsv/internal/service"
	"sanitycsv/internal/sink"
)

// App is the main Wails application struct.
// All exported methods are available as Wails bindings.
//
// Export bindings never hand errors to the frontend: failures are logged
// and the binding returns the session's current state, which is idle
// after a failed fetch.
type App struct {
	ctx context.Context

	core       *core
	emitter    *wailsEmitter
	runWatcher *service.RunWatcher
	cfgWatcher *config.Watcher
}

// New loads the config at cfgPath and opens the local database. Storage is
// opened before the window exists so the saved window size can be used.
func New(cfgPath string) (*App, error) {
	emitter := &wailsEmitter{}
	c, err := bootstrap(cfgPath, emitter)
	if err != nil {
		return nil, err
	}
	return &App{core: c, emitter: emitter}, nil
}

// WindowSize returns the window size saved by the previous session.
func (a *App) WindowSize() service.WindowSize {
	return a.core.settings.LoadWindowSize()
}

// Startup is called when the app starts.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
	a.emitter.attach(ctx)

	a.core.jobs.RestartScheduler(ctx)

	// Runs recorded by the standalone MCP server or the CLI
	a.runWatcher = service.NewRunWatcher(a.core.runs, a.emitter, 0)
	a.runWatcher.Start(ctx)

	w, err := config.Watch(a.core.cfgPath, func(cfg *config.Config) {
		if err := a.core.reload(cfg); err != nil {
			wailsRuntime.LogErrorf(ctx, "Failed to apply config: %v", err)
			return
		}
		a.emitter.Emit(ctx, service.EventConfigReloaded, cfg.WidgetSettings())
	})
	if err != nil {
		wailsRuntime.LogErrorf(ctx, "Failed to watch config: %v", err)
	}
	a.cfgWatcher = w
}

// OnBeforeClose saves the window size. Returning false lets the window close.
func (a *App) OnBeforeClose(ctx context.Context) bool {
	w, h := wailsRuntime.WindowGetSize(ctx)
	if err := a.core.settings.SaveWindowSize(w, h); err != nil {
		log.Printf("[SETTINGS] save window size: %v", err)
	}
	return false
}

// Shutdown is called when the app is closing.
func (a *App) Shutdown(ctx context.Context) {
	if a.cfgWatcher != nil {
		a.cfgWatcher.Close()
	}
	if a.runWatcher != nil {
		a.runWatcher.Stop()
	}
	a.core.jobs.Stop()

	waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	a.core.jobs.WaitRunning(waitCtx)
	cancel()

	if err := a.core.db.Close(); err != nil {
		log.Printf("[APP] close database: %v", err)
	}
}

// ============================================================
// Widget
// ============================================================

// GetWidgetSettings returns the target and styling the widget renders with.
func (a *App) GetWidgetSettings() domain.WidgetSettings {
	return a.core.exports.Config().WidgetSettings()
}

// ResolvePage tells the frontend which content type a studio path shows
// and whether the export widget applies to it.
func (a *App) ResolvePage(path string) domain.PageRoute {
	return domain.ParsePageRoute(path)
}

// ============================================================
// Export Session
// ============================================================

// FetchExport loads a content type. ExportService.Fetch already logs
// the outcome, so the error is dropped here.
func (a *App) FetchExport(contentName string) service.ExportState {
	st, _ := a.core.exports.Fetch(a.ctx, contentName)
	return st
}

func (a *App) GetExportState(contentName string) service.ExportState {
	return a.core.exports.State(contentName)
}

func (a *App) ToggleExportField(contentName string, index int) service.ExportState {
	st, err := a.core.exports.Toggle(a.ctx, contentName, index)
	if err != nil {
		log.Printf("[EXPORT] %s: toggle %d: %v", contentName, index, err)
	}
	return st
}

func (a *App) SelectExportFields(contentName string, fields []string) service.ExportState {
	st, err := a.core.exports.SelectFields(a.ctx, contentName, fields)
	if err != nil {
		log.Printf("[EXPORT] %s: select fields: %v", contentName, err)
	}
	return st
}

func (a *App) ResetExport(contentName string) service.ExportState {
	st, err := a.core.exports.Reset(a.ctx, contentName)
	if err != nil {
		log.Printf("[EXPORT] %s: reset: %v", contentName, err)
	}
	return st
}

// DownloadExport asks where to save {contentName}.csv and writes it.
// It returns nil when the user cancels or the download fails.
func (a *App) DownloadExport(contentName string) *domain.ExportRun {
	saver := dialogSaver{ctx: a.ctx, defaultDir: a.core.exports.Config().Export.OutputDir}
	run, err := a.core.exports.Download(a.ctx, contentName, saver)
	if err != nil {
		log.Printf("[EXPORT] %s: download: %v", contentName, err)
		return nil
	}
	return run
}

// ListExportRuns returns recent runs, newest first. An empty contentName
// lists every content type.
func (a *App) ListExportRuns(contentName string, limit int) ([]domain.ExportRun, error) {
	return a.core.exports.ListRuns(contentName, limit)
}

// ============================================================
// Sinks
// ============================================================

func (a *App) ListSinks() []domain.SinkConnection {
	return a.core.sinks.ListSinks()
}

func (a *App) TestSink(name string) error {
	return a.core.sinks.TestSink(a.ctx, name)
}

func (a *App) SetSinkPassword(name, password string) error {
	return a.core.sinks.SetPassword(name, password)
}

// ExportToSink writes the selected columns of a ready session into a sink
// table. mode is "replace" (default) or "append".
func (a *App) ExportToSink(contentName, sinkName, table, mode string) (*domain.ExportRun, error) {
	m, err := sink.ParseWriteMode(mode)
	if err != nil {
		return nil, err
	}
	return a.core.exports.ExportToSink(a.ctx, contentName, sinkName, table, m)
}

// ============================================================
// Export Jobs
// ============================================================

func (a *App) ListExportJobs() ([]domain.ExportJob, error) {
	return a.core.jobs.ListJobs()
}

func (a *App) CreateExportJob(input service.CreateJobInput) (*domain.ExportJob, error) {
	return a.core.jobs.CreateJob(a.ctx, input)
}

func (a *App) UpdateExportJob(id string, input service.CreateJobInput) (*domain.ExportJob, error) {
	return a.core.jobs.UpdateJob(a.ctx, id, input)
}

func (a *App) DeleteExportJob(id string) error {
	return a.core.jobs.DeleteJob(a.ctx, id)
}

// RunExportJob starts a job in the background; completion arrives as a
// jobs:job-completed event.
func (a *App) RunExportJob(id string) error {
	if _, err := a.core.jobs.GetJob(id); err != nil {
		return err
	}
	go func() {
		if _, err := a.core.jobs.RunJob(a.ctx, id); err != nil {
			log.Printf("[JOBS] manual run of %s failed: %v", id, err)
		}
	}()
	return nil
}

func (a *App) ListExportJobRuns(id string) ([]domain.ExportRun, error) {
	return a.core.jobs.ListJobRuns(id)
}
