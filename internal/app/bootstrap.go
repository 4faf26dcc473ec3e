package app

import (
	"fmt"
	"runtime"

	"sanitycsv/internal/config"
	"sanitycsv/internal/secret"
	"sanitycsv/internal/service"
	"sanitycsv/internal/storage"
)

// core holds the storage and services shared by the GUI, the standalone
// MCP server and the headless CLI.
type core struct {
	cfgPath string

	db       *storage.DB
	runs     *storage.RunStore
	exports  *service.ExportService
	sinks    *service.SinkService
	jobs     *service.JobService
	settings *service.WindowSettingsService
}

// newSecretStore reads sink passwords from SANITYCSV_SECRET_* first, then
// from the macOS keychain where one exists.
func newSecretStore() secret.SecretStore {
	if runtime.GOOS == "darwin" {
		return secret.ChainStore{secret.EnvStore{}, secret.NewKeychainStore()}
	}
	return secret.ChainStore{secret.EnvStore{}}
}

// bootstrap loads the config at cfgPath, opens the local database and
// builds every service on top of it.
func bootstrap(cfgPath string, emitter service.EventEmitter) (*core, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	c := &core{
		cfgPath:  cfgPath,
		db:       db,
		runs:     storage.NewRunStore(db),
		settings: service.NewWindowSettingsService(storage.NewSettingsStore(db)),
	}
	c.sinks = service.NewSinkService(cfg.Sinks, newSecretStore())
	c.exports, err = service.NewExportService(cfg, nil, c.runs, c.sinks, emitter)
	if err != nil {
		db.Close()
		return nil, err
	}
	c.jobs = service.NewJobService(storage.NewJobStore(db), c.runs, c.exports, emitter)
	return c, nil
}

// reload pushes a freshly loaded config into the services.
func (c *core) reload(cfg *config.Config) error {
	return c.exports.UpdateConfig(cfg)
}

func (c *core) Close() error {
	c.jobs.Stop()
	return c.db.Close()
}
