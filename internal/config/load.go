package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SANITYCSV_"

// DefaultPath is the config file used when none is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "sanitycsv.yaml"
	}
	return filepath.Join(dir, "sanitycsv", "config.yaml")
}

// Load reads the configuration at path, applies defaults and environment
// overrides, then validates the result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config %q: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %q: %w", path, err)
		}
	}

	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvOverrides applies SANITYCSV_* variables. They always win over the file.
func applyEnvOverrides(cfg *Config) {
	overrides := []struct {
		name   string
		target *string
	}{
		{"PROJECT_ID", &cfg.Sanity.ProjectID},
		{"API_VERSION", &cfg.Sanity.APIVersion},
		{"DATASET", &cfg.Sanity.Dataset},
		{"BASE_URL", &cfg.Sanity.BaseURL},
		{"POSITION", &cfg.Widget.Position},
		{"PAYLOAD_FORMAT", &cfg.Export.PayloadFormat},
		{"OUTPUT_DIR", &cfg.Export.OutputDir},
		{"DATA_DIR", &cfg.Storage.DataDir},
	}
	for _, o := range overrides {
		if val := os.Getenv(EnvPrefix + o.name); val != "" {
			*o.target = val
		}
	}
}
