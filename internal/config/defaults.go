package config

import (
	"os"
	"path/filepath"

	"sanitycsv/internal/domain"
	"sanitycsv/internal/export"
)

// Default values for configuration fields.
const (
	DefaultAPIVersion      = "2024-01-20"
	DefaultDataset         = "production"
	DefaultPosition        = string(domain.PositionTopRight)
	DefaultBackgroundColor = "#EC5446"
	DefaultPayloadFormat   = string(export.FormatNDJSON)
)

// ApplyDefaults fills every unset field with its default value.
func ApplyDefaults(cfg *Config) {
	if cfg.Sanity.APIVersion == "" {
		cfg.Sanity.APIVersion = DefaultAPIVersion
	}
	if cfg.Sanity.Dataset == "" {
		cfg.Sanity.Dataset = DefaultDataset
	}
	if cfg.Widget.Position == "" {
		cfg.Widget.Position = DefaultPosition
	}
	if cfg.Widget.BackgroundColor == "" {
		cfg.Widget.BackgroundColor = DefaultBackgroundColor
	}
	if cfg.Export.PayloadFormat == "" {
		cfg.Export.PayloadFormat = DefaultPayloadFormat
	}
	if cfg.Export.OutputDir == "" {
		cfg.Export.OutputDir = defaultOutputDir()
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = defaultDataDir()
	}

	for i := range cfg.Sinks {
		s := &cfg.Sinks[i]
		if s.Port != 0 {
			continue
		}
		switch s.Driver {
		case domain.SinkDriverPostgres:
			s.Port = 5432
		case domain.SinkDriverMySQL:
			s.Port = 3306
		case domain.SinkDriverMongoDB:
			s.Port = 27017
		}
	}
}

func defaultOutputDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Downloads")
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", ".sanitycsv")
	}
	return filepath.Join(dir, "sanitycsv")
}
