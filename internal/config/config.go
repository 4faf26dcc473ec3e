// Package config loads the YAML configuration for sanitycsv.
//
// Loading follows a fixed sequence: read the file (a missing file is not an
// error), apply defaults, apply SANITYCSV_* environment overrides, validate.
package config

import (
	"sanitycsv/internal/domain"
	"sanitycsv/internal/export"
)

// Config is the root configuration.
type Config struct {
	Sanity  SanityConfig            `yaml:"sanity"`
	Widget  WidgetConfig            `yaml:"widget"`
	Export  ExportConfig            `yaml:"export"`
	Storage StorageConfig           `yaml:"storage"`
	Sinks   []domain.SinkConnection `yaml:"sinks"`
}

// SanityConfig identifies the dataset exports are read from.
type SanityConfig struct {
	ProjectID  string `yaml:"project_id"`
	APIVersion string `yaml:"api_version"`
	Dataset    string `yaml:"dataset"`
	// BaseURL replaces https://{project_id}.api.sanity.io, e.g. for a proxy.
	BaseURL string `yaml:"base_url"`
}

// WidgetConfig controls how the export widget is presented.
type WidgetConfig struct {
	Position        string               `yaml:"position"`
	BackgroundColor string               `yaml:"background_color"`
	Classes         domain.WidgetClasses `yaml:"classes"`
}

// ExportConfig controls payload decoding and where files go by default.
type ExportConfig struct {
	PayloadFormat string `yaml:"payload_format"`
	OutputDir     string `yaml:"output_dir"`
}

// StorageConfig locates the local run/job database.
type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
}

// Target returns the export target described by the sanity section.
func (c *Config) Target() export.Target {
	return export.Target{
		ProjectID:  c.Sanity.ProjectID,
		APIVersion: c.Sanity.APIVersion,
		Dataset:    c.Sanity.Dataset,
		BaseURL:    c.Sanity.BaseURL,
	}
}

// WidgetSettings returns what the frontend needs to render the widget.
func (c *Config) WidgetSettings() domain.WidgetSettings {
	pos, err := domain.ParsePosition(c.Widget.Position)
	if err != nil {
		pos = domain.PositionTopRight
	}
	return domain.WidgetSettings{
		ProjectID:       c.Sanity.ProjectID,
		APIVersion:      c.Sanity.APIVersion,
		Dataset:         c.Sanity.Dataset,
		Position:        pos,
		BackgroundColor: c.Widget.BackgroundColor,
		Classes:         c.Widget.Classes,
	}
}

// Sink returns the sink configured under name.
func (c *Config) Sink(name string) (domain.SinkConnection, bool) {
	for _, s := range c.Sinks {
		if s.Name == name {
			return s, true
		}
	}
	return domain.SinkConnection{}, false
}
