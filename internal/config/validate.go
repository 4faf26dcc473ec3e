package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"sanitycsv/internal/domain"
	"sanitycsv/internal/export"
)

// FieldError is a validation failure for one configuration field.
type FieldError struct {
	// Field is the dotted path, e.g. "sanity.project_id".
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every FieldError found in one pass.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:", len(e.Errors))
	for _, err := range e.Errors {
		sb.WriteString("\n  - ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

var (
	projectIDPattern = regexp.MustCompile(`^[a-z0-9-]+$`)
	datasetPattern   = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)
	colorPattern     = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

// Validate checks the configuration and returns a ValidationError listing
// every problem, or nil.
func Validate(cfg *Config) error {
	var errs []FieldError
	add := func(field, format string, args ...any) {
		errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// The project id is only needed once an export runs, so an empty value is allowed.
	if id := cfg.Sanity.ProjectID; id != "" && !projectIDPattern.MatchString(id) {
		add("sanity.project_id", "must be lowercase letters, digits or '-', got %q", id)
	}
	if cfg.Sanity.APIVersion == "" {
		add("sanity.api_version", "is required")
	}
	if !datasetPattern.MatchString(cfg.Sanity.Dataset) {
		add("sanity.dataset", "invalid dataset name %q", cfg.Sanity.Dataset)
	}
	if u := cfg.Sanity.BaseURL; u != "" {
		parsed, err := url.Parse(u)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			add("sanity.base_url", "must be an absolute URL, got %q", u)
		}
	}

	if _, err := domain.ParsePosition(cfg.Widget.Position); err != nil {
		add("widget.position", "must be one of top-left, top-right, bottom-left, bottom-right, got %q", cfg.Widget.Position)
	}
	if !colorPattern.MatchString(cfg.Widget.BackgroundColor) {
		add("widget.background_color", "must be a hex colour, got %q", cfg.Widget.BackgroundColor)
	}

	if _, err := export.NewPayloadDecoder(export.PayloadFormat(cfg.Export.PayloadFormat)); err != nil {
		add("export.payload_format", "must be ndjson or repair, got %q", cfg.Export.PayloadFormat)
	}

	seen := make(map[string]bool, len(cfg.Sinks))
	for i, s := range cfg.Sinks {
		prefix := fmt.Sprintf("sinks[%d]", i)
		if s.Name == "" {
			add(prefix+".name", "is required")
		} else if seen[s.Name] {
			add(prefix+".name", "duplicate sink name %q", s.Name)
		}
		seen[s.Name] = true

		if _, err := domain.ParseSinkDriver(string(s.Driver)); err != nil {
			add(prefix+".driver", "must be mysql, postgres, mongodb or sqlite, got %q", s.Driver)
		}
		if s.Host == "" {
			add(prefix+".host", "is required")
		}
		if s.Port < 0 || s.Port > 65535 {
			add(prefix+".port", "out of range: %d", s.Port)
		}
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}
