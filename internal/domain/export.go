package domain

import "time"

// RunStatus is the outcome of an export run.
type RunStatus string

const (
	RunStatusSuccess RunStatus = "success"
	RunStatusError   RunStatus = "error"
	RunStatusEmpty   RunStatus = "empty"
	RunStatusRunning RunStatus = "running"
)

// ExportRun is a historical record of one delivered (or failed) export.
type ExportRun struct {
	ID          string    `json:"id"`
	JobID       string    `json:"jobId,omitempty"` // empty for interactive downloads
	ContentName string    `json:"contentName"`
	Dataset     string    `json:"dataset"`
	Fields      []string  `json:"fields"`
	RowCount    int       `json:"rowCount"`
	Destination string    `json:"destination"` // file path or "sink:<name>/<table>"
	Status      RunStatus `json:"status"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
}

// DestinationKind selects where a scheduled export is delivered.
type DestinationKind string

const (
	DestinationFile DestinationKind = "file"
	DestinationSink DestinationKind = "sink"
)

// Destination describes the target of a scheduled export.
type Destination struct {
	Kind  DestinationKind `json:"kind"`
	Dir   string          `json:"dir,omitempty"`   // file: output directory
	Sink  string          `json:"sink,omitempty"`  // sink: configured sink name
	Table string          `json:"table,omitempty"` // sink: table or collection
	Mode  string          `json:"mode,omitempty"`  // sink: replace (default) or append
}

// ExportJob is a saved export that runs on a cron schedule or on demand.
type ExportJob struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	ContentName string      `json:"contentName"`
	Fields      []string    `json:"fields"` // empty means every column
	Destination Destination `json:"destination"`
	Schedule    string      `json:"schedule"` // cron expression, empty = manual only
	Enabled     bool        `json:"enabled"`
	LastRunAt   time.Time   `json:"lastRunAt"`
	LastStatus  RunStatus   `json:"lastStatus"`
	LastError   string      `json:"lastError"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}
