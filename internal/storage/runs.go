package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sanitycsv/internal/domain"
)

// RunStore persists the export run history.
type RunStore struct {
	db *DB
}

// NewRunStore creates a new RunStore.
func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db}
}

const runColumns = `id, job_id, content_name, dataset, fields_json, row_count,
	destination, status, error, started_at, finished_at`

// CreateRun records a finished run. ID and timestamps are filled in when empty.
func (s *RunStore) CreateRun(run *domain.ExportRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if run.StartedAt.IsZero() {
		run.StartedAt = now
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = now
	}
	if run.Fields == nil {
		run.Fields = []string{}
	}
	fields, err := json.Marshal(run.Fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}

	_, err = s.db.conn.Exec(
		`INSERT INTO export_runs (`+runColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.JobID, run.ContentName, run.Dataset, string(fields), run.RowCount,
		run.Destination, run.Status, run.Error, run.StartedAt.UTC(), run.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert export run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
// An empty contentName lists runs for every content type.
func (s *RunStore) ListRuns(contentName string, limit int) ([]domain.ExportRun, error) {
	if contentName == "" {
		return s.queryRuns(`SELECT `+runColumns+` FROM export_runs
			ORDER BY started_at DESC LIMIT ?`, limit)
	}
	return s.queryRuns(`SELECT `+runColumns+` FROM export_runs WHERE content_name = ?
		ORDER BY started_at DESC LIMIT ?`, contentName, limit)
}

// ListJobRuns returns the most recent runs of one job, newest first.
func (s *RunStore) ListJobRuns(jobID string, limit int) ([]domain.ExportRun, error) {
	return s.queryRuns(`SELECT `+runColumns+` FROM export_runs WHERE job_id = ?
		ORDER BY started_at DESC LIMIT ?`, jobID, limit)
}

// DeleteJobRuns removes the history of one job.
func (s *RunStore) DeleteJobRuns(jobID string) error {
	_, err := s.db.conn.Exec(`DELETE FROM export_runs WHERE job_id = ?`, jobID)
	return err
}

// Fingerprint summarises the table so pollers can detect new runs
// written by another process.
func (s *RunStore) Fingerprint() (string, error) {
	var count int
	var last string
	err := s.db.conn.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(finished_at), '') FROM export_runs`,
	).Scan(&count, &last)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d:%s", count, last), nil
}

func (s *RunStore) queryRuns(query string, args ...any) ([]domain.ExportRun, error) {
	rows, err := s.db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []domain.ExportRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func scanRun(sc interface{ Scan(...any) error }) (*domain.ExportRun, error) {
	var run domain.ExportRun
	var fields string
	if err := sc.Scan(
		&run.ID, &run.JobID, &run.ContentName, &run.Dataset, &fields, &run.RowCount,
		&run.Destination, &run.Status, &run.Error, &run.StartedAt, &run.FinishedAt,
	); err != nil {
		return nil, fmt.Errorf("scan export run: %w", err)
	}
	if err := json.Unmarshal([]byte(fields), &run.Fields); err != nil {
		return nil, fmt.Errorf("decode fields of run %s: %w", run.ID, err)
	}
	return &run, nil
}
