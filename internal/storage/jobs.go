package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sanitycsv/internal/domain"
)

// ErrJobNotFound is returned when no job has the requested ID.
var ErrJobNotFound = errors.New("export job not found")

// JobStore implements persistence for scheduled export jobs.
type JobStore struct {
	db *DB
}

// NewJobStore creates a new JobStore.
func NewJobStore(db *DB) *JobStore {
	return &JobStore{db: db}
}

const jobColumns = `id, name, content_name, fields_json, destination_json, schedule,
	enabled, last_run_at, last_status, last_error, created_at, updated_at`

// ── ExportJob CRUD ─────────────────────────────────────────

func (s *JobStore) CreateJob(job *domain.ExportJob) error {
	now := time.Now().UTC()
	job.ID = uuid.New().String()
	job.CreatedAt = now
	job.UpdatedAt = now

	fields, dest, err := encodeJob(job)
	if err != nil {
		return err
	}

	_, err = s.db.conn.Exec(
		`INSERT INTO export_jobs (id, name, content_name, fields_json, destination_json,
		 schedule, enabled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Name, job.ContentName, fields, dest,
		job.Schedule, job.Enabled, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert export job: %w", err)
	}
	return nil
}

func (s *JobStore) GetJob(id string) (*domain.ExportJob, error) {
	row := s.db.conn.QueryRow(`SELECT `+jobColumns+` FROM export_jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return job, err
}

func (s *JobStore) UpdateJob(job *domain.ExportJob) error {
	job.UpdatedAt = time.Now().UTC()
	fields, dest, err := encodeJob(job)
	if err != nil {
		return err
	}

	res, err := s.db.conn.Exec(
		`UPDATE export_jobs SET name=?, content_name=?, fields_json=?, destination_json=?,
		 schedule=?, enabled=?, updated_at=? WHERE id=?`,
		job.Name, job.ContentName, fields, dest,
		job.Schedule, job.Enabled, job.UpdatedAt, job.ID,
	)
	if err != nil {
		return fmt.Errorf("update export job: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrJobNotFound, job.ID)
	}
	return nil
}

func (s *JobStore) UpdateJobStatus(id string, status domain.RunStatus, errMsg string) error {
	now := time.Now().UTC()
	_, err := s.db.conn.Exec(
		`UPDATE export_jobs SET last_run_at=?, last_status=?, last_error=?, updated_at=? WHERE id=?`,
		now, status, errMsg, now, id,
	)
	return err
}

func (s *JobStore) DeleteJob(id string) error {
	_, err := s.db.conn.Exec(`DELETE FROM export_jobs WHERE id = ?`, id)
	return err
}

func (s *JobStore) ListJobs() ([]domain.ExportJob, error) {
	return s.queryJobs(`SELECT ` + jobColumns + ` FROM export_jobs ORDER BY created_at ASC`)
}

// ListEnabledScheduledJobs returns enabled jobs that carry a cron schedule.
func (s *JobStore) ListEnabledScheduledJobs() ([]domain.ExportJob, error) {
	return s.queryJobs(`SELECT ` + jobColumns + ` FROM export_jobs
		WHERE enabled = 1 AND schedule != '' ORDER BY created_at ASC`)
}

func (s *JobStore) queryJobs(query string, args ...any) ([]domain.ExportJob, error) {
	rows, err := s.db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []domain.ExportJob{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

func encodeJob(job *domain.ExportJob) (string, string, error) {
	if job.Fields == nil {
		job.Fields = []string{}
	}
	fields, err := json.Marshal(job.Fields)
	if err != nil {
		return "", "", fmt.Errorf("encode fields: %w", err)
	}
	dest, err := json.Marshal(job.Destination)
	if err != nil {
		return "", "", fmt.Errorf("encode destination: %w", err)
	}
	return string(fields), string(dest), nil
}

func scanJob(sc interface{ Scan(...any) error }) (*domain.ExportJob, error) {
	var job domain.ExportJob
	var fields, dest string
	var lastRun sql.NullTime
	if err := sc.Scan(
		&job.ID, &job.Name, &job.ContentName, &fields, &dest, &job.Schedule,
		&job.Enabled, &lastRun, &job.LastStatus, &job.LastError,
		&job.CreatedAt, &job.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if lastRun.Valid {
		job.LastRunAt = lastRun.Time
	}
	if err := json.Unmarshal([]byte(fields), &job.Fields); err != nil {
		return nil, fmt.Errorf("decode fields of job %s: %w", job.ID, err)
	}
	if err := json.Unmarshal([]byte(dest), &job.Destination); err != nil {
		return nil, fmt.Errorf("decode destination of job %s: %w", job.ID, err)
	}
	return &job, nil
}
