package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"sanitycsv/internal/domain"
	"sanitycsv/internal/export"
	"sanitycsv/internal/sink"
	"sanitycsv/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Job Service — saved exports run on demand or on a cron schedule
// ─────────────────────────────────────────────────────────────

// JobService manages export jobs and their cron scheduler.
// Runs go through ExportService.RunHeadless so they share the pipeline,
// the column selection and the run history with interactive exports.
type JobService struct {
	store   *storage.JobStore
	runs    *storage.RunStore
	exports *ExportService
	emitter EventEmitter
	running runGuard

	mu        sync.Mutex
	cronSched *cron.Cron
}

// NewJobService creates a JobService ready for use.
func NewJobService(
	store *storage.JobStore,
	runs *storage.RunStore,
	exports *ExportService,
	emitter EventEmitter,
) *JobService {
	if emitter == nil {
		emitter = NoopEmitter{}
	}
	return &JobService{
		store:   store,
		runs:    runs,
		exports: exports,
		emitter: emitter,
	}
}

// ── Job CRUD ───────────────────────────────────────────────

type CreateJobInput struct {
	Name        string             `json:"name"`
	ContentName string             `json:"contentName"`
	Fields      []string           `json:"fields"`
	Destination domain.Destination `json:"destination"`
	Schedule    string             `json:"schedule"`
	Enabled     bool               `json:"enabled"`
}

func (in *CreateJobInput) validate() error {
	if in.Name == "" {
		return fmt.Errorf("job name is required")
	}
	if err := validateContentName(in.ContentName); err != nil {
		return err
	}
	if in.Schedule != "" {
		if _, err := cron.ParseStandard(in.Schedule); err != nil {
			return fmt.Errorf("invalid schedule %q: %w", in.Schedule, err)
		}
	}
	switch in.Destination.Kind {
	case "":
		in.Destination.Kind = domain.DestinationFile
	case domain.DestinationFile:
	case domain.DestinationSink:
		if in.Destination.Sink == "" {
			return fmt.Errorf("sink destination needs a sink name")
		}
		if _, err := sink.ParseWriteMode(in.Destination.Mode); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown destination kind %q", in.Destination.Kind)
	}
	return nil
}

func (s *JobService) CreateJob(ctx context.Context, input CreateJobInput) (*domain.ExportJob, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	job := &domain.ExportJob{
		Name:        input.Name,
		ContentName: input.ContentName,
		Fields:      input.Fields,
		Destination: input.Destination,
		Schedule:    input.Schedule,
		Enabled:     input.Enabled,
	}
	if err := s.store.CreateJob(job); err != nil {
		return nil, fmt.Errorf("create export job: %w", err)
	}
	s.RestartScheduler(ctx)
	return job, nil
}

func (s *JobService) GetJob(id string) (*domain.ExportJob, error) {
	return s.store.GetJob(id)
}

func (s *JobService) ListJobs() ([]domain.ExportJob, error) {
	return s.store.ListJobs()
}

func (s *JobService) UpdateJob(ctx context.Context, id string, input CreateJobInput) (*domain.ExportJob, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	job, err := s.store.GetJob(id)
	if err != nil {
		return nil, err
	}
	job.Name = input.Name
	job.ContentName = input.ContentName
	job.Fields = input.Fields
	job.Destination = input.Destination
	job.Schedule = input.Schedule
	job.Enabled = input.Enabled

	if err := s.store.UpdateJob(job); err != nil {
		return nil, err
	}
	s.RestartScheduler(ctx)
	return job, nil
}

func (s *JobService) DeleteJob(ctx context.Context, id string) error {
	if err := s.store.DeleteJob(id); err != nil {
		return err
	}
	if s.runs != nil {
		if err := s.runs.DeleteJobRuns(id); err != nil {
			log.Printf("[JOBS] delete runs of %s: %v", id, err)
		}
	}
	s.RestartScheduler(ctx)
	return nil
}

// ListJobRuns returns the last 50 runs of a job.
func (s *JobService) ListJobRuns(id string) ([]domain.ExportRun, error) {
	if s.runs == nil {
		return []domain.ExportRun{}, nil
	}
	return s.runs.ListJobRuns(id, 50)
}

// ── Run ────────────────────────────────────────────────────

// RunJob executes one export job synchronously and updates its status.
func (s *JobService) RunJob(ctx context.Context, id string) (*domain.ExportRun, error) {
	release, since, ok := s.running.Acquire(id)
	if !ok {
		return nil, fmt.Errorf("job %s is already running (started %s ago)", id, time.Since(since).Round(time.Second))
	}
	defer release()

	job, err := s.store.GetJob(id)
	if err != nil {
		return nil, err
	}
	s.store.UpdateJobStatus(id, domain.RunStatusRunning, "")

	req := HeadlessExport{
		JobID:       job.ID,
		ContentName: job.ContentName,
		Fields:      job.Fields,
	}
	switch job.Destination.Kind {
	case domain.DestinationSink:
		req.Sink = job.Destination.Sink
		req.Table = job.Destination.Table
		req.Mode, _ = sink.ParseWriteMode(job.Destination.Mode)
	default:
		if job.Destination.Dir != "" {
			req.Saver = export.DirSaver{Dir: job.Destination.Dir}
		}
	}

	run, runErr := s.exports.RunHeadless(ctx, req)

	status := domain.RunStatusError
	errMsg := ""
	if run != nil {
		status = run.Status
	}
	if runErr != nil && status == domain.RunStatusError {
		errMsg = runErr.Error()
	}
	if err := s.store.UpdateJobStatus(id, status, errMsg); err != nil {
		log.Printf("[JOBS] update status of %s: %v", id, err)
	}

	s.emitter.Emit(ctx, EventJobCompleted, id)
	return run, runErr
}

// ── Scheduler ──────────────────────────────────────────────

// RestartScheduler tears down the cron scheduler and rebuilds it from the
// enabled jobs that carry a schedule.
func (s *JobService) RestartScheduler(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopScheduler()

	jobs, err := s.store.ListEnabledScheduledJobs()
	if err != nil {
		log.Printf("[JOBS] failed to list jobs: %v", err)
		return
	}
	if len(jobs) == 0 {
		return
	}

	c := cron.New()
	scheduled := 0
	for _, j := range jobs {
		jid := j.ID
		_, err := c.AddFunc(j.Schedule, func() {
			log.Printf("[JOBS] cron: running job %s", jid)
			if _, err := s.RunJob(ctx, jid); err != nil {
				log.Printf("[JOBS] cron: job %s failed: %v", jid, err)
			}
		})
		if err != nil {
			log.Printf("[JOBS] cron: invalid expression %q for job %s: %v", j.Schedule, jid, err)
			continue
		}
		scheduled++
	}
	c.Start()
	s.cronSched = c
	log.Printf("[JOBS] cron: scheduled %d job(s)", scheduled)
}

// ScheduledCount returns how many jobs the running scheduler holds.
func (s *JobService) ScheduledCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cronSched == nil {
		return 0
	}
	return len(s.cronSched.Entries())
}

// RunningJobs returns the IDs of the jobs currently executing.
func (s *JobService) RunningJobs() []string {
	return s.running.Running()
}

// WaitRunning blocks until all running jobs finish or ctx is cancelled.
// Used for graceful shutdown.
func (s *JobService) WaitRunning(ctx context.Context) {
	s.running.Wait(ctx)
}

// Stop tears down the scheduler.
func (s *JobService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopScheduler()
}

func (s *JobService) stopScheduler() {
	if s.cronSched != nil {
		s.cronSched.Stop()
		s.cronSched = nil
	}
}
