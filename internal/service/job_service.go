package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmorrow/taskforge/internal/domain"
	"github.com/jmorrow/taskforge/internal/store"
)

// ExecutorCatalog reports which job types have a registered executor.
// Satisfied by the engine's registry; defined here so the service layer does
// not depend on the engine package.
type ExecutorCatalog interface {
	// Contains reports whether an executor is registered for the job type.
	Contains(jobType domain.JobType) bool
}

// JobDetail is the API-facing job record: the job itself plus derived report
// and failure fields.
type JobDetail struct {
	Job domain.Job

	// HasReport is true when the job produced a report artifact.
	HasReport bool

	// ReportFileName is the artifact's file name, empty when HasReport is false.
	ReportFileName string

	// LastErrorMessage is the most recent failure message, empty when the
	// job never failed.
	LastErrorMessage string

	// RetryCount is how many times the job has been re-queued after failing.
	RetryCount int
}

// JobService provides job enqueueing and inspection.
type JobService interface {
	// Enqueue creates a new queued job of the given type. scheduledAt may be
	// nil for immediate eligibility.
	// Returns ErrUnknownJobType when no executor is registered for jobType.
	Enqueue(ctx context.Context, jobType domain.JobType, scheduledAt *time.Time) (*domain.Job, error)

	// Get retrieves a job with its derived report and failure fields.
	// Returns ErrJobNotFound if the job does not exist.
	Get(ctx context.Context, id uuid.UUID) (*JobDetail, error)

	// List retrieves jobs matching the filter, newest first.
	List(ctx context.Context, filter store.JobFilter) ([]*JobDetail, error)
}

// jobServiceImpl implements the JobService interface.
type jobServiceImpl struct {
	jobs    store.JobStore
	reports store.ReportStore
	retries store.RetryStore
	catalog ExecutorCatalog
	logger  *slog.Logger
}

// NewJobService creates a new JobService.
// It returns an error if any of the required dependencies are nil.
func NewJobService(
	jobs store.JobStore,
	reports store.ReportStore,
	retries store.RetryStore,
	catalog ExecutorCatalog,
	logger *slog.Logger,
) (JobService, error) {
	if jobs == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "job store cannot be nil"}
	}
	if reports == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "report store cannot be nil"}
	}
	if retries == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "retry store cannot be nil"}
	}
	if catalog == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "executor catalog cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &jobServiceImpl{
		jobs:    jobs,
		reports: reports,
		retries: retries,
		catalog: catalog,
		logger:  logger.With("component", "job_service"),
	}, nil
}

// Enqueue validates the job type against the executor catalog and persists a
// new queued job. The worker picks it up on a later tick; there is no
// synchronous result channel.
func (s *jobServiceImpl) Enqueue(
	ctx context.Context,
	jobType domain.JobType,
	scheduledAt *time.Time,
) (*domain.Job, error) {
	if !s.catalog.Contains(jobType) {
		s.logger.Warn("enqueue rejected for unknown job type", "job_type", jobType)
		return nil, fmt.Errorf("%w: %q", ErrUnknownJobType, jobType)
	}

	job, err := domain.NewJob(jobType, scheduledAt)
	if err != nil {
		return nil, err
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		s.logger.Error("failed to enqueue job", "error", err, "job_type", jobType)
		return nil, NewServiceError("enqueue_job", "failed to save job", err)
	}

	s.logger.Info("job enqueued",
		"job_id", job.ID,
		"job_type", jobType,
		"scheduled_at", scheduledAt)
	return job, nil
}

// Get loads a job and enriches it with report and retry information.
func (s *jobServiceImpl) Get(ctx context.Context, id uuid.UUID) (*JobDetail, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrJobNotFound) {
			return nil, ErrJobNotFound
		}
		s.logger.Error("failed to retrieve job", "error", err, "job_id", id)
		return nil, NewServiceError("get_job", "failed to retrieve job", err)
	}

	return s.detail(ctx, job)
}

// List loads jobs matching the filter with their derived fields.
func (s *jobServiceImpl) List(ctx context.Context, filter store.JobFilter) ([]*JobDetail, error) {
	jobs, err := s.jobs.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list jobs", "error", err)
		return nil, NewServiceError("list_jobs", "failed to list jobs", err)
	}

	details := make([]*JobDetail, 0, len(jobs))
	for _, job := range jobs {
		detail, err := s.detail(ctx, job)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, nil
}

// detail assembles the API-facing record for one job.
func (s *jobServiceImpl) detail(ctx context.Context, job *domain.Job) (*JobDetail, error) {
	detail := &JobDetail{Job: *job}

	if job.ReportID != nil {
		report, err := s.reports.GetByID(ctx, *job.ReportID)
		switch {
		case err == nil:
			detail.HasReport = true
			detail.ReportFileName = report.FileName
		case errors.Is(err, store.ErrReportNotFound):
			// Dangling link; surface the job without report fields.
			s.logger.Warn("job references missing report",
				"job_id", job.ID, "report_id", *job.ReportID)
		default:
			return nil, NewServiceError("get_job", "failed to load report", err)
		}
	}

	info, err := s.retries.Get(ctx, job.ID)
	switch {
	case err == nil:
		detail.LastErrorMessage = info.LastErrorMessage
		detail.RetryCount = info.RetryCount
	case errors.Is(err, store.ErrRetryInfoNotFound):
		// Never failed.
	default:
		return nil, NewServiceError("get_job", "failed to load retry info", err)
	}

	return detail, nil
}
