package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the lifecycle state of a background job
type JobStatus string

// Possible job status values
const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// JobType identifies the handler that performs a job's side effect.
type JobType string

// Built-in job types
const (
	JobTypeMarkTasksCompleted JobType = "mark_tasks_completed"
	JobTypeGenerateTaskList   JobType = "generate_task_list"
)

// Common validation errors for Job
var (
	ErrEmptyJobID       = errors.New("job ID cannot be empty")
	ErrEmptyJobType     = errors.New("job type cannot be empty")
	ErrInvalidJobStatus = errors.New("invalid job status")
)

// Job represents a unit of deferred batch work with a lifecycle status.
// Jobs are value types: status changes go through the With* helpers, which
// return an updated copy that is then persisted, never mutated in place.
type Job struct {
	ID          uuid.UUID  `json:"id"`
	JobType     JobType    `json:"job_type"`
	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	ReportID    *uuid.UUID `json:"report_id,omitempty"`
}

// NewJob creates a new Job of the given type in the queued status.
// scheduledAt may be nil, in which case the job is eligible immediately.
// Returns an error if validation fails.
func NewJob(jobType JobType, scheduledAt *time.Time) (*Job, error) {
	job := &Job{
		ID:          uuid.New(),
		JobType:     jobType,
		Status:      JobStatusQueued,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
		ScheduledAt: scheduledAt,
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}

	return job, nil
}

// Validate checks if the Job has valid data.
// Returns an error if any field fails validation.
func (j *Job) Validate() error {
	if j.ID == uuid.Nil {
		return ErrEmptyJobID
	}

	if j.JobType == "" {
		return ErrEmptyJobType
	}

	if !isValidJobStatus(j.Status) {
		return ErrInvalidJobStatus
	}

	return nil
}

// IsTerminal reports whether the job has reached a terminal status.
// A failed job may still be re-queued by the retry tracker; terminal here
// means no further transition happens without external intervention.
func (j *Job) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// Eligible reports whether the job may be claimed at the given instant:
// it must be queued and its scheduled time, if any, must have passed.
func (j *Job) Eligible(now time.Time) bool {
	if j.Status != JobStatusQueued {
		return false
	}
	return j.ScheduledAt == nil || !j.ScheduledAt.After(now)
}

// WithStatus returns a copy of the job with the given status and a refreshed
// UpdatedAt timestamp. The receiver is not modified.
func (j Job) WithStatus(status JobStatus) Job {
	j.Status = status
	j.UpdatedAt = time.Now().UTC()
	return j
}

// WithSchedule returns a copy of the job scheduled to become eligible at the
// given instant. Used by the retry tracker to defer re-queued jobs.
func (j Job) WithSchedule(at time.Time) Job {
	t := at
	j.ScheduledAt = &t
	j.UpdatedAt = time.Now().UTC()
	return j
}

// WithReport returns a copy of the job linked to the given report.
func (j Job) WithReport(reportID uuid.UUID) Job {
	id := reportID
	j.ReportID = &id
	j.UpdatedAt = time.Now().UTC()
	return j
}

// isValidJobStatus checks if the given status is a valid JobStatus.
func isValidJobStatus(status JobStatus) bool {
	switch status {
	case JobStatusQueued, JobStatusRunning, JobStatusCompleted, JobStatusFailed:
		return true
	default:
		return false
	}
}
