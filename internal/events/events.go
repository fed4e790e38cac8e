package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmorrow/taskforge/internal/domain"
)

// JobStatusEvent announces that a job moved from one status to another.
// The engine emits one on every state-machine transition; consumers (a
// presentation layer, a Redis notifier) subscribe through an Emitter.
type JobStatusEvent struct {
	// ID is a unique identifier for this event.
	ID uuid.UUID `json:"id"`

	// JobID identifies the job whose status changed.
	JobID uuid.UUID `json:"job_id"`

	// JobType is the job's handler key, for consumers that filter by kind.
	JobType domain.JobType `json:"job_type"`

	// From is the status the job left. Empty for newly enqueued jobs.
	From domain.JobStatus `json:"from,omitempty"`

	// To is the status the job entered.
	To domain.JobStatus `json:"to"`

	// Error carries the failure reason when To is the failed status.
	Error string `json:"error,omitempty"`

	// OccurredAt is when the transition was persisted.
	OccurredAt time.Time `json:"occurred_at"`
}

// NewJobStatusEvent creates a JobStatusEvent for the given job transition.
func NewJobStatusEvent(job domain.Job, from domain.JobStatus, errMsg string) *JobStatusEvent {
	return &JobStatusEvent{
		ID:         uuid.New(),
		JobID:      job.ID,
		JobType:    job.JobType,
		From:       from,
		To:         job.Status,
		Error:      errMsg,
		OccurredAt: time.Now().UTC(),
	}
}

// Handler is implemented by components that consume job-status events.
type Handler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *JobStatusEvent) error
}

// Emitter is implemented by components that publish job-status events.
// The engine depends only on this interface; event delivery must never
// block job processing.
type Emitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *JobStatusEvent) error
}
