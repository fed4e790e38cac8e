package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmorrow/taskforge/internal/domain"
)

// JobFilter narrows the result set of JobStore.List.
// Zero values mean "no constraint".
type JobFilter struct {
	Status domain.JobStatus
	Limit  int
	Offset int
}

// JobStore defines the interface for job data persistence. It is the single
// durable record of jobs; the engine holds only transient in-memory copies
// while processing.
type JobStore interface {
	// Create saves a new job to the store.
	// Returns validation errors from the domain Job if data is invalid.
	Create(ctx context.Context, job *domain.Job) error

	// Save persists the job's current state as an idempotent upsert.
	Save(ctx context.Context, job *domain.Job) error

	// GetByID retrieves a job by its unique ID.
	// Returns ErrJobNotFound if the job does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error)

	// List retrieves jobs matching the filter, newest first.
	// Returns an empty slice if no jobs match.
	List(ctx context.Context, filter JobFilter) ([]*domain.Job, error)

	// ClaimNextEligible atomically claims the oldest queued job whose
	// scheduled time, if any, has passed, and moves it to the running
	// status. No two concurrent callers can claim the same job.
	// Returns ErrNoEligibleJobs if nothing is eligible.
	ClaimNextEligible(ctx context.Context) (*domain.Job, error)

	// ReclaimStalled resets jobs that have been running for longer than
	// olderThan back to queued. Used on startup and by the stalled-job
	// monitor to recover jobs orphaned by a crash.
	// Returns the number of jobs reclaimed.
	ReclaimStalled(ctx context.Context, olderThan time.Duration) (int, error)

	// WithTx returns a new JobStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) JobStore
}
