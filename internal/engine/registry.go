package engine

import (
	"context"
	"sync"

	"github.com/jmorrow/taskforge/internal/domain"
)

// Result is the successful outcome of a job execution. Artifact is non-nil
// when the executor produced a report; the worker persists it and links it
// to the job.
type Result struct {
	Artifact *domain.Report
}

// Executor performs the side effect associated with one job type. An
// executor must honor context cancellation: a cancelled execution leaves
// task and job data in its pre-transition state.
type Executor interface {
	// Execute runs the job's side effect. A non-nil error marks the job
	// failed and feeds the retry path; the error message is recorded as
	// the job's last failure cause.
	Execute(ctx context.Context, job domain.Job) (Result, error)
}

// Registry maps job types to executors. It is safe for concurrent use.
// Duplicate registrations are rejected so dispatch stays unambiguous;
// unknown types are rejected at dispatch time.
type Registry struct {
	mu        sync.RWMutex
	executors map[domain.JobType]Executor
}

// NewRegistry creates an empty executor registry.
func NewRegistry() *Registry {
	return &Registry{
		executors: make(map[domain.JobType]Executor),
	}
}

// Register binds an executor to a job type.
// Returns ErrDuplicateExecutor if the type already has an executor, or
// domain.ErrEmptyJobType for an empty type.
func (r *Registry) Register(jobType domain.JobType, executor Executor) error {
	if jobType == "" {
		return domain.ErrEmptyJobType
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.executors[jobType]; exists {
		return ErrDuplicateExecutor
	}
	r.executors[jobType] = executor
	return nil
}

// Get returns the executor registered for the given job type.
// Returns ErrUnknownJobType if no executor is registered.
func (r *Registry) Get(jobType domain.JobType) (Executor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	executor, ok := r.executors[jobType]
	if !ok {
		return nil, unknownTypeError(jobType)
	}
	return executor, nil
}

// Contains reports whether an executor is registered for the given job type.
// The API layer uses it to reject enqueue requests for unknown types early.
func (r *Registry) Contains(jobType domain.JobType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.executors[jobType]
	return ok
}

// Types returns all registered job types.
func (r *Registry) Types() []domain.JobType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]domain.JobType, 0, len(r.executors))
	for jobType := range r.executors {
		types = append(types, jobType)
	}
	return types
}
