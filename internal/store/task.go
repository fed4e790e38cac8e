package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmorrow/taskforge/internal/domain"
)

// TaskFilter narrows the result set of TaskStore.List.
// Zero values mean "no constraint".
type TaskFilter struct {
	// Status restricts results to tasks in the given status.
	Status domain.TaskStatus

	// ExcludeStatus restricts results to tasks NOT in the given status.
	// Used by the mark-completed executor to load every task that still
	// needs work.
	ExcludeStatus domain.TaskStatus

	// Limit and Offset paginate the result set. A zero limit means no limit.
	Limit  int
	Offset int
}

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns validation errors from the domain Task if data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List retrieves tasks matching the filter, ordered by creation time.
	// Returns an empty slice if no tasks match.
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)

	// Update saves changes to an existing task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// UpdateBatch persists the given tasks as a single atomic batch.
	// Either all tasks are updated or none are.
	UpdateBatch(ctx context.Context, tasks []*domain.Task) error

	// Delete removes a task from the store.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new TaskStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) TaskStore
}
