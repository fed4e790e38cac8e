package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmorrow/taskforge/internal/domain"
)

// RetryStore defines the interface for per-job retry bookkeeping.
type RetryStore interface {
	// Get retrieves the retry info for the given job.
	// Returns ErrRetryInfoNotFound if the job has never failed.
	Get(ctx context.Context, jobID uuid.UUID) (*domain.RetryInfo, error)

	// Upsert creates or replaces the retry info for its job.
	Upsert(ctx context.Context, info *domain.RetryInfo) error

	// WithTx returns a new RetryStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) RetryStore
}
