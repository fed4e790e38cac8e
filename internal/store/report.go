package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmorrow/taskforge/internal/domain"
)

// ReportStore defines the interface for report data persistence.
type ReportStore interface {
	// Create saves a new report to the store. Each job may own at most one
	// report; creating a second report for the same job returns
	// ErrReportExists.
	Create(ctx context.Context, report *domain.Report) error

	// GetByID retrieves a report by its unique ID, including its content.
	// Returns ErrReportNotFound if the report does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Report, error)

	// GetByJobID retrieves the report owned by the given job.
	// Returns ErrReportNotFound if the job has no report.
	GetByJobID(ctx context.Context, jobID uuid.UUID) (*domain.Report, error)

	// UpdateStatus updates the status of an existing report.
	// Returns ErrReportNotFound if the report does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReportStatus) error

	// WithTx returns a new ReportStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) ReportStore
}
