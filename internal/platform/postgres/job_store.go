package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmorrow/taskforge/internal/domain"
	"github.com/jmorrow/taskforge/internal/platform/logger"
	"github.com/jmorrow/taskforge/internal/store"
)

// PostgresJobStore implements the store.JobStore interface
// using a PostgreSQL database as the storage backend.
type PostgresJobStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresJobStore creates a new PostgreSQL implementation of the JobStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresJobStore(db store.DBTX, logger *slog.Logger) *PostgresJobStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresJobStore{
		db:     db,
		logger: logger.With(slog.String("component", "job_store")),
	}
}

// Ensure PostgresJobStore implements store.JobStore interface
var _ store.JobStore = (*PostgresJobStore)(nil)

// Create implements store.JobStore.Create
// It saves a new job to the database, handling domain validation.
func (s *PostgresJobStore) Create(ctx context.Context, job *domain.Job) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := job.Validate(); err != nil {
		log.Warn("job validation failed during create",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()))
		return err
	}

	query := `
		INSERT INTO jobs (id, job_type, status, created_at, updated_at, scheduled_at, report_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		job.ID,
		job.JobType,
		job.Status,
		job.CreatedAt,
		job.UpdatedAt,
		job.ScheduledAt,
		job.ReportID,
	)
	if err != nil {
		log.Error("failed to create job",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()),
			slog.String("job_type", string(job.JobType)))
		return MapError(err)
	}

	log.Info("job created",
		slog.String("job_id", job.ID.String()),
		slog.String("job_type", string(job.JobType)))
	return nil
}

// Save implements store.JobStore.Save
// It persists the job's current state as an idempotent upsert.
func (s *PostgresJobStore) Save(ctx context.Context, job *domain.Job) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := job.Validate(); err != nil {
		log.Warn("job validation failed during save",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()))
		return err
	}

	query := `
		INSERT INTO jobs (id, job_type, status, created_at, updated_at, scheduled_at, report_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status,
		    updated_at = EXCLUDED.updated_at,
		    scheduled_at = EXCLUDED.scheduled_at,
		    report_id = EXCLUDED.report_id
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		job.ID,
		job.JobType,
		job.Status,
		job.CreatedAt,
		job.UpdatedAt,
		job.ScheduledAt,
		job.ReportID,
	)
	if err != nil {
		log.Error("failed to save job",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()),
			slog.String("status", string(job.Status)))
		return MapError(err)
	}

	log.Debug("job saved",
		slog.String("job_id", job.ID.String()),
		slog.String("status", string(job.Status)))
	return nil
}

// GetByID implements store.JobStore.GetByID
// Returns store.ErrJobNotFound if the job does not exist.
func (s *PostgresJobStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, job_type, status, created_at, updated_at, scheduled_at, report_id
		FROM jobs
		WHERE id = $1
	`

	job, err := scanJob(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("job not found", slog.String("job_id", id.String()))
			return nil, store.ErrJobNotFound
		}
		log.Error("failed to get job by ID",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()))
		return nil, MapError(err)
	}

	return job, nil
}

// List implements store.JobStore.List
// It retrieves jobs matching the filter, newest first.
func (s *PostgresJobStore) List(ctx context.Context, filter store.JobFilter) ([]*domain.Job, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var sb strings.Builder
	sb.WriteString(`
		SELECT id, job_type, status, created_at, updated_at, scheduled_at, report_id
		FROM jobs
	`)

	var args []interface{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		sb.WriteString(" WHERE status = $1")
	}

	sb.WriteString(" ORDER BY created_at DESC, id DESC")

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		sb.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		log.Error("failed to list jobs", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	jobs := []*domain.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			log.Error("failed to scan job row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning job rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return jobs, nil
}

// ClaimNextEligible implements store.JobStore.ClaimNextEligible
// The claim is a single UPDATE over the oldest eligible queued row, selected
// with FOR UPDATE SKIP LOCKED so concurrent claimers never take the same job
// and never block each other. The status flip to running happens inside the
// same statement, so a claimed job is durably running before the caller
// sees it.
func (s *PostgresJobStore) ClaimNextEligible(ctx context.Context) (*domain.Job, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE jobs
		SET status = $1, updated_at = now()
		WHERE id = (
			SELECT id
			FROM jobs
			WHERE status = $2
			  AND (scheduled_at IS NULL OR scheduled_at <= now())
			ORDER BY created_at ASC, id ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, job_type, status, created_at, updated_at, scheduled_at, report_id
	`

	job, err := scanJob(s.db.QueryRowContext(ctx, query,
		domain.JobStatusRunning, domain.JobStatusQueued))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNoEligibleJobs
		}
		log.Error("failed to claim job", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	log.Debug("job claimed",
		slog.String("job_id", job.ID.String()),
		slog.String("job_type", string(job.JobType)))
	return job, nil
}

// ReclaimStalled implements store.JobStore.ReclaimStalled
// It resets running jobs last touched before the cutoff back to queued.
// With olderThan zero every running job is reclaimed, which is the startup
// recovery path.
func (s *PostgresJobStore) ReclaimStalled(ctx context.Context, olderThan time.Duration) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	cutoff := time.Now().UTC().Add(-olderThan)

	query := `
		UPDATE jobs
		SET status = $1, updated_at = now()
		WHERE status = $2 AND updated_at <= $3
	`

	result, err := s.db.ExecContext(ctx, query,
		domain.JobStatusQueued, domain.JobStatusRunning, cutoff)
	if err != nil {
		log.Error("failed to reclaim stalled jobs", slog.String("error", err.Error()))
		return 0, MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected > 0 {
		log.Info("reclaimed stalled jobs", slog.Int64("count", rowsAffected))
	}
	return int(rowsAffected), nil
}

// WithTx implements store.JobStore.WithTx
// It returns a new store instance bound to the given transaction.
func (s *PostgresJobStore) WithTx(tx *sql.Tx) store.JobStore {
	return &PostgresJobStore{
		db:     tx,
		logger: s.logger,
	}
}

// scanJob reads one job row in column order.
func scanJob(row rowScanner) (*domain.Job, error) {
	var job domain.Job
	var jobType, status string
	var scheduledAt sql.NullTime
	var reportID sql.Null[uuid.UUID]

	err := row.Scan(
		&job.ID,
		&jobType,
		&status,
		&job.CreatedAt,
		&job.UpdatedAt,
		&scheduledAt,
		&reportID,
	)
	if err != nil {
		return nil, err
	}

	job.JobType = domain.JobType(jobType)
	job.Status = domain.JobStatus(status)
	if scheduledAt.Valid {
		t := scheduledAt.Time
		job.ScheduledAt = &t
	}
	if reportID.Valid {
		id := reportID.V
		job.ReportID = &id
	}
	return &job, nil
}
