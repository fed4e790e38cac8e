package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmorrow/taskforge/internal/domain"
	"github.com/jmorrow/taskforge/internal/platform/logger"
	"github.com/jmorrow/taskforge/internal/store"
)

// PostgresReportStore implements the store.ReportStore interface
// using a PostgreSQL database as the storage backend.
type PostgresReportStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReportStore creates a new PostgreSQL implementation of the ReportStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresReportStore(db store.DBTX, logger *slog.Logger) *PostgresReportStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReportStore{
		db:     db,
		logger: logger.With(slog.String("component", "report_store")),
	}
}

// Ensure PostgresReportStore implements store.ReportStore interface
var _ store.ReportStore = (*PostgresReportStore)(nil)

// Create implements store.ReportStore.Create
// The reports table carries a unique constraint on job_id; a violation maps
// to store.ErrReportExists so callers see the one-report-per-job rule, not a
// driver error.
func (s *PostgresReportStore) Create(ctx context.Context, report *domain.Report) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := report.Validate(); err != nil {
		log.Warn("report validation failed during create",
			slog.String("error", err.Error()),
			slog.String("report_id", report.ID.String()))
		return err
	}

	query := `
		INSERT INTO reports (id, job_id, file_name, content, content_type, created_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		report.ID,
		report.JobID,
		report.FileName,
		report.Content,
		report.ContentType,
		report.CreatedAt,
		report.Status,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("job already owns a report",
				slog.String("report_id", report.ID.String()),
				slog.String("job_id", report.JobID.String()))
			return store.ErrReportExists
		}
		log.Error("failed to create report",
			slog.String("error", err.Error()),
			slog.String("report_id", report.ID.String()),
			slog.String("job_id", report.JobID.String()))
		return MapError(err)
	}

	log.Info("report created",
		slog.String("report_id", report.ID.String()),
		slog.String("job_id", report.JobID.String()),
		slog.String("file_name", report.FileName),
		slog.Int("size_bytes", len(report.Content)))
	return nil
}

// GetByID implements store.ReportStore.GetByID
// Returns store.ErrReportNotFound if the report does not exist.
func (s *PostgresReportStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, job_id, file_name, content, content_type, created_at, status
		FROM reports
		WHERE id = $1
	`

	report, err := scanReport(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("report not found", slog.String("report_id", id.String()))
			return nil, store.ErrReportNotFound
		}
		log.Error("failed to get report by ID",
			slog.String("error", err.Error()),
			slog.String("report_id", id.String()))
		return nil, MapError(err)
	}

	return report, nil
}

// GetByJobID implements store.ReportStore.GetByJobID
// Returns store.ErrReportNotFound if the job has no report.
func (s *PostgresReportStore) GetByJobID(ctx context.Context, jobID uuid.UUID) (*domain.Report, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, job_id, file_name, content, content_type, created_at, status
		FROM reports
		WHERE job_id = $1
	`

	report, err := scanReport(s.db.QueryRowContext(ctx, query, jobID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("no report for job", slog.String("job_id", jobID.String()))
			return nil, store.ErrReportNotFound
		}
		log.Error("failed to get report by job ID",
			slog.String("error", err.Error()),
			slog.String("job_id", jobID.String()))
		return nil, MapError(err)
	}

	return report, nil
}

// UpdateStatus implements store.ReportStore.UpdateStatus
// Returns store.ErrReportNotFound if the report does not exist.
func (s *PostgresReportStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReportStatus) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE reports
		SET status = $1
		WHERE id = $2
	`

	result, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		log.Error("failed to update report status",
			slog.String("error", err.Error()),
			slog.String("report_id", id.String()),
			slog.String("status", string(status)))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrReportNotFound); err != nil {
		log.Debug("report not found for status update", slog.String("report_id", id.String()))
		return err
	}

	log.Debug("report status updated",
		slog.String("report_id", id.String()),
		slog.String("status", string(status)))
	return nil
}

// WithTx implements store.ReportStore.WithTx
// It returns a new store instance bound to the given transaction.
func (s *PostgresReportStore) WithTx(tx *sql.Tx) store.ReportStore {
	return &PostgresReportStore{
		db:     tx,
		logger: s.logger,
	}
}

// scanReport reads one report row in column order.
func scanReport(row rowScanner) (*domain.Report, error) {
	var report domain.Report
	var status string

	err := row.Scan(
		&report.ID,
		&report.JobID,
		&report.FileName,
		&report.Content,
		&report.ContentType,
		&report.CreatedAt,
		&status,
	)
	if err != nil {
		return nil, err
	}

	report.Status = domain.ReportStatus(status)
	return &report, nil
}
