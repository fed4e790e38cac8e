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

// PostgresRetryStore implements the store.RetryStore interface
// using a PostgreSQL database as the storage backend.
type PostgresRetryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRetryStore creates a new PostgreSQL implementation of the RetryStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresRetryStore(db store.DBTX, logger *slog.Logger) *PostgresRetryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresRetryStore{
		db:     db,
		logger: logger.With(slog.String("component", "retry_store")),
	}
}

// Ensure PostgresRetryStore implements store.RetryStore interface
var _ store.RetryStore = (*PostgresRetryStore)(nil)

// Get implements store.RetryStore.Get
// Returns store.ErrRetryInfoNotFound if the job has never failed.
func (s *PostgresRetryStore) Get(ctx context.Context, jobID uuid.UUID) (*domain.RetryInfo, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT job_id, retry_count, max_retries, next_retry_at, last_error_message, updated_at
		FROM job_retries
		WHERE job_id = $1
	`

	var info domain.RetryInfo
	var nextRetryAt sql.NullTime

	err := s.db.QueryRowContext(ctx, query, jobID).Scan(
		&info.JobID,
		&info.RetryCount,
		&info.MaxRetries,
		&nextRetryAt,
		&info.LastErrorMessage,
		&info.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrRetryInfoNotFound
		}
		log.Error("failed to get retry info",
			slog.String("error", err.Error()),
			slog.String("job_id", jobID.String()))
		return nil, MapError(err)
	}

	if nextRetryAt.Valid {
		t := nextRetryAt.Time
		info.NextRetryAt = &t
	}
	return &info, nil
}

// Upsert implements store.RetryStore.Upsert
// It creates or replaces the retry record for the job in a single statement.
func (s *PostgresRetryStore) Upsert(ctx context.Context, info *domain.RetryInfo) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := info.Validate(); err != nil {
		log.Warn("retry info validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("job_id", info.JobID.String()))
		return err
	}

	query := `
		INSERT INTO job_retries (job_id, retry_count, max_retries, next_retry_at, last_error_message, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (job_id) DO UPDATE
		SET retry_count = EXCLUDED.retry_count,
		    max_retries = EXCLUDED.max_retries,
		    next_retry_at = EXCLUDED.next_retry_at,
		    last_error_message = EXCLUDED.last_error_message,
		    updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		info.JobID,
		info.RetryCount,
		info.MaxRetries,
		info.NextRetryAt,
		info.LastErrorMessage,
		info.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to upsert retry info",
			slog.String("error", err.Error()),
			slog.String("job_id", info.JobID.String()))
		return MapError(err)
	}

	log.Debug("retry info saved",
		slog.String("job_id", info.JobID.String()),
		slog.Int("retry_count", info.RetryCount))
	return nil
}

// WithTx implements store.RetryStore.WithTx
// It returns a new store instance bound to the given transaction.
func (s *PostgresRetryStore) WithTx(tx *sql.Tx) store.RetryStore {
	return &PostgresRetryStore{
		db:     tx,
		logger: s.logger,
	}
}
