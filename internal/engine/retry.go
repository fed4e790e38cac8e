package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmorrow/taskforge/internal/domain"
	"github.com/jmorrow/taskforge/internal/store"
)

// RetryDecision is the outcome of recording a job failure.
type RetryDecision struct {
	// Requeue is true when the job should return to the queue.
	Requeue bool

	// NextRetryAt is when the re-queued job becomes eligible again.
	// Only meaningful when Requeue is true.
	NextRetryAt time.Time

	// Info is the persisted retry record after the failure was recorded.
	Info domain.RetryInfo
}

// RetryTracker records failure causes and retry counters per job and decides
// whether a failed job is eligible for re-queue. Delays between attempts
// follow the configured backoff strategy.
type RetryTracker struct {
	retries    store.RetryStore
	backoff    BackoffStrategy
	maxRetries int
	logger     *slog.Logger
}

// NewRetryTracker creates a RetryTracker. maxRetries is how many re-queues a
// job gets before a failure becomes permanent.
func NewRetryTracker(retries store.RetryStore, backoff BackoffStrategy, maxRetries int, logger *slog.Logger) *RetryTracker {
	return &RetryTracker{
		retries:    retries,
		backoff:    backoff,
		maxRetries: maxRetries,
		logger:     logger.With("component", "retry_tracker"),
	}
}

// RecordFailure updates the job's retry bookkeeping for one failure and
// decides between re-queue and permanent failure. The retry record is
// created on the first failure. On a retryable failure the count is
// incremented by exactly one and the next retry time computed from the
// backoff strategy; once the count has reached the maximum, the failure is
// recorded without scheduling another attempt.
func (t *RetryTracker) RecordFailure(ctx context.Context, jobID uuid.UUID, cause error, now time.Time) (RetryDecision, error) {
	info, err := t.retries.Get(ctx, jobID)
	if err != nil {
		if !errors.Is(err, store.ErrRetryInfoNotFound) {
			return RetryDecision{}, fmt.Errorf("failed to load retry info: %w", err)
		}
		info, err = domain.NewRetryInfo(jobID, t.maxRetries)
		if err != nil {
			return RetryDecision{}, fmt.Errorf("failed to create retry info: %w", err)
		}
	}

	message := cause.Error()

	if info.Exhausted() {
		final := info.WithError(message)
		if err := t.retries.Upsert(ctx, &final); err != nil {
			return RetryDecision{}, fmt.Errorf("failed to record permanent failure: %w", err)
		}

		t.logger.Info("retries exhausted, job permanently failed",
			"job_id", jobID,
			"retry_count", final.RetryCount,
			"max_retries", final.MaxRetries,
			"error", message)
		return RetryDecision{Requeue: false, Info: final}, nil
	}

	attempt := info.RetryCount + 1
	nextRetryAt := now.Add(t.backoff.Delay(attempt))

	updated := info.WithFailure(message, nextRetryAt)
	if err := t.retries.Upsert(ctx, &updated); err != nil {
		return RetryDecision{}, fmt.Errorf("failed to record failure: %w", err)
	}

	t.logger.Info("job failure recorded, re-queue scheduled",
		"job_id", jobID,
		"retry_count", updated.RetryCount,
		"max_retries", updated.MaxRetries,
		"next_retry_at", nextRetryAt,
		"error", message)
	return RetryDecision{Requeue: true, NextRetryAt: nextRetryAt, Info: updated}, nil
}
