package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for RetryInfo
var (
	ErrEmptyRetryJobID    = errors.New("retry info job ID cannot be empty")
	ErrInvalidMaxRetries  = errors.New("max retries must be non-negative")
	ErrInvalidRetryCount  = errors.New("retry count cannot exceed max retries")
	ErrNegativeRetryCount = errors.New("retry count cannot be negative")
)

// RetryInfo tracks failure bookkeeping for a single job. It is created on the
// job's first failure and updated on each subsequent failure. The worker
// consults it to decide between re-queueing and permanent failure.
type RetryInfo struct {
	JobID            uuid.UUID  `json:"job_id"`
	RetryCount       int        `json:"retry_count"`
	MaxRetries       int        `json:"max_retries"`
	NextRetryAt      *time.Time `json:"next_retry_at,omitempty"`
	LastErrorMessage string     `json:"last_error_message"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NewRetryInfo creates a RetryInfo for the given job with a zero retry count.
// Returns an error if validation fails.
func NewRetryInfo(jobID uuid.UUID, maxRetries int) (*RetryInfo, error) {
	info := &RetryInfo{
		JobID:      jobID,
		RetryCount: 0,
		MaxRetries: maxRetries,
		UpdatedAt:  time.Now().UTC(),
	}

	if err := info.Validate(); err != nil {
		return nil, err
	}

	return info, nil
}

// Validate checks if the RetryInfo has valid data.
// Returns an error if any field fails validation.
func (r *RetryInfo) Validate() error {
	if r.JobID == uuid.Nil {
		return ErrEmptyRetryJobID
	}

	if r.MaxRetries < 0 {
		return ErrInvalidMaxRetries
	}

	if r.RetryCount < 0 {
		return ErrNegativeRetryCount
	}

	if r.RetryCount > r.MaxRetries {
		return ErrInvalidRetryCount
	}

	return nil
}

// Exhausted reports whether the job has used up all of its retries.
func (r *RetryInfo) Exhausted() bool {
	return r.RetryCount >= r.MaxRetries
}

// WithFailure returns a copy recording one more retryable failure: the retry
// count is incremented, the error message replaced, and the next retry time
// set. The receiver is not modified.
func (r RetryInfo) WithFailure(errorMessage string, nextRetryAt time.Time) RetryInfo {
	r.RetryCount++
	r.LastErrorMessage = errorMessage
	t := nextRetryAt
	r.NextRetryAt = &t
	r.UpdatedAt = time.Now().UTC()
	return r
}

// WithError returns a copy with only the error message updated. Used when
// retries are exhausted and the failure is recorded without scheduling another
// attempt.
func (r RetryInfo) WithError(errorMessage string) RetryInfo {
	r.LastErrorMessage = errorMessage
	r.NextRetryAt = nil
	r.UpdatedAt = time.Now().UTC()
	return r
}
