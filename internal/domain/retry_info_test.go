package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewRetryInfo(t *testing.T) {
	t.Parallel()

	jobID := uuid.New()
	info, err := NewRetryInfo(jobID, 3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if info.JobID != jobID {
		t.Errorf("Expected job ID %s, got %s", jobID, info.JobID)
	}

	if info.RetryCount != 0 {
		t.Errorf("Expected retry count 0, got %d", info.RetryCount)
	}

	if info.Exhausted() {
		t.Error("Expected fresh retry info not to be exhausted")
	}

	// Test nil job ID
	_, err = NewRetryInfo(uuid.Nil, 3)
	if err != ErrEmptyRetryJobID {
		t.Errorf("Expected error %v, got %v", ErrEmptyRetryJobID, err)
	}

	// Test negative max retries
	_, err = NewRetryInfo(jobID, -1)
	if err != ErrInvalidMaxRetries {
		t.Errorf("Expected error %v, got %v", ErrInvalidMaxRetries, err)
	}
}

func TestRetryInfoWithFailure(t *testing.T) {
	t.Parallel()

	info, err := NewRetryInfo(uuid.New(), 2)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	next := time.Now().UTC().Add(10 * time.Second)
	failed := info.WithFailure("connection refused", next)

	if failed.RetryCount != 1 {
		t.Errorf("Expected retry count 1, got %d", failed.RetryCount)
	}

	if failed.LastErrorMessage != "connection refused" {
		t.Errorf("Expected error message to be recorded, got %q", failed.LastErrorMessage)
	}

	if failed.NextRetryAt == nil || !failed.NextRetryAt.Equal(next) {
		t.Errorf("Expected next retry at %v, got %v", next, failed.NextRetryAt)
	}

	// The receiver must not be mutated
	if info.RetryCount != 0 {
		t.Errorf("Expected original retry count 0, got %d", info.RetryCount)
	}

	exhausted := failed.WithFailure("still failing", next.Add(20*time.Second))
	if !exhausted.Exhausted() {
		t.Errorf("Expected retry info to be exhausted at count %d of %d",
			exhausted.RetryCount, exhausted.MaxRetries)
	}
}

func TestRetryInfoWithError(t *testing.T) {
	t.Parallel()

	info, err := NewRetryInfo(uuid.New(), 1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	failed := info.WithFailure("first failure", time.Now().UTC())
	final := failed.WithError("permanent failure")

	if final.RetryCount != failed.RetryCount {
		t.Errorf("Expected retry count unchanged at %d, got %d", failed.RetryCount, final.RetryCount)
	}

	if final.LastErrorMessage != "permanent failure" {
		t.Errorf("Expected updated error message, got %q", final.LastErrorMessage)
	}

	if final.NextRetryAt != nil {
		t.Error("Expected no next retry time after permanent failure")
	}
}
