package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmorrow/taskforge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func TestRetryTracker_FirstFailure(t *testing.T) {
	t.Parallel()

	retries := NewMockRetryStore()
	tracker := NewRetryTracker(retries, NewExponentialBackoff(10*time.Second, time.Hour), 3, testLogger())

	jobID := uuid.New()
	now := time.Now().UTC()

	decision, err := tracker.RecordFailure(context.Background(), jobID, errors.New("boom"), now)
	require.NoError(t, err)

	assert.True(t, decision.Requeue)
	assert.Equal(t, 1, decision.Info.RetryCount)
	assert.Equal(t, "boom", decision.Info.LastErrorMessage)
	assert.Equal(t, now.Add(10*time.Second), decision.NextRetryAt)

	// Bookkeeping must be persisted.
	stored, err := retries.Get(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.RetryCount)
}

func TestRetryTracker_BackoffGrowsPerFailure(t *testing.T) {
	t.Parallel()

	retries := NewMockRetryStore()
	tracker := NewRetryTracker(retries, NewExponentialBackoff(10*time.Second, time.Hour), 3, testLogger())

	jobID := uuid.New()
	now := time.Now().UTC()
	cause := errors.New("flaky dependency")

	wantDelays := []time.Duration{10 * time.Second, 20 * time.Second, 40 * time.Second}
	for i, want := range wantDelays {
		decision, err := tracker.RecordFailure(context.Background(), jobID, cause, now)
		require.NoError(t, err)
		require.True(t, decision.Requeue, "failure %d should still be retryable", i+1)
		assert.Equal(t, i+1, decision.Info.RetryCount)
		assert.Equal(t, now.Add(want), decision.NextRetryAt)
	}
}

func TestRetryTracker_ExhaustedRetries(t *testing.T) {
	t.Parallel()

	retries := NewMockRetryStore()
	tracker := NewRetryTracker(retries, DefaultBackoff(), 1, testLogger())

	jobID := uuid.New()
	now := time.Now().UTC()

	first, err := tracker.RecordFailure(context.Background(), jobID, errors.New("first"), now)
	require.NoError(t, err)
	require.True(t, first.Requeue)
	require.Equal(t, 1, first.Info.RetryCount)

	// Retry budget is spent: the next failure is permanent and the count
	// does not grow past the maximum.
	second, err := tracker.RecordFailure(context.Background(), jobID, errors.New("second"), now)
	require.NoError(t, err)
	assert.False(t, second.Requeue)
	assert.Equal(t, 1, second.Info.RetryCount)
	assert.Equal(t, "second", second.Info.LastErrorMessage)
	assert.Nil(t, second.Info.NextRetryAt)
}

func TestRetryTracker_ZeroMaxRetries(t *testing.T) {
	t.Parallel()

	retries := NewMockRetryStore()
	tracker := NewRetryTracker(retries, DefaultBackoff(), 0, testLogger())

	decision, err := tracker.RecordFailure(context.Background(), uuid.New(), errors.New("boom"), time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, decision.Requeue, "zero max retries means every failure is permanent")
}

func TestRetryTracker_StoreFailurePropagates(t *testing.T) {
	t.Parallel()

	retries := NewMockRetryStore()
	retries.UpsertFn = func(_ context.Context, _ *domain.RetryInfo) error {
		return errors.New("connection reset")
	}
	tracker := NewRetryTracker(retries, DefaultBackoff(), 3, testLogger())

	_, err := tracker.RecordFailure(context.Background(), uuid.New(), errors.New("boom"), time.Now().UTC())
	assert.Error(t, err)
}
