package engine

import (
	"errors"
	"testing"

	"github.com/jmorrow/taskforge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	t.Parallel()

	statuses := []domain.JobStatus{
		domain.JobStatusQueued,
		domain.JobStatusRunning,
		domain.JobStatusCompleted,
		domain.JobStatusFailed,
	}

	legal := map[domain.JobStatus]map[domain.JobStatus]bool{
		domain.JobStatusQueued:  {domain.JobStatusRunning: true},
		domain.JobStatusRunning: {domain.JobStatusCompleted: true, domain.JobStatusFailed: true},
		domain.JobStatusFailed:  {domain.JobStatusQueued: true},
	}

	// Exhaustively check every edge of the status graph: only the legal
	// edges may pass.
	for _, from := range statuses {
		for _, to := range statuses {
			want := legal[from][to]
			assert.Equal(t, want, CanTransition(from, to),
				"transition %s -> %s", from, to)
		}
	}
}

func TestTransition(t *testing.T) {
	t.Parallel()

	t.Run("legal transition returns updated copy", func(t *testing.T) {
		t.Parallel()

		job, err := domain.NewJob(domain.JobTypeMarkTasksCompleted, nil)
		require.NoError(t, err)

		running, err := Transition(*job, domain.JobStatusRunning)
		require.NoError(t, err)

		assert.Equal(t, domain.JobStatusRunning, running.Status)
		assert.Equal(t, domain.JobStatusQueued, job.Status, "input job must not be mutated")
	})

	t.Run("illegal transition returns ErrInvalidTransition", func(t *testing.T) {
		t.Parallel()

		job, err := domain.NewJob(domain.JobTypeMarkTasksCompleted, nil)
		require.NoError(t, err)

		_, err = Transition(*job, domain.JobStatusCompleted)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidTransition))
		assert.Contains(t, err.Error(), "queued -> completed")
	})

	t.Run("completed is terminal", func(t *testing.T) {
		t.Parallel()

		job, err := domain.NewJob(domain.JobTypeGenerateTaskList, nil)
		require.NoError(t, err)
		done := job.WithStatus(domain.JobStatusCompleted)

		for _, to := range []domain.JobStatus{
			domain.JobStatusQueued,
			domain.JobStatusRunning,
			domain.JobStatusFailed,
		} {
			_, err := Transition(done, to)
			assert.True(t, errors.Is(err, ErrInvalidTransition), "completed -> %s must be rejected", to)
		}
	})
}
