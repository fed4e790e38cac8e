package engine

import (
	"github.com/jmorrow/taskforge/internal/domain"
)

// legalTransitions is the complete set of edges a job status may move along.
//
//	queued  -> running            (exclusive claim)
//	running -> completed          (executor success)
//	running -> failed             (executor failure)
//	failed  -> queued             (retry eligible)
//
// Completed is terminal. Failed is terminal once retries are exhausted.
var legalTransitions = map[domain.JobStatus][]domain.JobStatus{
	domain.JobStatusQueued:  {domain.JobStatusRunning},
	domain.JobStatusRunning: {domain.JobStatusCompleted, domain.JobStatusFailed},
	domain.JobStatusFailed:  {domain.JobStatusQueued},
}

// CanTransition reports whether moving a job from one status to another
// follows a legal state-machine edge.
func CanTransition(from, to domain.JobStatus) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition returns a copy of the job moved to the given status, or
// ErrInvalidTransition if the edge is not legal. The input job is never
// modified; callers persist the returned copy.
func Transition(job domain.Job, to domain.JobStatus) (domain.Job, error) {
	if !CanTransition(job.Status, to) {
		return job, transitionError(job.Status, to)
	}
	return job.WithStatus(to), nil
}
