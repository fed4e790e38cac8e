package engine

import (
	"errors"
	"fmt"

	"github.com/jmorrow/taskforge/internal/domain"
)

// Error taxonomy for the job engine. The worker converts every per-job error
// into a state-machine transition or a skipped tick; none of these terminate
// the polling loop.
var (
	// ErrInvalidTransition is returned when a status change does not follow
	// a legal state-machine edge. It indicates a programming or
	// data-integrity fault: the job is left in its prior state for operator
	// inspection.
	ErrInvalidTransition = errors.New("invalid job status transition")

	// ErrConcurrentClaim is returned when another actor claimed or moved a
	// job between its selection and this worker's attempt to take
	// ownership. A benign race: the worker skips and waits for the next
	// tick.
	ErrConcurrentClaim = errors.New("job already claimed by another worker")

	// ErrUnknownJobType is returned when no executor is registered for a
	// job's type. It is treated as an executor failure and feeds the retry
	// path.
	ErrUnknownJobType = errors.New("unknown job type")

	// ErrDuplicateExecutor is returned when a second executor is registered
	// for the same job type. Registration-time rejection keeps dispatch
	// unambiguous.
	ErrDuplicateExecutor = errors.New("executor already registered for job type")

	// ErrStoreUnavailable is returned when the persistence collaborator
	// cannot be reached. The current tick aborts without mutating state and
	// the loop retries on the next interval.
	ErrStoreUnavailable = errors.New("job store unavailable")
)

// transitionError builds an ErrInvalidTransition carrying the offending edge.
func transitionError(from, to domain.JobStatus) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// unknownTypeError builds an ErrUnknownJobType naming the missing type so the
// message survives into RetryInfo.LastErrorMessage.
func unknownTypeError(jobType domain.JobType) error {
	return fmt.Errorf("%w: %q", ErrUnknownJobType, jobType)
}
