package engine

import (
	"math"
	"time"
)

// BackoffStrategy computes the delay before a retry attempt.
type BackoffStrategy interface {
	// Delay returns how long to wait before retry attempt n (1-indexed).
	// Attempt 1 is the first retry after the initial failure.
	Delay(attempt int) time.Duration
}

// ExponentialBackoff doubles the delay on each attempt:
// Delay = min(Base * 2^(attempt-1), Cap).
type ExponentialBackoff struct {
	Base time.Duration
	Cap  time.Duration
}

// NewExponentialBackoff creates an exponential backoff strategy.
// A zero or negative cap means no cap.
func NewExponentialBackoff(base, cap time.Duration) *ExponentialBackoff {
	return &ExponentialBackoff{Base: base, Cap: cap}
}

// DefaultBackoff returns the documented default policy: base 10s, cap 10m.
func DefaultBackoff() *ExponentialBackoff {
	return NewExponentialBackoff(10*time.Second, 10*time.Minute)
}

// Delay returns Base * 2^(attempt-1), capped at Cap.
func (b *ExponentialBackoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	d := time.Duration(float64(b.Base) * math.Pow(2, float64(attempt-1)))
	if d < 0 {
		// float overflow wrapped negative; clamp to the cap.
		d = b.Cap
	}
	if b.Cap > 0 && d > b.Cap {
		return b.Cap
	}
	return d
}
