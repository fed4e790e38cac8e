package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExponentialBackoff_Delay(t *testing.T) {
	t.Parallel()

	backoff := NewExponentialBackoff(10*time.Second, 10*time.Minute)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 10 * time.Second},
		{2, 20 * time.Second},
		{3, 40 * time.Second},
		{4, 80 * time.Second},
		{6, 320 * time.Second},
		{7, 10 * time.Minute}, // 640s exceeds the cap
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, backoff.Delay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestExponentialBackoff_Cap(t *testing.T) {
	t.Parallel()

	backoff := NewExponentialBackoff(10*time.Second, time.Minute)

	assert.Equal(t, time.Minute, backoff.Delay(4), "80s must be capped to 60s")
	assert.Equal(t, time.Minute, backoff.Delay(50), "huge attempts stay capped")
}

func TestExponentialBackoff_EdgeCases(t *testing.T) {
	t.Parallel()

	backoff := DefaultBackoff()

	// Attempts below 1 are clamped to the first retry delay.
	assert.Equal(t, backoff.Base, backoff.Delay(0))
	assert.Equal(t, backoff.Base, backoff.Delay(-3))
}
