// Package redisnotify publishes job-status events to a Redis pub/sub channel
// so external consumers (e.g. a presentation layer pushing live updates) can
// follow job progress without polling the API.
package redisnotify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jmorrow/taskforge/internal/events"
	"github.com/redis/go-redis/v9"
)

// Notifier implements events.Handler by publishing each event as JSON to a
// fixed channel. Publish failures are reported to the emitter but never
// interrupt job processing.
type Notifier struct {
	rdb     *redis.Client
	channel string
	logger  *slog.Logger
}

// New creates a Notifier from a redis connection URL and channel name.
// The connection is verified with a ping so misconfiguration fails at
// startup instead of on the first job transition.
func New(ctx context.Context, redisURL, channel string, logger *slog.Logger) (*Notifier, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Notifier{
		rdb:     rdb,
		channel: channel,
		logger:  logger.With("component", "redis_notifier"),
	}, nil
}

// HandleEvent publishes the event to the configured channel.
func (n *Notifier) HandleEvent(ctx context.Context, event *events.JobStatusEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal job status event: %w", err)
	}

	if err := n.rdb.Publish(ctx, n.channel, payload).Err(); err != nil {
		n.logger.Error("failed to publish job status event",
			"event_id", event.ID,
			"job_id", event.JobID,
			"channel", n.channel,
			"error", err)
		return fmt.Errorf("failed to publish job status event: %w", err)
	}

	n.logger.Debug("published job status event",
		"event_id", event.ID,
		"job_id", event.JobID,
		"to", event.To,
		"channel", n.channel)
	return nil
}

// Close releases the underlying redis connection.
func (n *Notifier) Close() error {
	return n.rdb.Close()
}

// Ensure Notifier implements events.Handler
var _ events.Handler = (*Notifier)(nil)
