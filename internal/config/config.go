package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Worker   WorkerConfig   `mapstructure:"worker" validate:"required"`
	Retry    RetryConfig    `mapstructure:"retry" validate:"required"`
	Notifier NotifierConfig `mapstructure:"notifier"`
}

// ServerConfig contains all HTTP server related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// WorkerConfig controls the polling job worker.
type WorkerConfig struct {
	// PollIntervalSeconds is how often the worker attempts to claim a job.
	PollIntervalSeconds int `mapstructure:"poll_interval_seconds" validate:"required,gt=0"`

	// StalledJobAgeMinutes is how long a job may sit in the running status
	// before the stalled-job monitor reclaims it. Covers jobs orphaned by a
	// crash, since the engine runs exactly one job at a time.
	StalledJobAgeMinutes int `mapstructure:"stalled_job_age_minutes" validate:"required,gt=0"`

	// StalledCheckIntervalMinutes is how often the stalled-job monitor runs.
	StalledCheckIntervalMinutes int `mapstructure:"stalled_check_interval_minutes" validate:"required,gt=0"`
}

// RetryConfig controls failure bookkeeping and re-queue backoff.
type RetryConfig struct {
	// MaxRetries is how many times a failed job is re-queued before it is
	// left permanently failed.
	MaxRetries int `mapstructure:"max_retries" validate:"gte=0"`

	// BackoffBaseSeconds is the delay before the first retry; subsequent
	// retries double it.
	BackoffBaseSeconds int `mapstructure:"backoff_base_seconds" validate:"required,gt=0"`

	// BackoffCapSeconds bounds the computed delay.
	BackoffCapSeconds int `mapstructure:"backoff_cap_seconds" validate:"required,gt=0"`
}

// NotifierConfig controls the optional Redis job-status notifier. When
// disabled, status events fan out to in-process handlers only.
type NotifierConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// RedisURL is a redis connection URL (redis://host:port/db).
	RedisURL string `mapstructure:"redis_url" validate:"required_if=Enabled true"`
	// Channel is the pub/sub channel job-status events are published to.
	Channel string `mapstructure:"channel"`
}
