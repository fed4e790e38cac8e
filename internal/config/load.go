package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from an optional config.yaml and from environment
// variables with the TASKFORGE_ prefix (environment wins). Nested keys are
// addressed with underscores, e.g. TASKFORGE_SERVER_PORT or
// TASKFORGE_DATABASE_URL.
// Returns a populated, validated Config or an error.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TASKFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; environment variables and
		// defaults cover everything. Any other read error is fatal.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers the documented defaults for every setting that has one.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	// Registering the key (even with an empty value) is what lets
	// AutomaticEnv see TASKFORGE_DATABASE_URL during Unmarshal.
	v.SetDefault("database.url", "")

	v.SetDefault("worker.poll_interval_seconds", 10)
	v.SetDefault("worker.stalled_job_age_minutes", 30)
	v.SetDefault("worker.stalled_check_interval_minutes", 5)

	v.SetDefault("retry.max_retries", 3)
	v.SetDefault("retry.backoff_base_seconds", 10)
	v.SetDefault("retry.backoff_cap_seconds", 600)

	v.SetDefault("notifier.enabled", false)
	v.SetDefault("notifier.redis_url", "")
	v.SetDefault("notifier.channel", "taskforge:job-status")
}
