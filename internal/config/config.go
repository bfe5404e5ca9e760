// Package config provides configuration management for playsync using Viper.
// It supports configuration from files, environment variables, and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default configuration values.
const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 10
	defaultConnMaxIdleTime = 30 * time.Minute
	defaultBatchSize       = 2000
	defaultFetchTimeout    = 5 * time.Minute
	defaultRetryAttempts   = 0
	defaultRetryDelay      = 1 * time.Second
	defaultProgressPeriod  = 100 * time.Millisecond
	defaultSchedulerTick   = time.Minute
)

// Config holds all configuration for the application.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Sync      SyncConfig      `mapstructure:"sync"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite, postgres, mysql
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	LogLevel        string        `mapstructure:"log_level"` // silent, error, warn, info
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, text
	AddSource  bool   `mapstructure:"add_source"`
	TimeFormat string `mapstructure:"time_format"`
}

// SyncConfig holds playlist sync configuration.
type SyncConfig struct {
	// BatchSize is the number of completed items per persisted chunk.
	BatchSize int `mapstructure:"batch_size"`

	// FetchTimeout bounds a single playlist fetch attempt.
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`

	// ProxyURL is prepended to the playlist URL for the single fallback
	// fetch when the direct attempt fails. Empty disables the fallback.
	ProxyURL string `mapstructure:"proxy_url"`

	// RetryAttempts is the per-leg HTTP retry count. The proxy fallback is
	// the sync's single built-in retry, so this defaults to 0.
	RetryAttempts int `mapstructure:"retry_attempts"`

	// RetryDelay is the initial delay between HTTP retries, if enabled.
	RetryDelay time.Duration `mapstructure:"retry_delay"`

	// ProgressPeriod throttles progress callbacks during a parse pass.
	ProgressPeriod time.Duration `mapstructure:"progress_period"`
}

// SchedulerConfig holds cron scheduler configuration.
type SchedulerConfig struct {
	// Tick is how often playlist cron schedules are evaluated.
	Tick time.Duration `mapstructure:"tick"`
}

// Load reads configuration from file and environment variables.
// Environment variables take precedence over file configuration and are
// prefixed with PLAYSYNC_, using underscores for nesting.
// Example: PLAYSYNC_DATABASE_DSN=playsync.db.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/playsync")
		v.AddConfigPath("$HOME/.playsync")
	}

	v.SetEnvPrefix("PLAYSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Missing config file is fine; defaults and env vars apply.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// SetDefaults configures default values for all configuration options.
// Call before reading the config file so defaults are in place.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "playsync.db")
	v.SetDefault("database.max_open_conns", defaultMaxOpenConns)
	v.SetDefault("database.max_idle_conns", defaultMaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", defaultConnMaxIdleTime)
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	v.SetDefault("sync.batch_size", defaultBatchSize)
	v.SetDefault("sync.fetch_timeout", defaultFetchTimeout)
	v.SetDefault("sync.proxy_url", "")
	v.SetDefault("sync.retry_attempts", defaultRetryAttempts)
	v.SetDefault("sync.retry_delay", defaultRetryDelay)
	v.SetDefault("sync.progress_period", defaultProgressPeriod)

	v.SetDefault("scheduler.tick", defaultSchedulerTick)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	validDrivers := map[string]bool{"sqlite": true, "postgres": true, "mysql": true}
	if !validDrivers[c.Database.Driver] {
		return fmt.Errorf("database.driver must be one of: sqlite, postgres, mysql")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	if c.Sync.BatchSize < 1 {
		return fmt.Errorf("sync.batch_size must be at least 1")
	}
	if c.Sync.FetchTimeout <= 0 {
		return fmt.Errorf("sync.fetch_timeout must be positive")
	}
	if c.Sync.ProgressPeriod <= 0 {
		return fmt.Errorf("sync.progress_period must be positive")
	}
	if c.Scheduler.Tick <= 0 {
		return fmt.Errorf("scheduler.tick must be positive")
	}

	return nil
}
