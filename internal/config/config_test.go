package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "playsync.db", cfg.Database.DSN)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 2000, cfg.Sync.BatchSize)
	assert.Equal(t, 5*time.Minute, cfg.Sync.FetchTimeout)
	assert.Equal(t, 0, cfg.Sync.RetryAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.Sync.ProgressPeriod)
	assert.Empty(t, cfg.Sync.ProxyURL)
	assert.Equal(t, time.Minute, cfg.Scheduler.Tick)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
database:
  driver: sqlite
  dsn: /tmp/custom.db
logging:
  level: debug
  format: text
sync:
  batch_size: 500
  fetch_timeout: 30s
  proxy_url: http://proxy.example.com/fetch?url=
scheduler:
  tick: 5m
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/custom.db", cfg.Database.DSN)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, 500, cfg.Sync.BatchSize)
	assert.Equal(t, 30*time.Second, cfg.Sync.FetchTimeout)
	assert.Equal(t, "http://proxy.example.com/fetch?url=", cfg.Sync.ProxyURL)
	assert.Equal(t, 5*time.Minute, cfg.Scheduler.Tick)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PLAYSYNC_DATABASE_DSN", "/tmp/env.db")
	t.Setenv("PLAYSYNC_LOGGING_LEVEL", "error")
	t.Setenv("PLAYSYNC_SYNC_BATCH_SIZE", "100")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/env.db", cfg.Database.DSN)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, 100, cfg.Sync.BatchSize)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o644))

	t.Setenv("PLAYSYNC_LOGGING_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadMissingFileIsError(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database: DatabaseConfig{Driver: "sqlite", DSN: "test.db"},
			Logging:  LoggingConfig{Level: "info", Format: "json"},
			Sync: SyncConfig{
				BatchSize:      2000,
				FetchTimeout:   time.Minute,
				ProgressPeriod: 100 * time.Millisecond,
			},
			Scheduler: SchedulerConfig{Tick: time.Minute},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"postgres driver", func(c *Config) { c.Database.Driver = "postgres" }, false},
		{"mysql driver", func(c *Config) { c.Database.Driver = "mysql" }, false},
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }, true},
		{"empty dsn", func(c *Config) { c.Database.DSN = "" }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"zero batch size", func(c *Config) { c.Sync.BatchSize = 0 }, true},
		{"zero fetch timeout", func(c *Config) { c.Sync.FetchTimeout = 0 }, true},
		{"zero progress period", func(c *Config) { c.Sync.ProgressPeriod = 0 }, true},
		{"zero scheduler tick", func(c *Config) { c.Scheduler.Tick = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
