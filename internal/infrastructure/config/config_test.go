package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:      AppConfig{Name: "stockledger", Env: "development", Port: "8080"},
		Database: DatabaseConfig{Host: "localhost", Port: 5432, User: "postgres", DBName: "stockledger", SSLMode: "disable"},
		Log:      LogConfig{Level: "info", Format: "json", Output: "stdout"},
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("bad log level", func(t *testing.T) {
		cfg := validConfig()
		cfg.Log.Level = "verbose"
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad log format", func(t *testing.T) {
		cfg := validConfig()
		cfg.Log.Format = "xml"
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing database host", func(t *testing.T) {
		cfg := validConfig()
		cfg.Database.Host = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("database port out of range", func(t *testing.T) {
		cfg := validConfig()
		cfg.Database.Port = 70000
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing app port", func(t *testing.T) {
		cfg := validConfig()
		cfg.App.Port = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("sampling ratio out of range", func(t *testing.T) {
		cfg := validConfig()
		cfg.Telemetry.SamplingRatio = 1.5
		assert.Error(t, cfg.Validate())

		cfg.Telemetry.SamplingRatio = -0.1
		assert.Error(t, cfg.Validate())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	dsn := DatabaseConfig{
		Host: "db", Port: 5433, User: "app", Password: "secret",
		DBName: "ledger", SSLMode: "require",
	}.DSN()
	assert.Equal(t, "host=db port=5433 user=app password=secret dbname=ledger sslmode=require", dsn)
}

func TestRedisConfig(t *testing.T) {
	t.Run("addr", func(t *testing.T) {
		assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: 6380}.Addr())
	})

	t.Run("empty host disables the cache", func(t *testing.T) {
		assert.False(t, RedisConfig{}.Enabled())
		assert.True(t, RedisConfig{Host: "cache"}.Enabled())
	})
}

func TestAppConfig_IsProduction(t *testing.T) {
	assert.False(t, AppConfig{Env: "development"}.IsProduction())
	assert.True(t, AppConfig{Env: "production"}.IsProduction())
}

func TestLoad_Defaults(t *testing.T) {
	// No config.toml in the test working directory, so the built-in
	// defaults apply.
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "stockledger", cfg.App.Name)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 5*time.Minute, cfg.Redis.CacheTTL)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Event.Async)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.CollectorEndpoint)
	assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
	assert.True(t, cfg.Telemetry.Insecure)
}
