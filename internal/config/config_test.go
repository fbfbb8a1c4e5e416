package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "dirgate.sqlite", cfg.DBPath)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 8*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5, cfg.Lockout.Threshold)
	assert.Equal(t, 15*time.Minute, cfg.Lockout.Duration)
	assert.Equal(t, 8, cfg.Password.MinLength)
	assert.False(t, cfg.Audit.Async)
	assert.Equal(t, "@every 1m", cfg.JanitorSchedule)
	assert.Equal(t, time.Hour, cfg.StaleComputerAge)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.NotEmpty(t, cfg.Warnings, "missing JWT_SECRET must warn")
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("LOCKOUT_THRESHOLD", "3")
	t.Setenv("LOCKOUT_DURATION", "30m")
	t.Setenv("PASSWORD_MIN_LENGTH", "12")
	t.Setenv("AUDIT_ASYNC", "true")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Lockout.Threshold)
	assert.Equal(t, 30*time.Minute, cfg.Lockout.Duration)
	assert.Equal(t, 12, cfg.Password.MinLength)
	assert.True(t, cfg.Audit.Async)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadFromEnv_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://intranet.example.com")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadFromEnv_ProductionRejectsCORSWildcard(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "real-secret")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CORS")
}

func TestSlogLevel(t *testing.T) {
	cfg := &Config{LogLevel: "debug"}
	assert.Equal(t, "DEBUG", cfg.SlogLevel().String())
	cfg.LogLevel = "warn"
	assert.Equal(t, "WARN", cfg.SlogLevel().String())
	cfg.LogLevel = "bogus"
	assert.Equal(t, "INFO", cfg.SlogLevel().String())
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nLOCKOUT_THRESHOLD=7\nLOG_LEVEL=\"error\"\n\nINVALID LINE\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("LOCKOUT_THRESHOLD", "")
	t.Setenv("LOG_LEVEL", "")
	os.Unsetenv("LOCKOUT_THRESHOLD")
	os.Unsetenv("LOG_LEVEL")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "7", os.Getenv("LOCKOUT_THRESHOLD"))
	assert.Equal(t, "error", os.Getenv("LOG_LEVEL"))
}

func TestLoadDotEnv_Missing(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
}

func TestLoadFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dirgate.yaml")
	content := "lockout_threshold: 4\nlog_level: warn\ncors_allowed_origins:\n  - https://a.example.com\n  - https://b.example.com\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("LOCKOUT_THRESHOLD", "")
	os.Unsetenv("LOCKOUT_THRESHOLD")
	t.Setenv("LOG_LEVEL", "debug") // env wins over file

	require.NoError(t, LoadFile(path))
	assert.Equal(t, "4", os.Getenv("LOCKOUT_THRESHOLD"))
	assert.Equal(t, "debug", os.Getenv("LOG_LEVEL"))
	assert.Equal(t, "https://a.example.com,https://b.example.com", os.Getenv("CORS_ALLOWED_ORIGINS"))
}
