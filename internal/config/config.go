// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LockoutConfig holds the failed-login lockout policy.
type LockoutConfig struct {
	Threshold int           // consecutive failures before locking (default 5)
	Duration  time.Duration // how long a lock holds (default 15m)
}

// PasswordConfig holds the password policy.
type PasswordConfig struct {
	MinLength int // minimum password length (default 8)
}

// AuditConfig holds audit recorder settings.
type AuditConfig struct {
	Async      bool // buffer audit writes through a background worker
	BufferSize int  // async buffer capacity (default 256)
}

// Config holds the configuration for the directory engine and its HTTP API.
type Config struct {
	DBPath     string // path to the SQLite directory store (default "dirgate.sqlite")
	ListenAddr string // HTTP listen address (default ":8080")
	JWTSecret  string // HS256 secret for session tokens
	SessionTTL time.Duration // session token lifetime (default 8h)
	LogLevel   string // log level: debug, info, warn, error (default "info")
	Env        string // environment: "development" (default) or "production"

	Lockout  LockoutConfig
	Password PasswordConfig
	Audit    AuditConfig

	// Janitor sweeps
	JanitorSchedule string        // cron expression for background sweeps (default "@every 1m")
	StaleComputerAge time.Duration // online computers unseen this long go offline (default 1h)

	// Rate limiting
	RateLimitRPS   float64 // sustained requests per second (default 100)
	RateLimitBurst int     // burst capacity (default 200)

	// CORS
	CORSAllowedOrigins []string // allowed origins for CORS (default: ["*"])

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// LoadFromEnv loads configuration from environment variables, applies
// defaults, and enforces production hardening.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		DBPath:          os.Getenv("DB_PATH"),
		ListenAddr:      os.Getenv("LISTEN_ADDR"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		LogLevel:        os.Getenv("LOG_LEVEL"),
		Env:             os.Getenv("ENV"),
		JanitorSchedule: os.Getenv("JANITOR_SCHEDULE"),
	}

	if v := os.Getenv("SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SessionTTL = d
		}
	}
	if v := os.Getenv("LOCKOUT_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Lockout.Threshold = n
		}
	}
	if v := os.Getenv("LOCKOUT_DURATION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Lockout.Duration = d
		}
	}
	if v := os.Getenv("PASSWORD_MIN_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Password.MinLength = n
		}
	}
	cfg.Audit.Async = parseBoolEnvDefault("AUDIT_ASYNC", false)
	if v := os.Getenv("AUDIT_BUFFER_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Audit.BufferSize = n
		}
	}
	if v := os.Getenv("STALE_COMPUTER_AGE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.StaleComputerAge = d
		}
	}

	// Rate limiting
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitBurst = n
		}
	}

	// CORS
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = compactNonEmpty(origins)
	}

	cfg.applyDefaults()

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "insecure-dev-secret"
		cfg.Warnings = append(cfg.Warnings, "JWT_SECRET not set, using insecure default. Set JWT_SECRET in production!")
	}

	// Production mode: insecure defaults are fatal errors.
	if cfg.IsProduction() {
		if cfg.JWTSecret == "insecure-dev-secret" {
			return nil, fmt.Errorf("JWT_SECRET must be set in production (ENV=production)")
		}
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DBPath == "" {
		c.DBPath = "dirgate.sqlite"
	}
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = 8 * time.Hour
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Lockout.Threshold == 0 {
		c.Lockout.Threshold = 5
	}
	if c.Lockout.Duration == 0 {
		c.Lockout.Duration = 15 * time.Minute
	}
	if c.Password.MinLength == 0 {
		c.Password.MinLength = 8
	}
	if c.Audit.BufferSize == 0 {
		c.Audit.BufferSize = 256
	}
	if c.JanitorSchedule == "" {
		c.JanitorSchedule = "@every 1m"
	}
	if c.StaleComputerAge == 0 {
		c.StaleComputerAge = time.Hour
	}
	if c.RateLimitRPS == 0 {
		c.RateLimitRPS = 100
	}
	if c.RateLimitBurst == 0 {
		c.RateLimitBurst = 200
	}
	if len(c.CORSAllowedOrigins) == 0 {
		c.CORSAllowedOrigins = []string{"*"}
	}
}

func parseBoolEnvDefault(key string, defaultVal bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if v == "" {
		return defaultVal
	}
	if v == "0" || v == "false" || v == "no" || v == "off" {
		return false
	}
	if v == "1" || v == "true" || v == "yes" || v == "on" {
		return true
	}
	return defaultVal
}

func compactNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// fileConfig mirrors the YAML config file layout. Every field is optional;
// file values become environment-level defaults, so real environment
// variables always win.
type fileConfig struct {
	DBPath            string   `yaml:"db_path"`
	ListenAddr        string   `yaml:"listen_addr"`
	JWTSecret         string   `yaml:"jwt_secret"`
	SessionTTL        string   `yaml:"session_ttl"`
	LogLevel          string   `yaml:"log_level"`
	Env               string   `yaml:"env"`
	LockoutThreshold  int      `yaml:"lockout_threshold"`
	LockoutDuration   string   `yaml:"lockout_duration"`
	PasswordMinLength int      `yaml:"password_min_length"`
	AuditAsync        *bool    `yaml:"audit_async"`
	AuditBufferSize   int      `yaml:"audit_buffer_size"`
	JanitorSchedule   string   `yaml:"janitor_schedule"`
	StaleComputerAge  string   `yaml:"stale_computer_age"`
	RateLimitRPS      float64  `yaml:"rate_limit_rps"`
	RateLimitBurst    int      `yaml:"rate_limit_burst"`
	CORSOrigins       []string `yaml:"cors_allowed_origins"`
}

// LoadFile reads a YAML config file and exports its values into the
// environment for any variable not already set. A missing file is not an
// error, matching LoadDotEnv.
func LoadFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	set := func(key, value string) {
		if value != "" && os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
	set("DB_PATH", fc.DBPath)
	set("LISTEN_ADDR", fc.ListenAddr)
	set("JWT_SECRET", fc.JWTSecret)
	set("SESSION_TTL", fc.SessionTTL)
	set("LOG_LEVEL", fc.LogLevel)
	set("ENV", fc.Env)
	if fc.LockoutThreshold > 0 {
		set("LOCKOUT_THRESHOLD", strconv.Itoa(fc.LockoutThreshold))
	}
	set("LOCKOUT_DURATION", fc.LockoutDuration)
	if fc.PasswordMinLength > 0 {
		set("PASSWORD_MIN_LENGTH", strconv.Itoa(fc.PasswordMinLength))
	}
	if fc.AuditAsync != nil {
		set("AUDIT_ASYNC", strconv.FormatBool(*fc.AuditAsync))
	}
	if fc.AuditBufferSize > 0 {
		set("AUDIT_BUFFER_SIZE", strconv.Itoa(fc.AuditBufferSize))
	}
	set("JANITOR_SCHEDULE", fc.JanitorSchedule)
	set("STALE_COMPUTER_AGE", fc.StaleComputerAge)
	if fc.RateLimitRPS > 0 {
		set("RATE_LIMIT_RPS", strconv.FormatFloat(fc.RateLimitRPS, 'f', -1, 64))
	}
	if fc.RateLimitBurst > 0 {
		set("RATE_LIMIT_BURST", strconv.Itoa(fc.RateLimitBurst))
	}
	if len(fc.CORSOrigins) > 0 {
		set("CORS_ALLOWED_ORIGINS", strings.Join(fc.CORSOrigins, ","))
	}
	return nil
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = stripQuotes(value)
		// Only set if not already in the environment (env vars take precedence)
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
// Only strips if both the first and last characters are matching quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
