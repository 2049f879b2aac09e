// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Reconcile ReconcileConfig
	Rate      RateLimitConfig
	Security  SecurityConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout covers reading the whole multipart upload (default: 60s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"60s"`

	// WriteTimeout is the maximum duration for writing a response (default: 0, unlimited)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 5m)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"5m"`
}

// DatabaseConfig holds the optional PostgreSQL master source.
// When URL is empty the master schedule must be uploaded as a file.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MasterQuery selects the master schedule (default: core.DefaultMasterQuery)
	MasterQuery string `env:"DB_MASTER_QUERY" default:"SELECT * FROM broadcast_schedule ORDER BY row_number"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// Enabled reports whether a database is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// ReconcileConfig holds run settings.
type ReconcileConfig struct {
	// MaxFileSize caps each uploaded file in bytes (default: 50MB)
	MaxFileSize int64 `env:"RECONCILE_MAX_FILE_SIZE" default:"52428800"`

	// MaxConcurrent is the number of runs executing at once (default: 4)
	MaxConcurrent int `env:"RECONCILE_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long a run waits for a slot (default: 30s)
	MaxWaitTime time.Duration `env:"RECONCILE_MAX_WAIT_TIME" default:"30s"`

	// Timeout bounds a single run (default: 2m)
	Timeout time.Duration `env:"RECONCILE_TIMEOUT" default:"2m"`

	// ResultTTL is how long finished runs stay retrievable (default: 1h)
	ResultTTL time.Duration `env:"RECONCILE_RESULT_TTL" default:"1h"`

	// MasterSheet names the workbook sheet holding the schedule; empty means the first sheet
	MasterSheet string `env:"RECONCILE_MASTER_SHEET"`

	// ExcludedColumns are flat-export columns dropped before merging
	ExcludedColumns []string `env:"RECONCILE_EXCLUDED_COLUMNS" default:"competitionId,Day,launchPeriod,rightsId,Source"`

	// DayFirst reads ambiguous dates like 08/11/2025 as day/month (default: true)
	DayFirst bool `env:"RECONCILE_DAY_FIRST" default:"true"`

	// DuplicateScope is "all" or "master" (default: master)
	DuplicateScope string `env:"RECONCILE_DUPLICATE_SCOPE" default:"master"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// RunLimit is requests per minute for the reconcile endpoint (default: 10)
	RunLimit int `env:"RATE_LIMIT_RUN" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
