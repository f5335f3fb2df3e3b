// Package config provides configuration defaults and utilities
// for the rocket application.
//
// This package defines all configurable constants with documented defaults.
// Users can override these values via config.yaml, flags or environment variables.
package config

import "time"

// =============================================================================
// Network Defaults
// =============================================================================

const (
	// DefaultListenAddress is the default HTTP listen address.
	// Override via config: listen
	DefaultListenAddress = "0.0.0.0:8000"

	// DefaultReadTimeout bounds reading a full request.
	// Override via config: http.read_timeout
	DefaultReadTimeout = 15 * time.Second

	// DefaultWriteTimeout bounds writing a response.
	// Override via config: http.write_timeout
	DefaultWriteTimeout = 15 * time.Second

	// DefaultShutdownTimeout is how long in-flight requests get on shutdown.
	// Override via config: http.shutdown_timeout
	DefaultShutdownTimeout = 10 * time.Second

	// DefaultCompress enables gzip responses.
	// Override via config: http.compress
	DefaultCompress = true
)

// =============================================================================
// CORS Defaults
// =============================================================================

// DefaultAllowedOrigins allows every origin.
// Override via config: cors.allowed_origins
var DefaultAllowedOrigins = []string{"*"}

// DefaultAllowedMethods lists the methods accepted from cross-origin callers.
// Override via config: cors.allowed_methods
var DefaultAllowedMethods = []string{"GET", "POST", "DELETE"}

// DefaultAllowCredentials permits cookies and auth headers cross-origin.
// Override via config: cors.allow_credentials
const DefaultAllowCredentials = true

// =============================================================================
// Store Defaults
// =============================================================================

const (
	// DefaultStoreDriver is the database/sql driver.
	// Override via config: store.driver, flag -driver
	DefaultStoreDriver = "duckdb"

	// DefaultStoreDSN is the database file.
	// Override via config: store.dsn, flag -dsn, env ROCKET_DSN
	DefaultStoreDSN = "rocket.db"

	// DefaultMaxOpenConns is the connection pool size.
	// Override via config: store.max_open_conns
	DefaultMaxOpenConns = 25

	// DefaultMaxIdleConns is the number of idle connections kept.
	// Override via config: store.max_idle_conns
	DefaultMaxIdleConns = 5

	// DefaultConnMaxLifetime recycles pooled connections.
	// Override via config: store.conn_max_lifetime
	DefaultConnMaxLifetime = 5 * time.Minute

	// DefaultPingTimeout bounds the startup connectivity check.
	// Override via config: store.ping_timeout
	DefaultPingTimeout = 5 * time.Second
)

// =============================================================================
// Export Defaults
// =============================================================================

const (
	// DefaultExportCompression is the parquet codec for /export.
	// One of: none, snappy, gzip, zstd, lz4.
	// Override via config: export.compression
	DefaultExportCompression = "zstd"
)

// =============================================================================
// Stats Defaults
// =============================================================================

const (
	// DefaultStatsAccuracy is the relative accuracy of latency percentiles.
	// Override via config: stats.accuracy
	DefaultStatsAccuracy = 0.01
)

// =============================================================================
// Logging Defaults
// =============================================================================

const (
	// DefaultLogLevel is one of debug, info, warn, error.
	// Override via config: log.level, flag -log-level
	DefaultLogLevel = "info"

	// DefaultLogFormat is text or json.
	// Override via config: log.format, flag -log-json
	DefaultLogFormat = "text"
)
