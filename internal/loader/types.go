// Package loader - Configuration Types
//
// Defines the YAML configuration structure for rocketd.
//
//	listen:  HTTP listen address
//	log:     level and output format
//	http:    server timeouts
//	cors:    cross-origin policy
//	store:   message collection (DuckDB or SQLite)
//	export:  parquet export settings
//	stats:   latency percentile accuracy
package loader

import (
	"time"

	"github.com/KhaledSharif/rocket/config"
)

// =============================================================================
// Root Configuration
// =============================================================================

// Config is the root configuration structure.
type Config struct {
	// Listen is the HTTP listen address.
	// Default: "0.0.0.0:8000"
	Listen string `yaml:"listen"`

	Log    LogConfig    `yaml:"log"`
	HTTP   HTTPConfig   `yaml:"http"`
	CORS   CORSConfig   `yaml:"cors"`
	Store  StoreConfig  `yaml:"store"`
	Export ExportConfig `yaml:"export"`
	Stats  StatsConfig  `yaml:"stats"`
}

// =============================================================================
// Sections
// =============================================================================

// LogConfig configures the global logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`
}

// JSON reports whether logs are written as JSON.
func (c LogConfig) JSON() bool {
	return c.Format == "json"
}

// HTTPConfig holds server timeouts.
type HTTPConfig struct {
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`

	// Compress gzips responses for clients that accept it.
	Compress bool `yaml:"compress"`
}

// CORSConfig is the cross-origin policy applied to every route.
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowCredentials bool     `yaml:"allow_credentials"`
}

// StoreConfig configures the message collection.
type StoreConfig struct {
	// Driver is "duckdb" or "sqlite".
	Driver string `yaml:"driver"`

	// DSN is the database location. ROCKET_DSN overrides it.
	DSN string `yaml:"dsn"`

	MaxOpenConns    int      `yaml:"max_open_conns"`
	MaxIdleConns    int      `yaml:"max_idle_conns"`
	ConnMaxLifetime Duration `yaml:"conn_max_lifetime"`
	PingTimeout     Duration `yaml:"ping_timeout"`
}

// ExportConfig configures parquet exports.
type ExportConfig struct {
	// Compression is one of none, snappy, gzip, zstd, lz4.
	Compression string `yaml:"compression"`
}

// StatsConfig configures latency tracking.
type StatsConfig struct {
	// Accuracy is the relative accuracy of the percentile sketches, in (0, 1).
	Accuracy float64 `yaml:"accuracy"`
}

// =============================================================================
// Defaults
// =============================================================================

// DefaultConfig returns a configuration with all defaults applied.
func DefaultConfig() *Config {
	return &Config{
		Listen: config.DefaultListenAddress,

		Log: LogConfig{
			Level:  config.DefaultLogLevel,
			Format: config.DefaultLogFormat,
		},

		HTTP: HTTPConfig{
			ReadTimeout:     Duration(config.DefaultReadTimeout),
			WriteTimeout:    Duration(config.DefaultWriteTimeout),
			ShutdownTimeout: Duration(config.DefaultShutdownTimeout),
			Compress:        config.DefaultCompress,
		},

		CORS: CORSConfig{
			AllowedOrigins:   append([]string(nil), config.DefaultAllowedOrigins...),
			AllowedMethods:   append([]string(nil), config.DefaultAllowedMethods...),
			AllowCredentials: config.DefaultAllowCredentials,
		},

		Store: StoreConfig{
			Driver:          config.DefaultStoreDriver,
			DSN:             config.DefaultStoreDSN,
			MaxOpenConns:    config.DefaultMaxOpenConns,
			MaxIdleConns:    config.DefaultMaxIdleConns,
			ConnMaxLifetime: Duration(config.DefaultConnMaxLifetime),
			PingTimeout:     Duration(config.DefaultPingTimeout),
		},

		Export: ExportConfig{
			Compression: config.DefaultExportCompression,
		},

		Stats: StatsConfig{
			Accuracy: config.DefaultStatsAccuracy,
		},
	}
}

// =============================================================================
// Custom Types
// =============================================================================

// Duration is a time.Duration that can be unmarshaled from YAML.
// Supports "5m", "15s" or a plain integer number of seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	// yaml decodes an integer node into a string too, so try seconds first.
	var i int
	if err := unmarshal(&i); err == nil {
		*d = Duration(time.Duration(i) * time.Second)
		return nil
	}
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
