// Package loader handles configuration file loading and validation.
//
// This package is responsible for:
//   - Loading YAML configuration files
//   - Expanding environment variables
//   - Applying environment overrides
//   - Converting between YAML and internal representations
package loader

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/KhaledSharif/rocket/internal/errors"
	"github.com/KhaledSharif/rocket/internal/export"
	"github.com/KhaledSharif/rocket/internal/logging"
	"github.com/KhaledSharif/rocket/internal/store"
)

// EnvDSN overrides store.dsn when set.
const EnvDSN = "ROCKET_DSN"

// =============================================================================
// Load
// =============================================================================

// Load loads configuration from a YAML file. An empty path yields the
// defaults. Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := Parse(data, cfg); err != nil {
			return nil, err
		}
	}

	ApplyEnv(cfg)
	return cfg, nil
}

// Parse expands environment variables in data and decodes it over cfg.
func Parse(data []byte, cfg *Config) error {
	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// ApplyEnv applies environment variable overrides.
func ApplyEnv(cfg *Config) {
	if dsn, ok := os.LookupEnv(EnvDSN); ok {
		cfg.Store.DSN = dsn
	}
}

// =============================================================================
// Validate
// =============================================================================

// Validate validates the configuration.
func Validate(cfg *Config) error {
	errs := errors.NewValidationErrors()

	if cfg.Listen == "" {
		errs.AddField("listen", "cannot be empty")
	}

	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		errs.AddField("log.level", err.Error())
	}
	switch cfg.Log.Format {
	case "", "text", "json":
	default:
		errs.AddField("log.format", fmt.Sprintf("must be text or json, got %q", cfg.Log.Format))
	}

	if cfg.HTTP.ReadTimeout < 0 {
		errs.AddField("http.read_timeout", "cannot be negative")
	}
	if cfg.HTTP.WriteTimeout < 0 {
		errs.AddField("http.write_timeout", "cannot be negative")
	}
	if cfg.HTTP.ShutdownTimeout < 0 {
		errs.AddField("http.shutdown_timeout", "cannot be negative")
	}

	for i, m := range cfg.CORS.AllowedMethods {
		if strings.TrimSpace(m) == "" {
			errs.AddField(fmt.Sprintf("cors.allowed_methods[%d]", i), "cannot be empty")
		}
	}

	switch cfg.Store.Driver {
	case store.DriverDuckDB, store.DriverSQLite:
	default:
		errs.AddField("store.driver", fmt.Sprintf("must be %s or %s, got %q",
			store.DriverDuckDB, store.DriverSQLite, cfg.Store.Driver))
	}
	if cfg.Store.DSN == "" {
		errs.AddField("store.dsn", "cannot be empty")
	}
	if cfg.Store.MaxOpenConns < 0 {
		errs.AddField("store.max_open_conns", "cannot be negative")
	}
	if cfg.Store.MaxIdleConns < 0 {
		errs.AddField("store.max_idle_conns", "cannot be negative")
	}

	if _, err := export.ParseCompression(cfg.Export.Compression); err != nil {
		errs.AddField("export.compression", err.Error())
	}

	if cfg.Stats.Accuracy <= 0 || cfg.Stats.Accuracy >= 1 {
		errs.AddField("stats.accuracy", fmt.Sprintf("must be in (0, 1), got %v", cfg.Stats.Accuracy))
	}

	return errs.Err()
}

// =============================================================================
// Conversion
// =============================================================================

// ToStoreConfig converts the store section to the store package config.
func ToStoreConfig(cfg *StoreConfig) store.Config {
	return store.Config{
		Driver:          cfg.Driver,
		DSN:             cfg.DSN,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime.Duration(),
		PingTimeout:     cfg.PingTimeout.Duration(),
	}
}

// ToExportOptions converts the export section to parquet writer options.
// The configuration must have passed Validate.
func ToExportOptions(cfg *ExportConfig) export.Options {
	opts := export.DefaultOptions()
	if ct, err := export.ParseCompression(cfg.Compression); err == nil {
		opts.Compression = ct
	}
	return opts
}
