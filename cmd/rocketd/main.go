// rocketd is the rocket time-series key-value server daemon.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/KhaledSharif/rocket/internal/handler"
	"github.com/KhaledSharif/rocket/internal/ingestion"
	"github.com/KhaledSharif/rocket/internal/loader"
	"github.com/KhaledSharif/rocket/internal/logging"
	"github.com/KhaledSharif/rocket/internal/query"
	"github.com/KhaledSharif/rocket/internal/server"
	"github.com/KhaledSharif/rocket/internal/stats"
	"github.com/KhaledSharif/rocket/internal/store"
)

// Version is set at build time via ldflags
var Version = "dev"

// openStore opens the message store. Tests replace it to observe the store.
var openStore = store.New

func main() {
	// CLI flags
	cfgPath := flag.String("config", "config.yaml", "config file path")
	listen := flag.String("listen", "", "listen address (overrides config)")
	driver := flag.String("driver", "", "store driver: duckdb or sqlite (overrides config)")
	dsn := flag.String("dsn", "", "store DSN (overrides config and "+loader.EnvDSN+")")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error (overrides config)")
	logJSON := flag.Bool("log-json", false, "log as JSON (overrides config)")
	flag.Parse()

	// Load config
	cfg, err := loader.Load(*cfgPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Printf("No config file at %s, using defaults", *cfgPath)
			cfg, err = loader.Load("")
		}
		if err != nil {
			log.Fatalf("Load config: %v", err)
		}
	}

	// CLI overrides
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *driver != "" {
		cfg.Store.Driver = *driver
	}
	if *dsn != "" {
		cfg.Store.DSN = *dsn
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "log-json" {
			cfg.Log.Format = "text"
			if *logJSON {
				cfg.Log.Format = "json"
			}
		}
	})

	if err := loader.Validate(cfg); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	level, _ := logging.ParseLevel(cfg.Log.Level)
	logging.Init(level, cfg.Log.JSON())
	logger := logging.Component("rocketd")
	logger.Info("starting", "version", Version, "listen", cfg.Listen, "driver", cfg.Store.Driver)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()

	if err != nil {
		logger.Error("exiting", "error", err)
		os.Exit(1)
	}
	logger.Info("stopped")
}

// run serves cfg until ctx is done. The store is closed on every return path.
func run(ctx context.Context, cfg *loader.Config) error {
	// =========================================================================
	// Initialize Store
	// =========================================================================

	st, err := openStore(loader.ToStoreConfig(&cfg.Store))
	if err != nil {
		return fmt.Errorf("open store %s: %w", cfg.Store.Driver, err)
	}
	defer st.Close()

	// =========================================================================
	// Create Services and Server
	// =========================================================================

	latency, err := stats.NewRecorder(cfg.Stats.Accuracy)
	if err != nil {
		return fmt.Errorf("create latency recorder: %w", err)
	}

	h := handler.NewHandler(handler.Deps{
		Store:     st,
		Ingestion: ingestion.New(st),
		Query:     query.New(st),
		Latency:   latency,
		Export:    loader.ToExportOptions(&cfg.Export),
	})

	srv := server.New(&server.Config{
		Listen:          cfg.Listen,
		ReadTimeout:     cfg.HTTP.ReadTimeout.Duration(),
		WriteTimeout:    cfg.HTTP.WriteTimeout.Duration(),
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout.Duration(),
		Compress:        cfg.HTTP.Compress,
		CORS: server.CORSConfig{
			AllowedOrigins:   cfg.CORS.AllowedOrigins,
			AllowedMethods:   cfg.CORS.AllowedMethods,
			AllowCredentials: cfg.CORS.AllowCredentials,
		},
	}, h.Routes())

	if err := srv.Listen(); err != nil {
		return err
	}

	// =========================================================================
	// Run Until Done
	// =========================================================================

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Serve)
	g.Go(func() error {
		<-gctx.Done()
		// Stop server first (stop accepting new work); the store closes on return.
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}
