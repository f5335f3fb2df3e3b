// Package server provides the HTTP server for the rocket service.
//
// The server wraps the handler routes with request IDs, access logging and
// the CORS policy, and owns the listener lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/cors"

	"github.com/KhaledSharif/rocket/config"
	"github.com/KhaledSharif/rocket/internal/logging"
)

var log = logging.Component("server")

// =============================================================================
// Configuration
// =============================================================================

// Config holds server configuration.
type Config struct {
	Listen          string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CORS            CORSConfig

	// Compress gzips responses for clients that accept it.
	Compress bool
}

// CORSConfig is the cross-origin policy.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowCredentials bool
}

// =============================================================================
// Server
// =============================================================================

// Server is an HTTP server for the rocket API.
type Server struct {
	cfg     *Config
	handler http.Handler
	http    *http.Server

	mu       sync.Mutex
	listener net.Listener
}

// New creates a new server serving routes.
func New(cfg *Config, routes http.Handler) *Server {
	// Apply defaults
	if cfg.Listen == "" {
		cfg.Listen = config.DefaultListenAddress
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = config.DefaultReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = config.DefaultWriteTimeout
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = config.DefaultShutdownTimeout
	}
	if cfg.CORS.AllowedOrigins == nil {
		cfg.CORS.AllowedOrigins = config.DefaultAllowedOrigins
	}
	if cfg.CORS.AllowedMethods == nil {
		cfg.CORS.AllowedMethods = config.DefaultAllowedMethods
	}

	h := Chain(routes, cfg.CORS)
	if cfg.Compress {
		h = gzhttp.GzipHandler(h)
	}

	return &Server{
		cfg:     cfg,
		handler: h,
		http: &http.Server{
			Handler:      h,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

// Chain wraps routes with the CORS policy, request IDs and access logging.
func Chain(routes http.Handler, c CORSConfig) http.Handler {
	policy := cors.New(cors.Options{
		AllowedOrigins:   c.AllowedOrigins,
		AllowedMethods:   c.AllowedMethods,
		AllowedHeaders:   []string{"*"},
		AllowCredentials: c.AllowCredentials,
	})
	return withRequestID(withAccessLog(policy.Handler(routes)))
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Listen binds the configured address.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Listen, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	log.Info("listening", "address", ln.Addr().String())
	return nil
}

// Serve serves on the bound listener until Shutdown. It returns nil after a
// graceful shutdown.
func (s *Server) Serve() error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()

	if ln == nil {
		return fmt.Errorf("serve: not listening")
	}

	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Addr returns the bound address, or the configured one before Listen.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.cfg.Listen
}

// Shutdown stops accepting connections and waits for in-flight requests,
// bounded by the configured shutdown timeout and ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}
