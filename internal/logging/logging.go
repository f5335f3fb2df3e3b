// Package logging provides structured logging for the rocket application.
//
// This package wraps the standard library's log/slog package to provide
// consistent logging across all components. It supports both text and JSON
// output formats, configurable log levels, and component-based loggers.
//
// Usage:
//
//	// Initialize at startup
//	logging.Init(slog.LevelInfo, false) // Text format
//	logging.Init(slog.LevelDebug, true) // JSON format for production
//
//	// Get a component logger
//	log := logging.Component("server")
//	log.Info("listening", "addr", addr)
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// root is the installed global logger. gen changes on every install so
// component loggers know when to rebuild their cached handler.
type root struct {
	logger *slog.Logger
	gen    uint64
}

var (
	current     atomic.Pointer[root]
	generations atomic.Uint64
)

func init() {
	install(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))
}

func install(l *slog.Logger) {
	current.Store(&root{logger: l, gen: generations.Add(1)})
}

// Default returns the global logger.
func Default() *slog.Logger {
	return current.Load().logger
}

// Init initializes the global logger with the specified level and format.
// If jsonFormat is true, logs are output as JSON; otherwise, human-readable text.
func Init(level slog.Level, jsonFormat bool) {
	InitWriter(os.Stdout, level, jsonFormat)
}

// InitWriter is Init with an explicit destination.
func InitWriter(w io.Writer, level slog.Level, jsonFormat bool) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	if jsonFormat {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	InitWithHandler(handler)
}

// InitWithHandler initializes the global logger with a custom handler.
// This is useful for testing or custom output destinations.
func InitWithHandler(handler slog.Handler) {
	l := slog.New(handler)
	install(l)
	slog.SetDefault(l)
}

// ParseLevel converts a config level name ("debug", "info", "warn", "error").
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Component returns a logger for a specific component.
// The component name is added as an attribute to all log entries.
//
// Loggers returned here follow later calls to Init, so packages may
// create them in package-level vars.
func Component(name string) *slog.Logger {
	return slog.New(componentHandler{name: name, cache: new(atomic.Pointer[derived])})
}

// componentHandler resolves the global handler at log time so component
// loggers created before Init pick up the configured output.
type componentHandler struct {
	name  string
	ops   []func(slog.Handler) slog.Handler
	cache *atomic.Pointer[derived]
}

// derived is a component handler built on top of root generation gen.
type derived struct {
	gen     uint64
	handler slog.Handler
}

func (h componentHandler) base() slog.Handler {
	r := current.Load()
	if d := h.cache.Load(); d != nil && d.gen == r.gen {
		return d.handler
	}

	handler := r.logger.Handler().WithAttrs([]slog.Attr{slog.String("component", h.name)})
	for _, op := range h.ops {
		handler = op(handler)
	}
	h.cache.Store(&derived{gen: r.gen, handler: handler})
	return handler
}

func (h componentHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base().Enabled(ctx, level)
}

func (h componentHandler) Handle(ctx context.Context, r slog.Record) error {
	if id, ok := RequestID(ctx); ok {
		r.AddAttrs(slog.Uint64("request_id", id))
	}
	return h.base().Handle(ctx, r)
}

func (h componentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.with(func(next slog.Handler) slog.Handler { return next.WithAttrs(attrs) })
}

func (h componentHandler) WithGroup(name string) slog.Handler {
	return h.with(func(next slog.Handler) slog.Handler { return next.WithGroup(name) })
}

func (h componentHandler) with(op func(slog.Handler) slog.Handler) componentHandler {
	ops := make([]func(slog.Handler) slog.Handler, 0, len(h.ops)+1)
	ops = append(ops, h.ops...)
	return componentHandler{name: h.name, ops: append(ops, op), cache: new(atomic.Pointer[derived])}
}

// Context key types for type-safe context value extraction.
type contextKey int

const (
	contextKeyRequestID contextKey = iota
)

// ContextWithRequestID adds a request ID to the context for logging.
func ContextWithRequestID(ctx context.Context, requestID uint64) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, requestID)
}

// RequestID returns the request ID stored in ctx, if any.
func RequestID(ctx context.Context) (uint64, bool) {
	id, ok := ctx.Value(contextKeyRequestID).(uint64)
	return id, ok
}
