// Package handler provides the HTTP handlers for the rocket service.
//
// Handlers are organized by resource (messages, exports, stats) and share
// the JSON response helpers in respond.go.
package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/KhaledSharif/rocket/internal/export"
	"github.com/KhaledSharif/rocket/internal/ingestion"
	"github.com/KhaledSharif/rocket/internal/logging"
	"github.com/KhaledSharif/rocket/internal/options"
	"github.com/KhaledSharif/rocket/internal/query"
	"github.com/KhaledSharif/rocket/internal/stats"
)

var log = logging.Component("handler")

// Store is the part of the message store the handlers use directly.
type Store interface {
	Count(ctx context.Context) (int64, error)
	Health(ctx context.Context) error
}

// =============================================================================
// Handler
// =============================================================================

// Deps holds the collaborators of a Handler.
type Deps struct {
	Store     Store
	Ingestion *ingestion.Service
	Query     *query.Service

	// Latency is optional. When set, every route records its latency.
	Latency *stats.Recorder

	// Export configures parquet exports.
	Export export.Options
}

// Handler serves the HTTP API.
type Handler struct {
	store   Store
	ingest  *ingestion.Service
	query   *query.Service
	latency *stats.Recorder
	export  export.Options
	started time.Time

	// Singleflight for the stats message count
	counts singleflight.Group
}

// NewHandler creates a new handler.
func NewHandler(d Deps) *Handler {
	return &Handler{
		store:   d.Store,
		ingest:  d.Ingestion,
		query:   d.Query,
		latency: d.Latency,
		export:  d.Export,
		started: time.Now(),
	}
}

// Register adds every route to mux.
//
// The bare /message routes exist so that a request without options reaches
// the handler and fails validation instead of being redirected.
func (h *Handler) Register(mux *http.ServeMux) {
	h.handle(mux, "GET /message", h.handleGetMessage)
	h.handle(mux, "GET /message/{options...}", h.handleGetMessage)
	h.handle(mux, "POST /message", h.handlePostMessage)
	h.handle(mux, "POST /message/{options...}", h.handlePostMessage)
	h.handle(mux, "GET /export/{options...}", h.handleExport)
	h.handle(mux, "GET /stats", h.handleStats)
	h.handle(mux, "GET /healthz", h.handleHealth)
}

// Routes returns a ServeMux with every route registered.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	h.Register(mux)
	return mux
}

func (h *Handler) handle(mux *http.ServeMux, pattern string, fn http.HandlerFunc) {
	if h.latency == nil {
		mux.HandleFunc(pattern, fn)
		return
	}
	route := routeName(pattern)
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		fn(w, r)
		h.latency.Observe(route, time.Since(start))
	})
}

// routeName folds the bare and wildcard variants of a pattern together.
func routeName(pattern string) string {
	for i := len(pattern) - 1; i >= 0; i-- {
		if pattern[i] == '/' && i+1 < len(pattern) && pattern[i+1] == '{' {
			return pattern[:i]
		}
	}
	return pattern
}

const (
	messagePrefix = "/message"
	exportPrefix  = "/export"
)

// pathOptions decodes the options that follow prefix in r's path. It works on
// the escaped path so an encoded slash stays inside its option.
func pathOptions(r *http.Request, prefix string) (options.Set, error) {
	return options.DecodeEscapedPath(strings.TrimPrefix(r.URL.EscapedPath(), prefix))
}
