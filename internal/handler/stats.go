package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/KhaledSharif/rocket/internal/ingestion"
	"github.com/KhaledSharif/rocket/internal/query"
	"github.com/KhaledSharif/rocket/internal/stats"
)

const healthTimeout = 2 * time.Second

// StatsResponse is the body of GET /stats.
type StatsResponse struct {
	UptimeSec int64                  `json:"uptime_sec"`
	Messages  int64                  `json:"messages"`
	Ingestion ingestion.ServiceStats `json:"ingestion"`
	Query     query.ServiceStats     `json:"query"`
	Latency   []stats.RouteStats     `json:"latency"`
}

// handleStats reports service counters, the stored message count and route
// latencies.
func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	n, err := h.count(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := StatsResponse{
		UptimeSec: int64(time.Since(h.started).Seconds()),
		Messages:  n,
		Ingestion: h.ingest.Stats(),
		Query:     h.query.Stats(),
		Latency:   []stats.RouteStats{},
	}
	if h.latency != nil {
		resp.Latency = h.latency.Snapshot()
	}

	writeJSON(w, http.StatusOK, resp)
}

// count returns the stored message count. Concurrent callers share one
// COUNT(*) scan.
func (h *Handler) count(ctx context.Context) (int64, error) {
	v, err, _ := h.counts.Do("count", func() (interface{}, error) {
		return h.store.Count(context.WithoutCancel(ctx))
	})
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

// handleHealth reports whether the store is reachable.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.store.Health(ctx); err != nil {
		log.WarnContext(ctx, "health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
