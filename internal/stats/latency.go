// Package stats tracks request latency per route.
//
// Each route keeps running count, sum, min and max plus a DDSketch for
// percentiles, so memory stays bounded regardless of traffic.
package stats

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/DataDog/sketches-go/ddsketch"
)

// DefaultAccuracy is the relative accuracy used when none is configured.
const DefaultAccuracy = 0.01

// routeLatency maintains running statistics for a single route.
type routeLatency struct {
	mu sync.Mutex

	count int64
	sum   float64
	min   float64
	max   float64

	sketch *ddsketch.DDSketch
}

func newRouteLatency(accuracy float64) (*routeLatency, error) {
	sketch, err := ddsketch.NewDefaultDDSketch(accuracy)
	if err != nil {
		return nil, err
	}
	return &routeLatency{
		min:    math.MaxFloat64,
		max:    -math.MaxFloat64,
		sketch: sketch,
	}, nil
}

// add records one observation in milliseconds.
func (l *routeLatency) add(ms float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.count++
	l.sum += ms
	if ms < l.min {
		l.min = ms
	}
	if ms > l.max {
		l.max = ms
	}

	// DDSketch rejects negative values.
	if ms >= 0 {
		l.sketch.Add(ms)
	}
}

func (l *routeLatency) result(route string) RouteStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	rs := RouteStats{Route: route, Count: l.count}
	if l.count == 0 {
		return rs
	}

	rs.AvgMs = l.sum / float64(l.count)
	rs.MinMs = l.min
	rs.MaxMs = l.max

	if !l.sketch.IsEmpty() {
		rs.P50Ms, _ = l.sketch.GetValueAtQuantile(0.50)
		rs.P90Ms, _ = l.sketch.GetValueAtQuantile(0.90)
		rs.P99Ms, _ = l.sketch.GetValueAtQuantile(0.99)
	}
	return rs
}

// RouteStats is a latency summary for one route. Durations are milliseconds.
type RouteStats struct {
	Route string  `json:"route"`
	Count int64   `json:"count"`
	AvgMs float64 `json:"avg_ms"`
	MinMs float64 `json:"min_ms"`
	MaxMs float64 `json:"max_ms"`
	P50Ms float64 `json:"p50_ms"`
	P90Ms float64 `json:"p90_ms"`
	P99Ms float64 `json:"p99_ms"`
}

// Recorder keeps one latency summary per route. It is safe for concurrent use.
type Recorder struct {
	mu       sync.RWMutex
	accuracy float64
	routes   map[string]*routeLatency
}

// NewRecorder creates a recorder whose percentiles have the given relative
// accuracy. Accuracy must be in (0, 1).
func NewRecorder(accuracy float64) (*Recorder, error) {
	if accuracy <= 0 || accuracy >= 1 {
		return nil, fmt.Errorf("accuracy must be in (0, 1), got %v", accuracy)
	}
	return &Recorder{
		accuracy: accuracy,
		routes:   make(map[string]*routeLatency),
	}, nil
}

// Observe records that one request to route took d.
func (r *Recorder) Observe(route string, d time.Duration) {
	l, err := r.route(route)
	if err != nil {
		return
	}
	l.add(float64(d) / float64(time.Millisecond))
}

func (r *Recorder) route(route string) (*routeLatency, error) {
	r.mu.RLock()
	l, ok := r.routes[route]
	r.mu.RUnlock()
	if ok {
		return l, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.routes[route]; ok {
		return l, nil
	}
	l, err := newRouteLatency(r.accuracy)
	if err != nil {
		return nil, err
	}
	r.routes[route] = l
	return l, nil
}

// Snapshot returns the summaries of all observed routes, sorted by route.
func (r *Recorder) Snapshot() []RouteStats {
	r.mu.RLock()
	routes := make(map[string]*routeLatency, len(r.routes))
	names := make([]string, 0, len(r.routes))
	for name, l := range r.routes {
		routes[name] = l
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)

	out := make([]RouteStats, 0, len(names))
	for _, name := range names {
		out = append(out, routes[name].result(name))
	}
	return out
}

// Reset drops all recorded observations.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = make(map[string]*routeLatency)
}
