// Package client provides a client for the rocket HTTP API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/carlmjohnson/requests"

	"github.com/KhaledSharif/rocket/internal/handler"
	"github.com/KhaledSharif/rocket/internal/request"
	"github.com/KhaledSharif/rocket/internal/types"
)

// DefaultTimeout bounds a single API call when the caller's context has no
// deadline of its own.
const DefaultTimeout = 30 * time.Second

// =============================================================================
// Errors
// =============================================================================

// APIError is a non-success response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// expect accepts only the given status and turns anything else into an
// *APIError carrying the server's error message.
func expect(status int) requests.ResponseHandler {
	return func(res *http.Response) error {
		if res.StatusCode == status {
			return nil
		}
		var body handler.ErrorResponse
		_ = json.NewDecoder(io.LimitReader(res.Body, 64*1024)).Decode(&body)
		return &APIError{Status: res.StatusCode, Message: body.Error}
	}
}

// =============================================================================
// Client
// =============================================================================

// Range holds optional exclusive time bounds for Get and Export.
type Range struct {
	Gt *uint64
	Lt *uint64
}

// Client talks to a rocketd server.
type Client struct {
	base    string
	http    *http.Client
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// New creates a client for the server at baseURL, e.g. "http://localhost:8000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base:    strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server address.
func (c *Client) BaseURL() string {
	return c.base
}

func (c *Client) builder(path string) *requests.Builder {
	return requests.URL(c.base + path).Client(c.http)
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// Put stores value under key. The server assigns the time.
func (c *Client) Put(ctx context.Context, key, value string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	path := optionsPath("/message", request.OptionKey, key, request.OptionValue, value)
	err := c.builder(path).
		Post().
		AddValidator(expect(http.StatusCreated)).
		Fetch(ctx)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Get returns the messages stored under key within r.
func (c *Client) Get(ctx context.Context, key string, r Range) ([]types.Message, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var msgs []types.Message
	err := c.builder(rangePath("/message", key, r)).
		AddValidator(expect(http.StatusOK)).
		ToJSON(&msgs).
		Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	if msgs == nil {
		msgs = []types.Message{}
	}
	return msgs, nil
}

// Export writes the messages stored under key within r to w as Parquet.
func (c *Client) Export(ctx context.Context, key string, r Range, w io.Writer) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	err := c.builder(rangePath("/export", key, r)).
		AddValidator(expect(http.StatusOK)).
		ToWriter(w).
		Fetch(ctx)
	if err != nil {
		return fmt.Errorf("export %s: %w", key, err)
	}
	return nil
}

// Stats returns the server statistics.
func (c *Client) Stats(ctx context.Context) (handler.StatsResponse, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var sr handler.StatsResponse
	err := c.builder("/stats").
		AddValidator(expect(http.StatusOK)).
		ToJSON(&sr).
		Fetch(ctx)
	if err != nil {
		return handler.StatsResponse{}, fmt.Errorf("stats: %w", err)
	}
	return sr, nil
}

// Health returns nil when the server and its store are reachable.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	err := c.builder("/healthz").
		AddValidator(expect(http.StatusOK)).
		Fetch(ctx)
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}
	return nil
}

// =============================================================================
// Paths
// =============================================================================

// optionsPath encodes name/value pairs as path segments under prefix.
func optionsPath(prefix string, pairs ...string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, p := range pairs {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(p))
	}
	return b.String()
}

func rangePath(prefix, key string, r Range) string {
	pairs := []string{request.OptionKey, key}
	if r.Gt != nil {
		pairs = append(pairs, request.OptionTimeGt, strconv.FormatUint(*r.Gt, 10))
	}
	if r.Lt != nil {
		pairs = append(pairs, request.OptionTimeLt, strconv.FormatUint(*r.Lt, 10))
	}
	return optionsPath(prefix, pairs...)
}

// ParseRange parses optional time_gt and time_lt arguments. Empty strings
// leave the bound open.
func ParseRange(gt, lt string) (Range, error) {
	var r Range
	if gt != "" {
		v, err := strconv.ParseUint(gt, 10, 64)
		if err != nil {
			return Range{}, fmt.Errorf("invalid time_gt %q: %w", gt, err)
		}
		r.Gt = &v
	}
	if lt != "" {
		v, err := strconv.ParseUint(lt, 10, 64)
		if err != nil {
			return Range{}, fmt.Errorf("invalid time_lt %q: %w", lt, err)
		}
		r.Lt = &v
	}
	return r, nil
}
