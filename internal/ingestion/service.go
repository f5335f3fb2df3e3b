package ingestion

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/KhaledSharif/rocket/internal/logging"
	"github.com/KhaledSharif/rocket/internal/request"
	"github.com/KhaledSharif/rocket/internal/store"
	"github.com/KhaledSharif/rocket/internal/types"
)

var log = logging.Component("ingestion")

// Service writes new messages to a collection.
// Every message gets its time from the service clock, never from the client.
type Service struct {
	coll store.Collection
	now  func() time.Time

	// Statistics
	stats Stats
}

// Stats holds ingestion statistics.
type Stats struct {
	MessagesReceived atomic.Int64
	MessagesIngested atomic.Int64
	Errors           atomic.Int64
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now as the source of message times.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a new ingestion service.
func New(coll store.Collection, opts ...Option) *Service {
	s := &Service{
		coll: coll,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest stamps req with the current time in whole seconds and stores it as
// one new message. There is no deduplication and no retry.
func (s *Service) Ingest(ctx context.Context, req request.PostRequest) (types.Message, error) {
	s.stats.MessagesReceived.Add(1)

	now := s.now().Unix()
	if now < 0 {
		s.stats.Errors.Add(1)
		return types.Message{}, fmt.Errorf("clock before epoch: %d", now)
	}

	msg := types.Message{
		Key:   req.Key,
		Value: req.Value,
		Time:  uint64(now),
	}

	doc, err := msg.ToDocument()
	if err != nil {
		s.stats.Errors.Add(1)
		return types.Message{}, err
	}

	if err := s.coll.InsertOne(ctx, doc); err != nil {
		s.stats.Errors.Add(1)
		log.WarnContext(ctx, "insert failed", "key", msg.Key, "error", err)
		return types.Message{}, err
	}

	s.stats.MessagesIngested.Add(1)
	log.DebugContext(ctx, "message ingested", "key", msg.Key, "time", msg.Time)

	return msg, nil
}

// Stats returns current statistics.
func (s *Service) Stats() ServiceStats {
	return ServiceStats{
		MessagesReceived: s.stats.MessagesReceived.Load(),
		MessagesIngested: s.stats.MessagesIngested.Load(),
		Errors:           s.stats.Errors.Load(),
	}
}

// ServiceStats holds service statistics.
type ServiceStats struct {
	MessagesReceived int64 `json:"messages_received"`
	MessagesIngested int64 `json:"messages_ingested"`
	Errors           int64 `json:"errors"`
}
