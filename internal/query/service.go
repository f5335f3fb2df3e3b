package query

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/KhaledSharif/rocket/internal/logging"
	"github.com/KhaledSharif/rocket/internal/request"
	"github.com/KhaledSharif/rocket/internal/store"
	"github.com/KhaledSharif/rocket/internal/types"
)

var log = logging.Component("query")

// Service answers range queries against a message collection.
//
// Filtering happens in the collection; results come back in the
// collection's iteration order and are not re-sorted here.
type Service struct {
	coll store.Collection

	// Statistics
	stats Stats
}

// Stats holds query statistics.
type Stats struct {
	QueriesExecuted atomic.Int64
	RowsReturned    atomic.Int64
	Errors          atomic.Int64
}

// New creates a new query service.
func New(coll store.Collection) *Service {
	return &Service{coll: coll}
}

// Retrieve returns every message matching req.
//
// Retrieval is all-or-nothing: the first document that fails to decode
// aborts the call with a storage error and no partial result.
func (s *Service) Retrieve(ctx context.Context, req request.GetRequest) ([]types.Message, error) {
	messages, err := s.retrieve(ctx, req)
	if err != nil {
		s.stats.Errors.Add(1)
		log.WarnContext(ctx, "retrieve failed", "key", req.Key, "error", err)
		return nil, err
	}

	s.stats.QueriesExecuted.Add(1)
	s.stats.RowsReturned.Add(int64(len(messages)))

	return messages, nil
}

func (s *Service) retrieve(ctx context.Context, req request.GetRequest) ([]types.Message, error) {
	cur, err := s.coll.Find(ctx, req.Filter())
	if err != nil {
		return nil, err
	}
	defer cur.Close()

	messages := make([]types.Message, 0)
	for cur.Next() {
		doc, err := cur.Decode()
		if err != nil {
			return nil, err
		}
		m, err := doc.ToMessage()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", len(messages), err)
		}
		messages = append(messages, m)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}

// Stats returns query statistics.
func (s *Service) Stats() ServiceStats {
	return ServiceStats{
		QueriesExecuted: s.stats.QueriesExecuted.Load(),
		RowsReturned:    s.stats.RowsReturned.Load(),
		Errors:          s.stats.Errors.Load(),
	}
}

// ServiceStats holds service statistics.
type ServiceStats struct {
	QueriesExecuted int64 `json:"queries_executed"`
	RowsReturned    int64 `json:"rows_returned"`
	Errors          int64 `json:"errors"`
}
