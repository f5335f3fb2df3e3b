package query

import (
	"context"
	"testing"

	"github.com/KhaledSharif/rocket/internal/errors"
	"github.com/KhaledSharif/rocket/internal/request"
	"github.com/KhaledSharif/rocket/internal/store"
	"github.com/KhaledSharif/rocket/internal/types"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	cfg := store.DefaultConfig()
	cfg.DSN = "" // in-memory DuckDB

	s, err := store.New(cfg)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, s *store.Store, docs ...types.Document) {
	t.Helper()
	for _, d := range docs {
		if err := s.InsertOne(context.Background(), d); err != nil {
			t.Fatalf("InsertOne: %v", err)
		}
	}
}

func ptr(v uint64) *uint64 { return &v }

func TestService_RetrieveStrictBounds(t *testing.T) {
	s := newTestStore(t)
	seed(t, s,
		types.Document{Time: 10, Key: "A", Value: "a10"},
		types.Document{Time: 20, Key: "A", Value: "a20"},
		types.Document{Time: 30, Key: "A", Value: "a30"},
	)

	svc := New(s)
	got, err := svc.Retrieve(context.Background(), request.GetRequest{Key: "A", TimeGt: ptr(10), TimeLt: ptr(30)})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("expected 1 message, got %d: %v", len(got), got)
	}
	want := types.Message{Key: "A", Value: "a20", Time: 20}
	if got[0] != want {
		t.Errorf("got %+v, want %+v", got[0], want)
	}
}

func TestService_RetrieveEmpty(t *testing.T) {
	svc := New(newTestStore(t))

	got, err := svc.Retrieve(context.Background(), request.GetRequest{Key: "nothing"})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if got == nil {
		t.Error("empty result should be a non-nil slice")
	}
	if len(got) != 0 {
		t.Errorf("expected 0 messages, got %d", len(got))
	}
}

func TestService_RetrieveCorruptRowAborts(t *testing.T) {
	s := newTestStore(t)
	seed(t, s, types.Document{Time: 10, Key: "A", Value: "good"})

	// A negative time can only come from outside the ingestion path.
	if _, err := s.DB().Exec(`INSERT INTO messages ("time", "key", "value") VALUES (-5, 'A', 'bad')`); err != nil {
		t.Fatalf("insert corrupt row: %v", err)
	}
	seed(t, s, types.Document{Time: 30, Key: "A", Value: "after"})

	svc := New(s)
	got, err := svc.Retrieve(context.Background(), request.GetRequest{Key: "A"})
	if !errors.Is(err, errors.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	if got != nil {
		t.Errorf("expected no partial result, got %v", got)
	}

	stats := svc.Stats()
	if stats.Errors != 1 {
		t.Errorf("expected 1 error, got %d", stats.Errors)
	}
	if stats.QueriesExecuted != 0 {
		t.Errorf("failed query counted as executed")
	}
}

func TestService_RetrieveStoreFailure(t *testing.T) {
	s := newTestStore(t)
	svc := New(s)
	s.Close()

	_, err := svc.Retrieve(context.Background(), request.GetRequest{Key: "A"})
	if !errors.Is(err, errors.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}

func TestService_Stats(t *testing.T) {
	s := newTestStore(t)
	seed(t, s,
		types.Document{Time: 1, Key: "A", Value: "x"},
		types.Document{Time: 2, Key: "A", Value: "y"},
	)

	svc := New(s)
	for i := 0; i < 2; i++ {
		if _, err := svc.Retrieve(context.Background(), request.GetRequest{Key: "A"}); err != nil {
			t.Fatalf("Retrieve: %v", err)
		}
	}

	stats := svc.Stats()
	if stats.QueriesExecuted != 2 {
		t.Errorf("expected 2 queries executed, got %d", stats.QueriesExecuted)
	}
	if stats.RowsReturned != 4 {
		t.Errorf("expected 4 rows returned, got %d", stats.RowsReturned)
	}
}
