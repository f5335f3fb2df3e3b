package ingestion

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/KhaledSharif/rocket/internal/errors"
	"github.com/KhaledSharif/rocket/internal/query"
	"github.com/KhaledSharif/rocket/internal/request"
	"github.com/KhaledSharif/rocket/internal/testutil"
	"github.com/KhaledSharif/rocket/internal/types"
)

func fixedClock(sec int64) func() time.Time {
	return func() time.Time { return time.Unix(sec, 0) }
}

func TestService_IngestStampsServerTime(t *testing.T) {
	s := testutil.NewStore(t)
	svc := New(s, WithClock(fixedClock(1700000000)))

	msg, err := svc.Ingest(context.Background(), request.PostRequest{Key: "sensor1", Value: "42"})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	want := types.Message{Key: "sensor1", Value: "42", Time: 1700000000}
	if msg != want {
		t.Errorf("Ingest returned %+v, want %+v", msg, want)
	}

	got, err := query.New(s).Retrieve(context.Background(), request.GetRequest{Key: "sensor1"})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 1 || got[0] != want {
		t.Errorf("stored = %+v, want [%+v]", got, want)
	}
}

func TestService_IngestWallClock(t *testing.T) {
	s := testutil.NewSQLiteStore(t)
	svc := New(s)

	before := time.Now().Unix()
	msg, err := svc.Ingest(context.Background(), request.PostRequest{Key: "k", Value: "v"})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	after := time.Now().Unix()

	if int64(msg.Time) < before || int64(msg.Time) > after {
		t.Errorf("time %d outside [%d, %d]", msg.Time, before, after)
	}
}

func TestService_IngestDuplicatesKept(t *testing.T) {
	s := testutil.NewStore(t)
	svc := New(s, WithClock(fixedClock(100)))
	ctx := context.Background()

	req := request.PostRequest{Key: "dup", Value: "same"}
	for i := 0; i < 2; i++ {
		if _, err := svc.Ingest(ctx, req); err != nil {
			t.Fatalf("Ingest %d: %v", i, err)
		}
	}

	got, err := query.New(s).Retrieve(ctx, request.GetRequest{Key: "dup"})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0] != got[1] {
		t.Errorf("records differ: %+v vs %+v", got[0], got[1])
	}
}

func TestService_IngestStoreFailure(t *testing.T) {
	s := testutil.NewStore(t)
	svc := New(s)
	s.Close()

	_, err := svc.Ingest(context.Background(), request.PostRequest{Key: "k", Value: "v"})
	if !errors.Is(err, errors.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}

	stats := svc.Stats()
	if stats.MessagesReceived != 1 || stats.MessagesIngested != 0 || stats.Errors != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestService_IngestConcurrent(t *testing.T) {
	s := testutil.NewStore(t)
	svc := New(s)

	const writers = 8
	const perWriter = 25

	gt := testutil.NewGoroutineTest(t, 30*time.Second)
	for w := 0; w < writers; w++ {
		gt.Go(func(ctx context.Context) error {
			for i := 0; i < perWriter; i++ {
				req := request.PostRequest{Key: "shared", Value: fmt.Sprintf("%d-%d", w, i)}
				if _, err := svc.Ingest(ctx, req); err != nil {
					return fmt.Errorf("writer %d: %w", w, err)
				}
			}
			return nil
		})
	}
	gt.Wait()

	n, err := s.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != writers*perWriter {
		t.Errorf("Count = %d, want %d", n, writers*perWriter)
	}

	stats := svc.Stats()
	if stats.MessagesIngested != writers*perWriter {
		t.Errorf("MessagesIngested = %d, want %d", stats.MessagesIngested, writers*perWriter)
	}
}
