package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/KhaledSharif/rocket/internal/errors"
	"github.com/KhaledSharif/rocket/internal/types"
)

func newTestStore(t *testing.T, driver, dsn string) *Store {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Driver = driver
	cfg.DSN = dsn

	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New(%s): %v", driver, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func drivers(t *testing.T) map[string]*Store {
	return map[string]*Store{
		DriverDuckDB: newTestStore(t, DriverDuckDB, ""),
		DriverSQLite: newTestStore(t, DriverSQLite, filepath.Join(t.TempDir(), "rocket.sqlite")),
	}
}

func findAll(t *testing.T, s *Store, f Filter) []types.Document {
	t.Helper()

	cur, err := s.Find(context.Background(), f)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	defer cur.Close()

	var docs []types.Document
	for cur.Next() {
		doc, err := cur.Decode()
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		docs = append(docs, doc)
	}
	if err := cur.Err(); err != nil {
		t.Fatalf("cursor: %v", err)
	}
	return docs
}

func u64(v uint64) *uint64 { return &v }

func TestStore_FindRange(t *testing.T) {
	for name, s := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, doc := range []types.Document{
				{Time: 10, Key: "A", Value: "ten"},
				{Time: 20, Key: "A", Value: "twenty"},
				{Time: 15, Key: "B", Value: "other"},
				{Time: 30, Key: "A", Value: "thirty"},
			} {
				if err := s.InsertOne(ctx, doc); err != nil {
					t.Fatalf("InsertOne: %v", err)
				}
			}

			tests := []struct {
				name   string
				filter Filter
				want   []string
			}{
				{"key only", Filter{Key: "A"}, []string{"ten", "twenty", "thirty"}},
				{"strict both", Filter{Key: "A", TimeGt: u64(10), TimeLt: u64(30)}, []string{"twenty"}},
				{"strict gt", Filter{Key: "A", TimeGt: u64(20)}, []string{"thirty"}},
				{"strict lt", Filter{Key: "A", TimeLt: u64(20)}, []string{"ten"}},
				{"empty range", Filter{Key: "A", TimeGt: u64(20), TimeLt: u64(21)}, nil},
				{"unknown key", Filter{Key: "C"}, nil},
				{"huge gt", Filter{Key: "A", TimeGt: u64(1 << 63)}, nil},
				{"huge lt", Filter{Key: "A", TimeLt: u64(1<<64 - 1)}, []string{"ten", "twenty", "thirty"}},
			}

			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					docs := findAll(t, s, tt.filter)
					if len(docs) != len(tt.want) {
						t.Fatalf("got %d docs %v, want %v", len(docs), docs, tt.want)
					}
					for i, d := range docs {
						if d.Value != tt.want[i] {
							t.Errorf("doc %d value = %q, want %q", i, d.Value, tt.want[i])
						}
					}
				})
			}
		})
	}
}

func TestStore_InsertionOrder(t *testing.T) {
	s := newTestStore(t, DriverDuckDB, "")
	ctx := context.Background()

	// Out of time order on purpose: Find must not sort.
	for _, ts := range []int64{30, 10, 20} {
		if err := s.InsertOne(ctx, types.Document{Time: ts, Key: "A", Value: "v"}); err != nil {
			t.Fatalf("InsertOne: %v", err)
		}
	}

	docs := findAll(t, s, Filter{Key: "A"})
	want := []int64{30, 10, 20}
	for i, d := range docs {
		if d.Time != want[i] {
			t.Errorf("doc %d time = %d, want %d", i, d.Time, want[i])
		}
	}
}

func TestStore_Count(t *testing.T) {
	s := newTestStore(t, DriverSQLite, ":memory:")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := s.InsertOne(ctx, types.Document{Time: 1, Key: "dup", Value: "same"}); err != nil {
			t.Fatalf("InsertOne: %v", err)
		}
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 3 {
		t.Errorf("Count = %d, want 3", n)
	}
}

func TestStore_ClosedReturnsStorageError(t *testing.T) {
	s := newTestStore(t, DriverDuckDB, "")
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	ctx := context.Background()
	_, findErr := s.Find(ctx, Filter{Key: "k"})
	_, countErr := s.Count(ctx)

	for name, err := range map[string]error{
		"InsertOne": s.InsertOne(ctx, types.Document{Time: 1, Key: "k", Value: "v"}),
		"Find":      findErr,
		"Count":     countErr,
		"Health":    s.Health(ctx),
	} {
		if !errors.Is(err, errors.ErrStorage) || !errors.Is(err, ErrClosed) {
			t.Errorf("%s after close: expected ErrStorage wrapping ErrClosed, got %v", name, err)
		}
	}
}

func TestNew_UnsupportedDriver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Driver = "mongo"
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestFilter_Where(t *testing.T) {
	where, args := Filter{Key: "A", TimeGt: u64(1), TimeLt: u64(5)}.Where()
	wantWhere := `"key" = ? AND "time" > ? AND "time" < ?`
	if where != wantWhere {
		t.Errorf("where = %s, want %s", where, wantWhere)
	}
	if len(args) != 3 || args[0] != "A" || args[1] != int64(1) || args[2] != int64(5) {
		t.Errorf("args = %v", args)
	}
}
