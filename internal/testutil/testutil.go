// Package testutil provides test helpers shared by rocket's packages.
//
// Using t.Fatal or t.FailNow in a goroutine only exits that goroutine, so
// concurrent tests return errors through GoroutineTest instead.
package testutil

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/KhaledSharif/rocket/internal/store"
)

// =============================================================================
// Stores
// =============================================================================

// NewStore opens an in-memory DuckDB store that is closed when t finishes.
func NewStore(t testing.TB) *store.Store {
	t.Helper()

	cfg := store.DefaultConfig()
	cfg.DSN = ""
	return openStore(t, cfg)
}

// NewSQLiteStore opens a file-backed SQLite store under t.TempDir().
func NewSQLiteStore(t testing.TB) *store.Store {
	t.Helper()

	cfg := store.DefaultConfig()
	cfg.Driver = store.DriverSQLite
	cfg.DSN = filepath.Join(t.TempDir(), "rocket.sqlite")
	return openStore(t, cfg)
}

func openStore(t testing.TB, cfg store.Config) *store.Store {
	t.Helper()

	s, err := store.New(cfg)
	if err != nil {
		t.Fatalf("store.New(%s): %v", cfg.Driver, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// =============================================================================
// Error Channel Pattern
// =============================================================================

// GoroutineTest collects errors from goroutines and reports them on Wait.
//
//	gt := testutil.NewGoroutineTest(t, 5*time.Second)
//	for i := 0; i < 10; i++ {
//	    gt.Go(func(ctx context.Context) error {
//	        return doSomething(ctx)
//	    })
//	}
//	gt.Wait()
type GoroutineTest struct {
	t      testing.TB
	wg     sync.WaitGroup
	mu     sync.Mutex
	errs   []error
	ctx    context.Context
	cancel context.CancelFunc
}

// NewGoroutineTest creates a GoroutineTest whose context expires after timeout.
func NewGoroutineTest(t testing.TB, timeout time.Duration) *GoroutineTest {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	return &GoroutineTest{
		t:      t,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Go runs fn in a goroutine. fn should return an error instead of calling t.Fatal.
func (gt *GoroutineTest) Go(fn func(ctx context.Context) error) {
	gt.wg.Add(1)
	go func() {
		defer gt.wg.Done()
		if err := fn(gt.ctx); err != nil {
			gt.mu.Lock()
			gt.errs = append(gt.errs, err)
			gt.mu.Unlock()
		}
	}()
}

// Wait waits for all goroutines and fails the test if any returned an error.
func (gt *GoroutineTest) Wait() {
	gt.t.Helper()

	gt.wg.Wait()
	gt.cancel()

	gt.mu.Lock()
	defer gt.mu.Unlock()

	if len(gt.errs) > 0 {
		gt.t.Errorf("goroutine test failed with %d error(s):", len(gt.errs))
		for i, err := range gt.errs {
			gt.t.Errorf("  [%d] %v", i+1, err)
		}
		gt.t.FailNow()
	}
}
