// Package store provides the message collection for the rocket application.
//
// Messages live in a single append-only table queried by key and time range.
// The backing database is DuckDB by default; SQLite is available for
// deployments that want a pure Go build.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/marcboeker/go-duckdb"
	_ "modernc.org/sqlite"

	"github.com/KhaledSharif/rocket/internal/errors"
	"github.com/KhaledSharif/rocket/internal/logging"
	"github.com/KhaledSharif/rocket/internal/types"
)

var log = logging.Component("store")

// ErrClosed is returned, wrapped in ErrStorage, by every operation on a
// closed Store.
var ErrClosed = errors.New("store closed")

// =============================================================================
// Store Configuration
// =============================================================================

// Supported drivers.
const (
	DriverDuckDB = "duckdb"
	DriverSQLite = "sqlite"
)

// Config holds store configuration options.
type Config struct {
	// Driver is the database/sql driver name: "duckdb" or "sqlite".
	Driver string

	// DSN is the database connection string. For DuckDB an empty DSN opens
	// an in-memory database.
	DSN string

	// MaxOpenConns is the maximum number of open connections.
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	MaxIdleConns int

	// ConnMaxLifetime is the maximum lifetime of a connection.
	ConnMaxLifetime time.Duration

	// PingTimeout bounds the connectivity check done by New.
	PingTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Driver:          DriverDuckDB,
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		PingTimeout:     5 * time.Second,
	}
}

// =============================================================================
// Schema
// =============================================================================

// seq gives every row its insertion position; Find iterates in that order.
var schemas = map[string][]string{
	DriverDuckDB: {
		`CREATE SEQUENCE IF NOT EXISTS messages_seq`,
		`CREATE TABLE IF NOT EXISTS messages (
			seq     BIGINT NOT NULL DEFAULT nextval('messages_seq'),
			"time"  BIGINT NOT NULL,
			"key"   VARCHAR NOT NULL,
			"value" VARCHAR NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS messages_key_time ON messages ("key", "time")`,
	},
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS messages (
			seq     INTEGER PRIMARY KEY AUTOINCREMENT,
			"time"  INTEGER NOT NULL,
			"key"   TEXT NOT NULL,
			"value" TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS messages_key_time ON messages ("key", "time")`,
	},
}

// =============================================================================
// Store
// =============================================================================

// Store is a Collection backed by a SQL database.
//
// Store is safe for concurrent use. A single Store is shared by all requests;
// database/sql handles connection pooling.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

var _ Collection = (*Store)(nil)

// New opens the database, verifies connectivity and creates the schema.
func New(cfg Config) (*Store, error) {
	if cfg.Driver == "" {
		cfg.Driver = DriverDuckDB
	}
	schema, ok := schemas[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = DefaultConfig().PingTimeout
	}

	dsn := cfg.DSN
	if cfg.Driver == DriverSQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Every SQLite in-memory connection is its own database.
	if cfg.Driver == DriverSQLite && (cfg.DSN == "" || cfg.DSN == ":memory:") {
		cfg.MaxOpenConns = 1
		cfg.MaxIdleConns = 1
		cfg.ConnMaxLifetime = 0
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	log.Info("store opened", "driver", cfg.Driver, "dsn", cfg.DSN)

	return &Store{db: db}, nil
}

// sqliteDSN adds a busy timeout and WAL journaling to file databases so
// concurrent writers wait instead of failing with SQLITE_BUSY.
func sqliteDSN(dsn string) string {
	if dsn == "" || dsn == ":memory:" || strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Close closes the store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	return s.db.Close()
}

// DB returns the underlying database connection.
// Use with caution - prefer using Store methods.
func (s *Store) DB() *sql.DB {
	return s.db
}

// =============================================================================
// Collection
// =============================================================================

// InsertOne appends doc to the messages table.
func (s *Store) InsertOne(ctx context.Context, doc types.Document) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errors.Storage("insert message", ErrClosed)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages ("time", "key", "value") VALUES (?, ?, ?)`,
		doc.Time, doc.Key, doc.Value)
	if err != nil {
		return errors.Storage("insert message", err)
	}
	return nil
}

// Find returns a cursor over the documents matching f in insertion order.
func (s *Store) Find(ctx context.Context, f Filter) (Cursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errors.Storage("find messages", ErrClosed)
	}

	where, args := f.Where()
	query := `SELECT "time", "key", "value" FROM messages WHERE ` + where + ` ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Storage("find messages", err)
	}
	return &rowsCursor{rows: rows}, nil
}

// Count returns the number of stored messages.
func (s *Store) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, errors.Storage("count messages", ErrClosed)
	}

	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&n); err != nil {
		return 0, errors.Storage("count messages", err)
	}
	return n, nil
}

// =============================================================================
// Health Check
// =============================================================================

// Health checks database connectivity.
func (s *Store) Health(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errors.Storage("ping", ErrClosed)
	}

	if err := s.db.PingContext(ctx); err != nil {
		return errors.Storage("ping", err)
	}
	return nil
}

// =============================================================================
// Cursor
// =============================================================================

type rowsCursor struct {
	rows *sql.Rows
}

func (c *rowsCursor) Next() bool {
	return c.rows.Next()
}

func (c *rowsCursor) Decode() (types.Document, error) {
	var (
		ts    sql.NullInt64
		key   sql.NullString
		value sql.NullString
	)
	if err := c.rows.Scan(&ts, &key, &value); err != nil {
		return types.Document{}, errors.Storage("scan message", err)
	}
	if !ts.Valid || !key.Valid || !value.Valid {
		return types.Document{}, errors.Storage("scan message", fmt.Errorf("null column"))
	}
	return types.Document{
		Time:  ts.Int64,
		Key:   key.String,
		Value: value.String,
	}, nil
}

func (c *rowsCursor) Err() error {
	if err := c.rows.Err(); err != nil {
		return errors.Storage("iterate messages", err)
	}
	return nil
}

func (c *rowsCursor) Close() error {
	return c.rows.Close()
}
