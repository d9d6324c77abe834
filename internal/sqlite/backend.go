// Package sqlite implements the SQLite storage backend for BinLid.
// A single database file holds spaces, items, the append-only move log and
// the FTS5 index over item text.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/binlid/pkg/types"
)

// Compile-time interface check.
var _ types.Inventory = (*Backend)(nil)

// Backend implements the Inventory interface on top of an embedded SQLite
// database. The mutex guards only the attach/detach lifecycle; row-level
// serialization is left to the engine.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB

	log logrus.FieldLogger
	now func() time.Time
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger used for mutation and lifecycle events.
func WithLogger(log logrus.FieldLogger) Option {
	return func(b *Backend) {
		if log != nil {
			b.log = log
		}
	}
}

// WithClock replaces time.Now as the source of timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(opts ...Option) *Backend {
	silent := logrus.New()
	silent.SetOutput(io.Discard)

	b := &Backend{
		log: silent,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach opens the database named by config, enables WAL journaling and
// applies the schema. The parent directory of a file database is created
// if needed. Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	if !config.InMemory() {
		if err := os.MkdirAll(filepath.Dir(config.DBPath), 0o755); err != nil {
			return fmt.Errorf("%w: creating data directory: %w", types.ErrStorageFailure, err)
		}
	}

	db, err := sql.Open("sqlite", config.DBPath+"?"+dsnParams)
	if err != nil {
		return fmt.Errorf("%w: opening database: %w", types.ErrStorageFailure, err)
	}

	// One writer at a time. A private in-memory database also only exists
	// on the connection that created it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return fmt.Errorf("%w: enabling WAL: %w", types.ErrStorageFailure, err)
	}

	applied, err := applySchema(ctx, db)
	if err != nil {
		db.Close()
		return fmt.Errorf("%w: %w", types.ErrStorageFailure, err)
	}

	b.db = db
	b.config = config
	b.attached = true

	b.log.WithFields(logrus.Fields{
		"db_path":    config.DBPath,
		"migrations": len(applied),
	}).Debug("inventory attached")
	return nil
}

// Detach closes the database. After Detach, all operations return
// ErrDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return fmt.Errorf("%w: closing database: %w", types.ErrStorageFailure, err)
		}
		b.db = nil
	}

	b.attached = false
	b.log.WithField("db_path", b.config.DBPath).Debug("inventory detached")
	return nil
}

// Ping checks that the database answers.
func (b *Backend) Ping(ctx context.Context) error {
	db, release, err := b.handle()
	if err != nil {
		return err
	}
	defer release()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: ping: %w", types.ErrStorageFailure, err)
	}
	return nil
}

// SchemaVersion returns the applied schema version.
func (b *Backend) SchemaVersion(ctx context.Context) (int64, error) {
	db, release, err := b.handle()
	if err != nil {
		return 0, err
	}
	defer release()

	v, err := schemaVersion(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("%w: reading schema version: %w", types.ErrStorageFailure, err)
	}
	return v, nil
}

// handle returns the open database and a release func that must be called
// when the caller is done with it. Detach waits for outstanding handles.
func (b *Backend) handle() (*sql.DB, func(), error) {
	b.mu.RLock()
	if !b.attached {
		b.mu.RUnlock()
		return nil, nil, types.ErrDetached
	}
	return b.db, b.mu.RUnlock, nil
}

// withTx runs fn in a transaction. The transaction commits only when fn
// returns nil; every other path rolls back.
func (b *Backend) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	db, release, err := b.handle()
	if err != nil {
		return err
	}
	defer release()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return classify("beginning transaction", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return classify("committing transaction", err)
	}
	return nil
}

// timestamp returns the current UTC time without its monotonic reading.
func (b *Backend) timestamp() time.Time {
	return b.now().UTC().Round(0)
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
