// Package store is the SQLite-backed persistence layer for tasks and lists.
//
// A [Store] owns one database file and one connection for its whole
// lifetime. All failures are returned as [*Error] values carrying one of the
// Err* kinds so callers can tell a broken install from a duplicate key or a
// missing list.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// Defaults applied by [Open] for zero [Options] fields.
const (
	DefaultBusyTimeout = 10 * time.Second
	DefaultOpTimeout   = 5 * time.Second
	DefaultLockTimeout = 5 * time.Second
)

// Options configures [Open]. Zero durations use the Default* values.
type Options struct {
	Path        string             // Path is the database file; parent dirs are created.
	BusyTimeout time.Duration      // BusyTimeout is SQLite's wait on a locked file.
	OpTimeout   time.Duration      // OpTimeout bounds every single store call.
	LockTimeout time.Duration      // LockTimeout bounds waiting for the process lock.
	Logger      logrus.FieldLogger // Logger receives debug events; nil discards.
}

// Store is the durable task and list store.
// Methods may be called concurrently, except Close; database/sql serializes
// access to the single connection.
type Store struct {
	path      string
	db        *sqlx.DB
	lock      *fileLock
	opTimeout time.Duration
	log       logrus.FieldLogger
	sq        squirrel.StatementBuilderType
}

// Open creates the data directory and database file if needed, takes the
// process lock and connects. It does not create tables; call
// [Store.EnsureSchema] next.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if ctx == nil {
		return nil, unavailable("open", errors.New("context is nil"))
	}

	if opts.Path == "" {
		return nil, unavailable("open", errors.New("database path is empty"))
	}

	opts = withDefaults(opts)
	path := filepath.Clean(opts.Path)

	err := os.MkdirAll(filepath.Dir(path), 0o750)
	if err != nil {
		return nil, unavailable("open", fmt.Errorf("create data directory: %w", err))
	}

	err = touch(path)
	if err != nil {
		return nil, unavailable("open", err)
	}

	lock, err := acquireLock(path, opts.LockTimeout)
	if err != nil {
		return nil, unavailable("open", err)
	}

	openCtx, cancel := context.WithTimeout(ctx, opts.OpTimeout)
	defer cancel()

	db, err := openSqlite(openCtx, path, opts.BusyTimeout)
	if err != nil {
		_ = lock.release()

		return nil, unavailable("open", err)
	}

	s := newStore(db, opts)
	s.path = path
	s.lock = lock

	s.log.WithField("path", path).Debug("store opened")

	return s, nil
}

func newStore(db *sqlx.DB, opts Options) *Store {
	opts = withDefaults(opts)

	log := opts.Logger
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}

	return &Store{
		db:        db,
		opTimeout: opts.OpTimeout,
		log:       log.WithField("component", "store"),
		sq:        squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

func withDefaults(opts Options) Options {
	if opts.BusyTimeout <= 0 {
		opts.BusyTimeout = DefaultBusyTimeout
	}

	if opts.OpTimeout <= 0 {
		opts.OpTimeout = DefaultOpTimeout
	}

	if opts.LockTimeout <= 0 {
		opts.LockTimeout = DefaultLockTimeout
	}

	return opts
}

// touch creates path if it does not exist, leaving existing content alone.
func touch(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600) //nolint:gosec // path is from config
	if err != nil {
		return fmt.Errorf("create database file: %w", err)
	}

	return file.Close()
}

// Path returns the database file path, empty for stores not opened from disk.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}

	return s.path
}

// Close releases the connection and the process lock. Safe to call on a nil
// store and more than once.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	closeErr := s.db.Close()
	s.db = nil

	lockErr := s.lock.release()
	s.lock = nil

	err := errors.Join(closeErr, lockErr)
	if err != nil {
		return unavailable("close", err)
	}

	s.log.Debug("store closed")

	return nil
}

// EnsureSchema creates the Task and List tables if they are missing. It is
// safe to call on every start and never alters existing rows.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const op = "ensure schema"

	ctx, cancel, err := s.begin(ctx, op)
	if err != nil {
		return err
	}
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return unavailable(op, fmt.Errorf("begin: %w", err))
	}

	for i, stmt := range schemaStatements {
		_, err = tx.ExecContext(ctx, stmt)
		if err != nil {
			_ = tx.Rollback()

			return unavailable(op, fmt.Errorf("schema statement %d: %w", i+1, err))
		}
	}

	err = tx.Commit()
	if err != nil {
		return unavailable(op, fmt.Errorf("commit: %w", err))
	}

	s.log.WithField("op", op).Debug("schema ready")

	return nil
}

// begin checks the store is open and bounds ctx by the per-call timeout.
func (s *Store) begin(ctx context.Context, op string) (context.Context, context.CancelFunc, error) {
	if ctx == nil {
		return nil, nil, unavailable(op, errors.New("context is nil"))
	}

	if s == nil || s.db == nil {
		return nil, nil, unavailable(op, errStoreClosed)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)

	return ctx, cancel, nil
}
