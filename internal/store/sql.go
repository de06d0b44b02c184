package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

// openSqlite opens the single long-lived connection and applies pragmas.
func openSqlite(ctx context.Context, path string, busyTimeout time.Duration) (*sqlx.DB, error) {
	if path == "" {
		return nil, errors.New("open sqlite: path is empty")
	}

	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Per-connection PRAGMAs only stick if there is exactly one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	err = db.PingContext(ctx)
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	err = applyPragmas(ctx, db, busyTimeout)
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	return db, nil
}

// applyPragmas configures the SQLite connection using a single batch statement.
// busy_timeout bounds how long a locked database file blocks a statement
// before SQLITE_BUSY is returned.
func applyPragmas(ctx context.Context, db *sqlx.DB, busyTimeout time.Duration) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		PRAGMA busy_timeout = %d;
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = FULL;
	`, busyTimeout.Milliseconds()))
	if err != nil {
		return fmt.Errorf("apply pragmas: %w", err)
	}

	return nil
}
