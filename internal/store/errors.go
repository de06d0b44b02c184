package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// Error kinds. Every error returned by [Store] matches exactly one of these
// with [errors.Is].
var (
	// ErrStorageUnavailable reports open, I/O, lock, timeout or schema
	// failures. The attempted operation did not happen.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrConstraintViolation reports a duplicate key on insert.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrNotFound reports a lookup for a row that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrMalformedStoredValue reports a stored date or color that fails to
	// parse. The row exists but is corrupt.
	ErrMalformedStoredValue = errors.New("malformed stored value")
)

var errStoreClosed = errors.New("store is not open")

// Error is the uniform error type returned by all public store APIs.
//
// The message reads "<op>: <kind>: <cause> (table=X key=Y)":
//
//	insert task: constraint violation: UNIQUE constraint failed: Task.name, Task.dueDate (table=Task key=Buy milk@2024-03-15)
//
// Use [errors.Is] with the Err* kinds and [errors.As] to read Op, Table and Key.
type Error struct {
	Op    string // Op names the failed operation, e.g. "insert task".
	Table string // Table is the SQL table involved, empty for connection-level ops.
	Key   string // Key identifies the row (list name or task key) when known.
	Kind  error  // Kind is one of the Err* sentinels.
	Err   error  // Err is the underlying cause, often a driver error.
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}

	msg := e.Op + ": " + e.Kind.Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	switch {
	case e.Table != "" && e.Key != "":
		msg += fmt.Sprintf(" (table=%s key=%s)", e.Table, e.Key)
	case e.Table != "":
		msg += fmt.Sprintf(" (table=%s)", e.Table)
	}

	return msg
}

// Unwrap exposes both the kind and the cause to [errors.Is] and [errors.As].
func (e *Error) Unwrap() []error {
	if e == nil {
		return nil
	}

	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

// KindOf returns the Err* kind carried by err, or nil if err did not come
// from this package.
func KindOf(err error) error {
	var storeErr *Error
	if errors.As(err, &storeErr) {
		return storeErr.Kind
	}

	return nil
}

// wrapErr classifies a driver error. sql.ErrNoRows maps to ErrNotFound only
// for single-row lookups, which pass it through explicitly.
func wrapErr(op, table, key string, err error) error {
	if err == nil {
		return nil
	}

	var existing *Error
	if errors.As(err, &existing) {
		return err
	}

	return &Error{Op: op, Table: table, Key: key, Kind: classify(err), Err: err}
}

func classify(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return ErrConstraintViolation
	}

	return ErrStorageUnavailable
}

func notFound(op, table, key string) error {
	return &Error{Op: op, Table: table, Key: key, Kind: ErrNotFound, Err: sql.ErrNoRows}
}

func malformed(op, table, key string, err error) error {
	return &Error{Op: op, Table: table, Key: key, Kind: ErrMalformedStoredValue, Err: err}
}

func unavailable(op string, err error) error {
	return &Error{Op: op, Kind: ErrStorageUnavailable, Err: err}
}
