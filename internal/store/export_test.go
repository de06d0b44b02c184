package store

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// NewFromDB wraps an already open handle, e.g. a sqlmock connection.
// No lock is taken and no pragmas are applied.
func NewFromDB(db *sql.DB, opts Options) *Store {
	return newStore(sqlx.NewDb(db, "sqlite3"), opts)
}
