package store_test

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/calvinalkan/tuimorrow/internal/store"
	"github.com/calvinalkan/tuimorrow/internal/task"
)

// openTestStore opens a store in a fresh temp dir with the schema applied.
func openTestStore(t *testing.T) *store.Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data", store.FileName)

	s, err := store.Open(t.Context(), store.Options{Path: path, LockTimeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	t.Cleanup(func() { _ = s.Close() })

	err = s.EnsureSchema(t.Context())
	if err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	return s
}

// openRaw opens a second, plain connection to the store's file so tests can
// plant rows the store itself would never write.
func openRaw(t *testing.T, s *store.Store) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", s.Path())
	if err != nil {
		t.Fatalf("open raw sqlite: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	return db
}

func mustExec(t *testing.T, db *sql.DB, query string, args ...any) {
	t.Helper()

	_, err := db.Exec(query, args...)
	if err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()

	row := db.QueryRow(`
		SELECT COUNT(*)
		FROM sqlite_master
		WHERE type = 'table' AND name = ?`, name)

	var count int

	err := row.Scan(&count)
	if err != nil {
		t.Fatalf("check table %s: %v", name, err)
	}

	return count > 0
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var count int

	err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count)
	if err != nil {
		t.Fatalf("count %s: %v", table, err)
	}

	return count
}

func day(year int, month time.Month, d int) task.Date {
	return task.NewDate(year, month, d)
}

func strPtr(s string) *string {
	return &s
}
