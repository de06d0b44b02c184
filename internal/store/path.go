package store

import "path/filepath"

// FileName is the database file name inside the data directory.
const FileName = "db.sqlite"

// PathIn returns the database path inside dataDir.
func PathIn(dataDir string) string {
	return filepath.Join(dataDir, FileName)
}
