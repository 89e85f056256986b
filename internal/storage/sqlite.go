package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // pure-Go sqlite driver, no cgo toolchain required
)

// NewSQLiteBackend opens (creating if needed) a single-file SQLite database
// at path, the default storage backend for a standalone player instance --
// the direct functional replacement for desktop/src/storage.rs's
// DiskStorageBackend, but keyed storage instead of one file per key.
func NewSQLiteBackend(path string) (Backend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite %q: %w", path, err)
	}
	if _, err := db.Exec(createTableDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: create table: %w", err)
	}
	return &sqlBackend{
		db:        db,
		upsertSQL: `INSERT INTO shared_objects(name, value) VALUES (?, ?) ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
		selectSQL: `SELECT value FROM shared_objects WHERE name = ?`,
		deleteSQL: `DELETE FROM shared_objects WHERE name = ?`,
	}, nil
}
