package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// NewPostgresBackend opens a shared-object store backed by a Postgres
// instance, the other shared-deployment option alongside MySQL.
func NewPostgresBackend(dsn string) (Backend, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: ping postgres: %w", err)
	}
	if _, err := db.Exec(createTableDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: create table: %w", err)
	}
	return &sqlBackend{
		db:        db,
		upsertSQL: `INSERT INTO shared_objects(name, value) VALUES ($1, $2) ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
		selectSQL: `SELECT value FROM shared_objects WHERE name = $1`,
		deleteSQL: `DELETE FROM shared_objects WHERE name = $1`,
	}, nil
}
