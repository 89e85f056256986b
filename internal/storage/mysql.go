package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// NewMySQLBackend opens a shared-object store backed by a MySQL/MariaDB
// instance, for deployments where multiple player instances need to share
// the same named shared objects.
func NewMySQLBackend(dsn string) (Backend, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open mysql: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: ping mysql: %w", err)
	}
	if _, err := db.Exec(createTableDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: create table: %w", err)
	}
	return &sqlBackend{
		db:        db,
		upsertSQL: `INSERT INTO shared_objects(name, value) VALUES (?, ?) ON DUPLICATE KEY UPDATE value = VALUES(value)`,
		selectSQL: `SELECT value FROM shared_objects WHERE name = ?`,
		deleteSQL: `DELETE FROM shared_objects WHERE name = ?`,
	}, nil
}
