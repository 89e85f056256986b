package storage

import (
	"database/sql"
	"log"
)

// sqlBackend implements Backend over any database/sql driver whose dialect
// supports a simple two-column key/value table. The three concrete
// constructors (SQLite, MySQL, Postgres) differ only in driver name, DSN,
// and the upsert statement's placeholder/conflict syntax.
type sqlBackend struct {
	db        *sql.DB
	upsertSQL string
	selectSQL string
	deleteSQL string
}

func (s *sqlBackend) Get(name string) (string, bool) {
	var v string
	err := s.db.QueryRow(s.selectSQL, name).Scan(&v)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("[storage] unable to read key %q: %v", name, err)
		}
		return "", false
	}
	return v, true
}

func (s *sqlBackend) Put(name string, value string) bool {
	if _, err := s.db.Exec(s.upsertSQL, name, value); err != nil {
		log.Printf("[storage] unable to write key %q: %v", name, err)
		return false
	}
	return true
}

// Remove deletes the keyed entry and logs an informational message
// regardless of whether the key existed.
func (s *sqlBackend) Remove(name string) {
	if _, err := s.db.Exec(s.deleteSQL, name); err != nil {
		log.Printf("[storage] unable to remove key %q: %v", name, err)
		return
	}
	log.Printf("[storage] removed key %q", name)
}

func (s *sqlBackend) Close() error {
	return s.db.Close()
}

const createTableDDL = `CREATE TABLE IF NOT EXISTS shared_objects (
	name TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`
