package main

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// RegistryStore keeps known devices in SQLite. Insertion order is lookup order.
type RegistryStore struct {
	db *sql.DB
}

func OpenRegistryStore(dbPath string) (*RegistryStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS known_devices (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		ip TEXT NOT NULL,
		mac TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &RegistryStore{db: db}, nil
}

func (s *RegistryStore) Close() error {
	return s.db.Close()
}

// Add validates and appends an entry. Duplicates are allowed; the earlier row wins on lookup.
func (s *RegistryStore) Add(e RegistryEntry) (RegistryEntry, error) {
	n, err := normalizeEntry(e)
	if err != nil {
		return e, err
	}

	_, err = s.db.Exec(
		"INSERT INTO known_devices(name, ip, mac) VALUES (?, ?, ?)",
		n.Name, n.IP, n.MAC,
	)
	if err != nil {
		return n, fmt.Errorf("insert known device: %w", err)
	}
	return n, nil
}

func (s *RegistryStore) List() ([]RegistryEntry, error) {
	rows, err := s.db.Query("SELECT name, ip, mac FROM known_devices ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query known devices: %w", err)
	}
	defer rows.Close()

	var out []RegistryEntry
	for rows.Next() {
		var e RegistryEntry
		if err := rows.Scan(&e.Name, &e.IP, &e.MAC); err != nil {
			return nil, fmt.Errorf("scan known device: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
