package storage

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/annolab/margin/errors"
	_ "modernc.org/sqlite"
)

const documentsSchema = `
CREATE TABLE IF NOT EXISTS documents (
	path    TEXT PRIMARY KEY,
	content BLOB NOT NULL,
	updated INTEGER NOT NULL
);`

// SQLite stores documents as rows in a single-table SQLite database. It
// satisfies the same blob contract as File for hosts that prefer one
// database file over loose JSON files.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at dbPath.
func OpenSQLite(dbPath string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, errors.PersistenceFailed(err, dbPath)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.PersistenceFailed(err, dbPath)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, errors.PersistenceFailed(err, dbPath)
		}
	}

	if _, err := db.Exec(documentsSchema); err != nil {
		_ = db.Close()
		return nil, errors.PersistenceFailed(err, dbPath)
	}

	return &SQLite{db: db}, nil
}

// Load returns the document stored under path.
func (s *SQLite) Load(path string) ([]byte, error) {
	var content []byte
	err := s.db.QueryRow("SELECT content FROM documents WHERE path = ?", path).Scan(&content)
	if err == sql.ErrNoRows {
		return nil, notFound(path)
	}
	if err != nil {
		return nil, errors.PersistenceFailed(err, path)
	}
	return content, nil
}

// Save upserts the document stored under path.
func (s *SQLite) Save(path string, content []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO documents (path, content, updated) VALUES (?, ?, unixepoch())
		 ON CONFLICT(path) DO UPDATE SET content = excluded.content, updated = excluded.updated`,
		path, content,
	)
	if err != nil {
		return errors.PersistenceFailed(err, path)
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
