// Package sqlite implements the job archive on SQLite.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/rashkid-n/datagenesis-53/internal/log"
)

// schema is applied on open; the statement is idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	progress INTEGER NOT NULL DEFAULT 0,
	message TEXT NOT NULL DEFAULT '',
	error_message TEXT,
	result TEXT,
	started_at INTEGER,
	completed_at INTEGER,
	archived_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_jobs_archived_at ON jobs(archived_at DESC);
`

// NewDB opens (creating if needed) the archive database at path and
// applies the schema. The parent directory is created with 0700.
func NewDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		log.ErrorErr(log.CatArchive, "failed to open archive database", err, "path", path)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging archive database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying archive schema: %w", err)
	}

	log.Info(log.CatArchive, "archive database ready", "path", path)
	return db, nil
}

// NewMemoryDB opens an in-memory archive database. Used by tests.
func NewMemoryDB() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
