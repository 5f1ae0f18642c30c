// Package storage handles persistence: the SQLite conversion journal and the
// scratch directory used by external processes.
package storage

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // Blank import: registers the SQLite driver.
)

// The journal records outcomes only. Sticker bytes are never persisted.
const schema = `
CREATE TABLE IF NOT EXISTS conversions (
    id            TEXT PRIMARY KEY,
    operation     TEXT NOT NULL,
    source_kind   TEXT NOT NULL DEFAULT '',
    container     TEXT NOT NULL DEFAULT '',
    input_bytes   INTEGER NOT NULL DEFAULT 0,
    output_bytes  INTEGER NOT NULL DEFAULT 0,
    status        TEXT NOT NULL,
    error_message TEXT,
    duration_ms   INTEGER NOT NULL DEFAULT 0,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_conversions_status ON conversions(status);
CREATE INDEX IF NOT EXISTS idx_conversions_kind ON conversions(source_kind);
CREATE INDEX IF NOT EXISTS idx_conversions_created ON conversions(created_at);
`

// NewDatabase creates a new SQLite connection and runs migrations.
// The constructor creates the resource AND validates it (Ping).
func NewDatabase(dbPath string) (*sqlx.DB, error) {
	// WAL allows concurrent reads while writing; busy_timeout waits on lock
	// contention instead of failing immediately.
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000", dbPath)

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Ping actually opens the connection (Open is lazy in database/sql)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// SQLite performs best with a single writer connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}
