// Package store provides SQLite-backed persistence for essays, findings,
// the edit-history ledger, and ignore-word lists.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS essays (
	id                TEXT PRIMARY KEY,
	owner_id          TEXT NOT NULL,
	title             TEXT NOT NULL DEFAULT '',
	original_content  TEXT NOT NULL,
	processed_content TEXT NOT NULL,
	file_name         TEXT NOT NULL DEFAULT '',
	file_type         TEXT NOT NULL DEFAULT '',
	status            TEXT NOT NULL,
	created_at        DATETIME NOT NULL,
	updated_at        DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_essays_owner ON essays(owner_id, created_at);

CREATE TABLE IF NOT EXISTS grammar_findings (
	id                    TEXT PRIMARY KEY,
	essay_id              TEXT NOT NULL REFERENCES essays(id) ON DELETE CASCADE,
	start_position        INTEGER NOT NULL,
	end_position          INTEGER NOT NULL,
	error_text            TEXT NOT NULL,
	rule_id               TEXT NOT NULL,
	message               TEXT NOT NULL,
	suggested_replacement TEXT,
	severity              TEXT NOT NULL,
	fixed                 INTEGER NOT NULL DEFAULT 0,
	created_at            DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_grammar_findings_essay ON grammar_findings(essay_id);

CREATE TABLE IF NOT EXISTS plagiarism_findings (
	id               TEXT PRIMARY KEY,
	essay_id         TEXT NOT NULL REFERENCES essays(id) ON DELETE CASCADE,
	matched_text     TEXT NOT NULL,
	source_id        TEXT NOT NULL,
	source_name      TEXT NOT NULL,
	source_url       TEXT NOT NULL DEFAULT '',
	similarity_score REAL NOT NULL,
	start_position   INTEGER NOT NULL,
	end_position     INTEGER NOT NULL,
	created_at       DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_plagiarism_findings_essay ON plagiarism_findings(essay_id);

CREATE TABLE IF NOT EXISTS edit_history (
	id                 TEXT PRIMARY KEY,
	essay_id           TEXT NOT NULL REFERENCES essays(id) ON DELETE CASCADE,
	previous_content   TEXT NOT NULL,
	new_content        TEXT NOT NULL,
	change_description TEXT NOT NULL,
	change_type        TEXT NOT NULL,
	created_at         DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_edit_history_essay ON edit_history(essay_id, created_at);

CREATE TABLE IF NOT EXISTS ignore_lists (
	id         TEXT PRIMARY KEY,
	owner_id   TEXT NOT NULL,
	name       TEXT NOT NULL DEFAULT '',
	words      TEXT NOT NULL DEFAULT '',
	is_public  INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ignore_lists_owner ON ignore_lists(owner_id, created_at);
`

// DB wraps a sql.DB with store-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
