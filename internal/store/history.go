package store

import (
	"database/sql"
	"fmt"

	"github.com/veritext/veritext/internal/models"
)

// The edit-history ledger is append-only: this file deliberately exposes no
// UPDATE or DELETE for edit_history rows. Entries disappear only when their
// essay is deleted, via the cascade.

// AppendHistory appends one immutable entry to the ledger.
func (db *DB) AppendHistory(entry *models.EditHistoryEntry) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := insertHistory(tx, entry); err != nil {
		return err
	}
	return tx.Commit()
}

// ListHistory returns all ledger entries for an essay, most recent first.
func (db *DB) ListHistory(essayID string) ([]models.EditHistoryEntry, error) {
	rows, err := db.conn.Query(`
		SELECT id, essay_id, previous_content, new_content, change_description,
			change_type, created_at
		FROM edit_history WHERE essay_id = ?
		ORDER BY created_at DESC, rowid DESC
	`, essayID)
	if err != nil {
		return nil, fmt.Errorf("store: list history: %w", err)
	}
	defer rows.Close()

	var out []models.EditHistoryEntry
	for rows.Next() {
		var e models.EditHistoryEntry
		var changeType string
		if err := rows.Scan(&e.ID, &e.EssayID, &e.PreviousContent, &e.NewContent,
			&e.ChangeDescription, &changeType, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan history entry: %w", err)
		}
		e.ChangeType = models.ChangeType(changeType)
		out = append(out, e)
	}
	return out, rows.Err()
}

func insertHistory(tx *sql.Tx, entry *models.EditHistoryEntry) error {
	_, err := tx.Exec(`
		INSERT INTO edit_history (id, essay_id, previous_content, new_content,
			change_description, change_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.EssayID, entry.PreviousContent, entry.NewContent,
		entry.ChangeDescription, string(entry.ChangeType), entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("store: append history: %w", err)
	}
	return nil
}
