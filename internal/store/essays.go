package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/veritext/veritext/internal/apperr"
	"github.com/veritext/veritext/internal/models"
)

// InsertEssay persists a new essay record.
func (db *DB) InsertEssay(e *models.Essay) error {
	_, err := db.conn.Exec(`
		INSERT INTO essays (id, owner_id, title, original_content, processed_content,
			file_name, file_type, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.OwnerID, e.Title, e.OriginalContent, e.ProcessedContent,
		e.FileName, e.FileType, string(e.Status), e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: insert essay: %w", err)
	}
	return nil
}

// GetEssay returns the essay with the given id or apperr.ErrNotFound.
func (db *DB) GetEssay(id string) (*models.Essay, error) {
	row := db.conn.QueryRow(`
		SELECT id, owner_id, title, original_content, processed_content,
			file_name, file_type, status, created_at, updated_at
		FROM essays WHERE id = ?
	`, id)
	e, err := scanEssay(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("store: get essay: %w", err)
	}
	return e, nil
}

// ListEssaysByOwner returns the owner's essays, newest first.
func (db *DB) ListEssaysByOwner(ownerID string) ([]models.Essay, error) {
	rows, err := db.conn.Query(`
		SELECT id, owner_id, title, original_content, processed_content,
			file_name, file_type, status, created_at, updated_at
		FROM essays WHERE owner_id = ?
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("store: list essays: %w", err)
	}
	defer rows.Close()

	var out []models.Essay
	for rows.Next() {
		e, err := scanEssay(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan essay: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// UpdateEssayStatus sets the essay status and bumps updated_at.
func (db *DB) UpdateEssayStatus(id string, status models.EssayStatus) error {
	res, err := db.conn.Exec(`UPDATE essays SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("store: update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// UpdateEssayContent rewrites processed content and appends the ledger entry
// in one transaction, so the content and its lineage can never diverge.
func (db *DB) UpdateEssayContent(id, newContent string, entry *models.EditHistoryEntry) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	res, err := tx.Exec(`UPDATE essays SET processed_content = ?, updated_at = ? WHERE id = ?`,
		newContent, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("store: update content: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	if err := insertHistory(tx, entry); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteEssay removes an essay; findings and history cascade via foreign keys.
func (db *DB) DeleteEssay(id string) error {
	res, err := db.conn.Exec(`DELETE FROM essays WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete essay: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEssay(r rowScanner) (*models.Essay, error) {
	var e models.Essay
	var status string
	err := r.Scan(&e.ID, &e.OwnerID, &e.Title, &e.OriginalContent, &e.ProcessedContent,
		&e.FileName, &e.FileType, &status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.Status = models.EssayStatus(status)
	return &e, nil
}
