package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/veritext/veritext/internal/apperr"
	"github.com/veritext/veritext/internal/models"
)

// InsertIgnoreList persists a new ignore-word list.
func (db *DB) InsertIgnoreList(l *models.IgnoreWordList) error {
	_, err := db.conn.Exec(`
		INSERT INTO ignore_lists (id, owner_id, name, words, is_public, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, l.ID, l.OwnerID, l.Name, l.Words, l.IsPublic, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: insert ignore list: %w", err)
	}
	return nil
}

// GetIgnoreList returns the list with the given id or apperr.ErrNotFound.
func (db *DB) GetIgnoreList(id string) (*models.IgnoreWordList, error) {
	row := db.conn.QueryRow(`
		SELECT id, owner_id, name, words, is_public, created_at, updated_at
		FROM ignore_lists WHERE id = ?
	`, id)
	var l models.IgnoreWordList
	err := row.Scan(&l.ID, &l.OwnerID, &l.Name, &l.Words, &l.IsPublic, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("store: get ignore list: %w", err)
	}
	return &l, nil
}

// ListIgnoreListsByOwner returns the owner's lists, newest first.
func (db *DB) ListIgnoreListsByOwner(ownerID string) ([]models.IgnoreWordList, error) {
	rows, err := db.conn.Query(`
		SELECT id, owner_id, name, words, is_public, created_at, updated_at
		FROM ignore_lists WHERE owner_id = ?
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("store: list ignore lists: %w", err)
	}
	defer rows.Close()

	var out []models.IgnoreWordList
	for rows.Next() {
		var l models.IgnoreWordList
		if err := rows.Scan(&l.ID, &l.OwnerID, &l.Name, &l.Words, &l.IsPublic, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("store: scan ignore list: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// UpdateIgnoreList rewrites a list's name, words, and visibility flag.
func (db *DB) UpdateIgnoreList(l *models.IgnoreWordList) error {
	res, err := db.conn.Exec(`
		UPDATE ignore_lists SET name = ?, words = ?, is_public = ?, updated_at = ? WHERE id = ?
	`, l.Name, l.Words, l.IsPublic, time.Now().UTC(), l.ID)
	if err != nil {
		return fmt.Errorf("store: update ignore list: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// DeleteIgnoreList removes a list.
func (db *DB) DeleteIgnoreList(id string) error {
	res, err := db.conn.Exec(`DELETE FROM ignore_lists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete ignore list: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
