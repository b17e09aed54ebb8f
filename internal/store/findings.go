package store

import (
	"database/sql"
	"fmt"

	"github.com/veritext/veritext/internal/apperr"
	"github.com/veritext/veritext/internal/models"
)

// CommitGrammarStage persists the grammar stage output as one durable unit:
// the findings and the status transition commit together, so a crash between
// stages leaves the essay in a consistent, resumable state.
func (db *DB) CommitGrammarStage(essayID string, findings []models.GrammarFinding, status models.EssayStatus) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if len(findings) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO grammar_findings (id, essay_id, start_position, end_position,
				error_text, rule_id, message, suggested_replacement, severity, fixed, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("store: prepare grammar insert: %w", err)
		}
		defer stmt.Close()
		for _, f := range findings {
			var suggestion sql.NullString
			if f.SuggestedReplacement != "" {
				suggestion = sql.NullString{String: f.SuggestedReplacement, Valid: true}
			}
			if _, err := stmt.Exec(f.ID, f.EssayID, f.StartPosition, f.EndPosition,
				f.ErrorText, f.RuleID, f.Message, suggestion, string(f.Severity), f.Fixed, f.CreatedAt); err != nil {
				return fmt.Errorf("store: insert grammar finding: %w", err)
			}
		}
	}

	if err := updateStatusTx(tx, essayID, status); err != nil {
		return err
	}
	return tx.Commit()
}

// CommitPlagiarismStage persists the plagiarism stage output and the status
// transition in one transaction.
func (db *DB) CommitPlagiarismStage(essayID string, findings []models.PlagiarismFinding, status models.EssayStatus) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if len(findings) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO plagiarism_findings (id, essay_id, matched_text, source_id,
				source_name, source_url, similarity_score, start_position, end_position, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("store: prepare plagiarism insert: %w", err)
		}
		defer stmt.Close()
		for _, f := range findings {
			if _, err := stmt.Exec(f.ID, f.EssayID, f.MatchedText, f.SourceID,
				f.SourceName, f.SourceURL, f.SimilarityScore, f.StartPosition, f.EndPosition, f.CreatedAt); err != nil {
				return fmt.Errorf("store: insert plagiarism finding: %w", err)
			}
		}
	}

	if err := updateStatusTx(tx, essayID, status); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteFindings removes all findings for an essay. Called before a reprocess
// run so superseded findings never accumulate.
func (db *DB) DeleteFindings(essayID string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM grammar_findings WHERE essay_id = ?`, essayID); err != nil {
		return fmt.Errorf("store: delete grammar findings: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM plagiarism_findings WHERE essay_id = ?`, essayID); err != nil {
		return fmt.Errorf("store: delete plagiarism findings: %w", err)
	}
	return tx.Commit()
}

// ListGrammarFindings returns all grammar findings for an essay in insertion order.
func (db *DB) ListGrammarFindings(essayID string) ([]models.GrammarFinding, error) {
	rows, err := db.conn.Query(`
		SELECT id, essay_id, start_position, end_position, error_text, rule_id,
			message, suggested_replacement, severity, fixed, created_at
		FROM grammar_findings WHERE essay_id = ?
		ORDER BY start_position, created_at
	`, essayID)
	if err != nil {
		return nil, fmt.Errorf("store: list grammar findings: %w", err)
	}
	defer rows.Close()

	var out []models.GrammarFinding
	for rows.Next() {
		var f models.GrammarFinding
		var suggestion sql.NullString
		var severity string
		if err := rows.Scan(&f.ID, &f.EssayID, &f.StartPosition, &f.EndPosition,
			&f.ErrorText, &f.RuleID, &f.Message, &suggestion, &severity, &f.Fixed, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan grammar finding: %w", err)
		}
		f.SuggestedReplacement = suggestion.String
		f.Severity = models.Severity(severity)
		out = append(out, f)
	}
	return out, rows.Err()
}

// ListPlagiarismFindings returns plagiarism findings for an essay with a score
// strictly greater than minScore, ordered by position.
func (db *DB) ListPlagiarismFindings(essayID string, minScore float64) ([]models.PlagiarismFinding, error) {
	rows, err := db.conn.Query(`
		SELECT id, essay_id, matched_text, source_id, source_name, source_url,
			similarity_score, start_position, end_position, created_at
		FROM plagiarism_findings
		WHERE essay_id = ? AND similarity_score > ?
		ORDER BY start_position, similarity_score DESC
	`, essayID, minScore)
	if err != nil {
		return nil, fmt.Errorf("store: list plagiarism findings: %w", err)
	}
	defer rows.Close()

	var out []models.PlagiarismFinding
	for rows.Next() {
		var f models.PlagiarismFinding
		if err := rows.Scan(&f.ID, &f.EssayID, &f.MatchedText, &f.SourceID, &f.SourceName,
			&f.SourceURL, &f.SimilarityScore, &f.StartPosition, &f.EndPosition, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan plagiarism finding: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// MarkFindingFixed sets fixed = true on a grammar finding. Idempotent: marking
// an already-fixed finding succeeds; an unknown id is ErrNotFound.
func (db *DB) MarkFindingFixed(findingID string) error {
	res, err := db.conn.Exec(`UPDATE grammar_findings SET fixed = 1 WHERE id = ?`, findingID)
	if err != nil {
		return fmt.Errorf("store: mark fixed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func updateStatusTx(tx *sql.Tx, essayID string, status models.EssayStatus) error {
	res, err := tx.Exec(`UPDATE essays SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(status), essayID)
	if err != nil {
		return fmt.Errorf("store: update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
