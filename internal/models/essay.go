// Package models defines the domain types for Veritext.
package models

import "time"

// EssayStatus tracks an essay's position in the review pipeline.
type EssayStatus string

const (
	StatusUploaded          EssayStatus = "UPLOADED"
	StatusProcessing        EssayStatus = "PROCESSING"
	StatusGrammarChecked    EssayStatus = "GRAMMAR_CHECKED"
	StatusPlagiarismChecked EssayStatus = "PLAGIARISM_CHECKED"
	StatusCompleted         EssayStatus = "COMPLETED"
	StatusError             EssayStatus = "ERROR"
)

// Essay is a submitted document under review. OriginalContent is captured at
// ingestion and never mutated; ProcessedContent is the working copy that
// content edits apply to.
type Essay struct {
	ID               string      `json:"id"`
	OwnerID          string      `json:"owner_id"`
	Title            string      `json:"title"`
	OriginalContent  string      `json:"original_content"`
	ProcessedContent string      `json:"processed_content"`
	FileName         string      `json:"file_name"`
	FileType         string      `json:"file_type"`
	Status           EssayStatus `json:"status"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// Severity is the triage level derived from a grammar rule's category.
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// GrammarFinding is one detected grammar/style issue tied to a character span
// in the essay's original content.
type GrammarFinding struct {
	ID                   string    `json:"id"`
	EssayID              string    `json:"essay_id"`
	StartPosition        int       `json:"start_position"`
	EndPosition          int       `json:"end_position"`
	ErrorText            string    `json:"error_text"`
	RuleID               string    `json:"rule_id"`
	Message              string    `json:"message"`
	SuggestedReplacement string    `json:"suggested_replacement,omitempty"`
	Severity             Severity  `json:"severity"`
	Fixed                bool      `json:"fixed"`
	CreatedAt            time.Time `json:"created_at"`
}

// PlagiarismFinding is one chunk of essay text that scored above the
// similarity threshold against a reference text.
type PlagiarismFinding struct {
	ID              string    `json:"id"`
	EssayID         string    `json:"essay_id"`
	MatchedText     string    `json:"matched_text"`
	SourceID        string    `json:"source_id"`
	SourceName      string    `json:"source_name"`
	SourceURL       string    `json:"source_url,omitempty"`
	SimilarityScore float64   `json:"similarity_score"`
	StartPosition   int       `json:"start_position"`
	EndPosition     int       `json:"end_position"`
	CreatedAt       time.Time `json:"created_at"`
}

// ChangeType classifies an edit-history entry.
type ChangeType string

const (
	ChangeGrammarFix       ChangeType = "GRAMMAR_FIX"
	ChangeSpellingFix      ChangeType = "SPELLING_FIX"
	ChangeStyleImprovement ChangeType = "STYLE_IMPROVEMENT"
	ChangePlagiarismFix    ChangeType = "PLAGIARISM_FIX"
	ChangeManualEdit       ChangeType = "MANUAL_EDIT"
	ChangeAISuggestion     ChangeType = "AI_SUGGESTION"
)

// EditHistoryEntry is one immutable record in the append-only content ledger.
// Entries are never updated or deleted; the ledger is the sole authoritative
// history of content lineage.
type EditHistoryEntry struct {
	ID                string     `json:"id"`
	EssayID           string     `json:"essay_id"`
	PreviousContent   string     `json:"previous_content"`
	NewContent        string     `json:"new_content"`
	ChangeDescription string     `json:"change_description"`
	ChangeType        ChangeType `json:"change_type"`
	CreatedAt         time.Time  `json:"created_at"`
}

// IgnoreWordList is an owner-scoped custom dictionary fed into grammar checks.
// Words are stored as a comma-delimited token string.
type IgnoreWordList struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Words     string    `json:"words"`
	IsPublic  bool      `json:"is_public"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
