package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/veritext/veritext/internal/models"
	"github.com/veritext/veritext/internal/pipeline"
)

// EssayDetail is the full essay response type (aliased from the domain layer).
type EssayDetail = pipeline.EssayDetail

// EssayListResponse wraps an owner's essays.
type EssayListResponse struct {
	Essays []models.Essay `json:"essays"`
	Total  int            `json:"total"`
}

// UpdateContentRequest is the request body for a content edit.
type UpdateContentRequest struct {
	Content     string `json:"content"`
	Description string `json:"description"`
}

// Validate validates the content edit request.
func (r UpdateContentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required),
	)
}

// GrammarFindingsResponse wraps an essay's grammar findings.
type GrammarFindingsResponse struct {
	Findings []models.GrammarFinding `json:"findings"`
	Total    int                     `json:"total"`
}

// PlagiarismFindingsResponse wraps an essay's plagiarism findings.
type PlagiarismFindingsResponse struct {
	Findings []models.PlagiarismFinding `json:"findings"`
	Total    int                        `json:"total"`
}

// HistoryResponse wraps an essay's ledger entries, most recent first.
type HistoryResponse struct {
	Entries []models.EditHistoryEntry `json:"entries"`
	Total   int                       `json:"total"`
}

// IgnoreListRequest is the request body for creating or updating an
// ignore-word list.
type IgnoreListRequest struct {
	Name     string `json:"name"`
	Words    string `json:"words"`
	IsPublic bool   `json:"is_public"`
}

// Validate validates the ignore-list request.
func (r IgnoreListRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Words, validation.Required),
	)
}

// VisibilityRequest toggles an ignore list's public flag.
type VisibilityRequest struct {
	IsPublic bool `json:"is_public"`
}

// IgnoreListResponse wraps an owner's ignore lists.
type IgnoreListResponse struct {
	Lists []models.IgnoreWordList `json:"lists"`
	Total int                     `json:"total"`
}
