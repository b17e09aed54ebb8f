// Package pipeline drives essays through the review pipeline and exposes the
// caller-facing operations over essays, findings, and the edit ledger.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/veritext/veritext/internal/apperr"
	"github.com/veritext/veritext/internal/checksum"
	"github.com/veritext/veritext/internal/corpus"
	"github.com/veritext/veritext/internal/extract"
	"github.com/veritext/veritext/internal/grammar"
	"github.com/veritext/veritext/internal/ignorelist"
	"github.com/veritext/veritext/internal/models"
	"github.com/veritext/veritext/internal/plagiarism"
	"github.com/veritext/veritext/internal/storage"
	"github.com/veritext/veritext/internal/store"
)

// Stage names carried by StageError.
const (
	StageIgnoreWords     = "ignore_words"
	StageResetFindings   = "reset_findings"
	StageGrammarCheck    = "grammar_check"
	StagePlagiarismCheck = "plagiarism_check"
	StageComplete        = "complete"
)

// EventFunc receives essay lifecycle events. kind is one of "processing",
// "stage", "completed", "error", "updated", "deleted".
type EventFunc func(kind, essayID string, status models.EssayStatus)

// Service orchestrates upload, processing, and content edits.
type Service struct {
	db           store.Store
	files        storage.Provider
	extractor    extract.Extractor
	engine       grammar.Engine
	detector     *plagiarism.Detector
	corpus       corpus.Provider
	lists        *ignorelist.Service
	stageTimeout time.Duration
	notify       EventFunc
}

// NewService wires the pipeline's collaborators together. notify may be nil.
func NewService(
	db store.Store,
	files storage.Provider,
	extractor extract.Extractor,
	engine grammar.Engine,
	detector *plagiarism.Detector,
	refs corpus.Provider,
	lists *ignorelist.Service,
	stageTimeout time.Duration,
	notify EventFunc,
) *Service {
	if notify == nil {
		notify = func(string, string, models.EssayStatus) {}
	}
	return &Service{
		db:           db,
		files:        files,
		extractor:    extractor,
		engine:       engine,
		detector:     detector,
		corpus:       refs,
		lists:        lists,
		stageTimeout: stageTimeout,
		notify:       notify,
	}
}

// EssayDetail is an essay enriched with a checksum of its processed content,
// used for optimistic concurrency on edits.
type EssayDetail struct {
	models.Essay
	Checksum string `json:"checksum"`
}

// Upload validates and ingests a document: extracts its text, retains the
// raw file, creates the essay in UPLOADED status, and records the initial
// ledger entry. Validation failures leave no persisted state behind.
func (s *Service) Upload(ctx context.Context, ownerID, fileName, declaredType, title string, data []byte) (*EssayDetail, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", apperr.ErrValidation)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", apperr.ErrValidation)
	}
	if declaredType == "" {
		declaredType = extract.TypeFromFileName(fileName)
	}
	if !s.extractor.Supported(declaredType) {
		return nil, fmt.Errorf("%w: %s", apperr.ErrUnsupportedFileType, declaredType)
	}

	text, err := s.extractor.Extract(data, declaredType)
	if err != nil {
		return nil, err
	}

	storedName, err := s.files.Save(fileName, data)
	if err != nil {
		return nil, err
	}

	if title == "" {
		title = fileName
	}
	now := time.Now().UTC()
	essay := &models.Essay{
		ID:               uuid.NewString(),
		OwnerID:          ownerID,
		Title:            title,
		OriginalContent:  text,
		ProcessedContent: text,
		FileName:         storedName,
		FileType:         declaredType,
		Status:           models.StatusUploaded,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.db.InsertEssay(essay); err != nil {
		return nil, err
	}

	entry := &models.EditHistoryEntry{
		ID:                uuid.NewString(),
		EssayID:           essay.ID,
		PreviousContent:   "",
		NewContent:        text,
		ChangeDescription: "Initial file upload",
		ChangeType:        models.ChangeManualEdit,
		CreatedAt:         now,
	}
	if err := s.db.AppendHistory(entry); err != nil {
		// Roll the essay back so a failed upload leaves no partial state.
		_ = s.db.DeleteEssay(essay.ID)
		return nil, err
	}

	slog.Info("essay uploaded",
		slog.String("essay_id", essay.ID),
		slog.String("owner_id", ownerID),
		slog.String("file_type", declaredType))
	return s.detail(essay), nil
}

// Process drives an essay through the pipeline: grammar check, then
// plagiarism check, each committing its findings and status as one durable
// unit under a per-stage deadline. Prior findings are superseded before the
// first stage runs. Any stage failure flips the essay to ERROR and surfaces
// as a StageError; findings persisted by completed stages are kept.
func (s *Service) Process(ctx context.Context, essayID, ignoreListID string) (*EssayDetail, error) {
	essay, err := s.db.GetEssay(essayID)
	if err != nil {
		return nil, err
	}
	if !canTransition(essay.Status, models.StatusProcessing) {
		return nil, invalidTransition(essay.Status, models.StatusProcessing)
	}
	if err := s.db.UpdateEssayStatus(essayID, models.StatusProcessing); err != nil {
		return nil, err
	}
	essay.Status = models.StatusProcessing
	s.notify("processing", essayID, essay.Status)

	if err := s.run(ctx, essay, ignoreListID); err != nil {
		if stErr := s.db.UpdateEssayStatus(essayID, models.StatusError); stErr != nil {
			slog.Error("failed to mark essay as errored",
				slog.String("essay_id", essayID), slog.String("error", stErr.Error()))
		}
		s.notify("error", essayID, models.StatusError)
		return nil, err
	}

	essay, err = s.db.GetEssay(essayID)
	if err != nil {
		return nil, err
	}
	s.notify("completed", essayID, essay.Status)
	return s.detail(essay), nil
}

func (s *Service) run(ctx context.Context, essay *models.Essay, ignoreListID string) error {
	var ignoreTokens []string
	if ignoreListID != "" {
		tokens, err := s.lists.ResolveWords(ignoreListID)
		if err != nil {
			return apperr.NewStageError(StageIgnoreWords, err)
		}
		ignoreTokens = tokens
	}

	// Supersede findings from prior runs so reprocessing never accumulates
	// duplicates.
	if err := s.db.DeleteFindings(essay.ID); err != nil {
		return apperr.NewStageError(StageResetFindings, err)
	}

	if err := s.stage(ctx, StageGrammarCheck, func(stageCtx context.Context) error {
		matches, err := s.engine.Check(stageCtx, essay.OriginalContent, ignoreTokens)
		if err != nil {
			return err
		}
		findings := grammar.ToFindings(essay.ID, essay.OriginalContent, matches)
		if err := s.db.CommitGrammarStage(essay.ID, findings, models.StatusGrammarChecked); err != nil {
			return err
		}
		slog.Info("grammar stage complete",
			slog.String("essay_id", essay.ID), slog.Int("findings", len(findings)))
		return nil
	}); err != nil {
		return err
	}
	s.notify("stage", essay.ID, models.StatusGrammarChecked)

	if err := s.stage(ctx, StagePlagiarismCheck, func(stageCtx context.Context) error {
		matches, err := s.detector.Check(stageCtx, essay.OriginalContent, s.corpus.References())
		if err != nil {
			return err
		}
		findings := toPlagiarismFindings(essay.ID, matches)
		if err := s.db.CommitPlagiarismStage(essay.ID, findings, models.StatusPlagiarismChecked); err != nil {
			return err
		}
		slog.Info("plagiarism stage complete",
			slog.String("essay_id", essay.ID), slog.Int("findings", len(findings)))
		return nil
	}); err != nil {
		return err
	}
	s.notify("stage", essay.ID, models.StatusPlagiarismChecked)

	if err := s.db.UpdateEssayStatus(essay.ID, models.StatusCompleted); err != nil {
		return apperr.NewStageError(StageComplete, err)
	}
	return nil
}

// stage runs fn under the per-stage deadline and wraps failures with the
// stage name.
func (s *Service) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	stageCtx, cancel := context.WithTimeout(ctx, s.stageTimeout)
	defer cancel()
	if err := fn(stageCtx); err != nil {
		return apperr.NewStageError(name, err)
	}
	return nil
}

// UpdateContent records a MANUAL_EDIT ledger entry and overwrites the
// essay's processed content; original content is never touched. ifMatch, when
// non-empty, must equal the checksum of the current processed content or the
// update fails with Conflict. Grammar and plagiarism stages are not re-run.
func (s *Service) UpdateContent(_ context.Context, essayID, newContent, description, ifMatch string) (*EssayDetail, error) {
	if newContent == "" {
		return nil, fmt.Errorf("%w: content is required", apperr.ErrValidation)
	}
	essay, err := s.db.GetEssay(essayID)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.SumString(essay.ProcessedContent) {
		return nil, apperr.ErrConflict
	}

	entry := &models.EditHistoryEntry{
		ID:                uuid.NewString(),
		EssayID:           essayID,
		PreviousContent:   essay.ProcessedContent,
		NewContent:        newContent,
		ChangeDescription: description,
		ChangeType:        models.ChangeManualEdit,
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.db.UpdateEssayContent(essayID, newContent, entry); err != nil {
		return nil, err
	}
	essay.ProcessedContent = newContent
	s.notify("updated", essayID, essay.Status)
	return s.detail(essay), nil
}

// Get returns one essay with its content checksum.
func (s *Service) Get(_ context.Context, essayID string) (*EssayDetail, error) {
	essay, err := s.db.GetEssay(essayID)
	if err != nil {
		return nil, err
	}
	return s.detail(essay), nil
}

// ListByOwner returns the owner's essays, newest first.
func (s *Service) ListByOwner(_ context.Context, ownerID string) ([]models.Essay, error) {
	return s.db.ListEssaysByOwner(ownerID)
}

// Delete removes an essay and its retained upload; findings and ledger
// entries cascade with the row.
func (s *Service) Delete(_ context.Context, essayID string) error {
	essay, err := s.db.GetEssay(essayID)
	if err != nil {
		return err
	}
	if err := s.db.DeleteEssay(essayID); err != nil {
		return err
	}
	if essay.FileName != "" {
		if err := s.files.Delete(essay.FileName); err != nil {
			slog.Warn("failed to remove stored upload",
				slog.String("essay_id", essayID),
				slog.String("error", err.Error()))
		}
	}
	s.notify("deleted", essayID, "")
	return nil
}

// GetHistory returns the essay's ledger entries, most recent first.
func (s *Service) GetHistory(_ context.Context, essayID string) ([]models.EditHistoryEntry, error) {
	if _, err := s.db.GetEssay(essayID); err != nil {
		return nil, err
	}
	return s.db.ListHistory(essayID)
}

// GetGrammarFindings returns the essay's grammar findings.
func (s *Service) GetGrammarFindings(_ context.Context, essayID string) ([]models.GrammarFinding, error) {
	if _, err := s.db.GetEssay(essayID); err != nil {
		return nil, err
	}
	return s.db.ListGrammarFindings(essayID)
}

// GetPlagiarismFindings returns the essay's plagiarism findings with a score
// above minScore (pass 0 for all).
func (s *Service) GetPlagiarismFindings(_ context.Context, essayID string, minScore float64) ([]models.PlagiarismFinding, error) {
	if _, err := s.db.GetEssay(essayID); err != nil {
		return nil, err
	}
	return s.db.ListPlagiarismFindings(essayID, minScore)
}

// MarkFixed marks a grammar finding as fixed. Idempotent.
func (s *Service) MarkFixed(_ context.Context, findingID string) error {
	return s.db.MarkFindingFixed(findingID)
}

func (s *Service) detail(essay *models.Essay) *EssayDetail {
	return &EssayDetail{
		Essay:    *essay,
		Checksum: checksum.SumString(essay.ProcessedContent),
	}
}

func toPlagiarismFindings(essayID string, matches []plagiarism.Match) []models.PlagiarismFinding {
	now := time.Now().UTC()
	var out []models.PlagiarismFinding
	for _, m := range matches {
		out = append(out, models.PlagiarismFinding{
			ID:              uuid.NewString(),
			EssayID:         essayID,
			MatchedText:     m.MatchedText,
			SourceID:        m.Source.ID,
			SourceName:      m.Source.Name,
			SourceURL:       m.Source.URL,
			SimilarityScore: m.Score,
			StartPosition:   m.StartPosition,
			EndPosition:     m.EndPosition,
			CreatedAt:       now,
		})
	}
	return out
}
