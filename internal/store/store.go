package store

import "github.com/veritext/veritext/internal/models"

// Store defines the persistence operations the service layers depend on.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type Store interface {
	InsertEssay(e *models.Essay) error
	GetEssay(id string) (*models.Essay, error)
	ListEssaysByOwner(ownerID string) ([]models.Essay, error)
	UpdateEssayStatus(id string, status models.EssayStatus) error
	DeleteEssay(id string) error

	// UpdateEssayContent rewrites the processed content and appends the
	// corresponding ledger entry in one transaction.
	UpdateEssayContent(id, newContent string, entry *models.EditHistoryEntry) error

	// CommitGrammarStage persists the grammar stage's findings and the status
	// transition as one durable unit. CommitPlagiarismStage does the same for
	// the plagiarism stage.
	CommitGrammarStage(essayID string, findings []models.GrammarFinding, status models.EssayStatus) error
	CommitPlagiarismStage(essayID string, findings []models.PlagiarismFinding, status models.EssayStatus) error

	// DeleteFindings removes all grammar and plagiarism findings for an essay.
	// Reprocessing calls this so superseded findings never accumulate.
	DeleteFindings(essayID string) error

	ListGrammarFindings(essayID string) ([]models.GrammarFinding, error)
	ListPlagiarismFindings(essayID string, minScore float64) ([]models.PlagiarismFinding, error)
	MarkFindingFixed(findingID string) error

	AppendHistory(entry *models.EditHistoryEntry) error
	ListHistory(essayID string) ([]models.EditHistoryEntry, error)

	InsertIgnoreList(l *models.IgnoreWordList) error
	GetIgnoreList(id string) (*models.IgnoreWordList, error)
	ListIgnoreListsByOwner(ownerID string) ([]models.IgnoreWordList, error)
	UpdateIgnoreList(l *models.IgnoreWordList) error
	DeleteIgnoreList(id string) error

	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)
