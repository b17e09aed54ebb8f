package grammar

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/veritext/veritext/internal/models"
)

// Severity classifies a rule category by case-sensitive substring match, in
// priority order: Grammar/Punctuation outrank Style, everything else is LOW.
func Severity(category string) models.Severity {
	switch {
	case strings.Contains(category, "Grammar") || strings.Contains(category, "Punctuation"):
		return models.SeverityHigh
	case strings.Contains(category, "Style"):
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// ToFindings converts engine matches into persistable findings for an essay.
// Matches whose span falls outside the content are dropped: a span beyond the
// checked text indicates an engine bug, not a valid finding.
func ToFindings(essayID, content string, matches []Match) []models.GrammarFinding {
	now := time.Now().UTC()
	var out []models.GrammarFinding
	for _, m := range matches {
		if m.FromPos < 0 || m.ToPos < m.FromPos || m.ToPos > len(content) {
			continue
		}
		out = append(out, models.GrammarFinding{
			ID:                   uuid.NewString(),
			EssayID:              essayID,
			StartPosition:        m.FromPos,
			EndPosition:          m.ToPos,
			ErrorText:            content[m.FromPos:m.ToPos],
			RuleID:               m.RuleID,
			Message:              m.Message,
			SuggestedReplacement: strings.Join(m.Suggestions, ", "),
			Severity:             Severity(m.Category),
			Fixed:                false,
			CreatedAt:            now,
		})
	}
	return out
}
