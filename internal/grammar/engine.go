// Package grammar checks essay text for grammar and style issues and adapts
// engine matches into severity-classified findings.
package grammar

import "context"

// Match is one rule match reported by a grammar engine. Positions are byte
// offsets into the checked text.
type Match struct {
	FromPos     int
	ToPos       int
	RuleID      string
	Category    string
	Message     string
	Suggestions []string
}

// Engine checks text and returns matches ordered by position. The ignore
// tokens are merged into the engine's spelling dictionary for this call only;
// implementations must not mutate shared state, so concurrent checks with
// different ignore lists cannot cross-contaminate.
type Engine interface {
	Check(ctx context.Context, text string, ignoreTokens []string) ([]Match, error)
}
