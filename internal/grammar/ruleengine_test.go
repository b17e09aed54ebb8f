package grammar

import (
	"context"
	"strings"
	"testing"
)

func check(t *testing.T, text string, ignore ...string) []Match {
	t.Helper()
	matches, err := NewRuleEngine().Check(context.Background(), text, ignore)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	return matches
}

func withRule(matches []Match, ruleID string) []Match {
	var out []Match
	for _, m := range matches {
		if m.RuleID == ruleID {
			out = append(out, m)
		}
	}
	return out
}

func TestRuleEngine_RepeatedWord(t *testing.T) {
	text := "The cat sat on the the mat."
	matches := withRule(check(t, text), "REPEATED_WORD")
	if len(matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(matches))
	}
	m := matches[0]
	if text[m.FromPos:m.ToPos] != "the the" {
		t.Errorf("span = %q, want \"the the\"", text[m.FromPos:m.ToPos])
	}
	if m.Category != "Grammar" {
		t.Errorf("category = %q, want Grammar", m.Category)
	}
}

func TestRuleEngine_RepeatedWordIgnoresCase(t *testing.T) {
	text := "The the cat sat on the mat."
	matches := withRule(check(t, text), "REPEATED_WORD")
	if len(matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(matches))
	}
	if m := matches[0]; text[m.FromPos:m.ToPos] != "The the" {
		t.Errorf("span = %q, want \"The the\"", text[m.FromPos:m.ToPos])
	}
}

func TestRuleEngine_RepeatedWordAcrossLines(t *testing.T) {
	matches := withRule(check(t, "We sat on the\nthe mat."), "REPEATED_WORD")
	if len(matches) != 0 {
		t.Fatalf("matches = %d, want 0 across a line break", len(matches))
	}
}

func TestRuleEngine_Spelling(t *testing.T) {
	matches := withRule(check(t, "I will recieve the package."), "MORFOLOGIK_RULE_EN")
	if len(matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(matches))
	}
	if got := matches[0].Suggestions; len(got) != 1 || got[0] != "receive" {
		t.Errorf("suggestions = %v, want [receive]", got)
	}
}

func TestRuleEngine_SpellingPreservesCase(t *testing.T) {
	matches := withRule(check(t, "Teh dog barked."), "MORFOLOGIK_RULE_EN")
	if len(matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(matches))
	}
	if got := matches[0].Suggestions[0]; got != "The" {
		t.Errorf("suggestion = %q, want The", got)
	}
}

func TestRuleEngine_IgnoreTokensSuppressSpelling(t *testing.T) {
	text := "I will recieve teh package."
	if got := withRule(check(t, text), "MORFOLOGIK_RULE_EN"); len(got) != 2 {
		t.Fatalf("without ignore list: matches = %d, want 2", len(got))
	}
	// Tokens are matched case-insensitively and only affect this call.
	if got := withRule(check(t, text, "TEH"), "MORFOLOGIK_RULE_EN"); len(got) != 1 {
		t.Errorf("with ignore list: matches = %d, want 1", len(got))
	}
	if got := withRule(check(t, text), "MORFOLOGIK_RULE_EN"); len(got) != 2 {
		t.Errorf("after ignored call: matches = %d, want 2 (no shared state)", len(got))
	}
}

func TestRuleEngine_ConsecutiveSpaces(t *testing.T) {
	matches := withRule(check(t, "Too  many   spaces."), "CONSECUTIVE_SPACES")
	if len(matches) != 2 {
		t.Errorf("matches = %d, want 2", len(matches))
	}
}

func TestRuleEngine_LowercaseSentenceStart(t *testing.T) {
	text := "the start is wrong. and this one too. This one is fine."
	matches := withRule(check(t, text), "UPPERCASE_SENTENCE_START")
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(matches))
	}
	if matches[0].FromPos != 0 {
		t.Errorf("first match at %d, want 0", matches[0].FromPos)
	}
	if got := matches[1].Suggestions[0]; got != "A" {
		t.Errorf("suggestion = %q, want A", got)
	}
}

func TestRuleEngine_WhitespaceBeforePunctuation(t *testing.T) {
	matches := withRule(check(t, "Wait , what ?"), "WHITESPACE_BEFORE_PUNCTUATION")
	if len(matches) != 2 {
		t.Errorf("matches = %d, want 2", len(matches))
	}
}

func TestRuleEngine_DoublePunctuation(t *testing.T) {
	matches := withRule(check(t, "First,, second."), "DOUBLE_PUNCTUATION")
	if len(matches) != 1 {
		t.Errorf("matches = %d, want 1", len(matches))
	}
}

func TestRuleEngine_MultipleExclamations(t *testing.T) {
	matches := withRule(check(t, "Amazing!!! Truly."), "MULTIPLE_EXCLAMATION_MARK")
	if len(matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(matches))
	}
	if matches[0].Category != "Style" {
		t.Errorf("category = %q, want Style", matches[0].Category)
	}
}

func TestRuleEngine_Wordiness(t *testing.T) {
	text := "We met in order to discuss it. Due to the fact that it rained, we left."
	matches := withRule(check(t, text), "WORDINESS")
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(matches))
	}
	for _, m := range matches {
		if len(m.Suggestions) != 1 {
			t.Errorf("match %q has suggestions %v", text[m.FromPos:m.ToPos], m.Suggestions)
		}
	}
}

func TestRuleEngine_WordinessSpanWithMultibyteText(t *testing.T) {
	// "İ" lowercases to a two-rune sequence, so offsets computed on a
	// lowered copy of the text would drift.
	text := "İstanbul was calm. We walked In order to see the bridge."
	matches := withRule(check(t, text), "WORDINESS")
	if len(matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(matches))
	}
	m := matches[0]
	if text[m.FromPos:m.ToPos] != "In order to" {
		t.Errorf("span = %q, want \"In order to\"", text[m.FromPos:m.ToPos])
	}
	if len(m.Suggestions) != 1 || m.Suggestions[0] != "to" {
		t.Errorf("suggestions = %v, want [to]", m.Suggestions)
	}
}

func TestRuleEngine_MatchesOrderedByPosition(t *testing.T) {
	text := "teh start was bad.  we met in order to recieve feedback ,, and left!!"
	matches := check(t, text)
	if len(matches) < 4 {
		t.Fatalf("matches = %d, want several", len(matches))
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].FromPos < matches[i-1].FromPos {
			t.Fatalf("matches out of order at %d: %d < %d", i, matches[i].FromPos, matches[i-1].FromPos)
		}
	}
}

func TestRuleEngine_CleanText(t *testing.T) {
	matches := check(t, "This sentence is perfectly fine.")
	if len(matches) != 0 {
		var ids []string
		for _, m := range matches {
			ids = append(ids, m.RuleID)
		}
		t.Errorf("clean text produced matches: %s", strings.Join(ids, ", "))
	}
}
