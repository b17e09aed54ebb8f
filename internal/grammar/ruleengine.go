package grammar

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	doubleSpaceRe    = regexp.MustCompile(`[^\S\n]{2}[^\S\n]*`)
	lowercaseStartRe = regexp.MustCompile(`(?:^|[.!?]\s+)([a-z])`)
	spaceBeforeRe    = regexp.MustCompile(` +([,.;:!?])`)
	doubleCommaRe    = regexp.MustCompile(`,,+`)
	exclamationRe    = regexp.MustCompile(`!!+`)
	wordRe           = regexp.MustCompile(`[A-Za-z]+`)
)

// misspellings maps common misspelled words to their corrections.
var misspellings = map[string]string{
	"teh":        "the",
	"recieve":    "receive",
	"seperate":   "separate",
	"definately": "definitely",
	"occured":    "occurred",
	"wich":       "which",
	"untill":     "until",
	"allready":   "already",
}

// wordyRules pairs wordy constructions with tighter replacements. Each
// pattern is matched case-insensitively on the original text so span
// offsets stay valid for multi-byte input.
var wordyRules = []struct {
	re          *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)\bin order to\b`), "to"},
	{regexp.MustCompile(`(?i)\bdue to the fact that\b`), "because"},
	{regexp.MustCompile(`(?i)\bat this point in time\b`), "now"},
}

// RuleEngine is the built-in grammar engine: a fixed set of pattern rules
// plus a small misspelling dictionary. It holds no mutable state, so one
// instance serves concurrent checks safely.
type RuleEngine struct{}

// NewRuleEngine returns the built-in rule-based engine.
func NewRuleEngine() *RuleEngine {
	return &RuleEngine{}
}

// Check runs every rule over text and returns matches ordered by position.
// ignoreTokens suppress spelling matches for this call only.
func (e *RuleEngine) Check(_ context.Context, text string, ignoreTokens []string) ([]Match, error) {
	ignore := make(map[string]struct{}, len(ignoreTokens))
	for _, t := range ignoreTokens {
		ignore[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}

	var matches []Match
	matches = append(matches, e.repeatedWords(text)...)
	matches = append(matches, e.doubleSpaces(text)...)
	matches = append(matches, e.lowercaseSentenceStarts(text)...)
	matches = append(matches, e.spaceBeforePunctuation(text)...)
	matches = append(matches, e.doublePunctuation(text)...)
	matches = append(matches, e.exclamations(text)...)
	matches = append(matches, e.spelling(text, ignore)...)
	matches = append(matches, e.wordiness(text)...)

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].FromPos != matches[j].FromPos {
			return matches[i].FromPos < matches[j].FromPos
		}
		return matches[i].ToPos < matches[j].ToPos
	})
	return matches, nil
}

func (e *RuleEngine) repeatedWords(text string) []Match {
	var out []Match
	words := wordRe.FindAllStringIndex(text, -1)
	for i := 1; i < len(words); i++ {
		prev, cur := words[i-1], words[i]
		if strings.Trim(text[prev[1]:cur[0]], " ") != "" {
			continue
		}
		word := text[prev[0]:prev[1]]
		if !strings.EqualFold(word, text[cur[0]:cur[1]]) {
			continue
		}
		out = append(out, Match{
			FromPos:     prev[0],
			ToPos:       cur[1],
			RuleID:      "REPEATED_WORD",
			Category:    "Grammar",
			Message:     fmt.Sprintf("The word %q is repeated.", word),
			Suggestions: []string{word},
		})
	}
	return out
}

func (e *RuleEngine) doubleSpaces(text string) []Match {
	var out []Match
	for _, m := range doubleSpaceRe.FindAllStringIndex(text, -1) {
		out = append(out, Match{
			FromPos:     m[0],
			ToPos:       m[1],
			RuleID:      "CONSECUTIVE_SPACES",
			Category:    "Typography",
			Message:     "Consecutive spaces found.",
			Suggestions: []string{" "},
		})
	}
	return out
}

func (e *RuleEngine) lowercaseSentenceStarts(text string) []Match {
	var out []Match
	for _, m := range lowercaseStartRe.FindAllStringSubmatchIndex(text, -1) {
		letter := text[m[2]:m[3]]
		out = append(out, Match{
			FromPos:     m[2],
			ToPos:       m[3],
			RuleID:      "UPPERCASE_SENTENCE_START",
			Category:    "Grammar",
			Message:     "Sentences should start with an uppercase letter.",
			Suggestions: []string{strings.ToUpper(letter)},
		})
	}
	return out
}

func (e *RuleEngine) spaceBeforePunctuation(text string) []Match {
	var out []Match
	for _, m := range spaceBeforeRe.FindAllStringSubmatchIndex(text, -1) {
		punct := text[m[2]:m[3]]
		out = append(out, Match{
			FromPos:     m[0],
			ToPos:       m[1],
			RuleID:      "WHITESPACE_BEFORE_PUNCTUATION",
			Category:    "Punctuation",
			Message:     fmt.Sprintf("No space should precede %q.", punct),
			Suggestions: []string{punct},
		})
	}
	return out
}

func (e *RuleEngine) doublePunctuation(text string) []Match {
	var out []Match
	for _, m := range doubleCommaRe.FindAllStringIndex(text, -1) {
		out = append(out, Match{
			FromPos:     m[0],
			ToPos:       m[1],
			RuleID:      "DOUBLE_PUNCTUATION",
			Category:    "Punctuation",
			Message:     "Repeated punctuation mark.",
			Suggestions: []string{","},
		})
	}
	return out
}

func (e *RuleEngine) exclamations(text string) []Match {
	var out []Match
	for _, m := range exclamationRe.FindAllStringIndex(text, -1) {
		out = append(out, Match{
			FromPos:     m[0],
			ToPos:       m[1],
			RuleID:      "MULTIPLE_EXCLAMATION_MARK",
			Category:    "Style",
			Message:     "Multiple consecutive exclamation marks.",
			Suggestions: []string{"!"},
		})
	}
	return out
}

func (e *RuleEngine) spelling(text string, ignore map[string]struct{}) []Match {
	var out []Match
	for _, m := range wordRe.FindAllStringIndex(text, -1) {
		word := text[m[0]:m[1]]
		lower := strings.ToLower(word)
		if _, ok := ignore[lower]; ok {
			continue
		}
		correction, ok := misspellings[lower]
		if !ok {
			continue
		}
		out = append(out, Match{
			FromPos:     m[0],
			ToPos:       m[1],
			RuleID:      "MORFOLOGIK_RULE_EN",
			Category:    "Possible Typo",
			Message:     fmt.Sprintf("Possible spelling mistake: %q.", word),
			Suggestions: []string{matchCase(word, correction)},
		})
	}
	return out
}

func (e *RuleEngine) wordiness(text string) []Match {
	var out []Match
	for _, r := range wordyRules {
		for _, m := range r.re.FindAllStringIndex(text, -1) {
			out = append(out, Match{
				FromPos:     m[0],
				ToPos:       m[1],
				RuleID:      "WORDINESS",
				Category:    "Style",
				Message:     fmt.Sprintf("Consider replacing %q with %q.", text[m[0]:m[1]], r.replacement),
				Suggestions: []string{r.replacement},
			})
		}
	}
	return out
}

// matchCase uppercases the correction's first letter when the original word
// was capitalized.
func matchCase(original, correction string) string {
	if original == "" || correction == "" {
		return correction
	}
	if original[0] >= 'A' && original[0] <= 'Z' {
		return strings.ToUpper(correction[:1]) + correction[1:]
	}
	return correction
}
