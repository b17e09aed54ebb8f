package grammar

import (
	"testing"

	"github.com/veritext/veritext/internal/models"
)

func TestSeverity(t *testing.T) {
	tests := []struct {
		category string
		want     models.Severity
	}{
		{"Grammar", models.SeverityHigh},
		{"Punctuation", models.SeverityHigh},
		{"Grammar and Style", models.SeverityHigh},
		{"Style", models.SeverityMedium},
		{"Style Guide", models.SeverityMedium},
		{"Possible Typo", models.SeverityLow},
		{"Typography", models.SeverityLow},
		{"Readability", models.SeverityLow},
		{"grammar", models.SeverityLow}, // matching is case-sensitive
		{"", models.SeverityLow},
	}
	for _, tt := range tests {
		if got := Severity(tt.category); got != tt.want {
			t.Errorf("Severity(%q) = %s, want %s", tt.category, got, tt.want)
		}
	}
}

func TestToFindings_MapsFields(t *testing.T) {
	content := "This is teh test."
	matches := []Match{{
		FromPos:     8,
		ToPos:       11,
		RuleID:      "MORFOLOGIK_RULE_EN",
		Category:    "Possible Typo",
		Message:     `Possible spelling mistake: "teh".`,
		Suggestions: []string{"the", "ten"},
	}}

	findings := ToFindings("essay-1", content, matches)
	if len(findings) != 1 {
		t.Fatalf("findings = %d, want 1", len(findings))
	}
	f := findings[0]
	if f.EssayID != "essay-1" {
		t.Errorf("essay id = %q", f.EssayID)
	}
	if f.ErrorText != "teh" {
		t.Errorf("error text = %q, want teh", f.ErrorText)
	}
	if f.SuggestedReplacement != "the, ten" {
		t.Errorf("suggestion = %q, want \"the, ten\"", f.SuggestedReplacement)
	}
	if f.Severity != models.SeverityLow {
		t.Errorf("severity = %s, want LOW", f.Severity)
	}
	if f.Fixed {
		t.Error("new findings must not be fixed")
	}
	if f.ID == "" {
		t.Error("finding id must be assigned")
	}
}

func TestToFindings_DropsOutOfBoundsSpans(t *testing.T) {
	content := "short"
	matches := []Match{
		{FromPos: 0, ToPos: 100, Category: "Grammar"},
		{FromPos: -1, ToPos: 3, Category: "Grammar"},
		{FromPos: 4, ToPos: 2, Category: "Grammar"},
		{FromPos: 0, ToPos: 5, Category: "Grammar"},
	}
	findings := ToFindings("essay-1", content, matches)
	if len(findings) != 1 {
		t.Fatalf("findings = %d, want 1 (invalid spans dropped)", len(findings))
	}
	if findings[0].ErrorText != "short" {
		t.Errorf("error text = %q", findings[0].ErrorText)
	}
}
