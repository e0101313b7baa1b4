package query

import (
	"testing"
)

func TestParse(t *testing.T) {
	qc := Parse("My files aren't syncing on v2.0", "", NewRuleClassifier())
	if !qc.Negated {
		t.Error("aren't must register as a negation cue")
	}
	if qc.Version != "2.0" {
		t.Errorf("Version = %q, want 2.0", qc.Version)
	}
	if qc.EffectiveVersion() != "2.0" {
		t.Errorf("EffectiveVersion = %q, want 2.0", qc.EffectiveVersion())
	}
	if qc.Intent != IntentTroubleshooting {
		t.Errorf("Intent = %q, want troubleshooting", qc.Intent)
	}
}

func TestParse_DeclaredVersionWins(t *testing.T) {
	qc := Parse("how do I restore old file versions in v2.0", "V2.1", nil)
	if qc.Version != "2.0" {
		t.Errorf("text version = %q, want 2.0", qc.Version)
	}
	if qc.EffectiveVersion() != "2.1" {
		t.Errorf("EffectiveVersion = %q, want declared 2.1", qc.EffectiveVersion())
	}
	if qc.Intent != "" {
		t.Errorf("nil classifier must leave Intent empty, got %q", qc.Intent)
	}
}

func TestExpandSynonyms(t *testing.T) {
	expanded := ExpandSynonyms([]string{"directory", "sharing"})
	want := map[string]bool{"directory": false, "folder": false}
	for _, term := range expanded {
		if _, ok := want[term]; ok {
			want[term] = true
		}
	}
	for term, found := range want {
		if !found {
			t.Errorf("expansion missing %q: %v", term, expanded)
		}
	}

	// No groups touched: output equals input.
	plain := ExpandSynonyms([]string{"billing", "invoice"})
	if len(plain) != 2 {
		t.Errorf("unexpected expansion of plain terms: %v", plain)
	}
}

func TestSharesSynonymGroup(t *testing.T) {
	terms := []string{"login", "broken"}
	if !SharesSynonymGroup(terms, "Use the Sign-In page to authenticate") {
		t.Error("sign-in must match the login group")
	}
	if SharesSynonymGroup(terms, "billing settings overview") {
		t.Error("unrelated text must not match")
	}
	if SharesSynonymGroup([]string{"billing"}, "sign in here") {
		t.Error("terms outside any group must not match")
	}
}

func TestContainsNegation(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"files are not syncing", true},
		{"I can't open the folder", true},
		{"sync without errors", true},
		{"notes about syncing", false},
		{"everything works fine", false},
	}
	for _, tt := range tests {
		if got := ContainsNegation(tt.text); got != tt.want {
			t.Errorf("ContainsNegation(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestRuleClassifier(t *testing.T) {
	c := NewRuleClassifier()
	tests := []struct {
		query string
		want  string
	}{
		{"how do I sign up for an account", IntentProductSetup},
		{"sync is slow on large folders", IntentPerformance},
		{"files aren't syncing", IntentTroubleshooting},
		{"I was charged twice", IntentBilling},
		{"how do I cancel my subscription", IntentCancellation},
		{"does the api support webhooks", IntentDeveloper},
		{"is my data encrypted", IntentSecurity},
		{"known issue with shared folders", IntentKnownIssue},
		{"mobile app crashes on launch", IntentTechnicalIssue},
		{"what's the difference between free and pro", IntentComparison},
		{"hello there", IntentOther},
	}
	for _, tt := range tests {
		if got := c.Classify(tt.query); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}
