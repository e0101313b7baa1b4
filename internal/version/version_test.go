package version

import "testing"

func TestValid(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{"2", true},
		{"2.1", true},
		{"v2.0", true},
		{"V2.0", true},
		{"2.1.3", false},
		{"v", false},
		{"", false},
		{"2.", false},
		{"version2", false},
		{"v2x", false},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			if got := Valid(tt.token); got != tt.want {
				t.Errorf("Valid(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"v2.0", "2.0"},
		{"V2.1", "2.1"},
		{"2.1", "2.1"},
		{"3", "3"},
		{"not-a-version", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.token); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  string
		found bool
	}{
		{"v prefix two parts", "Does v2.1 support X?", "2.1", true},
		{"uppercase V", "I'm on V2.0, what are the steps?", "2.0", true},
		{"no version", "no version here", "", false},
		{"first occurrence wins", "upgrade from v1.2 to v2.0", "1.2", true},
		{"bare token", "is 2.1 stable", "2.1", true},
		{"trailing punctuation", "broken since v2.0.", "2.0", true},
		{"parenthesized", "the new release (v3) is out", "3", true},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := Extract(tt.text)
			if found != tt.found || got != tt.want {
				t.Errorf("Extract(%q) = (%q, %v), want (%q, %v)", tt.text, got, found, tt.want, tt.found)
			}
		})
	}
}

func TestExtractMatchesNormalizedMetadata(t *testing.T) {
	// Query "v2.0" and chunk metadata "2.0" must compare equal after normalization.
	q, ok := Extract("how do I do X on v2.0")
	if !ok {
		t.Fatal("expected a version token")
	}
	if q != Normalize("2.0") {
		t.Errorf("query token %q does not match normalized metadata %q", q, Normalize("2.0"))
	}
}
