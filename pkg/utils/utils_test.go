package utils

import "testing"

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"Emotional Regulator", "Emotional Regulator", 0},
		{"Regulator", "Regulador", 1},
	}
	for _, tc := range tests {
		if got := Levenshtein(tc.a, tc.b); got != tc.want {
			t.Errorf("Levenshtein(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	if got := Similarity("The Catastrophizer", "the catastrophizer"); got != 1.0 {
		t.Errorf("case-insensitive identical strings = %v, want 1.0", got)
	}
	if got := Similarity("Emotional Regulator", "Emotional Regulador"); got < 0.85 {
		t.Errorf("near-identical strings = %v, want >= 0.85", got)
	}
	if got := Similarity("Emotional Regulator", "The Body"); got >= 0.85 {
		t.Errorf("unrelated strings = %v, want < 0.85", got)
	}
}

func TestErrJSON(t *testing.T) {
	body := ErrJSON("Failed to analyze medications")
	if body["error"] != "Failed to analyze medications" {
		t.Errorf("error = %v", body["error"])
	}
	if _, ok := body["details"]; ok {
		t.Error("details should be absent without input")
	}

	body = ErrJSON("Failed to analyze medications", "upstream timeout")
	if body["details"] != "upstream timeout" {
		t.Errorf("details = %v", body["details"])
	}
}

func TestLimitStr(t *testing.T) {
	if got := LimitStr("short", 10); got != "short" {
		t.Errorf("LimitStr = %q", got)
	}
	if got := LimitStr("a very long diagnostic string", 6); got != "a very..." {
		t.Errorf("LimitStr = %q", got)
	}
}
