package repair

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestSanitizeFencedOutput(t *testing.T) {
	raw := "Here is the narrative you asked for:\n```json\n{\"summary\":\"done\"}\n```\nLet me know if you need adjustments."
	got := Sanitize(raw)
	want := `{"summary":"done"}`
	if got != want {
		t.Errorf("Sanitize = %q, want %q", got, want)
	}
}

func TestSanitizeSmartQuotes(t *testing.T) {
	got := Sanitize("{“summary”: “fine”}")
	var v struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(got), &v); err != nil {
		t.Fatalf("sanitized output unparsable: %v (%q)", err, got)
	}
	if v.Summary != "fine" {
		t.Errorf("summary = %q, want fine", v.Summary)
	}
}

func TestSanitizeControlCharacters(t *testing.T) {
	got := Sanitize("{\"a\":\v\"b\",\n\t\"c\":1}")
	if strings.ContainsRune(got, '\v') {
		t.Errorf("control character survived: %q", got)
	}
	if !strings.Contains(got, "\n\t") {
		t.Errorf("newline and tab should be kept: %q", got)
	}
	if err := parse(got); err != nil {
		t.Errorf("sanitized output unparsable: %v (%q)", err, got)
	}
}

func TestSanitizeNoObject(t *testing.T) {
	if got := Sanitize("no json in this reply at all"); got != "" {
		t.Errorf("Sanitize = %q, want empty", got)
	}
}

func TestParseOrRepairValidPassthrough(t *testing.T) {
	in := `{"skills":[{"name":"A","level":2,"color":"#60a5fa"}],"summary":"ok"}`
	got, err := ParseOrRepair(in)
	if err != nil {
		t.Fatalf("ParseOrRepair: %v", err)
	}
	if string(got) != in {
		t.Errorf("valid input was modified: %q", got)
	}
}

func TestParseOrRepairTrailingCommas(t *testing.T) {
	got, err := ParseOrRepair(`{"a":[1,2,],"b":{"c":1,},}`)
	if err != nil {
		t.Fatalf("ParseOrRepair: %v", err)
	}
	var v struct {
		A []int `json:"a"`
		B struct {
			C int `json:"c"`
		} `json:"b"`
	}
	if err := json.Unmarshal(got, &v); err != nil {
		t.Fatalf("repaired output unparsable: %v (%q)", err, got)
	}
	if len(v.A) != 2 || v.B.C != 1 {
		t.Errorf("repaired value wrong: %+v", v)
	}
}

func TestParseOrRepairClosesOpenStructures(t *testing.T) {
	in := `{"skills":[{"name":"A","level":2,"color":"#111"},{"name":"B","level":3,"color":"#222"`
	got, err := ParseOrRepair(in)
	if err != nil {
		t.Fatalf("ParseOrRepair: %v", err)
	}
	// The last element is complete, so repair appends exactly the
	// missing closers and nothing else.
	if want := in + `}]}`; string(got) != want {
		t.Errorf("repaired = %q, want %q", got, want)
	}
	var v struct {
		Skills []struct {
			Name string `json:"name"`
		} `json:"skills"`
	}
	if err := json.Unmarshal(got, &v); err != nil {
		t.Fatalf("repaired output unparsable: %v", err)
	}
	if len(v.Skills) != 2 {
		t.Errorf("skills = %d, want 2", len(v.Skills))
	}
}

func TestParseOrRepairTruncatedOutput(t *testing.T) {
	full := `{"skills":[{"name":"Steadiness","level":3,"color":"#60a5fa"}],"tags":["steady","present","showing-up-every-day"],"summary":"done"}`
	in := full[:len(full)-30]

	got, err := ParseOrRepair(in)
	if err != nil {
		t.Fatalf("ParseOrRepair: %v", err)
	}
	var v struct {
		Skills []struct {
			Name string `json:"name"`
		} `json:"skills"`
		Tags    []string `json:"tags"`
		Summary string   `json:"summary"`
	}
	if err := json.Unmarshal(got, &v); err != nil {
		t.Fatalf("repaired output unparsable: %v (%q)", err, got)
	}
	if len(v.Skills) != 1 {
		t.Errorf("skills = %d, want 1", len(v.Skills))
	}
	// The element the cut landed in is discarded, everything before it
	// survives, and nothing is invented for the missing summary.
	want := []string{"steady", "present"}
	if len(v.Tags) != len(want) || v.Tags[0] != want[0] || v.Tags[1] != want[1] {
		t.Errorf("tags = %v, want %v", v.Tags, want)
	}
	if v.Summary != "" {
		t.Errorf("summary = %q, want empty", v.Summary)
	}

	again, err := ParseOrRepair(string(got))
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if string(again) != string(got) {
		t.Errorf("repair is not idempotent: %q vs %q", again, got)
	}
}

func TestParseOrRepairDanglingSeparator(t *testing.T) {
	got, err := ParseOrRepair(`{"skills":[{"name":"A","level":2,"color":"#111"},`)
	if err != nil {
		t.Fatalf("ParseOrRepair: %v", err)
	}
	var v struct {
		Skills []struct {
			Name string `json:"name"`
		} `json:"skills"`
	}
	if err := json.Unmarshal(got, &v); err != nil {
		t.Fatalf("repaired output unparsable: %v (%q)", err, got)
	}
	if len(v.Skills) != 1 || v.Skills[0].Name != "A" {
		t.Errorf("skills = %+v, want the single complete element", v.Skills)
	}
}

func TestParseOrRepairUnrepairable(t *testing.T) {
	for _, in := range []string{
		"character sheet unavailable",
		`{"a":}`,
	} {
		_, err := ParseOrRepair(in)
		if err == nil {
			t.Errorf("ParseOrRepair(%q) succeeded, want error", in)
			continue
		}
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("ParseOrRepair(%q) error %T, want *ParseError", in, err)
			continue
		}
		if pe.Msg == "" {
			t.Errorf("ParseOrRepair(%q) returned empty message", in)
		}
	}
}
