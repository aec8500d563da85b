// Package repair cleans and structurally mends the text a generation
// model returns when asked for raw JSON. Models wrap payloads in
// markdown fences, add commentary, emit typographic quotes, or get cut
// off mid-structure by the output-token budget; this package strips the
// wrapping and closes what was left open. It never invents field
// values: repair only removes a trailing incomplete fragment or appends
// the closers for structures that are already open.
package repair

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// ParseError reports that model output stayed unparsable after repair.
// Offset and Msg describe the original parse failure, not the repaired
// attempt.
type ParseError struct {
	Offset int64
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparsable model output at offset %d: %s", e.Offset, e.Msg)
}

var (
	fenceRX         = regexp.MustCompile("```[a-zA-Z]*")
	trailingCommaRX = regexp.MustCompile(`,\s*([}\]])`)

	quoteReplacer = strings.NewReplacer(
		"“", `"`, "”", `"`, "„", `"`,
		"‘", "'", "’", "'", "‚", "'",
	)
)

// Sanitize applies best-effort textual cleanup to raw model output.
// The steps run in order: trim, drop code fences, cut everything before
// the first '{' and after the last '}', drop control characters other
// than newline/carriage-return/tab, and straighten smart quotes.
func Sanitize(raw string) string {
	s := strings.TrimSpace(raw)
	s = fenceRX.ReplaceAllString(s, "")

	if i := strings.IndexByte(s, '{'); i >= 0 {
		s = s[i:]
	} else {
		s = ""
	}
	if i := strings.LastIndexByte(s, '}'); i >= 0 {
		s = s[:i+1]
	} else {
		s = ""
	}

	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	return strings.TrimSpace(quoteReplacer.Replace(s))
}

// ParseOrRepair returns syntactically valid JSON, repairing the input if
// needed. Valid input passes through byte-for-byte. On failure the
// repair pass removes trailing commas, discards a truncated trailing
// element, and closes open strings/arrays/objects, in that order; if the
// result still does not parse, a *ParseError carrying the original
// failure is returned.
func ParseOrRepair(text string) (json.RawMessage, error) {
	origErr := parse(text)
	if origErr == nil {
		return json.RawMessage(text), nil
	}

	repaired := trailingCommaRX.ReplaceAllString(text, "$1")
	if parse(repaired) == nil {
		return json.RawMessage(repaired), nil
	}

	// A comma dangling at end of input has no closer for the regexp to
	// anchor on; a stream cut right after an element separator leaves one.
	repaired = strings.TrimRight(repaired, " \t\r\n")
	repaired = strings.TrimSuffix(repaired, ",")

	if cut, ok := dropTruncatedTail(repaired); ok {
		repaired = trailingCommaRX.ReplaceAllString(cut, "$1")
	}
	repaired = closeOpen(repaired)
	if parse(repaired) == nil {
		return json.RawMessage(repaired), nil
	}

	perr := &ParseError{Msg: origErr.Error()}
	var syn *json.SyntaxError
	if errors.As(origErr, &syn) {
		perr.Offset = syn.Offset
	}
	return nil, perr
}

func parse(s string) error {
	var v any
	return json.Unmarshal([]byte(s), &v)
}

// scanState tracks structure outside string literals: the stack of open
// delimiters and whether the text ends inside an unterminated string.
type scanState struct {
	stack    []byte
	inString bool
}

func scan(s string) scanState {
	var st scanState
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if st.inString {
			if escaped {
				escaped = false
				continue
			}
			switch c {
			case '\\':
				escaped = true
			case '"':
				st.inString = false
			}
			continue
		}
		switch c {
		case '"':
			st.inString = true
		case '{', '[':
			st.stack = append(st.stack, c)
		case '}':
			if n := len(st.stack); n > 0 && st.stack[n-1] == '{' {
				st.stack = st.stack[:n-1]
			}
		case ']':
			if n := len(st.stack); n > 0 && st.stack[n-1] == '[' {
				st.stack = st.stack[:n-1]
			}
		}
	}
	return st
}

// dropTruncatedTail discards everything from the last comma outside a
// string onward when what follows it opens a string or structure it
// never closes, i.e. the stream was cut mid-element. Sacrificing the
// incomplete element recovers a valid prefix instead of surfacing a
// half-written one.
func dropTruncatedTail(s string) (string, bool) {
	idx := -1
	escaped := false
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			if escaped {
				escaped = false
				continue
			}
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case ',':
			idx = i
		}
	}
	if idx < 0 {
		return s, false
	}

	rest := scan(s[idx+1:])
	if rest.inString || len(rest.stack) > 0 {
		return s[:idx], true
	}
	return s, false
}

// closeOpen appends the closers for whatever the text leaves open: a
// quote first if it ends inside a string literal, then brackets and
// braces in reverse order of opening. Balanced input is returned
// unchanged; surplus closers are never added.
func closeOpen(s string) string {
	st := scan(s)
	if !st.inString && len(st.stack) == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + len(st.stack) + 1)
	b.WriteString(s)
	if st.inString {
		b.WriteByte('"')
	}
	for i := len(st.stack) - 1; i >= 0; i-- {
		switch st.stack[i] {
		case '{':
			b.WriteByte('}')
		case '[':
			b.WriteByte(']')
		}
	}
	return b.String()
}
