package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/openai/openai-go/v3"

	"cabinet/pkg/schema"
)

type stubInferencer struct {
	mu     sync.Mutex
	calls  int
	output string
	err    error
}

func (s *stubInferencer) Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.output, s.err
}

func (s *stubInferencer) Verify(ctx context.Context, result string) (bool, error) {
	return result != "", nil
}

func (s *stubInferencer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

const validDialogueOutput = "Sure! Here is the analysis:\n```json\n" +
	`{"skills":[{"name":"Emotional Regulator","level":4,"color":"#60a5fa"},{"name":"The Body","level":3,"color":"#10b981"}],` +
	`"dialogue":[{"speaker":"Emotional Regulator","text":"The sertraline is holding the line.","color":"#60a5fa"},` +
	`{"speaker":"The Body","text":"Present and accounted for.","color":"#10b981"}],` +
	`"summary":"Holding steady."}` + "\n```"

func newTestServer(t *testing.T, inf *stubInferencer, cfg Config) *Server {
	t.Helper()
	cfg.ReportsPath = t.TempDir() + "/Reports.json"
	if inf == nil {
		return NewServer(context.Background(), nil, cfg)
	}
	return NewServer(context.Background(), inf, cfg)
}

func doAnalyze(s *Server, body string, header ...[2]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, h := range header {
		req.Header.Set(h[0], h[1])
	}
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

const oneMedication = `{"medications":[{"name":"Sertralina","dosage":50,"time":"morning"}]}`

func TestAnalyzeMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, &stubInferencer{output: validDialogueOutput}, Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/analyze", nil)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestAnalyzeEmptyMedications(t *testing.T) {
	inf := &stubInferencer{output: validDialogueOutput}
	s := newTestServer(t, inf, Config{})

	for _, body := range []string{`{"medications":[]}`, `{}`} {
		rec := doAnalyze(s, body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
	if inf.callCount() != 0 {
		t.Errorf("upstream called %d times for rejected input", inf.callCount())
	}
}

func TestAnalyzeInvalidEntry(t *testing.T) {
	s := newTestServer(t, &stubInferencer{output: validDialogueOutput}, Config{})
	rec := doAnalyze(s, `{"medications":[{"name":"Sertralina","dosage":0,"time":"morning"}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAnalyzeMissingCredentialInProduction(t *testing.T) {
	s := newTestServer(t, nil, Config{Production: true})

	rec := doAnalyze(s, oneMedication)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body unparsable: %v", err)
	}
	if body["error"] == "" || body["error"] == nil {
		t.Error("error message missing")
	}
	if _, ok := body["details"]; ok {
		t.Error("details must be suppressed in production")
	}
}

func TestAnalyzeSuccess(t *testing.T) {
	inf := &stubInferencer{output: validDialogueOutput}
	s := newTestServer(t, inf, Config{})

	rec := doAnalyze(s, oneMedication)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	var n schema.DialogueNarrative
	if err := json.Unmarshal(rec.Body.Bytes(), &n); err != nil {
		t.Fatalf("response unparsable: %v", err)
	}
	if len(n.Skills) != 2 || n.Skills[0].Name != "Emotional Regulator" {
		t.Errorf("skills = %+v", n.Skills)
	}
	if n.Summary != "Holding steady." {
		t.Errorf("summary = %q", n.Summary)
	}
	if inf.callCount() != 1 {
		t.Errorf("upstream called %d times, want 1", inf.callCount())
	}
	if s.Reports.Len() != 1 {
		t.Errorf("reports recorded = %d, want 1", s.Reports.Len())
	}
}

func TestAnalyzeCachesIdenticalRequests(t *testing.T) {
	inf := &stubInferencer{output: validDialogueOutput}
	s := newTestServer(t, inf, Config{})

	for range 2 {
		if rec := doAnalyze(s, oneMedication); rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	}
	if inf.callCount() != 1 {
		t.Errorf("upstream called %d times, want 1 (cached)", inf.callCount())
	}

	rec := doAnalyze(s, oneMedication, [2]string{"Cache-Control", "no-cache"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if inf.callCount() != 2 {
		t.Errorf("upstream called %d times, want 2 after no-cache", inf.callCount())
	}
}

func TestAnalyzeUpstreamError(t *testing.T) {
	inf := &stubInferencer{err: context.DeadlineExceeded}
	s := newTestServer(t, inf, Config{})

	rec := doAnalyze(s, oneMedication)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body unparsable: %v", err)
	}
	if details, ok := body["details"].(string); !ok || !strings.Contains(details, "inference") {
		t.Errorf("details = %v, want inference error outside production", body["details"])
	}
}

func TestAnalyzeValidationFailure(t *testing.T) {
	inf := &stubInferencer{output: `{"skills":[{"name":"Emotional Regulator","level":4,"color":"#60a5fa"}],` +
		`"dialogue":[{"speaker":"Unheard Voice","text":"...","color":"#000"}],"summary":"x"}`}
	s := newTestServer(t, inf, Config{})

	rec := doAnalyze(s, oneMedication)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 for unresolved speaker", rec.Code)
	}
}

func TestAnalyzeOffline(t *testing.T) {
	s := newTestServer(t, nil, Config{Offline: true})

	rec := doAnalyze(s, oneMedication)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var n schema.DialogueNarrative
	if err := json.Unmarshal(rec.Body.Bytes(), &n); err != nil {
		t.Fatalf("response unparsable: %v", err)
	}
	if len(n.Skills) != 4 || n.Skills[0].Name != "Emotional Regulator" {
		t.Errorf("fallback skills = %+v", n.Skills)
	}
	if !strings.Contains(n.Dialogue[3].Text, "Sertralina") {
		t.Errorf("fallback should reference the first medication: %q", n.Dialogue[3].Text)
	}

	again := doAnalyze(s, oneMedication)
	if rec.Body.String() != again.Body.String() {
		t.Error("offline fallback is not deterministic")
	}
}
