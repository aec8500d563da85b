package server

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/openai/openai-go/v3"
	"github.com/segmentio/ksuid"

	"cabinet/pkg/repair"
	"cabinet/pkg/schema"
	"cabinet/pkg/taxonomy"
	"cabinet/pkg/utils"
)

type analyzeReq struct {
	Medications []schema.MedicationEntry `json:"medications"`
	UserProfile *schema.UserProfile      `json:"userProfile,omitempty"`
	Format      string                   `json:"format,omitempty"`
}

const errAnalyzeFailed = "Failed to process the analysis"

// POST /api/analyze
func (s *Server) handlePostAnalyze(c echo.Context) error {
	var req analyzeReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	if len(req.Medications) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "a non-empty medications array is required")
	}
	for _, m := range req.Medications {
		if !m.Valid() {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid medication entry %q", m.Name))
		}
	}

	format := schema.FormatDialogue
	if req.Format == schema.FormatChat {
		format = schema.FormatChat
	}

	result := taxonomy.Classify(req.Medications)
	log.Info("classified regimen",
		"medications", len(req.Medications),
		"aspects", len(result.MentalAspects),
		"primary", result.Primary,
	)

	if s.Config.Offline {
		log.Info("offline mode, serving fallback narrative", "format", format)
		fallback := schema.FallbackNarrative(req.Medications, format)
		if raw, err := json.Marshal(fallback); err == nil {
			s.record(req, format, result, raw)
		}
		return c.JSON(http.StatusOK, fallback)
	}
	if s.Inferencer == nil {
		log.Error("no inference credential configured")
		return c.JSON(http.StatusInternalServerError, s.errBody("missing API credential"))
	}

	system, user := buildPrompt(format, result, req.Medications, req.UserProfile)
	if n, err := utils.NumTokensFromMessages(system + user); err == nil {
		log.Debug("prompt assembled", "tokens", n, "format", format)
	}

	run := func() (json.RawMessage, error) { return s.generate(system, user, format) }

	key := fingerprint(req.Medications, req.UserProfile, format)
	var narrative json.RawMessage
	var err error
	if strings.Contains(c.Request().Header.Get("Cache-Control"), "no-cache") {
		narrative, err = s.generations.Force(key, run)
	} else {
		narrative, err = s.generations.Do(key, run)
	}
	if err != nil {
		log.Error("analysis failed", "err", err)
		return c.JSON(http.StatusInternalServerError, s.errBody(err.Error()))
	}

	s.record(req, format, result, narrative)
	return c.JSONBlob(http.StatusOK, narrative)
}

// generate runs one bounded upstream call and pipes the output through
// sanitize, repair and validation. It runs under the server context,
// not the request context, because coalesced callers share the result.
func (s *Server) generate(system, user, format string) (json.RawMessage, error) {
	ctx, cancel := s.boundedCtx()
	defer cancel()

	params := &openai.ChatCompletionNewParams{
		MaxCompletionTokens: openai.Int(s.Config.MaxOutputTokens),
		ResponseFormat:      schema.ResponseFormat(format),
	}
	raw, err := s.Inferencer.Infer(ctx, params, system, user)
	if err != nil {
		return nil, fmt.Errorf("inference: %w", err)
	}

	clean := repair.Sanitize(raw)
	narrative, err := repair.ParseOrRepair(clean)
	if err != nil {
		return nil, err
	}
	if string(narrative) != clean {
		changed := 0
		for _, d := range utils.DiffWords(clean, string(narrative)) {
			if d.Op != 0 {
				changed++
			}
		}
		log.Warn("repaired model output", "changedWords", changed, "bytes", len(narrative))
	}

	if err := validateNarrative(narrative, format); err != nil {
		return nil, fmt.Errorf("validation: %w", err)
	}
	return narrative, nil
}

func (s *Server) record(req analyzeReq, format string, result taxonomy.Result, narrative json.RawMessage) {
	rep := schema.Report{
		ID:          ksuid.New().String(),
		CreatedAt:   schema.Now(),
		Medications: req.Medications,
		Primary:     string(result.Primary),
		Format:      format,
		Narrative:   narrative,
	}
	s.Reports.Store(rep.ID, rep)
}

// errBody includes details only outside production.
func (s *Server) errBody(details string) map[string]any {
	if s.Config.Production {
		return utils.ErrJSON(errAnalyzeFailed)
	}
	return utils.ErrJSON(errAnalyzeFailed, utils.LimitStr(details, 500))
}

func fingerprint(meds []schema.MedicationEntry, profile *schema.UserProfile, format string) string {
	payload, _ := json.Marshal(struct {
		Medications []schema.MedicationEntry `json:"medications"`
		Profile     *schema.UserProfile      `json:"profile,omitempty"`
		Format      string                   `json:"format"`
	}{meds, profile, format})
	return fmt.Sprintf("%x", sha256.Sum256(payload))
}
