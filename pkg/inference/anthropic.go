package inference

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
)

const (
	anthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion = "2023-06-01"

	defaultAnthropicModel = "claude-sonnet-4-20250514"
	defaultMaxTokens      = 2000
)

// AnthropicInferencer implements Inferencer against the Anthropic
// messages endpoint. The vendor ships no official Go SDK for the
// surface we need, so this is a small hand-rolled client.
type AnthropicInferencer struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewAnthropicInferencer(apiKey, model string) *AnthropicInferencer {
	return &AnthropicInferencer{
		apiKey:  apiKey,
		baseURL: anthropicBaseURL,
		model:   cmp.Or(model, defaultAnthropicModel),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (a *AnthropicInferencer) ChangeBaseURL(baseURL string) {
	a.baseURL = baseURL
}

func (a *AnthropicInferencer) SetModel(model string) {
	a.model = model
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int64              `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Temperature *float64           `json:"temperature,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Infer sends one system+user exchange to the messages endpoint and
// returns the concatenated text blocks of the reply.
func (a *AnthropicInferencer) Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error) {
	if params == nil {
		params = new(openai.ChatCompletionNewParams)
	}

	reqBody := anthropicRequest{
		Model:     cmp.Or(params.Model, a.model),
		MaxTokens: cmp.Or(params.MaxCompletionTokens.Value, defaultMaxTokens),
		System:    system,
		Messages:  []anthropicMessage{{Role: "user", Content: user}},
	}
	if params.Temperature.Valid() {
		t := params.Temperature.Value
		reqBody.Temperature = &t
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("anthropic inference error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("anthropic api status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("parse response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return "", fmt.Errorf("anthropic api status %d: %s", resp.StatusCode, parsed.Error.Message)
		}
		return "", fmt.Errorf("anthropic api status %d", resp.StatusCode)
	}

	var text string
	for _, block := range parsed.Content {
		if block.Type == "" || block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", errors.New("empty completion content")
	}
	return text, nil
}

// Verify checks that the result is non-empty or conforms to minimal expectations.
func (a *AnthropicInferencer) Verify(ctx context.Context, result string) (bool, error) {
	if result == "" {
		return false, errors.New("empty result")
	}
	return true, nil
}
