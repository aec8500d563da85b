// Package inference abstracts the generation backends the analyzer can
// talk to. Every backend takes the shared chat-completion parameter
// struct so callers tune one knob set regardless of vendor.
package inference

import (
	"context"

	"github.com/openai/openai-go/v3"
)

// Inferencer runs one generation round against a model backend.
type Inferencer interface {
	Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error)
	Verify(ctx context.Context, result string) (bool, error)
}
