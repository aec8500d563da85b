package schema

import (
	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"
)

func generateSchema[T any]() any {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return r.Reflect(v)
}

var (
	DialogueNarrativeSchema = generateSchema[DialogueNarrative]()
	ChatNarrativeSchema     = generateSchema[ChatNarrative]()
)

// ResponseFormat returns the structured-outputs response format for the
// requested narrative shape, for inferencers that support it.
func ResponseFormat(format string) openai.ChatCompletionNewParamsResponseFormatUnion {
	name := "internal_dialogue"
	schema := DialogueNarrativeSchema
	description := "Internal voices discussing the user's medication regimen"
	if format == FormatChat {
		name = "internal_chat"
		schema = ChatNarrativeSchema
		description = "Group chat between the user's internal voices and medications"
	}
	p := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        name,
		Description: openai.String(description),
		Schema:      schema,
		Strict:      openai.Bool(true),
	}
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: p},
	}
}
