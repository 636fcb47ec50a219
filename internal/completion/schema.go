package completion

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const openAICompletionSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["choices"],
	"properties": {
		"choices": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["text"],
				"properties": {"text": {"type": "string"}}
			}
		}
	}
}`

const ollamaGenerateSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["response"],
	"properties": {"response": {"type": "string"}}
}`

var (
	openAIResponseSchema = mustCompileSchema("openai_completion.schema.json", openAICompletionSchema)
	ollamaResponseSchema = mustCompileSchema("ollama_generate.schema.json", ollamaGenerateSchema)
)

func mustCompileSchema(name, schema string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(schema)); err != nil {
		panic(fmt.Sprintf("completion: invalid schema %s: %v", name, err))
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("completion: invalid schema %s: %v", name, err))
	}
	return compiled
}

// decodeResponse checks raw against schema and unmarshals it into out.
// Bodies that are not JSON or lack the completion text are reported as
// ErrMalformedResponse.
func decodeResponse(schema *jsonschema.Schema, raw []byte, out any) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
