package completion

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiCompleter implements Completer using Gemini text generation.
type GeminiCompleter struct {
	client *genai.Client
	model  string
}

func NewGeminiCompleter(ctx context.Context, apiKey string, modelName string) (*GeminiCompleter, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiCompleter{
		client: client,
		model:  modelName,
	}, nil
}

// Complete implements Completer.
func (g *GeminiCompleter) Complete(ctx context.Context, r Request) (string, error) {
	model := r.Model
	if strings.TrimSpace(model) == "" {
		model = g.model
	}
	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(r.Prompt), generationConfig(r))
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: no candidates", ErrMalformedResponse)
	}
	return resp.Text(), nil
}

func generationConfig(r Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(r.Temperature)),
		TopP:             genai.Ptr(float32(r.TopP)),
		FrequencyPenalty: genai.Ptr(float32(r.FrequencyPenalty)),
		PresencePenalty:  genai.Ptr(float32(r.PresencePenalty)),
		StopSequences:    r.Stop,
	}
	if r.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(r.MaxTokens)
	}
	return cfg
}
