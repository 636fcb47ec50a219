package completion

import (
	"context"
	"fmt"
	"strings"
)

type Options struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// New builds the Completer for the configured provider. An empty provider
// selects OpenAI.
func New(ctx context.Context, opts Options) (Completer, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider == "" {
		provider = "openai"
	}

	switch provider {
	case "openai":
		return NewOpenAICompleter(opts.APIKey, opts.Model, opts.BaseURL), nil
	case "gemini":
		return NewGeminiCompleter(ctx, opts.APIKey, opts.Model)
	case "ollama":
		return NewOllamaCompleter(opts.Model, opts.BaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported completion provider: %s", opts.Provider)
	}
}
