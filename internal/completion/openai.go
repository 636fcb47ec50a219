package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OpenAICompleter talks to the OpenAI text-completions endpoint.
type OpenAICompleter struct {
	client   *http.Client
	apiKey   string
	model    string
	endpoint string
}

type openAICompletionRequest struct {
	Model            string   `json:"model"`
	Prompt           string   `json:"prompt"`
	Temperature      float64  `json:"temperature"`
	MaxTokens        int      `json:"max_tokens"`
	TopP             float64  `json:"top_p"`
	FrequencyPenalty float64  `json:"frequency_penalty"`
	PresencePenalty  float64  `json:"presence_penalty"`
	Stop             []string `json:"stop,omitempty"`
}

type openAICompletionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

type openAIErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

func NewOpenAICompleter(apiKey, model, baseURL string) *OpenAICompleter {
	endpoint := strings.TrimSpace(baseURL)
	if endpoint == "" {
		endpoint = "https://api.openai.com/v1/completions"
	} else {
		endpoint = strings.TrimRight(endpoint, "/")
		if !strings.HasSuffix(endpoint, "/completions") {
			if strings.HasSuffix(endpoint, "/v1") {
				endpoint += "/completions"
			} else {
				endpoint += "/v1/completions"
			}
		}
	}
	return &OpenAICompleter{
		// No client timeout: the per-call deadline travels in the context.
		client:   &http.Client{},
		apiKey:   apiKey,
		model:    model,
		endpoint: endpoint,
	}
}

// Complete implements Completer.
func (o *OpenAICompleter) Complete(ctx context.Context, r Request) (string, error) {
	if strings.TrimSpace(o.apiKey) == "" {
		return "", fmt.Errorf("openai api key is required")
	}
	model := r.Model
	if strings.TrimSpace(model) == "" {
		model = o.model
	}
	if strings.TrimSpace(model) == "" {
		return "", fmt.Errorf("openai model is required")
	}

	body, err := json.Marshal(openAICompletionRequest{
		Model:            model,
		Prompt:           r.Prompt,
		Temperature:      r.Temperature,
		MaxTokens:        r.MaxTokens,
		TopP:             r.TopP,
		FrequencyPenalty: r.FrequencyPenalty,
		PresencePenalty:  r.PresencePenalty,
		Stop:             r.Stop,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(raw))
		var errBody openAIErrorBody
		if json.Unmarshal(raw, &errBody) == nil && strings.TrimSpace(errBody.Error.Message) != "" {
			msg = strings.TrimSpace(errBody.Error.Message)
		}
		return "", fmt.Errorf("openai completion request failed (%d): %s", resp.StatusCode, msg)
	}

	var parsed openAICompletionResponse
	if err := decodeResponse(openAIResponseSchema, raw, &parsed); err != nil {
		return "", err
	}
	return parsed.Choices[0].Text, nil
}
