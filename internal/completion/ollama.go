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

// OllamaCompleter runs raw-prompt generation against a local Ollama server.
type OllamaCompleter struct {
	client   *http.Client
	model    string
	endpoint string
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Raw     bool          `json:"raw"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature      float64  `json:"temperature"`
	TopP             float64  `json:"top_p"`
	FrequencyPenalty float64  `json:"frequency_penalty"`
	PresencePenalty  float64  `json:"presence_penalty"`
	NumPredict       int      `json:"num_predict,omitempty"`
	Stop             []string `json:"stop,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

func NewOllamaCompleter(model string, baseURL string) *OllamaCompleter {
	url := strings.TrimSpace(baseURL)
	if url == "" {
		url = "http://127.0.0.1:11434"
	}
	url = strings.TrimRight(url, "/")
	if !strings.HasSuffix(url, "/api/generate") {
		url += "/api/generate"
	}

	return &OllamaCompleter{
		client:   &http.Client{},
		model:    model,
		endpoint: url,
	}
}

// Complete implements Completer.
func (o *OllamaCompleter) Complete(ctx context.Context, r Request) (string, error) {
	model := r.Model
	if strings.TrimSpace(model) == "" {
		model = o.model
	}
	if strings.TrimSpace(model) == "" {
		return "", fmt.Errorf("ollama model is required")
	}

	body, err := json.Marshal(ollamaGenerateRequest{
		Model:  model,
		Prompt: r.Prompt,
		Raw:    true,
		Stream: false,
		Options: ollamaOptions{
			Temperature:      r.Temperature,
			TopP:             r.TopP,
			FrequencyPenalty: r.FrequencyPenalty,
			PresencePenalty:  r.PresencePenalty,
			NumPredict:       r.MaxTokens,
			Stop:             r.Stop,
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
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
		return "", fmt.Errorf("ollama generate request failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed ollamaGenerateResponse
	if err := decodeResponse(ollamaResponseSchema, raw, &parsed); err != nil {
		return "", err
	}
	return parsed.Response, nil
}
