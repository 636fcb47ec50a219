package completion

import (
	"context"
	"errors"
)

// ErrMalformedResponse is returned when the provider answered but the
// expected completion text was missing from the response.
var ErrMalformedResponse = errors.New("malformed completion response")

// Request is one text-completion call.
type Request struct {
	Prompt           string
	Model            string
	Temperature      float64
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64
	MaxTokens        int
	Stop             []string
}

// Completer submits a prompt with sampling parameters and returns the raw
// completion text. Deadlines and cancellation come from ctx.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}
