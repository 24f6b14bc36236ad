// Package llm wraps the external completion APIs behind a single-call gateway.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/irahardianto/prreview/internal/engine/config"
)

// Temperature is the fixed sampling temperature for review completions.
const Temperature = 0.2

var (
	// ErrUpstream wraps transport, auth, and non-2xx failures from the provider.
	ErrUpstream = errors.New("upstream completion request failed")
	// ErrEmptyResponse means the provider answered without any extractable text.
	ErrEmptyResponse = errors.New("empty response from model")
)

// Prompt is the three role-tagged instruction blocks sent to the model.
type Prompt struct {
	System    string
	Developer string
	User      string
}

// Completion is the text payload and the model that produced it.
type Completion struct {
	Content string
	Model   string
}

// Gateway abstracts one JSON-mode completion call for testability.
type Gateway interface {
	// Complete issues exactly one request. It never retries.
	Complete(ctx context.Context, p Prompt) (Completion, error)
}

// New builds the gateway for the configured provider. It returns (nil, nil)
// when no credential is configured; callers treat that as "not configured".
func New(cfg config.Config) (Gateway, error) {
	key := cfg.APIKey()
	if key.IsEmpty() {
		return nil, nil
	}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIGateway(key.Reveal(), cfg.Model, cfg.OpenAIBaseURL, &http.Client{Timeout: cfg.RequestTimeout}), nil
	case config.ProviderGemini:
		return NewGeminiGateway(key.Reveal(), cfg.Model, cfg.RequestTimeout, nil), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}
