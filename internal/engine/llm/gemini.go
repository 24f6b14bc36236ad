package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/irahardianto/prreview/internal/platform/logger"
	"google.golang.org/genai"
)

// GenerativeClient abstracts the Gemini generative AI client for testability.
type GenerativeClient interface {
	// GenerateContent sends a prompt and returns a response.
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// ClientFactory creates a GenerativeClient. Production code uses DefaultClientFactory;
// tests inject a factory that returns a mock.
type ClientFactory func(ctx context.Context, apiKey string) (GenerativeClient, error)

// genaiClient wraps the real genai.Client to satisfy GenerativeClient.
type genaiClient struct {
	inner *genai.Client
}

func (g *genaiClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return g.inner.Models.GenerateContent(ctx, model, contents, config)
}

// DefaultClientFactory creates a real Gemini API client.
func DefaultClientFactory(ctx context.Context, apiKey string) (GenerativeClient, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &genaiClient{inner: c}, nil
}

// GeminiGateway implements Gateway using the Google Gemini API.
type GeminiGateway struct {
	apiKey  string
	model   string
	timeout time.Duration
	factory ClientFactory
}

// NewGeminiGateway creates a new GeminiGateway.
// timeout bounds each call, including client creation; zero means no deadline
// beyond the caller's context. The factory creates the underlying generative
// client; nil means DefaultClientFactory.
func NewGeminiGateway(apiKey, model string, timeout time.Duration, factory ClientFactory) *GeminiGateway {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	if factory == nil {
		factory = DefaultClientFactory
	}
	return &GeminiGateway{
		apiKey:  apiKey,
		model:   model,
		timeout: timeout,
		factory: factory,
	}
}

// Complete sends the prompt in structured-output mode. System and developer
// text are both carried in the system instruction, in that order.
func (g *GeminiGateway) Complete(ctx context.Context, p Prompt) (Completion, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	client, err := g.factory(ctx, g.apiKey)
	if err != nil {
		return Completion{}, fmt.Errorf("%w: creating Gemini client: %v", ErrUpstream, err)
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{
			{Text: p.System},
			{Text: p.Developer},
		}},
		Temperature:      genai.Ptr(float32(Temperature)),
		ResponseMIMEType: "application/json",
		ResponseSchema:   reviewResultSchema(),
	}

	log.Debug("sending completion request", "model", g.model)

	resp, err := client.GenerateContent(ctx, g.model, genai.Text(p.User), config)
	if err != nil {
		return Completion{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	text, ok := extractText(resp)
	if !ok {
		return Completion{}, ErrEmptyResponse
	}

	model := resp.ModelVersion
	if model == "" {
		model = g.model
	}

	log.Info("completion received",
		"model", model,
		"chars", len(text),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return Completion{Content: text, Model: model}, nil
}

// extractText returns the first non-empty text part of the first candidate.
func extractText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return "", false
	}
	for _, part := range candidate.Content.Parts {
		if part != nil && part.Text != "" {
			return part.Text, true
		}
	}
	return "", false
}

// reviewResultSchema describes the review JSON for Gemini's structured output
// mode. The server still validates every field afterwards.
func reviewResultSchema() *genai.Schema {
	str := func() *genai.Schema { return &genai.Schema{Type: genai.TypeString} }
	strArray := func() *genai.Schema { return &genai.Schema{Type: genai.TypeArray, Items: str()} }
	enum := func(values ...string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Enum: values}
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"overview":   str(),
					"keyChanges": strArray(),
				},
				Required: []string{"overview", "keyChanges"},
			},
			"risk": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"level":     enum("low", "medium", "high"),
					"rationale": strArray(),
				},
				Required: []string{"level", "rationale"},
			},
			"findings": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"id":             str(),
						"severity":       enum("low", "medium", "high"),
						"category":       enum("bug", "security", "performance", "maintainability", "style"),
						"file":           str(),
						"lineHint":       str(),
						"message":        str(),
						"recommendation": str(),
					},
					Required: []string{"id", "severity", "category", "message", "recommendation"},
				},
			},
			"suggestions": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title":   str(),
						"detail":  str(),
						"example": str(),
					},
					Required: []string{"title", "detail"},
				},
			},
			"checklist": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"item":   str(),
						"status": enum("missing", "ok", "unknown"),
					},
					Required: []string{"item", "status"},
				},
			},
			"meta": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"model":         str(),
					"promptVersion": str(),
				},
				Required: []string{"model", "promptVersion"},
			},
		},
		Required: []string{"summary", "risk", "findings", "suggestions", "checklist", "meta"},
	}
}
