package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/irahardianto/prreview/internal/platform/logger"
)

// maxResponseSize limits the upstream body to prevent memory exhaustion.
const maxResponseSize = 10 * 1024 * 1024

// OpenAIGateway implements Gateway against the OpenAI Responses API.
type OpenAIGateway struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOpenAIGateway creates a gateway for baseURL (e.g. https://api.openai.com/v1).
// A nil client falls back to http.DefaultClient.
func NewOpenAIGateway(apiKey, model, baseURL string, client *http.Client) *OpenAIGateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &OpenAIGateway{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// Complete sends the three-part prompt in JSON-object mode and extracts the text payload.
func (o *OpenAIGateway) Complete(ctx context.Context, p Prompt) (Completion, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	body := responsesRequest{
		Model: o.model,
		Input: []responsesMessage{
			{Role: "system", Content: p.System},
			{Role: "developer", Content: p.Developer},
			{Role: "user", Content: p.User},
		},
		Text:        responsesText{Format: responsesFormat{Type: "json_object"}},
		Temperature: Temperature,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return Completion{}, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/responses", bytes.NewReader(payload))
	if err != nil {
		return Completion{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	log.Debug("sending completion request", "model", o.model, "bytes", len(payload))

	httpResp, err := o.client.Do(httpReq)
	if err != nil {
		return Completion{}, fmt.Errorf("%w: sending request: %v", ErrUpstream, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return Completion{}, fmt.Errorf("%w: reading response: %v", ErrUpstream, err)
	}

	if httpResp.StatusCode < http.StatusOK || httpResp.StatusCode >= http.StatusMultipleChoices {
		return Completion{}, fmt.Errorf("%w: status %d: %s", ErrUpstream, httpResp.StatusCode, upstreamErrorMessage(respBody))
	}

	var envelope responsesEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return Completion{}, fmt.Errorf("%w: decoding response: %v", ErrUpstream, err)
	}

	text, ok := envelope.text()
	if !ok {
		return Completion{}, ErrEmptyResponse
	}

	model := envelope.Model
	if model == "" {
		model = o.model
	}

	log.Info("completion received",
		"model", model,
		"chars", len(text),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return Completion{Content: text, Model: model}, nil
}

type responsesRequest struct {
	Model       string             `json:"model"`
	Input       []responsesMessage `json:"input"`
	Text        responsesText      `json:"text"`
	Temperature float64            `json:"temperature"`
}

type responsesMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responsesText struct {
	Format responsesFormat `json:"format"`
}

type responsesFormat struct {
	Type string `json:"type"`
}

// responsesEnvelope carries the text either flat in output_text or nested in
// output[].content[].
type responsesEnvelope struct {
	Model      string            `json:"model"`
	OutputText *string           `json:"output_text"`
	Output     []responsesOutput `json:"output"`
}

type responsesOutput struct {
	Type    string             `json:"type"`
	Content []responsesContent `json:"content"`
}

type responsesContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// text picks the payload by priority: flat output_text, then the first
// output_text-typed content item, then the first content item with any text.
// Only message output items are considered for the nested forms.
func (e responsesEnvelope) text() (string, bool) {
	if e.OutputText != nil && *e.OutputText != "" {
		return *e.OutputText, true
	}

	for _, item := range e.Output {
		if item.Type != "message" {
			continue
		}
		for _, c := range item.Content {
			if c.Type == "output_text" && c.Text != "" {
				return c.Text, true
			}
		}
	}

	for _, item := range e.Output {
		if item.Type != "message" {
			continue
		}
		for _, c := range item.Content {
			if c.Text != "" {
				return c.Text, true
			}
		}
	}

	return "", false
}

// upstreamErrorMessage pulls a readable message out of an error body.
func upstreamErrorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &payload); err == nil {
		if strings.TrimSpace(payload.Error.Message) != "" {
			return payload.Error.Message
		}
		if strings.TrimSpace(payload.Message) != "" {
			return payload.Message
		}
	}

	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "unknown error"
	}
	return trimmed
}
