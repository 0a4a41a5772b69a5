// Package llmprovider implements the llm.Provider contract against an
// OpenAI-compatible generation API.
package llmprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"contentpilot/workflow-api/internal/domain/idea"
	"contentpilot/workflow-api/internal/domain/llm"
)

// Client implements the llm.Provider interface.
type Client struct {
	httpClient *resty.Client
	model      string
}

// NewClient creates a Resty-backed client for the generation API.
func NewClient(baseURL, apiKey, model string) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(120 * time.Second)
	if apiKey != "" {
		httpClient.SetAuthToken(apiKey)
	}
	return &Client{httpClient: httpClient, model: model}
}

var _ llm.Provider = (*Client)(nil)

type chatRequest struct {
	Model           string            `json:"model"`
	Messages        []chatMessage     `json:"messages"`
	ReasoningEffort string            `json:"reasoning_effort,omitempty"`
	ResponseFormat  *responseFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *jsonSchema `json:"json_schema,omitempty"`
}

type jsonSchema struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate calls /v1/chat/completions and extracts the assistant text.
func (c *Client) Generate(ctx context.Context, instructions string, messages []llm.ChatMessage, effort llm.Effort) (string, error) {
	req := chatRequest{
		Model:           c.model,
		ReasoningEffort: string(effort),
	}
	if instructions != "" {
		req.Messages = append(req.Messages, chatMessage{Role: "system", Content: instructions})
	}
	for _, msg := range messages {
		req.Messages = append(req.Messages, chatMessage{Role: msg.Role, Content: msg.Content})
	}

	var completion chatResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&completion).
		Post("/v1/chat/completions")
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("generation api error: %s", resp.String())
	}
	if completion.Error != nil {
		return "", fmt.Errorf("generation api error: %s", completion.Error.Message)
	}

	return extractText(&completion)
}

// GenerateIdeaSet calls /v1/chat/completions with a JSON-schema constrained
// response format for a batch of exactly twelve ideas.
func (c *Client) GenerateIdeaSet(ctx context.Context, instructions, input string) (*idea.Batch, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: instructions},
			{Role: "user", Content: input},
		},
		ReasoningEffort: string(llm.EffortHigh),
		ResponseFormat: &responseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchema{
				Name:   "idea_batch",
				Strict: true,
				Schema: ideaBatchSchema(),
			},
		},
	}

	var completion chatResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&completion).
		Post("/v1/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("ideation request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("generation api error: %s", resp.String())
	}
	if completion.Error != nil {
		return nil, fmt.Errorf("generation api error: %s", completion.Error.Message)
	}

	text, err := extractText(&completion)
	if err != nil {
		return nil, err
	}

	var batch idea.Batch
	if err := json.Unmarshal([]byte(text), &batch); err != nil {
		return nil, fmt.Errorf("ideation returned non-JSON payload: %w", err)
	}
	return &batch, nil
}

// extractText pulls the assistant text out of the first choice. The primary
// shape is a plain string content; some backends return an array of typed
// content parts instead, so a structural fallback walk covers that.
func extractText(completion *chatResponse) (string, error) {
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("generation response has no choices")
	}
	raw := completion.Choices[0].Message.Content
	if len(raw) == 0 {
		return "", fmt.Errorf("generation response has empty content")
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text), nil
	}

	var parts []map[string]any
	if err := json.Unmarshal(raw, &parts); err != nil {
		return "", fmt.Errorf("unrecognized content shape: %s", truncateForError(raw))
	}
	var b strings.Builder
	for _, part := range parts {
		if t, ok := part["text"].(string); ok {
			b.WriteString(t)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no text parts in content: %s", truncateForError(raw))
	}
	return strings.TrimSpace(b.String()), nil
}

func truncateForError(raw json.RawMessage) string {
	s := string(raw)
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}

// ideaBatchSchema is the JSON schema constraining ideation output to twelve
// fully populated ideas.
func ideaBatchSchema() map[string]any {
	ideaSchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pillar_category": map[string]any{"type": "string"},
			"pillar_type":     map[string]any{"type": "string"},
			"headline":        map[string]any{"type": "string"},
			"justification":   map[string]any{"type": "string"},
			"source_concept":  map[string]any{"type": "string"},
		},
		"required":             []string{"pillar_category", "pillar_type", "headline", "justification", "source_concept"},
		"additionalProperties": false,
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"source_title":  map[string]any{"type": "string"},
			"source_author": map[string]any{"type": "string"},
			"ideas": map[string]any{
				"type":     "array",
				"minItems": idea.BatchSize,
				"maxItems": idea.BatchSize,
				"items":    ideaSchema,
			},
		},
		"required":             []string{"source_title", "source_author", "ideas"},
		"additionalProperties": false,
	}
}
