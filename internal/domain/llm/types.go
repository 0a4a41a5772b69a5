// Package llm defines the text-generation provider contract used by
// generation stages.
package llm

import (
	"context"

	"contentpilot/workflow-api/internal/domain/idea"
)

// Effort selects the provider's quality/latency tradeoff. Plain reformatting
// runs at the default effort; full-article drafting from an idea runs high.
type Effort string

const (
	EffortDefault Effort = "medium"
	EffortHigh    Effort = "high"
)

// ChatMessage is a single message in the context sent to the provider.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider is the pluggable text-generation backend.
type Provider interface {
	// Generate runs one bounded text generation: system instructions plus
	// conversation context in, plain text out.
	Generate(ctx context.Context, instructions string, messages []ChatMessage, effort Effort) (string, error)

	// GenerateIdeaSet requests a schema-constrained batch of exactly twelve
	// ideas from the given source material. Structural validation of the
	// result is the caller's responsibility.
	GenerateIdeaSet(ctx context.Context, instructions, input string) (*idea.Batch, error)
}
