package llm

import "unicode/utf8"

const (
	// TokenEstimateRatio estimates ~4 characters per token.
	TokenEstimateRatio = 4

	// DefaultContextTokens is used when the model context length is unknown.
	DefaultContextTokens = 128000

	// SafetyMarginRatio reserves space for the response and overhead.
	SafetyMarginRatio = 0.80
)

// EstimateTokenCount gives a rough token estimate for a text.
func EstimateTokenCount(text string) int {
	return utf8.RuneCountInString(text) / TokenEstimateRatio
}

// EstimateMessagesTokenCount estimates total tokens across messages,
// including per-message structural overhead.
func EstimateMessagesTokenCount(messages []ChatMessage) int {
	total := 0
	for _, msg := range messages {
		total += 10
		total += EstimateTokenCount(msg.Content)
	}
	return total
}

// TrimToFit drops the oldest non-system messages until the estimated token
// count fits the context budget. System messages (the summary header) and
// the final message are always kept.
func TrimToFit(messages []ChatMessage, contextTokens int) []ChatMessage {
	if contextTokens <= 0 {
		contextTokens = DefaultContextTokens
	}
	budget := int(float64(contextTokens) * SafetyMarginRatio)

	if EstimateMessagesTokenCount(messages) <= budget {
		return messages
	}

	trimmed := make([]ChatMessage, len(messages))
	copy(trimmed, messages)

	for i := 0; i < len(trimmed)-1; i++ {
		if trimmed[i].Role == "system" {
			continue
		}
		trimmed = append(trimmed[:i], trimmed[i+1:]...)
		i--
		if EstimateMessagesTokenCount(trimmed) <= budget {
			break
		}
	}
	return trimmed
}

// Truncate caps a text at limit runes, appending an ellipsis when cut.
func Truncate(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit]) + "..."
}
