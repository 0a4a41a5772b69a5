package llm_test

import (
	"strings"
	"testing"

	"contentpilot/workflow-api/internal/domain/llm"
)

func TestTrimToFit_KeepsSystemAndLatest(t *testing.T) {
	big := strings.Repeat("x", 4000)
	messages := []llm.ChatMessage{
		{Role: "system", Content: "summary so far"},
		{Role: "user", Content: big},
		{Role: "assistant", Content: big},
		{Role: "user", Content: big},
		{Role: "user", Content: "latest request"},
	}

	trimmed := llm.TrimToFit(messages, 1500)

	if len(trimmed) >= len(messages) {
		t.Fatalf("TrimToFit kept %d messages, expected fewer than %d", len(trimmed), len(messages))
	}
	if trimmed[0].Role != "system" {
		t.Errorf("first message role = %q, want system", trimmed[0].Role)
	}
	if trimmed[len(trimmed)-1].Content != "latest request" {
		t.Errorf("last message = %q, want the latest request", trimmed[len(trimmed)-1].Content)
	}
}

func TestTrimToFit_NoopWithinBudget(t *testing.T) {
	messages := []llm.ChatMessage{
		{Role: "user", Content: "short"},
		{Role: "assistant", Content: "also short"},
	}
	trimmed := llm.TrimToFit(messages, 128000)
	if len(trimmed) != len(messages) {
		t.Errorf("TrimToFit trimmed %d messages within budget", len(messages)-len(trimmed))
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		limit    int
		expected string
	}{
		{"under limit", "hello", 10, "hello"},
		{"exactly at limit", "hello", 5, "hello"},
		{"over limit", "hello world", 5, "hello..."},
		{"zero limit passes through", "hello", 0, "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := llm.Truncate(tt.input, tt.limit); got != tt.expected {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.limit, got, tt.expected)
			}
		})
	}
}
