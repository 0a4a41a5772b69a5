package label_test

import (
	"testing"

	"contentpilot/workflow-api/internal/domain/label"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"category passthrough", "attract", "attract"},
		{"category uppercased", "NURTURE", "nurture"},
		{"category padded", "  Convert ", "convert"},
		{"spaced format", "Belief Shift", "belief_shift"},
		{"hyphenated format", "Step-by-Step", "step_by_step"},
		{"multiword format", "Process Breakdown", "process_breakdown"},
		{"faq format", "FAQ Answer", "faq_answer"},
		{"unknown label falls back", "Thought Leadership", "thought_leadership"},
		{"unknown single word falls back", "Rant", "rant"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := label.Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"Belief Shift", "attract", "Case Study", "Something New Here"}
	for _, in := range inputs {
		once := label.Normalize(in)
		twice := label.Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
