package source_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"contentpilot/workflow-api/internal/domain/source"
)

func TestParseInstruction(t *testing.T) {
	text := `Write a post from this article.
- url: https://read.example.com/read/01abc234
- icp: solo consultants
- Dream: book more discovery calls
- category: Attract
- format: Belief Shift
- unknown: ignored`

	inst := source.ParseInstruction(text)

	if inst.URL != "https://read.example.com/read/01abc234" {
		t.Errorf("URL = %q", inst.URL)
	}
	if inst.ICP != "solo consultants" {
		t.Errorf("ICP = %q", inst.ICP)
	}
	if inst.Dream != "book more discovery calls" {
		t.Errorf("Dream = %q", inst.Dream)
	}
	if inst.Category != "Attract" {
		t.Errorf("Category = %q", inst.Category)
	}
	if inst.Format != "Belief Shift" {
		t.Errorf("Format = %q", inst.Format)
	}
	if inst.Raw != text {
		t.Error("Raw should preserve the original text")
	}
}

func TestParseInstruction_PlainText(t *testing.T) {
	inst := source.ParseInstruction("just make this shorter please")
	if inst.URL != "" || inst.Category != "" || inst.Format != "" {
		t.Errorf("plain text parsed structured fields: %+v", inst)
	}
}

func TestExtractReaderURL(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			"embedded url",
			"turn this into a post https://read.example.com/read/01abc234 thanks",
			"https://read.example.com/read/01abc234",
		},
		{"no url", "just reformat the draft", ""},
		{"non-reader url ignored", "see https://example.com/blog/post", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := source.ExtractReaderURL(tt.text); got != tt.expected {
				t.Errorf("ExtractReaderURL() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestExtractDocumentID(t *testing.T) {
	if got := source.ExtractDocumentID("https://read.example.com/read/01abc234"); got != "01abc234" {
		t.Errorf("ExtractDocumentID() = %q, want 01abc234", got)
	}
	if got := source.ExtractDocumentID("https://example.com/articles/42"); got != "" {
		t.Errorf("ExtractDocumentID() = %q, want empty", got)
	}
}

func TestCleanContent(t *testing.T) {
	raw := "<p>Deep  work   is</p>\n<div>rare and   valuable</div>"
	if got := source.CleanContent(raw); got != "Deep work is rare and valuable" {
		t.Errorf("CleanContent() = %q", got)
	}

	long := strings.Repeat("a", source.ContentBudget+100)
	got := source.CleanContent(long)
	if len(got) != source.ContentBudget+3 {
		t.Errorf("CleanContent() length = %d, want %d", len(got), source.ContentBudget+3)
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("CleanContent() should end with an ellipsis when truncated")
	}

	multibyte := strings.Repeat("é", source.ContentBudget+100)
	got = source.CleanContent(multibyte)
	if !utf8.ValidString(got) {
		t.Error("CleanContent() split a multi-byte rune at the budget boundary")
	}
	if utf8.RuneCountInString(got) != source.ContentBudget+3 {
		t.Errorf("CleanContent() rune count = %d, want %d", utf8.RuneCountInString(got), source.ContentBudget+3)
	}
}
