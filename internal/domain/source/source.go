// Package source handles source documents for content generation: reader
// document fetching contracts, instruction parsing, and content cleanup.
package source

import (
	"context"
	"regexp"
	"strings"

	"contentpilot/workflow-api/internal/domain/llm"
)

// ContentBudget caps how much source body is embedded in a stage payload.
const ContentBudget = 8000

// Document is a fetched source document.
type Document struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	URL       string `json:"url"`
	Content   string `json:"content"`
	WordCount int    `json:"word_count"`
}

// Fetcher retrieves source documents from the reading-list service.
type Fetcher interface {
	FetchDocument(ctx context.Context, documentID string) (*Document, error)
}

// Instruction is the structured part of a user request, parsed from
// "- key: value" lines.
type Instruction struct {
	URL      string
	ICP      string
	Dream    string
	Category string
	Format   string
	Raw      string
}

var (
	instructionLine = regexp.MustCompile(`(?m)^\s*-\s*(\w+)\s*:\s*(.+?)\s*$`)
	readerURL       = regexp.MustCompile(`https?://\S*read\S*/read/[a-zA-Z0-9]+\S*`)
	documentID      = regexp.MustCompile(`/read/([a-zA-Z0-9]+)`)
	htmlTag         = regexp.MustCompile(`<[^>]+>`)
	multiSpace      = regexp.MustCompile(`\s+`)
)

// ParseInstruction extracts structured "- key: value" lines from a request.
// Unknown keys are ignored; the raw text is kept for the stage payload.
func ParseInstruction(text string) Instruction {
	inst := Instruction{Raw: text}
	for _, match := range instructionLine.FindAllStringSubmatch(text, -1) {
		key := strings.ToLower(match[1])
		value := strings.TrimSpace(match[2])
		switch key {
		case "url":
			inst.URL = value
		case "icp":
			inst.ICP = value
		case "dream":
			inst.Dream = value
		case "category":
			inst.Category = value
		case "format":
			inst.Format = value
		}
	}
	return inst
}

// ExtractReaderURL finds the first reading-list document URL in free text,
// or returns "".
func ExtractReaderURL(text string) string {
	return readerURL.FindString(text)
}

// ExtractDocumentID pulls the document id out of a reading-list URL, or
// returns "".
func ExtractDocumentID(url string) string {
	match := documentID.FindStringSubmatch(url)
	if match == nil {
		return ""
	}
	return match[1]
}

// CleanContent strips markup, collapses whitespace, and caps the body at the
// content budget with an ellipsis.
func CleanContent(content string) string {
	cleaned := htmlTag.ReplaceAllString(content, " ")
	cleaned = multiSpace.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)
	return llm.Truncate(cleaned, ContentBudget)
}
