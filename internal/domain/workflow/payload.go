package workflow

import (
	"fmt"
	"strings"

	"contentpilot/workflow-api/internal/domain/idea"
	"contentpilot/workflow-api/internal/domain/llm"
	"contentpilot/workflow-api/internal/domain/source"
	"contentpilot/workflow-api/internal/domain/template"
)

// genericStyleFallback is the styling guidance used when no template
// resolves.
const genericStyleFallback = "No reference template is available. Use a clear hook, short " +
	"paragraphs, concrete language, and a single call to action."

// buildWriterPayload frames the user request with parsed instruction fields
// and the fetched source document for the writing stage.
func buildWriterPayload(inst source.Instruction, doc *source.Document) string {
	var b strings.Builder
	b.WriteString("Write a draft for the following request.\n\n")
	b.WriteString("Request:\n")
	b.WriteString(inst.Raw)

	if inst.ICP != "" {
		fmt.Fprintf(&b, "\n\nTarget audience: %s", inst.ICP)
	}
	if inst.Dream != "" {
		fmt.Fprintf(&b, "\nDesired outcome for the audience: %s", inst.Dream)
	}
	if inst.Category != "" {
		fmt.Fprintf(&b, "\nFunnel category: %s", inst.Category)
	}

	if doc != nil {
		fmt.Fprintf(&b, "\n\nSource material: %q by %s (%d words)\n\n%s",
			doc.Title, doc.Author, doc.WordCount, llm.Truncate(doc.Content, source.ContentBudget))
	}
	return b.String()
}

// buildFormatterPayload frames a draft with the resolved template (or the
// generic fallback) for the formatting stage.
func buildFormatterPayload(draft string, tmpl *template.Template) string {
	var b strings.Builder
	b.WriteString("Format the following draft for publication.\n\nDraft:\n")
	b.WriteString(draft)
	b.WriteString("\n\n")
	if tmpl != nil {
		fmt.Fprintf(&b, "Match the structure and tone of this reference template (%s):\n%s",
			tmpl.Title, tmpl.Content)
	} else {
		b.WriteString(genericStyleFallback)
	}
	return b.String()
}

// buildRevisionPayload frames the current output with user feedback for a
// formatting revision pass.
func buildRevisionPayload(currentOutput, feedback string) string {
	var b strings.Builder
	b.WriteString("Revise the post below according to the feedback.\n\nCurrent post:\n")
	b.WriteString(currentOutput)
	b.WriteString("\n\nFeedback:\n")
	b.WriteString(feedback)
	return b.String()
}

// buildIdeaDraftPayload frames a selected idea, its source excerpt, and the
// resolved template for full-article drafting.
func buildIdeaDraftPayload(selected idea.Idea, batch *idea.Batch, sourceContent string, tmpl *template.Template) string {
	var b strings.Builder
	b.WriteString("Write a complete post developing this content idea.\n\n")
	fmt.Fprintf(&b, "Headline: %s\n", selected.Headline)
	fmt.Fprintf(&b, "Angle: %s / %s\n", selected.PillarCategory, selected.PillarType)
	fmt.Fprintf(&b, "Why it works: %s\n", selected.Justification)
	if selected.SourceConcept != "" {
		fmt.Fprintf(&b, "Source concept: %s\n", selected.SourceConcept)
	}
	if batch.SourceTitle != "" {
		fmt.Fprintf(&b, "\nBased on %q by %s.\n", batch.SourceTitle, batch.SourceAuthor)
	}
	if sourceContent != "" {
		fmt.Fprintf(&b, "\nSource excerpt:\n%s\n", llm.Truncate(sourceContent, source.ContentBudget))
	}
	b.WriteString("\n")
	if tmpl != nil {
		fmt.Fprintf(&b, "Match the structure and tone of this reference template (%s):\n%s",
			tmpl.Title, tmpl.Content)
	} else {
		b.WriteString(genericStyleFallback)
	}
	return b.String()
}

// buildIdeaSummary renders the user-facing summary message for a generated
// idea batch, grouped by funnel category.
func buildIdeaSummary(batch *idea.Batch) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generated %d content ideas", len(batch.Ideas))
	if batch.SourceTitle != "" {
		fmt.Fprintf(&b, " from %q", batch.SourceTitle)
	}
	b.WriteString(":\n")

	grouped := map[string][]string{}
	for n, i := range batch.Ideas {
		cat := i.DeriveHints().Category
		grouped[cat] = append(grouped[cat], fmt.Sprintf("  %d. %s", n, i.Headline))
	}
	for _, cat := range []string{idea.CategoryAttract, idea.CategoryNurture, idea.CategoryConvert} {
		if len(grouped[cat]) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s:\n%s\n", strings.ToUpper(cat[:1])+cat[1:], strings.Join(grouped[cat], "\n"))
	}
	b.WriteString("\nReply with an idea number to draft it.")
	return b.String()
}
