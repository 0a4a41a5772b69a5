// Package idea models the content idea batch produced by the ideation stage
// and the fixed pillar catalog it is validated against.
package idea

import (
	"fmt"
	"regexp"
	"strings"

	"contentpilot/workflow-api/internal/domain/errors"
	"contentpilot/workflow-api/internal/domain/label"
)

// Funnel categories. Every idea belongs to exactly one.
const (
	CategoryAttract = "attract"
	CategoryNurture = "nurture"
	CategoryConvert = "convert"
)

// BatchSize is the exact number of ideas one ideation call must produce.
const BatchSize = 12

// TypesPerCategory is the fixed number of pillar types under each category.
const TypesPerCategory = 4

// Catalog is the fixed pillar catalog: three funnel categories with four
// content angles each. Ideation output is validated against its shape.
var Catalog = map[string][]string{
	CategoryAttract: {"transformation", "misconception", "belief_shift", "hidden_truth"},
	CategoryNurture: {"step_by_step", "faq_answer", "process_breakdown", "quick_win"},
	CategoryConvert: {"client_fix", "case_study", "objection_reframe", "client_quote"},
}

// Idea is one of the twelve generated content angles. Ideas are created as an
// immutable batch and only ever read afterwards.
type Idea struct {
	PillarCategory string `json:"pillar_category"`
	PillarType     string `json:"pillar_type"`
	Headline       string `json:"headline"`
	Justification  string `json:"justification"`
	SourceConcept  string `json:"source_concept"`
}

// Batch is the immutable set of exactly twelve ideas produced by one
// ideation call, tagged with the source document it came from.
type Batch struct {
	SourceTitle  string `json:"source_title"`
	SourceAuthor string `json:"source_author"`
	Ideas        []Idea `json:"ideas"`
}

// Hints are the template-lookup hints derived from an idea's pillar labels.
type Hints struct {
	Category string
	Format   string
}

var ordinalPrefix = regexp.MustCompile(`^\s*\d+[\.\)]?\s*`)

// DeriveHints infers the template category and format from the idea's pillar
// labels. The category comes from a substring match on the pillar category
// label (provider output may say "Attract (top of funnel)"), the format from
// the pillar type with any leading ordinal stripped and normalized.
func (i Idea) DeriveHints() Hints {
	var h Hints
	lowered := strings.ToLower(i.PillarCategory)
	for _, cat := range []string{CategoryAttract, CategoryNurture, CategoryConvert} {
		if strings.Contains(lowered, cat) {
			h.Category = cat
			break
		}
	}
	h.Format = label.Normalize(ordinalPrefix.ReplaceAllString(i.PillarType, ""))
	return h
}

// RequiredFields reports whether the idea carries everything drafting needs.
func (i Idea) RequiredFields() bool {
	return strings.TrimSpace(i.Headline) != "" &&
		strings.TrimSpace(i.Justification) != "" &&
		strings.TrimSpace(i.PillarCategory) != "" &&
		strings.TrimSpace(i.PillarType) != ""
}

// Validate checks the structural contract of an ideation result: exactly
// twelve ideas, all required fields present, four ideas per derived category.
// Any violation is a hard failure with no partial recovery.
func (b *Batch) Validate() error {
	if len(b.Ideas) != BatchSize {
		return errors.NewPrecondition(errors.CodeMalformedIdeaSet,
			fmt.Sprintf("expected %d ideas, got %d", BatchSize, len(b.Ideas)))
	}

	perCategory := map[string]int{}
	for idx, i := range b.Ideas {
		if !i.RequiredFields() {
			return errors.NewPrecondition(errors.CodeIdeaMissingFields,
				fmt.Sprintf("idea %d is missing required fields", idx))
		}
		hints := i.DeriveHints()
		if hints.Category == "" {
			return errors.NewPrecondition(errors.CodeMalformedIdeaSet,
				fmt.Sprintf("idea %d has unrecognized pillar category %q", idx, i.PillarCategory))
		}
		perCategory[hints.Category]++
	}

	for _, cat := range []string{CategoryAttract, CategoryNurture, CategoryConvert} {
		if perCategory[cat] != TypesPerCategory {
			return errors.NewPrecondition(errors.CodeMalformedIdeaSet,
				fmt.Sprintf("category %q has %d ideas, want %d", cat, perCategory[cat], TypesPerCategory))
		}
	}
	return nil
}

// At returns the idea at the zero-based index, checking bounds.
func (b *Batch) At(index int) (Idea, error) {
	if len(b.Ideas) == 0 {
		return Idea{}, errors.NewPrecondition(errors.CodeEmptyIdeaBatch, "idea batch is empty")
	}
	if index < 0 || index >= len(b.Ideas) {
		return Idea{}, errors.NewPrecondition(errors.CodeIdeaIndexOutOfRange,
			fmt.Sprintf("idea index %d out of range [0, %d)", index, len(b.Ideas)))
	}
	return b.Ideas[index], nil
}
