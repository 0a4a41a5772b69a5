// Package label normalizes human-facing pillar labels into the canonical
// tokens used for template lookups and workflow state.
package label

import "strings"

// canonical maps known display labels to their canonical tokens. Keys are
// lowercase trimmed forms.
var canonical = map[string]string{
	// Funnel categories
	"attract": "attract",
	"nurture": "nurture",
	"convert": "convert",

	// Attract formats
	"transformation": "transformation",
	"misconception":  "misconception",
	"belief shift":   "belief_shift",
	"belief_shift":   "belief_shift",
	"hidden truth":   "hidden_truth",
	"hidden_truth":   "hidden_truth",

	// Nurture formats
	"step by step":      "step_by_step",
	"step-by-step":      "step_by_step",
	"step_by_step":      "step_by_step",
	"faq answer":        "faq_answer",
	"faq_answer":        "faq_answer",
	"process breakdown": "process_breakdown",
	"process_breakdown": "process_breakdown",
	"quick win":         "quick_win",
	"quick_win":         "quick_win",

	// Convert formats
	"client fix":        "client_fix",
	"client_fix":        "client_fix",
	"case study":        "case_study",
	"case_study":        "case_study",
	"objection reframe": "objection_reframe",
	"objection_reframe": "objection_reframe",
	"client quote":      "client_quote",
	"client_quote":      "client_quote",
}

// Normalize maps a display label to its canonical token. Unknown labels are
// lowercased with spaces joined by underscores rather than rejected, so a
// novel label degrades to an unmatched template lookup. Idempotent.
func Normalize(label string) string {
	key := strings.ToLower(strings.TrimSpace(label))
	if key == "" {
		return ""
	}
	if token, ok := canonical[key]; ok {
		return token
	}
	return strings.ReplaceAll(key, " ", "_")
}
