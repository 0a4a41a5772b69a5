package workflow

import "strings"

// satisfactionKeywords are the approval markers recognized in feedback.
// Matching is case-insensitive substring search, so "Perfect, thanks!" and
// "this looks good to me" both approve.
var satisfactionKeywords = []string{
	"perfect",
	"great",
	"good",
	"looks good",
	"that works",
	"i'm satisfied",
	"done",
	"complete",
	"thanks",
	"approve",
}

// IsSatisfied classifies feedback as approval of the current output.
func IsSatisfied(feedback string) bool {
	lowered := strings.ToLower(feedback)
	for _, kw := range satisfactionKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}
