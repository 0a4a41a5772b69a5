// Package status defines shared lifecycle statuses for content workflows.
package status

import "errors"

// Status represents the lifecycle status of a content workflow.
type Status string

const (
	// Non-terminal states
	StatusInProgress        Status = "in_progress"          // Generation stages actively executing
	StatusIdeasGenerated    Status = "ideas_generated"      // Idea batch produced, not yet acted on
	StatusAwaitingSelection Status = "awaiting_selection"   // Blocked on the user picking an idea
	StatusWaitingApproval   Status = "waiting_for_approval" // Blocked on the user approving the draft

	// Terminal states
	StatusCompleted Status = "completed" // User accepted the final output
	StatusError     Status = "error"     // Unrecoverable failure for this attempt
)

// ErrInvalidTransition is returned when a status transition is not allowed.
var ErrInvalidTransition = errors.New("invalid status transition")

// IsTerminal returns true if the status is a terminal state. An errored
// workflow may still be restarted by re-submitting the request, so error is
// terminal only for the current attempt.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError
}

// WaitsForUser returns true if the workflow is blocked on user input.
func (s Status) WaitsForUser() bool {
	return s == StatusWaitingApproval || s == StatusAwaitingSelection
}

// IsActive returns true if the status indicates an unfinished workflow.
func (s Status) IsActive() bool {
	return s != "" && !s.IsTerminal()
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ValidTransitions defines allowed status transitions. The empty status is a
// freshly created conversation that has not entered any workflow yet.
var ValidTransitions = map[Status][]Status{
	"":                      {StatusInProgress, StatusIdeasGenerated},
	StatusInProgress:        {StatusWaitingApproval, StatusError},
	StatusIdeasGenerated:    {StatusAwaitingSelection, StatusError},
	StatusAwaitingSelection: {StatusInProgress, StatusWaitingApproval, StatusError},
	StatusWaitingApproval:   {StatusWaitingApproval, StatusCompleted, StatusError},
	// A re-submitted request restarts an errored workflow.
	StatusError:     {StatusInProgress, StatusIdeasGenerated},
	StatusCompleted: {},
}

// CanTransitionTo checks if a transition to the target status is valid.
func (s Status) CanTransitionTo(target Status) bool {
	validTargets, ok := ValidTransitions[s]
	if !ok {
		return false
	}
	for _, t := range validTargets {
		if t == target {
			return true
		}
	}
	return false
}

// TransitionTo attempts the transition and returns an error if invalid.
func (s Status) TransitionTo(target Status) (Status, error) {
	if !s.CanTransitionTo(target) {
		return s, ErrInvalidTransition
	}
	return target, nil
}
