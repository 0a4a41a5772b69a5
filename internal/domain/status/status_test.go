package status_test

import (
	"testing"

	"contentpilot/workflow-api/internal/domain/status"
)

func TestStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		name     string
		status   status.Status
		expected bool
	}{
		{"in_progress is not terminal", status.StatusInProgress, false},
		{"ideas_generated is not terminal", status.StatusIdeasGenerated, false},
		{"awaiting_selection is not terminal", status.StatusAwaitingSelection, false},
		{"waiting_for_approval is not terminal", status.StatusWaitingApproval, false},
		{"completed is terminal", status.StatusCompleted, true},
		{"error is terminal", status.StatusError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.IsTerminal(); got != tt.expected {
				t.Errorf("Status.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStatus_WaitsForUser(t *testing.T) {
	tests := []struct {
		name     string
		status   status.Status
		expected bool
	}{
		{"waiting_for_approval waits", status.StatusWaitingApproval, true},
		{"awaiting_selection waits", status.StatusAwaitingSelection, true},
		{"in_progress does not wait", status.StatusInProgress, false},
		{"completed does not wait", status.StatusCompleted, false},
		{"error does not wait", status.StatusError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.WaitsForUser(); got != tt.expected {
				t.Errorf("Status.WaitsForUser() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name  string
		from  status.Status
		to    status.Status
		canDo bool
	}{
		{"new to in_progress", status.Status(""), status.StatusInProgress, true},
		{"new to ideas_generated", status.Status(""), status.StatusIdeasGenerated, true},
		{"new to completed - invalid", status.Status(""), status.StatusCompleted, false},

		{"in_progress to waiting_for_approval", status.StatusInProgress, status.StatusWaitingApproval, true},
		{"in_progress to error", status.StatusInProgress, status.StatusError, true},
		{"in_progress to completed - invalid", status.StatusInProgress, status.StatusCompleted, false},

		{"ideas_generated to awaiting_selection", status.StatusIdeasGenerated, status.StatusAwaitingSelection, true},
		{"awaiting_selection to in_progress", status.StatusAwaitingSelection, status.StatusInProgress, true},
		{"awaiting_selection to waiting_for_approval", status.StatusAwaitingSelection, status.StatusWaitingApproval, true},

		{"waiting_for_approval loops on revision", status.StatusWaitingApproval, status.StatusWaitingApproval, true},
		{"waiting_for_approval to completed", status.StatusWaitingApproval, status.StatusCompleted, true},

		{"error to in_progress (restart)", status.StatusError, status.StatusInProgress, true},
		{"completed to anything - invalid", status.StatusCompleted, status.StatusInProgress, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.canDo {
				t.Errorf("Status.CanTransitionTo() = %v, want %v", got, tt.canDo)
			}
		})
	}
}

func TestStatus_TransitionTo(t *testing.T) {
	next, err := status.StatusInProgress.TransitionTo(status.StatusWaitingApproval)
	if err != nil {
		t.Fatalf("TransitionTo() unexpected error: %v", err)
	}
	if next != status.StatusWaitingApproval {
		t.Errorf("TransitionTo() = %v, want %v", next, status.StatusWaitingApproval)
	}

	_, err = status.StatusCompleted.TransitionTo(status.StatusInProgress)
	if err != status.ErrInvalidTransition {
		t.Errorf("TransitionTo() error = %v, want ErrInvalidTransition", err)
	}
}
