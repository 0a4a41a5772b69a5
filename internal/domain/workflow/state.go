package workflow

import (
	"encoding/json"
	"fmt"

	"contentpilot/workflow-api/internal/domain/idea"
	"contentpilot/workflow-api/internal/domain/status"
)

// Workflow state keys. The conversation store holds the state as an opaque
// key-value blob; these are the coordinator-owned keys within it.
const (
	keyStatus              = "status"
	keyWaitingForUser      = "waiting_for_user"
	keyUserRequest         = "user_request"
	keyCategory            = "category"
	keyWriterComplete      = "writer_complete"
	keyFormatComplete      = "format_agent_complete"
	keyUserSatisfied       = "user_satisfied"
	keyCurrentDraft        = "current_draft"
	keyFinalOutput         = "final_output"
	keyIdeas               = "ideas"
	keySourceContent       = "source_content"
	keySelectedIdea        = "selected_idea"
	keyAwaitingSelection   = "awaiting_selection"
	keyRetryCount          = "retry_count"
	keyLastError           = "last_error"
	keyErrorMessage        = "error_message"
	keyErrorTime           = "error_time"
	keyGenerationStartedAt = "generation_started_at"
	keyGenerationDoneAt    = "generation_completed_at"
	keyGenerationTime      = "generation_time"
)

// State is the typed view over the coordinator's keys in the conversation
// state blob. Extra preserves keys owned by other components so a decode and
// re-merge never drops them.
type State struct {
	Status               status.Status  `json:"status,omitempty"`
	WaitingForUser       bool           `json:"waiting_for_user"`
	UserRequest          string         `json:"user_request,omitempty"`
	Category             string         `json:"category,omitempty"`
	WriterComplete       bool           `json:"writer_complete"`
	FormatAgentComplete  bool           `json:"format_agent_complete"`
	UserSatisfied        bool           `json:"user_satisfied"`
	CurrentDraft         string         `json:"current_draft,omitempty"`
	FinalOutput          string         `json:"final_output,omitempty"`
	Ideas                *idea.Batch    `json:"ideas,omitempty"`
	SourceContent        string         `json:"source_content,omitempty"`
	SelectedIdea         *idea.Idea     `json:"selected_idea,omitempty"`
	AwaitingSelection    bool           `json:"awaiting_selection"`
	RetryCount           int            `json:"retry_count"`
	LastError            string         `json:"last_error,omitempty"`
	ErrorMessage         string         `json:"error_message,omitempty"`
	ErrorTime            string         `json:"error_time,omitempty"`
	GenerationStartedAt  string         `json:"generation_started_at,omitempty"`
	GenerationCompleteAt string         `json:"generation_completed_at,omitempty"`
	GenerationTime       float64        `json:"generation_time,omitempty"`
	Extra                map[string]any `json:"-"`
}

// StateFromMap decodes the stored state blob into a typed State.
func StateFromMap(m map[string]any) (*State, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode state blob: %w", err)
	}
	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to decode workflow state: %w", err)
	}

	known := map[string]bool{
		keyStatus: true, keyWaitingForUser: true, keyUserRequest: true,
		keyCategory: true, keyWriterComplete: true, keyFormatComplete: true,
		keyUserSatisfied: true, keyCurrentDraft: true, keyFinalOutput: true,
		keyIdeas: true, keySourceContent: true, keySelectedIdea: true,
		keyAwaitingSelection: true,
		keyRetryCount: true, keyLastError: true, keyErrorMessage: true,
		keyErrorTime: true, keyGenerationStartedAt: true,
		keyGenerationDoneAt: true, keyGenerationTime: true,
	}
	for k, v := range m {
		if !known[k] {
			if s.Extra == nil {
				s.Extra = map[string]any{}
			}
			s.Extra[k] = v
		}
	}
	return &s, nil
}

// IsComplete applies the dual completion check: the terminal status, or both
// completion markers set even when the status transition was missed.
func (s *State) IsComplete() bool {
	return s.Status == status.StatusCompleted || (s.FormatAgentComplete && s.UserSatisfied)
}

// ideasToValue converts an idea batch into the plain map shape stored in the
// state blob.
func ideasToValue(b *idea.Batch) (any, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to encode idea batch: %w", err)
	}
	var value map[string]any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("failed to decode idea batch: %w", err)
	}
	return value, nil
}

// ideaToValue converts a single idea into its stored map shape.
func ideaToValue(i idea.Idea) (any, error) {
	raw, err := json.Marshal(i)
	if err != nil {
		return nil, fmt.Errorf("failed to encode idea: %w", err)
	}
	var value map[string]any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("failed to decode idea: %w", err)
	}
	return value, nil
}
