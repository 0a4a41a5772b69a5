// Package errors defines error types and classification for workflow execution.
package errors

import "fmt"

// Kind classifies a workflow error for propagation and retry decisions.
type Kind string

const (
	// KindConfiguration covers missing prompts or credentials. Fatal,
	// surfaced immediately, never retried.
	KindConfiguration Kind = "configuration"

	// KindPrecondition covers caller mistakes: no waiting conversation,
	// invalid idea index, malformed idea batch. Fatal for the call, never
	// retried, no state corruption.
	KindPrecondition Kind = "precondition"

	// KindStage covers provider failures and invalid stage output.
	// Retryable up to the policy cap with backoff.
	KindStage Kind = "stage"

	// KindTimeout indicates the wall-clock budget was exceeded. Terminal and
	// distinct from stage failure so callers can suggest a smaller input.
	KindTimeout Kind = "timeout"
)

// Common error codes.
const (
	CodeMissingPrompt        = "MISSING_PROMPT"
	CodeConversationNotFound = "CONVERSATION_NOT_FOUND"
	CodeNotWaitingForUser    = "NOT_WAITING_FOR_USER"
	CodeNoIdeaBatch          = "NO_IDEA_BATCH"
	CodeEmptyIdeaBatch       = "EMPTY_IDEA_BATCH"
	CodeIdeaIndexOutOfRange  = "IDEA_INDEX_OUT_OF_RANGE"
	CodeIdeaMissingFields    = "IDEA_MISSING_FIELDS"
	CodeMalformedIdeaSet     = "MALFORMED_IDEA_SET"
	CodeSourceUnavailable    = "SOURCE_UNAVAILABLE"
	CodeProviderError        = "PROVIDER_ERROR"
	CodeEmptyOutput          = "EMPTY_OUTPUT"
	CodeOutputTooShort       = "OUTPUT_TOO_SHORT"
	CodeRetriesExhausted     = "RETRIES_EXHAUSTED"
	CodeDeadlineExceeded     = "DEADLINE_EXCEEDED"
)

// WorkflowError is the error type surfaced by the coordinator and stages.
type WorkflowError struct {
	Kind           Kind           `json:"kind"`
	Code           string         `json:"code"`
	Message        string         `json:"message"`
	ConversationID string         `json:"conversation_id,omitempty"`
	Details        map[string]any `json:"details,omitempty"`
	Cause          error          `json:"-"`
}

// Error implements the error interface.
func (e *WorkflowError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *WorkflowError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns true if the error may be retried with backoff.
func (e *WorkflowError) IsRetryable() bool {
	return e.Kind == KindStage
}

// WithCause attaches an underlying cause.
func (e *WorkflowError) WithCause(cause error) *WorkflowError {
	e.Cause = cause
	return e
}

// WithConversation attaches the conversation the error belongs to.
func (e *WorkflowError) WithConversation(id string) *WorkflowError {
	e.ConversationID = id
	return e
}

// WithDetails attaches additional details.
func (e *WorkflowError) WithDetails(details map[string]any) *WorkflowError {
	e.Details = details
	return e
}

// NewConfiguration creates a configuration error.
func NewConfiguration(code, message string) *WorkflowError {
	return &WorkflowError{Kind: KindConfiguration, Code: code, Message: message}
}

// NewPrecondition creates a precondition error.
func NewPrecondition(code, message string) *WorkflowError {
	return &WorkflowError{Kind: KindPrecondition, Code: code, Message: message}
}

// NewStage creates a retryable stage error.
func NewStage(code, message string) *WorkflowError {
	return &WorkflowError{Kind: KindStage, Code: code, Message: message}
}

// NewTimeout creates a timeout error.
func NewTimeout(message string) *WorkflowError {
	return &WorkflowError{Kind: KindTimeout, Code: CodeDeadlineExceeded, Message: message}
}

// WrapStage wraps a provider or transport failure as a retryable stage error.
func WrapStage(err error, message string) *WorkflowError {
	return &WorkflowError{Kind: KindStage, Code: CodeProviderError, Message: message, Cause: err}
}
