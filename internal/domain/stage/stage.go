// Package stage implements the single parameterized generation stage: prompt
// lookup, context assembly, provider call, output validation, and transcript
// append. Every generation in the system (writing, formatting, ideation
// framing) goes through one Invoker configured per role.
package stage

import (
	"context"
	"fmt"
	"time"

	"contentpilot/workflow-api/internal/domain/conversation"
	"contentpilot/workflow-api/internal/domain/errors"
	"contentpilot/workflow-api/internal/domain/llm"
	"contentpilot/workflow-api/internal/domain/prompt"
	"contentpilot/workflow-api/internal/infrastructure/metrics"
	"contentpilot/workflow-api/internal/infrastructure/observability"
)

// Stage roles. Each maps to a system prompt in the registry.
const (
	RoleWriter     = "writer"
	RoleFormatter  = "formatter"
	RoleStrategist = "strategist"
)

// DefaultRecentTurns bounds how much transcript history feeds the context.
const DefaultRecentTurns = 20

// Config parameterizes one stage invocation path.
type Config struct {
	// Role selects the system prompt and tags the appended message.
	Role string

	// Effort is the provider quality/latency mode for this stage.
	Effort llm.Effort

	// RequirePrompt makes a missing registry prompt a configuration error
	// instead of proceeding promptless.
	RequirePrompt bool

	// RecentTurns overrides the history window. Zero means the default.
	RecentTurns int
}

// Task is one unit of work for a stage.
type Task struct {
	// Payload is the user-role message appended to the provider context.
	Payload string

	// Metadata is stored on the appended assistant message.
	Metadata map[string]any

	// MinLength marks outputs shorter than this as retryable failures.
	// Zero disables the check except for fully empty output.
	MinLength int
}

// Invoker runs generation stages against a conversation.
type Invoker struct {
	store    conversation.Store
	registry prompt.Registry
	provider llm.Provider
}

// NewInvoker creates a stage invoker.
func NewInvoker(store conversation.Store, registry prompt.Registry, provider llm.Provider) *Invoker {
	return &Invoker{store: store, registry: registry, provider: provider}
}

// Invoke runs one generation stage and appends the result to the transcript.
// The appended assistant message is the only persistent side effect; any
// workflow state changes belong to the caller.
func (inv *Invoker) Invoke(ctx context.Context, conversationID string, cfg Config, task Task) (string, error) {
	ctx, span := observability.StartStageSpan(ctx, cfg.Role, conversationID)
	defer span.End()

	current, err := inv.registry.GetCurrent(ctx, cfg.Role)
	if err != nil {
		return "", fmt.Errorf("failed to load %s prompt: %w", cfg.Role, err)
	}
	if current == nil && cfg.RequirePrompt {
		return "", errors.NewConfiguration(errors.CodeMissingPrompt,
			fmt.Sprintf("no system prompt registered for role %q", cfg.Role)).
			WithConversation(conversationID)
	}

	messages, err := inv.buildContext(ctx, conversationID, cfg, task)
	if err != nil {
		return "", err
	}

	instructions := ""
	promptVersion := ""
	if current != nil {
		instructions = current.Text
		promptVersion = current.Version
	}

	started := time.Now()
	output, err := inv.provider.Generate(ctx, instructions, messages, cfg.Effort)
	elapsed := time.Since(started).Seconds()
	if err != nil {
		metrics.RecordStageCall(cfg.Role, "error", elapsed)
		observability.RecordError(span, err)
		return "", errors.WrapStage(err, fmt.Sprintf("%s stage generation failed", cfg.Role)).
			WithConversation(conversationID)
	}

	if err := validateOutput(output, task.MinLength); err != nil {
		metrics.RecordStageCall(cfg.Role, "invalid_output", elapsed)
		return "", err
	}
	metrics.RecordStageCall(cfg.Role, "success", elapsed)

	metadata := map[string]any{"prompt_version": promptVersion, "effort": string(cfg.Effort)}
	for k, v := range task.Metadata {
		metadata[k] = v
	}
	if _, err := inv.store.AppendMessage(ctx, conversationID, conversation.NewMessage{
		Role:      conversation.RoleAssistant,
		AgentRole: cfg.Role,
		Content:   output,
		Metadata:  metadata,
	}); err != nil {
		return "", fmt.Errorf("failed to append %s output: %w", cfg.Role, err)
	}

	return output, nil
}

// buildContext assembles the provider context: summary header when present,
// then the recent transcript window, then the task payload.
func (inv *Invoker) buildContext(ctx context.Context, conversationID string, cfg Config, task Task) ([]llm.ChatMessage, error) {
	var messages []llm.ChatMessage

	summary, err := inv.store.ReadSummary(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to read summary: %w", err)
	}
	if summary != "" {
		messages = append(messages, llm.ChatMessage{
			Role:    conversation.RoleSystem,
			Content: "Conversation summary so far:\n" + summary,
		})
	}

	turns := cfg.RecentTurns
	if turns <= 0 {
		turns = DefaultRecentTurns
	}
	history, err := inv.store.ListMessages(ctx, conversationID, turns, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	for _, msg := range history {
		role := msg.Role
		if role != conversation.RoleUser && role != conversation.RoleAssistant {
			continue
		}
		messages = append(messages, llm.ChatMessage{Role: role, Content: msg.Content})
	}

	messages = append(messages, llm.ChatMessage{Role: conversation.RoleUser, Content: task.Payload})
	return llm.TrimToFit(messages, llm.DefaultContextTokens), nil
}

func validateOutput(output string, minLength int) error {
	if output == "" {
		return errors.NewStage(errors.CodeEmptyOutput, "stage returned empty output")
	}
	if minLength > 0 && len(output) < minLength {
		return errors.NewStage(errors.CodeOutputTooShort,
			fmt.Sprintf("stage output is %d characters, minimum is %d", len(output), minLength))
	}
	return nil
}
