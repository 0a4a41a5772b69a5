package stage_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"contentpilot/workflow-api/internal/domain/conversation"
	wferrors "contentpilot/workflow-api/internal/domain/errors"
	"contentpilot/workflow-api/internal/domain/idea"
	"contentpilot/workflow-api/internal/domain/llm"
	"contentpilot/workflow-api/internal/domain/prompt"
	"contentpilot/workflow-api/internal/domain/stage"
)

type mockStore struct {
	conversation.Store
	appended []conversation.NewMessage
	history  []*conversation.Message
	summary  string
}

func (m *mockStore) AppendMessage(ctx context.Context, publicID string, msg conversation.NewMessage) (*conversation.Message, error) {
	m.appended = append(m.appended, msg)
	return &conversation.Message{Role: msg.Role, Content: msg.Content}, nil
}

func (m *mockStore) ListMessages(ctx context.Context, publicID string, limit int, before int64) ([]*conversation.Message, error) {
	return m.history, nil
}

func (m *mockStore) ReadSummary(ctx context.Context, publicID string) (string, error) {
	return m.summary, nil
}

type mockRegistry struct {
	prompts map[string]*prompt.Prompt
}

func (m *mockRegistry) GetCurrent(ctx context.Context, role string) (*prompt.Prompt, error) {
	return m.prompts[role], nil
}

func (m *mockRegistry) Set(ctx context.Context, role, version, text string, promote bool) (*prompt.Prompt, error) {
	return nil, nil
}

func (m *mockRegistry) ListVersions(ctx context.Context, role string) ([]*prompt.Prompt, error) {
	return nil, nil
}

type mockProvider struct {
	generateFunc func(ctx context.Context, instructions string, messages []llm.ChatMessage, effort llm.Effort) (string, error)
	calls        int
}

func (m *mockProvider) Generate(ctx context.Context, instructions string, messages []llm.ChatMessage, effort llm.Effort) (string, error) {
	m.calls++
	return m.generateFunc(ctx, instructions, messages, effort)
}

func (m *mockProvider) GenerateIdeaSet(ctx context.Context, instructions, input string) (*idea.Batch, error) {
	return nil, errors.New("not used")
}

func TestInvoker_AppendsOutputWithMetadata(t *testing.T) {
	store := &mockStore{summary: "user wants a post about focus"}
	registry := &mockRegistry{prompts: map[string]*prompt.Prompt{
		stage.RoleFormatter: {AgentRole: stage.RoleFormatter, Version: "v2", Text: "Format for LinkedIn."},
	}}
	provider := &mockProvider{
		generateFunc: func(ctx context.Context, instructions string, messages []llm.ChatMessage, effort llm.Effort) (string, error) {
			if instructions != "Format for LinkedIn." {
				t.Errorf("instructions = %q", instructions)
			}
			if messages[0].Role != "system" || !strings.Contains(messages[0].Content, "focus") {
				t.Errorf("summary should head the context, got %+v", messages[0])
			}
			if last := messages[len(messages)-1]; last.Content != "the draft" {
				t.Errorf("payload should be the final message, got %q", last.Content)
			}
			return "a formatted post that is long enough", nil
		},
	}

	inv := stage.NewInvoker(store, registry, provider)
	out, err := inv.Invoke(context.Background(), "conv-1",
		stage.Config{Role: stage.RoleFormatter, Effort: llm.EffortDefault},
		stage.Task{Payload: "the draft", Metadata: map[string]any{"kind": "format"}, MinLength: 10})

	if err != nil {
		t.Fatalf("Invoke() error: %v", err)
	}
	if out != "a formatted post that is long enough" {
		t.Errorf("Invoke() = %q", out)
	}
	if len(store.appended) != 1 {
		t.Fatalf("appended %d messages, want 1", len(store.appended))
	}
	msg := store.appended[0]
	if msg.AgentRole != stage.RoleFormatter {
		t.Errorf("AgentRole = %q", msg.AgentRole)
	}
	if msg.Metadata["prompt_version"] != "v2" || msg.Metadata["kind"] != "format" {
		t.Errorf("Metadata = %v", msg.Metadata)
	}
}

func TestInvoker_RequiredPromptMissing(t *testing.T) {
	store := &mockStore{}
	provider := &mockProvider{generateFunc: func(ctx context.Context, _ string, _ []llm.ChatMessage, _ llm.Effort) (string, error) {
		return "should not run", nil
	}}
	inv := stage.NewInvoker(store, &mockRegistry{prompts: map[string]*prompt.Prompt{}}, provider)

	_, err := inv.Invoke(context.Background(), "conv-1",
		stage.Config{Role: stage.RoleStrategist, RequirePrompt: true}, stage.Task{Payload: "source"})

	var wfErr *wferrors.WorkflowError
	if !errors.As(err, &wfErr) || wfErr.Code != wferrors.CodeMissingPrompt {
		t.Fatalf("Invoke() error = %v, want MISSING_PROMPT", err)
	}
	if provider.calls != 0 {
		t.Errorf("provider called %d times, want 0", provider.calls)
	}
	if len(store.appended) != 0 {
		t.Errorf("appended %d messages, want 0", len(store.appended))
	}
}

func TestInvoker_ShortOutputIsRetryableStageError(t *testing.T) {
	store := &mockStore{}
	registry := &mockRegistry{prompts: map[string]*prompt.Prompt{
		stage.RoleWriter: {AgentRole: stage.RoleWriter, Version: "v1", Text: "Write."},
	}}
	provider := &mockProvider{generateFunc: func(ctx context.Context, _ string, _ []llm.ChatMessage, _ llm.Effort) (string, error) {
		return "too short", nil
	}}

	inv := stage.NewInvoker(store, registry, provider)
	_, err := inv.Invoke(context.Background(), "conv-1",
		stage.Config{Role: stage.RoleWriter}, stage.Task{Payload: "draft this", MinLength: 50})

	var wfErr *wferrors.WorkflowError
	if !errors.As(err, &wfErr) || wfErr.Code != wferrors.CodeOutputTooShort {
		t.Fatalf("Invoke() error = %v, want OUTPUT_TOO_SHORT", err)
	}
	if !wfErr.IsRetryable() {
		t.Error("short output should be retryable")
	}
	if len(store.appended) != 0 {
		t.Errorf("appended %d messages on failure, want 0", len(store.appended))
	}
}
