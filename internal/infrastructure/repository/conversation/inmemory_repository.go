package conversation

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "contentpilot/workflow-api/internal/domain/conversation"
)

// InMemoryRepository is a map-backed store used in tests and local runs
// without PostgreSQL.
type InMemoryRepository struct {
	mu            sync.RWMutex
	conversations map[string]*domain.Conversation
	messages      map[string][]*domain.Message
}

// NewInMemoryRepository creates an empty in-memory store.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		conversations: map[string]*domain.Conversation{},
		messages:      map[string][]*domain.Message{},
	}
}

var _ domain.Store = (*InMemoryRepository)(nil)

func (r *InMemoryRepository) Create(ctx context.Context, title string) (*domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	conv := &domain.Conversation{
		PublicID:      "conv_" + uuid.NewString(),
		Title:         title,
		State:         domain.StateActive,
		WorkflowState: map[string]any{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	r.conversations[conv.PublicID] = conv
	return cloneConversation(conv), nil
}

func (r *InMemoryRepository) FindByPublicID(ctx context.Context, publicID string) (*domain.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conv, ok := r.conversations[publicID]
	if !ok {
		return nil, nil
	}
	return cloneConversation(conv), nil
}

func (r *InMemoryRepository) List(ctx context.Context, state string, limit, offset int) ([]*domain.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Conversation
	for _, conv := range r.conversations {
		if state != "" && conv.State != state {
			continue
		}
		result = append(result, cloneConversation(conv))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})

	if offset > 0 {
		if offset >= len(result) {
			return nil, nil
		}
		result = result[offset:]
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *InMemoryRepository) Archive(ctx context.Context, publicID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.conversations[publicID]
	if !ok {
		return fmt.Errorf("conversation not found: %s", publicID)
	}
	conv.State = domain.StateArchived
	conv.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *InMemoryRepository) AppendMessage(ctx context.Context, publicID string, msg domain.NewMessage) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conversations[publicID]; !ok {
		return nil, fmt.Errorf("conversation not found: %s", publicID)
	}

	created := &domain.Message{
		PublicID:       "msg_" + uuid.NewString(),
		ConversationID: publicID,
		Role:           msg.Role,
		AgentRole:      msg.AgentRole,
		Content:        msg.Content,
		Metadata:       msg.Metadata,
		Sequence:       int64(len(r.messages[publicID]) + 1),
		CreatedAt:      time.Now().UTC(),
	}
	r.messages[publicID] = append(r.messages[publicID], created)
	return created, nil
}

func (r *InMemoryRepository) ListMessages(ctx context.Context, publicID string, limit int, beforeSequence int64) ([]*domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.conversations[publicID]; !ok {
		return nil, fmt.Errorf("conversation not found: %s", publicID)
	}

	var result []*domain.Message
	for _, msg := range r.messages[publicID] {
		if beforeSequence > 0 && msg.Sequence >= beforeSequence {
			continue
		}
		result = append(result, msg)
	}
	if limit > 0 && len(result) > limit {
		result = result[len(result)-limit:]
	}
	return result, nil
}

func (r *InMemoryRepository) ReadState(ctx context.Context, publicID string) (map[string]any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conv, ok := r.conversations[publicID]
	if !ok {
		return nil, fmt.Errorf("conversation not found: %s", publicID)
	}
	return cloneState(conv.WorkflowState), nil
}

func (r *InMemoryRepository) MergeState(ctx context.Context, publicID string, partial map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.conversations[publicID]
	if !ok {
		return fmt.Errorf("conversation not found: %s", publicID)
	}
	if conv.WorkflowState == nil {
		conv.WorkflowState = map[string]any{}
	}
	for k, v := range partial {
		conv.WorkflowState[k] = v
	}
	conv.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *InMemoryRepository) ReadSummary(ctx context.Context, publicID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conv, ok := r.conversations[publicID]
	if !ok {
		return "", fmt.Errorf("conversation not found: %s", publicID)
	}
	return conv.Summary, nil
}

func (r *InMemoryRepository) WriteSummary(ctx context.Context, publicID string, summary string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.conversations[publicID]
	if !ok {
		return fmt.Errorf("conversation not found: %s", publicID)
	}
	conv.Summary = summary
	conv.UpdatedAt = time.Now().UTC()
	return nil
}

func cloneConversation(conv *domain.Conversation) *domain.Conversation {
	clone := *conv
	clone.WorkflowState = cloneState(conv.WorkflowState)
	return &clone
}

func cloneState(state map[string]any) map[string]any {
	clone := make(map[string]any, len(state))
	for k, v := range state {
		clone[k] = v
	}
	return clone
}
