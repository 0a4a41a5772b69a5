package prompt

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "contentpilot/workflow-api/internal/domain/prompt"
)

// InMemoryRepository is a map-backed registry used in tests.
type InMemoryRepository struct {
	mu      sync.RWMutex
	prompts map[string][]*domain.Prompt
	nextID  uint
}

// NewInMemoryRepository creates an empty in-memory registry.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{prompts: map[string][]*domain.Prompt{}}
}

var _ domain.Registry = (*InMemoryRepository)(nil)

func (r *InMemoryRepository) GetCurrent(ctx context.Context, agentRole string) (*domain.Prompt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.prompts[agentRole] {
		if p.IsCurrent {
			clone := *p
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *InMemoryRepository) Set(ctx context.Context, agentRole, version, text string, promote bool) (*domain.Prompt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if promote {
		for _, p := range r.prompts[agentRole] {
			p.IsCurrent = false
		}
	}

	r.nextID++
	created := &domain.Prompt{
		ID:        r.nextID,
		AgentRole: agentRole,
		Version:   version,
		Text:      text,
		IsCurrent: promote,
		CreatedAt: time.Now().UTC(),
	}
	r.prompts[agentRole] = append(r.prompts[agentRole], created)

	clone := *created
	return &clone, nil
}

func (r *InMemoryRepository) ListVersions(ctx context.Context, agentRole string) ([]*domain.Prompt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Prompt, 0, len(r.prompts[agentRole]))
	for _, p := range r.prompts[agentRole] {
		clone := *p
		result = append(result, &clone)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}
