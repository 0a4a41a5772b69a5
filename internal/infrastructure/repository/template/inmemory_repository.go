package template

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "contentpilot/workflow-api/internal/domain/template"
)

// InMemoryRepository is a map-backed catalog used in tests.
type InMemoryRepository struct {
	mu        sync.RWMutex
	templates map[uuid.UUID]*domain.Template
}

// NewInMemoryRepository creates an empty in-memory catalog.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{templates: map[uuid.UUID]*domain.Template{}}
}

var _ domain.Catalog = (*InMemoryRepository)(nil)

func (r *InMemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.templates[id]
	if !ok {
		return nil, nil
	}
	clone := *t
	return &clone, nil
}

func (r *InMemoryRepository) GetLatest(ctx context.Context, category, format string) (*domain.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *domain.Template
	for _, t := range r.templates {
		if t.Category != category || t.Format != format {
			continue
		}
		if latest == nil || t.CreatedAt.After(latest.CreatedAt) {
			latest = t
		}
	}
	if latest == nil {
		return nil, nil
	}
	clone := *latest
	return &clone, nil
}

func (r *InMemoryRepository) Create(ctx context.Context, t *domain.Template) (*domain.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	t.UpdatedAt = t.CreatedAt

	clone := *t
	r.templates[t.ID] = &clone

	result := clone
	return &result, nil
}

func (r *InMemoryRepository) List(ctx context.Context, category, format string, limit, offset int) ([]*domain.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Template
	for _, t := range r.templates {
		if category != "" && t.Category != category {
			continue
		}
		if format != "" && t.Format != format {
			continue
		}
		clone := *t
		result = append(result, &clone)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
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

func (r *InMemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.templates[id]; !ok {
		return fmt.Errorf("template not found: %s", id)
	}
	delete(r.templates, id)
	return nil
}
