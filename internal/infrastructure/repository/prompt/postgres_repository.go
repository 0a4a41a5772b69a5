// Package prompt persists the versioned system-prompt registry on
// PostgreSQL.
package prompt

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	domain "contentpilot/workflow-api/internal/domain/prompt"
	"contentpilot/workflow-api/internal/infrastructure/database/entities"
)

// Repository persists system prompts on PostgreSQL.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a prompt repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var _ domain.Registry = (*Repository)(nil)

// GetCurrent returns the current prompt for the role, or (nil, nil) when no
// prompt is registered.
func (r *Repository) GetCurrent(ctx context.Context, agentRole string) (*domain.Prompt, error) {
	var entity entities.SystemPrompt
	if err := r.db.WithContext(ctx).
		Where("agent_role = ? AND is_current = ?", agentRole, true).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch current prompt: %w", err)
	}
	return entity.EtoD(), nil
}

// Set registers a prompt version. Promoting unmarks any previous current
// version for the role in the same transaction.
func (r *Repository) Set(ctx context.Context, agentRole, version, text string, promote bool) (*domain.Prompt, error) {
	entity := entities.SystemPrompt{
		AgentRole: agentRole,
		Version:   version,
		Text:      text,
		IsCurrent: promote,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if promote {
			if err := tx.Model(&entities.SystemPrompt{}).
				Where("agent_role = ? AND is_current = ?", agentRole, true).
				Update("is_current", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&entity).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set prompt %s/%s: %w", agentRole, version, err)
	}
	return entity.EtoD(), nil
}

// ListVersions returns all versions for a role, newest first.
func (r *Repository) ListVersions(ctx context.Context, agentRole string) ([]*domain.Prompt, error) {
	var rows []entities.SystemPrompt
	if err := r.db.WithContext(ctx).
		Where("agent_role = ?", agentRole).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list prompt versions: %w", err)
	}

	result := make([]*domain.Prompt, len(rows))
	for i := range rows {
		result[i] = rows[i].EtoD()
	}
	return result, nil
}
