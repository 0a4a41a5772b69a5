// Package template persists the content-template catalog on PostgreSQL.
package template

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "contentpilot/workflow-api/internal/domain/template"
	"contentpilot/workflow-api/internal/infrastructure/database/entities"
)

// Repository persists content templates on PostgreSQL.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a template repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var _ domain.Catalog = (*Repository)(nil)

// GetByID fetches a template, returning (nil, nil) when missing.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Template, error) {
	var entity entities.ContentTemplate
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch template: %w", err)
	}
	return entity.EtoD(), nil
}

// GetLatest returns the most recently created template matching the pair,
// or (nil, nil) when none matches.
func (r *Repository) GetLatest(ctx context.Context, category, format string) (*domain.Template, error) {
	var entity entities.ContentTemplate
	if err := r.db.WithContext(ctx).
		Where("category = ? AND format = ?", category, format).
		Order("created_at DESC").
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch latest template for %s/%s: %w", category, format, err)
	}
	return entity.EtoD(), nil
}

// Create inserts a template, assigning an id when absent.
func (r *Repository) Create(ctx context.Context, t *domain.Template) (*domain.Template, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	entity := entities.NewSchemaTemplate(t)
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return entity.EtoD(), nil
}

// List returns templates, newest first, optionally filtered by pair fields.
func (r *Repository) List(ctx context.Context, category, format string, limit, offset int) ([]*domain.Template, error) {
	query := r.db.WithContext(ctx).Model(&entities.ContentTemplate{}).Order("created_at DESC")
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if format != "" {
		query = query.Where("format = ?", format)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []entities.ContentTemplate
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	result := make([]*domain.Template, len(rows))
	for i := range rows {
		result[i] = rows[i].EtoD()
	}
	return result, nil
}

// Delete removes a template by id.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&entities.ContentTemplate{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete template: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("template not found: %s", id)
	}
	return nil
}
