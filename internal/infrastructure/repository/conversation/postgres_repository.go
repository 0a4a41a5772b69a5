// Package conversation persists conversations and their transcripts on
// PostgreSQL.
package conversation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "contentpilot/workflow-api/internal/domain/conversation"
	"contentpilot/workflow-api/internal/infrastructure/database/entities"
)

// Repository persists conversations on PostgreSQL.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a conversation repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var _ domain.Store = (*Repository)(nil)

// Create inserts a new active conversation.
func (r *Repository) Create(ctx context.Context, title string) (*domain.Conversation, error) {
	entity := entities.Conversation{
		PublicID:      "conv_" + uuid.NewString(),
		Title:         title,
		State:         domain.StateActive,
		WorkflowState: datatypes.JSONMap{},
	}
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return entity.EtoD(), nil
}

// FindByPublicID fetches a conversation, returning (nil, nil) when missing.
func (r *Repository) FindByPublicID(ctx context.Context, publicID string) (*domain.Conversation, error) {
	var entity entities.Conversation
	if err := r.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch conversation: %w", err)
	}
	return entity.EtoD(), nil
}

// List returns conversations, newest first, optionally filtered by state.
func (r *Repository) List(ctx context.Context, state string, limit, offset int) ([]*domain.Conversation, error) {
	query := r.db.WithContext(ctx).Model(&entities.Conversation{}).Order("updated_at DESC")
	if state != "" {
		query = query.Where("state = ?", state)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []entities.Conversation
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	result := make([]*domain.Conversation, len(rows))
	for i := range rows {
		result[i] = rows[i].EtoD()
	}
	return result, nil
}

// Archive marks a conversation archived.
func (r *Repository) Archive(ctx context.Context, publicID string) error {
	result := r.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("public_id = ?", publicID).
		Update("state", domain.StateArchived)
	if result.Error != nil {
		return fmt.Errorf("failed to archive conversation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("conversation not found: %s", publicID)
	}
	return nil
}

// AppendMessage appends a transcript message, assigning the next sequence
// number under the conversation row lock.
func (r *Repository) AppendMessage(ctx context.Context, publicID string, msg domain.NewMessage) (*domain.Message, error) {
	var created entities.Message

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conv entities.Conversation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("public_id = ?", publicID).
			First(&conv).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("conversation not found: %s", publicID)
			}
			return err
		}

		var maxSeq int64
		if err := tx.Model(&entities.Message{}).
			Where("conversation_id = ?", conv.ID).
			Select("COALESCE(MAX(sequence), 0)").
			Scan(&maxSeq).Error; err != nil {
			return err
		}

		created = entities.Message{
			PublicID:       "msg_" + uuid.NewString(),
			ConversationID: conv.ID,
			Role:           msg.Role,
			AgentRole:      msg.AgentRole,
			Content:        msg.Content,
			Metadata:       datatypes.JSONMap(msg.Metadata),
			Sequence:       maxSeq + 1,
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}
	return created.EtoD(publicID), nil
}

// ListMessages returns the most recent messages in chronological order.
// beforeSequence limits to messages older than the given sequence; zero
// means no bound.
func (r *Repository) ListMessages(ctx context.Context, publicID string, limit int, beforeSequence int64) ([]*domain.Message, error) {
	conv, err := r.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, fmt.Errorf("conversation not found: %s", publicID)
	}

	query := r.db.WithContext(ctx).
		Where("conversation_id = ?", conv.ID).
		Order("sequence DESC")
	if beforeSequence > 0 {
		query = query.Where("sequence < ?", beforeSequence)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []entities.Message
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	// Reverse into chronological order.
	result := make([]*domain.Message, len(rows))
	for i := range rows {
		result[len(rows)-1-i] = rows[i].EtoD(publicID)
	}
	return result, nil
}

// ReadState returns the workflow state blob.
func (r *Repository) ReadState(ctx context.Context, publicID string) (map[string]any, error) {
	conv, err := r.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, fmt.Errorf("conversation not found: %s", publicID)
	}
	if conv.WorkflowState == nil {
		return map[string]any{}, nil
	}
	return conv.WorkflowState, nil
}

// MergeState shallow-merges the partial map over the stored state under a
// row lock, so concurrent merges of disjoint keys both survive.
func (r *Repository) MergeState(ctx context.Context, publicID string, partial map[string]any) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conv entities.Conversation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("public_id = ?", publicID).
			First(&conv).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("conversation not found: %s", publicID)
			}
			return err
		}

		merged := map[string]any(conv.WorkflowState)
		if merged == nil {
			merged = map[string]any{}
		}
		for k, v := range partial {
			merged[k] = v
		}

		return tx.Model(&conv).Update("workflow_state", datatypes.JSONMap(merged)).Error
	})
	if err != nil {
		return fmt.Errorf("failed to merge workflow state: %w", err)
	}
	return nil
}

// ReadSummary returns the stored running summary.
func (r *Repository) ReadSummary(ctx context.Context, publicID string) (string, error) {
	conv, err := r.FindByPublicID(ctx, publicID)
	if err != nil {
		return "", err
	}
	if conv == nil {
		return "", fmt.Errorf("conversation not found: %s", publicID)
	}
	return conv.Summary, nil
}

// WriteSummary replaces the stored running summary.
func (r *Repository) WriteSummary(ctx context.Context, publicID string, summary string) error {
	result := r.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("public_id = ?", publicID).
		Update("summary", summary)
	if result.Error != nil {
		return fmt.Errorf("failed to write summary: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("conversation not found: %s", publicID)
	}
	return nil
}
