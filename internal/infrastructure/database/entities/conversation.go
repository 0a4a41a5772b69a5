package entities

import (
	"time"

	"gorm.io/datatypes"

	"contentpilot/workflow-api/internal/domain/conversation"
)

// Conversation represents the database schema for conversations.
type Conversation struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID      string            `gorm:"type:varchar(50);uniqueIndex;not null"`
	Title         string            `gorm:"type:varchar(256)"`
	State         string            `gorm:"type:varchar(20);index;not null;default:'active'"`
	WorkflowState datatypes.JSONMap `gorm:"type:jsonb"`
	Summary       string            `gorm:"type:text"`

	Messages []Message `gorm:"foreignKey:ConversationID"`
}

// TableName specifies the table name for Conversation.
func (Conversation) TableName() string {
	return "conversations"
}

// Message represents the database schema for transcript messages.
type Message struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	PublicID       string            `gorm:"type:varchar(50);uniqueIndex;not null"`
	ConversationID uint              `gorm:"index:idx_message_conversation_sequence;not null"`
	Role           string            `gorm:"type:varchar(20);not null"`
	AgentRole      string            `gorm:"type:varchar(30)"`
	Content        string            `gorm:"type:text;not null"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb"`
	Sequence       int64             `gorm:"index:idx_message_conversation_sequence;not null"`
}

// TableName specifies the table name for Message.
func (Message) TableName() string {
	return "messages"
}

// EtoD converts the database entity to the domain model.
func (c *Conversation) EtoD() *conversation.Conversation {
	return &conversation.Conversation{
		ID:            c.ID,
		PublicID:      c.PublicID,
		Title:         c.Title,
		State:         c.State,
		WorkflowState: map[string]any(c.WorkflowState),
		Summary:       c.Summary,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// EtoD converts the database entity to the domain model.
func (m *Message) EtoD(conversationPublicID string) *conversation.Message {
	return &conversation.Message{
		ID:             m.ID,
		PublicID:       m.PublicID,
		ConversationID: conversationPublicID,
		Role:           m.Role,
		AgentRole:      m.AgentRole,
		Content:        m.Content,
		Metadata:       map[string]any(m.Metadata),
		Sequence:       m.Sequence,
		CreatedAt:      m.CreatedAt,
	}
}
