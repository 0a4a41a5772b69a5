package entities

import (
	"time"

	"contentpilot/workflow-api/internal/domain/prompt"
)

// SystemPrompt represents the database schema for versioned agent prompts.
type SystemPrompt struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	AgentRole string `gorm:"type:varchar(30);uniqueIndex:idx_prompt_role_version;index:idx_prompt_role_current;not null"`
	Version   string `gorm:"type:varchar(30);uniqueIndex:idx_prompt_role_version;not null"`
	Text      string `gorm:"type:text;not null"`
	IsCurrent bool   `gorm:"index:idx_prompt_role_current;not null;default:false"`
}

// TableName specifies the table name for SystemPrompt.
func (SystemPrompt) TableName() string {
	return "system_prompts"
}

// EtoD converts the database entity to the domain model.
func (p *SystemPrompt) EtoD() *prompt.Prompt {
	return &prompt.Prompt{
		ID:        p.ID,
		AgentRole: p.AgentRole,
		Version:   p.Version,
		Text:      p.Text,
		IsCurrent: p.IsCurrent,
		CreatedAt: p.CreatedAt,
	}
}
