package entities

import (
	"time"

	"gorm.io/datatypes"
)

// WorkflowJob represents the database schema for queued background workflow
// operations.
type WorkflowJob struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID       string            `gorm:"type:varchar(50);uniqueIndex;not null"`
	Kind           string            `gorm:"type:varchar(30);not null"`
	ConversationID string            `gorm:"type:varchar(50);index;not null"`
	Payload        datatypes.JSONMap `gorm:"type:jsonb"`
	Status         string            `gorm:"type:varchar(20);index;not null;default:'queued'"`
	Error          string            `gorm:"type:text"`
	QueuedAt       time.Time         `gorm:"index;not null"`
	StartedAt      *time.Time
	CompletedAt    *time.Time
}

// TableName specifies the table name for WorkflowJob.
func (WorkflowJob) TableName() string {
	return "workflow_jobs"
}
