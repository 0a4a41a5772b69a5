package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"contentpilot/workflow-api/internal/domain/template"
)

// ContentTemplate represents the database schema for content templates.
type ContentTemplate struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_template_pair_created"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Title     string         `gorm:"type:varchar(256);not null"`
	Content   string         `gorm:"type:text;not null"`
	Category  string         `gorm:"type:varchar(30);index:idx_template_pair_created;not null"`
	Format    string         `gorm:"type:varchar(40);index:idx_template_pair_created;not null"`
	Author    string         `gorm:"type:varchar(128)"`
	SourceURL string         `gorm:"type:varchar(512)"`
	Tags      pq.StringArray `gorm:"type:text[]"`
}

// TableName specifies the table name for ContentTemplate.
func (ContentTemplate) TableName() string {
	return "content_templates"
}

// EtoD converts the database entity to the domain model.
func (t *ContentTemplate) EtoD() *template.Template {
	return &template.Template{
		ID:        t.ID,
		Title:     t.Title,
		Content:   t.Content,
		Category:  t.Category,
		Format:    t.Format,
		Author:    t.Author,
		SourceURL: t.SourceURL,
		Tags:      []string(t.Tags),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// NewSchemaTemplate creates a database entity from the domain model.
func NewSchemaTemplate(t *template.Template) *ContentTemplate {
	return &ContentTemplate{
		ID:        t.ID,
		Title:     t.Title,
		Content:   t.Content,
		Category:  t.Category,
		Format:    t.Format,
		Author:    t.Author,
		SourceURL: t.SourceURL,
		Tags:      pq.StringArray(t.Tags),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
