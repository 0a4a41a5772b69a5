// Package template models stored content templates and their resolution for
// drafting stages.
package template

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Template is a stored style reference. Category and Format hold canonical
// lowercase tokens (see the label package).
type Template struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	Format    string    `json:"format"`
	Author    string    `json:"author,omitempty"`
	SourceURL string    `json:"source_url,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Catalog is the template storage contract.
type Catalog interface {
	// GetByID returns (nil, nil) when no template has the id.
	GetByID(ctx context.Context, id uuid.UUID) (*Template, error)

	// GetLatest returns the most recently created template matching the
	// (category, format) pair, or (nil, nil) when none matches.
	GetLatest(ctx context.Context, category, format string) (*Template, error)

	Create(ctx context.Context, t *Template) (*Template, error)
	List(ctx context.Context, category, format string, limit, offset int) ([]*Template, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
