package template

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"contentpilot/workflow-api/internal/domain/label"
)

// Resolver resolves the template for a drafting stage invocation.
type Resolver struct {
	catalog Catalog
	log     zerolog.Logger
}

// NewResolver creates a template resolver over a catalog.
func NewResolver(catalog Catalog, log zerolog.Logger) *Resolver {
	return &Resolver{
		catalog: catalog,
		log:     log.With().Str("component", "template_resolver").Logger(),
	}
}

// Resolve returns at most one template. An explicit id takes precedence and
// does not fall back to the pair lookup when missing. Without an id, the
// most recent template matching the normalized (category, format) pair wins.
// (nil, nil) means the stage proceeds with default styling.
func (r *Resolver) Resolve(ctx context.Context, explicitID string, category, format string) (*Template, error) {
	if explicitID != "" {
		id, err := uuid.Parse(explicitID)
		if err != nil {
			return nil, fmt.Errorf("invalid template id %q: %w", explicitID, err)
		}
		tmpl, err := r.catalog.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load template %s: %w", id, err)
		}
		if tmpl == nil {
			r.log.Warn().Str("template_id", explicitID).Msg("Explicit template not found, using default styling")
		}
		return tmpl, nil
	}

	category = label.Normalize(category)
	format = label.Normalize(format)
	if category == "" || format == "" {
		return nil, nil
	}

	tmpl, err := r.catalog.GetLatest(ctx, category, format)
	if err != nil {
		return nil, fmt.Errorf("failed to look up template for %s/%s: %w", category, format, err)
	}
	return tmpl, nil
}
