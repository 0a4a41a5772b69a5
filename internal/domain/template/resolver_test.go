package template_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"contentpilot/workflow-api/internal/domain/template"
)

type mockCatalog struct {
	getByIDFunc   func(ctx context.Context, id uuid.UUID) (*template.Template, error)
	getLatestFunc func(ctx context.Context, category, format string) (*template.Template, error)
}

func (m *mockCatalog) GetByID(ctx context.Context, id uuid.UUID) (*template.Template, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockCatalog) GetLatest(ctx context.Context, category, format string) (*template.Template, error) {
	return m.getLatestFunc(ctx, category, format)
}

func (m *mockCatalog) Create(ctx context.Context, t *template.Template) (*template.Template, error) {
	return t, nil
}

func (m *mockCatalog) List(ctx context.Context, category, format string, limit, offset int) ([]*template.Template, error) {
	return nil, nil
}

func (m *mockCatalog) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func TestResolver_ExplicitIDTakesPrecedence(t *testing.T) {
	byID := &template.Template{ID: uuid.New(), Title: "By ID", CreatedAt: time.Now()}
	catalog := &mockCatalog{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*template.Template, error) {
			return byID, nil
		},
		getLatestFunc: func(ctx context.Context, category, format string) (*template.Template, error) {
			t.Fatal("GetLatest should not be called when an explicit id is given")
			return nil, nil
		},
	}

	r := template.NewResolver(catalog, zerolog.Nop())
	got, err := r.Resolve(context.Background(), byID.ID.String(), "attract", "case_study")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got != byID {
		t.Errorf("Resolve() = %v, want the explicit template", got)
	}
}

func TestResolver_MissingExplicitIDDoesNotFallBack(t *testing.T) {
	catalog := &mockCatalog{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*template.Template, error) {
			return nil, nil
		},
		getLatestFunc: func(ctx context.Context, category, format string) (*template.Template, error) {
			t.Fatal("GetLatest should not be called when an explicit id misses")
			return nil, nil
		},
	}

	r := template.NewResolver(catalog, zerolog.Nop())
	got, err := r.Resolve(context.Background(), uuid.NewString(), "attract", "case_study")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got != nil {
		t.Errorf("Resolve() = %v, want nil", got)
	}
}

func TestResolver_PairLookupNormalizesLabels(t *testing.T) {
	latest := &template.Template{ID: uuid.New(), Title: "Latest"}
	var gotCategory, gotFormat string
	catalog := &mockCatalog{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*template.Template, error) {
			t.Fatal("GetByID should not be called without an explicit id")
			return nil, nil
		},
		getLatestFunc: func(ctx context.Context, category, format string) (*template.Template, error) {
			gotCategory, gotFormat = category, format
			return latest, nil
		},
	}

	r := template.NewResolver(catalog, zerolog.Nop())
	got, err := r.Resolve(context.Background(), "", "Attract", "Belief Shift")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got != latest {
		t.Errorf("Resolve() = %v, want the latest pair match", got)
	}
	if gotCategory != "attract" || gotFormat != "belief_shift" {
		t.Errorf("lookup pair = (%q, %q), want (attract, belief_shift)", gotCategory, gotFormat)
	}
}

func TestResolver_NoHintsResolvesToNone(t *testing.T) {
	catalog := &mockCatalog{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*template.Template, error) {
			return nil, nil
		},
		getLatestFunc: func(ctx context.Context, category, format string) (*template.Template, error) {
			t.Fatal("GetLatest should not be called without both hints")
			return nil, nil
		},
	}

	r := template.NewResolver(catalog, zerolog.Nop())
	got, err := r.Resolve(context.Background(), "", "", "case_study")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got != nil {
		t.Errorf("Resolve() = %v, want nil", got)
	}
}
