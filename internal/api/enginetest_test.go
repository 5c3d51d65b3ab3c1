package api

import (
	"context"
	"testing"

	"github.com/thirdwave/contentapi/internal/config"
	"github.com/thirdwave/contentapi/internal/media"
	"github.com/thirdwave/contentapi/internal/permissions"
	"github.com/thirdwave/contentapi/internal/schema"
	"github.com/thirdwave/contentapi/internal/store"
)

// fakeStore is an in-memory ContentStore for engine and handler tests.
// Behaviors are injected per test through the function fields; unset
// functions return empty results.
type fakeStore struct {
	types      []schema.ContentType
	taxonomies []schema.TaxonomyType

	getContent     func(scopeExpr string, params store.Params) ([]store.RawRecord, int, error)
	getByTaxonomy  func(taxonomyType, slug string, params store.Params) ([]store.RawRecord, int, error)
	search         func(filter string, types []string, where map[string]string, limit, offset int) (store.SearchResult, error)
	save           func(ct schema.ContentType, values map[string]any) (store.RawRecord, error)
	taxonomyValues func(taxonomyType, orderExpr string) ([]store.TaxonomyValue, error)
	abcCounts      func(ct schema.ContentType, field string) ([]store.LetterCount, error)
}

func (f *fakeStore) ContentType(name string) (schema.ContentType, bool) {
	for _, ct := range f.types {
		if ct.Key == name || ct.Slug == name || ct.SingularSlug == name {
			return ct, true
		}
	}
	return schema.ContentType{}, false
}

func (f *fakeStore) TaxonomyType(name string) (schema.TaxonomyType, bool) {
	for _, tt := range f.taxonomies {
		if tt.Key == name || tt.Slug == name {
			return tt, true
		}
	}
	return schema.TaxonomyType{}, false
}

func (f *fakeStore) ContentTypeKeys() []string {
	keys := make([]string, len(f.types))
	for i, ct := range f.types {
		keys[i] = ct.Key
	}
	return keys
}

func (f *fakeStore) GetContent(_ context.Context, scopeExpr string, params store.Params) ([]store.RawRecord, int, error) {
	if f.getContent == nil {
		return nil, 0, nil
	}
	return f.getContent(scopeExpr, params)
}

func (f *fakeStore) GetContentByTaxonomy(_ context.Context, taxonomyType, slug string, params store.Params) ([]store.RawRecord, int, error) {
	if f.getByTaxonomy == nil {
		return nil, 0, nil
	}
	return f.getByTaxonomy(taxonomyType, slug, params)
}

func (f *fakeStore) SearchContent(_ context.Context, filter string, types []string, where map[string]string, limit, offset int) (store.SearchResult, error) {
	if f.search == nil {
		return store.SearchResult{}, nil
	}
	return f.search(filter, types, where, limit, offset)
}

func (f *fakeStore) SaveContent(_ context.Context, ct schema.ContentType, values map[string]any) (store.RawRecord, error) {
	if f.save == nil {
		return store.RawRecord{}, nil
	}
	return f.save(ct, values)
}

func (f *fakeStore) TaxonomyValues(_ context.Context, taxonomyType, orderExpr string) ([]store.TaxonomyValue, error) {
	if f.taxonomyValues == nil {
		return nil, nil
	}
	return f.taxonomyValues(taxonomyType, orderExpr)
}

func (f *fakeStore) ABCCounts(_ context.Context, ct schema.ContentType, field string) ([]store.LetterCount, error) {
	if f.abcCounts == nil {
		return nil, nil
	}
	return f.abcCounts(ct, field)
}

// openConfig allows the anonymous role to view and create everything.
func openConfig() *config.APIConfig {
	return &config.APIConfig{
		MountingPoint: "/api",
		Defaults:      config.Defaults{Limit: 10, Order: "datepublish DESC"},
		Permissions: config.Permissions{
			View:   []string{permissions.RoleAnonymous},
			Create: []string{permissions.RoleAnonymous},
		},
	}
}

func newTestEngine(t *testing.T, fs *fakeStore, cfg *config.APIConfig) *Engine {
	t.Helper()
	if cfg == nil {
		cfg = openConfig()
	}
	resolver := media.NewResolver(t.TempDir(), "http://example.com")
	return NewEngine(fs, cfg, permissions.NewChecker(cfg.Permissions), resolver)
}
