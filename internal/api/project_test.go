package api

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/thirdwave/contentapi/internal/config"
	"github.com/thirdwave/contentapi/internal/media"
	"github.com/thirdwave/contentapi/internal/permissions"
	"github.com/thirdwave/contentapi/internal/schema"
	"github.com/thirdwave/contentapi/internal/store"
)

var projectTypes = []schema.ContentType{
	{
		Key:  "articles",
		Slug: "articles",
		Fields: schema.Fields{
			{Name: "title", Type: schema.FieldTypeText},
			{Name: "photo", Type: schema.FieldTypeImage},
			{Name: "clip", Type: schema.FieldTypeVideo},
			{Name: "gallery", Type: schema.FieldTypeImageList},
		},
	},
	{
		Key:  "authors",
		Slug: "authors",
		Fields: schema.Fields{
			{Name: "name", Type: schema.FieldTypeText},
		},
	},
}

func TestProject_PlainAndContentType(t *testing.T) {
	fs := &fakeStore{types: projectTypes}
	cfg := openConfig()
	cfg.ContentTypes = map[string]config.ContentTypeConfig{
		"articles": {
			Views: map[string][]string{
				"listing": {"title", "contenttype"},
			},
		},
	}
	cfg.BaseColumns = &config.ColumnsOption{UseDefault: false}
	engine := newTestEngine(t, fs, cfg)

	rec := store.RawRecord{
		TypeSlug: "articles",
		Values:   map[string]any{"title": "Hello", "photo": "x.jpg"},
	}

	out := engine.Project(context.Background(), rec, "listing", nil, nil)

	if out["title"] != "Hello" {
		t.Errorf("title: got %v, want Hello", out["title"])
	}
	if out["contenttype"] != "articles" {
		t.Errorf("contenttype: got %v, want articles", out["contenttype"])
	}
	if _, ok := out["photo"]; ok {
		t.Error("photo should not appear in the listing view")
	}
}

func TestProject_FileValue(t *testing.T) {
	filesDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(filesDir, "2024"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(filesDir, "2024", "photo.jpg"), []byte("fake image data"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := openConfig()
	fs := &fakeStore{types: projectTypes}
	resolver := media.NewResolver(filesDir, "http://example.com")
	engine := NewEngine(fs, cfg, permissions.NewChecker(cfg.Permissions), resolver)

	rec := store.RawRecord{
		TypeSlug: "articles",
		Values:   map[string]any{"photo": "2024/photo.jpg"},
	}

	out := engine.Project(context.Background(), rec, "record", nil, nil)

	photo, ok := out["photo"].(map[string]any)
	if !ok {
		t.Fatalf("photo: got %T, want map", out["photo"])
	}

	if photo["file"] != "2024/photo.jpg" {
		t.Errorf("file: got %v", photo["file"])
	}
	if photo["filename"] != "photo.jpg" {
		t.Errorf("filename: got %v", photo["filename"])
	}
	if photo["path"] != "files/2024/photo.jpg" {
		t.Errorf("path: got %v", photo["path"])
	}
	if photo["host"] != "http://example.com/" {
		t.Errorf("host: got %v", photo["host"])
	}
	if photo["url"] != "http://example.com/files/2024/photo.jpg" {
		t.Errorf("url: got %v", photo["url"])
	}
	if photo["extension"] != "jpg" {
		t.Errorf("extension: got %v", photo["extension"])
	}
	if size, ok := photo["size"].(int64); !ok || size != int64(len("fake image data")) {
		t.Errorf("size: got %v", photo["size"])
	}
	if photo["mime"] == nil {
		t.Error("mime: got nil for an existing file")
	}
	if photo["title"] != "2024/photo.jpg" {
		t.Errorf("title: got %v", photo["title"])
	}
}

func TestProject_FileValueMissingOnDisk(t *testing.T) {
	engine := newTestEngine(t, &fakeStore{types: projectTypes}, nil)

	rec := store.RawRecord{
		TypeSlug: "articles",
		Values: map[string]any{
			"photo": map[string]any{"file": "gone.png", "title": "Poster"},
		},
	}

	out := engine.Project(context.Background(), rec, "record", nil, nil)

	photo := out["photo"].(map[string]any)
	if photo["size"] != nil {
		t.Errorf("size: got %v, want nil", photo["size"])
	}
	if photo["mime"] != nil {
		t.Errorf("mime: got %v, want nil", photo["mime"])
	}
	if photo["title"] != "Poster" {
		t.Errorf("title: got %v, want Poster", photo["title"])
	}
}

func TestProject_FileValueWithoutReference(t *testing.T) {
	engine := newTestEngine(t, &fakeStore{types: projectTypes}, nil)

	original := map[string]any{"title": "no file here"}
	rec := store.RawRecord{
		TypeSlug: "articles",
		Values:   map[string]any{"photo": original},
	}

	out := engine.Project(context.Background(), rec, "record", nil, nil)

	photo, ok := out["photo"].(map[string]any)
	if !ok {
		t.Fatalf("photo: got %T, want map passed through", out["photo"])
	}
	if _, ok := photo["url"]; ok {
		t.Error("value without a file reference should pass through unparsed")
	}
}

func TestProject_ImageList(t *testing.T) {
	engine := newTestEngine(t, &fakeStore{types: projectTypes}, nil)

	rec := store.RawRecord{
		TypeSlug: "articles",
		Values: map[string]any{
			"gallery": []any{
				map[string]any{"file": "a.jpg"},
				map[string]any{"file": "b.jpg"},
			},
		},
	}

	out := engine.Project(context.Background(), rec, "record", nil, nil)

	gallery, ok := out["gallery"].([]any)
	if !ok {
		t.Fatalf("gallery: got %T, want slice", out["gallery"])
	}
	if len(gallery) != 2 {
		t.Fatalf("gallery: got %d entries, want 2", len(gallery))
	}
	first := gallery[0].(map[string]any)
	if first["filename"] != "a.jpg" {
		t.Errorf("gallery[0].filename: got %v", first["filename"])
	}
}

func TestProject_VideoYouTubeID(t *testing.T) {
	engine := newTestEngine(t, &fakeStore{types: projectTypes}, nil)

	urls := []string{
		"https://youtu.be/dQw4w9WgXcQ",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://www.youtube.com/embed/dQw4w9WgXcQ",
		"https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ",
	}

	for _, url := range urls {
		rec := store.RawRecord{
			TypeSlug: "articles",
			Values: map[string]any{
				"clip": map[string]any{"url": url},
			},
		}

		out := engine.Project(context.Background(), rec, "record", nil, nil)

		clip, ok := out["clip"].(map[string]any)
		if !ok {
			t.Fatalf("clip: got %T, want map", out["clip"])
		}
		if clip["id"] != "dQw4w9WgXcQ" {
			t.Errorf("clip id for %s: got %v, want dQw4w9WgXcQ", url, clip["id"])
		}
	}
}

func TestProject_VideoNonYouTubePassesThrough(t *testing.T) {
	engine := newTestEngine(t, &fakeStore{types: projectTypes}, nil)

	rec := store.RawRecord{
		TypeSlug: "articles",
		Values: map[string]any{
			"clip": map[string]any{"url": "https://vimeo.com/123456"},
		},
	}

	out := engine.Project(context.Background(), rec, "record", nil, nil)

	clip := out["clip"].(map[string]any)
	if _, ok := clip["id"]; ok {
		t.Errorf("clip: unexpected id %v for non-YouTube URL", clip["id"])
	}
}

func TestProject_TaxonomyFolding(t *testing.T) {
	engine := newTestEngine(t, &fakeStore{types: projectTypes}, nil)

	rec := store.RawRecord{
		TypeSlug: "articles",
		Values:   map[string]any{"title": "x"},
		Taxonomy: map[string]map[string]string{
			"categories": {
				"/categories/news":    "News",
				"/categories/opinion": "Opinion",
			},
		},
	}

	out := engine.Project(context.Background(), rec, "record", nil, nil)

	taxonomy, ok := out["taxonomy"].(map[string]map[string]string)
	if !ok {
		t.Fatalf("taxonomy: got %T", out["taxonomy"])
	}
	if taxonomy["categories"]["News"] != "news" {
		t.Errorf("News slug: got %q, want news", taxonomy["categories"]["News"])
	}
	if taxonomy["categories"]["Opinion"] != "opinion" {
		t.Errorf("Opinion slug: got %q, want opinion", taxonomy["categories"]["Opinion"])
	}
}

func TestProject_ExpandRelations(t *testing.T) {
	fs := &fakeStore{types: projectTypes}
	fs.getContent = func(scopeExpr string, params store.Params) ([]store.RawRecord, int, error) {
		if scopeExpr != "authors/7" {
			t.Errorf("scope: got %q, want authors/7", scopeExpr)
		}
		if params.Status != store.StatusPublished {
			t.Errorf("status: got %q, want published", params.Status)
		}
		return []store.RawRecord{{
			TypeSlug: "authors",
			Values:   map[string]any{"name": "Ada"},
		}}, 1, nil
	}
	engine := newTestEngine(t, fs, nil)

	rec := store.RawRecord{
		TypeSlug:  "articles",
		Values:    map[string]any{"title": "x"},
		Relations: map[string][]int64{"authors": {7}},
	}

	out := engine.Project(context.Background(), rec, "record", []string{"authors"}, nil)

	relations, ok := out["relations"].(map[string][]map[string]any)
	if !ok {
		t.Fatalf("relations: got %T", out["relations"])
	}
	authors := relations["authors"]
	if len(authors) != 1 {
		t.Fatalf("authors: got %d, want 1", len(authors))
	}
	if authors[0]["name"] != "Ada" {
		t.Errorf("author name: got %v, want Ada", authors[0]["name"])
	}
}

func TestProject_ExpandSkipsForbiddenType(t *testing.T) {
	cfg := openConfig()
	cfg.Exclude = []string{"authors"}
	fs := &fakeStore{types: projectTypes}
	fs.getContent = func(scopeExpr string, params store.Params) ([]store.RawRecord, int, error) {
		t.Errorf("store should not be queried for forbidden relation, got scope %q", scopeExpr)
		return nil, 0, nil
	}
	engine := newTestEngine(t, fs, cfg)

	rec := store.RawRecord{
		TypeSlug:  "articles",
		Values:    map[string]any{"title": "x"},
		Relations: map[string][]int64{"authors": {7}},
	}

	out := engine.Project(context.Background(), rec, "record", []string{"authors"}, nil)

	if _, ok := out["relations"]; ok {
		t.Error("relations should be absent when the related type is forbidden")
	}
}

func TestProject_NoExpandNoRelations(t *testing.T) {
	engine := newTestEngine(t, &fakeStore{types: projectTypes}, nil)

	rec := store.RawRecord{
		TypeSlug:  "articles",
		Values:    map[string]any{"title": "x"},
		Relations: map[string][]int64{"authors": {7}},
	}

	out := engine.Project(context.Background(), rec, "record", nil, nil)

	if _, ok := out["relations"]; ok {
		t.Error("relations should be absent without an expand list")
	}
}
