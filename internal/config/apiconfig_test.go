package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contentapi.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadAPIConfig_Defaults(t *testing.T) {
	cfg, err := LoadAPIConfig(writeConfig(t, "{}\n"))
	if err != nil {
		t.Fatalf("LoadAPIConfig: %v", err)
	}

	if cfg.MountingPoint != "/api" {
		t.Errorf("mounting_point: got %q, want /api", cfg.MountingPoint)
	}
	if cfg.Defaults.Limit != 10 {
		t.Errorf("defaults.limit: got %d, want 10", cfg.Defaults.Limit)
	}
	if cfg.Defaults.Order != "datepublish DESC" {
		t.Errorf("defaults.order: got %q", cfg.Defaults.Order)
	}
	if len(cfg.Permissions.View) != 1 || cfg.Permissions.View[0] != "anonymous" {
		t.Errorf("permissions.view: got %v, want [anonymous]", cfg.Permissions.View)
	}
	if len(cfg.Permissions.Create) != 1 || cfg.Permissions.Create[0] != "editor" {
		t.Errorf("permissions.create: got %v, want [editor]", cfg.Permissions.Create)
	}
}

func TestLoadAPIConfig_Full(t *testing.T) {
	cfg, err := LoadAPIConfig(writeConfig(t, `
mounting_point: /content
whitelist:
  - 192.168.1.
  - 10.0.0.5
exclude:
  - secrets
defaults:
  limit: 25
  order: datecreated DESC
base_columns: [id, slug]
contenttypes:
  articles:
    base_columns: true
    listing: [title, image]
    record: [title, image, body]
  pages:
    base_columns: false
permissions:
  view: [anonymous]
  create: [editor, chief]
  contenttypes:
    secrets:
      view: [chief]
`))
	if err != nil {
		t.Fatalf("LoadAPIConfig: %v", err)
	}

	if cfg.MountingPoint != "/content" {
		t.Errorf("mounting_point: got %q", cfg.MountingPoint)
	}
	if cfg.Whitelist.Disabled {
		t.Error("whitelist: got disabled, want IP list")
	}
	if len(cfg.Whitelist.IPs) != 2 || cfg.Whitelist.IPs[0] != "192.168.1." {
		t.Errorf("whitelist: got %v", cfg.Whitelist.IPs)
	}
	if !cfg.IsExcluded("secrets") || cfg.IsExcluded("articles") {
		t.Error("exclude list not honored")
	}
	if cfg.Defaults.Limit != 25 {
		t.Errorf("defaults.limit: got %d, want 25", cfg.Defaults.Limit)
	}

	if cfg.BaseColumns == nil || !cfg.BaseColumns.IsList || len(cfg.BaseColumns.Columns) != 2 {
		t.Errorf("base_columns: got %+v", cfg.BaseColumns)
	}

	articles := cfg.ContentTypes["articles"]
	if articles.BaseColumns == nil || articles.BaseColumns.IsList || !articles.BaseColumns.UseDefault {
		t.Errorf("articles base_columns: got %+v", articles.BaseColumns)
	}
	if cols, ok := articles.Views["listing"]; !ok || len(cols) != 2 || cols[0] != "title" {
		t.Errorf("articles listing view: got %v", articles.Views["listing"])
	}
	if _, ok := articles.Views["base_columns"]; ok {
		t.Error("base_columns leaked into the view map")
	}

	pages := cfg.ContentTypes["pages"]
	if pages.BaseColumns == nil || pages.BaseColumns.UseDefault {
		t.Errorf("pages base_columns: got %+v", pages.BaseColumns)
	}

	if allowed := cfg.Permissions.ContentTypes["secrets"].View; len(allowed) != 1 || allowed[0] != "chief" {
		t.Errorf("per-type view permission: got %v", allowed)
	}
}

func TestLoadAPIConfig_WhitelistDisabled(t *testing.T) {
	cfg, err := LoadAPIConfig(writeConfig(t, "whitelist: false\n"))
	if err != nil {
		t.Fatalf("LoadAPIConfig: %v", err)
	}
	if !cfg.Whitelist.Disabled {
		t.Error("whitelist: got enabled, want disabled")
	}
}

func TestLoadAPIConfig_WhitelistTrueRejected(t *testing.T) {
	if _, err := LoadAPIConfig(writeConfig(t, "whitelist: true\n")); err == nil {
		t.Fatal("LoadAPIConfig: expected error for whitelist: true, got nil")
	}
}

func TestLoadAPIConfig_MissingFile(t *testing.T) {
	if _, err := LoadAPIConfig(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatal("LoadAPIConfig: expected error for missing file, got nil")
	}
}

func TestUserByName(t *testing.T) {
	cfg := &APIConfig{
		Users: []User{{Username: "alex", Roles: []string{"editor"}}},
	}

	if _, ok := cfg.UserByName("alex"); !ok {
		t.Error("UserByName(alex): got not found")
	}
	if _, ok := cfg.UserByName("nobody"); ok {
		t.Error("UserByName(nobody): got found")
	}
}

func TestViewColumns(t *testing.T) {
	cfg := &APIConfig{
		ContentTypes: map[string]ContentTypeConfig{
			"articles": {Views: map[string][]string{"listing": {"title"}}},
		},
	}

	if cols, ok := cfg.ViewColumns("articles", "listing"); !ok || len(cols) != 1 {
		t.Errorf("ViewColumns(articles, listing): got %v, %v", cols, ok)
	}
	if _, ok := cfg.ViewColumns("articles", "record"); ok {
		t.Error("ViewColumns(articles, record): got found, want absent")
	}
	if _, ok := cfg.ViewColumns("pages", "listing"); ok {
		t.Error("ViewColumns(pages, listing): got found, want absent")
	}
}
