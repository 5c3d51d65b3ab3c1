package media

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolver_Paths(t *testing.T) {
	r := NewResolver("/var/files", "http://example.com/")

	if got := r.HostURL(); got != "http://example.com/" {
		t.Errorf("HostURL() = %q", got)
	}
	if got := r.PublicPath("2024/photo.jpg"); got != "files/2024/photo.jpg" {
		t.Errorf("PublicPath() = %q", got)
	}
	if got := r.PublicPath("/2024/photo.jpg"); got != "files/2024/photo.jpg" {
		t.Errorf("PublicPath() with leading slash = %q", got)
	}
}

func TestResolver_HostURLKeepsSingleSlash(t *testing.T) {
	r := NewResolver("/var/files", "http://example.com")
	if got := r.HostURL(); got != "http://example.com/" {
		t.Errorf("HostURL() = %q", got)
	}
}

func TestResolver_DiskPath(t *testing.T) {
	r := NewResolver("/var/files", "http://example.com")

	if got := r.DiskPath("2024/photo.jpg"); got != filepath.Join("/var/files", "2024", "photo.jpg") {
		t.Errorf("DiskPath() = %q", got)
	}

	for _, rel := range []string{"", "/etc/passwd", "../secret", "a/../../b"} {
		if got := r.DiskPath(rel); got != "" {
			t.Errorf("DiskPath(%q) = %q, want empty", rel, got)
		}
	}
}

func TestResolver_Stat(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "2024"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "2024", "photo.jpg"), []byte("abcdef"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewResolver(dir, "http://example.com")

	size, mimeType := r.Stat("2024/photo.jpg")
	if size == nil || *size != 6 {
		t.Errorf("size = %v, want 6", size)
	}
	if mimeType == nil || *mimeType != "image/jpeg" {
		t.Errorf("mime = %v, want image/jpeg", mimeType)
	}
}

func TestResolver_StatMissingFile(t *testing.T) {
	r := NewResolver(t.TempDir(), "http://example.com")

	size, mimeType := r.Stat("nope.jpg")
	if size != nil || mimeType != nil {
		t.Errorf("got size %v mime %v, want both nil", size, mimeType)
	}
}

func TestResolver_StatDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "2024"), 0o755); err != nil {
		t.Fatal(err)
	}

	r := NewResolver(dir, "http://example.com")

	size, mimeType := r.Stat("2024")
	if size != nil || mimeType != nil {
		t.Errorf("got size %v mime %v, want both nil", size, mimeType)
	}
}

func TestExtension(t *testing.T) {
	tests := []struct {
		rel  string
		want string
	}{
		{"photo.jpg", "jpg"},
		{"2024/photo.JPEG", "JPEG"},
		{"archive.tar.gz", "gz"},
		{"noext", ""},
	}
	for _, tt := range tests {
		if got := Extension(tt.rel); got != tt.want {
			t.Errorf("Extension(%q) = %q, want %q", tt.rel, got, tt.want)
		}
	}
}
