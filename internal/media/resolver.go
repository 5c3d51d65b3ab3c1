// Package media resolves metadata for stored upload files and serves
// resized image thumbnails.
package media

import (
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// pathPrefix is the URL path prefix files are served under.
const pathPrefix = "files/"

// Resolver resolves stored file references to their public paths and
// on-disk metadata.
type Resolver struct {
	filesDir string
	hostURL  string
}

// NewResolver creates a Resolver for files stored under filesDir and
// served from hostURL.
func NewResolver(filesDir, hostURL string) *Resolver {
	return &Resolver{
		filesDir: filesDir,
		hostURL:  strings.TrimSuffix(hostURL, "/"),
	}
}

// PublicPath returns the URL path of a stored file, relative to the host.
func (r *Resolver) PublicPath(rel string) string {
	return pathPrefix + strings.TrimPrefix(rel, "/")
}

// HostURL returns the public base URL with a trailing slash.
func (r *Resolver) HostURL() string {
	return r.hostURL + "/"
}

// isSecurePath rejects references that could escape the files directory.
func isSecurePath(rel string) bool {
	if rel == "" || filepath.IsAbs(rel) {
		return false
	}
	return !strings.Contains(rel, "..")
}

// DiskPath returns the on-disk path of a stored file, or an empty string
// for references that fail validation.
func (r *Resolver) DiskPath(rel string) string {
	if !isSecurePath(rel) {
		return ""
	}
	return filepath.Join(r.filesDir, filepath.FromSlash(rel))
}

// Stat returns the size and MIME type of a stored file. Both are nil when
// the file does not exist, mirroring the metadata being optional in
// projected file values.
func (r *Resolver) Stat(rel string) (size *int64, mimeType *string) {
	disk := r.DiskPath(rel)
	if disk == "" {
		return nil, nil
	}

	info, err := os.Stat(disk)
	if err != nil || info.IsDir() {
		return nil, nil
	}

	n := info.Size()
	size = &n

	if mt := mime.TypeByExtension(path.Ext(rel)); mt != "" {
		mimeType = &mt
	}

	return size, mimeType
}

// Extension returns the file extension of a reference, without the dot.
func Extension(rel string) string {
	return strings.TrimPrefix(path.Ext(rel), ".")
}
