package media

import (
	// Register standard image decoders so imaging.Open recognizes them.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/go-chi/chi/v5"
)

// maxThumbDimension bounds requested thumbnail sizes.
const maxThumbDimension = 2000

// imageExtensions is the set of extensions servable as thumbnails.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// ThumbHandler serves resized thumbnails of stored images at
// /thumbs/{dims}/{file}, where dims is "<width>x<height>".
type ThumbHandler struct {
	resolver *Resolver
}

// NewThumbHandler creates a ThumbHandler backed by the given resolver.
func NewThumbHandler(resolver *Resolver) *ThumbHandler {
	return &ThumbHandler{resolver: resolver}
}

// ServeThumb handles GET /thumbs/{dims}/*.
func (h *ThumbHandler) ServeThumb(w http.ResponseWriter, r *http.Request) {
	width, height, ok := parseDimensions(chi.URLParam(r, "dims"))
	if !ok {
		http.Error(w, "invalid thumbnail dimensions", http.StatusBadRequest)
		return
	}

	rel := chi.URLParam(r, "*")
	ext := strings.ToLower(path.Ext(rel))
	if !imageExtensions[ext] {
		http.Error(w, "unsupported image type", http.StatusBadRequest)
		return
	}

	disk := h.resolver.DiskPath(rel)
	if disk == "" {
		http.Error(w, "invalid file path", http.StatusBadRequest)
		return
	}

	img, err := imaging.Open(disk)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	thumb := imaging.Fit(img, width, height, imaging.Lanczos)

	format, contentType := encodingFor(ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if err := imaging.Encode(w, thumb, format); err != nil {
		slog.Error("failed to encode thumbnail", "file", rel, "error", err)
	}
}

// parseDimensions parses a "<width>x<height>" segment.
func parseDimensions(dims string) (width, height int, ok bool) {
	parts := strings.SplitN(dims, "x", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	width, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	height, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	if width < 1 || height < 1 || width > maxThumbDimension || height > maxThumbDimension {
		return 0, 0, false
	}
	return width, height, true
}

// encodingFor maps a file extension to its imaging format and Content-Type.
func encodingFor(ext string) (imaging.Format, string) {
	switch ext {
	case ".png":
		return imaging.PNG, "image/png"
	case ".gif":
		return imaging.GIF, "image/gif"
	default:
		return imaging.JPEG, "image/jpeg"
	}
}
