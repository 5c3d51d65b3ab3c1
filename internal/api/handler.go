package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/thirdwave/contentapi/internal/auth"
	"github.com/thirdwave/contentapi/internal/server"
	"github.com/thirdwave/contentapi/internal/store"
)

// maxBodySize is the maximum allowed request body size (1 MiB).
const maxBodySize = 1 << 20

// Handler provides the HTTP handlers of the content API.
type Handler struct {
	engine  *Engine
	name    string
	version string
}

// NewHandler creates a Handler.
func NewHandler(engine *Engine, name, version string) *Handler {
	return &Handler{
		engine:  engine,
		name:    name,
		version: version,
	}
}

// Register mounts the content API routes on the router. The amount
// segments are constrained to digits so the record route does not swallow
// them.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.Index)
	r.Get("/search", h.Search)
	r.Get(`/search/{amount:\d+}`, h.SearchAmount)
	r.Get("/taxonomy/{taxonomytype}", h.Taxonomy)
	r.Get("/taxonomy/{taxonomytype}/{slug}", h.TaxonomyContent)
	r.Get("/{contenttype}", h.Listing)
	r.Post("/{contenttype}", h.Store)
	r.Get(`/{contenttype}/latest/{amount:\d+}`, h.ListingLatest)
	r.Get(`/{contenttype}/first/{amount:\d+}`, h.ListingFirst)
	r.Get("/{contenttype}/search", h.SearchContentType)
	r.Get(`/{contenttype}/search/{amount:\d+}`, h.SearchContentTypeAmount)
	r.Get("/{contenttype}/fields", h.Fields)
	r.Get("/{contenttype}/{field}/abc", h.ABC)
	r.Get("/{contenttype}/{slugOrId}", h.Record)
}

// Index reports that the API is up, with its name and version.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	server.JSON(w, http.StatusOK, map[string]string{
		"it":   "works",
		h.name: h.version,
	})
}

// Listing serves a page of records for one content type, or for all
// configured types when the path segment is "listing".
func (h *Handler) Listing(w http.ResponseWriter, r *http.Request) {
	q := NormalizeParams(r.URL.Query(), h.engine.cfg.Defaults)

	env, err := h.engine.Listing(r.Context(), ListingInput{
		Scope: chi.URLParam(r, "contenttype"),
		Types: r.URL.Query().Get("contenttypes"),
		View:  viewParam(r, "listing"),
		Query: q,
		Roles: auth.RolesFromContext(r.Context()),
	})
	if err != nil {
		h.handleError(w, err)
		return
	}
	server.JSON(w, http.StatusOK, env)
}

// ListingLatest serves the newest published records of a content type.
func (h *Handler) ListingLatest(w http.ResponseWriter, r *http.Request) {
	h.shortcut(w, r, "latest")
}

// ListingFirst serves the oldest published records of a content type.
func (h *Handler) ListingFirst(w http.ResponseWriter, r *http.Request) {
	h.shortcut(w, r, "first")
}

func (h *Handler) shortcut(w http.ResponseWriter, r *http.Request, edge string) {
	amount, err := strconv.Atoi(chi.URLParam(r, "amount"))
	if err != nil || amount < 1 {
		server.ErrorMessage(w, http.StatusInternalServerError, "Invalid amount.")
		return
	}

	env, err := h.engine.Shortcut(r.Context(), chi.URLParam(r, "contenttype"), edge, amount,
		auth.RolesFromContext(r.Context()))
	if err != nil {
		h.handleError(w, err)
		return
	}
	server.JSON(w, http.StatusOK, env)
}

// Search serves search results across all configured content types.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, "", 0)
}

// SearchAmount is Search with a fixed result count in the path.
func (h *Handler) SearchAmount(w http.ResponseWriter, r *http.Request) {
	amount, err := strconv.Atoi(chi.URLParam(r, "amount"))
	if err != nil || amount < 1 {
		server.ErrorMessage(w, http.StatusInternalServerError, "Invalid amount.")
		return
	}
	h.search(w, r, "", amount)
}

// SearchContentType serves search results for one content type.
func (h *Handler) SearchContentType(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, chi.URLParam(r, "contenttype"), 0)
}

// SearchContentTypeAmount is SearchContentType with a fixed result count.
func (h *Handler) SearchContentTypeAmount(w http.ResponseWriter, r *http.Request) {
	amount, err := strconv.Atoi(chi.URLParam(r, "amount"))
	if err != nil || amount < 1 {
		server.ErrorMessage(w, http.StatusInternalServerError, "Invalid amount.")
		return
	}
	h.search(w, r, chi.URLParam(r, "contenttype"), amount)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request, contentType string, amount int) {
	q := NormalizeParams(r.URL.Query(), h.engine.cfg.Defaults)
	if q.Filter == "" {
		server.ErrorMessage(w, http.StatusInternalServerError, "Missing filter.")
		return
	}

	// An amount in the path overrides paging.
	if amount > 0 {
		q.Limit = amount
		q.Page = 1
	}

	env, err := h.engine.Search(r.Context(), SearchInput{
		ContentType: contentType,
		Types:       r.URL.Query().Get("contenttypes"),
		View:        viewParam(r, "search"),
		Query:       q,
		Roles:       auth.RolesFromContext(r.Context()),
	})
	if err != nil {
		h.handleError(w, err)
		return
	}
	server.JSON(w, http.StatusOK, env)
}

// Taxonomy serves the distinct values of a taxonomy type with their usage
// counts.
func (h *Handler) Taxonomy(w http.ResponseWriter, r *http.Request) {
	taxonomyType := chi.URLParam(r, "taxonomytype")
	if _, ok := h.engine.store.TaxonomyType(taxonomyType); !ok {
		server.Status(w, http.StatusNotFound)
		return
	}

	token := r.URL.Query().Get("order")
	if token == "" {
		token = r.URL.Query().Get("orderby")
	}
	if token == "" {
		token = "name"
	}

	// Unknown order tokens keep the legacy inline error shape.
	orderExpr, err := ResolveTaxonomyOrder(token)
	if err != nil {
		server.ErrorMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	values, err := h.engine.store.TaxonomyValues(r.Context(), taxonomyType, orderExpr)
	if err != nil {
		h.handleError(w, err)
		return
	}

	server.JSON(w, http.StatusOK, map[string]any{
		"type":   taxonomyType,
		"count":  len(values),
		"values": values,
	})
}

// TaxonomyContent serves the records assigned a taxonomy value.
func (h *Handler) TaxonomyContent(w http.ResponseWriter, r *http.Request) {
	taxonomyType := chi.URLParam(r, "taxonomytype")
	if _, ok := h.engine.store.TaxonomyType(taxonomyType); !ok {
		server.Status(w, http.StatusNotFound)
		return
	}

	q := NormalizeParams(r.URL.Query(), h.engine.cfg.Defaults)
	env, err := h.engine.TaxonomyContent(r.Context(), taxonomyType, chi.URLParam(r, "slug"), q,
		auth.RolesFromContext(r.Context()))
	if err != nil {
		h.handleError(w, err)
		return
	}
	server.JSON(w, http.StatusOK, env)
}

// Record serves a single record by slug or id.
func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	q := NormalizeParams(r.URL.Query(), h.engine.cfg.Defaults)

	record, err := h.engine.Record(r.Context(),
		chi.URLParam(r, "contenttype"),
		chi.URLParam(r, "slugOrId"),
		viewParam(r, "record"),
		q.Expand,
		auth.RolesFromContext(r.Context()))
	if errors.Is(err, store.ErrNotFound) {
		server.Status(w, http.StatusNotFound)
		return
	}
	if err != nil {
		h.handleError(w, err)
		return
	}
	server.JSON(w, http.StatusOK, record)
}

// FieldResponse is one field definition as served by Fields.
type FieldResponse struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Label    string   `json:"label,omitempty"`
	Values   []string `json:"values,omitempty"`
	Multiple bool     `json:"multiple,omitempty"`
}

// Fields serves the field definitions of a content type.
func (h *Handler) Fields(w http.ResponseWriter, r *http.Request) {
	ct, err := h.engine.ValidateContentType(chi.URLParam(r, "contenttype"),
		auth.RolesFromContext(r.Context()))
	if err != nil {
		h.handleError(w, err)
		return
	}

	fields := make([]FieldResponse, 0, len(ct.Fields))
	for _, f := range ct.Fields {
		fields = append(fields, FieldResponse{
			Name:     f.Name,
			Type:     string(f.Type),
			Label:    f.Label,
			Values:   f.Values,
			Multiple: f.Multiple,
		})
	}
	server.JSON(w, http.StatusOK, fields)
}

// ABC serves telephone-book style first-letter counts for a field.
func (h *Handler) ABC(w http.ResponseWriter, r *http.Request) {
	ct, err := h.engine.ValidateContentType(chi.URLParam(r, "contenttype"),
		auth.RolesFromContext(r.Context()))
	if err != nil {
		h.handleError(w, err)
		return
	}

	counts, err := h.engine.store.ABCCounts(r.Context(), ct, chi.URLParam(r, "field"))
	if err != nil {
		h.handleError(w, err)
		return
	}

	abc := make(map[string]int, 27)
	abc["#"] = 0
	for letter := 'A'; letter <= 'Z'; letter++ {
		abc[string(letter)] = 0
	}
	for _, c := range counts {
		if c.Letter == "" {
			abc["#"] = c.Rows
		} else {
			abc[c.Letter] = c.Rows
		}
	}
	server.JSON(w, http.StatusOK, abc)
}

// Store creates a record from a JSON body.
func (h *Handler) Store(w http.ResponseWriter, r *http.Request) {
	var values map[string]any
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(body).Decode(&values); err != nil {
		server.ErrorMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	record, err := h.engine.Store(r.Context(), chi.URLParam(r, "contenttype"), values,
		auth.RolesFromContext(r.Context()))
	if err != nil {
		h.handleError(w, err)
		return
	}
	server.JSON(w, http.StatusOK, record)
}

// handleError renders a domain error as an exception envelope and
// anything else as an inline 500.
func (h *Handler) handleError(w http.ResponseWriter, err error) {
	if apiErr, ok := AsError(err); ok {
		server.Exception(w, apiErr.Type, apiErr.Message, apiErr.Code)
		return
	}
	server.ErrorMessage(w, http.StatusInternalServerError, err.Error())
}

// viewParam reads the response view name from the type query parameter.
func viewParam(r *http.Request, fallback string) string {
	if v := r.URL.Query().Get("type"); v != "" {
		return v
	}
	return fallback
}
