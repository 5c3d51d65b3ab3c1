package api

import (
	"context"
	"math/rand"
	"strconv"
	"strings"

	"github.com/thirdwave/contentapi/internal/config"
	"github.com/thirdwave/contentapi/internal/media"
	"github.com/thirdwave/contentapi/internal/permissions"
	"github.com/thirdwave/contentapi/internal/schema"
	"github.com/thirdwave/contentapi/internal/store"
)

// ScopeAll is the scope token standing for every configured content type.
const ScopeAll = "listing"

// ContentStore is the store surface the engine dispatches against.
type ContentStore interface {
	ContentType(name string) (schema.ContentType, bool)
	TaxonomyType(name string) (schema.TaxonomyType, bool)
	ContentTypeKeys() []string
	GetContent(ctx context.Context, scopeExpr string, params store.Params) ([]store.RawRecord, int, error)
	GetContentByTaxonomy(ctx context.Context, taxonomyType, slug string, params store.Params) ([]store.RawRecord, int, error)
	SearchContent(ctx context.Context, filter string, types []string, where map[string]string, limit, offset int) (store.SearchResult, error)
	SaveContent(ctx context.Context, ct schema.ContentType, values map[string]any) (store.RawRecord, error)
	TaxonomyValues(ctx context.Context, taxonomyType, orderExpr string) ([]store.TaxonomyValue, error)
	ABCCounts(ctx context.Context, ct schema.ContentType, field string) ([]store.LetterCount, error)
}

// Engine translates normalized requests into store queries and projects
// the results into response envelopes.
type Engine struct {
	store ContentStore
	cfg   *config.APIConfig
	perms *permissions.Checker
	media *media.Resolver
}

// NewEngine creates an Engine.
func NewEngine(contentStore ContentStore, cfg *config.APIConfig, perms *permissions.Checker, resolver *media.Resolver) *Engine {
	return &Engine{
		store: contentStore,
		cfg:   cfg,
		perms: perms,
		media: resolver,
	}
}

// Envelope is the response body of listing, search and taxonomy-content
// requests.
type Envelope struct {
	Records     []map[string]any `json:"records"`
	Paging      PagingInfo       `json:"paging"`
	ContentType *string          `json:"contenttype"`
	Type        string           `json:"type"`
	Query       string           `json:"query"`
	Parameters  map[string]any   `json:"parameters"`
}

// ValidateContentType checks that a content type exists, is not excluded
// from the API, and is viewable by the given roles.
func (e *Engine) ValidateContentType(name string, roles []string) (schema.ContentType, error) {
	return e.validateContentType(name, permissions.ActionView, roles)
}

// ValidateContentTypeAction is ValidateContentType for an explicit
// permission action.
func (e *Engine) ValidateContentTypeAction(name, action string, roles []string) (schema.ContentType, error) {
	return e.validateContentType(name, action, roles)
}

func (e *Engine) validateContentType(name, action string, roles []string) (schema.ContentType, error) {
	ct, ok := e.store.ContentType(name)
	if !ok {
		return schema.ContentType{}, NotFound("Contenttype %s is not defined.", name)
	}
	if e.cfg.IsExcluded(ct.Key) {
		return schema.ContentType{}, Forbidden("Contenttype %s is forbidden.", name)
	}
	if !e.perms.CheckPermission(roles, action, ct.Key) {
		return schema.ContentType{}, Forbidden("No access for permission %s to contenttype %s.", action, name)
	}
	return ct, nil
}

// ListingInput describes a listing request.
type ListingInput struct {
	// Scope is the path scope token: a content type name, or ScopeAll for
	// a cross-type listing.
	Scope string

	// Types is the explicit contenttypes parameter narrowing a cross-type
	// listing. Empty means all configured types.
	Types string

	// View is the response view name.
	View string

	Query Query
	Roles []string
}

// Listing runs a listing request: a page of records for one content type,
// or for several when the scope is ScopeAll.
func (e *Engine) Listing(ctx context.Context, in ListingInput) (*Envelope, error) {
	var contentType *string
	scopeExpr := in.Scope

	if in.Scope == ScopeAll {
		types := in.Types
		if types == "" {
			types = strings.Join(e.store.ContentTypeKeys(), ",")
		}
		scopeExpr = "(" + types + ")"
	} else {
		if _, err := e.ValidateContentType(in.Scope, in.Roles); err != nil {
			return nil, err
		}
		contentType = &in.Scope
	}

	// The generic sort clause cannot express randomness, so RANDOM is
	// carried in the scope expression instead.
	if in.Query.Order == OrderRandom {
		scopeExpr += "/random/" + strconv.Itoa(in.Query.Limit)
	}

	records, total, err := e.store.GetContent(ctx, scopeExpr, e.storeParams(in.Query))
	if err != nil {
		return nil, err
	}

	return e.assemble(ctx, assembly{
		records:     records,
		total:       total,
		scopeExpr:   scopeExpr,
		contentType: contentType,
		view:        in.View,
		query:       in.Query,
		roles:       in.Roles,
	})
}

// Shortcut runs the latest/first listing shortcuts, which bypass parameter
// normalization and use a literal record count.
func (e *Engine) Shortcut(ctx context.Context, contentType, edge string, amount int, roles []string) (*Envelope, error) {
	if _, err := e.ValidateContentType(contentType, roles); err != nil {
		return nil, err
	}

	scopeExpr := contentType + "/" + edge + "/" + strconv.Itoa(amount)
	records, total, err := e.store.GetContent(ctx, scopeExpr, store.Params{})
	if err != nil {
		return nil, err
	}

	q := Query{Limit: amount, Page: 1}
	return e.assemble(ctx, assembly{
		records:     records,
		total:       total,
		scopeExpr:   scopeExpr,
		contentType: &contentType,
		view:        "listing",
		query:       q,
		roles:       roles,
	})
}

// SearchInput describes a search request.
type SearchInput struct {
	// ContentType restricts the search to one content type. Empty searches
	// every configured type.
	ContentType string

	// Types is the explicit contenttypes parameter. Empty means all.
	Types string

	View  string
	Query Query
	Roles []string
}

// Search runs a full-text search across one or more content types.
func (e *Engine) Search(ctx context.Context, in SearchInput) (*Envelope, error) {
	var contentType *string
	if in.ContentType != "" {
		if _, err := e.ValidateContentType(in.ContentType, in.Roles); err != nil {
			return nil, err
		}
		contentType = &in.ContentType
		in.Types = in.ContentType
	}

	types := in.Types
	if types == "" {
		types = strings.Join(e.store.ContentTypeKeys(), ",")
	}
	scopeExpr := "(" + types + ")"

	q := in.Query
	if q.Order == OrderRandom {
		// Shuffled client-side after projection; the scope rewrite covers
		// the rest of the randomness.
		q.Order = ""
		q.Random = true
		scopeExpr += "/random/" + strconv.Itoa(q.Limit)
	}

	offset := (q.Page - 1) * q.Limit
	result, err := e.store.SearchContent(ctx, q.Filter, strings.Split(types, ","), q.Where, q.Limit, offset)
	if err != nil {
		return nil, err
	}

	env, err := e.assemble(ctx, assembly{
		records:     result.Records,
		total:       result.Count,
		scopeExpr:   scopeExpr,
		contentType: contentType,
		view:        in.View,
		query:       q,
		roles:       in.Roles,
	})
	if err != nil {
		return nil, err
	}
	env.Paging.For = "search"
	env.Parameters["filter"] = q.Filter

	if q.Random {
		rand.Shuffle(len(env.Records), func(i, j int) {
			env.Records[i], env.Records[j] = env.Records[j], env.Records[i]
		})
	}
	return env, nil
}

// TaxonomyContent returns the records assigned a taxonomy value. The
// caller has already checked that the taxonomy type exists.
func (e *Engine) TaxonomyContent(ctx context.Context, taxonomyType, slug string, q Query, roles []string) (*Envelope, error) {
	records, total, err := e.store.GetContentByTaxonomy(ctx, taxonomyType, slug, e.storeParams(q))
	if err != nil {
		return nil, err
	}

	env, err := e.assemble(ctx, assembly{
		records: records,
		total:   total,
		view:    "taxonomy",
		query:   q,
		roles:   roles,
	})
	if err != nil {
		return nil, err
	}
	env.Parameters["taxonomytype"] = taxonomyType
	env.Parameters["slug"] = slug
	return env, nil
}

// Record fetches and projects a single record by slug or id.
func (e *Engine) Record(ctx context.Context, contentType, slugOrID, view string, expand, roles []string) (map[string]any, error) {
	if _, err := e.ValidateContentType(contentType, roles); err != nil {
		return nil, err
	}

	records, _, err := e.store.GetContent(ctx, contentType+"/"+slugOrID, store.Params{})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, store.ErrNotFound
	}

	return e.Project(ctx, records[0], view, expand, roles), nil
}

// Store saves a new record and returns its record-view projection.
func (e *Engine) Store(ctx context.Context, contentType string, values map[string]any, roles []string) (map[string]any, error) {
	ct, err := e.ValidateContentTypeAction(contentType, permissions.ActionCreate, roles)
	if err != nil {
		return nil, err
	}

	record, err := e.store.SaveContent(ctx, ct, values)
	if err != nil {
		return nil, err
	}

	return e.Project(ctx, record, "record", nil, roles), nil
}

// assembly collects the pieces of a listing-shaped response.
type assembly struct {
	records     []store.RawRecord
	total       int
	scopeExpr   string
	contentType *string
	view        string
	query       Query
	roles       []string
}

// assemble sorts, projects and packages records into the response
// envelope.
func (e *Engine) assemble(ctx context.Context, a assembly) (*Envelope, error) {
	// Grouping-taxonomy content floats to the front, but only when the
	// caller did not ask for a specific order.
	if a.query.DefaultOrder && len(a.records) > 0 {
		SortGrouped(a.records)
	}

	projected := make([]map[string]any, 0, len(a.records))
	for _, rec := range a.records {
		projected = append(projected, e.Project(ctx, rec, a.view, a.query.Expand, a.roles))
	}

	pageSize := a.query.Limit
	if pageSize <= 0 {
		pageSize = len(a.records)
		if pageSize == 0 {
			pageSize = 1
		}
	}
	paging, err := ComputePaging(a.total, pageSize, a.query.Page, len(a.records))
	if err != nil {
		return nil, err
	}

	return &Envelope{
		Records:     projected,
		Paging:      paging,
		ContentType: a.contentType,
		Type:        a.view,
		Query:       a.scopeExpr,
		Parameters:  e.echoParameters(a.query),
	}, nil
}

// echoParameters rebuilds the parameters mapping echoed in the envelope,
// with where clauses merged in at the top level.
func (e *Engine) echoParameters(q Query) map[string]any {
	params := map[string]any{
		"limit":  q.Limit,
		"paging": true,
		"page":   q.Page,
		"expand": q.ExpandParam(),
	}
	if q.Order != "" {
		params["order"] = q.Order
	}
	for field, value := range q.Where {
		params[field] = value
	}
	return params
}

// storeParams converts a normalized query into store-level parameters.
// Only published records are visible through the API.
func (e *Engine) storeParams(q Query) store.Params {
	return store.Params{
		Limit:  q.Limit,
		Page:   q.Page,
		Order:  q.Order,
		Status: store.StatusPublished,
		Where:  q.Where,
	}
}
