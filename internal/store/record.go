// Package store implements the content store the API dispatches against:
// a PostgreSQL-backed repository of content records, taxonomy assignments,
// and relations, queried through scope expressions.
package store

// TablePrefix is the prefix of every table managed by the Content API.
const TablePrefix = "capi_"

// StatusPublished is the record status visible to API consumers by default.
const StatusPublished = "published"

// RawRecord is a content record as returned by the store, before
// projection.
type RawRecord struct {
	// TypeSlug is the slug of the record's content type.
	TypeSlug string

	// Values maps field and base column names to their raw values.
	Values map[string]any

	// Taxonomy maps a taxonomy type to its assignments, each keyed by
	// the assignment path ("/<taxonomytype>/<slug>") with the display
	// name as value.
	Taxonomy map[string]map[string]string

	// Relations maps a related content type slug to the ids of the
	// related records, in assignment order.
	Relations map[string][]int64

	// Group carries the grouping-taxonomy assignment of the record, when
	// its content type has a grouping taxonomy. Used by the
	// default-order listing sort.
	Group *Group
}

// Group is the grouping metadata of a record.
type Group struct {
	Slug  string
	Order int
}

// ID returns the record id, or 0 when the record has none.
func (r RawRecord) ID() int64 {
	switch id := r.Values["id"].(type) {
	case int64:
		return id
	case int32:
		return int64(id)
	case int:
		return int64(id)
	default:
		return 0
	}
}

// Params are the store-level query parameters built by the API layer.
type Params struct {
	// Limit is the page size. Zero means no limit.
	Limit int

	// Page is the 1-based page number.
	Page int

	// Order is the sort expression: a column name, optionally prefixed
	// with "-" or suffixed with " DESC" for descending order.
	Order string

	// Status restricts records to the given status. Empty means any.
	Status string

	// Where maps field names to filter values. A value containing a
	// percent sign is matched with LIKE, anything else with equality.
	Where map[string]string
}

// Offset returns the row offset corresponding to Page and Limit.
func (p Params) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// TaxonomyValue is one distinct taxonomy value with its usage count.
type TaxonomyValue struct {
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Results int    `json:"results"`
}

// LetterCount is the number of published records whose field value starts
// with Letter. The empty letter groups values that do not start with a
// letter at all.
type LetterCount struct {
	Letter string
	Rows   int
}

// SearchResult is the outcome of a search query.
type SearchResult struct {
	// Count is the total number of matching records, before paging.
	Count int

	// Records is the requested page of matches.
	Records []RawRecord
}
