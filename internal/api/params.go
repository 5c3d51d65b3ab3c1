package api

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/thirdwave/contentapi/internal/config"
)

// OrderRandom is the order token requesting randomized results.
const OrderRandom = "RANDOM"

// Query is the normalized parameter set of one request.
type Query struct {
	// Limit is the page size, always >= 0. The store enforces any upper
	// bound.
	Limit int

	// Page is the 1-based page number.
	Page int

	// Order is the requested sort expression.
	Order string

	// DefaultOrder reports that no explicit order was supplied and Order
	// holds the configured default. Listings sorted this way are
	// post-processed by the grouping sort.
	DefaultOrder bool

	// Filter is the search term, for search requests.
	Filter string

	// Expand lists the related content types to include in projections.
	Expand []string

	// Where maps field names to filter values, with select filters
	// already rewritten and merged in.
	Where map[string]string

	// Random reports that a search asked for RANDOM order; the order has
	// been stripped and the caller shuffles the final result sequence.
	Random bool
}

// ExpandParam returns the expand list in its raw comma-separated form.
func (q Query) ExpandParam() string {
	return strings.Join(q.Expand, ",")
}

// NormalizeParams converts raw request query values into a normalized
// parameter set, applying the configured defaults.
//
// Filters arrive in two shapes: where[field]=value is taken verbatim,
// while select[field]=value matches fields stored as a JSON-encoded array
// and is rewritten to the quoted substring pattern %"value"% before being
// merged into the where set.
func NormalizeParams(values url.Values, defaults config.Defaults) Query {
	q := Query{
		Page:  1,
		Where: make(map[string]string),
	}

	q.Limit = defaults.Limit
	if v := values.Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil {
			q.Limit = limit
		}
	}
	if q.Limit < 0 {
		q.Limit = 0
	}

	if v := values.Get("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil && page >= 1 {
			q.Page = page
		}
	}

	// order falls back to the legacy orderby parameter, then to the
	// configured default.
	q.Order = values.Get("order")
	if q.Order == "" {
		q.Order = values.Get("orderby")
	}
	if q.Order == "" {
		q.Order = defaults.Order
		q.DefaultOrder = true
	}

	if v := values.Get("expand"); v != "" {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				q.Expand = append(q.Expand, name)
			}
		}
	}

	q.Filter = values.Get("filter")

	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		if field, ok := nestedKey(key, "where"); ok {
			q.Where[field] = vals[0]
		}
	}

	// The select rewrite runs before merging so a where clause on the
	// same field is overridden by the rewritten pattern.
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		if field, ok := nestedKey(key, "select"); ok {
			q.Where[field] = `%"` + vals[0] + `"%`
		}
	}

	return q
}

// nestedKey extracts the field name from a prefix[field] query key.
func nestedKey(key, prefix string) (string, bool) {
	if !strings.HasPrefix(key, prefix+"[") || !strings.HasSuffix(key, "]") {
		return "", false
	}
	field := key[len(prefix)+1 : len(key)-1]
	if field == "" {
		return "", false
	}
	return field, true
}
