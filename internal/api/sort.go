package api

import (
	"sort"

	"github.com/thirdwave/contentapi/internal/store"
)

// SortGrouped stable-sorts listing records by their grouping taxonomy:
// grouped records come before ungrouped records, grouped records order by
// group slug and then by the numeric order within the group, and
// ungrouped records keep their existing relative order. It is applied
// only when the listing ran with the default order.
func SortGrouped(records []store.RawRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].Group, records[j].Group

		switch {
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		case a == nil && b == nil:
			return false
		}

		if a.Slug != b.Slug {
			return a.Slug < b.Slug
		}
		return a.Order < b.Order
	})
}
