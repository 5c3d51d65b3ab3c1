package api

import "fmt"

// PagingInfo describes the page of results a response covers. Previous
// and Next are present only when such a page exists.
type PagingInfo struct {
	For         string `json:"for,omitempty"`
	Count       int    `json:"count"`
	TotalPages  int    `json:"totalpages"`
	Current     int    `json:"current"`
	ShowingFrom int    `json:"showing_from"`
	ShowingTo   int    `json:"showing_to"`
	Previous    *int   `json:"previous,omitempty"`
	Next        *int   `json:"next,omitempty"`
}

// ComputePaging derives paging info from the total match count, the page
// size, the current page, and the number of records actually returned.
// A non-positive page size is a caller error.
func ComputePaging(totalCount, pageSize, currentPage, returned int) (PagingInfo, error) {
	if pageSize <= 0 {
		return PagingInfo{}, fmt.Errorf("page size must be positive, got %d", pageSize)
	}
	if currentPage < 1 {
		currentPage = 1
	}

	offset := (currentPage - 1) * pageSize

	info := PagingInfo{
		Count:       totalCount,
		TotalPages:  (totalCount + pageSize - 1) / pageSize,
		Current:     currentPage,
		ShowingFrom: offset + 1,
		ShowingTo:   offset + returned,
	}

	if currentPage > 1 {
		prev := currentPage - 1
		info.Previous = &prev
	}
	if currentPage < info.TotalPages {
		next := currentPage + 1
		info.Next = &next
	}

	return info, nil
}
