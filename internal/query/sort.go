// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package query

// Sort is a listing order. There is no relevance scoring: search results
// always use the engagement/recency two-key order, listings default to
// recency unless a popular/trending mode is requested.
type Sort string

const (
	SortLatest   Sort = "latest"
	SortPopular  Sort = "popular"
	SortTrending Sort = "trending"
)

// ParseSort maps the sortBy parameter to a Sort. Unknown values fall
// back to latest; an active search always forces the trending order.
func ParseSort(raw string, hasSearch bool) Sort {
	if hasSearch {
		return SortTrending
	}
	switch Sort(raw) {
	case SortPopular:
		return SortPopular
	case SortTrending:
		return SortTrending
	default:
		return SortLatest
	}
}

// OrderBy returns the SQL ORDER BY expression for the sort mode, with
// the post id as a final deterministic tie-break.
func (s Sort) OrderBy() string {
	switch s {
	case SortPopular:
		return "p.view_count DESC, p.id"
	case SortTrending:
		return "p.view_count DESC, p.created_at DESC, p.id"
	default:
		return "p.created_at DESC, p.id"
	}
}
