// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package query

// Pagination bounds. Out-of-range values clamp instead of erroring; a
// page past the end returns an empty data slice with correct metadata.
// That fail-open behavior is deliberate: do not harden it into errors.
const (
	DefaultPage  = 1
	MaxPage      = 100
	DefaultLimit = 12
	MaxLimit     = 50
)

// PageRequest is a clamped page/limit pair.
type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest clamps raw page/limit values into their allowed ranges.
// Zero or negative values fall back to the defaults.
func NewPageRequest(page, limit int) PageRequest {
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return PageRequest{Page: page, Limit: limit}
}

// Offset returns the number of rows to skip for this page.
func (r PageRequest) Offset() int {
	return (r.Page - 1) * r.Limit
}

// PageInfo is the pagination metadata attached to every listing response.
type PageInfo struct {
	TotalCount      int  `json:"totalCount"`
	TotalPages      int  `json:"totalPages"`
	CurrentPage     int  `json:"currentPage"`
	PageSize        int  `json:"pageSize"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// NewPageInfo derives page metadata from a request and a total count.
// A zero total yields zero pages and no next page.
func NewPageInfo(r PageRequest, totalCount int) PageInfo {
	totalPages := 0
	if totalCount > 0 {
		totalPages = (totalCount + r.Limit - 1) / r.Limit
	}
	return PageInfo{
		TotalCount:      totalCount,
		TotalPages:      totalPages,
		CurrentPage:     r.Page,
		PageSize:        r.Limit,
		HasNextPage:     r.Page < totalPages,
		HasPreviousPage: r.Page > 1,
	}
}
