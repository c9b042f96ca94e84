package utils

import "math"

// PageRequest is a normalized page/limit pair. Handlers clamp limit to
// their own bounds before building one, so Limit is always positive.
type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest floors page at 1 and limit at 1.
func NewPageRequest(page, limit int) PageRequest {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	return PageRequest{Page: page, Limit: limit}
}

// Offset returns the row offset of this page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PageMeta is the pagination block attached to list responses.
type PageMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
}

// Meta describes where this page sits within totalCount rows.
func (p PageRequest) Meta(totalCount int64) PageMeta {
	totalPages := int(math.Ceil(float64(totalCount) / float64(p.Limit)))
	if totalPages < 0 {
		totalPages = 0
	}
	return PageMeta{
		Page:       p.Page,
		Limit:      p.Limit,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}
