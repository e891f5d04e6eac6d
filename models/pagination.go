package models

import "math"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage держит (page-1)*pageSize в пределах int4 для OFFSET.
	MaxPage = math.MaxInt32 / MaxPageSize
)

// PageRequest is the page/pageSize pair every list endpoint accepts.
type PageRequest struct {
	Page     int
	PageSize int
}

// Normalize clamps the request to sane bounds; page is 1-based.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p PageRequest) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

func (p PageRequest) Limit() int {
	return p.Normalize().PageSize
}

// Page is the paginated list payload: { items, total, page, pageSize, totalPages, hasMore }.
type Page[T any] struct {
	Items      []T  `json:"items"`
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	PageSize   int  `json:"pageSize"`
	TotalPages int  `json:"totalPages"`
	HasMore    bool `json:"hasMore"`
}

func NewPage[T any](items []T, total int, req PageRequest) Page[T] {
	req = req.Normalize()
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if total > 0 {
		totalPages = (total + req.PageSize - 1) / req.PageSize
	}
	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: totalPages,
		HasMore:    req.Page < totalPages,
	}
}
