package domain

// PaginationParams carries page/limit values from the HTTP layer to the repo layer.
// Page is 1-indexed. Limit is capped at 100 by NewPaginationParams.
type PaginationParams struct {
	// Page is the current page number, starting at 1.
	Page int
	// Limit is the maximum number of items to return.
	Limit int
}

// NewPaginationParams builds a PaginationParams from optional HTTP query params.
// Nil pointers fall back to defaults (page=1, limit=defaultLimit).
// The limit is capped at 100 to prevent runaway queries.
func NewPaginationParams(page, limit *int, defaultLimit int) PaginationParams {
	if defaultLimit < 1 {
		defaultLimit = 20
	}
	p := PaginationParams{Page: 1, Limit: defaultLimit}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if limit != nil && *limit >= 1 {
		p.Limit = *limit
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	return p
}

// Offset returns the zero-based row offset for a SQL OFFSET clause.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination is the page metadata echoed alongside a listing.
type Pagination struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	HasNext bool  `json:"has_next"`
	HasPrev bool  `json:"has_prev"`
}

// NewPagination derives the page metadata from the requested params and the
// total row count reported by the repo.
func NewPagination(p PaginationParams, total int64) Pagination {
	return Pagination{
		Page:    p.Page,
		Limit:   p.Limit,
		Total:   total,
		HasNext: int64(p.Page*p.Limit) < total,
		HasPrev: p.Page > 1,
	}
}
