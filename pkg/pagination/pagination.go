package pagination

import (
	"fmt"
	"strings"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows any list query can request.
	MaxLimit = 100
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
	Sort  string
	Order string
}

// PageMeta describes one page of results alongside its metadata.
type PageMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// Normalize clamps page and limit, and validates sort against the allowed columns.
// The returned Params are safe to interpolate into an ORDER BY clause.
func Normalize(p Params, sortable map[string]string, defaultSort string) (Params, error) {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}

	switch strings.ToLower(p.Order) {
	case "", "asc":
		p.Order = "asc"
	case "desc":
		p.Order = "desc"
	default:
		return Params{}, fmt.Errorf("invalid order %q", p.Order)
	}

	if p.Sort == "" {
		p.Sort = defaultSort
	}
	column, ok := sortable[p.Sort]
	if !ok {
		return Params{}, fmt.Errorf("invalid sort field %q", p.Sort)
	}
	p.Sort = column

	return p, nil
}

// Offset returns the row offset implied by page and limit.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// OrderBy renders the ORDER BY expression for the normalized params.
func (p Params) OrderBy() string {
	return p.Sort + " " + p.Order
}

// NewPageMeta computes page metadata from a total row count.
func NewPageMeta(p Params, totalItems int64) PageMeta {
	totalPages := int(totalItems) / p.Limit
	if int(totalItems)%p.Limit != 0 {
		totalPages++
	}
	return PageMeta{
		Page:       p.Page,
		Limit:      p.Limit,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}
