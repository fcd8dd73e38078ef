package domain

import (
	"errors"
	"fmt"
)

// ErrMalformedPage is returned for a page that breaks the pagination
// invariants.
var ErrMalformedPage = errors.New("malformed page")

// Page is one server-paginated slice of a collection. The client never
// reorders or edits Data.
type Page[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// TotalPagesFor returns ceil(total/limit).
func TotalPagesFor(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Validate checks TotalPages == ceil(Total/Limit) and len(Data) <= Limit.
func (p Page[T]) Validate() error {
	if p.Limit < 1 {
		return fmt.Errorf("%w: limit %d", ErrMalformedPage, p.Limit)
	}
	if p.Total < 0 {
		return fmt.Errorf("%w: negative total %d", ErrMalformedPage, p.Total)
	}
	if want := TotalPagesFor(p.Total, p.Limit); p.TotalPages != want {
		return fmt.Errorf("%w: totalPages %d, want %d", ErrMalformedPage, p.TotalPages, want)
	}
	if len(p.Data) > p.Limit {
		return fmt.Errorf("%w: %d rows exceed limit %d", ErrMalformedPage, len(p.Data), p.Limit)
	}
	return nil
}

// Empty reports whether the page has no rows.
func (p Page[T]) Empty() bool { return len(p.Data) == 0 }

// SinglePage wraps an unpaginated collection as page 1 of 1.
func SinglePage[T any](items []T) Page[T] {
	limit := max(len(items), 1)
	return Page[T]{
		Data:       items,
		Total:      len(items),
		Page:       1,
		Limit:      limit,
		TotalPages: TotalPagesFor(len(items), limit),
	}
}

// RowNumber returns the 1-based position of row i across all pages.
func (p Page[T]) RowNumber(i int) int {
	page := max(p.Page, 1)
	return (page-1)*p.Limit + i + 1
}
