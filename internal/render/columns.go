// Package render maps list data and column descriptors onto a grid of
// display cells. It knows nothing about terminals; the ui table and the
// export writer both consume its rows.
package render

import (
	"slices"
	"strconv"

	"github.com/zjrosen/propdesk/internal/domain"
)

// Align is a cell's horizontal alignment.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
	AlignCenter
)

// Column describes one display column of a T-typed list.
type Column[T any] struct {
	Key      string
	Header   string
	Width    int
	MinWidth int
	Align    Align
	// Pinned columns cannot be hidden.
	Pinned bool
	// RowNumber columns show the row's position across pages.
	RowNumber bool

	Value   func(T) string
	Resolve func(T, Refs) Cell
}

// Row is one rendered data row.
type Row struct {
	Cells []Cell
}

// Rows produces a row per item and a cell per column. first is the
// number shown for data[0] in RowNumber columns.
func Rows[T any](data []T, columns []Column[T], refs Refs, first int) []Row {
	rows := make([]Row, len(data))
	for i, item := range data {
		cells := make([]Cell, len(columns))
		for j, col := range columns {
			cells[j] = cellFor(item, col, refs, first+i)
		}
		rows[i] = Row{Cells: cells}
	}
	return rows
}

// PageRows renders a page, numbering rows from the page offset.
func PageRows[T any](page domain.Page[T], columns []Column[T], refs Refs) []Row {
	return Rows(page.Data, columns, refs, page.RowNumber(0))
}

func cellFor[T any](item T, col Column[T], refs Refs, number int) Cell {
	switch {
	case col.RowNumber:
		return Text(strconv.Itoa(number))
	case col.Resolve != nil:
		return col.Resolve(item, refs)
	case col.Value != nil:
		return Text(col.Value(item))
	default:
		return Text("")
	}
}

// Headers returns the column headers in order.
func Headers[T any](columns []Column[T]) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.Header
	}
	return out
}

// Visible drops hidden columns. Pinned columns are always kept.
func Visible[T any](columns []Column[T], hidden []string) []Column[T] {
	if len(hidden) == 0 {
		return columns
	}
	out := make([]Column[T], 0, len(columns))
	for _, c := range columns {
		if c.Pinned || !slices.Contains(hidden, c.Key) {
			out = append(out, c)
		}
	}
	return out
}

// Hideable returns the keys of columns that can be hidden.
func Hideable[T any](columns []Column[T]) []string {
	var keys []string
	for _, c := range columns {
		if !c.Pinned {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// SkeletonRows returns n rows of skeleton cells, width cells each, for a
// table that is still loading.
func SkeletonRows(n, width int) []Row {
	rows := make([]Row, n)
	for i := range rows {
		cells := make([]Cell, width)
		for j := range cells {
			cells[j] = Cell{State: Skeleton}
		}
		rows[i] = Row{Cells: cells}
	}
	return rows
}
