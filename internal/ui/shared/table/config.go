// Package table renders render.Row grids as a bordered terminal table.
//
// The table is a pure render component: callers own selection and data
// state and pass rows, dimensions and the list state in. Loading, empty and
// error placeholders are drawn with the same column set as the data view
// so the layout does not shift between states.
package table

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/propdesk/internal/render"
)

// ColumnConfig is one display column.
type ColumnConfig struct {
	Key      string
	Header   string
	Width    int // fixed width, 0 = flex
	MinWidth int // floor for flex columns
	MaxWidth int // ceiling for flex columns, 0 = none
	Align    lipgloss.Position

	// HideBelow hides the column when the table is narrower than this.
	HideBelow int
}

// TableConfig is the static part of a table.
type TableConfig struct {
	Columns    []ColumnConfig
	ShowHeader bool
	ShowBorder bool
	Title      string

	EmptyMessage string

	// RowZoneID names a bubblezone zone for row i so mouse clicks can be
	// mapped back to rows. Optional.
	RowZoneID func(index int) string

	Focused bool
}

// ValidateConfig rejects a config without columns or with duplicate keys.
func ValidateConfig(cfg TableConfig) error {
	if len(cfg.Columns) == 0 {
		return errors.New("table config: at least one column is required")
	}
	seen := make(map[string]bool, len(cfg.Columns))
	for _, col := range cfg.Columns {
		if seen[col.Key] {
			return fmt.Errorf("table config: duplicate column %q", col.Key)
		}
		seen[col.Key] = true
	}
	return nil
}

// ColumnsFrom converts render columns into table columns.
func ColumnsFrom[T any](cols []render.Column[T]) []ColumnConfig {
	out := make([]ColumnConfig, len(cols))
	for i, c := range cols {
		out[i] = ColumnConfig{
			Key:      c.Key,
			Header:   c.Header,
			Width:    c.Width,
			MinWidth: c.MinWidth,
			Align:    position(c.Align),
		}
	}
	return out
}

func position(a render.Align) lipgloss.Position {
	switch a {
	case render.AlignRight:
		return lipgloss.Right
	case render.AlignCenter:
		return lipgloss.Center
	default:
		return lipgloss.Left
	}
}
