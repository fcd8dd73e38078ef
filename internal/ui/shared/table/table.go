package table

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/propdesk/internal/render"
	"github.com/zjrosen/propdesk/internal/ui/shared/panes"
	"github.com/zjrosen/propdesk/internal/ui/styles"
)

// Mode selects what the body of the table shows.
type Mode int

const (
	ModeRows Mode = iota
	ModeLoading
	ModeEmpty
	ModeError
)

// Model holds table rendering state.
type Model struct {
	config  TableConfig
	rows    []render.Row
	mode    Mode
	message string
	status  string
	width   int
	height  int
	offset  int
}

// New creates a table. It panics on an invalid config.
func New(cfg TableConfig) Model {
	if err := ValidateConfig(cfg); err != nil {
		panic(err)
	}
	if cfg.EmptyMessage == "" {
		cfg.EmptyMessage = "No results."
	}
	return Model{config: cfg}
}

// SetRows shows rows. An empty slice switches to the empty state.
func (m Model) SetRows(rows []render.Row) Model {
	m.rows = rows
	m.mode = ModeRows
	if len(rows) == 0 {
		m.mode = ModeEmpty
	}
	m.offset = m.clampOffset(m.offset)
	return m
}

// SetLoading shows skeleton rows in place of data.
func (m Model) SetLoading() Model {
	m.mode = ModeLoading
	return m
}

// SetError shows msg with a retry hint in place of data.
func (m Model) SetError(msg string) Model {
	m.mode = ModeError
	m.message = msg
	return m
}

// SetStatus sets the text in the bottom-right of the border.
func (m Model) SetStatus(s string) Model {
	m.status = s
	return m
}

// SetConfig swaps the config, keeping rows and scroll.
func (m Model) SetConfig(cfg TableConfig) Model {
	if cfg.EmptyMessage == "" {
		cfg.EmptyMessage = m.config.EmptyMessage
	}
	m.config = cfg
	return m
}

// SetSize sets the outer dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	m.offset = m.clampOffset(m.offset)
	return m
}

// Mode returns what the body currently shows.
func (m Model) Mode() Mode { return m.mode }

// RowCount is the number of data rows.
func (m Model) RowCount() int { return len(m.rows) }

// ColumnCount is the number of configured columns.
func (m Model) ColumnCount() int { return len(m.config.Columns) }

func (m Model) bodyHeight() int {
	h := m.height
	if m.config.ShowBorder {
		h -= 2
	}
	if m.config.ShowHeader {
		h--
	}
	return max(h, 0)
}

func (m Model) clampOffset(offset int) int {
	return max(min(offset, len(m.rows)-m.bodyHeight()), 0)
}

// EnsureVisible scrolls so row i is in view.
func (m Model) EnsureVisible(i int) Model {
	if i < 0 || i >= len(m.rows) {
		return m
	}
	if i < m.offset {
		m.offset = i
	}
	if h := m.bodyHeight(); h > 0 && i >= m.offset+h {
		m.offset = i - h + 1
	}
	m.offset = m.clampOffset(m.offset)
	return m
}

// YOffset is the index of the first visible row.
func (m Model) YOffset() int { return m.offset }

// View renders without selection.
func (m Model) View() string { return m.ViewWithSelection(-1) }

// ViewWithSelection renders with row selected highlighted.
func (m Model) ViewWithSelection(selected int) string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	innerWidth, innerHeight := m.width, m.height
	if m.config.ShowBorder {
		innerWidth -= 2
		innerHeight -= 2
	}
	if innerWidth <= 0 || innerHeight <= 0 {
		return ""
	}

	cols, cellIdx := filterVisibleColumns(m.config.Columns, m.width)
	widths := calculateColumnWidths(cols, innerWidth)

	var lines []string
	if m.config.ShowHeader {
		lines = append(lines, renderHeader(cols, widths))
	}
	body := m.bodyHeight()

	switch m.mode {
	case ModeLoading:
		for _, row := range render.SkeletonRows(body, len(m.config.Columns)) {
			lines = append(lines, renderRow(row, cols, cellIdx, widths, false, innerWidth))
		}
	case ModeEmpty:
		lines = append(lines, renderMessage(m.config.EmptyMessage, styles.MutedStyle, innerWidth, body)...)
	case ModeError:
		msg := m.message + "\n\n" + styles.KeyHints("r", "Try Again")
		lines = append(lines, renderMessage(msg, styles.ErrorStyle, innerWidth, body)...)
	default:
		end := min(m.offset+body, len(m.rows))
		for i := m.offset; i < end; i++ {
			line := renderRow(m.rows[i], cols, cellIdx, widths, i == selected, innerWidth)
			if m.config.RowZoneID != nil {
				if id := m.config.RowZoneID(i); id != "" {
					line = zone.Mark(id, line)
				}
			}
			lines = append(lines, line)
		}
	}
	for len(lines) < innerHeight {
		lines = append(lines, "")
	}
	content := strings.Join(lines, "\n")

	if !m.config.ShowBorder {
		return lipgloss.NewStyle().MaxWidth(m.width).Render(content)
	}
	return panes.BorderedPane(panes.BorderConfig{
		Content:            content,
		Width:              m.width,
		Height:             m.height,
		TopLeft:            m.config.Title,
		BottomRight:        m.status,
		Focused:            m.config.Focused,
		FocusedBorderColor: styles.BorderFocusColor,
	})
}
