package table

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/propdesk/internal/render"
	"github.com/zjrosen/propdesk/internal/ui/styles"
)

const minFlexWidth = 3

var (
	selectionStyle = lipgloss.NewStyle().Background(styles.SelectionBackgroundColor)
	skeletonStyle  = lipgloss.NewStyle().Foreground(styles.SkeletonColor)
	missingStyle   = lipgloss.NewStyle().Foreground(styles.TextMutedColor).Italic(true)
	headerStyle    = lipgloss.NewStyle().Foreground(styles.TextMutedColor).Bold(true)
)

// filterVisibleColumns drops columns whose HideBelow exceeds width. The
// returned indexes map visible columns back to row cells.
func filterVisibleColumns(cols []ColumnConfig, width int) ([]ColumnConfig, []int) {
	visible := make([]ColumnConfig, 0, len(cols))
	idx := make([]int, 0, len(cols))
	for i, c := range cols {
		if c.HideBelow > 0 && width < c.HideBelow {
			continue
		}
		visible = append(visible, c)
		idx = append(idx, i)
	}
	return visible, idx
}

// calculateColumnWidths gives fixed columns their width and shares what is
// left between flex columns, honouring MinWidth and MaxWidth.
func calculateColumnWidths(cols []ColumnConfig, total int) []int {
	widths := make([]int, len(cols))
	remaining := total - max(len(cols)-1, 0)

	var flex []int
	for i, c := range cols {
		if c.Width > 0 {
			widths[i] = c.Width
			remaining -= c.Width
			continue
		}
		widths[i] = max(c.MinWidth, minFlexWidth)
		remaining -= widths[i]
		flex = append(flex, i)
	}

	for remaining > 0 && len(flex) > 0 {
		grown := false
		for _, i := range flex {
			if remaining == 0 {
				break
			}
			if ceiling := cols[i].MaxWidth; ceiling > 0 && widths[i] >= ceiling {
				continue
			}
			widths[i]++
			remaining--
			grown = true
		}
		if !grown {
			break
		}
	}
	return widths
}

func renderHeader(cols []ColumnConfig, widths []int) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = alignText(styles.TruncateString(c.Header, widths[i]), widths[i], c.Align)
	}
	return headerStyle.Render(strings.Join(parts, " "))
}

func cellText(c render.Cell, width int) string {
	switch c.State {
	case render.Skeleton:
		return skeletonStyle.Render(strings.Repeat("░", max(min(width, 12), 1)))
	case render.Missing:
		return missingStyle.Render(styles.TruncateString(c.Text, width))
	default:
		return styles.TruncateString(c.Text, width)
	}
}

// renderRow draws one row. cellIdx maps visible columns to row cells.
func renderRow(row render.Row, cols []ColumnConfig, cellIdx, widths []int, selected bool, fullWidth int) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		var cell render.Cell
		if j := cellIdx[i]; j < len(row.Cells) {
			cell = row.Cells[j]
		}
		parts[i] = alignText(cellText(cell, widths[i]), widths[i], c.Align)
	}
	line := strings.Join(parts, " ")
	if !selected {
		return line
	}
	if pad := fullWidth - lipgloss.Width(line); pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	return applyBackground(line)
}

var selectionPrefix = strings.TrimSuffix(selectionStyle.Render(" "), " \x1b[0m")

// applyBackground keeps the selection background alive across resets
// emitted by styled cells.
func applyBackground(content string) string {
	if !strings.Contains(content, "\x1b[") {
		return selectionStyle.Render(content)
	}
	return selectionPrefix + strings.ReplaceAll(content, "\x1b[0m", "\x1b[0m"+selectionPrefix) + "\x1b[0m"
}

// renderMessage centres msg in a width×height block.
func renderMessage(msg string, style lipgloss.Style, width, height int) []string {
	if width <= 0 || height <= 0 {
		return nil
	}
	msgLines := strings.Split(msg, "\n")
	top := max((height-len(msgLines))/2, 0)
	lines := make([]string, 0, height)
	for range top {
		lines = append(lines, "")
	}
	for _, m := range msgLines {
		if len(lines) == height {
			break
		}
		m = styles.TruncateString(m, width)
		lines = append(lines, lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(m)))
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return lines
}

func alignText(text string, width int, align lipgloss.Position) string {
	pad := width - lipgloss.Width(text)
	if pad <= 0 {
		return text
	}
	switch align {
	case lipgloss.Right:
		return strings.Repeat(" ", pad) + text
	case lipgloss.Center:
		left := pad / 2
		return strings.Repeat(" ", left) + text + strings.Repeat(" ", pad-left)
	default:
		return text + strings.Repeat(" ", pad)
	}
}
