// Package panes contains reusable bordered pane UI components.
package panes

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/propdesk/internal/ui/styles"
)

const (
	borderTopLeft     = "╭"
	borderTopRight    = "╮"
	borderBottomLeft  = "╰"
	borderBottomRight = "╯"
	borderHorizontal  = "─"
	borderVertical    = "│"
)

// BorderConfig configures a bordered panel. Titles are embedded in the
// top and bottom edges.
type BorderConfig struct {
	Content string
	Width   int // including borders
	Height  int // including borders

	TopLeft     string
	TopRight    string
	BottomLeft  string
	BottomRight string

	Focused            bool
	TitleColor         lipgloss.TerminalColor
	BorderColor        lipgloss.TerminalColor
	FocusedBorderColor lipgloss.TerminalColor
}

// BorderedPane renders content inside a rounded border. Content is
// clipped and padded to the inner size.
func BorderedPane(cfg BorderConfig) string {
	borderStyle := lipgloss.NewStyle().Foreground(resolveBorderColor(cfg))
	titleColor := cfg.TitleColor
	if titleColor == nil {
		titleColor = styles.BorderDefaultColor
	}
	titleStyle := lipgloss.NewStyle().Foreground(titleColor)

	innerWidth := max(cfg.Width-2, 1)
	innerHeight := max(cfg.Height-2, 1)

	lines := strings.Split(cfg.Content, "\n")
	var b strings.Builder
	b.WriteString(edge(borderTopLeft, borderTopRight, cfg.TopLeft, cfg.TopRight, innerWidth, borderStyle, titleStyle))
	for i := range innerHeight {
		var line string
		if i < len(lines) {
			line = lines[i]
		}
		if lipgloss.Width(line) > innerWidth {
			line = styles.TruncateString(line, innerWidth)
		}
		if pad := innerWidth - lipgloss.Width(line); pad > 0 {
			line += strings.Repeat(" ", pad)
		}
		b.WriteString("\n")
		b.WriteString(borderStyle.Render(borderVertical) + line + borderStyle.Render(borderVertical))
	}
	b.WriteString("\n")
	b.WriteString(edge(borderBottomLeft, borderBottomRight, cfg.BottomLeft, cfg.BottomRight, innerWidth, borderStyle, titleStyle))
	return b.String()
}

func resolveBorderColor(cfg BorderConfig) lipgloss.TerminalColor {
	if cfg.Focused && cfg.FocusedBorderColor != nil {
		return cfg.FocusedBorderColor
	}
	if cfg.BorderColor != nil {
		return cfg.BorderColor
	}
	return styles.BorderDefaultColor
}

// edge draws one horizontal border: ╭─ left ──── right ─╮. The right
// title is dropped first, then the left one truncated, when space runs out.
func edge(openCorner, closeCorner, left, right string, innerWidth int, borderStyle, titleStyle lipgloss.Style) string {
	leftW, rightW := lipgloss.Width(left), lipgloss.Width(right)
	need := func() int {
		n := 0
		if left != "" {
			n += 3 + leftW
		}
		if right != "" {
			n += 3 + rightW
		}
		return n + 1
	}

	if right != "" && need() > innerWidth {
		right, rightW = "", 0
	}
	if left != "" && need() > innerWidth {
		left = styles.TruncateString(left, max(innerWidth-4, 0))
		leftW = lipgloss.Width(left)
		if leftW == 0 {
			left = ""
		}
	}

	var b strings.Builder
	b.WriteString(borderStyle.Render(openCorner))
	used := 0
	if left != "" {
		b.WriteString(borderStyle.Render(borderHorizontal + " "))
		b.WriteString(titleStyle.Render(left))
		b.WriteString(borderStyle.Render(" "))
		used += 3 + leftW
	}
	tail := ""
	if right != "" {
		used += 3 + rightW
		tail = borderStyle.Render(" ") + titleStyle.Render(right) + borderStyle.Render(" "+borderHorizontal)
	}
	b.WriteString(borderStyle.Render(strings.Repeat(borderHorizontal, max(innerWidth-used, 0))))
	b.WriteString(tail)
	b.WriteString(borderStyle.Render(closeCorner))
	return b.String()
}
