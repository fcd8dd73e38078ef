package presentation

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/zjrosen/propdesk/internal/ui/styles"
)

// LineDiff compares two documents line by line. It returns the changed
// lines prefixed with "-" or "+", unchanged lines prefixed with two
// spaces, and whether anything differs.
func LineDiff(before, after string) ([]string, bool) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out []string
	changed := false
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
			changed = true
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
			changed = true
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out = append(out, prefix+strings.TrimSuffix(line, "\n"))
		}
	}
	return out, changed
}

// Diff writes a colored line diff of before and after.
func (f *Formatter) Diff(before, after string) error {
	lines, changed := LineDiff(before, after)
	if !changed {
		_, err := fmt.Fprintln(f.writer, styles.MutedStyle.Render("no changes"))
		return err
	}
	removed := lipgloss.NewStyle().Foreground(styles.StatusErrorColor)
	added := lipgloss.NewStyle().Foreground(styles.StatusSuccessColor)
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "- "):
			line = removed.Render(line)
		case strings.HasPrefix(line, "+ "):
			line = added.Render(line)
		default:
			line = styles.MutedStyle.Render(line)
		}
		if _, err := fmt.Fprintln(f.writer, line); err != nil {
			return err
		}
	}
	return nil
}
