package browse

import (
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/propdesk/internal/config"
	"github.com/zjrosen/propdesk/internal/log"
	"github.com/zjrosen/propdesk/internal/mode"
	"github.com/zjrosen/propdesk/internal/render"
	"github.com/zjrosen/propdesk/internal/ui/styles"
)

// columnPicker toggles the visibility of hideable columns.
type columnPicker struct {
	keys   []string
	labels map[string]string
	hidden map[string]bool
	cursor int
}

func newColumnPicker(keys []string, labels map[string]string, hidden []string) *columnPicker {
	p := &columnPicker{keys: keys, labels: labels, hidden: map[string]bool{}}
	for _, k := range hidden {
		p.hidden[k] = true
	}
	return p
}

func headersByKey[T any](cols []render.Column[T]) map[string]string {
	out := make(map[string]string, len(cols))
	for _, c := range cols {
		out[c.Key] = c.Header
	}
	return out
}

// Hidden returns the hidden keys in column order.
func (p *columnPicker) Hidden() []string {
	var out []string
	for _, k := range p.keys {
		if p.hidden[k] {
			out = append(out, k)
		}
	}
	return out
}

func (p *columnPicker) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Columns"))
	b.WriteString("\n\n")
	if len(p.keys) == 0 {
		b.WriteString(styles.MutedStyle.Render("No optional columns"))
		b.WriteString("\n")
	}
	for i, k := range p.keys {
		mark := "[x]"
		if p.hidden[k] {
			mark = "[ ]"
		}
		line := mark + " " + p.labels[k]
		if i == p.cursor {
			line = lipgloss.NewStyle().Foreground(styles.BorderFocusColor).Bold(true).Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.KeyHints("space", "toggle", "enter", "done"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.BorderFocusColor).
		Padding(0, 2).
		Render(b.String())
}

func (s Screen[T, F]) updatePicker(msg tea.KeyMsg) (mode.Controller, tea.Cmd) {
	p := s.picker
	switch msg.String() {
	case "up", "k":
		p.cursor = max(p.cursor-1, 0)
	case "down", "j":
		p.cursor = min(p.cursor+1, max(len(p.keys)-1, 0))
	case " ", "x":
		if len(p.keys) > 0 {
			k := p.keys[p.cursor]
			p.hidden[k] = !p.hidden[k]
		}
	case "enter", "esc", "c", "q":
		s.picker = nil
		hidden := p.Hidden()
		if slices.Equal(hidden, s.hidden) {
			return s, nil
		}
		s.hidden = hidden
		return s.sync(), s.saveColumns(hidden)
	}
	return s, nil
}

func (s Screen[T, F]) saveColumns(hidden []string) tea.Cmd {
	if s.svc.Config != nil {
		if s.svc.Config.UI.HiddenColumns == nil {
			s.svc.Config.UI.HiddenColumns = map[string][]string{}
		}
		s.svc.Config.UI.HiddenColumns[s.def.Resource] = hidden
	}
	if s.svc.ConfigPath == "" {
		return nil
	}
	path, resource := s.svc.ConfigPath, s.def.Resource
	return func() tea.Msg {
		err := config.SaveHiddenColumns(path, resource, hidden)
		if err != nil {
			log.ErrorErr(log.CatConfig, "Failed to save hidden columns", err, "resource", resource)
		}
		return columnsSavedMsg{resource: resource, err: err}
	}
}
