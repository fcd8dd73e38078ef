// Package help renders the key binding reference overlay.
package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/propdesk/internal/keys"
	"github.com/zjrosen/propdesk/internal/ui/overlay"
	"github.com/zjrosen/propdesk/internal/ui/styles"
)

// Model holds the help view state.
type Model struct {
	app    keys.AppKeyMap
	browse keys.BrowseKeyMap
	// filters are the active screen's filter toggles.
	filters []key.Binding
	help    help.Model
	width   int
	height  int
}

// New creates a help view for the given key maps.
func New(app keys.AppKeyMap, browse keys.BrowseKeyMap) Model {
	h := help.New()
	h.Styles.FullKey = styles.KeyHintStyle
	h.Styles.FullDesc = styles.MutedStyle
	h.Styles.FullSeparator = styles.MutedStyle
	return Model{app: app, browse: browse, help: h}
}

// SetFilters replaces the filter section.
func (m Model) SetFilters(bindings []key.Binding) Model {
	m.filters = bindings
	return m
}

// SetSize updates dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	m.help.Width = max(width-8, 20)
	return m
}

type section struct {
	title    string
	bindings [][]key.Binding
}

func (s section) ShortHelp() []key.Binding  { return nil }
func (s section) FullHelp() [][]key.Binding { return s.bindings }

func (m Model) content() string {
	sections := []section{
		{title: "Navigation", bindings: m.browse.FullHelp()},
		{title: "Application", bindings: m.app.FullHelp()},
	}
	if len(m.filters) > 0 {
		sections = append(sections, section{title: "Filters", bindings: [][]key.Binding{m.filters}})
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Keyboard shortcuts"))
	for _, s := range sections {
		b.WriteString("\n\n")
		b.WriteString(styles.TitleStyle.Foreground(styles.BorderFocusColor).Render(s.title))
		b.WriteString("\n")
		b.WriteString(m.help.FullHelpView(s.FullHelp()))
	}
	b.WriteString("\n\n")
	b.WriteString(styles.MutedStyle.Render("Press ? or esc to close"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.BorderFocusColor).
		Padding(1, 2).
		Render(b.String())
}

// View renders the box centred in an empty screen.
func (m Model) View() string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.content())
}

// Overlay renders the help box on top of background.
func (m Model) Overlay(background string) string {
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, m.content(), background)
}
