// Package modal provides the confirmation dialog used before destructive
// actions.
package modal

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/propdesk/internal/ui/overlay"
	"github.com/zjrosen/propdesk/internal/ui/styles"
)

const defaultWidth = 52

// Config controls the dialog text.
type Config struct {
	Title        string
	Message      string
	ConfirmLabel string // default "Confirm"
	CancelLabel  string // default "Cancel"
	Danger       bool
	// Tag is echoed back in ConfirmMsg and CancelMsg.
	Tag string
}

// ConfirmMsg is sent when the user confirms.
type ConfirmMsg struct{ Tag string }

// CancelMsg is sent when the user backs out.
type CancelMsg struct{ Tag string }

// Model is the dialog state. The cancel button starts focused.
type Model struct {
	config  Config
	confirm bool
}

// New creates a dialog.
func New(cfg Config) Model {
	if cfg.ConfirmLabel == "" {
		cfg.ConfirmLabel = "Confirm"
	}
	if cfg.CancelLabel == "" {
		cfg.CancelLabel = "Cancel"
	}
	return Model{config: cfg}
}

// Tag returns the configured tag.
func (m Model) Tag() string { return m.config.Tag }

// Update handles keys.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	tag := m.config.Tag
	switch key.String() {
	case "tab", "shift+tab", "left", "right", "h", "l":
		m.confirm = !m.confirm
	case "y":
		return m, func() tea.Msg { return ConfirmMsg{Tag: tag} }
	case "n", "esc", "q":
		return m, func() tea.Msg { return CancelMsg{Tag: tag} }
	case "enter":
		if m.confirm {
			return m, func() tea.Msg { return ConfirmMsg{Tag: tag} }
		}
		return m, func() tea.Msg { return CancelMsg{Tag: tag} }
	}
	return m, nil
}

// View renders the dialog box.
func (m Model) View() string {
	confirmStyle, cancelStyle := styles.SecondaryButtonStyle, styles.SecondaryButtonFocusedStyle
	if m.config.Danger {
		confirmStyle = styles.DangerButtonStyle
	}
	if m.confirm {
		cancelStyle = styles.SecondaryButtonStyle
		confirmStyle = styles.SecondaryButtonFocusedStyle
		if m.config.Danger {
			confirmStyle = styles.DangerButtonFocusedStyle
		}
	}

	inner := defaultWidth - 4
	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render(m.config.Title),
		"",
		lipgloss.NewStyle().Width(inner).Foreground(styles.TextDescriptionColor).Render(m.config.Message),
		"",
		lipgloss.PlaceHorizontal(inner, lipgloss.Right,
			cancelStyle.Render(m.config.CancelLabel)+" "+confirmStyle.Render(m.config.ConfirmLabel)),
	)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.BorderFocusColor).
		Padding(0, 1).
		Render(body)
}

// Overlay centres the dialog over bg.
func (m Model) Overlay(bg string, width, height int) string {
	return overlay.Place(overlay.Config{Width: width, Height: height, Position: overlay.Center}, m.View(), bg)
}
