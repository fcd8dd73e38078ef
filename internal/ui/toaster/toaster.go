// Package toaster renders transient notifications in the corner of the
// screen.
package toaster

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/propdesk/internal/notify"
	"github.com/zjrosen/propdesk/internal/ui/overlay"
	"github.com/zjrosen/propdesk/internal/ui/styles"
)

// DefaultTTL is how long a toast stays up.
const DefaultTTL = 4 * time.Second

// MaxVisible caps how many toasts stack at once; older ones drop off.
const MaxVisible = 3

const maxToastWidth = 48

type toast struct {
	id uint64
	n  notify.Notification
}

// Model holds the visible toasts, newest last.
type Model struct {
	toasts []toast
	nextID uint64
	ttl    time.Duration
}

// New creates an empty toaster.
func New() Model {
	return Model{ttl: DefaultTTL}
}

// DismissMsg expires one toast.
type DismissMsg struct{ ID uint64 }

// Push shows n and schedules its dismissal.
func (m Model) Push(n notify.Notification) (Model, tea.Cmd) {
	m.nextID++
	id := m.nextID
	m.toasts = append(m.toasts, toast{id: id, n: n})
	if len(m.toasts) > MaxVisible {
		m.toasts = m.toasts[len(m.toasts)-MaxVisible:]
	}
	return m, tea.Tick(m.ttl, func(time.Time) tea.Msg { return DismissMsg{ID: id} })
}

// Update handles DismissMsg.
func (m Model) Update(msg tea.Msg) Model {
	if d, ok := msg.(DismissMsg); ok {
		m = m.remove(d.ID)
	}
	return m
}

// DismissAll clears every toast.
func (m Model) DismissAll() Model {
	m.toasts = nil
	return m
}

func (m Model) remove(id uint64) Model {
	kept := m.toasts[:0:0]
	for _, t := range m.toasts {
		if t.id != id {
			kept = append(kept, t)
		}
	}
	m.toasts = kept
	return m
}

// Visible reports whether any toast is showing.
func (m Model) Visible() bool { return len(m.toasts) > 0 }

// Count is the number of visible toasts.
func (m Model) Count() int { return len(m.toasts) }

// View renders the toast stack.
func (m Model) View() string {
	if len(m.toasts) == 0 {
		return ""
	}
	boxes := make([]string, len(m.toasts))
	for i, t := range m.toasts {
		boxes[i] = render(t.n)
	}
	return lipgloss.JoinVertical(lipgloss.Right, boxes...)
}

func render(n notify.Notification) string {
	style := lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder()).MaxWidth(maxToastWidth)
	var icon string
	switch n.Level {
	case notify.LevelError:
		style = style.BorderForeground(styles.StatusErrorColor)
		icon = "✗"
	case notify.LevelWarn:
		style = style.BorderForeground(styles.StatusWarningColor)
		icon = "!"
	case notify.LevelSuccess:
		style = style.BorderForeground(styles.StatusSuccessColor)
		icon = "✓"
	default:
		style = style.BorderForeground(styles.StatusInfoColor)
		icon = "i"
	}

	lines := []string{styles.TitleStyle.Render(icon + " " + n.Title)}
	if desc := strings.TrimSpace(n.Description); desc != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(styles.TextDescriptionColor).Render(desc))
	}
	return style.Render(strings.Join(lines, "\n"))
}

// Overlay draws the stack in the bottom-right corner of bg.
func (m Model) Overlay(bg string, width, height int) string {
	if len(m.toasts) == 0 {
		return bg
	}
	return overlay.Place(overlay.Config{
		Width:    width,
		Height:   height,
		Position: overlay.BottomRight,
		PadX:     1,
		PadY:     1,
	}, m.View(), bg)
}
