// Package app contains the root application model.
package app

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/propdesk/internal/credentials"
	"github.com/zjrosen/propdesk/internal/keys"
	"github.com/zjrosen/propdesk/internal/log"
	"github.com/zjrosen/propdesk/internal/mode"
	"github.com/zjrosen/propdesk/internal/notify"
	"github.com/zjrosen/propdesk/internal/pubsub"
	helpview "github.com/zjrosen/propdesk/internal/ui/help"
	"github.com/zjrosen/propdesk/internal/ui/shared/logoverlay"
	"github.com/zjrosen/propdesk/internal/ui/styles"
	"github.com/zjrosen/propdesk/internal/ui/toaster"
)

// chromeHeight is the tab bar plus the footer.
const chromeHeight = 2

// Options wires the event sources the root model listens to.
type Options struct {
	// Notices carries toasts published by the data pipeline.
	Notices *pubsub.Broker[notify.Notification]
	// Credentials fires when the bearer token file changes.
	Credentials *pubsub.Broker[credentials.Changed]
	// Debug enables the log overlay (ctrl+x).
	Debug bool
}

type filterKeyer interface {
	FilterKeys() []key.Binding
}

// Model is the root application state.
type Model struct {
	screens []mode.Controller
	mounted []bool
	stale   []bool
	active  int

	services mode.Services
	keys     keys.AppKeyMap

	width  int
	height int

	// Toasts are owned by the root, not by individual screens.
	toaster  toaster.Model
	help     helpview.Model
	showHelp bool
	short    help.Model

	debugMode  bool
	logOverlay logoverlay.Model

	ctx     context.Context
	cancel  context.CancelFunc
	notices *pubsub.ContinuousListener[notify.Notification]
	creds   *pubsub.ContinuousListener[credentials.Changed]
	startup tea.Cmd
}

// New mounts the first screen. Its first fetch runs when the program
// calls Init.
func New(services mode.Services, screens []mode.Controller, opts Options) Model {
	zone.NewGlobal()
	ctx, cancel := context.WithCancel(context.Background())
	m := Model{
		screens:    screens,
		mounted:    make([]bool, len(screens)),
		stale:      make([]bool, len(screens)),
		services:   services,
		keys:       keys.DefaultAppKeyMap(),
		toaster:    toaster.New(),
		help:       helpview.New(keys.DefaultAppKeyMap(), keys.DefaultBrowseKeyMap()),
		short:      help.New(),
		debugMode:  opts.Debug,
		logOverlay: logoverlay.New(),
		ctx:        ctx,
		cancel:     cancel,
	}

	var cmds []tea.Cmd
	if opts.Notices != nil {
		m.notices = pubsub.NewContinuousListener(ctx, opts.Notices)
		cmds = append(cmds, m.notices.Listen())
	}
	if opts.Credentials != nil {
		m.creds = pubsub.NewContinuousListener(ctx, opts.Credentials)
		cmds = append(cmds, m.creds.Listen())
	}
	if opts.Debug {
		cmds = append(cmds, m.logOverlay.StartListening(ctx))
	}
	if len(screens) > 0 {
		var cmd tea.Cmd
		m, cmd = m.mount(0)
		cmds = append(cmds, cmd)
	}
	m.startup = tea.Batch(cmds...)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.startup
}

// Active returns the index of the visible tab.
func (m Model) Active() int { return m.active }

// Screen returns the controller at index i.
func (m Model) Screen(i int) mode.Controller { return m.screens[i] }

// Close stops the event listeners.
func (m Model) Close() {
	m.cancel()
}

func (m Model) mount(i int) (Model, tea.Cmd) {
	screen, cmd := m.screens[i].SetSize(m.width, m.bodyHeight()).Init()
	m.screens[i] = screen
	m.mounted[i] = true
	m.stale[i] = false
	log.Debug(log.CatUI, "Mounted tab", "title", screen.Title())
	return m, cmd
}

func (m Model) switchTo(i int) (Model, tea.Cmd) {
	if len(m.screens) == 0 {
		return m, nil
	}
	m.active = (i + len(m.screens)) % len(m.screens)
	switch {
	case !m.mounted[m.active]:
		return m.mount(m.active)
	case m.stale[m.active]:
		m.stale[m.active] = false
		screen, cmd := m.screens[m.active].Reload()
		m.screens[m.active] = screen
		return m, cmd
	}
	return m, nil
}

func (m Model) bodyHeight() int {
	return max(m.height-chromeHeight, 0)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		for i, s := range m.screens {
			m.screens[i] = s.SetSize(m.width, m.bodyHeight())
		}
		m.help = m.help.SetSize(msg.Width, msg.Height)
		m.short.Width = msg.Width
		m.logOverlay.SetSize(msg.Width, msg.Height)
		return m, nil

	case pubsub.Event[notify.Notification]:
		var cmd tea.Cmd
		m.toaster, cmd = m.toaster.Push(msg.Payload)
		return m, tea.Batch(cmd, m.notices.Listen())

	case pubsub.Event[credentials.Changed]:
		return m.credentialsChanged(msg.Payload)

	case toaster.DismissMsg:
		m.toaster = m.toaster.Update(msg)
		return m, nil

	case log.LogEvent:
		var cmd tea.Cmd
		m.logOverlay, cmd = m.logOverlay.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.showHelp || m.logOverlay.Visible() || len(m.screens) == 0 {
			return m, nil
		}
		screen, cmd := m.screens[m.active].Update(msg)
		m.screens[m.active] = screen
		return m, cmd
	}

	// Results are tagged with their resource, so every mounted screen
	// sees them and keeps only its own.
	var cmds []tea.Cmd
	for i, s := range m.screens {
		if !m.mounted[i] {
			continue
		}
		screen, cmd := s.Update(msg)
		m.screens[i] = screen
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) credentialsChanged(c credentials.Changed) (tea.Model, tea.Cmd) {
	log.Info(log.CatAuth, "Credentials changed, reloading", "present", c.Present)
	cmds := []tea.Cmd{m.creds.Listen()}
	if m.services.Refs != nil {
		m.services.Refs.Invalidate()
	}
	for i := range m.screens {
		if !m.mounted[i] {
			continue
		}
		if i != m.active {
			m.stale[i] = true
			continue
		}
		screen, cmd := m.screens[i].Reload()
		m.screens[i] = screen
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.debugMode && key.Matches(msg, m.keys.Logs) {
		m.logOverlay.Toggle()
		return m, nil
	}
	if m.logOverlay.Visible() {
		var cmd tea.Cmd
		m.logOverlay, cmd = m.logOverlay.Update(msg)
		return m, cmd
	}
	if m.showHelp {
		if key.Matches(msg, m.keys.Help) || msg.Type == tea.KeyEsc {
			m.showHelp = false
		}
		return m, nil
	}
	if len(m.screens) == 0 {
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		return m, nil
	}

	active := m.screens[m.active]
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if !active.Capturing() {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.NextTab):
			return m.switchTo(m.active + 1)
		case key.Matches(msg, m.keys.PrevTab):
			return m.switchTo(m.active - 1)
		case key.Matches(msg, m.keys.Help):
			var filters []key.Binding
			if fk, ok := active.(filterKeyer); ok {
				filters = fk.FilterKeys()
			}
			m.help = m.help.SetFilters(filters)
			m.showHelp = true
			return m, nil
		}
	}

	screen, cmd := active.Update(msg)
	m.screens[m.active] = screen
	return m, cmd
}

func (m Model) tabBar() string {
	tabs := make([]string, len(m.screens))
	for i, s := range m.screens {
		title := " " + s.Title() + " "
		if i == m.active {
			tabs[i] = styles.ActiveTab.Render(title)
		} else {
			tabs[i] = styles.InactiveTab.Render(title)
		}
	}
	return styles.TruncateString(strings.Join(tabs, styles.MutedStyle.Render("│")), m.width)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	var body string
	if len(m.screens) > 0 {
		body = m.screens[m.active].View()
	}
	view := lipgloss.JoinVertical(lipgloss.Left,
		m.tabBar(),
		lipgloss.NewStyle().Height(m.bodyHeight()).MaxHeight(m.bodyHeight()).Render(body),
		m.short.ShortHelpView(m.keys.ShortHelp()),
	)

	if m.showHelp {
		view = m.help.Overlay(view)
	}
	if m.toaster.Visible() {
		view = m.toaster.Overlay(view, m.width, m.height)
	}
	view = m.logOverlay.Overlay(view)
	return zone.Scan(view)
}
