// Package mode defines the screen controller interface and shared services.
package mode

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/propdesk/internal/config"
	"github.com/zjrosen/propdesk/internal/flags"
	"github.com/zjrosen/propdesk/internal/notify"
	"github.com/zjrosen/propdesk/internal/refcache"
	"github.com/zjrosen/propdesk/internal/repository"
)

// Controller is implemented by every tab screen.
type Controller interface {
	// Init starts the first load and returns the mounted screen.
	Init() (Controller, tea.Cmd)

	// Update handles messages and returns updated model and commands.
	Update(msg tea.Msg) (Controller, tea.Cmd)

	// View renders the screen.
	View() string

	// SetSize handles terminal resize events.
	SetSize(width, height int) Controller

	// Title is the tab label.
	Title() string

	// Reload re-fetches the current page, e.g. after credentials changed.
	Reload() (Controller, tea.Cmd)

	// Capturing reports whether the screen is consuming raw key input
	// (text entry, a dialog) so the root must not interpret keys.
	Capturing() bool
}

// Services contains shared dependencies injected into screens.
type Services struct {
	Repos      *repository.Set
	Refs       *refcache.Cache
	Notifier   notify.Notifier
	Flags      *flags.Registry
	Config     *config.Config
	ConfigPath string
	// ExportDir receives workbooks exported from a table. Empty means the
	// working directory.
	ExportDir string
}
