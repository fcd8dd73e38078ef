package browse

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/propdesk/internal/api"
	"github.com/zjrosen/propdesk/internal/config"
	"github.com/zjrosen/propdesk/internal/domain"
	"github.com/zjrosen/propdesk/internal/listview"
	"github.com/zjrosen/propdesk/internal/mode"
	"github.com/zjrosen/propdesk/internal/notify"
	"github.com/zjrosen/propdesk/internal/render"
	"github.com/zjrosen/propdesk/internal/ui/shared/table"
)

type recorder struct {
	mu    sync.Mutex
	items []notify.Notification
}

func (r *recorder) Notify(n notify.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *recorder) titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.items))
	for i, n := range r.items {
		out[i] = n.Title
	}
	return out
}

// backend is an in-memory project list.
type backend struct {
	mu        sync.Mutex
	projects  []domain.Project
	calls     []domain.ProjectFilter
	deleted   []domain.ID
	deleteErr error
}

func newBackend(names ...string) *backend {
	b := &backend{}
	for i, n := range names {
		b.projects = append(b.projects, domain.Project{ID: domain.ID(string(rune('1' + i))), Name: n, BuilderID: "1"})
	}
	return b
}

func (b *backend) fetch(_ context.Context, f domain.ProjectFilter) (domain.Page[domain.Project], error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, f)
	data := append([]domain.Project(nil), b.projects...)
	return domain.Page[domain.Project]{
		Data:       data,
		Total:      len(data),
		Page:       f.Page,
		Limit:      f.Limit,
		TotalPages: domain.TotalPagesFor(len(data), f.Limit),
	}, nil
}

func (b *backend) remove(_ context.Context, id domain.ID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.deleteErr != nil {
		return b.deleteErr
	}
	b.deleted = append(b.deleted, id)
	for i, p := range b.projects {
		if p.ID == id {
			b.projects = append(b.projects[:i], b.projects[i+1:]...)
			break
		}
	}
	return nil
}

func (b *backend) fetches() []domain.ProjectFilter {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.ProjectFilter(nil), b.calls...)
}

type projectScreen = Screen[domain.Project, domain.ProjectFilter]

func testServices(t *testing.T, n notify.Notifier) mode.Services {
	t.Helper()
	cfg := config.Defaults()
	cfg.UI.SearchDebounce = time.Millisecond
	return mode.Services{Notifier: n, Config: &cfg, ExportDir: t.TempDir()}
}

func testDefinition(b *backend) Definition[domain.Project, domain.ProjectFilter] {
	return Definition[domain.Project, domain.ProjectFilter]{
		Resource: "projects",
		Title:    "Projects",
		Columns:  render.ProjectColumns(),
		Fetch:    b.fetch,
		Filter:   domain.NewProjectFilter(10),
		Search:   domain.ProjectFilter.WithName,
		Clear:    func(f domain.ProjectFilter) domain.ProjectFilter { return domain.NewProjectFilter(f.Limit) },
		ID:       func(p domain.Project) domain.ID { return p.ID },
		Name:     func(p domain.Project) string { return p.Name },
		Detail: func(_ context.Context, p domain.Project, _ render.Refs) (string, error) {
			return "# " + p.Name, nil
		},
		Deletion: &Deletion{
			Delete:      b.remove,
			Noun:        "project",
			SuccessText: "Project deleted successfully",
			FailureText: "Failed to delete project",
		},
	}
}

// collect runs cmd and flattens batches, dropping spinner ticks.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case nil, spinner.TickMsg:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
		return out
	default:
		return []tea.Msg{msg}
	}
}

// drive feeds every message produced by cmd back into c until quiet.
func drive(c mode.Controller, cmd tea.Cmd) mode.Controller {
	for _, msg := range collect(cmd) {
		var next tea.Cmd
		c, next = c.Update(msg)
		c = drive(c, next)
	}
	return c
}

func press(c mode.Controller, keys ...string) mode.Controller {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "space":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		var cmd tea.Cmd
		c, cmd = c.Update(msg)
		c = drive(c, cmd)
	}
	return c
}

func mounted(t *testing.T, b *backend, svc mode.Services) mode.Controller {
	t.Helper()
	var c mode.Controller = New(testDefinition(b), svc)
	c = c.SetSize(120, 30)
	c, cmd := c.Init()
	require.Equal(t, listview.StateLoading, c.(projectScreen).List().State())
	return drive(c, cmd)
}

func TestInit_LoadsRows(t *testing.T) {
	b := newBackend("World Towers", "Palava City")
	c := mounted(t, b, testServices(t, &recorder{}))

	s := c.(projectScreen)
	assert.Equal(t, listview.StateReady, s.List().State())
	assert.Len(t, s.List().Page().Data, 2)
	assert.Contains(t, c.View(), "World Towers")
	assert.Equal(t, "Projects", c.Title())
	assert.False(t, c.Capturing())
}

func TestCursor_ClampsToPage(t *testing.T) {
	c := mounted(t, newBackend("A", "B", "C"), testServices(t, &recorder{}))

	c = press(c, "j", "j", "j", "j")
	assert.Equal(t, 2, c.(projectScreen).Cursor())
	c = press(c, "k", "k", "k", "k")
	assert.Equal(t, 0, c.(projectScreen).Cursor())
}

func TestDelete_DefaultsToCancel(t *testing.T) {
	b := newBackend("World Towers")
	c := mounted(t, b, testServices(t, &recorder{}))

	c = press(c, "d")
	require.True(t, c.Capturing())
	view := c.View()
	assert.Contains(t, view, "Are you sure?")
	assert.Contains(t, view, `"World Towers"`)

	c = press(c, "enter")
	assert.False(t, c.Capturing())
	assert.Empty(t, b.deleted)
}

func TestDelete_ConfirmedRefreshesFromServer(t *testing.T) {
	b := newBackend("World Towers", "Palava City")
	rec := &recorder{}
	c := mounted(t, b, testServices(t, rec))
	before := len(b.fetches())

	c = press(c, "j", "d", "tab", "enter")

	assert.Equal(t, []domain.ID{"2"}, b.deleted)
	assert.Contains(t, rec.titles(), "Project deleted successfully")
	assert.Len(t, b.fetches(), before+1)
	s := c.(projectScreen)
	require.Len(t, s.List().Page().Data, 1)
	assert.Equal(t, "World Towers", s.List().Page().Data[0].Name)
}

func TestDelete_FailureKeepsRow(t *testing.T) {
	b := newBackend("World Towers")
	b.deleteErr = &api.APIError{StatusCode: 500, Message: "boom"}
	rec := &recorder{}
	c := mounted(t, b, testServices(t, rec))
	before := len(b.fetches())

	c = press(c, "d", "y")

	assert.Equal(t, []string{"Failed to delete project"}, rec.titles())
	assert.Len(t, b.fetches(), before)
	assert.Len(t, c.(projectScreen).List().Page().Data, 1)
}

func TestSearch_OnlyLastKeystrokeFetches(t *testing.T) {
	b := newBackend("World Towers")
	c := mounted(t, b, testServices(t, &recorder{}))
	before := len(b.fetches())

	c = press(c, "/")
	require.True(t, c.Capturing())

	var cmds []tea.Cmd
	for _, r := range "sky" {
		var cmd tea.Cmd
		c, cmd = c.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		cmds = append(cmds, cmd)
	}
	for _, cmd := range cmds {
		c = drive(c, cmd)
	}

	calls := b.fetches()
	require.Len(t, calls, before+1)
	require.NotNil(t, calls[len(calls)-1].Name)
	assert.Equal(t, "sky", *calls[len(calls)-1].Name)

	c = press(c, "esc")
	assert.False(t, c.Capturing())

	c = press(c, "x")
	calls = b.fetches()
	assert.Nil(t, calls[len(calls)-1].Name)
}

func TestPaging_ResetsCursor(t *testing.T) {
	b := newBackend()
	for i := range 25 {
		b.projects = append(b.projects, domain.Project{ID: domain.ID(string(rune('a' + i))), Name: "P"})
	}
	c := mounted(t, b, testServices(t, &recorder{}))

	c = press(c, "j", "j", "l")
	calls := b.fetches()
	assert.Equal(t, 2, calls[len(calls)-1].Page)
	assert.Equal(t, 0, c.(projectScreen).Cursor())

	c = press(c, "h")
	calls = b.fetches()
	assert.Equal(t, 1, calls[len(calls)-1].Page)
}

func TestColumns_HideAndPersist(t *testing.T) {
	svc := testServices(t, &recorder{})
	svc.ConfigPath = filepath.Join(t.TempDir(), "config.yaml")
	c := mounted(t, newBackend("World Towers"), svc)

	c = press(c, "c")
	require.True(t, c.Capturing())
	assert.Contains(t, c.View(), "Columns")

	c = press(c, "space", "enter")
	assert.False(t, c.Capturing())
	assert.Equal(t, []string{"developer"}, c.(projectScreen).Hidden())
	assert.Equal(t, []string{"developer"}, svc.Config.UI.HiddenColumns["projects"])

	data, err := os.ReadFile(svc.ConfigPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "developer")
}

func TestExport_WritesWorkbook(t *testing.T) {
	rec := &recorder{}
	svc := testServices(t, rec)
	c := mounted(t, newBackend("World Towers"), svc)

	press(c, "e")

	_, err := os.Stat(filepath.Join(svc.ExportDir, "projects-page-1.xlsx"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Exported"}, rec.titles())
}

func TestDetail_OpensAndCloses(t *testing.T) {
	c := mounted(t, newBackend("World Towers"), testServices(t, &recorder{}))

	c = press(c, "enter")
	require.True(t, c.Capturing())
	c = press(c, "esc")
	assert.False(t, c.Capturing())
}

func TestDetail_ErrorNotifies(t *testing.T) {
	rec := &recorder{}
	b := newBackend("World Towers")
	def := testDefinition(b)
	def.Detail = func(context.Context, domain.Project, render.Refs) (string, error) {
		return "", errors.New("offline")
	}
	var c mode.Controller = New(def, testServices(t, rec))
	c = c.SetSize(100, 30)
	c, cmd := c.Init()
	c = drive(c, cmd)

	c = press(c, "enter")
	assert.False(t, c.Capturing())
	assert.Equal(t, []string{"Failed to load details"}, rec.titles())
}

func TestFailedRefresh_KeepsRows(t *testing.T) {
	fail := false
	rec := &recorder{}
	b := newBackend("World Towers")
	def := testDefinition(b)
	def.Fetch = func(ctx context.Context, f domain.ProjectFilter) (domain.Page[domain.Project], error) {
		if fail {
			return domain.Page[domain.Project]{}, errors.New("offline")
		}
		return b.fetch(ctx, f)
	}
	var c mode.Controller = New(def, testServices(t, rec))
	c = c.SetSize(100, 30)
	c, cmd := c.Init()
	c = drive(c, cmd)

	fail = true
	c, cmd = c.Reload()
	c = drive(c, cmd)

	s := c.(projectScreen)
	assert.Equal(t, listview.StateError, s.List().State())
	assert.Contains(t, c.View(), "World Towers")
}

func TestRetryAfterFailedMount_ShowsSkeleton(t *testing.T) {
	fail := true
	b := newBackend("World Towers")
	def := testDefinition(b)
	def.Fetch = func(ctx context.Context, f domain.ProjectFilter) (domain.Page[domain.Project], error) {
		if fail {
			return domain.Page[domain.Project]{}, errors.New("offline")
		}
		return b.fetch(ctx, f)
	}
	var c mode.Controller = New(def, testServices(t, &recorder{}))
	c = c.SetSize(100, 30)
	c, cmd := c.Init()
	c = drive(c, cmd)
	require.Equal(t, table.ModeError, c.(projectScreen).table.Mode())

	fail = false
	c, cmd = c.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	s := c.(projectScreen)
	assert.Equal(t, listview.StateRetrying, s.List().State())
	assert.Equal(t, table.ModeLoading, s.table.Mode())
	assert.NotContains(t, c.View(), "No projects found.")

	c = drive(c, cmd)
	assert.Equal(t, listview.StateReady, c.(projectScreen).List().State())
	assert.Contains(t, c.View(), "World Towers")
}
