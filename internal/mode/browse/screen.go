package browse

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/propdesk/internal/api"
	"github.com/zjrosen/propdesk/internal/domain"
	"github.com/zjrosen/propdesk/internal/export"
	"github.com/zjrosen/propdesk/internal/flags"
	"github.com/zjrosen/propdesk/internal/keys"
	"github.com/zjrosen/propdesk/internal/listview"
	"github.com/zjrosen/propdesk/internal/log"
	"github.com/zjrosen/propdesk/internal/mode"
	"github.com/zjrosen/propdesk/internal/notify"
	"github.com/zjrosen/propdesk/internal/render"
	"github.com/zjrosen/propdesk/internal/ui/modal"
	"github.com/zjrosen/propdesk/internal/ui/overlay"
	"github.com/zjrosen/propdesk/internal/ui/shared/markdown"
	"github.com/zjrosen/propdesk/internal/ui/shared/panes"
	"github.com/zjrosen/propdesk/internal/ui/shared/table"
	"github.com/zjrosen/propdesk/internal/ui/styles"
)

type deletedMsg struct {
	resource string
	name     string
	err      error
}

type detailMsg struct {
	resource string
	content  string
	err      error
}

type exportedMsg struct {
	resource string
	path     string
	err      error
}

type columnsSavedMsg struct {
	resource string
	err      error
}

// Screen is the table screen for one resource.
type Screen[T any, F domain.Filter[F]] struct {
	def  Definition[T, F]
	svc  mode.Services
	keys keys.BrowseKeyMap

	list   listview.Controller[T, F]
	table  table.Model
	search textinput.Model
	pager  paginator.Model
	spin   spinner.Model

	searching bool
	ticking   bool
	cursor    int
	hidden    []string

	dialog *modal.Model
	picker *columnPicker

	detailOpen    bool
	detailLoading bool
	detail        viewport.Model

	width  int
	height int
}

// New builds a screen. Call Init to load the first page.
func New[T any, F domain.Filter[F]](def Definition[T, F], svc mode.Services) Screen[T, F] {
	if svc.Notifier == nil {
		svc.Notifier = notify.Discard
	}
	opts := []listview.Option[T, F]{listview.WithNotifier[T, F](svc.Notifier)}
	if svc.Refs != nil && len(def.RefKinds) > 0 {
		opts = append(opts, listview.WithRefs[T, F](svc.Refs, def.RefKinds...))
	}
	if svc.Flags != nil {
		opts = append(opts, listview.WithCancelStale[T, F](svc.Flags.Enabled(flags.FlagCancelStaleRequests)))
	}
	debounce := listview.DefaultDebounce
	var hidden []string
	if svc.Config != nil {
		debounce = svc.Config.UI.SearchDebounce
		hidden = svc.Config.UI.HiddenColumns[def.Resource]
	}
	if def.Search != nil {
		opts = append(opts, listview.WithSearch[T, F](debounce, def.Search))
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search by name"
	search.CharLimit = 80

	pager := paginator.New()
	pager.Type = paginator.Arabic

	s := Screen[T, F]{
		def:    def,
		svc:    svc,
		keys:   keys.DefaultBrowseKeyMap(),
		list:   listview.New(def.Resource, def.Fetch, def.Filter, opts...),
		search: search,
		pager:  pager,
		spin:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.SpinnerColor))),
		hidden: hidden,
		detail: viewport.New(0, 0),
	}
	s.table = table.New(s.tableConfig())
	return s.sync()
}

// Init implements mode.Controller.
func (s Screen[T, F]) Init() (mode.Controller, tea.Cmd) {
	list, cmd := s.list.Init()
	s.list = list
	return s.sync().startSpinner(cmd)
}

// Title implements mode.Controller.
func (s Screen[T, F]) Title() string { return s.def.Title }

// Capturing implements mode.Controller.
func (s Screen[T, F]) Capturing() bool {
	return s.searching || s.dialog != nil || s.picker != nil || s.detailOpen
}

// SetSize implements mode.Controller.
func (s Screen[T, F]) SetSize(width, height int) mode.Controller {
	s.width, s.height = width, height
	s.detail.Width = max(width-4, 10)
	s.detail.Height = max(height-4, 3)
	s.search.Width = max(width/3, 20)
	return s.sync()
}

// Reload implements mode.Controller.
func (s Screen[T, F]) Reload() (mode.Controller, tea.Cmd) {
	list, cmd := s.list.Refresh()
	s.list = list
	return s.startSpinner(cmd)
}

// FilterKeys returns the filter toggle bindings for the help overlay.
func (s Screen[T, F]) FilterKeys() []key.Binding {
	out := make([]key.Binding, 0, len(s.def.Toggles)+2)
	if s.def.Search != nil {
		out = append(out, s.keys.Search)
	}
	for _, t := range s.def.Toggles {
		out = append(out, t.Key)
	}
	if s.def.Clear != nil {
		out = append(out, s.keys.ClearFilters)
	}
	return out
}

// List exposes the list controller.
func (s Screen[T, F]) List() listview.Controller[T, F] { return s.list }

// Cursor is the selected row index on the current page.
func (s Screen[T, F]) Cursor() int { return s.cursor }

// Hidden returns the hidden column keys.
func (s Screen[T, F]) Hidden() []string { return s.hidden }

// Update implements mode.Controller.
func (s Screen[T, F]) Update(msg tea.Msg) (mode.Controller, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !s.list.State().Busy() && !s.detailLoading {
			s.ticking = false
			return s, nil
		}
		var cmd tea.Cmd
		s.spin, cmd = s.spin.Update(msg)
		s.ticking = true
		return s, cmd

	case listview.FetchedMsg[T], listview.SearchTickMsg:
		list, cmd := s.list.Update(msg)
		s.list = list
		return s.sync().startSpinner(cmd)

	case listview.RefsLoadedMsg:
		return s.sync(), nil

	case modal.ConfirmMsg:
		return s.confirmDelete(msg.Tag)

	case modal.CancelMsg:
		s.dialog = nil
		return s, nil

	case deletedMsg:
		return s.handleDeleted(msg)

	case detailMsg:
		if msg.resource != s.def.Resource {
			return s, nil
		}
		s.detailLoading = false
		if msg.err != nil {
			s.detailOpen = false
			log.ErrorErr(log.CatUI, "Failed to load details", msg.err, "resource", s.def.Resource)
			s.svc.Notifier.Notify(notify.Error("Failed to load details", api.Message(msg.err)))
			return s, nil
		}
		s.detail.SetContent(msg.content)
		s.detail.GotoTop()
		return s, nil

	case exportedMsg:
		if msg.resource != s.def.Resource {
			return s, nil
		}
		if msg.err != nil {
			s.svc.Notifier.Notify(notify.Error("Export failed", msg.err.Error()))
		} else {
			s.svc.Notifier.Notify(notify.Notification{Level: notify.LevelSuccess, Title: "Exported", Description: msg.path})
		}
		return s, nil

	case columnsSavedMsg:
		if msg.resource == s.def.Resource && msg.err != nil {
			s.svc.Notifier.Notify(notify.Error("Failed to save columns", msg.err.Error()))
		}
		return s, nil

	case tea.MouseMsg:
		return s.handleMouse(msg)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s Screen[T, F]) handleKey(msg tea.KeyMsg) (mode.Controller, tea.Cmd) {
	switch {
	case s.dialog != nil:
		dialog, cmd := s.dialog.Update(msg)
		s.dialog = &dialog
		return s, cmd
	case s.picker != nil:
		return s.updatePicker(msg)
	case s.detailOpen:
		if key.Matches(msg, s.keys.Escape) || msg.String() == "q" {
			s.detailOpen = false
			return s, nil
		}
		var cmd tea.Cmd
		s.detail, cmd = s.detail.Update(msg)
		return s, cmd
	case s.searching:
		return s.updateSearch(msg)
	}

	switch {
	case key.Matches(msg, s.keys.Up):
		s.cursor--
		return s.sync(), nil
	case key.Matches(msg, s.keys.Down):
		s.cursor++
		return s.sync(), nil
	case key.Matches(msg, s.keys.NextPage):
		list, cmd := s.list.NextPage()
		s.list, s.cursor = list, 0
		return s.sync().startSpinner(cmd)
	case key.Matches(msg, s.keys.PrevPage):
		list, cmd := s.list.PrevPage()
		s.list, s.cursor = list, 0
		return s.sync().startSpinner(cmd)
	case key.Matches(msg, s.keys.Search) && s.def.Search != nil:
		s.searching = true
		return s, s.search.Focus()
	case key.Matches(msg, s.keys.ClearFilters) && s.def.Clear != nil:
		s.search.SetValue("")
		return s.applyFilter(s.def.Clear(s.list.Filter()))
	case key.Matches(msg, s.keys.Retry):
		list, cmd := s.list.Retry()
		s.list = list
		return s.sync().startSpinner(cmd)
	case key.Matches(msg, s.keys.Refresh):
		list, cmd := s.list.Refresh()
		s.list = list
		return s.sync().startSpinner(cmd)
	case key.Matches(msg, s.keys.Delete):
		return s.askDelete()
	case key.Matches(msg, s.keys.Detail):
		return s.openDetail()
	case key.Matches(msg, s.keys.Columns):
		s.picker = newColumnPicker(render.Hideable(s.def.Columns), headersByKey(s.def.Columns), s.hidden)
		return s, nil
	case key.Matches(msg, s.keys.Export):
		return s, s.exportCmd()
	}

	for _, t := range s.def.Toggles {
		if key.Matches(msg, t.Key) {
			return s.applyFilter(t.Next(s.list.Filter()))
		}
	}
	return s, nil
}

func (s Screen[T, F]) updateSearch(msg tea.KeyMsg) (mode.Controller, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		s.searching = false
		s.search.Blur()
		return s, nil
	}
	before := s.search.Value()
	var inputCmd tea.Cmd
	s.search, inputCmd = s.search.Update(msg)
	if s.search.Value() == before {
		return s, inputCmd
	}
	list, cmd := s.list.SetSearch(s.search.Value())
	s.list = list
	return s, tea.Batch(inputCmd, cmd)
}

func (s Screen[T, F]) applyFilter(f F) (mode.Controller, tea.Cmd) {
	list, cmd := s.list.SetFilter(f)
	s.list = list
	if cmd != nil {
		s.cursor = 0
	}
	return s.sync().startSpinner(cmd)
}

func (s Screen[T, F]) handleMouse(msg tea.MouseMsg) (mode.Controller, tea.Cmd) {
	if s.Capturing() || s.svc.Flags == nil || !s.svc.Flags.Enabled(flags.FlagMouseSelection) {
		return s, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		s.cursor--
		return s.sync(), nil
	case tea.MouseButtonWheelDown:
		s.cursor++
		return s.sync(), nil
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionRelease {
			return s, nil
		}
		for i := range s.table.RowCount() {
			if zone.Get(s.rowZone(i)).InBounds(msg) {
				s.cursor = i
				return s.sync(), nil
			}
		}
	}
	return s, nil
}

func (s Screen[T, F]) selected() (T, bool) {
	var zero T
	data := s.list.Page().Data
	if s.list.State() != listview.StateReady || s.cursor < 0 || s.cursor >= len(data) {
		return zero, false
	}
	return data[s.cursor], true
}

func (s Screen[T, F]) askDelete() (mode.Controller, tea.Cmd) {
	del := s.def.Deletion
	item, ok := s.selected()
	if del == nil || !ok {
		return s, nil
	}
	dialog := modal.New(modal.Config{
		Title: "Are you sure?",
		Message: fmt.Sprintf("This action cannot be undone. This will permanently delete the %s %q and remove all associated data.",
			del.Noun, s.def.Name(item)),
		ConfirmLabel: "Delete",
		Danger:       true,
		Tag:          s.def.Resource + "/" + s.def.ID(item).String(),
	})
	s.dialog = &dialog
	return s, nil
}

func (s Screen[T, F]) confirmDelete(tag string) (mode.Controller, tea.Cmd) {
	id, ok := strings.CutPrefix(tag, s.def.Resource+"/")
	if !ok || s.def.Deletion == nil {
		return s, nil
	}
	s.dialog = nil

	name := id
	for _, item := range s.list.Page().Data {
		if s.def.ID(item).String() == id {
			name = s.def.Name(item)
		}
	}
	del, resource := s.def.Deletion, s.def.Resource
	return s, func() tea.Msg {
		err := del.Delete(context.Background(), domain.ID(id))
		return deletedMsg{resource: resource, name: name, err: err}
	}
}

// handleDeleted waits for the server's answer; the row disappears only
// through the refresh that follows.
func (s Screen[T, F]) handleDeleted(msg deletedMsg) (mode.Controller, tea.Cmd) {
	if msg.resource != s.def.Resource {
		return s, nil
	}
	del := s.def.Deletion
	if msg.err != nil {
		log.ErrorErr(log.CatUI, "Delete failed", msg.err, "resource", s.def.Resource, "name", msg.name)
		s.svc.Notifier.Notify(notify.Error(del.FailureText, api.Message(msg.err)))
		return s, nil
	}
	log.Info(log.CatUI, "Deleted record", "resource", s.def.Resource, "name", msg.name)
	s.svc.Notifier.Notify(notify.Success(del.SuccessText))
	if s.svc.Refs != nil && len(del.Invalidates) > 0 {
		s.svc.Refs.Invalidate(del.Invalidates...)
	}
	list, cmd := s.list.Refresh()
	s.list = list
	return s.sync().startSpinner(cmd)
}

func (s Screen[T, F]) openDetail() (mode.Controller, tea.Cmd) {
	item, ok := s.selected()
	if !ok || s.def.Detail == nil {
		return s, nil
	}
	s.detailOpen = true
	s.detailLoading = true
	s.detail.SetContent("")

	detail, refs, resource := s.def.Detail, s.refs(), s.def.Resource
	width := s.detail.Width
	style := "dark"
	if s.svc.Config != nil {
		style = s.svc.Config.UI.MarkdownStyle
	}
	load := func() tea.Msg {
		doc, err := detail(context.Background(), item, refs)
		if err != nil {
			return detailMsg{resource: resource, err: err}
		}
		r, err := markdown.New(width, style)
		if err != nil {
			return detailMsg{resource: resource, content: doc}
		}
		out, err := r.Render(doc)
		if err != nil {
			return detailMsg{resource: resource, content: doc}
		}
		return detailMsg{resource: resource, content: out}
	}
	return s.startSpinner(load)
}

func (s Screen[T, F]) exportCmd() tea.Cmd {
	if s.list.State() != listview.StateReady {
		return nil
	}
	cols := render.Visible(s.def.Columns, s.hidden)
	rows := render.PageRows(s.list.Page(), cols, s.refs())
	headers := render.Headers(cols)
	page := s.list.Page().Page
	path := filepath.Join(s.svc.ExportDir, fmt.Sprintf("%s-page-%d.xlsx", s.def.Resource, page))
	resource := s.def.Resource
	return func() tea.Msg {
		return exportedMsg{resource: resource, path: path, err: export.WriteFile(path, resource, headers, rows)}
	}
}

func (s Screen[T, F]) refs() render.Refs {
	if s.svc.Refs == nil {
		return render.StaticRefs{}
	}
	return render.CacheRefs{Cache: s.svc.Refs}
}

func (s Screen[T, F]) startSpinner(cmd tea.Cmd) (mode.Controller, tea.Cmd) {
	if s.ticking || (!s.list.State().Busy() && !s.detailLoading) {
		return s, cmd
	}
	s.ticking = true
	return s, tea.Batch(cmd, s.spin.Tick)
}

func (s Screen[T, F]) rowZone(i int) string {
	return fmt.Sprintf("%s-row-%d", s.def.Resource, i)
}

func (s Screen[T, F]) tableConfig() table.TableConfig {
	cols := render.Visible(s.def.Columns, s.hidden)
	return table.TableConfig{
		Columns:      table.ColumnsFrom(cols),
		ShowHeader:   true,
		ShowBorder:   true,
		Title:        s.def.Title,
		EmptyMessage: "No " + strings.ToLower(s.def.Title) + " found.",
		RowZoneID:    s.rowZone,
		Focused:      true,
	}
}

// sync rebuilds the table from the controller state.
func (s Screen[T, F]) sync() Screen[T, F] {
	cols := render.Visible(s.def.Columns, s.hidden)
	s.table = s.table.SetConfig(s.tableConfig())

	state := s.list.State()
	switch {
	case state == listview.StateIdle, state == listview.StateLoading,
		state == listview.StateRetrying && !s.list.HasData():
		s.table = s.table.SetLoading()
	case state == listview.StateError:
		if s.list.HasData() {
			s.table = s.table.SetRows(render.PageRows(s.list.Page(), cols, s.refs()))
		} else {
			s.table = s.table.SetError(s.list.ErrMessage())
		}
	default:
		s.table = s.table.SetRows(render.PageRows(s.list.Page(), cols, s.refs()))
	}

	page := s.list.Page()
	s.cursor = max(min(s.cursor, len(page.Data)-1), 0)
	s.table = s.table.EnsureVisible(s.cursor)
	s.table = s.table.SetStatus(s.status())

	s.pager.SetTotalPages(max(page.TotalPages, 1))
	s.pager.Page = max(page.Page-1, 0)

	s.table = s.table.SetSize(s.width, max(s.height-2, 3))
	return s
}

func (s Screen[T, F]) status() string {
	if s.list.State() == listview.StateError && s.list.HasData() {
		return "refresh failed: " + s.list.ErrMessage() + " (r to retry)"
	}
	if !s.list.HasData() {
		return ""
	}
	return fmt.Sprintf("%d total", s.list.Page().Total)
}

// View implements mode.Controller.
func (s Screen[T, F]) View() string {
	if s.width <= 0 || s.height <= 0 {
		return ""
	}
	selected := -1
	if s.table.Mode() == table.ModeRows {
		selected = s.cursor
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		s.filterBar(),
		s.table.ViewWithSelection(selected),
		s.footer(),
	)

	switch {
	case s.dialog != nil:
		return s.dialog.Overlay(body, s.width, s.height)
	case s.picker != nil:
		return overlay.Place(overlay.Config{Width: s.width, Height: s.height, Position: overlay.Center}, s.picker.View(), body)
	case s.detailOpen:
		return overlay.Place(overlay.Config{Width: s.width, Height: s.height, Position: overlay.Center}, s.detailView(), body)
	}
	return body
}

func (s Screen[T, F]) filterBar() string {
	var parts []string
	if s.def.Search != nil {
		if s.searching || s.search.Value() != "" {
			parts = append(parts, s.search.View())
		} else {
			parts = append(parts, styles.MutedStyle.Render("/ search"))
		}
	}
	f := s.list.Filter()
	for _, t := range s.def.Toggles {
		value := t.Value(f)
		if value == "" {
			value = "Any"
		}
		parts = append(parts, styles.KeyHintStyle.Render(t.Key.Help().Key)+" "+
			styles.MutedStyle.Render(t.Label+":")+" "+value)
	}
	return styles.TruncateString(strings.Join(parts, "   "), s.width)
}

func (s Screen[T, F]) footer() string {
	left := s.pager.View()
	if s.list.State().Busy() {
		left = s.spin.View() + " " + left
	}
	hints := styles.KeyHints("enter", "details", "ctrl+r", "refresh", "c", "columns", "e", "export")
	if s.def.Deletion != nil {
		hints = styles.KeyHints("enter", "details", "d", "delete", "ctrl+r", "refresh", "c", "columns", "e", "export")
	}
	gap := max(s.width-lipgloss.Width(left)-lipgloss.Width(hints), 1)
	return styles.TruncateString(left+strings.Repeat(" ", gap)+hints, s.width)
}

func (s Screen[T, F]) detailView() string {
	content := s.detail.View()
	if s.detailLoading {
		content = s.spin.View() + " Loading…"
	}
	return panes.BorderedPane(panes.BorderConfig{
		Content:            content,
		Width:              s.detail.Width + 2,
		Height:             s.detail.Height + 2,
		TopLeft:            s.def.Title,
		BottomRight:        styles.KeyHints("esc", "close"),
		Focused:            true,
		FocusedBorderColor: styles.BorderFocusColor,
	})
}
