package app

import (
	"bytes"
	"context"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/propdesk/internal/credentials"
	"github.com/zjrosen/propdesk/internal/domain"
	"github.com/zjrosen/propdesk/internal/mode"
	"github.com/zjrosen/propdesk/internal/notify"
	"github.com/zjrosen/propdesk/internal/pubsub"
	"github.com/zjrosen/propdesk/internal/refcache"
)

type counters struct {
	inits   int
	reloads int
	msgs    []tea.Msg
}

// fakeScreen is a minimal mode.Controller.
type fakeScreen struct {
	title     string
	capturing bool
	c         *counters
}

func newFake(title string) fakeScreen {
	return fakeScreen{title: title, c: &counters{}}
}

func (f fakeScreen) Init() (mode.Controller, tea.Cmd) {
	f.c.inits++
	return f, nil
}

func (f fakeScreen) Update(msg tea.Msg) (mode.Controller, tea.Cmd) {
	f.c.msgs = append(f.c.msgs, msg)
	return f, nil
}

func (f fakeScreen) View() string                       { return "screen:" + f.title }
func (f fakeScreen) SetSize(int, int) mode.Controller   { return f }
func (f fakeScreen) Title() string                      { return f.title }
func (f fakeScreen) Capturing() bool                    { return f.capturing }
func (f fakeScreen) Reload() (mode.Controller, tea.Cmd) { f.c.reloads++; return f, nil }

type ping struct{}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func newModel(t *testing.T, opts Options, screens ...mode.Controller) Model {
	t.Helper()
	m := New(mode.Services{}, screens, opts)
	t.Cleanup(m.Close)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func TestNew_MountsOnlyFirstTab(t *testing.T) {
	a, b := newFake("Projects"), newFake("Leads")
	m := newModel(t, Options{}, a, b)

	assert.Equal(t, 1, a.c.inits)
	assert.Zero(t, b.c.inits)
	assert.Contains(t, m.View(), "screen:Projects")
}

func TestTabs_MountLazilyAndWrap(t *testing.T) {
	a, b := newFake("Projects"), newFake("Leads")
	m := newModel(t, Options{}, a, b)

	m, _ = update(t, m, keyMsg("tab"))
	assert.Equal(t, 1, m.Active())
	assert.Equal(t, 1, b.c.inits)

	m, _ = update(t, m, keyMsg("tab"))
	assert.Equal(t, 0, m.Active())
	assert.Equal(t, 1, a.c.inits, "already mounted")

	m, _ = update(t, m, keyMsg("shift+tab"))
	assert.Equal(t, 1, m.Active())
	assert.Contains(t, m.View(), "screen:Leads")
}

func TestQuit_UnlessCapturing(t *testing.T) {
	a := newFake("Projects")
	m := newModel(t, Options{}, a)
	_, cmd := update(t, m, keyMsg("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	typing := newFake("Projects")
	typing.capturing = true
	m = newModel(t, Options{}, typing)
	_, cmd = update(t, m, keyMsg("q"))
	assert.Nil(t, cmd)
	require.NotEmpty(t, typing.c.msgs)
	assert.Equal(t, keyMsg("q"), typing.c.msgs[len(typing.c.msgs)-1])
}

func TestHelp_SwallowsKeys(t *testing.T) {
	a := newFake("Projects")
	m := newModel(t, Options{}, a)

	m, _ = update(t, m, keyMsg("?"))
	assert.Contains(t, m.View(), "Keyboard shortcuts")

	before := len(a.c.msgs)
	m, _ = update(t, m, keyMsg("j"))
	assert.Len(t, a.c.msgs, before)

	m, _ = update(t, m, keyMsg("esc"))
	assert.NotContains(t, m.View(), "Keyboard shortcuts")
}

func TestBroadcast_OnlyMountedScreens(t *testing.T) {
	a, b := newFake("Projects"), newFake("Leads")
	m := newModel(t, Options{}, a, b)

	update(t, m, ping{})
	assert.Contains(t, a.c.msgs, tea.Msg(ping{}))
	assert.NotContains(t, b.c.msgs, tea.Msg(ping{}))
}

func TestNotification_ShowsToast(t *testing.T) {
	broker := pubsub.NewBroker[notify.Notification]()
	m := newModel(t, Options{Notices: broker}, newFake("Projects"))

	m, cmd := update(t, m, pubsub.Event[notify.Notification]{
		Type:    pubsub.NotifyEvent,
		Payload: notify.Success("Project deleted successfully"),
	})
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Project deleted successfully")
}

func TestCredentialsChanged_ReloadsActiveAndMarksOthersStale(t *testing.T) {
	var loads atomic.Int32
	refs := refcache.New(map[refcache.Kind]refcache.Source{
		refcache.KindLocations: func(context.Context) ([]domain.Ref, error) {
			loads.Add(1)
			return []domain.Ref{{ID: "1", Name: "Mumbai"}}, nil
		},
	}, refcache.WithBatchWait(time.Millisecond))
	_, err := refs.GetOrFetch(t.Context(), refcache.KindLocations)
	require.NoError(t, err)

	a, b := newFake("Projects"), newFake("Leads")
	m := New(mode.Services{Refs: refs}, []mode.Controller{a, b},
		Options{Credentials: pubsub.NewBroker[credentials.Changed]()})
	t.Cleanup(m.Close)
	m, _ = update(t, m, keyMsg("tab"))
	m, _ = update(t, m, keyMsg("shift+tab"))

	m, _ = update(t, m, pubsub.Event[credentials.Changed]{
		Type:    pubsub.CredentialsChangedEvent,
		Payload: credentials.Changed{Present: true},
	})
	assert.Equal(t, 1, a.c.reloads)
	assert.Zero(t, b.c.reloads)
	assert.True(t, refs.Empty(refcache.KindLocations))

	update(t, m, keyMsg("tab"))
	assert.Equal(t, 1, b.c.reloads)
}

func TestProgram_ShowsPublishedToast(t *testing.T) {
	broker := pubsub.NewBroker[notify.Notification]()
	m := New(mode.Services{}, []mode.Controller{newFake("Projects"), newFake("Leads")}, Options{Notices: broker})
	t.Cleanup(m.Close)

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 30))
	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("screen:Projects"))
	}, teatest.WithDuration(3*time.Second))

	notify.NewBrokerNotifier(broker).Notify(notify.Error("Failed to load", "Network error"))
	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("Failed to load"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(keyMsg("q"))
	tm.WaitFinished(t, teatest.WithFinalTimeout(3*time.Second))
}
