package listview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/propdesk/internal/api"
	"github.com/zjrosen/propdesk/internal/domain"
	"github.com/zjrosen/propdesk/internal/notify"
	"github.com/zjrosen/propdesk/internal/refcache"
)

type fakeProjects struct {
	mu    sync.Mutex
	calls []domain.ProjectFilter
	ctxs  []context.Context
	err   error
}

func (f *fakeProjects) fetch(ctx context.Context, filter domain.ProjectFilter) (domain.Page[domain.Project], error) {
	f.mu.Lock()
	f.calls = append(f.calls, filter)
	f.ctxs = append(f.ctxs, ctx)
	err := f.err
	f.mu.Unlock()
	if err != nil {
		return domain.Page[domain.Project]{}, err
	}
	name := "all"
	if filter.Name != nil {
		name = *filter.Name
	}
	return domain.Page[domain.Project]{
		Data:       []domain.Project{{ID: domain.ID(name), Name: name, BuilderID: "1"}},
		Total:      100,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: domain.TotalPagesFor(100, filter.Limit),
	}, nil
}

func (f *fakeProjects) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

type notes struct {
	mu    sync.Mutex
	items []notify.Notification
}

func (n *notes) Notify(x notify.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, x)
}

func (n *notes) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.items)
}

type projects = Controller[domain.Project, domain.ProjectFilter]

func newProjects(f *fakeProjects, opts ...Option[domain.Project, domain.ProjectFilter]) projects {
	return New("projects", f.fetch, domain.NewProjectFilter(10), opts...)
}

// run executes cmd and feeds its message back into c.
func run(t *testing.T, c projects, cmd tea.Cmd) projects {
	t.Helper()
	require.NotNil(t, cmd)
	c, _ = c.Update(cmd())
	return c
}

func TestInit_LoadsFirstPage(t *testing.T) {
	f := &fakeProjects{}
	c := newProjects(f)
	assert.Equal(t, StateIdle, c.State())

	c, cmd := c.Init()
	assert.Equal(t, StateLoading, c.State())
	c = run(t, c, cmd)

	assert.Equal(t, StateReady, c.State())
	assert.True(t, c.HasData())
	assert.Equal(t, 1, c.Page().Page)
	assert.Equal(t, 10, c.Page().TotalPages)
	require.Len(t, f.calls, 1)
}

func TestSetFilter_EqualIsNoOpChangedResetsPage(t *testing.T) {
	f := &fakeProjects{}
	c := newProjects(f)
	c, cmd := c.Init()
	c = run(t, c, cmd)

	c, cmd = c.SetPage(3)
	c = run(t, c, cmd)
	require.Equal(t, 3, c.Filter().Page)

	same := c.Filter().WithPaging(domain.Pagination{Page: 1, Limit: 10})
	c, cmd = c.SetFilter(same)
	assert.Nil(t, cmd)
	assert.Equal(t, 3, c.Filter().Page)

	c, cmd = c.SetFilter(c.Filter().WithReadyPossession(domain.Ptr(true)))
	require.NotNil(t, cmd)
	assert.Equal(t, StateLoading, c.State())
	assert.Equal(t, 1, c.Filter().Page)
	assert.Equal(t, 10, c.Filter().Limit)
}

func TestSetPage_Clamps(t *testing.T) {
	f := &fakeProjects{}
	c := newProjects(f)
	c, cmd := c.Init()
	c = run(t, c, cmd)

	c, cmd = c.SetPage(99)
	c = run(t, c, cmd)
	assert.Equal(t, 10, c.Filter().Page)

	c, cmd = c.SetPage(10)
	assert.Nil(t, cmd, "same page while ready is a no-op")

	c, cmd = c.SetPage(-4)
	c = run(t, c, cmd)
	assert.Equal(t, 1, c.Filter().Page)

	c, cmd = c.NextPage()
	c = run(t, c, cmd)
	assert.Equal(t, 2, c.Page().Page)
}

func TestStaleResponsesAreDiscarded(t *testing.T) {
	f := &fakeProjects{}
	c := newProjects(f)

	c, first := c.Init()
	c, second := c.SetPage(2)
	require.Equal(t, uint64(2), c.Generation())

	c, _ = c.Update(first())
	assert.Equal(t, StateLoading, c.State())
	assert.False(t, c.HasData())

	c, _ = c.Update(second())
	assert.Equal(t, StateReady, c.State())
	assert.Equal(t, 2, c.Page().Page)
}

func TestCancelStale_AbortsSupersededRequest(t *testing.T) {
	f := &fakeProjects{}
	c := newProjects(f, WithCancelStale[domain.Project, domain.ProjectFilter](true))

	c, first := c.Init()
	c, second := c.SetPage(2)
	first()
	second()

	require.Len(t, f.ctxs, 2)
	assert.ErrorIs(t, f.ctxs[0].Err(), context.Canceled)
	assert.NoError(t, f.ctxs[1].Err())
	_ = c
}

func TestCancelStale_DisabledLeavesRequestRunning(t *testing.T) {
	f := &fakeProjects{}
	c := newProjects(f)

	c, first := c.Init()
	_, second := c.SetPage(2)
	first()
	second()

	require.Len(t, f.ctxs, 2)
	assert.NoError(t, f.ctxs[0].Err())
}

func TestSetSearch_OnlyLatestKeystrokeApplies(t *testing.T) {
	f := &fakeProjects{}
	c := newProjects(f, WithSearch[domain.Project, domain.ProjectFilter](time.Millisecond, domain.ProjectFilter.WithName))
	c, cmd := c.Init()
	c = run(t, c, cmd)
	c, cmd = c.SetPage(4)
	c = run(t, c, cmd)

	c, tickA := c.SetSearch("sky")
	c, tickB := c.SetSearch("skyline")
	assert.Equal(t, "skyline", c.Search())

	c, cmd = c.Update(tickA())
	assert.Nil(t, cmd)
	assert.Nil(t, c.Filter().Name)

	c, cmd = c.Update(tickB())
	require.NotNil(t, cmd)
	require.NotNil(t, c.Filter().Name)
	assert.Equal(t, "skyline", *c.Filter().Name)
	assert.Equal(t, 1, c.Filter().Page)

	c = run(t, c, cmd)
	assert.Equal(t, domain.ID("skyline"), c.Page().Data[0].ID)
}

func TestSetSearch_DisabledWithoutApply(t *testing.T) {
	c := newProjects(&fakeProjects{})
	_, cmd := c.SetSearch("x")
	assert.Nil(t, cmd)
}

func TestFailure_NotifiesOnceAndRetryKeepsData(t *testing.T) {
	f := &fakeProjects{}
	rec := &notes{}
	c := newProjects(f, WithNotifier[domain.Project, domain.ProjectFilter](rec))
	c, cmd := c.Init()
	c = run(t, c, cmd)

	f.setErr(&api.APIError{StatusCode: 500, Message: "boom"})
	c, cmd = c.SetPage(2)
	c = run(t, c, cmd)
	assert.Equal(t, StateError, c.State())
	assert.Equal(t, "boom", c.ErrMessage())
	assert.Equal(t, 1, rec.count())
	assert.True(t, c.HasData(), "previous rows stay visible")

	c, cmd = c.Retry()
	assert.Equal(t, StateRetrying, c.State())
	c = run(t, c, cmd)
	assert.Equal(t, StateError, c.State())
	assert.Equal(t, 1, rec.count(), "retries do not re-notify")

	f.setErr(nil)
	c, cmd = c.Retry()
	c = run(t, c, cmd)
	assert.Equal(t, StateReady, c.State())
	assert.NoError(t, c.Err())
	assert.Equal(t, 2, c.Page().Page)

	_, cmd = c.Retry()
	assert.Nil(t, cmd, "retry only applies from the error state")
}

func TestRefresh_KeepsRowsVisible(t *testing.T) {
	f := &fakeProjects{}
	c := newProjects(f)
	c, cmd := c.Init()
	c = run(t, c, cmd)

	c, cmd = c.Refresh()
	assert.Equal(t, StateRetrying, c.State())
	assert.Len(t, c.Page().Data, 1)
	c = run(t, c, cmd)
	assert.Equal(t, StateReady, c.State())
	assert.Len(t, f.calls, 2)
	assert.Equal(t, f.calls[0], f.calls[1])
}

func TestReady_PopulatesEmptyRefKinds(t *testing.T) {
	cache := refcache.New(map[refcache.Kind]refcache.Source{
		refcache.KindBuilders: func(context.Context) ([]domain.Ref, error) {
			return []domain.Ref{{ID: "1", Name: "Acme"}}, nil
		},
	})
	f := &fakeProjects{}
	c := newProjects(f, WithRefs[domain.Project, domain.ProjectFilter](cache, refcache.KindBuilders))

	c, cmd := c.Init()
	c, refsCmd := c.Update(cmd())
	assert.Equal(t, StateReady, c.State(), "ready does not wait for references")
	require.NotNil(t, refsCmd)

	msg := refsCmd()
	loaded, ok := msg.(RefsLoadedMsg)
	require.True(t, ok)
	assert.Equal(t, refcache.KindBuilders, loaded.Kind)
	require.NoError(t, loaded.Err)
	assert.False(t, cache.Empty(refcache.KindBuilders))

	c, cmd = c.Refresh()
	_, refsCmd = c.Update(cmd())
	assert.Nil(t, refsCmd, "populated kinds are not refetched")
}

func TestUpdate_IgnoresOtherResources(t *testing.T) {
	f := &fakeProjects{}
	c := newProjects(f)
	c, _ = c.Init()

	c, cmd := c.Update(FetchedMsg[domain.Project]{Resource: "properties", Generation: 1})
	assert.Nil(t, cmd)
	assert.Equal(t, StateLoading, c.State())
}

func TestSinglePage_WrapsUnpaginatedList(t *testing.T) {
	fetch := SinglePage(func(context.Context) ([]domain.User, error) {
		return []domain.User{{ID: "1"}, {ID: "2"}}, nil
	})
	c := New("users", fetch, domain.Unfiltered{})
	c, cmd := c.Init()
	c, _ = c.Update(cmd())

	require.Equal(t, StateReady, c.State())
	assert.Len(t, c.Page().Data, 2)
	assert.Equal(t, 1, c.Page().TotalPages)

	failing := SinglePage(func(context.Context) ([]domain.User, error) { return nil, errors.New("down") })
	c = New("users", failing, domain.Unfiltered{})
	c, cmd = c.Init()
	c, _ = c.Update(cmd())
	assert.Equal(t, StateError, c.State())
}

// Whatever order responses arrive in, the view ends on the last page asked
// for.
func TestLatestRequestWins(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := &fakeProjects{}
		c := newProjects(f)
		c, cmd := c.Init()
		cmds := []tea.Cmd{cmd}

		pages := rapid.SliceOfN(rapid.IntRange(1, 10), 1, 8).Draw(rt, "pages")
		for _, p := range pages {
			c, cmd = c.SetPage(p)
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		want := c.Filter().Page

		msgs := make([]tea.Msg, len(cmds))
		for i, cmd := range cmds {
			msgs[i] = cmd()
		}
		for _, msg := range rapid.Permutation(msgs).Draw(rt, "order") {
			c, _ = c.Update(msg)
		}

		if c.State() != StateReady {
			rt.Fatalf("state %s, want ready", c.State())
		}
		if c.Page().Page != want {
			rt.Fatalf("showing page %d, want %d", c.Page().Page, want)
		}
	})
}
