// Package listview drives one paginated, filterable list: it owns the
// filter and page, issues fetches, discards stale responses and asks the
// reference cache to populate the lookups the rows need.
package listview

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/zjrosen/propdesk/internal/api"
	"github.com/zjrosen/propdesk/internal/domain"
	"github.com/zjrosen/propdesk/internal/log"
	"github.com/zjrosen/propdesk/internal/notify"
	"github.com/zjrosen/propdesk/internal/refcache"
)

// DefaultDebounce delays free-text search after the last keystroke.
const DefaultDebounce = 500 * time.Millisecond

// FailureTitle is announced the first time a list fails to load.
const FailureTitle = "Failed to fetch data"

// FetchFunc loads one page for a filter.
type FetchFunc[T any, F domain.Filter[F]] func(ctx context.Context, filter F) (domain.Page[T], error)

// SinglePage adapts an unpaginated listing to FetchFunc.
func SinglePage[T any](list func(ctx context.Context) ([]T, error)) FetchFunc[T, domain.Unfiltered] {
	return func(ctx context.Context, _ domain.Unfiltered) (domain.Page[T], error) {
		items, err := list(ctx)
		if err != nil {
			return domain.Page[T]{}, err
		}
		return domain.SinglePage(items), nil
	}
}

// FetchedMsg carries a fetch result back to the controller that issued it.
type FetchedMsg[T any] struct {
	Resource   string
	Generation uint64
	Page       domain.Page[T]
	Err        error
}

// SearchTickMsg fires when a debounce window closes.
type SearchTickMsg struct {
	Resource string
	Version  int
	Text     string
}

// RefsLoadedMsg reports that a reference kind finished populating.
type RefsLoadedMsg struct {
	Kind refcache.Kind
	Err  error
}

// Controller is a value-type Bubble Tea component for one resource list.
type Controller[T any, F domain.Filter[F]] struct {
	resource string
	fetch    FetchFunc[T, F]

	filter   F
	page     domain.Page[T]
	hasData  bool
	state    State
	err      error
	notified bool
	quiet    bool

	generation  uint64
	cancel      context.CancelFunc
	cancelStale bool

	search        string
	searchVersion int
	debounce      time.Duration
	applySearch   func(F, string) F

	refs     *refcache.Cache
	refKinds []refcache.Kind
	notifier notify.Notifier
}

// Option configures a Controller.
type Option[T any, F domain.Filter[F]] func(*Controller[T, F])

// WithRefs names the reference kinds the rows display.
func WithRefs[T any, F domain.Filter[F]](cache *refcache.Cache, kinds ...refcache.Kind) Option[T, F] {
	return func(c *Controller[T, F]) {
		c.refs = cache
		c.refKinds = kinds
	}
}

// WithSearch enables debounced free-text search applied through apply.
func WithSearch[T any, F domain.Filter[F]](debounce time.Duration, apply func(F, string) F) Option[T, F] {
	return func(c *Controller[T, F]) {
		if debounce > 0 {
			c.debounce = debounce
		}
		c.applySearch = apply
	}
}

// WithNotifier sets where the first failure is announced.
func WithNotifier[T any, F domain.Filter[F]](n notify.Notifier) Option[T, F] {
	return func(c *Controller[T, F]) { c.notifier = n }
}

// WithCancelStale aborts superseded requests in the transport as well as
// ignoring their results.
func WithCancelStale[T any, F domain.Filter[F]](enabled bool) Option[T, F] {
	return func(c *Controller[T, F]) { c.cancelStale = enabled }
}

// New creates an idle controller. Call Init to start the first fetch.
func New[T any, F domain.Filter[F]](resource string, fetch FetchFunc[T, F], filter F, opts ...Option[T, F]) Controller[T, F] {
	c := Controller[T, F]{
		resource: resource,
		fetch:    fetch,
		filter:   filter,
		debounce: DefaultDebounce,
		notifier: notify.Discard,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Init mounts the view and fetches the first page.
func (c Controller[T, F]) Init() (Controller[T, F], tea.Cmd) {
	return c.dispatch(StateLoading)
}

// SetFilter applies f. An equal filter is a no-op; a changed one resets
// to page 1 and refetches.
func (c Controller[T, F]) SetFilter(f F) (Controller[T, F], tea.Cmd) {
	if sameFilter(c.filter, f) {
		return c, nil
	}
	c.filter = f.WithPaging(domain.FirstPage(c.filter.Paging().Limit))
	log.Debug(log.CatList, "filter changed", "resource", c.resource)
	return c.dispatch(StateLoading)
}

// SetSearch records text and schedules it to apply once typing pauses.
func (c Controller[T, F]) SetSearch(text string) (Controller[T, F], tea.Cmd) {
	if c.applySearch == nil {
		return c, nil
	}
	c.search = text
	c.searchVersion++
	version, resource := c.searchVersion, c.resource
	return c, tea.Tick(c.debounce, func(time.Time) tea.Msg {
		return SearchTickMsg{Resource: resource, Version: version, Text: text}
	})
}

// SetPage moves to page n, clamped to the known page range.
func (c Controller[T, F]) SetPage(n int) (Controller[T, F], tea.Cmd) {
	if c.hasData && c.page.TotalPages > 0 {
		n = min(n, c.page.TotalPages)
	}
	n = max(n, 1)
	paging := c.filter.Paging()
	if n == paging.Page && c.state == StateReady {
		return c, nil
	}
	paging.Page = n
	c.filter = c.filter.WithPaging(paging)
	return c.dispatch(StateLoading)
}

// NextPage and PrevPage step through pages.
func (c Controller[T, F]) NextPage() (Controller[T, F], tea.Cmd) {
	return c.SetPage(c.filter.Paging().Page + 1)
}

func (c Controller[T, F]) PrevPage() (Controller[T, F], tea.Cmd) {
	return c.SetPage(c.filter.Paging().Page - 1)
}

// Retry re-issues the failed request, keeping previous rows visible.
func (c Controller[T, F]) Retry() (Controller[T, F], tea.Cmd) {
	if c.state != StateError {
		return c, nil
	}
	c, cmd := c.dispatch(StateRetrying)
	c.quiet = true
	return c, cmd
}

// Refresh refetches the current page and filter, keeping rows visible.
func (c Controller[T, F]) Refresh() (Controller[T, F], tea.Cmd) {
	return c.dispatch(StateRetrying)
}

func (c Controller[T, F]) dispatch(state State) (Controller[T, F], tea.Cmd) {
	if c.cancelStale && c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.generation++
	c.state = state
	c.quiet = false

	gen, resource, filter, fetch := c.generation, c.resource, c.filter, c.fetch
	log.Debug(log.CatList, "fetching", "resource", resource, "generation", gen, "page", filter.Paging().Page)
	return c, func() tea.Msg {
		page, err := fetch(ctx, filter)
		return FetchedMsg[T]{Resource: resource, Generation: gen, Page: page, Err: err}
	}
}

// Update consumes this controller's messages and ignores everything else.
func (c Controller[T, F]) Update(msg tea.Msg) (Controller[T, F], tea.Cmd) {
	switch msg := msg.(type) {
	case FetchedMsg[T]:
		if msg.Resource != c.resource {
			return c, nil
		}
		return c.handleFetched(msg)
	case SearchTickMsg:
		if msg.Resource != c.resource || msg.Version != c.searchVersion || c.applySearch == nil {
			return c, nil
		}
		return c.SetFilter(c.applySearch(c.filter, msg.Text))
	}
	return c, nil
}

func (c Controller[T, F]) handleFetched(msg FetchedMsg[T]) (Controller[T, F], tea.Cmd) {
	if msg.Generation != c.generation {
		log.Debug(log.CatList, "discarded stale response", "resource", c.resource,
			"generation", msg.Generation, "latest", c.generation)
		return c, nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	if msg.Err != nil {
		c.state = StateError
		c.err = msg.Err
		log.ErrorErr(log.CatList, "list fetch failed", msg.Err, "resource", c.resource)
		if !c.quiet && !c.notified {
			c.notified = true
			c.notifier.Notify(notify.Error(FailureTitle, api.Message(msg.Err)))
		}
		return c, nil
	}

	c.page = msg.Page
	c.hasData = true
	c.state = StateReady
	c.err = nil
	c.notified = false
	return c, c.populateRefs()
}

// populateRefs asks the cache for every required kind that is still
// empty. Rows render with placeholders until RefsLoadedMsg arrives.
func (c Controller[T, F]) populateRefs() tea.Cmd {
	if c.refs == nil {
		return nil
	}
	var cmds []tea.Cmd
	for _, kind := range c.refKinds {
		if !c.refs.Empty(kind) {
			continue
		}
		cache := c.refs
		cmds = append(cmds, func() tea.Msg {
			_, err := cache.GetOrFetch(context.Background(), kind)
			return RefsLoadedMsg{Kind: kind, Err: err}
		})
	}
	return tea.Batch(cmds...)
}

func sameFilter[F domain.Filter[F]](a, b F) bool {
	return cmp.Equal(a.WithPaging(domain.Pagination{}), b.WithPaging(domain.Pagination{}))
}

// Resource names the list.
func (c Controller[T, F]) Resource() string { return c.resource }

// State returns the lifecycle state.
func (c Controller[T, F]) State() State { return c.state }

// Page returns the last successfully loaded page.
func (c Controller[T, F]) Page() domain.Page[T] { return c.page }

// HasData reports whether any page has loaded yet.
func (c Controller[T, F]) HasData() bool { return c.hasData }

// Err is the last failure, nil once a fetch succeeds.
func (c Controller[T, F]) Err() error { return c.err }

// ErrMessage is the user-facing text of Err.
func (c Controller[T, F]) ErrMessage() string {
	if c.err == nil {
		return ""
	}
	return api.Message(c.err)
}

// Filter returns the current filter including paging.
func (c Controller[T, F]) Filter() F { return c.filter }

// Search returns the pending free-text search.
func (c Controller[T, F]) Search() string { return c.search }

// Generation is the id of the latest dispatched request.
func (c Controller[T, F]) Generation() uint64 { return c.generation }

// Refs returns the shared reference cache, or nil.
func (c Controller[T, F]) Refs() *refcache.Cache { return c.refs }

// RefKinds lists the reference kinds the rows display.
func (c Controller[T, F]) RefKinds() []refcache.Kind { return c.refKinds }
