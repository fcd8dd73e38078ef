// Package refcache holds the id→name lookup tables that list rows use to
// display referenced records (a project's builder, a property's
// locations). Each kind is fetched in full once, shared by every consumer
// and kept until invalidated.
package refcache

import (
	"context"
	"fmt"
	"time"

	"github.com/graph-gophers/dataloader"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/propdesk/internal/cachemanager"
	"github.com/zjrosen/propdesk/internal/domain"
	"github.com/zjrosen/propdesk/internal/log"
	"github.com/zjrosen/propdesk/internal/notify"
	"github.com/zjrosen/propdesk/internal/tracing"
)

// Kind names a reference collection.
type Kind string

const (
	KindLocations Kind = "locations"
	KindBuilders  Kind = "builders"
	KindAmenities Kind = "amenities"
)

// Kinds lists every Kind.
var Kinds = []Kind{KindLocations, KindBuilders, KindAmenities}

// Source fetches the complete collection for one kind.
type Source func(ctx context.Context) ([]domain.Ref, error)

// Cache is the shared reference cache. Construct one per session and hand
// it to every list controller that needs it.
type Cache struct {
	sources  map[Kind]Source
	store    *cachemanager.InMemoryCacheManager[Kind, Index]
	through  *cachemanager.ReadThroughCache[Kind, Index, Kind]
	loader   *dataloader.Loader
	notifier notify.Notifier
	tracer   trace.Tracer
}

// Option configures a Cache.
type Option func(*Cache)

// WithNotifier sets where failed fetches are announced.
func WithNotifier(n notify.Notifier) Option {
	return func(c *Cache) { c.notifier = n }
}

// WithTracer records one span per fetch.
func WithTracer(t trace.Tracer) Option {
	return func(c *Cache) { c.tracer = t }
}

// WithBatchWait sets how long concurrent demands are gathered before a
// fetch starts.
func WithBatchWait(d time.Duration) Option {
	return func(c *Cache) { c.loader = newLoader(c, d) }
}

const defaultBatchWait = 5 * time.Millisecond

// New builds a cache over the given sources.
func New(sources map[Kind]Source, opts ...Option) *Cache {
	c := &Cache{
		sources:  sources,
		store:    cachemanager.NewInMemoryCacheManager[Kind, Index]("refcache", cachemanager.NoExpiration, cachemanager.DefaultCleanupInterval),
		notifier: notify.Discard,
		tracer:   noop.NewTracerProvider().Tracer(tracing.ServiceName),
	}
	c.loader = newLoader(c, defaultBatchWait)
	for _, opt := range opts {
		opt(c)
	}
	c.through = cachemanager.NewReadThroughCache[Kind, Index, Kind](c.store, c.load, false)
	return c
}

// newLoader collapses concurrent demands for a kind into one fetch.
// Results are not memoised by the loader; the store owns retention.
func newLoader(c *Cache, wait time.Duration) *dataloader.Loader {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		ctx = context.WithoutCancel(ctx)
		fetched := make(map[string]*dataloader.Result, len(keys))
		results := make([]*dataloader.Result, len(keys))
		for i, key := range keys {
			res, ok := fetched[key.String()]
			if !ok {
				res = c.fetch(ctx, Kind(key.String()))
				fetched[key.String()] = res
			}
			results[i] = res
		}
		return results
	}
	return dataloader.NewBatchedLoader(batchFn,
		dataloader.WithWait(wait),
		dataloader.WithCache(&dataloader.NoCache{}))
}

func (c *Cache) fetch(ctx context.Context, kind Kind) *dataloader.Result {
	ctx, span := c.tracer.Start(ctx, tracing.SpanPrefixRefLoad+string(kind),
		trace.WithAttributes(attribute.String(tracing.AttrRefKind, string(kind))))
	defer span.End()

	source, ok := c.sources[kind]
	if !ok {
		err := fmt.Errorf("refcache: no source for %q", kind)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return &dataloader.Result{Error: err}
	}

	refs, err := source(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.ErrorErr(log.CatCache, "reference fetch failed", err, "kind", string(kind))
		c.notifier.Notify(failureNotice(kind))
		return &dataloader.Result{Error: err}
	}

	index := NewIndex(refs)
	log.Debug(log.CatCache, "references loaded", "kind", string(kind), "count", index.Len())
	return &dataloader.Result{Data: index}
}

func (c *Cache) load(ctx context.Context, kind Kind) (Index, error) {
	data, err := c.loader.Load(ctx, dataloader.StringKey(kind))()
	if err != nil {
		return Index{}, err
	}
	index, ok := data.(Index)
	if !ok {
		return Index{}, fmt.Errorf("refcache: unexpected %T for %q", data, kind)
	}
	return index, nil
}

// GetOrFetch returns the index for kind, fetching it if nothing is cached.
// A failure leaves the cache empty so the next call retries.
func (c *Cache) GetOrFetch(ctx context.Context, kind Kind) (Index, error) {
	return c.through.Get(ctx, kind, kind, cachemanager.NoExpiration)
}

// Peek returns the cached index without fetching.
func (c *Cache) Peek(kind Kind) (Index, bool) {
	return c.through.Peek(context.Background(), kind)
}

// Empty reports whether nothing is cached for kind.
func (c *Cache) Empty(kind Kind) bool {
	_, ok := c.Peek(kind)
	return !ok
}

// Invalidate drops the given kinds, or every kind when none are named.
func (c *Cache) Invalidate(kinds ...Kind) {
	if len(kinds) == 0 {
		kinds = Kinds
	}
	for _, kind := range kinds {
		_ = c.through.Invalidate(context.Background(), kind)
	}
	log.Debug(log.CatCache, "references invalidated", "kinds", kinds)
}

func failureNotice(kind Kind) notify.Notification {
	switch kind {
	case KindBuilders:
		return notify.Error("Failed to load developer information", "Some developer names may not display correctly")
	case KindLocations:
		return notify.Error("Failed to load location information", "Some location names may not display correctly")
	default:
		return notify.Error("Failed to load "+string(kind), "Some names may not display correctly")
	}
}
