package render

import (
	"strconv"
	"strings"

	"github.com/zjrosen/propdesk/internal/domain"
	"github.com/zjrosen/propdesk/internal/refcache"
)

// CellState says how a cell's text was produced.
type CellState int

const (
	// Plain is a value read straight from the row.
	Plain CellState = iota
	// Skeleton stands in for a reference whose cache has not loaded.
	Skeleton
	// Missing is an explicit fallback label for an absent reference.
	Missing
	// Resolved is a reference name taken from the cache.
	Resolved
)

// Cell is one rendered grid value. Detail carries the full text when Text
// is abbreviated.
type Cell struct {
	Text   string
	Detail string
	State  CellState
}

// Text builds a plain cell.
func Text(s string) Cell { return Cell{Text: s, State: Plain} }

// Refs exposes the reference indexes to resolvers.
type Refs interface {
	Index(kind refcache.Kind) (refcache.Index, bool)
}

// CacheRefs reads from a live reference cache without fetching.
type CacheRefs struct {
	Cache *refcache.Cache
}

// Index implements Refs.
func (r CacheRefs) Index(kind refcache.Kind) (refcache.Index, bool) {
	if r.Cache == nil {
		return refcache.Index{}, false
	}
	return r.Cache.Peek(kind)
}

// StaticRefs is a fixed set of indexes.
type StaticRefs map[refcache.Kind]refcache.Index

// Index implements Refs.
func (r StaticRefs) Index(kind refcache.Kind) (refcache.Index, bool) {
	idx, ok := r[kind]
	return idx, ok
}

// MaxInline is how many names a multi-valued reference shows before
// collapsing the rest into "+ N more".
const MaxInline = 2

// ResolveOne resolves a single reference id.
func ResolveOne(refs Refs, kind refcache.Kind, id domain.ID, unknownLabel string) Cell {
	idx, loaded := refs.Index(kind)
	if !loaded {
		return Cell{State: Skeleton}
	}
	ref, ok := idx.Lookup(id)
	if !ok {
		return Cell{Text: unknownLabel, State: Missing}
	}
	return Cell{Text: ref.Name, State: Resolved}
}

// ResolveMany resolves a list of reference ids. Names follow the cache
// order, each reference appears once and unresolvable ids are skipped.
func ResolveMany(refs Refs, kind refcache.Kind, ids []domain.ID, emptyLabel, notFoundLabel string) Cell {
	if len(ids) == 0 {
		return Cell{Text: emptyLabel, State: Missing}
	}
	idx, loaded := refs.Index(kind)
	if !loaded {
		return Cell{State: Skeleton}
	}

	wanted := make(map[domain.ID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	names := make([]string, 0, len(wanted))
	for _, ref := range idx.Refs() {
		if _, ok := wanted[ref.ID]; ok {
			names = append(names, ref.Name)
		}
	}
	if len(names) == 0 {
		return Cell{Text: notFoundLabel, State: Missing}
	}

	full := strings.Join(names, ", ")
	if len(names) <= MaxInline {
		return Cell{Text: full, State: Resolved}
	}
	inline := strings.Join(names[:MaxInline], ", ") + " + " + strconv.Itoa(len(names)-MaxInline) + " more"
	return Cell{Text: inline, Detail: full, State: Resolved}
}
