package refcache

import "github.com/zjrosen/propdesk/internal/domain"

// Index is an ordered reference list with lookup by id.
type Index struct {
	refs []domain.Ref
	byID map[domain.ID]domain.Ref
}

// NewIndex indexes refs. Later duplicates of an id win the lookup.
func NewIndex(refs []domain.Ref) Index {
	byID := make(map[domain.ID]domain.Ref, len(refs))
	for _, ref := range refs {
		byID[ref.ID] = ref
	}
	return Index{refs: refs, byID: byID}
}

// Lookup returns the reference for id.
func (i Index) Lookup(id domain.ID) (domain.Ref, bool) {
	ref, ok := i.byID[id]
	return ref, ok
}

// Refs returns the references in fetch order.
func (i Index) Refs() []domain.Ref { return i.refs }

// Len is the number of references.
func (i Index) Len() int { return len(i.refs) }
