// Package browse implements the resource table screens: one generic screen
// parameterised by entity and filter type, configured per resource.
package browse

import (
	"context"

	"github.com/charmbracelet/bubbles/key"

	"github.com/zjrosen/propdesk/internal/domain"
	"github.com/zjrosen/propdesk/internal/listview"
	"github.com/zjrosen/propdesk/internal/refcache"
	"github.com/zjrosen/propdesk/internal/render"
)

// Toggle is a filter bound to a key. Each press advances the filter to
// its next value.
type Toggle[F any] struct {
	Key   key.Binding
	Label string
	Next  func(F) F
	// Value describes the current setting, "" when unset.
	Value func(F) string
}

// Deletion configures the delete action of a screen.
type Deletion struct {
	Delete func(ctx context.Context, id domain.ID) error
	// Noun names the record in the confirmation text, e.g. "project".
	Noun        string
	SuccessText string
	FailureText string
	// Invalidates lists reference kinds made stale by a deletion.
	Invalidates []refcache.Kind
}

// Definition describes one resource screen.
type Definition[T any, F domain.Filter[F]] struct {
	Resource string // config key, e.g. "projects"
	Title    string

	Columns  []render.Column[T]
	Fetch    listview.FetchFunc[T, F]
	Filter   F
	RefKinds []refcache.Kind

	// Search applies the free-text filter. Nil disables search.
	Search  func(F, string) F
	Toggles []Toggle[F]
	// Clear resets every filter field. Nil disables clearing.
	Clear func(F) F

	ID   func(T) domain.ID
	Name func(T) string

	// Detail builds the markdown document for a row, fetching the full
	// record when needed.
	Detail func(ctx context.Context, item T, refs render.Refs) (string, error)

	// Deletion is nil for read-only resources.
	Deletion *Deletion
}
