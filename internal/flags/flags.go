// Package flags provides feature flag support for controlled feature rollout.
// Flags are read-only after initialization and unknown flags read as their
// registered default, or false when unregistered.
package flags

import (
	"maps"
	"slices"

	"github.com/zjrosen/propdesk/internal/log"
)

const (
	// FlagCancelStaleRequests aborts a superseded list request at the
	// transport instead of only discarding its result.
	FlagCancelStaleRequests = "cancel-stale-requests"

	// FlagMouseSelection enables clicking table rows.
	FlagMouseSelection = "mouse-selection"
)

// defaults are applied for flags missing from configuration.
var defaults = map[string]bool{
	FlagCancelStaleRequests: true,
	FlagMouseSelection:      true,
}

// Registry holds feature flag state loaded from configuration.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from a config map layered over the defaults.
func New(configured map[string]bool) *Registry {
	merged := maps.Clone(defaults)
	maps.Copy(merged, configured)
	r := &Registry{flags: merged}
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(merged), "flags", r.Names())
	return r
}

// Enabled returns true if the named flag is enabled.
// Nil registries and unknown flags return false.
func (r *Registry) Enabled(name string) bool {
	if r == nil || r.flags == nil {
		return false
	}
	value, exists := r.flags[name]
	if !exists {
		log.Debug(log.CatConfig, "Unknown flag accessed", "flag", name)
		return false
	}
	return value
}

// All returns a copy of all flags.
func (r *Registry) All() map[string]bool {
	if r == nil || r.flags == nil {
		return map[string]bool{}
	}
	return maps.Clone(r.flags)
}

// Names lists the enabled flags in sorted order.
func (r *Registry) Names() []string {
	var names []string
	for name, on := range r.All() {
		if on {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}
