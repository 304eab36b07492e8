// Package polyfill aggregates shim requirements and memoizes shared bundle builds.
package polyfill

import "slices"

// Requirements maps each required shim to the legacy outputs that need it. Shims
// and their reasons keep discovery order. It is filled by a single goroutine.
type Requirements struct {
	order   []string
	reasons map[string][]string
}

// NewRequirements returns an empty aggregator.
func NewRequirements() *Requirements {
	return &Requirements{reasons: make(map[string][]string)}
}

// Add records that legacyName requires every shim in shims.
func (r *Requirements) Add(legacyName string, shims []string) {
	for _, id := range shims {
		names, seen := r.reasons[id]
		if !seen {
			r.order = append(r.order, id)
		}
		if !slices.Contains(names, legacyName) {
			r.reasons[id] = append(names, legacyName)
		}
	}
}

// Shims returns the required shims in discovery order.
func (r *Requirements) Shims() []string {
	return slices.Clone(r.order)
}

// Reasons returns the legacy outputs that required id.
func (r *Requirements) Reasons(id string) []string {
	return slices.Clone(r.reasons[id])
}

// Map returns a copy of the full requirement map.
func (r *Requirements) Map() map[string][]string {
	out := make(map[string][]string, len(r.reasons))
	for id, names := range r.reasons {
		out[id] = slices.Clone(names)
	}
	return out
}

// Empty reports whether no shim was required.
func (r *Requirements) Empty() bool {
	return len(r.order) == 0
}
