// Package gc implements the mark-and-sweep collector: a root set (a
// slice that grows past its initial capacity as roots are registered;
// it has no fixed upper bound) and a Collect cycle that marks reachable objects, sweeps the
// rest back to the heap's free list, and clears mark bits on survivors
// (spec.md §3 "Root set", §4.4).
package gc

import "github.com/vanarize/vanarize/value"

// RootSet is a flat, unordered collection of pointers to Value storage
// locations the collector must treat as reachability entry points.
// Registration order is irrelevant; unregistration replaces the removed
// slot with the set's last entry (spec.md §3).
type RootSet struct {
	roots []*value.Value
}

// NewRootSet creates an empty root set with the given initial capacity.
func NewRootSet(capacity int) *RootSet {
	return &RootSet{roots: make([]*value.Value, 0, capacity)}
}

// Register adds loc to the root set. loc must be registered before the
// storage it points to may hold a Value the collector needs to see.
func (r *RootSet) Register(loc *value.Value) {
	r.roots = append(r.roots, loc)
}

// Unregister removes loc from the root set. loc must be unregistered
// before its storage dies. If loc is registered more than once, only one
// occurrence is removed.
func (r *RootSet) Unregister(loc *value.Value) {
	for i, existing := range r.roots {
		if existing == loc {
			last := len(r.roots) - 1
			r.roots[i] = r.roots[last]
			r.roots = r.roots[:last]
			return
		}
	}
}

// Len reports the number of currently registered roots.
func (r *RootSet) Len() int { return len(r.roots) }

// Roots returns the current root slice. Callers must not retain it
// across a Register/Unregister call.
func (r *RootSet) Roots() []*value.Value { return r.roots }
