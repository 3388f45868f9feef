package gc

import (
	"github.com/vanarize/vanarize/object"
	"github.com/vanarize/vanarize/value"
)

// Collector runs mark-and-sweep cycles over a Heap's intrusive live
// list using an externally-owned RootSet (spec.md §4.4).
type Collector struct {
	heap  *object.Heap
	roots *RootSet
	// Collections counts completed Collect() calls, for diagnostics.
	Collections int
}

// NewCollector binds a collector to the heap and root set it will sweep.
func NewCollector(heap *object.Heap, roots *RootSet) *Collector {
	return &Collector{heap: heap, roots: roots}
}

// Collect runs one mark-and-sweep cycle:
//  1. mark every object transitively reachable from the root set;
//  2. sweep the live list, releasing unmarked objects to the heap's free
//     list and clearing the mark bit of survivors.
//
// Unlike the source implementation's arena-reset sweep (an unsound
// shortcut spec.md §9 flags explicitly), this collector adopts open
// question resolution (b): it frees unmarked objects individually via
// Heap.Release instead of rewinding the bump pointer, so live objects
// never need relocating.
func (c *Collector) Collect() {
	for _, root := range c.roots.Roots() {
		c.mark(*root)
	}
	c.sweep()
	c.Collections++
}

func (c *Collector) mark(v value.Value) {
	if !value.IsObj(v) {
		return
	}
	addr := value.ValueToObj(v)
	if object.IsMarked(addr) {
		return
	}
	object.SetMarked(addr, true)

	if object.KindAt(addr) == object.KindStruct {
		for _, field := range object.StructAt(addr).Fields() {
			c.mark(field)
		}
	}
	// Strings and functions have no outgoing Value references in the MVP
	// (spec.md §4.4 step 1).
}

func (c *Collector) sweep() {
	var newHead uintptr
	var prevKept uintptr // address of the last kept object, 0 = none yet

	for addr := c.heap.Head(); addr != 0; {
		next := object.NextAddr(addr)

		if object.IsMarked(addr) {
			object.SetMarked(addr, false)
			if prevKept == 0 {
				newHead = addr
			} else {
				object.SetNextAddr(prevKept, addr)
			}
			object.SetNextAddr(addr, 0)
			prevKept = addr
		} else {
			c.heap.Release(addr, object.SizeAt(addr))
		}

		addr = next
	}

	c.heap.SetHead(newHead)
}
