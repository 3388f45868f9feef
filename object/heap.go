// Package object implements the bump-allocated object heap: the
// intrusive object header, the String/Function/Struct variants, and the
// allocator every heap object goes through (spec.md §3, §4.3).
package object

import (
	"fmt"
	"unsafe"
)

// ErrHeapExhausted is returned by Heap.MemAlloc when neither the bump
// region nor the free list can satisfy a request. spec.md §4.3 requires
// treating this as fatal only once a collection has already been
// attempted; runtime.CollectAndRetry is where that retry actually lives
// — this package only ever reports exhaustion, it never retries itself,
// since MemAlloc has no reference to the collector that would let it.
var ErrHeapExhausted = fmt.Errorf("heap exhausted")

// freeBlock is one entry of the free list maintained by the
// free-and-reuse collector (spec.md §9 open question, option (b)).
type freeBlock struct {
	addr uintptr
	size uintptr
}

// Heap is the process-wide bump arena plus free list. It owns every
// live object and the intrusive list threading them together; the gc
// package walks that list through the Header accessors in header.go but
// never holds its own copy of object storage.
type Heap struct {
	arena []byte
	base  uintptr
	cap   uintptr
	bump  uintptr

	head  uintptr // first live object, 0 = empty list
	free  []freeBlock
}

// NewHeap reserves a single arena of size bytes. Matches spec.md §4.3:
// a single reserved region, default 256 MiB, allocated once at startup.
func NewHeap(size uint64) *Heap {
	arena := make([]byte, size)
	base := uintptr(unsafe.Pointer(&arena[0]))
	return &Heap{arena: arena, base: base, cap: uintptr(size)}
}

func alignUp(n, align uintptr) uintptr {
	return (n + align - 1) &^ (align - 1)
}

// MemAlloc bumps the arena pointer by align_up(size, 8) bytes and
// returns the address of the new region, first trying the free list left
// behind by a prior collection. The bump path is O(1); the free-list
// search is linear in the number of free blocks. 8-byte aligned; exhaustion returns
// ErrHeapExhausted rather than panicking, so a caller that owns a
// collector can retry after a GC.Collect (spec.md §4.3, §4.4).
func (h *Heap) MemAlloc(size uintptr) (uintptr, error) {
	size = alignUp(size, 8)

	if addr, ok := h.takeFromFreeList(size); ok {
		zero(addr, size)
		return addr, nil
	}

	if h.bump+size > h.cap {
		return 0, ErrHeapExhausted
	}

	addr := h.base + h.bump
	h.bump += size
	return addr, nil
}

func (h *Heap) takeFromFreeList(size uintptr) (uintptr, bool) {
	for i, blk := range h.free {
		if blk.size < size {
			continue
		}
		remainder := blk.size - size
		if remainder >= HeaderSize+8 {
			// Split: keep the tail as a smaller free block.
			h.free[i] = freeBlock{addr: blk.addr + size, size: remainder}
		} else {
			h.free = append(h.free[:i], h.free[i+1:]...)
		}
		return blk.addr, true
	}
	return 0, false
}

func zero(addr, size uintptr) {
	b := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size) //nolint:govet // stable-arena pointer
	for i := range b {
		b[i] = 0
	}
}

// AllocateObject allocates size bytes, initialises the header with kind
// and an unmarked mark bit, and links the object into the live list
// (spec.md §4.3: "Every allocation goes through allocateObject... which
// initialises the header and links the object into the live-object list").
func (h *Heap) AllocateObject(size uintptr, kind Kind) (uintptr, error) {
	addr, err := h.MemAlloc(size)
	if err != nil {
		return 0, err
	}
	hdr := headerAt(addr)
	hdr.Kind = kind
	hdr.Marked = false
	hdr.Next = h.head
	h.head = addr
	return addr, nil
}

// Head returns the first object in the intrusive live-object list.
func (h *Heap) Head() uintptr { return h.head }

// SetHead rewrites the head of the intrusive live-object list; used by
// the collector after a sweep to install the surviving chain.
func (h *Heap) SetHead(addr uintptr) { h.head = addr }

// Release returns a block to the free list so a later MemAlloc can reuse
// it. Called by the collector for every object a sweep unlinks.
func (h *Heap) Release(addr, size uintptr) {
	h.free = append(h.free, freeBlock{addr: addr, size: alignUp(size, 8)})
}

// BumpOffset reports how many bytes of the arena have ever been bumped
// past (not counting freed-and-reused space); used by tests to verify
// allocator monotonicity (spec.md §8).
func (h *Heap) BumpOffset() uintptr { return h.bump }

// Base returns the arena's base address, for tests that verify
// MemAlloc's pointer arithmetic directly.
func (h *Heap) Base() uintptr { return h.base }
