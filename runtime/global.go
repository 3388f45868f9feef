package runtime

import (
	"github.com/vanarize/vanarize/gc"
	"github.com/vanarize/vanarize/object"
	"github.com/vanarize/vanarize/value"
)

// ActiveHeap is the process-wide heap RuntimeAddGlobal allocates string
// concatenation results on. The bump arena is itself a process-wide
// singleton (spec.md §5), so emitted code's `+` call site closing over a
// single global heap instead of threading a heap pointer through the
// call avoids needing a third argument register at every add site.
var ActiveHeap *object.Heap

// SetActiveHeap installs the heap the running program compiles against.
// The host driver calls this once before invoking compiled code.
func SetActiveHeap(h *object.Heap) { ActiveHeap = h }

// ActiveCollector is the collector bound to ActiveHeap's root set.
// collectAndRetry below is the one place every allocation-failure path
// in this package goes through to honor spec.md §4.3: "in the full
// design it must trigger GC.Collect() and retry once, reporting 'heap
// exhausted' only if still short."
var ActiveCollector *gc.Collector

// SetActiveCollector installs the collector a failed allocation retries
// against. The host driver calls this once, alongside SetActiveHeap,
// before invoking compiled code.
func SetActiveCollector(c *gc.Collector) { ActiveCollector = c }

// collectAndRetry runs alloc once. If it fails with ErrHeapExhausted and
// a collector is installed, it runs exactly one Collect cycle and tries
// alloc a second time, surfacing whatever that second attempt returns.
// With no collector installed (e.g. in tests that allocate directly
// against a bare heap), exhaustion is reported immediately, matching the
// object package's own documented behavior.
func collectAndRetry(alloc func() (uintptr, error)) (uintptr, error) {
	addr, err := alloc()
	if err != object.ErrHeapExhausted || ActiveCollector == nil {
		return addr, err
	}
	ActiveCollector.Collect()
	return alloc()
}

// CollectAndRetry is collectAndRetry, exported for stdlib native
// functions that allocate directly against ActiveHeap outside the
// call sites above.
func CollectAndRetry(alloc func() (uintptr, error)) (uintptr, error) {
	return collectAndRetry(alloc)
}

// RuntimeAddGlobal is the two-argument call shape codegen bakes into
// `+` call sites; it forwards to RuntimeAdd against ActiveHeap.
func RuntimeAddGlobal(a, b value.Value) value.Value {
	return RuntimeAdd(ActiveHeap, a, b)
}

// RuntimeNewArray allocates an array literal's backing Struct: count+1
// fields, with field 0 holding count itself as a boxed number
// (SPEC_FULL.md §4's array-as-struct-with-a-length-field layout). Index
// access offsets every element by one field to make room for it.
func RuntimeNewArray(count value.Value) value.Value {
	n := int(value.ValueToNumber(count))
	addr, err := collectAndRetry(func() (uintptr, error) { return ActiveHeap.NewStruct(n + 1) })
	if err != nil {
		LastError = err
		return value.Nil
	}
	object.StructAt(addr).Fields()[0] = count
	return value.ObjToValue(addr)
}

// RuntimeNewStruct allocates a struct-init expression's backing Struct
// with exactly the declared field count; the code generator fills each
// field by its compile-time-resolved index immediately afterward.
func RuntimeNewStruct(fieldCount value.Value) value.Value {
	n := int(value.ValueToNumber(fieldCount))
	addr, err := collectAndRetry(func() (uintptr, error) { return ActiveHeap.NewStruct(n) })
	if err != nil {
		LastError = err
		return value.Nil
	}
	return value.ObjToValue(addr)
}
