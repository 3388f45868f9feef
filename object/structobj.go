package object

import (
	"unsafe"

	"github.com/vanarize/vanarize/value"
)

// StructObj is a heap struct/array instance: header, field count, and a
// flexible trailing Value array (spec.md §3). Array literals reuse this
// representation with field 0 holding the length, per SPEC_FULL.md §4.
type StructObj struct {
	Header
	FieldCount uint32
	_pad       [4]byte
}

const structFixedSize = unsafe.Sizeof(StructObj{})

// NewStruct allocates sizeof(header)+fieldCount*sizeof(Value) bytes and
// zero-initialises every field to nil (spec.md §4.3).
func (h *Heap) NewStruct(fieldCount int) (uintptr, error) {
	total := structFixedSize + uintptr(fieldCount)*8
	addr, err := h.AllocateObject(total, KindStruct)
	if err != nil {
		return 0, err
	}
	st := StructAt(addr)
	st.FieldCount = uint32(fieldCount)
	fields := st.Fields()
	for i := range fields {
		fields[i] = value.Nil
	}
	return addr, nil
}

// StructAt views the object at addr as a StructObj.
func StructAt(addr uintptr) *StructObj {
	return (*StructObj)(unsafe.Pointer(addr)) //nolint:govet
}

// Fields returns the struct's field slice, backed directly by arena
// memory (writes through this slice are visible to the heap).
func (st *StructObj) Fields() []value.Value {
	base := uintptr(unsafe.Pointer(st)) + structFixedSize
	return unsafe.Slice((*value.Value)(unsafe.Pointer(base)), st.FieldCount) //nolint:govet
}

// StructFieldOffset returns field index's byte offset within a Struct
// object. Struct and array-literal field layout is fixed at codegen
// time (SPEC_FULL.md §4), so a property-get/set compiles to a single
// `MOV [base+disp32]` using this offset rather than a runtime lookup.
func StructFieldOffset(index int) int32 {
	return int32(structFixedSize) + int32(index)*8
}

func structObjSize(addr uintptr) uintptr {
	return structFixedSize + uintptr(StructAt(addr).FieldCount)*8
}
