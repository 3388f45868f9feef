package object

import "unsafe"

// StringObj is the fixed part of a heap string: header, length, and a
// flexible trailing NUL-terminated byte array (spec.md §3). Strings are
// immutable once constructed.
type StringObj struct {
	Header
	Length uint32
	_pad   [4]byte
}

const stringFixedSize = unsafe.Sizeof(StringObj{})

// NewString allocates sizeof(header)+length+1 bytes and copies s in,
// NUL-terminated, per spec.md §4.3.
func (h *Heap) NewString(s string) (uintptr, error) {
	total := stringFixedSize + uintptr(len(s)) + 1
	addr, err := h.AllocateObject(total, KindString)
	if err != nil {
		return 0, err
	}
	so := StringAt(addr)
	so.Length = uint32(len(s))
	dst := unsafe.Slice((*byte)(unsafe.Pointer(addr+stringFixedSize)), len(s)+1) //nolint:govet
	copy(dst, s)
	dst[len(s)] = 0
	return addr, nil
}

// StringAt views the object at addr as a StringObj. Caller must know the
// object's kind is KindString.
func StringAt(addr uintptr) *StringObj {
	return (*StringObj)(unsafe.Pointer(addr)) //nolint:govet
}

// Bytes returns the string's contents without the NUL terminator.
func (so *StringObj) Bytes() []byte {
	base := uintptr(unsafe.Pointer(so)) + stringFixedSize
	return unsafe.Slice((*byte)(unsafe.Pointer(base)), so.Length) //nolint:govet
}

func (so *StringObj) String() string { return string(so.Bytes()) }

func stringSize(addr uintptr) uintptr {
	return stringFixedSize + uintptr(StringAt(addr).Length) + 1
}
