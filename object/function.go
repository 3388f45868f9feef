package object

import "unsafe"

// FunctionObj records a compiled function: its native entrypoint, its
// declared arity, and (optionally) a pointer to its name String
// (spec.md §3). Entrypoint is the raw address the code generator baked
// a CALL site to during compilation of callers resolved before this
// function existed yet (forward calls are resolved by codegen's
// two-pass measure-then-emit compilation, see codegen/compiler.go).
type FunctionObj struct {
	Header
	Entrypoint uintptr
	Arity      int32
	_pad       [4]byte
	Name       uintptr // address of a StringObj, 0 if anonymous
}

const functionSize = unsafe.Sizeof(FunctionObj{})

// NewFunction allocates and initialises a FunctionObj.
func (h *Heap) NewFunction(entry uintptr, arity int32, name uintptr) (uintptr, error) {
	addr, err := h.AllocateObject(functionSize, KindFunction)
	if err != nil {
		return 0, err
	}
	fo := FunctionAt(addr)
	fo.Entrypoint = entry
	fo.Arity = arity
	fo.Name = name
	return addr, nil
}

// FunctionAt views the object at addr as a FunctionObj.
func FunctionAt(addr uintptr) *FunctionObj {
	return (*FunctionObj)(unsafe.Pointer(addr)) //nolint:govet
}

func functionObjSize(uintptr) uintptr { return functionSize }
