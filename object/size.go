package object

// SizeAt returns the total number of bytes (header included) occupied
// by the object at addr. The collector uses this to hand exact-size
// blocks back to the heap's free list when sweeping unmarked objects.
func SizeAt(addr uintptr) uintptr {
	switch KindAt(addr) {
	case KindString:
		return stringSize(addr)
	case KindFunction:
		return functionObjSize(addr)
	case KindStruct:
		return structObjSize(addr)
	default:
		return HeaderSize
	}
}
