package runtime

import "reflect"

// HelperAddr resolves fn's entry program-counter so codegen can bake it
// into a `MOV r64, imm64; CALL r64` call site (spec.md §6: "Each is
// invoked by baking its absolute address into a MOV imm64; CALL reg
// sequence"). fn must not be a closure — reflect.Value.Pointer only
// documents a stable code address for non-closure function values.
//
// The address this returns is fn's ABIInternal entry point — Go
// functions are not directly callable from a System V AMD64 call site
// with arguments in the System V argument registers, since ABIInternal
// assigns integer/pointer arguments to RAX, RBX, RCX, RDI, RSI, R8, R9,
// R10, R11 in that order instead. codegen.Compiler.emitHostCall is the
// bridge: every call site that resolves a target through HelperAddr
// re-maps its staged arguments into that register order before issuing
// the CALL, rather than calling through this address directly.
func HelperAddr(fn any) uintptr {
	return reflect.ValueOf(fn).Pointer()
}
