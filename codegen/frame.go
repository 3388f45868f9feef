package codegen

import "github.com/vanarize/vanarize/ast"

// frame tracks one function's stack layout: named local/parameter slots
// (addressed [RBP+disp32]), the declared struct type of any slot whose
// static type is known, and anonymous temporaries reserved for
// array/struct literal construction. It replaces register allocation
// entirely — every value lives on the native stack, following the
// stack-machine discipline spec.md §4.7 describes.
//
// This is a single flat frame per function, not a scope tree: a local
// declared inside a nested if/for block shares the same frame as the
// function's top-level locals, and redeclaring a name (shadowing)
// reuses the existing slot rather than allocating a new one. spec.md's
// grammar has no block-scoped rebinding that would make this
// observable, so the simplification is never exercised by a conforming
// program.
type frame struct {
	slots map[string]int32    // name -> RBP-relative displacement
	types map[string]string   // name -> declared struct type, when known
	temps map[ast.Node]int32  // array/struct literal node -> displacement
	next  int32               // next unused local displacement (negative, shrinking by 8)
}

func newFrame() *frame {
	return &frame{
		slots: make(map[string]int32),
		types: make(map[string]string),
		temps: make(map[ast.Node]int32),
		next:  -8,
	}
}

// declare reserves a local variable's slot, or returns its existing one
// if already declared (see the shadowing note above).
func (f *frame) declare(name string) int32 {
	if off, ok := f.slots[name]; ok {
		return off
	}
	off := f.next
	f.slots[name] = off
	f.next -= 8
	return off
}

func (f *frame) lookup(name string) (int32, bool) {
	off, ok := f.slots[name]
	return off, ok
}

func (f *frame) declareType(name, structType string) {
	f.types[name] = structType
}

func (f *frame) lookupType(name string) (string, bool) {
	t, ok := f.types[name]
	return t, ok
}

// declareTemp reserves a frame slot that stashes a single array/struct
// literal's freshly allocated address across the evaluation of its
// element/field expressions, which may themselves use the stack.
func (f *frame) declareTemp(n ast.Node) int32 {
	if off, ok := f.temps[n]; ok {
		return off
	}
	off := f.next
	f.temps[n] = off
	f.next -= 8
	return off
}

// size reports the byte count a SUB RSP in the function prologue must
// reserve: the magnitude of the lowest local displacement, rounded up
// to 16 bytes. A CALL issued while no PUSHed temporaries are outstanding
// is therefore 16-byte aligned; a CALL issued while operands or
// arguments are staged on the stack is not realigned.
func (f *frame) size() uint32 {
	n := -f.next
	if n < 0 {
		n = 0
	}
	return uint32((n + 15) &^ 15)
}
