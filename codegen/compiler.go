// Package codegen lowers a parsed AST to x86-64 machine code (spec.md
// §4.7): a stack-machine discipline where every expression leaves its
// result in RAX, composed via PUSH/POP rather than register allocation.
//
// Compilation happens in two passes over the same AST. A measuring pass
// emits every function's body into a scratch buffer with placeholder
// call targets, to learn each function's exact encoded length —- sound
// because every instruction this assembler emits has a length fixed by
// its opcode and addressing mode, never by its immediate operand's
// value (spec.md §4.6). Those lengths give a prefix-sum offset for
// every function before any byte is committed to the real executable
// page, so even the first function emitted can already bake a CALL to
// one declared (and compiled) after it, without a back-patch pass over
// call sites. Only intra-function forward jumps (if/for) still need
// Patch32, exactly as spec.md §4.7 describes.
package codegen

import (
	"github.com/vanarize/vanarize/ast"
	"github.com/vanarize/vanarize/asm"
	"github.com/vanarize/vanarize/config"
	"github.com/vanarize/vanarize/execmem"
	"github.com/vanarize/vanarize/gc"
	"github.com/vanarize/vanarize/object"
	"github.com/vanarize/vanarize/runtime"
	"github.com/vanarize/vanarize/value"
)

// entryName is the synthetic, unparseable (no source identifier can be
// empty) name under which a program's top-level statements are compiled
// as a nullary function — "the top-level of the program becomes a
// nullary function returning a Value" (spec.md §4.7).
const entryName = ""

// maxCallArity is the largest argument count a call site can pass:
// asm.ArgRegs lists six System V argument registers, but checkSupported
// only encodes RAX..RDI, so only the first four (RDI, RSI, RDX, RCX) are
// reachable until R8/R9 support is wired (asm/constants.go).
const maxCallArity = 4

// Program is a fully compiled source file: one executable page holding
// every top-level function plus the synthetic entry function wrapping
// the file's top-level statements.
type Program struct {
	Page        *execmem.Page
	EntryOffset int
}

// EntryAddr returns the absolute address of the program's entry point,
// suitable for execmem.CallNullary.
func (p *Program) EntryAddr() uintptr {
	return p.Page.Addr() + uintptr(p.EntryOffset)
}

// Compiler lowers one parsed Program to machine code. A Compiler value
// is single-use: construct one per compilation via Compile.
type Compiler struct {
	heap      *object.Heap
	collector *gc.Collector
	cfg       config.Config

	functions map[string]*ast.FunctionDecl
	structs   map[string]*structLayout
	order     []string // emission order: entryName first, then declaration order

	measuring bool

	funcLen    map[string]int
	funcOffset map[string]int
	page       *execmem.Page

	// resolveTarget maps a function name to its call address. During
	// the measuring pass every target is 0 (the placeholder is never
	// executed, only measured); during emission it resolves against the
	// final page address and the offsets computed from the measuring
	// pass.
	resolveTarget func(name string) uintptr
}

// Compile lowers prog to machine code and returns an executable Program.
// heap is installed as runtime.ActiveHeap for the lifetime of the
// compiled code's execution: it is a process-wide singleton generated
// code needs cheap access to without threading a heap pointer through
// every runtime-helper call site (spec.md §5). collector is installed
// as runtime.ActiveCollector the same way, so a host call that hits
// ErrHeapExhausted can run one Collect-and-retry cycle itself
// (spec.md §4.3) instead of propagating exhaustion immediately.
//
// collector's root set is accepted (and will be needed by a future
// fuller GC integration) but its Collect cycle cannot see JIT-local
// variables as roots: they live on the native stack frame this package
// builds, not in Go-managed memory, so they cannot be registered into a
// gc.RootSet without either conservative stack scanning or a shadow
// value stack — both out of scope for this implementation (see
// DESIGN.md). A collection triggered while compiled code is on the
// stack would not see its locals as roots; the host must avoid
// collecting mid-call, and the retry Collect this package wires in only
// reclaims objects already unreachable from registered roots at the
// moment of the failed allocation.
func Compile(prog *ast.Program, heap *object.Heap, collector *gc.Collector, cfg config.Config) (*Program, error) {
	runtime.SetActiveHeap(heap)
	runtime.SetActiveCollector(collector)

	c := &Compiler{
		heap:      heap,
		collector: collector,
		cfg:       cfg,
		functions: make(map[string]*ast.FunctionDecl),
		structs:   make(map[string]*structLayout),
	}

	if err := c.collectDeclarations(prog); err != nil {
		return nil, err
	}

	if err := c.measure(); err != nil {
		return nil, err
	}
	if err := c.allocatePage(); err != nil {
		return nil, err
	}
	if err := c.emit(); err != nil {
		return nil, err
	}

	if !c.cfg.ExecMem.RWXDirect {
		if err := execmem.ProtectExec(c.page); err != nil {
			return nil, err
		}
	}

	if err := c.materializeFunctionObjects(); err != nil {
		return nil, err
	}

	return &Program{Page: c.page, EntryOffset: c.funcOffset[entryName]}, nil
}

// flattenTopLevel inlines the *ast.Block an import produces in place of
// one declaration slot (parser.parseImport has no dedicated Import AST
// node — spec.md's data model doesn't list one — so an import site is
// just a Block of the imported file's declarations sitting where the
// import statement was).
func flattenTopLevel(decls []ast.Node) []ast.Node {
	var out []ast.Node
	for _, d := range decls {
		if blk, ok := d.(*ast.Block); ok {
			out = append(out, flattenTopLevel(blk.Statements)...)
			continue
		}
		out = append(out, d)
	}
	return out
}

func (c *Compiler) collectDeclarations(prog *ast.Program) error {
	decls := flattenTopLevel(prog.Declarations)

	var entryStatements []ast.Node
	for _, d := range decls {
		switch n := d.(type) {
		case *ast.FunctionDecl:
			if n.Async {
				return newError(n.Line(), "async functions are rejected at compile time (SPEC_FULL.md: no coroutine support in this build)")
			}
			if len(n.Params) > maxCallArity {
				return newError(n.Line(), "function %q takes %d parameters, more than the %d this build can pass", n.Name, len(n.Params), maxCallArity)
			}
			if _, dup := c.functions[n.Name]; dup {
				return newError(n.Line(), "function %q redeclared", n.Name)
			}
			if _, reserved := builtins[n.Name]; reserved {
				return newError(n.Line(), "function %q shadows a built-in of the same name", n.Name)
			}
			c.functions[n.Name] = n
			c.order = append(c.order, n.Name)
		case *ast.StructDecl:
			c.structs[n.Name] = buildStructLayout(n)
		default:
			entryStatements = append(entryStatements, n)
		}
	}

	entryBody := ast.NewBlock(0, entryStatements)
	c.functions[entryName] = ast.NewFunctionDecl(0, entryName, nil, ast.TypeRef{}, entryBody, false)
	c.order = append([]string{entryName}, c.order...)
	return nil
}

// measure runs the throwaway scratch-buffer pass described in the
// package doc comment.
func (c *Compiler) measure() error {
	c.measuring = true
	defer func() { c.measuring = false }()

	c.resolveTarget = func(string) uintptr { return 0 }
	c.funcLen = make(map[string]int)

	scratch := make([]byte, 256*1024)
	for _, name := range c.order {
		out := asm.NewAssembler(scratch)
		if err := c.compileFunctionBody(c.functions[name], out); err != nil {
			return err
		}
		c.funcLen[name] = out.Len()
	}
	return nil
}

func (c *Compiler) allocatePage() error {
	c.funcOffset = make(map[string]int)
	total := 0
	for _, name := range c.order {
		c.funcOffset[name] = total
		total += c.funcLen[name]
	}

	page, err := execmem.AllocExec(total, c.cfg.ExecMem.RWXDirect)
	if err != nil {
		return err
	}
	c.page = page
	return nil
}

// emit runs the real pass: identical lowering logic to measure, but
// against the final page and with call targets resolved to real
// addresses. Because every instruction's length is independent of its
// immediate operand's value, this pass writes exactly funcLen[name]
// bytes per function, landing each one at the offset the measuring pass
// predicted.
func (c *Compiler) emit() error {
	base := c.page.Addr()
	c.resolveTarget = func(name string) uintptr {
		return base + uintptr(c.funcOffset[name])
	}

	out := asm.NewAssembler(c.page.Bytes())
	for _, name := range c.order {
		if out.Len() != c.funcOffset[name] {
			return newError(0, "internal: offset mismatch emitting %q (measured %d, at %d)", name, c.funcOffset[name], out.Len())
		}
		if err := c.compileFunctionBody(c.functions[name], out); err != nil {
			return err
		}
	}
	return nil
}

// compileFunctionBody prescans fd's body to size its frame, then emits
// the prologue, body, implicit fall-through return, and epilogue
// (spec.md §4.7's "Function declaration" lowering).
func (c *Compiler) compileFunctionBody(fd *ast.FunctionDecl, out *asm.Assembler) error {
	fr := newFrame()
	for _, p := range fd.Params {
		fr.declare(p.Name)
		if !p.Type.IsArray && !isPrimitiveType(p.Type.Name) {
			fr.declareType(p.Name, p.Type.Name)
		}
	}
	c.prescan(fd.Body, fr)

	if err := out.Push(asm.RBP); err != nil {
		return err
	}
	if err := out.MovRegReg(asm.RBP, asm.RSP); err != nil {
		return err
	}
	if frameSize := fr.size(); frameSize > 0 {
		if err := out.SubRegImm32(asm.RSP, frameSize); err != nil {
			return err
		}
	}

	// Spill each incoming argument register into its parameter's slot.
	for i, p := range fd.Params {
		off, _ := fr.lookup(p.Name)
		if err := out.MovMemReg(asm.RBP, off, asm.ArgRegs[i]); err != nil {
			return err
		}
	}

	if err := c.lowerBlock(fd.Body, fr, out); err != nil {
		return err
	}

	// Implicit `return nil;` at fall-through.
	if err := out.MovRegImm64(asm.RAX, uint64(value.Nil)); err != nil {
		return err
	}
	return c.emitEpilogue(out)
}

func (c *Compiler) emitEpilogue(out *asm.Assembler) error {
	if err := out.MovRegReg(asm.RSP, asm.RBP); err != nil {
		return err
	}
	if err := out.Pop(asm.RBP); err != nil {
		return err
	}
	return out.Ret()
}

// emitUserCall bakes addr into a MOV r64,imm64 ; CALL r64 sequence
// (spec.md §6: "Each is invoked by baking its absolute address into a
// MOV imm64; CALL reg sequence") to invoke another JIT-compiled
// function. Both the call site and the callee's prologue are generated
// by this compiler using the same argument convention, so — unlike
// emitHostCall below — no register re-mapping is needed here: arguments
// must already be in place in asm.ArgRegs before calling this.
func (c *Compiler) emitUserCall(out *asm.Assembler, addr uintptr) error {
	if err := out.MovRegImm64(asm.RAX, uint64(addr)); err != nil {
		return err
	}
	return out.CallReg(asm.RAX)
}

// emitHostCall invokes a genuine Go function — a runtime or stdlib
// helper resolved through runtime.HelperAddr — rather than another
// JIT-compiled function. This needs more than a bare CALL: Go compiles
// ordinary functions under the register-based ABIInternal convention,
// which assigns a function's first integer/pointer arguments to
// RAX, RBX, RCX, RDI, RSI, R8, R9, R10, R11 in that order (and returns
// its first result in RAX) — not the System V RDI, RSI, RDX, RCX order
// asm.ArgRegs lists for this compiler's own call sites. Every call site
// preparing a host call stages its arguments into asm.ArgRegs exactly
// as it would for a user call; emitHostCall re-maps the first arity of
// them into the ABIInternal registers the callee will actually read
// from before calling. arity is capped at len(abiArgRegs): nothing this
// build calls into needs more than three arguments (RuntimeIndexSet is
// the high-water mark), so a fourth ABIInternal slot is never needed.
//
// The re-mapping reads only from RDI, RSI, RDX (the first three
// asm.ArgRegs) and writes only to RAX, RBX, RCX — disjoint register
// sets, so the order of the individual moves never clobbers a source
// the loop still needs. RDI is therefore always free again once the
// loop completes (its own value, if any, was already copied out in the
// first move), and doubles as the scratch register for the callee's
// address.
func (c *Compiler) emitHostCall(out *asm.Assembler, addr uintptr, arity int) error {
	abiArgRegs := [3]asm.Reg{asm.RAX, asm.RBX, asm.RCX}
	if arity > len(abiArgRegs) {
		return newError(0, "internal: host call arity %d exceeds the %d this build can re-map", arity, len(abiArgRegs))
	}
	for i := 0; i < arity; i++ {
		if err := out.MovRegReg(abiArgRegs[i], asm.ArgRegs[i]); err != nil {
			return err
		}
	}
	if err := out.MovRegImm64(asm.RDI, uint64(addr)); err != nil {
		return err
	}
	return out.CallReg(asm.RDI)
}

// emitHostCallUnary stages a single already-evaluated operand (sitting
// in RAX, per the stack-machine convention every expression lowering
// leaves its result in) into asm.ArgRegs[0] before calling emitHostCall,
// matching every other host call site's "stage into asm.ArgRegs, then
// re-map" shape instead of special-casing the single-argument case.
func (c *Compiler) emitHostCallUnary(out *asm.Assembler, addr uintptr) error {
	if err := out.MovRegReg(asm.RDI, asm.RAX); err != nil {
		return err
	}
	return c.emitHostCall(out, addr, 1)
}

// materializeFunctionObjects allocates a Function heap object for every
// user-declared function once the real pass has resolved final
// addresses (spec.md §3's Function variant: "entrypoint, arity, name").
// Nothing in this build's call sites dereferences these back (calls
// resolve directly by name at compile time, per spec.md §4.7), but the
// object model still names Function as a first-class heap kind, and
// runtime.Format already renders one — so every compiled function gets
// a real, inspectable heap representative rather than leaving the
// Function object kind unconstructed dead code.
func (c *Compiler) materializeFunctionObjects() error {
	base := c.page.Addr()
	for _, name := range c.order {
		if name == entryName {
			continue
		}
		fd := c.functions[name]
		nameAddr, err := c.heap.NewString(name)
		if err != nil {
			return err
		}
		if _, err := c.heap.NewFunction(base+uintptr(c.funcOffset[name]), int32(len(fd.Params)), nameAddr); err != nil {
			return err
		}
	}
	return nil
}
