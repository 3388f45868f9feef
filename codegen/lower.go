package codegen

import (
	"fmt"

	"github.com/vanarize/vanarize/asm"
	"github.com/vanarize/vanarize/ast"
	"github.com/vanarize/vanarize/object"
	"github.com/vanarize/vanarize/runtime"
	"github.com/vanarize/vanarize/value"
)

func (c *Compiler) lowerBlock(b *ast.Block, fr *frame, out *asm.Assembler) error {
	for _, stmt := range b.Statements {
		if err := c.lowerStatement(stmt, fr, out); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) lowerStatement(node ast.Node, fr *frame, out *asm.Assembler) error {
	switch n := node.(type) {
	case *ast.VarDecl:
		return c.lowerVarDecl(n, fr, out)
	case *ast.IfStmt:
		return c.lowerIf(n, fr, out)
	case *ast.ForStmt:
		return c.lowerFor(n, fr, out)
	case *ast.ReturnStmt:
		return c.lowerReturn(n, fr, out)
	case *ast.PrintStmt:
		return c.lowerPrint(n, fr, out)
	case *ast.ExprStmt:
		return c.lowerExpr(n.Expr, fr, out)
	case *ast.Block:
		return c.lowerBlock(n, fr, out)
	default:
		return newError(node.Line(), "unsupported statement node %T", node)
	}
}

func (c *Compiler) lowerVarDecl(n *ast.VarDecl, fr *frame, out *asm.Assembler) error {
	off, ok := fr.lookup(n.Name)
	if !ok {
		return newError(n.Line(), "internal: no frame slot reserved for %q", n.Name)
	}
	if n.Initializer != nil {
		if err := c.lowerExpr(n.Initializer, fr, out); err != nil {
			return err
		}
	} else if err := out.MovRegImm64(asm.RAX, uint64(value.Nil)); err != nil {
		return err
	}
	return out.MovMemReg(asm.RBP, off, asm.RAX)
}

// lowerIf follows spec.md §4.7 literally: evaluate the condition, CMP
// against the false bit pattern, forward JE to the else branch (or the
// end, if there is none), then a forward JMP from the end of the
// then-branch past the else-branch.
func (c *Compiler) lowerIf(n *ast.IfStmt, fr *frame, out *asm.Assembler) error {
	if err := c.lowerExpr(n.Condition, fr, out); err != nil {
		return err
	}
	if err := out.MovRegImm64(asm.RCX, uint64(value.False)); err != nil {
		return err
	}
	if err := out.CmpRegReg(asm.RAX, asm.RCX); err != nil {
		return err
	}
	elseJump, err := out.Jcc(asm.CondE)
	if err != nil {
		return err
	}

	if err := c.lowerBlock(n.Then, fr, out); err != nil {
		return err
	}
	endJump, err := out.Jmp()
	if err != nil {
		return err
	}

	elseTarget := out.Len()
	if n.Else != nil {
		if err := c.lowerBlock(n.Else, fr, out); err != nil {
			return err
		}
	}
	endTarget := out.Len()

	if err := out.Patch32(elseJump, elseTarget); err != nil {
		return err
	}
	return out.Patch32(endJump, endTarget)
}

// lowerFor mirrors spec.md §4.7: initializer, loop-top label, condition
// test with a forward exit jump, body, increment, unconditional jump
// back to the top, then patch the exit.
func (c *Compiler) lowerFor(n *ast.ForStmt, fr *frame, out *asm.Assembler) error {
	if n.Init != nil {
		if err := c.lowerForClause(n.Init, fr, out); err != nil {
			return err
		}
	}

	loopTop := out.Len()

	var exitJump int
	haveCond := n.Condition != nil
	if haveCond {
		if err := c.lowerExpr(n.Condition, fr, out); err != nil {
			return err
		}
		if err := out.MovRegImm64(asm.RCX, uint64(value.False)); err != nil {
			return err
		}
		if err := out.CmpRegReg(asm.RAX, asm.RCX); err != nil {
			return err
		}
		j, err := out.Jcc(asm.CondE)
		if err != nil {
			return err
		}
		exitJump = j
	}

	if err := c.lowerBlock(n.Body, fr, out); err != nil {
		return err
	}

	if n.Increment != nil {
		if err := c.lowerForClause(n.Increment, fr, out); err != nil {
			return err
		}
	}

	backJump, err := out.Jmp()
	if err != nil {
		return err
	}
	if err := out.Patch32(backJump, loopTop); err != nil {
		return err
	}

	if haveCond {
		if err := out.Patch32(exitJump, out.Len()); err != nil {
			return err
		}
	}
	return nil
}

// lowerForClause lowers a for-loop's init/increment clause, which the
// parser hands back as a *ast.VarDecl (typed initializer), an
// *ast.ExprStmt (untyped initializer, parsed as an expression
// statement), or a bare expression (e.g. the `i = i + 1` increment,
// parsed directly by parseExpression without an ExprStmt wrapper).
func (c *Compiler) lowerForClause(node ast.Node, fr *frame, out *asm.Assembler) error {
	if vd, ok := node.(*ast.VarDecl); ok {
		return c.lowerVarDecl(vd, fr, out)
	}
	if es, ok := node.(*ast.ExprStmt); ok {
		return c.lowerExpr(es.Expr, fr, out)
	}
	return c.lowerExpr(node, fr, out)
}

func (c *Compiler) lowerReturn(n *ast.ReturnStmt, fr *frame, out *asm.Assembler) error {
	if n.Value != nil {
		if err := c.lowerExpr(n.Value, fr, out); err != nil {
			return err
		}
	} else if err := out.MovRegImm64(asm.RAX, uint64(value.Nil)); err != nil {
		return err
	}
	return c.emitEpilogue(out)
}

// lowerPrint follows spec.md §4.7: the argument goes into RDI, then a
// call to Native_Print.
func (c *Compiler) lowerPrint(n *ast.PrintStmt, fr *frame, out *asm.Assembler) error {
	if err := c.lowerExpr(n.Value, fr, out); err != nil {
		return err
	}
	if err := out.MovRegReg(asm.RDI, asm.RAX); err != nil {
		return err
	}
	return c.emitHostCall(out, runtime.HelperAddr(runtime.NativePrint), 1)
}

func (c *Compiler) lowerExpr(node ast.Node, fr *frame, out *asm.Assembler) error {
	switch n := node.(type) {
	case *ast.NumberLiteral:
		// Box the literal's bit pattern rather than emitting the raw
		// integer: SPEC_FULL.md §5's NaN-boxing-of-literals fix.
		return out.MovRegImm64(asm.RAX, uint64(value.NumberToValue(n.Value)))
	case *ast.StringLiteral:
		return c.lowerStringLiteral(n, out)
	case *ast.KeywordLiteral:
		return out.MovRegImm64(asm.RAX, uint64(keywordValue(n.Kind)))
	case *ast.IdentifierExpr:
		off, ok := fr.lookup(n.Name)
		if !ok {
			return newError(n.Line(), "undefined variable %q", n.Name)
		}
		return out.MovRegMem(asm.RAX, asm.RBP, off)
	case *ast.UnaryExpr:
		return c.lowerUnary(n, fr, out)
	case *ast.BinaryExpr:
		return c.lowerBinary(n, fr, out)
	case *ast.Assignment:
		return c.lowerAssignment(n, fr, out)
	case *ast.PropertyGet:
		return c.lowerPropertyGet(n, fr, out)
	case *ast.PropertySet:
		return c.lowerPropertySet(n, fr, out)
	case *ast.IndexGet:
		return c.lowerIndexGet(n, fr, out)
	case *ast.IndexSet:
		return c.lowerIndexSet(n, fr, out)
	case *ast.CallExpr:
		return c.lowerCall(n, fr, out)
	case *ast.ArrayLiteral:
		return c.lowerArrayLiteral(n, fr, out)
	case *ast.StructInit:
		return c.lowerStructInit(n, fr, out)
	case *ast.AwaitExpr:
		// SPEC_FULL.md §5 open question 2: await parses (the AST node
		// exists) but codegen refuses it outright rather than silently
		// lowering it as a no-op, which would misrepresent a suspend
		// point as having actually happened.
		return newError(n.Line(), "await is not supported by this code generator")
	default:
		return newError(node.Line(), "unsupported expression node %T", node)
	}
}

func keywordValue(kind ast.KeywordLiteralKind) value.Value {
	switch kind {
	case ast.KeywordTrue:
		return value.True
	case ast.KeywordFalse:
		return value.False
	default:
		return value.Nil
	}
}

// lowerStringLiteral allocates the string once, at compile time — its
// contents are fixed in the source text, so there is nothing to
// recompute at run time. During the measuring pass (see compiler.go)
// this allocation is skipped: the pass never executes and the
// placeholder 0 immediate encodes to the same length as a real address.
func (c *Compiler) lowerStringLiteral(n *ast.StringLiteral, out *asm.Assembler) error {
	if c.measuring {
		return out.MovRegImm64(asm.RAX, 0)
	}
	addr, err := c.heap.NewString(n.Value)
	if err != nil {
		return err
	}
	return out.MovRegImm64(asm.RAX, uint64(value.ObjToValue(addr)))
}

func (c *Compiler) lowerUnary(n *ast.UnaryExpr, fr *frame, out *asm.Assembler) error {
	if err := c.lowerExpr(n.Operand, fr, out); err != nil {
		return err
	}
	switch n.Op {
	case ast.OpNegate:
		return c.emitHostCallUnary(out, runtime.HelperAddr(runtime.RuntimeNegate))
	case ast.OpNot:
		return c.emitHostCallUnary(out, runtime.HelperAddr(runtime.RuntimeNot))
	default:
		return newError(n.Line(), "unsupported unary operator")
	}
}

// lowerBinary implements spec.md §4.7's stack-machine binary-operator
// lowering — evaluate left into RAX, PUSH, evaluate right into RAX,
// POP into RCX, then issue the operator — but routes every operator
// through a Go runtime helper instead of an inline x86 instruction.
//
// The literal spec text calls for ADD/SUB/IMUL on the operands' raw bit
// patterns and a CMP+Jcc skeleton for comparisons. That is correct only
// for unboxed machine integers; here the operands are NaN-boxed
// IEEE-754 doubles (SPEC_FULL.md §5 fixes literals to box correctly),
// and integer ADD/SUB/IMUL on a double's bit pattern does not compute
// the bit pattern of the correct sum/difference/product. Worse, the
// assembler's Jcc set (spec.md §4.6: JE/JNE/JAE/JGE/JL, no JG/JLE) can't
// directly encode all four orderings, and a raw CMP on IEEE-754 bit
// patterns is only ordering-correct for non-negative floats. Routing
// arithmetic and ordering through RuntimeAdd/Sub/Mul/Div/Less/LessEqual
// keeps the operators numerically correct; > and >= are synthesized by
// swapping operands into Less/LessEqual rather than adding two more
// helpers. Inline CMP+Jcc is still used, faithfully, for if/for
// condition testing against the False singleton (lowerIf/lowerFor) —
// that is bit-pattern equality against a known constant, not a
// magnitude comparison, so it has none of this problem.
func (c *Compiler) lowerBinary(n *ast.BinaryExpr, fr *frame, out *asm.Assembler) error {
	if err := c.lowerExpr(n.Left, fr, out); err != nil {
		return err
	}
	if err := out.Push(asm.RAX); err != nil {
		return err
	}
	if err := c.lowerExpr(n.Right, fr, out); err != nil {
		return err
	}
	if err := out.Pop(asm.RCX); err != nil {
		return err
	}
	// RCX = left, RAX = right.

	left, right := asm.RCX, asm.RAX
	if n.Op == ast.OpGreater || n.Op == ast.OpGreaterEqual {
		// a > b == b < a; a >= b == b <= a.
		left, right = asm.RAX, asm.RCX
	}
	if err := out.MovRegReg(asm.RDI, left); err != nil {
		return err
	}
	if err := out.MovRegReg(asm.RSI, right); err != nil {
		return err
	}

	helper, err := binaryHelper(n.Op)
	if err != nil {
		return newError(n.Line(), "%v", err)
	}
	return c.emitHostCall(out, runtime.HelperAddr(helper), 2)
}

func binaryHelper(op ast.BinaryOp) (any, error) {
	switch op {
	case ast.OpAdd:
		return runtime.RuntimeAddGlobal, nil
	case ast.OpSub:
		return runtime.RuntimeSub, nil
	case ast.OpMul:
		return runtime.RuntimeMul, nil
	case ast.OpDiv:
		return runtime.RuntimeDiv, nil
	case ast.OpEqual:
		return runtime.RuntimeEqual, nil
	case ast.OpNotEqual:
		return runtime.RuntimeNotEqual, nil
	case ast.OpLess, ast.OpGreater:
		return runtime.RuntimeLess, nil
	case ast.OpLessEqual, ast.OpGreaterEqual:
		return runtime.RuntimeLessEqual, nil
	default:
		return nil, fmt.Errorf("unsupported binary operator %d", op)
	}
}

func (c *Compiler) lowerAssignment(n *ast.Assignment, fr *frame, out *asm.Assembler) error {
	off, ok := fr.lookup(n.Name)
	if !ok {
		return newError(n.Line(), "undefined variable %q", n.Name)
	}
	if err := c.lowerExpr(n.Value, fr, out); err != nil {
		return err
	}
	return out.MovMemReg(asm.RBP, off, asm.RAX)
}

// staticStructType resolves the compile-time-known struct type of an
// expression, when one can be determined without a general type
// checker: a variable/parameter's declared type, a struct-init
// literal's named type, a property chain walked one field at a time
// through structLayout.fieldType, or a function call's declared return
// type. Anything else (e.g. an array element) returns false, and the
// caller reports that the property access can't be resolved.
func (c *Compiler) staticStructType(node ast.Node, fr *frame) (string, bool) {
	switch n := node.(type) {
	case *ast.IdentifierExpr:
		return fr.lookupType(n.Name)
	case *ast.StructInit:
		return n.TypeName, n.TypeName != ""
	case *ast.PropertyGet:
		objType, ok := c.staticStructType(n.Object, fr)
		if !ok {
			return "", false
		}
		layout, ok := c.structs[objType]
		if !ok {
			return "", false
		}
		t, ok := layout.fieldType[n.Name]
		return t, ok
	case *ast.CallExpr:
		ident, ok := n.Callee.(*ast.IdentifierExpr)
		if !ok {
			return "", false
		}
		fd, ok := c.functions[ident.Name]
		if !ok || fd.ReturnType.IsArray || fd.ReturnType.Name == "" || isPrimitiveType(fd.ReturnType.Name) {
			return "", false
		}
		return fd.ReturnType.Name, true
	default:
		return "", false
	}
}

func (c *Compiler) resolveFieldIndex(objectExpr ast.Node, field string, fr *frame, line int) (int32, error) {
	structType, ok := c.staticStructType(objectExpr, fr)
	if !ok {
		return 0, newError(line, "cannot resolve a struct type for property %q", field)
	}
	layout, ok := c.structs[structType]
	if !ok {
		return 0, newError(line, "unknown struct type %q", structType)
	}
	idx, ok := layout.fieldIndex[field]
	if !ok {
		return 0, newError(line, "struct %s has no field %q", structType, field)
	}
	return idx, nil
}

// lowerPropertyGet resolves the field to a fixed compile-time byte
// offset and compiles straight to `AND` (unboxing the pointer via
// value.PointerMask) + `MOV r64,[base+disp32]` — no host call, unlike
// index access, because the field's position is known at compile time.
func (c *Compiler) lowerPropertyGet(n *ast.PropertyGet, fr *frame, out *asm.Assembler) error {
	idx, err := c.resolveFieldIndex(n.Object, n.Name, fr, n.Line())
	if err != nil {
		return err
	}
	if err := c.lowerExpr(n.Object, fr, out); err != nil {
		return err
	}
	if err := out.MovRegImm64(asm.RCX, value.PointerMask); err != nil {
		return err
	}
	if err := out.AndRegReg(asm.RAX, asm.RCX); err != nil {
		return err
	}
	return out.MovRegMem(asm.RAX, asm.RAX, object.StructFieldOffset(int(idx)))
}

func (c *Compiler) lowerPropertySet(n *ast.PropertySet, fr *frame, out *asm.Assembler) error {
	idx, err := c.resolveFieldIndex(n.Object, n.Name, fr, n.Line())
	if err != nil {
		return err
	}
	if err := c.lowerExpr(n.Object, fr, out); err != nil {
		return err
	}
	if err := out.Push(asm.RAX); err != nil {
		return err
	}
	if err := c.lowerExpr(n.Value, fr, out); err != nil {
		return err
	}
	if err := out.Pop(asm.RCX); err != nil {
		return err
	}
	if err := out.MovRegImm64(asm.RDX, value.PointerMask); err != nil {
		return err
	}
	if err := out.AndRegReg(asm.RCX, asm.RDX); err != nil {
		return err
	}
	if err := out.MovMemReg(asm.RCX, object.StructFieldOffset(int(idx)), asm.RAX); err != nil {
		return err
	}
	return nil
}

// lowerIndexGet and lowerIndexSet route through RuntimeIndexGet/Set
// instead of an inline MOV: the index is only known at run time and
// arrives as a NaN-boxed double, and converting it to an integer byte
// offset needs a float-to-integer conversion the assembler's
// instruction set has no opcode for (spec.md §4.6 lists no SSE
// instructions).
func (c *Compiler) lowerIndexGet(n *ast.IndexGet, fr *frame, out *asm.Assembler) error {
	if err := c.lowerExpr(n.Collection, fr, out); err != nil {
		return err
	}
	if err := out.Push(asm.RAX); err != nil {
		return err
	}
	if err := c.lowerExpr(n.Index, fr, out); err != nil {
		return err
	}
	if err := out.Pop(asm.RCX); err != nil {
		return err
	}
	if err := out.MovRegReg(asm.RDI, asm.RCX); err != nil {
		return err
	}
	if err := out.MovRegReg(asm.RSI, asm.RAX); err != nil {
		return err
	}
	return c.emitHostCall(out, runtime.HelperAddr(runtime.RuntimeIndexGet), 2)
}

func (c *Compiler) lowerIndexSet(n *ast.IndexSet, fr *frame, out *asm.Assembler) error {
	if err := c.lowerExpr(n.Collection, fr, out); err != nil {
		return err
	}
	if err := out.Push(asm.RAX); err != nil {
		return err
	}
	if err := c.lowerExpr(n.Index, fr, out); err != nil {
		return err
	}
	if err := out.Push(asm.RAX); err != nil {
		return err
	}
	if err := c.lowerExpr(n.Value, fr, out); err != nil {
		return err
	}
	if err := out.Pop(asm.RSI); err != nil { // index
		return err
	}
	if err := out.Pop(asm.RDI); err != nil { // collection
		return err
	}
	if err := out.MovRegReg(asm.RDX, asm.RAX); err != nil { // value
		return err
	}
	return c.emitHostCall(out, runtime.HelperAddr(runtime.RuntimeIndexSet), 3)
}

// lowerCall resolves the callee to a previously-registered user function
// (spec.md §4.7: "resolve callee name to a previously compiled function
// entrypoint"), evaluates arguments left-to-right, stages them through
// the stack so an argument's own evaluation can't clobber an
// already-placed argument register, then pops them into place in
// reverse.
func (c *Compiler) lowerCall(n *ast.CallExpr, fr *frame, out *asm.Assembler) error {
	ident, ok := n.Callee.(*ast.IdentifierExpr)
	if !ok {
		return newError(n.Line(), "call target must be a named function")
	}

	if b, ok := builtins[ident.Name]; ok {
		if len(n.Args) != b.arity {
			return newError(n.Line(), "%s expects %d argument(s), got %d", ident.Name, b.arity, len(n.Args))
		}
		if err := c.lowerCallArgs(n.Args, fr, out); err != nil {
			return err
		}
		return c.emitHostCall(out, runtime.HelperAddr(b.fn), b.arity)
	}

	fd, ok := c.functions[ident.Name]
	if !ok {
		return newError(n.Line(), "call to undefined function %q", ident.Name)
	}
	if len(n.Args) != len(fd.Params) {
		return newError(n.Line(), "function %q expects %d argument(s), got %d", ident.Name, len(fd.Params), len(n.Args))
	}
	if len(n.Args) > maxCallArity {
		return newError(n.Line(), "call passes %d arguments, more than the %d this build can pass", len(n.Args), maxCallArity)
	}

	if err := c.lowerCallArgs(n.Args, fr, out); err != nil {
		return err
	}
	return c.emitUserCall(out, c.resolveTarget(ident.Name))
}

// lowerCallArgs evaluates args left-to-right into RAX, staging each
// through the stack so evaluating a later argument can't clobber an
// earlier argument register, then pops them into place in reverse.
func (c *Compiler) lowerCallArgs(args []ast.Node, fr *frame, out *asm.Assembler) error {
	for _, arg := range args {
		if err := c.lowerExpr(arg, fr, out); err != nil {
			return err
		}
		if err := out.Push(asm.RAX); err != nil {
			return err
		}
	}
	for i := len(args) - 1; i >= 0; i-- {
		if err := out.Pop(asm.ArgRegs[i]); err != nil {
			return err
		}
	}
	return nil
}

// lowerArrayLiteral allocates the array's backing Struct (count+1
// fields; field 0 is the length, filled in by RuntimeNewArray), stashes
// its address in a temp frame slot so element evaluation can freely
// clobber RAX/RCX, then stores each element at its fixed field offset.
func (c *Compiler) lowerArrayLiteral(n *ast.ArrayLiteral, fr *frame, out *asm.Assembler) error {
	tempOff, ok := fr.temps[n]
	if !ok {
		return newError(n.Line(), "internal: no frame slot reserved for array literal")
	}

	count := value.NumberToValue(float64(len(n.Elements)))
	if err := out.MovRegImm64(asm.RDI, uint64(count)); err != nil {
		return err
	}
	if err := c.emitHostCall(out, runtime.HelperAddr(runtime.RuntimeNewArray), 1); err != nil {
		return err
	}
	if err := out.MovMemReg(asm.RBP, tempOff, asm.RAX); err != nil {
		return err
	}

	for i, el := range n.Elements {
		if err := c.lowerExpr(el, fr, out); err != nil {
			return err
		}
		if err := c.storeIntoTemp(out, tempOff, object.StructFieldOffset(i+1)); err != nil {
			return err
		}
	}

	return out.MovRegMem(asm.RAX, asm.RBP, tempOff)
}

// lowerStructInit allocates the struct's backing Struct sized to its
// declared field count, then stores each initializer field at its
// compile-time-resolved index.
func (c *Compiler) lowerStructInit(n *ast.StructInit, fr *frame, out *asm.Assembler) error {
	layout, ok := c.structs[n.TypeName]
	if !ok {
		return newError(n.Line(), "unknown struct type %q", n.TypeName)
	}
	tempOff, ok := fr.temps[n]
	if !ok {
		return newError(n.Line(), "internal: no frame slot reserved for struct literal")
	}

	fieldCount := value.NumberToValue(float64(layout.fieldCount))
	if err := out.MovRegImm64(asm.RDI, uint64(fieldCount)); err != nil {
		return err
	}
	if err := c.emitHostCall(out, runtime.HelperAddr(runtime.RuntimeNewStruct), 1); err != nil {
		return err
	}
	if err := out.MovMemReg(asm.RBP, tempOff, asm.RAX); err != nil {
		return err
	}

	for _, f := range n.Fields {
		idx, ok := layout.fieldIndex[f.Name]
		if !ok {
			return newError(n.Line(), "struct %s has no field %q", n.TypeName, f.Name)
		}
		if err := c.lowerExpr(f.Value, fr, out); err != nil {
			return err
		}
		if err := c.storeIntoTemp(out, tempOff, object.StructFieldOffset(int(idx))); err != nil {
			return err
		}
	}

	return out.MovRegMem(asm.RAX, asm.RBP, tempOff)
}

// storeIntoTemp stores RAX (a just-evaluated element/field value) into
// fieldOffset of the object whose boxed address lives in the frame's
// tempOff slot, unboxing it fresh each time rather than keeping a raw
// pointer live across arbitrary element expressions.
func (c *Compiler) storeIntoTemp(out *asm.Assembler, tempOff int32, fieldOffset int32) error {
	if err := out.MovRegMem(asm.RCX, asm.RBP, tempOff); err != nil {
		return err
	}
	if err := out.MovRegImm64(asm.RDX, value.PointerMask); err != nil {
		return err
	}
	if err := out.AndRegReg(asm.RCX, asm.RDX); err != nil {
		return err
	}
	return out.MovMemReg(asm.RCX, fieldOffset, asm.RAX)
}
