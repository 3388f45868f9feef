package codegen

import "github.com/vanarize/vanarize/stdlib"

// builtin names a stdlib native helper reachable from compiled source
// under a reserved call-expression name, together with the argument
// count lowerCall must enforce before baking a call site to it — and
// that emitHostCall needs to know how many asm.ArgRegs to re-map into
// Go's ABIInternal argument registers, since stdlib helpers share
// runtime's Value-in/Value-out ABI (SPEC_FULL.md §3: "registered into
// the same runtime-helper call table as Runtime_Add/Runtime_Equal/
// Native_Print").
type builtin struct {
	fn    any
	arity int
}

// builtins reserves these names ahead of user-declared functions:
// collectDeclarations rejects a function declaration that shadows one.
var builtins = map[string]builtin{
	"sqrt":          {stdlib.NativeMathSqrt, 1},
	"pow":           {stdlib.NativeMathPow, 2},
	"abs":           {stdlib.NativeMathAbs, 1},
	"floor":         {stdlib.NativeMathFloor, 1},
	"ceil":          {stdlib.NativeMathCeil, 1},
	"jsonStringify": {stdlib.NativeJsonStringify, 1},
	"jsonParse":     {stdlib.NativeJsonParseNumber, 1},
	"httpGet":       {stdlib.NativeHttpGet, 1},
	"benchmarkNow":  {stdlib.NativeBenchmarkNow, 0},
}
