// Package stdlib implements SPEC_FULL.md §3's domain stack: native
// helpers exposed to generated code under the same ABI as
// runtime.RuntimeAdd and runtime.NativePrint — a Go function taking and
// returning value.Value, callable by baking its resolved address
// (runtime.HelperAddr) into a `MOV imm64; CALL reg` site. codegen's
// lowerCall resolves a call whose callee name isn't a user-declared
// function against the table in builtins.go before giving up.
package stdlib

import (
	"math"

	"github.com/vanarize/vanarize/value"
)

// NativeMathSqrt, NativeMathPow, NativeMathAbs, NativeMathFloor and
// NativeMathCeil wrap Go's math package (spec.md's "standard-library
// value functions" collaborator, §6) the same way runtime's arithmetic
// helpers wrap raw float64 operators: bit-pattern-correct on NaN-boxed
// operands by computing in Go and re-boxing the result.
func NativeMathSqrt(x value.Value) value.Value {
	return value.NumberToValue(math.Sqrt(value.ValueToNumber(x)))
}

func NativeMathPow(base, exp value.Value) value.Value {
	return value.NumberToValue(math.Pow(value.ValueToNumber(base), value.ValueToNumber(exp)))
}

func NativeMathAbs(x value.Value) value.Value {
	return value.NumberToValue(math.Abs(value.ValueToNumber(x)))
}

func NativeMathFloor(x value.Value) value.Value {
	return value.NumberToValue(math.Floor(value.ValueToNumber(x)))
}

func NativeMathCeil(x value.Value) value.Value {
	return value.NumberToValue(math.Ceil(value.ValueToNumber(x)))
}
