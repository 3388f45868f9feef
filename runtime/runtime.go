// Package runtime implements the host callbacks emitted code calls back
// into (spec.md §6): the polymorphic Value operators the code generator
// cannot resolve purely in machine code, and the print primitive.
package runtime

import (
	"fmt"
	"math"
	"strconv"

	"github.com/vanarize/vanarize/object"
	"github.com/vanarize/vanarize/value"
)

// LastError is the process-wide "last error" flag spec.md §7 calls for
// in place of the source's silent fallthrough on a runtime type
// mismatch. The host clears it before running compiled code and
// inspects it after the program returns; emitted code never reads it
// directly.
var LastError error

// RuntimeAdd implements the polymorphic `+` operator: numbers add
// arithmetically, strings concatenate into a freshly allocated String on
// heap. Any other pairing is a type mismatch (spec.md §7).
func RuntimeAdd(heap *object.Heap, a, b value.Value) value.Value {
	if value.IsNumber(a) && value.IsNumber(b) {
		return value.NumberToValue(value.ValueToNumber(a) + value.ValueToNumber(b))
	}
	if value.IsObj(a) && value.IsObj(b) {
		addrA, addrB := value.ValueToObj(a), value.ValueToObj(b)
		if object.KindAt(addrA) == object.KindString && object.KindAt(addrB) == object.KindString {
			sa := object.StringAt(addrA).String()
			sb := object.StringAt(addrB).String()
			addr, err := collectAndRetry(func() (uintptr, error) { return heap.NewString(sa + sb) })
			if err != nil {
				LastError = err
				return value.Nil
			}
			return value.ObjToValue(addr)
		}
	}
	LastError = fmt.Errorf("RuntimeAdd: incompatible operand kinds")
	return value.Nil
}

// RuntimeEqual implements `==`. Objects compare by pointer identity, not
// structural/content equality — grounded on the original's
// vanarize_equal (SPEC_FULL.md §4), which never dereferences a string's
// contents to compare them.
func RuntimeEqual(a, b value.Value) value.Value {
	switch {
	case value.IsNumber(a) && value.IsNumber(b):
		return value.BoolToValue(value.ValueToNumber(a) == value.ValueToNumber(b))
	case value.IsBool(a) && value.IsBool(b):
		return value.BoolToValue(value.ValueToBool(a) == value.ValueToBool(b))
	case value.IsNil(a) && value.IsNil(b):
		return value.True
	case value.IsObj(a) && value.IsObj(b):
		return value.BoolToValue(value.ValueToObj(a) == value.ValueToObj(b))
	default:
		return value.False
	}
}

// RuntimeSub, RuntimeMul and RuntimeDiv round out the numeric operators
// the stack-machine lowering needs (spec.md §4.7's PLUS/MINUS/STAR, and
// the factor-level `/` the grammar in spec.md §4.2 requires but the
// assembler's instruction set has no floating-point form for). Boxed
// numbers are real IEEE-754 bit patterns once literals are NaN-boxed
// correctly (SPEC_FULL.md §5 item 3); raw integer ADD/SUB/IMUL on those
// bit patterns would not compute the corresponding float result, so
// these — like RuntimeAdd — do the arithmetic in Go and box the result.
// RuntimeDiv additionally sidesteps the x86 #DE fault a raw IDIV takes
// on division by zero: Go float division by zero yields +Inf/-Inf/NaN.
func RuntimeSub(a, b value.Value) value.Value {
	return value.NumberToValue(value.ValueToNumber(a) - value.ValueToNumber(b))
}

func RuntimeMul(a, b value.Value) value.Value {
	return value.NumberToValue(value.ValueToNumber(a) * value.ValueToNumber(b))
}

func RuntimeDiv(a, b value.Value) value.Value {
	return value.NumberToValue(value.ValueToNumber(a) / value.ValueToNumber(b))
}

// RuntimeLess, RuntimeLessEqual and RuntimeNotEqual implement the
// remaining comparison operators as boxed-boolean-returning helpers,
// for the same bit-pattern-correctness reason as the arithmetic helpers
// above. Greater and greater-or-equal reuse these with swapped operands
// at the call site rather than adding two more helpers.
func RuntimeLess(a, b value.Value) value.Value {
	return value.BoolToValue(value.ValueToNumber(a) < value.ValueToNumber(b))
}

func RuntimeLessEqual(a, b value.Value) value.Value {
	return value.BoolToValue(value.ValueToNumber(a) <= value.ValueToNumber(b))
}

func RuntimeNotEqual(a, b value.Value) value.Value {
	return value.BoolToValue(RuntimeEqual(a, b) == value.False)
}

// RuntimeIndexGet and RuntimeIndexSet implement `[]` indexing. Unlike
// property access (a fixed compile-time byte offset, SPEC_FULL.md §4),
// the index is only known at run time and arrives as a NaN-boxed
// double; converting it to a byte offset needs a float-to-integer
// conversion the assembler's instruction set has no opcode for
// (spec.md §4.6 lists no SSE instructions), so indexing is a host call
// rather than an inline MOV [base+disp].
//
// An array literal's backing Struct holds its length boxed in field 0
// (SPEC_FULL.md §4), with elements packed starting at field 1 — so a
// logical index i lives at field i+1, and bounds are checked against
// the length in field 0, not against the Struct's raw field count.
func RuntimeIndexGet(collection, index value.Value) value.Value {
	if !value.IsObj(collection) || !value.IsNumber(index) {
		LastError = fmt.Errorf("RuntimeIndexGet: invalid collection or index")
		return value.Nil
	}
	st := object.StructAt(value.ValueToObj(collection))
	fields := st.Fields()
	if len(fields) == 0 {
		LastError = fmt.Errorf("RuntimeIndexGet: not an array")
		return value.Nil
	}
	i := int(value.ValueToNumber(index))
	length := int(value.ValueToNumber(fields[0]))
	if i < 0 || i >= length {
		LastError = fmt.Errorf("RuntimeIndexGet: index %d out of range", i)
		return value.Nil
	}
	return fields[i+1]
}

func RuntimeIndexSet(collection, index, v value.Value) value.Value {
	if !value.IsObj(collection) || !value.IsNumber(index) {
		LastError = fmt.Errorf("RuntimeIndexSet: invalid collection or index")
		return value.Nil
	}
	st := object.StructAt(value.ValueToObj(collection))
	fields := st.Fields()
	if len(fields) == 0 {
		LastError = fmt.Errorf("RuntimeIndexSet: not an array")
		return value.Nil
	}
	i := int(value.ValueToNumber(index))
	length := int(value.ValueToNumber(fields[0]))
	if i < 0 || i >= length {
		LastError = fmt.Errorf("RuntimeIndexSet: index %d out of range", i)
		return value.Nil
	}
	fields[i+1] = v
	return v
}

// RuntimeNegate and RuntimeNot implement the two unary operators (spec.md
// §4.2's unary production). Both are host calls for the same bit-pattern
// reason as the binary operators above: a raw x86 NEG on a NaN-boxed
// double's bit pattern does not compute its arithmetic negation.
func RuntimeNegate(v value.Value) value.Value {
	return value.NumberToValue(-value.ValueToNumber(v))
}

func RuntimeNot(v value.Value) value.Value {
	return value.BoolToValue(!value.ValueToBool(v))
}

// NativePrint writes v to standard output followed by a newline
// (exercised by spec.md §8's end-to-end scenarios, which check stdout
// verbatim).
func NativePrint(v value.Value) {
	fmt.Println(Format(v))
}

// Format renders v the way NativePrint does, exposed separately so
// tests can check output without capturing stdout.
func Format(v value.Value) string {
	switch {
	case value.IsNumber(v):
		return formatNumber(value.ValueToNumber(v))
	case value.IsBool(v):
		if value.ValueToBool(v) {
			return "true"
		}
		return "false"
	case value.IsNil(v):
		return "nil"
	case value.IsObj(v):
		return formatObj(value.ValueToObj(v))
	default:
		return "<invalid>"
	}
}

func formatObj(addr uintptr) string {
	switch object.KindAt(addr) {
	case object.KindString:
		return object.StringAt(addr).String()
	case object.KindStruct:
		return "<struct>"
	case object.KindFunction:
		return "<function>"
	default:
		return fmt.Sprintf("<object %#x>", addr)
	}
}

func formatNumber(n float64) string {
	if !math.IsInf(n, 0) && n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return strconv.FormatFloat(n, 'f', 0, 64)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}
