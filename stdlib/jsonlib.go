package stdlib

import (
	"encoding/json"

	"github.com/vanarize/vanarize/object"
	"github.com/vanarize/vanarize/runtime"
	"github.com/vanarize/vanarize/value"
)

// NativeJsonStringify renders v as a JSON string allocated on the
// active heap. No JSON library appears anywhere in the retrieved
// example pack, so this is built on the standard library's
// encoding/json (SPEC_FULL.md §3) rather than an ecosystem dependency —
// the one domain concern with no pack-grounded candidate.
//
// Structs serialize positionally, as a JSON array of their fields: the
// heap's Struct representation (object.StructObj) has no field-name
// metadata at run time, only a field count (SPEC_FULL.md §4's
// array-and-struct-are-both-just-a-Struct representation), so there is
// no source of key names to reconstruct a JSON object from one.
func NativeJsonStringify(v value.Value) value.Value {
	encoded, err := json.Marshal(toGoValue(v))
	if err != nil {
		runtime.LastError = err
		return value.Nil
	}
	addr, err := runtime.CollectAndRetry(func() (uintptr, error) { return runtime.ActiveHeap.NewString(string(encoded)) })
	if err != nil {
		runtime.LastError = err
		return value.Nil
	}
	return value.ObjToValue(addr)
}

// NativeJsonParseNumber parses s (a JSON text holding a single scalar:
// a number, string, bool, or null) into the corresponding Value. A full
// recursive array/object parse would need to allocate Struct objects of
// a shape the parsed JSON dictates, which NativeJsonStringify's
// field-name limitation above already rules out representing faithfully
// for objects; scalars round-trip exactly, so this is where the
// implementation stops rather than accept a lossy encoding silently.
func NativeJsonParseNumber(s value.Value) value.Value {
	if !value.IsObj(s) {
		return value.Nil
	}
	addr := value.ValueToObj(s)
	if object.KindAt(addr) != object.KindString {
		return value.Nil
	}
	text := object.StringAt(addr).String()

	var scalar any
	if err := json.Unmarshal([]byte(text), &scalar); err != nil {
		runtime.LastError = err
		return value.Nil
	}
	return fromGoScalar(scalar)
}

func toGoValue(v value.Value) any {
	switch {
	case value.IsNumber(v):
		return value.ValueToNumber(v)
	case value.IsBool(v):
		return value.ValueToBool(v)
	case value.IsNil(v):
		return nil
	case value.IsObj(v):
		addr := value.ValueToObj(v)
		switch object.KindAt(addr) {
		case object.KindString:
			return object.StringAt(addr).String()
		case object.KindStruct:
			fields := object.StructAt(addr).Fields()
			out := make([]any, len(fields))
			for i, f := range fields {
				out[i] = toGoValue(f)
			}
			return out
		default:
			return nil
		}
	default:
		return nil
	}
}

func fromGoScalar(v any) value.Value {
	switch t := v.(type) {
	case float64:
		return value.NumberToValue(t)
	case bool:
		return value.BoolToValue(t)
	case string:
		addr, err := runtime.CollectAndRetry(func() (uintptr, error) { return runtime.ActiveHeap.NewString(t) })
		if err != nil {
			runtime.LastError = err
			return value.Nil
		}
		return value.ObjToValue(addr)
	default:
		return value.Nil
	}
}
