package stdlib

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vanarize/vanarize/object"
	"github.com/vanarize/vanarize/runtime"
	"github.com/vanarize/vanarize/value"
)

func TestNativeJsonStringifyScalars(t *testing.T) {
	runtime.SetActiveHeap(object.NewHeap(1 << 16))

	result := NativeJsonStringify(value.NumberToValue(42))
	require.True(t, value.IsObj(result))
	require.Equal(t, "42", object.StringAt(value.ValueToObj(result)).String())

	result = NativeJsonStringify(value.True)
	require.Equal(t, "true", object.StringAt(value.ValueToObj(result)).String())

	result = NativeJsonStringify(value.Nil)
	require.Equal(t, "null", object.StringAt(value.ValueToObj(result)).String())
}

func TestNativeJsonStringifyString(t *testing.T) {
	heap := object.NewHeap(1 << 16)
	runtime.SetActiveHeap(heap)

	addr, err := heap.NewString("hi")
	require.NoError(t, err)

	result := NativeJsonStringify(value.ObjToValue(addr))
	require.Equal(t, `"hi"`, object.StringAt(value.ValueToObj(result)).String())
}

func TestNativeJsonStringifyArray(t *testing.T) {
	heap := object.NewHeap(1 << 16)
	runtime.SetActiveHeap(heap)

	arrAddr, err := heap.NewStruct(2)
	require.NoError(t, err)
	fields := object.StructAt(arrAddr).Fields()
	fields[0] = value.NumberToValue(1)
	fields[1] = value.NumberToValue(2)

	result := NativeJsonStringify(value.ObjToValue(arrAddr))
	require.Equal(t, "[1,2]", object.StringAt(value.ValueToObj(result)).String())
}

func TestNativeJsonParseNumberRoundTrip(t *testing.T) {
	heap := object.NewHeap(1 << 16)
	runtime.SetActiveHeap(heap)

	textAddr, err := heap.NewString("3.5")
	require.NoError(t, err)

	result := NativeJsonParseNumber(value.ObjToValue(textAddr))
	require.Equal(t, float64(3.5), value.ValueToNumber(result))
}
