package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vanarize/vanarize/object"
	"github.com/vanarize/vanarize/value"
)

func TestRuntimeAddNumbers(t *testing.T) {
	result := RuntimeAdd(nil, value.NumberToValue(10), value.NumberToValue(20))
	require.Equal(t, float64(30), value.ValueToNumber(result))
}

func TestRuntimeAddStringsConcatenates(t *testing.T) {
	heap := object.NewHeap(1 << 16)
	aAddr, err := heap.NewString("foo")
	require.NoError(t, err)
	bAddr, err := heap.NewString("bar")
	require.NoError(t, err)

	result := RuntimeAdd(heap, value.ObjToValue(aAddr), value.ObjToValue(bAddr))
	require.True(t, value.IsObj(result))
	require.Equal(t, "foobar", object.StringAt(value.ValueToObj(result)).String())
}

func TestRuntimeAddMismatchSetsLastError(t *testing.T) {
	LastError = nil
	result := RuntimeAdd(nil, value.NumberToValue(1), value.True)
	require.Equal(t, value.Nil, result)
	require.Error(t, LastError)
}

func TestRuntimeEqualNumbersAndObjects(t *testing.T) {
	require.Equal(t, value.True, RuntimeEqual(value.NumberToValue(5), value.NumberToValue(5)))
	require.Equal(t, value.False, RuntimeEqual(value.NumberToValue(5), value.NumberToValue(6)))

	heap := object.NewHeap(1 << 16)
	addr, err := heap.NewString("x")
	require.NoError(t, err)
	v := value.ObjToValue(addr)
	require.Equal(t, value.True, RuntimeEqual(v, v))
}

func TestFormatNumberAndBool(t *testing.T) {
	require.Equal(t, "30", Format(value.NumberToValue(30)))
	require.Equal(t, "3.5", Format(value.NumberToValue(3.5)))
	require.Equal(t, "true", Format(value.True))
	require.Equal(t, "nil", Format(value.Nil))
}

func TestRuntimeArithmeticHelpers(t *testing.T) {
	a, b := value.NumberToValue(10), value.NumberToValue(3)
	require.Equal(t, float64(7), value.ValueToNumber(RuntimeSub(a, b)))
	require.Equal(t, float64(30), value.ValueToNumber(RuntimeMul(a, b)))
	require.InDelta(t, 3.333, value.ValueToNumber(RuntimeDiv(a, b)), 0.01)
}

func TestRuntimeComparisonHelpers(t *testing.T) {
	a, b := value.NumberToValue(1), value.NumberToValue(2)
	require.Equal(t, value.True, RuntimeLess(a, b))
	require.Equal(t, value.False, RuntimeLess(b, a))
	require.Equal(t, value.True, RuntimeLessEqual(a, a))
	require.Equal(t, value.True, RuntimeNotEqual(a, b))
	require.Equal(t, value.False, RuntimeNotEqual(a, a))
}

func TestRuntimeAddGlobalUsesActiveHeap(t *testing.T) {
	heap := object.NewHeap(1 << 16)
	SetActiveHeap(heap)
	defer SetActiveHeap(nil)

	aAddr, err := heap.NewString("foo")
	require.NoError(t, err)
	bAddr, err := heap.NewString("bar")
	require.NoError(t, err)

	result := RuntimeAddGlobal(value.ObjToValue(aAddr), value.ObjToValue(bAddr))
	require.Equal(t, "foobar", object.StringAt(value.ValueToObj(result)).String())
}

func TestHelperAddrReturnsNonZero(t *testing.T) {
	require.NotZero(t, HelperAddr(NativePrint))
}
