package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberRoundTrip(t *testing.T) {
	samples := []float64{0, 1, -1, 3.14159, math.MaxFloat64, -math.MaxFloat64, 1e-300}
	for _, d := range samples {
		v := NumberToValue(d)
		require.True(t, IsNumber(v))
		require.False(t, IsNil(v))
		require.False(t, IsBool(v))
		require.False(t, IsObj(v))
		assert.Equal(t, d, ValueToNumber(v))
	}
}

func TestBoolRoundTrip(t *testing.T) {
	for _, b := range []bool{true, false} {
		v := BoolToValue(b)
		require.True(t, IsBool(v))
		require.False(t, IsNumber(v))
		require.False(t, IsNil(v))
		require.False(t, IsObj(v))
		assert.Equal(t, b, ValueToBool(v))
	}
}

func TestObjRoundTrip(t *testing.T) {
	ptrs := []uintptr{8, 1 << 20, 0x0000_FFFF_FFFF_FFF8}
	for _, p := range ptrs {
		v := ObjToValue(p)
		require.True(t, IsObj(v))
		require.False(t, IsNumber(v))
		require.False(t, IsNil(v))
		require.False(t, IsBool(v))
		assert.Equal(t, p, ValueToObj(v))
	}
}

func TestSingletonsDistinctAndClassifiedOnce(t *testing.T) {
	singletons := []Value{Nil, True, False}

	seen := map[Value]bool{}
	for _, s := range singletons {
		assert.False(t, seen[s], "singleton bit pattern reused")
		seen[s] = true
	}

	for _, s := range singletons {
		predicates := 0
		if IsNumber(s) {
			predicates++
		}
		if IsNil(s) {
			predicates++
		}
		if IsBool(s) {
			predicates++
		}
		if IsObj(s) {
			predicates++
		}
		assert.Equal(t, 1, predicates, "singleton %v classified by %d predicates", s, predicates)
	}
}

func TestIsObjRejectsSingletons(t *testing.T) {
	assert.False(t, IsObj(Nil))
	assert.False(t, IsObj(True))
	assert.False(t, IsObj(False))
}
