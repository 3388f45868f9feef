package stdlib

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vanarize/vanarize/value"
)

func TestNativeBenchmarkNowIsMonotonicallyIncreasing(t *testing.T) {
	first := value.ValueToNumber(NativeBenchmarkNow())
	second := value.ValueToNumber(NativeBenchmarkNow())
	require.GreaterOrEqual(t, second, first)
}
