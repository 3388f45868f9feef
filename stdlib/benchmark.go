package stdlib

import (
	"time"

	"github.com/vanarize/vanarize/value"
)

// NativeBenchmarkNow returns the current time as nanoseconds since the
// Unix epoch, boxed as a number — grounded on the original source's
// StdBenchmark.h/.c (SPEC_FULL.md §3), which exposes exactly one
// wall-clock sample primitive for user-space timing code to build on.
func NativeBenchmarkNow() value.Value {
	return value.NumberToValue(float64(time.Now().UnixNano()))
}
