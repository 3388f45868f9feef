package stdlib

import (
	"io"
	"net/http"
	"time"

	"github.com/vanarize/vanarize/object"
	"github.com/vanarize/vanarize/runtime"
	"github.com/vanarize/vanarize/value"
)

// httpClient is shared across calls rather than constructed per-request,
// the same pooling the net/http docs recommend for any long-lived
// process — this runtime is exactly that.
var httpClient = &http.Client{Timeout: 10 * time.Second}

// NativeHttpGet performs a synchronous GET and returns a two-field
// Struct: field 0 the status code (a number), field 1 the response body
// (a string). No HTTP library appears anywhere in the retrieved example
// pack, so this is built on net/http directly (SPEC_FULL.md §3) — the
// same "no ecosystem candidate" situation as jsonlib.
//
// Synchronous-over-a-blocking-call matches spec.md §1's framing of
// network I/O as an external collaborator the core contributes no
// design of its own to: there is no event loop integration here, only a
// direct call that blocks the calling native thread until it returns.
func NativeHttpGet(url value.Value) value.Value {
	if !value.IsObj(url) {
		runtime.LastError = errArgumentType("NativeHttpGet", "url", "string")
		return value.Nil
	}
	addr := value.ValueToObj(url)
	if object.KindAt(addr) != object.KindString {
		runtime.LastError = errArgumentType("NativeHttpGet", "url", "string")
		return value.Nil
	}

	resp, err := httpClient.Get(object.StringAt(addr).String())
	if err != nil {
		runtime.LastError = err
		return value.Nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		runtime.LastError = err
		return value.Nil
	}

	structAddr, err := runtime.CollectAndRetry(func() (uintptr, error) { return runtime.ActiveHeap.NewStruct(2) })
	if err != nil {
		runtime.LastError = err
		return value.Nil
	}
	bodyAddr, err := runtime.CollectAndRetry(func() (uintptr, error) { return runtime.ActiveHeap.NewString(string(body)) })
	if err != nil {
		runtime.LastError = err
		return value.Nil
	}

	fields := object.StructAt(structAddr).Fields()
	fields[0] = value.NumberToValue(float64(resp.StatusCode))
	fields[1] = value.ObjToValue(bodyAddr)
	return value.ObjToValue(structAddr)
}
