package stdlib

import "fmt"

// errArgumentType reports a native helper's argument failing its
// expected-kind check, mirroring runtime's inline fmt.Errorf style for
// the same class of mismatch (runtime.RuntimeAdd, runtime.RuntimeIndexGet).
func errArgumentType(fn, arg, want string) error {
	return fmt.Errorf("%s: argument %q must be a %s", fn, arg, want)
}
