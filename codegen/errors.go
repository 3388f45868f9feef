package codegen

import "fmt"

// Error is a fatal compile-time diagnostic: an unsupported AST node at
// this implementation stage, or a name the compiler cannot resolve
// (undefined variable, unknown struct field, wrong argument count). It
// mirrors parser.Error's shape — the "Compile" category of spec.md §7
// gets the same line-tagged, no-recovery treatment as syntax errors.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[line %d] %s", e.Line, e.Message)
}

func newError(line int, format string, args ...any) *Error {
	return &Error{Line: line, Message: fmt.Sprintf(format, args...)}
}
