package asm

import "fmt"

// EncodingError provides context for an assembler failure: buffer
// overflow, an unencodable operand, or a register this build does not
// yet support. Grounded on the teacher's encoder.EncodingError — same
// shape (message plus optional wrapped cause), adapted to x86-64.
type EncodingError struct {
	Message string
	Wrapped error
}

func (e *EncodingError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("asm: %s: %v", e.Message, e.Wrapped)
	}
	return fmt.Sprintf("asm: %s", e.Message)
}

func (e *EncodingError) Unwrap() error { return e.Wrapped }

func newEncodingError(format string, args ...interface{}) *EncodingError {
	return &EncodingError{Message: fmt.Sprintf(format, args...)}
}
