// Package tracelog provides the per-subsystem diagnostic loggers
// SPEC_FULL.md §2.3 calls for: a thin wrapper over the standard
// library's log.Logger, gated by config.Diagnostics, with no
// third-party logging dependency — none appears anywhere in the
// retrieved example pack, so this ambient concern is carried on the
// standard library (see DESIGN.md).
package tracelog

import (
	"io"
	"log"
	"os"
)

// Logger is one subsystem's trace channel. When disabled it discards
// everything it's given; Printf is always safe to call unconditionally
// from a hot compile path without an enabled check at every call site.
type Logger struct {
	*log.Logger
}

func newLogger(prefix string, enabled bool) Logger {
	out := io.Writer(io.Discard)
	if enabled {
		out = os.Stderr
	}
	return Logger{log.New(out, prefix, log.LstdFlags)}
}

// Loggers bundles the four subsystem channels spec.md's diagnostic
// flags name, each independently toggled via config.Diagnostics.
type Loggers struct {
	Lexer   Logger
	Parser  Logger
	Codegen Logger
	GC      Logger
}

// New builds a Loggers bundle from the loaded diagnostics flags
// (config.Config.Diagnostics's four fields, passed individually so this
// package doesn't need to import config and couple two otherwise
// independent packages together).
func New(traceLexer, traceParser, traceCodegen, traceGC bool) Loggers {
	return Loggers{
		Lexer:   newLogger("[lexer] ", traceLexer),
		Parser:  newLogger("[parser] ", traceParser),
		Codegen: newLogger("[codegen] ", traceCodegen),
		GC:      newLogger("[gc] ", traceGC),
	}
}
