// Command vanarize is the CLI entry point spec.md §6 describes:
// `vanarize <path>` reads one source file, compiles it, runs it, and
// exits with a status code that tells a calling script which stage
// failed.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanarize/vanarize/codegen"
	"github.com/vanarize/vanarize/config"
	"github.com/vanarize/vanarize/execmem"
	"github.com/vanarize/vanarize/gc"
	"github.com/vanarize/vanarize/internal/tracelog"
	"github.com/vanarize/vanarize/object"
	"github.com/vanarize/vanarize/parser"
	"github.com/vanarize/vanarize/runtime"
)

// Exit codes, spec.md §6: 0 success, 64 usage error, 65 parse (and
// compile) error, 74 I/O error.
const (
	exitOK      = 0
	exitUsage   = 64
	exitCompile = 65
	exitIOError = 74
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: vanarize <path>")
		return exitUsage
	}
	path := args[0]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "vanarize: config: %v\n", err)
		return exitUsage
	}
	log := tracelog.New(
		cfg.Diagnostics.TraceLexer,
		cfg.Diagnostics.TraceParser,
		cfg.Diagnostics.TraceCodegen,
		cfg.Diagnostics.TraceGC,
	)

	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vanarize: %v\n", err)
		return exitIOError
	}
	if len(source) > cfg.Compiler.MaxSourceBytes {
		fmt.Fprintf(os.Stderr, "vanarize: %s exceeds compiler.max_source_bytes\n", path)
		return exitCompile
	}

	reader := &fileSourceReader{importRoot: cfg.Compiler.ImportPath, baseDir: filepath.Dir(path)}

	log.Parser.Printf("parsing %s", path)
	p := parser.New(string(source), reader)
	prog, err := p.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "vanarize: %v\n", err)
		return exitCompile
	}

	heap := object.NewHeap(cfg.Heap.ArenaSize)
	roots := gc.NewRootSet(cfg.Heap.RootCapacity)
	collector := gc.NewCollector(heap, roots)

	log.Codegen.Printf("compiling %s", path)
	program, err := codegen.Compile(prog, heap, collector, *cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vanarize: %v\n", err)
		return exitCompile
	}

	runtime.LastError = nil
	entry := program.EntryAddr()
	log.Codegen.Printf("entering compiled program at %#x", entry)
	execmem.CallNullary(entry)

	if runtime.LastError != nil {
		fmt.Fprintf(os.Stderr, "vanarize: runtime error: %v\n", runtime.LastError)
		return exitCompile
	}

	if cfg.Heap.CollectOnOOM {
		log.GC.Printf("final collection: %d root(s)", roots.Len())
		collector.Collect()
	}

	return exitOK
}

// fileSourceReader resolves an import path against the importing file's
// own directory, falling back to the configured import search
// directory — spec.md §6's "import search path" collaborator, the one
// piece of real file I/O the parser needs but doesn't own itself
// (spec.md §1 places file I/O outside the core).
type fileSourceReader struct {
	importRoot string
	baseDir    string
}

func (r *fileSourceReader) ReadSource(path string) (string, error) {
	candidates := []string{
		filepath.Join(r.baseDir, path),
		filepath.Join(r.importRoot, path),
	}
	var firstErr error
	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate)
		if err == nil {
			return string(data), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return "", firstErr
}
