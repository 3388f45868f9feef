// Package execmem provides page-granular executable memory: AllocExec,
// ProtectExec, and FreeExec (spec.md §4.5), backed by real mmap/mprotect
// syscalls via golang.org/x/sys/unix rather than hand-rolled syscall
// numbers.
package execmem

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Page is a block of page-aligned memory the caller owns exclusively
// until it calls FreeExec.
type Page struct {
	data []byte
	rwx  bool // true once executable: mapped read+write+execute, or protected read+execute
}

// Bytes exposes the page's backing memory for the assembler to write
// into and for codegen to later invoke.
func (p *Page) Bytes() []byte { return p.data }

// Addr returns the address of the first byte of the page, suitable for
// casting to a callable function pointer once ProtectExec has run (or
// immediately, if the page was mapped RWX — see config.ExecMem.RWXDirect).
func (p *Page) Addr() uintptr {
	if len(p.data) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&p.data[0])) //nolint:govet // page memory is pinned by mmap, not GC-managed
}

var pageSize = os.Getpagesize()

func roundUpToPage(n int) int {
	if n <= 0 {
		n = pageSize
	}
	return (n + pageSize - 1) &^ (pageSize - 1)
}

// AllocExec maps size bytes (rounded up to a full page) of anonymous,
// private memory. rwxDirect selects the MVP's read+write+execute mapping
// described in spec.md §4.5; when false the page is mapped read+write
// only and must go through ProtectExec before it is called.
func AllocExec(size int, rwxDirect bool) (*Page, error) {
	n := roundUpToPage(size)

	prot := unix.PROT_READ | unix.PROT_WRITE
	if rwxDirect {
		prot |= unix.PROT_EXEC
	}

	data, err := unix.Mmap(-1, 0, n, prot, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("execmem: mmap failed: %w", err)
	}

	return &Page{data: data, rwx: rwxDirect}, nil
}

// ProtectExec transitions a page from RW to RX, the two-phase W^X
// protection spec.md §4.5 calls for. On x86-64 the mprotect call itself
// establishes instruction-cache coherency; no separate flush is needed.
func ProtectExec(p *Page) error {
	if p.rwx {
		return nil
	}
	if err := unix.Mprotect(p.data, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		return fmt.Errorf("execmem: mprotect failed: %w", err)
	}
	p.rwx = true
	return nil
}

// FreeExec unmaps a page. The caller must not use p afterward.
func FreeExec(p *Page) error {
	if err := unix.Munmap(p.data); err != nil {
		return fmt.Errorf("execmem: munmap failed: %w", err)
	}
	p.data = nil
	return nil
}
