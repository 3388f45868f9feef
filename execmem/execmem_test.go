package execmem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocExecRoundsUpToPage(t *testing.T) {
	page, err := AllocExec(1, true)
	require.NoError(t, err)
	defer FreeExec(page) //nolint:errcheck

	require.GreaterOrEqual(t, len(page.Bytes()), pageSize)
	require.NotZero(t, page.Addr())
}

func TestProtectExecIsNoOpWhenAlreadyRWX(t *testing.T) {
	page, err := AllocExec(64, true)
	require.NoError(t, err)
	defer FreeExec(page) //nolint:errcheck

	require.NoError(t, ProtectExec(page))
}

func TestAllocExecRWThenProtect(t *testing.T) {
	page, err := AllocExec(64, false)
	require.NoError(t, err)
	defer FreeExec(page) //nolint:errcheck

	require.NoError(t, ProtectExec(page))
}

// TestCallNullaryExecutesEmittedBytes writes a trivial function body
// (MOV RAX, imm64 ; RET) directly, bypassing the assembler package, to
// keep this a focused test of the call boundary itself.
func TestCallNullaryExecutesEmittedBytes(t *testing.T) {
	page, err := AllocExec(64, true)
	require.NoError(t, err)
	defer FreeExec(page) //nolint:errcheck

	b := page.Bytes()
	// 48 B8 <imm64 le> : MOV RAX, imm64
	b[0] = 0x48
	b[1] = 0xB8
	want := uint64(42)
	for i := 0; i < 8; i++ {
		b[2+i] = byte(want >> (8 * i))
	}
	b[10] = 0xC3 // RET

	got := CallNullary(page.Addr())
	require.Equal(t, want, got)
}
