package asm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMovRegImm64Encoding(t *testing.T) {
	buf := make([]byte, 16)
	a := NewAssembler(buf)

	require.NoError(t, a.MovRegImm64(RAX, 42))

	// REX.W (0x48), opcode 0xB8+RAX(0), then 8 little-endian bytes.
	require.Equal(t, byte(0x48), buf[0])
	require.Equal(t, byte(0xB8), buf[1])
	require.Equal(t, byte(42), buf[2])
	for i := 3; i < 10; i++ {
		require.Equal(t, byte(0), buf[i])
	}
	require.Equal(t, 10, a.Len())
}

func TestMovRegRegEncoding(t *testing.T) {
	buf := make([]byte, 8)
	a := NewAssembler(buf)
	require.NoError(t, a.MovRegReg(RCX, RAX))

	require.Equal(t, byte(0x48), buf[0])
	require.Equal(t, byte(0x89), buf[1])
	// ModRM: mod=11, reg=RAX(0), rm=RCX(1) -> 0xC1
	require.Equal(t, byte(0xC1), buf[2])
}

func TestPushPopRoundTripEncoding(t *testing.T) {
	buf := make([]byte, 4)
	a := NewAssembler(buf)
	require.NoError(t, a.Push(RBP))
	require.NoError(t, a.Pop(RBP))

	require.Equal(t, byte(0x50+5), buf[0]) // RBP = 5
	require.Equal(t, byte(0x58+5), buf[1])
}

func TestAddRegImm32PeepholesToInc(t *testing.T) {
	buf := make([]byte, 4)
	a := NewAssembler(buf)
	require.NoError(t, a.AddRegImm32(RAX, 1))

	// REX.W, 0xFF, ModRM mod=11 reg=0 rm=RAX(0) = 0xC0
	require.Equal(t, byte(0x48), buf[0])
	require.Equal(t, byte(0xFF), buf[1])
	require.Equal(t, byte(0xC0), buf[2])
	require.Equal(t, 3, a.Len())
}

func TestBufferOverflowIsFatal(t *testing.T) {
	buf := make([]byte, 2)
	a := NewAssembler(buf)
	err := a.MovRegImm64(RAX, 1)
	require.Error(t, err)

	var encErr *EncodingError
	require.ErrorAs(t, err, &encErr)
}

func TestPatch32ResolvesForwardJump(t *testing.T) {
	buf := make([]byte, 32)
	a := NewAssembler(buf)

	offset, err := a.Jmp()
	require.NoError(t, err)

	// Emit three bytes of "body" between the jump and its target.
	require.NoError(t, a.emitBytes(0x90, 0x90, 0x90))
	target := a.Len()

	require.NoError(t, a.Patch32(offset, target))

	rel := int32(uint32(buf[offset]) | uint32(buf[offset+1])<<8 | uint32(buf[offset+2])<<16 | uint32(buf[offset+3])<<24)
	require.Equal(t, int32(target-(offset+4)), rel)
}

func TestUnsupportedRegisterRejected(t *testing.T) {
	buf := make([]byte, 16)
	a := NewAssembler(buf)
	err := a.MovRegImm64(R8, 1)
	require.Error(t, err)
}

func TestCmpRegImm32Encoding(t *testing.T) {
	buf := make([]byte, 8)
	a := NewAssembler(buf)
	require.NoError(t, a.CmpRegImm32(RAX, 0))

	require.Equal(t, byte(0x48), buf[0])
	require.Equal(t, byte(0x81), buf[1])
	require.Equal(t, byte(0xF8), buf[2]) // mod=11 reg=7 rm=0
}

func TestSubRegImm32Encoding(t *testing.T) {
	buf := make([]byte, 8)
	a := NewAssembler(buf)
	require.NoError(t, a.SubRegImm32(RSP, 32))

	require.Equal(t, byte(0x48), buf[0])
	require.Equal(t, byte(0x81), buf[1])
	require.Equal(t, byte(0xEC), buf[2]) // mod=11 reg=5 rm=RSP(4)
	require.Equal(t, byte(32), buf[3])
}

func TestCondNegateRoundTrips(t *testing.T) {
	require.Equal(t, CondNE, CondE.Negate())
	require.Equal(t, CondE, CondNE.Negate())
	require.Equal(t, CondL, CondGE.Negate())
	require.Equal(t, CondGE, CondL.Negate())
}

func TestCallRetEncoding(t *testing.T) {
	buf := make([]byte, 8)
	a := NewAssembler(buf)
	require.NoError(t, a.CallReg(RAX))
	require.NoError(t, a.Ret())

	require.Equal(t, byte(0xFF), buf[0])
	require.Equal(t, byte(0xD0), buf[1]) // mod=11 reg=2 rm=0
	require.Equal(t, byte(0xC3), buf[2])
}
