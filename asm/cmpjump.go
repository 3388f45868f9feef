package asm

// CmpRegImm32 emits CMP r64, imm32 (opcode 0x81 /7).
func (a *Assembler) CmpRegImm32(reg Reg, imm uint32) error {
	if err := checkSupported(reg); err != nil {
		return err
	}
	if err := a.emitByte(rexByte(true, false, false, reg.needsExtensionBit())); err != nil {
		return err
	}
	if err := a.emitByte(0x81); err != nil {
		return err
	}
	if err := a.emitByte(modRM(modDirect, 7, reg.lowBits())); err != nil {
		return err
	}
	return a.emitImm32(imm)
}

// CmpRegReg emits CMP r64, r64 (opcode 0x39: CMP r/m64, r64).
func (a *Assembler) CmpRegReg(dst, src Reg) error {
	if err := checkSupported(dst, src); err != nil {
		return err
	}
	if err := a.emitByte(rexByte(true, src.needsExtensionBit(), false, dst.needsExtensionBit())); err != nil {
		return err
	}
	if err := a.emitByte(0x39); err != nil {
		return err
	}
	return a.emitByte(modRM(modDirect, src.lowBits(), dst.lowBits()))
}

// Jcc emits a conditional near jump (two-byte opcode 0F 8x) with a
// placeholder rel32, returning the buffer offset of that rel32 so the
// caller can Patch32 it once the target address is known (spec.md §4.6,
// §4.7's forward-jump fixups).
func (a *Assembler) Jcc(cond Cond) (patchOffset int, err error) {
	if err := a.emitBytes(0x0F, 0x80|byte(cond)); err != nil {
		return 0, err
	}
	patchOffset = a.pos
	if err := a.emitImm32(0); err != nil {
		return 0, err
	}
	return patchOffset, nil
}

// Jmp emits an unconditional near jump (opcode 0xE9) with a placeholder
// rel32, returning its patch offset.
func (a *Assembler) Jmp() (patchOffset int, err error) {
	if err := a.emitByte(0xE9); err != nil {
		return 0, err
	}
	patchOffset = a.pos
	if err := a.emitImm32(0); err != nil {
		return 0, err
	}
	return patchOffset, nil
}

// Patch32 back-patches a previously emitted 32-bit little-endian rel32
// field at offset with the jump target, expressed as an offset relative
// to the byte immediately following the rel32 field (x86-64 relative
// jump semantics).
func (a *Assembler) Patch32(offset int, targetAddr int) error {
	if offset < 0 || offset+4 > len(a.buf) {
		return newEncodingError("patch offset %d out of range", offset)
	}
	rel := int32(targetAddr - (offset + 4))
	v := uint32(rel)
	a.buf[offset] = byte(v)
	a.buf[offset+1] = byte(v >> 8)
	a.buf[offset+2] = byte(v >> 16)
	a.buf[offset+3] = byte(v >> 24)
	return nil
}
