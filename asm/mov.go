package asm

// MovRegImm64 emits MOV r64, imm64 (spec.md §4.6).
func (a *Assembler) MovRegImm64(dst Reg, imm uint64) error {
	if err := checkSupported(dst); err != nil {
		return err
	}
	if err := a.emitByte(rexByte(true, false, false, dst.needsExtensionBit())); err != nil {
		return err
	}
	if err := a.emitByte(0xB8 + dst.lowBits()); err != nil {
		return err
	}
	return a.emitImm64(imm)
}

// MovRegReg emits MOV r64, r64 (opcode 0x89: MOV r/m64, r64).
func (a *Assembler) MovRegReg(dst, src Reg) error {
	if err := checkSupported(dst, src); err != nil {
		return err
	}
	if err := a.emitByte(rexByte(true, src.needsExtensionBit(), false, dst.needsExtensionBit())); err != nil {
		return err
	}
	if err := a.emitByte(0x89); err != nil {
		return err
	}
	return a.emitByte(modRM(modDirect, src.lowBits(), dst.lowBits()))
}

// MovRegMem emits MOV r64, [base+disp32] (opcode 0x8B).
func (a *Assembler) MovRegMem(dst, base Reg, disp int32) error {
	if err := checkSupported(dst, base); err != nil {
		return err
	}
	if err := requireNonSIBBase(base); err != nil {
		return err
	}
	if err := a.emitByte(rexByte(true, dst.needsExtensionBit(), false, base.needsExtensionBit())); err != nil {
		return err
	}
	if err := a.emitByte(0x8B); err != nil {
		return err
	}
	if err := a.emitByte(modRM(modIndirectDisp32, dst.lowBits(), base.lowBits())); err != nil {
		return err
	}
	return a.emitImm32(uint32(disp))
}

// MovMemReg emits MOV [base+disp32], r64 (opcode 0x89, reversed operand
// direction from MovRegReg: reg field carries the source here).
func (a *Assembler) MovMemReg(base Reg, disp int32, src Reg) error {
	if err := checkSupported(base, src); err != nil {
		return err
	}
	if err := requireNonSIBBase(base); err != nil {
		return err
	}
	if err := a.emitByte(rexByte(true, src.needsExtensionBit(), false, base.needsExtensionBit())); err != nil {
		return err
	}
	if err := a.emitByte(0x89); err != nil {
		return err
	}
	if err := a.emitByte(modRM(modIndirectDisp32, src.lowBits(), base.lowBits())); err != nil {
		return err
	}
	return a.emitImm32(uint32(disp))
}
