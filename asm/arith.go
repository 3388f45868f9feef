package asm

// AddRegReg emits ADD r64, r64 (opcode 0x01: ADD r/m64, r64).
func (a *Assembler) AddRegReg(dst, src Reg) error {
	if err := checkSupported(dst, src); err != nil {
		return err
	}
	if err := a.emitByte(rexByte(true, src.needsExtensionBit(), false, dst.needsExtensionBit())); err != nil {
		return err
	}
	if err := a.emitByte(0x01); err != nil {
		return err
	}
	return a.emitByte(modRM(modDirect, src.lowBits(), dst.lowBits()))
}

// AddRegImm32 emits ADD r64, imm32, with an INC r64 peephole when imm==1
// (spec.md §4.6).
func (a *Assembler) AddRegImm32(dst Reg, imm uint32) error {
	if imm == 1 {
		return a.Inc(dst)
	}
	if err := checkSupported(dst); err != nil {
		return err
	}
	if err := a.emitByte(rexByte(true, false, false, dst.needsExtensionBit())); err != nil {
		return err
	}
	if err := a.emitByte(0x81); err != nil {
		return err
	}
	if err := a.emitByte(modRM(modDirect, 0, dst.lowBits())); err != nil {
		return err
	}
	return a.emitImm32(imm)
}

// SubRegImm32 emits SUB r64, imm32 (opcode 0x81 /5), used by the code
// generator's function prologue to reserve stack frame space.
func (a *Assembler) SubRegImm32(dst Reg, imm uint32) error {
	if err := checkSupported(dst); err != nil {
		return err
	}
	if err := a.emitByte(rexByte(true, false, false, dst.needsExtensionBit())); err != nil {
		return err
	}
	if err := a.emitByte(0x81); err != nil {
		return err
	}
	if err := a.emitByte(modRM(modDirect, 5, dst.lowBits())); err != nil {
		return err
	}
	return a.emitImm32(imm)
}

// SubRegReg emits SUB r64, r64 (opcode 0x29: SUB r/m64, r64).
func (a *Assembler) SubRegReg(dst, src Reg) error {
	if err := checkSupported(dst, src); err != nil {
		return err
	}
	if err := a.emitByte(rexByte(true, src.needsExtensionBit(), false, dst.needsExtensionBit())); err != nil {
		return err
	}
	if err := a.emitByte(0x29); err != nil {
		return err
	}
	return a.emitByte(modRM(modDirect, src.lowBits(), dst.lowBits()))
}

// IMulRegReg emits IMUL r64, r64 (two-byte opcode 0F AF /r: dst *= src,
// reg field is the destination for this form).
func (a *Assembler) IMulRegReg(dst, src Reg) error {
	if err := checkSupported(dst, src); err != nil {
		return err
	}
	if err := a.emitByte(rexByte(true, dst.needsExtensionBit(), false, src.needsExtensionBit())); err != nil {
		return err
	}
	if err := a.emitBytes(0x0F, 0xAF); err != nil {
		return err
	}
	return a.emitByte(modRM(modDirect, dst.lowBits(), src.lowBits()))
}

// Inc emits INC r64 (opcode 0xFF /0).
func (a *Assembler) Inc(reg Reg) error {
	if err := checkSupported(reg); err != nil {
		return err
	}
	if err := a.emitByte(rexByte(true, false, false, reg.needsExtensionBit())); err != nil {
		return err
	}
	if err := a.emitByte(0xFF); err != nil {
		return err
	}
	return a.emitByte(modRM(modDirect, 0, reg.lowBits()))
}

// Dec emits DEC r64 (opcode 0xFF /1).
func (a *Assembler) Dec(reg Reg) error {
	if err := checkSupported(reg); err != nil {
		return err
	}
	if err := a.emitByte(rexByte(true, false, false, reg.needsExtensionBit())); err != nil {
		return err
	}
	if err := a.emitByte(0xFF); err != nil {
		return err
	}
	return a.emitByte(modRM(modDirect, 1, reg.lowBits()))
}

// AndRegReg emits AND r64, r64 (opcode 0x21: AND r/m64, r64).
func (a *Assembler) AndRegReg(dst, src Reg) error {
	if err := checkSupported(dst, src); err != nil {
		return err
	}
	if err := a.emitByte(rexByte(true, src.needsExtensionBit(), false, dst.needsExtensionBit())); err != nil {
		return err
	}
	if err := a.emitByte(0x21); err != nil {
		return err
	}
	return a.emitByte(modRM(modDirect, src.lowBits(), dst.lowBits()))
}
