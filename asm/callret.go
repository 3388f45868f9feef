package asm

// CallReg emits CALL r64 (opcode 0xFF /2): an indirect call through a
// register, the form the code generator uses after MOV-ing an absolute
// helper or function address into that register (spec.md §4.6, §6).
func (a *Assembler) CallReg(reg Reg) error {
	if err := checkSupported(reg); err != nil {
		return err
	}
	if reg.needsExtensionBit() {
		if err := a.emitByte(rexByte(false, false, false, true)); err != nil {
			return err
		}
	}
	if err := a.emitByte(0xFF); err != nil {
		return err
	}
	return a.emitByte(modRM(modDirect, 2, reg.lowBits()))
}

// Ret emits RET (opcode 0xC3).
func (a *Assembler) Ret() error {
	return a.emitByte(0xC3)
}
