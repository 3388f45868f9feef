package asm

// Push emits PUSH r64.
func (a *Assembler) Push(reg Reg) error {
	if err := checkSupported(reg); err != nil {
		return err
	}
	if reg.needsExtensionBit() {
		if err := a.emitByte(rexByte(false, false, false, true)); err != nil {
			return err
		}
	}
	return a.emitByte(0x50 + reg.lowBits())
}

// Pop emits POP r64.
func (a *Assembler) Pop(reg Reg) error {
	if err := checkSupported(reg); err != nil {
		return err
	}
	if reg.needsExtensionBit() {
		if err := a.emitByte(rexByte(false, false, false, true)); err != nil {
			return err
		}
	}
	return a.emitByte(0x58 + reg.lowBits())
}
