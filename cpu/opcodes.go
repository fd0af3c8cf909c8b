package cpu

// regPtr resolves the standard 3-bit register encoding (B,C,D,E,H,L,-,A)
// to a field pointer. Index 6, the "(HL)" slot, has no backing field and
// must be handled by the caller via readReg8/writeReg8.
func (c *CPU) regPtr(index uint8) *uint8 {
	switch index {
	case 0:
		return &c.b
	case 1:
		return &c.c
	case 2:
		return &c.d
	case 3:
		return &c.e
	case 4:
		return &c.h
	case 5:
		return &c.l
	case 7:
		return &c.a
	}
	return nil
}

func (c *CPU) readReg8(index uint8) uint8 {
	if index == 6 {
		return c.bus.Read(c.getHL())
	}
	return *c.regPtr(index)
}

func (c *CPU) writeReg8(index uint8, v uint8) {
	if index == 6 {
		c.bus.Write(c.getHL(), v)
		return
	}
	*c.regPtr(index) = v
}

func (c *CPU) applyALUResult(r result8, store bool) {
	if store {
		c.a = r.value
	}
	c.setFlagIf(flagZ, r.zero)
	c.setFlagIf(flagN, r.sub)
	c.setFlagIf(flagH, r.half)
	c.setFlagIf(flagC, r.cy)
}

func aluCycles(idx uint8) int {
	if idx == 6 {
		return 8
	}
	return 4
}

// ldRR builds a LD dst,src opcode for the 0x40-0x7F grid. 0x76 (dst=6,
// src=6) is HALT, not LD (HL),(HL), and is wired separately.
func ldRR(dst, src uint8) Opcode {
	return func(c *CPU) int {
		c.writeReg8(dst, c.readReg8(src))
		if dst == 6 || src == 6 {
			return 8
		}
		return 4
	}
}

func aluAdd(src uint8) Opcode {
	return func(c *CPU) int {
		r := add8(c.a, c.readReg8(src))
		c.applyALUResult(r, true)
		return aluCycles(src)
	}
}

func aluAdc(src uint8) Opcode {
	return func(c *CPU) int {
		r := adc8(c.a, c.readReg8(src), c.bitOf(flagC))
		c.applyALUResult(r, true)
		return aluCycles(src)
	}
}

func aluSub(src uint8) Opcode {
	return func(c *CPU) int {
		r := sub8(c.a, c.readReg8(src))
		c.applyALUResult(r, true)
		return aluCycles(src)
	}
}

func aluSbc(src uint8) Opcode {
	return func(c *CPU) int {
		r := sbc8(c.a, c.readReg8(src), c.bitOf(flagC))
		c.applyALUResult(r, true)
		return aluCycles(src)
	}
}

func aluAnd(src uint8) Opcode {
	return func(c *CPU) int {
		r := and8(c.a, c.readReg8(src))
		c.applyALUResult(r, true)
		return aluCycles(src)
	}
}

func aluXor(src uint8) Opcode {
	return func(c *CPU) int {
		r := xor8(c.a, c.readReg8(src))
		c.applyALUResult(r, true)
		return aluCycles(src)
	}
}

func aluOr(src uint8) Opcode {
	return func(c *CPU) int {
		r := or8(c.a, c.readReg8(src))
		c.applyALUResult(r, true)
		return aluCycles(src)
	}
}

func aluCp(src uint8) Opcode {
	return func(c *CPU) int {
		r := cp8(c.a, c.readReg8(src))
		c.applyALUResult(r, false)
		return aluCycles(src)
	}
}

// --- control-flow helpers, shared by the conditional and unconditional
// forms of JR/JP/CALL/RET. Each always consumes its operand bytes; only
// the cycle count and the actual jump depend on the condition. ---

func (c *CPU) jrCond(take bool) int {
	offset := c.readSignedImmediate()
	if !take {
		return 8
	}
	c.pc = uint16(int32(c.pc) + int32(offset))
	return 12
}

func (c *CPU) jpCond(take bool) int {
	target := c.readImmediateWord()
	if !take {
		return 12
	}
	c.pc = target
	return 16
}

func (c *CPU) callCond(take bool) int {
	target := c.readImmediateWord()
	if !take {
		return 12
	}
	c.pushStack(c.pc)
	c.pc = target
	return 24
}

func (c *CPU) retCond(take bool) int {
	if !take {
		return 8
	}
	c.pc = c.popStack()
	return 20
}

func (c *CPU) rst(target uint16) int {
	c.pushStack(c.pc)
	c.pc = target
	return 16
}

func (c *CPU) incReg(idx uint8) int {
	r := inc8(c.readReg8(idx))
	c.writeReg8(idx, r.value)
	c.setFlagIf(flagZ, r.zero)
	c.clearFlag(flagN)
	c.setFlagIf(flagH, r.half)
	if idx == 6 {
		return 12
	}
	return 4
}

func (c *CPU) decReg(idx uint8) int {
	r := dec8(c.readReg8(idx))
	c.writeReg8(idx, r.value)
	c.setFlagIf(flagZ, r.zero)
	c.setFlag(flagN)
	c.setFlagIf(flagH, r.half)
	if idx == 6 {
		return 12
	}
	return 4
}

func (c *CPU) ldImm8(idx uint8) int {
	c.writeReg8(idx, c.readImmediate())
	if idx == 6 {
		return 12
	}
	return 8
}

func (c *CPU) addHL(v uint16) int {
	r := add16(c.getHL(), v)
	c.setHL(r.value)
	c.clearFlag(flagN)
	c.setFlagIf(flagH, r.half)
	c.setFlagIf(flagC, r.cy)
	return 8
}

// --- 0x00-0x3F: misc, 16-bit loads/incs/decs, 8-bit inc/dec/load,
// rotate-A, DAA/CPL/SCF/CCF, JR. ---

func opcode0x00(c *CPU) int { return 4 } // NOP

func opcode0x01(c *CPU) int { c.setBC(c.readImmediateWord()); return 12 }
func opcode0x02(c *CPU) int { c.bus.Write(c.getBC(), c.a); return 8 }
func opcode0x03(c *CPU) int { c.setBC(c.getBC() + 1); return 8 }
func opcode0x04(c *CPU) int { return c.incReg(0) }
func opcode0x05(c *CPU) int { return c.decReg(0) }
func opcode0x06(c *CPU) int { return c.ldImm8(0) }

func opcode0x07(c *CPU) int {
	r := rlc8(c.a)
	c.a = r.value
	c.clearFlag(flagZ)
	c.clearFlag(flagN)
	c.clearFlag(flagH)
	c.setFlagIf(flagC, r.cy)
	return 4
}

func opcode0x08(c *CPU) int {
	a16 := c.readImmediateWord()
	c.bus.Write(a16, uint8(c.sp))
	c.bus.Write(a16+1, uint8(c.sp>>8))
	return 20
}

func opcode0x09(c *CPU) int { return c.addHL(c.getBC()) }
func opcode0x0A(c *CPU) int { c.a = c.bus.Read(c.getBC()); return 8 }
func opcode0x0B(c *CPU) int { c.setBC(c.getBC() - 1); return 8 }
func opcode0x0C(c *CPU) int { return c.incReg(1) }
func opcode0x0D(c *CPU) int { return c.decReg(1) }
func opcode0x0E(c *CPU) int { return c.ldImm8(1) }

func opcode0x0F(c *CPU) int {
	r := rrc8(c.a)
	c.a = r.value
	c.clearFlag(flagZ)
	c.clearFlag(flagN)
	c.clearFlag(flagH)
	c.setFlagIf(flagC, r.cy)
	return 4
}

func opcode0x10(c *CPU) int {
	c.readImmediate() // STOP's mandatory padding byte
	c.stop()
	return 4
}

func opcode0x11(c *CPU) int { c.setDE(c.readImmediateWord()); return 12 }
func opcode0x12(c *CPU) int { c.bus.Write(c.getDE(), c.a); return 8 }
func opcode0x13(c *CPU) int { c.setDE(c.getDE() + 1); return 8 }
func opcode0x14(c *CPU) int { return c.incReg(2) }
func opcode0x15(c *CPU) int { return c.decReg(2) }
func opcode0x16(c *CPU) int { return c.ldImm8(2) }

func opcode0x17(c *CPU) int {
	r := rl8(c.a, c.bitOf(flagC))
	c.a = r.value
	c.clearFlag(flagZ)
	c.clearFlag(flagN)
	c.clearFlag(flagH)
	c.setFlagIf(flagC, r.cy)
	return 4
}

func opcode0x18(c *CPU) int { return c.jrCond(true) }
func opcode0x19(c *CPU) int { return c.addHL(c.getDE()) }
func opcode0x1A(c *CPU) int { c.a = c.bus.Read(c.getDE()); return 8 }
func opcode0x1B(c *CPU) int { c.setDE(c.getDE() - 1); return 8 }
func opcode0x1C(c *CPU) int { return c.incReg(3) }
func opcode0x1D(c *CPU) int { return c.decReg(3) }
func opcode0x1E(c *CPU) int { return c.ldImm8(3) }

func opcode0x1F(c *CPU) int {
	r := rr8(c.a, c.bitOf(flagC))
	c.a = r.value
	c.clearFlag(flagZ)
	c.clearFlag(flagN)
	c.clearFlag(flagH)
	c.setFlagIf(flagC, r.cy)
	return 4
}

func opcode0x20(c *CPU) int { return c.jrCond(!c.isSet(flagZ)) }
func opcode0x21(c *CPU) int { c.setHL(c.readImmediateWord()); return 12 }

func opcode0x22(c *CPU) int {
	c.bus.Write(c.getHL(), c.a)
	c.setHL(c.getHL() + 1)
	return 8
}

func opcode0x23(c *CPU) int { c.setHL(c.getHL() + 1); return 8 }
func opcode0x24(c *CPU) int { return c.incReg(4) }
func opcode0x25(c *CPU) int { return c.decReg(4) }
func opcode0x26(c *CPU) int { return c.ldImm8(4) }

func opcode0x27(c *CPU) int {
	r := daa8(c.a, c.isSet(flagN), c.isSet(flagH), c.isSet(flagC))
	c.a = r.value
	c.setFlagIf(flagZ, r.zero)
	c.clearFlag(flagH)
	c.setFlagIf(flagC, r.cy)
	return 4
}

func opcode0x28(c *CPU) int { return c.jrCond(c.isSet(flagZ)) }
func opcode0x29(c *CPU) int { return c.addHL(c.getHL()) }

func opcode0x2A(c *CPU) int {
	c.a = c.bus.Read(c.getHL())
	c.setHL(c.getHL() + 1)
	return 8
}

func opcode0x2B(c *CPU) int { c.setHL(c.getHL() - 1); return 8 }
func opcode0x2C(c *CPU) int { return c.incReg(5) }
func opcode0x2D(c *CPU) int { return c.decReg(5) }
func opcode0x2E(c *CPU) int { return c.ldImm8(5) }

func opcode0x2F(c *CPU) int {
	c.a = ^c.a
	c.setFlag(flagN)
	c.setFlag(flagH)
	return 4
}

func opcode0x30(c *CPU) int { return c.jrCond(!c.isSet(flagC)) }
func opcode0x31(c *CPU) int { c.sp = c.readImmediateWord(); return 12 }

func opcode0x32(c *CPU) int {
	c.bus.Write(c.getHL(), c.a)
	c.setHL(c.getHL() - 1)
	return 8
}

func opcode0x33(c *CPU) int { c.sp++; return 8 }
func opcode0x34(c *CPU) int { return c.incReg(6) }
func opcode0x35(c *CPU) int { return c.decReg(6) }
func opcode0x36(c *CPU) int { return c.ldImm8(6) }

func opcode0x37(c *CPU) int {
	c.clearFlag(flagN)
	c.clearFlag(flagH)
	c.setFlag(flagC)
	return 4
}

func opcode0x38(c *CPU) int { return c.jrCond(c.isSet(flagC)) }
func opcode0x39(c *CPU) int { return c.addHL(c.sp) }

func opcode0x3A(c *CPU) int {
	c.a = c.bus.Read(c.getHL())
	c.setHL(c.getHL() - 1)
	return 8
}

func opcode0x3B(c *CPU) int { c.sp--; return 8 }
func opcode0x3C(c *CPU) int { return c.incReg(7) }
func opcode0x3D(c *CPU) int { return c.decReg(7) }
func opcode0x3E(c *CPU) int { return c.ldImm8(7) }

func opcode0x3F(c *CPU) int {
	c.clearFlag(flagN)
	c.clearFlag(flagH)
	c.setFlagIf(flagC, !c.isSet(flagC))
	return 4
}

// 0x76 overrides what would otherwise be LD (HL),(HL) in the 0x40-0x7F
// grid.
func opcode0x76(c *CPU) int {
	c.halt()
	return 4
}

// --- 0xC0-0xFF: stack ops, control flow, immediate ALU, I/O ports. ---

func opcode0xC0(c *CPU) int { return c.retCond(!c.isSet(flagZ)) }
func opcode0xC1(c *CPU) int { c.setBC(c.popStack()); return 12 }
func opcode0xC2(c *CPU) int { return c.jpCond(!c.isSet(flagZ)) }
func opcode0xC3(c *CPU) int { return c.jpCond(true) }
func opcode0xC4(c *CPU) int { return c.callCond(!c.isSet(flagZ)) }
func opcode0xC5(c *CPU) int { c.pushStack(c.getBC()); return 16 }

func opcode0xC6(c *CPU) int {
	r := add8(c.a, c.readImmediate())
	c.applyALUResult(r, true)
	return 8
}

func opcode0xC7(c *CPU) int { return c.rst(0x00) }
func opcode0xC8(c *CPU) int { return c.retCond(c.isSet(flagZ)) }

func opcode0xC9(c *CPU) int {
	c.pc = c.popStack()
	return 16
}

func opcode0xCA(c *CPU) int { return c.jpCond(c.isSet(flagZ)) }

// 0xCB is the CB-prefix escape, decoded directly in Step; it never
// appears as a dispatch-table entry of its own.

func opcode0xCC(c *CPU) int { return c.callCond(c.isSet(flagZ)) }
func opcode0xCD(c *CPU) int { return c.callCond(true) }

func opcode0xCE(c *CPU) int {
	r := adc8(c.a, c.readImmediate(), c.bitOf(flagC))
	c.applyALUResult(r, true)
	return 8
}

func opcode0xCF(c *CPU) int { return c.rst(0x08) }

func opcode0xD0(c *CPU) int { return c.retCond(!c.isSet(flagC)) }
func opcode0xD1(c *CPU) int { c.setDE(c.popStack()); return 12 }
func opcode0xD2(c *CPU) int { return c.jpCond(!c.isSet(flagC)) }
func opcode0xD4(c *CPU) int { return c.callCond(!c.isSet(flagC)) }
func opcode0xD5(c *CPU) int { c.pushStack(c.getDE()); return 16 }

func opcode0xD6(c *CPU) int {
	r := sub8(c.a, c.readImmediate())
	c.applyALUResult(r, true)
	return 8
}

func opcode0xD7(c *CPU) int { return c.rst(0x10) }
func opcode0xD8(c *CPU) int { return c.retCond(c.isSet(flagC)) }

func opcode0xD9(c *CPU) int {
	c.pc = c.popStack()
	c.ime = true
	return 16
}

func opcode0xDA(c *CPU) int { return c.jpCond(c.isSet(flagC)) }
func opcode0xDC(c *CPU) int { return c.callCond(c.isSet(flagC)) }

func opcode0xDE(c *CPU) int {
	r := sbc8(c.a, c.readImmediate(), c.bitOf(flagC))
	c.applyALUResult(r, true)
	return 8
}

func opcode0xDF(c *CPU) int { return c.rst(0x18) }

func opcode0xE0(c *CPU) int {
	offset := c.readImmediate()
	c.bus.Write(0xFF00+uint16(offset), c.a)
	return 12
}

func opcode0xE1(c *CPU) int { c.setHL(c.popStack()); return 12 }

func opcode0xE2(c *CPU) int {
	c.bus.Write(0xFF00+uint16(c.c), c.a)
	return 8
}

func opcode0xE5(c *CPU) int { c.pushStack(c.getHL()); return 16 }

func opcode0xE6(c *CPU) int {
	r := and8(c.a, c.readImmediate())
	c.applyALUResult(r, true)
	return 8
}

func opcode0xE7(c *CPU) int { return c.rst(0x20) }

func opcode0xE8(c *CPU) int {
	offset := c.readSignedImmediate()
	r := addSPSigned(c.sp, offset)
	c.sp = r.value
	c.clearFlag(flagZ)
	c.clearFlag(flagN)
	c.setFlagIf(flagH, r.half)
	c.setFlagIf(flagC, r.cy)
	return 16
}

func opcode0xE9(c *CPU) int { c.pc = c.getHL(); return 4 }

func opcode0xEA(c *CPU) int {
	a16 := c.readImmediateWord()
	c.bus.Write(a16, c.a)
	return 16
}

func opcode0xEE(c *CPU) int {
	r := xor8(c.a, c.readImmediate())
	c.applyALUResult(r, true)
	return 8
}

func opcode0xEF(c *CPU) int { return c.rst(0x28) }

func opcode0xF0(c *CPU) int {
	offset := c.readImmediate()
	c.a = c.bus.Read(0xFF00 + uint16(offset))
	return 12
}

func opcode0xF1(c *CPU) int { c.setAF(c.popStack()); return 12 }

func opcode0xF2(c *CPU) int {
	c.a = c.bus.Read(0xFF00 + uint16(c.c))
	return 8
}

func opcode0xF3(c *CPU) int {
	c.ime = false
	c.eiPending = false
	return 4
}

func opcode0xF5(c *CPU) int { c.pushStack(c.getAF()); return 16 }

func opcode0xF6(c *CPU) int {
	r := or8(c.a, c.readImmediate())
	c.applyALUResult(r, true)
	return 8
}

func opcode0xF7(c *CPU) int { return c.rst(0x30) }

func opcode0xF8(c *CPU) int {
	offset := c.readSignedImmediate()
	r := addSPSigned(c.sp, offset)
	c.setHL(r.value)
	c.clearFlag(flagZ)
	c.clearFlag(flagN)
	c.setFlagIf(flagH, r.half)
	c.setFlagIf(flagC, r.cy)
	return 12
}

func opcode0xF9(c *CPU) int { c.sp = c.getHL(); return 8 }

func opcode0xFA(c *CPU) int {
	a16 := c.readImmediateWord()
	c.a = c.bus.Read(a16)
	return 16
}

func opcode0xFB(c *CPU) int {
	c.eiPending = true
	return 4
}

func opcode0xFE(c *CPU) int {
	r := cp8(c.a, c.readImmediate())
	c.applyALUResult(r, false)
	return 8
}

func opcode0xFF(c *CPU) int { return c.rst(0x38) }
