package cpu

// stepThumb fetches one 16-bit Thumb instruction, advances PC by 2 (branches
// overwrite it), executes it, and returns the cycle cost.
func (c *CPU) stepThumb() uint32 {
	instr := c.Bus.Read16(c.R[15])
	pc := c.R[15]
	c.R[15] = pc + 2
	return c.executeThumb(uint32(instr), pc)
}

func (c *CPU) executeThumb(instr uint32, pc uint32) uint32 {
	switch {
	case instr&0xF800 == 0x1800: // format 2: add/subtract
		return c.thumbAddSub(instr)
	case instr&0xE000 == 0x0000: // format 1: move shifted register
		return c.thumbShift(instr)
	case instr&0xE000 == 0x2000: // format 3: move/compare/add/subtract immediate
		return c.thumbImmediate(instr)
	case instr&0xFC00 == 0x4000: // format 4: ALU operations
		return c.thumbALU(instr)
	case instr&0xFC00 == 0x4400: // format 5: hi register ops / BX
		return c.thumbHiReg(instr, pc)
	case instr&0xF800 == 0x4800: // format 6: PC-relative load
		return c.thumbPCRelLoad(instr, pc)
	case instr&0xF200 == 0x5000: // format 7: load/store with register offset
		return c.thumbLoadStoreReg(instr)
	case instr&0xF200 == 0x5200: // format 8: load/store sign-extended byte/halfword
		return c.thumbLoadStoreSext(instr)
	case instr&0xE000 == 0x6000: // format 9: load/store with immediate offset
		return c.thumbLoadStoreImm(instr)
	case instr&0xF000 == 0x8000: // format 10: load/store halfword
		return c.thumbLoadStoreHalf(instr)
	case instr&0xF000 == 0x9000: // format 11: SP-relative load/store
		return c.thumbSPRelative(instr)
	case instr&0xF000 == 0xA000: // format 12: load address
		return c.thumbLoadAddress(instr, pc)
	case instr&0xFF00 == 0xB000: // format 13: add offset to SP
		return c.thumbAddSP(instr)
	case instr&0xF600 == 0xB400: // format 14: push/pop
		return c.thumbPushPop(instr)
	case instr&0xF000 == 0xC000: // format 15: multiple load/store
		return c.thumbMultipleTransfer(instr)
	case instr&0xFF00 == 0xDF00: // format 17: SWI
		c.raiseSWI(pc + 2)
		return 3
	case instr&0xF000 == 0xD000: // format 16: conditional branch
		return c.thumbCondBranch(instr, pc)
	case instr&0xF800 == 0xE000: // format 18: unconditional branch
		return c.thumbUncondBranch(instr, pc)
	case instr&0xF000 == 0xF000: // format 19: long branch with link / BLX
		return c.thumbLongBranchLink(instr, pc)
	case instr&0xF800 == 0xE800: // format 19 second half, BLX form
		return c.thumbLongBranchLink(instr, pc)
	default:
		c.raiseUndefined(pc + 2)
		return 2
	}
}

func thumbReg(instr uint32, shift uint) uint8 { return uint8((instr >> shift) & 0x7) }

func (c *CPU) setNZ(v uint32) {
	c.setFlag(FlagN, v&(1<<31) != 0)
	c.setFlag(FlagZ, v == 0)
}

// format 1
func (c *CPU) thumbShift(instr uint32) uint32 {
	op := (instr >> 11) & 0x3
	amount := (instr >> 6) & 0x1F
	rs := thumbReg(instr, 3)
	rd := thumbReg(instr, 0)

	val, carry := applyShift(op, c.GetRegister(rs), amount, false, c.flag(FlagC))
	c.SetRegister(rd, val)
	c.setNZ(val)
	c.setFlag(FlagC, carry)
	return 1
}

// format 2
func (c *CPU) thumbAddSub(instr uint32) uint32 {
	immediate := instr&(1<<10) != 0
	subtract := instr&(1<<9) != 0
	rnOrImm := uint32((instr >> 6) & 0x7)
	rs := thumbReg(instr, 3)
	rd := thumbReg(instr, 0)

	op1 := c.GetRegister(rs)
	var op2 uint32
	if immediate {
		op2 = rnOrImm
	} else {
		op2 = c.GetRegister(uint8(rnOrImm))
	}

	var result uint32
	var carry, overflow bool
	if subtract {
		result, carry, overflow = subWithFlags(op1, op2)
	} else {
		result, carry, overflow = addWithFlags(op1, op2)
	}
	c.SetRegister(rd, result)
	c.setNZ(result)
	c.setFlag(FlagC, carry)
	c.setFlag(FlagV, overflow)
	return 1
}

// format 3
func (c *CPU) thumbImmediate(instr uint32) uint32 {
	op := (instr >> 11) & 0x3
	rd := uint8((instr >> 8) & 0x7)
	imm := instr & 0xFF

	switch op {
	case 0: // MOV
		c.SetRegister(rd, imm)
		c.setNZ(imm)
	case 1: // CMP
		result, carry, overflow := subWithFlags(c.GetRegister(rd), imm)
		c.setNZ(result)
		c.setFlag(FlagC, carry)
		c.setFlag(FlagV, overflow)
	case 2: // ADD
		result, carry, overflow := addWithFlags(c.GetRegister(rd), imm)
		c.SetRegister(rd, result)
		c.setNZ(result)
		c.setFlag(FlagC, carry)
		c.setFlag(FlagV, overflow)
	case 3: // SUB
		result, carry, overflow := subWithFlags(c.GetRegister(rd), imm)
		c.SetRegister(rd, result)
		c.setNZ(result)
		c.setFlag(FlagC, carry)
		c.setFlag(FlagV, overflow)
	}
	return 1
}

// format 4
func (c *CPU) thumbALU(instr uint32) uint32 {
	op := (instr >> 6) & 0xF
	rs := thumbReg(instr, 3)
	rd := thumbReg(instr, 0)
	a := c.GetRegister(rd)
	b := c.GetRegister(rs)

	var result uint32
	var store = true
	var carry, overflow bool
	haveCarry, haveOverflow := false, false

	switch op {
	case 0x0: // AND
		result = a & b
	case 0x1: // EOR
		result = a ^ b
	case 0x2: // LSL
		result, carry = applyShift(0, a, b&0xFF, true, c.flag(FlagC))
		haveCarry = true
	case 0x3: // LSR
		result, carry = applyShift(1, a, b&0xFF, true, c.flag(FlagC))
		haveCarry = true
	case 0x4: // ASR
		result, carry = applyShift(2, a, b&0xFF, true, c.flag(FlagC))
		haveCarry = true
	case 0x5: // ADC
		result, carry, overflow = addcWithFlags(a, b, c.flag(FlagC))
		haveCarry, haveOverflow = true, true
	case 0x6: // SBC
		result, carry, overflow = sbcWithFlags(a, b, c.flag(FlagC))
		haveCarry, haveOverflow = true, true
	case 0x7: // ROR
		result, carry = applyShift(3, a, b&0xFF, true, c.flag(FlagC))
		haveCarry = true
	case 0x8: // TST
		result = a & b
		store = false
	case 0x9: // NEG
		result, carry, overflow = subWithFlags(0, b)
		haveCarry, haveOverflow = true, true
	case 0xA: // CMP
		result, carry, overflow = subWithFlags(a, b)
		haveCarry, haveOverflow = true, true
		store = false
	case 0xB: // CMN
		result, carry, overflow = addWithFlags(a, b)
		haveCarry, haveOverflow = true, true
		store = false
	case 0xC: // ORR
		result = a | b
	case 0xD: // MUL
		result = a * b
	case 0xE: // BIC
		result = a &^ b
	case 0xF: // MVN
		result = ^b
	}

	if store {
		c.SetRegister(rd, result)
	}
	c.setNZ(result)
	if haveCarry {
		c.setFlag(FlagC, carry)
	}
	if haveOverflow {
		c.setFlag(FlagV, overflow)
	}
	return 1
}

// format 5
func (c *CPU) thumbHiReg(instr uint32, pc uint32) uint32 {
	op := (instr >> 8) & 0x3
	h1 := instr&(1<<7) != 0
	h2 := instr&(1<<6) != 0
	rs := uint8((instr>>3)&0x7) | boolBit(h2, 3)
	rd := uint8(instr&0x7) | boolBit(h1, 3)

	switch op {
	case 0: // ADD
		c.SetRegister(rd, c.GetRegister(rd)+c.GetRegister(rs))
		if rd == 15 {
			c.R[15] &^= 1
		}
	case 1: // CMP
		result, carry, overflow := subWithFlags(c.GetRegister(rd), c.GetRegister(rs))
		c.setNZ(result)
		c.setFlag(FlagC, carry)
		c.setFlag(FlagV, overflow)
	case 2: // MOV
		c.SetRegister(rd, c.GetRegister(rs))
		if rd == 15 {
			c.R[15] &^= 1
		}
	case 3: // BX / BLX
		target := c.GetRegister(rs)
		if h1 {
			c.R[14] = (pc + 2) | 1
		}
		if target&1 != 0 {
			c.setFlag(FlagT, true)
			target &^= 1
		} else {
			c.setFlag(FlagT, false)
			target &^= 3
		}
		c.R[15] = target
	}
	return 3
}

func boolBit(b bool, shift uint8) uint8 {
	if b {
		return 1 << shift
	}
	return 0
}

// format 6
func (c *CPU) thumbPCRelLoad(instr uint32, pc uint32) uint32 {
	rd := uint8((instr >> 8) & 0x7)
	imm := (instr & 0xFF) << 2
	addr := ((pc + 4) &^ 3) + imm
	c.SetRegister(rd, c.Bus.Read32(addr))
	return 3
}

// format 7
func (c *CPU) thumbLoadStoreReg(instr uint32) uint32 {
	opcode := (instr >> 10) & 0x3
	ro := thumbReg(instr, 6)
	rb := thumbReg(instr, 3)
	rd := thumbReg(instr, 0)
	addr := c.GetRegister(rb) + c.GetRegister(ro)

	switch opcode {
	case 0: // STR
		c.Bus.Write32(addr, c.GetRegister(rd))
		return 2
	case 1: // STRB
		c.Bus.Write8(addr, uint8(c.GetRegister(rd)))
		return 2
	case 2: // LDR
		c.SetRegister(rd, readWordRotated(c.Bus, addr))
		return 3
	default: // LDRB
		c.SetRegister(rd, uint32(c.Bus.Read8(addr)))
		return 3
	}
}

// format 8
func (c *CPU) thumbLoadStoreSext(instr uint32) uint32 {
	opcode := (instr >> 10) & 0x3
	ro := thumbReg(instr, 6)
	rb := thumbReg(instr, 3)
	rd := thumbReg(instr, 0)
	addr := c.GetRegister(rb) + c.GetRegister(ro)

	switch opcode {
	case 0: // STRH
		c.Bus.Write16(addr&^1, uint16(c.GetRegister(rd)))
		return 2
	case 1: // LDSB
		c.SetRegister(rd, uint32(int32(int8(c.Bus.Read8(addr)))))
		return 3
	case 2: // LDRH
		c.SetRegister(rd, uint32(c.Bus.Read16(addr&^1)))
		return 3
	default: // LDSH
		c.SetRegister(rd, uint32(int32(int16(c.Bus.Read16(addr&^1)))))
		return 3
	}
}

// format 9
func (c *CPU) thumbLoadStoreImm(instr uint32) uint32 {
	byteAccess := instr&(1<<12) != 0
	load := instr&(1<<11) != 0
	offset := (instr >> 6) & 0x1F
	rb := thumbReg(instr, 3)
	rd := thumbReg(instr, 0)

	var addr uint32
	if byteAccess {
		addr = c.GetRegister(rb) + offset
	} else {
		addr = c.GetRegister(rb) + (offset << 2)
	}

	switch {
	case load && byteAccess:
		c.SetRegister(rd, uint32(c.Bus.Read8(addr)))
	case load && !byteAccess:
		c.SetRegister(rd, readWordRotated(c.Bus, addr))
	case !load && byteAccess:
		c.Bus.Write8(addr, uint8(c.GetRegister(rd)))
	default:
		c.Bus.Write32(addr, c.GetRegister(rd))
	}
	if load {
		return 3
	}
	return 2
}

// format 10
func (c *CPU) thumbLoadStoreHalf(instr uint32) uint32 {
	load := instr&(1<<11) != 0
	offset := ((instr >> 6) & 0x1F) << 1
	rb := thumbReg(instr, 3)
	rd := thumbReg(instr, 0)
	addr := c.GetRegister(rb) + offset

	if load {
		c.SetRegister(rd, uint32(c.Bus.Read16(addr&^1)))
		return 3
	}
	c.Bus.Write16(addr&^1, uint16(c.GetRegister(rd)))
	return 2
}

// format 11
func (c *CPU) thumbSPRelative(instr uint32) uint32 {
	load := instr&(1<<11) != 0
	rd := uint8((instr >> 8) & 0x7)
	imm := (instr & 0xFF) << 2
	addr := c.R[13] + imm

	if load {
		c.SetRegister(rd, readWordRotated(c.Bus, addr))
		return 3
	}
	c.Bus.Write32(addr, c.GetRegister(rd))
	return 2
}

// format 12
func (c *CPU) thumbLoadAddress(instr uint32, pc uint32) uint32 {
	sp := instr&(1<<11) != 0
	rd := uint8((instr >> 8) & 0x7)
	imm := (instr & 0xFF) << 2

	if sp {
		c.SetRegister(rd, c.R[13]+imm)
	} else {
		c.SetRegister(rd, ((pc+4)&^3)+imm)
	}
	return 1
}

// format 13
func (c *CPU) thumbAddSP(instr uint32) uint32 {
	negative := instr&(1<<7) != 0
	imm := (instr & 0x7F) << 2
	if negative {
		c.R[13] -= imm
	} else {
		c.R[13] += imm
	}
	return 1
}

// format 14
func (c *CPU) thumbPushPop(instr uint32) uint32 {
	load := instr&(1<<11) != 0
	includePCLR := instr&(1<<8) != 0
	regList := instr & 0xFF

	count := 0
	for i := 0; i < 8; i++ {
		if regList&(1<<i) != 0 {
			count++
		}
	}
	if includePCLR {
		count++
	}

	if load { // POP
		addr := c.R[13]
		for i := 0; i < 8; i++ {
			if regList&(1<<i) != 0 {
				c.SetRegister(uint8(i), c.Bus.Read32(addr))
				addr += 4
			}
		}
		if includePCLR {
			c.R[15] = c.Bus.Read32(addr) &^ 1
			addr += 4
		}
		c.R[13] = addr
		return uint32(count) + 2
	}

	// PUSH
	addr := c.R[13] - uint32(count)*4
	c.R[13] = addr
	for i := 0; i < 8; i++ {
		if regList&(1<<i) != 0 {
			c.Bus.Write32(addr, c.GetRegister(uint8(i)))
			addr += 4
		}
	}
	if includePCLR {
		c.Bus.Write32(addr, c.R[14])
	}
	return uint32(count) + 1
}

// format 15
func (c *CPU) thumbMultipleTransfer(instr uint32) uint32 {
	load := instr&(1<<11) != 0
	rb := uint8((instr >> 8) & 0x7)
	regList := instr & 0xFF

	count := 0
	for i := 0; i < 8; i++ {
		if regList&(1<<i) != 0 {
			count++
		}
	}

	addr := c.GetRegister(rb)
	for i := 0; i < 8; i++ {
		if regList&(1<<i) == 0 {
			continue
		}
		if load {
			c.SetRegister(uint8(i), c.Bus.Read32(addr))
		} else {
			c.Bus.Write32(addr, c.GetRegister(uint8(i)))
		}
		addr += 4
	}
	c.SetRegister(rb, addr)

	if load {
		return uint32(count) + 2
	}
	return uint32(count) + 1
}

// format 16
func (c *CPU) thumbCondBranch(instr uint32, pc uint32) uint32 {
	cond := (instr >> 8) & 0xF
	offset := instr & 0xFF
	if offset&0x80 != 0 {
		offset |= 0xFFFFFF00
	}
	if !c.checkCondition(cond) {
		return 1
	}
	c.R[15] = pc + 4 + (offset << 1)
	return 3
}

// format 18
func (c *CPU) thumbUncondBranch(instr uint32, pc uint32) uint32 {
	offset := instr & 0x7FF
	if offset&0x400 != 0 {
		offset |= 0xFFFFF800
	}
	c.R[15] = pc + 4 + (offset << 1)
	return 3
}

// format 19: BL/BLX long branch, two 16-bit halves.
func (c *CPU) thumbLongBranchLink(instr uint32, pc uint32) uint32 {
	low := instr&(1<<11) != 0
	offset := instr & 0x7FF

	if !low {
		// First half: high 11 bits of the signed offset, shifted into place.
		ext := offset
		if ext&0x400 != 0 {
			ext |= 0xFFFFF800
		}
		c.R[14] = pc + 4 + (ext << 12)
		return 1
	}

	// Second half: LR + (low11<<1) is the target; next instruction address
	// (with bit 0 set to stay in Thumb) becomes the new LR.
	target := c.R[14] + (offset << 1)
	nextPC := (pc + 2) | 1
	c.R[14] = nextPC
	if instr&0xF800 == 0xE800 { // BLX: word-aligned ARM target
		target &^= 3
		c.setFlag(FlagT, false)
	}
	c.R[15] = target
	return 3
}
