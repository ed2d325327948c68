package chip8

// opcode is a 2 byte CHIP-8 instruction word with accessors for the
// encoded operand fields.
type opcode uint16

// x returns the Vx register index nibble.
func (op opcode) x() uint8 {
	return uint8(op>>8) & 0x0F
}

// y returns the Vy register index nibble.
func (op opcode) y() uint8 {
	return uint8(op>>4) & 0x0F
}

// n returns the lowest nibble.
func (op opcode) n() uint8 {
	return uint8(op) & 0x0F
}

// nn returns the low byte immediate.
func (op opcode) nn() uint8 {
	return uint8(op)
}

// nnn returns the 12 bit address immediate.
func (op opcode) nnn() uint16 {
	return uint16(op) & 0x0FFF
}

// Step executes a single instruction: it fetches the 2 byte big-endian
// opcode at PC, decodes it by nibble patterns and executes it. Instructions
// advance PC by 2 unless they set it explicitly.
//
// While the interpreter awaits a key press (Fx0A), Step returns immediately
// without advancing PC until the keypad snapshot contains a pressed key.
//
// On an UnknownOpcodeError PC still points at the offending instruction so
// the caller can either halt or skip it via SkipInstruction. Memory and
// stack faults are fatal.
func (c *Chip8) Step() error {
	if c.awaitingKey {
		c.checkAwaitedKey()
		return nil
	}

	if int(c.pc)+1 >= MemorySize {
		return MemoryFaultError{PC: c.pc, Address: uint32(c.pc) + 1}
	}
	op := opcode(uint16(c.mem[c.pc])<<8 | uint16(c.mem[c.pc+1]))

	switch uint16(op) & 0xF000 {
	case 0x0000:
		return c.execSystem(op)
	case 0x1000:
		// 1nnn - jp addr
		c.pc = op.nnn()
	case 0x2000:
		// 2nnn - call addr
		if int(c.sp) >= StackSize {
			return StackFaultError{PC: c.pc, Opcode: uint16(op)}
		}
		c.stack[c.sp] = c.pc + 2
		c.sp++
		c.pc = op.nnn()
	case 0x3000:
		// 3xnn - se Vx, byte
		c.advance(c.v[op.x()] == op.nn())
	case 0x4000:
		// 4xnn - sne Vx, byte
		c.advance(c.v[op.x()] != op.nn())
	case 0x5000:
		// 5xy0 - se Vx, Vy
		if op.n() != 0 {
			return UnknownOpcodeError{PC: c.pc, Opcode: uint16(op)}
		}
		c.advance(c.v[op.x()] == c.v[op.y()])
	case 0x6000:
		// 6xnn - ld Vx, byte
		c.v[op.x()] = op.nn()
		c.advance(false)
	case 0x7000:
		// 7xnn - add Vx, byte (no carry flag)
		c.v[op.x()] += op.nn()
		c.advance(false)
	case 0x8000:
		return c.execArithmetic(op)
	case 0x9000:
		// 9xy0 - sne Vx, Vy
		if op.n() != 0 {
			return UnknownOpcodeError{PC: c.pc, Opcode: uint16(op)}
		}
		c.advance(c.v[op.x()] != c.v[op.y()])
	case 0xA000:
		// Annn - ld I, addr
		c.i = op.nnn()
		c.advance(false)
	case 0xB000:
		// Bnnn - jp V0, addr
		c.pc = op.nnn() + uint16(c.v[0])
	case 0xC000:
		// Cxnn - rnd Vx, byte
		c.v[op.x()] = c.randByte() & op.nn()
		c.advance(false)
	case 0xD000:
		return c.execDraw(op)
	case 0xE000:
		return c.execKeySkip(op)
	case 0xF000:
		return c.execMisc(op)
	}
	return nil
}

// SkipInstruction advances PC past the current instruction without
// executing it. It is used to continue after an unknown opcode when the
// error policy is to log and skip instead of halting.
func (c *Chip8) SkipInstruction() {
	c.pc += 2
}

// advance moves PC to the next instruction, or past it when a skip
// condition holds.
func (c *Chip8) advance(skipNext bool) {
	if skipNext {
		c.pc += 4
	} else {
		c.pc += 2
	}
}

// checkAwaitedKey finishes a pending Fx0A once a pressed key is observed.
// The lowest pressed key code wins if multiple keys are down.
func (c *Chip8) checkAwaitedKey() {
	for key, pressed := range c.keys {
		if pressed {
			c.v[c.awaitingRegister] = uint8(key)
			c.awaitingKey = false
			c.advance(false)
			return
		}
	}
}

// execSystem handles the 0nnn instruction group. Machine code routine
// calls (0nnn) are not supported, matching modern interpreters.
func (c *Chip8) execSystem(op opcode) error {
	switch uint16(op) {
	case 0x00E0:
		// 00E0 - cls
		c.display.clear()
		c.advance(false)
	case 0x00EE:
		// 00EE - ret
		if c.sp == 0 {
			return StackFaultError{PC: c.pc, Opcode: uint16(op)}
		}
		c.sp--
		c.pc = c.stack[c.sp]
	default:
		return UnknownOpcodeError{PC: c.pc, Opcode: uint16(op)}
	}
	return nil
}

// execArithmetic handles the 8xyn register-register operations.
// The operations that produce a carry, borrow or shifted-out bit write the
// flag to VF after the result, so an operand that is itself VF is not
// corrupted before use.
func (c *Chip8) execArithmetic(op opcode) error {
	x, y := op.x(), op.y()

	switch op.n() {
	case 0x0:
		// 8xy0 - ld Vx, Vy
		c.v[x] = c.v[y]
	case 0x1:
		// 8xy1 - or Vx, Vy
		c.v[x] |= c.v[y]
	case 0x2:
		// 8xy2 - and Vx, Vy
		c.v[x] &= c.v[y]
	case 0x3:
		// 8xy3 - xor Vx, Vy
		c.v[x] ^= c.v[y]
	case 0x4:
		// 8xy4 - add Vx, Vy - VF = carry
		result := uint16(c.v[x]) + uint16(c.v[y])
		c.v[x] = uint8(result)
		c.v[0xF] = uint8(result >> 8)
	case 0x5:
		// 8xy5 - sub Vx, Vy - VF = not borrow
		flag := boolToFlag(c.v[x] >= c.v[y])
		c.v[x] -= c.v[y]
		c.v[0xF] = flag
	case 0x6:
		// 8xy6 - shr Vx - VF = shifted out bit
		src := c.shiftSource(x, y)
		flag := src & 0x01
		c.v[x] = src >> 1
		c.v[0xF] = flag
	case 0x7:
		// 8xy7 - subn Vx, Vy - VF = not borrow
		flag := boolToFlag(c.v[y] >= c.v[x])
		c.v[x] = c.v[y] - c.v[x]
		c.v[0xF] = flag
	case 0xE:
		// 8xyE - shl Vx - VF = shifted out bit
		src := c.shiftSource(x, y)
		flag := src >> 7
		c.v[x] = src << 1
		c.v[0xF] = flag
	default:
		return UnknownOpcodeError{PC: c.pc, Opcode: uint16(op)}
	}
	c.advance(false)
	return nil
}

// shiftSource returns the register value the shift instructions operate on,
// depending on the configured quirk variant.
func (c *Chip8) shiftSource(x, y uint8) uint8 {
	if c.quirks.ShiftSourceY {
		return c.v[y]
	}
	return c.v[x]
}

// execDraw handles Dxyn: it XOR-blits an 8 pixel wide, n pixel tall sprite
// read from memory at I to (Vx mod width, Vy mod height) and sets VF to 1
// if any pixel was switched off by the draw.
func (c *Chip8) execDraw(op opcode) error {
	rows := uint16(op.n())
	if int(c.i)+int(rows) > MemorySize {
		return MemoryFaultError{PC: c.pc, Opcode: uint16(op), Address: uint32(c.i) + uint32(rows) - 1}
	}

	x := c.v[op.x()] % DisplayWidth
	y := c.v[op.y()] % DisplayHeight
	sprite := c.mem[c.i : c.i+rows]

	c.v[0xF] = boolToFlag(c.display.drawSprite(x, y, sprite))
	c.advance(false)
	return nil
}

// execKeySkip handles the Ex9E/ExA1 keypad skip instructions.
func (c *Chip8) execKeySkip(op opcode) error {
	key := c.v[op.x()] & 0x0F

	switch op.nn() {
	case 0x9E:
		// Ex9E - skp Vx
		c.advance(c.keys[key])
	case 0xA1:
		// ExA1 - sknp Vx
		c.advance(!c.keys[key])
	default:
		return UnknownOpcodeError{PC: c.pc, Opcode: uint16(op)}
	}
	return nil
}

// execMisc handles the Fxnn instruction group: timer access, key waiting,
// index register math, BCD conversion and register block transfers.
func (c *Chip8) execMisc(op opcode) error {
	x := op.x()

	switch op.nn() {
	case 0x07:
		// Fx07 - ld Vx, DT
		c.v[x] = c.dt
	case 0x0A:
		// Fx0A - ld Vx, K - enter the awaiting key state, PC does not
		// advance until a key press is observed by a later Step call.
		c.awaitingKey = true
		c.awaitingRegister = x
		return nil
	case 0x15:
		// Fx15 - ld DT, Vx
		c.dt = c.v[x]
	case 0x18:
		// Fx18 - ld ST, Vx
		c.st = c.v[x]
	case 0x1E:
		// Fx1E - add I, Vx (no overflow flag in base CHIP-8)
		c.i += uint16(c.v[x])
	case 0x29:
		// Fx29 - ld F, Vx - point I at the font glyph for digit Vx
		c.i = FontAddress + FontGlyphSize*uint16(c.v[x]&0x0F)
	case 0x33:
		// Fx33 - ld B, Vx - store the BCD digits of Vx at I, I+1, I+2
		if int(c.i)+2 >= MemorySize {
			return MemoryFaultError{PC: c.pc, Opcode: uint16(op), Address: uint32(c.i) + 2}
		}
		c.mem[c.i] = c.v[x] / 100
		c.mem[c.i+1] = c.v[x] / 10 % 10
		c.mem[c.i+2] = c.v[x] % 10
	case 0x55:
		// Fx55 - ld [I], Vx - store V0..Vx at I
		if int(c.i)+int(x) >= MemorySize {
			return MemoryFaultError{PC: c.pc, Opcode: uint16(op), Address: uint32(c.i) + uint32(x)}
		}
		copy(c.mem[c.i:], c.v[:x+1])
		if c.quirks.LoadStoreIncrementI {
			c.i += uint16(x) + 1
		}
	case 0x65:
		// Fx65 - ld Vx, [I] - load V0..Vx from I
		if int(c.i)+int(x) >= MemorySize {
			return MemoryFaultError{PC: c.pc, Opcode: uint16(op), Address: uint32(c.i) + uint32(x)}
		}
		copy(c.v[:x+1], c.mem[c.i:])
		if c.quirks.LoadStoreIncrementI {
			c.i += uint16(x) + 1
		}
	default:
		return UnknownOpcodeError{PC: c.pc, Opcode: uint16(op)}
	}
	c.advance(false)
	return nil
}

func boolToFlag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
