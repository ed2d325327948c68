package chip8

import (
	"fmt"

	chip8cpu "github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Disassemble returns the assembly representation of an instruction word,
// for example "ld I, $234". It is used for the debug instruction trace and
// for fault diagnostics. Unknown opcodes are rendered as a data byte pair.
func Disassemble(op uint16) string {
	ins := lookupInstruction(op)
	if ins == nil {
		return fmt.Sprintf(".byte $%02X, $%02X", op>>8, op&0xFF)
	}

	if params := formatParams(ins.Name, opcode(op)); params != "" {
		return fmt.Sprintf("%s %s", ins.Name, params)
	}
	return ins.Name
}

// lookupInstruction matches an opcode word against the CHIP-8 instruction
// table, indexed by the top nibble.
func lookupInstruction(op uint16) *chip8cpu.Instruction {
	firstNibble := (op & 0xF000) >> 12
	for _, candidate := range chip8cpu.Opcodes[int(firstNibble)] {
		if candidate.Info.Mask&op == candidate.Info.Value {
			return candidate.Instruction
		}
	}
	return nil
}

// formatParams formats the operands of an instruction.
func formatParams(name string, op opcode) string {
	switch name {
	case chip8cpu.ClsName, chip8cpu.RetName:
		return ""
	case chip8cpu.JpName:
		if uint16(op)&0xF000 == 0xB000 {
			return fmt.Sprintf("V0, $%03X", op.nnn())
		}
		return fmt.Sprintf("$%03X", op.nnn())
	case chip8cpu.CallName:
		return fmt.Sprintf("$%03X", op.nnn())
	case chip8cpu.SeName, chip8cpu.SneName:
		if uint16(op)&0xF000 == 0x3000 || uint16(op)&0xF000 == 0x4000 {
			return fmt.Sprintf("V%X, $%02X", op.x(), op.nn())
		}
		return fmt.Sprintf("V%X, V%X", op.x(), op.y())
	case chip8cpu.LdName:
		return formatLoadParams(op)
	case chip8cpu.AddName:
		return formatAddParams(op)
	case chip8cpu.OrName, chip8cpu.AndName, chip8cpu.XorName,
		chip8cpu.SubName, chip8cpu.SubnName:
		return fmt.Sprintf("V%X, V%X", op.x(), op.y())
	case chip8cpu.ShrName, chip8cpu.ShlName, chip8cpu.SkpName, chip8cpu.SknpName:
		return fmt.Sprintf("V%X", op.x())
	case chip8cpu.RndName:
		return fmt.Sprintf("V%X, $%02X", op.x(), op.nn())
	case chip8cpu.DrwName:
		return fmt.Sprintf("V%X, V%X, $%X", op.x(), op.y(), op.n())
	}
	return ""
}

// formatLoadParams formats the operands of the ld instruction variants.
func formatLoadParams(op opcode) string {
	switch uint16(op) & 0xF000 {
	case 0x6000:
		return fmt.Sprintf("V%X, $%02X", op.x(), op.nn())
	case 0x8000:
		return fmt.Sprintf("V%X, V%X", op.x(), op.y())
	case 0xA000:
		return fmt.Sprintf("I, $%03X", op.nnn())
	case 0xF000:
		return formatTimerLoadParams(op)
	}
	return ""
}

// formatTimerLoadParams formats the Fxnn ld variants.
func formatTimerLoadParams(op opcode) string {
	switch op.nn() {
	case 0x07:
		return fmt.Sprintf("V%X, DT", op.x())
	case 0x0A:
		return fmt.Sprintf("V%X, K", op.x())
	case 0x15:
		return fmt.Sprintf("DT, V%X", op.x())
	case 0x18:
		return fmt.Sprintf("ST, V%X", op.x())
	case 0x29:
		return fmt.Sprintf("F, V%X", op.x())
	case 0x33:
		return fmt.Sprintf("B, V%X", op.x())
	case 0x55:
		return fmt.Sprintf("[I], V%X", op.x())
	case 0x65:
		return fmt.Sprintf("V%X, [I]", op.x())
	}
	return ""
}

// formatAddParams formats the operands of the add instruction variants.
func formatAddParams(op opcode) string {
	switch uint16(op) & 0xF000 {
	case 0x7000:
		return fmt.Sprintf("V%X, $%02X", op.x(), op.nn())
	case 0x8000:
		return fmt.Sprintf("V%X, V%X", op.x(), op.y())
	case 0xF000:
		return fmt.Sprintf("I, V%X", op.x())
	}
	return ""
}

// NextOpcode returns the instruction word PC currently points at.
// It is used together with Disassemble for the debug trace.
func (c *Chip8) NextOpcode() (uint16, bool) {
	if int(c.pc)+1 >= MemorySize {
		return 0, false
	}
	return uint16(c.mem[c.pc])<<8 | uint16(c.mem[c.pc+1]), true
}
