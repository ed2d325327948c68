package chip8

import "fmt"

// UnknownOpcodeError is returned when Step fetches an opcode that does not
// match any CHIP-8 instruction pattern. The program counter still points at
// the offending instruction, the caller decides whether to halt or to skip
// it and continue.
type UnknownOpcodeError struct {
	PC     uint16
	Opcode uint16
}

func (e UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode %04X at address %04X", e.Opcode, e.PC)
}

// MemoryFaultError is returned when an instruction accesses an address
// outside of the 4KB address space. It indicates a malformed ROM or an
// interpreter bug and is always fatal.
type MemoryFaultError struct {
	PC      uint16
	Opcode  uint16
	Address uint32
}

func (e MemoryFaultError) Error() string {
	return fmt.Sprintf("opcode %04X at address %04X accesses out of range memory address %05X",
		e.Opcode, e.PC, e.Address)
}

// StackFaultError is returned on a call with a full stack or a return with
// an empty stack. It is always fatal.
type StackFaultError struct {
	PC     uint16
	Opcode uint16
}

func (e StackFaultError) Error() string {
	return fmt.Sprintf("opcode %04X at address %04X overflows or underflows the call stack",
		e.Opcode, e.PC)
}

// ROMTooLargeError is returned when a program image exceeds the available
// user program space.
type ROMTooLargeError struct {
	Size int
	Free int
}

func (e ROMTooLargeError) Error() string {
	return fmt.Sprintf("ROM size %d exceeds the available program space of %d bytes",
		e.Size, e.Free)
}
