// Package chip8 implements the CHIP-8 virtual machine core.
// It owns the emulated memory, registers, stack, timers, keypad state and
// display buffer and executes one instruction per Step call. The surrounding
// driver loop is responsible for calling Step at the configured instruction
// rate and TickTimers at 60 Hz.
package chip8

import (
	"math/rand"
)

// CHIP-8 memory layout constants.
//
// CHIP-8 memory map (4KB total):
//
//	0x000-0x1FF: Interpreter and font data (512 bytes)
//	0x200-0xFFF: User program space (3584 bytes)
const (
	// MemorySize is the size of the flat CHIP-8 address space in bytes.
	MemorySize = 0x1000

	// ProgramStart is the memory address where CHIP-8 programs begin execution.
	ProgramStart = 0x200

	// FontAddress is the memory address the built-in font is loaded to.
	// The area below 0x200 belongs to the interpreter, 0x050 is the
	// conventional location for the 16 digit glyphs.
	FontAddress = 0x050

	// FontGlyphSize is the size of a single hex digit glyph in bytes.
	FontGlyphSize = 5

	// StackSize is the maximum number of nested subroutine calls.
	StackSize = 16

	// KeyCount is the number of keys on the hex keypad.
	KeyCount = 16

	registerCount = 16
	maxROMSize    = MemorySize - ProgramStart
)

// Keys holds the pressed state of the 16 hex keypad keys, indexed by
// key code 0x0-0xF. The input collaborator writes a full snapshot before
// each emulation cycle, the core only reads it.
type Keys [KeyCount]bool

// fontset contains the standard 16 hex digit glyphs, 5 bytes per digit.
var fontset = [...]uint8{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Quirks selects between diverging CHIP-8 instruction behaviors.
// Implementations of the original interpreter disagree on these, some ROMs
// depend on one variant or the other. The zero value selects the modern
// behavior that the majority of ROMs expect.
type Quirks struct {
	// ShiftSourceY makes 8xy6/8xyE shift Vy into Vx instead of
	// shifting Vx in place.
	ShiftSourceY bool

	// LoadStoreIncrementI makes Fx55/Fx65 leave I pointing past the
	// copied range instead of leaving it unchanged.
	LoadStoreIncrementI bool
}

// Chip8 holds the complete state of the virtual machine.
type Chip8 struct {
	mem    [MemorySize]uint8
	v      [registerCount]uint8 // VF doubles as carry/borrow/collision flag
	i      uint16
	pc     uint16
	stack  [StackSize]uint16
	sp     uint8
	dt, st uint8 // delay and sound timer
	keys   Keys

	display display
	quirks  Quirks

	// Fx0A spans multiple Step calls, the interpreter stays in the
	// awaiting state until a key press is observed.
	awaitingKey      bool
	awaitingRegister uint8

	randByte func() uint8
}

// New returns a virtual machine in its power-on state: memory cleared,
// the font loaded at FontAddress and the program counter at ProgramStart.
func New() *Chip8 {
	c := &Chip8{
		randByte: func() uint8 { return uint8(rand.Intn(0x100)) },
	}
	copy(c.mem[FontAddress:], fontset[:])
	c.pc = ProgramStart
	return c
}

// SetQuirks configures the instruction behavior variants.
func (c *Chip8) SetQuirks(quirks Quirks) {
	c.quirks = quirks
}

// Reset restores the power-on state, including the loaded font.
// A ROM has to be loaded again after a reset.
func (c *Chip8) Reset() {
	quirks := c.quirks
	randByte := c.randByte
	*c = *New()
	c.quirks = quirks
	c.randByte = randByte
}

// LoadROM copies the program image into memory at ProgramStart.
// It returns a ROMTooLargeError if the image does not fit into the
// user program space.
func (c *Chip8) LoadROM(rom []byte) error {
	if len(rom) > maxROMSize {
		return ROMTooLargeError{Size: len(rom), Free: maxROMSize}
	}
	copy(c.mem[ProgramStart:], rom)
	return nil
}

// SetKeys stores a snapshot of the keypad state for the following
// Step calls.
func (c *Chip8) SetKeys(keys Keys) {
	c.keys = keys
}

// Frame returns a copy of the current display buffer.
func (c *Chip8) Frame() Frame {
	return c.display.frame()
}

// PC returns the current program counter, useful for diagnostics.
func (c *Chip8) PC() uint16 {
	return c.pc
}

// TickTimers decrements the delay and sound timer by one if they are
// non-zero. The driver loop calls this at a fixed 60 Hz rate, independent
// of the instruction rate.
func (c *Chip8) TickTimers() {
	if c.dt > 0 {
		c.dt--
	}
	if c.st > 0 {
		c.st--
	}
}

// SoundActive reports whether the audio collaborator should emit the beep
// tone. The sound is active as long as the sound timer is non-zero.
func (c *Chip8) SoundActive() bool {
	return c.st > 0
}
