package chip8

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

// newTestMachine returns a machine with the given program loaded and a
// deterministic random source.
func newTestMachine(t *testing.T, program ...byte) *Chip8 {
	t.Helper()

	c := New()
	c.randByte = func() uint8 { return 0xFF }
	assert.NoError(t, c.LoadROM(program))
	return c
}

func TestStep_Arithmetic(t *testing.T) {
	tests := []struct {
		name   string
		opcode [2]byte
		vx, vy uint8
		want   uint8
		wantVF uint8
	}{
		{"ld Vx, Vy", [2]byte{0x80, 0x10}, 0x12, 0x34, 0x34, 0},
		{"or", [2]byte{0x80, 0x11}, 0xF0, 0x0F, 0xFF, 0},
		{"and", [2]byte{0x80, 0x12}, 0xF0, 0xFF, 0xF0, 0},
		{"xor", [2]byte{0x80, 0x13}, 0xFF, 0x0F, 0xF0, 0},
		{"add without carry", [2]byte{0x80, 0x14}, 0x01, 0x02, 0x03, 0},
		{"add with carry", [2]byte{0x80, 0x14}, 0xFF, 0x01, 0x00, 1},
		{"sub without borrow", [2]byte{0x80, 0x15}, 0x05, 0x03, 0x02, 1},
		{"sub equal operands", [2]byte{0x80, 0x15}, 0x03, 0x03, 0x00, 1},
		{"sub with borrow", [2]byte{0x80, 0x15}, 0x03, 0x05, 0xFE, 0},
		{"subn without borrow", [2]byte{0x80, 0x17}, 0x03, 0x05, 0x02, 1},
		{"subn with borrow", [2]byte{0x80, 0x17}, 0x05, 0x03, 0xFE, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestMachine(t, tt.opcode[:]...)
			c.v[0] = tt.vx
			c.v[1] = tt.vy

			assert.NoError(t, c.Step())

			assert.Equal(t, tt.want, c.v[0])
			assert.Equal(t, tt.wantVF, c.v[0xF])
			assert.Equal(t, uint16(ProgramStart+2), c.pc)
		})
	}
}

// The flag write has to happen after the result write, otherwise an
// operation targeting VF itself would compute with a corrupted operand.
func TestStep_ArithmeticFlagWriteOrder(t *testing.T) {
	// 8F14 - add VF, V1
	c := newTestMachine(t, 0x8F, 0x14)
	c.v[0xF] = 0xFF
	c.v[0x1] = 0x01

	assert.NoError(t, c.Step())

	// VF holds the carry flag, not the wrapped sum
	assert.Equal(t, uint8(1), c.v[0xF])
}

func TestStep_AddImmediateSetsNoFlag(t *testing.T) {
	// 70FF - add V0, $FF
	c := newTestMachine(t, 0x70, 0xFF)
	c.v[0] = 0x02
	c.v[0xF] = 0

	assert.NoError(t, c.Step())

	// 7xnn wraps without touching the carry flag
	assert.Equal(t, uint8(0x01), c.v[0])
	assert.Equal(t, uint8(0), c.v[0xF])
}

func TestStep_Shift(t *testing.T) {
	tests := []struct {
		name   string
		opcode [2]byte
		quirks Quirks
		vx, vy uint8
		want   uint8
		wantVF uint8
	}{
		{"shr", [2]byte{0x80, 0x16}, Quirks{}, 0x05, 0x00, 0x02, 1},
		{"shr even value", [2]byte{0x80, 0x16}, Quirks{}, 0x04, 0x00, 0x02, 0},
		{"shl", [2]byte{0x80, 0x1E}, Quirks{}, 0x81, 0x00, 0x02, 1},
		{"shl no carry", [2]byte{0x80, 0x1E}, Quirks{}, 0x41, 0x00, 0x82, 0},
		{"shr from Vy", [2]byte{0x80, 0x16}, Quirks{ShiftSourceY: true}, 0x00, 0x05, 0x02, 1},
		{"shl from Vy", [2]byte{0x80, 0x1E}, Quirks{ShiftSourceY: true}, 0x00, 0x81, 0x02, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestMachine(t, tt.opcode[:]...)
			c.SetQuirks(tt.quirks)
			c.v[0] = tt.vx
			c.v[1] = tt.vy

			assert.NoError(t, c.Step())

			assert.Equal(t, tt.want, c.v[0])
			assert.Equal(t, tt.wantVF, c.v[0xF])
		})
	}
}

func TestStep_JumpCallReturn(t *testing.T) {
	// 0x200: call $206
	// 0x206: ret
	c := newTestMachine(t,
		0x22, 0x06, // 2206 - call $206
		0x00, 0x00,
		0x00, 0x00,
		0x00, 0xEE, // 00EE - ret
	)

	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0x206), c.pc)
	assert.Equal(t, uint8(1), c.sp)

	assert.NoError(t, c.Step())

	// return lands on the instruction following the call, stack is empty
	assert.Equal(t, uint16(0x202), c.pc)
	assert.Equal(t, uint8(0), c.sp)
}

func TestStep_Jump(t *testing.T) {
	c := newTestMachine(t, 0x13, 0x00) // 1300 - jp $300

	assert.NoError(t, c.Step())

	assert.Equal(t, uint16(0x300), c.pc)
}

func TestStep_JumpV0(t *testing.T) {
	c := newTestMachine(t, 0xB3, 0x00) // B300 - jp V0, $300
	c.v[0] = 0x10

	assert.NoError(t, c.Step())

	assert.Equal(t, uint16(0x310), c.pc)
}

func TestStep_StackOverflow(t *testing.T) {
	// call to self, each step nests one call deeper
	c := newTestMachine(t, 0x22, 0x00) // 2200 - call $200

	for i := 0; i < StackSize; i++ {
		assert.NoError(t, c.Step())
	}

	err := c.Step()
	var stackErr StackFaultError
	assert.True(t, errors.As(err, &stackErr))
	assert.Equal(t, uint16(0x200), stackErr.PC)
	assert.Equal(t, uint16(0x2200), stackErr.Opcode)
}

func TestStep_StackUnderflow(t *testing.T) {
	c := newTestMachine(t, 0x00, 0xEE) // 00EE - ret

	err := c.Step()
	var stackErr StackFaultError
	assert.True(t, errors.As(err, &stackErr))
}

func TestStep_Skips(t *testing.T) {
	tests := []struct {
		name     string
		opcode   [2]byte
		vx, vy   uint8
		wantSkip bool
	}{
		{"se byte taken", [2]byte{0x30, 0x42}, 0x42, 0, true},
		{"se byte not taken", [2]byte{0x30, 0x42}, 0x41, 0, false},
		{"sne byte taken", [2]byte{0x40, 0x42}, 0x41, 0, true},
		{"sne byte not taken", [2]byte{0x40, 0x42}, 0x42, 0, false},
		{"se register taken", [2]byte{0x50, 0x10}, 0x42, 0x42, true},
		{"se register not taken", [2]byte{0x50, 0x10}, 0x42, 0x41, false},
		{"sne register taken", [2]byte{0x90, 0x10}, 0x42, 0x41, true},
		{"sne register not taken", [2]byte{0x90, 0x10}, 0x42, 0x42, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestMachine(t, tt.opcode[:]...)
			c.v[0] = tt.vx
			c.v[1] = tt.vy

			assert.NoError(t, c.Step())

			want := uint16(ProgramStart + 2)
			if tt.wantSkip {
				want = ProgramStart + 4
			}
			assert.Equal(t, want, c.pc)
		})
	}
}

func TestStep_LoadImmediateAndIndex(t *testing.T) {
	c := newTestMachine(t,
		0x60, 0x42, // 6042 - ld V0, $42
		0xA3, 0x00, // A300 - ld I, $300
	)

	assert.NoError(t, c.Step())
	assert.Equal(t, uint8(0x42), c.v[0])

	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0x300), c.i)
}

func TestStep_TimerAccess(t *testing.T) {
	c := newTestMachine(t,
		0x60, 0x20, // 6020 - ld V0, $20
		0xF0, 0x15, // F015 - ld DT, V0
		0xF0, 0x18, // F018 - ld ST, V0
		0xF1, 0x07, // F107 - ld V1, DT
	)

	for i := 0; i < 4; i++ {
		assert.NoError(t, c.Step())
	}

	assert.Equal(t, uint8(0x20), c.dt)
	assert.Equal(t, uint8(0x20), c.st)
	assert.Equal(t, uint8(0x20), c.v[1])
	assert.True(t, c.SoundActive())
}

func TestStep_Random(t *testing.T) {
	c := newTestMachine(t, 0xC0, 0x0F) // C00F - rnd V0, $0F
	c.randByte = func() uint8 { return 0xAB }

	assert.NoError(t, c.Step())

	// random byte is masked with the immediate
	assert.Equal(t, uint8(0x0B), c.v[0])
}

func TestStep_BCD(t *testing.T) {
	c := newTestMachine(t, 0xF0, 0x33) // F033 - ld B, V0
	c.v[0] = 156
	c.i = 0x300

	assert.NoError(t, c.Step())

	assert.Equal(t, uint8(1), c.mem[0x300])
	assert.Equal(t, uint8(5), c.mem[0x301])
	assert.Equal(t, uint8(6), c.mem[0x302])
}

func TestStep_RegisterDumpLoad(t *testing.T) {
	c := newTestMachine(t,
		0xF2, 0x55, // F255 - ld [I], V2
		0xF2, 0x65, // F265 - ld V2, [I]
	)
	c.i = 0x300
	c.v[0] = 0x11
	c.v[1] = 0x22
	c.v[2] = 0x33
	c.v[3] = 0x44

	assert.NoError(t, c.Step())

	assert.Equal(t, uint8(0x11), c.mem[0x300])
	assert.Equal(t, uint8(0x22), c.mem[0x301])
	assert.Equal(t, uint8(0x33), c.mem[0x302])
	// V3 is outside the inclusive V0..V2 range
	assert.Equal(t, uint8(0), c.mem[0x303])
	// I is left unchanged without the quirk
	assert.Equal(t, uint16(0x300), c.i)

	c.v[0] = 0
	c.v[1] = 0
	c.v[2] = 0

	assert.NoError(t, c.Step())

	assert.Equal(t, uint8(0x11), c.v[0])
	assert.Equal(t, uint8(0x22), c.v[1])
	assert.Equal(t, uint8(0x33), c.v[2])
	assert.Equal(t, uint16(0x300), c.i)
}

func TestStep_RegisterDumpLoadIncrementQuirk(t *testing.T) {
	c := newTestMachine(t, 0xF1, 0x55) // F155 - ld [I], V1
	c.SetQuirks(Quirks{LoadStoreIncrementI: true})
	c.i = 0x300

	assert.NoError(t, c.Step())

	assert.Equal(t, uint16(0x302), c.i)
}

func TestStep_FontAddress(t *testing.T) {
	c := newTestMachine(t, 0xF0, 0x29) // F029 - ld F, V0
	c.v[0] = 0xA

	assert.NoError(t, c.Step())

	assert.Equal(t, uint16(FontAddress+0xA*FontGlyphSize), c.i)
	// the glyph bytes for digit A are reachable through I
	assert.Equal(t, fontset[0xA*FontGlyphSize], c.mem[c.i])
}

func TestStep_AddToIndex(t *testing.T) {
	c := newTestMachine(t, 0xF0, 0x1E) // F01E - add I, V0
	c.i = 0x300
	c.v[0] = 0x10
	c.v[0xF] = 0

	assert.NoError(t, c.Step())

	assert.Equal(t, uint16(0x310), c.i)
	// base CHIP-8 sets no overflow flag for add I
	assert.Equal(t, uint8(0), c.v[0xF])
}

func TestStep_Draw(t *testing.T) {
	c := newTestMachine(t, 0xD0, 0x12) // D012 - drw V0, V1, $2
	c.i = FontAddress                  // draw the digit 0 glyph rows
	c.v[0] = 4
	c.v[1] = 2

	assert.NoError(t, c.Step())

	frame := c.Frame()
	// first row of the 0 glyph is 0xF0: pixels 4..7 set
	assert.True(t, frame[2][4])
	assert.True(t, frame[2][7])
	assert.False(t, frame[2][8])
	assert.Equal(t, uint8(0), c.v[0xF])
}

func TestStep_DrawCollision(t *testing.T) {
	c := newTestMachine(t,
		0xD0, 0x11, // D011 - drw V0, V1, $1
		0xD0, 0x11,
	)
	c.i = FontAddress

	assert.NoError(t, c.Step())
	assert.Equal(t, uint8(0), c.v[0xF])

	// drawing the same sprite again erases it and reports the collision
	assert.NoError(t, c.Step())
	assert.Equal(t, uint8(1), c.v[0xF])
	assert.Equal(t, Frame{}, c.Frame())
}

func TestStep_DrawCoordinatesWrap(t *testing.T) {
	c := newTestMachine(t, 0xD0, 0x11) // D011 - drw V0, V1, $1
	c.i = FontAddress
	c.v[0] = DisplayWidth + 4  // wraps to column 4
	c.v[1] = DisplayHeight + 2 // wraps to row 2

	assert.NoError(t, c.Step())

	assert.True(t, c.Frame()[2][4])
}

// A ROM that clears the screen and then jumps to itself has to run
// indefinitely without faults, with PC parked on the jump.
func TestStep_ClearScreenThenSpin(t *testing.T) {
	c := newTestMachine(t,
		0x00, 0xE0, // 00E0 - cls
		0x12, 0x02, // 1202 - jp $202
	)
	c.display.drawSprite(0, 0, []byte{0xFF})

	assert.NoError(t, c.Step())
	assert.Equal(t, Frame{}, c.Frame())

	for i := 0; i < 100; i++ {
		assert.NoError(t, c.Step())
		assert.Equal(t, uint16(0x202), c.pc)
	}
}

func TestStep_WaitForKey(t *testing.T) {
	c := newTestMachine(t, 0xF5, 0x0A) // F50A - ld V5, K

	// entering the awaiting state does not advance PC
	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(ProgramStart), c.pc)

	// repeated steps without a pressed key leave PC unchanged
	for i := 0; i < 10; i++ {
		assert.NoError(t, c.Step())
		assert.Equal(t, uint16(ProgramStart), c.pc)
	}

	var keys Keys
	keys[0xB] = true
	c.SetKeys(keys)

	assert.NoError(t, c.Step())

	// the key press resumes execution exactly once
	assert.Equal(t, uint16(ProgramStart+2), c.pc)
	assert.Equal(t, uint8(0xB), c.v[5])
	assert.False(t, c.awaitingKey)
}

func TestStep_KeySkips(t *testing.T) {
	tests := []struct {
		name     string
		opcode   [2]byte
		pressed  bool
		wantSkip bool
	}{
		{"skp pressed", [2]byte{0xE0, 0x9E}, true, true},
		{"skp not pressed", [2]byte{0xE0, 0x9E}, false, false},
		{"sknp pressed", [2]byte{0xE0, 0xA1}, true, false},
		{"sknp not pressed", [2]byte{0xE0, 0xA1}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestMachine(t, tt.opcode[:]...)
			c.v[0] = 0x7
			var keys Keys
			keys[0x7] = tt.pressed
			c.SetKeys(keys)

			assert.NoError(t, c.Step())

			want := uint16(ProgramStart + 2)
			if tt.wantSkip {
				want = ProgramStart + 4
			}
			assert.Equal(t, want, c.pc)
		})
	}
}

func TestStep_UnknownOpcode(t *testing.T) {
	tests := []struct {
		name   string
		opcode [2]byte
	}{
		{"sys call", [2]byte{0x01, 0x23}},
		{"se with non-zero low nibble", [2]byte{0x50, 0x11}},
		{"sne with non-zero low nibble", [2]byte{0x90, 0x11}},
		{"invalid arithmetic op", [2]byte{0x80, 0x18}},
		{"invalid key skip", [2]byte{0xE0, 0xFF}},
		{"invalid misc op", [2]byte{0xF0, 0xFF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestMachine(t, tt.opcode[:]...)

			err := c.Step()

			var opErr UnknownOpcodeError
			assert.True(t, errors.As(err, &opErr))
			assert.Equal(t, uint16(ProgramStart), opErr.PC)
			want := uint16(tt.opcode[0])<<8 | uint16(tt.opcode[1])
			assert.Equal(t, want, opErr.Opcode)

			// PC still points at the offending instruction so the caller
			// can decide to skip it and continue
			assert.Equal(t, uint16(ProgramStart), c.pc)
			c.SkipInstruction()
			assert.Equal(t, uint16(ProgramStart+2), c.pc)
		})
	}
}

func TestStep_MemoryFaults(t *testing.T) {
	tests := []struct {
		name   string
		opcode [2]byte
		i      uint16
	}{
		{"draw beyond memory end", [2]byte{0xD0, 0x12}, MemorySize - 1},
		{"bcd beyond memory end", [2]byte{0xF0, 0x33}, MemorySize - 2},
		{"register dump beyond memory end", [2]byte{0xF1, 0x55}, MemorySize - 1},
		{"register load beyond memory end", [2]byte{0xF1, 0x65}, MemorySize - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestMachine(t, tt.opcode[:]...)
			c.i = tt.i

			err := c.Step()

			var memErr MemoryFaultError
			assert.True(t, errors.As(err, &memErr))
			assert.Equal(t, uint16(ProgramStart), memErr.PC)
		})
	}
}

func TestStep_FetchBeyondMemoryEnd(t *testing.T) {
	c := newTestMachine(t, 0x1F, 0xFF) // 1FFF - jp $FFF

	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0xFFF), c.pc)

	// fetching a 2 byte opcode at the last byte runs out of memory
	err := c.Step()
	var memErr MemoryFaultError
	assert.True(t, errors.As(err, &memErr))
}
