package chip8

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestNew(t *testing.T) {
	c := New()

	assert.Equal(t, uint16(ProgramStart), c.pc)
	assert.Equal(t, uint8(0), c.sp)
	assert.Equal(t, uint16(0), c.i)

	// The font has to be loaded at the conventional address, 5 bytes per
	// glyph for all 16 digits.
	for i, b := range fontset {
		assert.Equal(t, b, c.mem[FontAddress+i])
	}
}

func TestChip8_LoadROM(t *testing.T) {
	tests := []struct {
		name    string
		romSize int
		wantErr bool
	}{
		{"empty", 0, false},
		{"small program", 2, false},
		{"maximum size", MemorySize - ProgramStart, false},
		{"one byte too large", MemorySize - ProgramStart + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			rom := make([]byte, tt.romSize)
			for i := range rom {
				rom[i] = 0xAB
			}

			err := c.LoadROM(rom)
			if tt.wantErr {
				assert.Error(t, err)
				var romErr ROMTooLargeError
				assert.True(t, errors.As(err, &romErr))
				assert.Equal(t, tt.romSize, romErr.Size)
				return
			}

			assert.NoError(t, err)
			for i := range rom {
				assert.Equal(t, rom[i], c.mem[ProgramStart+i])
			}
		})
	}
}

func TestChip8_Reset(t *testing.T) {
	c := New()
	c.SetQuirks(Quirks{ShiftSourceY: true})
	assert.NoError(t, c.LoadROM([]byte{0x00, 0xE0}))
	c.v[3] = 0x42
	c.i = 0x300
	c.dt = 10
	c.st = 5

	c.Reset()

	assert.Equal(t, uint16(ProgramStart), c.pc)
	assert.Equal(t, uint8(0), c.v[3])
	assert.Equal(t, uint16(0), c.i)
	assert.Equal(t, uint8(0), c.dt)
	assert.Equal(t, uint8(0), c.st)
	assert.Equal(t, uint8(0), c.mem[ProgramStart])
	assert.Equal(t, fontset[0], c.mem[FontAddress])
	// quirk configuration survives a reset
	assert.True(t, c.quirks.ShiftSourceY)
}

func TestChip8_TickTimers(t *testing.T) {
	c := New()
	c.dt = 1
	c.st = 2

	c.TickTimers()
	assert.Equal(t, uint8(0), c.dt)
	assert.Equal(t, uint8(1), c.st)
	assert.True(t, c.SoundActive())

	c.TickTimers()
	assert.Equal(t, uint8(0), c.st)
	assert.False(t, c.SoundActive())

	// timers never decrement below zero
	c.TickTimers()
	assert.Equal(t, uint8(0), c.dt)
	assert.Equal(t, uint8(0), c.st)
}

func TestChip8_SetKeys(t *testing.T) {
	c := New()
	var keys Keys
	keys[0xA] = true

	c.SetKeys(keys)

	assert.True(t, c.keys[0xA])
	assert.False(t, c.keys[0x0])
}
