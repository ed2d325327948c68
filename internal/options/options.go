// Package options contains the program options.
package options

// Program options of the emulator.
type Program struct {
	Input string // ROM file to run

	Frontend string // display/input/audio frontend to use
	Scale    int    // window scale factor, display pixels per CHIP-8 pixel

	InstructionsPerFrame int // instruction rate, executed per 60 Hz frame

	ShiftQuirk     bool // 8xy6/8xyE shift Vy into Vx instead of Vx in place
	LoadStoreQuirk bool // Fx55/Fx65 increment I past the copied range
	SkipUnknown    bool // log and skip unknown opcodes instead of halting

	Debug bool
	Quiet bool
}

// Default option values. The instruction rate is a configuration value and
// not derived from original hardware timing, 11 instructions per 60 Hz
// frame (~660/s) is a common speed that most ROMs are playable at.
const (
	DefaultScale                = 10
	DefaultInstructionsPerFrame = 11
)
