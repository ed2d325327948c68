// Package frontend defines the collaborators that surround the emulator
// core: window creation and pixel rendering, keypad input and the beep
// audio output. The core never talks to hardware directly, it only
// exchanges keypad snapshots, display frames and the sound flag with a
// Frontend implementation.
package frontend

import (
	"github.com/retroenv/chip8go/internal/chip8"
)

// Available frontend names.
const (
	SDL      = "sdl"
	GL       = "gl"
	Terminal = "terminal"
)

// Names lists the available frontend names for validation and usage output.
func Names() []string {
	return []string{SDL, GL, Terminal}
}

// Config holds the settings shared by all frontend implementations.
type Config struct {
	// Title of the created window.
	Title string
	// Scale is the number of display pixels per CHIP-8 pixel.
	Scale int
}

// Frontend is implemented by the display/input/audio backends. All methods
// are called from the driver loop goroutine only.
type Frontend interface {
	// PollInput processes pending input events and returns a full snapshot
	// of the 16 key keypad state. quit reports that the user asked to
	// close the emulator.
	PollInput() (keys chip8.Keys, quit bool, err error)

	// Render draws a display frame.
	Render(frame chip8.Frame) error

	// SetBeep switches the beep tone on or off. Implementations have to
	// tolerate repeated calls with the same value, the driver loop updates
	// the state every frame.
	SetBeep(active bool)

	// Close releases window, audio and terminal resources.
	Close() error
}
