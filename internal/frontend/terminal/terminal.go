// Package terminal implements a frontend that renders the display into an
// ANSI terminal, two display rows per text line using half block glyphs.
// The terminal is switched into raw mode for keyboard input.
package terminal

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/term/termios"
	"github.com/retroenv/chip8go/internal/chip8"
	"github.com/retroenv/chip8go/internal/frontend"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// keyHoldDuration is how long a received key byte counts as held down.
// Terminals only deliver key presses, releases have to be emulated by
// letting keys decay after the typical auto repeat interval.
const keyHoldDuration = 150 * time.Millisecond

const (
	enterAltScreen = "\x1b[?1049h\x1b[?25l"
	leaveAltScreen = "\x1b[?25h\x1b[?1049l"

	pixelColor      = "\x1b[38;2;57;255;20m\x1b[48;2;0;26;0m"
	resetAttributes = "\x1b[0m"
)

// Frontend renders the display as colored half block characters and reads
// the keypad from raw mode stdin.
type Frontend struct {
	savedTermios unix.Termios
	out          *bufio.Writer

	keys     chip8.Keys
	deadline [chip8.KeyCount]time.Time
	beeping  bool
}

// New switches the terminal into raw non blocking mode and enters the
// alternate screen buffer.
func New(_ frontend.Config) (*Frontend, error) {
	fd := os.Stdin.Fd()
	if !term.IsTerminal(int(fd)) {
		return nil, fmt.Errorf("stdin is not a terminal")
	}

	f := &Frontend{
		out: bufio.NewWriterSize(os.Stdout, 16384),
	}

	if err := termios.Tcgetattr(fd, &f.savedTermios); err != nil {
		return nil, fmt.Errorf("reading terminal attributes: %w", err)
	}

	raw := f.savedTermios
	raw.Lflag &^= unix.ICANON | unix.ECHO
	// non blocking reads, polled once per frame
	raw.Cc[unix.VMIN] = 0
	raw.Cc[unix.VTIME] = 0
	if err := termios.Tcsetattr(fd, termios.TCSANOW, &raw); err != nil {
		return nil, fmt.Errorf("setting raw mode: %w", err)
	}

	fmt.Print(enterAltScreen)
	return f, nil
}

// PollInput reads all pending key bytes from stdin and returns the keypad
// snapshot. Escape quits.
func (f *Frontend) PollInput() (chip8.Keys, bool, error) {
	buf := make([]byte, 32)
	// a zero count or read error means no input this frame
	n, err := os.Stdin.Read(buf)
	if err != nil {
		n = 0
	}

	now := time.Now()
	for _, b := range buf[:n] {
		if b == 0x1b {
			return f.keys, true, nil
		}
		if key, ok := keyMapping[b]; ok {
			f.keys[key] = true
			f.deadline[key] = now.Add(keyHoldDuration)
		}
	}

	for key := range f.keys {
		if f.keys[key] && now.After(f.deadline[key]) {
			f.keys[key] = false
		}
	}
	return f.keys, false, nil
}

// Render draws a display frame, each text line covers two display rows.
// The upper row maps to the foreground color of the half block glyph and
// the lower row to the background color.
func (f *Frontend) Render(frame chip8.Frame) error {
	var sb strings.Builder
	sb.WriteString("\x1b[H")
	sb.WriteString(pixelColor)

	for y := 0; y < chip8.DisplayHeight; y += 2 {
		for x := 0; x < chip8.DisplayWidth; x++ {
			upper := frame[y][x]
			lower := frame[y+1][x]
			switch {
			case upper && lower:
				sb.WriteString("█")
			case upper:
				sb.WriteString("▀")
			case lower:
				sb.WriteString("▄")
			default:
				sb.WriteString(" ")
			}
		}
		sb.WriteString("\r\n")
	}
	sb.WriteString(resetAttributes)

	if _, err := f.out.WriteString(sb.String()); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	if err := f.out.Flush(); err != nil {
		return fmt.Errorf("flushing frame: %w", err)
	}
	return nil
}

// SetBeep rings the terminal bell on the rising edge of the sound timer.
func (f *Frontend) SetBeep(active bool) {
	if active && !f.beeping {
		fmt.Print("\a")
	}
	f.beeping = active
}

// Close leaves the alternate screen and restores the terminal attributes.
func (f *Frontend) Close() error {
	fmt.Print(leaveAltScreen)
	if err := termios.Tcsetattr(os.Stdin.Fd(), termios.TCSANOW, &f.savedTermios); err != nil {
		return fmt.Errorf("restoring terminal attributes: %w", err)
	}
	return nil
}

// keyMapping maps the left hand side of a QWERTY keyboard onto the
// hexadecimal CHIP-8 keypad.
var keyMapping = map[byte]uint8{
	'1': 0x1,
	'2': 0x2,
	'3': 0x3,
	'4': 0xC,
	'q': 0x4,
	'w': 0x5,
	'e': 0x6,
	'r': 0xD,
	'a': 0x7,
	's': 0x8,
	'd': 0x9,
	'f': 0xE,
	'z': 0xA,
	'x': 0x0,
	'c': 0xB,
	'v': 0xF,
}
