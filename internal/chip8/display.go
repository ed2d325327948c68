package chip8

// Display dimensions of the original CHIP-8 resolution.
const (
	DisplayWidth  = 64
	DisplayHeight = 32
)

// Frame is a snapshot of the monochrome display buffer, indexed as
// [row][column]. Rendering collaborators receive it by value and can not
// mutate the emulator state through it.
type Frame [DisplayHeight][DisplayWidth]bool

// display owns the pixel state and the XOR sprite composition.
type display struct {
	pixels Frame
}

// clear switches every pixel off.
func (d *display) clear() {
	d.pixels = Frame{}
}

// frame returns a copy of the current pixel state.
func (d *display) frame() Frame {
	return d.pixels
}

// drawSprite XOR-blits an 8 pixel wide sprite at the given coordinates.
// Each sprite byte is one row, the most significant bit is the leftmost
// pixel. Rows and columns wrap around the display edges. It reports
// whether any pixel was toggled from on to off.
func (d *display) drawSprite(x, y uint8, sprite []byte) bool {
	collision := false
	for row, spriteRow := range sprite {
		for col := 0; col < 8; col++ {
			if spriteRow&(0x80>>col) == 0 {
				continue
			}
			px := (int(x) + col) % DisplayWidth
			py := (int(y) + row) % DisplayHeight
			d.pixels[py][px] = !d.pixels[py][px]
			if !d.pixels[py][px] {
				collision = true
			}
		}
	}
	return collision
}
