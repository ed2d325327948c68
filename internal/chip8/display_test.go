package chip8

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestDisplay_DrawSprite(t *testing.T) {
	var d display

	// single row, all 8 pixels set
	collision := d.drawSprite(0, 0, []byte{0xFF})
	assert.False(t, collision)
	for col := 0; col < 8; col++ {
		assert.True(t, d.pixels[0][col])
	}
	assert.False(t, d.pixels[0][8])
}

func TestDisplay_DrawSpriteCollision(t *testing.T) {
	var d display

	assert.False(t, d.drawSprite(0, 0, []byte{0x80}))
	assert.True(t, d.pixels[0][0])

	// drawing the same pixel again toggles it off and reports the collision
	assert.True(t, d.drawSprite(0, 0, []byte{0x80}))
	assert.False(t, d.pixels[0][0])
}

func TestDisplay_DrawSpriteDoubleXorRoundTrip(t *testing.T) {
	var d display
	sprite := []byte{0x3C, 0x42, 0x42, 0x3C}

	assert.False(t, d.drawSprite(10, 5, sprite))
	before := d.frame()

	assert.True(t, d.drawSprite(10, 5, sprite))
	assert.True(t, d.drawSprite(10, 5, sprite))

	// drawing twice more restores the state after the first draw
	assert.Equal(t, before, d.frame())
}

func TestDisplay_DrawSpriteWrapsAroundEdges(t *testing.T) {
	var d display

	// 2 rows drawn at the bottom right corner wrap to the opposite edges
	d.drawSprite(DisplayWidth-1, DisplayHeight-1, []byte{0xC0, 0xC0})

	assert.True(t, d.pixels[DisplayHeight-1][DisplayWidth-1])
	assert.True(t, d.pixels[DisplayHeight-1][0])
	assert.True(t, d.pixels[0][DisplayWidth-1])
	assert.True(t, d.pixels[0][0])
}

func TestDisplay_Clear(t *testing.T) {
	var d display
	d.drawSprite(0, 0, []byte{0xFF, 0xFF})

	d.clear()

	assert.Equal(t, Frame{}, d.frame())
}

func TestDisplay_FrameIsSnapshot(t *testing.T) {
	var d display
	d.drawSprite(0, 0, []byte{0x80})

	frame := d.frame()
	frame[0][0] = false

	// mutating the returned frame does not affect the display state
	assert.True(t, d.pixels[0][0])
}
