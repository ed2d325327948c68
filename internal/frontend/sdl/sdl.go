// Package sdl implements the SDL2 based frontend with a scaled window,
// keyboard input and a square wave beep tone.
package sdl

import (
	"fmt"

	"github.com/retroenv/chip8go/internal/chip8"
	"github.com/retroenv/chip8go/internal/frontend"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	audioFrequency = 44100
	beepFrequency  = 440
	beepAmplitude  = 28
)

// Frontend renders the display into an SDL2 window and reads the keypad
// state from the keyboard.
type Frontend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	audio    sdl.AudioDeviceID
	beepWave []byte

	scale   int
	keys    chip8.Keys
	beeping bool
}

// New initializes SDL2 and creates the emulator window and audio device.
func New(cfg frontend.Config) (*Frontend, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("initializing SDL: %w", err)
	}

	window, err := sdl.CreateWindow(cfg.Title, sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(chip8.DisplayWidth*cfg.Scale), int32(chip8.DisplayHeight*cfg.Scale), sdl.WINDOW_SHOWN)
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		return nil, fmt.Errorf("creating renderer: %w", err)
	}

	f := &Frontend{
		window:   window,
		renderer: renderer,
		scale:    cfg.Scale,
	}

	if err := f.setupAudio(); err != nil {
		return nil, err
	}
	return f, nil
}

// PollInput drains the SDL event queue and returns the keypad snapshot.
func (f *Frontend) PollInput() (chip8.Keys, bool, error) {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			return f.keys, true, nil

		case *sdl.KeyboardEvent:
			if e.Keysym.Sym == sdl.K_ESCAPE {
				return f.keys, true, nil
			}
			if key, ok := keyMapping[e.Keysym.Sym]; ok {
				f.keys[key] = e.Type == sdl.KEYDOWN
			}
		}
	}
	return f.keys, false, nil
}

// Render draws a display frame, lit pixels as scaled filled rectangles.
func (f *Frontend) Render(frame chip8.Frame) error {
	if err := f.renderer.SetDrawColor(0, 26, 0, 255); err != nil {
		return fmt.Errorf("setting background color: %w", err)
	}
	if err := f.renderer.Clear(); err != nil {
		return fmt.Errorf("clearing renderer: %w", err)
	}

	if err := f.renderer.SetDrawColor(57, 255, 20, 255); err != nil {
		return fmt.Errorf("setting pixel color: %w", err)
	}

	scale := int32(f.scale)
	for y := 0; y < chip8.DisplayHeight; y++ {
		for x := 0; x < chip8.DisplayWidth; x++ {
			if !frame[y][x] {
				continue
			}
			rect := sdl.Rect{
				X: int32(x) * scale,
				Y: int32(y) * scale,
				W: scale,
				H: scale,
			}
			if err := f.renderer.FillRect(&rect); err != nil {
				return fmt.Errorf("filling pixel rect: %w", err)
			}
		}
	}

	f.renderer.Present()
	return nil
}

// SetBeep pauses or resumes the audio device and keeps the sample queue
// filled while the tone is active.
func (f *Frontend) SetBeep(active bool) {
	if active {
		if sdl.GetQueuedAudioSize(f.audio) < uint32(len(f.beepWave)) {
			_ = sdl.QueueAudio(f.audio, f.beepWave)
		}
	}
	if active == f.beeping {
		return
	}
	f.beeping = active
	sdl.PauseAudioDevice(f.audio, !active)
	if !active {
		sdl.ClearQueuedAudio(f.audio)
	}
}

// Close destroys the audio device, renderer and window.
func (f *Frontend) Close() error {
	sdl.CloseAudioDevice(f.audio)
	if err := f.renderer.Destroy(); err != nil {
		return fmt.Errorf("destroying renderer: %w", err)
	}
	if err := f.window.Destroy(); err != nil {
		return fmt.Errorf("destroying window: %w", err)
	}
	sdl.Quit()
	return nil
}

// setupAudio opens a mono audio device and precomputes one buffer of a
// square wave at the beep frequency.
func (f *Frontend) setupAudio() error {
	spec := sdl.AudioSpec{
		Freq:     audioFrequency,
		Format:   sdl.AUDIO_U8,
		Channels: 1,
		Samples:  2048,
	}

	audio, err := sdl.OpenAudioDevice("", false, &spec, nil, 0)
	if err != nil {
		return fmt.Errorf("opening audio device: %w", err)
	}
	f.audio = audio

	// Two full frames of samples so the queue never runs dry between
	// SetBeep calls.
	samplesPerPeriod := audioFrequency / beepFrequency
	f.beepWave = make([]byte, audioFrequency/30)
	for i := range f.beepWave {
		if (i/(samplesPerPeriod/2))%2 == 0 {
			f.beepWave[i] = 128 + beepAmplitude
		} else {
			f.beepWave[i] = 128 - beepAmplitude
		}
	}
	return nil
}

// keyMapping maps the left hand side of a QWERTY keyboard onto the
// hexadecimal CHIP-8 keypad:
//
//	1 2 3 4        1 2 3 C
//	Q W E R   ->   4 5 6 D
//	A S D F        7 8 9 E
//	Z X C V        A 0 B F
var keyMapping = map[sdl.Keycode]uint8{
	sdl.K_1: 0x1,
	sdl.K_2: 0x2,
	sdl.K_3: 0x3,
	sdl.K_4: 0xC,
	sdl.K_q: 0x4,
	sdl.K_w: 0x5,
	sdl.K_e: 0x6,
	sdl.K_r: 0xD,
	sdl.K_a: 0x7,
	sdl.K_s: 0x8,
	sdl.K_d: 0x9,
	sdl.K_f: 0xE,
	sdl.K_z: 0xA,
	sdl.K_x: 0x0,
	sdl.K_c: 0xB,
	sdl.K_v: 0xF,
}
