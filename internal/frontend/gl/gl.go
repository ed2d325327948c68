// Package gl implements an OpenGL frontend using a GLFW window. Lit
// display pixels are drawn as quads from a precomputed vertex grid.
package gl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/retroenv/chip8go/internal/chip8"
	"github.com/retroenv/chip8go/internal/frontend"
)

const verticesPerQuad = 6

var (
	vertexShaderGlsl = `
	  #version 410 core
	  in vec2 pos;
	  void main() {
	    gl_Position = vec4(pos, 0.0, 1.0);
	  }` + "\x00"
	fragmentShaderGlsl = `
	  #version 410 core
	  out vec4 color;
	  void main() {
	    color = vec4(0.224, 1.0, 0.078, 1.0);
	  }` + "\x00"
)

// Frontend renders the display into a GLFW window using an OpenGL core
// profile context.
type Frontend struct {
	window *glfw.Window
	vertex []uint32

	keys    chip8.Keys
	beeping bool
}

// New initializes GLFW, creates the window and compiles the shaders. The
// calling goroutine has to be locked to its OS thread.
func New(cfg frontend.Config) (*Frontend, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("initializing GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.False)

	window, err := glfw.CreateWindow(chip8.DisplayWidth*cfg.Scale,
		chip8.DisplayHeight*cfg.Scale, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("creating window: %w", err)
	}
	window.MakeContextCurrent()

	f := &Frontend{
		window: window,
	}
	window.SetKeyCallback(f.handleKey)

	if err := f.setupPipeline(); err != nil {
		glfw.Terminate()
		return nil, err
	}

	gl.ClearColor(0, 0.1, 0, 1)
	return f, nil
}

// PollInput processes pending window events and returns the keypad
// snapshot maintained by the key callback.
func (f *Frontend) PollInput() (chip8.Keys, bool, error) {
	glfw.PollEvents()
	return f.keys, f.window.ShouldClose(), nil
}

// Render rebuilds the quad index list for the lit pixels and draws it.
func (f *Frontend) Render(frame chip8.Frame) error {
	gl.Clear(gl.COLOR_BUFFER_BIT)

	n := f.fillVertices(frame)
	if n > 0 {
		gl.BufferSubData(gl.ELEMENT_ARRAY_BUFFER, 0, n*4, gl.Ptr(f.vertex))
		gl.DrawElements(gl.TRIANGLES, int32(n), gl.UNSIGNED_INT, gl.PtrOffset(0))
	}

	f.window.SwapBuffers()
	return nil
}

// SetBeep rings the terminal bell on the rising edge of the sound timer.
// GLFW has no audio support, the bell keeps the tone audible without
// pulling in a second media library.
func (f *Frontend) SetBeep(active bool) {
	if active && !f.beeping {
		fmt.Print("\a")
	}
	f.beeping = active
}

// Close destroys the window and terminates GLFW.
func (f *Frontend) Close() error {
	f.window.Destroy()
	glfw.Terminate()
	return nil
}

// handleKey updates the keypad snapshot from window key events.
func (f *Frontend) handleKey(window *glfw.Window, key glfw.Key, scancode int,
	action glfw.Action, mods glfw.ModifierKey) {

	if key == glfw.KeyEscape && action == glfw.Press {
		window.SetShouldClose(true)
		return
	}

	mapped, ok := keyMapping[key]
	if !ok {
		return
	}
	switch action {
	case glfw.Press:
		f.keys[mapped] = true
	case glfw.Release:
		f.keys[mapped] = false
	}
}

// fillVertices writes the index list of the quads covering all lit pixels
// and returns the number of indices.
func (f *Frontend) fillVertices(frame chip8.Frame) int {
	h := chip8.DisplayHeight + 1
	n := 0
	for y := 0; y < chip8.DisplayHeight; y++ {
		for x := 0; x < chip8.DisplayWidth; x++ {
			if !frame[y][x] {
				continue
			}

			// corners of the pixel quad
			q1 := uint32(x*h + y)
			q2 := uint32(x*h + y + 1)
			q3 := uint32((x+1)*h + y)
			q4 := uint32((x+1)*h + y + 1)
			f.vertex[n+0] = q1
			f.vertex[n+1] = q2
			f.vertex[n+2] = q3
			f.vertex[n+3] = q2
			f.vertex[n+4] = q3
			f.vertex[n+5] = q4
			n += verticesPerQuad
		}
	}
	return n
}

// setupPipeline creates the vertex grid, buffers and shader program. The
// grid has one vertex per pixel corner, vertex (x,y) has the index
// x*(DisplayHeight+1)+y.
func (f *Frontend) setupPipeline() error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("initializing OpenGL: %w", err)
	}

	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)

	w, h := chip8.DisplayWidth+1, chip8.DisplayHeight+1
	ncoords := w * h * 2
	buf := make([]float32, ncoords)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			i := 2 * (x*h + y)
			buf[i] = -1 + float32(x)/float32(chip8.DisplayWidth/2)
			buf[i+1] = 1 - float32(y)/float32(chip8.DisplayHeight/2)
		}
	}

	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(buf)*4, gl.Ptr(buf), gl.STATIC_DRAW)

	f.vertex = make([]uint32, chip8.DisplayWidth*chip8.DisplayHeight*verticesPerQuad)

	var ebo uint32
	gl.GenBuffers(1, &ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(f.vertex)*4, gl.Ptr(f.vertex), gl.DYNAMIC_DRAW)

	program, err := buildProgram()
	if err != nil {
		return err
	}
	gl.UseProgram(program)

	gl.EnableVertexAttribArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 0, gl.PtrOffset(0))
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)

	if glErr := gl.GetError(); glErr != gl.NO_ERROR {
		return fmt.Errorf("OpenGL error: 0x%x", glErr)
	}
	return nil
}

func buildProgram() (uint32, error) {
	vertexShader, err := compileShader(gl.VERTEX_SHADER, vertexShaderGlsl)
	if err != nil {
		return 0, fmt.Errorf("vertex shader: %w", err)
	}
	fragmentShader, err := compileShader(gl.FRAGMENT_SHADER, fragmentShaderGlsl)
	if err != nil {
		return 0, fmt.Errorf("fragment shader: %w", err)
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.BindFragDataLocation(program, 0, gl.Str("color\x00"))
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var length int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &length)
		infoLog := strings.Repeat("\x00", 1+int(length))
		gl.GetProgramInfoLog(program, length, nil, gl.Str(infoLog))
		return 0, fmt.Errorf("linking program: %s", infoLog)
	}
	return program, nil
}

func compileShader(shaderType uint32, source string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	cSource, free := gl.Strs(source)
	defer free()
	gl.ShaderSource(shader, 1, cSource, nil)
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var length int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &length)
		infoLog := strings.Repeat("\x00", 1+int(length))
		gl.GetShaderInfoLog(shader, length, nil, gl.Str(infoLog))
		return 0, errors.New(infoLog)
	}
	return shader, nil
}

// keyMapping maps the left hand side of a QWERTY keyboard onto the
// hexadecimal CHIP-8 keypad.
var keyMapping = map[glfw.Key]uint8{
	glfw.Key1: 0x1,
	glfw.Key2: 0x2,
	glfw.Key3: 0x3,
	glfw.Key4: 0xC,
	glfw.KeyQ: 0x4,
	glfw.KeyW: 0x5,
	glfw.KeyE: 0x6,
	glfw.KeyR: 0xD,
	glfw.KeyA: 0x7,
	glfw.KeyS: 0x8,
	glfw.KeyD: 0x9,
	glfw.KeyF: 0xE,
	glfw.KeyZ: 0xA,
	glfw.KeyX: 0x0,
	glfw.KeyC: 0xB,
	glfw.KeyV: 0xF,
}
