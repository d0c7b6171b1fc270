package scene

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/quietfall/stageview/internal/engine/scene/shaders"
	"github.com/quietfall/stageview/internal/engine/shader"
)

// BackgroundRenderer fills the frame behind the model, either with a
// backdrop image or a flat clear color.
type BackgroundRenderer struct {
	program uint32
	vao     uint32
	vbo     uint32

	locBackdrop    int32
	locHasBackdrop int32
	locClearColor  int32

	backdrop   uint32
	clearColor [3]float32
}

// NewBackgroundRenderer compiles the backdrop program and builds a
// fullscreen triangle pair.
func NewBackgroundRenderer() (*BackgroundRenderer, error) {
	program, err := shader.CompileProgram(shaders.BackgroundVertexShader, shaders.BackgroundFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("background shader: %w", err)
	}
	r := &BackgroundRenderer{
		program:    program,
		clearColor: [3]float32{0.12, 0.12, 0.14},
	}
	r.locBackdrop = shader.GetUniform(program, "uBackdrop")
	r.locHasBackdrop = shader.GetUniform(program, "uHasBackdrop")
	r.locClearColor = shader.GetUniform(program, "uClearColor")

	quad := []float32{
		-1, -1, 1, -1, 1, 1,
		-1, -1, 1, 1, -1, 1,
	}
	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)
	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quad)*4, gl.Ptr(quad), gl.STATIC_DRAW)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 2*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.BindVertexArray(0)

	return r, nil
}

// SetBackdrop sets the backdrop texture; zero reverts to the clear color.
func (r *BackgroundRenderer) SetBackdrop(tex uint32) {
	r.backdrop = tex
}

// SetClearColor sets the flat fill used without a backdrop.
func (r *BackgroundRenderer) SetClearColor(red, green, blue float32) {
	r.clearColor = [3]float32{red, green, blue}
}

// Render draws the backdrop. Depth writes are off so the model and
// ground always draw in front.
func (r *BackgroundRenderer) Render() {
	gl.UseProgram(r.program)
	gl.Disable(gl.DEPTH_TEST)
	gl.DepthMask(false)

	if r.backdrop != 0 {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, r.backdrop)
		gl.Uniform1i(r.locBackdrop, 0)
		gl.Uniform1i(r.locHasBackdrop, 1)
	} else {
		gl.Uniform1i(r.locHasBackdrop, 0)
	}
	gl.Uniform3f(r.locClearColor, r.clearColor[0], r.clearColor[1], r.clearColor[2])

	gl.BindVertexArray(r.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)

	gl.DepthMask(true)
	gl.Enable(gl.DEPTH_TEST)
}

// Destroy releases GL resources.
func (r *BackgroundRenderer) Destroy() {
	if r.program != 0 {
		gl.DeleteProgram(r.program)
		r.program = 0
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
		r.vbo = 0
	}
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
		r.vao = 0
	}
}
