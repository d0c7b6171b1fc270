package scene

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/quietfall/stageview/internal/engine/scene/shaders"
	"github.com/quietfall/stageview/internal/engine/shader"
	"github.com/quietfall/stageview/internal/engine/shadow"
	"github.com/quietfall/stageview/pkg/math"
)

// minGroundRadius keeps the quad visible for tiny or empty models.
const minGroundRadius = 0.25

// GroundRenderer draws the shadow-receiving quad under the model.
type GroundRenderer struct {
	program uint32
	vao     uint32
	vbo     uint32

	locMVP            int32
	locModel          int32
	locLightViewProj  int32
	locShadowMap      int32
	locBaseColor      int32
	locShadowStrength int32
}

// NewGroundRenderer compiles the ground program and builds the unit
// quad in the XZ plane.
func NewGroundRenderer() (*GroundRenderer, error) {
	program, err := shader.CompileProgram(shaders.GroundVertexShader, shaders.GroundFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("ground shader: %w", err)
	}
	r := &GroundRenderer{program: program}

	r.locMVP = shader.GetUniform(program, "uMVP")
	r.locModel = shader.GetUniform(program, "uModel")
	r.locLightViewProj = shader.GetUniform(program, "uLightViewProj")
	r.locShadowMap = shader.GetUniform(program, "uShadowMap")
	r.locBaseColor = shader.GetUniform(program, "uBaseColor")
	r.locShadowStrength = shader.GetUniform(program, "uShadowStrength")

	// Unit quad at y=0, scaled per frame to the model footprint.
	quad := []float32{
		-1, 0, -1,
		-1, 0, 1,
		1, 0, 1,
		-1, 0, -1,
		1, 0, 1,
		1, 0, -1,
	}
	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)
	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quad)*4, gl.Ptr(quad), gl.STATIC_DRAW)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.BindVertexArray(0)

	return r, nil
}

// Render draws the ground quad, darkened where the shadow map reports
// occlusion. Alpha blending keeps the quad soft against the backdrop.
func (r *GroundRenderer) Render(frustum shadow.Frustum, viewProj math.Mat4,
	shadowTex uint32, shadowStrength, sizeMultiplier float32) {
	scale := frustum.Radius
	if scale < minGroundRadius {
		scale = minGroundRadius
	}
	if sizeMultiplier > 0 {
		scale *= sizeMultiplier
	}

	modelMat := math.Translate(frustum.Center.X, 0, frustum.Center.Z).
		Mul(math.Scale(scale, 1, scale))
	mvp := viewProj.Mul(modelMat)

	gl.UseProgram(r.program)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.DepthMask(true)
	gl.Disable(gl.CULL_FACE)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	gl.UniformMatrix4fv(r.locMVP, 1, false, mvp.Ptr())
	gl.UniformMatrix4fv(r.locModel, 1, false, modelMat.Ptr())
	lightVP := frustum.ViewProjection
	gl.UniformMatrix4fv(r.locLightViewProj, 1, false, lightVP.Ptr())

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, shadowTex)
	gl.Uniform1i(r.locShadowMap, 0)

	gl.Uniform4f(r.locBaseColor, 0.05, 0.05, 0.06, 1.0)
	gl.Uniform1f(r.locShadowStrength, shadowStrength)

	gl.BindVertexArray(r.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
	gl.Disable(gl.BLEND)
}

// Destroy releases GL resources.
func (r *GroundRenderer) Destroy() {
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
