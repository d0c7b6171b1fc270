package scene

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/quietfall/stageview/internal/engine/model"
	"github.com/quietfall/stageview/internal/engine/pbr"
	"github.com/quietfall/stageview/internal/engine/scene/shaders"
	"github.com/quietfall/stageview/internal/engine/shader"
	"github.com/quietfall/stageview/internal/engine/texture"
	"github.com/quietfall/stageview/pkg/math"
)

// MeshRenderer draws every mesh of the current model with the
// Cook-Torrance PBR shader.
type MeshRenderer struct {
	program uint32

	locModel        int32
	locMVP          int32
	locNormalMatrix int32
	locCameraPos    int32

	locBaseColorFactor int32
	locMetallicFactor  int32
	locRoughnessFactor int32

	locKeyIntensity      int32
	locAmbientIntensity  int32
	locSpecularIntensity int32

	locHasBaseColorTex int32
	locHasNormalTex    int32
	locHasMetallicTex  int32
	locHasRoughnessTex int32

	locBaseColorTex int32
	locNormalTex    int32
	locMetallicTex  int32
	locRoughnessTex int32

	locEnvMap    int32
	locEnvMaxLod int32
}

// NewMeshRenderer compiles the PBR program and resolves its uniforms.
func NewMeshRenderer() (*MeshRenderer, error) {
	program, err := shader.CompileProgram(shaders.MeshVertexShader, shaders.MeshFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("mesh shader: %w", err)
	}
	r := &MeshRenderer{program: program}

	r.locModel = shader.GetUniform(program, "uModel")
	r.locMVP = shader.GetUniform(program, "uMVP")
	r.locNormalMatrix = shader.GetUniform(program, "uNormalMatrix")
	r.locCameraPos = shader.GetUniform(program, "uCameraPos")

	r.locBaseColorFactor = shader.GetUniform(program, "uBaseColorFactor")
	r.locMetallicFactor = shader.GetUniform(program, "uMetallicFactor")
	r.locRoughnessFactor = shader.GetUniform(program, "uRoughnessFactor")

	r.locKeyIntensity = shader.GetUniform(program, "uKeyIntensity")
	r.locAmbientIntensity = shader.GetUniform(program, "uAmbientIntensity")
	r.locSpecularIntensity = shader.GetUniform(program, "uSpecularIntensity")

	r.locHasBaseColorTex = shader.GetUniform(program, "uHasBaseColorTex")
	r.locHasNormalTex = shader.GetUniform(program, "uHasNormalTex")
	r.locHasMetallicTex = shader.GetUniform(program, "uHasMetallicTex")
	r.locHasRoughnessTex = shader.GetUniform(program, "uHasRoughnessTex")

	r.locBaseColorTex = shader.GetUniform(program, "uBaseColorTex")
	r.locNormalTex = shader.GetUniform(program, "uNormalTex")
	r.locMetallicTex = shader.GetUniform(program, "uMetallicTex")
	r.locRoughnessTex = shader.GetUniform(program, "uRoughnessTex")

	r.locEnvMap = shader.GetUniform(program, "uEnvMap")
	r.locEnvMaxLod = shader.GetUniform(program, "uEnvMaxLod")
	return r, nil
}

// Render draws the model. The view-projection and camera position are
// the frame's single camera snapshot, shared with the ground pass.
func (r *MeshRenderer) Render(m *model.Model, viewProj math.Mat4, cameraPos math.Vec3,
	controls pbr.Controls, envMap uint32, envMaxLod float32) {
	if m == nil || len(m.Meshes) == 0 {
		return
	}

	gl.UseProgram(r.program)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.DepthMask(true)
	gl.Disable(gl.CULL_FACE)

	gl.Uniform3f(r.locCameraPos, cameraPos.X, cameraPos.Y, cameraPos.Z)
	gl.Uniform1f(r.locKeyIntensity, controls.KeyIntensity)
	gl.Uniform1f(r.locAmbientIntensity, controls.AmbientIntensity)
	gl.Uniform1f(r.locSpecularIntensity, controls.SpecularIntensity)

	gl.ActiveTexture(gl.TEXTURE4)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, envMap)
	gl.Uniform1i(r.locEnvMap, 4)
	gl.Uniform1f(r.locEnvMaxLod, envMaxLod)

	for _, mesh := range m.Meshes {
		mvp := viewProj.Mul(mesh.Transform)
		normalMat := mesh.Transform.NormalMatrix()

		gl.UniformMatrix4fv(r.locModel, 1, false, mesh.Transform.Ptr())
		gl.UniformMatrix4fv(r.locMVP, 1, false, mvp.Ptr())
		gl.UniformMatrix3fv(r.locNormalMatrix, 1, false, normalMat.Ptr())

		mat := mesh.Material
		gl.Uniform4f(r.locBaseColorFactor, mat.BaseColor[0], mat.BaseColor[1], mat.BaseColor[2], mat.BaseColor[3])
		gl.Uniform1f(r.locMetallicFactor, mat.Metallic)
		gl.Uniform1f(r.locRoughnessFactor, controls.EffectiveRoughness(mat.Roughness))

		r.bindMaterialTexture(0, mat.BaseColorTex, r.locBaseColorTex, r.locHasBaseColorTex)
		r.bindMaterialTexture(1, mat.NormalTex, r.locNormalTex, r.locHasNormalTex)
		r.bindMaterialTexture(2, mat.MetallicTex, r.locMetallicTex, r.locHasMetallicTex)
		r.bindMaterialTexture(3, mat.RoughnessTex, r.locRoughnessTex, r.locHasRoughnessTex)

		gl.BindVertexArray(mesh.VAO())
		gl.DrawElements(gl.TRIANGLES, mesh.IndexCount(), gl.UNSIGNED_INT, nil)
	}

	gl.BindVertexArray(0)
}

func (r *MeshRenderer) bindMaterialTexture(unit uint32, tex *texture.Texture, locSampler, locHas int32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	if tex == nil {
		gl.BindTexture(gl.TEXTURE_2D, 0)
		gl.Uniform1i(locHas, 0)
		return
	}
	gl.BindTexture(gl.TEXTURE_2D, tex.GLTexture())
	gl.Uniform1i(locSampler, int32(unit))
	gl.Uniform1i(locHas, 1)
}

// Destroy releases the shader program.
func (r *MeshRenderer) Destroy() {
	if r.program != 0 {
		gl.DeleteProgram(r.program)
		r.program = 0
	}
}
