// Package scene orchestrates the per-frame render passes: shadow,
// backdrop, ground receiver, and the PBR mesh pass, in that order.
package scene

import (
	"fmt"
	"sync/atomic"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/quietfall/stageview/internal/engine/framebuffer"
	"github.com/quietfall/stageview/internal/engine/model"
	"github.com/quietfall/stageview/internal/engine/pbr"
	"github.com/quietfall/stageview/internal/engine/scene/shaders"
	"github.com/quietfall/stageview/internal/engine/shader"
	"github.com/quietfall/stageview/internal/engine/shadow"
	"github.com/quietfall/stageview/internal/logger"
	"github.com/quietfall/stageview/pkg/math"
)

// Config contains scene configuration options.
type Config struct {
	Width            int32
	Height           int32
	ShadowResolution int32
	ShadowStrength   float32
	GroundSize       float32
	FOV              float32 // vertical field of view in radians
}

// DefaultConfig returns a default scene configuration.
func DefaultConfig() Config {
	return Config{
		Width:            1280,
		Height:           720,
		ShadowResolution: shadow.DefaultResolution,
		ShadowStrength:   0.65,
		GroundSize:       1.0,
		FOV:              0.785398, // 45 degrees
	}
}

// Scene owns the render passes and the current model reference. A
// shader that fails to build disables its pass instead of failing the
// whole scene; the remaining passes keep running.
type Scene struct {
	config Config

	target *framebuffer.Target

	shadowMap     *shadow.Map
	shadowProgram uint32
	locShadowVP   int32
	locShadowMdl  int32

	meshRenderer       *MeshRenderer
	groundRenderer     *GroundRenderer
	backgroundRenderer *BackgroundRenderer

	// current is swapped atomically when an async load finishes, so
	// the render thread never observes a half-built model.
	current atomic.Pointer[model.Model]

	controls  pbr.Controls
	envMap    uint32
	envMaxLod float32

	frustum shadow.Frustum
}

// New creates the frame target and builds every render pass. Only the
// frame target is mandatory; pass-level shader failures are logged and
// the pass disabled.
func New(cfg Config) (*Scene, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid scene dimensions %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.FOV <= 0 {
		cfg.FOV = DefaultConfig().FOV
	}
	s := &Scene{
		config:    cfg,
		controls:  pbr.DefaultControls(),
		envMaxLod: 4,
	}

	var err error
	s.target, err = framebuffer.New(cfg.Width, cfg.Height)
	if err != nil {
		return nil, fmt.Errorf("creating frame target: %w", err)
	}

	s.shadowMap, err = shadow.NewMap(cfg.ShadowResolution)
	if err != nil {
		logger.Error("shadow map unavailable, shadow pass disabled", zap.Error(err))
		s.shadowMap = nil
	}
	if s.shadowMap != nil {
		program, err := shader.CompileProgram(shaders.ShadowVertexShader, shaders.ShadowFragmentShader)
		if err != nil {
			logger.Error("shadow pass disabled", zap.Error(err))
		} else {
			s.shadowProgram = program
			s.locShadowVP = shader.GetUniform(program, "uLightViewProj")
			s.locShadowMdl = shader.GetUniform(program, "uModel")
		}
	}

	if s.meshRenderer, err = NewMeshRenderer(); err != nil {
		logger.Error("mesh pass disabled", zap.Error(err))
		s.meshRenderer = nil
	}
	if s.groundRenderer, err = NewGroundRenderer(); err != nil {
		logger.Error("ground pass disabled", zap.Error(err))
		s.groundRenderer = nil
	}
	if s.backgroundRenderer, err = NewBackgroundRenderer(); err != nil {
		logger.Error("background pass disabled", zap.Error(err))
		s.backgroundRenderer = nil
	}

	return s, nil
}

// SetModel swaps the current model and destroys the previous one.
// Must run on the render thread; callers hand the model over after
// Data.Upload.
func (s *Scene) SetModel(m *model.Model) {
	old := s.current.Swap(m)
	if old != nil {
		old.Destroy()
	}
}

// Model returns the model currently being drawn, or nil.
func (s *Scene) Model() *model.Model {
	return s.current.Load()
}

// SetControls replaces the shading controls after clamping.
func (s *Scene) SetControls(c pbr.Controls) {
	s.controls = c.Clamp()
}

// Controls returns the active shading controls.
func (s *Scene) Controls() pbr.Controls {
	return s.controls
}

// SetEnvironment sets the reflection cubemap and its highest usable
// mip level.
func (s *Scene) SetEnvironment(cubemap uint32, maxLod float32) {
	s.envMap = cubemap
	s.envMaxLod = maxLod
}

// SetBackdrop sets the background texture drawn behind the model.
func (s *Scene) SetBackdrop(tex uint32) {
	if s.backgroundRenderer != nil {
		s.backgroundRenderer.SetBackdrop(tex)
	}
}

// Frustum returns the light frustum computed for the last frame.
func (s *Scene) Frustum() shadow.Frustum {
	return s.frustum
}

// Render draws one frame into the offscreen target. The view matrix
// and camera position are one consistent camera snapshot; both the
// ground and mesh passes use them unchanged so shadows stay aligned.
func (s *Scene) Render(view math.Mat4, cameraPos math.Vec3) {
	m := s.current.Load()

	aspect := float32(s.config.Width) / float32(s.config.Height)
	proj := math.Perspective(s.config.FOV, aspect, 0.05, 200.0)
	viewProj := proj.Mul(view)

	s.frustum = shadow.ComputeFrustum(m)
	s.renderShadowPass(m)

	restore := s.target.Bind()
	defer restore()
	s.target.Clear(0, 0, 0, 1)

	if s.backgroundRenderer != nil {
		s.backgroundRenderer.Render()
	}
	if s.groundRenderer != nil && s.shadowMap != nil {
		s.groundRenderer.Render(s.frustum, viewProj, s.shadowMap.Texture(),
			s.config.ShadowStrength, s.config.GroundSize)
	}
	if s.meshRenderer != nil {
		s.meshRenderer.Render(m, viewProj, cameraPos, s.controls, s.envMap, s.envMaxLod)
	}
}

// renderShadowPass redraws the shadow map. The map is cleared even
// when there is nothing to draw so an unloaded model never leaves a
// stale shadow behind.
func (s *Scene) renderShadowPass(m *model.Model) {
	if s.shadowMap == nil {
		return
	}
	s.shadowMap.Begin()
	defer s.shadowMap.End()

	if m == nil || len(m.Meshes) == 0 || s.shadowProgram == 0 {
		return
	}

	gl.UseProgram(s.shadowProgram)
	lightVP := s.frustum.ViewProjection
	gl.UniformMatrix4fv(s.locShadowVP, 1, false, lightVP.Ptr())

	for _, mesh := range m.Meshes {
		transform := mesh.Transform
		gl.UniformMatrix4fv(s.locShadowMdl, 1, false, transform.Ptr())
		gl.BindVertexArray(mesh.VAO())
		gl.DrawElements(gl.TRIANGLES, mesh.IndexCount(), gl.UNSIGNED_INT, nil)
	}
	gl.BindVertexArray(0)
}

// Blit copies the rendered frame onto the window's default framebuffer.
func (s *Scene) Blit(drawableW, drawableH int32) {
	s.target.BlitToScreen(drawableW, drawableH)
}

// Projection returns the projection matrix for the current dimensions,
// used by picking to unproject cursor positions.
func (s *Scene) Projection() math.Mat4 {
	aspect := float32(s.config.Width) / float32(s.config.Height)
	return math.Perspective(s.config.FOV, aspect, 0.05, 200.0)
}

// Resize updates the frame target dimensions.
func (s *Scene) Resize(width, height int32) {
	if width == s.config.Width && height == s.config.Height {
		return
	}
	s.config.Width = width
	s.config.Height = height
	s.target.Resize(width, height)
}

// Size returns the render dimensions.
func (s *Scene) Size() (int32, int32) {
	return s.config.Width, s.config.Height
}

// CaptureImage reads back the last rendered frame as top-down RGBA
// pixels plus dimensions.
func (s *Scene) CaptureImage() ([]byte, int32, int32) {
	width, height := s.target.Size()
	pixels := s.target.ReadPixels()

	rowSize := int(width) * 4
	flipped := make([]byte, len(pixels))
	for y := 0; y < int(height); y++ {
		src := (int(height) - 1 - y) * rowSize
		dst := y * rowSize
		copy(flipped[dst:dst+rowSize], pixels[src:src+rowSize])
	}
	return flipped, width, height
}

// Destroy releases every pass and the current model.
func (s *Scene) Destroy() {
	s.SetModel(nil)
	if s.meshRenderer != nil {
		s.meshRenderer.Destroy()
	}
	if s.groundRenderer != nil {
		s.groundRenderer.Destroy()
	}
	if s.backgroundRenderer != nil {
		s.backgroundRenderer.Destroy()
	}
	if s.shadowProgram != 0 {
		gl.DeleteProgram(s.shadowProgram)
	}
	if s.shadowMap != nil {
		s.shadowMap.Destroy()
	}
	if s.target != nil {
		s.target.Destroy()
	}
}
