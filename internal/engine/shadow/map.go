package shadow

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/quietfall/stageview/internal/logger"
)

// DefaultResolution is the shadow map size used when the configuration
// does not override it.
const DefaultResolution = 1024

// Map is a single-channel depth texture plus the framebuffer that
// renders into it. Contents are fully rewritten every frame.
type Map struct {
	fbo  uint32
	tex  uint32
	size int32
}

// NewMap creates the depth texture and framebuffer at the given square
// resolution. Must run on the render thread.
func NewMap(size int32) (*Map, error) {
	if size <= 0 {
		size = DefaultResolution
	}
	m := &Map{size: size}

	gl.GenTextures(1, &m.tex)
	gl.BindTexture(gl.TEXTURE_2D, m.tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT24, size, size,
		0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_BORDER)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_BORDER)
	// Fragments outside the light frustum read max depth and stay lit.
	border := [4]float32{1, 1, 1, 1}
	gl.TexParameterfv(gl.TEXTURE_2D, gl.TEXTURE_BORDER_COLOR, &border[0])

	gl.GenFramebuffers(1, &m.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, m.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, m.tex, 0)
	gl.DrawBuffer(gl.NONE)
	gl.ReadBuffer(gl.NONE)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		m.Destroy()
		return nil, fmt.Errorf("shadow framebuffer incomplete: 0x%x", status)
	}

	logger.Debug("shadow map created", zap.Int32("resolution", size))
	return m, nil
}

// Begin targets the shadow map for depth-only rendering: binds the
// framebuffer, sets the viewport, clears depth to 1.0, and disables
// face culling so thin or open geometry still casts full shadows.
func (m *Map) Begin() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, m.fbo)
	gl.Viewport(0, 0, m.size, m.size)
	gl.ClearDepth(1.0)
	gl.Clear(gl.DEPTH_BUFFER_BIT)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Disable(gl.CULL_FACE)
}

// End returns rendering to the default framebuffer.
func (m *Map) End() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// Texture returns the depth texture handle for receiver passes.
func (m *Map) Texture() uint32 { return m.tex }

// Size returns the square resolution in pixels.
func (m *Map) Size() int32 { return m.size }

// Destroy releases the framebuffer and texture.
func (m *Map) Destroy() {
	if m.fbo != 0 {
		gl.DeleteFramebuffers(1, &m.fbo)
		m.fbo = 0
	}
	if m.tex != 0 {
		gl.DeleteTextures(1, &m.tex)
		m.tex = 0
	}
}
