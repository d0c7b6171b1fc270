// Package shadow computes the top-down light frustum for the stage and
// owns the offscreen depth map the shadow pass renders into.
package shadow

import (
	"github.com/quietfall/stageview/internal/engine/model"
	"github.com/quietfall/stageview/pkg/math"
)

const (
	// DefaultPadding widens the light footprint beyond the model so
	// shadows are not clipped at the frustum edge.
	DefaultPadding = 1.5

	// heightMargin and minHeight keep the frustum depth range from
	// collapsing for flat or empty scenes.
	heightMargin = 0.1
	minHeight    = 1.0
)

// Frustum is the per-frame result of fitting an orthographic top-down
// light around the scene.
type Frustum struct {
	// ViewProjection maps world space into the light's clip space.
	ViewProjection math.Mat4
	// Center is the world-space middle of the scene bounds.
	Center math.Vec3
	// Radius is half the larger horizontal extent of the scene.
	Radius float32
	// MaxHeight is the far plane distance, used by receivers to
	// normalize sampled shadow depth.
	MaxHeight float32
}

// SceneBounds aggregates every mesh's transformed bounding-box corners
// into one world-space AABB. A nil or empty model yields a default box
// around the origin so downstream math stays well-defined.
func SceneBounds(m *model.Model) model.AABB {
	def := model.AABB{
		Min: math.Vec3{X: -0.5, Y: 0, Z: -0.5},
		Max: math.Vec3{X: 0.5, Y: 1, Z: 0.5},
	}
	if m == nil || len(m.Meshes) == 0 {
		return def
	}

	first := true
	var bounds model.AABB
	for _, mesh := range m.Meshes {
		for _, corner := range mesh.Bounds.Corners() {
			p := math.FromArray(mesh.Transform.TransformPoint(corner))
			if first {
				bounds = model.AABB{Min: p, Max: p}
				first = false
				continue
			}
			bounds.Min = bounds.Min.Min(p)
			bounds.Max = bounds.Max.Max(p)
		}
	}
	if first {
		return def
	}
	return bounds
}

// ComputeFrustum fits a top-down orthographic light around the model.
// Pure function of the model; recomputed each frame since it is cheap
// relative to draw cost.
func ComputeFrustum(m *model.Model) Frustum {
	bounds := SceneBounds(m)
	center := bounds.Center()

	extent := bounds.Max.Sub(bounds.Min)
	radius := extent.X / 2
	if extent.Z > extent.X {
		radius = extent.Z / 2
	}

	maxHeight := extent.Y*2 + heightMargin
	if maxHeight < minHeight {
		maxHeight = minHeight
	}

	footprint := radius * DefaultPadding
	if footprint <= 0 {
		footprint = DefaultPadding / 2
	}

	// Eye sits at the top of the depth range looking straight down at
	// the ground plane; -Z as up fixes the roll for a vertical view.
	eye := math.Vec3{X: center.X, Y: maxHeight, Z: center.Z}
	target := math.Vec3{X: center.X, Y: 0, Z: center.Z}
	view := math.LookAt(eye, target, math.Vec3{Z: -1})
	proj := math.Ortho(-footprint, footprint, -footprint, footprint, 0, maxHeight)

	return Frustum{
		ViewProjection: proj.Mul(view),
		Center:         center,
		Radius:         radius,
		MaxHeight:      maxHeight,
	}
}
