// Package camera provides the orbit camera used by the stage viewer.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/quietfall/stageview/pkg/math"
)

// pitchLimit keeps the pitch strictly inside (-pi/2, pi/2) so the view
// never degenerates at the poles.
const pitchLimit = math32.Pi/2 - 0.01

// Orbit orbits around a target point, parameterized by distance, yaw and
// pitch. It is mutated by input handling only; the renderer reads the
// derived eye position and view matrix.
type Orbit struct {
	Target math.Vec3

	Distance float32
	Yaw      float32 // horizontal angle, radians
	Pitch    float32 // vertical angle, radians

	MinDistance float32
	MaxDistance float32

	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbit creates an orbit camera with viewer defaults.
func NewOrbit() *Orbit {
	return &Orbit{
		Distance:        3.0,
		Yaw:             0.0,
		Pitch:           0.35,
		MinDistance:     0.2,
		MaxDistance:     50.0,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera eye position in world space.
func (c *Orbit) Position() math.Vec3 {
	x := c.Distance * math32.Cos(c.Pitch) * math32.Sin(c.Yaw)
	y := c.Distance * math32.Sin(c.Pitch)
	z := c.Distance * math32.Cos(c.Pitch) * math32.Cos(c.Yaw)

	return math.Vec3{
		X: c.Target.X + x,
		Y: c.Target.Y + y,
		Z: c.Target.Z + z,
	}
}

// ViewMatrix returns the view matrix for this camera.
func (c *Orbit) ViewMatrix() math.Mat4 {
	up := math.Vec3{X: 0, Y: 1, Z: 0}
	return math.LookAt(c.Position(), c.Target, up)
}

// HandleDrag updates yaw and pitch based on mouse drag delta.
func (c *Orbit) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch += deltaY * c.DragSensitivity

	if c.Pitch > pitchLimit {
		c.Pitch = pitchLimit
	}
	if c.Pitch < -pitchLimit {
		c.Pitch = -pitchLimit
	}
}

// HandleZoom updates distance based on scroll wheel delta. The distance
// stays inside [MinDistance, MaxDistance] for any input magnitude.
func (c *Orbit) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	if c.Distance < c.MinDistance {
		c.Distance = c.MinDistance
	}
	if c.Distance > c.MaxDistance {
		c.Distance = c.MaxDistance
	}
}

// SetTarget moves the orbit center.
func (c *Orbit) SetTarget(t math.Vec3) {
	c.Target = t
}

// FitToBounds frames the given world-space bounding box: the target moves
// to the box center and the distance is derived from its footprint.
func (c *Orbit) FitToBounds(min, max math.Vec3) {
	c.Target = min.Add(max).Scale(0.5)

	size := max.Sub(min)
	extent := math32.Max(size.X, math32.Max(size.Y, size.Z))
	if extent <= 0 {
		extent = 1
	}

	c.Distance = extent * 1.8
	if c.Distance < c.MinDistance {
		c.Distance = c.MinDistance
	}
	if c.Distance > c.MaxDistance {
		c.Distance = c.MaxDistance
	}
}
