package camera

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/quietfall/stageview/pkg/math"
)

func TestPitchClampExtremeDrag(t *testing.T) {
	c := NewOrbit()

	c.HandleDrag(0, 1e6)
	if c.Pitch >= math32.Pi/2 {
		t.Errorf("pitch %f should stay strictly below pi/2", c.Pitch)
	}

	c.HandleDrag(0, -1e6)
	if c.Pitch <= -math32.Pi/2 {
		t.Errorf("pitch %f should stay strictly above -pi/2", c.Pitch)
	}
}

func TestZoomClampExtremeDelta(t *testing.T) {
	c := NewOrbit()

	c.HandleZoom(10000)
	if c.Distance < c.MinDistance {
		t.Errorf("distance %f below MinDistance %f", c.Distance, c.MinDistance)
	}

	c.HandleZoom(-10000)
	if c.Distance > c.MaxDistance {
		t.Errorf("distance %f above MaxDistance %f", c.Distance, c.MaxDistance)
	}
}

func TestPositionRespectsDistance(t *testing.T) {
	c := NewOrbit()
	c.Target = math.Vec3{X: 1, Y: 2, Z: 3}
	c.Distance = 5

	d := c.Position().Distance(c.Target)
	if math32.Abs(d-5) > 0.001 {
		t.Errorf("eye-target distance = %f, want 5", d)
	}
}

func TestViewMatrixLooksAtTarget(t *testing.T) {
	c := NewOrbit()
	c.Target = math.Vec3{X: 0.5, Y: 1, Z: -2}

	view := c.ViewMatrix()
	p := view.TransformVec3(c.Target)

	// The target must land on the view-space -Z axis.
	if math32.Abs(p.X) > 0.001 || math32.Abs(p.Y) > 0.001 {
		t.Errorf("target in view space = %v, want on -Z axis", p)
	}
	if p.Z >= 0 {
		t.Errorf("target should be in front of the camera, view-space Z = %f", p.Z)
	}
}

func TestFitToBounds(t *testing.T) {
	c := NewOrbit()
	min := math.Vec3{X: -1, Y: 0, Z: -1}
	max := math.Vec3{X: 1, Y: 2, Z: 1}

	c.FitToBounds(min, max)

	want := math.Vec3{X: 0, Y: 1, Z: 0}
	if c.Target != want {
		t.Errorf("target = %v, want %v", c.Target, want)
	}
	if c.Distance < c.MinDistance || c.Distance > c.MaxDistance {
		t.Errorf("fitted distance %f outside clamp range", c.Distance)
	}
}
