package picking

import (
	"testing"

	"github.com/quietfall/stageview/internal/engine/model"
	"github.com/quietfall/stageview/pkg/math"
)

func TestScreenCenterRayHitsLookTarget(t *testing.T) {
	eye := math.Vec3{X: 0, Y: 5, Z: 5}
	view := math.LookAt(eye, math.Vec3{}, math.Vec3{Y: 1})
	proj := math.Perspective(0.785398, 16.0/9.0, 0.05, 200)
	inv := proj.Mul(view).Inverse()

	ray := ScreenToRay(960, 540, 1920, 1080, inv)

	// The center-pixel ray must point from the eye toward the origin.
	want := math.Vec3{}.Sub(eye).Normalize()
	if ray.Direction.Distance(want) > 1e-3 {
		t.Errorf("center ray direction = %+v, want %+v", ray.Direction, want)
	}

	hit, ok := ray.IntersectPlaneY(0)
	if !ok {
		t.Fatal("center ray should hit the ground plane")
	}
	if hit.Distance(math.Vec3{}) > 1e-2 {
		t.Errorf("center ray ground hit = %+v, want origin", hit)
	}
}

func TestIntersectPlaneYParallelMisses(t *testing.T) {
	ray := Ray{Origin: math.Vec3{Y: 1}, Direction: math.Vec3{X: 1}}
	if _, ok := ray.IntersectPlaneY(0); ok {
		t.Error("ray parallel to the plane must miss")
	}
}

func TestIntersectPlaneYBehindOriginMisses(t *testing.T) {
	ray := Ray{Origin: math.Vec3{Y: 1}, Direction: math.Vec3{Y: 1}}
	if _, ok := ray.IntersectPlaneY(0); ok {
		t.Error("plane behind the ray origin must miss")
	}
}

func TestIntersectAABB(t *testing.T) {
	box := model.AABB{
		Min: math.Vec3{X: -1, Y: -1, Z: -1},
		Max: math.Vec3{X: 1, Y: 1, Z: 1},
	}

	down := Ray{Origin: math.Vec3{Y: 5}, Direction: math.Vec3{Y: -1}}
	if dist, ok := down.IntersectAABB(box); !ok || dist < 3.9 || dist > 4.1 {
		t.Errorf("straight-down ray: dist=%v ok=%v, want ~4", dist, ok)
	}

	miss := Ray{Origin: math.Vec3{X: 5, Y: 5}, Direction: math.Vec3{Y: -1}}
	if _, ok := miss.IntersectAABB(box); ok {
		t.Error("offset ray must miss the box")
	}
}

func TestPickTargetPrefersModelOverGround(t *testing.T) {
	m := &model.Model{Meshes: []*model.Mesh{{
		Transform: math.Identity(),
		Bounds: model.AABB{
			Min: math.Vec3{X: -1, Y: 1, Z: -1},
			Max: math.Vec3{X: 1, Y: 3, Z: 1},
		},
	}}}

	ray := Ray{Origin: math.Vec3{Y: 10}, Direction: math.Vec3{Y: -1}}
	hit, ok := PickTarget(ray, m)
	if !ok {
		t.Fatal("ray through the model must hit")
	}
	if hit.Y < 2.9 || hit.Y > 3.1 {
		t.Errorf("hit should land on the mesh top (y~3), got %+v", hit)
	}

	// Without a model the same ray falls through to the ground plane.
	hit, ok = PickTarget(ray, nil)
	if !ok || hit.Y != 0 {
		t.Errorf("ground fallback hit = %+v ok=%v, want y=0", hit, ok)
	}
}
