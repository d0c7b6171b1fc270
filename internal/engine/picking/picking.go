// Package picking casts cursor rays into the scene so clicks can
// retarget the orbit camera.
package picking

import (
	"github.com/chewxy/math32"

	"github.com/quietfall/stageview/internal/engine/model"
	"github.com/quietfall/stageview/pkg/math"
)

// Ray is a world-space ray with a normalized direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3
}

// ScreenToRay converts pixel coordinates into a world-space ray.
// invViewProj is the inverse of the frame's view-projection matrix.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, invViewProj math.Mat4) Ray {
	ndcX := 2.0*screenX/viewportW - 1.0
	ndcY := 1.0 - 2.0*screenY/viewportH

	near := invViewProj.MulVec4(math.Vec4{ndcX, ndcY, -1, 1})
	far := invViewProj.MulVec4(math.Vec4{ndcX, ndcY, 1, 1})
	if near[3] != 0 {
		near[0] /= near[3]
		near[1] /= near[3]
		near[2] /= near[3]
	}
	if far[3] != 0 {
		far[0] /= far[3]
		far[1] /= far[3]
		far[2] /= far[3]
	}

	origin := math.Vec3{X: near[0], Y: near[1], Z: near[2]}
	dir := math.Vec3{X: far[0] - near[0], Y: far[1] - near[1], Z: far[2] - near[2]}.Normalize()
	return Ray{Origin: origin, Direction: dir}
}

// IntersectPlaneY intersects the ray with the horizontal plane at the
// given height, returning the hit point.
func (r Ray) IntersectPlaneY(planeY float32) (math.Vec3, bool) {
	if math32.Abs(r.Direction.Y) < 1e-3 {
		return math.Vec3{}, false
	}
	t := (planeY - r.Origin.Y) / r.Direction.Y
	if t < 0 {
		return math.Vec3{}, false
	}
	return r.Origin.Add(r.Direction.Scale(t)), true
}

// IntersectAABB returns the entry distance to the box, or false when
// the ray misses.
func (r Ray) IntersectAABB(box model.AABB) (float32, bool) {
	tmin := math32.Inf(-1)
	tmax := math32.Inf(1)

	origin := r.Origin.Array()
	dir := r.Direction.Array()
	min := box.Min.Array()
	max := box.Max.Array()

	for axis := 0; axis < 3; axis++ {
		if dir[axis] == 0 {
			if origin[axis] < min[axis] || origin[axis] > max[axis] {
				return 0, false
			}
			continue
		}
		t1 := (min[axis] - origin[axis]) / dir[axis]
		t2 := (max[axis] - origin[axis]) / dir[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
	}
	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// PickTarget resolves a click against the model and ground: a hit on
// any mesh bounds wins over the ground plane, and a miss on both
// returns false.
func PickTarget(ray Ray, m *model.Model) (math.Vec3, bool) {
	bestT := math32.Inf(1)
	hit := false
	if m != nil {
		for _, mesh := range m.Meshes {
			world := worldBounds(mesh)
			if t, ok := ray.IntersectAABB(world); ok && t < bestT {
				bestT = t
				hit = true
			}
		}
	}
	if hit {
		return ray.Origin.Add(ray.Direction.Scale(bestT)), true
	}
	return ray.IntersectPlaneY(0)
}

// worldBounds transforms a mesh's local bounds into a world AABB.
func worldBounds(mesh *model.Mesh) model.AABB {
	corners := mesh.Bounds.Corners()
	first := math.FromArray(mesh.Transform.TransformPoint(corners[0]))
	out := model.AABB{Min: first, Max: first}
	for _, c := range corners[1:] {
		p := math.FromArray(mesh.Transform.TransformPoint(c))
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}
