package model

import (
	"github.com/chewxy/math32"

	"github.com/quietfall/stageview/pkg/math"
)

// GenerateNormals fills in vertex normals from triangle geometry when
// the asset ships without them. Face normals are accumulated per vertex
// weighted by triangle area, then normalized.
func GenerateNormals(vertices []Vertex, indices []uint32) {
	for i := range vertices {
		vertices[i].Normal = [3]float32{}
	}
	for i := 0; i+2 < len(indices); i += 3 {
		a := indices[i]
		b := indices[i+1]
		c := indices[i+2]

		pa := math.FromArray(vertices[a].Position)
		pb := math.FromArray(vertices[b].Position)
		pc := math.FromArray(vertices[c].Position)

		// Unnormalized cross product: length is twice the triangle
		// area, which gives the area weighting for free.
		face := pb.Sub(pa).Cross(pc.Sub(pa))

		for _, vi := range []uint32{a, b, c} {
			n := math.FromArray(vertices[vi].Normal).Add(face)
			vertices[vi].Normal = n.Array()
		}
	}
	for i := range vertices {
		n := math.FromArray(vertices[i].Normal).Normalize()
		if n.Length() == 0 {
			n = math.Vec3{Y: 1}
		}
		vertices[i].Normal = n.Array()
	}
}

// GenerateTangents computes per-vertex tangents from UV derivatives
// (Lengyel's method) for normal mapping when the asset has none.
// Vertices without usable UVs get an arbitrary basis perpendicular to
// the normal, which keeps the shader inputs valid.
func GenerateTangents(vertices []Vertex, indices []uint32) {
	tan1 := make([]math.Vec3, len(vertices))
	tan2 := make([]math.Vec3, len(vertices))

	for i := 0; i+2 < len(indices); i += 3 {
		a := indices[i]
		b := indices[i+1]
		c := indices[i+2]

		pa := math.FromArray(vertices[a].Position)
		pb := math.FromArray(vertices[b].Position)
		pc := math.FromArray(vertices[c].Position)

		ua := vertices[a].TexCoord
		ub := vertices[b].TexCoord
		uc := vertices[c].TexCoord

		e1 := pb.Sub(pa)
		e2 := pc.Sub(pa)
		du1 := ub[0] - ua[0]
		dv1 := ub[1] - ua[1]
		du2 := uc[0] - ua[0]
		dv2 := uc[1] - ua[1]

		det := du1*dv2 - du2*dv1
		if det == 0 {
			continue
		}
		r := 1.0 / det

		sdir := math.Vec3{
			X: (dv2*e1.X - dv1*e2.X) * r,
			Y: (dv2*e1.Y - dv1*e2.Y) * r,
			Z: (dv2*e1.Z - dv1*e2.Z) * r,
		}
		tdir := math.Vec3{
			X: (du1*e2.X - du2*e1.X) * r,
			Y: (du1*e2.Y - du2*e1.Y) * r,
			Z: (du1*e2.Z - du2*e1.Z) * r,
		}

		for _, vi := range []uint32{a, b, c} {
			tan1[vi] = tan1[vi].Add(sdir)
			tan2[vi] = tan2[vi].Add(tdir)
		}
	}

	for i := range vertices {
		n := math.FromArray(vertices[i].Normal)
		t := tan1[i]

		// Gram-Schmidt orthogonalize against the normal.
		t = t.Sub(n.Scale(n.Dot(t)))
		if t.Length() < 1e-6 {
			t = fallbackTangent(n)
			vertices[i].Tangent = [4]float32{t.X, t.Y, t.Z, 1}
			continue
		}
		t = t.Normalize()

		w := float32(1)
		if n.Cross(t).Dot(tan2[i]) < 0 {
			w = -1
		}
		vertices[i].Tangent = [4]float32{t.X, t.Y, t.Z, w}
	}
}

// fallbackTangent picks any unit vector perpendicular to n.
func fallbackTangent(n math.Vec3) math.Vec3 {
	axis := math.Vec3{X: 1}
	if math32.Abs(n.X) > 0.9 {
		axis = math.Vec3{Y: 1}
	}
	return n.Cross(axis).Normalize()
}
