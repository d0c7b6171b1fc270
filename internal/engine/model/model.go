// Package model loads glTF scene assets into flat lists of renderable
// meshes with resolved world transforms, materials, and bounds.
//
// Loading is split into two stages: Load parses and decodes on any
// goroutine and produces a Data; Data.Upload creates the GPU buffers and
// must run on the render thread.
package model

import (
	"github.com/quietfall/stageview/internal/engine/texture"
	"github.com/quietfall/stageview/pkg/math"
)

// Vertex is the interleaved vertex layout shared by every render pass:
// position, normal, tangent (xyz + handedness w), texcoord.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	Tangent  [4]float32
	TexCoord [2]float32
}

// AABB is an axis-aligned bounding box in mesh-local space.
type AABB struct {
	Min math.Vec3
	Max math.Vec3
}

// Center returns the box midpoint.
func (b AABB) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Corners returns the 8 corner points of the box.
func (b AABB) Corners() [8][3]float32 {
	return [8][3]float32{
		{b.Min.X, b.Min.Y, b.Min.Z},
		{b.Max.X, b.Min.Y, b.Min.Z},
		{b.Min.X, b.Max.Y, b.Min.Z},
		{b.Max.X, b.Max.Y, b.Min.Z},
		{b.Min.X, b.Min.Y, b.Max.Z},
		{b.Max.X, b.Min.Y, b.Max.Z},
		{b.Min.X, b.Max.Y, b.Max.Z},
		{b.Max.X, b.Max.Y, b.Max.Z},
	}
}

// Material holds resolved PBR factors and optional shared textures.
// Texture handles are owned by the loader's texture cache; identical
// sources resolve to the same handle.
type Material struct {
	Name string

	BaseColor [4]float32
	Metallic  float32
	Roughness float32

	BaseColorTex *texture.Texture
	NormalTex    *texture.Texture
	MetallicTex  *texture.Texture
	RoughnessTex *texture.Texture
}

// DefaultMaterial is the fallback for meshes without a material:
// flat gray, dielectric, medium roughness, no textures.
func DefaultMaterial() Material {
	return Material{
		Name:      "default",
		BaseColor: [4]float32{0.5, 0.5, 0.5, 1.0},
		Metallic:  0.0,
		Roughness: 0.5,
	}
}

// MeshData is one converted mesh before GPU upload.
type MeshData struct {
	Name      string
	Transform math.Mat4 // accumulated world transform from the scene graph
	Vertices  []Vertex
	Indices   []uint32
	Bounds    AABB
	Material  Material
}

// Data is a fully parsed asset: the CPU half of a Model.
type Data struct {
	Source string
	Meshes []MeshData
}

// Mesh owns its GPU vertex/index buffers. Created at upload time,
// immutable afterwards, destroyed when the model is replaced.
type Mesh struct {
	Name      string
	Transform math.Mat4
	Bounds    AABB
	Material  Material

	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32
}

// VAO returns the vertex array object for drawing.
func (m *Mesh) VAO() uint32 { return m.vao }

// IndexCount returns the number of indices to draw.
func (m *Mesh) IndexCount() int32 { return m.indexCount }

// Model is an ordered collection of meshes sharing one coordinate space.
type Model struct {
	Source string
	Meshes []*Mesh
}
