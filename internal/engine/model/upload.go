package model

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/quietfall/stageview/internal/logger"
)

// Vertex attribute locations shared by every shader that draws meshes.
const (
	AttribPosition = 0
	AttribNormal   = 1
	AttribTangent  = 2
	AttribTexCoord = 3
)

// vertexStride is the byte size of one interleaved Vertex:
// 3 position + 3 normal + 4 tangent + 2 texcoord floats.
const vertexStride = 12 * 4

// Upload creates GPU buffers for every mesh and returns the renderable
// model. Must run on the render thread with a current GL context.
func (d *Data) Upload() *Model {
	m := &Model{Source: d.Source}
	for i := range d.Meshes {
		m.Meshes = append(m.Meshes, uploadMesh(&d.Meshes[i]))
	}
	logger.Debug("model uploaded",
		zap.String("asset", d.Source),
		zap.Int("meshes", len(m.Meshes)),
	)
	return m
}

func uploadMesh(md *MeshData) *Mesh {
	mesh := &Mesh{
		Name:       md.Name,
		Transform:  md.Transform,
		Bounds:     md.Bounds,
		Material:   md.Material,
		indexCount: int32(len(md.Indices)),
	}

	gl.GenVertexArrays(1, &mesh.vao)
	gl.BindVertexArray(mesh.vao)

	gl.GenBuffers(1, &mesh.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, mesh.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(md.Vertices)*vertexStride, gl.Ptr(md.Vertices), gl.STATIC_DRAW)

	gl.VertexAttribPointerWithOffset(AttribPosition, 3, gl.FLOAT, false, vertexStride, 0)
	gl.EnableVertexAttribArray(AttribPosition)
	gl.VertexAttribPointerWithOffset(AttribNormal, 3, gl.FLOAT, false, vertexStride, 3*4)
	gl.EnableVertexAttribArray(AttribNormal)
	gl.VertexAttribPointerWithOffset(AttribTangent, 4, gl.FLOAT, false, vertexStride, 6*4)
	gl.EnableVertexAttribArray(AttribTangent)
	gl.VertexAttribPointerWithOffset(AttribTexCoord, 2, gl.FLOAT, false, vertexStride, 10*4)
	gl.EnableVertexAttribArray(AttribTexCoord)

	gl.GenBuffers(1, &mesh.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, mesh.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(md.Indices)*4, gl.Ptr(md.Indices), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	return mesh
}

// Destroy releases the model's GPU buffers. Textures stay alive; they
// belong to the shared cache and may back other models.
func (m *Model) Destroy() {
	for _, mesh := range m.Meshes {
		gl.DeleteVertexArrays(1, &mesh.vao)
		gl.DeleteBuffers(1, &mesh.vbo)
		gl.DeleteBuffers(1, &mesh.ebo)
	}
	m.Meshes = nil
}
