package model

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/quietfall/stageview/internal/engine/texture"
	"github.com/quietfall/stageview/internal/logger"
	"github.com/quietfall/stageview/pkg/math"
)

var (
	// ErrNoGeometry means the asset parsed but produced zero renderable
	// meshes, so there is nothing to display.
	ErrNoGeometry = errors.New("asset contains no renderable geometry")

	// ErrUnreadableAsset means the asset file could not be read or parsed.
	ErrUnreadableAsset = errors.New("asset unreadable")
)

// Load parses a glTF or GLB asset and converts every mesh primitive
// reachable from the default scene into renderable data. A primitive
// that fails conversion is skipped with a warning; Load fails only when
// the whole asset is unreadable or nothing at all survives.
//
// Load touches no GPU state and may run off the render thread. Textures
// are decoded through cache, so sources shared between materials are
// read once.
func Load(path string, cache *texture.Cache) (*Data, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableAsset, path, err)
	}
	return loadDocument(doc, path, cache)
}

// nodeWork is one scene-graph node waiting to be flattened, paired with
// the accumulated transform of its ancestors.
type nodeWork struct {
	index  int
	parent math.Mat4
}

func loadDocument(doc *gltf.Document, path string, cache *texture.Cache) (*Data, error) {
	data := &Data{Source: path}
	baseDir := filepath.Dir(path)

	work := make([]nodeWork, 0, len(doc.Nodes))
	for _, root := range sceneRoots(doc) {
		work = append(work, nodeWork{index: root, parent: math.Identity()})
	}

	skipped := 0
	for len(work) > 0 {
		item := work[len(work)-1]
		work = work[:len(work)-1]
		if item.index < 0 || item.index >= len(doc.Nodes) {
			continue
		}
		node := doc.Nodes[item.index]
		world := item.parent.Mul(nodeLocalMatrix(node))

		for _, child := range node.Children {
			work = append(work, nodeWork{index: int(child), parent: world})
		}

		if node.Mesh == nil || int(*node.Mesh) >= len(doc.Meshes) {
			continue
		}
		mesh := doc.Meshes[int(*node.Mesh)]
		name := mesh.Name
		if name == "" {
			name = fmt.Sprintf("mesh[%d]", int(*node.Mesh))
		}

		for pi, prim := range mesh.Primitives {
			md, err := loadPrimitive(doc, prim, baseDir, path, cache)
			if err != nil {
				skipped++
				logger.Warn("skipping mesh primitive",
					zap.String("asset", path),
					zap.String("mesh", name),
					zap.Int("primitive", pi),
					zap.Error(err),
				)
				continue
			}
			md.Name = name
			md.Transform = world
			data.Meshes = append(data.Meshes, md)
		}
	}

	if len(data.Meshes) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoGeometry)
	}
	logger.Info("asset loaded",
		zap.String("asset", path),
		zap.Int("meshes", len(data.Meshes)),
		zap.Int("skipped", skipped),
		zap.Int("textures", cache.Len()),
	)
	return data, nil
}

// sceneRoots returns the root node indices of the default scene, or of
// the first scene when no default is set. Assets without scenes fall
// back to treating every node as a root.
func sceneRoots(doc *gltf.Document) []int {
	var scene *gltf.Scene
	if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
		scene = doc.Scenes[int(*doc.Scene)]
	} else if len(doc.Scenes) > 0 {
		scene = doc.Scenes[0]
	}
	if scene == nil {
		roots := make([]int, len(doc.Nodes))
		for i := range roots {
			roots[i] = i
		}
		return roots
	}
	roots := make([]int, 0, len(scene.Nodes))
	for _, n := range scene.Nodes {
		roots = append(roots, int(n))
	}
	return roots
}

// nodeLocalMatrix builds the node's local transform. glTF stores either
// a column-major matrix or TRS components; a zero or identity matrix
// falls through to TRS, and zero-valued rotation or scale is replaced
// with the identity defaults the format prescribes.
func nodeLocalMatrix(n *gltf.Node) math.Mat4 {
	var zero16 [16]float64
	identity16 := [16]float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
	if n.Matrix != zero16 && n.Matrix != identity16 {
		var m math.Mat4
		for i := 0; i < 16; i++ {
			m[i] = float32(n.Matrix[i])
		}
		return m
	}

	rot := n.Rotation
	if rot == ([4]float64{}) {
		rot = [4]float64{0, 0, 0, 1}
	}
	scale := n.Scale
	if scale == ([3]float64{}) {
		scale = [3]float64{1, 1, 1}
	}

	t := math.Translate(float32(n.Translation[0]), float32(n.Translation[1]), float32(n.Translation[2]))
	r := math.Quat{
		X: float32(rot[0]),
		Y: float32(rot[1]),
		Z: float32(rot[2]),
		W: float32(rot[3]),
	}.Normalize().ToMat4()
	s := math.Scale(float32(scale[0]), float32(scale[1]), float32(scale[2]))
	return t.Mul(r).Mul(s)
}

func loadPrimitive(doc *gltf.Document, prim *gltf.Primitive, baseDir, assetPath string, cache *texture.Cache) (MeshData, error) {
	var md MeshData

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return md, fmt.Errorf("primitive has no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return md, fmt.Errorf("reading positions: %w", err)
	}
	if len(positions) == 0 {
		return md, fmt.Errorf("primitive has no vertices")
	}

	var normals [][3]float32
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
			normals = nil
		}
	}
	var texCoords [][2]float32
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if texCoords, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
			texCoords = nil
		}
	}
	var tangents [][4]float32
	if idx, ok := prim.Attributes[gltf.TANGENT]; ok {
		if tangents, err = modeler.ReadTangent(doc, doc.Accessors[idx], nil); err != nil {
			tangents = nil
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[int(*prim.Indices)], nil)
		if err != nil {
			return md, fmt.Errorf("reading indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	if len(indices)%3 != 0 {
		return md, fmt.Errorf("index count %d is not a triangle list", len(indices))
	}
	for _, idx := range indices {
		if int(idx) >= len(positions) {
			return md, fmt.Errorf("index %d out of range for %d vertices", idx, len(positions))
		}
	}

	vertices := make([]Vertex, len(positions))
	bounds := AABB{
		Min: math.FromArray(positions[0]),
		Max: math.FromArray(positions[0]),
	}
	for i, pos := range positions {
		vertices[i].Position = pos
		p := math.FromArray(pos)
		bounds.Min = bounds.Min.Min(p)
		bounds.Max = bounds.Max.Max(p)
		if normals != nil && i < len(normals) {
			vertices[i].Normal = normals[i]
		}
		if texCoords != nil && i < len(texCoords) {
			vertices[i].TexCoord = texCoords[i]
		}
		if tangents != nil && i < len(tangents) {
			vertices[i].Tangent = tangents[i]
		}
	}

	if normals == nil {
		GenerateNormals(vertices, indices)
	}
	if tangents == nil {
		GenerateTangents(vertices, indices)
	}

	md.Vertices = vertices
	md.Indices = indices
	md.Bounds = bounds
	md.Material = resolveMaterial(doc, prim, baseDir, assetPath, cache)
	return md, nil
}

// resolveMaterial converts the primitive's glTF material into render
// factors and cached textures. Any failure downgrades to factors only,
// so one broken texture does not discard the mesh.
func resolveMaterial(doc *gltf.Document, prim *gltf.Primitive, baseDir, assetPath string, cache *texture.Cache) Material {
	mat := DefaultMaterial()
	if prim.Material == nil || int(*prim.Material) >= len(doc.Materials) {
		return mat
	}
	src := doc.Materials[int(*prim.Material)]
	if src.Name != "" {
		mat.Name = src.Name
	}

	pbr := src.PBRMetallicRoughness
	if pbr == nil {
		return mat
	}
	if pbr.BaseColorFactor != nil {
		for i, v := range pbr.BaseColorFactor {
			mat.BaseColor[i] = float32(v)
		}
	} else {
		mat.BaseColor = [4]float32{1, 1, 1, 1}
	}
	mat.Metallic = 1.0
	if pbr.MetallicFactor != nil {
		mat.Metallic = float32(*pbr.MetallicFactor)
	}
	mat.Roughness = 1.0
	if pbr.RoughnessFactor != nil {
		mat.Roughness = float32(*pbr.RoughnessFactor)
	}

	if pbr.BaseColorTexture != nil {
		mat.BaseColorTex = loadMaterialTexture(doc, int(pbr.BaseColorTexture.Index), texture.SRGB, baseDir, assetPath, cache)
	}
	if src.NormalTexture != nil && src.NormalTexture.Index != nil {
		mat.NormalTex = loadMaterialTexture(doc, int(*src.NormalTexture.Index), texture.Linear, baseDir, assetPath, cache)
	}
	if pbr.MetallicRoughnessTexture != nil {
		// glTF packs roughness in G and metallic in B of one image, so
		// both slots share the same cached handle.
		shared := loadMaterialTexture(doc, int(pbr.MetallicRoughnessTexture.Index), texture.Linear, baseDir, assetPath, cache)
		mat.MetallicTex = shared
		mat.RoughnessTex = shared
	}
	return mat
}

func loadMaterialTexture(doc *gltf.Document, texIdx int, space texture.ColorSpace, baseDir, assetPath string, cache *texture.Cache) *texture.Texture {
	if texIdx < 0 || texIdx >= len(doc.Textures) {
		return nil
	}
	src := doc.Textures[texIdx].Source
	if src == nil || int(*src) >= len(doc.Images) {
		return nil
	}
	imgIdx := int(*src)
	img := doc.Images[imgIdx]

	key, read := imageReader(doc, img, imgIdx, baseDir, assetPath)
	if read == nil {
		logger.Warn("texture image has no usable source",
			zap.String("asset", assetPath),
			zap.Int("image", imgIdx),
		)
		return nil
	}

	tex, err := cache.GetOrLoad(key, space, read)
	if err != nil {
		logger.Warn("texture load failed, material falls back to factors",
			zap.String("source", key),
			zap.Error(err),
		)
		return nil
	}
	return tex
}

// imageReader produces a stable cache key and a byte reader for a glTF
// image, whatever form it takes: an external file, a GLB buffer view,
// or a base64 data URI.
func imageReader(doc *gltf.Document, img *gltf.Image, imgIdx int, baseDir, assetPath string) (string, texture.ReadFunc) {
	switch {
	case img.BufferView != nil:
		bvIdx := int(*img.BufferView)
		if bvIdx >= len(doc.BufferViews) {
			return "", nil
		}
		key := fmt.Sprintf("%s#image/%d", assetPath, imgIdx)
		return key, func() ([]byte, error) {
			return modeler.ReadBufferView(doc, doc.BufferViews[bvIdx])
		}
	case strings.HasPrefix(img.URI, "data:"):
		key := fmt.Sprintf("%s#image/%d", assetPath, imgIdx)
		return key, func() ([]byte, error) {
			comma := strings.IndexByte(img.URI, ',')
			if comma < 0 {
				return nil, fmt.Errorf("malformed data URI")
			}
			return base64.StdEncoding.DecodeString(img.URI[comma+1:])
		}
	case img.URI != "":
		key := filepath.Join(baseDir, filepath.FromSlash(img.URI))
		return key, func() ([]byte, error) {
			return os.ReadFile(key)
		}
	}
	return "", nil
}
