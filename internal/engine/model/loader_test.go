package model

import (
	"errors"
	"testing"

	"github.com/chewxy/math32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/quietfall/stageview/internal/engine/texture"
	"github.com/quietfall/stageview/pkg/math"
)

// addTriangle appends a one-triangle mesh to the document and returns
// its mesh index.
func addTriangle(doc *gltf.Document, name string) int {
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {0, 0, 1}, {1, 0, 0}})
	idx := modeler.WriteIndices(doc, []uint32{0, 1, 2})
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: name,
		Primitives: []*gltf.Primitive{{
			Attributes: map[string]int{gltf.POSITION: pos},
			Indices:    gltf.Index(idx),
		}},
	})
	return len(doc.Meshes) - 1
}

// addNode appends a node referencing mesh and registers it as a scene root.
func addNode(doc *gltf.Document, mesh int) *gltf.Node {
	node := &gltf.Node{Mesh: gltf.Index(mesh)}
	doc.Nodes = append(doc.Nodes, node)
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	return node
}

func TestLoadDocumentSkipsBrokenPrimitives(t *testing.T) {
	doc := gltf.NewDocument()
	good := addTriangle(doc, "good")
	addNode(doc, good)

	// A primitive without POSITION cannot be converted.
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name:       "broken",
		Primitives: []*gltf.Primitive{{Attributes: map[string]int{}}},
	})
	addNode(doc, len(doc.Meshes)-1)

	data, err := loadDocument(doc, "test.gltf", texture.NewCache())
	if err != nil {
		t.Fatalf("loadDocument: %v", err)
	}
	if len(data.Meshes) != 1 {
		t.Fatalf("expected the broken primitive to be skipped, got %d meshes", len(data.Meshes))
	}
	if data.Meshes[0].Name != "good" {
		t.Errorf("surviving mesh should be %q, got %q", "good", data.Meshes[0].Name)
	}
}

func TestLoadDocumentNoGeometry(t *testing.T) {
	doc := gltf.NewDocument()
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Primitives: []*gltf.Primitive{{Attributes: map[string]int{}}},
	})
	addNode(doc, 0)

	_, err := loadDocument(doc, "empty.gltf", texture.NewCache())
	if !errors.Is(err, ErrNoGeometry) {
		t.Fatalf("expected ErrNoGeometry, got %v", err)
	}
}

func TestLoadDocumentTransformHierarchy(t *testing.T) {
	doc := gltf.NewDocument()
	mesh := addTriangle(doc, "leaf")

	leaf := &gltf.Node{
		Mesh:  gltf.Index(mesh),
		Scale: [3]float64{2, 2, 2},
	}
	doc.Nodes = append(doc.Nodes, leaf)
	leafIdx := len(doc.Nodes) - 1

	parent := &gltf.Node{
		Translation: [3]float64{1, 2, 3},
		Children:    []int{leafIdx},
	}
	doc.Nodes = append(doc.Nodes, parent)
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)

	data, err := loadDocument(doc, "tree.gltf", texture.NewCache())
	if err != nil {
		t.Fatalf("loadDocument: %v", err)
	}
	if len(data.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(data.Meshes))
	}

	tr := data.Meshes[0].Transform
	origin := tr.TransformVec3(math.Vec3{})
	if origin.Distance(math.Vec3{X: 1, Y: 2, Z: 3}) > 1e-5 {
		t.Errorf("origin should map to parent translation, got %+v", origin)
	}
	unit := tr.TransformVec3(math.Vec3{X: 1})
	if unit.Distance(math.Vec3{X: 3, Y: 2, Z: 3}) > 1e-5 {
		t.Errorf("unit X should be scaled by child then translated, got %+v", unit)
	}
}

func TestLoadDocumentBounds(t *testing.T) {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{
		{-1, 0, -2},
		{3, 0.5, 0},
		{0, -0.25, 4},
	})
	idx := modeler.WriteIndices(doc, []uint32{0, 1, 2})
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Primitives: []*gltf.Primitive{{
			Attributes: map[string]int{gltf.POSITION: pos},
			Indices:    gltf.Index(idx),
		}},
	})
	addNode(doc, 0)

	data, err := loadDocument(doc, "bounds.gltf", texture.NewCache())
	if err != nil {
		t.Fatalf("loadDocument: %v", err)
	}
	b := data.Meshes[0].Bounds
	wantMin := math.Vec3{X: -1, Y: -0.25, Z: -2}
	wantMax := math.Vec3{X: 3, Y: 0.5, Z: 4}
	if b.Min != wantMin || b.Max != wantMax {
		t.Errorf("bounds = %+v..%+v, want %+v..%+v", b.Min, b.Max, wantMin, wantMax)
	}
}

func TestLoadDocumentDefaultMaterial(t *testing.T) {
	doc := gltf.NewDocument()
	addNode(doc, addTriangle(doc, "bare"))

	data, err := loadDocument(doc, "bare.gltf", texture.NewCache())
	if err != nil {
		t.Fatalf("loadDocument: %v", err)
	}
	mat := data.Meshes[0].Material
	if mat.BaseColor != [4]float32{0.5, 0.5, 0.5, 1.0} {
		t.Errorf("default base color = %v", mat.BaseColor)
	}
	if mat.Metallic != 0 || mat.Roughness != 0.5 {
		t.Errorf("default metallic/roughness = %v/%v", mat.Metallic, mat.Roughness)
	}
	if mat.BaseColorTex != nil || mat.NormalTex != nil || mat.MetallicTex != nil || mat.RoughnessTex != nil {
		t.Error("default material must carry no textures")
	}
}

func TestLoadDocumentMaterialFactors(t *testing.T) {
	doc := gltf.NewDocument()
	mesh := addTriangle(doc, "painted")

	metallic := 0.25
	roughness := 0.75
	doc.Materials = append(doc.Materials, &gltf.Material{
		Name: "paint",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float64{0.8, 0.2, 0.1, 1.0},
			MetallicFactor:  &metallic,
			RoughnessFactor: &roughness,
		},
	})
	doc.Meshes[mesh].Primitives[0].Material = gltf.Index(0)
	addNode(doc, mesh)

	data, err := loadDocument(doc, "painted.gltf", texture.NewCache())
	if err != nil {
		t.Fatalf("loadDocument: %v", err)
	}
	mat := data.Meshes[0].Material
	if mat.Name != "paint" {
		t.Errorf("material name = %q", mat.Name)
	}
	if math32.Abs(mat.BaseColor[0]-0.8) > 1e-6 || math32.Abs(mat.BaseColor[1]-0.2) > 1e-6 {
		t.Errorf("base color = %v", mat.BaseColor)
	}
	if math32.Abs(mat.Metallic-0.25) > 1e-6 || math32.Abs(mat.Roughness-0.75) > 1e-6 {
		t.Errorf("metallic/roughness = %v/%v", mat.Metallic, mat.Roughness)
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	_, err := Load("does-not-exist.gltf", texture.NewCache())
	if !errors.Is(err, ErrUnreadableAsset) {
		t.Fatalf("expected ErrUnreadableAsset, got %v", err)
	}
}

func TestGenerateNormalsFlatTriangle(t *testing.T) {
	vertices := []Vertex{
		{Position: [3]float32{0, 0, 0}},
		{Position: [3]float32{0, 0, 1}},
		{Position: [3]float32{1, 0, 0}},
	}
	indices := []uint32{0, 1, 2}

	GenerateNormals(vertices, indices)

	for i, v := range vertices {
		n := math.FromArray(v.Normal)
		if n.Distance(math.Vec3{Y: 1}) > 1e-5 {
			t.Errorf("vertex %d normal = %+v, want +Y", i, n)
		}
	}
}

func TestGenerateTangentsOrthogonalToNormal(t *testing.T) {
	vertices := []Vertex{
		{Position: [3]float32{0, 0, 0}, Normal: [3]float32{0, 1, 0}, TexCoord: [2]float32{0, 0}},
		{Position: [3]float32{0, 0, 1}, Normal: [3]float32{0, 1, 0}, TexCoord: [2]float32{0, 1}},
		{Position: [3]float32{1, 0, 0}, Normal: [3]float32{0, 1, 0}, TexCoord: [2]float32{1, 0}},
	}
	indices := []uint32{0, 1, 2}

	GenerateTangents(vertices, indices)

	for i, v := range vertices {
		tan := math.Vec3{X: v.Tangent[0], Y: v.Tangent[1], Z: v.Tangent[2]}
		if math32.Abs(tan.Length()-1) > 1e-4 {
			t.Errorf("vertex %d tangent not unit length: %v", i, tan)
		}
		n := math.FromArray(v.Normal)
		if math32.Abs(tan.Dot(n)) > 1e-4 {
			t.Errorf("vertex %d tangent not perpendicular to normal", i)
		}
		if w := v.Tangent[3]; w != 1 && w != -1 {
			t.Errorf("vertex %d handedness = %v, want +-1", i, w)
		}
	}
}

func TestGenerateTangentsDegenerateUVs(t *testing.T) {
	vertices := []Vertex{
		{Position: [3]float32{0, 0, 0}, Normal: [3]float32{0, 1, 0}},
		{Position: [3]float32{0, 0, 1}, Normal: [3]float32{0, 1, 0}},
		{Position: [3]float32{1, 0, 0}, Normal: [3]float32{0, 1, 0}},
	}
	indices := []uint32{0, 1, 2}

	GenerateTangents(vertices, indices)

	for i, v := range vertices {
		tan := math.Vec3{X: v.Tangent[0], Y: v.Tangent[1], Z: v.Tangent[2]}
		if math32.Abs(tan.Length()-1) > 1e-4 {
			t.Errorf("vertex %d fallback tangent not unit length: %v", i, tan)
		}
		if math32.Abs(tan.Dot(math.FromArray(v.Normal))) > 1e-4 {
			t.Errorf("vertex %d fallback tangent not perpendicular to normal", i)
		}
	}
}
