package models

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/folio/pkg/math3d"
)

// GLTFLoader loads glTF/GLB files into a single flattened Mesh. Every mesh
// the default scene's node tree places is baked in with its node transform.
type GLTFLoader struct {
	CalculateNormals bool // Generate normals when the file has none
	SmoothNormals    bool // Averaged instead of per-face normals
}

// NewGLTFLoader creates a new glTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
		SmoothNormals:    true,
	}
}

// LoadGLB loads a glTF or binary glTF (.glb) file.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load loads a glTF or GLB file and returns a Mesh with its materials and
// their base color textures.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return l.fromDocument(doc, filepath.Base(path), filepath.Dir(path))
}

// fromDocument flattens doc. External image URIs resolve against dir.
func (l *GLTFLoader) fromDocument(doc *gltf.Document, name, dir string) (*Mesh, error) {
	mesh := NewMesh(name)
	mesh.Materials = readMaterials(doc, decodeImages(doc, dir))

	for _, inst := range sceneInstances(doc) {
		m := doc.Meshes[inst.mesh]
		if err := l.processMesh(doc, m, inst.world, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}
	if len(mesh.Faces) == 0 {
		return nil, fmt.Errorf("%s: no triangle geometry", name)
	}

	if l.CalculateNormals && !mesh.HasNormals() {
		if l.SmoothNormals {
			mesh.CalculateSmoothNormals()
		} else {
			mesh.CalculateNormals()
		}
	}
	mesh.CalculateBounds()
	return mesh, nil
}

// instance is one placement of a document mesh.
type instance struct {
	mesh  int
	world math3d.Mat4
}

// sceneInstances walks the node tree of the default scene (or the first
// one) and returns every mesh it reaches with its accumulated transform.
// A document without nodes places each mesh once, untransformed.
func sceneInstances(doc *gltf.Document) []instance {
	if len(doc.Nodes) == 0 {
		insts := make([]instance, len(doc.Meshes))
		for i := range doc.Meshes {
			insts[i] = instance{mesh: i, world: math3d.Identity()}
		}
		return insts
	}

	var roots []int
	switch {
	case doc.Scene != nil && *doc.Scene < len(doc.Scenes):
		roots = doc.Scenes[*doc.Scene].Nodes
	case len(doc.Scenes) > 0:
		roots = doc.Scenes[0].Nodes
	}

	var insts []instance
	seen := make(map[int]bool)
	var walk func(idx int, parent math3d.Mat4)
	walk = func(idx int, parent math3d.Mat4) {
		// Malformed files can list a node twice or loop.
		if idx < 0 || idx >= len(doc.Nodes) || seen[idx] {
			return
		}
		seen[idx] = true

		n := doc.Nodes[idx]
		world := parent.Mul(nodeTransform(n))
		if n.Mesh != nil && *n.Mesh >= 0 && *n.Mesh < len(doc.Meshes) {
			insts = append(insts, instance{mesh: *n.Mesh, world: world})
		}
		for _, c := range n.Children {
			walk(c, world)
		}
	}
	for _, r := range roots {
		walk(r, math3d.Identity())
	}
	return insts
}

// nodeTransform returns n's local matrix: its explicit matrix when set,
// else translation * rotation * scale.
func nodeTransform(n *gltf.Node) math3d.Mat4 {
	if m := n.MatrixOrDefault(); m != gltf.DefaultMatrix {
		return math3d.Mat4(m)
	}
	t, r, sc := n.TranslationOrDefault(), n.RotationOrDefault(), n.ScaleOrDefault()
	return math3d.Translate(math3d.V3(t[0], t[1], t[2])).
		Mul(math3d.FromQuat(r[0], r[1], r[2], r[3])).
		Mul(math3d.Scale(math3d.V3(sc[0], sc[1], sc[2])))
}

// processMesh appends the triangle primitives of m, placed by world, to mesh.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, world math3d.Mat4, mesh *Mesh) error {
	normalMatrix := world.NormalMatrix()
	// A mirroring transform turns front faces into back faces.
	mirrored := world.Det3() < 0

	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue // lines, points, strips
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals [][3]float32
		if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
			if normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}

		var uvs [][2]float32
		if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}

		base := len(mesh.Vertices)
		for i, p := range positions {
			v := MeshVertex{Position: world.MulVec3(vec3(p))}
			if i < len(normals) {
				v.Normal = normalMatrix.MulVec3Dir(vec3(normals[i])).Normalize()
			}
			if i < len(uvs) {
				// glTF puts V=0 at the top of the image
				v.UV = math3d.V2(float64(uvs[i][0]), 1-float64(uvs[i][1]))
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		var indices []uint32
		if prim.Indices != nil {
			if indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil); err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}

		material := -1
		if prim.Material != nil && *prim.Material < len(mesh.Materials) {
			material = *prim.Material
		}

		// glTF front faces wind counter-clockwise; the rasterizer expects
		// clockwise after its Y flip, so the last two indices swap.
		for i := 0; i+2 < len(indices); i += 3 {
			a, b, c := int(indices[i]), int(indices[i+1]), int(indices[i+2])
			if a >= len(positions) || b >= len(positions) || c >= len(positions) {
				return fmt.Errorf("index out of range in primitive of %d vertices", len(positions))
			}
			if !mirrored {
				b, c = c, b
			}
			mesh.Faces = append(mesh.Faces, Face{
				V:        [3]int{base + a, base + b, base + c},
				Material: material,
			})
		}
	}
	return nil
}

func vec3(v [3]float32) math3d.Vec3 {
	return math3d.V3(float64(v[0]), float64(v[1]), float64(v[2]))
}

type float interface{ ~float32 | ~float64 }

func factor4[T float](f *[4]T) [4]float64 {
	if f == nil {
		return [4]float64{1, 1, 1, 1}
	}
	return [4]float64{float64(f[0]), float64(f[1]), float64(f[2]), float64(f[3])}
}

func factor[T float](f *T, def float64) float64 {
	if f == nil {
		return def
	}
	return float64(*f)
}

// readMaterials converts the document's materials. Missing factors take the
// glTF defaults (white, fully metallic, fully rough). A material's base color
// texture is resolved through its texture to the decoded image; materials
// whose image is missing or undecodable fall back to their color.
func readMaterials(doc *gltf.Document, images map[int]image.Image) []Material {
	mats := make([]Material, len(doc.Materials))
	for i, m := range doc.Materials {
		mat := Material{
			Name:      m.Name,
			BaseColor: [4]float64{1, 1, 1, 1},
			Metallic:  1,
			Roughness: 1,
		}
		if pbr := m.PBRMetallicRoughness; pbr != nil {
			mat.BaseColor = factor4(pbr.BaseColorFactor)
			mat.Metallic = factor(pbr.MetallicFactor, 1)
			mat.Roughness = factor(pbr.RoughnessFactor, 1)
			if tex := pbr.BaseColorTexture; tex != nil {
				mat.BaseMap = textureImage(doc, tex.Index, images)
				mat.HasTexture = mat.BaseMap != nil
			}
		}
		mats[i] = mat
	}
	return mats
}

// textureImage returns the decoded source image of texture idx, nil if
// there is none.
func textureImage(doc *gltf.Document, idx int, images map[int]image.Image) image.Image {
	if idx < 0 || idx >= len(doc.Textures) {
		return nil
	}
	src := doc.Textures[idx].Source
	if src == nil {
		return nil
	}
	return images[*src]
}

// decodeImages decodes every image in the document, keyed by image index.
// Unreadable or undecodable images are skipped.
func decodeImages(doc *gltf.Document, dir string) map[int]image.Image {
	images := make(map[int]image.Image)
	for i, data := range imageData(doc, dir) {
		if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
			images[i] = img
		}
	}
	return images
}

// imageData returns the encoded bytes of every image in the document,
// keyed by image index. Unreadable images are skipped.
func imageData(doc *gltf.Document, dir string) map[int][]byte {
	images := make(map[int][]byte)
	for i, img := range doc.Images {
		switch {
		case img.BufferView != nil:
			if *img.BufferView >= len(doc.BufferViews) {
				continue
			}
			bv := doc.BufferViews[*img.BufferView]
			if data := doc.Buffers[bv.Buffer].Data; data != nil && bv.ByteOffset+bv.ByteLength <= len(data) {
				images[i] = data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
			}
		case img.IsEmbeddedResource():
			if data, err := img.MarshalData(); err == nil {
				images[i] = data
			}
		case img.URI != "":
			if data, err := os.ReadFile(filepath.Join(dir, img.URI)); err == nil {
				images[i] = data
			}
		}
	}
	return images
}
