package mesh

import (
	"bytes"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// Part is one mesh placed in a scene. Origin is added to every vertex so the
// exported file needs no node transforms.
type Part struct {
	Name   string
	Mesh   *Mesh
	Origin [3]int
}

// Document builds a glTF document with one node per non-empty part, all
// sharing a single opaque material.
func Document(generator string, parts ...Part) (*gltf.Document, error) {
	doc := gltf.NewDocument()
	doc.Asset.Generator = generator

	pbr := &gltf.PBRMetallicRoughness{
		MetallicFactor:  gltf.Float(0),
		RoughnessFactor: gltf.Float(1),
	}
	doc.Materials = []*gltf.Material{{
		Name:                 "Terrain",
		PBRMetallicRoughness: pbr,
		AlphaMode:            gltf.AlphaOpaque,
	}}

	for _, p := range parts {
		if p.Mesh == nil || p.Mesh.IsEmpty() {
			continue
		}
		if err := p.Mesh.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", p.Name, err)
		}
		m := p.Mesh
		if p.Origin != [3]int{} {
			m = m.Translated(p.Origin)
		}

		positions := make([][3]float32, len(m.Vertices))
		for i, v := range m.Vertices {
			positions[i] = [3]float32(v)
		}
		normals := make([][3]float32, len(m.Vertices))
		for i, n := range m.Normals() {
			normals[i] = [3]float32(n)
		}
		indices := make([]uint32, len(m.Triangles))
		copy(indices, m.Triangles)

		posAccessor := modeler.WritePosition(doc, positions)
		normalAccessor := modeler.WriteNormal(doc, normals)
		indicesAccessor := modeler.WriteIndices(doc, indices)

		prim := &gltf.Primitive{
			Attributes: map[string]int{
				gltf.POSITION: posAccessor,
				gltf.NORMAL:   normalAccessor,
			},
			Indices:  gltf.Index(indicesAccessor),
			Material: gltf.Index(0),
		}
		doc.Meshes = append(doc.Meshes, &gltf.Mesh{Name: p.Name, Primitives: []*gltf.Primitive{prim}})
		doc.Nodes = append(doc.Nodes, &gltf.Node{Name: p.Name, Mesh: gltf.Index(len(doc.Meshes) - 1)})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	}
	return doc, nil
}

// EncodeGLB serializes doc as binary glTF.
func EncodeGLB(doc *gltf.Document) ([]byte, error) {
	var out bytes.Buffer
	enc := gltf.NewEncoder(&out)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// SaveGLB writes doc to path as binary glTF.
func SaveGLB(doc *gltf.Document, path string) error {
	return gltf.SaveBinary(doc, path)
}
