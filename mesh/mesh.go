// Package mesh holds the triangle meshes produced by extraction and the
// helpers that post-process and export them.
package mesh

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl32"
)

var ErrInvalidMesh = errors.New("invalid mesh")

// Mesh is an indexed triangle list. Every consecutive triple in Triangles
// is one triangle; indices refer to Vertices.
type Mesh struct {
	Vertices  []mgl32.Vec3
	Triangles []uint32
}

func (m *Mesh) VertexCount() int   { return len(m.Vertices) }
func (m *Mesh) TriangleCount() int { return len(m.Triangles) / 3 }
func (m *Mesh) IsEmpty() bool      { return len(m.Triangles) == 0 }

// Validate checks that the index list forms whole triangles and that every
// index refers to an existing vertex.
func (m *Mesh) Validate() error {
	if len(m.Triangles)%3 != 0 {
		return fmt.Errorf("%w: %d indices is not a multiple of 3", ErrInvalidMesh, len(m.Triangles))
	}
	n := uint32(len(m.Vertices))
	for i, idx := range m.Triangles {
		if idx >= n {
			return fmt.Errorf("%w: index %d at %d out of range (%d vertices)", ErrInvalidMesh, idx, i, n)
		}
	}
	return nil
}

// FaceNormal returns the unnormalized normal (B-A)x(C-A) of triangle t.
func (m *Mesh) FaceNormal(t int) mgl32.Vec3 {
	a := m.Vertices[m.Triangles[3*t]]
	b := m.Vertices[m.Triangles[3*t+1]]
	c := m.Vertices[m.Triangles[3*t+2]]
	return b.Sub(a).Cross(c.Sub(a))
}

// Normals returns smooth per-vertex normals. Face normals are accumulated
// unnormalized, so larger triangles weigh more.
func (m *Mesh) Normals() []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(m.Vertices))
	for t := 0; t < m.TriangleCount(); t++ {
		n := m.FaceNormal(t)
		for k := 0; k < 3; k++ {
			i := m.Triangles[3*t+k]
			out[i] = out[i].Add(n)
		}
	}
	for i, n := range out {
		if l := n.Len(); l > 0 {
			out[i] = n.Mul(1 / l)
		}
	}
	return out
}

// Translated returns a copy of m with every vertex offset by origin.
func (m *Mesh) Translated(origin [3]int) *Mesh {
	off := mgl32.Vec3{float32(origin[0]), float32(origin[1]), float32(origin[2])}
	out := &Mesh{
		Vertices:  make([]mgl32.Vec3, len(m.Vertices)),
		Triangles: append([]uint32(nil), m.Triangles...),
	}
	for i, v := range m.Vertices {
		out.Vertices[i] = v.Add(off)
	}
	return out
}

// Bounds returns the axis-aligned box around all vertices. An empty mesh
// yields two zero vectors.
func (m *Mesh) Bounds() (lo, hi mgl32.Vec3) {
	if len(m.Vertices) == 0 {
		return
	}
	lo, hi = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], v[k])
			hi[k] = max(hi[k], v[k])
		}
	}
	return
}

// Digest hashes the vertex and index data. Two meshes with the same digest
// are byte-identical for all practical purposes.
func (m *Mesh) Digest() uint64 {
	d := xxhash.New()
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(len(m.Vertices)))
	_, _ = d.Write(b[:])
	for _, v := range m.Vertices {
		for k := 0; k < 3; k++ {
			binary.LittleEndian.PutUint32(b[:], math.Float32bits(v[k]))
			_, _ = d.Write(b[:])
		}
	}
	for _, idx := range m.Triangles {
		binary.LittleEndian.PutUint32(b[:], idx)
		_, _ = d.Write(b[:])
	}
	return d.Sum64()
}
