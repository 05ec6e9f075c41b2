// Package surfacenets extracts a dual quad mesh, split into triangles, from a
// sampled scalar grid. Each cell whose corners change sign contributes one
// vertex at the average of its edge crossings, and each crossed grid edge
// becomes a quad joining the four cells around it.
package surfacenets

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxelsplace/isonets/mesh"
)

var (
	ErrInvalidDims = errors.New("grid dimensions must be at least 2 on every axis")
	ErrGridLength  = errors.New("grid length does not match dimensions")
)

// degenerateEps is the smallest corner difference treated as a real crossing.
const degenerateEps = 1e-6

// Mesher extracts meshes and owns the index buffer that links vertices of
// neighbouring cells. The buffer holds two z slices and is reused across
// calls, growing when a larger grid arrives. A Mesher is not safe for
// concurrent use; give each goroutine its own.
type Mesher struct {
	buf []uint32
}

// NewMesher returns a Mesher with an empty buffer.
func NewMesher() *Mesher { return &Mesher{} }

// BufferLen reports the current index buffer capacity in entries.
func (ms *Mesher) BufferLen() int { return len(ms.buf) }

// Extract runs surface nets on a fresh Mesher.
func Extract(grid []float32, dims [3]int) (*mesh.Mesh, error) {
	return NewMesher().Extract(grid, dims)
}

// Extract builds the mesh for grid, laid out as z*w*h + y*w + x with
// dims = [w, h, p]. Vertex positions are in grid coordinates.
func (ms *Mesher) Extract(grid []float32, dims [3]int) (*mesh.Mesh, error) {
	w, h, p := dims[0], dims[1], dims[2]
	if w < 2 || h < 2 || p < 2 {
		return nil, fmt.Errorf("%w: got %dx%dx%d", ErrInvalidDims, w, h, p)
	}
	if len(grid) != w*h*p {
		return nil, fmt.Errorf("%w: %d values for %dx%dx%d", ErrGridLength, len(grid), w, h, p)
	}

	// buffer strides; the z stride flips sign every slice so the two
	// halves of buf alternate as current and previous slice
	R := [3]int{1, w + 1, (w + 1) * (h + 1)}
	if need := 2 * R[2]; len(ms.buf) < need {
		ms.buf = make([]uint32, need)
	}
	buf := ms.buf

	out := &mesh.Mesh{}
	var (
		loc     [3]int
		corners [8]float32
	)
	bufNo := 1
	n := 0

	for loc[2] = 0; loc[2] < p-1; loc[2]++ {
		m := 1 + (w+1)*(1+bufNo*(h+1))
		for loc[1] = 0; loc[1] < h-1; loc[1]++ {
			for loc[0] = 0; loc[0] < w-1; loc[0]++ {
				mask := 0
				g := 0
				idx := n
				for k := 0; k < 2; k++ {
					for j := 0; j < 2; j++ {
						for i := 0; i < 2; i++ {
							v := grid[idx]
							corners[g] = v
							if v < 0 {
								mask |= 1 << g
							}
							g++
							idx++
						}
						idx += w - 2
					}
					idx += w * (h - 2)
				}

				if mask == 0 || mask == 0xFF {
					n++
					m++
					continue
				}

				edgeMask := edgeTable[mask]
				var acc mgl32.Vec3
				crossings := 0
				for i := 0; i < 12; i++ {
					if edgeMask&(1<<i) == 0 {
						continue
					}
					crossings++

					e0, e1 := cubeEdges[i<<1], cubeEdges[i<<1+1]
					g0, g1 := corners[e0], corners[e1]
					t := g0 - g1
					if abs32(t) <= degenerateEps {
						continue
					}
					t = g0 / t

					for j, bit := 0, 1; j < 3; j, bit = j+1, bit<<1 {
						a, b := e0&bit, e1&bit
						switch {
						case a != b && a != 0:
							acc[j] += 1 - t
						case a != b:
							acc[j] += t
						case a != 0:
							acc[j] += 1
						}
					}
				}

				s := 1 / float32(crossings)
				vert := mgl32.Vec3{
					float32(loc[0]) + s*acc[0],
					float32(loc[1]) + s*acc[1],
					float32(loc[2]) + s*acc[2],
				}
				buf[m] = uint32(len(out.Vertices))
				out.Vertices = append(out.Vertices, vert)

				for i := 0; i < 3; i++ {
					if edgeMask&(1<<i) == 0 {
						continue
					}
					iu, iv := (i+1)%3, (i+2)%3
					// the neighbours at -u and -v do not exist on the low faces
					if loc[iu] == 0 || loc[iv] == 0 {
						continue
					}
					du, dv := R[iu], R[iv]
					v0 := buf[m]
					vu := buf[m-du]
					vv := buf[m-dv]
					vuv := buf[m-du-dv]
					if mask&1 != 0 {
						out.Triangles = append(out.Triangles, v0, vv, vu, vv, vuv, vu)
					} else {
						out.Triangles = append(out.Triangles, v0, vu, vv, vu, vuv, vv)
					}
				}
				n++
				m++
			}
			n++
			m += 2
		}
		n += w
		bufNo ^= 1
		R[2] = -R[2]
	}
	return out, nil
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
