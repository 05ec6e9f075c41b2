package world

import (
	"fmt"
	"sort"

	"github.com/voxelsplace/isonets/chunk"
)

// Order selects how lattice positions are queued.
type Order string

const (
	// OrderNested walks x outermost, then z, then y.
	OrderNested Order = "nested"
	// OrderMorton walks positions along a Z-order curve so consecutive
	// chunks stay spatially close.
	OrderMorton Order = "morton"
)

func ParseOrder(s string) (Order, error) {
	switch Order(s) {
	case OrderNested, "":
		return OrderNested, nil
	case OrderMorton:
		return OrderMorton, nil
	default:
		return "", fmt.Errorf("unknown chunk order %q", s)
	}
}

// Positions enumerates every lattice position in [0,size) in the given order.
func Positions(size [3]int, order Order) []chunk.Position {
	out := make([]chunk.Position, 0, max(size[0]*size[1]*size[2], 0))
	for x := 0; x < size[0]; x++ {
		for z := 0; z < size[2]; z++ {
			for y := 0; y < size[1]; y++ {
				out = append(out, chunk.Position{X: x, Y: y, Z: z})
			}
		}
	}
	if order == OrderMorton {
		SortMorton(out)
	}
	return out
}

// SortMorton orders positions by their Morton code relative to the
// smallest coordinate on each axis. Ties keep their input order.
func SortMorton(ps []chunk.Position) {
	if len(ps) == 0 {
		return
	}
	lo := ps[0]
	for _, p := range ps[1:] {
		lo.X = min(lo.X, p.X)
		lo.Y = min(lo.Y, p.Y)
		lo.Z = min(lo.Z, p.Z)
	}
	keys := make(map[chunk.Position]uint64, len(ps))
	for _, p := range ps {
		keys[p] = Morton3D64(uint32(p.X-lo.X), uint32(p.Y-lo.Y), uint32(p.Z-lo.Z))
	}
	sort.SliceStable(ps, func(i, j int) bool { return keys[ps[i]] < keys[ps[j]] })
}

// Morton3D64 interleaves the low 21 bits of x, y and z.
func Morton3D64(x, y, z uint32) uint64 {
	return part1By2(uint64(x)) |
		(part1By2(uint64(y)) << 1) |
		(part1By2(uint64(z)) << 2)
}

func part1By2(x uint64) uint64 {
	x &= 0x1fffff
	x = (x | (x << 32)) & 0x1f00000000ffff
	x = (x | (x << 16)) & 0x1f0000ff0000ff
	x = (x | (x << 8)) & 0x100f00f00f00f00f
	x = (x | (x << 4)) & 0x10c30c30c30c30c3
	x = (x | (x << 2)) & 0x1249249249249249
	return x
}
