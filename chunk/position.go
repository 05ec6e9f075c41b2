package chunk

import (
	"encoding/binary"
	"fmt"

	xxhash "github.com/cespare/xxhash/v2"
)

// Position is a chunk's lattice coordinate. Two positions are equal when all
// three fields are equal, so Position works directly as a map key.
type Position struct {
	X, Y, Z int
}

func (p Position) String() string { return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z) }

// Hash returns a 64-bit bucket key. Distinct positions may share a hash;
// callers must still compare positions with ==.
func (p Position) Hash() uint64 {
	var b [24]byte
	binary.LittleEndian.PutUint64(b[0:], uint64(int64(p.X)))
	binary.LittleEndian.PutUint64(b[8:], uint64(int64(p.Y)))
	binary.LittleEndian.PutUint64(b[16:], uint64(int64(p.Z)))
	return xxhash.Sum64(b[:])
}

// Origin returns the world-space corner of the chunk at p for the given
// lattice spacing: p*spacing - spacing/2 on every axis. The half offset uses
// integer division, so an odd spacing rounds it down.
func (p Position) Origin(spacing int) Origin {
	half := spacing / 2
	return Origin{
		X: p.X*spacing - half,
		Y: p.Y*spacing - half,
		Z: p.Z*spacing - half,
	}
}

// Array returns the coordinates as [x, y, z].
func (p Position) Array() [3]int { return [3]int{p.X, p.Y, p.Z} }

// Origin is a world-space sample coordinate: the corner at which a chunk's
// grid starts. Add it to chunk-local mesh vertices to place them.
type Origin struct {
	X, Y, Z int
}

func (o Origin) String() string { return fmt.Sprintf("[%d %d %d]", o.X, o.Y, o.Z) }

func (o Origin) Array() [3]int { return [3]int{o.X, o.Y, o.Z} }
