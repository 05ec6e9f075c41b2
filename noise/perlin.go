package noise

import (
	"github.com/aquilax/go-perlin"
)

// Octave parameters for seeded terrain: each octave halves in weight
// (alpha) and doubles in frequency (beta).
const (
	perlinAlpha   = 2
	perlinBeta    = 2
	perlinOctaves = 3
)

// Perlin is fractal Perlin noise over a lattice shuffled from a seed. The
// same seed always yields the same lattice.
type Perlin struct {
	noise *perlin.Perlin
	seed  int64
}

// NewPerlin returns seeded Perlin noise.
func NewPerlin(seed int64) *Perlin {
	return &Perlin{
		noise: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, seed),
		seed:  seed,
	}
}

func (p *Perlin) Seed() int64 { return p.seed }

// Noise3D returns the octave sum clamped to [-1, 1].
func (p *Perlin) Noise3D(x, y, z float64) float64 {
	return clamp(p.noise.Noise3D(x, y, z))
}
