// Package density evaluates the scalar terrain field sampled by chunk
// generators. The isosurface sits at zero. The stock formula is positive
// beneath the ground and negative in open air, so extracted faces point up
// out of the terrain.
package density

import (
	"errors"
	"fmt"

	"github.com/voxelsplace/isonets/noise"
)

// Sampler returns the density at an integer world coordinate.
type Sampler interface {
	Density(x, y, z int) float32
}

// Func adapts a plain function to Sampler.
type Func func(x, y, z int) float32

// Density calls f(x, y, z).
func (f Func) Density(x, y, z int) float32 { return f(x, y, z) }

// PlanarTerm samples noise on a fixed y plane, so it varies only with x and z.
// The scaled value is shifted by Offset and clamped to [Min, Max]. A term with
// Min == Max == 0 is clamped to [-Amplitude, Amplitude].
type PlanarTerm struct {
	Plane     float64 `yaml:"plane"`
	Scale     float64 `yaml:"scale"`
	Amplitude float64 `yaml:"amplitude"`
	Offset    float64 `yaml:"offset"`
	Min       float64 `yaml:"min"`
	Max       float64 `yaml:"max"`
}

// Octave is an unclamped volumetric noise term.
type Octave struct {
	Scale     float64 `yaml:"scale"`
	Amplitude float64 `yaml:"amplitude"`
}

// CeilingBias pushes density toward air above Height and toward solid below it.
type CeilingBias struct {
	Height   float64 `yaml:"height"`
	Strength float64 `yaml:"strength"`
}

// FloorAttraction adds solid mass below the floor, ramping in at Rate per unit.
type FloorAttraction struct {
	Rate     float64 `yaml:"rate"`
	Strength float64 `yaml:"strength"`
}

// Params describes the density formula.
type Params struct {
	Floor           float64         `yaml:"floor"`
	Ceiling         CeilingBias     `yaml:"ceiling"`
	FloorAttraction FloorAttraction `yaml:"floor_attraction"`
	Planar          []PlanarTerm    `yaml:"planar"`
	Volume          []Octave        `yaml:"volume"`
}

// DefaultParams returns the stock terrain: a plateau layer, three detail
// octaves, a ridge layer and a bias toward a floor at y=16.
func DefaultParams() Params {
	return Params{
		Floor:           16,
		Ceiling:         CeilingBias{Height: 32, Strength: 2},
		FloorAttraction: FloorAttraction{Rate: 0.4, Strength: 12},
		Planar: []PlanarTerm{
			{Plane: -45, Scale: 0.006, Amplitude: 64, Offset: -8, Min: -16, Max: 48},
			{Plane: -100, Scale: 0.01, Amplitude: 8},
		},
		Volume: []Octave{
			{Scale: 0.4, Amplitude: 0.2},
			{Scale: 0.1, Amplitude: 1},
			{Scale: 0.02, Amplitude: 16},
		},
	}
}

var ErrInvalidParams = errors.New("invalid density params")

// Validate reports the first malformed term.
func (p Params) Validate() error {
	for i, t := range p.Planar {
		if t.Scale <= 0 {
			return fmt.Errorf("%w: planar[%d] scale must be positive", ErrInvalidParams, i)
		}
		if t.Min > t.Max {
			return fmt.Errorf("%w: planar[%d] min %v exceeds max %v", ErrInvalidParams, i, t.Min, t.Max)
		}
	}
	for i, o := range p.Volume {
		if o.Scale <= 0 {
			return fmt.Errorf("%w: volume[%d] scale must be positive", ErrInvalidParams, i)
		}
	}
	if p.FloorAttraction.Rate < 0 {
		return fmt.Errorf("%w: floor attraction rate must not be negative", ErrInvalidParams)
	}
	return nil
}

// Field evaluates Params over a noise source. It holds no mutable state.
type Field struct {
	params Params
	src    noise.Source
}

// NewField validates p and binds it to src. A nil src selects the
// reference simplex lattice.
func NewField(p Params, src noise.Source) (*Field, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		src = noise.NewSimplex()
	}
	return &Field{params: p, src: src}, nil
}

// Params returns the formula the field was built with.
func (f *Field) Params() Params { return f.params }

// Density returns the field value at (x, y, z).
func (f *Field) Density(x, y, z int) float32 {
	fx, fy, fz := float64(x), float64(y), float64(z)
	p := &f.params

	d := p.Floor - fy
	for _, t := range p.Planar {
		v := f.src.Noise3D(fx*t.Scale, t.Plane*t.Scale, fz*t.Scale)*t.Amplitude + t.Offset
		lo, hi := t.Min, t.Max
		if lo == 0 && hi == 0 {
			lo, hi = -t.Amplitude, t.Amplitude
		}
		d += clamp(v, lo, hi)
	}
	if p.Ceiling.Strength != 0 {
		d += clamp(p.Ceiling.Height-fy, -1, 1) * p.Ceiling.Strength
	}
	for _, o := range p.Volume {
		d += f.src.Noise3D(fx*o.Scale, fy*o.Scale, fz*o.Scale) * o.Amplitude
	}
	if p.FloorAttraction.Strength != 0 {
		d += clamp((p.Floor-fy)*p.FloorAttraction.Rate, 0, 1) * p.FloorAttraction.Strength
	}
	return float32(d)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// HalfSpace returns the analytic field floor - y, whose surface is the
// plane y = floor.
func HalfSpace(floor int) Func {
	return func(_, y, _ int) float32 { return float32(floor - y) }
}

// Sphere returns a field that is positive inside a sphere of radius r
// centered at (cx, cy, cz), matching the ground-positive convention.
func Sphere(cx, cy, cz int, r float64) Func {
	return func(x, y, z int) float32 {
		dx, dy, dz := float64(x-cx), float64(y-cy), float64(z-cz)
		return float32(r*r - (dx*dx + dy*dy + dz*dz))
	}
}
