package chunk

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDims = errors.New("chunk dimensions must be at least 2")
	ErrGridLength  = errors.New("density grid length does not match dimensions")
	ErrBudget      = errors.New("samples per tick must be positive")
)

// Dims is the sampled grid size in cells along x (W), y (H) and z (P).
type Dims struct {
	W, H, P int
}

func (d Dims) Validate() error {
	if d.W < 2 || d.H < 2 || d.P < 2 {
		return fmt.Errorf("%w: got %dx%dx%d", ErrInvalidDims, d.W, d.H, d.P)
	}
	return nil
}

// Len is the number of samples in a grid of these dimensions.
func (d Dims) Len() int { return d.W * d.H * d.P }

func (d Dims) Array() [3]int { return [3]int{d.W, d.H, d.P} }

// Grid is a flat density grid indexed z*W*H + y*W + x.
type Grid struct {
	dims Dims
	data []float32
}

func NewGrid(d Dims) (*Grid, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &Grid{dims: d, data: make([]float32, d.Len())}, nil
}

// FromSlice wraps data without copying.
func FromSlice(d Dims, data []float32) (*Grid, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if len(data) != d.Len() {
		return nil, fmt.Errorf("%w: %d values for %dx%dx%d", ErrGridLength, len(data), d.W, d.H, d.P)
	}
	return &Grid{dims: d, data: data}, nil
}

func (g *Grid) Dims() Dims      { return g.dims }
func (g *Grid) Data() []float32 { return g.data }

func (g *Grid) Index(x, y, z int) int { return z*g.dims.W*g.dims.H + y*g.dims.W + x }

func (g *Grid) At(x, y, z int) float32 { return g.data[g.Index(x, y, z)] }

func (g *Grid) Set(x, y, z int, v float32) { g.data[g.Index(x, y, z)] = v }

// Cursor is the resumable sampling position. It advances x fastest, then y,
// then z, and is exhausted once Z reaches the grid depth. Remaining is the
// sample budget left in the current tick.
type Cursor struct {
	X         int `json:"x" yaml:"x"`
	Y         int `json:"y" yaml:"y"`
	Z         int `json:"z" yaml:"z"`
	Remaining int `json:"remaining" yaml:"remaining"`
}

// Index returns the linear grid index the cursor points at.
func (c Cursor) Index(d Dims) int { return c.Z*d.W*d.H + c.Y*d.W + c.X }

// Done reports whether every cell has been visited.
func (c Cursor) Done(d Dims) bool { return c.Z >= d.P }

// Advance moves to the next cell in index order.
func (c *Cursor) Advance(d Dims) {
	c.X++
	if c.X >= d.W {
		c.X = 0
		c.Y++
		if c.Y >= d.H {
			c.Y = 0
			c.Z++
		}
	}
}
