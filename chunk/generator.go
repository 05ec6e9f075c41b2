// Package chunk samples one chunk's density grid a slice at a time and turns
// it into a mesh once the grid is full.
package chunk

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/voxelsplace/isonets/density"
	"github.com/voxelsplace/isonets/mesh"
	"github.com/voxelsplace/isonets/surfacenets"
)

var ErrNotComplete = errors.New("chunk is not complete")

// State is a generator's lifecycle stage. It only moves forward.
type State uint8

const (
	Idle State = iota
	Sampling
	Complete
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Sampling:
		return "sampling"
	case Complete:
		return "complete"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Config holds the grid size and the number of samples taken per tick.
type Config struct {
	Dims   Dims
	Budget int
}

// DefaultConfig is a 32 cell cube sampled 4048 cells per tick.
func DefaultConfig() Config {
	return Config{Dims: Dims{W: 32, H: 32, P: 32}, Budget: 4048}
}

func (c Config) Validate() error {
	if err := c.Dims.Validate(); err != nil {
		return err
	}
	if c.Budget <= 0 {
		return fmt.Errorf("%w: got %d", ErrBudget, c.Budget)
	}
	return nil
}

// Stats counts the work a generator has done.
type Stats struct {
	Ticks         int
	SamplingTicks int
	Samples       int
	Elapsed       time.Duration
}

type Option func(*Generator)

// WithMesher lends the generator a Mesher so its index buffer is reused.
// The generator drops the reference once it completes.
func WithMesher(m *surfacenets.Mesher) Option { return func(g *Generator) { g.mesher = m } }

func WithLogger(l *log.Logger) Option { return func(g *Generator) { g.log = l } }

func WithClock(now func() time.Time) Option { return func(g *Generator) { g.now = now } }

// Generator drives one chunk from Idle to Complete. It is not safe for
// concurrent use.
type Generator struct {
	pos    Position
	origin Origin
	cfg    Config
	field  density.Sampler
	mesher *surfacenets.Mesher
	log    *log.Logger
	now    func() time.Time

	state   State
	grid    *Grid
	cursor  Cursor
	mesh    *mesh.Mesh
	stats   Stats
	started time.Time
}

// NewGenerator prepares a generator for the chunk at pos whose grid corner
// sits at the world coordinate origin.
func NewGenerator(pos Position, origin Origin, cfg Config, field density.Sampler, opts ...Option) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if field == nil {
		return nil, errors.New("density sampler is nil")
	}
	g := &Generator{
		pos:    pos,
		origin: origin,
		cfg:    cfg,
		field:  field,
		log:    log.Default(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	if g.mesher == nil {
		g.mesher = surfacenets.NewMesher()
	}
	return g, nil
}

func (g *Generator) Position() Position { return g.pos }
func (g *Generator) Origin() Origin     { return g.origin }
func (g *Generator) State() State       { return g.state }
func (g *Generator) IsComplete() bool   { return g.state == Complete }
func (g *Generator) Cursor() Cursor     { return g.cursor }
func (g *Generator) Stats() Stats       { return g.stats }

// Mesh returns the extracted mesh in chunk-local coordinates.
func (g *Generator) Mesh() (*mesh.Mesh, error) {
	if g.state != Complete {
		return nil, fmt.Errorf("%w: %v is %v", ErrNotComplete, g.pos, g.state)
	}
	return g.mesh, nil
}

// Tick does one unit of work: allocate the grid, sample up to Budget cells,
// or run extraction once every cell is sampled. It returns the state after
// the tick and is a no-op once Complete.
func (g *Generator) Tick() State {
	switch g.state {
	case Idle:
		g.stats.Ticks++
		g.grid = &Grid{dims: g.cfg.Dims, data: make([]float32, g.cfg.Dims.Len())}
		g.cursor = Cursor{}
		g.started = g.now()
		g.state = Sampling
		g.log.Printf("generating chunk %v at %v", g.pos, g.origin)
	case Sampling:
		g.stats.Ticks++
		if g.cursor.Done(g.cfg.Dims) {
			g.extract()
			break
		}
		g.sample()
	}
	return g.state
}

func (g *Generator) sample() {
	d := g.cfg.Dims
	c := &g.cursor
	c.Remaining = g.cfg.Budget
	for c.Remaining > 0 && !c.Done(d) {
		g.grid.data[c.Index(d)] = g.field.Density(g.origin.X+c.X, g.origin.Y+c.Y, g.origin.Z+c.Z)
		g.stats.Samples++
		c.Remaining--
		c.Advance(d)
	}
	g.stats.SamplingTicks++
}

func (g *Generator) extract() {
	m, err := g.mesher.Extract(g.grid.data, g.cfg.Dims.Array())
	if err != nil {
		// dims and grid length were checked at construction
		panic(fmt.Errorf("chunk %v: %w", g.pos, err))
	}
	g.mesh = m
	g.grid = nil
	g.mesher = nil
	g.state = Complete
	g.stats.Elapsed = g.now().Sub(g.started)
	g.log.Printf("chunk %v complete in %s over %d ticks (%d vertices, %d triangles)",
		g.pos, g.stats.Elapsed, g.stats.Ticks, m.VertexCount(), m.TriangleCount())
}
