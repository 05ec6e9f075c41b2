// Package world queues chunk positions and builds them one at a time.
package world

import (
	"errors"
	"fmt"
	"log"

	"github.com/voxelsplace/isonets/chunk"
	"github.com/voxelsplace/isonets/density"
	"github.com/voxelsplace/isonets/mesh"
	"github.com/voxelsplace/isonets/surfacenets"
)

var ErrInvalidConfig = errors.New("invalid scheduler config")

// SchedulerConfig describes the chunk lattice and how each chunk is sampled.
type SchedulerConfig struct {
	Size    [3]int
	Spacing int
	Order   Order
	Chunk   chunk.Config
}

// DefaultSchedulerConfig is a 6x3x6 lattice of 32 cell chunks, 30 units apart.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Size:    [3]int{6, 3, 6},
		Spacing: 30,
		Order:   OrderNested,
		Chunk:   chunk.DefaultConfig(),
	}
}

func (c SchedulerConfig) Validate() error {
	for i, n := range c.Size {
		if n < 0 {
			return fmt.Errorf("%w: size[%d] is negative", ErrInvalidConfig, i)
		}
	}
	if c.Spacing <= 0 {
		return fmt.Errorf("%w: spacing must be positive", ErrInvalidConfig)
	}
	if _, err := ParseOrder(string(c.Order)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return c.Chunk.Validate()
}

// Result is a retired chunk. Mesh is in chunk-local coordinates; add Origin
// to place it in the world.
type Result struct {
	Position chunk.Position
	Origin   chunk.Origin
	Mesh     *mesh.Mesh
	Stats    chunk.Stats
}

type SchedulerOption func(*Scheduler)

func WithSchedulerLogger(l *log.Logger) SchedulerOption {
	return func(s *Scheduler) { s.log = l }
}

// Scheduler keeps at most one chunk generator alive. Every generator
// borrows the scheduler's Mesher, so the index buffer is allocated once for
// the whole run.
type Scheduler struct {
	cfg    SchedulerConfig
	field  density.Sampler
	log    *log.Logger
	mesher *surfacenets.Mesher

	pending []chunk.Position
	active  *chunk.Generator
	done    []Result
	retired int
}

// NewScheduler queues every position of the configured lattice.
func NewScheduler(cfg SchedulerConfig, field density.Sampler, opts ...SchedulerOption) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if field == nil {
		return nil, fmt.Errorf("%w: density sampler is nil", ErrInvalidConfig)
	}
	if cfg.Order == "" {
		cfg.Order = OrderNested
	}
	s := &Scheduler{
		cfg:    cfg,
		field:  field,
		log:    log.Default(),
		mesher: surfacenets.NewMesher(),
	}
	for _, o := range opts {
		o(s)
	}
	s.pending = Positions(cfg.Size, cfg.Order)
	return s, nil
}

// Enqueue appends positions behind those already pending.
func (s *Scheduler) Enqueue(ps ...chunk.Position) {
	s.pending = append(s.pending, ps...)
}

func (s *Scheduler) Pending() int             { return len(s.pending) }
func (s *Scheduler) Retired() int             { return s.retired }
func (s *Scheduler) Active() *chunk.Generator { return s.active }

// IsDone reports whether the queue is empty and no chunk is in flight.
func (s *Scheduler) IsDone() bool { return s.active == nil && len(s.pending) == 0 }

// Advance retires the active generator if it has completed, then starts the
// next pending position when nothing is in flight.
func (s *Scheduler) Advance() error {
	if s.active != nil {
		if !s.active.IsComplete() {
			return nil
		}
		s.retire()
	}
	if len(s.pending) == 0 {
		return nil
	}
	pos := s.pending[0]
	s.pending = s.pending[1:]
	g, err := chunk.NewGenerator(pos, pos.Origin(s.cfg.Spacing), s.cfg.Chunk, s.field,
		chunk.WithMesher(s.mesher), chunk.WithLogger(s.log))
	if err != nil {
		return fmt.Errorf("start chunk %v: %w", pos, err)
	}
	s.active = g
	return nil
}

// Tick runs one step of the active generator and then advances the queue.
func (s *Scheduler) Tick() error {
	if s.active != nil {
		s.active.Tick()
	}
	return s.Advance()
}

// Drain hands over the chunks retired since the last call. Each result is
// returned exactly once.
func (s *Scheduler) Drain() []Result {
	out := s.done
	s.done = nil
	return out
}

func (s *Scheduler) retire() {
	g := s.active
	s.active = nil
	m, _ := g.Mesh()
	s.done = append(s.done, Result{
		Position: g.Position(),
		Origin:   g.Origin(),
		Mesh:     m,
		Stats:    g.Stats(),
	})
	s.retired++
}
