package chunk

import (
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/voxelsplace/isonets/density"
	"github.com/voxelsplace/isonets/surfacenets"
)

var quiet = log.New(io.Discard, "", 0)

func TestPositionEquality(t *testing.T) {
	a := Position{1, 2, 3}
	b := Position{1, 2, 3}
	c := Position{3, 2, 1}
	if a != b || a == c {
		t.Fatalf("field-wise equality broken")
	}
	if a.Hash() != b.Hash() {
		t.Fatalf("equal positions hash differently")
	}
	if a.Hash() == c.Hash() {
		t.Fatalf("permuted position shares a hash")
	}
	set := map[Position]int{a: 1}
	set[b]++
	if len(set) != 1 || set[a] != 2 {
		t.Fatalf("Position not usable as map key")
	}
	if a.String() != "(1,2,3)" {
		t.Fatalf("String() = %q", a.String())
	}
}

func TestPositionOrigin(t *testing.T) {
	tests := []struct {
		pos     Position
		spacing int
		want    Origin
	}{
		{Position{0, 0, 0}, 30, Origin{-15, -15, -15}},
		{Position{1, 2, 5}, 30, Origin{15, 45, 135}},
		{Position{-1, 0, 1}, 31, Origin{-46, -15, 16}},
	}
	for _, tt := range tests {
		if got := tt.pos.Origin(tt.spacing); got != tt.want {
			t.Fatalf("%v.Origin(%d) = %v, want %v", tt.pos, tt.spacing, got, tt.want)
		}
	}
	o := Position{X: 1, Y: 2, Z: 5}.Origin(30)
	if o.Array() != [3]int{15, 45, 135} || o.String() != "[15 45 135]" {
		t.Fatalf("origin renders as %v / %q", o.Array(), o.String())
	}
}

func TestCursorAdvance(t *testing.T) {
	d := Dims{W: 3, H: 2, P: 2}
	var c Cursor
	for i := 0; i < d.Len(); i++ {
		if c.Done(d) {
			t.Fatalf("cursor done early at %d", i)
		}
		if c.Index(d) != i {
			t.Fatalf("cursor index = %d, want %d", c.Index(d), i)
		}
		c.Advance(d)
	}
	if !c.Done(d) {
		t.Fatalf("cursor not done after %d cells: %+v", d.Len(), c)
	}
}

func TestGrid(t *testing.T) {
	if _, err := NewGrid(Dims{W: 1, H: 4, P: 4}); !errors.Is(err, ErrInvalidDims) {
		t.Fatalf("expected ErrInvalidDims, got %v", err)
	}
	if _, err := FromSlice(Dims{W: 2, H: 2, P: 2}, make([]float32, 9)); !errors.Is(err, ErrGridLength) {
		t.Fatalf("expected ErrGridLength, got %v", err)
	}
	g, err := NewGrid(Dims{W: 4, H: 3, P: 2})
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	g.Set(3, 2, 1, 7)
	if g.Data()[1*12+2*4+3] != 7 || g.At(3, 2, 1) != 7 {
		t.Fatalf("grid layout is not z*w*h + y*w + x")
	}
}

func TestGeneratorConfigErrors(t *testing.T) {
	f := density.HalfSpace(5)
	if _, err := NewGenerator(Position{}, Origin{}, Config{Dims: Dims{W: 8, H: 1, P: 8}, Budget: 10}, f); !errors.Is(err, ErrInvalidDims) {
		t.Fatalf("expected ErrInvalidDims, got %v", err)
	}
	if _, err := NewGenerator(Position{}, Origin{}, Config{Dims: Dims{W: 8, H: 8, P: 8}}, f); !errors.Is(err, ErrBudget) {
		t.Fatalf("expected ErrBudget, got %v", err)
	}
	if _, err := NewGenerator(Position{}, Origin{}, DefaultConfig(), nil); err == nil {
		t.Fatalf("expected error for nil sampler")
	}
}

func TestGeneratorAmortization(t *testing.T) {
	tests := []struct {
		dims   Dims
		budget int
		want   int
	}{
		{Dims{W: 8, H: 8, P: 8}, 100, 6},
		{Dims{W: 8, H: 8, P: 8}, 64, 8},
		{Dims{W: 8, H: 8, P: 8}, 511, 2},
		{Dims{W: 32, H: 32, P: 32}, 4048, 9},
	}
	for _, tt := range tests {
		var visited []int
		d := tt.dims
		field := density.Func(func(x, y, z int) float32 {
			visited = append(visited, (z-1)*d.W*d.H+(y-2)*d.W+(x-3))
			return float32(5 - y)
		})
		g, err := NewGenerator(Position{}, Origin{X: 3, Y: 2, Z: 1}, Config{Dims: d, Budget: tt.budget}, field, WithLogger(quiet))
		if err != nil {
			t.Fatalf("NewGenerator: %v", err)
		}
		if g.State() != Idle {
			t.Fatalf("new generator state = %v", g.State())
		}
		if _, err := g.Mesh(); !errors.Is(err, ErrNotComplete) {
			t.Fatalf("expected ErrNotComplete before ticking, got %v", err)
		}
		if g.Tick() != Sampling {
			t.Fatalf("first tick did not enter sampling")
		}

		for i := 0; !g.IsComplete(); i++ {
			if i > tt.want+1 {
				t.Fatalf("generator did not complete after %d ticks", i)
			}
			before := len(visited)
			g.Tick()
			if g.State() == Sampling && len(visited)-before > tt.budget {
				t.Fatalf("tick sampled %d cells, budget %d", len(visited)-before, tt.budget)
			}
		}

		st := g.Stats()
		if st.SamplingTicks != tt.want {
			t.Fatalf("dims %v budget %d: %d sampling ticks, want %d", d, tt.budget, st.SamplingTicks, tt.want)
		}
		if st.Ticks != tt.want+2 || st.Samples != d.Len() {
			t.Fatalf("stats = %+v", st)
		}
		if len(visited) != d.Len() {
			t.Fatalf("visited %d cells, want %d", len(visited), d.Len())
		}
		for i, v := range visited {
			if v != i {
				t.Fatalf("visit %d hit cell %d", i, v)
			}
		}
	}
}

func TestGeneratorMeshMatchesExtractor(t *testing.T) {
	dims := Dims{W: 8, H: 8, P: 8}
	field := density.HalfSpace(5)
	ms := surfacenets.NewMesher()
	g, err := NewGenerator(Position{X: 1}, Origin{}, Config{Dims: dims, Budget: 100}, field,
		WithLogger(quiet), WithMesher(ms))
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	for g.Tick() != Complete {
	}
	got, err := g.Mesh()
	if err != nil {
		t.Fatalf("Mesh: %v", err)
	}

	grid, _ := NewGrid(dims)
	for z := 0; z < dims.P; z++ {
		for y := 0; y < dims.H; y++ {
			for x := 0; x < dims.W; x++ {
				grid.Set(x, y, z, field.Density(x, y, z))
			}
		}
	}
	want, err := surfacenets.Extract(grid.Data(), dims.Array())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.Digest() != want.Digest() || got.VertexCount() != 49 {
		t.Fatalf("generator mesh differs from direct extraction")
	}
	if ms.BufferLen() == 0 {
		t.Fatalf("lent mesher was not used")
	}

	ticks := g.Stats().Ticks
	g.Tick()
	g.Tick()
	if g.Stats().Ticks != ticks || g.State() != Complete {
		t.Fatalf("ticking a complete generator changed it")
	}
	again, _ := g.Mesh()
	if again != got {
		t.Fatalf("Mesh returned a different value after completion")
	}
}

func TestGeneratorClock(t *testing.T) {
	now := time.Unix(100, 0)
	clock := func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	g, err := NewGenerator(Position{}, Origin{}, Config{Dims: Dims{W: 2, H: 2, P: 2}, Budget: 8},
		density.HalfSpace(1), WithLogger(quiet), WithClock(clock))
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	for g.Tick() != Complete {
	}
	if g.Stats().Elapsed != time.Second {
		t.Fatalf("elapsed = %v, want 1s", g.Stats().Elapsed)
	}
}

func TestStateString(t *testing.T) {
	if Idle.String() != "idle" || Sampling.String() != "sampling" || Complete.String() != "complete" {
		t.Fatalf("unexpected state names")
	}
}
