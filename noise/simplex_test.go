package noise

import "testing"

func TestNoise3DRange(t *testing.T) {
	s := NewSimplex()
	for i := 0; i < 5000; i++ {
		x := float64(i%37) * 0.173
		y := float64(i%53) * -0.291
		z := float64(i%71) * 0.057
		v := s.Noise3D(x, y, z)
		if v < -1 || v > 1 {
			t.Fatalf("Noise3D(%v,%v,%v) = %v, out of [-1,1]", x, y, z, v)
		}
	}
}

func TestNoise3DDeterministic(t *testing.T) {
	a := NewSimplex()
	b := NewSimplex()
	for i := 0; i < 200; i++ {
		x, y, z := float64(i)*0.31, float64(i)*0.17-3, float64(-i)*0.07
		if a.Noise3D(x, y, z) != b.Noise3D(x, y, z) {
			t.Fatalf("two reference sources disagree at (%v,%v,%v)", x, y, z)
		}
	}
}

func TestNoiseZeroOnLattice(t *testing.T) {
	s := NewSimplex()
	if v := s.Noise3D(0, 0, 0); v != 0 {
		t.Fatalf("Noise3D at origin = %v, want 0", v)
	}
}

func TestPerlinSeeded(t *testing.T) {
	a := NewPerlin(42)
	b := NewPerlin(42)
	c := NewPerlin(7)
	if a.Seed() != 42 {
		t.Fatalf("Seed() = %d, want 42", a.Seed())
	}
	differs := false
	for i := 0; i < 200; i++ {
		x, y, z := float64(i)*0.37+0.1, float64(i)*0.11+0.05, float64(i)*0.23-0.3
		va := a.Noise3D(x, y, z)
		if va != b.Noise3D(x, y, z) {
			t.Fatalf("same seed produced different noise at %d", i)
		}
		if va != c.Noise3D(x, y, z) {
			differs = true
		}
	}
	if !differs {
		t.Fatalf("different seeds produced identical noise")
	}
}

func TestPerlinRange(t *testing.T) {
	var src Source = NewPerlin(-99)
	nonZero := false
	for i := 0; i < 5000; i++ {
		x := float64(i%37)*0.173 + 0.01
		y := float64(i%53)*-0.291 + 0.02
		z := float64(i%71)*0.057 + 0.03
		v := src.Noise3D(x, y, z)
		if v < -1 || v > 1 {
			t.Fatalf("Noise3D(%v,%v,%v) = %v, out of [-1,1]", x, y, z, v)
		}
		if v != 0 {
			nonZero = true
		}
	}
	if !nonZero {
		t.Fatalf("seeded noise is flat")
	}
}
