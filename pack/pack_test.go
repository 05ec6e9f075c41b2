package pack

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxelsplace/isonets/chunk"
	"github.com/voxelsplace/isonets/mesh"
)

func sampleMesh(shift float32) *mesh.Mesh {
	return &mesh.Mesh{
		Vertices: []mgl32.Vec3{
			{0, shift, 0}, {1, shift, 0}, {1, shift, 1}, {0, shift, 1},
		},
		Triangles: []uint32{0, 2, 1, 0, 3, 2},
	}
}

func samplePack() *Pack {
	p := New(chunk.Dims{W: 32, H: 32, P: 32}, 30)
	p.Add(Entry{Position: chunk.Position{}, Origin: chunk.Origin{X: -15, Y: -15, Z: -15}, Mesh: sampleMesh(2)})
	p.Add(Entry{Position: chunk.Position{Y: 1}, Origin: chunk.Origin{X: -15, Y: 15, Z: -15}, Mesh: &mesh.Mesh{}})
	p.Add(Entry{Position: chunk.Position{X: -3, Z: 7}, Origin: chunk.Origin{X: -105, Y: -15, Z: 195}, Mesh: sampleMesh(4.5)})
	return p
}

func TestRoundTrip(t *testing.T) {
	for _, comp := range []Compression{CompNone, CompZlib, CompZstd} {
		src := samplePack()
		data, err := src.Marshal(comp)
		if err != nil {
			t.Fatalf("%v: Marshal: %v", comp, err)
		}
		got, gotComp, err := Unmarshal(data)
		if err != nil {
			t.Fatalf("%v: Unmarshal: %v", comp, err)
		}
		if gotComp != comp {
			t.Fatalf("compression = %v, want %v", gotComp, comp)
		}
		if got.Dims != src.Dims || got.Spacing != src.Spacing || len(got.Entries) != len(src.Entries) {
			t.Fatalf("%v: header mismatch: %+v", comp, got)
		}
		for i, e := range got.Entries {
			want := src.Entries[i]
			if e.Position != want.Position || e.Origin != want.Origin {
				t.Fatalf("%v: entry %d placed at %v/%v", comp, i, e.Position, e.Origin)
			}
			if e.Mesh.Digest() != want.Mesh.Digest() {
				t.Fatalf("%v: entry %d mesh changed", comp, i)
			}
		}
	}
}

func TestLookup(t *testing.T) {
	p := samplePack()
	e, ok := p.Lookup(chunk.Position{X: -3, Z: 7})
	if !ok || e.Origin.Z != 195 {
		t.Fatalf("Lookup missed an existing entry: %v %v", e, ok)
	}
	if _, ok := p.Lookup(chunk.Position{X: 7, Z: -3}); ok {
		t.Fatalf("Lookup matched a permuted position")
	}
	p.Add(Entry{Position: chunk.Position{X: 9}, Mesh: &mesh.Mesh{}})
	if _, ok := p.Lookup(chunk.Position{X: 9}); !ok {
		t.Fatalf("Lookup missed an entry added after indexing")
	}
}

func TestIndexEncoding(t *testing.T) {
	idx := []uint32{0, 1, 2, 70000, 3, 70001, 5, 5, 1 << 31}
	got, err := decodeIndices(encodeIndices(idx), len(idx))
	if err != nil {
		t.Fatalf("decodeIndices: %v", err)
	}
	for i := range idx {
		if got[i] != idx[i] {
			t.Fatalf("index %d = %d, want %d", i, got[i], idx[i])
		}
	}
	if _, err := decodeIndices(append(encodeIndices(idx), 0), len(idx)); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt for trailing bytes, got %v", err)
	}
}

func TestReadUVarintBounds(t *testing.T) {
	pos := 0
	v, err := readUVarint([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}, &pos)
	if err != nil || v != math.MaxUint32 || pos != 5 {
		t.Fatalf("readUVarint(max) = %d, pos %d, err %v", v, pos, err)
	}
	pos = 0
	if _, err := readUVarint([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x10}, &pos); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt for a value above 32 bits, got %v", err)
	}
	pos = 0
	if _, err := readUVarint([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}, &pos); err == nil {
		t.Fatalf("expected error for a six byte varint")
	}
	if _, err := decodeIndices([]byte{0x80, 0x80, 0x80, 0x80, 0x7F}, 1); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt from decodeIndices, got %v", err)
	}
}

func TestUnmarshalErrors(t *testing.T) {
	if _, _, err := Unmarshal([]byte("VOPLPACK..")); !errors.Is(err, ErrBadMagic) {
		t.Fatalf("expected ErrBadMagic, got %v", err)
	}

	data, err := samplePack().Marshal(CompNone)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	bad := append([]byte(nil), data...)
	bad[len(packMagic)] = 9
	if _, _, err := Unmarshal(bad); !errors.Is(err, ErrVersion) {
		t.Fatalf("expected ErrVersion, got %v", err)
	}

	bad = append([]byte(nil), data...)
	bad[len(packMagic)+1] = 7
	if _, _, err := Unmarshal(bad); !errors.Is(err, ErrCompression) {
		t.Fatalf("expected ErrCompression, got %v", err)
	}

	// first vertex of the first entry: header, 14 content bytes, 24 coordinate and 8 count bytes
	bad = append([]byte(nil), data...)
	bad[headerLen+14+24+8+1] ^= 0x40
	if _, _, err := Unmarshal(bad); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt for a modified vertex, got %v", err)
	}

	if _, _, err := Unmarshal(data[:len(data)-3]); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt for truncated pack, got %v", err)
	}
	if _, _, err := Unmarshal(append(append([]byte(nil), data...), 1)); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt for trailing data, got %v", err)
	}
}

func TestMarshalRejectsInvalidMesh(t *testing.T) {
	p := samplePack()
	p.Entries[0].Mesh.Triangles[0] = 99
	if _, err := p.Marshal(CompZstd); !errors.Is(err, mesh.ErrInvalidMesh) {
		t.Fatalf("expected ErrInvalidMesh, got %v", err)
	}
	if _, err := samplePack().Marshal(Compression(5)); !errors.Is(err, ErrCompression) {
		t.Fatalf("expected ErrCompression, got %v", err)
	}
}

func TestParseCompression(t *testing.T) {
	for s, want := range map[string]Compression{"none": CompNone, "zlib": CompZlib, "zstd": CompZstd, "": CompZstd} {
		got, err := ParseCompression(s)
		if err != nil || got != want {
			t.Fatalf("ParseCompression(%q) = %v, %v", s, got, err)
		}
		if s != "" && got.String() != s {
			t.Fatalf("%v.String() = %q", got, got.String())
		}
	}
	if _, err := ParseCompression("lz4"); !errors.Is(err, ErrCompression) {
		t.Fatalf("expected ErrCompression, got %v", err)
	}
}
