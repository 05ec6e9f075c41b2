// Package pack stores a generated world, one mesh per chunk, in a single
// compressed file.
package pack

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/klauspost/compress/zstd"

	"github.com/voxelsplace/isonets/chunk"
	"github.com/voxelsplace/isonets/mesh"
)

var (
	ErrBadMagic    = errors.New("not an isonets pack")
	ErrVersion     = errors.New("unsupported pack version")
	ErrCompression = errors.New("unsupported pack compression")
	ErrCorrupt     = errors.New("corrupt pack")
)

// Compression indicates the codec used for the pack content section.
type Compression uint8

const (
	CompNone Compression = 0
	CompZlib Compression = 1
	CompZstd Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompNone:
		return "none"
	case CompZlib:
		return "zlib"
	case CompZstd:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

func ParseCompression(s string) (Compression, error) {
	switch s {
	case "none":
		return CompNone, nil
	case "zlib":
		return CompZlib, nil
	case "zstd", "":
		return CompZstd, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrCompression, s)
	}
}

// MaxDim is the largest chunk dimension a pack header can hold.
const MaxDim = math.MaxUint16

const (
	packMagic   = "ISOPACK"
	packVersion = 1
	headerLen   = len(packMagic) + 2
)

// Entry is one chunk's mesh in chunk-local coordinates.
type Entry struct {
	Position chunk.Position
	Origin   chunk.Origin
	Mesh     *mesh.Mesh
}

// Pack holds the chunk parameters shared by every entry and the entries
// themselves in build order.
type Pack struct {
	Dims    chunk.Dims
	Spacing int
	Entries []Entry

	index map[uint64][]int
}

func New(dims chunk.Dims, spacing int) *Pack {
	return &Pack{Dims: dims, Spacing: spacing}
}

func (p *Pack) Add(e Entry) {
	p.Entries = append(p.Entries, e)
	p.index = nil
}

// Lookup finds the entry for pos. Buckets are keyed by Position.Hash and
// every candidate is compared field by field.
func (p *Pack) Lookup(pos chunk.Position) (Entry, bool) {
	if p.index == nil {
		p.index = make(map[uint64][]int, len(p.Entries))
		for i, e := range p.Entries {
			h := e.Position.Hash()
			p.index[h] = append(p.index[h], i)
		}
	}
	for _, i := range p.index[pos.Hash()] {
		if p.Entries[i].Position == pos {
			return p.Entries[i], true
		}
	}
	return Entry{}, false
}

// Marshal encodes the pack with the given content compression.
func (p *Pack) Marshal(comp Compression) ([]byte, error) {
	if err := p.Dims.Validate(); err != nil {
		return nil, err
	}
	if p.Dims.W > MaxDim || p.Dims.H > MaxDim || p.Dims.P > MaxDim {
		return nil, fmt.Errorf("chunk dimensions %dx%dx%d exceed %d", p.Dims.W, p.Dims.H, p.Dims.P, MaxDim)
	}
	if p.Spacing < 0 || uint64(p.Spacing) > math.MaxUint32 {
		return nil, fmt.Errorf("spacing %d out of range", p.Spacing)
	}

	var content bytes.Buffer
	_ = binary.Write(&content, binary.LittleEndian, uint16(p.Dims.W))
	_ = binary.Write(&content, binary.LittleEndian, uint16(p.Dims.H))
	_ = binary.Write(&content, binary.LittleEndian, uint16(p.Dims.P))
	_ = binary.Write(&content, binary.LittleEndian, uint32(p.Spacing))
	_ = binary.Write(&content, binary.LittleEndian, uint32(len(p.Entries)))

	digests := make([]uint64, len(p.Entries))
	for i, e := range p.Entries {
		m := e.Mesh
		if m == nil {
			m = &mesh.Mesh{}
		}
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("entry %v: %w", e.Position, err)
		}
		for _, v := range [6]int{e.Position.X, e.Position.Y, e.Position.Z, e.Origin.X, e.Origin.Y, e.Origin.Z} {
			if v < math.MinInt32 || v > math.MaxInt32 {
				return nil, fmt.Errorf("entry %v: coordinate %d out of int32 range", e.Position, v)
			}
			_ = binary.Write(&content, binary.LittleEndian, int32(v))
		}
		_ = binary.Write(&content, binary.LittleEndian, uint32(len(m.Vertices)))
		_ = binary.Write(&content, binary.LittleEndian, uint32(len(m.Triangles)))
		for _, v := range m.Vertices {
			_ = binary.Write(&content, binary.LittleEndian, [3]float32(v))
		}
		idx := encodeIndices(m.Triangles)
		_ = binary.Write(&content, binary.LittleEndian, uint32(len(idx)))
		_, _ = content.Write(idx)
		digests[i] = m.Digest()
	}
	for _, d := range digests {
		_ = binary.Write(&content, binary.LittleEndian, d)
	}

	var finalContent []byte
	switch comp {
	case CompNone:
		finalContent = content.Bytes()
	case CompZlib:
		var buf bytes.Buffer
		zw, _ := zlib.NewWriterLevel(&buf, zlib.BestCompression)
		if _, err := zw.Write(content.Bytes()); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		finalContent = buf.Bytes()
	case CompZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		finalContent = enc.EncodeAll(content.Bytes(), nil)
		_ = enc.Close()
	default:
		return nil, fmt.Errorf("%w: %d", ErrCompression, comp)
	}

	var out bytes.Buffer
	out.WriteString(packMagic)
	_ = binary.Write(&out, binary.LittleEndian, uint8(packVersion))
	_ = binary.Write(&out, binary.LittleEndian, uint8(comp))
	_, _ = out.Write(finalContent)
	return out.Bytes(), nil
}

// Unmarshal parses a pack and returns it with the compression it used. Each
// mesh is checked against its stored digest.
func Unmarshal(data []byte) (*Pack, Compression, error) {
	if len(data) < headerLen || string(data[:len(packMagic)]) != packMagic {
		return nil, 0, ErrBadMagic
	}
	if v := data[len(packMagic)]; v != packVersion {
		return nil, 0, fmt.Errorf("%w: %d", ErrVersion, v)
	}
	comp := Compression(data[len(packMagic)+1])
	contentBytes := data[headerLen:]
	switch comp {
	case CompNone:
	case CompZlib:
		zr, err := zlib.NewReader(bytes.NewReader(contentBytes))
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		defer zr.Close()
		b, err := io.ReadAll(zr)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		contentBytes = b
	case CompZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, 0, err
		}
		defer dec.Close()
		b, err := dec.DecodeAll(contentBytes, nil)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		contentBytes = b
	default:
		return nil, 0, fmt.Errorf("%w: %d", ErrCompression, comp)
	}

	p, err := decodeContent(contentBytes)
	if err != nil {
		return nil, 0, err
	}
	return p, comp, nil
}

func decodeContent(b []byte) (*Pack, error) {
	r := bytes.NewReader(b)
	read := func(v any) error {
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		return nil
	}

	var dims [3]uint16
	var spacing, count uint32
	if err := read(&dims); err != nil {
		return nil, err
	}
	if err := read(&spacing); err != nil {
		return nil, err
	}
	if err := read(&count); err != nil {
		return nil, err
	}
	p := New(chunk.Dims{W: int(dims[0]), H: int(dims[1]), P: int(dims[2])}, int(spacing))
	if err := p.Dims.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	// each entry takes at least 36 bytes, so a larger count is a lie
	if uint64(count)*36 > uint64(r.Len()) {
		return nil, fmt.Errorf("%w: %d entries in %d bytes", ErrCorrupt, count, r.Len())
	}

	p.Entries = make([]Entry, count)
	for i := range p.Entries {
		var coords [6]int32
		var nVerts, nIdx, idxLen uint32
		if err := read(&coords); err != nil {
			return nil, err
		}
		if err := read(&nVerts); err != nil {
			return nil, err
		}
		if err := read(&nIdx); err != nil {
			return nil, err
		}
		if uint64(nVerts)*12 > uint64(r.Len()) || uint64(nIdx) > uint64(r.Len()) {
			return nil, fmt.Errorf("%w: entry %d sizes exceed content", ErrCorrupt, i)
		}
		verts := make([][3]float32, nVerts)
		if err := read(verts); err != nil {
			return nil, err
		}
		if err := read(&idxLen); err != nil {
			return nil, err
		}
		if uint64(idxLen) > uint64(r.Len()) {
			return nil, fmt.Errorf("%w: entry %d index block truncated", ErrCorrupt, i)
		}
		raw := make([]byte, idxLen)
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		tris, err := decodeIndices(raw, int(nIdx))
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d indices: %v", ErrCorrupt, i, err)
		}

		m := &mesh.Mesh{Vertices: make([]mgl32.Vec3, nVerts), Triangles: tris}
		for k, v := range verts {
			m.Vertices[k] = mgl32.Vec3(v)
		}
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrCorrupt, i, err)
		}
		p.Entries[i] = Entry{
			Position: chunk.Position{X: int(coords[0]), Y: int(coords[1]), Z: int(coords[2])},
			Origin:   chunk.Origin{X: int(coords[3]), Y: int(coords[4]), Z: int(coords[5])},
			Mesh:     m,
		}
	}

	for i := range p.Entries {
		var d uint64
		if err := read(&d); err != nil {
			return nil, err
		}
		if got := p.Entries[i].Mesh.Digest(); got != d {
			return nil, fmt.Errorf("%w: entry %v digest %016x, stored %016x", ErrCorrupt, p.Entries[i].Position, got, d)
		}
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, r.Len())
	}
	return p, nil
}
