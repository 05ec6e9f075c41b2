package pack

import "io"

func writeUVarint(dst []byte, x uint32) []byte {
	v := x
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	dst = append(dst, byte(v))
	return dst
}

func readUVarint(src []byte, pos *int) (uint32, error) {
	var x uint32
	var s uint32
	i := *pos
	for {
		if i >= len(src) {
			return 0, io.ErrUnexpectedEOF
		}
		b := src[i]
		i++
		if b < 0x80 {
			// the fifth byte carries only the top four bits
			if s == 28 && b > 0x0F {
				return 0, ErrCorrupt
			}
			x |= uint32(b) << s
			break
		}
		x |= uint32(b&0x7F) << s
		s += 7
		if s > 28 {
			return 0, io.ErrUnexpectedEOF
		}
	}
	*pos = i
	return x, nil
}

func zigzag(v int32) uint32   { return uint32((v << 1) ^ (v >> 31)) }
func unzigzag(u uint32) int32 { return int32(u>>1) ^ -int32(u&1) }

// encodeIndices stores each index as the zigzagged difference from the one
// before it. Neighbouring triangles share vertices, so most deltas fit in a
// byte.
func encodeIndices(idx []uint32) []byte {
	out := make([]byte, 0, len(idx))
	var prev uint32
	for _, v := range idx {
		out = writeUVarint(out, zigzag(int32(v-prev)))
		prev = v
	}
	return out
}

func decodeIndices(src []byte, n int) ([]uint32, error) {
	out := make([]uint32, n)
	pos := 0
	var prev uint32
	for i := 0; i < n; i++ {
		u, err := readUVarint(src, &pos)
		if err != nil {
			return nil, err
		}
		prev += uint32(unzigzag(u))
		out[i] = prev
	}
	if pos != len(src) {
		return nil, ErrCorrupt
	}
	return out, nil
}
