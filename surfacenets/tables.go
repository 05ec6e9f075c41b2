package surfacenets

// Corners of a cell are numbered by their offset bits: bit 0 is +x, bit 1
// is +y and bit 2 is +z. cubeEdges lists the 12 cell edges as corner pairs;
// edges 0, 1 and 2 leave corner 0 along x, y and z.
var cubeEdges [24]int

// edgeTable maps a corner sign mask to the mask of crossed edges.
var edgeTable [256]int

func init() {
	k := 0
	for i := 0; i < 8; i++ {
		for j := 1; j <= 4; j <<= 1 {
			p := i ^ j
			if i <= p {
				cubeEdges[k] = i
				cubeEdges[k+1] = p
				k += 2
			}
		}
	}
	for i := 0; i < 256; i++ {
		em := 0
		for j := 0; j < 24; j += 2 {
			a := i&(1<<cubeEdges[j]) != 0
			b := i&(1<<cubeEdges[j+1]) != 0
			if a != b {
				em |= 1 << (j >> 1)
			}
		}
		edgeTable[i] = em
	}
}

// CubeEdges returns a copy of the edge corner pairs.
func CubeEdges() [24]int { return cubeEdges }

// EdgeMask returns the 12-bit crossed-edge mask for a corner sign mask.
func EdgeMask(mask uint8) int { return edgeTable[mask] }
