package hamming

import "math/bits"

const (
	// BlockSize is the number of bytes in an encoded block.
	BlockSize = 4096

	// BlockBits is the number of bit positions in an encoded block.
	BlockBits = BlockSize * 8

	// HeaderSize is the number of content bytes used by the packet header:
	// index (2), size (2) and fragment flag (1).
	HeaderSize = 5
)

// Fragment flag values.
const (
	// FragMore marks a fragment followed by more fragments.
	FragMore uint8 = 0
	// FragFinal marks the last fragment of a sequence.
	FragFinal uint8 = 1
)

// Derived layout sizes. They depend on BlockBits only and are computed once.
var (
	// ParityBits is the number of parity positions: the global parity bit plus one
	// group parity bit per power of two below BlockBits.
	ParityBits = parityBitCount(BlockBits)

	// ContentBits is the number of positions carrying header, payload and padding.
	ContentBits = BlockBits - ParityBits

	// ContentBytes is the number of whole content bytes a block carries.
	ContentBytes = ContentBits / 8

	// MaxPayloadSize is the number of payload bytes one packet can carry.
	MaxPayloadSize = ContentBytes - HeaderSize
)

// contentPositions maps the i-th content bit to its position in the block.
var contentPositions = buildContentPositions(BlockBits)

func parityBitCount(nbits int) int {
	// positions 1, 2, 4, ... below nbits, plus position 0
	return bits.Len(uint(nbits-1)) + 1 //nolint:gosec // nbits is a positive constant
}

// isParityPosition reports whether pos holds a parity bit.
func isParityPosition(pos int) bool {
	return pos&(pos-1) == 0
}

func buildContentPositions(nbits int) []int32 {
	out := make([]int32, 0, nbits-parityBitCount(nbits))
	for pos := 1; pos < nbits; pos++ {
		if !isParityPosition(pos) {
			out = append(out, int32(pos)) //nolint:gosec // pos < BlockBits
		}
	}

	return out
}
