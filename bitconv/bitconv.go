// Package bitconv converts between bytes and their bit representation, and between
// fixed-width integers and big-endian byte sequences.
//
// Bits are represented as bool values, most-significant bit first. Integers are
// encoded in two's complement, big-endian, at their natural width.
//
// All functions are pure. The functions taking a fixed-length input fail with
// [ErrLength] when the input has the wrong length.
package bitconv

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrLength indicates a fixed-width conversion received input of the wrong length.
var ErrLength = errors.New("bitconv: invalid input length")

// ByteToBits expands b into 8 bits, most-significant bit first.
// out[0] holds bit 7 of b and out[7] holds bit 0.
func ByteToBits(b byte) [8]bool {
	var out [8]bool
	for i := range out {
		out[i] = b&(0x80>>i) != 0
	}

	return out
}

// BitsToByte packs exactly 8 bits, most-significant bit first, into a byte.
// It is the inverse of ByteToBits.
func BitsToByte(bits []bool) (byte, error) {
	if len(bits) != 8 {
		return 0, fmt.Errorf("%w: got %d bits, want 8", ErrLength, len(bits))
	}

	var b byte
	for i, bit := range bits {
		if bit {
			b |= 0x80 >> i
		}
	}

	return b, nil
}

// BytesToBits expands data into len(data)*8 bits, each byte most-significant bit first.
func BytesToBits(data []byte) []bool {
	out := make([]bool, 0, len(data)*8)
	for _, b := range data {
		bits := ByteToBits(b)
		out = append(out, bits[:]...)
	}

	return out
}

// BitsToBytes packs bits into bytes. The number of bits must be a multiple of 8.
func BitsToBytes(bits []bool) ([]byte, error) {
	if len(bits)%8 != 0 {
		return nil, fmt.Errorf("%w: %d bits is not a multiple of 8", ErrLength, len(bits))
	}

	out := make([]byte, len(bits)/8)
	for i := range out {
		// the slice is always 8 bits long here
		out[i], _ = BitsToByte(bits[i*8 : i*8+8])
	}

	return out, nil
}

// Int16ToBytes encodes v as 2 big-endian bytes.
func Int16ToBytes(v int16) []byte {
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, uint16(v)) //nolint:gosec // two's complement reinterpretation

	return buf
}

// BytesToInt16 decodes 2 big-endian bytes.
func BytesToInt16(data []byte) (int16, error) {
	if len(data) != 2 {
		return 0, fmt.Errorf("%w: got %d bytes, want 2", ErrLength, len(data))
	}

	return int16(binary.BigEndian.Uint16(data)), nil //nolint:gosec // two's complement reinterpretation
}

// Int32ToBytes encodes v as 4 big-endian bytes.
func Int32ToBytes(v int32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(v)) //nolint:gosec // two's complement reinterpretation

	return buf
}

// BytesToInt32 decodes 4 big-endian bytes.
func BytesToInt32(data []byte) (int32, error) {
	if len(data) != 4 {
		return 0, fmt.Errorf("%w: got %d bytes, want 4", ErrLength, len(data))
	}

	return int32(binary.BigEndian.Uint32(data)), nil //nolint:gosec // two's complement reinterpretation
}
