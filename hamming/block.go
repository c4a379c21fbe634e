package hamming

import (
	"fmt"
	"math/bits"

	"github.com/arloliu/go-secded/bitconv"
)

// Block is an encoded, fixed-size SECDED codeword.
//
// Bit position p is bit (7 - p%8) of byte p/8, i.e. positions run from the
// most-significant bit of the first byte.
type Block [BlockSize]byte

// NewBlock copies data into a Block. data must be exactly BlockSize bytes.
func NewBlock(data []byte) (*Block, error) {
	if len(data) != BlockSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidBlockSize, len(data), BlockSize)
	}

	b := &Block{}
	copy(b[:], data)

	return b, nil
}

// Bytes returns a copy of the block as a byte slice.
func (b *Block) Bytes() []byte {
	out := make([]byte, BlockSize)
	copy(out, b[:])

	return out
}

// Bit returns the bit at pos.
func (b *Block) Bit(pos int) (bool, error) {
	if err := checkPosition(pos); err != nil {
		return false, err
	}

	return b.bit(pos), nil
}

// SetBit sets the bit at pos to v.
func (b *Block) SetBit(pos int, v bool) error {
	if err := checkPosition(pos); err != nil {
		return err
	}
	b.setBit(pos, v)

	return nil
}

// FlipBit inverts the bit at pos.
func (b *Block) FlipBit(pos int) error {
	if err := checkPosition(pos); err != nil {
		return err
	}
	b.flipBit(pos)

	return nil
}

// Syndrome returns the XOR of the positions of all set bits.
//
// It is zero for an intact block and equals p after a single flip at p != 0.
func (b *Block) Syndrome() int {
	s := 0
	for i, v := range b {
		for v != 0 {
			// position of the highest remaining set bit
			j := bits.LeadingZeros8(v)
			s ^= i<<3 | j
			v &^= 0x80 >> j
		}
	}

	return s
}

// OddParity reports whether the block has an odd number of set bits.
func (b *Block) OddParity() bool {
	n := 0
	for _, v := range b {
		n += bits.OnesCount8(v)
	}

	return n&1 == 1
}

func checkPosition(pos int) error {
	if pos < 0 || pos >= BlockBits {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrBitPosition, pos, BlockBits)
	}

	return nil
}

func (b *Block) bit(pos int) bool {
	return b[pos>>3]&(0x80>>(pos&7)) != 0
}

func (b *Block) setBit(pos int, v bool) {
	if v {
		b[pos>>3] |= 0x80 >> (pos & 7)
	} else {
		b[pos>>3] &^= 0x80 >> (pos & 7)
	}
}

func (b *Block) flipBit(pos int) {
	b[pos>>3] ^= 0x80 >> (pos & 7)
}

// scatter writes content bits to the content positions, in order.
// The block's content positions must be zero beforehand.
func (b *Block) scatter(content []byte) {
	for i, c := range content {
		if c == 0 {
			continue
		}
		for j, bit := range bitconv.ByteToBits(c) {
			if bit {
				b.setBit(int(contentPositions[i*8+j]), true)
			}
		}
	}
}

// gather reads the content bits back into content, which holds up to ContentBytes bytes.
func (b *Block) gather(content []byte) {
	var byteBits [8]bool
	for i := range content {
		for j := range byteBits {
			byteBits[j] = b.bit(int(contentPositions[i*8+j]))
		}
		content[i], _ = bitconv.BitsToByte(byteBits[:])
	}
}
