package hamming

import (
	"fmt"

	"github.com/arloliu/go-secded/bitconv"
	"github.com/arloliu/go-secded/internal/pool"
)

// Packet is a Hamming-protected block together with its decoded header fields.
//
// The block is authoritative; index, size and fragment flag are a cache of the
// header it carries. A Packet is created by Encode or Parse and is mutated only by
// SelfCorrect (and ToPayload, which calls it).
type Packet struct {
	index    int16
	size     int16
	fragFlag uint8
	block    Block
}

// Encode builds a packet carrying payload.
//
// fragFlag must be FragMore or FragFinal, and payload at most MaxPayloadSize bytes.
// The returned packet's block is a complete SECDED codeword.
func Encode(index int16, fragFlag uint8, payload []byte) (*Packet, error) {
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrPayloadTooLarge, len(payload), MaxPayloadSize)
	}

	if fragFlag != FragMore && fragFlag != FragFinal {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidFragFlag, fragFlag)
	}

	p := &Packet{
		index:    index,
		size:     int16(len(payload)), //nolint:gosec // bounded by MaxPayloadSize
		fragFlag: fragFlag,
	}

	content := pool.GetBuffer(ContentBytes)
	defer pool.PutBuffer(content)

	putHeader(content, p.index, p.size, p.fragFlag)
	copy(content[HeaderSize:], payload)

	p.block.scatter(content)

	// Distribute the syndrome over the group parity bits; afterwards every
	// power-of-two group has even parity and the syndrome is zero.
	syndrome := p.block.Syndrome()
	for pos := 1; pos < BlockBits; pos <<= 1 {
		if syndrome&pos != 0 {
			p.block.setBit(pos, true)
		}
	}

	if p.block.OddParity() {
		p.block.setBit(0, true)
	}

	return p, nil
}

// Parse rebuilds a packet from an encoded block without correcting it.
//
// The header fields are read as stored, so they may be wrong until SelfCorrect or
// ToPayload has repaired the block.
func Parse(data []byte) (*Packet, error) {
	b, err := NewBlock(data)
	if err != nil {
		return nil, err
	}

	p := &Packet{block: *b}
	p.readHeader()

	return p, nil
}

// Index returns the cached fragment index.
func (p *Packet) Index() int16 {
	return p.index
}

// Size returns the cached payload size in bytes.
func (p *Packet) Size() int16 {
	return p.size
}

// FragFlag returns the cached fragment flag.
func (p *Packet) FragFlag() uint8 {
	return p.fragFlag
}

// IsFinal reports whether the packet is the last fragment of its sequence.
func (p *Packet) IsFinal() bool {
	return p.fragFlag == FragFinal
}

// Block returns a copy of the encoded block.
func (p *Packet) Block() Block {
	return p.block
}

// Bytes returns a copy of the encoded block as a byte slice.
func (p *Packet) Bytes() []byte {
	return p.block.Bytes()
}

// String returns a one-line summary of the header fields.
func (p *Packet) String() string {
	return fmt.Sprintf("packet index: %d, size: %d, frag flag: %d", p.index, p.size, p.fragFlag)
}

// readHeader refreshes the cached header fields from the block.
func (p *Packet) readHeader() {
	var hdr [HeaderSize]byte
	p.block.gather(hdr[:])
	p.index, p.size, p.fragFlag = parseHeader(hdr[:])
}

func putHeader(dst []byte, index int16, size int16, fragFlag uint8) {
	copy(dst[0:2], bitconv.Int16ToBytes(index))
	copy(dst[2:4], bitconv.Int16ToBytes(size))
	dst[4] = fragFlag
}

func parseHeader(src []byte) (index int16, size int16, fragFlag uint8) {
	// both slices are exactly 2 bytes
	index, _ = bitconv.BytesToInt16(src[0:2])
	size, _ = bitconv.BytesToInt16(src[2:4])

	return index, size, src[4]
}
