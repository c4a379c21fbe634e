package fragment

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/arloliu/go-secded/hamming"
)

// MaxFragments is the largest number of fragments one payload may be split into.
const MaxFragments = math.MaxInt16 + 1

// Split splits payload into an ordered sequence of encoded packets.
//
// Each packet carries at most hamming.MaxPayloadSize bytes; an empty payload yields a
// single empty packet. Packet i has index i, and only the last packet is flagged final.
func Split(payload []byte) ([]*hamming.Packet, error) {
	n, err := fragmentCount(len(payload))
	if err != nil {
		return nil, err
	}

	packets := make([]*hamming.Packet, 0, n)
	for i := range n {
		p, err := encodeFragment(payload, i, n)
		if err != nil {
			return nil, err
		}
		packets = append(packets, p)
	}

	return packets, nil
}

// SplitBlocks is Split returning the raw encoded blocks.
func SplitBlocks(payload []byte) ([][]byte, error) {
	packets, err := Split(payload)
	if err != nil {
		return nil, err
	}

	blocks := make([][]byte, len(packets))
	for i, p := range packets {
		blocks[i] = p.Bytes()
	}

	return blocks, nil
}

// Join decodes packets and concatenates their payloads in index order.
//
// Packets are corrected in place. The input order does not matter. Packets past the
// final fragment and packets with a negative index are ignored, even when they cannot
// be decoded. Join fails with ErrDuplicateFragment on a repeated index before the
// final fragment. When the sequence has a gap or no final fragment, it fails with the
// decode error of the first undecodable packet (e.g. hamming.ErrUncorrectable), or
// with ErrMissingFragment if every packet decoded.
func Join(packets []*hamming.Packet) ([]byte, error) {
	if len(packets) == 0 {
		return nil, ErrNoPackets
	}

	frags := make([]decodedFragment, 0, len(packets))
	var failed []failedFragment
	for i, p := range packets {
		frag, _, err := decodePacket(p)
		if err != nil {
			failed = append(failed, failedFragment{pos: i, err: fmt.Errorf("fragment: decode packet %d: %w", i, err)})
			continue
		}
		frag.pos = i
		frags = append(frags, frag)
	}

	return assemble(frags, failed)
}

// JoinBlocks parses raw encoded blocks and joins them.
func JoinBlocks(blocks [][]byte) ([]byte, error) {
	packets, err := parseBlocks(blocks)
	if err != nil {
		return nil, err
	}

	return Join(packets)
}

// decodedFragment is one decoded packet, keyed by its corrected header.
type decodedFragment struct {
	pos     int // position in the input, orders fragments sharing an index
	index   int16
	final   bool
	payload []byte
}

// failedFragment is a packet that could not be decoded. Its header is unreliable,
// so only its position in the input is known.
type failedFragment struct {
	pos int
	err error
}

// decodePacket corrects p and extracts its payload. The outcome is that of the
// correction pass, before extraction.
func decodePacket(p *hamming.Packet) (decodedFragment, hamming.Outcome, error) {
	out := p.SelfCorrect()

	payload, err := p.ToPayload()
	if err != nil {
		return decodedFragment{}, out, err
	}

	return decodedFragment{index: p.Index(), final: p.IsFinal(), payload: payload}, out, nil
}

// assemble orders frags by index and concatenates them up to the final fragment.
//
// A failure only matters when the sequence cannot be completed without it; the
// one with the lowest input position is then returned in place of ErrMissingFragment.
func assemble(frags []decodedFragment, failed []failedFragment) ([]byte, error) {
	missing := func(err error) error {
		if len(failed) == 0 {
			return err
		}

		first := slices.MinFunc(failed, func(a, b failedFragment) int {
			return cmp.Compare(a.pos, b.pos)
		})

		return first.err
	}

	frags = slices.DeleteFunc(frags, func(f decodedFragment) bool { return f.index < 0 })
	slices.SortFunc(frags, func(a, b decodedFragment) int {
		return cmp.Or(cmp.Compare(a.index, b.index), cmp.Compare(a.pos, b.pos))
	})

	size := 0
	for _, f := range frags {
		size += len(f.payload)
	}
	out := make([]byte, 0, size)

	expected := 0
	for _, f := range frags {
		idx := int(f.index)
		if idx < expected {
			return nil, fmt.Errorf("%w: index %d", ErrDuplicateFragment, idx)
		}
		if idx != expected {
			return nil, missing(fmt.Errorf("%w: expected index %d, got %d", ErrMissingFragment, expected, idx))
		}

		out = append(out, f.payload...)
		if f.final {
			return out, nil
		}
		expected++
	}

	return nil, missing(fmt.Errorf("%w: no final fragment, expected index %d", ErrMissingFragment, expected))
}

func parseBlocks(blocks [][]byte) ([]*hamming.Packet, error) {
	packets := make([]*hamming.Packet, len(blocks))
	for i, b := range blocks {
		p, err := hamming.Parse(b)
		if err != nil {
			return nil, fmt.Errorf("fragment: parse block %d: %w", i, err)
		}
		packets[i] = p
	}

	return packets, nil
}

func fragmentCount(size int) (int, error) {
	n := max(1, (size+hamming.MaxPayloadSize-1)/hamming.MaxPayloadSize)
	if n > MaxFragments {
		return 0, fmt.Errorf("%w: %d bytes need %d fragments (max %d)", ErrTooManyFragments, size, n, MaxFragments)
	}

	return n, nil
}

func encodeFragment(payload []byte, i int, n int) (*hamming.Packet, error) {
	start := i * hamming.MaxPayloadSize
	end := min(start+hamming.MaxPayloadSize, len(payload))

	flag := hamming.FragMore
	if i == n-1 {
		flag = hamming.FragFinal
	}

	p, err := hamming.Encode(int16(i), flag, payload[start:end]) //nolint:gosec // i < MaxFragments
	if err != nil {
		return nil, fmt.Errorf("fragment: encode fragment %d: %w", i, err)
	}

	return p, nil
}
