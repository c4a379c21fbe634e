// Package noise injects bit errors into encoded blocks.
//
// An Injector is seeded explicitly, so the same seed flips the same positions.
package noise

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/arloliu/go-secded/hamming"
)

var (
	// ErrInvalidBER indicates a bit error rate outside [0, 1].
	ErrInvalidBER = errors.New("noise: bit error rate out of range")

	// ErrInvalidCount indicates a flip count outside [0, hamming.BlockBits].
	ErrInvalidCount = errors.New("noise: flip count out of range")
)

// Injector flips bits of blocks using a seeded generator.
//
// It is safe for concurrent use; concurrent callers draw from the same sequence.
type Injector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewInjector creates an Injector seeded with seed.
func NewInjector(seed int64) *Injector {
	s := uint64(seed) //nolint:gosec // bit pattern reuse
	return &Injector{rng: rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))}
}

// FlipBits flips n distinct bits of b and returns their positions in ascending order.
func (in *Injector) FlipBits(b *hamming.Block, n int) ([]int, error) {
	if n < 0 || n > hamming.BlockBits {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, n)
	}

	in.mu.Lock()
	positions := in.pick(n)
	in.mu.Unlock()

	slices.Sort(positions)
	for _, pos := range positions {
		if err := b.FlipBit(pos); err != nil {
			return nil, err
		}
	}

	return positions, nil
}

// ApplyBER flips each bit of b independently with probability ber and returns the
// flipped positions in ascending order.
func (in *Injector) ApplyBER(b *hamming.Block, ber float64) ([]int, error) {
	if !(ber >= 0 && ber <= 1) { // also rejects NaN
		return nil, fmt.Errorf("%w: %v", ErrInvalidBER, ber)
	}

	var positions []int

	in.mu.Lock()
	for pos := range hamming.BlockBits {
		if in.rng.Float64() < ber {
			positions = append(positions, pos)
		}
	}
	in.mu.Unlock()

	for _, pos := range positions {
		if err := b.FlipBit(pos); err != nil {
			return nil, err
		}
	}

	return positions, nil
}

// pick returns n distinct positions in [0, hamming.BlockBits). Caller must hold in.mu.
func (in *Injector) pick(n int) []int {
	if n > hamming.BlockBits/2 {
		return in.rng.Perm(hamming.BlockBits)[:n]
	}

	seen := make(map[int]struct{}, n)
	positions := make([]int, 0, n)
	for len(positions) < n {
		pos := in.rng.IntN(hamming.BlockBits)
		if _, ok := seen[pos]; ok {
			continue
		}
		seen[pos] = struct{}{}
		positions = append(positions, pos)
	}

	return positions
}
