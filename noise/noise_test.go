package noise

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-secded/hamming"
)

func encodedBlock(t *testing.T) (*hamming.Block, []byte) {
	t.Helper()
	payload := []byte("the quick brown fox jumps over the lazy dog")
	p, err := hamming.Encode(0, hamming.FragFinal, payload)
	require.NoError(t, err)
	b := p.Block()

	return &b, payload
}

func diffPositions(t *testing.T, a, b *hamming.Block) []int {
	t.Helper()
	out := []int{}
	for pos := range hamming.BlockBits {
		x, err := a.Bit(pos)
		require.NoError(t, err)
		y, err := b.Bit(pos)
		require.NoError(t, err)
		if x != y {
			out = append(out, pos)
		}
	}

	return out
}

func TestFlipBits_Deterministic(t *testing.T) {
	b1, _ := encodedBlock(t)
	b2, _ := encodedBlock(t)

	p1, err := NewInjector(42).FlipBits(b1, 5)
	require.NoError(t, err)
	p2, err := NewInjector(42).FlipBits(b2, 5)
	require.NoError(t, err)

	assert.Equal(t, p1, p2)
	assert.Equal(t, *b1, *b2)
}

func TestFlipBits_DistinctAndSorted(t *testing.T) {
	orig, _ := encodedBlock(t)

	for _, n := range []int{0, 1, 2, 64, hamming.BlockBits/2 + 1, hamming.BlockBits} {
		b := *orig
		positions, err := NewInjector(int64(n)).FlipBits(&b, n)
		require.NoError(t, err)
		require.Len(t, positions, n)
		assert.True(t, slices.IsSorted(positions))
		assert.Len(t, slices.Compact(slices.Clone(positions)), n, "positions must be distinct")
		assert.Equal(t, positions, diffPositions(t, orig, &b))
	}
}

func TestFlipBits_InvalidCount(t *testing.T) {
	b, _ := encodedBlock(t)
	inj := NewInjector(1)

	_, err := inj.FlipBits(b, -1)
	require.ErrorIs(t, err, ErrInvalidCount)

	_, err = inj.FlipBits(b, hamming.BlockBits+1)
	require.ErrorIs(t, err, ErrInvalidCount)
}

func TestFlipBits_CorrectionPath(t *testing.T) {
	inj := NewInjector(7)

	for range 50 {
		b, payload := encodedBlock(t)
		positions, err := inj.FlipBits(b, 1)
		require.NoError(t, err)

		p, err := hamming.Parse(b[:])
		require.NoError(t, err)
		out := p.SelfCorrect()
		require.Equal(t, hamming.Corrected, out.Status)
		require.Equal(t, positions[0], out.Position)

		got, err := p.ToPayload()
		require.NoError(t, err)
		require.Equal(t, payload, got)
	}

	for range 50 {
		b, _ := encodedBlock(t)
		_, err := inj.FlipBits(b, 2)
		require.NoError(t, err)

		p, err := hamming.Parse(b[:])
		require.NoError(t, err)
		require.Equal(t, hamming.UncorrectableDoubleError, p.Check().Status)

		_, err = p.ToPayload()
		require.ErrorIs(t, err, hamming.ErrUncorrectable)
	}
}

func TestApplyBER(t *testing.T) {
	orig, _ := encodedBlock(t)

	b := *orig
	positions, err := NewInjector(3).ApplyBER(&b, 0)
	require.NoError(t, err)
	assert.Empty(t, positions)
	assert.Equal(t, *orig, b)

	positions, err = NewInjector(3).ApplyBER(&b, 1)
	require.NoError(t, err)
	assert.Len(t, positions, hamming.BlockBits)

	b = *orig
	positions, err = NewInjector(3).ApplyBER(&b, 0.01)
	require.NoError(t, err)
	assert.True(t, slices.IsSorted(positions))
	assert.Equal(t, positions, diffPositions(t, orig, &b))
	// expected 327 flips; the bound is loose enough to never fail for a fixed seed
	assert.InDelta(t, 0.01*hamming.BlockBits, len(positions), 150)

	again := *orig
	p2, err := NewInjector(3).ApplyBER(&again, 0.01)
	require.NoError(t, err)
	assert.Equal(t, positions, p2)
}

func TestApplyBER_Invalid(t *testing.T) {
	b, _ := encodedBlock(t)
	inj := NewInjector(1)

	for _, ber := range []float64{-0.1, 1.5, math.NaN(), math.Inf(1)} {
		_, err := inj.ApplyBER(b, ber)
		require.ErrorIs(t, err, ErrInvalidBER, "ber %v", ber)
	}
}
