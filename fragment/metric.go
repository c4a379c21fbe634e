package fragment

import "sync/atomic"

// CodecMetrics contains atomic counters for a Codec or Assembler.
// They can be used as the value of a prometheus CounterFunc.
type CodecMetrics struct {
	// PacketsEncoded indicates the number of packets encoded.
	PacketsEncoded atomic.Uint64
	// PacketsDecoded indicates the number of packets decoded successfully.
	PacketsDecoded atomic.Uint64
	// BitsCorrected indicates the number of single-bit errors repaired.
	BitsCorrected atomic.Uint64
	// UncorrectableCount indicates the number of packets rejected with a double error.
	UncorrectableCount atomic.Uint64
	// ReassembledCount indicates the number of payloads joined successfully.
	ReassembledCount atomic.Uint64
	// FragmentTimeoutCount indicates the number of open sequences dropped by the fragment timeout.
	FragmentTimeoutCount atomic.Uint64
}

func (m *CodecMetrics) incPacketsEncoded() {
	m.PacketsEncoded.Add(1)
}

func (m *CodecMetrics) incPacketsDecoded() {
	m.PacketsDecoded.Add(1)
}

func (m *CodecMetrics) incBitsCorrected() {
	m.BitsCorrected.Add(1)
}

func (m *CodecMetrics) incUncorrectableCount() {
	m.UncorrectableCount.Add(1)
}

func (m *CodecMetrics) incReassembledCount() {
	m.ReassembledCount.Add(1)
}

func (m *CodecMetrics) incFragmentTimeoutCount() {
	m.FragmentTimeoutCount.Add(1)
}
