package fragment

import (
	"fmt"
	"sync"

	"github.com/arloliu/go-secded/hamming"
	"github.com/arloliu/go-secded/internal/pool"
	"github.com/arloliu/go-secded/logger"
)

// Assembler reassembles one fragment sequence at a time from packets delivered
// in ascending index order.
//
// A sequence opens with index 0 and completes with the final fragment. Any packet
// that cannot be decoded, or that breaks the index order, aborts the open sequence.
// Packets are decoded one at a time, under the assembler's lock.
// With a fragment timeout configured, an open sequence waiting longer than the
// timeout for its next fragment is dropped.
//
// All methods are safe for concurrent use.
type Assembler struct {
	cfg     *CodecConfig
	logger  logger.Logger
	metrics CodecMetrics

	mu      sync.Mutex
	open    bool
	next    int
	payload []byte
	expired bool // the previous sequence was dropped by the timeout
	closed  bool

	gen    uint64        // sequence generation, bumped on every timer start
	cancel chan struct{} // closed to stop the current timer goroutine
}

// NewAssembler creates an Assembler.
func NewAssembler(cfg *CodecConfig) (*Assembler, error) {
	if cfg == nil {
		return nil, ErrCodecConfigNil
	}

	return &Assembler{cfg: cfg, logger: cfg.logger}, nil
}

// Metrics returns the assembler counters.
func (a *Assembler) Metrics() *CodecMetrics {
	return &a.metrics
}

// Pending reports whether a sequence is open and the index it expects next.
func (a *Assembler) Pending() (open bool, next int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.open, a.next
}

// Add decodes p and appends it to the open sequence.
//
// It returns the joined payload and done=true when p is the final fragment.
// p is corrected in place, unless the assembler is closed. A packet with a negative
// index is rejected with ErrInvalidIndex and leaves the open sequence untouched.
func (a *Assembler) Add(p *hamming.Packet) ([]byte, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, false, ErrAssemblerClosed
	}

	frag, out, err := decodePacket(p)
	record(a.logger, &a.metrics, p, out, err)

	if err != nil {
		a.abort("undecodable fragment")
		return nil, false, fmt.Errorf("fragment: decode packet: %w", err)
	}

	idx := int(frag.index)
	if idx < 0 {
		return nil, false, fmt.Errorf("%w: %d", ErrInvalidIndex, idx)
	}

	if !a.open {
		expired := a.expired
		a.expired = false

		if idx != 0 {
			if expired {
				return nil, false, fmt.Errorf("%w: got index %d after the sequence was dropped", ErrFragmentTimeout, idx)
			}

			return nil, false, fmt.Errorf("%w: expected index 0, got %d", ErrMissingFragment, idx)
		}

		if frag.final {
			a.metrics.incReassembledCount()
			return frag.payload, true, nil
		}

		a.open = true
		a.payload = frag.payload
		a.next = 1
		a.startTimer()

		return nil, false, nil
	}

	if idx != a.next {
		expected := a.next
		a.abort("fragment out of order")

		if idx < expected {
			return nil, false, fmt.Errorf("%w: index %d", ErrDuplicateFragment, idx)
		}

		return nil, false, fmt.Errorf("%w: expected index %d, got %d", ErrMissingFragment, expected, idx)
	}

	a.stopTimer()
	a.payload = append(a.payload, frag.payload...)

	if frag.final {
		payload := a.payload
		fragments := a.next + 1
		a.resetLocked()
		a.metrics.incReassembledCount()
		a.logger.Debug("assembler: sequence complete", "size", len(payload), "fragments", fragments)

		return payload, true, nil
	}

	a.next++
	a.startTimer()

	return nil, false, nil
}

// Reset drops the open sequence, if any.
func (a *Assembler) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.resetLocked()
	a.expired = false
}

// Close drops the open sequence and rejects further packets.
func (a *Assembler) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.resetLocked()
	a.closed = true
}

// abort drops the open sequence with a log line. Caller must hold a.mu.
func (a *Assembler) abort(reason string) {
	if a.open {
		a.logger.Debug("assembler: sequence aborted", "reason", reason, "next", a.next)
	}
	a.resetLocked()
}

// resetLocked clears sequence state. Caller must hold a.mu.
func (a *Assembler) resetLocked() {
	a.stopTimer()
	a.open = false
	a.next = 0
	a.payload = nil
}

// --- fragment timer ---

// startTimer arms the inter-fragment timer. Caller must hold a.mu.
func (a *Assembler) startTimer() {
	if a.cfg.fragmentTimeout <= 0 {
		return
	}

	a.gen++
	gen := a.gen
	cancel := make(chan struct{})
	a.cancel = cancel
	timeout := a.cfg.fragmentTimeout

	go func() {
		if pool.Wait(timeout, cancel) {
			a.handleTimeout(gen)
		}
	}()
}

// stopTimer cancels the inter-fragment timer. Caller must hold a.mu.
func (a *Assembler) stopTimer() {
	if a.cancel != nil {
		close(a.cancel)
		a.cancel = nil
	}
}

func (a *Assembler) handleTimeout(gen uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.open || a.gen != gen {
		return // completed, aborted or advanced in the meantime
	}

	a.logger.Warn("assembler: fragment timeout, dropping sequence",
		"next", a.next, "timeout", a.cfg.fragmentTimeout)

	a.resetLocked()
	a.expired = true
	a.metrics.incFragmentTimeoutCount()
}
