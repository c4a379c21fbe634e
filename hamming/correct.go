package hamming

import (
	"fmt"

	"github.com/arloliu/go-secded/internal/pool"
)

// CorrectionStatus is the result class of a correction pass.
type CorrectionStatus uint8

const (
	// NoErrorFound means the block is a valid codeword.
	NoErrorFound CorrectionStatus = iota
	// Corrected means a single-bit error was found and flipped back.
	Corrected
	// UncorrectableDoubleError means a double-bit error was detected; the block was left unchanged.
	UncorrectableDoubleError
)

func (s CorrectionStatus) String() string {
	switch s {
	case NoErrorFound:
		return "no error found"
	case Corrected:
		return "corrected"
	case UncorrectableDoubleError:
		return "uncorrectable double error"
	default:
		return fmt.Sprintf("CorrectionStatus(%d)", uint8(s))
	}
}

// Outcome reports what a correction pass found.
type Outcome struct {
	Status CorrectionStatus
	// Position is the repaired bit position. Only meaningful when Status is Corrected.
	Position int
}

func (o Outcome) String() string {
	if o.Status == Corrected {
		return fmt.Sprintf("corrected bit %d", o.Position)
	}

	return o.Status.String()
}

// Check diagnoses the block without modifying it.
func (p *Packet) Check() Outcome {
	return diagnose(&p.block)
}

// SelfCorrect repairs a single-bit error in place.
//
// It flips at most one bit of the block and never fails; a double error is
// reported as UncorrectableDoubleError and leaves the block unchanged.
// The cached header fields are not refreshed; ToPayload does that.
func (p *Packet) SelfCorrect() Outcome {
	out := diagnose(&p.block)
	if out.Status == Corrected {
		p.block.flipBit(out.Position)
	}

	return out
}

// ToPayload corrects the block and returns the payload it carries.
//
// It fails with ErrUncorrectable on a double error, and with ErrSizeOutOfRange or
// ErrInvalidFragFlag when the corrected header is not plausible. On success the
// cached header fields reflect the corrected block.
func (p *Packet) ToPayload() ([]byte, error) {
	if out := p.SelfCorrect(); out.Status == UncorrectableDoubleError {
		return nil, fmt.Errorf("%w: packet index %d, syndrome %d", ErrUncorrectable, p.index, p.block.Syndrome())
	}

	content := pool.GetBuffer(ContentBytes)
	defer pool.PutBuffer(content)

	p.block.gather(content)
	p.index, p.size, p.fragFlag = parseHeader(content[:HeaderSize])

	if p.size < 0 || int(p.size) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: got %d, want [0, %d]", ErrSizeOutOfRange, p.size, MaxPayloadSize)
	}

	if p.fragFlag != FragMore && p.fragFlag != FragFinal {
		return nil, fmt.Errorf("%w: decoded %d", ErrInvalidFragFlag, p.fragFlag)
	}

	payload := make([]byte, p.size)
	copy(payload, content[HeaderSize:HeaderSize+int(p.size)])

	return payload, nil
}

// diagnose applies the SECDED decision to b.
func diagnose(b *Block) Outcome {
	syndrome := b.Syndrome()
	odd := b.OddParity()

	switch {
	case syndrome == 0 && !odd:
		return Outcome{Status: NoErrorFound}
	case odd && syndrome < BlockBits:
		// a lone flip of the global parity bit leaves the syndrome at 0
		return Outcome{Status: Corrected, Position: syndrome}
	default:
		return Outcome{Status: UncorrectableDoubleError}
	}
}
