package blockstream

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/arloliu/go-secded/fragment"
	"github.com/arloliu/go-secded/hamming"
)

// deadlineReader is implemented by net.Conn and os.File.
type deadlineReader interface {
	io.Reader
	SetReadDeadline(t time.Time) error
}

// Reader reads fragment sequences from a stream of encoded blocks.
//
// Reading a payload proceeds in two phases:
//  1. Read the first block with no deadline, so the stream may idle between payloads.
//  2. Read every following block with the block timeout, if the stream supports
//     read deadlines and a timeout is set.
//
// Blocks are passed to a fragment.Assembler, which repairs them and enforces the
// index order. Reader is NOT goroutine-safe; only one ReadPayload call may be active
// at a time.
type Reader struct {
	r            io.Reader
	asm          *fragment.Assembler
	blockTimeout time.Duration
	buf          []byte
}

// NewReader creates a Reader on r that reassembles payloads with asm.
//
// blockTimeout bounds the wait for each block after the first one of a payload;
// zero disables it. It only applies when r has a SetReadDeadline method.
func NewReader(r io.Reader, asm *fragment.Assembler, blockTimeout time.Duration) *Reader {
	return &Reader{
		r:            r,
		asm:          asm,
		blockTimeout: blockTimeout,
		buf:          make([]byte, hamming.BlockSize),
	}
}

// ReadBlock reads one raw block and parses it without correction.
//
// It returns io.EOF if the stream ends on a block boundary and io.ErrUnexpectedEOF
// if it ends inside a block.
func (sr *Reader) ReadBlock() (*hamming.Packet, error) {
	if _, err := io.ReadFull(sr.r, sr.buf); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}

		return nil, fmt.Errorf("blockstream: read block: %w", err)
	}

	return hamming.Parse(sr.buf)
}

// ReadPayload reads blocks until the assembler completes a payload.
//
// Decode and ordering errors from the assembler are returned as is; the assembler
// has already dropped the sequence, so the next call starts a new payload.
func (sr *Reader) ReadPayload() ([]byte, error) {
	dr, hasDeadline := sr.r.(deadlineReader)
	hasDeadline = hasDeadline && sr.blockTimeout > 0

	first := true
	for {
		if hasDeadline {
			deadline := time.Time{}
			if !first {
				deadline = time.Now().Add(sr.blockTimeout)
			}
			if err := dr.SetReadDeadline(deadline); err != nil {
				return nil, fmt.Errorf("blockstream: set read deadline: %w", err)
			}
		}

		p, err := sr.ReadBlock()
		if err != nil {
			if !first && errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			sr.asm.Reset()

			return nil, err
		}
		first = false

		payload, done, err := sr.asm.Add(p)
		if err != nil {
			return nil, err
		}
		if done {
			return payload, nil
		}
	}
}
