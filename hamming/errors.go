package hamming

import "errors"

var (
	// ErrPayloadTooLarge indicates the payload exceeds MaxPayloadSize bytes.
	ErrPayloadTooLarge = errors.New("hamming: payload too large")

	// ErrInvalidFragFlag indicates a fragment flag other than FragMore (0) or FragFinal (1).
	ErrInvalidFragFlag = errors.New("hamming: invalid fragment flag, should be 0 or 1")

	// ErrInvalidBlockSize indicates an encoded block is not exactly BlockSize bytes.
	ErrInvalidBlockSize = errors.New("hamming: invalid block size")

	// ErrSizeOutOfRange indicates the decoded payload size lies outside [0, MaxPayloadSize].
	ErrSizeOutOfRange = errors.New("hamming: payload size out of range")

	// ErrUncorrectable indicates a double-bit error was detected and the block cannot be repaired.
	ErrUncorrectable = errors.New("hamming: uncorrectable error")

	// ErrBitPosition indicates a bit position outside [0, BlockBits).
	ErrBitPosition = errors.New("hamming: bit position out of range")
)
