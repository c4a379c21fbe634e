// Package hamming implements a fixed-size packet protected by an extended Hamming
// code (SECDED: single-error correcting, double-error detecting).
//
// # Block Layout
//
// A [Block] is BlockSize bytes, i.e. BlockBits bits numbered from 0, most-significant
// bit of byte 0 first:
//
//   - position 0 is the global parity bit; it makes the number of set bits in the
//     whole block even.
//   - every position that is a power of two (1, 2, 4, ..., 16384 for 4096-byte blocks)
//     is a group parity bit.
//   - all remaining positions carry content bits, in ascending order.
//
// The content is a 5-byte header followed by the payload and zero padding:
//
//	index(16, big-endian signed) | size(16, big-endian signed) | frag flag(8) | payload(size*8) | zeros
//
// # Syndrome
//
// The syndrome of a block is the XOR of the positions of all set bits. Because every
// group parity bit sits at a power of two, the binary expansion of any position names
// exactly the parity groups covering it, so the position-XOR over the whole block
// equals the classic per-group parity check word. Encoding sets parity bit 2^k for
// every set bit k of the syndrome of the unprotected content, which drives the
// syndrome to zero. After a single bit flip at position p the syndrome is p.
//
// # Correction
//
// [Packet.SelfCorrect] combines the syndrome with the global parity:
//
//   - syndrome 0, even parity: no error.
//   - odd parity: a single error at the syndrome position (position 0 when the
//     syndrome is 0), which is flipped back.
//   - syndrome non-zero, even parity: two errors, reported and left untouched.
//
// Three or more errors may be miscorrected or missed; that is inherent to SECDED.
//
// # Concurrency
//
// A [Packet] owns its block exclusively and the package holds no mutable global
// state, so distinct packets may be encoded, corrected and decoded from different
// goroutines freely. A single Packet provides no synchronization: callers sharing one
// across goroutines must serialize SelfCorrect and ToPayload themselves.
package hamming
