// Package blockstream carries fragment sequences over a byte stream such as a
// net.Conn, a pipe, or a serial line.
//
// Blocks are written back to back with no framing: every block is exactly
// hamming.BlockSize bytes, and its header carries the fragment index and flag.
// The stream has no retransmission; an uncorrectable or missing block fails the
// payload it belongs to.
package blockstream
