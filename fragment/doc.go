// Package fragment splits payloads larger than one Hamming packet into an ordered
// fragment sequence and joins such sequences back together.
//
// A payload of n bytes becomes max(1, ceil(n/hamming.MaxPayloadSize)) packets with
// indexes 0..N-1 and the fragment flag set on the last one only. Joining decodes each
// packet (repairing single-bit errors), orders the fragments by their corrected
// index, and concatenates payloads from index 0 up to the final fragment.
//
// Three entry points are provided:
//
//   - Split and Join (and SplitBlocks/JoinBlocks over raw blocks) are plain
//     sequential functions with no logging or configuration.
//   - Codec runs the per-fragment work concurrently, logs repaired and
//     uncorrectable fragments, and counts them in CodecMetrics.
//   - Assembler accepts fragments one at a time, in order, as they arrive from a
//     transport or a store, with an optional inter-fragment timeout.
package fragment
