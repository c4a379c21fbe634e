package fragment

import "errors"

var (
	// ErrMissingFragment indicates a gap in the index sequence before the final fragment,
	// or a sequence without a final fragment.
	ErrMissingFragment = errors.New("fragment: missing fragment")

	// ErrDuplicateFragment indicates two fragments carry the same index.
	ErrDuplicateFragment = errors.New("fragment: duplicate fragment")

	// ErrInvalidIndex indicates a fragment with a negative index.
	ErrInvalidIndex = errors.New("fragment: negative fragment index")

	// ErrNoPackets indicates Join received an empty sequence.
	ErrNoPackets = errors.New("fragment: no packets to join")

	// ErrTooManyFragments indicates a payload needs more fragments than a 16-bit index can number.
	ErrTooManyFragments = errors.New("fragment: payload needs too many fragments")

	// ErrFragmentTimeout indicates the open sequence was dropped after the fragment timeout.
	ErrFragmentTimeout = errors.New("fragment: inter-fragment timeout")

	// ErrAssemblerClosed indicates the assembler has been closed.
	ErrAssemblerClosed = errors.New("fragment: assembler closed")

	// ErrCodecConfigNil indicates a nil CodecConfig.
	ErrCodecConfigNil = errors.New("fragment: codec config is nil")
)
