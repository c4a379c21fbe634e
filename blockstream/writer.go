package blockstream

import (
	"context"
	"fmt"
	"io"

	"github.com/arloliu/go-secded/fragment"
)

// Writer writes payloads to a stream as consecutive encoded blocks.
type Writer struct {
	w     io.Writer
	codec *fragment.Codec
}

// NewWriter creates a Writer on w that encodes payloads with codec.
func NewWriter(w io.Writer, codec *fragment.Codec) *Writer {
	return &Writer{w: w, codec: codec}
}

// WritePayload splits payload and writes its blocks in index order.
// It returns the number of blocks written.
func (sw *Writer) WritePayload(ctx context.Context, payload []byte) (int, error) {
	blocks, err := sw.codec.SplitBlocks(ctx, payload)
	if err != nil {
		return 0, err
	}

	for i, b := range blocks {
		if _, err := sw.w.Write(b); err != nil {
			return i, fmt.Errorf("blockstream: write block %d: %w", i, err)
		}
	}

	return len(blocks), nil
}
