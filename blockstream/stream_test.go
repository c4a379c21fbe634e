package blockstream

import (
	"bytes"
	"context"
	"io"
	"net"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-secded/fragment"
	"github.com/arloliu/go-secded/hamming"
	"github.com/arloliu/go-secded/logger"
)

func newCodecAndAssembler(t *testing.T) (*fragment.Codec, *fragment.Assembler) {
	t.Helper()
	cfg, err := fragment.NewCodecConfig(
		fragment.WithLogger(logger.NewSlog(logger.ErrorLevel, logger.WithOutput(io.Discard))),
	)
	require.NoError(t, err)

	codec, err := fragment.NewCodec(cfg)
	require.NoError(t, err)
	asm, err := fragment.NewAssembler(cfg)
	require.NoError(t, err)
	t.Cleanup(asm.Close)

	return codec, asm
}

func payloadOf(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i*31 + 7)
	}

	return b
}

// TestStream_Pipe verifies payloads written on one end of a connection are read
// back in order on the other.
func TestStream_Pipe(t *testing.T) {
	require := require.New(t)

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	codec, asm := newCodecAndAssembler(t)
	w := NewWriter(server, codec)
	r := NewReader(client, asm, 5*time.Second)

	first := payloadOf(3*hamming.MaxPayloadSize + 1)
	second := []byte("second payload")

	errCh := make(chan error, 1)
	go func() {
		if _, err := w.WritePayload(context.Background(), first); err != nil {
			errCh <- err
			return
		}
		_, err := w.WritePayload(context.Background(), second)
		errCh <- err
	}()

	got, err := r.ReadPayload()
	require.NoError(err)
	require.Equal(first, got)

	got, err = r.ReadPayload()
	require.NoError(err)
	require.Equal(second, got)

	require.NoError(<-errCh)
}

// TestReader_RepairsBlocks verifies single-bit errors on the wire are corrected.
func TestReader_RepairsBlocks(t *testing.T) {
	require := require.New(t)

	payload := payloadOf(2 * hamming.MaxPayloadSize)
	blocks, err := fragment.SplitBlocks(payload)
	require.NoError(err)

	var buf bytes.Buffer
	for i, b := range blocks {
		b[i*100] ^= 0x02
		buf.Write(b)
	}

	_, asm := newCodecAndAssembler(t)
	r := NewReader(&buf, asm, 0)

	got, err := r.ReadPayload()
	require.NoError(err)
	require.Equal(payload, got)
	require.Equal(uint64(2), asm.Metrics().BitsCorrected.Load())

	_, err = r.ReadPayload()
	require.ErrorIs(err, io.EOF)
}

// TestReader_Truncated verifies a stream ending inside a payload is reported.
func TestReader_Truncated(t *testing.T) {
	require := require.New(t)

	blocks, err := fragment.SplitBlocks(payloadOf(2 * hamming.MaxPayloadSize))
	require.NoError(err)
	_, asm := newCodecAndAssembler(t)

	// ends on a block boundary, but before the final fragment
	r := NewReader(bytes.NewReader(blocks[0]), asm, 0)
	_, err = r.ReadPayload()
	require.ErrorIs(err, io.ErrUnexpectedEOF)
	open, _ := asm.Pending()
	require.False(open)

	// ends inside a block
	r = NewReader(bytes.NewReader(blocks[0][:100]), asm, 0)
	_, err = r.ReadPayload()
	require.ErrorIs(err, io.ErrUnexpectedEOF)
}

// TestReader_Uncorrectable verifies a double-bit error fails the payload and the
// next payload is still readable.
func TestReader_Uncorrectable(t *testing.T) {
	require := require.New(t)

	bad, err := fragment.SplitBlocks(payloadOf(10))
	require.NoError(err)
	bad[0][20] ^= 0x03

	good, err := fragment.SplitBlocks([]byte("good"))
	require.NoError(err)

	var buf bytes.Buffer
	buf.Write(bad[0])
	buf.Write(good[0])

	_, asm := newCodecAndAssembler(t)
	r := NewReader(&buf, asm, 0)

	_, err = r.ReadPayload()
	require.ErrorIs(err, hamming.ErrUncorrectable)

	got, err := r.ReadPayload()
	require.NoError(err)
	require.Equal([]byte("good"), got)
}

// TestReader_BlockTimeout verifies a stalled payload hits the block deadline while
// the wait for a first block has none.
func TestReader_BlockTimeout(t *testing.T) {
	require := require.New(t)

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	blocks, err := fragment.SplitBlocks(payloadOf(2 * hamming.MaxPayloadSize))
	require.NoError(err)

	_, asm := newCodecAndAssembler(t)
	r := NewReader(client, asm, 50*time.Millisecond)

	go func() {
		// idle longer than the block timeout before the first block
		time.Sleep(100 * time.Millisecond)
		_, _ = server.Write(blocks[0])
	}()

	_, err = r.ReadPayload()
	require.ErrorIs(err, os.ErrDeadlineExceeded)
	open, _ := asm.Pending()
	require.False(open)
}

func TestWriter_Error(t *testing.T) {
	client, server := net.Pipe()
	client.Close()
	defer server.Close()

	codec, _ := newCodecAndAssembler(t)
	n, err := NewWriter(server, codec).WritePayload(context.Background(), []byte("x"))
	require.Error(t, err)
	require.Zero(t, n)
}
