package fragment

import (
	"context"
	"fmt"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/errgroup"

	"github.com/arloliu/go-secded/hamming"
	"github.com/arloliu/go-secded/logger"
)

// Codec splits and joins fragment sequences, processing fragments concurrently.
//
// Results are identical to Split and Join. All methods are safe for concurrent use,
// provided concurrent calls do not share packets.
type Codec struct {
	cfg     *CodecConfig
	logger  logger.Logger
	metrics CodecMetrics
}

// NewCodec creates a Codec.
func NewCodec(cfg *CodecConfig) (*Codec, error) {
	if cfg == nil {
		return nil, ErrCodecConfigNil
	}

	return &Codec{cfg: cfg, logger: cfg.logger}, nil
}

// Metrics returns the codec counters.
func (c *Codec) Metrics() *CodecMetrics {
	return &c.metrics
}

// Split encodes payload into an ordered fragment sequence.
//
// Fragments are encoded in parallel, up to the configured concurrency. It returns
// ctx.Err() if ctx is done before all fragments are encoded.
func (c *Codec) Split(ctx context.Context, payload []byte) ([]*hamming.Packet, error) {
	n, err := fragmentCount(len(payload))
	if err != nil {
		return nil, err
	}

	packets := make([]*hamming.Packet, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.concurrency)

	for i := range n {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			p, err := encodeFragment(payload, i, n)
			if err != nil {
				return err
			}
			packets[i] = p
			c.metrics.incPacketsEncoded()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.logger.Debug("payload split", "size", len(payload), "fragments", n)

	return packets, nil
}

// SplitBlocks is Split returning the raw encoded blocks.
func (c *Codec) SplitBlocks(ctx context.Context, payload []byte) ([][]byte, error) {
	packets, err := c.Split(ctx, payload)
	if err != nil {
		return nil, err
	}

	blocks := make([][]byte, len(packets))
	for i, p := range packets {
		blocks[i] = p.Bytes()
	}

	return blocks, nil
}

// Join decodes packets in parallel and concatenates their payloads in index order.
//
// Packets are corrected in place; a packet given more than once is decoded once and
// counts as a repeated index. Errors and ignored packets are those of the sequential
// Join. It returns ctx.Err() if ctx is done before all packets are decoded.
func (c *Codec) Join(ctx context.Context, packets []*hamming.Packet) ([]byte, error) {
	if len(packets) == 0 {
		return nil, ErrNoPackets
	}

	// input positions of each distinct packet, ascending
	seen := make(map[*hamming.Packet][]int, len(packets))
	unique := make([]*hamming.Packet, 0, len(packets))
	for i, p := range packets {
		if _, ok := seen[p]; !ok {
			unique = append(unique, p)
		}
		seen[p] = append(seen[p], i)
	}

	frags := xsync.NewMapOf[int16, decodedFragment](xsync.WithPresize(len(unique)))

	// repeated indexes are kept aside so assemble sees the same fragments as Join
	var (
		mu     sync.Mutex
		dups   []decodedFragment
		failed []failedFragment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.concurrency)

	for _, p := range unique {
		positions := seen[p]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			frag, err := c.decode(p, positions[0])
			if err != nil {
				mu.Lock()
				failed = append(failed, failedFragment{pos: positions[0], err: err})
				mu.Unlock()

				return nil
			}
			frag.pos = positions[0]

			extra := make([]decodedFragment, 0, len(positions))
			for _, pos := range positions[1:] {
				again := frag
				again.pos = pos
				extra = append(extra, again)
			}
			if _, loaded := frags.LoadOrStore(frag.index, frag); loaded {
				extra = append(extra, frag)
			}
			if len(extra) > 0 {
				mu.Lock()
				dups = append(dups, extra...)
				mu.Unlock()
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	ordered := make([]decodedFragment, 0, frags.Size()+len(dups))
	ordered = append(ordered, dups...)
	frags.Range(func(_ int16, f decodedFragment) bool {
		ordered = append(ordered, f)
		return true
	})

	out, err := assemble(ordered, failed)
	if err != nil {
		return nil, err
	}

	c.metrics.incReassembledCount()
	c.logger.Debug("payload joined", "size", len(out), "fragments", len(packets))

	return out, nil
}

// JoinBlocks parses raw encoded blocks and joins them.
func (c *Codec) JoinBlocks(ctx context.Context, blocks [][]byte) ([]byte, error) {
	packets, err := parseBlocks(blocks)
	if err != nil {
		return nil, err
	}

	return c.Join(ctx, packets)
}

// decode decodes one packet, logging and counting its correction outcome.
// pos is the packet's position in the caller's input.
func (c *Codec) decode(p *hamming.Packet, pos int) (decodedFragment, error) {
	frag, out, err := decodePacket(p)
	record(c.logger, &c.metrics, p, out, err)
	if err != nil {
		return decodedFragment{}, fmt.Errorf("fragment: decode packet %d: %w", pos, err)
	}

	return frag, nil
}

// record logs and counts the result of decoding p.
func record(l logger.Logger, m *CodecMetrics, p *hamming.Packet, out hamming.Outcome, err error) {
	switch out.Status {
	case hamming.Corrected:
		m.incBitsCorrected()
		l.Info("fragment corrected", "index", p.Index(), "position", out.Position)
	case hamming.UncorrectableDoubleError:
		m.incUncorrectableCount()
		l.Warn("fragment uncorrectable", "index", p.Index(), "outcome", out.String())
	case hamming.NoErrorFound:
	}

	if err != nil {
		if out.Status != hamming.UncorrectableDoubleError {
			l.Warn("fragment rejected", "index", p.Index(), "error", err)
		}

		return
	}

	m.incPacketsDecoded()
}
