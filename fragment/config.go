package fragment

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/arloliu/go-secded/logger"
)

const (
	// MaxConcurrency bounds the number of fragments processed in parallel.
	MaxConcurrency = 256

	// MinFragmentTimeout and MaxFragmentTimeout bound a non-zero fragment timeout.
	MinFragmentTimeout = 10 * time.Millisecond
	MaxFragmentTimeout = 10 * time.Minute
)

// CodecConfig holds the configuration shared by Codec and Assembler.
type CodecConfig struct {
	// concurrency is the errgroup limit for per-fragment work.
	concurrency int

	// fragmentTimeout is the longest an Assembler waits for the next fragment
	// of an open sequence. 0 disables the timeout.
	fragmentTimeout time.Duration

	logger logger.Logger
}

// NewCodecConfig creates a configuration. opts are applied in order.
//
// Defaults: concurrency runtime.GOMAXPROCS(0) (capped at MaxConcurrency), no
// fragment timeout, and the package default logger.
func NewCodecConfig(opts ...CodecOption) (*CodecConfig, error) {
	cfg := &CodecConfig{
		concurrency: min(runtime.GOMAXPROCS(0), MaxConcurrency),
		logger:      logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Concurrency returns the per-fragment parallelism limit.
func (cfg *CodecConfig) Concurrency() int {
	return cfg.concurrency
}

// FragmentTimeout returns the inter-fragment timeout, 0 when disabled.
func (cfg *CodecConfig) FragmentTimeout() time.Duration {
	return cfg.fragmentTimeout
}

// GetLogger returns the configured logger.
func (cfg *CodecConfig) GetLogger() logger.Logger {
	return cfg.logger
}

// --- CodecOption ---

// CodecOption is a functional option for configuring a CodecConfig.
type CodecOption interface {
	apply(*CodecConfig) error
}

type codecOptFunc func(*CodecConfig) error

func (f codecOptFunc) apply(cfg *CodecConfig) error { return f(cfg) }

// WithConcurrency sets how many fragments are encoded or decoded in parallel.
func WithConcurrency(n int) CodecOption {
	return codecOptFunc(func(cfg *CodecConfig) error {
		if n < 1 || n > MaxConcurrency {
			return fmt.Errorf("fragment: concurrency %d out of range [1, %d]", n, MaxConcurrency)
		}
		cfg.concurrency = n

		return nil
	})
}

// WithFragmentTimeout sets the Assembler inter-fragment timeout. 0 disables it.
func WithFragmentTimeout(d time.Duration) CodecOption {
	return codecOptFunc(func(cfg *CodecConfig) error {
		if d != 0 && (d < MinFragmentTimeout || d > MaxFragmentTimeout) {
			return fmt.Errorf("fragment: fragment timeout %v out of range [%v, %v]",
				d, MinFragmentTimeout, MaxFragmentTimeout)
		}
		cfg.fragmentTimeout = d

		return nil
	})
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) CodecOption {
	return codecOptFunc(func(cfg *CodecConfig) error {
		if l == nil {
			return errors.New("fragment: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}
