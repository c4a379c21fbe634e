package main

import (
	"github.com/spf13/cobra"

	"github.com/arloliu/go-secded/fragment"
	"github.com/arloliu/go-secded/logger"
)

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	logLevel    string
	console     bool
	concurrency int

	log logger.Logger
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "secded",
		Short: "SECDED block codec",
		Long: `secded - store files as Hamming SECDED protected blocks.

Each block is 4096 bytes and carries up to 4089 payload bytes. A single flipped bit
per block is repaired on decode; two flipped bits are detected and reported.

Files larger than one block are split into numbered fragments, written next to a
manifest describing the set:

  <name>_0.pak ... <name>_<N-1>.pak
  <name>.manifest

Logs go to stderr, so decoded payloads can be piped from stdout.`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&g.console, "console", false, "Human readable log output")
	rootCmd.PersistentFlags().IntVar(&g.concurrency, "concurrency", 0,
		"Fragments processed in parallel (0 uses GOMAXPROCS)")

	rootCmd.AddCommand(
		newEncodeCmd(g),
		newDecodeCmd(g),
		newInspectCmd(g),
		newCorruptCmd(g),
	)

	return rootCmd
}

func (g *globalFlags) setup(cmd *cobra.Command) error {
	level, err := logger.ParseLevel(g.logLevel)
	if err != nil {
		return err
	}

	opts := []logger.Option{logger.WithOutput(cmd.ErrOrStderr())}
	if g.console {
		opts = append(opts, logger.WithConsole())
	}

	g.log = logger.NewSlog(level, opts...)
	logger.SetLogger(g.log)

	return nil
}

func (g *globalFlags) newCodec() (*fragment.Codec, error) {
	opts := []fragment.CodecOption{fragment.WithLogger(g.log)}
	if g.concurrency != 0 {
		opts = append(opts, fragment.WithConcurrency(g.concurrency))
	}

	cfg, err := fragment.NewCodecConfig(opts...)
	if err != nil {
		return nil, err
	}

	return fragment.NewCodec(cfg)
}
