package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-secded/blockfile"
)

func newDecodeCmd(g *globalFlags) *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "decode <manifest>",
		Short: "Restore a file from its blocks",
		Long: `Read the manifest and its blocks, repair single-bit errors and join the
fragments back into the original file.

Fails if any block has an uncorrectable double-bit error or a fragment is missing.
Without --out the payload is written to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			m, err := blockfile.ReadManifest(path)
			if err != nil {
				return err
			}

			blocks, err := blockfile.ReadBlocks(filepath.Dir(path), m)
			if err != nil {
				return err
			}

			codec, err := g.newCodec()
			if err != nil {
				return err
			}

			payload, err := codec.JoinBlocks(cmd.Context(), blocks)
			if err != nil {
				return err
			}

			if int64(len(payload)) != m.Size {
				return fmt.Errorf("%w: decoded %d bytes, manifest says %d", blockfile.ErrManifest, len(payload), m.Size)
			}

			g.log.Info("file decoded",
				"id", m.ID,
				"size", len(payload),
				"fragments", m.Fragments,
				"corrected", codec.Metrics().BitsCorrected.Load(),
			)

			if outFile == "" {
				_, err = cmd.OutOrStdout().Write(payload)
				return err
			}

			return os.WriteFile(outFile, payload, 0o644) //nolint:gosec // restored user file
		},
	}

	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Output file (default: stdout)")

	return cmd
}
