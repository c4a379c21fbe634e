package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-secded/blockfile"
)

func newEncodeCmd(g *globalFlags) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "encode <file>",
		Short: "Encode a file into protected blocks",
		Long: `Split a file into fragments, encode each into a 4096-byte SECDED block and
write the blocks and a manifest to the output directory.

The manifest path is printed on stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if outDir == "" {
				outDir = filepath.Dir(path)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			codec, err := g.newCodec()
			if err != nil {
				return err
			}

			packets, err := codec.Split(cmd.Context(), data)
			if err != nil {
				return err
			}

			name := filepath.Base(path)
			m, err := blockfile.Write(outDir, name, packets)
			if err != nil {
				return err
			}

			g.log.Info("file encoded", "file", path, "size", m.Size, "fragments", m.Fragments, "id", m.ID)
			fmt.Fprintln(cmd.OutOrStdout(), blockfile.ManifestPath(outDir, name))

			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default: the input file's directory)")

	return cmd
}
