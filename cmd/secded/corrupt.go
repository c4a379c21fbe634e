package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-secded/blockfile"
	"github.com/arloliu/go-secded/hamming"
	"github.com/arloliu/go-secded/noise"
)

func newCorruptCmd(g *globalFlags) *cobra.Command {
	var (
		bits int
		ber  float64
		seed int64
	)

	cmd := &cobra.Command{
		Use:   "corrupt <block>",
		Short: "Flip random bits of a block file in place",
		Long: `Flip bits of a block file to exercise error correction.

By default one random bit is flipped. --bits flips that many distinct bits;
--ber flips every bit independently with the given probability instead.
The flipped positions are printed on stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("bits") && cmd.Flags().Changed("ber") {
				return errors.New("--bits and --ber are mutually exclusive")
			}
			if !cmd.Flags().Changed("seed") {
				seed = time.Now().UnixNano()
			}

			path := args[0]
			data, err := blockfile.ReadBlock(path)
			if err != nil {
				return err
			}

			block, err := hamming.NewBlock(data)
			if err != nil {
				return err
			}

			inj := noise.NewInjector(seed)
			var positions []int
			if cmd.Flags().Changed("ber") {
				positions, err = inj.ApplyBER(block, ber)
			} else {
				positions, err = inj.FlipBits(block, bits)
			}
			if err != nil {
				return err
			}

			if err := blockfile.WriteBlock(path, block.Bytes()); err != nil {
				return err
			}

			g.log.Info("block corrupted", "file", path, "flipped", len(positions), "seed", seed)
			fmt.Fprintln(cmd.OutOrStdout(), positions)

			return nil
		},
	}

	cmd.Flags().IntVarP(&bits, "bits", "n", 1, "Number of distinct bits to flip")
	cmd.Flags().Float64Var(&ber, "ber", 0, "Bit error rate in [0, 1]")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (default: current time)")

	return cmd
}
